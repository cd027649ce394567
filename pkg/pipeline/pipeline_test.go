package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/matzehuels/boxlens/pkg/cache"
	"github.com/matzehuels/boxlens/pkg/errors"
)

const heroLayout = `{
	"page_width": 1000,
	"sections": [
		{
			"name": "hero",
			"height": 500,
			"bounding_boxes": [
				{"box_2d": {"left": 100, "top": 50, "width": 200, "height": 100}, "element": {"type": "text"}, "z_index": 2},
				{"box_2d": {"left": 0, "top": 0, "width": 1000, "height": 500}, "element": {"type": "image"}, "z_index": 1},
				{"element": {"type": "button"}}
			]
		}
	]
}`

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{nil, false},
		{[]string{"png"}, false},
		{[]string{"png", "jpeg", "json"}, false},
		{[]string{"JPG"}, false},
		{[]string{"tif", "bmp"}, false},
		{[]string{"svg"}, true},
		{[]string{"png", "gif"}, true},
	}
	for _, tt := range tests {
		err := ValidateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var opts Options
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("ValidateAndSetDefaults() error: %v", err)
		}
		if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
			t.Errorf("Formats = %v, want [%s]", opts.Formats, DefaultFormat)
		}
		if opts.FontSize != 12 {
			t.Errorf("FontSize = %v, want 12", opts.FontSize)
		}
	})

	t.Run("normalizes and dedupes formats", func(t *testing.T) {
		opts := Options{Formats: []string{"JPG", "jpeg", "png"}}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("ValidateAndSetDefaults() error: %v", err)
		}
		if len(opts.Formats) != 2 || opts.Formats[0] != "jpeg" || opts.Formats[1] != "png" {
			t.Errorf("Formats = %v, want [jpeg png]", opts.Formats)
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		opts := Options{Formats: []string{"svg"}}
		err := opts.ValidateAndSetDefaults()
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("error = %v, want INVALID_FORMAT", err)
		}
	})

	t.Run("rejects negative font size", func(t *testing.T) {
		opts := Options{FontSize: -1}
		if err := opts.ValidateAndSetDefaults(); err == nil {
			t.Error("expected error for negative font size")
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		opts := Options{Formats: []string{"jpg"}}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
		if len(opts.Formats) != 1 || opts.Formats[0] != "jpeg" {
			t.Errorf("Formats = %v", opts.Formats)
		}
	})
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), Input{
		Image:  testPNG(t, 200, 100),
		Layout: []byte(heroLayout),
	}, Options{
		ShowLabels:   true,
		ShowSections: true,
		ColorByType:  true,
		Formats:      []string{"png", "json"},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.Width != 200 || res.Height != 100 {
		t.Errorf("size = %dx%d, want 200x100", res.Width, res.Height)
	}
	if res.ScaleX != 0.2 || res.ScaleY != 0.2 {
		t.Errorf("scale = (%v, %v), want (0.2, 0.2)", res.ScaleX, res.ScaleY)
	}
	if res.Drawn != 2 || res.Skipped != 1 {
		t.Errorf("drawn/skipped = %d/%d, want 2/1", res.Drawn, res.Skipped)
	}
	if res.ImageFormat != "png" {
		t.Errorf("ImageFormat = %q, want png", res.ImageFormat)
	}
	if res.CacheHit {
		t.Error("first run reported a cache hit")
	}

	// Drawn in z order, so the image box comes first.
	if len(res.Legend) != 2 || res.Legend[0].Type != "image" || res.Legend[1].Type != "text" {
		t.Errorf("Legend = %+v, want [image text]", res.Legend)
	}

	img, err := png.Decode(bytes.NewReader(res.Artifacts["png"]))
	if err != nil {
		t.Fatalf("decode png artifact: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("png artifact size = %v", b)
	}

	var doc struct {
		Boxes []struct {
			Type string `json:"type"`
		} `json:"boxes"`
		Skipped int `json:"skipped"`
	}
	if err := json.Unmarshal(res.Artifacts["json"], &doc); err != nil {
		t.Fatalf("decode json artifact: %v", err)
	}
	if len(doc.Boxes) != 2 || doc.Skipped != 1 {
		t.Errorf("json artifact = %+v", doc)
	}

	if res.Stats.Sections != 1 || res.Stats.Boxes != 3 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

func TestRunnerExecuteErrors(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		in       Input
		opts     Options
		wantCode errors.Code
	}{
		{
			name:     "layout checked before image",
			in:       Input{Image: []byte("not an image"), Layout: []byte(`{"page_width": 0, "sections": []}`)},
			wantCode: errors.ErrCodeInvalidLayout,
		},
		{
			name:     "malformed json",
			in:       Input{Image: testPNG(t, 10, 10), Layout: []byte(`{`)},
			wantCode: errors.ErrCodeInvalidLayout,
		},
		{
			name:     "zero total height",
			in:       Input{Image: testPNG(t, 10, 10), Layout: []byte(`{"page_width": 100, "sections": [{"name": "a", "height": 0}]}`)},
			wantCode: errors.ErrCodeInvalidLayout,
		},
		{
			name:     "undecodable image",
			in:       Input{Image: []byte("not an image"), Layout: []byte(heroLayout)},
			wantCode: errors.ErrCodeImageDecode,
		},
		{
			name:     "bad format",
			in:       Input{Image: testPNG(t, 10, 10), Layout: []byte(heroLayout)},
			opts:     Options{Formats: []string{"svg"}},
			wantCode: errors.ErrCodeInvalidFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Execute(ctx, tt.in, tt.opts)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestRunnerCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	ctx := context.Background()
	in := Input{Image: testPNG(t, 100, 50), Layout: []byte(heroLayout)}
	opts := Options{ColorByType: true, Formats: []string{"png"}}

	first, err := runner.Execute(ctx, in, opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	second, err := runner.Execute(ctx, in, opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second run missed the cache")
	}
	if !bytes.Equal(first.Artifacts["png"], second.Artifacts["png"]) {
		t.Error("cached png differs from rendered png")
	}
	if len(second.Legend) != len(first.Legend) {
		t.Fatalf("cached legend = %+v, want %+v", second.Legend, first.Legend)
	}
	for i := range first.Legend {
		if first.Legend[i] != second.Legend[i] {
			t.Errorf("legend[%d] = %+v, want %+v", i, second.Legend[i], first.Legend[i])
		}
	}

	// Different options produce a different key.
	third, err := runner.Execute(ctx, in, Options{Formats: []string{"png"}})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("changed options hit the cache")
	}

	refreshed, err := runner.Execute(ctx, in, Options{ColorByType: true, Formats: []string{"png"}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHit {
		t.Error("refresh run hit the cache")
	}
}

func TestResultArtifact(t *testing.T) {
	res := &Result{Artifacts: map[string][]byte{"png": {1}}}
	if _, err := res.Artifact("png"); err != nil {
		t.Errorf("Artifact(png) error: %v", err)
	}
	if _, err := res.Artifact("jpeg"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Artifact(jpeg) error = %v, want NOT_FOUND", err)
	}
}

func TestOptionsWithFormats(t *testing.T) {
	base := DefaultOptions()
	if err := base.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	got, err := base.WithFormats("JPG", "json")
	if err != nil {
		t.Fatalf("WithFormats() error: %v", err)
	}
	if len(got.Formats) != 2 || got.Formats[0] != "jpeg" || got.Formats[1] != "json" {
		t.Errorf("Formats = %v, want [jpeg json]", got.Formats)
	}
	if len(base.Formats) != 1 || base.Formats[0] != "png" {
		t.Errorf("base formats changed to %v", base.Formats)
	}
	if _, err := base.WithFormats("svg"); err == nil {
		t.Error("expected error for svg")
	}
}
