package session

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/boxlens/pkg/errors"
	"github.com/matzehuels/boxlens/pkg/imageio"
	"github.com/matzehuels/boxlens/pkg/layout"
	"github.com/matzehuels/boxlens/pkg/pipeline"
)

const testLayout = `{
	"page_width": 100,
	"sections": [
		{"name": "top", "height": 50, "bounding_boxes": [
			{"box_2d": {"left": 10, "top": 10, "width": 20, "height": 10}, "element": {"type": "button"}}
		]}
	]
}`

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testDoc(t *testing.T) *layout.Document {
	t.Helper()
	doc, err := layout.ReadJSON(strings.NewReader(testLayout))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestControllerRender(t *testing.T) {
	ctx := context.Background()
	c := New()
	if c.ID == "" {
		t.Fatal("New() produced empty ID")
	}

	if _, err := c.Render(ctx); err != ErrNoImage {
		t.Errorf("Render() without image error = %v, want ErrNoImage", err)
	}

	dec, err := c.LoadImage(ctx, testPNG(t, 200, 100))
	if err != nil {
		t.Fatalf("LoadImage() error: %v", err)
	}
	if dec.Width() != 200 || dec.Height() != 100 {
		t.Errorf("decoded size = %dx%d", dec.Width(), dec.Height())
	}

	if _, err := c.Render(ctx); err != ErrNoLayout {
		t.Errorf("Render() without layout error = %v, want ErrNoLayout", err)
	}

	if err := c.SetLayout(testDoc(t)); err != nil {
		t.Fatalf("SetLayout() error: %v", err)
	}
	frame, err := c.Render(ctx, "png", "json")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(frame.Artifacts["png"]) == 0 || len(frame.Artifacts["json"]) == 0 {
		t.Errorf("artifacts = %v", keys(frame.Artifacts))
	}
	if frame.Image == nil || frame.Image.Bounds().Dx() != 200 || frame.Image.Bounds().Dy() != 100 {
		t.Errorf("frame image = %v, want 200x100 snapshot", frame.Image)
	}
	if len(frame.Overlay.Drawn) != 1 {
		t.Fatalf("drawn = %d, want 1", len(frame.Overlay.Drawn))
	}
	rect := frame.Overlay.Drawn[0].Rect
	if rect.X != 20 || rect.Y != 20 || rect.Width != 40 || rect.Height != 20 {
		t.Errorf("rect = %+v, want {20 20 40 20}", rect)
	}

	legend, err := c.Legend(ctx)
	if err != nil {
		t.Fatalf("Legend() error: %v", err)
	}
	if len(legend) != 1 || legend[0].Type != "button" {
		t.Errorf("Legend() = %+v", legend)
	}

	if _, err := c.Render(ctx, "svg"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(svg) error = %v, want INVALID_FORMAT", err)
	}
}

func TestControllerOptions(t *testing.T) {
	ctx := context.Background()
	c := New()
	if _, err := c.LoadImage(ctx, testPNG(t, 100, 50)); err != nil {
		t.Fatal(err)
	}
	if err := c.SetLayout(testDoc(t)); err != nil {
		t.Fatal(err)
	}

	if err := c.SetOptions(pipeline.Options{ColorByType: false}); err != nil {
		t.Fatalf("SetOptions() error: %v", err)
	}
	legend, err := c.Legend(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(legend) != 0 {
		t.Errorf("legend without type coloring = %+v, want empty", legend)
	}

	if err := c.SetOptions(pipeline.Options{Formats: []string{"gif"}}); err == nil {
		t.Error("SetOptions() accepted gif")
	}
	if got := c.Options(); got.ColorByType {
		t.Error("rejected options replaced the current ones")
	}
}

func TestControllerSetLayoutInvalid(t *testing.T) {
	c := New()
	err := c.SetLayout(&layout.Document{PageWidth: 0})
	if !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("SetLayout() error = %v, want INVALID_LAYOUT", err)
	}
	if c.Layout() != nil {
		t.Error("invalid layout was stored")
	}
}

func TestControllerLoadImageFailureKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	c := New()
	if _, err := c.LoadImage(ctx, testPNG(t, 10, 10)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.LoadImage(ctx, []byte("garbage")); !errors.Is(err, errors.ErrCodeImageDecode) {
		t.Errorf("LoadImage(garbage) error = %v, want IMAGE_DECODE", err)
	}
	if img := c.Image(); img == nil || img.Width() != 10 {
		t.Error("previous image was lost")
	}
}

func TestControllerSupersededLoad(t *testing.T) {
	ctx := context.Background()
	c := New()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	c.decode = func(ctx context.Context, data []byte) (*imageio.Decoded, error) {
		if string(data) == "slow" {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return imageio.Decode(ctx, data)
	}

	errc := make(chan error, 1)
	go func() {
		_, err := c.LoadImage(ctx, []byte("slow"))
		errc <- err
	}()
	<-started

	if _, err := c.LoadImage(ctx, testPNG(t, 30, 20)); err != nil {
		t.Fatalf("newer LoadImage() error: %v", err)
	}

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("superseded decode was not cancelled")
	}
	if err := <-errc; err != ErrSuperseded {
		t.Errorf("superseded LoadImage() error = %v, want ErrSuperseded", err)
	}
	if img := c.Image(); img == nil || img.Width() != 30 {
		t.Error("newer image is not current")
	}
}

func TestControllerReset(t *testing.T) {
	ctx := context.Background()
	c := New()
	if _, err := c.LoadImage(ctx, testPNG(t, 10, 10)); err != nil {
		t.Fatal(err)
	}
	if err := c.SetLayout(testDoc(t)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Render(ctx); err != nil {
		t.Fatal(err)
	}

	c.Reset()
	if c.Image() != nil || c.Layout() != nil {
		t.Error("Reset() kept image or layout")
	}
	if !c.target.Empty() {
		t.Error("Reset() did not clear the target")
	}
	if _, err := c.Render(ctx); err != ErrNoImage {
		t.Errorf("Render() after reset error = %v, want ErrNoImage", err)
	}
}

func keys(m map[string][]byte) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
