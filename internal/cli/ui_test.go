package cli

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/matzehuels/boxlens/pkg/pipeline"
	"github.com/matzehuels/boxlens/pkg/render/overlay"
)

func TestLegendTable(t *testing.T) {
	legend := []overlay.LegendEntry{
		{Type: "text", Color: color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0xCC}},
		{Type: "widget", Color: color.NRGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0xCC}},
	}
	out := legendTable(legend)
	for _, want := range []string{"Type", "Color", "text", "#3B82F6", "widget", "#9CA3AF"} {
		if !strings.Contains(out, want) {
			t.Errorf("legendTable() missing %q:\n%s", want, out)
		}
	}
}

func TestStatsLine(t *testing.T) {
	res := &pipeline.Result{Width: 200, Height: 100, Drawn: 3, Skipped: 1, ScaleX: 0.2, ScaleY: 0.2}
	line := statsLine(res)
	for _, want := range []string{"200x100", "3 boxes", "1 skipped", iconFresh} {
		if !strings.Contains(line, want) {
			t.Errorf("statsLine() = %q, missing %q", line, want)
		}
	}

	res.CacheHit = true
	res.Skipped = 0
	line = statsLine(res)
	if !strings.Contains(line, iconCached) || strings.Contains(line, "skipped") {
		t.Errorf("statsLine(cached) = %q", line)
	}
}

func TestPreviewSize(t *testing.T) {
	tests := []struct {
		w, h, cols, rows int
		wantW, wantH     int
	}{
		{200, 100, 20, 20, 20, 10},
		{100, 400, 80, 10, 5, 20},
		{100, 100, 0, 10, 0, 0},
		{1000, 1, 10, 10, 10, 1},
	}
	for _, tt := range tests {
		gw, gh := previewSize(tt.w, tt.h, tt.cols, tt.rows)
		if gw != tt.wantW || gh != tt.wantH {
			t.Errorf("previewSize(%d, %d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.w, tt.h, tt.cols, tt.rows, gw, gh, tt.wantW, tt.wantH)
		}
	}
}

func TestPreviewBlocks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	out := previewBlocks(img, 20, 20)
	if got := strings.Count(out, "\n"); got != 4 {
		t.Errorf("preview has %d line breaks, want 4", got)
	}
	if got := strings.Count(out, halfBlock); got != 100 {
		t.Errorf("preview has %d cells, want 100", got)
	}
	if previewBlocks(nil, 10, 10) != "" {
		t.Error("nil image produced a preview")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
