package overlay

import (
	"image/color"
	"testing"
)

func TestColorFor(t *testing.T) {
	known := []string{"text", "button", "svg", "image", "social_icons", "map", "video", "gallery", "contact_form", "section"}
	seen := make(map[color.NRGBA]string)
	for _, typ := range known {
		c := ColorFor(typ)
		if c == FallbackColor {
			t.Errorf("ColorFor(%q) returned fallback", typ)
		}
		if other, dup := seen[c]; dup {
			t.Errorf("ColorFor(%q) duplicates %q", typ, other)
		}
		seen[c] = typ
	}

	if got := ColorFor("widget"); got != FallbackColor {
		t.Errorf("ColorFor(widget) = %v, want fallback", got)
	}
}

func TestPaletteIsCopy(t *testing.T) {
	p := Palette()
	p["text"] = color.NRGBA{}
	if ColorFor("text") == (color.NRGBA{}) {
		t.Error("mutating Palette() result changed the package palette")
	}
}

func TestWithAlpha(t *testing.T) {
	c := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	tests := []struct {
		a    float64
		want uint8
	}{
		{0, 0},
		{-1, 0},
		{0.1, 26},
		{0.8, 204},
		{1, 255},
		{2, 255},
	}
	for _, tt := range tests {
		got := withAlpha(c, tt.a)
		if got.A != tt.want || got.R != 10 || got.G != 20 || got.B != 30 {
			t.Errorf("withAlpha(%v) = %v, want alpha %d", tt.a, got, tt.want)
		}
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF}); got != "#3B82F6" {
		t.Errorf("Hex(opaque) = %s", got)
	}
	if got := Hex(color.NRGBA{R: 1, G: 2, B: 3, A: 0xCC}); got != "#010203CC" {
		t.Errorf("Hex(translucent) = %s", got)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#3B82F6", color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF}, false},
		{"#010203CC", color.NRGBA{R: 1, G: 2, B: 3, A: 0xCC}, false},
		{"3b82f6", color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF}, false},
		{"#12345", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
