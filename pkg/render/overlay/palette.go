package overlay

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/matzehuels/boxlens/pkg/layout"
)

// palette maps known element types to their box colors.
var palette = map[string]color.NRGBA{
	layout.TypeText:        {R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
	layout.TypeButton:      {R: 0x10, G: 0xB9, B: 0x81, A: 0xFF},
	layout.TypeSVG:         {R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
	layout.TypeImage:       {R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
	layout.TypeSocialIcons: {R: 0xEC, G: 0x48, B: 0x99, A: 0xFF},
	layout.TypeMap:         {R: 0x14, G: 0xB8, B: 0xA6, A: 0xFF},
	layout.TypeVideo:       {R: 0xEF, G: 0x44, B: 0x44, A: 0xFF},
	layout.TypeGallery:     {R: 0x63, G: 0x66, B: 0xF1, A: 0xFF},
	layout.TypeContactForm: {R: 0xF9, G: 0x73, B: 0x16, A: 0xFF},
	layout.TypeSection:     {R: 0x6B, G: 0x72, B: 0x80, A: 0xFF},
}

var (
	// FallbackColor is used for element types missing from the palette.
	FallbackColor = color.NRGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0xFF}

	// DefaultColor is used for every box when coloring by type is off.
	DefaultColor = color.NRGBA{R: 0xFF, G: 0x00, B: 0x00, A: 0xFF}

	// SectionColor strokes section outlines and their names.
	SectionColor = color.NRGBA{R: 0x6B, G: 0x72, B: 0x80, A: 0xFF}

	// LabelTextColor is drawn on top of label backgrounds.
	LabelTextColor = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// ColorFor returns the palette color for an element type, or FallbackColor.
func ColorFor(elementType string) color.NRGBA {
	if c, ok := palette[elementType]; ok {
		return c
	}
	return FallbackColor
}

// Palette returns a copy of the known type colors.
func Palette() map[string]color.NRGBA {
	out := make(map[string]color.NRGBA, len(palette))
	for k, v := range palette {
		out[k] = v
	}
	return out
}

// resolveColor picks the box color for an element type under opts.
func resolveColor(elementType string, opts Options) color.NRGBA {
	if !opts.ColorByType {
		return DefaultColor
	}
	return ColorFor(elementType)
}

// withAlpha returns c with its alpha replaced by a in [0, 1].
func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	switch {
	case a <= 0:
		c.A = 0
	case a >= 1:
		c.A = 0xFF
	default:
		c.A = uint8(a*255 + 0.5)
	}
	return c
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when not fully opaque.
func Hex(c color.NRGBA) string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// ParseHex parses #RRGGBB or #RRGGBBAA as produced by Hex.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	if len(h) == 6 {
		h += "FF"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
