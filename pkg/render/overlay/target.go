package overlay

import (
	"image"
	"io"

	"github.com/fogleman/gg"
)

// Target is the raster surface an overlay is drawn onto.
//
// A Target is sized once per render, fully overwritten by it, and can be
// cleared back to zero dimensions between renders. It is owned by a single
// caller; concurrent renders into one Target must be serialized.
type Target struct {
	dc *gg.Context
}

// NewTarget returns an empty target with zero dimensions.
func NewTarget() *Target {
	return &Target{}
}

// Resize replaces the surface with a blank one of the given size.
func (t *Target) Resize(width, height int) {
	t.dc = gg.NewContext(width, height)
}

// Clear drops the surface, leaving the target with zero dimensions.
func (t *Target) Clear() {
	t.dc = nil
}

// Width returns the surface width in pixels.
func (t *Target) Width() int {
	if t.dc == nil {
		return 0
	}
	return t.dc.Width()
}

// Height returns the surface height in pixels.
func (t *Target) Height() int {
	if t.dc == nil {
		return 0
	}
	return t.dc.Height()
}

// Empty reports whether the target has no surface.
func (t *Target) Empty() bool {
	return t.dc == nil
}

// Image returns the drawn pixels, or nil for an empty target.
func (t *Target) Image() image.Image {
	if t.dc == nil {
		return nil
	}
	return t.dc.Image()
}

// EncodePNG writes the surface as PNG.
func (t *Target) EncodePNG(w io.Writer) error {
	if t.dc == nil {
		return errEmptyTarget
	}
	return t.dc.EncodePNG(w)
}

// context exposes the drawing context to the renderer.
func (t *Target) context() *gg.Context {
	return t.dc
}
