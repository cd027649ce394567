package layout

import (
	"github.com/matzehuels/boxlens/pkg/errors"
)

// Rect is an axis-aligned rectangle in pixel coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Scale maps a document's logical coordinates onto an image of a given
// pixel size. Horizontal and vertical factors are independent, so the
// document's aspect ratio need not match the image's.
type Scale struct {
	// X is image pixel width divided by page_width.
	X float64 `json:"scale_x"`
	// Y is image pixel height divided by the total section height.
	Y float64 `json:"scale_y"`
	// SectionTops holds each section's top edge in pixels.
	SectionTops []float64 `json:"section_tops"`

	heights []float64
}

// NewScale computes scale factors and cumulative section offsets for
// rendering doc onto a width x height image.
//
// The document is validated first; an invalid document or non-positive
// image size yields an error and never an infinite or NaN factor.
func NewScale(width, height int, doc *Document) (*Scale, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image dimensions must be positive, got %dx%d", width, height)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	s := &Scale{
		X:           float64(width) / doc.PageWidth,
		Y:           float64(height) / doc.TotalHeight(),
		SectionTops: make([]float64, len(doc.Sections)),
		heights:     make([]float64, len(doc.Sections)),
	}
	// Positive but subnormal extents pass Validate and still overflow.
	if !isFinite(s.X) || !isFinite(s.Y) {
		return nil, errors.New(errors.ErrCodeInvalidLayout,
			"layout extents too small for a %dx%d image (scale %gx%g)", width, height, s.X, s.Y)
	}

	// Offsets accumulate logical height and scale once so rounding does
	// not compound across sections.
	var logical float64
	for i, sec := range doc.Sections {
		s.SectionTops[i] = s.Y * logical
		s.heights[i] = sec.Height
		logical += sec.Height
	}
	return s, nil
}

// SectionHeight returns the pixel height of section i.
func (s *Scale) SectionHeight(i int) float64 {
	return s.Y * s.heights[i]
}

// Bottom returns the pixel offset just below the last section. It equals
// the image height up to floating-point rounding.
func (s *Scale) Bottom() float64 {
	n := len(s.SectionTops)
	if n == 0 {
		return 0
	}
	return s.SectionTops[n-1] + s.SectionHeight(n-1)
}

// Rect converts box, given relative to section i, into pixel coordinates.
func (s *Scale) Rect(section int, box *Box2D) Rect {
	return Rect{
		X:      box.Left * s.X,
		Y:      s.SectionTops[section] + box.Top*s.Y,
		Width:  box.Width * s.X,
		Height: box.Height * s.Y,
	}
}
