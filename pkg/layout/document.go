package layout

import (
	"github.com/matzehuels/boxlens/pkg/errors"
)

// ElementType names the kind of UI element a bounding box covers.
// The set is open; unknown values are legal and render with a fallback color.
type ElementType = string

// Well-known element types.
const (
	TypeText        ElementType = "text"
	TypeButton      ElementType = "button"
	TypeSVG         ElementType = "svg"
	TypeImage       ElementType = "image"
	TypeSocialIcons ElementType = "social_icons"
	TypeMap         ElementType = "map"
	TypeVideo       ElementType = "video"
	TypeGallery     ElementType = "gallery"
	TypeContactForm ElementType = "contact_form"
	TypeSection     ElementType = "section"

	// TypeUnknown is assigned to elements that carry no string type.
	TypeUnknown ElementType = "unknown"
)

// Document is a parsed layout document. It is treated as immutable while a
// render is in progress.
type Document struct {
	PageWidth float64   `json:"page_width"`
	Sections  []Section `json:"sections"`
}

// Section is a horizontal band of the page.
type Section struct {
	Name          string        `json:"name"`
	Height        float64       `json:"height"`
	BoundingBoxes []BoundingBox `json:"bounding_boxes"`
}

// BoundingBox positions one element within its section.
// Box or Element is nil when the source entry was malformed.
type BoundingBox struct {
	Box     *Box2D   `json:"box_2d,omitempty"`
	Element *Element `json:"element,omitempty"`
	ZIndex  float64  `json:"z_index"`
}

// Valid reports whether the entry has both a box and an element.
func (b BoundingBox) Valid() bool {
	return b.Box != nil && b.Element != nil
}

// Box2D is a rectangle in logical units relative to the section's top-left.
type Box2D struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element describes what a box contains. Only Type is used for drawing;
// Attrs carries the remaining source attributes untouched.
type Element struct {
	Type  ElementType    `json:"type"`
	Attrs map[string]any `json:"-"`
}

// TotalHeight returns the sum of all section heights in logical units.
func (d *Document) TotalHeight() float64 {
	var total float64
	for _, s := range d.Sections {
		total += s.Height
	}
	return total
}

// BoxCount returns the number of bounding box entries, malformed ones included.
func (d *Document) BoxCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.BoundingBoxes)
	}
	return n
}

// Validate checks the document-level invariants needed to derive finite
// scale factors.
func (d *Document) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidLayout, "layout document is missing")
	}
	if !isFinite(d.PageWidth) || d.PageWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "page_width must be a positive number, got %v", d.PageWidth)
	}
	if len(d.Sections) == 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "sections must not be empty")
	}
	for i, s := range d.Sections {
		if !isFinite(s.Height) || s.Height < 0 {
			return errors.New(errors.ErrCodeInvalidLayout, "section %d (%q): height must be a non-negative number, got %v", i, s.Name, s.Height)
		}
	}
	if total := d.TotalHeight(); !isFinite(total) || total <= 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "total section height must be positive, got %v", total)
	}
	return nil
}
