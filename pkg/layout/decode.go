package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/matzehuels/boxlens/pkg/errors"
)

// ReadJSON decodes a layout document from r.
//
// Numbers are decoded as json.Number so that large integers survive
// unchanged in element attributes. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "parse layout JSON")
	}
	return FromValue(v)
}

// FromValue converts an already-decoded generic value into a Document.
//
// v is expected to have the shape produced by encoding/json when decoding
// into an any: objects are map[string]any, arrays are []any and numbers are
// float64 or json.Number.
//
// Document-level problems (missing page_width, empty sections, bad section
// heights, zero total height) return an INVALID_LAYOUT error. Entries in
// bounding_boxes that lack a usable box_2d or element are kept with the
// corresponding field set to nil. A missing or non-numeric z_index is 0.
func FromValue(v any) (*Document, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "layout must be a JSON object, got %s", kindOf(v))
	}

	raw, present := obj["page_width"]
	if !present {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "page_width is missing")
	}
	pageWidth, ok := toFloat(raw)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "page_width must be a number, got %s", kindOf(raw))
	}

	rawSections, present := obj["sections"]
	if !present {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "sections is missing")
	}
	list, ok := rawSections.([]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "sections must be an array, got %s", kindOf(rawSections))
	}

	doc := &Document{
		PageWidth: pageWidth,
		Sections:  make([]Section, 0, len(list)),
	}
	for i, item := range list {
		s, err := sectionFromValue(item)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "section %d", i)
		}
		doc.Sections = append(doc.Sections, s)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func sectionFromValue(v any) (Section, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Section{}, fmt.Errorf("must be an object, got %s", kindOf(v))
	}

	name, _ := obj["name"].(string)

	raw, present := obj["height"]
	if !present {
		return Section{}, fmt.Errorf("height is missing")
	}
	height, ok := toFloat(raw)
	if !ok {
		return Section{}, fmt.Errorf("height must be a number, got %s", kindOf(raw))
	}

	s := Section{Name: name, Height: height}

	rawBoxes, present := obj["bounding_boxes"]
	if !present || rawBoxes == nil {
		return s, nil
	}
	boxes, ok := rawBoxes.([]any)
	if !ok {
		return Section{}, fmt.Errorf("bounding_boxes must be an array, got %s", kindOf(rawBoxes))
	}

	s.BoundingBoxes = make([]BoundingBox, 0, len(boxes))
	for _, b := range boxes {
		s.BoundingBoxes = append(s.BoundingBoxes, boxFromValue(b))
	}
	return s, nil
}

// boxFromValue never fails; problems surface as nil fields.
func boxFromValue(v any) BoundingBox {
	obj, ok := v.(map[string]any)
	if !ok {
		return BoundingBox{}
	}

	var bb BoundingBox
	if z, ok := toFloat(obj["z_index"]); ok {
		bb.ZIndex = z
	}
	if box, ok := obj["box_2d"].(map[string]any); ok {
		bb.Box = box2DFromValue(box)
	}
	if el, ok := obj["element"].(map[string]any); ok {
		bb.Element = elementFromValue(el)
	}
	return bb
}

func box2DFromValue(obj map[string]any) *Box2D {
	var b Box2D
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"left", &b.Left},
		{"top", &b.Top},
		{"width", &b.Width},
		{"height", &b.Height},
	} {
		n, ok := toFloat(obj[f.key])
		if !ok {
			return nil
		}
		*f.dst = n
	}
	return &b
}

func elementFromValue(obj map[string]any) *Element {
	el := &Element{Type: TypeUnknown}
	if t, ok := obj["type"].(string); ok && t != "" {
		el.Type = t
	}
	for k, v := range obj {
		if k == "type" {
			continue
		}
		if el.Attrs == nil {
			el.Attrs = make(map[string]any, len(obj)-1)
		}
		el.Attrs[k] = v
	}
	return el
}

// toFloat accepts the numeric representations encoding/json produces, plus
// plain Go integers for callers that build values by hand.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if !isFinite(f) {
		return 0, false
	}
	return f, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
