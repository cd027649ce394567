package layout

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/boxlens/pkg/errors"
)

const heroJSON = `{
  "page_width": 1000,
  "sections": [
    {
      "name": "Hero",
      "height": 500,
      "bounding_boxes": [
        {"box_2d": {"left": 0, "top": 0, "width": 500, "height": 100},
         "element": {"type": "text", "content": "Welcome"}, "z_index": 1}
      ]
    }
  ]
}`

func TestReadJSON(t *testing.T) {
	doc, err := ReadJSON(strings.NewReader(heroJSON))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}

	if doc.PageWidth != 1000 {
		t.Errorf("PageWidth = %v, want 1000", doc.PageWidth)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("len(Sections) = %d, want 1", len(doc.Sections))
	}

	sec := doc.Sections[0]
	if sec.Name != "Hero" || sec.Height != 500 {
		t.Errorf("section = %+v, want Hero/500", sec)
	}
	if len(sec.BoundingBoxes) != 1 {
		t.Fatalf("len(BoundingBoxes) = %d, want 1", len(sec.BoundingBoxes))
	}

	bb := sec.BoundingBoxes[0]
	if !bb.Valid() {
		t.Fatal("box should be valid")
	}
	if *bb.Box != (Box2D{Left: 0, Top: 0, Width: 500, Height: 100}) {
		t.Errorf("Box = %+v", *bb.Box)
	}
	if bb.Element.Type != TypeText {
		t.Errorf("Element.Type = %q, want text", bb.Element.Type)
	}
	if bb.Element.Attrs["content"] != "Welcome" {
		t.Errorf("Element.Attrs[content] = %v, want passthrough", bb.Element.Attrs["content"])
	}
	if bb.ZIndex != 1 {
		t.Errorf("ZIndex = %v, want 1", bb.ZIndex)
	}
}

func TestReadJSONMalformed(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"page_width": `))
	if !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("ReadJSON(truncated) error = %v, want INVALID_LAYOUT", err)
	}
}

func TestFromValueDocumentErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not an object", `[1, 2]`},
		{"missing page_width", `{"sections": [{"name": "a", "height": 10}]}`},
		{"string page_width", `{"page_width": "wide", "sections": [{"height": 10}]}`},
		{"zero page_width", `{"page_width": 0, "sections": [{"height": 10}]}`},
		{"negative page_width", `{"page_width": -5, "sections": [{"height": 10}]}`},
		{"missing sections", `{"page_width": 100}`},
		{"sections not array", `{"page_width": 100, "sections": {}}`},
		{"empty sections", `{"page_width": 100, "sections": []}`},
		{"section not object", `{"page_width": 100, "sections": [42]}`},
		{"section missing height", `{"page_width": 100, "sections": [{"name": "a"}]}`},
		{"section height not numeric", `{"page_width": 100, "sections": [{"height": "tall"}]}`},
		{"negative section height", `{"page_width": 100, "sections": [{"height": -1}, {"height": 5}]}`},
		{"zero total height", `{"page_width": 100, "sections": [{"height": 0}, {"height": 0}]}`},
		{"bounding_boxes not array", `{"page_width": 100, "sections": [{"height": 5, "bounding_boxes": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			if err := json.Unmarshal([]byte(tt.input), &v); err != nil {
				t.Fatalf("bad fixture: %v", err)
			}
			doc, err := FromValue(v)
			if err == nil {
				t.Fatalf("FromValue() = %+v, want error", doc)
			}
			if !errors.Is(err, errors.ErrCodeInvalidLayout) {
				t.Errorf("FromValue() error code = %v, want INVALID_LAYOUT", errors.GetCode(err))
			}
		})
	}
}

func TestFromValueMalformedBoxes(t *testing.T) {
	input := `{"page_width": 100, "sections": [{"name": "s", "height": 50, "bounding_boxes": [
		{"element": {"type": "text"}},
		{"box_2d": {"left": 0, "top": 0, "width": 10, "height": 10}},
		{"box_2d": {"left": "a", "top": 0, "width": 10, "height": 10}, "element": {"type": "map"}},
		"garbage",
		{"box_2d": {"left": 1, "top": 2, "width": 3, "height": 4}, "element": {}, "z_index": "high"}
	]}]}`

	var v any
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		t.Fatal(err)
	}
	doc, err := FromValue(v)
	if err != nil {
		t.Fatalf("FromValue() error: %v", err)
	}

	boxes := doc.Sections[0].BoundingBoxes
	if len(boxes) != 5 {
		t.Fatalf("len(boxes) = %d, want 5", len(boxes))
	}
	for i := 0; i < 4; i++ {
		if boxes[i].Valid() {
			t.Errorf("boxes[%d] should be invalid: %+v", i, boxes[i])
		}
	}

	last := boxes[4]
	if !last.Valid() {
		t.Fatal("last box should be valid")
	}
	if last.ZIndex != 0 {
		t.Errorf("non-numeric z_index = %v, want 0", last.ZIndex)
	}
	if last.Element.Type != TypeUnknown {
		t.Errorf("untyped element Type = %q, want %q", last.Element.Type, TypeUnknown)
	}
}

func TestFromValueMissingBoundingBoxes(t *testing.T) {
	v := map[string]any{
		"page_width": 800,
		"sections": []any{
			map[string]any{"name": "Empty", "height": 300},
			map[string]any{"name": "Null", "height": 100, "bounding_boxes": nil},
		},
	}
	doc, err := FromValue(v)
	if err != nil {
		t.Fatalf("FromValue() error: %v", err)
	}
	if doc.BoxCount() != 0 {
		t.Errorf("BoxCount() = %d, want 0", doc.BoxCount())
	}
	if doc.TotalHeight() != 400 {
		t.Errorf("TotalHeight() = %v, want 400", doc.TotalHeight())
	}
}
