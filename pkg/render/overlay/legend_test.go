package overlay

import (
	"encoding/json"
	"image/color"
	"testing"
)

func TestBuildLegend(t *testing.T) {
	opts := Options{ColorByType: true}.withDefaults()

	if got := buildLegend(nil, opts); len(got) != 0 {
		t.Errorf("buildLegend(nil) = %v, want empty", got)
	}
	if got := buildLegend([]string{"text"}, Options{}.withDefaults()); len(got) != 0 {
		t.Errorf("buildLegend without type coloring = %v, want empty", got)
	}

	got := buildLegend([]string{"map", "text"}, opts)
	if len(got) != 2 || got[0].Type != "map" || got[1].Type != "text" {
		t.Fatalf("buildLegend() = %+v", got)
	}
	if got[0].Color.A != 204 {
		t.Errorf("legend alpha = %d, want 204", got[0].Color.A)
	}
}

func TestTypeSet(t *testing.T) {
	s := newTypeSet()
	for _, typ := range []string{"b", "a", "b", "c", "a"} {
		s.add(typ)
	}
	got := s.ordered()
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("ordered() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordered() = %v, want %v", got, want)
		}
	}
}

func TestLegendEntryJSON(t *testing.T) {
	e := LegendEntry{Type: "button", Color: color.NRGBA{R: 0x10, G: 0xB9, B: 0x81, A: 0xCC}}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"button","color":"#10B981CC"}` {
		t.Errorf("json = %s", data)
	}
}

func TestDrawLegend(t *testing.T) {
	if err := DrawLegend(NewTarget(), nil, Options{}); err == nil {
		t.Error("DrawLegend on empty target should fail")
	}

	target := NewTarget()
	target.Resize(200, 100)
	if err := DrawLegend(target, nil, Options{}); err != nil {
		t.Errorf("DrawLegend(empty legend) error: %v", err)
	}

	legend := []LegendEntry{{Type: "text", Color: ColorFor("text")}}
	if err := DrawLegend(target, legend, Options{}); err != nil {
		t.Fatalf("DrawLegend() error: %v", err)
	}

	// swatch sits at (pad*2, bottom - pad - boxH + pad)
	px := rgbaAt(target, 10, 100-4-16+4+2)
	if px.A == 0 {
		t.Error("legend swatch not drawn")
	}
}
