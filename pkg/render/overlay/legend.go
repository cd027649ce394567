package overlay

import (
	"encoding/json"
	"image/color"

	"github.com/matzehuels/boxlens/pkg/errors"
	"github.com/matzehuels/boxlens/pkg/fonts"
)

// LegendEntry pairs a drawn element type with its swatch color.
type LegendEntry struct {
	Type  string
	Color color.NRGBA
}

// MarshalJSON encodes the color as a hex string.
func (e LegendEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Color string `json:"color"`
	}{e.Type, Hex(e.Color)})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (e *LegendEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  string `json:"type"`
		Color string `json:"color"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c, err := ParseHex(raw.Color)
	if err != nil {
		return err
	}
	e.Type, e.Color = raw.Type, c
	return nil
}

// buildLegend returns one entry per used type, in the given order. The
// legend is empty unless boxes are colored by type.
func buildLegend(types []string, opts Options) []LegendEntry {
	if !opts.ColorByType || len(types) == 0 {
		return nil
	}
	entries := make([]LegendEntry, len(types))
	for i, typ := range types {
		entries[i] = LegendEntry{
			Type:  typ,
			Color: withAlpha(ColorFor(typ), opts.LegendAlpha),
		}
	}
	return entries
}

// typeSet collects distinct element types in first-seen order.
type typeSet struct {
	seen  map[string]bool
	order []string
}

func newTypeSet() *typeSet {
	return &typeSet{seen: make(map[string]bool)}
}

func (s *typeSet) add(typ string) {
	if s.seen[typ] {
		return
	}
	s.seen[typ] = true
	s.order = append(s.order, typ)
}

func (s *typeSet) ordered() []string {
	return s.order
}

// DrawLegend paints legend as a stack of swatches in the bottom-left
// corner of t. It is a no-op for an empty legend.
func DrawLegend(t *Target, legend []LegendEntry, opts Options) error {
	if t == nil || t.Empty() {
		return errEmptyTarget
	}
	if len(legend) == 0 {
		return nil
	}
	opts = opts.withDefaults()

	face, err := fonts.Face(opts.FontSize)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "load label font")
	}

	dc := t.context()
	dc.Push()
	defer dc.Pop()
	dc.SetFontFace(face)

	pad := opts.LabelPadding
	swatch := opts.FontSize

	var textW float64
	for _, e := range legend {
		if w, _ := dc.MeasureString(e.Type); w > textW {
			textW = w
		}
	}
	rowH := swatch + pad
	boxW := pad + swatch + pad + textW + pad
	boxH := pad + float64(len(legend))*rowH
	x := pad
	y := float64(dc.Height()) - boxH - pad

	dc.SetRGBA(1, 1, 1, 0.85)
	dc.DrawRectangle(x, y, boxW, boxH)
	dc.Fill()

	for i, e := range legend {
		rowY := y + pad + float64(i)*rowH
		dc.SetColor(e.Color)
		dc.DrawRectangle(x+pad, rowY, swatch, swatch)
		dc.Fill()

		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawStringAnchored(e.Type, x+pad+swatch+pad, rowY+swatch/2, 0, 0.5)
	}
	return nil
}
