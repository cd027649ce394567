package overlay

// Default drawing parameters.
const (
	DefaultStrokeWidth  = 2.0
	DefaultFillAlpha    = 0.1
	DefaultLegendAlpha  = 0.8
	DefaultFontSize     = 12.0
	DefaultLabelPadding = 4.0
)

// sectionDash is the on/off pattern of section outlines, in pixels.
var sectionDash = []float64{6, 4}

// Options controls what an overlay render draws.
//
// The three flags mirror the previewer's toggles. Zero-valued style fields
// take the package defaults.
type Options struct {
	ShowLabels   bool `json:"show_labels" toml:"show_labels"`
	ShowSections bool `json:"show_sections" toml:"show_sections"`
	ColorByType  bool `json:"color_by_type" toml:"color_by_type"`

	StrokeWidth  float64 `json:"stroke_width,omitempty" toml:"stroke_width"`
	FillAlpha    float64 `json:"fill_alpha,omitempty" toml:"fill_alpha"`
	LegendAlpha  float64 `json:"legend_alpha,omitempty" toml:"legend_alpha"`
	FontSize     float64 `json:"font_size,omitempty" toml:"font_size"`
	LabelPadding float64 `json:"label_padding,omitempty" toml:"label_padding"`
}

// DefaultOptions enables every overlay feature.
func DefaultOptions() Options {
	return Options{
		ShowLabels:   true,
		ShowSections: true,
		ColorByType:  true,
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = DefaultStrokeWidth
	}
	if o.FillAlpha <= 0 {
		o.FillAlpha = DefaultFillAlpha
	}
	if o.LegendAlpha <= 0 {
		o.LegendAlpha = DefaultLegendAlpha
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.LabelPadding <= 0 {
		o.LabelPadding = DefaultLabelPadding
	}
	return o
}
