// Package pipeline provides the decode → render → encode pipeline behind
// every boxlens entry point.
//
// The CLI, the HTTP API and the terminal previewer all go through this
// package, so they validate documents, resolve options and name output
// formats identically.
//
// # Stages
//
//  1. Layout: parse and validate the layout document. Document-level
//     errors stop the pipeline before any image work happens.
//  2. Decode: decode the screenshot (context-aware).
//  3. Render: draw the overlay and encode the requested formats.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Input{
//	    Image:  screenshot,
//	    Layout: layoutJSON,
//	}, pipeline.Options{
//	    ShowLabels:  true,
//	    ColorByType: true,
//	    Formats:     []string{"png"},
//	})
//	png := result.Artifacts["png"]
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlens/pkg/cache"
	"github.com/matzehuels/boxlens/pkg/errors"
	"github.com/matzehuels/boxlens/pkg/render"
	"github.com/matzehuels/boxlens/pkg/render/overlay"
)

// =============================================================================
// Formats
// =============================================================================

// Format constants for output formats.
const (
	FormatPNG  = render.FormatPNG
	FormatJPEG = render.FormatJPEG
	FormatBMP  = render.FormatBMP
	FormatTIFF = render.FormatTIFF
	FormatJSON = "json"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatPNG

// ValidFormats is the set of supported output formats: every raster
// format the encoder supports plus JSON.
var ValidFormats = func() map[string]bool {
	m := map[string]bool{FormatJSON: true}
	for f := range render.ImageFormats {
		m[f] = true
	}
	return m
}()

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(render.NormalizeFormat(f), ValidFormats); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	ShowLabels    bool     `json:"show_labels"`
	ShowSections  bool     `json:"show_sections"`
	ColorByType   bool     `json:"color_by_type"`
	LegendOnImage bool     `json:"legend_on_image,omitempty"`
	FontSize      float64  `json:"font_size,omitempty"`
	Formats       []string `json:"formats,omitempty"`

	// Refresh bypasses the cache read (the result is still written).
	Refresh bool `json:"refresh,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`

	validated bool
}

// DefaultOptions enables labels, section outlines and type coloring, and
// renders PNG.
func DefaultOptions() Options {
	return Options{
		ShowLabels:   true,
		ShowSections: true,
		ColorByType:  true,
		Formats:      []string{DefaultFormat},
	}
}

// ValidateAndSetDefaults normalizes formats and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	seen := make(map[string]bool, len(o.Formats))
	formats := o.Formats[:0:0]
	for _, f := range o.Formats {
		f = render.NormalizeFormat(f)
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	o.Formats = formats
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.FontSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "font size must not be negative, got %v", o.FontSize)
	}
	if o.FontSize == 0 {
		o.FontSize = overlay.DefaultFontSize
	}
	o.validated = true
	return nil
}

// WithFormats returns a validated copy of o that renders formats instead.
func (o Options) WithFormats(formats ...string) (Options, error) {
	o.Formats = formats
	o.validated = false
	err := o.ValidateAndSetDefaults()
	return o, err
}

// Overlay returns the drawing options.
func (o *Options) Overlay() overlay.Options {
	return overlay.Options{
		ShowLabels:   o.ShowLabels,
		ShowSections: o.ShowSections,
		ColorByType:  o.ColorByType,
		FontSize:     o.FontSize,
	}
}

// RenderKeyOpts returns cache key options for this run.
func (o *Options) RenderKeyOpts() cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		ShowLabels:    o.ShowLabels,
		ShowSections:  o.ShowSections,
		ColorByType:   o.ColorByType,
		LegendOnImage: o.LegendOnImage,
		FontSize:      o.FontSize,
		Formats:       o.Formats,
	}
}

// =============================================================================
// Results
// =============================================================================

// Input holds the raw inputs of a pipeline run.
type Input struct {
	// Image is the encoded screenshot (PNG, JPEG, GIF, BMP, TIFF or WebP).
	Image []byte
	// Layout is the layout document as JSON.
	Layout []byte
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte `json:"artifacts"`

	// Legend lists drawn element types and their swatch colors.
	Legend []overlay.LegendEntry `json:"legend"`

	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ScaleX      float64 `json:"scale_x"`
	ScaleY      float64 `json:"scale_y"`
	Drawn       int     `json:"drawn"`
	Skipped     int     `json:"skipped"`
	ImageFormat string  `json:"image_format"`

	// Stats contains timing information. Not cached.
	Stats Stats `json:"-"`

	// CacheHit reports whether the result came from the cache.
	CacheHit bool `json:"-"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Sections   int
	Boxes      int
	DecodeTime time.Duration
	RenderTime time.Duration
}
