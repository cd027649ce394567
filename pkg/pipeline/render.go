package pipeline

import (
	"encoding/json"
	"image"

	"github.com/matzehuels/boxlens/pkg/errors"
	"github.com/matzehuels/boxlens/pkg/layout"
	"github.com/matzehuels/boxlens/pkg/render"
	"github.com/matzehuels/boxlens/pkg/render/overlay"
)

// Render draws the overlay for doc onto t and encodes every requested
// format. opts must have been validated.
func Render(t *overlay.Target, img image.Image, doc *layout.Document, opts Options) (map[string][]byte, *overlay.Result, error) {
	ovOpts := opts.Overlay()

	res, err := overlay.Render(t, img, doc, ovOpts)
	if err != nil {
		return nil, nil, err
	}
	if opts.LegendOnImage {
		if err := overlay.DrawLegend(t, res.Legend, ovOpts); err != nil {
			return nil, nil, err
		}
	}

	artifacts, err := Encode(t, res, opts.Formats)
	if err != nil {
		return nil, nil, err
	}
	return artifacts, res, nil
}

// Encode serializes a rendered target in each format. The json format
// encodes the render result instead of pixels.
func Encode(t *overlay.Target, res *overlay.Result, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var data []byte
		var err error
		switch format {
		case FormatJSON:
			data, err = json.MarshalIndent(res, "", "  ")
			if err != nil {
				err = errors.Wrap(errors.ErrCodeInternal, err, "encode json")
			}
		default:
			data, err = render.Encode(t.Image(), format)
		}
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
