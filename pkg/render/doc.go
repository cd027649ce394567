// Package render provides output encoding for rendered overlays.
//
// # Overview
//
// The drawing itself lives in the [overlay] subpackage. This package turns
// the finished raster into bytes in a standard image format, or into a
// data URL that can be pasted into a browser or an issue tracker.
//
//	data, err := render.Encode(target.Image(), render.FormatPNG)
//	url := render.DataURL(data, render.FormatPNG)
//
// [overlay]: github.com/matzehuels/boxlens/pkg/render/overlay
package render
