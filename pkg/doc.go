// Package pkg provides the core libraries for boxlens layout overlays.
//
// # Overview
//
// boxlens draws the bounding boxes of a layout document over the screenshot
// they describe. The pkg directory is organized into:
//
//  1. [layout] - Layout document model, decoding and the pixel scaler
//  2. [render/overlay] - Drawing boxes, labels, section outlines and legends
//  3. [render] - Raster encoders and data URLs
//  4. [imageio] - Context-aware screenshot decoding
//  5. [pipeline] - Orchestration (layout → decode → render) with caching
//  6. [session] - Long-lived render sessions for interactive surfaces
//  7. [cache], [observability], [errors], [fonts], [buildinfo] - Infrastructure
//
// # Data flow
//
//	layout JSON ──► [layout] Document ──► [layout] Scale
//	                                          │
//	screenshot ──► [imageio] Decode ──► [render/overlay] Render ──► [render] Encode
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Input{
//	    Image:  screenshot,
//	    Layout: layoutJSON,
//	}, pipeline.DefaultOptions())
//	os.WriteFile("overlay.png", res.Artifacts["png"], 0o644)
package pkg
