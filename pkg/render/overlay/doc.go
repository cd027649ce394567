// Package overlay draws layout bounding boxes on top of a screenshot.
//
// # Rendering
//
// [Render] takes a decoded image, a [layout.Document] and display [Options]
// and paints, in order:
//
//  1. the base image, filling a [Target] resized to the image's pixel size
//  2. for each section: an optional dashed outline with the section name
//  3. the section's boxes in ascending z_index order (stable for ties):
//     a solid border, a translucent fill and an optional type label
//
// The document is validated before the target is touched, so a failed
// render never leaves a half-drawn surface behind.
//
//	t := overlay.NewTarget()
//	res, err := overlay.Render(t, img, doc, overlay.Options{
//	    ShowLabels:   true,
//	    ShowSections: true,
//	    ColorByType:  true,
//	})
//	t.EncodePNG(w)
//
// # Colors and Legend
//
// With ColorByType set, each element type maps to a fixed palette color
// ([ColorFor]); unknown types fall back to [FallbackColor]. Otherwise every
// box uses [DefaultColor]. The [Result] carries a legend listing each drawn
// type once, in the order it was first drawn.
package overlay
