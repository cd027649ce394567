// Package layout models the page-layout documents boxlens overlays onto
// screenshots and maps their logical coordinates onto image pixels.
//
// # Document Model
//
// A [Document] describes a page authored against a logical width
// (page_width). The page is a vertical stack of [Section] values, each with
// a logical height; sections stack without gaps. Every section holds
// [BoundingBox] entries whose box_2d coordinates are relative to the
// section's own top-left corner:
//
//	{
//	  "page_width": 1000,
//	  "sections": [
//	    {
//	      "name": "Hero",
//	      "height": 500,
//	      "bounding_boxes": [
//	        {"box_2d": {"left": 0, "top": 0, "width": 500, "height": 100},
//	         "element": {"type": "text"}, "z_index": 1}
//	      ]
//	    }
//	  ]
//	}
//
// Documents arrive either as raw JSON ([ReadJSON]) or as a generic value
// already decoded by the caller ([FromValue]). Document-level problems are
// reported as INVALID_LAYOUT errors; individual malformed boxes are kept
// with a nil Box or Element so that renderers can skip them.
//
// # Scaling
//
// [NewScale] derives independent horizontal and vertical scale factors from
// the target image size and precomputes each section's pixel offset:
//
//	s, err := layout.NewScale(2000, 1000, doc)
//	r := s.Rect(0, doc.Sections[0].BoundingBoxes[0].Box)
//	// r == Rect{X: 0, Y: 0, Width: 1000, Height: 200}
package layout
