package overlay

import (
	"cmp"
	"image"
	"image/color"
	"slices"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/boxlens/pkg/errors"
	"github.com/matzehuels/boxlens/pkg/fonts"
	"github.com/matzehuels/boxlens/pkg/layout"
)

var errEmptyTarget = errors.New(errors.ErrCodeInvalidInput, "render target is empty")

// DrawnBox records one box as it was painted.
type DrawnBox struct {
	Section int         `json:"section"`
	Index   int         `json:"index"` // position in the section's bounding_boxes
	Type    string      `json:"type"`
	ZIndex  float64     `json:"z_index"`
	Rect    layout.Rect `json:"rect"`
	Color   color.NRGBA `json:"-"`
}

// Result describes a completed render.
type Result struct {
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	Scale   *layout.Scale `json:"scale"`
	Legend  []LegendEntry `json:"legend"`
	Drawn   []DrawnBox    `json:"boxes"`
	Skipped int           `json:"skipped"`
}

// Render paints img and the overlay for doc onto t.
//
// The document and image are validated before t is resized; on error t is
// left exactly as it was. Malformed boxes (missing box_2d or element) are
// skipped and counted in Result.Skipped.
func Render(t *Target, img image.Image, doc *layout.Document, opts Options) (*Result, error) {
	if t == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "render target is nil")
	}
	if img == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image is nil")
	}
	opts = opts.withDefaults()

	b := img.Bounds()
	scale, err := layout.NewScale(b.Dx(), b.Dy(), doc)
	if err != nil {
		return nil, err
	}

	face, err := fonts.Face(opts.FontSize)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load label font")
	}

	t.Resize(b.Dx(), b.Dy())
	dc := t.context()
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	dc.SetFontFace(face)

	r := &renderer{dc: dc, face: face, opts: opts, scale: scale}
	res := &Result{Width: b.Dx(), Height: b.Dy(), Scale: scale}
	used := newTypeSet()

	for i, sec := range doc.Sections {
		if opts.ShowSections {
			r.drawSection(i, sec)
		}
		for _, idx := range zOrder(sec.BoundingBoxes) {
			bb := sec.BoundingBoxes[idx]
			if !bb.Valid() {
				res.Skipped++
				continue
			}
			c := resolveColor(bb.Element.Type, opts)
			rect := scale.Rect(i, bb.Box)
			r.drawBox(rect, c)
			if opts.ShowLabels {
				r.drawLabel(rect, bb.Element.Type, c)
			}
			used.add(bb.Element.Type)
			res.Drawn = append(res.Drawn, DrawnBox{
				Section: i,
				Index:   idx,
				Type:    bb.Element.Type,
				ZIndex:  bb.ZIndex,
				Rect:    rect,
				Color:   c,
			})
		}
	}

	res.Legend = buildLegend(used.ordered(), opts)
	return res, nil
}

// zOrder returns the indexes of boxes sorted by ascending z_index.
// Equal keys keep their input order.
func zOrder(boxes []layout.BoundingBox) []int {
	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(boxes[a].ZIndex, boxes[b].ZIndex)
	})
	return order
}

type renderer struct {
	dc    *gg.Context
	face  font.Face
	opts  Options
	scale *layout.Scale
}

func (r *renderer) drawSection(i int, sec layout.Section) {
	dc := r.dc
	top := r.scale.SectionTops[i]
	height := r.scale.SectionHeight(i)

	dc.Push()
	defer dc.Pop()

	dc.SetColor(SectionColor)
	dc.SetLineWidth(r.opts.StrokeWidth)
	dc.SetDash(sectionDash...)
	dc.DrawRectangle(0, top, float64(dc.Width()), height)
	dc.Stroke()

	if sec.Name != "" {
		pad := r.opts.LabelPadding
		dc.DrawStringAnchored(sec.Name, pad, top+pad, 0, 1)
	}
}

func (r *renderer) drawBox(rect layout.Rect, c color.NRGBA) {
	dc := r.dc

	dc.SetColor(c)
	dc.SetLineWidth(r.opts.StrokeWidth)
	dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
	dc.Stroke()

	dc.SetColor(withAlpha(c, r.opts.FillAlpha))
	dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
	dc.Fill()
}

// drawLabel puts the element type in a filled tag sitting on the box's
// top-left corner.
func (r *renderer) drawLabel(rect layout.Rect, text string, c color.NRGBA) {
	dc := r.dc
	pad := r.opts.LabelPadding

	w, h := dc.MeasureString(text)
	bgW := w + 2*pad
	bgH := h + 2*pad
	bgY := rect.Y - bgH

	dc.SetColor(c)
	dc.DrawRectangle(rect.X, bgY, bgW, bgH)
	dc.Fill()

	dc.SetColor(LabelTextColor)
	dc.DrawStringAnchored(text, rect.X+pad, bgY+pad, 0, 1)
}
