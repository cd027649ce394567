package cli

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"
)

// halfBlock paints the top pixel in the foreground and the bottom pixel in
// the background, so each terminal cell shows two pixel rows.
const halfBlock = "▀"

// previewSize fits an image of w×h pixels into cols×rows terminal cells,
// keeping the aspect ratio. The returned height is in pixels (two per row).
func previewSize(w, h, cols, rows int) (int, int) {
	if w <= 0 || h <= 0 || cols <= 0 || rows <= 0 {
		return 0, 0
	}
	pw := cols
	ph := pw * h / w
	if ph > rows*2 {
		ph = rows * 2
		pw = ph * w / h
	}
	return max(pw, 1), max(ph, 1)
}

// previewBlocks renders img as colored half-block characters.
func previewBlocks(img image.Image, cols, rows int) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	w, h := previewSize(b.Dx(), b.Dy(), cols, rows)
	if w == 0 {
		return ""
	}
	if h%2 == 1 {
		h++
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			style := lipgloss.NewStyle().
				Foreground(termColor(dst.RGBAAt(x, y))).
				Background(termColor(dst.RGBAAt(x, y+1)))
			sb.WriteString(style.Render(halfBlock))
		}
		if y+2 < h {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func termColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

func rgba(c color.NRGBA) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
