// Package fonts provides the embedded typeface used for overlay labels.
//
// The Go Regular font ships with golang.org/x/image, so labels render the
// same on every machine without depending on system fonts.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Parsed font (computed once on first access).
var (
	labelFont     *truetype.Font
	labelFontErr  error
	labelFontOnce sync.Once
)

// Label returns the parsed label font.
// The result is cached after first computation.
func Label() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = truetype.Parse(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// Face returns a new face of the label font at the given point size.
// Faces are not safe for concurrent use, so each render gets its own.
func Face(points float64) (font.Face, error) {
	f, err := Label()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    points,
		Hinting: font.HintingFull,
	}), nil
}
