// Package imageio decodes the screenshots boxlens draws on.
//
// Decoding is the only step of a render that may take noticeable time, so
// [Decode] runs it off the caller's goroutine and returns as soon as the
// context is cancelled. The decoded image is returned as a value; callers
// await it before starting the synchronous draw.
//
// Supported formats are PNG, JPEG and GIF from the standard library plus
// BMP, TIFF and WebP from golang.org/x/image.
package imageio

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"strings"

	// Register decoders with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/boxlens/pkg/errors"
)

// MaxPixels bounds the decoded image area to keep a hostile upload from
// allocating gigabytes.
const MaxPixels = 100_000_000

// Decoded is a decoded image plus the name of its source format.
type Decoded struct {
	Image  image.Image
	Format string
}

// Width returns the pixel width.
func (d *Decoded) Width() int { return d.Image.Bounds().Dx() }

// Height returns the pixel height.
func (d *Decoded) Height() int { return d.Image.Bounds().Dy() }

// Decode decodes data into an image.
//
// It returns an IMAGE_DECODE error for unrecognized or corrupt input, and
// ctx.Err() if ctx is done before decoding finishes. A decode abandoned
// because of cancellation runs to completion in the background and its
// result is dropped.
func Decode(ctx context.Context, data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeImageDecode, "image data is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		dec *Decoded
		err error
	}
	ch := make(chan result, 1)
	go func() {
		dec, err := decode(data)
		ch <- result{dec, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.dec, r.err
	}
}

func decode(data []byte) (*Decoded, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "unrecognized image data")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New(errors.ErrCodeImageDecode, "image has no pixels (%dx%d)", cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, errors.New(errors.ErrCodeImageDecode, "image too large: %dx%d", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "decode %s", format)
	}
	return &Decoded{Image: img, Format: format}, nil
}

// FromDataURL extracts the payload of a base64 "data:image/...;base64,"
// URL, as produced by browsers when copying an image.
func FromDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return nil, errors.New(errors.ErrCodeImageDecode, "not a data URL")
	}
	header, payload, ok := strings.Cut(s, ",")
	if !ok {
		return nil, errors.New(errors.ErrCodeImageDecode, "data URL has no payload")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, errors.New(errors.ErrCodeImageDecode, "data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "decode data URL")
	}
	return data, nil
}
