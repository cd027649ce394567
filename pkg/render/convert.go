package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/matzehuels/boxlens/pkg/errors"
)

// Image output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

// ImageFormats is the set of raster formats Encode supports.
var ImageFormats = map[string]bool{
	FormatPNG:  true,
	FormatJPEG: true,
	FormatBMP:  true,
	FormatTIFF: true,
}

// JPEGQuality is the quality used for JPEG output.
const JPEGQuality = 90

// NormalizeFormat lowercases format and maps common aliases ("jpg", "tif").
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case "jpg":
		return FormatJPEG
	case "tif":
		return FormatTIFF
	}
	return f
}

// Encode serializes img in the given raster format.
func Encode(img image.Image, format string) ([]byte, error) {
	if img == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to encode")
	}

	var buf bytes.Buffer
	var err error
	switch NormalizeFormat(format) {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	case FormatTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported image format: %s", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return buf.Bytes(), nil
}

// MIMEType returns the media type for a format, or application/octet-stream.
func MIMEType(format string) string {
	switch NormalizeFormat(format) {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	case "json":
		return "application/json"
	}
	return "application/octet-stream"
}

// DataURL wraps encoded image bytes in a base64 data URL.
func DataURL(data []byte, format string) string {
	return "data:" + MIMEType(format) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
