package thumbnail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/HugoSmits86/nativewebp"
)

// Output encodings.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Options control how a thumbnail is sent.
type Options struct {
	MaxEdge int    // 0 keeps the original size
	Format  string // FormatPNG (default) or FormatWebP
}

// DataURL returns img as a base64 data URL. A png source that needs no
// resizing is passed through byte for byte.
func DataURL(img *Image, opts Options) (string, error) {
	format := opts.Format
	if format == "" {
		format = FormatPNG
	}

	pix := Fit(img.Pixels, opts.MaxEdge)
	if pix == img.Pixels && img.Format == format {
		return encodeURL(format, img.Raw), nil
	}

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := png.Encode(&buf, pix); err != nil {
			return "", fmt.Errorf("thumbnail: png encode: %w", err)
		}
	case FormatWebP:
		if err := nativewebp.Encode(&buf, pix, nil); err != nil {
			return "", fmt.Errorf("thumbnail: webp encode: %w", err)
		}
	default:
		return "", fmt.Errorf("thumbnail: unsupported format %q", format)
	}
	return encodeURL(format, buf.Bytes()), nil
}

// LoadDataURL loads path and encodes it with opts.
func LoadDataURL(path string, opts Options) (string, error) {
	img, err := Load(path)
	if err != nil {
		return "", err
	}
	return DataURL(img, opts)
}

func encodeURL(format string, data []byte) string {
	return fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))
}
