// Package thumbnail prepares asset preview images for the description model.
package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// ErrNotFound is returned when the thumbnail file does not exist.
var ErrNotFound = errors.New("thumbnail not found")

// Image is a decoded thumbnail together with the bytes it came from.
type Image struct {
	Raw    []byte
	Format string // "png", "jpeg", "tga", "webp"
	Pixels *image.NRGBA
}

// Load reads and decodes a png, jpeg, tga or webp file.
func Load(path string) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("thumbnail: read %s: %w", path, err)
	}
	img, format, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: decode %s: %w", path, err)
	}
	return &Image{Raw: raw, Format: format, Pixels: toNRGBA(img)}, nil
}

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte{0xff, 0xd8, 0xff}
)

// sniff names the format from the leading bytes. TGA has no signature,
// so anything unrecognized is treated as TGA.
func sniff(raw []byte) string {
	switch {
	case bytes.HasPrefix(raw, pngMagic):
		return "png"
	case bytes.HasPrefix(raw, jpegMagic):
		return "jpeg"
	case len(raw) >= 12 && string(raw[0:4]) == "RIFF" && string(raw[8:12]) == "WEBP":
		return "webp"
	default:
		return "tga"
	}
}

// decode dispatches on the sniffed format. The tga package is not
// registered with image.Decode: it accepts any input and would shadow
// every other format.
func decode(raw []byte) (image.Image, string, error) {
	format := sniff(raw)
	r := bytes.NewReader(raw)
	var img image.Image
	var err error
	switch format {
	case "png":
		img, err = png.Decode(r)
	case "jpeg":
		img, err = jpeg.Decode(r)
	case "webp":
		img, err = webp.Decode(r)
	default:
		img, err = tga.Decode(r)
	}
	return img, format, err
}

// toNRGBA converts any image to NRGBA format. Opaque sources end up with
// alpha 255.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
