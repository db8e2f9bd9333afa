// Package imagesrc provides a default, stdlib-only implementation of
// pkg/thumbnail.ImageSource, for callers who don't already have their own
// image-decoding pipeline. THE CORE treats image decoding as an external
// collaborator (spec §1 Non-goals); this package is a convenience
// adapter, not part of the core itself, grounded on the teacher's
// cmd/ingest cover-art handling (which likewise decoded album art outside
// the storage layer proper) but using only the standard library's
// image/jpeg and image/png decoders since none of the example repos in
// this pack import a third-party image or resize library.
package imagesrc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/devicekit/gpoddb/pkg/model"
)

// Default is the stdlib-backed ImageSource.
type Default struct{}

// New returns a Default image source.
func New() *Default { return &Default{} }

// DecodeFile decodes the image at path, scaled to width x height.
func (Default) DecodeFile(path string, width, height int) (model.DecodedPixels, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.DecodedPixels{}, fmt.Errorf("imagesrc: open %q: %w", path, err)
	}
	defer f.Close()
	return decode(f, width, height)
}

// DecodeBytes decodes an in-memory encoded image, scaled to width x
// height.
func (Default) DecodeBytes(data []byte, width, height int) (model.DecodedPixels, error) {
	return decode(bytes.NewReader(data), width, height)
}

func decode(r io.Reader, width, height int) (model.DecodedPixels, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return model.DecodedPixels{}, fmt.Errorf("imagesrc: decode: %w", err)
	}
	return resizeToRGBA(img, width, height), nil
}

// resizeToRGBA nearest-neighbour-samples img down (or up) to exactly
// width x height and returns it as a DecodedPixels RGBA buffer.
func resizeToRGBA(img image.Image, width, height int) model.DecodedPixels {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	stride := width * 4
	out := make([]byte, stride*height)

	for y := 0; y < height; y++ {
		sy := bounds.Min.Y + y*srcH/height
		for x := 0; x < width; x++ {
			sx := bounds.Min.X + x*srcW/width
			r, g, b, a := img.At(sx, sy).RGBA()
			off := y*stride + x*4
			out[off] = byte(r >> 8)
			out[off+1] = byte(g >> 8)
			out[off+2] = byte(b >> 8)
			out[off+3] = byte(a >> 8)
		}
	}

	return model.DecodedPixels{Width: width, Height: height, Stride: stride, RGBA: out}
}
