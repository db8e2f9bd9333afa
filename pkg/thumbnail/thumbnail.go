// Package thumbnail implements the thumbnail engine: decoding source images
// to a pixel buffer, packing pixels into the device's on-disk formats, slot
// allocation inside rolling `.ithmb` blob files, and in-place compaction
// (spec §4.9, §4.10). It is grounded on the original C ithumb-writer.c
// (packing routines pack_RGB_565/pack_RGB_555/pack_rec_RGB_555/pack_UYVY and
// ithmb_rearrange_thumbnail_file), reworked as idiomatic Go operating over
// the devicefs.FileStore abstraction instead of raw file descriptors.
package thumbnail

import (
	"errors"

	"github.com/devicekit/gpoddb/pkg/model"
)

// ErrMixedSlotSizes is the "in-memory-corrupt" condition of spec §7: an
// .ithmb file cannot be compacted or written if its slots are not all the
// same size.
var ErrMixedSlotSizes = errors.New("thumbnail: mixed slot sizes in one .ithmb file")

// ErrUnsupportedFormat is returned for a PixelFormat the packer does not
// implement.
var ErrUnsupportedFormat = errors.New("thumbnail: unsupported pixel format")

// ImageSource is the external collaborator that decodes an image to an
// RGB/RGBA pixel buffer at a requested size (spec §1, §6): "the core
// consumes an image source that yields RGB/RGBA pixels at a requested
// size." THE CORE never decodes JPEG/PNG itself; pkg/imagesrc provides a
// default stdlib-based adapter for callers who don't supply their own.
type ImageSource interface {
	// DecodeFile decodes the image at path, scaled to width x height.
	DecodeFile(path string, width, height int) (model.DecodedPixels, error)
	// DecodeBytes decodes an in-memory encoded image, scaled to width x
	// height.
	DecodeBytes(data []byte, width, height int) (model.DecodedPixels, error)
}

// bytesPerPixel returns the packed size of one pixel for format, or 0 for
// an unrecognised value.
func bytesPerPixel(format model.PixelFormat) int {
	switch format {
	case model.PixelRGB565LE, model.PixelRGB565BE,
		model.PixelRGB555LE, model.PixelRGB555BE,
		model.PixelRGB555RearrangedLE, model.PixelRGB555RearrangedBE:
		return 2
	case model.PixelRGB888:
		return 3
	case model.PixelUYVY:
		return 2
	default:
		return 0
	}
}

// SlotSize returns the fixed byte size of one packed slot for format,
// including its declared per-slot padding (spec §4.9 step 4, §6 "Artwork
// format descriptor").
func SlotSize(format model.ArtworkFormat) int {
	bpp := bytesPerPixel(format.Format)
	pixelBytes := int(format.Width) * int(format.Height) * bpp
	if format.Padding > pixelBytes {
		return format.Padding
	}
	return pixelBytes
}
