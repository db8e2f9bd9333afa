package thumbnail

import (
	"encoding/binary"

	"github.com/devicekit/gpoddb/pkg/model"
)

// PackPixels converts a decoded RGBA buffer into the on-disk byte layout
// format describes, placing it at (hPad, vPad) within the format's
// width x height canvas (spec §4.9 steps 1-3). The returned slice is
// exactly format.Width*format.Height*bytesPerPixel(format.Format) bytes,
// zero everywhere the source image doesn't cover; callers append any
// additional format.Padding bytes themselves (spec §4.9 step 4).
func PackPixels(px model.DecodedPixels, format model.ArtworkFormat, hPad, vPad int) ([]byte, error) {
	switch format.Format {
	case model.PixelRGB565LE:
		return packRGB565(px, format, hPad, vPad, binary.LittleEndian), nil
	case model.PixelRGB565BE:
		return packRGB565(px, format, hPad, vPad, binary.BigEndian), nil
	case model.PixelRGB555LE:
		return packRGB555(px, format, hPad, vPad, binary.LittleEndian), nil
	case model.PixelRGB555BE:
		return packRGB555(px, format, hPad, vPad, binary.BigEndian), nil
	case model.PixelRGB555RearrangedLE:
		return packRearrangedRGB555(px, format, hPad, vPad, binary.LittleEndian), nil
	case model.PixelRGB555RearrangedBE:
		return packRearrangedRGB555(px, format, hPad, vPad, binary.BigEndian), nil
	case model.PixelRGB888:
		return packRGB888(px, format, hPad, vPad), nil
	case model.PixelUYVY:
		return packUYVY(px, format, hPad, vPad), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// packRGB565 mirrors the original pack_RGB_565: each pixel's 8-bit R/G/B
// channels are truncated to 5/6/5 bits and written as one uint16 per the
// format's declared byte order (grounded on ithumb-writer.c pack_RGB_565).
func packRGB565(px model.DecodedPixels, format model.ArtworkFormat, hPad, vPad int, order binary.ByteOrder) []byte {
	w, h := int(format.Width), int(format.Height)
	out := make([]byte, w*h*2)
	for y := 0; y < px.Height; y++ {
		line := (y + vPad) * w
		for x := 0; x < px.Width; x++ {
			r, g, b, _ := pixelAt(px, x, y)
			v := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
			pos := (line + x + hPad) * 2
			if pos+2 <= len(out) {
				order.PutUint16(out[pos:], v)
			}
		}
	}
	return out
}

// packRGB555 mirrors pack_RGB_555: 5/5/5 bits per channel plus a fixed
// high alpha bit ("I'm not sure if the highest bit really is the alpha
// channel. For now I'm just setting this bit because that's what I have
// seen." -- ithumb-writer.c).
func packRGB555(px model.DecodedPixels, format model.ArtworkFormat, hPad, vPad int, order binary.ByteOrder) []byte {
	w, h := int(format.Width), int(format.Height)
	out := make([]byte, w*h*2)
	for y := 0; y < px.Height; y++ {
		line := (y + vPad) * w
		for x := 0; x < px.Width; x++ {
			r, g, b, _ := pixelAt(px, x, y)
			v := uint16(1)<<15 | uint16(r>>3)<<10 | uint16(g>>3)<<5 | uint16(b>>3)
			pos := (line + x + hPad) * 2
			if pos+2 <= len(out) {
				order.PutUint16(out[pos:], v)
			}
		}
	}
	return out
}

// packRearrangedRGB555 packs RGB555 exactly as packRGB555, then reorders
// the square canvas into the recursive quad-tree raster traversal one
// particular device model expects (grounded on derange_pixels /
// pack_rec_RGB_555 in ithumb-writer.c).
func packRearrangedRGB555(px model.DecodedPixels, format model.ArtworkFormat, hPad, vPad int, order binary.ByteOrder) []byte {
	flat := packRGB555(px, format, hPad, vPad, order)
	w, h := int(format.Width), int(format.Height)
	if w != h || w == 0 {
		return flat
	}
	deranged := make([]byte, len(flat))
	derangePixels(deranged, flat, w, h, w, 0, 0)
	return deranged
}

// derangePixels is a direct port of the C recursion: it walks the
// destination raster in row-major order and writes into dst following a
// quad-tree split (top-left, bottom-left, top-right, bottom-right at each
// level), 2 bytes per pixel.
func derangePixels(dst, src []byte, width, height, rowStride, dstOff, srcOff int) {
	if width == 1 {
		copy(dst[dstOff*2:dstOff*2+2], src[srcOff*2:srcOff*2+2])
		return
	}
	half := width / 2
	derangePixels(dst, src, half, half, rowStride, dstOff, srcOff)
	derangePixels(dst, src, half, half, rowStride, dstOff+half*half, srcOff+(height/2)*rowStride)
	derangePixels(dst, src, half, half, rowStride, dstOff+2*half*half, srcOff+half)
	derangePixels(dst, src, half, half, rowStride, dstOff+3*half*half, srcOff+(height/2)*rowStride+half)
}

// packRGB888 packs 8-bit-per-channel RGB triples with no byte-order
// variant (there is no BE/LE split for this format in the enum).
func packRGB888(px model.DecodedPixels, format model.ArtworkFormat, hPad, vPad int) []byte {
	w, h := int(format.Width), int(format.Height)
	out := make([]byte, w*h*3)
	for y := 0; y < px.Height; y++ {
		line := (y + vPad) * w
		for x := 0; x < px.Width; x++ {
			r, g, b, _ := pixelAt(px, x, y)
			pos := (line + x + hPad) * 3
			if pos+3 <= len(out) {
				out[pos] = r
				out[pos+1] = g
				out[pos+2] = b
			}
		}
	}
	return out
}

// packUYVY packs 4:2:2 chroma-subsampled YUV pairs, two pixels per 4
// bytes (U,Y0,V,Y1), used by one 6th-generation photo format (grounded on
// pack_UYVY in ithumb-writer.c, adapted from the GPixPod project's
// imgconvert.c per that file's own comment).
func packUYVY(px model.DecodedPixels, format model.ArtworkFormat, hPad, vPad int) []byte {
	w, h := int(format.Width), int(format.Height)
	out := make([]byte, w*h*2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x += 2 {
			r0, g0, b0, _ := pixelAt(px, x-hPad, y-vPad)
			r1, g1, b1, _ := pixelAt(px, x+1-hPad, y-vPad)
			y0 := rgbToY(r0, g0, b0)
			y1 := rgbToY(r1, g1, b1)
			u := rgbToU(r0, g0, b0)
			v := rgbToV(r0, g0, b0)
			pos := (y*w + x) * 2
			if pos+4 <= len(out) {
				out[pos] = u
				out[pos+1] = y0
				out[pos+2] = v
				out[pos+3] = y1
			}
		}
	}
	return out
}

func rgbToY(r, g, b byte) byte {
	return clamp8(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
}
func rgbToU(r, g, b byte) byte {
	return clamp8(128 - 0.168736*float64(r) - 0.331264*float64(g) + 0.5*float64(b))
}
func rgbToV(r, g, b byte) byte {
	return clamp8(128 + 0.5*float64(r) - 0.418688*float64(g) - 0.081312*float64(b))
}

func clamp8(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// pixelAt returns the RGB channels at (x, y) in px, or zeroes if out of
// range (used when UYVY sampling reaches just past the padded edge).
func pixelAt(px model.DecodedPixels, x, y int) (r, g, b, a byte) {
	if x < 0 || y < 0 || x >= px.Width || y >= px.Height {
		return 0, 0, 0, 0
	}
	off := y*px.Stride + x*4
	if off+4 > len(px.RGBA) {
		return 0, 0, 0, 0
	}
	return px.RGBA[off], px.RGBA[off+1], px.RGBA[off+2], px.RGBA[off+3]
}
