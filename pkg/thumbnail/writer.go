package thumbnail

import (
	"fmt"

	"github.com/devicekit/gpoddb/pkg/devicefs"
	"github.com/devicekit/gpoddb/pkg/model"
)

// maxFileSize is the 256 MB per-file cap (spec §4.9 "Caps each file at
// 256 MB. On cap, closes and rolls MM.").
const maxFileSize = 256 * 1024 * 1024

// placeholderPixels is the built-in "?" thumbnail substituted when
// decoding fails (spec §4.9 "If decoding fails, the engine substitutes a
// built-in placeholder bitmap"). It is a solid mid-grey square; devices
// render it as an obvious decode failure without crashing the writer.
func placeholderPixels(width, height int) model.DecodedPixels {
	stride := width * 4
	buf := make([]byte, stride*height)
	for i := 0; i < len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = 0x80, 0x80, 0x80, 0xff
	}
	return model.DecodedPixels{Width: width, Height: height, Stride: stride, RGBA: buf}
}

// Writer packs artwork for one artwork-format descriptor into a rolling
// set of FNN_MM.ithmb files (spec §4.9). One Writer exists per supported
// format for the duration of a database write.
type Writer struct {
	fs       devicefs.FileStore
	dir      string
	format   model.ArtworkFormat
	slotSize int

	fileIndex int
	current   devicefs.AppendFile
}

// NewWriter opens (lazily, on first Write) the writer for format under
// dir.
func NewWriter(fs devicefs.FileStore, dir string, format model.ArtworkFormat) *Writer {
	return &Writer{fs: fs, dir: dir, format: format, slotSize: SlotSize(format)}
}

func (w *Writer) filename() string {
	return fmt.Sprintf("F%02d_%02d.ithmb", w.format.CorrelationID, w.fileIndex)
}

func (w *Writer) path() string {
	return w.dir + "/" + w.filename()
}

func (w *Writer) ensureOpen() error {
	if w.current != nil {
		return nil
	}
	f, err := w.fs.OpenAppend(w.path())
	if err != nil {
		return fmt.Errorf("open %q for append: %w", w.path(), err)
	}
	w.current = f
	return nil
}

// roll closes the current file (if any) and advances to the next index.
func (w *Writer) roll() error {
	if w.current != nil {
		if err := w.current.Close(); err != nil {
			return err
		}
		w.current = nil
	}
	w.fileIndex++
	return nil
}

// Pack packs px into this format's canvas (applying rotation per the
// thumbnail's rotation field) and appends it, padded to SlotSize, to the
// current (possibly freshly-rolled) file. It returns the item describing
// where the slot landed.
func (w *Writer) Pack(px model.DecodedPixels, rotationDeg int, centerForPhoto bool) (model.DeviceThumbnailItem, error) {
	px = rotate(px, rotationDeg)

	hPad, vPad := 0, 0
	if centerForPhoto {
		hPad = (int(w.format.Width) - px.Width) / 2
		vPad = (int(w.format.Height) - px.Height) / 2
		if hPad < 0 {
			hPad = 0
		}
		if vPad < 0 {
			vPad = 0
		}
	}

	packed, err := PackPixels(px, w.format, hPad, vPad)
	if err != nil {
		return model.DeviceThumbnailItem{}, err
	}

	if err := w.ensureOpen(); err != nil {
		return model.DeviceThumbnailItem{}, err
	}
	if w.current.Offset()+int64(w.slotSize) > maxFileSize {
		if err := w.roll(); err != nil {
			return model.DeviceThumbnailItem{}, err
		}
		if err := w.ensureOpen(); err != nil {
			return model.DeviceThumbnailItem{}, err
		}
	}

	offset := uint32(w.current.Offset())
	if _, err := w.current.Write(packed); err != nil {
		return model.DeviceThumbnailItem{}, fmt.Errorf("write slot to %q: %w", w.path(), err)
	}
	if pad := w.slotSize - len(packed); pad > 0 {
		if _, err := w.current.Write(make([]byte, pad)); err != nil {
			return model.DeviceThumbnailItem{}, fmt.Errorf("pad slot in %q: %w", w.path(), err)
		}
	}

	return model.DeviceThumbnailItem{
		Format:            &w.format,
		Filename:          ":" + w.filename(),
		Offset:            offset,
		Size:              uint32(len(packed)),
		Width:             w.format.Width,
		Height:            w.format.Height,
		HorizontalPadding: int16(hPad),
		VerticalPadding:   int16(vPad),
	}, nil
}

// Close closes the current file, unlinking it if nothing was ever
// written to it (spec §5 "closed (and unlinked if empty) on
// destruction").
func (w *Writer) Close() error {
	if w.current == nil {
		return nil
	}
	empty := w.current.Offset() == 0
	path := w.path()
	if err := w.current.Close(); err != nil {
		return err
	}
	w.current = nil
	if empty {
		return w.fs.Remove(path)
	}
	return nil
}

// rotate applies a 0/90/180/270 degree counter-clockwise rotation to px,
// returning px unchanged for 0 (spec §4.9 step 1).
func rotate(px model.DecodedPixels, deg int) model.DecodedPixels {
	switch ((deg % 360) + 360) % 360 {
	case 90:
		return rotate90(px)
	case 180:
		return rotate180(px)
	case 270:
		return rotate90(rotate180(px))
	default:
		return px
	}
}

func rotate90(px model.DecodedPixels) model.DecodedPixels {
	w, h := px.Height, px.Width
	stride := w * 4
	out := make([]byte, stride*h)
	for y := 0; y < px.Height; y++ {
		for x := 0; x < px.Width; x++ {
			r, g, b, a := pixelAt(px, x, y)
			nx, ny := y, px.Width-1-x
			off := ny*stride + nx*4
			out[off], out[off+1], out[off+2], out[off+3] = r, g, b, a
		}
	}
	return model.DecodedPixels{Width: w, Height: h, Stride: stride, RGBA: out}
}

func rotate180(px model.DecodedPixels) model.DecodedPixels {
	w, h := px.Width, px.Height
	stride := w * 4
	out := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := pixelAt(px, x, y)
			nx, ny := w-1-x, h-1-y
			off := ny*stride + nx*4
			out[off], out[off+1], out[off+2], out[off+3] = r, g, b, a
		}
	}
	return model.DecodedPixels{Width: w, Height: h, Stride: stride, RGBA: out}
}
