package model

// ThumbnailKind discriminates the tagged union of thumbnail shapes (spec
// §3 "Thumbnail"). Kept as an explicit enum rather than erasing it behind
// the Thumbnail interface alone so a type switch can be made exhaustive
// and the compiler flags missing cases when a new shape is added (spec §9
// "Tagged unions for thumbnails and smart-rule payloads").
type ThumbnailKind int

const (
	ThumbnailSourceFile ThumbnailKind = iota
	ThumbnailMemoryEncoded
	ThumbnailMemoryDecoded
	ThumbnailDevice
)

// Thumbnail is the sealed interface implemented by the four thumbnail
// shapes. Only types in this package implement it.
type Thumbnail interface {
	Kind() ThumbnailKind
	// Rotation is the counterclockwise rotation, in degrees (0/90/180/270),
	// applied when this thumbnail is packed (spec §4.9).
	Rotation() int
	sealedThumbnail()
}

type thumbnailBase struct {
	rotationDeg int
}

func (t thumbnailBase) Rotation() int  { return t.rotationDeg }
func (thumbnailBase) sealedThumbnail() {}

// SourceFileThumbnail is a filesystem path to an image to be decoded at
// write time (spec §3 shape 1).
type SourceFileThumbnail struct {
	thumbnailBase
	Path string
}

// NewSourceFileThumbnail returns a Thumbnail backed by an on-disk image
// file, not yet decoded.
func NewSourceFileThumbnail(path string, rotationDeg int) *SourceFileThumbnail {
	return &SourceFileThumbnail{thumbnailBase: thumbnailBase{rotationDeg}, Path: path}
}

func (*SourceFileThumbnail) Kind() ThumbnailKind { return ThumbnailSourceFile }

// MemoryEncodedThumbnail is an in-memory buffer holding an encoded image
// (JPEG/PNG bytes), not yet decoded (spec §3 shape 2).
type MemoryEncodedThumbnail struct {
	thumbnailBase
	Data []byte
}

// NewMemoryEncodedThumbnail returns a Thumbnail backed by already-loaded
// encoded image bytes.
func NewMemoryEncodedThumbnail(data []byte, rotationDeg int) *MemoryEncodedThumbnail {
	return &MemoryEncodedThumbnail{thumbnailBase: thumbnailBase{rotationDeg}, Data: data}
}

func (*MemoryEncodedThumbnail) Kind() ThumbnailKind { return ThumbnailMemoryEncoded }

// DecodedPixels is a decoded RGB/RGBA pixel buffer at a known size,
// produced by an external ImageSource (spec §1, §6).
type DecodedPixels struct {
	Width, Height int
	// Stride is bytes per row.
	Stride int
	// RGBA holds 4 bytes per pixel (R,G,B,A), Stride-aligned rows.
	RGBA []byte
}

// MemoryDecodedThumbnail wraps an already-decoded pixel buffer (spec §3
// shape 3).
type MemoryDecodedThumbnail struct {
	thumbnailBase
	Pixels DecodedPixels
}

// NewMemoryDecodedThumbnail returns a Thumbnail backed by decoded pixels.
func NewMemoryDecodedThumbnail(px DecodedPixels, rotationDeg int) *MemoryDecodedThumbnail {
	return &MemoryDecodedThumbnail{thumbnailBase: thumbnailBase{rotationDeg}, Pixels: px}
}

func (*MemoryDecodedThumbnail) Kind() ThumbnailKind { return ThumbnailMemoryDecoded }

// DeviceThumbnailItem is one packed slot belonging to a device-resident
// thumbnail (spec §3 shape 4).
type DeviceThumbnailItem struct {
	Format *ArtworkFormat
	// Filename is of the form ":FNN_MM.ithmb".
	Filename string
	Offset   uint32
	Size     uint32
	Width    int16
	Height   int16
	HorizontalPadding int16
	VerticalPadding   int16
}

// DeviceThumbnail is a list of per-format items already transferred to the
// device (spec §3 shape 4). This is the only shape allowed to persist past
// a write: "at write time, all non-device shapes are converted to the
// on-device shape" (spec §3 invariant).
type DeviceThumbnail struct {
	thumbnailBase
	Items []DeviceThumbnailItem
}

// NewDeviceThumbnail returns an empty on-device thumbnail.
func NewDeviceThumbnail() *DeviceThumbnail {
	return &DeviceThumbnail{}
}

func (*DeviceThumbnail) Kind() ThumbnailKind { return ThumbnailDevice }

// ItemForFormat returns the item matching format's correlation id, if any.
func (d *DeviceThumbnail) ItemForFormat(format *ArtworkFormat) (*DeviceThumbnailItem, bool) {
	for i := range d.Items {
		if d.Items[i].Format != nil && d.Items[i].Format.CorrelationID == format.CorrelationID {
			return &d.Items[i], true
		}
	}
	return nil, false
}
