package model

import "time"

// Artwork is a cover-art or photo record (spec §3 "Artwork record"). The
// same type serves both a music database's per-track cover art and a photo
// database's photo entries; DigitizedDate and Rating are meaningful only
// for photos.
type Artwork struct {
	// ID is the 32-bit id assigned at write time, >= 0x64. Zero until
	// assigned.
	ID uint32

	// TrackPersistentID links an artwork record back to the track it
	// belongs to, or 0 when the record has been deduplicated onto
	// another track's artwork (spec §4.8).
	TrackPersistentID uint64

	Thumb Thumbnail

	SourceFileSize int64
	CreatedAt      time.Time

	// DigitizedAt and Rating apply to photo-database entries only.
	DigitizedAt time.Time
	Rating      uint8
}

// ArtworkFormat describes one artwork slot shape supported by a device
// (spec §6 "Artwork-format descriptor"). Provided by an external
// device-capability service.
type ArtworkFormat struct {
	CorrelationID int16
	Width         int16
	Height        int16
	Format        PixelFormat
	Type          ArtworkType
	// Padding is extra per-slot bytes the .ithmb file reserves beyond
	// the packed pixel data (spec §4.9 step 4).
	Padding int
}

// ArtworkType enumerates the kind of image a format slot holds (spec §6).
type ArtworkType int

const (
	ArtworkCoverSmall ArtworkType = iota
	ArtworkCoverLarge
	ArtworkCoverMedium
	ArtworkCoverXSmall
	ArtworkCoverXLarge
	ArtworkCoverSMedium
	ArtworkPhotoSmall
	ArtworkPhotoLarge
	ArtworkPhotoFullScreen
	ArtworkPhotoTVScreen
)

// IsPhoto reports whether t is one of the photo-database format types, as
// opposed to a music cover-art format (spec §4.9 step 3: photo formats are
// centre-padded, coverart formats are zero-padded).
func (t ArtworkType) IsPhoto() bool {
	return t >= ArtworkPhotoSmall
}

// PixelFormat enumerates the supported on-device pixel packings (spec
// §4.9).
type PixelFormat int

const (
	PixelRGB565LE PixelFormat = iota
	PixelRGB565BE
	PixelRGB555LE
	PixelRGB555BE
	PixelRGB555RearrangedLE
	PixelRGB555RearrangedBE
	PixelRGB888
	PixelUYVY
)
