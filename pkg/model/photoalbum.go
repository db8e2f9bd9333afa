package model

// PhotoAlbumType distinguishes the always-present Photo Library album from
// user-created ones (spec §3 "Photo album").
type PhotoAlbumType uint8

const (
	PhotoAlbumLibrary PhotoAlbumType = 1
	PhotoAlbumUser    PhotoAlbumType = 2
)

// TransitionDirection is the slideshow transition direction (spec §3
// "slideshow preferences").
type TransitionDirection uint8

// SlideshowPrefs mirrors a photo album's slideshow preference fields (spec
// §3).
type SlideshowPrefs struct {
	PlayMusic           bool
	Repeat              bool
	Random              bool
	ShowTitles          bool
	TransitionDirection TransitionDirection
	TransitionDurationMS uint32
	SlideDurationMS      uint32
	// BackingTrackPersistentID references a track by persistent id, or 0.
	BackingTrackPersistentID uint64
}

// PhotoAlbum is a record in a photo database's album list (spec §3).
type PhotoAlbum struct {
	Name string
	Type PhotoAlbumType

	// Members references Artwork entries; duplicates are allowed.
	Members []*Artwork

	Slideshow SlideshowPrefs

	// AlbumID and PrevAlbumID are computed at write time (spec §3, §4.8):
	// AlbumID = 0x64 + photo-count + album-index, so the Photo Library
	// (index 0) gets 0x64 + photo-count. Transient like Track.ID.
	AlbumID     uint32
	PrevAlbumID uint32
}

// AddMember appends an artwork reference to the album.
func (a *PhotoAlbum) AddMember(art *Artwork) {
	a.Members = append(a.Members, art)
}
