package model

import (
	"math/rand/v2"
	"time"
)

// DeviceDescriptor carries the handful of device-capability facts the core
// needs while parsing/writing, independent of the path-service and
// artwork-format-service interfaces that supply the rest (spec §6).
type DeviceDescriptor struct {
	// ByteOrderReversed mirrors the codec's reverse-bytes-on-I/O flag for
	// this device generation (spec §4.1).
	ByteOrderReversed bool
	// MusicDirsNumber is the count of F00..FNN music subdirectories.
	MusicDirsNumber int
	// ArtworkFormats is the set of thumbnail slot shapes this device
	// supports (spec §6, §4.9).
	ArtworkFormats []ArtworkFormat
	// SparseArtwork reports whether this device supports multiple tracks
	// sharing one artwork id (spec §4.8 dedup pass).
	SparseArtwork bool
	// TimeZoneOffsetSeconds is added on top of the device-epoch
	// conversion (spec §6 "Timestamps").
	TimeZoneOffsetSeconds int
}

// MusicDB is a music database root (spec §3 "Database root"). Destroying
// it destroys all descendant tracks and playlists (spec §3 "Lifecycle").
type MusicDB struct {
	Tracks    []*Track
	Playlists []*Playlist

	// ID is the 64-bit database identity.
	ID uint64
	// FormatVersion is the on-disk format-version integer.
	FormatVersion uint32

	Device *DeviceDescriptor
}

// NewMusicDB returns an empty music database with a freshly-allocated
// master playlist at index 0 (spec §3 "first playlist is the master
// playlist MPL and must remain at index 0").
func NewMusicDB(device *DeviceDescriptor) *MusicDB {
	db := &MusicDB{Device: device}
	mpl := &Playlist{Name: "iPod", Type: PlaylistMaster, Sort: SortOrderManual, CreatedAt: time.Now()}
	db.Playlists = append(db.Playlists, mpl)
	return db
}

// MPL returns the master playlist, always at index 0.
func (db *MusicDB) MPL() *Playlist {
	if len(db.Playlists) == 0 {
		return nil
	}
	return db.Playlists[0]
}

// AddTrack appends t to the database's track list. A track without a
// persistent id first gets a random 64-bit one; a value already held by
// another track in the list is drawn again.
func (db *MusicDB) AddTrack(t *Track) {
	for t.PersistentID == 0 {
		t.PersistentID = rand.Uint64()
		for _, other := range db.Tracks {
			if other.PersistentID == t.PersistentID {
				t.PersistentID = 0
				break
			}
		}
	}
	db.Tracks = append(db.Tracks, t)
}

// RemoveTrack removes t from the database and from every playlist's member
// list, including the MPL (spec §3: "master playlist removal removes the
// track itself" — i.e. there is no separate notion of "on the iPod" beyond
// MPL membership, so removing from all playlists and the track slice is
// sufficient and matches the invariant).
func (db *MusicDB) RemoveTrack(t *Track) {
	for _, pl := range db.Playlists {
		pl.RemoveTrack(t)
	}
	out := db.Tracks[:0]
	for _, tr := range db.Tracks {
		if tr != t {
			out = append(out, tr)
		}
	}
	db.Tracks = out
}

// AddPlaylist appends pl to the playlist list (never at index 0 unless the
// list was empty, preserving the MPL invariant).
func (db *MusicDB) AddPlaylist(pl *Playlist) {
	db.Playlists = append(db.Playlists, pl)
}

// PhotoDB is a photo database root (spec §3 "Database root").
type PhotoDB struct {
	Photos []*Artwork
	Albums []*PhotoAlbum

	Device *DeviceDescriptor

	// RawFileList preserves the file-list section (mhlf) verbatim across
	// a parse/write cycle: its bookkeeping isn't otherwise consumed by
	// this model, since the thumbnail slot pool (pkg/thumbnail) already
	// owns the real per-file layout this section mirrors.
	RawFileList []byte
}

// NewPhotoDB returns an empty photo database with the Photo Library album
// at index 0 (spec §3 "first album is the Photo Library and contains all
// photos").
func NewPhotoDB(device *DeviceDescriptor) *PhotoDB {
	db := &PhotoDB{Device: device}
	db.Albums = append(db.Albums, &PhotoAlbum{Name: "Photo Library", Type: PhotoAlbumLibrary})
	return db
}

// Library returns the Photo Library album, always at index 0.
func (db *PhotoDB) Library() *PhotoAlbum {
	if len(db.Albums) == 0 {
		return nil
	}
	return db.Albums[0]
}

// AddPhoto adds a photo to the database and to the Photo Library album
// (spec §3: the library "contains all photos").
func (db *PhotoDB) AddPhoto(a *Artwork) {
	db.Photos = append(db.Photos, a)
	db.Library().AddMember(a)
}

// PlaycountDelta is one entry merged in from the transient play-counts
// sidecar file at parse time (spec §3 "Playcount delta").
type PlaycountDelta struct {
	TrackPersistentID uint64 // resolved by position in older sidecar formats; see pkg/sidecar
	PlayCount         int32
	TimePlayed        time.Time
	BookmarkTimeMS    uint32
	// Rating is nil when the delta carries the "unset" sentinel.
	Rating      *uint8
	SkipCount   int32
	LastSkipped time.Time
}
