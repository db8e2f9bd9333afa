// Package model holds the in-memory domain types for device music and
// photo databases: tracks, playlists, smart-playlist rules, artwork
// records, thumbnails, and photo albums (spec §3).
package model

import "time"

// MediaType bits identify what kind of media a track represents.
type MediaType uint32

const (
	MediaTypeAudio    MediaType = 1 << 0
	MediaTypeMovie    MediaType = 1 << 1
	MediaTypePodcast  MediaType = 1 << 2
	MediaTypeAudiobook MediaType = 1 << 3
	MediaTypeTVShow   MediaType = 1 << 6
)

// Track is one entry in a music database's track list (spec §3 "Track").
type Track struct {
	// ID is the 32-bit intra-database id. It is transient: assigned fresh
	// at write time (spec §4.8) and not meaningful across parses.
	ID uint32
	// PersistentID is the 64-bit id generated once on first add and
	// retained across write cycles. Zero means "not yet assigned".
	PersistentID uint64

	Title          string
	Artist         string
	Album          string
	Genre          string
	Composer       string
	Comment        string
	Grouping       string
	Description    string
	PodcastURL     string
	PodcastRSS     string
	TVShow         string
	TVEpisode      string
	TVNetwork      string
	AlbumArtist    string
	Keywords       string
	Category       string
	FiletypeDesc   string
	Subtitle       string

	// IPodPath is the on-device, colon-separated path, e.g.
	// ":F00:gtkpod000001.mp3".
	IPodPath string

	FileSize   uint64
	DurationMS uint32

	TrackNumber int
	TrackTotal  int
	DiscNumber  int
	DiscTotal   int

	Year int

	BitRate    uint32
	SampleRate uint16 // integer half
	SampleRateFrac uint16
	SampleRateF    float32

	VolumeAdjust int32
	StartTimeMS  uint32
	StopTimeMS   uint32
	SoundCheck   uint32

	PlayCount int32

	TimeAdded    time.Time
	TimePlayed   time.Time
	TimeModified time.Time
	TimeReleased time.Time

	BookmarkTimeMS uint32

	// Rating is 0-100 in steps of 20 (0, 20, 40, 60, 80, 100).
	Rating    uint8
	AppRating uint8

	BPM uint16

	HasArtwork bool
	Transferred bool

	SkipCount   int32
	LastSkipped time.Time

	Media MediaType

	SeasonNumber  int
	EpisodeNumber int

	GaplessPlaybackOffsetStart uint32
	GaplessPlaybackOffsetEnd   uint32

	// ChapterData is an opaque blob (spec: "raw chapter-data blob");
	// round-tripped verbatim.
	ChapterData []byte

	// Unk144/Unk148/Unk252 are unknown-semantics fields that must
	// round-trip (spec §9 "Unknown-field preservation"). unk144's
	// meaning varies by filetype and the source assigns it
	// heuristically; we preserve observed values rather than
	// regenerating them.
	Unk144 uint32
	Unk148 []byte
	Unk252 []byte

	// Checked is the on-device "unchecked for sync" flag consulted by a
	// smart playlist's matchcheckedonly option (spec §4.7): when true,
	// the track is excluded regardless of rule match.
	Checked bool

	// Artwork is nil when the track has no cover art.
	Artwork *Artwork

	// ArtworkID is the artwork id this track resolved to at the last
	// write (mhii_link); used only for round-trip bookkeeping.
	ArtworkID uint32
}
