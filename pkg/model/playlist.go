package model

import "time"

// PlaylistType distinguishes the master playlist from ordinary ones (spec
// §3 "type byte (0=visible, 1=master)").
type PlaylistType uint8

const (
	PlaylistVisible PlaylistType = 0
	PlaylistMaster  PlaylistType = 1
)

// SortOrder selects the on-device browse order for a playlist's member
// list (the mhyp sort-order enum, spec §4.4).
type SortOrder uint32

const (
	SortOrderManual SortOrder = 1
	SortOrderTitle  SortOrder = 3
	SortOrderAlbum  SortOrder = 4
	SortOrderArtist SortOrder = 5
)

// Member is a non-owning reference to a Track within a playlist (spec §9
// "model playlist members as non-owning indices or handles"). GroupID and
// GroupParentID are used only by the podcast-grouped layout (spec §4.4).
type Member struct {
	Track         *Track
	GroupID       uint32
	GroupParentID uint32
	Timestamp     time.Time
}

// Playlist is a record in a music database's playlist list (spec §3
// "Playlist").
type Playlist struct {
	Name string
	Type PlaylistType

	PersistentID uint64
	CreatedAt    time.Time
	IsPodcast    bool
	Sort         SortOrder

	Members []Member

	Smart        bool
	Preferences  SmartPlaylistPrefs
	Rules        []SmartRule

	// UIData is the opaque 0x288-byte "playlist-ui" mhod payload (spec
	// §4.4): its meaning isn't specified, so a parsed playlist's bytes
	// are kept verbatim and echoed back unchanged on write; a new
	// playlist gets a zero-filled payload.
	UIData []byte

	// id is a spare 32-bit slot; no code in this module sets or reads it.
	id uint32
}

// SmartPlaylistPrefs mirrors the smart-playlist preference record (spec
// §4.7): limiting, checked-only filtering, and live-update metadata.
type SmartPlaylistPrefs struct {
	LiveUpdate        bool
	CheckRules        bool
	CheckLimits       bool
	MatchCheckedOnly  bool

	Limit       bool
	LimitType   LimitType
	LimitValue  uint32
	LimitSort   LimitSort
	// LimitSortOpposite mirrors bit 31 of the on-disk limit-sort value
	// (spec §4.7, §9 open question 3): preserved verbatim across
	// read/write rather than re-derived.
	LimitSortOpposite bool
}

// LimitType enumerates the smart-playlist limit unit (spec §4.7).
type LimitType uint32

const (
	LimitMinutes LimitType = 1
	LimitMB      LimitType = 2
	LimitSongs   LimitType = 3
	LimitHours   LimitType = 4
	LimitGB      LimitType = 5
)

// LimitSort enumerates the sort key used to decide which tracks are kept
// once a smart playlist exceeds its limit (spec §4.7).
type LimitSort uint32

const (
	LimitSortRandom             LimitSort = 2
	LimitSortTitle              LimitSort = 3
	LimitSortAlbum              LimitSort = 4
	LimitSortArtist             LimitSort = 5
	LimitSortGenre              LimitSort = 7
	LimitSortMostRecentlyAdded  LimitSort = 16
	LimitSortMostOftenPlayed    LimitSort = 18
	LimitSortMostRecentlyPlayed LimitSort = 20
	LimitSortHighestRated       LimitSort = 22
)

// AddMember appends track to the playlist's member list (duplicates are
// allowed, spec §3).
func (p *Playlist) AddMember(t *Track) {
	p.Members = append(p.Members, Member{Track: t})
}

// RemoveTrack removes every member reference to t (spec §3 "removing a
// track removes it from all playlists").
func (p *Playlist) RemoveTrack(t *Track) {
	out := p.Members[:0]
	for _, m := range p.Members {
		if m.Track != t {
			out = append(out, m)
		}
	}
	p.Members = out
}
