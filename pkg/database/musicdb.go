package database

import (
	"encoding/binary"
	"fmt"

	"github.com/devicekit/gpoddb/pkg/hunk"
	"github.com/devicekit/gpoddb/pkg/model"
	"github.com/devicekit/gpoddb/pkg/thumbnail"
)

// mhbd header length (spec §4.2; the original reader accepts any length
// >=32, writers emit the conventional 0x68).
const mhbdHeaderLen = 0x68

// mhsd section-type discriminators for a music database (spec §4.2).
const (
	sectionTracks          = 1
	sectionPodcastPlaylists = 3
	sectionPlaylists       = 2
)

// mhsd header length (spec §4.2; type field at +12 requires H>=16).
const mhsdHeaderLen = 16

// mhlt/mhlp header length. Unlike every other hunk in the format, these
// two store a child count at offset+8 instead of a total length (spec
// §4.2's "one mhlt with N mhit children" is located, not skipped, by tag
// search -- grounded on the original reader reading the count directly
// at mhlt_seek+8/mhlp_seek+8 rather than treating it as a generic T).
const (
	mhltHeaderLen = 0x5C
	mhlpHeaderLen = 0x5C
)

// findSection returns the mhsd child of parent with the given section
// type, tolerating unknown intervening hunks (spec §4.2).
func findSection(r *hunk.Reader, parent hunk.Header, sectionType uint32) (hunk.Header, bool) {
	walker := hunk.Children(r, parent.BodyStart(), parent.End())
	for {
		ch, ok := walker.Next()
		if !ok {
			return hunk.Header{}, false
		}
		if ch.Tag == "mhsd" && r.U32(ch.Start+12) == sectionType {
			return ch, true
		}
	}
}

// findTag scans [start, end) for the first hunk tagged tag, skipping
// others by their declared total length. Used to locate mhlt/mhlp, whose
// own header doesn't carry a usable total length (spec §4.2).
func findTag(r *hunk.Reader, tag string, start, end int) (hunk.Header, bool) {
	pos := start
	for pos < end {
		if r.TagIs(pos, tag) {
			return hunk.Header{Tag: tag, HeaderLen: r.U32(pos + 4), Start: pos}, true
		}
		h := hunk.ReadHeader(r, pos)
		if r.Err() != nil {
			return hunk.Header{}, false
		}
		pos = h.End()
	}
	return hunk.Header{}, false
}

// ParseMusicDB decodes a complete iTunesDB-shaped hunk stream into a
// MusicDB (spec §4.2-§4.5).
func ParseMusicDB(data []byte, device *model.DeviceDescriptor) (*model.MusicDB, error) {
	order, err := hunk.ProbeOrder(data)
	if err != nil {
		return nil, err
	}
	r := hunk.NewReader(data, order)
	root := hunk.ReadHeader(r, 0)
	if r.Err() != nil {
		return nil, r.Err()
	}
	if root.Tag != "mhbd" {
		return nil, fmt.Errorf("%w: root tag %q", ErrNotITunesDB, root.Tag)
	}

	db := &model.MusicDB{Device: device}
	db.ID = r.U64(root.Start + 24)
	db.FormatVersion = r.U32(root.Start + 16)

	trackSection, ok := findSection(r, root, sectionTracks)
	if !ok {
		return nil, ErrMissingSection
	}
	mhlt, ok := findTag(r, "mhlt", trackSection.BodyStart(), trackSection.End())
	if !ok {
		return nil, fmt.Errorf("%w: mhlt not found in track section", ErrMissingSection)
	}
	nrTracks := r.U32(mhlt.Start + 8)
	byID := map[uint32]*model.Track{}
	pos := mhlt.BodyStart()
	for i := uint32(0); i < nrTracks && pos < trackSection.End(); i++ {
		h := hunk.ReadHeader(r, pos)
		if r.Err() != nil {
			return nil, r.Err()
		}
		if h.Tag == "mhit" {
			t := readTrack(r, h)
			db.Tracks = append(db.Tracks, t)
			byID[t.ID] = t
		}
		pos = h.End()
	}

	playlistSection, ok := findSection(r, root, sectionPlaylists)
	if !ok {
		playlistSection, ok = findSection(r, root, sectionPodcastPlaylists)
	}
	if ok {
		mhlp, found := findTag(r, "mhlp", playlistSection.BodyStart(), playlistSection.End())
		if found {
			nrPlaylists := r.U32(mhlp.Start + 8)
			pos := mhlp.BodyStart()
			for i := uint32(0); i < nrPlaylists && pos < playlistSection.End(); i++ {
				h := hunk.ReadHeader(r, pos)
				if r.Err() != nil {
					return nil, r.Err()
				}
				if h.Tag == "mhyp" {
					pl := readPlaylist(r, h, func(id uint32) *model.Track { return byID[id] })
					db.Playlists = append(db.Playlists, pl)
				}
				pos = h.End()
			}
		}
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	return db, nil
}

// WriteMusicDB runs the identity/linking pass (spec §4.8), drives the
// thumbnail engine over the surviving cover-art (spec §4.9-§4.10, via
// artwork -- nil skips the engine entirely), and serialises db to a
// complete hunk stream, emitting sections in order {1, 3, 2} (spec §4.2).
func WriteMusicDB(db *model.MusicDB, order binary.ByteOrder, artwork *ArtworkPackOptions) ([]byte, error) {
	AssignTrackIDs(db)
	AssignArtworkIDs(db.Tracks, db.Device)
	if artwork != nil {
		thumbnail.RunEngine(artwork.FS, artwork.Dir, coverArtFormats(db.Device), uniqueTrackArtworks(db.Tracks), artwork.Source)
	}

	w := hunk.NewWriter(order)
	root := w.Begin("mhbd", mhbdHeaderLen)
	root.PutU32At(16, db.FormatVersion)
	root.PutU32At(20, 3) // mhsd_num: tracks, podcast-playlists, playlists
	root.PutU64At(24, db.ID)

	writeSection(w, sectionTracks, func(w *hunk.Writer) { writeMhlt(w, db.Tracks) })
	writeSection(w, sectionPodcastPlaylists, func(w *hunk.Writer) { writeMhlp(w, db.Playlists, true) })
	writeSection(w, sectionPlaylists, func(w *hunk.Writer) { writeMhlp(w, db.Playlists, false) })

	root.Close()
	return w.Bytes(), nil
}

func writeSection(w *hunk.Writer, sectionType uint32, body func(w *hunk.Writer)) {
	h := w.Begin("mhsd", mhsdHeaderLen)
	h.PutU32At(12, sectionType)
	body(w)
	h.Close()
}

func writeMhlt(w *hunk.Writer, tracks []*model.Track) {
	w.WriteTag("mhlt")
	w.WriteU32(mhltHeaderLen)
	w.WriteU32(uint32(len(tracks)))
	w.WriteZero(mhltHeaderLen - 12)
	for _, t := range tracks {
		writeTrack(w, t)
	}
}

func writeMhlp(w *hunk.Writer, playlists []*model.Playlist, grouped bool) {
	w.WriteTag("mhlp")
	w.WriteU32(mhlpHeaderLen)
	w.WriteU32(uint32(len(playlists)))
	w.WriteZero(mhlpHeaderLen - 12)
	for i, pl := range playlists {
		writePlaylist(w, pl, i == 0, grouped)
	}
}

// AssignTrackIDs reorders db.Tracks to match the master playlist's member
// order (tracks not on the MPL keep their relative order at the head) and
// assigns fresh 32-bit ids starting at 0x34 (spec §4.8 steps 1-2).
func AssignTrackIDs(db *model.MusicDB) {
	mpl := db.MPL()
	onMPL := map[*model.Track]bool{}
	var ordered []*model.Track
	if mpl != nil {
		for _, m := range mpl.Members {
			if !onMPL[m.Track] {
				onMPL[m.Track] = true
				ordered = append(ordered, m.Track)
			}
		}
	}
	for _, t := range db.Tracks {
		if !onMPL[t] {
			ordered = append(ordered, t)
		}
	}
	db.Tracks = ordered

	id := uint32(0x34)
	for _, t := range db.Tracks {
		t.ID = id
		id++
	}
}
