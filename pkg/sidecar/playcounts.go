package sidecar

import (
	"encoding/binary"
	"fmt"

	"github.com/devicekit/gpoddb/pkg/devicefs"
	"github.com/devicekit/gpoddb/pkg/hunk"
	"github.com/devicekit/gpoddb/pkg/model"
)

const (
	playCountsHeaderMin = 0x60
	playCountsEntryMin  = 0x0c

	playCountsEntryRating    = 0x10
	playCountsEntryUnk16     = 0x14
	playCountsEntrySkip      = 0x1c
)

// noPlayCountRating is the sentinel meaning "no rating present" (spec §3
// "rating (or the sentinel unset)"), grounded on the original's
// NO_PLAYCOUNT = -1.
const noPlayCountRating = -1

// probeTagOrder reports the byte order under which the four bytes at the
// start of data read as tag, trying both orientations the way hunk.ProbeOrder
// does for the root mhbd tag.
func probeTagOrder(data []byte, tag string) (binary.ByteOrder, bool) {
	if len(data) < 4 {
		return nil, false
	}
	if string(data[0:4]) == tag {
		return binary.LittleEndian, true
	}
	reversed := []byte{data[3], data[2], data[1], data[0]}
	if string(reversed) == tag {
		return binary.BigEndian, true
	}
	return nil, false
}

// MergePlayCounts reads the "Play Counts" sidecar file from dir (falling
// back to the Shuffle-era "iTunesStats" file if absent) and returns the
// deltas in track-list order: these formats correlate entries to tracks by
// position, not by persistent id (spec §3 "Playcount delta"). When a
// "Play Counts" file was read, it is renamed to "Play Counts.bak" after a
// successful parse (spec §6 edge case "rename").
func MergePlayCounts(fs devicefs.FileStore, dir string) ([]model.PlaycountDelta, error) {
	path := dir + "/Play Counts"
	data, err := fs.ReadFile(path)
	if err == nil && len(data) > 0 {
		deltas, perr := parsePlayCounts(data)
		if perr != nil {
			return nil, perr
		}
		if err := fs.Rename(path, path+".bak"); err != nil {
			return nil, fmt.Errorf("sidecar: rename play counts: %w", err)
		}
		return deltas, nil
	}

	statsData, serr := fs.ReadFile(dir + "/iTunesStats")
	if serr != nil || len(statsData) == 0 {
		return nil, nil
	}
	return parseItunesStats(statsData)
}

// parsePlayCounts decodes the "Play Counts" mhdp-headed file (spec §6: "32-
// bit header-length, 32-bit entry-length, 32-bit count, then that many
// entries ... entry layout varies by entry-length").
func parsePlayCounts(data []byte) ([]model.PlaycountDelta, error) {
	order, ok := probeTagOrder(data, "mhdp")
	if !ok {
		return nil, ErrNotPlayCounts
	}
	r := hunk.NewReader(data, order)

	headerLen := int(r.U32(4))
	if headerLen < playCountsHeaderMin {
		return nil, fmt.Errorf("%w: header length %d smaller than expected", ErrNotPlayCounts, headerLen)
	}
	entryLen := int(r.U32(8))
	if entryLen < playCountsEntryMin {
		return nil, fmt.Errorf("%w: entry length %d smaller than expected", ErrNotPlayCounts, entryLen)
	}
	entryNum := int(r.U32(12))

	deltas := make([]model.PlaycountDelta, 0, entryNum)
	for i := 0; i < entryNum; i++ {
		seek := headerLen + i*entryLen
		d := model.PlaycountDelta{
			PlayCount:      int32(r.U32(seek)),
			TimePlayed:     fromEpoch(r.U32(seek + 4)),
			BookmarkTimeMS: r.U32(seek + 8),
		}
		if entryLen >= playCountsEntryRating {
			rating := int32(r.U32(seek + 12))
			if rating != noPlayCountRating {
				v := uint8(rating)
				d.Rating = &v
			}
		}
		if entryLen >= playCountsEntrySkip {
			d.SkipCount = int32(r.U32(seek + 20))
			d.LastSkipped = fromEpoch(r.U32(seek + 24))
		}
		deltas = append(deltas, d)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return deltas, nil
}

// parseItunesStats decodes the Shuffle-era "iTunesStats" file: a 24-bit
// count-prefixed variable-length entry stream with no header/entry-length
// fields and no rating (spec §6 edge case; grounded on itunesstats_read
// branching used when no Play Counts file is present).
func parseItunesStats(data []byte) ([]model.PlaycountDelta, error) {
	r := hunk.NewReader(data, binary.LittleEndian)
	entryNum := int(r.U24(0))

	var deltas []model.PlaycountDelta
	seek := 6
	for i := 0; i < entryNum; i++ {
		entryLen := int(r.U24(seek))
		if entryLen < 18 {
			return nil, fmt.Errorf("%w: iTunesStats entry length %d smaller than expected", ErrNotPlayCounts, entryLen)
		}
		d := model.PlaycountDelta{
			BookmarkTimeMS: r.U24(seek + 3),
			PlayCount:      int32(r.U24(seek + 12)),
			SkipCount:      int32(r.U24(seek + 15)),
		}
		deltas = append(deltas, d)
		seek += entryLen
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return deltas, nil
}

// ApplyPlayCountDeltas merges deltas into tracks by position, the order in
// which the sidecar formats correlate entries to tracks (spec §3).
// Unmatched trailing tracks or deltas are left untouched.
func ApplyPlayCountDeltas(tracks []*model.Track, deltas []model.PlaycountDelta) {
	for i, d := range deltas {
		if i >= len(tracks) {
			break
		}
		t := tracks[i]
		t.PlayCount += d.PlayCount
		if !d.TimePlayed.IsZero() {
			t.TimePlayed = d.TimePlayed
		}
		t.BookmarkTimeMS = d.BookmarkTimeMS
		if d.Rating != nil {
			t.Rating = *d.Rating
		}
		t.SkipCount += d.SkipCount
		if !d.LastSkipped.IsZero() {
			t.LastSkipped = d.LastSkipped
		}
	}
}
