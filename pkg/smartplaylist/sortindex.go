package smartplaylist

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/devicekit/gpoddb/pkg/model"
)

// SortKey selects which of the master playlist's five sort-index mhods
// (spec §4.5) to build.
type SortKey int

const (
	SortKeyTitle SortKey = iota
	SortKeyAlbum
	SortKeyArtist
	SortKeyGenre
	SortKeyComposer
)

// sortTypeSelector is the 4-byte value stored at the start of a
// sort-index mhod body identifying which key it represents (spec §4.5
// "a 4-byte sort-type selector"). Values mirror the mhod type-52 body's
// own numbering scheme, distinct per key.
var sortTypeSelector = map[SortKey]uint32{
	SortKeyTitle:    1,
	SortKeyAlbum:    2,
	SortKeyArtist:   3,
	SortKeyGenre:    4,
	SortKeyComposer: 5,
}

// collator is a root-locale (language.Und) collation built once and
// reused across sorts, so that sort order is locale-independent and
// consistent across platforms (spec §4.5 "must use a locale-aware
// collation that produces consistent results across platforms").
var collator = collate.New(language.Und)

// BuildSortIndex returns, for the given key, the indices into tracks
// (the database's canonical track order) in the order that produces the
// requested sorted sequence, with ties broken per spec §4.5's per-key tie
// rules. The result has len(tracks) entries.
func BuildSortIndex(tracks []*model.Track, key SortKey) []uint32 {
	idx := make([]uint32, len(tracks))
	for i := range idx {
		idx[i] = uint32(i)
	}

	less := lessFuncFor(tracks, key)
	sort.SliceStable(idx, func(a, b int) bool { return less(idx[a], idx[b]) })
	return idx
}

func lessFuncFor(tracks []*model.Track, key SortKey) func(a, b uint32) bool {
	switch key {
	case SortKeyAlbum:
		return func(a, b uint32) bool {
			ta, tb := tracks[a], tracks[b]
			if c := collator.CompareString(ta.Album, tb.Album); c != 0 {
				return c < 0
			}
			if ta.DiscNumber != tb.DiscNumber {
				return ta.DiscNumber < tb.DiscNumber
			}
			if ta.TrackNumber != tb.TrackNumber {
				return ta.TrackNumber < tb.TrackNumber
			}
			return collator.CompareString(ta.Title, tb.Title) < 0
		}
	case SortKeyArtist:
		return func(a, b uint32) bool {
			ta, tb := tracks[a], tracks[b]
			if c := collator.CompareString(ta.Artist, tb.Artist); c != 0 {
				return c < 0
			}
			if c := collator.CompareString(ta.Album, tb.Album); c != 0 {
				return c < 0
			}
			if ta.DiscNumber != tb.DiscNumber {
				return ta.DiscNumber < tb.DiscNumber
			}
			if ta.TrackNumber != tb.TrackNumber {
				return ta.TrackNumber < tb.TrackNumber
			}
			return collator.CompareString(ta.Title, tb.Title) < 0
		}
	case SortKeyGenre:
		return func(a, b uint32) bool {
			ta, tb := tracks[a], tracks[b]
			if c := collator.CompareString(ta.Genre, tb.Genre); c != 0 {
				return c < 0
			}
			if c := collator.CompareString(ta.Artist, tb.Artist); c != 0 {
				return c < 0
			}
			if c := collator.CompareString(ta.Album, tb.Album); c != 0 {
				return c < 0
			}
			if ta.DiscNumber != tb.DiscNumber {
				return ta.DiscNumber < tb.DiscNumber
			}
			if ta.TrackNumber != tb.TrackNumber {
				return ta.TrackNumber < tb.TrackNumber
			}
			return collator.CompareString(ta.Title, tb.Title) < 0
		}
	case SortKeyComposer:
		return func(a, b uint32) bool {
			return collator.CompareString(tracks[a].Composer, tracks[b].Composer) < 0
		}
	default: // SortKeyTitle
		return func(a, b uint32) bool {
			return collator.CompareString(tracks[a].Title, tracks[b].Title) < 0
		}
	}
}

// SelectorFor returns the on-disk sort-type selector for key.
func SelectorFor(key SortKey) uint32 { return sortTypeSelector[key] }
