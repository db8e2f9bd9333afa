package smartplaylist

import (
	"sort"
	"strings"
	"time"

	"github.com/devicekit/gpoddb/pkg/model"
)

// Evaluate runs a smart playlist's rule list and limit against tracks,
// returning the tracks that should populate its member list (spec §4.7).
// now is injected so evaluation is deterministic in tests; callers pass
// time.Now().
func Evaluate(tracks []*model.Track, rules []model.SmartRule, op model.MatchOperator, prefs model.SmartPlaylistPrefs, now time.Time) []*model.Track {
	var matched []*model.Track
	for _, t := range tracks {
		if prefs.MatchCheckedOnly && t.Checked {
			continue
		}
		if matches(t, rules, op, now) {
			matched = append(matched, t)
		}
	}

	if !prefs.Limit {
		return matched
	}
	return applyLimit(matched, prefs, now)
}

// matches applies the AND/OR short-circuit described in spec §4.7 across
// rules.
func matches(t *model.Track, rules []model.SmartRule, op model.MatchOperator, now time.Time) bool {
	if len(rules) == 0 {
		return true
	}
	if op == model.MatchAny {
		for _, r := range rules {
			if ruleMatches(t, r, now) {
				return true
			}
		}
		return false
	}
	for _, r := range rules {
		if !ruleMatches(t, r, now) {
			return false
		}
	}
	return true
}

func ruleMatches(t *model.Track, r model.SmartRule, now time.Time) bool {
	ft := fieldType(r.Field)
	switch ft {
	case model.FieldString:
		return stringRuleMatches(fieldString(t, r.Field), r)
	case model.FieldBoolean:
		return boolRuleMatches(fieldBool(t, r.Field), r)
	case model.FieldDate:
		return dateRuleMatches(fieldDate(t, r.Field), r, now)
	case model.FieldPlaylist:
		// Playlist-reference rules require resolving another playlist's
		// membership, which depends on database-wide state outside a
		// single track's fields; left for the caller to pre-filter
		// (spec §4.6 lists it as a valid field type but doesn't specify
		// nested-evaluation order).
		return true
	default:
		return intRuleMatches(fieldInt(t, r.Field), r)
	}
}

func fieldString(t *model.Track, f model.Field) string {
	switch f {
	case model.FieldSongTitle:
		return t.Title
	case model.FieldAlbum:
		return t.Album
	case model.FieldArtist:
		return t.Artist
	case model.FieldGenre:
		return t.Genre
	case model.FieldComment:
		return t.Comment
	case model.FieldComposer:
		return t.Composer
	default:
		return ""
	}
}

func fieldInt(t *model.Track, f model.Field) int64 {
	switch f {
	case model.FieldBitrate:
		return int64(t.BitRate)
	case model.FieldSampleRate:
		return int64(t.SampleRate)
	case model.FieldYear:
		return int64(t.Year)
	case model.FieldPlayCount:
		return int64(t.PlayCount)
	case model.FieldTrackNumber:
		return int64(t.TrackNumber)
	case model.FieldSizeBytes:
		return int64(t.FileSize)
	case model.FieldTimeMS:
		return int64(t.DurationMS)
	case model.FieldRating:
		return int64(t.Rating)
	case model.FieldBPM:
		return int64(t.BPM)
	default:
		return 0
	}
}

func fieldBool(t *model.Track, f model.Field) bool {
	switch f {
	case model.FieldCompilation:
		return t.Media&model.MediaTypeAudio != 0 && t.AlbumArtist == "Various Artists"
	default:
		return false
	}
}

func fieldDate(t *model.Track, f model.Field) time.Time {
	switch f {
	case model.FieldDateAdded:
		return t.TimeAdded
	case model.FieldDateModified:
		return t.TimeModified
	case model.FieldLastPlayed:
		return t.TimePlayed
	default:
		return time.Time{}
	}
}

func stringRuleMatches(v string, r model.SmartRule) bool {
	lv, lr := strings.ToLower(v), strings.ToLower(r.StringValue)
	switch r.Action {
	case model.ActionStringIs:
		return lv == lr
	case model.ActionStringNot:
		return lv != lr
	case model.ActionStringContains:
		return strings.Contains(lv, lr)
	case model.ActionStringNotContains:
		return !strings.Contains(lv, lr)
	case model.ActionStringStartsWith:
		return strings.HasPrefix(lv, lr)
	case model.ActionStringNotStartsWith:
		return !strings.HasPrefix(lv, lr)
	case model.ActionStringEndsWith:
		return strings.HasSuffix(lv, lr)
	case model.ActionStringNotEndsWith:
		return !strings.HasSuffix(lv, lr)
	default:
		return false
	}
}

func intRuleMatches(v int64, r model.SmartRule) bool {
	switch r.Action {
	case model.ActionIntIs:
		return v == int64(r.FromValue)
	case model.ActionIntIsNot:
		return v != int64(r.FromValue)
	case model.ActionIntIsGreater:
		return v > int64(r.FromValue)
	case model.ActionIntIsLess:
		return v < int64(r.FromValue)
	case model.ActionIntIsInRange:
		return v >= int64(r.FromValue) && v <= int64(r.ToValue)
	case model.ActionIntNotInRange:
		return v < int64(r.FromValue) || v > int64(r.ToValue)
	default:
		return false
	}
}

func boolRuleMatches(v bool, r model.SmartRule) bool {
	switch r.Action {
	case model.ActionIsTrue:
		return v
	case model.ActionIsFalse:
		return !v
	default:
		return false
	}
}

// dateRuleMatches implements IN-THE-LAST / NOT-IN-THE-LAST: the window
// is now - (date_offset * units seconds) (spec §4.6). FromDate holds the
// offset count, FromUnits the per-unit seconds multiplier.
func dateRuleMatches(v time.Time, r model.SmartRule, now time.Time) bool {
	switch r.Action {
	case model.ActionDateInTheLast:
		window := now.Add(-time.Duration(r.FromDate*r.FromUnits) * time.Second)
		return v.After(window)
	case model.ActionDateNotInTheLast:
		window := now.Add(-time.Duration(r.FromDate*r.FromUnits) * time.Second)
		return !v.After(window)
	case model.ActionDateIsInRange:
		from := fromSentinel(r.FromValue, now, r.FromDate, r.FromUnits)
		to := fromSentinel(r.ToValue, now, r.ToDate, r.ToUnits)
		return !v.Before(from) && !v.After(to)
	default:
		return false
	}
}

// fromSentinel resolves a date payload value: model.DateSentinel means
// "use the relative offset/units pair" rather than an absolute stored
// date (spec §3 "a sentinel value 0x2dae2dae2dae2dae marks date-typed
// rules").
func fromSentinel(value uint64, now time.Time, offset, units uint64) time.Time {
	if value == model.DateSentinel {
		return now.Add(-time.Duration(offset*units) * time.Second)
	}
	return deviceEpochToTime(value)
}

// deviceEpochOffsetSeconds converts between host Unix epoch and the
// device's 1904-01-01 UTC epoch (spec §6 "Timestamps").
const deviceEpochOffsetSeconds = 2082844800

func deviceEpochToTime(v uint64) time.Time {
	return time.Unix(int64(v)-deviceEpochOffsetSeconds, 0).UTC()
}

// applyLimit sorts matched by the requested limit-sort key and
// accumulates tracks until the limit-value/limit-type threshold is
// reached (spec §4.7).
func applyLimit(matched []*model.Track, prefs model.SmartPlaylistPrefs, now time.Time) []*model.Track {
	sorted := make([]*model.Track, len(matched))
	copy(sorted, matched)
	sortByLimitKey(sorted, prefs.LimitSort, prefs.LimitSortOpposite)

	var out []*model.Track
	var accumulated float64
	for _, t := range sorted {
		unit := limitUnitValue(t, prefs.LimitType)
		if accumulated+unit > float64(prefs.LimitValue) && len(out) > 0 {
			break
		}
		out = append(out, t)
		accumulated += unit
		if prefs.LimitType == model.LimitSongs && accumulated >= float64(prefs.LimitValue) {
			break
		}
	}
	return out
}

func limitUnitValue(t *model.Track, lt model.LimitType) float64 {
	switch lt {
	case model.LimitMinutes:
		return float64(t.DurationMS) / 1000 / 60
	case model.LimitHours:
		return float64(t.DurationMS) / 1000 / 3600
	case model.LimitMB:
		return float64(t.FileSize) / (1024 * 1024)
	case model.LimitGB:
		return float64(t.FileSize) / (1024 * 1024 * 1024)
	default: // LimitSongs
		return 1
	}
}

func sortByLimitKey(tracks []*model.Track, key model.LimitSort, opposite bool) {
	less := func(i, j int) bool {
		a, b := tracks[i], tracks[j]
		switch key {
		case model.LimitSortTitle:
			return a.Title < b.Title
		case model.LimitSortAlbum:
			return a.Album < b.Album
		case model.LimitSortArtist:
			return a.Artist < b.Artist
		case model.LimitSortGenre:
			return a.Genre < b.Genre
		case model.LimitSortMostRecentlyAdded:
			return a.TimeAdded.After(b.TimeAdded)
		case model.LimitSortMostRecentlyPlayed:
			return a.TimePlayed.After(b.TimePlayed)
		case model.LimitSortMostOftenPlayed:
			return a.PlayCount > b.PlayCount
		case model.LimitSortHighestRated:
			return a.Rating > b.Rating
		case model.LimitSortRandom:
			return false // caller-supplied order stands in for random
		default:
			return false
		}
	}
	if opposite {
		base := less
		less = func(i, j int) bool { return base(j, i) }
	}
	sort.SliceStable(tracks, less)
}
