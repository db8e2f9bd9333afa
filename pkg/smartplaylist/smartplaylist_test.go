package smartplaylist

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicekit/gpoddb/pkg/hunk"
	"github.com/devicekit/gpoddb/pkg/model"
)

func TestSLstRoundTrip(t *testing.T) {
	list := List{
		Observed: 0x7fffffff,
		Operator: model.MatchAll,
		Rules: []model.SmartRule{
			{Field: model.FieldArtist, Action: model.ActionStringContains, StringValue: "Daft Punk", IsString: true},
			{Field: model.FieldYear, Action: model.ActionIntIsGreater, FromValue: 2000},
		},
	}

	w := hunk.NewWriter(binary.BigEndian)
	WriteSLst(w, list)

	r := hunk.NewReader(w.Bytes(), binary.BigEndian)
	got, err := ReadSLst(r)
	require.NoError(t, err)

	assert.Equal(t, list.Observed, got.Observed)
	assert.Equal(t, list.Operator, got.Operator)
	require.Len(t, got.Rules, 2)
	assert.Equal(t, "Daft Punk", got.Rules[0].StringValue)
	assert.True(t, got.Rules[0].IsString)
	assert.Equal(t, uint64(2000), got.Rules[1].FromValue)
	assert.Equal(t, uint64(1), got.Rules[1].FromUnits) // splr_validate default
}

func TestValidateClearsUnusedIntSlots(t *testing.T) {
	rule := model.SmartRule{
		Field: model.FieldYear, Action: model.ActionIntIs,
		FromValue: 1999, ToValue: 555, ToDate: 777,
	}
	got := Validate(rule)
	assert.Equal(t, uint64(1999), got.FromValue)
	assert.Equal(t, uint64(0), got.ToValue)
	assert.Equal(t, uint64(0), got.ToDate)
	assert.Equal(t, uint64(1), got.FromUnits)
	assert.Equal(t, uint64(1), got.ToUnits)
}

func TestValidateKeepsRangeSlots(t *testing.T) {
	rule := model.SmartRule{
		Field: model.FieldYear, Action: model.ActionIntIsInRange,
		FromValue: 1990, ToValue: 2000,
	}
	got := Validate(rule)
	assert.Equal(t, uint64(1990), got.FromValue)
	assert.Equal(t, uint64(2000), got.ToValue)
}

func TestEvaluateAndShortCircuit(t *testing.T) {
	tracks := []*model.Track{
		{Title: "a", Artist: "Daft Punk", Year: 2001},
		{Title: "b", Artist: "Daft Punk", Year: 1995},
		{Title: "c", Artist: "Other", Year: 2001},
	}
	rules := []model.SmartRule{
		{Field: model.FieldArtist, Action: model.ActionStringIs, StringValue: "Daft Punk"},
		{Field: model.FieldYear, Action: model.ActionIntIsGreater, FromValue: 2000},
	}
	got := Evaluate(tracks, rules, model.MatchAll, model.SmartPlaylistPrefs{}, time.Now())
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Title)
}

func TestEvaluateOrShortCircuit(t *testing.T) {
	tracks := []*model.Track{
		{Title: "a", Artist: "Daft Punk", Year: 1990},
		{Title: "b", Artist: "Other", Year: 2010},
		{Title: "c", Artist: "Neither", Year: 1990},
	}
	rules := []model.SmartRule{
		{Field: model.FieldArtist, Action: model.ActionStringIs, StringValue: "Daft Punk"},
		{Field: model.FieldYear, Action: model.ActionIntIsGreater, FromValue: 2000},
	}
	got := Evaluate(tracks, rules, model.MatchAny, model.SmartPlaylistPrefs{}, time.Now())
	assert.Len(t, got, 2)
}

func TestEvaluateMatchCheckedOnlyExcludesChecked(t *testing.T) {
	tracks := []*model.Track{
		{Title: "a", Checked: true},
		{Title: "b", Checked: false},
	}
	prefs := model.SmartPlaylistPrefs{MatchCheckedOnly: true}
	got := Evaluate(tracks, nil, model.MatchAll, prefs, time.Now())
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Title)
}

func TestEvaluateLimitBySongCount(t *testing.T) {
	tracks := []*model.Track{
		{Title: "a", Rating: 100},
		{Title: "b", Rating: 80},
		{Title: "c", Rating: 60},
	}
	prefs := model.SmartPlaylistPrefs{
		Limit: true, LimitType: model.LimitSongs, LimitValue: 2,
		LimitSort: model.LimitSortHighestRated,
	}
	got := Evaluate(tracks, nil, model.MatchAll, prefs, time.Now())
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "b", got[1].Title)
}

func TestDateInTheLastWindow(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	tracks := []*model.Track{
		{Title: "recent", TimeAdded: now.Add(-12 * time.Hour)},
		{Title: "old", TimeAdded: now.Add(-72 * time.Hour)},
	}
	rules := []model.SmartRule{
		{Field: model.FieldDateAdded, Action: model.ActionDateInTheLast, FromDate: 1, FromUnits: 86400},
	}
	got := Evaluate(tracks, rules, model.MatchAll, model.SmartPlaylistPrefs{}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "recent", got[0].Title)
}

func TestBuildSortIndexTitleOrder(t *testing.T) {
	tracks := []*model.Track{
		{Title: "Zebra"},
		{Title: "Apple"},
		{Title: "Mango"},
	}
	idx := BuildSortIndex(tracks, SortKeyTitle)
	require.Len(t, idx, 3)
	assert.Equal(t, []string{"Apple", "Mango", "Zebra"}, []string{
		tracks[idx[0]].Title, tracks[idx[1]].Title, tracks[idx[2]].Title,
	})
}

func TestBuildSortIndexAlbumTiesBreakByTrackNumber(t *testing.T) {
	tracks := []*model.Track{
		{Title: "Track 2", Album: "Discovery", TrackNumber: 2},
		{Title: "Track 1", Album: "Discovery", TrackNumber: 1},
	}
	idx := BuildSortIndex(tracks, SortKeyAlbum)
	assert.Equal(t, "Track 1", tracks[idx[0]].Title)
	assert.Equal(t, "Track 2", tracks[idx[1]].Title)
}
