package sqlitexport

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"

	"github.com/devicekit/gpoddb/pkg/model"
)

func TestExportLocationsWritesOneRowPerTrack(t *testing.T) {
	tracks := []*model.Track{
		{PersistentID: 101, IPodPath: ":iPod_Control:Music:F00:track01.mp3", FileSize: 4096, Media: model.MediaTypeAudio},
		{PersistentID: 102, IPodPath: ":iPod_Control:Music:F01:track02.m4a", FileSize: 8192, Media: model.MediaTypeAudio},
		{PersistentID: 103}, // no path: skipped
	}

	path := filepath.Join(t.TempDir(), "Locations.itdb")
	require.NoError(t, ExportLocations(path, tracks))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM location").Scan(&count))
	assert.Equal(t, 2, count)

	var loc string
	require.NoError(t, db.QueryRow("SELECT location FROM location WHERE item_pid = 101").Scan(&loc))
	assert.Equal(t, "F00/track01.mp3", loc)
}

func TestRelativeLocationDropsControlPrefix(t *testing.T) {
	assert.Equal(t, "F12/song.mp3", relativeLocation(":iPod_Control:Music:F12:song.mp3"))
}

func TestFiletypeExtensionPacksBytes(t *testing.T) {
	assert.NotZero(t, filetypeExtension("track.mp3"))
	assert.Zero(t, filetypeExtension("track"))
}
