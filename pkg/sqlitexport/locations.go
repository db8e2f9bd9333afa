// Package sqlitexport builds the auxiliary "Locations.itdb" SQLite
// database some device generations expect alongside the hunk-stream
// database: a queryable mirror letting a device indexer resolve on-disk
// paths without parsing the binary format (spec §4.13, grounded on
// original_source/src/itdb_sqlite.c's itdb_sqlite_exporter_generate
// path and the `Locations_create` schema in itdb_sqlite_queries.h).
//
// This is additive: a Write() of the hunk stream itself never depends on
// it, and a failed export is never a parse/write failure.
package sqlitexport

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/devicekit/gpoddb/pkg/model"
)

const locationsSchema = `
CREATE TABLE IF NOT EXISTS location (
	item_pid INTEGER NOT NULL,
	sub_id INTEGER NOT NULL DEFAULT 0,
	base_location_id INTEGER DEFAULT 0,
	location_type INTEGER,
	location TEXT,
	extension INTEGER,
	kind_id INTEGER DEFAULT 0,
	date_created INTEGER DEFAULT 0,
	file_size INTEGER DEFAULT 0,
	PRIMARY KEY (item_pid, sub_id)
);
CREATE TABLE IF NOT EXISTS base_location (
	id INTEGER NOT NULL,
	path TEXT,
	PRIMARY KEY (id)
);
`

// locationTypeFile is the fixed "FILE" location-type tag the original
// exporter always writes (itdb_sqlite.c: "this should always be 0x46494C45
// = FILE for now").
const locationTypeFile = 0x46494C45

const deviceEpochOffsetSeconds = 2082844800

func toDeviceEpoch(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix() + deviceEpochOffsetSeconds
}

// ExportLocations writes path (creating or replacing it) as a
// Locations.itdb mirror of db's tracks, one row per track keyed by
// persistent id (spec §4.13).
func ExportLocations(path string, tracks []*model.Track) error {
	dsn := fmt.Sprintf("file:%s?_journal=MEMORY", path)
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("sqlitexport: open %s: %w", path, err)
	}
	defer sqldb.Close()

	if _, err := sqldb.Exec("PRAGMA synchronous = OFF;"); err != nil {
		return fmt.Errorf("sqlitexport: pragma: %w", err)
	}
	if _, err := sqldb.Exec(locationsSchema); err != nil {
		return fmt.Errorf("sqlitexport: create schema: %w", err)
	}

	tx, err := sqldb.Begin()
	if err != nil {
		return fmt.Errorf("sqlitexport: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM location;"); err != nil {
		return fmt.Errorf("sqlitexport: clear location: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO location
		(item_pid, sub_id, base_location_id, location_type, location, extension, kind_id, date_created, file_size)
		VALUES (?, 0, 1, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlitexport: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tracks {
		if t.IPodPath == "" {
			continue
		}
		if _, err := stmt.Exec(
			int64(t.PersistentID),
			locationTypeFile,
			relativeLocation(t.IPodPath),
			filetypeExtension(t.IPodPath),
			uint32(t.Media),
			toDeviceEpoch(t.TimeModified),
			t.FileSize,
		); err != nil {
			return fmt.Errorf("sqlitexport: insert track %d: %w", t.PersistentID, err)
		}
	}

	return tx.Commit()
}

// relativeLocation mirrors the original exporter's path rewrite: colons
// become slashes, and the first three components (":iPod_Control:Music:")
// are dropped so `location` is relative to the music directory
// (itdb_sqlite.c's `pos` bookkeeping in the location-insert loop).
func relativeLocation(ipodPath string) string {
	slashed := strings.ReplaceAll(ipodPath, ":", "/")
	parts := strings.SplitN(slashed, "/", 4)
	if len(parts) == 4 {
		return parts[3]
	}
	return strings.TrimPrefix(slashed, "/")
}

// filetypeExtension returns the on-disk file extension's bytes packed
// into a uint32, the same representation track->filetype_marker uses.
func filetypeExtension(ipodPath string) uint32 {
	dot := strings.LastIndexByte(ipodPath, '.')
	if dot < 0 || dot == len(ipodPath)-1 {
		return 0
	}
	ext := strings.ToUpper(ipodPath[dot+1:])
	var v uint32
	for i := 0; i < 4 && i < len(ext); i++ {
		v = v<<8 | uint32(ext[i])
	}
	return v
}
