// Package database implements the parser and writer passes that turn a
// hunk stream (pkg/hunk) into the domain model (pkg/model) and back: the
// mhbd/mhsd top-level layout, mhit track records, mhyp/mhip playlist
// records, the SLst smart-playlist sub-hunk (via pkg/smartplaylist), and
// the write-time identity/linking pass (spec §4.2-§4.8).
package database

import "errors"

var (
	// ErrNotITunesDB is returned when the root hunk isn't mhbd.
	ErrNotITunesDB = errors.New("database: not a recognised database file")
	// ErrMissingSection is returned when a required mhsd section (index 1,
	// the track or image list) is absent (spec §4.2 "missing section 1 is
	// fatal").
	ErrMissingSection = errors.New("database: missing required mhsd section")
)
