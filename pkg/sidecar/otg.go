package sidecar

import (
	"fmt"

	"github.com/devicekit/gpoddb/pkg/devicefs"
	"github.com/devicekit/gpoddb/pkg/hunk"
	"github.com/devicekit/gpoddb/pkg/model"
)

const (
	otgHeaderMin = 0x14
	otgEntryMin  = 0x04
)

// MergeOTGPlaylists reads every "OTGPlaylistInfo"/"OTGPlaylistInfo_N" file
// present in dir, turns each into a named playlist referencing db's
// existing tracks by list position, appends them to db, and deletes the
// source files (spec §6 "On-the-go playlist files"). Files are read in
// the fixed order: "OTGPlaylistInfo" first, then "OTGPlaylistInfo_1",
// "OTGPlaylistInfo_2", ... until one is missing.
func MergeOTGPlaylists(fs devicefs.FileStore, dir string, db *model.MusicDB) error {
	names := []string{dir + "/OTGPlaylistInfo"}
	for i := 1; ; i++ {
		names = append(names, fmt.Sprintf("%s/OTGPlaylistInfo_%d", dir, i))
		if _, err := fs.Stat(names[len(names)-1]); err != nil {
			names = names[:len(names)-1]
			break
		}
	}

	for i, path := range names {
		data, err := fs.ReadFile(path)
		if err != nil || len(data) == 0 {
			continue
		}
		plName := "OTG Playlist"
		if i > 0 {
			plName = fmt.Sprintf("OTG Playlist %d", i)
		}
		pl, err := parseOTGFile(data, db.Tracks, plName)
		if err != nil {
			return err
		}
		db.AddPlaylist(pl)
		if err := fs.Remove(path); err != nil {
			return fmt.Errorf("sidecar: remove OTG file: %w", err)
		}
	}
	return nil
}

// parseOTGFile decodes one mhpo-headed OTG playlist file (spec §6: "mhpo
// header + N 32-bit track-ordinal entries"), resolving each ordinal by
// position in tracks.
func parseOTGFile(data []byte, tracks []*model.Track, name string) (*model.Playlist, error) {
	order, ok := probeTagOrder(data, "mhpo")
	if !ok {
		return nil, ErrNotOTG
	}
	r := hunk.NewReader(data, order)

	headerLen := int(r.U32(4))
	if headerLen < otgHeaderMin {
		return nil, fmt.Errorf("%w: header length %d smaller than expected", ErrNotOTG, headerLen)
	}
	entryLen := int(r.U32(8))
	if entryLen < otgEntryMin {
		return nil, fmt.Errorf("%w: entry length %d smaller than expected", ErrNotOTG, entryLen)
	}
	entryNum := int(r.U32(12))

	pl := &model.Playlist{Name: name, Type: model.PlaylistVisible, Sort: model.SortOrderManual}
	for i := 0; i < entryNum; i++ {
		ordinal := int(r.U32(headerLen + i*entryLen))
		if ordinal < 0 || ordinal >= len(tracks) {
			return nil, fmt.Errorf("%w: reference to non-existent track %d", ErrNotOTG, ordinal)
		}
		pl.AddMember(tracks[ordinal])
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return pl, nil
}
