// Command gpodctl is a minimal demonstration CLI over pkg/database: list
// and add tracks in a device's music database, and watch a mounted
// device's control directory for external changes (spec §4.12 "demo CLI").
// It is a thin shell over the library, not a product in its own right
// (spec's Non-goals: "CLI tools beyond the demo gpodctl").
package main

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
	"github.com/spf13/cobra"

	"github.com/devicekit/gpoddb/pkg/config"
	"github.com/devicekit/gpoddb/pkg/database"
	"github.com/devicekit/gpoddb/pkg/devicefs"
	"github.com/devicekit/gpoddb/pkg/imagesrc"
	"github.com/devicekit/gpoddb/pkg/model"
	"github.com/devicekit/gpoddb/pkg/sidecar"
	"github.com/devicekit/gpoddb/pkg/sqlitexport"
)

func binaryOrderFor(device *model.DeviceDescriptor) binary.ByteOrder {
	if device.ByteOrderReversed {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

var flagMountpoint string

func main() {
	root := &cobra.Command{
		Use:   "gpodctl",
		Short: "Inspect and edit a device music database",
	}
	root.PersistentFlags().StringVar(&flagMountpoint, "mountpoint", config.Mountpoint(), "device mountpoint (or $GPODDB_MOUNTPOINT)")

	root.AddCommand(listCmd(), addCmd(), watchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDevice() (devicefs.FileStore, devicefs.PathService, *model.DeviceDescriptor, error) {
	fs, err := devicefs.NewLocalFS(flagMountpoint)
	if err != nil {
		return nil, nil, nil, err
	}
	device := &model.DeviceDescriptor{MusicDirsNumber: 20}
	paths := devicefs.NewDefaultPathService(fs, "/", device.MusicDirsNumber)
	return fs, paths, device, nil
}

// loadMusicDB parses the iTunesDB and folds in whatever play-count and
// on-the-go playlist sidecar files the device has accumulated since the
// last write (spec §6 data flow: hunk bytes -> parser -> model, plus
// auxiliary sidecar merge).
func loadMusicDB(fs devicefs.FileStore, paths devicefs.PathService, device *model.DeviceDescriptor) (*model.MusicDB, error) {
	data, err := fs.ReadFile(paths.ITunesDBPath())
	if err != nil {
		return nil, fmt.Errorf("read iTunesDB: %w", err)
	}
	db, err := database.ParseMusicDB(data, device)
	if err != nil {
		return nil, err
	}

	deltas, err := sidecar.MergePlayCounts(fs, paths.ITunesDir())
	if err != nil {
		return nil, fmt.Errorf("merge play counts: %w", err)
	}
	sidecar.ApplyPlayCountDeltas(db.Tracks, deltas)

	if err := sidecar.MergeOTGPlaylists(fs, paths.ITunesDir(), db); err != nil {
		return nil, fmt.Errorf("merge on-the-go playlists: %w", err)
	}

	return db, nil
}

// saveMusicDB runs the thumbnail engine over cover art, writes the
// iTunesDB, and refreshes the additive SQLite location mirror (spec
// §4.13). The SQLite export failing is logged but never blocks a
// successful hunk-stream write.
func saveMusicDB(fs devicefs.FileStore, paths devicefs.PathService, db *model.MusicDB, device *model.DeviceDescriptor) error {
	artwork := &database.ArtworkPackOptions{FS: fs, Dir: paths.ArtworkDir(), Source: imagesrc.New()}
	out, err := database.WriteMusicDB(db, binaryOrderFor(device), artwork)
	if err != nil {
		return fmt.Errorf("write iTunesDB: %w", err)
	}
	if err := fs.WriteFile(paths.ITunesDBPath(), out); err != nil {
		return fmt.Errorf("write iTunesDB file: %w", err)
	}

	if local, ok := fs.(*devicefs.LocalFS); ok {
		locPath := filepath.Join(local.HostPath(paths.ITunesDir()), "Locations.itdb")
		if err := sqlitexport.ExportLocations(locPath, db.Tracks); err != nil {
			slog.Warn("locations export failed", "error", err)
		}
	}
	return nil
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every track in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, paths, device, err := openDevice()
			if err != nil {
				return err
			}
			db, err := loadMusicDB(fs, paths, device)
			if err != nil {
				return err
			}
			for _, t := range db.Tracks {
				fmt.Printf("%d\t%s - %s\t%s\n", t.PersistentID, t.Artist, t.Title, t.IPodPath)
			}
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	var ipodPath string
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a local audio file's tags as a new track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, paths, device, err := openDevice()
			if err != nil {
				return err
			}
			db, err := loadMusicDB(fs, paths, device)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			meta, err := tag.ReadFrom(f)
			if err != nil {
				return fmt.Errorf("read tags: %w", err)
			}

			t := trackFromTags(meta, ipodPath)
			info, err := os.Stat(args[0])
			if err == nil {
				t.FileSize = uint64(info.Size())
				t.TimeModified = info.ModTime()
			}
			db.AddTrack(t)
			db.MPL().AddMember(t)

			if err := saveMusicDB(fs, paths, db, device); err != nil {
				return err
			}
			slog.Info("added track", "title", t.Title, "artist", t.Artist, "path", ipodPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&ipodPath, "ipod-path", "", "on-device path to record for this track (e.g. :F00:track.mp3)")
	return cmd
}

// trackFromTags maps external tag metadata into a Track. dhowden/tag is
// consumed only here; the library core never imports it (spec §4.12).
func trackFromTags(meta tag.Metadata, ipodPath string) *model.Track {
	t := &model.Track{
		Title:    meta.Title(),
		Artist:   meta.Artist(),
		Album:    meta.Album(),
		Genre:    meta.Genre(),
		Composer: meta.Composer(),
		Year:     meta.Year(),
		IPodPath: ipodPath,
		Media:    model.MediaTypeAudio,
	}
	trackNum, trackTotal := meta.Track()
	t.TrackNumber, t.TrackTotal = trackNum, trackTotal
	discNum, discTotal := meta.Disc()
	t.DiscNumber, t.DiscTotal = discNum, discTotal
	return t
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Warn about external writes to the device control directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, paths, _, err := openDevice()
			if err != nil {
				return err
			}
			w, err := devicefs.WatchControlDir(paths.ControlDir())
			if err != nil {
				return err
			}
			defer w.Close()
			slog.Info("watching control directory", "dir", paths.ControlDir())
			select {}
		},
	}
}
