package database

import (
	"github.com/devicekit/gpoddb/pkg/devicefs"
	"github.com/devicekit/gpoddb/pkg/thumbnail"
)

// ArtworkPackOptions supplies the thumbnail engine's external
// collaborators (spec §4.9, §1 "the core consumes an image source") to
// WriteMusicDB/WritePhotoDB. A nil *ArtworkPackOptions skips the
// thumbnail engine entirely rather than erroring, leaving any existing
// DeviceThumbnail data untouched -- callers that only need the hunk
// stream itself (e.g. a pure round-trip test) can omit it.
type ArtworkPackOptions struct {
	// FS and Dir locate the FNN_MM.ithmb files alongside the database
	// (spec §6 artwork_dir()/photos_thumb_dir()).
	FS  devicefs.FileStore
	Dir string
	// Source decodes source-file/encoded thumbnails to pixels. Required
	// whenever any artwork still carries a non-device thumbnail shape.
	Source thumbnail.ImageSource
}
