package thumbnail

import (
	"crypto/sha1"
	"fmt"
	"os"

	"github.com/devicekit/gpoddb/pkg/model"
)

// ContentHash returns the SHA-1 digest of a thumbnail's source bytes (or
// decoded pixels, whichever is available), used by the write-time artwork
// dedup pass (spec §4.8 "deduplicate by album-name + thumbnail-content
// hash (SHA-1 over the thumbnail source bytes or decoded pixels, whichever
// is available)"). Device-shape thumbnails have no source bytes left to
// hash and are skipped by callers before reaching here.
func ContentHash(t model.Thumbnail) ([sha1.Size]byte, error) {
	switch v := t.(type) {
	case *model.SourceFileThumbnail:
		data, err := os.ReadFile(v.Path)
		if err != nil {
			return [sha1.Size]byte{}, fmt.Errorf("hash thumbnail source %q: %w", v.Path, err)
		}
		return sha1.Sum(data), nil
	case *model.MemoryEncodedThumbnail:
		return sha1.Sum(v.Data), nil
	case *model.MemoryDecodedThumbnail:
		return sha1.Sum(v.Pixels.RGBA), nil
	default:
		return [sha1.Size]byte{}, fmt.Errorf("thumbnail: no content to hash for %T", t)
	}
}
