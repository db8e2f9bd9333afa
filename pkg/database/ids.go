package database

import (
	"github.com/devicekit/gpoddb/pkg/model"
	"github.com/devicekit/gpoddb/pkg/thumbnail"
)

// artworkStartID and photoStartID are the write-time starting points for
// their respective id counters (spec §4.8).
const (
	artworkStartID = 0x64
	photoStartID   = 0x40
)

// AssignArtworkIDs runs the write-time artwork identity pass (spec §4.8
// step 3): dedup tracks sharing the same album and thumbnail content when
// the device supports sparse artwork, then sequentially assign artwork
// ids to what remains, setting each track's ArtworkID (the mhii_link
// field) accordingly.
func AssignArtworkIDs(tracks []*model.Track, device *model.DeviceDescriptor) {
	type dedupKey struct {
		album string
		hash  [20]byte
	}

	canonical := map[dedupKey]*model.Artwork{}
	sparse := device != nil && device.SparseArtwork

	for _, t := range tracks {
		if t.Artwork == nil {
			t.ArtworkID = 0
			continue
		}
		if !sparse {
			continue
		}
		hash, err := thumbnail.ContentHash(t.Artwork.Thumb)
		if err != nil {
			continue
		}
		key := dedupKey{album: t.Album, hash: hash}
		if existing, ok := canonical[key]; ok {
			t.Artwork.TrackPersistentID = 0
			t.Artwork = existing
			continue
		}
		canonical[key] = t.Artwork
	}

	id := uint32(artworkStartID)
	seen := map[*model.Artwork]uint32{}
	for _, t := range tracks {
		if t.Artwork == nil {
			continue
		}
		if existingID, ok := seen[t.Artwork]; ok {
			t.ArtworkID = existingID
			t.Artwork.ID = existingID
			continue
		}
		t.Artwork.ID = id
		seen[t.Artwork] = id
		t.ArtworkID = id
		id++
	}
}

// uniqueTrackArtworks returns the distinct *model.Artwork records
// referenced by tracks, in first-seen order, after AssignArtworkIDs has
// deduplicated shared artwork onto one canonical pointer per group.
func uniqueTrackArtworks(tracks []*model.Track) []*model.Artwork {
	seen := map[*model.Artwork]bool{}
	var out []*model.Artwork
	for _, t := range tracks {
		if t.Artwork == nil || seen[t.Artwork] {
			continue
		}
		seen[t.Artwork] = true
		out = append(out, t.Artwork)
	}
	return out
}

// coverArtFormats returns the subset of device's supported artwork
// formats that describe music cover-art slots, as opposed to photo slots
// (spec §4.9 step 3).
func coverArtFormats(device *model.DeviceDescriptor) []model.ArtworkFormat {
	if device == nil {
		return nil
	}
	var out []model.ArtworkFormat
	for _, f := range device.ArtworkFormats {
		if !f.Type.IsPhoto() {
			out = append(out, f)
		}
	}
	return out
}

// photoArtFormats returns the subset of device's supported artwork
// formats that describe photo slots.
func photoArtFormats(device *model.DeviceDescriptor) []model.ArtworkFormat {
	if device == nil {
		return nil
	}
	var out []model.ArtworkFormat
	for _, f := range device.ArtworkFormats {
		if f.Type.IsPhoto() {
			out = append(out, f)
		}
	}
	return out
}

// AssignPhotoIDs runs the write-time photo/album identity pass (spec
// §4.8): photo ids start at 0x40 and increment sequentially; album ids
// start at 0x64 + photo-count and chain prev-album-id to the previous
// album's id, with the Photo Library (always index 0) first.
func AssignPhotoIDs(db *model.PhotoDB) {
	id := uint32(photoStartID)
	for _, p := range db.Photos {
		p.ID = id
		id++
	}

	albumID := uint32(artworkStartID) + uint32(len(db.Photos))
	var prev uint32
	for _, a := range db.Albums {
		a.AlbumID = albumID
		a.PrevAlbumID = prev
		prev = albumID
		albumID++
	}
}
