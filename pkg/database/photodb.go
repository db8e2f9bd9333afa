package database

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/devicekit/gpoddb/pkg/hunk"
	"github.com/devicekit/gpoddb/pkg/model"
	"github.com/devicekit/gpoddb/pkg/thumbnail"
)

// mhsd section-type discriminators for a photo database (spec §4.2
// "photo DB variant").
const (
	sectionImages = 1
	sectionAlbums = 2
	sectionFiles  = 3
)

const (
	mhliHeaderLen = 0x5C
	mhlaHeaderLen = 0x5C
	mhiiHeaderLen = 0x98
	mhiaHeaderLen = 0x40
)

// mhodThumbnailItem is a local mhod type used to carry a DeviceThumbnail
// item's fields inside a mhii record, since this library's own write/read
// cycle is the only thing that needs to recover them intact.
const mhodThumbnailItem = 1005

// ParsePhotoDB decodes a complete photo-database-shaped hunk stream (spec
// §4.2 photo DB variant).
func ParsePhotoDB(data []byte, device *model.DeviceDescriptor) (*model.PhotoDB, error) {
	order, err := hunk.ProbeOrder(data)
	if err != nil {
		return nil, err
	}
	r := hunk.NewReader(data, order)
	root := hunk.ReadHeader(r, 0)
	if r.Err() != nil {
		return nil, r.Err()
	}
	if root.Tag != "mhbd" {
		return nil, fmt.Errorf("%w: root tag %q", ErrNotITunesDB, root.Tag)
	}

	db := &model.PhotoDB{Device: device}

	imgSection, ok := findSection(r, root, sectionImages)
	if !ok {
		return nil, ErrMissingSection
	}
	mhli, ok := findTag(r, "mhli", imgSection.BodyStart(), imgSection.End())
	if !ok {
		return nil, fmt.Errorf("%w: mhli not found in image section", ErrMissingSection)
	}
	nrImages := r.U32(mhli.Start + 8)
	byID := map[uint32]*model.Artwork{}
	pos := mhli.BodyStart()
	for i := uint32(0); i < nrImages && pos < imgSection.End(); i++ {
		h := hunk.ReadHeader(r, pos)
		if r.Err() != nil {
			return nil, r.Err()
		}
		if h.Tag == "mhii" {
			a := readPhoto(r, h, device)
			db.Photos = append(db.Photos, a)
			byID[a.ID] = a
		}
		pos = h.End()
	}

	if albumSection, ok := findSection(r, root, sectionAlbums); ok {
		mhla, found := findTag(r, "mhla", albumSection.BodyStart(), albumSection.End())
		if found {
			nrAlbums := r.U32(mhla.Start + 8)
			pos := mhla.BodyStart()
			for i := uint32(0); i < nrAlbums && pos < albumSection.End(); i++ {
				h := hunk.ReadHeader(r, pos)
				if r.Err() != nil {
					return nil, r.Err()
				}
				if h.Tag == "mhia" {
					db.Albums = append(db.Albums, readAlbum(r, h, byID))
				}
				pos = h.End()
			}
		}
	}

	if fileSection, ok := findSection(r, root, sectionFiles); ok {
		n := int(fileSection.TotalLen) - int(fileSection.HeaderLen)
		db.RawFileList = r.Bytes(fileSection.BodyStart(), n)
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	return db, nil
}

// WriteMusicDB's photo counterpart: runs the identity pass (spec §4.8),
// drives the thumbnail engine over the photo library (spec §4.9-§4.10,
// via artwork -- nil skips the engine entirely), and serialises db
// emitting sections in order {1, 2, 3} (spec §4.2).
func WritePhotoDB(db *model.PhotoDB, order binary.ByteOrder, artwork *ArtworkPackOptions) ([]byte, error) {
	AssignPhotoIDs(db)
	if artwork != nil {
		thumbnail.RunEngine(artwork.FS, artwork.Dir, photoArtFormats(db.Device), db.Photos, artwork.Source)
	}

	w := hunk.NewWriter(order)
	root := w.Begin("mhbd", mhbdHeaderLen)
	root.PutU32At(20, 3)

	writeSection(w, sectionImages, func(w *hunk.Writer) { writeMhli(w, db.Photos) })
	writeSection(w, sectionAlbums, func(w *hunk.Writer) { writeMhla(w, db.Albums) })
	writeSection(w, sectionFiles, func(w *hunk.Writer) { w.WriteBytes(db.RawFileList) })

	root.Close()
	return w.Bytes(), nil
}

func readPhoto(r *hunk.Reader, h hunk.Header, device *model.DeviceDescriptor) *model.Artwork {
	a := &model.Artwork{}
	a.ID = r.U32(h.Start + 12)
	a.Rating = r.U8(h.Start + 16)
	a.DigitizedAt = fromDeviceEpoch(r.U32(h.Start + 20))
	a.SourceFileSize = int64(r.U32(h.Start + 24))

	dev := model.NewDeviceThumbnail()
	walker := hunk.Children(r, h.BodyStart(), h.End())
	for {
		ch, ok := walker.Next()
		if !ok {
			break
		}
		if ch.Tag == "mhod" && mhodType(r, ch) == mhodThumbnailItem {
			dev.Items = append(dev.Items, readThumbnailItemMhod(r, ch, device))
		}
	}
	if len(dev.Items) > 0 {
		a.Thumb = dev
	}
	return a
}

func writePhoto(w *hunk.Writer, a *model.Artwork) {
	h := w.Begin("mhii", mhiiHeaderLen)
	h.PutU32At(12, a.ID)
	h.PutU8At(16, a.Rating)
	h.PutU32At(20, toDeviceEpoch(a.DigitizedAt))
	h.PutU32At(24, uint32(a.SourceFileSize))

	switch thumb := a.Thumb.(type) {
	case nil:
	case *model.DeviceThumbnail:
		for _, item := range thumb.Items {
			writeThumbnailItemMhod(w, item)
		}
	default:
		// The thumbnail engine (spec §4.9) converts every non-device
		// shape to *model.DeviceThumbnail before a write; reaching here
		// means it was skipped (no ArtworkPackOptions) or the format
		// list didn't cover this artwork. Either way the artwork's
		// pixels are dropped from this mhii record, so that's logged
		// rather than silently written as if there were no thumbnail.
		slog.Warn("writing photo record with unconverted thumbnail, artwork dropped", "artwork_id", a.ID, "thumb_type", fmt.Sprintf("%T", thumb))
	}
	h.Close()
}

func readThumbnailItemMhod(r *hunk.Reader, ch hunk.Header, device *model.DeviceDescriptor) model.DeviceThumbnailItem {
	off := ch.BodyStart()
	nameLen := int(r.U32(off))
	name := string(r.Bytes(off+4, nameLen))
	pos := off + 4 + nameLen
	item := model.DeviceThumbnailItem{
		Filename:          name,
		Offset:            r.U32(pos),
		Size:              r.U32(pos + 4),
		Width:             int16(r.U16(pos + 8)),
		Height:            int16(r.U16(pos + 10)),
		HorizontalPadding: int16(r.U16(pos + 12)),
		VerticalPadding:   int16(r.U16(pos + 14)),
	}
	correlationID := int16(r.U16(pos + 16))
	if device != nil {
		for i := range device.ArtworkFormats {
			if device.ArtworkFormats[i].CorrelationID == correlationID {
				item.Format = &device.ArtworkFormats[i]
				break
			}
		}
	}
	return item
}

func writeThumbnailItemMhod(w *hunk.Writer, item model.DeviceThumbnailItem) {
	writeOpaqueMhod(w, mhodThumbnailItem, func(w *hunk.Writer) {
		name := []byte(item.Filename)
		w.WriteU32(uint32(len(name)))
		w.WriteBytes(name)
		w.WriteU32(item.Offset)
		w.WriteU32(item.Size)
		w.WriteU16(uint16(item.Width))
		w.WriteU16(uint16(item.Height))
		w.WriteU16(uint16(item.HorizontalPadding))
		w.WriteU16(uint16(item.VerticalPadding))
		var correlationID int16
		if item.Format != nil {
			correlationID = item.Format.CorrelationID
		}
		w.WriteU16(uint16(correlationID))
		w.Pad4()
	})
}

func readAlbum(r *hunk.Reader, h hunk.Header, byID map[uint32]*model.Artwork) *model.PhotoAlbum {
	album := &model.PhotoAlbum{}
	album.Type = model.PhotoAlbumType(r.U8(h.Start + 16))
	album.AlbumID = r.U32(h.Start + 20)
	album.PrevAlbumID = r.U32(h.Start + 24)

	type member struct {
		ordinal uint32
		art     *model.Artwork
	}
	var members []member

	walker := hunk.Children(r, h.BodyStart(), h.End())
	for {
		ch, ok := walker.Next()
		if !ok {
			break
		}
		switch ch.Tag {
		case "mhod":
			if mhodType(r, ch) == mhodTitle {
				album.Name = readStringMhodBody(r, ch)
			}
		case "mhip":
			photoID := r.U32(ch.Start + 24)
			art := byID[photoID]
			if art == nil {
				continue
			}
			var ordinal uint32
			mw := hunk.Children(r, ch.BodyStart(), ch.End())
			for {
				mch, mok := mw.Next()
				if !mok {
					break
				}
				if mch.Tag == "mhod" && mhodType(r, mch) == mhodMemberOrdinal {
					ordinal = readU32MhodBody(r, mch)
				}
			}
			members = append(members, member{ordinal: ordinal, art: art})
		}
	}

	for i := 1; i < len(members); i++ {
		for j := i; j > 0 && members[j-1].ordinal > members[j].ordinal; j-- {
			members[j-1], members[j] = members[j], members[j-1]
		}
	}
	for _, m := range members {
		album.Members = append(album.Members, m.art)
	}
	return album
}

func writeAlbum(w *hunk.Writer, album *model.PhotoAlbum) {
	h := w.Begin("mhia", mhiaHeaderLen)
	h.PutU8At(16, uint8(album.Type))
	h.PutU32At(20, album.AlbumID)
	h.PutU32At(24, album.PrevAlbumID)

	mhodCount := 0
	writeStringMhod(w, mhodTitle, album.Name)
	mhodCount++
	h.PutU32At(12, uint32(mhodCount))

	for i, art := range album.Members {
		writeAlbumMember(w, art, uint32(i))
	}
	h.Close()
}

func writeAlbumMember(w *hunk.Writer, art *model.Artwork, ordinal uint32) {
	h := w.Begin("mhip", mhipHeaderLen)
	h.PutU32At(12, 1)
	h.PutU32At(24, art.ID)
	writeU32Mhod(w, mhodMemberOrdinal, ordinal)
	h.Close()
}

func writeMhli(w *hunk.Writer, photos []*model.Artwork) {
	w.WriteTag("mhli")
	w.WriteU32(mhliHeaderLen)
	w.WriteU32(uint32(len(photos)))
	w.WriteZero(mhliHeaderLen - 12)
	for _, a := range photos {
		writePhoto(w, a)
	}
}

func writeMhla(w *hunk.Writer, albums []*model.PhotoAlbum) {
	w.WriteTag("mhla")
	w.WriteU32(mhlaHeaderLen)
	w.WriteU32(uint32(len(albums)))
	w.WriteZero(mhlaHeaderLen - 12)
	for _, a := range albums {
		writeAlbum(w, a)
	}
}
