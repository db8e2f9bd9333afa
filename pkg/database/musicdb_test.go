package database

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicekit/gpoddb/pkg/devicefs"
	"github.com/devicekit/gpoddb/pkg/model"
	"github.com/devicekit/gpoddb/pkg/thumbnail"
)

func sampleDB() *model.MusicDB {
	device := &model.DeviceDescriptor{MusicDirsNumber: 20}
	db := model.NewMusicDB(device)
	db.FormatVersion = 0x19
	db.ID = 0x1122334455667788

	t1 := &model.Track{
		Title: "Around the World", Artist: "Daft Punk", Album: "Homework",
		Genre: "Electronic", IPodPath: ":F00:track0001.mp3",
		DurationMS: 420000, TrackNumber: 1, TrackTotal: 16, Year: 1997,
		BitRate: 320, PersistentID: 0xaaaa1111,
		TimeAdded: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	t2 := &model.Track{
		Title: "One More Time", Artist: "Daft Punk", Album: "Discovery",
		Genre: "Electronic", IPodPath: ":F01:track0002.mp3",
		DurationMS: 320000, TrackNumber: 1, TrackTotal: 14, Year: 2001,
		BitRate: 256, PersistentID: 0xaaaa2222,
		TimeAdded: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	db.AddTrack(t1)
	db.AddTrack(t2)
	db.MPL().AddMember(t1)
	db.MPL().AddMember(t2)

	pl := &model.Playlist{Name: "Favorites", Type: model.PlaylistVisible, Sort: model.SortOrderManual}
	pl.AddMember(t2)
	pl.AddMember(t1)
	db.AddPlaylist(pl)

	return db
}

func TestMusicDBRoundTripLittleEndian(t *testing.T) {
	db := sampleDB()
	data, err := WriteMusicDB(db, binary.LittleEndian, nil)
	require.NoError(t, err)

	got, err := ParseMusicDB(data, db.Device)
	require.NoError(t, err)

	require.Len(t, got.Tracks, 2)
	assert.Equal(t, db.FormatVersion, got.FormatVersion)
	assert.Equal(t, db.ID, got.ID)

	byPID := map[uint64]*model.Track{}
	for _, tr := range got.Tracks {
		byPID[tr.PersistentID] = tr
	}
	require.Contains(t, byPID, uint64(0xaaaa1111))
	assert.Equal(t, "Around the World", byPID[0xaaaa1111].Title)
	assert.Equal(t, "Daft Punk", byPID[0xaaaa1111].Artist)
	assert.Equal(t, ":F00:track0001.mp3", byPID[0xaaaa1111].IPodPath)

	require.Len(t, got.Playlists, 2)
	assert.Equal(t, model.PlaylistMaster, got.Playlists[0].Type)
	require.Len(t, got.Playlists[0].Members, 2)
	assert.Equal(t, "Favorites", got.Playlists[1].Name)
	require.Len(t, got.Playlists[1].Members, 2)
	assert.Equal(t, uint64(0xaaaa2222), got.Playlists[1].Members[0].Track.PersistentID)
}

func TestMusicDBRoundTripBigEndian(t *testing.T) {
	db := sampleDB()
	db.Device.ByteOrderReversed = true

	data, err := WriteMusicDB(db, binary.BigEndian, nil)
	require.NoError(t, err)
	require.Equal(t, "mhbd", string([]byte{data[3], data[2], data[1], data[0]}))

	got, err := ParseMusicDB(data, db.Device)
	require.NoError(t, err)
	require.Len(t, got.Tracks, 2)
	assert.Equal(t, "Homework", got.Tracks[0].Album)
}

// TestWriteMusicDBPacksSharedArtworkIntoOneSlot mirrors the acceptance
// scenario where two tracks on the same album carry identical artwork:
// write() must dedup them onto one ithmb slot rather than packing the
// same pixels twice.
func TestWriteMusicDBPacksSharedArtworkIntoOneSlot(t *testing.T) {
	format := model.ArtworkFormat{CorrelationID: 1, Width: 2, Height: 2, Format: model.PixelRGB565LE}

	device := &model.DeviceDescriptor{MusicDirsNumber: 20, SparseArtwork: true, ArtworkFormats: []model.ArtworkFormat{format}}
	db := model.NewMusicDB(device)
	db.FormatVersion = 0x19

	px := model.DecodedPixels{Width: 2, Height: 2, Stride: 8, RGBA: []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 0, 255,
	}}

	t1 := &model.Track{Title: "Track A", Album: "Homework", IPodPath: ":F00:a.mp3", PersistentID: 1}
	t1.Artwork = &model.Artwork{Thumb: model.NewMemoryDecodedThumbnail(px, 0)}
	t2 := &model.Track{Title: "Track B", Album: "Homework", IPodPath: ":F00:b.mp3", PersistentID: 2}
	t2.Artwork = &model.Artwork{Thumb: model.NewMemoryDecodedThumbnail(px, 0)}
	db.AddTrack(t1)
	db.AddTrack(t2)
	db.MPL().AddMember(t1)
	db.MPL().AddMember(t2)

	fs := devicefs.NewMemFS()
	artwork := &ArtworkPackOptions{FS: fs, Dir: "/Artwork"}

	_, err := WriteMusicDB(db, binary.LittleEndian, artwork)
	require.NoError(t, err)

	assert.Equal(t, t1.ArtworkID, t2.ArtworkID, "shared artwork should collapse onto one id")

	dev, ok := t1.Artwork.Thumb.(*model.DeviceThumbnail)
	require.True(t, ok, "artwork should be converted to the on-device shape")
	require.Len(t, dev.Items, 1)

	data, err := fs.ReadFile(artwork.Dir + "/" + dev.Items[0].Filename[1:]) // strip the leading ":"
	require.NoError(t, err)
	assert.Equal(t, thumbnail.SlotSize(format), len(data), "one packed slot, not two")
}

func TestAssignTrackIDsOrdersByMPL(t *testing.T) {
	db := sampleDB()
	AssignTrackIDs(db)
	require.Len(t, db.Tracks, 2)
	assert.Equal(t, uint32(0x34), db.Tracks[0].ID)
	assert.Equal(t, uint32(0x35), db.Tracks[1].ID)
	assert.Equal(t, "Around the World", db.Tracks[0].Title)
}
