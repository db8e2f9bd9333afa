package database

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicekit/gpoddb/pkg/model"
)

func samplePhotoDB() *model.PhotoDB {
	device := &model.DeviceDescriptor{}
	db := model.NewPhotoDB(device)

	p1 := &model.Artwork{Rating: 80, SourceFileSize: 123456}
	p2 := &model.Artwork{Rating: 60, SourceFileSize: 654321}
	db.AddPhoto(p1)
	db.AddPhoto(p2)

	vacation := &model.PhotoAlbum{Name: "Vacation", Type: model.PhotoAlbumUser}
	vacation.AddMember(p2)
	vacation.AddMember(p1)
	db.Albums = append(db.Albums, vacation)

	db.RawFileList = []byte{0, 0, 0, 0}
	return db
}

func TestPhotoDBRoundTripLittleEndian(t *testing.T) {
	db := samplePhotoDB()
	data, err := WritePhotoDB(db, binary.LittleEndian, nil)
	require.NoError(t, err)

	got, err := ParsePhotoDB(data, db.Device)
	require.NoError(t, err)

	require.Len(t, got.Photos, 2)
	assert.Equal(t, uint8(80), got.Photos[0].Rating)
	assert.Equal(t, int64(654321), got.Photos[1].SourceFileSize)

	require.Len(t, got.Albums, 2)
	assert.Equal(t, "Photo Library", got.Albums[0].Name)
	require.Len(t, got.Albums[0].Members, 2)
	assert.Equal(t, "Vacation", got.Albums[1].Name)
	require.Len(t, got.Albums[1].Members, 2)
	assert.Equal(t, got.Photos[1].ID, got.Albums[1].Members[0].ID)
	assert.Equal(t, got.Photos[0].ID, got.Albums[1].Members[1].ID)
}

func TestPhotoDBRoundTripBigEndian(t *testing.T) {
	db := samplePhotoDB()
	db.Device.ByteOrderReversed = true

	data, err := WritePhotoDB(db, binary.BigEndian, nil)
	require.NoError(t, err)

	got, err := ParsePhotoDB(data, db.Device)
	require.NoError(t, err)
	require.Len(t, got.Photos, 2)
	require.Len(t, got.Albums, 2)
}

func TestAssignPhotoIDsChainsAlbums(t *testing.T) {
	db := samplePhotoDB()
	AssignPhotoIDs(db)

	assert.Equal(t, uint32(0x40), db.Photos[0].ID)
	assert.Equal(t, uint32(0x41), db.Photos[1].ID)

	assert.Equal(t, uint32(0x64+2), db.Albums[0].AlbumID)
	assert.Equal(t, uint32(0), db.Albums[0].PrevAlbumID)
	assert.Equal(t, uint32(0x64+3), db.Albums[1].AlbumID)
	assert.Equal(t, db.Albums[0].AlbumID, db.Albums[1].PrevAlbumID)
}
