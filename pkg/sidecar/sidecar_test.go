package sidecar

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicekit/gpoddb/pkg/devicefs"
	"github.com/devicekit/gpoddb/pkg/model"
)

func buildPlayCounts(entries [][4]uint32) []byte {
	const headerLen = 0x60
	const entryLen = 0x1c
	buf := make([]byte, headerLen+len(entries)*entryLen)
	copy(buf[0:4], "mhdp")
	binary.LittleEndian.PutUint32(buf[4:], headerLen)
	binary.LittleEndian.PutUint32(buf[8:], entryLen)
	binary.LittleEndian.PutUint32(buf[12:], uint32(len(entries)))
	for i, e := range entries {
		seek := headerLen + i*entryLen
		binary.LittleEndian.PutUint32(buf[seek:], e[0])   // playcount
		binary.LittleEndian.PutUint32(buf[seek+4:], e[1]) // time played
		binary.LittleEndian.PutUint32(buf[seek+8:], e[2]) // bookmark
		binary.LittleEndian.PutUint32(buf[seek+12:], e[3]) // rating
	}
	return buf
}

func TestMergePlayCountsAppliesByPositionAndRenames(t *testing.T) {
	fs := devicefs.NewMemFS()
	data := buildPlayCounts([][4]uint32{
		{5, 0, 1000, 80},
		{2, 0, 0, 0xFFFFFFFF},
	})
	require.NoError(t, fs.WriteFile("/iTunes/Play Counts", data))

	deltas, err := MergePlayCounts(fs, "/iTunes")
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	assert.Equal(t, int32(5), deltas[0].PlayCount)
	require.NotNil(t, deltas[0].Rating)
	assert.Equal(t, uint8(80), *deltas[0].Rating)
	assert.Nil(t, deltas[1].Rating)

	_, err = fs.Stat("/iTunes/Play Counts")
	assert.Error(t, err)
	_, err = fs.Stat("/iTunes/Play Counts.bak")
	assert.NoError(t, err)

	tracks := []*model.Track{{PlayCount: 10}, {PlayCount: 1}}
	ApplyPlayCountDeltas(tracks, deltas)
	assert.Equal(t, int32(15), tracks[0].PlayCount)
	assert.Equal(t, int32(3), tracks[1].PlayCount)
	assert.Equal(t, uint8(80), tracks[0].Rating)
}

func TestMergePlayCountsNoFilePresent(t *testing.T) {
	fs := devicefs.NewMemFS()
	deltas, err := MergePlayCounts(fs, "/iTunes")
	require.NoError(t, err)
	assert.Nil(t, deltas)
}

func buildOTG(trackOrdinals []uint32) []byte {
	const headerLen = 0x14
	const entryLen = 0x04
	buf := make([]byte, headerLen+len(trackOrdinals)*entryLen)
	copy(buf[0:4], "mhpo")
	binary.LittleEndian.PutUint32(buf[4:], headerLen)
	binary.LittleEndian.PutUint32(buf[8:], entryLen)
	binary.LittleEndian.PutUint32(buf[12:], uint32(len(trackOrdinals)))
	for i, n := range trackOrdinals {
		binary.LittleEndian.PutUint32(buf[headerLen+i*entryLen:], n)
	}
	return buf
}

func TestMergeOTGPlaylists(t *testing.T) {
	fs := devicefs.NewMemFS()
	require.NoError(t, fs.WriteFile("/iTunes/OTGPlaylistInfo", buildOTG([]uint32{1, 0})))

	device := &model.DeviceDescriptor{}
	db := model.NewMusicDB(device)
	t0 := &model.Track{Title: "A"}
	t1 := &model.Track{Title: "B"}
	db.AddTrack(t0)
	db.AddTrack(t1)

	require.NoError(t, MergeOTGPlaylists(fs, "/iTunes", db))
	require.Len(t, db.Playlists, 2)
	otg := db.Playlists[1]
	assert.Equal(t, "OTG Playlist", otg.Name)
	require.Len(t, otg.Members, 2)
	assert.Equal(t, "B", otg.Members[0].Track.Title)
	assert.Equal(t, "A", otg.Members[1].Track.Title)

	_, err := fs.Stat("/iTunes/OTGPlaylistInfo")
	assert.Error(t, err)
}
