package thumbnail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicekit/gpoddb/pkg/devicefs"
	"github.com/devicekit/gpoddb/pkg/model"
)

func solidPixels(w, h int, r, g, b byte) model.DecodedPixels {
	stride := w * 4
	buf := make([]byte, stride*h)
	for i := 0; i < len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = r, g, b, 0xff
	}
	return model.DecodedPixels{Width: w, Height: h, Stride: stride, RGBA: buf}
}

func TestSlotSizeIncludesDeclaredPadding(t *testing.T) {
	f := model.ArtworkFormat{Width: 4, Height: 4, Format: model.PixelRGB565LE, Padding: 64}
	assert.Equal(t, 64, SlotSize(f))

	f2 := model.ArtworkFormat{Width: 4, Height: 4, Format: model.PixelRGB565LE}
	assert.Equal(t, 4*4*2, SlotSize(f2))
}

func TestPackRGB565RoundTripsChannels(t *testing.T) {
	format := model.ArtworkFormat{Width: 2, Height: 2, Format: model.PixelRGB565LE}
	px := solidPixels(2, 2, 0xf8, 0xfc, 0xf8) // exactly representable in 565
	packed, err := PackPixels(px, format, 0, 0)
	require.NoError(t, err)
	require.Len(t, packed, 8)

	// every pixel should carry the same packed value
	assert.Equal(t, packed[0:2], packed[2:4])
	assert.Equal(t, packed[0:2], packed[4:6])
}

func TestPackRGB555SetsAlphaBit(t *testing.T) {
	format := model.ArtworkFormat{Width: 1, Height: 1, Format: model.PixelRGB555BE}
	px := solidPixels(1, 1, 0, 0, 0)
	packed, err := PackPixels(px, format, 0, 0)
	require.NoError(t, err)
	require.Len(t, packed, 2)
	assert.Equal(t, byte(0x80), packed[0]&0x80)
}

func TestPackRearrangedRGB555PreservesPixelCount(t *testing.T) {
	format := model.ArtworkFormat{Width: 4, Height: 4, Format: model.PixelRGB555RearrangedLE}
	px := solidPixels(4, 4, 10, 20, 30)
	packed, err := PackPixels(px, format, 0, 0)
	require.NoError(t, err)
	assert.Len(t, packed, 4*4*2)
}

func TestWriterPacksAndRecordsSlot(t *testing.T) {
	fs := devicefs.NewMemFS()
	format := model.ArtworkFormat{CorrelationID: 7, Width: 2, Height: 2, Format: model.PixelRGB888}
	w := NewWriter(fs, "/iPod_Control/Artwork", format)

	px := solidPixels(2, 2, 1, 2, 3)
	item, err := w.Pack(px, 0, false)
	require.NoError(t, err)
	assert.Equal(t, ":F07_00.ithmb", item.Filename)
	assert.Equal(t, uint32(0), item.Offset)
	assert.Equal(t, uint32(2*2*3), item.Size)

	item2, err := w.Pack(px, 0, false)
	require.NoError(t, err)
	assert.Equal(t, item.Size, item2.Offset)

	require.NoError(t, w.Close())

	data, err := fs.ReadFile("/iPod_Control/Artwork/F07_00.ithmb")
	require.NoError(t, err)
	assert.Len(t, data, int(item.Size)*2)
}

func TestWriterClosesAndUnlinksEmptyFile(t *testing.T) {
	fs := devicefs.NewMemFS()
	format := model.ArtworkFormat{CorrelationID: 1, Width: 2, Height: 2, Format: model.PixelRGB888}
	w := NewWriter(fs, "/iPod_Control/Artwork", format)
	require.NoError(t, w.ensureOpen())
	require.NoError(t, w.Close())

	_, err := fs.Stat("/iPod_Control/Artwork/F01_00.ithmb")
	assert.Error(t, err)
}

func TestCompactFileFillsHolesAndTruncates(t *testing.T) {
	fs := devicefs.NewMemFS()
	const slot = 4
	path := "/iPod_Control/Artwork/F00_00.ithmb"
	// 5 slots, each filled with its own index byte, slot 1 and 3 deleted
	require.NoError(t, fs.WriteFile(path, []byte{
		0, 0, 0, 0,
		1, 1, 1, 1,
		2, 2, 2, 2,
		3, 3, 3, 3,
		4, 4, 4, 4,
	}))

	items := []*model.DeviceThumbnailItem{
		{Filename: ":F00_00.ithmb", Offset: 0, Size: slot},
		{Filename: ":F00_00.ithmb", Offset: 2 * slot, Size: slot},
		{Filename: ":F00_00.ithmb", Offset: 4 * slot, Size: slot},
	}

	require.NoError(t, CompactFile(fs, path, items))

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, 3*slot)

	for _, it := range items {
		assert.Less(t, it.Offset, uint32(3*slot))
	}
	offsets := map[uint32]bool{}
	for _, it := range items {
		offsets[it.Offset] = true
	}
	assert.Len(t, offsets, 3)
}

func TestCompactFileAllEmptyDeletesFile(t *testing.T) {
	fs := devicefs.NewMemFS()
	path := "/iPod_Control/Artwork/F00_00.ithmb"
	require.NoError(t, fs.WriteFile(path, []byte{1, 2, 3, 4}))

	require.NoError(t, CompactFile(fs, path, nil))

	_, err := fs.Stat(path)
	assert.Error(t, err)
}

func TestCompactFileRejectsMixedSizes(t *testing.T) {
	fs := devicefs.NewMemFS()
	path := "/iPod_Control/Artwork/F00_00.ithmb"
	require.NoError(t, fs.WriteFile(path, make([]byte, 8)))

	items := []*model.DeviceThumbnailItem{
		{Filename: ":F00_00.ithmb", Offset: 0, Size: 4},
		{Filename: ":F00_00.ithmb", Offset: 4, Size: 8},
	}
	assert.ErrorIs(t, CompactFile(fs, path, items), ErrMixedSlotSizes)
}

func TestCompactAllRemovesUnreferencedFiles(t *testing.T) {
	fs := devicefs.NewMemFS()
	dir := "/iPod_Control/Artwork"
	require.NoError(t, fs.WriteFile(dir+"/F02_00.ithmb", make([]byte, 4)))

	require.NoError(t, CompactAll(fs, dir, nil, []string{"F02_00.ithmb"}))

	_, err := fs.Stat(dir + "/F02_00.ithmb")
	assert.Error(t, err)
}

func TestContentHashMatchesForIdenticalEncodedBytes(t *testing.T) {
	a := model.NewMemoryEncodedThumbnail([]byte("same-bytes"), 0)
	b := model.NewMemoryEncodedThumbnail([]byte("same-bytes"), 0)
	c := model.NewMemoryEncodedThumbnail([]byte("different"), 0)

	ha, err := ContentHash(a)
	require.NoError(t, err)
	hb, err := ContentHash(b)
	require.NoError(t, err)
	hc, err := ContentHash(c)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.NotEqual(t, ha, hc)
}
