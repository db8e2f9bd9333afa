package devicefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemFSRandomAccessRoundTrip(t *testing.T) {
	fs := NewMemFS()
	require.NoError(t, fs.WriteFile("/iPod_Control/Artwork/ArtworkDB", []byte("0123456789")))

	f, err := fs.Open("/iPod_Control/Artwork/ArtworkDB")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 4)
	n, err := f.ReadAt(buf, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "3456", string(buf))

	_, err = f.WriteAt([]byte("XX"), 3)
	require.NoError(t, err)

	got, err := fs.ReadFile("/iPod_Control/Artwork/ArtworkDB")
	require.NoError(t, err)
	assert.Equal(t, "012XX56789", string(got))

	require.NoError(t, f.Truncate(5))
	got, err = fs.ReadFile("/iPod_Control/Artwork/ArtworkDB")
	require.NoError(t, err)
	assert.Equal(t, "012XX", string(got))
}

func TestMemFSAppendTracksOffset(t *testing.T) {
	fs := NewMemFS()
	a, err := fs.OpenAppend("/iPod_Control/Artwork/F00/APic0001.ithmb")
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.Offset())

	n, err := a.Write([]byte("thumbbytes"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, int64(10), a.Offset())
	require.NoError(t, a.Close())

	b, err := fs.OpenAppend("/iPod_Control/Artwork/F00/APic0001.ithmb")
	require.NoError(t, err)
	assert.Equal(t, int64(10), b.Offset())
}

func TestMemFSReadDirListsImmediateChildrenOnly(t *testing.T) {
	fs := NewMemFS()
	require.NoError(t, fs.WriteFile("/iPod_Control/Music/F00/track1.mp3", nil))
	require.NoError(t, fs.WriteFile("/iPod_Control/Music/F01/track2.mp3", nil))

	entries, err := fs.ReadDir("/iPod_Control/Music")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"F00", "F01"}, entries)
}

func TestDefaultPathServiceLayout(t *testing.T) {
	fs := NewMemFS()
	ps := NewDefaultPathService(fs, "/mnt/ipod", 20)

	assert.Equal(t, "/mnt/ipod/iPod_Control", ps.ControlDir())
	assert.Equal(t, "/mnt/ipod/iPod_Control/Music", ps.MusicDir())
	assert.Equal(t, "/mnt/ipod/iPod_Control/iTunes", ps.ITunesDir())
	assert.Equal(t, "/mnt/ipod/iPod_Control/Artwork", ps.ArtworkDir())
	assert.Equal(t, "/mnt/ipod/Photos", ps.PhotosDir())
	assert.Equal(t, "/mnt/ipod/Photos/Thumbs", ps.PhotosThumbDir())
	assert.Equal(t, "/mnt/ipod/iPod_Control/iTunes/iTunesDB", ps.ITunesDBPath())
	assert.Equal(t, "/mnt/ipod/iPod_Control/Artwork/ArtworkDB", ps.ArtworkDBPath())
	assert.Equal(t, "/mnt/ipod/Photos/Photo Database", ps.PhotoDBPath())
	assert.Equal(t, "/mnt/ipod/iPod_Control/iTunes/iTunesSD", ps.ITunesSDPath())
	assert.Equal(t, 20, ps.MusicDirsNumber())
}

func TestResolvePathIsCaseInsensitive(t *testing.T) {
	fs := NewMemFS()
	require.NoError(t, fs.WriteFile("/iPod_Control/Music/F03/IMG_0001.JPG", nil))
	ps := NewDefaultPathService(fs, "/", 20)

	got, err := ps.ResolvePath("/iPod_Control/Music", []string{"f03", "img_0001.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "/iPod_Control/Music/F03/IMG_0001.JPG", got)
}

func TestResolvePathMissingComponent(t *testing.T) {
	fs := NewMemFS()
	require.NoError(t, fs.WriteFile("/iPod_Control/Music/F03/IMG_0001.JPG", nil))
	ps := NewDefaultPathService(fs, "/", 20)

	_, err := ps.ResolvePath("/iPod_Control/Music", []string{"F99"})
	assert.Error(t, err)
}

func TestAcquireLockConflict(t *testing.T) {
	fs := NewMemFS()
	require.NoError(t, fs.MkdirAll("/iPod_Control"))

	first, err := AcquireLock(fs, "/iPod_Control")
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)

	_, err = AcquireLock(fs, "/iPod_Control")
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Release())

	second, err := AcquireLock(fs, "/iPod_Control")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestLockReleaseRejectsTokenMismatch(t *testing.T) {
	fs := NewMemFS()
	l, err := AcquireLock(fs, "/iPod_Control")
	require.NoError(t, err)

	require.NoError(t, fs.WriteFile("/iPod_Control/"+LockFile, []byte("someone-elses-token")))
	assert.Error(t, l.Release())
}
