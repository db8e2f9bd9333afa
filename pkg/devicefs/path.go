package devicefs

import (
	"fmt"
	"path"
	"strings"
)

// DefaultPathService is the conventional directory layout used by the
// device's "iPod_Control" control directory (spec §6). musicDirsNumber is
// the number of F00..FNN subdirectories the device expects.
type DefaultPathService struct {
	fs              FileStore
	mountpoint      string
	musicDirsNumber int
}

// NewDefaultPathService returns a PathService rooted at mountpoint.
func NewDefaultPathService(fs FileStore, mountpoint string, musicDirsNumber int) *DefaultPathService {
	return &DefaultPathService{fs: fs, mountpoint: mountpoint, musicDirsNumber: musicDirsNumber}
}

func (p *DefaultPathService) join(parts ...string) string {
	return path.Join(append([]string{p.mountpoint}, parts...)...)
}

func (p *DefaultPathService) ControlDir() string      { return p.join("iPod_Control") }
func (p *DefaultPathService) MusicDir() string        { return p.join("iPod_Control", "Music") }
func (p *DefaultPathService) ITunesDir() string       { return p.join("iPod_Control", "iTunes") }
func (p *DefaultPathService) ArtworkDir() string      { return p.join("iPod_Control", "Artwork") }
func (p *DefaultPathService) PhotosDir() string       { return p.join("Photos") }
func (p *DefaultPathService) PhotosThumbDir() string  { return p.join("Photos", "Thumbs") }

func (p *DefaultPathService) ITunesDBPath() string  { return p.join("iPod_Control", "iTunes", "iTunesDB") }
func (p *DefaultPathService) ArtworkDBPath() string { return p.join("iPod_Control", "Artwork", "ArtworkDB") }
func (p *DefaultPathService) PhotoDBPath() string   { return p.join("Photos", "Photo Database") }
func (p *DefaultPathService) ITunesSDPath() string  { return p.join("iPod_Control", "iTunes", "iTunesSD") }

func (p *DefaultPathService) MusicDirsNumber() int { return p.musicDirsNumber }

// ResolvePath performs case-insensitive path resolution on a
// case-preserving-but-case-insensitive filesystem (spec §6): for each
// component, it directory-scans the parent and matches case-folded,
// re-using the disk's casing on success.
func (p *DefaultPathService) ResolvePath(root string, components []string) (string, error) {
	current := root
	for _, want := range components {
		entries, err := p.fs.ReadDir(current)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", path.Join(append([]string{root}, components...)...), err)
		}
		match := ""
		for _, e := range entries {
			if strings.EqualFold(e, want) {
				match = e
				break
			}
		}
		if match == "" {
			return "", fmt.Errorf("resolve %q: component %q not found under %q", path.Join(components...), want, current)
		}
		current = path.Join(current, match)
	}
	return current, nil
}
