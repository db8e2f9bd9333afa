package thumbnail

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/devicekit/gpoddb/pkg/devicefs"
	"github.com/devicekit/gpoddb/pkg/model"
)

// RunEngine performs the full write-time thumbnail pass (spec §4.9-§4.10)
// over artworks for every format in formats: it first compacts whatever
// on-disk slots the surviving, already-packed artwork still references
// (reclaiming space left by artwork records the caller removed from the
// model since the last write), then packs a slot for every (artwork,
// format) pair that isn't already packed, converting each artwork's Thumb
// to the on-device shape as it goes. Per-artwork and per-file failures
// are logged and skipped rather than returned: "artwork write failures
// never abort the main database write" (spec §7).
func RunEngine(fs devicefs.FileStore, dir string, formats []model.ArtworkFormat, artworks []*model.Artwork, src ImageSource) {
	if len(formats) == 0 {
		return
	}
	compactExisting(fs, dir, formats, artworks)
	packArtwork(fs, dir, formats, artworks, src)
}

// compactExisting runs CompactAll (spec §4.10) over whatever items the
// surviving artwork still reference, ahead of packing anything new.
func compactExisting(fs devicefs.FileStore, dir string, formats []model.ArtworkFormat, artworks []*model.Artwork) {
	var referenced []*model.DeviceThumbnailItem
	for _, a := range artworks {
		if a == nil {
			continue
		}
		if dev, ok := a.Thumb.(*model.DeviceThumbnail); ok {
			for i := range dev.Items {
				referenced = append(referenced, &dev.Items[i])
			}
		}
	}

	existing, err := existingIthmbFiles(fs, dir, formats)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("listing ithmb directory failed", "dir", dir, "error", err)
		}
		return
	}
	if err := CompactAll(fs, dir, referenced, existing); err != nil {
		slog.Warn("thumbnail compaction failed", "dir", dir, "error", err)
	}
}

// existingIthmbFiles lists dir for FNN_MM.ithmb names whose NN matches a
// currently supported format's correlation id.
func existingIthmbFiles(fs devicefs.FileStore, dir string, formats []model.ArtworkFormat) ([]string, error) {
	names, err := fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	want := make(map[int16]bool, len(formats))
	for _, f := range formats {
		want[f.CorrelationID] = true
	}
	var out []string
	for _, name := range names {
		var nn, mm int
		if n, _ := fmt.Sscanf(name, "F%02d_%02d.ithmb", &nn, &mm); n == 2 && want[int16(nn)] {
			out = append(out, name)
		}
	}
	return out, nil
}

// packArtwork constructs one ithmb Writer per format and, for every
// artwork missing a packed item for that format, decodes and packs one
// (spec §4.9).
func packArtwork(fs devicefs.FileStore, dir string, formats []model.ArtworkFormat, artworks []*model.Artwork, src ImageSource) {
	writers := make(map[int16]*Writer, len(formats))
	for _, format := range formats {
		writers[format.CorrelationID] = NewWriter(fs, dir, format)
	}
	defer func() {
		for _, w := range writers {
			if err := w.Close(); err != nil {
				slog.Warn("closing ithmb writer failed", "error", err)
			}
		}
	}()

	for _, a := range artworks {
		if a == nil || a.Thumb == nil {
			continue
		}
		packOne(a, formats, writers, src)
	}
}

// packOne fills in whatever formats a isn't already packed for, replacing
// a.Thumb with the (possibly updated) on-device shape.
func packOne(a *model.Artwork, formats []model.ArtworkFormat, writers map[int16]*Writer, src ImageSource) {
	source := a.Thumb
	dev, alreadyDevice := source.(*model.DeviceThumbnail)
	if !alreadyDevice {
		dev = model.NewDeviceThumbnail()
	}
	changed := !alreadyDevice

	for i := range formats {
		format := formats[i]
		if _, ok := dev.ItemForFormat(&format); ok {
			continue
		}

		rotation := source.Rotation()
		px, err := decodeThumbnail(source, src, int(format.Width), int(format.Height))
		if err != nil {
			slog.Warn("thumbnail decode failed, substituting placeholder", "format", format.CorrelationID, "error", err)
			px = placeholderPixels(int(format.Width), int(format.Height))
			rotation = 0
		}

		item, err := writers[format.CorrelationID].Pack(px, rotation, format.Type.IsPhoto())
		if err != nil {
			slog.Warn("packing thumbnail slot failed", "format", format.CorrelationID, "error", err)
			continue
		}
		dev.Items = append(dev.Items, item)
		changed = true
	}

	if changed {
		a.Thumb = dev
	}
}

// decodeThumbnail obtains a decoded pixel buffer at width x height from
// whichever of the three non-device thumbnail shapes a already-device
// thumbnail's source holds (spec §3 shapes 1-3).
func decodeThumbnail(t model.Thumbnail, src ImageSource, width, height int) (model.DecodedPixels, error) {
	switch v := t.(type) {
	case *model.SourceFileThumbnail:
		if src == nil {
			return model.DecodedPixels{}, fmt.Errorf("thumbnail: no ImageSource configured for %q", v.Path)
		}
		return src.DecodeFile(v.Path, width, height)
	case *model.MemoryEncodedThumbnail:
		if src == nil {
			return model.DecodedPixels{}, errors.New("thumbnail: no ImageSource configured for encoded data")
		}
		return src.DecodeBytes(v.Data, width, height)
	case *model.MemoryDecodedThumbnail:
		return scaleDecoded(v.Pixels, width, height), nil
	default:
		return model.DecodedPixels{}, fmt.Errorf("thumbnail: no pixel source for %T", t)
	}
}

// scaleDecoded nearest-neighbour-samples an already-decoded buffer to
// exactly width x height, or returns it unchanged if it already matches.
func scaleDecoded(px model.DecodedPixels, width, height int) model.DecodedPixels {
	if px.Width == width && px.Height == height {
		return px
	}
	stride := width * 4
	out := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		sy := y * px.Height / height
		for x := 0; x < width; x++ {
			sx := x * px.Width / width
			r, g, b, a := pixelAt(px, sx, sy)
			off := y*stride + x*4
			out[off], out[off+1], out[off+2], out[off+3] = r, g, b, a
		}
	}
	return model.DecodedPixels{Width: width, Height: height, Stride: stride, RGBA: out}
}
