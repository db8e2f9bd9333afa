package thumbnail

import (
	"fmt"
	"sort"

	"github.com/devicekit/gpoddb/pkg/devicefs"
	"github.com/devicekit/gpoddb/pkg/model"
)

// CompactFile performs in-place compaction of one .ithmb file, given the
// still-referenced items that point into it (spec §4.10). items are
// mutated in place: each survivor's Offset is rewritten to its new slot.
// Grounded on ithmb_rearrange_thumbnail_file in the original
// ithumb-writer.c, adapted to devicefs.FileStore's ReaderAt/WriterAt
// instead of raw lseek/read/write, and to a Go-native fill-from-the-tail
// loop instead of the C version's in-place linked-list surgery.
func CompactFile(fs devicefs.FileStore, path string, items []*model.DeviceThumbnailItem) error {
	if len(items) == 0 {
		return fs.Remove(path)
	}

	size := items[0].Size
	for _, it := range items {
		if it.Size != size {
			return ErrMixedSlotSizes
		}
	}
	if size == 0 {
		return ErrMixedSlotSizes
	}

	info, err := fs.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if info.Size%int64(size) != 0 {
		return fmt.Errorf("%w: %q length %d not a multiple of slot size %d", ErrMixedSlotSizes, path, info.Size, size)
	}

	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	// Sort descending by offset so the tail-most item is always
	// available to fill the next empty low slot (spec §4.10 step 4).
	sorted := make([]*model.DeviceThumbnailItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset > sorted[j].Offset })

	targetLen := int64(len(items)) * int64(size)
	occupied := make(map[uint32]*model.DeviceThumbnailItem, len(items))
	for _, it := range items {
		occupied[it.Offset] = it
	}

	tail := 0 // index into sorted, points at the highest-offset item not yet placed
	buf := make([]byte, size)
	for offset := uint32(0); int64(offset) < targetLen; offset += size {
		if occupied[offset] != nil {
			continue
		}
		// Find the highest-offset item still sitting beyond targetLen
		// (or at an offset that's itself about to be vacated).
		for tail < len(sorted) && sorted[tail].Offset < uint32(targetLen) {
			tail++
		}
		if tail >= len(sorted) {
			break
		}
		src := sorted[tail]
		tail++

		if _, err := f.ReadAt(buf, int64(src.Offset)); err != nil {
			return fmt.Errorf("read slot at %d in %q: %w", src.Offset, path, err)
		}
		if _, err := f.WriteAt(buf, int64(offset)); err != nil {
			return fmt.Errorf("write slot at %d in %q: %w", offset, path, err)
		}
		delete(occupied, src.Offset)
		src.Offset = offset
		occupied[offset] = src
	}

	if err := f.Truncate(targetLen); err != nil {
		return fmt.Errorf("truncate %q to %d: %w", path, targetLen, err)
	}
	if targetLen == 0 {
		f.Close()
		return fs.Remove(path)
	}
	return nil
}

// CompactAll groups referenced items by filename (spec §4.10 step
// 1) and compacts each file, then removes any supported-format file that
// no surviving item references at all.
func CompactAll(fs devicefs.FileStore, dir string, referenced []*model.DeviceThumbnailItem, existingFiles []string) error {
	byFile := make(map[string][]*model.DeviceThumbnailItem)
	for _, it := range referenced {
		name := it.Filename
		if len(name) > 0 && name[0] == ':' {
			name = name[1:]
		}
		byFile[name] = append(byFile[name], it)
	}

	for name, items := range byFile {
		if err := CompactFile(fs, dir+"/"+name, items); err != nil {
			return fmt.Errorf("compact %q: %w", name, err)
		}
	}

	for _, name := range existingFiles {
		if _, ok := byFile[name]; !ok {
			if err := fs.Remove(dir + "/" + name); err != nil {
				return fmt.Errorf("remove unreferenced %q: %w", name, err)
			}
		}
	}
	return nil
}
