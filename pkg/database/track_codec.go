package database

import (
	"time"

	"github.com/devicekit/gpoddb/pkg/hunk"
	"github.com/devicekit/gpoddb/pkg/model"
)

// mhit header lengths: progressively larger format versions added fields
// at fixed offsets without removing earlier ones (spec §4.3). Writers
// always emit the current, largest header.
const (
	mhitHeaderLenV1      = 0x9C
	mhitHeaderLenV2      = 0xF4
	mhitHeaderLenCurrent = 0x148
)

// deviceEpochOffsetSeconds converts between the host Unix epoch and the
// device's 1904-01-01 UTC epoch (spec §6 "Timestamps").
const deviceEpochOffsetSeconds = 2082844800

func fromDeviceEpoch(v uint32) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(int64(v)-deviceEpochOffsetSeconds, 0).UTC()
}

func toDeviceEpoch(t time.Time) uint32 {
	if t.IsZero() {
		return 0
	}
	sec := t.Unix() + deviceEpochOffsetSeconds
	if sec < 0 {
		return 0
	}
	return uint32(sec)
}

// readTrack decodes the mhit hunk at h, including its mhod children (spec
// §4.3). r must be scoped to the whole stream (mhod bodies are read with
// absolute offsets via r).
func readTrack(r *hunk.Reader, h hunk.Header) *model.Track {
	hl := int(h.HeaderLen)
	t := &model.Track{}

	u32 := func(off int) uint32 { return r.U32(h.Start + off) }
	u16 := func(off int) uint16 { return r.U16(h.Start + off) }
	u8 := func(off int) uint8 { return r.U8(h.Start + off) }

	t.ID = u32(16)
	t.Rating = u8(31)
	t.TimeModified = fromDeviceEpoch(u32(32))
	t.FileSize = uint64(u32(36))
	t.DurationMS = u32(40)
	t.TrackNumber = int(u32(44))
	t.TrackTotal = int(u32(48))
	t.Year = int(u32(52))
	t.BitRate = u32(56)
	combined := u32(60)
	t.SampleRate = uint16(combined >> 16)
	t.SampleRateFrac = uint16(combined & 0xffff)
	t.VolumeAdjust = int32(u32(64))
	t.StartTimeMS = u32(68)
	t.StopTimeMS = u32(72)
	t.SoundCheck = u32(76)
	t.PlayCount = int32(u32(80))
	t.TimePlayed = fromDeviceEpoch(u32(88))
	t.DiscNumber = int(u32(92))
	t.DiscTotal = int(u32(96))
	t.TimeAdded = fromDeviceEpoch(u32(104))
	t.BookmarkTimeMS = u32(108)
	t.PersistentID = r.U64(h.Start + 112)
	t.Checked = u8(120) != 0
	t.AppRating = u8(121)
	t.BPM = u16(122)
	// mhii_link: the artwork id this track resolves to, set by the
	// write-time identity pass (spec §4.8); read back for round trip.
	t.ArtworkID = u32(128)
	t.Unk144 = u32(144)

	if hl >= mhitHeaderLenV1 {
		t.Unk148 = r.Bytes(h.Start+148, 8)
	}

	if hl >= mhitHeaderLenV2 {
		t.SkipCount = int32(u32(156))
		t.LastSkipped = fromDeviceEpoch(u32(160))
		t.HasArtwork = u8(164) != 0
		t.GaplessPlaybackOffsetStart = u32(184)
		t.GaplessPlaybackOffsetEnd = u32(200)
		t.Media = model.MediaType(u32(208))
		t.SeasonNumber = int(u32(212))
		t.EpisodeNumber = int(u32(216))
	}

	if hl >= mhitHeaderLenCurrent {
		t.Unk252 = r.Bytes(h.Start+252, hl-252)
	}

	walker := hunk.Children(r, h.BodyStart(), h.End())
	for {
		ch, ok := walker.Next()
		if !ok {
			break
		}
		if ch.Tag != "mhod" {
			continue
		}
		applyTrackMhod(r, ch, t)
	}

	return t
}

func applyTrackMhod(r *hunk.Reader, ch hunk.Header, t *model.Track) {
	switch mhodType(r, ch) {
	case mhodTitle:
		t.Title = readStringMhodBody(r, ch)
	case mhodPath:
		t.IPodPath = readStringMhodBody(r, ch)
	case mhodAlbum:
		t.Album = readStringMhodBody(r, ch)
	case mhodArtist:
		t.Artist = readStringMhodBody(r, ch)
	case mhodGenre:
		t.Genre = readStringMhodBody(r, ch)
	case mhodFiletypeDesc:
		t.FiletypeDesc = readStringMhodBody(r, ch)
	case mhodComment:
		t.Comment = readStringMhodBody(r, ch)
	case mhodCategory:
		t.Category = readStringMhodBody(r, ch)
	case mhodComposer:
		t.Composer = readStringMhodBody(r, ch)
	case mhodGrouping:
		t.Grouping = readStringMhodBody(r, ch)
	case mhodDescription:
		t.Description = readStringMhodBody(r, ch)
	case mhodPodcastURL:
		t.PodcastURL = string(readRawMhodBody(r, ch))
	case mhodPodcastRSS:
		t.PodcastRSS = string(readRawMhodBody(r, ch))
	case mhodChapterData:
		t.ChapterData = readRawMhodBody(r, ch)
	case mhodSubtitle:
		t.Subtitle = readStringMhodBody(r, ch)
	case mhodTVShow:
		t.TVShow = readStringMhodBody(r, ch)
	case mhodTVEpisode:
		t.TVEpisode = readStringMhodBody(r, ch)
	case mhodTVNetwork:
		t.TVNetwork = readStringMhodBody(r, ch)
	case mhodAlbumArtist:
		t.AlbumArtist = readStringMhodBody(r, ch)
	case mhodKeywords:
		t.Keywords = readStringMhodBody(r, ch)
	}
}

// writeTrack appends a complete mhit hunk, including its mhod children,
// in the order spec §4.3 lists. Writers always emit the current-version
// header (spec §4.3 "writers must emit headers at 0x148").
func writeTrack(w *hunk.Writer, t *model.Track) {
	h := w.Begin("mhit", mhitHeaderLenCurrent)

	h.PutU32At(16, t.ID)
	h.PutU32At(20, 1) // visible
	h.PutU8At(31, t.Rating)
	h.PutU32At(32, toDeviceEpoch(t.TimeModified))
	h.PutU32At(36, uint32(t.FileSize))
	h.PutU32At(40, t.DurationMS)
	h.PutU32At(44, uint32(t.TrackNumber))
	h.PutU32At(48, uint32(t.TrackTotal))
	h.PutU32At(52, uint32(t.Year))
	h.PutU32At(56, t.BitRate)
	h.PutU32At(60, uint32(t.SampleRate)<<16|uint32(t.SampleRateFrac))
	h.PutU32At(64, uint32(t.VolumeAdjust))
	h.PutU32At(68, t.StartTimeMS)
	h.PutU32At(72, t.StopTimeMS)
	h.PutU32At(76, t.SoundCheck)
	h.PutU32At(80, uint32(t.PlayCount))
	h.PutU32At(84, uint32(t.PlayCount)) // playcount2, kept in sync
	h.PutU32At(88, toDeviceEpoch(t.TimePlayed))
	h.PutU32At(92, uint32(t.DiscNumber))
	h.PutU32At(96, uint32(t.DiscTotal))
	h.PutU32At(104, toDeviceEpoch(t.TimeAdded))
	h.PutU32At(108, t.BookmarkTimeMS)
	h.PutU64At(112, t.PersistentID)
	if t.Checked {
		h.PutU8At(120, 1)
	}
	h.PutU8At(121, t.AppRating)
	h.PutU16At(122, t.BPM)
	if t.HasArtwork {
		h.PutU16At(124, 1)
	}
	h.PutU32At(128, t.ArtworkID) // mhii_link
	h.PutU32At(144, t.Unk144)
	if len(t.Unk148) > 0 {
		copy(w.Bytes()[h.HeaderOffset(148):h.HeaderOffset(156)], t.Unk148)
	}

	h.PutU32At(156, uint32(t.SkipCount))
	h.PutU32At(160, toDeviceEpoch(t.LastSkipped))
	if t.HasArtwork {
		h.PutU8At(164, 1)
	}
	h.PutU64At(168, t.PersistentID) // dbid2, kept in sync
	h.PutU32At(184, t.GaplessPlaybackOffsetStart)
	h.PutU32At(200, t.GaplessPlaybackOffsetEnd)
	h.PutU32At(208, uint32(t.Media))
	h.PutU32At(212, uint32(t.SeasonNumber))
	h.PutU32At(216, uint32(t.EpisodeNumber))

	if len(t.Unk252) > 0 {
		n := len(t.Unk252)
		if n > mhitHeaderLenCurrent-252 {
			n = mhitHeaderLenCurrent - 252
		}
		copy(w.Bytes()[h.HeaderOffset(252):h.HeaderOffset(252+n)], t.Unk252[:n])
	}

	mhodCount := 0
	writeIf := func(mtype uint32, s string) {
		if s != "" {
			mhodCount++
		}
		writeStringMhod(w, mtype, s)
	}
	writeIf(mhodTitle, t.Title)
	writeIf(mhodPath, t.IPodPath)
	writeIf(mhodAlbum, t.Album)
	writeIf(mhodArtist, t.Artist)
	writeIf(mhodGenre, t.Genre)
	writeIf(mhodFiletypeDesc, t.FiletypeDesc)
	writeIf(mhodComment, t.Comment)
	writeIf(mhodCategory, t.Category)
	writeIf(mhodComposer, t.Composer)
	writeIf(mhodGrouping, t.Grouping)
	writeIf(mhodDescription, t.Description)
	if t.PodcastURL != "" {
		writeRawMhod(w, mhodPodcastURL, []byte(t.PodcastURL))
		mhodCount++
	}
	if t.PodcastRSS != "" {
		writeRawMhod(w, mhodPodcastRSS, []byte(t.PodcastRSS))
		mhodCount++
	}
	if len(t.ChapterData) > 0 {
		writeRawMhod(w, mhodChapterData, t.ChapterData)
		mhodCount++
	}
	writeIf(mhodSubtitle, t.Subtitle)
	writeIf(mhodTVShow, t.TVShow)
	writeIf(mhodTVEpisode, t.TVEpisode)
	writeIf(mhodTVNetwork, t.TVNetwork)
	writeIf(mhodAlbumArtist, t.AlbumArtist)
	writeIf(mhodKeywords, t.Keywords)

	h.PutU32At(12, uint32(mhodCount))
	h.Close()
}
