package database

import (
	"encoding/binary"

	"github.com/devicekit/gpoddb/pkg/hunk"
	"github.com/devicekit/gpoddb/pkg/model"
	"github.com/devicekit/gpoddb/pkg/smartplaylist"
)

// mhyp header length (spec §4.4: "header-length ... must be >=48").
const mhypHeaderLen = 48

// mhip header length (spec §4.4, grounded on the 36-byte minimum the
// original reader enforces).
const mhipHeaderLen = 36

// uiDataLen is the fixed size of the opaque "playlist-ui" mhod payload
// (spec §4.4 "a fixed 0x288-byte payload -- reproduce byte-for-byte").
const uiDataLen = 0x288

// splprefPayloadLen is this library's fixed size for the smart-playlist
// preferences mhod body (type 50). The original on-disk layout for this
// sub-structure wasn't available to ground byte-for-byte; this shape
// round-trips this library's own writes, which is all §4.7 requires of it.
const splprefPayloadLen = 108

func readPlaylist(r *hunk.Reader, h hunk.Header, byID func(uint32) *model.Track) *model.Playlist {
	hl := int(h.HeaderLen)
	u8 := func(off int) uint8 { return r.U8(h.Start + off) }
	u16 := func(off int) uint16 { return r.U16(h.Start + off) }
	u32 := func(off int) uint32 { return r.U32(h.Start + off) }

	pl := &model.Playlist{}
	typeByte := u8(20) & 0xff
	if typeByte == uint8(model.PlaylistMaster) {
		pl.Type = model.PlaylistMaster
	} else {
		pl.Type = model.PlaylistVisible
	}
	pl.CreatedAt = fromDeviceEpoch(u32(24))
	pl.PersistentID = r.U64(h.Start + 28)
	if hl >= 44 {
		pl.IsPodcast = u16(42) != 0
		pl.Sort = model.SortOrder(u32(44))
	}

	type member struct {
		ordinal uint32
		mem     model.Member
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
			applyPlaylistMhod(r, ch, pl)
		case "mhip":
			m, ordinal := readMember(r, ch, byID)
			if m.Track != nil {
				members = append(members, member{ordinal: ordinal, mem: m})
			}
		}
	}

	sortMembersByOrdinal(members)
	for _, m := range members {
		pl.Members = append(pl.Members, m.mem)
	}
	return pl
}

func sortMembersByOrdinal(members []struct {
	ordinal uint32
	mem     model.Member
}) {
	for i := 1; i < len(members); i++ {
		for j := i; j > 0 && members[j-1].ordinal > members[j].ordinal; j-- {
			members[j-1], members[j] = members[j], members[j-1]
		}
	}
}

func applyPlaylistMhod(r *hunk.Reader, ch hunk.Header, pl *model.Playlist) {
	switch mhodType(r, ch) {
	case mhodTitle:
		pl.Name = readStringMhodBody(r, ch)
	case mhodPlaylistUI:
		pl.UIData = readRawMhodBody(r, ch)
	case mhodSmartPrefs:
		pl.Smart = true
		pl.Preferences = readSplPref(r, ch)
	case mhodSmartRules:
		body := r.Slice(ch.BodyStart(), int(ch.TotalLen)-int(ch.HeaderLen))
		be := body.WithOrder(binary.BigEndian)
		list, err := smartplaylist.ReadSLst(be)
		if err == nil {
			pl.Smart = true
			pl.Rules = list.Rules
		}
	}
}

func readSplPref(r *hunk.Reader, ch hunk.Header) model.SmartPlaylistPrefs {
	off := ch.BodyStart()
	var p model.SmartPlaylistPrefs
	p.LiveUpdate = r.U8(off) != 0
	p.CheckRules = r.U8(off+1) != 0
	p.CheckLimits = r.U8(off+2) != 0
	p.MatchCheckedOnly = r.U8(off+3) != 0
	p.LimitType = model.LimitType(r.U32(off + 4))
	rawSort := r.U32(off + 8)
	p.LimitSortOpposite = rawSort&0x80000000 != 0
	p.LimitSort = model.LimitSort(rawSort &^ 0x80000000)
	p.LimitValue = r.U32(off + 12)
	p.Limit = p.LimitValue > 0 || p.LimitType != 0
	return p
}

func writeSplPref(w *hunk.Writer, p model.SmartPlaylistPrefs) {
	writeOpaqueMhod(w, mhodSmartPrefs, func(w *hunk.Writer) {
		if p.LiveUpdate {
			w.WriteU8(1)
		} else {
			w.WriteU8(0)
		}
		if p.CheckRules {
			w.WriteU8(1)
		} else {
			w.WriteU8(0)
		}
		if p.CheckLimits {
			w.WriteU8(1)
		} else {
			w.WriteU8(0)
		}
		if p.MatchCheckedOnly {
			w.WriteU8(1)
		} else {
			w.WriteU8(0)
		}
		w.WriteU32(uint32(p.LimitType))
		sortVal := uint32(p.LimitSort)
		if p.LimitSortOpposite {
			sortVal |= 0x80000000
		}
		w.WriteU32(sortVal)
		w.WriteU32(p.LimitValue)
		w.WriteZero(splprefPayloadLen - 16)
	})
}

// readMember decodes one mhip member hunk (spec §4.4), including the
// header-length quirk where early producers left mhip.T == mhip.H.
func readMember(r *hunk.Reader, h hunk.Header, byID func(uint32) *model.Track) (model.Member, uint32) {
	hl := int(h.HeaderLen)
	if hl < mhipHeaderLen {
		return model.Member{}, 0
	}
	trackID := r.U32(h.Start + 24)
	groupID := r.U32(h.Start + 20)
	groupParentID := r.U32(h.Start + 32)
	ts := fromDeviceEpoch(r.U32(h.Start + 28))

	var ordinal uint32
	walker := hunk.Children(r, h.BodyStart(), h.End())
	for {
		ch, ok := walker.Next()
		if !ok {
			break
		}
		if ch.Tag == "mhod" && mhodType(r, ch) == mhodMemberOrdinal {
			ordinal = readU32MhodBody(r, ch)
		}
	}

	tr := byID(trackID)
	if tr == nil {
		return model.Member{}, 0
	}
	return model.Member{Track: tr, GroupID: groupID, GroupParentID: groupParentID, Timestamp: ts}, ordinal
}

// writePlaylist appends a complete mhyp hunk for pl, including its title,
// playlist-ui, preference/rules, sort-index (MPL only), and mhip member
// hunks (spec §4.4, §4.5). Member track ids are read from Track.ID, which
// the write-time identity pass (spec §4.8) must have already assigned.
// grouped selects the podcast-grouped member layout used by the
// alternate playlist section (spec §4.4 "Podcast variant").
func writePlaylist(w *hunk.Writer, pl *model.Playlist, isMPL, grouped bool) {
	h := w.Begin("mhyp", mhypHeaderLen)
	h.PutU8At(20, uint8(pl.Type))
	h.PutU32At(24, toDeviceEpoch(pl.CreatedAt))
	h.PutU64At(28, pl.PersistentID)
	if pl.IsPodcast {
		h.PutU16At(42, 1)
	}
	h.PutU32At(44, uint32(pl.Sort))

	mhodCount := 0
	writeStringMhod(w, mhodTitle, pl.Name)
	mhodCount++

	ui := pl.UIData
	if len(ui) == 0 {
		ui = make([]byte, uiDataLen)
	}
	writeRawMhod(w, mhodPlaylistUI, ui)
	mhodCount++

	if pl.Smart {
		writeSplPref(w, pl.Preferences)
		mhodCount++
		writeOpaqueMhod(w, mhodSmartRules, func(w *hunk.Writer) {
			bw := w.WithOrder(binary.BigEndian)
			smartplaylist.WriteSLst(bw, smartplaylist.List{Operator: model.MatchAll, Rules: pl.Rules})
			w.Adopt(bw)
		})
		mhodCount++
	}

	if isMPL {
		for _, key := range []smartplaylist.SortKey{
			smartplaylist.SortKeyTitle, smartplaylist.SortKeyAlbum, smartplaylist.SortKeyArtist,
			smartplaylist.SortKeyGenre, smartplaylist.SortKeyComposer,
		} {
			writeSortIndexMhod(w, pl, key)
			mhodCount++
		}
	}

	h.PutU32At(12, uint32(mhodCount))

	var mhipCount uint32
	if grouped && pl.IsPodcast {
		mhipCount = writeGroupedMembers(w, pl)
	} else {
		mhipCount = uint32(len(pl.Members))
		for i, m := range pl.Members {
			writeMember(w, m, uint32(i))
		}
	}
	h.PutU32At(16, mhipCount)

	h.Close()
}

// writeGroupedMembers emits one group-header mhip per distinct album
// among pl's members, followed by one mhip per member referencing its
// group's header (spec §4.4 "Podcast variant"). Returns the total mhip
// count written.
func writeGroupedMembers(w *hunk.Writer, pl *model.Playlist) uint32 {
	groupOf := map[string]uint32{}
	var albums []string
	nextGroupID := uint32(1)
	for _, m := range pl.Members {
		album := m.Track.Album
		if _, ok := groupOf[album]; !ok {
			groupOf[album] = nextGroupID
			albums = append(albums, album)
			nextGroupID++
		}
	}

	var count uint32
	for _, album := range albums {
		writeGroupHeader(w, groupOf[album], album)
		count++
	}
	for i, m := range pl.Members {
		writeGroupedMember(w, m, uint32(i), groupOf[m.Track.Album])
		count++
	}
	return count
}

// writeGroupHeader emits a group-header mhip: flag 0x100, a freshly
// allocated group id, zero track id, and a child title mhod carrying the
// album name (spec §4.4).
func writeGroupHeader(w *hunk.Writer, groupID uint32, album string) {
	h := w.Begin("mhip", mhipHeaderLen)
	h.PutU32At(12, 1)
	h.PutU32At(16, 0x100)
	h.PutU32At(20, groupID)
	writeStringMhod(w, mhodTitle, album)
	h.Close()
}

func writeGroupedMember(w *hunk.Writer, m model.Member, ordinal, groupParentID uint32) {
	h := w.Begin("mhip", mhipHeaderLen)
	h.PutU32At(12, 1)
	h.PutU32At(24, m.Track.ID)
	h.PutU32At(28, toDeviceEpoch(m.Timestamp))
	h.PutU32At(32, groupParentID)
	writeU32Mhod(w, mhodMemberOrdinal, ordinal)
	h.Close()
}

func writeSortIndexMhod(w *hunk.Writer, pl *model.Playlist, key smartplaylist.SortKey) {
	tracks := make([]*model.Track, len(pl.Members))
	for i, m := range pl.Members {
		tracks[i] = m.Track
	}
	idx := smartplaylist.BuildSortIndex(tracks, key)

	writeOpaqueMhod(w, mhodSortIndex, func(w *hunk.Writer) {
		w.WriteU32(smartplaylist.SelectorFor(key))
		w.WriteU32(uint32(len(idx)))
		w.WriteZero(40)
		for _, i := range idx {
			w.WriteU32(i)
		}
	})
}

func writeMember(w *hunk.Writer, m model.Member, ordinal uint32) {
	h := w.Begin("mhip", mhipHeaderLen)
	h.PutU32At(12, 1) // mhod_num
	h.PutU32At(20, m.GroupID)
	h.PutU32At(24, m.Track.ID)
	h.PutU32At(28, toDeviceEpoch(m.Timestamp))
	h.PutU32At(32, m.GroupParentID)
	writeU32Mhod(w, mhodMemberOrdinal, ordinal)
	h.Close()
}
