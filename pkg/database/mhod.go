package database

import (
	"encoding/binary"

	"github.com/devicekit/gpoddb/pkg/hunk"
)

// mhod type discriminators (spec §4.3 table).
const (
	mhodTitle         = 1
	mhodPath          = 2
	mhodAlbum         = 3
	mhodArtist        = 4
	mhodGenre         = 5
	mhodFiletypeDesc  = 6
	mhodComment       = 8
	mhodCategory      = 9
	mhodComposer      = 12
	mhodGrouping      = 13
	mhodDescription   = 14
	mhodPodcastURL    = 15
	mhodPodcastRSS    = 16
	mhodChapterData   = 17
	mhodSubtitle      = 18
	mhodTVShow        = 19
	mhodTVEpisode     = 20
	mhodTVNetwork     = 21
	mhodAlbumArtist   = 22
	mhodKeywords      = 24
	mhodSmartPrefs    = 50
	mhodSmartRules    = 51
	mhodSortIndex     = 52
	mhodPlaylistUI    = 100 // under mhyp: fixed 0x288 opaque payload
	mhodMemberOrdinal = 100 // under mhip: the member's ordinal position
)

// mhodHeaderLen is the header length (H) shared by every mhod variant: the
// 12-byte tag/H/T prefix, the 4-byte type field, and 8 reserved bytes
// (spec §4.3 confirms this via the original writer's constant mhod header
// size).
const mhodHeaderLen = 24

// stringEncodingUTF16 and stringEncodingUTF8 are the values of the 4-byte
// encoding word at the start of a string mhod's body (spec §4.3: "0/1 =
// UTF-16-little-endian ... 2 = UTF-8").
const (
	stringEncodingUTF16 = 1
	stringEncodingUTF8  = 2
)

// writeStringMhod appends a string-valued mhod. On a byte-order-reversed
// writer the string is always emitted as UTF-8 (spec §4.3 "writers on a
// byte-order-reversed database MUST emit UTF-8 form"); otherwise UTF-16 in
// the writer's own order, matching the device's native representation.
func writeStringMhod(w *hunk.Writer, mtype uint32, s string) {
	if s == "" {
		return
	}
	h := w.Begin("mhod", mhodHeaderLen)
	h.PutU32At(12, mtype)

	reversed := w.Order == binary.BigEndian
	if reversed {
		data := []byte(s)
		w.WriteU32(stringEncodingUTF8)
		padLen := (4 - len(data)%4) % 4
		w.WriteU8(uint8(padLen))
		w.WriteZero(3)
		w.WriteZero(8)
		w.WriteBytes(data)
		w.WriteZero(padLen)
	} else {
		data := hunk.EncodeUTF16(s, w.Order)
		w.WriteU32(stringEncodingUTF16)
		w.WriteU32(uint32(len(data)))
		w.WriteZero(8)
		w.WriteBytes(data)
		w.Pad4()
	}
	h.Close()
}

// readStringMhodBody decodes a string mhod's body given its header (spec
// §4.3). bodyOff is the absolute offset where the body (encoding word)
// begins, i.e. h.BodyStart().
func readStringMhodBody(r *hunk.Reader, h hunk.Header) string {
	bodyOff := h.BodyStart()
	encoding := r.U32(bodyOff)
	xl := r.U32(bodyOff + 4)
	dataOff := bodyOff + 16

	if encoding == stringEncodingUTF8 {
		padLen := int(r.U8(bodyOff + 4))
		strLen := int(h.TotalLen) - int(h.HeaderLen) - 16 - padLen
		if strLen < 0 {
			strLen = 0
		}
		return string(r.Bytes(dataOff, strLen))
	}
	return hunk.DecodeUTF16(r.Bytes(dataOff, int(xl)), r.Order)
}

// writeRawMhod appends a raw-bytes mhod with no encoding word: podcast
// URL/RSS and chapter-data blobs (spec §4.3 "raw unterminated byte
// strings with no encoding word").
func writeRawMhod(w *hunk.Writer, mtype uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	h := w.Begin("mhod", mhodHeaderLen)
	h.PutU32At(12, mtype)
	w.WriteBytes(data)
	w.Pad4()
	h.Close()
}

// readRawMhodBody returns the raw bytes of a no-encoding-word mhod: its
// length is the hunk's total length minus its header length (spec §4.3).
func readRawMhodBody(r *hunk.Reader, h hunk.Header) []byte {
	n := int(h.TotalLen) - int(h.HeaderLen)
	if n < 0 {
		return nil
	}
	return r.Bytes(h.BodyStart(), n)
}

// writeU32Mhod appends a mhod whose entire body is a single u32: the
// mhip member-ordinal indicator (type 100, spec §4.4).
func writeU32Mhod(w *hunk.Writer, mtype uint32, value uint32) {
	h := w.Begin("mhod", mhodHeaderLen)
	h.PutU32At(12, mtype)
	w.WriteU32(value)
	h.Close()
}

func readU32MhodBody(r *hunk.Reader, h hunk.Header) uint32 {
	return r.U32(h.BodyStart())
}

// writeOpaqueMhod appends a mhod whose body is an already-encoded,
// opaque byte blob: smart-playlist preferences (50), the SLst rules
// sub-hunk (51), a sort-index table (52), or the fixed playlist-UI
// payload (100 under mhyp).
func writeOpaqueMhod(w *hunk.Writer, mtype uint32, body func(w *hunk.Writer)) {
	h := w.Begin("mhod", mhodHeaderLen)
	h.PutU32At(12, mtype)
	body(w)
	h.Close()
}

// mhodType reads the type discriminator of the mhod at h.
func mhodType(r *hunk.Reader, h hunk.Header) uint32 {
	return r.U32(h.Start + 12)
}
