// Package smartplaylist implements the SLst rule payload codec, rule
// normalisation (splr_validate), rule evaluation, and limit application
// for smart playlists (spec §4.6, §4.7), plus sort-index mhod generation
// for the master playlist (spec §4.5).
package smartplaylist

import (
	"encoding/binary"
	"fmt"

	"github.com/devicekit/gpoddb/pkg/hunk"
	"github.com/devicekit/gpoddb/pkg/model"
)

// slstFixedHeaderLen is the tag + 3 u32 fields + 116 bytes of zero
// padding preceding the rule list (spec §4.6).
const slstFixedHeaderLen = 4 + 4 + 4 + 4 + 116

// ruleFixedHeaderLen is a rule's field selector + action selector + 44
// reserved bytes + payload length, preceding its payload (spec §4.6).
const ruleFixedHeaderLen = 4 + 4 + 44 + 4

// nonStringPayloadLen is the fixed size of a non-string rule payload: six
// u64 value/date/unit slots plus five u32 unknown slots (spec §4.6).
const nonStringPayloadLen = 6*8 + 5*4

// List is a decoded smart-playlist rule list: the SLst sub-hunk's content
// (spec §4.6).
type List struct {
	// Observed is the second u32 field of the SLst header, whose meaning
	// is unknown; stored verbatim so it round-trips (spec §4.6 "observed
	// value varies, store verbatim").
	Observed uint32
	Operator model.MatchOperator
	Rules    []model.SmartRule
}

// ReadSLst decodes the SLst sub-hunk body. r must already be scoped to
// the sub-hunk's bytes (e.g. via Reader.Slice) and must use big-endian
// order regardless of the enclosing database's orientation (spec §4.1
// exception, §4.6).
func ReadSLst(r *hunk.Reader) (List, error) {
	if !r.TagIs(0, "SLst") {
		return List{}, fmt.Errorf("%w: expected SLst tag, got %q", hunk.ErrCorrupt, r.Tag(0))
	}
	observed := r.U32(4)
	ruleCount := r.U32(8)
	operator := model.MatchOperator(r.U32(12))

	list := List{Observed: observed, Operator: operator}
	off := slstFixedHeaderLen
	for i := uint32(0); i < ruleCount; i++ {
		rule, next, err := readRule(r, off)
		if err != nil {
			return List{}, err
		}
		list.Rules = append(list.Rules, rule)
		off = next
	}
	if err := r.Err(); err != nil {
		return List{}, err
	}
	return list, nil
}

func readRule(r *hunk.Reader, off int) (model.SmartRule, int, error) {
	field := model.Field(r.U32(off))
	action := model.Action(r.U32(off + 4))
	payloadLen := int(r.U32(off + 52))
	payloadOff := off + ruleFixedHeaderLen

	rule := model.SmartRule{Field: field, Action: action}

	if isStringAction(field, action) {
		rule.IsString = true
		rule.StringValue = hunk.DecodeUTF16(r.Bytes(payloadOff, payloadLen), binary.BigEndian)
	} else {
		body := r.Slice(payloadOff, payloadLen)
		rule.FromValue = body.U64(0)
		rule.FromDate = body.U64(8)
		rule.FromUnits = body.U64(16)
		rule.ToValue = body.U64(24)
		rule.ToDate = body.U64(32)
		rule.ToUnits = body.U64(40)
		for i := 0; i < 5; i++ {
			rule.Unknown[i] = body.U32(48 + i*4)
		}
	}

	return rule, payloadOff + payloadLen, nil
}

// isStringAction reports whether a rule's payload is the UTF-16 string
// shape rather than the fixed 0x44-byte numeric shape (spec §4.6).
func isStringAction(field model.Field, action model.Action) bool {
	switch field {
	case model.FieldSongTitle, model.FieldAlbum, model.FieldArtist, model.FieldGenre,
		model.FieldComment, model.FieldComposer:
		return true
	default:
		return false
	}
}

// WriteSLst runs splr_validate over rules and appends the resulting SLst
// sub-hunk to w, which must already be scoped to big-endian order (spec
// §4.1 exception).
func WriteSLst(w *hunk.Writer, list List) {
	w.WriteTag("SLst")
	w.WriteU32(list.Observed)
	w.WriteU32(uint32(len(list.Rules)))
	w.WriteU32(uint32(list.Operator))
	w.WriteZero(116)

	for _, rule := range list.Rules {
		writeRule(w, Validate(rule))
	}
}

func writeRule(w *hunk.Writer, rule model.SmartRule) {
	w.WriteU32(uint32(rule.Field))
	w.WriteU32(uint32(rule.Action))
	w.WriteZero(44)

	if rule.IsString {
		payload := hunk.EncodeUTF16(rule.StringValue, binary.BigEndian)
		w.WriteU32(uint32(len(payload)))
		w.WriteBytes(payload)
		return
	}

	w.WriteU32(uint32(nonStringPayloadLen))
	w.WriteU64(rule.FromValue)
	w.WriteU64(rule.FromDate)
	w.WriteU64(rule.FromUnits)
	w.WriteU64(rule.ToValue)
	w.WriteU64(rule.ToDate)
	w.WriteU64(rule.ToUnits)
	for _, u := range rule.Unknown {
		w.WriteU32(u)
	}
}
