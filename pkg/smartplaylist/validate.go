package smartplaylist

import "github.com/devicekit/gpoddb/pkg/model"

// fieldType classifies a rule's field selector the way spec §4.6's
// "field types (abbreviated)" table does, used both by Validate and by
// the evaluator to pick a comparison path.
func fieldType(f model.Field) model.FieldType {
	switch f {
	case model.FieldSongTitle, model.FieldAlbum, model.FieldArtist, model.FieldGenre,
		model.FieldComment, model.FieldComposer:
		return model.FieldString
	case model.FieldBitrate, model.FieldSampleRate, model.FieldYear, model.FieldPlayCount,
		model.FieldTrackNumber, model.FieldSizeBytes, model.FieldTimeMS, model.FieldRating,
		model.FieldBPM:
		return model.FieldInt
	case model.FieldCompilation:
		return model.FieldBoolean
	case model.FieldDateAdded, model.FieldDateModified, model.FieldLastPlayed:
		return model.FieldDate
	case model.FieldPlaylistRef:
		return model.FieldPlaylist
	default:
		return model.FieldInt
	}
}

// Validate runs splr_validate: it normalises a rule's payload fields that
// its (field-type, action) combination doesn't use back to their
// canonical defaults (0 for ints, 1 for units) so that repeated writes of
// the same logical rule produce byte-identical output (spec §4.6
// "Writers must run splr_validate before emitting each rule").
func Validate(rule model.SmartRule) model.SmartRule {
	ft := fieldType(rule.Field)

	if ft == model.FieldString {
		rule.IsString = true
		rule.FromValue, rule.FromDate, rule.ToValue, rule.ToDate = 0, 0, 0, 0
		rule.FromUnits, rule.ToUnits = 1, 1
		rule.Unknown = [5]uint32{}
		return rule
	}

	rule.IsString = false
	rule.StringValue = ""

	switch rule.Action {
	case model.ActionIntIsInRange, model.ActionIntNotInRange:
		// uses both from- and to- slots: nothing to clear.
	case model.ActionDateInTheLast, model.ActionDateNotInTheLast:
		// uses from-date/from-units as the relative window; clear the
		// unused "to" half.
		rule.ToValue, rule.ToDate = 0, 0
		rule.ToUnits = 1
	default:
		// single-value comparison (EQ/NEQ/GT/LT/GE/LE and boolean
		// true/false): only the from-slot is meaningful.
		rule.ToValue, rule.ToDate = 0, 0
		rule.ToUnits = 1
	}

	if rule.FromUnits == 0 {
		rule.FromUnits = 1
	}
	if rule.ToUnits == 0 {
		rule.ToUnits = 1
	}

	return rule
}
