package model

// FieldType classifies what kind of value a smart-rule's field selector
// refers to, which in turn determines how its payload is interpreted (spec
// §4.6).
type FieldType int

const (
	FieldString FieldType = iota
	FieldInt
	FieldBoolean
	FieldDate
	FieldPlaylist
)

// DateSentinel marks a rule's "value" as a relative offset rather than an
// absolute date (spec §3: "a sentinel value 0x2dae2dae2dae2dae marks
// date-typed rules").
const DateSentinel uint64 = 0x2dae2dae2dae2dae

// Field is a smart-rule field selector (spec §4.6 field types, abbreviated
// list). Values match the on-disk SLst encoding.
type Field uint32

const (
	FieldSongTitle   Field = 0x02
	FieldAlbum       Field = 0x03
	FieldArtist      Field = 0x04
	FieldBitrate     Field = 0x05
	FieldSampleRate  Field = 0x06
	FieldYear        Field = 0x07
	FieldGenre       Field = 0x08
	FieldPlayCount   Field = 0x0b
	FieldLastPlayed  Field = 0x0c
	FieldDateAdded   Field = 0x10
	FieldTrackNumber Field = 0x0f
	FieldSizeBytes   Field = 0x0d
	FieldTimeMS      Field = 0x0e
	FieldComment     Field = 0x0a
	FieldDateModified Field = 0x12
	FieldRating      Field = 0x13
	FieldCompilation Field = 0x1f
	FieldBPM         Field = 0x23
	FieldPlaylistRef Field = 0x28
	FieldComposer    Field = 0x24
)

// Action is a smart-rule comparison operator (spec §4.6, §4.7).
type Action uint32

const (
	ActionStringContains    Action = 0x01
	ActionStringStartsWith  Action = 0x02
	ActionStringEndsWith    Action = 0x03
	ActionStringIs          Action = 0x04
	ActionStringNot         Action = 0x05
	ActionStringNotContains Action = 0x09
	ActionStringNotStartsWith Action = 0x0a
	ActionStringNotEndsWith   Action = 0x0b

	ActionIntIs          Action = 0x01
	ActionIntIsGreater   Action = 0x02
	ActionIntIsLess      Action = 0x04
	ActionIntIsInRange   Action = 0x05
	ActionIntIsNot       Action = 0x06
	ActionIntNotInRange  Action = 0x0d

	ActionDateInTheLast    Action = 0x0e
	ActionDateNotInTheLast Action = 0x0f
	ActionDateIsInRange    Action = 0x05

	ActionIsTrue  Action = 0x01
	ActionIsFalse Action = 0x06
)

// FieldAction is a matcher key used when validating/evaluating a rule: a
// field type paired with its action, since payload layout is a function of
// both (spec §4.6).
type FieldAction struct {
	Field  FieldType
	Action Action
}

// SmartRule is one condition in a smart playlist's rule list (spec §3,
// §4.6). The SLst payload is held decoded: StringValue for the string
// shape, the six u64 slots plus Unknown for the numeric shape.
type SmartRule struct {
	Field  Field
	Action Action

	// StringValue holds the decoded UTF-16 payload for string actions.
	StringValue string

	// FromValue/ToValue/FromUnits/ToUnits/FromDate/ToDate hold the six
	// u64 slots of a non-string payload (spec §4.6): from-value,
	// from-date-offset, from-units, to-value, to-date-offset, to-units.
	FromValue uint64
	FromDate  uint64
	FromUnits uint64
	ToValue   uint64
	ToDate    uint64
	ToUnits   uint64

	// Unknown holds the five trailing u32 "unknown" slots of a
	// non-string payload, preserved verbatim for round-trip.
	Unknown [5]uint32

	// IsString records which payload shape this rule carries. The SLst
	// reader sets it from Field, and Validate resets it from Field's type
	// before each write.
	IsString bool
}

// MatchOperator is the SLst-level boolean combinator across a smart
// playlist's rule list (spec §4.7).
type MatchOperator uint32

const (
	MatchAll MatchOperator = 1 // AND
	MatchAny MatchOperator = 2 // OR
)
