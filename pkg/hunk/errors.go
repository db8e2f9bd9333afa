package hunk

import "errors"

// Error kinds surfaced by the codec and, by extension, the parser/writer
// passes built on top of it (spec §7).
var (
	// ErrOutOfRange is returned when a read primitive would read past the
	// declared length of the underlying buffer.
	ErrOutOfRange = errors.New("hunk: read out of range")
	// ErrCorrupt is returned when a structural invariant fails: a missing
	// required hunk, an inconsistent length field, a zero-length hunk
	// where one would cause an infinite loop.
	ErrCorrupt = errors.New("hunk: corrupt stream")
)
