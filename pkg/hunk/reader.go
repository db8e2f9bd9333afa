// Package hunk implements the tagged, length-prefixed binary container
// ("hunk stream") used by the device database files: a four-character type
// tag, a header length, a total length, header fields, and a body of either
// payload bytes or child hunks.
//
// Every integer in the format is little-endian by convention, but an entire
// database can be written byte-reversed (observed on some device
// generations). The codec carries that as a single "reverse bytes on I/O"
// flag rather than a global, so that a reversed sub-region (the SLst rule
// payload, which is always big-endian regardless of the enclosing database's
// orientation) can be decoded with its own, locally-scoped Reader/Writer.
package hunk

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader provides bounds-checked primitives over a fixed byte slice. All
// reads funnel errors into a shared slot: once set, it is never cleared, and
// callers are expected to check Err after a sequence of reads rather than
// after every individual call (mirrors the parse-context error slot of
// spec §7).
type Reader struct {
	data  []byte
	Order binary.ByteOrder
	errp  *error
}

// NewReader returns a Reader over data using order for all multi-byte
// fields. Use ProbeOrder to determine order from an unknown-endianness
// stream first.
func NewReader(data []byte, order binary.ByteOrder) *Reader {
	e := error(nil)
	return &Reader{data: data, Order: order, errp: &e}
}

// ProbeOrder inspects the four bytes at the start of data — expected to be
// the root mhbd tag — in both orientations and returns the byte order that
// makes it read as "mhbd". This is the only place tag orientation is
// guessed; everywhere else the flag is simply carried.
func ProbeOrder(data []byte) (binary.ByteOrder, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: stream too short to contain a root tag", ErrCorrupt)
	}
	if string(data[0:4]) == "mhbd" {
		return binary.LittleEndian, nil
	}
	reversed := []byte{data[3], data[2], data[1], data[0]}
	if string(reversed) == "mhbd" {
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("%w: root hunk is not mhbd in either byte order", ErrCorrupt)
}

// WithOrder returns a Reader over the same data and shared error slot but a
// different byte order. Used to enter/exit the SLst big-endian exception
// (spec §4.1, §4.6) without disturbing the enclosing Reader's orientation.
func (r *Reader) WithOrder(order binary.ByteOrder) *Reader {
	return &Reader{data: r.data, Order: order, errp: r.errp}
}

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int { return len(r.data) }

// Err returns the first error encountered by any read through this Reader
// or any Reader sharing its error slot (via WithOrder).
func (r *Reader) Err() error { return *r.errp }

func (r *Reader) fail(err error) {
	if *r.errp == nil {
		*r.errp = err
	}
}

func (r *Reader) bounds(off, n int) bool {
	if off < 0 || n < 0 || off+n > len(r.data) {
		r.fail(fmt.Errorf("%w: offset %d len %d exceeds buffer of %d bytes", ErrOutOfRange, off, n, len(r.data)))
		return false
	}
	return true
}

// U8 reads an unsigned byte at off.
func (r *Reader) U8(off int) uint8 {
	if !r.bounds(off, 1) {
		return 0
	}
	return r.data[off]
}

// U16 reads a 2-byte unsigned integer at off, honouring Order.
func (r *Reader) U16(off int) uint16 {
	if !r.bounds(off, 2) {
		return 0
	}
	return r.Order.Uint16(r.data[off : off+2])
}

// U24 reads a 3-byte unsigned integer at off, honouring Order.
func (r *Reader) U24(off int) uint32 {
	if !r.bounds(off, 3) {
		return 0
	}
	b := r.data[off : off+3]
	if r.Order == binary.BigEndian {
		return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// U32 reads a 4-byte unsigned integer at off, honouring Order.
func (r *Reader) U32(off int) uint32 {
	if !r.bounds(off, 4) {
		return 0
	}
	return r.Order.Uint32(r.data[off : off+4])
}

// U64 reads an 8-byte unsigned integer at off, honouring Order.
func (r *Reader) U64(off int) uint64 {
	if !r.bounds(off, 8) {
		return 0
	}
	return r.Order.Uint64(r.data[off : off+8])
}

// Float32 reads a 4-byte IEEE-754 float at off, honouring Order.
func (r *Reader) Float32(off int) float32 {
	return math.Float32frombits(r.U32(off))
}

// Bytes returns a copy of n bytes at off.
func (r *Reader) Bytes(off, n int) []byte {
	if !r.bounds(off, n) {
		return nil
	}
	out := make([]byte, n)
	copy(out, r.data[off:off+n])
	return out
}

// Slice returns a sub-Reader view of n bytes starting at off, sharing the
// error slot with r. Offsets passed to the returned Reader are relative to
// off. This is the read-side analogue of the writer's scoped sub-buffer.
func (r *Reader) Slice(off, n int) *Reader {
	if !r.bounds(off, n) {
		return &Reader{data: nil, Order: r.Order, errp: r.errp}
	}
	return &Reader{data: r.data[off : off+n], Order: r.Order, errp: r.errp}
}

// Tag reads the 4-character type tag at off, undoing the byte reversal that
// a reversed-order stream applies to tags just like any other 32-bit field.
func (r *Reader) Tag(off int) string {
	if !r.bounds(off, 4) {
		return ""
	}
	b := r.data[off : off+4]
	if r.Order == binary.BigEndian {
		return string([]byte{b[3], b[2], b[1], b[0]})
	}
	return string(b)
}

// TagIs reports whether the tag at off equals tag.
func (r *Reader) TagIs(off int, tag string) bool {
	return r.Tag(off) == tag
}
