package hunk

import (
	"encoding/binary"
	"math"
)

// Writer accumulates an expanding byte buffer. Hunks are written with a
// scoped Begin/Close pair: Begin reserves and zero-fills the hunk's padded
// header, the caller appends body/children by further Writer calls, and
// Close back-patches the hunk's total length once its extent is known.
//
// The original implementation models this with reference-counted
// sub-buffers that flush to their parent on last release (spec §9); because
// Writer always appends to one contiguous buffer, a hunk's children are
// simply further writes between Begin and Close, so no separate buffer or
// refcount is needed to get the same "child bytes are already part of the
// parent's length" property.
type Writer struct {
	buf   []byte
	Order binary.ByteOrder
}

// NewWriter returns an empty Writer using order for all multi-byte fields.
func NewWriter(order binary.ByteOrder) *Writer {
	return &Writer{Order: order}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WithOrder returns a Writer appending to the same buffer but with a
// different byte order, for the SLst big-endian exception (spec §4.1).
// Bytes written through the returned Writer land in the same backing
// buffer; discard it and keep using the original once the sub-hunk is
// closed.
func (w *Writer) WithOrder(order binary.ByteOrder) *Writer {
	return &Writer{buf: w.buf, Order: order}
}

// Adopt absorbs the buffer state of a child Writer obtained via WithOrder
// back into w after the child has finished writing, since WithOrder's
// returned Writer manages an independent buf header even though it starts
// by sharing the same backing array.
func (w *Writer) Adopt(child *Writer) { w.buf = child.buf }

func (w *Writer) grow(n int) int {
	start := len(w.buf)
	w.buf = append(w.buf, make([]byte, n)...)
	return start
}

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v uint8) { w.buf = append(w.buf, v) }

// WriteU16 appends a 2-byte integer honouring Order.
func (w *Writer) WriteU16(v uint16) {
	off := w.grow(2)
	w.Order.PutUint16(w.buf[off:off+2], v)
}

// WriteU32 appends a 4-byte integer honouring Order.
func (w *Writer) WriteU32(v uint32) {
	off := w.grow(4)
	w.Order.PutUint32(w.buf[off:off+4], v)
}

// WriteU64 appends an 8-byte integer honouring Order.
func (w *Writer) WriteU64(v uint64) {
	off := w.grow(8)
	w.Order.PutUint64(w.buf[off:off+8], v)
}

// WriteFloat32 appends a 4-byte IEEE-754 float honouring Order.
func (w *Writer) WriteFloat32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteZero appends n zero bytes.
func (w *Writer) WriteZero(n int) {
	if n <= 0 {
		return
	}
	w.grow(n)
}

// WriteTag appends a 4-character type tag, reversing its bytes when Order
// is BigEndian (spec §4.1: tags are byte-reversed on reversed-order
// databases just like any other 32-bit field).
func (w *Writer) WriteTag(tag string) {
	b := []byte(tag)
	if len(b) != 4 {
		panic("hunk: tag must be exactly 4 characters: " + tag)
	}
	if w.Order == binary.BigEndian {
		b = []byte{b[3], b[2], b[1], b[0]}
	}
	w.WriteBytes(b)
}

// PutU32At back-patches a 4-byte integer at an already-written absolute
// offset.
func (w *Writer) PutU32At(off int, v uint32) {
	w.Order.PutUint32(w.buf[off:off+4], v)
}

// Pad4 zero-pads the buffer up to the next 4-byte boundary (spec §4.1:
// "strings written into mhod are then padded to a 4-byte boundary").
func (w *Writer) Pad4() {
	if diff := len(w.buf) % 4; diff != 0 {
		w.WriteZero(4 - diff)
	}
}

// Hunk is a scoped, in-progress hunk write: Begin reserves the tag and
// padded header, Close back-patches the total length.
type Hunk struct {
	w         *Writer
	start     int
	headerLen int
}

// Begin starts a new hunk of the given tag: it writes the tag, H, a T
// placeholder and headerLen-12 zero bytes of header fields (spec §4.1's
// "padded header length" rule). The caller fills header fields in place
// with the returned Hunk's PutU*At methods, appends any children/payload
// with the Writer, then calls Close.
func (w *Writer) Begin(tag string, headerLen int) *Hunk {
	start := w.Len()
	w.WriteTag(tag)
	w.WriteU32(uint32(headerLen)) // H
	w.WriteU32(0)                 // T placeholder, patched in Close
	if headerLen > 12 {
		w.WriteZero(headerLen - 12)
	}
	return &Hunk{w: w, start: start, headerLen: headerLen}
}

// HeaderOffset returns the absolute offset of the byte at index i within
// this hunk's header (i.e. start+i), for overwriting a header field that
// was zero-filled by Begin.
func (h *Hunk) HeaderOffset(i int) int { return h.start + i }

// PutU16At overwrites a 2-byte header field at a header-relative offset.
func (h *Hunk) PutU16At(relOff int, v uint16) {
	off := h.start + relOff
	h.w.Order.PutUint16(h.w.buf[off:off+2], v)
}

// PutU32At overwrites a 4-byte header field at a header-relative offset.
func (h *Hunk) PutU32At(relOff int, v uint32) {
	off := h.start + relOff
	h.w.Order.PutUint32(h.w.buf[off:off+4], v)
}

// PutU64At overwrites an 8-byte header field at a header-relative offset.
func (h *Hunk) PutU64At(relOff int, v uint64) {
	off := h.start + relOff
	h.w.Order.PutUint64(h.w.buf[off:off+8], v)
}

// PutU8At overwrites a 1-byte header field at a header-relative offset.
func (h *Hunk) PutU8At(relOff int, v uint8) {
	h.w.buf[h.start+relOff] = v
}

// Close back-patches this hunk's total length (header + body + children
// already appended to the buffer) and returns it.
func (h *Hunk) Close() uint32 {
	total := uint32(h.w.Len() - h.start)
	h.w.PutU32At(h.start+8, total)
	return total
}

// Start returns the absolute offset this hunk began at.
func (h *Hunk) Start() int { return h.start }
