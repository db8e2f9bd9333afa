package hunk

import "fmt"

// Header is the common 12-byte prefix shared by every hunk: a four-char
// type tag, a header length (H), and a total length (T, header + body +
// children).
type Header struct {
	Tag       string
	HeaderLen uint32
	TotalLen  uint32
	// Start is the absolute offset of the tag within the Reader's buffer.
	Start int
}

// BodyStart is the absolute offset where this hunk's body (payload or first
// child) begins.
func (h Header) BodyStart() int { return h.Start + int(h.HeaderLen) }

// End is the absolute offset one past the end of this hunk (header + body +
// children).
func (h Header) End() int { return h.Start + int(h.TotalLen) }

// ReadHeader reads the 12-byte hunk prefix at off and validates it. A
// zero-length T, or T < H, is a hard corruption error (spec §4.2: "a stream
// with zero-length T at any level is a hard corruption error, would
// otherwise loop").
func ReadHeader(r *Reader, off int) Header {
	h := Header{
		Tag:       r.Tag(off),
		HeaderLen: r.U32(off + 4),
		TotalLen:  r.U32(off + 8),
		Start:     off,
	}
	if r.Err() != nil {
		return h
	}
	if h.HeaderLen < 12 {
		r.fail(fmt.Errorf("%w: hunk %q header length %d smaller than prefix", ErrCorrupt, h.Tag, h.HeaderLen))
		return h
	}
	if h.TotalLen == 0 {
		r.fail(fmt.Errorf("%w: hunk %q has zero total length", ErrCorrupt, h.Tag))
		return h
	}
	if h.TotalLen < h.HeaderLen {
		r.fail(fmt.Errorf("%w: hunk %q total length %d smaller than header length %d", ErrCorrupt, h.Tag, h.TotalLen, h.HeaderLen))
		return h
	}
	if !r.bounds(off, int(h.TotalLen)) {
		return h
	}
	return h
}

// ChildWalker iterates sibling hunks inside a parent's body, tolerating
// unknown intervening hunks by skipping them via their declared T (spec
// §4.2: "tolerating unknown intervening hunks: skip by their T length").
type ChildWalker struct {
	r    *Reader
	pos  int
	stop int
}

// Children returns a walker over the hunks found in [bodyStart, end).
func Children(r *Reader, bodyStart, end int) *ChildWalker {
	return &ChildWalker{r: r, pos: bodyStart, stop: end}
}

// Next returns the next child header, or ok=false when the region is
// exhausted or an error has been recorded.
func (c *ChildWalker) Next() (Header, bool) {
	if c.r.Err() != nil {
		return Header{}, false
	}
	if c.pos >= c.stop {
		return Header{}, false
	}
	h := ReadHeader(c.r, c.pos)
	if c.r.Err() != nil {
		return Header{}, false
	}
	c.pos = h.End()
	return h, true
}
