package hunk

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeOrderLittleEndian(t *testing.T) {
	buf := NewWriter(binary.LittleEndian)
	h := buf.Begin("mhbd", 16)
	buf.WriteU32(1)
	h.Close()

	order, err := ProbeOrder(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, binary.LittleEndian, order)
}

func TestProbeOrderBigEndian(t *testing.T) {
	buf := NewWriter(binary.BigEndian)
	h := buf.Begin("mhbd", 16)
	buf.WriteU32(1)
	h.Close()

	order, err := ProbeOrder(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian, order)
}

func TestProbeOrderCorrupt(t *testing.T) {
	_, err := ProbeOrder([]byte("xxxx"))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestHunkRoundTripAndChildWalk(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		w := NewWriter(order)
		root := w.Begin("mhbd", 16)
		root.PutU32At(12, 0xdeadbeef)

		child1 := w.Begin("mhsd", 12)
		w.WriteBytes([]byte("hello"))
		child1.Close()

		child2 := w.Begin("mhsd", 12)
		w.WriteBytes([]byte("world!"))
		child2.Close()

		root.Close()

		r := NewReader(w.Bytes(), order)
		rh := ReadHeader(r, 0)
		require.NoError(t, r.Err())
		assert.Equal(t, "mhbd", rh.Tag)
		assert.EqualValues(t, 16, rh.HeaderLen)
		assert.Equal(t, uint32(0xdeadbeef), r.U32(12))

		walker := Children(r, rh.BodyStart(), rh.End())
		h1, ok := walker.Next()
		require.True(t, ok)
		assert.Equal(t, "mhsd", h1.Tag)
		assert.Equal(t, "hello", string(r.Bytes(h1.BodyStart(), 5)))

		h2, ok := walker.Next()
		require.True(t, ok)
		assert.Equal(t, "world!", string(r.Bytes(h2.BodyStart(), 6)))

		_, ok = walker.Next()
		assert.False(t, ok)
		assert.NoError(t, r.Err())
	}
}

func TestReadHeaderZeroLengthIsCorrupt(t *testing.T) {
	w := NewWriter(binary.LittleEndian)
	w.WriteTag("mhit")
	w.WriteU32(12)
	w.WriteU32(0)

	r := NewReader(w.Bytes(), binary.LittleEndian)
	ReadHeader(r, 0)
	assert.ErrorIs(t, r.Err(), ErrCorrupt)
}

func TestOutOfRangeRead(t *testing.T) {
	r := NewReader([]byte{1, 2, 3}, binary.LittleEndian)
	r.U32(0)
	assert.ErrorIs(t, r.Err(), ErrOutOfRange)
}

func TestUTF16RoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		b := EncodeUTF16("Hello", order)
		assert.Equal(t, "Hello", DecodeUTF16(b, order))
	}
}

func TestSLstOrderException(t *testing.T) {
	// A little-endian database still encodes its SLst sub-hunk big-endian.
	w := NewWriter(binary.LittleEndian)
	be := w.WithOrder(binary.BigEndian)
	be.WriteU32(0x01020304)
	w.Adopt(be)

	r := NewReader(w.Bytes(), binary.LittleEndian)
	beR := r.WithOrder(binary.BigEndian)
	assert.Equal(t, uint32(0x01020304), beR.U32(0))
}
