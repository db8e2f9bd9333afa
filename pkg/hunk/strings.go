package hunk

import (
	"encoding/binary"
	"unicode/utf16"
)

// DecodeUTF16 decodes b (an even number of bytes, honouring order) into a Go
// string. An odd trailing byte is ignored defensively; well-formed streams
// never produce one.
func DecodeUTF16(b []byte, order binary.ByteOrder) string {
	n := len(b) / 2
	u16 := make([]uint16, n)
	for i := 0; i < n; i++ {
		u16[i] = order.Uint16(b[i*2 : i*2+2])
	}
	return string(utf16.Decode(u16))
}

// EncodeUTF16 encodes s into bytes using order.
func EncodeUTF16(s string, order binary.ByteOrder) []byte {
	u16 := utf16.Encode([]rune(s))
	out := make([]byte, len(u16)*2)
	for i, u := range u16 {
		order.PutUint16(out[i*2:i*2+2], u)
	}
	return out
}
