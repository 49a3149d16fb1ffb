package fonttest

import "math"

// Buffer accumulates big-endian font data.
type Buffer []byte

func (b *Buffer) U8(v ...uint8) *Buffer {
	*b = append(*b, v...)
	return b
}

func (b *Buffer) U16(v ...uint16) *Buffer {
	for _, x := range v {
		*b = append(*b, byte(x>>8), byte(x))
	}
	return b
}

func (b *Buffer) I16(v ...int16) *Buffer {
	for _, x := range v {
		b.U16(uint16(x))
	}
	return b
}

func (b *Buffer) U24(v uint32) *Buffer {
	*b = append(*b, byte(v>>16), byte(v>>8), byte(v))
	return b
}

func (b *Buffer) U32(v ...uint32) *Buffer {
	for _, x := range v {
		*b = append(*b, byte(x>>24), byte(x>>16), byte(x>>8), byte(x))
	}
	return b
}

func (b *Buffer) I32(v int32) *Buffer {
	return b.U32(uint32(v))
}

// Tag appends a 4-byte table or feature tag. Shorter tags are padded with
// spaces.
func (b *Buffer) Tag(t string) *Buffer {
	for len(t) < 4 {
		t += " "
	}
	*b = append(*b, t[:4]...)
	return b
}

// Fixed appends v as a 16.16 fixed-point number.
func (b *Buffer) Fixed(v float32) *Buffer {
	return b.I32(int32(math.Round(float64(v) * 65536)))
}

// F2Dot14 appends each value as a 2.14 fixed-point number.
func (b *Buffer) F2Dot14(v ...float32) *Buffer {
	for _, x := range v {
		b.I16(int16(math.Round(float64(x) * 16384)))
	}
	return b
}

func (b *Buffer) Bytes(p []byte) *Buffer {
	*b = append(*b, p...)
	return b
}

// Pad appends zero bytes until the length is a multiple of n.
func (b *Buffer) Pad(n int) *Buffer {
	for len(*b)%n != 0 {
		*b = append(*b, 0)
	}
	return b
}

func (b Buffer) Len() int {
	return len(b)
}

// PutU16 overwrites the 2 bytes at position at.
func (b Buffer) PutU16(at int, v uint16) {
	b[at], b[at+1] = byte(v>>8), byte(v)
}

// PutU32 overwrites the 4 bytes at position at.
func (b Buffer) PutU32(at int, v uint32) {
	b[at], b[at+1], b[at+2], b[at+3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
}
