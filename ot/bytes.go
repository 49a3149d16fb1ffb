package ot

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// binarySegm is a segment of byte data.
// We use it throughout this module for random access into the font's binary data.
// All accessors check bounds and return errBufferBounds instead of panicking.
type binarySegm []byte

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 {
		return nil, errBufferBounds
	}
	end, err := checkedAdd(offset, n)
	if err != nil || end > len(b) {
		return nil, errBufferBounds
	}
	return b[offset:end], nil
}

// from returns the tail of b, starting at offset.
func (b binarySegm) from(offset int) (binarySegm, error) {
	if offset < 0 || offset > len(b) {
		return nil, errBufferBounds
	}
	return b[offset:], nil
}

// u8 returns the byte in b at the relative offset i.
func (b binarySegm) u8(i int) (uint8, error) {
	if i < 0 || i >= len(b) {
		return 0, errBufferBounds
	}
	return b[i], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// i16 returns the int16 in b at the relative offset i.
func (b binarySegm) i16(i int) (int16, error) {
	n, err := b.u16(i)
	return int16(n), err
}

// u24 returns the 24-bit unsigned integer in b at the relative offset i.
func (b binarySegm) u24(i int) (uint32, error) {
	buf, err := b.view(i, 3)
	if err != nil {
		return 0, err
	}
	return u24(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// --- Checked arithmetic ----------------------------------------------------

// checkedAdd adds two integers, reporting overflow as an error.
func checkedAdd[T constraints.Integer](a, b T) (T, error) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return c, nil
}

// checkedMul multiplies two integers, reporting overflow as an error.
func checkedMul[T constraints.Integer](a, b T) (T, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if c/b != a || c/a != b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return c, nil
}

// rangeEnd computes offset + count*size, the end of an array of records,
// without overflow.
func rangeEnd(offset, count, size int) (int, error) {
	n, err := checkedMul(count, size)
	if err != nil {
		return 0, err
	}
	return checkedAdd(offset, n)
}
