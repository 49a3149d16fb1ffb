package ot

// Stream is a bounds-checked sequential reader over a segment of font data.
//
// Reading past the end of the segment does not panic. Instead the stream
// enters a sticky error state: the failing read and all subsequent reads
// return zero values, and Err reports the failure. Decoders read a complete
// structure and check Err once, which keeps decoding code close to the layout
// descriptions of the OpenType specification.
type Stream struct {
	data binarySegm
	pos  int
	err  error
}

// NewStream creates a stream reading b, starting at position 0.
func NewStream(b []byte) *Stream {
	return &Stream{data: b}
}

func newStreamAt(b binarySegm, offset int) *Stream {
	s := &Stream{data: b}
	s.SeekTo(offset)
	return s
}

// Err returns the first error the stream has encountered, if any.
func (s *Stream) Err() error {
	return s.err
}

// Offset returns the current read position.
func (s *Stream) Offset() int {
	return s.pos
}

// Len returns the total length of the underlying segment.
func (s *Stream) Len() int {
	return len(s.data)
}

// Remaining returns the number of unread bytes.
func (s *Stream) Remaining() int {
	if s.err != nil {
		return 0
	}
	return len(s.data) - s.pos
}

// AtEnd is true if all bytes have been read or the stream is in error state.
func (s *Stream) AtEnd() bool {
	return s.Remaining() <= 0
}

// SeekTo positions the stream at an absolute offset within its segment.
// Seeking to the end of the segment is valid, seeking past it is an error.
func (s *Stream) SeekTo(offset int) {
	if s.err != nil {
		return
	}
	if offset < 0 || offset > len(s.data) {
		s.err = errUnexpectedEOF
		return
	}
	s.pos = offset
}

// Skip advances the stream by n bytes.
func (s *Stream) Skip(n int) {
	s.next(n)
}

func (s *Stream) next(n int) []byte {
	if s.err != nil {
		return nil
	}
	if n < 0 || n > len(s.data)-s.pos {
		s.err = errUnexpectedEOF
		return nil
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b
}

// Bytes returns the next n bytes as a sub-slice of the underlying data.
func (s *Stream) Bytes(n int) []byte {
	return s.next(n)
}

// U8 reads a uint8.
func (s *Stream) U8() uint8 {
	if b := s.next(1); b != nil {
		return b[0]
	}
	return 0
}

// I8 reads an int8.
func (s *Stream) I8() int8 {
	return int8(s.U8())
}

// U16 reads a big-endian uint16.
func (s *Stream) U16() uint16 {
	if b := s.next(2); b != nil {
		return u16(b)
	}
	return 0
}

// I16 reads a big-endian int16.
func (s *Stream) I16() int16 {
	return int16(s.U16())
}

// U24 reads a big-endian 24-bit unsigned integer.
func (s *Stream) U24() uint32 {
	if b := s.next(3); b != nil {
		return u24(b)
	}
	return 0
}

// U32 reads a big-endian uint32.
func (s *Stream) U32() uint32 {
	if b := s.next(4); b != nil {
		return u32(b)
	}
	return 0
}

// I32 reads a big-endian int32.
func (s *Stream) I32() int32 {
	return int32(s.U32())
}

// U64 reads a big-endian uint64, e.g. a LONGDATETIME.
func (s *Stream) U64() uint64 {
	hi := uint64(s.U32())
	lo := uint64(s.U32())
	return hi<<32 | lo
}

// Fixed reads a 16.16 fixed point number.
func (s *Stream) Fixed() float32 {
	return float32(s.I32()) / 65536
}

// F2Dot14 reads a 2.14 fixed point number.
func (s *Stream) F2Dot14() float32 {
	return f2dot14(s.I16())
}

// Tag reads a 4-byte tag.
func (s *Stream) Tag() Tag {
	return Tag(s.U32())
}

// OffsetN reads an offset of a given byte width (1 to 4), as used by CFF
// INDEX structures.
func (s *Stream) OffsetN(width int) uint32 {
	switch width {
	case 1:
		return uint32(s.U8())
	case 2:
		return uint32(s.U16())
	case 3:
		return s.U24()
	case 4:
		return s.U32()
	}
	if s.err == nil {
		s.err = errUnexpectedEOF
	}
	return 0
}

func f2dot14(n int16) float32 {
	return float32(n) / 16384
}
