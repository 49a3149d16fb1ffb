package fonttest

// Charstring builds a Type 2 charstring.
type Charstring struct {
	Buffer
}

// Args pushes integer operands.
func (c *Charstring) Args(v ...int) *Charstring {
	for _, n := range v {
		switch {
		case n >= -107 && n <= 107:
			c.U8(uint8(n + 139))
		case n >= 108 && n <= 1131:
			n -= 108
			c.U8(uint8(n>>8+247), uint8(n))
		case n >= -1131 && n <= -108:
			n = -n - 108
			c.U8(uint8(n>>8+251), uint8(n))
		default:
			c.U8(28).I16(int16(n))
		}
	}
	return c
}

// Fixed pushes a 16.16 fixed-point operand.
func (c *Charstring) Fixed(v float32) *Charstring {
	c.U8(255)
	c.Buffer.Fixed(v)
	return c
}

// Op appends an operator. Two-byte operators are given as 12, b1.
func (c *Charstring) Op(op ...uint8) *Charstring {
	c.U8(op...)
	return c
}

// Type 2 charstring operators.
const (
	CSHstem     = 1
	CSVstem     = 3
	CSVmoveto   = 4
	CSRlineto   = 5
	CSHlineto   = 6
	CSVlineto   = 7
	CSRrcurveto = 8
	CSCallsubr  = 10
	CSReturn    = 11
	CSEscape    = 12
	CSEndchar   = 14
	CSHintmask  = 19
	CSRmoveto   = 21
	CSHmoveto   = 22
	CSCallgsubr = 29
	CSFlex      = 35 // escaped
)

// Index creates a CFF INDEX structure with 4-byte offsets.
func Index(objects ...[]byte) []byte {
	var b Buffer
	b.U16(uint16(len(objects)))
	if len(objects) == 0 {
		return b
	}
	b.U8(4)
	off := uint32(1)
	b.U32(off)
	for _, o := range objects {
		off += uint32(len(o))
		b.U32(off)
	}
	for _, o := range objects {
		b.Bytes(o)
	}
	return b
}

// dictInt encodes a DICT integer operand with a fixed size of 5 bytes.
func dictInt(b *Buffer, v int) {
	b.U8(29).I32(int32(v))
}

// CFF creates a CFF table (version 1) with a single non-CID font.
func CFF(name string, charStrings, globalSubrs, localSubrs [][]byte) []byte {
	header := []byte{1, 0, 4, 4}
	names := Index([]byte(name))
	strs := Index()
	gsubrs := Index(globalSubrs...)
	const topDictSize = 5 + 1 + 5 + 5 + 1 // CharStrings, Private
	topDictIndexSize := len(Index(make([]byte, topDictSize)))
	csOffset := len(header) + len(names) + topDictIndexSize + len(strs) + len(gsubrs)
	charStringsIndex := Index(charStrings...)
	privateOffset := csOffset + len(charStringsIndex)
	var private Buffer
	if len(localSubrs) > 0 {
		dictInt(&private, 6) // Subrs, relative to the Private DICT
		private.U8(19)
	}
	var top Buffer
	dictInt(&top, csOffset)
	top.U8(17)
	dictInt(&top, private.Len())
	dictInt(&top, privateOffset)
	top.U8(18)
	var b Buffer
	b.Bytes(header).Bytes(names).Bytes(Index(top)).Bytes(strs).Bytes(gsubrs)
	b.Bytes(charStringsIndex).Bytes(private)
	if len(localSubrs) > 0 {
		b.Bytes(Index(localSubrs...))
	}
	return b
}

// CIDCFF creates a CID-keyed CFF table. fdSelect assigns a font DICT to each
// glyph (format 0); fdSubrs holds the local subroutines of each font DICT.
func CIDCFF(name string, charStrings, globalSubrs [][]byte, fdSelect []uint8, fdSubrs [][][]byte) []byte {
	header := []byte{1, 0, 4, 4}
	names := Index([]byte(name))
	strs := Index()
	gsubrs := Index(globalSubrs...)
	// ROS (3 operands), CharStrings, FDArray, FDSelect
	const topDictSize = 3*5 + 2 + 5 + 1 + 5 + 2 + 5 + 2
	topDictIndexSize := len(Index(make([]byte, topDictSize)))
	pos := len(header) + len(names) + topDictIndexSize + len(strs) + len(gsubrs)
	csOffset := pos
	charStringsIndex := Index(charStrings...)
	pos += len(charStringsIndex)
	fdSelectOffset := pos
	var sel Buffer
	sel.U8(0).Bytes(fdSelect)
	pos += sel.Len()
	// font DICTs hold a Private operator only, their Private DICTs a Subrs
	// operator; all are placed after the FDArray INDEX
	const fontDictSize = 5 + 5 + 1
	fdArrayOffset := pos
	fdArraySize := len(Index(repeat(make([]byte, fontDictSize), len(fdSubrs))...))
	pos += fdArraySize
	var fonts [][]byte
	var privates Buffer
	for _, subrs := range fdSubrs {
		var pd Buffer
		dictInt(&pd, 6)
		pd.U8(19)
		var fd Buffer
		dictInt(&fd, pd.Len())
		dictInt(&fd, pos+privates.Len())
		fd.U8(18)
		fonts = append(fonts, fd)
		privates.Bytes(pd).Bytes(Index(subrs...))
	}
	var top Buffer
	dictInt(&top, 0)
	dictInt(&top, 0)
	dictInt(&top, 0)
	top.U8(12, 30)
	dictInt(&top, csOffset)
	top.U8(17)
	dictInt(&top, fdArrayOffset)
	top.U8(12, 36)
	dictInt(&top, fdSelectOffset)
	top.U8(12, 37)
	var b Buffer
	b.Bytes(header).Bytes(names).Bytes(Index(top)).Bytes(strs).Bytes(gsubrs)
	b.Bytes(charStringsIndex).Bytes(sel).Bytes(Index(fonts...)).Bytes(privates)
	return b
}

func repeat(b []byte, n int) [][]byte {
	r := make([][]byte, n)
	for i := range r {
		r[i] = b
	}
	return r
}
