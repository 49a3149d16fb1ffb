package ot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CFFTable contains PostScript outlines in Compact Font Format, version 1.
// Only the data needed to interpret glyph charstrings is decoded: the
// CharStrings INDEX, global and local subroutines and, for CID-keyed fonts,
// the FDArray and FDSelect structures.
type CFFTable struct {
	tableBase
	FontName     string
	IsCID        bool
	charStrings  cffIndex
	globalSubrs  cffIndex
	localSubrs   cffIndex   // for non-CID fonts
	fdLocalSubrs []cffIndex // per font DICT, for CID-keyed fonts
	fdSelect     fdSelect
}

// Top DICT and Private DICT operators.
const (
	cffOpCharStrings    = 17
	cffOpPrivate        = 18
	cffOpSubrs          = 19
	cffOpCharstringType = 12<<8 | 6
	cffOpROS            = 12<<8 | 30
	cffOpFDArray        = 12<<8 | 36
	cffOpFDSelect       = 12<<8 | 37
)

func parseCFF(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	s := NewStream(b)
	major := s.U8()
	s.Skip(1)
	hdrSize := int(s.U8())
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	if major != 1 {
		return nil, malformed(tag, "Header", "unsupported CFF version %d", major)
	}
	t := &CFFTable{}
	t.tableBase = makeBase(tag, b, offset, size, t)
	var names, topDicts cffIndex
	var err error
	pos := hdrSize
	if names, pos, err = readCFFIndex(b, pos); err != nil {
		return nil, asMalformed(tag, "NameINDEX", err)
	}
	if topDicts, pos, err = readCFFIndex(b, pos); err != nil {
		return nil, asMalformed(tag, "TopDICT", err)
	}
	if _, pos, err = readCFFIndex(b, pos); err != nil { // String INDEX
		return nil, asMalformed(tag, "StringINDEX", err)
	}
	if t.globalSubrs, _, err = readCFFIndex(b, pos); err != nil {
		return nil, asMalformed(tag, "GlobalSubrINDEX", err)
	}
	if names.count != 1 || topDicts.count != 1 {
		return nil, malformed(tag, "Header", "CFF in OpenType must contain exactly one font")
	}
	if name, err := names.get(0); err == nil {
		t.FontName = string(name)
	}
	top, _ := topDicts.get(0)
	dict, err := parseCFFDict(top)
	if err != nil {
		return nil, asMalformed(tag, "TopDICT", err)
	}
	if ct, ok := dict[cffOpCharstringType]; ok && (len(ct) != 1 || ct[0] != 2) {
		return nil, malformed(tag, "TopDICT", "unsupported charstring type %v", ct)
	}
	csOffset, ok := dict.offset(cffOpCharStrings)
	if !ok {
		return nil, malformed(tag, "TopDICT", "missing CharStrings offset")
	}
	if t.charStrings, _, err = readCFFIndex(b, csOffset); err != nil {
		return nil, asMalformed(tag, "CharStrings", err)
	}
	if _, t.IsCID = dict[cffOpROS]; t.IsCID {
		err = t.parseCIDFont(b, dict)
	} else {
		t.localSubrs, err = parsePrivateDict(b, dict[cffOpPrivate])
	}
	if err != nil {
		return nil, asMalformed(tag, "PrivateDICT", err)
	}
	tracer().Debugf("CFF font %q: %d charstrings, %d global subrs, CID=%v",
		t.FontName, t.charStrings.count, t.globalSubrs.count, t.IsCID)
	return t, nil
}

// parseCIDFont reads the FDArray and FDSelect structures of a CID-keyed font.
func (t *CFFTable) parseCIDFont(b binarySegm, top cffDict) error {
	fdArrayOffset, ok := top.offset(cffOpFDArray)
	if !ok {
		return fmt.Errorf("CID font without FDArray")
	}
	fdSelectOffset, ok := top.offset(cffOpFDSelect)
	if !ok {
		return fmt.Errorf("CID font without FDSelect")
	}
	fdArray, _, err := readCFFIndex(b, fdArrayOffset)
	if err != nil {
		return err
	}
	t.fdLocalSubrs = make([]cffIndex, fdArray.count)
	for i := range t.fdLocalSubrs {
		fd, _ := fdArray.get(i)
		dict, err := parseCFFDict(fd)
		if err != nil {
			return err
		}
		if t.fdLocalSubrs[i], err = parsePrivateDict(b, dict[cffOpPrivate]); err != nil {
			return err
		}
	}
	t.fdSelect, err = parseFDSelect(b, fdSelectOffset, t.charStrings.count)
	return err
}

// parsePrivateDict reads the local subroutines referenced by a Private DICT,
// given the Private operands (size, offset).
func parsePrivateDict(b binarySegm, operands []float64) (cffIndex, error) {
	if len(operands) != 2 {
		return cffIndex{}, nil // no Private DICT, no local subroutines
	}
	size, offset := int(operands[0]), int(operands[1])
	if size < 0 || offset < 0 {
		return cffIndex{}, fmt.Errorf("invalid Private DICT operands %v", operands)
	}
	pd, err := b.view(offset, size)
	if err != nil {
		return cffIndex{}, fmt.Errorf("Private DICT [%d:+%d] out of bounds", offset, size)
	}
	dict, err := parseCFFDict(pd)
	if err != nil {
		return cffIndex{}, err
	}
	subrs, ok := dict.offset(cffOpSubrs)
	if !ok {
		return cffIndex{}, nil
	}
	// Subrs offset is relative to the start of the Private DICT
	idx, _, err := readCFFIndex(b, offset+subrs)
	return idx, err
}

func (t *CFFTable) link(numGlyphs int) error {
	if t.charStrings.count != numGlyphs {
		return fmt.Errorf("number of charstrings (%d) does not match number of glyphs (%d)",
			t.charStrings.count, numGlyphs)
	}
	return nil
}

// NumCharStrings returns the number of glyph charstrings.
func (t *CFFTable) NumCharStrings() int {
	return t.charStrings.count
}

// subrsFor returns the local subroutines applicable to glyph gid.
func (t *CFFTable) subrsFor(gid GlyphIndex) (cffIndex, error) {
	if !t.IsCID {
		return t.localSubrs, nil
	}
	fd, ok := t.fdSelect.lookup(gid)
	if !ok || fd >= len(t.fdLocalSubrs) {
		return cffIndex{}, fmt.Errorf("glyph %d has no font DICT", gid)
	}
	return t.fdLocalSubrs[fd], nil
}

// outline interprets the charstring of glyph gid, streaming it to o.
func (t *CFFTable) outline(gid GlyphIndex, o *outliner) error {
	cs, err := t.charStrings.get(int(gid))
	if err != nil {
		return asMalformed(t.name, "CharStrings", err)
	}
	local, err := t.subrsFor(gid)
	if err != nil {
		return asMalformed(t.name, "FDSelect", err)
	}
	c := csInterpreter{
		o:           o,
		globalSubrs: t.globalSubrs,
		localSubrs:  local,
		globalBias:  subrBias(t.globalSubrs.count),
		localBias:   subrBias(local.count),
	}
	if err := c.run(cs); err != nil {
		return asMalformed(t.name, fmt.Sprintf("CharString %d", gid), err)
	}
	return nil
}

// --- INDEX -----------------------------------------------------------------

// cffIndex is an INDEX structure: an array of variable-sized objects.
type cffIndex struct {
	count   int
	offSize int
	offsets binarySegm
	data    binarySegm // object data; offsets are 1-based relative to the byte before
}

// readCFFIndex reads an INDEX at pos and returns it with the position of the
// first byte after it.
func readCFFIndex(b binarySegm, pos int) (cffIndex, int, error) {
	s := newStreamAt(b, pos)
	idx := cffIndex{count: int(s.U16())}
	if err := s.Err(); err != nil {
		return idx, 0, err
	}
	if idx.count == 0 {
		return idx, s.Offset(), nil
	}
	idx.offSize = int(s.U8())
	if idx.offSize < 1 || idx.offSize > 4 {
		return idx, 0, fmt.Errorf("invalid INDEX offset size %d", idx.offSize)
	}
	idx.offsets = s.Bytes((idx.count + 1) * idx.offSize)
	if err := s.Err(); err != nil {
		return idx, 0, err
	}
	last := idx.offset(idx.count)
	if idx.offset(0) != 1 || last < 1 {
		return idx, 0, fmt.Errorf("invalid INDEX offsets")
	}
	idx.data = s.Bytes(int(last) - 1)
	if err := s.Err(); err != nil {
		return idx, 0, err
	}
	return idx, s.Offset(), nil
}

func (idx cffIndex) offset(i int) uint32 {
	var off uint32
	for _, b := range idx.offsets[i*idx.offSize : (i+1)*idx.offSize] {
		off = off<<8 | uint32(b)
	}
	return off
}

// get returns object i of the INDEX.
func (idx cffIndex) get(i int) (binarySegm, error) {
	if i < 0 || i >= idx.count {
		return nil, fmt.Errorf("INDEX entry %d out of range (count %d)", i, idx.count)
	}
	start, end := idx.offset(i), idx.offset(i+1)
	if start < 1 || start > end || int(end)-1 > len(idx.data) {
		return nil, fmt.Errorf("INDEX entry %d has invalid offsets", i)
	}
	return idx.data[start-1 : end-1], nil
}

// --- DICT ------------------------------------------------------------------

// cffDict maps DICT operators to their operands. Two-byte operators are
// encoded as 12<<8 | b1.
type cffDict map[int][]float64

func (d cffDict) offset(op int) (int, bool) {
	v, ok := d[op]
	if !ok || len(v) != 1 || v[0] < 0 || v[0] > math.MaxInt32 {
		return 0, false
	}
	return int(v[0]), true
}

const cffMaxDictOperands = 48

func parseCFFDict(b binarySegm) (cffDict, error) {
	dict := cffDict{}
	operands := make([]float64, 0, cffMaxDictOperands)
	s := NewStream(b)
	for !s.AtEnd() {
		b0 := s.U8()
		switch {
		case b0 <= 21:
			op := int(b0)
			if b0 == 12 {
				op = 12<<8 | int(s.U8())
			}
			dict[op] = operands
			operands = make([]float64, 0, cffMaxDictOperands)
			continue
		case len(operands) == cffMaxDictOperands:
			return nil, fmt.Errorf("DICT operand stack overflow")
		}
		var v float64
		switch {
		case b0 == 28:
			v = float64(s.I16())
		case b0 == 29:
			v = float64(s.I32())
		case b0 == 30:
			v = readCFFReal(s)
		case b0 >= 32 && b0 <= 246:
			v = float64(int(b0) - 139)
		case b0 >= 247 && b0 <= 250:
			v = float64((int(b0)-247)*256 + int(s.U8()) + 108)
		case b0 >= 251 && b0 <= 254:
			v = float64(-(int(b0)-251)*256 - int(s.U8()) - 108)
		default:
			return nil, fmt.Errorf("invalid DICT byte %d", b0)
		}
		operands = append(operands, v)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return dict, nil
}

// readCFFReal reads a real number operand, encoded as packed BCD nibbles.
func readCFFReal(s *Stream) float64 {
	var sb strings.Builder
	for done := false; !done && s.Err() == nil; {
		b := s.U8()
		for _, nib := range [2]byte{b >> 4, b & 0x0f} {
			switch {
			case nib <= 9:
				sb.WriteByte('0' + nib)
			case nib == 0xa:
				sb.WriteByte('.')
			case nib == 0xb:
				sb.WriteString("E")
			case nib == 0xc:
				sb.WriteString("E-")
			case nib == 0xe:
				sb.WriteByte('-')
			case nib == 0xf:
				done = true
			}
			if done {
				break
			}
		}
	}
	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// --- FDSelect --------------------------------------------------------------

type fdSelect struct {
	format byte
	data   binarySegm
}

func parseFDSelect(b binarySegm, offset, numGlyphs int) (fdSelect, error) {
	s := newStreamAt(b, offset)
	sel := fdSelect{format: s.U8()}
	switch sel.format {
	case 0:
		sel.data = s.Bytes(numGlyphs)
	case 3:
		n := int(s.U16())
		sel.data = s.Bytes(3*n + 2)
		if s.Err() == nil && n == 0 {
			return sel, fmt.Errorf("FDSelect without ranges")
		}
	default:
		if s.Err() == nil {
			return sel, fmt.Errorf("unsupported FDSelect format %d", sel.format)
		}
	}
	return sel, s.Err()
}

// lookup returns the font DICT index for glyph gid.
func (sel fdSelect) lookup(gid GlyphIndex) (int, bool) {
	switch sel.format {
	case 0:
		if int(gid) < len(sel.data) {
			return int(sel.data[gid]), true
		}
	case 3:
		n := (len(sel.data) - 2) / 3
		for i := 0; i < n; i++ {
			first := GlyphIndex(u16(sel.data[3*i:]))
			next := GlyphIndex(u16(sel.data[3*i+3:]))
			if gid >= first && gid < next {
				return int(sel.data[3*i+2]), true
			}
		}
	}
	return 0, false
}

// subrBias returns the bias added to subroutine numbers.
func subrBias(count int) int {
	switch {
	case count < 1240:
		return 107
	case count < 33900:
		return 1131
	}
	return 32768
}
