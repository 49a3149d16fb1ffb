package ot

// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

import (
	"fmt"
	"iter"

	"golang.org/x/text/encoding/charmap"
)

// CMapTable represents an OpenType cmap table, i.e. the table to receive glyphs
// from code-points.
//
// A cmap table contains sub-tables for various platforms and encodings. At
// parse time, the sub-table best suited for Unicode lookups is selected and
// made available as GlyphIndexMap. Lookups operate directly on the font's
// bytes and do not allocate.
type CMapTable struct {
	tableBase
	Records       []CMapRecord // all encoding records of the table
	GlyphIndexMap CMap         // selected sub-table, never nil after parsing
	selected      int          // index of the selected record, or -1
	variations    *cmapFormat14
	numGlyphs     int
}

// CMapRecord is an encoding record of a cmap table.
type CMapRecord struct {
	PlatformID uint16
	EncodingID uint16
	Offset     uint32
	Format     uint16
}

// CMap is a mapping from code-points to glyph indices.
type CMap interface {
	// Lookup returns the glyph index for code-point r, or 0 if r is unmapped.
	Lookup(r rune) GlyphIndex
	// ReverseLookup returns a code-point mapped to glyph g, or 0.
	ReverseLookup(g GlyphIndex) rune
	// Mappings iterates over all code-points mapped to a glyph other than 0.
	Mappings() iter.Seq2[rune, GlyphIndex]
}

// Platform IDs and Platform Specific IDs as per
// https://www.microsoft.com/typography/otspec/name.htm
const (
	pidUnicode   = 0
	pidMacintosh = 1
	pidWindows   = 3

	psidUnicodeVariations = 5
	psidMacintoshRoman    = 0
	psidWindowsSymbol     = 0
	psidWindowsUCS2       = 1
	psidWindowsUCS4       = 10
)

// subtableRank returns the preference of a sub-table for Unicode lookups.
// Higher is better, 0 means unusable.
//
// Recent fonts support the full range of Unicode code points with a 32-bit
// format. Old fonts, from when Unicode meant the Basic Multilingual Plane (BMP),
// assume 16 bits per character. Symbol fonts map their characters into the
// private use area. Very old fonts only carry a Macintosh character map.
func subtableRank(pid, psid, format uint16) int {
	unicode := pid == pidUnicode && psid != psidUnicodeVariations ||
		pid == pidWindows && (psid == psidWindowsUCS2 || psid == psidWindowsUCS4)
	switch {
	case unicode && (format == 10 || format == 12 || format == 13):
		return 4
	case unicode && (format == 0 || format == 4 || format == 6):
		return 3
	case pid == pidWindows && psid == psidWindowsSymbol && (format == 4 || format == 6 || format == 12):
		return 2
	case pid == pidMacintosh && psid == psidMacintoshRoman && (format == 0 || format == 6):
		return 1
	}
	return 0
}

// The various cmap formats are described at
// https://www.microsoft.com/typography/otspec/cmap.htm
func parseCMap(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	s := NewStream(b)
	s.Skip(2) // version
	n := int(s.U16())
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	tracer().Debugf("font cmap has %d sub-tables in %d bytes", n, size)
	const headerSize, entrySize = 4, 8
	if end, err := rangeEnd(headerSize, n, entrySize); err != nil || end > len(b) {
		return nil, malformed(tag, "Header", "table size %d too small for %d encoding records", size, n)
	}
	t := &CMapTable{selected: -1}
	t.tableBase = makeBase(tag, b, offset, size, t)
	var best CMap
	rank := 0
	for i := 0; i < n; i++ {
		rec := CMapRecord{PlatformID: s.U16(), EncodingID: s.U16(), Offset: s.U32()}
		format, err := b.u16(int(rec.Offset))
		if err != nil {
			ec.addWarning(tag, fmt.Sprintf("sub-table %d (platform=%d, encoding=%d) out of bounds",
				i, rec.PlatformID, rec.EncodingID), offset)
			continue
		}
		rec.Format = format
		t.Records = append(t.Records, rec)
		if rec.PlatformID == pidUnicode && rec.EncodingID == psidUnicodeVariations && format == 14 {
			if t.variations, err = parseCMapFormat14(b[rec.Offset:]); err != nil {
				ec.addWarning(tag, fmt.Sprintf("variation sequences sub-table: %v", err), offset+rec.Offset)
				t.variations = nil
			}
			continue
		}
		r := subtableRank(rec.PlatformID, rec.EncodingID, format)
		if r <= rank {
			continue
		}
		m, err := parseCMapSubtable(b[rec.Offset:], rec)
		if err != nil {
			tracer().Infof("cmap sub-table cannot be parsed: %v", err)
			ec.addWarning(tag, fmt.Sprintf("sub-table %d (platform=%d, encoding=%d, format=%d) cannot be parsed: %v",
				i, rec.PlatformID, rec.EncodingID, format, err), offset+rec.Offset)
			continue
		}
		best, rank, t.selected = m, r, len(t.Records)-1
	}
	if best == nil {
		tracer().Infof("no supported cmap sub-table found")
		ec.addWarning(tag, "no supported cmap format found", offset)
		best = emptyCMap{}
	}
	t.GlyphIndexMap = best
	return t, nil
}

// link restricts all lookups to glyphs of the font.
func (t *CMapTable) link(numGlyphs int) {
	t.numGlyphs = numGlyphs
	t.GlyphIndexMap = boundedCMap{CMap: t.GlyphIndexMap, numGlyphs: numGlyphs}
}

// Selected returns the encoding record of the sub-table used for lookups.
func (t *CMapTable) Selected() (CMapRecord, bool) {
	if t == nil || t.selected < 0 {
		return CMapRecord{}, false
	}
	return t.Records[t.selected], true
}

// Lookup returns the glyph index for code-point r, or 0 if r is unmapped.
func (t *CMapTable) Lookup(r rune) GlyphIndex {
	if t == nil || t.GlyphIndexMap == nil {
		return 0
	}
	return t.GlyphIndexMap.Lookup(r)
}

// HasVariationSequences is true if the font maps Unicode variation sequences
// (cmap sub-table format 14).
func (t *CMapTable) HasVariationSequences() bool {
	return t != nil && t.variations != nil
}

// VariationLookup returns the glyph for code-point r followed by variation selector
// vs. If the font has no mapping for the sequence, None is returned. If the sequence
// maps to the default glyph of r, the result of Lookup(r) is returned.
func (t *CMapTable) VariationLookup(r, vs rune) Option[GlyphIndex] {
	if t == nil || t.variations == nil {
		return None[GlyphIndex]()
	}
	g, isDefault, ok := t.variations.lookup(r, vs)
	if !ok {
		return None[GlyphIndex]()
	}
	if isDefault {
		g = t.Lookup(r)
		if g == 0 {
			return None[GlyphIndex]()
		}
		return Some(g)
	}
	if int(g) >= t.numGlyphs {
		return None[GlyphIndex]()
	}
	return Some(g)
}

func parseCMapSubtable(b binarySegm, rec CMapRecord) (CMap, error) {
	var m CMap
	var err error
	switch rec.Format {
	case 0:
		m, err = parseCMapFormat0(b)
	case 4:
		m, err = parseCMapFormat4(b)
	case 6:
		m, err = parseCMapFormat6(b)
	case 10:
		m, err = parseCMapFormat10(b)
	case 12, 13:
		m, err = parseCMapFormat12(b, rec.Format == 13)
	default:
		return nil, fmt.Errorf("unsupported format %d", rec.Format)
	}
	if err != nil {
		return nil, err
	}
	switch {
	case rec.PlatformID == pidMacintosh:
		m = macRomanCMap{m}
	case rec.PlatformID == pidWindows && rec.EncodingID == psidWindowsSymbol:
		m = symbolCMap{m}
	}
	return m, nil
}

// --- Wrappers --------------------------------------------------------------

type emptyCMap struct{}

func (emptyCMap) Lookup(rune) GlyphIndex       { return 0 }
func (emptyCMap) ReverseLookup(GlyphIndex) rune { return 0 }
func (emptyCMap) Mappings() iter.Seq2[rune, GlyphIndex] {
	return func(func(rune, GlyphIndex) bool) {}
}

// boundedCMap maps glyph indices not present in the font to 0.
type boundedCMap struct {
	CMap
	numGlyphs int
}

func (m boundedCMap) Lookup(r rune) GlyphIndex {
	if g := m.CMap.Lookup(r); int(g) < m.numGlyphs {
		return g
	}
	return 0
}

func (m boundedCMap) Mappings() iter.Seq2[rune, GlyphIndex] {
	return func(yield func(rune, GlyphIndex) bool) {
		for r, g := range m.CMap.Mappings() {
			if int(g) < m.numGlyphs && !yield(r, g) {
				return
			}
		}
	}
}

func (m boundedCMap) ReverseLookup(g GlyphIndex) rune {
	return reverseLookup(m, g)
}

// macRomanCMap translates Unicode code-points to Mac Roman character codes.
type macRomanCMap struct {
	inner CMap
}

func (m macRomanCMap) Lookup(r rune) GlyphIndex {
	x, ok := charmap.Macintosh.EncodeRune(r)
	if !ok {
		// The source rune r is not representable in the Macintosh-Roman encoding.
		return 0
	}
	return m.inner.Lookup(rune(x))
}

func (m macRomanCMap) Mappings() iter.Seq2[rune, GlyphIndex] {
	return func(yield func(rune, GlyphIndex) bool) {
		for c, g := range m.inner.Mappings() {
			if c > 0xff {
				continue
			}
			if !yield(charmap.Macintosh.DecodeByte(byte(c)), g) {
				return
			}
		}
	}
}

func (m macRomanCMap) ReverseLookup(g GlyphIndex) rune {
	return reverseLookup(m, g)
}

// symbolCMap handles symbol fonts, which map their glyphs to U+F020…U+F0FF.
// Clients usually ask for the 8-bit character codes instead.
type symbolCMap struct {
	inner CMap
}

func (m symbolCMap) Lookup(r rune) GlyphIndex {
	if g := m.inner.Lookup(r); g != 0 {
		return g
	}
	if r >= 0 && r <= 0xff {
		return m.inner.Lookup(0xf000 + r)
	}
	return 0
}

func (m symbolCMap) Mappings() iter.Seq2[rune, GlyphIndex] {
	return m.inner.Mappings()
}

func (m symbolCMap) ReverseLookup(g GlyphIndex) rune {
	return reverseLookup(m, g)
}

// reverseLookup is an inefficient operation: all code-points contained in the
// map are checked sequentially.
func reverseLookup(m CMap, g GlyphIndex) rune {
	if g == 0 {
		return 0
	}
	for r, x := range m.Mappings() {
		if x == g {
			return r
		}
	}
	return 0
}

// --- Format 0 --------------------------------------------------------------

// Format 0: byte encoding table.
type cmapFormat0 struct {
	glyphs binarySegm
}

func parseCMapFormat0(b binarySegm) (CMap, error) {
	glyphs, err := b.view(6, 256)
	if err != nil {
		return nil, fmt.Errorf("format 0 table too small")
	}
	return cmapFormat0{glyphs: glyphs}, nil
}

func (m cmapFormat0) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xff {
		return 0
	}
	return GlyphIndex(m.glyphs[r])
}

func (m cmapFormat0) Mappings() iter.Seq2[rune, GlyphIndex] {
	return func(yield func(rune, GlyphIndex) bool) {
		for c, g := range m.glyphs {
			if g != 0 && !yield(rune(c), GlyphIndex(g)) {
				return
			}
		}
	}
}

func (m cmapFormat0) ReverseLookup(g GlyphIndex) rune {
	return reverseLookup(m, g)
}

// --- Format 4 --------------------------------------------------------------

// Format 4: segment mapping to delta values. This is the standard format
// for fonts supporting only the Unicode BMP.
type cmapFormat4 struct {
	data     binarySegm // sub-table up to the end of the cmap table
	segCount int
}

func parseCMapFormat4(b binarySegm) (CMap, error) {
	const headerSize = 14
	segCountX2, err := b.u16(6)
	if err != nil {
		return nil, fmt.Errorf("format 4 header truncated")
	}
	if segCountX2&1 != 0 || segCountX2 == 0 {
		return nil, fmt.Errorf("format 4 segment count odd or zero")
	}
	segCount := int(segCountX2 / 2)
	if _, err := b.view(headerSize, 8*segCount+2); err != nil {
		return nil, fmt.Errorf("format 4 segment arrays exceed table")
	}
	return cmapFormat4{data: b, segCount: segCount}, nil
}

func (m cmapFormat4) endCode(i int) uint16 {
	n, _ := m.data.u16(14 + 2*i)
	return n
}

func (m cmapFormat4) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xffff {
		return 0
	}
	c := uint16(r)
	// find the first segment with endCode >= c
	i, j := 0, m.segCount
	for i < j {
		h := i + (j-i)/2
		if m.endCode(h) < c {
			i = h + 1
		} else {
			j = h
		}
	}
	if i >= m.segCount {
		return 0
	}
	return m.glyph(i, c)
}

// glyph returns the glyph for code c in segment i.
func (m cmapFormat4) glyph(i int, c uint16) GlyphIndex {
	sc := m.segCount
	start, _ := m.data.u16(16 + 2*sc + 2*i)
	if c < start {
		return 0
	}
	delta, _ := m.data.u16(16 + 4*sc + 2*i)
	rangeOffsetPos := 16 + 6*sc + 2*i
	rangeOffset, _ := m.data.u16(rangeOffsetPos)
	if rangeOffset == 0 {
		return GlyphIndex(c + delta)
	}
	if rangeOffset == 0xffff {
		// some fonts use 0xffff as a terminator
		return 0
	}
	g, err := m.data.u16(rangeOffsetPos + int(rangeOffset) + 2*int(c-start))
	if err != nil || g == 0 {
		return 0
	}
	return GlyphIndex(g + delta)
}

func (m cmapFormat4) Mappings() iter.Seq2[rune, GlyphIndex] {
	return func(yield func(rune, GlyphIndex) bool) {
		sc := m.segCount
		for i := 0; i < sc; i++ {
			start, _ := m.data.u16(16 + 2*sc + 2*i)
			end := m.endCode(i)
			for c := int(start); c <= int(end) && c < 0xffff; c++ {
				if g := m.glyph(i, uint16(c)); g != 0 && !yield(rune(c), g) {
					return
				}
			}
		}
	}
}

func (m cmapFormat4) ReverseLookup(g GlyphIndex) rune {
	return reverseLookup(m, g)
}

// --- Format 6 and 10 -------------------------------------------------------

// Formats 6 and 10: trimmed table mapping, with 16 and 32 bit codes respectively.
type cmapTrimmed struct {
	first  uint32
	count  int
	glyphs binarySegm
}

func parseCMapFormat6(b binarySegm) (CMap, error) {
	s := NewStream(b)
	s.Skip(6) // format, length, language
	first, count := s.U16(), int(s.U16())
	glyphs := s.Bytes(2 * count)
	if s.Err() != nil {
		return nil, fmt.Errorf("format 6 table truncated")
	}
	return cmapTrimmed{first: uint32(first), count: count, glyphs: glyphs}, nil
}

func parseCMapFormat10(b binarySegm) (CMap, error) {
	s := NewStream(b)
	s.Skip(12) // format, reserved, length, language
	first, count := s.U32(), s.U32()
	if count > MaxGlyphCount {
		return nil, fmt.Errorf("format 10 with %d characters not supported", count)
	}
	glyphs := s.Bytes(2 * int(count))
	if s.Err() != nil {
		return nil, fmt.Errorf("format 10 table truncated")
	}
	return cmapTrimmed{first: first, count: int(count), glyphs: glyphs}, nil
}

func (m cmapTrimmed) Lookup(r rune) GlyphIndex {
	if r < 0 || uint32(r) < m.first {
		return 0
	}
	i := uint32(r) - m.first
	if i >= uint32(m.count) {
		return 0
	}
	g, _ := m.glyphs.u16(int(i) * 2)
	return GlyphIndex(g)
}

func (m cmapTrimmed) Mappings() iter.Seq2[rune, GlyphIndex] {
	return func(yield func(rune, GlyphIndex) bool) {
		for i := 0; i < m.count; i++ {
			g, _ := m.glyphs.u16(i * 2)
			if g != 0 && !yield(rune(m.first+uint32(i)), GlyphIndex(g)) {
				return
			}
		}
	}
}

func (m cmapTrimmed) ReverseLookup(g GlyphIndex) rune {
	return reverseLookup(m, g)
}

// --- Format 12 and 13 ------------------------------------------------------

// Format 12: segmented coverage; format 13: many-to-one range mappings.
// Both consist of sorted groups (startCharCode, endCharCode, glyphID).
type cmapGroups struct {
	groups   binarySegm
	count    int
	constant bool // format 13: all codes of a group map to the same glyph
}

func parseCMapFormat12(b binarySegm, constant bool) (CMap, error) {
	s := NewStream(b)
	s.Skip(12) // format, reserved, length, language
	n := s.U32()
	if uint64(n)*12 > uint64(len(b)) {
		return nil, fmt.Errorf("%d groups exceed table", n)
	}
	groups := s.Bytes(12 * int(n))
	if s.Err() != nil {
		return nil, fmt.Errorf("groups exceed table")
	}
	m := cmapGroups{groups: groups, count: int(n), constant: constant}
	var prevEnd uint32
	for i := 0; i < m.count; i++ {
		start, end, _ := m.group(i)
		if start > end || (i > 0 && start <= prevEnd) {
			return nil, fmt.Errorf("groups not sorted")
		}
		prevEnd = end
	}
	return m, nil
}

func (m cmapGroups) group(i int) (start, end, glyph uint32) {
	g := m.groups[12*i:]
	return u32(g), u32(g[4:]), u32(g[8:])
}

func (m cmapGroups) glyph(c, start, glyph uint32) GlyphIndex {
	if !m.constant {
		glyph += c - start
	}
	if glyph > 0xffff {
		return 0
	}
	return GlyphIndex(glyph)
}

func (m cmapGroups) Lookup(r rune) GlyphIndex {
	if r < 0 {
		return 0
	}
	c := uint32(r)
	for i, j := 0, m.count; i < j; {
		h := i + (j-i)/2
		start, end, glyph := m.group(h)
		if c < start {
			j = h
		} else if end < c {
			i = h + 1
		} else {
			return m.glyph(c, start, glyph)
		}
	}
	return 0
}

func (m cmapGroups) Mappings() iter.Seq2[rune, GlyphIndex] {
	return func(yield func(rune, GlyphIndex) bool) {
		for i := 0; i < m.count; i++ {
			start, end, glyph := m.group(i)
			if end > 0x10ffff {
				end = 0x10ffff
			}
			for c := start; c <= end; c++ {
				if g := m.glyph(c, start, glyph); g != 0 && !yield(rune(c), g) {
					return
				}
			}
		}
	}
}

func (m cmapGroups) ReverseLookup(g GlyphIndex) rune {
	return reverseLookup(m, g)
}

// --- Format 14 -------------------------------------------------------------

// Format 14: Unicode variation sequences.
type cmapFormat14 struct {
	data    binarySegm
	records binarySegm // varSelector (24 bit), defaultUVSOffset, nonDefaultUVSOffset
	count   int
}

func parseCMapFormat14(b binarySegm) (*cmapFormat14, error) {
	s := NewStream(b)
	s.Skip(6) // format, length
	n := s.U32()
	if uint64(n)*11 > uint64(len(b)) {
		return nil, fmt.Errorf("%d variation selector records exceed table", n)
	}
	records := s.Bytes(11 * int(n))
	if s.Err() != nil {
		return nil, fmt.Errorf("variation selector records exceed table")
	}
	return &cmapFormat14{data: b, records: records, count: int(n)}, nil
}

// lookup returns the glyph for sequence (r, vs). If isDefault is set, the
// default glyph of r has to be used.
func (m *cmapFormat14) lookup(r, vs rune) (g GlyphIndex, isDefault bool, ok bool) {
	if r < 0 || vs < 0 {
		return 0, false, false
	}
	var rec binarySegm
	for i, j := 0, m.count; i < j; {
		h := i + (j-i)/2
		sel := rune(u24(m.records[11*h:]))
		if vs < sel {
			j = h
		} else if sel < vs {
			i = h + 1
		} else {
			rec = m.records[11*h:]
			break
		}
	}
	if rec == nil {
		return 0, false, false
	}
	if off := u32(rec[7:]); off != 0 { // non-default UVS
		if g, found := m.nonDefault(int(off), uint32(r)); found {
			return g, false, true
		}
	}
	if off := u32(rec[3:]); off != 0 { // default UVS
		if m.inDefaultRanges(int(off), uint32(r)) {
			return 0, true, true
		}
	}
	return 0, false, false
}

func (m *cmapFormat14) nonDefault(off int, c uint32) (GlyphIndex, bool) {
	n, err := m.data.u32(off)
	if err != nil {
		return 0, false
	}
	mappings, err := m.data.view(off+4, 5*int(n))
	if err != nil || n > MaxGlyphCount*2 {
		return 0, false
	}
	for i, j := 0, int(n); i < j; {
		h := i + (j-i)/2
		u := u24(mappings[5*h:])
		if c < u {
			j = h
		} else if u < c {
			i = h + 1
		} else {
			return GlyphIndex(u16(mappings[5*h+3:])), true
		}
	}
	return 0, false
}

func (m *cmapFormat14) inDefaultRanges(off int, c uint32) bool {
	n, err := m.data.u32(off)
	if err != nil {
		return false
	}
	ranges, err := m.data.view(off+4, 4*int(n))
	if err != nil || n > MaxGlyphCount*2 {
		return false
	}
	for i, j := 0, int(n); i < j; {
		h := i + (j-i)/2
		start := u24(ranges[4*h:])
		end := start + uint32(ranges[4*h+3])
		if c < start {
			j = h
		} else if end < c {
			i = h + 1
		} else {
			return true
		}
	}
	return false
}
