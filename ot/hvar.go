package ot

import (
	"fmt"
	"math"
)

// HVarTable contains the horizontal metrics variations of a variable font.
type HVarTable struct {
	tableBase
	store      itemVariationStore
	advanceMap deltaSetIndexMap // empty: implicit mapping by glyph index
	lsbMap     deltaSetIndexMap
}

func parseHVar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	s := NewStream(b)
	major := s.U16()
	s.Skip(2)
	storeOffset := int(s.U32())
	advOffset := int(s.U32())
	lsbOffset := int(s.U32())
	s.Skip(4) // rsbMappingOffset
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	if major != 1 {
		return nil, malformed(tag, "Version", "unsupported HVAR version %d", major)
	}
	t := &HVarTable{}
	t.tableBase = makeBase(tag, b, offset, size, t)
	var err error
	if t.store, err = parseItemVariationStore(b, storeOffset); err != nil {
		return nil, asMalformed(tag, "ItemVariationStore", err)
	}
	if advOffset != 0 {
		if t.advanceMap, err = parseDeltaSetIndexMap(b, advOffset); err != nil {
			return nil, asMalformed(tag, "AdvanceWidthMapping", err)
		}
	}
	if lsbOffset != 0 {
		if t.lsbMap, err = parseDeltaSetIndexMap(b, lsbOffset); err != nil {
			return nil, asMalformed(tag, "LsbMapping", err)
		}
	}
	return t, nil
}

// AdvanceDelta returns the delta of the advance width of glyph gid at coords.
func (t *HVarTable) AdvanceDelta(gid GlyphIndex, coords []NormalizedCoord) (float32, error) {
	outer, inner := 0, int(gid)
	if t.advanceMap.count > 0 {
		outer, inner = t.advanceMap.lookup(int(gid))
	}
	d, err := t.store.delta(outer, inner, coords)
	return d, asMalformed(T("HVAR"), "Delta", err)
}

// SideBearingDelta returns the delta of the left side bearing of glyph gid
// at coords. ok is false if the table has no side bearing mapping.
func (t *HVarTable) SideBearingDelta(gid GlyphIndex, coords []NormalizedCoord) (float32, bool) {
	if t.lsbMap.count == 0 {
		return 0, false
	}
	outer, inner := t.lsbMap.lookup(int(gid))
	d, err := t.store.delta(outer, inner, coords)
	return d, err == nil
}

// --- DeltaSetIndexMap ------------------------------------------------------

type deltaSetIndexMap struct {
	entrySize int
	innerBits int
	count     int
	entries   binarySegm
}

func parseDeltaSetIndexMap(b binarySegm, offset int) (deltaSetIndexMap, error) {
	s := newStreamAt(b, offset)
	format := s.U8()
	entryFormat := s.U8()
	m := deltaSetIndexMap{
		entrySize: int(entryFormat&0x30)>>4 + 1,
		innerBits: int(entryFormat&0x0f) + 1,
	}
	switch format {
	case 0:
		m.count = int(s.U16())
	case 1:
		m.count = int(s.U32())
	default:
		return m, fmt.Errorf("unsupported delta set index map format %d", format)
	}
	m.entries = s.Bytes(m.count * m.entrySize)
	return m, s.Err()
}

// lookup returns the outer and inner index for i. Indices beyond the map use
// the last entry.
func (m deltaSetIndexMap) lookup(i int) (outer, inner int) {
	if i >= m.count {
		i = m.count - 1
	}
	var entry uint32
	for _, b := range m.entries[i*m.entrySize : (i+1)*m.entrySize] {
		entry = entry<<8 | uint32(b)
	}
	return int(entry >> m.innerBits), int(entry & (1<<m.innerBits - 1))
}

// --- ItemVariationStore ----------------------------------------------------

type itemVariationStore struct {
	axisCount   int
	regionCount int
	regions     binarySegm // regionCount * axisCount * (start, peak, end)
	data        []itemVariationData
}

type itemVariationData struct {
	itemCount     int
	wordCount     int
	longWords     bool
	regionIndexes []uint16
	rows          binarySegm
}

func (d itemVariationData) rowSize() int {
	if d.longWords {
		return 4*d.wordCount + 2*(len(d.regionIndexes)-d.wordCount)
	}
	return 2*d.wordCount + (len(d.regionIndexes) - d.wordCount)
}

func parseItemVariationStore(b binarySegm, offset int) (itemVariationStore, error) {
	var store itemVariationStore
	s := newStreamAt(b, offset)
	if format := s.U16(); format != 1 && s.Err() == nil {
		return store, fmt.Errorf("unsupported item variation store format %d", format)
	}
	regionOffset := int(s.U32())
	n := int(s.U16())
	dataOffsets := make([]int, n)
	for i := range dataOffsets {
		dataOffsets[i] = int(s.U32())
	}
	if err := s.Err(); err != nil {
		return store, err
	}
	rs := newStreamAt(b, offset+regionOffset)
	store.axisCount = int(rs.U16())
	store.regionCount = int(rs.U16())
	store.regions = rs.Bytes(store.regionCount * store.axisCount * 6)
	if err := rs.Err(); err != nil {
		return store, err
	}
	if store.axisCount > MaxAxisCount {
		return store, fmt.Errorf("invalid axis count %d", store.axisCount)
	}
	store.data = make([]itemVariationData, n)
	for i, off := range dataOffsets {
		ds := newStreamAt(b, offset+off)
		d := itemVariationData{itemCount: int(ds.U16())}
		wc := ds.U16()
		d.wordCount, d.longWords = int(wc&0x7fff), wc&0x8000 != 0
		d.regionIndexes = make([]uint16, ds.U16())
		for j := range d.regionIndexes {
			d.regionIndexes[j] = ds.U16()
			if int(d.regionIndexes[j]) >= store.regionCount {
				return store, fmt.Errorf("region index %d out of range", d.regionIndexes[j])
			}
		}
		if d.wordCount > len(d.regionIndexes) {
			return store, fmt.Errorf("word delta count %d exceeds region count", d.wordCount)
		}
		d.rows = ds.Bytes(d.itemCount * d.rowSize())
		if err := ds.Err(); err != nil {
			return store, err
		}
		store.data[i] = d
	}
	return store, nil
}

// scalar returns the scalar of a region at coords.
func (store itemVariationStore) scalar(region int, coords []NormalizedCoord) float32 {
	scalar := float32(1)
	r := store.regions[region*store.axisCount*6:]
	for a := 0; a < store.axisCount && scalar != 0; a++ {
		start := f2dot14(int16(u16(r[6*a:])))
		peak := f2dot14(int16(u16(r[6*a+2:])))
		end := f2dot14(int16(u16(r[6*a+4:])))
		scalar *= regionScalar(coordAt(coords, a), start, peak, end)
	}
	return scalar
}

// delta returns the interpolated delta of item (outer, inner) at coords.
// The no-variation index 0xFFFF/0xFFFF yields 0.
func (store itemVariationStore) delta(outer, inner int, coords []NormalizedCoord) (float32, error) {
	if outer == 0xffff && inner == 0xffff {
		return 0, nil
	}
	if outer >= len(store.data) {
		return 0, fmt.Errorf("item variation data %d out of range", outer)
	}
	d := store.data[outer]
	if inner >= d.itemCount {
		return 0, fmt.Errorf("delta set %d out of range", inner)
	}
	row := NewStream(d.rows[inner*d.rowSize():])
	var sum float64
	for j, region := range d.regionIndexes {
		var delta int32
		switch {
		case j < d.wordCount && d.longWords:
			delta = row.I32()
		case j < d.wordCount || d.longWords:
			delta = int32(row.I16())
		default:
			delta = int32(row.I8())
		}
		if scalar := store.scalar(int(region), coords); scalar != 0 {
			sum += float64(scalar) * float64(delta)
		}
	}
	return float32(sum), row.Err()
}

// --- Variable advances -----------------------------------------------------

// AdvanceWidthVariation returns the advance width of glyph gid at coords.
// The delta is taken from table HVAR if present, else from the phantom points
// of table gvar. For non-variable fonts the default advance is returned.
func (otf *Font) AdvanceWidthVariation(gid GlyphIndex, coords []NormalizedCoord) (float32, bool) {
	if otf.HMtx == nil {
		return 0, false
	}
	adv, _, ok := otf.HMtx.HMetrics(gid)
	if !ok {
		return 0, false
	}
	w := float32(adv)
	if len(coords) == 0 || allZero(coords) {
		return w, true
	}
	switch {
	case otf.Variations.HVar != nil:
		d, err := otf.Variations.HVar.AdvanceDelta(gid, coords)
		if err != nil {
			tracer().Debugf("advance delta of glyph %d: %v", gid, err)
			return w, true
		}
		w += d
	case otf.Variations.GVar != nil && otf.outlines == OutlineGlyf:
		n, err := otf.glyphPointCount(gid)
		if err != nil {
			return w, true
		}
		ph, err := otf.Variations.GVar.phantomDeltas(gid, coords, n)
		if err != nil {
			tracer().Debugf("phantom deltas of glyph %d: %v", gid, err)
			return w, true
		}
		// phantom points 0 and 1 mark the horizontal origin and advance
		w += ph[1].X - ph[0].X
	}
	return float32(math.Max(0, float64(w))), true
}

// glyphPointCount returns the number of points of a simple glyph or the
// number of components of a composite glyph.
func (otf *Font) glyphPointCount(gid GlyphIndex) (int, error) {
	data, err := otf.glyphData(gid)
	if err != nil || len(data) < 10 {
		return 0, err
	}
	s := NewStream(data)
	nc := s.I16()
	s.Skip(8)
	if nc >= 0 {
		if nc == 0 {
			return 0, nil
		}
		s.Skip(2 * (int(nc) - 1))
		n := int(s.U16()) + 1
		return n, asMalformed(T("glyf"), "Header", s.Err())
	}
	n := 0
	for {
		c := readComponent(s)
		if err := s.Err(); err != nil {
			return 0, asMalformed(T("glyf"), "Composite", err)
		}
		n++
		if c.flags&compMoreComponents == 0 {
			return n, nil
		}
	}
}
