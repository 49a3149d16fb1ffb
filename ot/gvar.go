package ot

import (
	"fmt"
)

// GVarTable contains the glyph variation data of a variable TrueType font.
// Deltas are computed per glyph for a set of normalized coordinates.
type GVarTable struct {
	tableBase
	axisCount    int
	glyphCount   int
	sharedTuples binarySegm // sharedTupleCount * axisCount F2Dot14 values
	longOffsets  bool
	offsets      binarySegm
	dataArray    binarySegm
}

// Flags of tuple variation data.
const (
	tupleSharedPointNumbers = 0x8000
	tupleCountMask          = 0x0fff
	tupleEmbeddedPeak       = 0x8000
	tupleIntermediateRegion = 0x4000
	tuplePrivatePoints      = 0x2000
	tupleIndexMask          = 0x0fff
)

// number of phantom points appended to the points of every glyph
const phantomPoints = 4

func parseGVar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	s := NewStream(b)
	major := s.U16()
	s.Skip(2)
	t := &GVarTable{}
	t.axisCount = int(s.U16())
	sharedCount := int(s.U16())
	sharedOffset := int(s.U32())
	t.glyphCount = int(s.U16())
	t.longOffsets = s.U16()&0x0001 != 0
	dataOffset := int(s.U32())
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	if major != 1 {
		return nil, malformed(tag, "Version", "unsupported gvar version %d", major)
	}
	if t.axisCount == 0 || t.axisCount > MaxAxisCount {
		return nil, malformed(tag, "Header", "invalid axis count %d", t.axisCount)
	}
	entrySize := 2
	if t.longOffsets {
		entrySize = 4
	}
	var err error
	if t.offsets, err = b.view(20, (t.glyphCount+1)*entrySize); err != nil {
		return nil, malformed(tag, "Offsets", "glyph offsets exceed table size")
	}
	if t.sharedTuples, err = b.view(sharedOffset, sharedCount*t.axisCount*2); err != nil {
		return nil, malformed(tag, "SharedTuples", "shared tuples exceed table size")
	}
	if t.dataArray, err = b.from(dataOffset); err != nil {
		return nil, malformed(tag, "Data", "data array offset %d exceeds table size", dataOffset)
	}
	t.tableBase = makeBase(tag, b, offset, size, t)
	return t, nil
}

// glyphVariationData returns the variation data of glyph gid, or nil if the
// glyph has no variations.
func (t *GVarTable) glyphVariationData(gid GlyphIndex) (binarySegm, error) {
	if int(gid) >= t.glyphCount {
		return nil, nil
	}
	var start, end int
	i := int(gid)
	if t.longOffsets {
		start, end = int(u32(t.offsets[4*i:])), int(u32(t.offsets[4*i+4:]))
	} else {
		start, end = 2*int(u16(t.offsets[2*i:])), 2*int(u16(t.offsets[2*i+2:]))
	}
	if start >= end {
		return nil, nil
	}
	if end > len(t.dataArray) {
		return nil, malformed(T("gvar"), "Data", "variation data of glyph %d exceeds table", gid)
	}
	return t.dataArray[start:end], nil
}

// glyphDeltas computes the accumulated deltas for the points of glyph gid.
// For simple glyphs, ends holds the contour end indices and deltas of points
// not referenced by a tuple are inferred. For composite glyphs, points holds
// one entry per component and ends is nil. The returned slice has one entry
// per point; phantom point deltas are dropped.
func (t *GVarTable) glyphDeltas(gid GlyphIndex, coords []NormalizedCoord, points []glyphPoint,
	ends []int) ([]Point, error) {
	//
	n := len(points) + phantomPoints
	deltas := make([]Point, n)
	data, err := t.glyphVariationData(gid)
	if err != nil || data == nil {
		return deltas[:len(points)], err
	}
	err = t.forEachTuple(data, coords, n, func(scalar float32, pts []int, dx, dy []int32) {
		if pts == nil { // all points
			for i := range deltas {
				deltas[i].X += scalar * float32(dx[i])
				deltas[i].Y += scalar * float32(dy[i])
			}
			return
		}
		if ends == nil {
			for j, p := range pts {
				deltas[p].X += scalar * float32(dx[j])
				deltas[p].Y += scalar * float32(dy[j])
			}
			return
		}
		tuple := make([]Point, n)
		touched := make([]bool, n)
		for j, p := range pts {
			tuple[p] = Point{X: float32(dx[j]), Y: float32(dy[j])}
			touched[p] = true
		}
		inferDeltas(points, ends, tuple, touched)
		for i := range deltas {
			deltas[i].X += scalar * tuple[i].X
			deltas[i].Y += scalar * tuple[i].Y
		}
	})
	if err != nil {
		return nil, asMalformed(T("gvar"), fmt.Sprintf("Glyph %d", gid), err)
	}
	return deltas[:len(points)], nil
}

// forEachTuple decodes the tuple variations of a glyph and calls f for each
// tuple applicable at coords. pts is nil if the tuple covers all points;
// otherwise dx and dy are parallel to pts. Point numbers >= n are dropped.
func (t *GVarTable) forEachTuple(data binarySegm, coords []NormalizedCoord, n int,
	f func(scalar float32, pts []int, dx, dy []int32)) error {
	//
	s := NewStream(data)
	tupleCount := s.U16()
	serialized := newStreamAt(data, int(s.U16()))
	var shared []int
	if tupleCount&tupleSharedPointNumbers != 0 {
		shared = readPackedPoints(serialized)
	}
	peak := make([]float32, t.axisCount)
	start := make([]float32, t.axisCount)
	end := make([]float32, t.axisCount)
	for i := 0; i < int(tupleCount&tupleCountMask); i++ {
		dataSize := int(s.U16())
		index := s.U16()
		if index&tupleEmbeddedPeak != 0 {
			for a := range peak {
				peak[a] = s.F2Dot14()
			}
		} else {
			k := int(index & tupleIndexMask)
			tuple, err := t.sharedTuples.view(k*t.axisCount*2, t.axisCount*2)
			if err != nil {
				return fmt.Errorf("shared tuple %d out of range", k)
			}
			for a := range peak {
				peak[a] = f2dot14(int16(u16(tuple[2*a:])))
			}
		}
		intermediate := index&tupleIntermediateRegion != 0
		if intermediate {
			for a := range start {
				start[a] = s.F2Dot14()
			}
			for a := range end {
				end[a] = s.F2Dot14()
			}
		}
		if err := s.Err(); err != nil {
			return err
		}
		tupleData := serialized.Bytes(dataSize)
		if err := serialized.Err(); err != nil {
			return err
		}
		scalar := float32(1)
		for a := range peak {
			st, en := start[a], end[a]
			if !intermediate {
				st, en = min(0, peak[a]), max(0, peak[a])
			}
			scalar *= regionScalar(coordAt(coords, a), st, peak[a], en)
			if scalar == 0 {
				break
			}
		}
		if scalar == 0 {
			continue
		}
		ts := NewStream(tupleData)
		pts := shared
		if index&tuplePrivatePoints != 0 {
			pts = readPackedPoints(ts)
		}
		count := n
		if pts != nil {
			count = len(pts)
		}
		dx := readPackedDeltas(ts, count)
		dy := readPackedDeltas(ts, count)
		if err := ts.Err(); err != nil {
			return err
		}
		if pts != nil {
			pts, dx, dy = dropOutOfRange(pts, dx, dy, n)
		}
		f(scalar, pts, dx, dy)
	}
	return s.Err()
}

// dropOutOfRange removes point numbers >= n. pts may be shared between
// tuples and is not modified.
func dropOutOfRange(pts []int, dx, dy []int32, n int) ([]int, []int32, []int32) {
	keep := make([]int, 0, len(pts))
	j := 0
	for i, p := range pts {
		if p < n {
			keep = append(keep, p)
			dx[j], dy[j] = dx[i], dy[i]
			j++
		}
	}
	return keep, dx[:j], dy[:j]
}

// readPackedPoints reads packed point numbers. nil is returned for the
// special encoding "all points".
func readPackedPoints(s *Stream) []int {
	count := int(s.U8())
	if count == 0 {
		return nil
	}
	if count&0x80 != 0 {
		count = (count&0x7f)<<8 | int(s.U8())
	}
	pts := make([]int, 0, count)
	p := 0
	for len(pts) < count && s.Err() == nil {
		control := s.U8()
		run := int(control&0x7f) + 1
		for i := 0; i < run && len(pts) < count; i++ {
			if control&0x80 != 0 {
				p += int(s.U16())
			} else {
				p += int(s.U8())
			}
			pts = append(pts, p)
		}
	}
	return pts
}

// readPackedDeltas reads count packed deltas.
func readPackedDeltas(s *Stream, count int) []int32 {
	deltas := make([]int32, 0, count)
	for len(deltas) < count && s.Err() == nil {
		control := s.U8()
		run := int(control&0x3f) + 1
		for i := 0; i < run && len(deltas) < count; i++ {
			switch control & 0xc0 {
			case 0x80:
				deltas = append(deltas, 0)
			case 0x40:
				deltas = append(deltas, int32(s.I16()))
			case 0xc0:
				deltas = append(deltas, s.I32())
			default:
				deltas = append(deltas, int32(s.I8()))
			}
		}
	}
	for len(deltas) < count {
		deltas = append(deltas, 0)
	}
	return deltas
}

// inferDeltas interpolates the deltas of untouched points of each contour
// from the nearest touched points before and after them (IUP).
func inferDeltas(points []glyphPoint, ends []int, deltas []Point, touched []bool) {
	start := 0
	for _, end := range ends {
		if end >= len(points) {
			break
		}
		first := -1
		for i := start; i <= end; i++ {
			if touched[i] {
				first = i
				break
			}
		}
		if first < 0 {
			start = end + 1
			continue
		}
		// walk the contour cyclically from one touched point to the next
		prev := first
		for {
			next := prev + 1
			if next > end {
				next = start
			}
			for !touched[next] {
				next++
				if next > end {
					next = start
				}
			}
			for i := prev + 1; ; i++ {
				if i > end {
					i = start
				}
				if i == next {
					break
				}
				deltas[i].X = interpolate(points[i].X, points[prev].X, points[next].X,
					deltas[prev].X, deltas[next].X)
				deltas[i].Y = interpolate(points[i].Y, points[prev].Y, points[next].Y,
					deltas[prev].Y, deltas[next].Y)
			}
			if next == first {
				break
			}
			prev = next
		}
		start = end + 1
	}
}

func interpolate(x, x1, x2, d1, d2 float32) float32 {
	if x1 == x2 {
		if d1 == d2 {
			return d1
		}
		return 0
	}
	if x1 > x2 {
		x1, x2 = x2, x1
		d1, d2 = d2, d1
	}
	switch {
	case x <= x1:
		return d1
	case x >= x2:
		return d2
	}
	return d1 + (x-x1)*(d2-d1)/(x2-x1)
}

// phantomDeltas returns the deltas of the four phantom points of glyph gid,
// given the number of outline points (or components) of the glyph.
func (t *GVarTable) phantomDeltas(gid GlyphIndex, coords []NormalizedCoord, numPoints int) ([phantomPoints]Point, error) {
	var ph [phantomPoints]Point
	data, err := t.glyphVariationData(gid)
	if err != nil || data == nil {
		return ph, err
	}
	n := numPoints + phantomPoints
	err = t.forEachTuple(data, coords, n, func(scalar float32, pts []int, dx, dy []int32) {
		if pts == nil {
			for k := range ph {
				ph[k].X += scalar * float32(dx[numPoints+k])
				ph[k].Y += scalar * float32(dy[numPoints+k])
			}
			return
		}
		for j, p := range pts {
			if p >= numPoints {
				ph[p-numPoints].X += scalar * float32(dx[j])
				ph[p-numPoints].Y += scalar * float32(dy[j])
			}
		}
	})
	if err != nil {
		return ph, asMalformed(T("gvar"), fmt.Sprintf("Glyph %d", gid), err)
	}
	return ph, nil
}
