package ot

import (
	"fmt"
)

// GlyfTable contains the TrueType glyph outlines. Glyph data is located
// through table loca and decoded on demand.
type GlyfTable struct {
	tableBase
}

func parseGlyf(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := &GlyfTable{}
	t.tableBase = makeBase(tag, b, offset, size, t)
	return t, nil
}

// Flags of simple glyph points.
const (
	glyfOnCurve   = 0x01
	glyfXShort    = 0x02
	glyfYShort    = 0x04
	glyfRepeat    = 0x08
	glyfXSameOrPs = 0x10 // x is same, or x short vector is positive
	glyfYSameOrPs = 0x20 // y is same, or y short vector is positive
)

// Flags of composite glyph components.
const (
	compArgsAreWords     = 0x0001
	compArgsAreXY        = 0x0002
	compHaveScale        = 0x0008
	compMoreComponents   = 0x0020
	compHaveXYScale      = 0x0040
	compHave2x2          = 0x0080
	compUseMyMetrics     = 0x0200
	compScaledOffset     = 0x0800
	compUnscaledOffset   = 0x1000
	compHaveInstructions = 0x0100
)

// GlyphHeader is the header of a glyph description in table glyf.
type GlyphHeader struct {
	NumberOfContours int16 // negative for composite glyphs
	XMin, YMin       int16
	XMax, YMax       int16
}

// glyphData returns the glyph description of glyph gid. An empty slice is
// returned for glyphs without outline.
func (otf *Font) glyphData(gid GlyphIndex) (binarySegm, error) {
	start, end, err := otf.Loca.GlyphRange(gid)
	if err != nil {
		return nil, err
	}
	if end > uint32(len(otf.Glyf.data)) {
		return nil, malformed(T("glyf"), "Bounds", "glyph %d [%d:%d] exceeds table size %d",
			gid, start, end, len(otf.Glyf.data))
	}
	return otf.Glyf.data[start:end], nil
}

// GlyphHeader returns the header of the glyph description of gid. ok is false
// for glyphs without outline and for fonts without TrueType outlines.
func (otf *Font) GlyphHeader(gid GlyphIndex) (GlyphHeader, bool) {
	if otf.outlines != OutlineGlyf || int(gid) >= otf.NumGlyphs() {
		return GlyphHeader{}, false
	}
	data, err := otf.glyphData(gid)
	if err != nil || len(data) < 10 {
		return GlyphHeader{}, false
	}
	s := NewStream(data)
	h := GlyphHeader{NumberOfContours: s.I16()}
	h.XMin, h.YMin, h.XMax, h.YMax = s.I16(), s.I16(), s.I16(), s.I16()
	return h, true
}

// --- Glyph points ----------------------------------------------------------

type glyphPoint struct {
	Point
	onCurve bool
}

// glyphOutline is the point data of a glyph: all points of all contours,
// with ends holding the index of the last point of each contour.
type glyphOutline struct {
	points []glyphPoint
	ends   []int
}

// emit sends the contours to o as path commands.
func (g glyphOutline) emit(o *outliner) {
	cb := contourBuilder{o: o}
	start := 0
	for _, end := range g.ends {
		for _, p := range g.points[start : end+1] {
			cb.push(p.Point, p.onCurve)
		}
		cb.finish()
		start = end + 1
	}
}

// glyphPoints decodes glyph gid into points, resolving composite glyphs
// recursively. If gvar is non-nil, variation deltas for coords are applied.
// visits counts the glyph descriptions decoded for one outline; shared
// components are decoded once per reference.
func (otf *Font) glyphPoints(gid GlyphIndex, depth int, visits *int, gvar *GVarTable,
	coords []NormalizedCoord) (glyphOutline, error) {
	//
	if depth > MaxComponentDepth {
		return glyphOutline{}, malformed(T("glyf"), "Composite",
			"component nesting exceeds depth %d at glyph %d", MaxComponentDepth, gid)
	}
	if *visits++; *visits > MaxOutlineCommands {
		return glyphOutline{}, malformed(T("glyf"), "Composite",
			"glyph %d references more than %d components", gid, MaxOutlineCommands)
	}
	data, err := otf.glyphData(gid)
	if err != nil || len(data) == 0 {
		return glyphOutline{}, err
	}
	s := NewStream(data)
	numberOfContours := s.I16()
	s.Skip(8) // bounding box
	if err := s.Err(); err != nil {
		return glyphOutline{}, asMalformed(T("glyf"), "Header", err)
	}
	if numberOfContours >= 0 {
		g, err := decodeSimpleGlyph(s, int(numberOfContours))
		if err != nil {
			return g, asMalformed(T("glyf"), fmt.Sprintf("Glyph %d", gid), err)
		}
		if gvar != nil && len(g.points) > 0 {
			deltas, err := gvar.glyphDeltas(gid, coords, g.points, g.ends)
			if err != nil {
				return g, err
			}
			for i := range g.points {
				g.points[i].X += deltas[i].X
				g.points[i].Y += deltas[i].Y
			}
		}
		return g, nil
	}
	return otf.compositePoints(gid, s, depth, visits, gvar, coords)
}

// decodeSimpleGlyph reads the contours of a simple glyph, with s positioned
// after the glyph header.
func decodeSimpleGlyph(s *Stream, numberOfContours int) (glyphOutline, error) {
	g := glyphOutline{ends: make([]int, numberOfContours)}
	last := -1
	for i := range g.ends {
		g.ends[i] = int(s.U16())
		if s.Err() == nil && g.ends[i] <= last {
			return g, fmt.Errorf("contour end points not increasing")
		}
		last = g.ends[i]
	}
	s.Skip(int(s.U16())) // instructions
	if err := s.Err(); err != nil {
		return g, err
	}
	if numberOfContours == 0 {
		return glyphOutline{}, nil
	}
	numPoints := last + 1
	g.points = make([]glyphPoint, numPoints)
	flags := make([]byte, numPoints)
	for i := 0; i < numPoints; {
		f := s.U8()
		flags[i] = f
		i++
		if f&glyfRepeat != 0 {
			for r := int(s.U8()); r > 0 && i < numPoints; r-- {
				flags[i] = f
				i++
			}
		}
		if s.Err() != nil {
			return g, s.Err()
		}
	}
	var x int32
	for i, f := range flags {
		switch {
		case f&glyfXShort != 0 && f&glyfXSameOrPs != 0:
			x += int32(s.U8())
		case f&glyfXShort != 0:
			x -= int32(s.U8())
		case f&glyfXSameOrPs == 0:
			x += int32(s.I16())
		}
		g.points[i].X = float32(x)
		g.points[i].onCurve = f&glyfOnCurve != 0
	}
	var y int32
	for i, f := range flags {
		switch {
		case f&glyfYShort != 0 && f&glyfYSameOrPs != 0:
			y += int32(s.U8())
		case f&glyfYShort != 0:
			y -= int32(s.U8())
		case f&glyfYSameOrPs == 0:
			y += int32(s.I16())
		}
		g.points[i].Y = float32(y)
	}
	return g, s.Err()
}

// glyphComponent is a component reference of a composite glyph.
type glyphComponent struct {
	flags      uint16
	glyph      GlyphIndex
	arg1, arg2 int32
	a, b, c, d float32 // transformation matrix, x' = a*x + c*y, y' = b*x + d*y
}

func (c glyphComponent) transform(p Point) Point {
	return Point{X: c.a*p.X + c.c*p.Y, Y: c.b*p.X + c.d*p.Y}
}

func (c glyphComponent) isIdentity() bool {
	return c.a == 1 && c.b == 0 && c.c == 0 && c.d == 1
}

func readComponent(s *Stream) glyphComponent {
	c := glyphComponent{flags: s.U16(), glyph: GlyphIndex(s.U16()), a: 1, d: 1}
	switch {
	case c.flags&compArgsAreWords != 0 && c.flags&compArgsAreXY != 0:
		c.arg1, c.arg2 = int32(s.I16()), int32(s.I16())
	case c.flags&compArgsAreWords != 0:
		c.arg1, c.arg2 = int32(s.U16()), int32(s.U16())
	case c.flags&compArgsAreXY != 0:
		c.arg1, c.arg2 = int32(s.I8()), int32(s.I8())
	default:
		c.arg1, c.arg2 = int32(s.U8()), int32(s.U8())
	}
	switch {
	case c.flags&compHaveScale != 0:
		c.a = s.F2Dot14()
		c.d = c.a
	case c.flags&compHaveXYScale != 0:
		c.a, c.d = s.F2Dot14(), s.F2Dot14()
	case c.flags&compHave2x2 != 0:
		c.a, c.b, c.c, c.d = s.F2Dot14(), s.F2Dot14(), s.F2Dot14(), s.F2Dot14()
	}
	return c
}

// compositePoints assembles the points of a composite glyph from its
// components, with s positioned at the first component record.
func (otf *Font) compositePoints(gid GlyphIndex, s *Stream, depth int, visits *int, gvar *GVarTable,
	coords []NormalizedCoord) (glyphOutline, error) {
	//
	var components []glyphComponent
	for {
		c := readComponent(s)
		if err := s.Err(); err != nil {
			return glyphOutline{}, asMalformed(T("glyf"), fmt.Sprintf("Glyph %d", gid), err)
		}
		components = append(components, c)
		if c.flags&compMoreComponents == 0 {
			break
		}
	}
	var deltas []Point
	if gvar != nil {
		var err error
		if deltas, err = gvar.glyphDeltas(gid, coords, make([]glyphPoint, len(components)), nil); err != nil {
			return glyphOutline{}, err
		}
	}
	var g glyphOutline
	for i, c := range components {
		child, err := otf.glyphPoints(c.glyph, depth+1, visits, gvar, coords)
		if err != nil {
			return glyphOutline{}, err
		}
		if !c.isIdentity() {
			for j := range child.points {
				child.points[j].Point = c.transform(child.points[j].Point)
			}
		}
		var offset Point
		if c.flags&compArgsAreXY != 0 {
			offset = Point{X: float32(c.arg1), Y: float32(c.arg2)}
			if deltas != nil {
				offset.X += deltas[i].X
				offset.Y += deltas[i].Y
			}
			if c.flags&compScaledOffset != 0 && c.flags&compUnscaledOffset == 0 {
				offset = c.transform(offset)
			}
		} else {
			// point matching: arg1 is a point of the glyph assembled so far,
			// arg2 a point of the (transformed) component
			p1, p2 := int(c.arg1), int(c.arg2)
			if p1 >= len(g.points) || p2 >= len(child.points) {
				return glyphOutline{}, malformed(T("glyf"), "Composite",
					"glyph %d: anchor points %d/%d out of range", gid, p1, p2)
			}
			offset = Point{
				X: g.points[p1].X - child.points[p2].X,
				Y: g.points[p1].Y - child.points[p2].Y,
			}
		}
		if len(g.points)+len(child.points) > MaxOutlineCommands {
			return glyphOutline{}, malformed(T("glyf"), "Composite",
				"glyph %d exceeds %d points", gid, MaxOutlineCommands)
		}
		base := len(g.points)
		for _, p := range child.points {
			p.X += offset.X
			p.Y += offset.Y
			g.points = append(g.points, p)
		}
		for _, end := range child.ends {
			g.ends = append(g.ends, base+end)
		}
	}
	return g, nil
}

// metricsComponent returns the component of a composite glyph flagged with
// USE_MY_METRICS, if any.
func (otf *Font) metricsComponent(gid GlyphIndex) (GlyphIndex, bool) {
	if otf.outlines != OutlineGlyf {
		return 0, false
	}
	data, err := otf.glyphData(gid)
	if err != nil || len(data) < 10 {
		return 0, false
	}
	s := NewStream(data)
	if s.I16() >= 0 {
		return 0, false
	}
	s.Skip(8)
	for {
		c := readComponent(s)
		if s.Err() != nil {
			return 0, false
		}
		if c.flags&compUseMyMetrics != 0 {
			return c.glyph, true
		}
		if c.flags&compMoreComponents == 0 {
			return 0, false
		}
	}
}
