package fonttest

import (
	"math"
	"sort"
)

// --- cmap ------------------------------------------------------------------

// Subtable is an encoding record of table cmap together with its sub-table
// data.
type Subtable struct {
	PlatformID uint16
	EncodingID uint16
	Data       []byte
}

// CMap creates table cmap from sub-tables. Sub-tables are stored in the given
// order.
func CMap(subtables ...Subtable) []byte {
	var b, data Buffer
	b.U16(0, uint16(len(subtables)))
	base := 4 + 8*len(subtables)
	for _, st := range subtables {
		b.U16(st.PlatformID, st.EncodingID).U32(uint32(base + data.Len()))
		data.Bytes(st.Data)
		data.Pad(2)
	}
	return append(b, data...)
}

func sortedRunes(m map[rune]uint16) []rune {
	codes := make([]rune, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Format4 creates a cmap sub-table of format 4 for BMP code-points. Each
// code-point gets a segment of its own, using idDelta.
func Format4(m map[rune]uint16) []byte {
	codes := sortedRunes(m)
	segCount := len(codes) + 1
	var end, start, delta, rangeOffset Buffer
	for _, c := range codes {
		end.U16(uint16(c))
		start.U16(uint16(c))
		delta.U16(m[c] - uint16(c))
		rangeOffset.U16(0)
	}
	end.U16(0xffff)
	start.U16(0xffff)
	delta.U16(1)
	rangeOffset.U16(0)
	entrySelector := 0
	for 1<<(entrySelector+1) <= segCount {
		entrySelector++
	}
	searchRange := 2 << entrySelector
	var b Buffer
	b.U16(4, uint16(16+8*segCount), 0)
	b.U16(uint16(2*segCount), uint16(searchRange), uint16(entrySelector), uint16(2*segCount-searchRange))
	b.Bytes(end).U16(0).Bytes(start).Bytes(delta).Bytes(rangeOffset)
	return b
}

// Format12 creates a cmap sub-table of format 12, with one group per
// code-point.
func Format12(m map[rune]uint16) []byte {
	codes := sortedRunes(m)
	var b Buffer
	b.U16(12, 0).U32(uint32(16+12*len(codes)), 0, uint32(len(codes)))
	for _, c := range codes {
		b.U32(uint32(c), uint32(c), uint32(m[c]))
	}
	return b
}

// VariationSelector is a variation selector record of a format 14 cmap
// sub-table.
type VariationSelector struct {
	Selector   rune
	Default    []rune          // sequences mapping to the default glyph
	NonDefault map[rune]uint16 // sequences mapping to special glyphs
}

// Format14 creates a cmap sub-table of format 14 (Unicode variation
// sequences). Selectors must be given in ascending order.
func Format14(selectors ...VariationSelector) []byte {
	var b, data Buffer
	headerSize := 10 + 11*len(selectors)
	b.U16(14).U32(0).U32(uint32(len(selectors)))
	for _, vs := range selectors {
		b.U24(uint32(vs.Selector))
		if len(vs.Default) > 0 {
			b.U32(uint32(headerSize + data.Len()))
			data.U32(uint32(len(vs.Default)))
			for _, r := range vs.Default {
				data.U24(uint32(r)).U8(0)
			}
		} else {
			b.U32(0)
		}
		if len(vs.NonDefault) > 0 {
			b.U32(uint32(headerSize + data.Len()))
			codes := sortedRunes(vs.NonDefault)
			data.U32(uint32(len(codes)))
			for _, r := range codes {
				data.U24(uint32(r)).U16(vs.NonDefault[r])
			}
		} else {
			b.U32(0)
		}
	}
	b = append(b, data...)
	b.PutU32(2, uint32(len(b)))
	return b
}

// --- glyf ------------------------------------------------------------------

// Pt is a point of a TrueType contour.
type Pt struct {
	X, Y int16
	Off  bool // off-curve control point
}

// SimpleGlyph creates the glyph description of a simple glyph. Coordinates
// are stored as 16-bit deltas, without flag compression.
func SimpleGlyph(contours ...[]Pt) []byte {
	var b Buffer
	xmin, ymin := int16(math.MaxInt16), int16(math.MaxInt16)
	xmax, ymax := int16(math.MinInt16), int16(math.MinInt16)
	var pts []Pt
	var ends []uint16
	for _, c := range contours {
		pts = append(pts, c...)
		ends = append(ends, uint16(len(pts)-1))
	}
	for _, p := range pts {
		xmin, xmax = min(xmin, p.X), max(xmax, p.X)
		ymin, ymax = min(ymin, p.Y), max(ymax, p.Y)
	}
	if len(pts) == 0 {
		xmin, ymin, xmax, ymax = 0, 0, 0, 0
	}
	b.I16(int16(len(contours)), xmin, ymin, xmax, ymax)
	b.U16(ends...)
	b.U16(0) // instructionLength
	for _, p := range pts {
		if p.Off {
			b.U8(0)
		} else {
			b.U8(1)
		}
	}
	var x, y int16
	for _, p := range pts {
		b.I16(p.X - x)
		x = p.X
	}
	for _, p := range pts {
		b.I16(p.Y - y)
		y = p.Y
	}
	return b
}

// Rect returns a closed rectangular contour, counter-clockwise.
func Rect(x0, y0, x1, y1 int16) []Pt {
	return []Pt{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// Flags of composite glyph components.
const (
	ArgsAreWords   = 0x0001
	ArgsAreXY      = 0x0002
	HaveScale      = 0x0008
	MoreComponents = 0x0020
	HaveXYScale    = 0x0040
	Have2x2        = 0x0080
	UseMyMetrics   = 0x0200
	ScaledOffset   = 0x0800
)

// Component is a component of a composite glyph. If Anchor is set, DX and DY
// are point numbers to match (parent point, component point) instead of an
// offset. A nil Matrix is the identity; otherwise it holds the 2x2
// transformation (xscale, scale01, scale10, yscale).
type Component struct {
	Glyph        uint16
	DX, DY       int16
	Anchor       bool
	Matrix       []float32 // 1 (uniform scale), 2 (x and y scale) or 4 values
	UseMyMetrics bool
	Flags        uint16 // additional flags, e.g. ScaledOffset
}

// CompositeGlyph creates the glyph description of a composite glyph.
func CompositeGlyph(components ...Component) []byte {
	var b Buffer
	b.I16(-1, 0, 0, 0, 0)
	for i, c := range components {
		flags := ArgsAreWords | c.Flags
		if !c.Anchor {
			flags |= ArgsAreXY
		}
		if i < len(components)-1 {
			flags |= MoreComponents
		}
		if c.UseMyMetrics {
			flags |= UseMyMetrics
		}
		switch len(c.Matrix) {
		case 1:
			flags |= HaveScale
		case 2:
			flags |= HaveXYScale
		case 4:
			flags |= Have2x2
		}
		b.U16(flags, c.Glyph)
		if c.Anchor {
			b.U16(uint16(c.DX), uint16(c.DY))
		} else {
			b.I16(c.DX, c.DY)
		}
		b.F2Dot14(c.Matrix...)
	}
	return b
}

// GlyfLoca creates tables glyf and loca from glyph descriptions. Empty
// descriptions create glyphs without outline.
func GlyfLoca(glyphs [][]byte, long bool) (glyf, loca []byte) {
	var g, l Buffer
	offset := func() {
		if long {
			l.U32(uint32(g.Len()))
		} else {
			l.U16(uint16(g.Len() / 2))
		}
	}
	for _, data := range glyphs {
		offset()
		g.Bytes(data)
		g.Pad(4)
	}
	offset()
	return g, l
}
