package ot

import (
	"fmt"
	"math"
)

// CommandKind is the kind of a path command.
type CommandKind uint8

// Path commands. Outlines consist of closed contours, each starting with a
// MoveTo and ending with a Close. Close implies a straight line back to the
// start point of the contour.
const (
	MoveTo CommandKind = iota
	LineTo
	QuadTo
	CubicTo
	Close
)

func (k CommandKind) String() string {
	switch k {
	case MoveTo:
		return "MoveTo"
	case LineTo:
		return "LineTo"
	case QuadTo:
		return "QuadTo"
	case CubicTo:
		return "CubicTo"
	case Close:
		return "Close"
	}
	return fmt.Sprintf("CommandKind(%d)", uint8(k))
}

// Point is a point in font design units. The y-axis points upwards.
type Point struct {
	X, Y float32
}

// Command is a single path command. Args holds the points of the command:
// one for MoveTo and LineTo, two for QuadTo (control point, end point),
// three for CubicTo (two control points, end point) and none for Close.
type Command struct {
	Kind CommandKind
	Args [3]Point
}

// End returns the end point of a command. For Close, the zero point is returned.
func (c Command) End() Point {
	switch c.Kind {
	case MoveTo, LineTo:
		return c.Args[0]
	case QuadTo:
		return c.Args[1]
	case CubicTo:
		return c.Args[2]
	}
	return Point{}
}

func (c Command) String() string {
	switch c.Kind {
	case MoveTo, LineTo:
		return fmt.Sprintf("%s(%g,%g)", c.Kind, c.Args[0].X, c.Args[0].Y)
	case QuadTo:
		return fmt.Sprintf("%s(%g,%g %g,%g)", c.Kind, c.Args[0].X, c.Args[0].Y, c.Args[1].X, c.Args[1].Y)
	case CubicTo:
		return fmt.Sprintf("%s(%g,%g %g,%g %g,%g)", c.Kind, c.Args[0].X, c.Args[0].Y,
			c.Args[1].X, c.Args[1].Y, c.Args[2].X, c.Args[2].Y)
	}
	return c.Kind.String()
}

// Rect is an axis-aligned rectangle in font design units.
type Rect struct {
	XMin, YMin, XMax, YMax float32
}

// IsEmpty reports whether the rectangle has zero area.
func (r Rect) IsEmpty() bool {
	return r.XMax <= r.XMin || r.YMax <= r.YMin
}

// OutlineSink receives the path commands of a glyph outline.
type OutlineSink interface {
	MoveTo(x, y float32)
	LineTo(x, y float32)
	QuadTo(x1, y1, x, y float32)
	CubicTo(x1, y1, x2, y2, x, y float32)
	Close()
}

// CommandCollector is an OutlineSink which collects commands.
type CommandCollector struct {
	Commands []Command
}

func (cc *CommandCollector) MoveTo(x, y float32) {
	cc.Commands = append(cc.Commands, Command{Kind: MoveTo, Args: [3]Point{{x, y}}})
}

func (cc *CommandCollector) LineTo(x, y float32) {
	cc.Commands = append(cc.Commands, Command{Kind: LineTo, Args: [3]Point{{x, y}}})
}

func (cc *CommandCollector) QuadTo(x1, y1, x, y float32) {
	cc.Commands = append(cc.Commands, Command{Kind: QuadTo, Args: [3]Point{{x1, y1}, {x, y}}})
}

func (cc *CommandCollector) CubicTo(x1, y1, x2, y2, x, y float32) {
	cc.Commands = append(cc.Commands, Command{Kind: CubicTo, Args: [3]Point{{x1, y1}, {x2, y2}, {x, y}}})
}

func (cc *CommandCollector) Close() {
	cc.Commands = append(cc.Commands, Command{Kind: Close})
}

// --- Outlines --------------------------------------------------------------

// Outline streams the outline of glyph gid to sink and returns its bounds.
//
// coords are normalized variation coordinates, one per axis of table fvar. They
// are ignored if the font has no glyph variations (table gvar); CFF outlines
// are not varied. Pass nil for the default instance.
//
// Glyphs without outline (e.g., the space glyph) produce no commands.
// Glyphs not contained in the font produce no commands either. Errors are of
// class ErrMalformedFont; a sink may have received part of the outline when an
// error is returned.
func (otf *Font) Outline(gid GlyphIndex, coords []NormalizedCoord, sink OutlineSink) (Rect, error) {
	if int(gid) >= otf.NumGlyphs() {
		return Rect{}, nil
	}
	b := newOutliner(sink)
	var err error
	switch otf.outlines {
	case OutlineGlyf:
		var gvar *GVarTable
		if len(coords) > 0 && !allZero(coords) {
			gvar = otf.Variations.GVar
		}
		var g glyphOutline
		var visits int
		if g, err = otf.glyphPoints(gid, 0, &visits, gvar, coords); err == nil {
			g.emit(b)
		}
	case OutlineCFF:
		err = otf.CFF.outline(gid, b)
	default:
		return Rect{}, nil
	}
	b.finish()
	if err == nil {
		err = b.err
	}
	if err != nil {
		tracer().Debugf("outline of glyph %d: %v", gid, err)
		return Rect{}, err
	}
	return b.bounds(), nil
}

func allZero(coords []NormalizedCoord) bool {
	for _, c := range coords {
		if c != 0 {
			return false
		}
	}
	return true
}

// outliner forwards commands to a sink. It enforces the command budget,
// closes open contours and tracks the bounds of all points emitted.
type outliner struct {
	sink                   OutlineSink
	count                  int
	open                   bool
	empty                  bool
	xmin, ymin, xmax, ymax float32
	err                    error
}

func newOutliner(sink OutlineSink) *outliner {
	return &outliner{
		sink:  sink,
		empty: true,
		xmin:  math.MaxFloat32, ymin: math.MaxFloat32,
		xmax: -math.MaxFloat32, ymax: -math.MaxFloat32,
	}
}

func (o *outliner) budget() bool {
	if o.err != nil {
		return false
	}
	o.count++
	if o.count > MaxOutlineCommands {
		o.err = malformed(0, "Outline", "glyph exceeds %d path commands", MaxOutlineCommands)
		return false
	}
	return true
}

func (o *outliner) extend(x, y float32) {
	o.empty = false
	o.xmin, o.xmax = min(o.xmin, x), max(o.xmax, x)
	o.ymin, o.ymax = min(o.ymin, y), max(o.ymax, y)
}

func (o *outliner) moveTo(x, y float32) {
	o.close()
	if o.budget() {
		o.extend(x, y)
		o.sink.MoveTo(x, y)
		o.open = true
	}
}

func (o *outliner) lineTo(x, y float32) {
	if o.budget() {
		o.extend(x, y)
		o.sink.LineTo(x, y)
	}
}

func (o *outliner) quadTo(x1, y1, x, y float32) {
	if o.budget() {
		o.extend(x1, y1)
		o.extend(x, y)
		o.sink.QuadTo(x1, y1, x, y)
	}
}

func (o *outliner) cubicTo(x1, y1, x2, y2, x, y float32) {
	if o.budget() {
		o.extend(x1, y1)
		o.extend(x2, y2)
		o.extend(x, y)
		o.sink.CubicTo(x1, y1, x2, y2, x, y)
	}
}

func (o *outliner) close() {
	if !o.open {
		return
	}
	o.open = false
	if o.budget() {
		o.sink.Close()
	}
}

func (o *outliner) finish() {
	o.close()
}

func (o *outliner) bounds() Rect {
	if o.empty {
		return Rect{}
	}
	return Rect{XMin: o.xmin, YMin: o.ymin, XMax: o.xmax, YMax: o.ymax}
}

// --- Quadratic contours ----------------------------------------------------

// contourBuilder converts TrueType contour points to path commands.
// Two consecutive off-curve points imply an on-curve point at their midpoint.
// A contour may start with an off-curve point.
type contourBuilder struct {
	o           *outliner
	firstOn     Point
	hasFirstOn  bool
	firstOff    Point
	hasFirstOff bool
	lastOff     Point
	hasLastOff  bool
}

func mid(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func (cb *contourBuilder) push(p Point, onCurve bool) {
	if !cb.hasFirstOn {
		if onCurve {
			cb.firstOn, cb.hasFirstOn = p, true
			cb.o.moveTo(p.X, p.Y)
		} else if cb.hasFirstOff {
			m := mid(cb.firstOff, p)
			cb.firstOn, cb.hasFirstOn = m, true
			cb.lastOff, cb.hasLastOff = p, true
			cb.o.moveTo(m.X, m.Y)
		} else {
			cb.firstOff, cb.hasFirstOff = p, true
		}
		return
	}
	switch {
	case cb.hasLastOff && onCurve:
		cb.hasLastOff = false
		cb.o.quadTo(cb.lastOff.X, cb.lastOff.Y, p.X, p.Y)
	case cb.hasLastOff && !onCurve:
		m := mid(cb.lastOff, p)
		cb.o.quadTo(cb.lastOff.X, cb.lastOff.Y, m.X, m.Y)
		cb.lastOff = p
	case onCurve:
		cb.o.lineTo(p.X, p.Y)
	default:
		cb.lastOff, cb.hasLastOff = p, true
	}
}

// finish closes the contour. A straight closing segment is implied by Close.
func (cb *contourBuilder) finish() {
	if !cb.hasFirstOn {
		// a single off-curve point does not form a contour
		*cb = contourBuilder{o: cb.o}
		return
	}
	if cb.hasFirstOff && cb.hasLastOff {
		m := mid(cb.lastOff, cb.firstOff)
		cb.o.quadTo(cb.lastOff.X, cb.lastOff.Y, m.X, m.Y)
		cb.hasLastOff = false
	}
	if cb.hasFirstOff {
		cb.o.quadTo(cb.firstOff.X, cb.firstOff.Y, cb.firstOn.X, cb.firstOn.Y)
	} else if cb.hasLastOff {
		cb.o.quadTo(cb.lastOff.X, cb.lastOff.Y, cb.firstOn.X, cb.firstOn.Y)
	}
	cb.o.close()
	*cb = contourBuilder{o: cb.o}
}
