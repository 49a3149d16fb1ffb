package ot

import (
	"errors"
	"fmt"
	"math"
)

// Type 2 charstring operators.
const (
	csHstem      = 1
	csVstem      = 3
	csVmoveto    = 4
	csRlineto    = 5
	csHlineto    = 6
	csVlineto    = 7
	csRrcurveto  = 8
	csCallsubr   = 10
	csReturn     = 11
	csEscape     = 12
	csEndchar    = 14
	csHstemhm    = 18
	csHintmask   = 19
	csCntrmask   = 20
	csRmoveto    = 21
	csHmoveto    = 22
	csVstemhm    = 23
	csRcurveline = 24
	csRlinecurve = 25
	csVvcurveto  = 26
	csHhcurveto  = 27
	csShortInt   = 28
	csCallgsubr  = 29
	csVhcurveto  = 30
	csHvcurveto  = 31
	csHflex      = 12<<8 | 34
	csFlex       = 12<<8 | 35
	csHflex1     = 12<<8 | 36
	csFlex1      = 12<<8 | 37
)

const (
	csMaxStack = 48     // argument stack limit of Type 2 charstrings
	csMaxOps   = 200000 // operator budget per glyph
)

var (
	errCSStackOverflow = errors.New("charstring argument stack overflow")
	errCSArgs          = errors.New("charstring operator with too few arguments")
	errCSNoMoveTo      = errors.New("charstring path operator before first moveto")
)

// csInterpreter executes Type 2 charstrings and forwards the resulting path
// to an outliner. Hints are consumed for their effect on hintmask length
// only.
type csInterpreter struct {
	o           *outliner
	globalSubrs cffIndex
	localSubrs  cffIndex
	globalBias  int
	localBias   int

	stack    []float64
	argStart int // 1 if the first operand is the glyph width
	x, y     float64
	moved    bool // a moveto has been executed
	width    bool // width has been detected (or ruled out)
	stems    int
	depth    int
	ops      int
	ended    bool
}

func (c *csInterpreter) run(cs []byte) error {
	c.stack = make([]float64, 0, csMaxStack)
	return c.execute(cs)
}

func (c *csInterpreter) args() []float64 {
	return c.stack[c.argStart:]
}

func (c *csInterpreter) clear() {
	c.stack = c.stack[:0]
	c.argStart = 0
}

func (c *csInterpreter) push(v float64) error {
	if len(c.stack) == csMaxStack {
		return errCSStackOverflow
	}
	c.stack = append(c.stack, v)
	return nil
}

// checkWidth detects an optional width operand preceding the arguments of
// the first stack-clearing operator.
func (c *csInterpreter) checkWidth(op int) {
	if c.width {
		return
	}
	c.width = true
	n := len(c.stack)
	var hasWidth bool
	switch op {
	case csHstem, csHstemhm, csVstem, csVstemhm, csHintmask, csCntrmask, csEndchar:
		hasWidth = n%2 == 1
	case csHmoveto, csVmoveto:
		hasWidth = n > 1
	case csRmoveto:
		hasWidth = n > 2
	}
	if hasWidth {
		c.argStart = 1
	}
}

func (c *csInterpreter) execute(cs []byte) error {
	s := NewStream(cs)
	for !s.AtEnd() && !c.ended {
		if c.ops++; c.ops > csMaxOps {
			return fmt.Errorf("charstring exceeds %d operations", csMaxOps)
		}
		b0 := s.U8()
		if b0 >= 32 || b0 == csShortInt {
			v := readCSNumber(s, b0)
			if err := s.Err(); err != nil {
				return err
			}
			if err := c.push(v); err != nil {
				return err
			}
			continue
		}
		op := int(b0)
		if b0 == csEscape {
			op = 12<<8 | int(s.U8())
		}
		if err := s.Err(); err != nil {
			return err
		}
		if err := c.operator(op, s); err != nil {
			return err
		}
		if op == csReturn {
			return nil
		}
	}
	return s.Err()
}

// readCSNumber decodes a charstring operand starting with byte b0.
func readCSNumber(s *Stream, b0 byte) float64 {
	switch {
	case b0 == csShortInt:
		return float64(s.I16())
	case b0 <= 246:
		return float64(int(b0) - 139)
	case b0 <= 250:
		return float64((int(b0)-247)*256 + int(s.U8()) + 108)
	case b0 <= 254:
		return float64(-(int(b0)-251)*256 - int(s.U8()) - 108)
	}
	return float64(s.I32()) / 65536 // 16.16 fixed
}

func (c *csInterpreter) operator(op int, s *Stream) error {
	switch op {
	case csHstem, csVstem, csHstemhm, csVstemhm:
		c.checkWidth(op)
		c.stems += len(c.args()) / 2
		c.clear()
	case csHintmask, csCntrmask:
		c.checkWidth(op)
		c.stems += len(c.args()) / 2 // implicit vstem
		c.clear()
		s.Skip((c.stems + 7) / 8)
	case csRmoveto, csHmoveto, csVmoveto:
		c.checkWidth(op)
		a := c.args()
		switch {
		case op == csRmoveto && len(a) >= 2:
			c.x, c.y = c.x+a[0], c.y+a[1]
		case op == csHmoveto && len(a) >= 1:
			c.x += a[0]
		case op == csVmoveto && len(a) >= 1:
			c.y += a[0]
		default:
			return errCSArgs
		}
		c.moved = true
		c.o.moveTo(float32(c.x), float32(c.y))
		c.clear()
	case csRlineto, csHlineto, csVlineto, csRrcurveto, csRcurveline, csRlinecurve,
		csVvcurveto, csHhcurveto, csVhcurveto, csHvcurveto, csHflex, csFlex, csHflex1, csFlex1:
		if !c.moved {
			return errCSNoMoveTo
		}
		if err := c.path(op, c.args()); err != nil {
			return err
		}
		c.clear()
	case csCallsubr, csCallgsubr:
		return c.call(op)
	case csReturn:
	case csEndchar:
		// seac accent composition (4 extra operands) is not supported
		c.checkWidth(op)
		c.clear()
		c.ended = true
	default:
		return fmt.Errorf("unsupported charstring operator %d", op)
	}
	return nil
}

func (c *csInterpreter) call(op int) error {
	if len(c.stack) <= c.argStart {
		return errCSArgs
	}
	n := int(c.stack[len(c.stack)-1])
	c.stack = c.stack[:len(c.stack)-1]
	subrs, bias := c.localSubrs, c.localBias
	if op == csCallgsubr {
		subrs, bias = c.globalSubrs, c.globalBias
	}
	if c.depth >= MaxCallDepth {
		return fmt.Errorf("subroutine nesting exceeds %d", MaxCallDepth)
	}
	subr, err := subrs.get(n + bias)
	if err != nil {
		return fmt.Errorf("subroutine %d: %w", n, err)
	}
	c.depth++
	err = c.execute(subr)
	c.depth--
	return err
}

func (c *csInterpreter) lineTo(dx, dy float64) {
	c.x, c.y = c.x+dx, c.y+dy
	c.o.lineTo(float32(c.x), float32(c.y))
}

func (c *csInterpreter) curveTo(dxa, dya, dxb, dyb, dxc, dyc float64) {
	x1, y1 := c.x+dxa, c.y+dya
	x2, y2 := x1+dxb, y1+dyb
	c.x, c.y = x2+dxc, y2+dyc
	c.o.cubicTo(float32(x1), float32(y1), float32(x2), float32(y2), float32(c.x), float32(c.y))
}

// path executes the path construction operators.
func (c *csInterpreter) path(op int, a []float64) error {
	switch op {
	case csRlineto:
		if len(a) < 2 {
			return errCSArgs
		}
		for ; len(a) >= 2; a = a[2:] {
			c.lineTo(a[0], a[1])
		}
	case csHlineto, csVlineto:
		if len(a) < 1 {
			return errCSArgs
		}
		horizontal := op == csHlineto
		for ; len(a) > 0; a = a[1:] {
			if horizontal {
				c.lineTo(a[0], 0)
			} else {
				c.lineTo(0, a[0])
			}
			horizontal = !horizontal
		}
	case csRrcurveto:
		if len(a) < 6 {
			return errCSArgs
		}
		for ; len(a) >= 6; a = a[6:] {
			c.curveTo(a[0], a[1], a[2], a[3], a[4], a[5])
		}
	case csRcurveline:
		if len(a) < 8 {
			return errCSArgs
		}
		for ; len(a) >= 8; a = a[6:] {
			c.curveTo(a[0], a[1], a[2], a[3], a[4], a[5])
		}
		c.lineTo(a[0], a[1])
	case csRlinecurve:
		if len(a) < 8 {
			return errCSArgs
		}
		for ; len(a) >= 8; a = a[2:] {
			c.lineTo(a[0], a[1])
		}
		c.curveTo(a[0], a[1], a[2], a[3], a[4], a[5])
	case csVvcurveto:
		var dx1 float64
		if len(a)%2 == 1 {
			dx1, a = a[0], a[1:]
		}
		if len(a) < 4 {
			return errCSArgs
		}
		for ; len(a) >= 4; a = a[4:] {
			c.curveTo(dx1, a[0], a[1], a[2], 0, a[3])
			dx1 = 0
		}
	case csHhcurveto:
		var dy1 float64
		if len(a)%2 == 1 {
			dy1, a = a[0], a[1:]
		}
		if len(a) < 4 {
			return errCSArgs
		}
		for ; len(a) >= 4; a = a[4:] {
			c.curveTo(a[0], dy1, a[1], a[2], a[3], 0)
			dy1 = 0
		}
	case csVhcurveto, csHvcurveto:
		if len(a) < 4 {
			return errCSArgs
		}
		vertical := op == csVhcurveto
		for len(a) >= 4 {
			var last float64
			if len(a) == 5 {
				last = a[4]
			}
			if vertical {
				c.curveTo(0, a[0], a[1], a[2], a[3], last)
			} else {
				c.curveTo(a[0], 0, a[1], a[2], last, a[3])
			}
			a = a[4:]
			vertical = !vertical
		}
	case csHflex:
		if len(a) < 7 {
			return errCSArgs
		}
		y0 := c.y
		c.curveTo(a[0], 0, a[1], a[2], a[3], 0)
		c.curveTo(a[4], 0, a[5], y0-c.y, a[6], 0)
	case csFlex:
		if len(a) < 13 {
			return errCSArgs
		}
		c.curveTo(a[0], a[1], a[2], a[3], a[4], a[5])
		c.curveTo(a[6], a[7], a[8], a[9], a[10], a[11])
	case csHflex1:
		if len(a) < 9 {
			return errCSArgs
		}
		y0 := c.y
		c.curveTo(a[0], a[1], a[2], a[3], a[4], 0)
		c.curveTo(a[5], 0, a[6], a[7], a[8], y0-(c.y+a[7]))
	case csFlex1:
		if len(a) < 11 {
			return errCSArgs
		}
		x0, y0 := c.x, c.y
		var dx, dy float64
		for i := 0; i < 10; i += 2 {
			dx += a[i]
			dy += a[i+1]
		}
		c.curveTo(a[0], a[1], a[2], a[3], a[4], a[5])
		if math.Abs(dx) > math.Abs(dy) {
			dx, dy = a[10], y0-(c.y+a[7]+a[9])
		} else {
			dx, dy = x0-(c.x+a[6]+a[8]), a[10]
		}
		c.curveTo(a[6], a[7], a[8], a[9], dx, dy)
	}
	return nil
}
