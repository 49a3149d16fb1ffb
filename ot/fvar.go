package ot

import (
	"fmt"
	"math"
)

// NormalizedCoord is a variation coordinate normalized to the range
// [-1, 1], encoded as F2Dot14.
type NormalizedCoord int16

// NormalizedCoordFromFloat converts f to a normalized coordinate, clamping it
// to [-1, 1].
func NormalizedCoordFromFloat(f float32) NormalizedCoord {
	f = max(-1, min(1, f))
	return NormalizedCoord(math.Round(float64(f) * 16384))
}

// Float returns c as a floating point number.
func (c NormalizedCoord) Float() float32 {
	return f2dot14(int16(c))
}

// --- fvar ------------------------------------------------------------------

// VariationAxis is a variation axis of a variable font, as defined in table fvar.
type VariationAxis struct {
	Tag     Tag
	Min     float32
	Default float32
	Max     float32
	Hidden  bool
	NameID  uint16
}

// NamedInstance is a predefined instance of a variable font.
type NamedInstance struct {
	SubfamilyNameID  uint16
	PostScriptNameID uint16 // 0 if not present
	Coords           []float32
}

// FVarTable defines the variation axes of a variable font, together with
// named instances.
type FVarTable struct {
	tableBase
	Axes      []VariationAxis
	Instances []NamedInstance
}

func parseFVar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	s := NewStream(b)
	major := s.U16()
	s.Skip(2)
	axesOffset := int(s.U16())
	s.Skip(2)
	axisCount := int(s.U16())
	axisSize := int(s.U16())
	instanceCount := int(s.U16())
	instanceSize := int(s.U16())
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	if major != 1 {
		return nil, malformed(tag, "Version", "unsupported fvar version %d", major)
	}
	if axisCount == 0 || axisCount > MaxAxisCount {
		return nil, malformed(tag, "Axes", "invalid axis count %d", axisCount)
	}
	if axisSize != 20 {
		return nil, malformed(tag, "Axes", "unexpected axis record size %d", axisSize)
	}
	if instanceSize != 4+4*axisCount && instanceSize != 6+4*axisCount {
		return nil, malformed(tag, "Instances", "unexpected instance record size %d", instanceSize)
	}
	t := &FVarTable{Axes: make([]VariationAxis, axisCount)}
	t.tableBase = makeBase(tag, b, offset, size, t)
	s.SeekTo(axesOffset)
	for i := range t.Axes {
		a := VariationAxis{Tag: s.Tag(), Min: s.Fixed(), Default: s.Fixed(), Max: s.Fixed()}
		a.Hidden = s.U16()&0x0001 != 0
		a.NameID = s.U16()
		if a.Min > a.Default || a.Default > a.Max {
			return nil, malformed(tag, "Axes", "axis %s: inconsistent range %g <= %g <= %g",
				a.Tag, a.Min, a.Default, a.Max)
		}
		t.Axes[i] = a
	}
	for i := 0; i < instanceCount && s.Err() == nil; i++ {
		inst := NamedInstance{SubfamilyNameID: s.U16(), Coords: make([]float32, axisCount)}
		s.Skip(2) // flags
		for j := range inst.Coords {
			inst.Coords[j] = s.Fixed()
		}
		if instanceSize == 6+4*axisCount {
			inst.PostScriptNameID = s.U16()
		}
		t.Instances = append(t.Instances, inst)
	}
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Records", err)
	}
	tracer().Debugf("fvar: %d axes, %d instances", axisCount, instanceCount)
	return t, nil
}

// Variation is a user-space setting for a single variation axis,
// e.g. {T("wght"), 700}.
type Variation struct {
	Tag   Tag
	Value float32
}

func (v Variation) String() string {
	return fmt.Sprintf("%s=%g", v.Tag, v.Value)
}

// NormalizeVariation converts user-space axis settings to normalized
// coordinates, one per axis of table fvar. Axes without a setting remain at
// their default; settings for unknown axes are ignored. The avar mapping is
// applied if the font contains table avar. For non-variable fonts, nil is
// returned.
func (otf *Font) NormalizeVariation(settings ...Variation) []NormalizedCoord {
	fvar := otf.Variations.FVar
	if fvar == nil {
		return nil
	}
	coords := make([]NormalizedCoord, len(fvar.Axes))
	for i, a := range fvar.Axes {
		v := a.Default
		for _, s := range settings {
			if s.Tag == a.Tag {
				v = s.Value
			}
		}
		n := a.normalize(v)
		if otf.Variations.AVar != nil {
			n = otf.Variations.AVar.mapCoord(i, n)
		}
		coords[i] = NormalizedCoordFromFloat(n)
	}
	return coords
}

// normalize maps v to [-1, 1] using the axis range, with the default value
// mapping to 0.
func (a VariationAxis) normalize(v float32) float32 {
	v = max(a.Min, min(a.Max, v))
	switch {
	case v < a.Default && a.Default > a.Min:
		return -(a.Default - v) / (a.Default - a.Min)
	case v > a.Default && a.Max > a.Default:
		return (v - a.Default) / (a.Max - a.Default)
	}
	return 0
}

// --- avar ------------------------------------------------------------------

type axisValueMap struct {
	from, to float32
}

// AVarTable modifies the normalization of variation coordinates by piecewise
// linear segment maps, one per axis.
type AVarTable struct {
	tableBase
	segmentMaps [][]axisValueMap
}

func parseAVar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	s := NewStream(b)
	major := s.U16()
	s.Skip(4) // minorVersion, reserved
	axisCount := int(s.U16())
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	if major != 1 {
		return nil, malformed(tag, "Version", "unsupported avar version %d", major)
	}
	if axisCount > MaxAxisCount {
		return nil, malformed(tag, "Header", "invalid axis count %d", axisCount)
	}
	t := &AVarTable{segmentMaps: make([][]axisValueMap, axisCount)}
	t.tableBase = makeBase(tag, b, offset, size, t)
	for i := range t.segmentMaps {
		n := int(s.U16())
		if s.Remaining() < 4*n {
			return nil, malformed(tag, "SegmentMaps", "segment map %d truncated", i)
		}
		m := make([]axisValueMap, n)
		for j := range m {
			m[j] = axisValueMap{from: s.F2Dot14(), to: s.F2Dot14()}
			if j > 0 && m[j].from < m[j-1].from {
				return nil, malformed(tag, "SegmentMaps", "segment map %d not sorted", i)
			}
		}
		t.segmentMaps[i] = m
	}
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "SegmentMaps", err)
	}
	return t, nil
}

// mapCoord applies the segment map of axis to the normalized value v.
func (t *AVarTable) mapCoord(axis int, v float32) float32 {
	if axis >= len(t.segmentMaps) {
		return v
	}
	m := t.segmentMaps[axis]
	if len(m) == 0 {
		return v
	}
	for k, seg := range m {
		if v == seg.from {
			return seg.to
		}
		if v < seg.from {
			if k == 0 {
				return v + seg.to - seg.from
			}
			prev := m[k-1]
			return prev.to + (seg.to-prev.to)*(v-prev.from)/(seg.from-prev.from)
		}
	}
	last := m[len(m)-1]
	return v + last.to - last.from
}

// regionScalar returns the factor of a region on one axis at coordinate v,
// with start, peak and end defining the region's tent.
func regionScalar(v, start, peak, end float32) float32 {
	switch {
	case peak == 0:
		return 1
	case start > peak || peak > end:
		return 1
	case start < 0 && end > 0:
		return 1
	case v < start || v > end:
		return 0
	case v == peak:
		return 1
	case v < peak:
		return (v - start) / (peak - start)
	}
	return (end - v) / (end - peak)
}

func coordAt(coords []NormalizedCoord, i int) float32 {
	if i < len(coords) {
		return coords[i].Float()
	}
	return 0
}
