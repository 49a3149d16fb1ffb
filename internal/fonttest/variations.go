package fonttest

// Axis is a variation axis record of table fvar.
type Axis struct {
	Tag               string
	Min, Default, Max float32
}

// Instance is a named instance record of table fvar.
type Instance struct {
	SubfamilyNameID uint16
	Coords          []float32
}

// FVar creates table fvar. Instances carry no PostScript name ID.
func FVar(axes []Axis, instances ...Instance) []byte {
	var b Buffer
	b.U16(1, 0, 16, 2)
	b.U16(uint16(len(axes)), 20, uint16(len(instances)), uint16(4+4*len(axes)))
	for i, a := range axes {
		b.Tag(a.Tag).Fixed(a.Min).Fixed(a.Default).Fixed(a.Max)
		b.U16(0, uint16(256+i))
	}
	for _, inst := range instances {
		b.U16(inst.SubfamilyNameID, 0)
		for _, c := range inst.Coords {
			b.Fixed(c)
		}
	}
	return b
}

// AVar creates table avar with one segment map per axis. Each segment map
// is a list of (from, to) pairs.
func AVar(maps ...[][2]float32) []byte {
	var b Buffer
	b.U16(1, 0, 0, uint16(len(maps)))
	for _, m := range maps {
		b.U16(uint16(len(m)))
		for _, seg := range m {
			b.F2Dot14(seg[0], seg[1])
		}
	}
	return b
}

// --- gvar ------------------------------------------------------------------

// Tuple is a tuple variation of a glyph. Peak coordinates are embedded in the
// tuple header unless Peak is nil, in which case shared tuple SharedIndex is
// referenced. Start and End are set for intermediate regions. Points nil
// means all points (including the four phantom points); otherwise DX and DY
// are parallel to Points.
type Tuple struct {
	Peak        []float32
	SharedIndex int
	Start, End  []float32
	Points      []int
	DX, DY      []int16
}

// GVar describes table gvar.
type GVar struct {
	AxisCount    int
	SharedTuples [][]float32
	Glyphs       [][]Tuple // tuple variations per glyph
}

// Bytes serializes the table with long offsets.
func (g GVar) Bytes() []byte {
	var shared Buffer
	for _, t := range g.SharedTuples {
		shared.F2Dot14(t...)
	}
	var data Buffer
	var offsets Buffer
	for _, tuples := range g.Glyphs {
		offsets.U32(uint32(data.Len()))
		if len(tuples) > 0 {
			data.Bytes(glyphVariationData(tuples))
			data.Pad(2)
		}
	}
	offsets.U32(uint32(data.Len()))
	sharedOffset := 20 + offsets.Len()
	dataOffset := sharedOffset + shared.Len()
	var b Buffer
	b.U16(1, 0, uint16(g.AxisCount), uint16(len(g.SharedTuples)))
	b.U32(uint32(sharedOffset))
	b.U16(uint16(len(g.Glyphs)), 1)
	b.U32(uint32(dataOffset))
	b.Bytes(offsets).Bytes(shared).Bytes(data)
	return b
}

const (
	tupleEmbeddedPeak       = 0x8000
	tupleIntermediateRegion = 0x4000
	tuplePrivatePoints      = 0x2000
)

func glyphVariationData(tuples []Tuple) []byte {
	var headers, serialized Buffer
	for _, t := range tuples {
		var sd Buffer
		sd.Bytes(packPoints(t.Points))
		sd.Bytes(packDeltas(t.DX)).Bytes(packDeltas(t.DY))
		index := uint16(tuplePrivatePoints)
		if t.Peak != nil {
			index |= tupleEmbeddedPeak
		} else {
			index |= uint16(t.SharedIndex)
		}
		if t.Start != nil {
			index |= tupleIntermediateRegion
		}
		headers.U16(uint16(sd.Len()), index)
		headers.F2Dot14(t.Peak...)
		headers.F2Dot14(t.Start...)
		headers.F2Dot14(t.End...)
		serialized.Bytes(sd)
	}
	var b Buffer
	b.U16(uint16(len(tuples)), uint16(4+headers.Len()))
	b.Bytes(headers).Bytes(serialized)
	return b
}

// packPoints encodes point numbers with 16-bit runs. nil encodes all points.
func packPoints(pts []int) []byte {
	var b Buffer
	if pts == nil {
		b.U8(0)
		return b
	}
	if len(pts) < 128 {
		b.U8(uint8(len(pts)))
	} else {
		b.U8(uint8(0x80|len(pts)>>8), uint8(len(pts)))
	}
	prev := 0
	for i := 0; i < len(pts); i += 128 {
		run := pts[i:min(i+128, len(pts))]
		b.U8(0x80 | uint8(len(run)-1))
		for _, p := range run {
			b.U16(uint16(p - prev))
			prev = p
		}
	}
	return b
}

// packDeltas encodes deltas with 16-bit runs.
func packDeltas(deltas []int16) []byte {
	var b Buffer
	for i := 0; i < len(deltas); i += 64 {
		run := deltas[i:min(i+64, len(deltas))]
		b.U8(0x40 | uint8(len(run)-1))
		b.I16(run...)
	}
	return b
}

// --- HVAR ------------------------------------------------------------------

// Region is a region of an item variation store: one (start, peak, end)
// triple per axis.
type Region [][3]float32

// ItemVariationStore describes an item variation store with a single item
// variation data subtable referencing all regions. Deltas are indexed by
// item, then region.
type ItemVariationStore struct {
	AxisCount int
	Regions   []Region
	Deltas    [][]int16
}

// Bytes serializes the store, with all deltas stored as words.
func (s ItemVariationStore) Bytes() []byte {
	var regions Buffer
	regions.U16(uint16(s.AxisCount), uint16(len(s.Regions)))
	for _, r := range s.Regions {
		for _, axis := range r {
			regions.F2Dot14(axis[0], axis[1], axis[2])
		}
	}
	var data Buffer
	data.U16(uint16(len(s.Deltas)), uint16(len(s.Regions)), uint16(len(s.Regions)))
	for i := range s.Regions {
		data.U16(uint16(i))
	}
	for _, row := range s.Deltas {
		data.I16(row...)
	}
	var b Buffer
	b.U16(1).U32(12).U16(1).U32(uint32(12 + regions.Len()))
	b.Bytes(regions).Bytes(data)
	return b
}

// HVar creates table HVAR. If advances is not nil, it is stored as the
// advance width mapping (format 0, 4-byte entries of outer<<16 | inner);
// otherwise glyphs map implicitly to items of the first subtable.
func HVar(store ItemVariationStore, advances []uint32) []byte {
	st := store.Bytes()
	var b Buffer
	b.U16(1, 0).U32(20)
	if advances == nil {
		b.U32(0, 0, 0)
		b.Bytes(st)
		return b
	}
	b.U32(uint32(20+len(st)), 0, 0)
	b.Bytes(st)
	b.U8(0, 0x3f).U16(uint16(len(advances)))
	b.U32(advances...)
	return b
}
