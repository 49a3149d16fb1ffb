package fonttest

import "sort"

// LangSys is a language system of a layout table. Required is the index of
// the required feature, or -1.
type LangSys struct {
	Tag      string
	Required int
	Features []uint16
}

// Script is a script of a layout table.
type Script struct {
	Tag     string
	Default *LangSys
	Langs   []LangSys
}

// Feature is a feature of a layout table.
type Feature struct {
	Tag     string
	Lookups []uint16
}

// Lookup is a lookup header of a layout table. Subtables are not
// serialized; SubtableCount dummy offsets are stored instead. MarkSet is
// stored if the flag requests a mark filtering set.
type Lookup struct {
	Type, Flag    uint16
	SubtableCount int
	MarkSet       uint16
}

// Condition is a format 1 axis range condition.
type Condition struct {
	Axis     uint16
	Min, Max float32
}

// FeatureVariation substitutes features if all conditions hold.
type FeatureVariation struct {
	Conditions    []Condition
	Substitutions map[uint16][]uint16 // feature index to alternate lookup indices
}

// Layout describes a GSUB or GPOS table.
type Layout struct {
	Scripts           []Script
	Features          []Feature
	Lookups           []Lookup
	FeatureVariations []FeatureVariation
}

// Bytes serializes the layout table. Version 1.1 is written if feature
// variations are present, 1.0 otherwise.
func (l Layout) Bytes() []byte {
	headerSize := 10
	if l.FeatureVariations != nil {
		headerSize = 14
	}
	scripts := l.scriptList()
	features := l.featureList()
	lookups := l.lookupList()
	var b Buffer
	if l.FeatureVariations != nil {
		b.U16(1, 1)
	} else {
		b.U16(1, 0)
	}
	b.U16(uint16(headerSize), uint16(headerSize+len(scripts)),
		uint16(headerSize+len(scripts)+len(features)))
	if l.FeatureVariations != nil {
		b.U32(uint32(headerSize + len(scripts) + len(features) + len(lookups)))
	}
	b.Bytes(scripts).Bytes(features).Bytes(lookups)
	if l.FeatureVariations != nil {
		b.Bytes(l.featureVariations())
	}
	return b
}

func langSys(ls LangSys) []byte {
	var b Buffer
	req := uint16(0xffff)
	if ls.Required >= 0 {
		req = uint16(ls.Required)
	}
	b.U16(0, req, uint16(len(ls.Features)))
	b.U16(ls.Features...)
	return b
}

func (l Layout) scriptList() []byte {
	var b, tables Buffer
	b.U16(uint16(len(l.Scripts)))
	base := 2 + 6*len(l.Scripts)
	for _, s := range l.Scripts {
		b.Tag(s.Tag).U16(uint16(base + tables.Len()))
		var st, lss Buffer
		stSize := 4 + 6*len(s.Langs)
		if s.Default != nil {
			st.U16(uint16(stSize))
			lss.Bytes(langSys(*s.Default))
		} else {
			st.U16(0)
		}
		st.U16(uint16(len(s.Langs)))
		for _, ls := range s.Langs {
			st.Tag(ls.Tag).U16(uint16(stSize + lss.Len()))
			lss.Bytes(langSys(ls))
		}
		tables.Bytes(st).Bytes(lss)
	}
	b.Bytes(tables)
	return b
}

func feature(lookups []uint16) []byte {
	var b Buffer
	b.U16(0, uint16(len(lookups)))
	b.U16(lookups...)
	return b
}

func (l Layout) featureList() []byte {
	var b, tables Buffer
	b.U16(uint16(len(l.Features)))
	base := 2 + 6*len(l.Features)
	for _, f := range l.Features {
		b.Tag(f.Tag).U16(uint16(base + tables.Len()))
		tables.Bytes(feature(f.Lookups))
	}
	b.Bytes(tables)
	return b
}

func (l Layout) lookupList() []byte {
	var b, tables Buffer
	b.U16(uint16(len(l.Lookups)))
	base := 2 + 2*len(l.Lookups)
	for _, lk := range l.Lookups {
		b.U16(uint16(base + tables.Len()))
		tables.U16(lk.Type, lk.Flag, uint16(lk.SubtableCount))
		for i := 0; i < lk.SubtableCount; i++ {
			tables.U16(0)
		}
		if lk.Flag&0x0010 != 0 {
			tables.U16(lk.MarkSet)
		}
	}
	b.Bytes(tables)
	return b
}

func (l Layout) featureVariations() []byte {
	var b, tables Buffer
	b.U16(1, 0).U32(uint32(len(l.FeatureVariations)))
	base := 8 + 8*len(l.FeatureVariations)
	for _, fv := range l.FeatureVariations {
		// condition set
		b.U32(uint32(base + tables.Len()))
		var cs Buffer
		cs.U16(uint16(len(fv.Conditions)))
		condBase := 2 + 4*len(fv.Conditions)
		for i := range fv.Conditions {
			cs.U32(uint32(condBase + 8*i))
		}
		for _, c := range fv.Conditions {
			cs.U16(1, c.Axis).F2Dot14(c.Min, c.Max)
		}
		tables.Bytes(cs)
		// feature table substitution
		b.U32(uint32(base + tables.Len()))
		var sub, alts Buffer
		indices := make([]int, 0, len(fv.Substitutions))
		for i := range fv.Substitutions {
			indices = append(indices, int(i))
		}
		sort.Ints(indices)
		sub.U16(1, 0, uint16(len(indices)))
		altBase := 6 + 6*len(indices)
		for _, i := range indices {
			sub.U16(uint16(i)).U32(uint32(altBase + alts.Len()))
			alts.Bytes(feature(fv.Substitutions[uint16(i)]))
		}
		tables.Bytes(sub).Bytes(alts)
	}
	b.Bytes(tables)
	return b
}
