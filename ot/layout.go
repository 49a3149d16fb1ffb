package ot

/*
From https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2:

OpenType Layout consists of five tables: the Glyph Substitution table (GSUB),
the Glyph Positioning table (GPOS), the Baseline table (BASE),
the Justification table (JSTF), and the Glyph Definition table (GDEF).
These tables use some of the same data formats.

Tables GSUB and GPOS are decoded down to the level of lookups: scripts,
language systems, features, lookup headers and feature variations. Lookup
subtables are not interpreted.
*/

import (
	"fmt"
	"iter"
)

// --- Layout tables ---------------------------------------------------------

// LayoutTable is a base type for layout tables.
// OpenType specifies two such tables–GPOS and GSUB–which share some of their
// structure.
type LayoutTable struct {
	tableBase
	header            LayoutHeader
	scripts           *ScriptList
	features          *FeatureList
	lookups           *LookupList
	featureVariations *FeatureVariations
	Requirements      LayoutRequirements
}

// LayoutRequirements collects GDEF subtable requirements implied by lookup flags.
// Requirements are aggregated during the parse of GSUB/GPOS lookup lists.
type LayoutRequirements struct {
	NeedGlyphClassDef      bool
	NeedMarkAttachClassDef bool
	NeedMarkGlyphSets      bool
}

// AddFromLookupFlag updates requirements based on a lookup's flag bits.
func (r *LayoutRequirements) AddFromLookupFlag(flag LayoutTableLookupFlag) {
	if flag&(LOOKUP_FLAG_IGNORE_BASE_GLYPHS|LOOKUP_FLAG_IGNORE_LIGATURES|LOOKUP_FLAG_IGNORE_MARKS) != 0 {
		r.NeedGlyphClassDef = true
	}
	if flag&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		r.NeedMarkGlyphSets = true
	}
	if flag&LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK != 0 {
		r.NeedMarkAttachClassDef = true
	}
}

// Merge combines requirements from another layout table.
func (r *LayoutRequirements) Merge(other LayoutRequirements) {
	r.NeedGlyphClassDef = r.NeedGlyphClassDef || other.NeedGlyphClassDef
	r.NeedMarkAttachClassDef = r.NeedMarkAttachClassDef || other.NeedMarkAttachClassDef
	r.NeedMarkGlyphSets = r.NeedMarkGlyphSets || other.NeedMarkGlyphSets
}

// Header returns the layout table header.
func (t *LayoutTable) Header() LayoutHeader {
	return t.header
}

// Scripts returns the script list of a layout table. It is never nil for a
// non-nil table.
func (t *LayoutTable) Scripts() *ScriptList {
	if t == nil {
		return nil
	}
	return t.scripts
}

// Features returns the feature list of a layout table.
func (t *LayoutTable) Features() *FeatureList {
	if t == nil {
		return nil
	}
	return t.features
}

// Lookups returns the lookup list of a layout table.
func (t *LayoutTable) Lookups() *LookupList {
	if t == nil {
		return nil
	}
	return t.lookups
}

// FeatureVariations returns the feature variations of a layout table, or nil
// if the table does not contain any (versions prior to 1.1).
func (t *LayoutTable) FeatureVariations() *FeatureVariations {
	if t == nil {
		return nil
	}
	return t.featureVariations
}

// LayoutHeader represents header information common to the layout tables.
type LayoutHeader struct {
	Major, Minor            uint16
	ScriptListOffset        uint16
	FeatureListOffset       uint16
	LookupListOffset        uint16
	FeatureVariationsOffset uint32 // version 1.1 only, may be 0
}

// Version returns major and minor version numbers for this layout table.
func (h LayoutHeader) Version() (int, int) {
	return int(h.Major), int(h.Minor)
}

// LayoutTableLookupFlag is a flag type for layout tables (GPOS and GSUB).
type LayoutTableLookupFlag uint16

// Lookup flags of layout tables (GPOS and GSUB)
const ( // LookupFlag bit enumeration
	// Note that the RIGHT_TO_LEFT flag is used only for GPOS type 3 lookups and is ignored
	// otherwise. It is not used by client software in determining text direction.
	LOOKUP_FLAG_RIGHT_TO_LEFT             LayoutTableLookupFlag = 0x0001
	LOOKUP_FLAG_IGNORE_BASE_GLYPHS        LayoutTableLookupFlag = 0x0002 // If set, skips over base glyphs
	LOOKUP_FLAG_IGNORE_LIGATURES          LayoutTableLookupFlag = 0x0004 // If set, skips over ligatures
	LOOKUP_FLAG_IGNORE_MARKS              LayoutTableLookupFlag = 0x0008 // If set, skips over all combining marks
	LOOKUP_FLAG_USE_MARK_FILTERING_SET    LayoutTableLookupFlag = 0x0010 // If set, indicates that the lookup table structure is followed by a MarkFilteringSet field.
	LOOKUP_FLAG_reserved                  LayoutTableLookupFlag = 0x00E0 // For future use (Set to zero)
	LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK LayoutTableLookupFlag = 0xFF00 // If not zero, skips over all marks of attachment type different from specified.
)

// LayoutTableLookupType is a type identifier for layout lookup records (GPOS and GSUB).
// Enum values are different for GPOS and GSUB.
type LayoutTableLookupType uint16

func parseLayoutTable(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := &LayoutTable{}
	t.tableBase = makeBase(tag, b, offset, size, t)
	s := NewStream(b)
	h := LayoutHeader{Major: s.U16(), Minor: s.U16()}
	h.ScriptListOffset, h.FeatureListOffset, h.LookupListOffset = s.U16(), s.U16(), s.U16()
	if h.Major == 1 && h.Minor >= 1 {
		h.FeatureVariationsOffset = s.U32()
	}
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	if h.Major != 1 {
		return nil, malformed(tag, "Header", "unsupported layout table version %d.%d", h.Major, h.Minor)
	}
	t.header = h
	var err error
	if t.lookups, err = parseLookupList(b, int(h.LookupListOffset), &t.Requirements); err != nil {
		return nil, asMalformed(tag, "LookupList", err)
	}
	if t.features, err = parseFeatureList(b, int(h.FeatureListOffset), len(t.lookups.lookups)); err != nil {
		return nil, asMalformed(tag, "FeatureList", err)
	}
	if t.scripts, err = parseScriptList(b, int(h.ScriptListOffset), len(t.features.features)); err != nil {
		return nil, asMalformed(tag, "ScriptList", err)
	}
	if h.FeatureVariationsOffset != 0 {
		t.featureVariations, err = parseFeatureVariations(b, int(h.FeatureVariationsOffset),
			len(t.features.features), len(t.lookups.lookups))
		if err != nil {
			return nil, asMalformed(tag, "FeatureVariations", err)
		}
	}
	tracer().Debugf("%s table version %d.%d: %d scripts, %d features, %d lookups", tag,
		h.Major, h.Minor, len(t.scripts.scripts), len(t.features.features), len(t.lookups.lookups))
	return t, nil
}

// --- Scripts ---------------------------------------------------------------

// ScriptList is the list of scripts supported by a layout table.
type ScriptList struct {
	scripts []Script
}

// Script is a script of a layout table with its language systems.
type Script struct {
	Tag            Tag
	DefaultLangSys *LangSys // may be nil
	langSys        []LangSys
}

// LangSys is a language system of a script. It references the features
// used for the language.
type LangSys struct {
	Tag             Tag    // DFLT for default language systems
	RequiredFeature Option[uint16]
	FeatureIndices  []uint16
}

// Len returns the number of scripts.
func (l *ScriptList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.scripts)
}

// Script returns the script for a tag, or nil if the script is not contained.
func (l *ScriptList) Script(tag Tag) *Script {
	if l == nil {
		return nil
	}
	for i := range l.scripts {
		if l.scripts[i].Tag == tag {
			return &l.scripts[i]
		}
	}
	return nil
}

// All iterates over the scripts in the order of the script list.
func (l *ScriptList) All() iter.Seq[*Script] {
	return func(yield func(*Script) bool) {
		if l == nil {
			return
		}
		for i := range l.scripts {
			if !yield(&l.scripts[i]) {
				return
			}
		}
	}
}

// LangSys returns the language system for a language tag. For DFLT, the
// default language system is returned. nil is returned if no language system
// matches.
func (s *Script) LangSys(lang Tag) *LangSys {
	if s == nil {
		return nil
	}
	if lang == DFLT {
		return s.DefaultLangSys
	}
	for i := range s.langSys {
		if s.langSys[i].Tag == lang {
			return &s.langSys[i]
		}
	}
	return nil
}

// LanguageTags returns the tags of all non-default language systems.
func (s *Script) LanguageTags() []Tag {
	tags := make([]Tag, len(s.langSys))
	for i, ls := range s.langSys {
		tags[i] = ls.Tag
	}
	return tags
}

func parseScriptList(b binarySegm, offset, featureCount int) (*ScriptList, error) {
	s := newStreamAt(b, offset)
	n := int(s.U16())
	if err := s.Err(); err != nil {
		return nil, err
	}
	if n > MaxScriptCount {
		return nil, fmt.Errorf("too many scripts: %d", n)
	}
	l := &ScriptList{scripts: make([]Script, n)}
	for i := range l.scripts {
		tag, off := s.Tag(), int(s.U16())
		if err := s.Err(); err != nil {
			return nil, err
		}
		script, err := parseScript(b, offset+off, featureCount)
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", tag, err)
		}
		script.Tag = tag
		l.scripts[i] = script
	}
	return l, nil
}

func parseScript(b binarySegm, offset, featureCount int) (Script, error) {
	var script Script
	s := newStreamAt(b, offset)
	defaultOffset := int(s.U16())
	n := int(s.U16())
	if err := s.Err(); err != nil {
		return script, err
	}
	if n > MaxScriptCount {
		return script, fmt.Errorf("too many language systems: %d", n)
	}
	if defaultOffset != 0 {
		ls, err := parseLangSys(b, offset+defaultOffset, featureCount)
		if err != nil {
			return script, err
		}
		ls.Tag = DFLT
		script.DefaultLangSys = &ls
	}
	script.langSys = make([]LangSys, n)
	for i := range script.langSys {
		tag, off := s.Tag(), int(s.U16())
		if err := s.Err(); err != nil {
			return script, err
		}
		ls, err := parseLangSys(b, offset+off, featureCount)
		if err != nil {
			return script, fmt.Errorf("language %s: %w", tag, err)
		}
		ls.Tag = tag
		script.langSys[i] = ls
	}
	return script, nil
}

func parseLangSys(b binarySegm, offset, featureCount int) (LangSys, error) {
	var ls LangSys
	s := newStreamAt(b, offset)
	s.Skip(2) // lookupOrderOffset, reserved
	if req := s.U16(); req != 0xffff {
		if int(req) >= featureCount {
			return ls, fmt.Errorf("required feature index %d out of range", req)
		}
		ls.RequiredFeature = Some(req)
	}
	ls.FeatureIndices = make([]uint16, s.U16())
	for i := range ls.FeatureIndices {
		ls.FeatureIndices[i] = s.U16()
		if s.Err() == nil && int(ls.FeatureIndices[i]) >= featureCount {
			return ls, fmt.Errorf("feature index %d out of range", ls.FeatureIndices[i])
		}
	}
	return ls, s.Err()
}

// --- Features --------------------------------------------------------------

// FeatureList is the list of features of a layout table.
type FeatureList struct {
	features []Feature
}

// Feature is a typographic feature, referencing the lookups which implement it.
type Feature struct {
	Tag           Tag
	LookupIndices []uint16
}

// Len returns the number of features.
func (l *FeatureList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.features)
}

// Feature returns feature number i.
func (l *FeatureList) Feature(i int) (Feature, bool) {
	if l == nil || i < 0 || i >= len(l.features) {
		return Feature{}, false
	}
	return l.features[i], true
}

func parseFeatureList(b binarySegm, offset, lookupCount int) (*FeatureList, error) {
	s := newStreamAt(b, offset)
	n := int(s.U16())
	if err := s.Err(); err != nil {
		return nil, err
	}
	if n > MaxFeatureCount {
		return nil, fmt.Errorf("too many features: %d", n)
	}
	l := &FeatureList{features: make([]Feature, n)}
	for i := range l.features {
		tag, off := s.Tag(), int(s.U16())
		if err := s.Err(); err != nil {
			return nil, err
		}
		f, err := parseFeature(b, offset+off, lookupCount)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", tag, err)
		}
		f.Tag = tag
		l.features[i] = f
	}
	return l, nil
}

func parseFeature(b binarySegm, offset, lookupCount int) (Feature, error) {
	var f Feature
	s := newStreamAt(b, offset)
	s.Skip(2) // featureParamsOffset
	f.LookupIndices = make([]uint16, s.U16())
	for i := range f.LookupIndices {
		f.LookupIndices[i] = s.U16()
		if s.Err() == nil && int(f.LookupIndices[i]) >= lookupCount {
			return f, fmt.Errorf("lookup index %d out of range", f.LookupIndices[i])
		}
	}
	return f, s.Err()
}

// --- Lookups ---------------------------------------------------------------

// LookupList is the list of lookups of a layout table.
type LookupList struct {
	lookups []Lookup
}

// Lookup is the header of a lookup. Subtables are referenced by offset from
// the start of the lookup table.
type Lookup struct {
	Type             LayoutTableLookupType
	Flag             LayoutTableLookupFlag
	SubtableOffsets  []uint16
	MarkFilteringSet Option[uint16]
}

// Len returns the number of lookups.
func (l *LookupList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.lookups)
}

// Lookup returns lookup number i.
func (l *LookupList) Lookup(i int) (Lookup, bool) {
	if l == nil || i < 0 || i >= len(l.lookups) {
		return Lookup{}, false
	}
	return l.lookups[i], true
}

func parseLookupList(b binarySegm, offset int, req *LayoutRequirements) (*LookupList, error) {
	s := newStreamAt(b, offset)
	n := int(s.U16())
	if err := s.Err(); err != nil {
		return nil, err
	}
	if n > MaxLookupCount {
		return nil, fmt.Errorf("too many lookups: %d", n)
	}
	l := &LookupList{lookups: make([]Lookup, n)}
	for i := range l.lookups {
		ls := newStreamAt(b, offset+int(s.U16()))
		lookup := Lookup{
			Type: LayoutTableLookupType(ls.U16()),
			Flag: LayoutTableLookupFlag(ls.U16()),
		}
		lookup.SubtableOffsets = make([]uint16, ls.U16())
		for j := range lookup.SubtableOffsets {
			lookup.SubtableOffsets[j] = ls.U16()
		}
		if lookup.Flag&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
			lookup.MarkFilteringSet = Some(ls.U16())
		}
		if err := ls.Err(); err != nil {
			return nil, fmt.Errorf("lookup %d: %w", i, err)
		}
		req.AddFromLookupFlag(lookup.Flag)
		l.lookups[i] = lookup
	}
	return l, s.Err()
}

// --- Feature variations ----------------------------------------------------

// FeatureVariations substitutes features for regions of the design space of
// a variable font.
type FeatureVariations struct {
	Records []FeatureVariationRecord
}

// FeatureVariationRecord applies its substitutions if all of its conditions
// hold.
type FeatureVariationRecord struct {
	Conditions    []AxisCondition
	Substitutions []FeatureSubstitution
}

// AxisCondition is satisfied if the normalized coordinate of an axis lies
// within [Min, Max].
type AxisCondition struct {
	AxisIndex uint16
	Min, Max  float32
}

// FeatureSubstitution replaces a feature with an alternate feature table.
type FeatureSubstitution struct {
	FeatureIndex uint16
	Alternate    Feature
}

func parseFeatureVariations(b binarySegm, offset, featureCount, lookupCount int) (*FeatureVariations, error) {
	s := newStreamAt(b, offset)
	major := s.U16()
	s.Skip(2)
	n := int(s.U32())
	if err := s.Err(); err != nil {
		return nil, err
	}
	if major != 1 {
		return nil, fmt.Errorf("unsupported feature variations version %d", major)
	}
	if n > MaxFeatureCount {
		return nil, fmt.Errorf("too many feature variation records: %d", n)
	}
	fv := &FeatureVariations{Records: make([]FeatureVariationRecord, n)}
	for i := range fv.Records {
		condOffset, substOffset := int(s.U32()), int(s.U32())
		if err := s.Err(); err != nil {
			return nil, err
		}
		var rec FeatureVariationRecord
		var err error
		if condOffset != 0 {
			if rec.Conditions, err = parseConditionSet(b, offset+condOffset); err != nil {
				return nil, err
			}
		}
		if substOffset != 0 {
			rec.Substitutions, err = parseFeatureSubstitutions(b, offset+substOffset,
				featureCount, lookupCount)
			if err != nil {
				return nil, err
			}
		}
		fv.Records[i] = rec
	}
	return fv, nil
}

func parseConditionSet(b binarySegm, offset int) ([]AxisCondition, error) {
	s := newStreamAt(b, offset)
	conds := make([]AxisCondition, s.U16())
	for i := range conds {
		cs := newStreamAt(b, offset+int(s.U32()))
		if format := cs.U16(); format != 1 && cs.Err() == nil {
			return nil, fmt.Errorf("unsupported condition format %d", format)
		}
		conds[i] = AxisCondition{AxisIndex: cs.U16(), Min: cs.F2Dot14(), Max: cs.F2Dot14()}
		if err := cs.Err(); err != nil {
			return nil, err
		}
	}
	return conds, s.Err()
}

func parseFeatureSubstitutions(b binarySegm, offset, featureCount, lookupCount int) ([]FeatureSubstitution, error) {
	s := newStreamAt(b, offset)
	s.Skip(4) // version
	subst := make([]FeatureSubstitution, s.U16())
	for i := range subst {
		index, off := s.U16(), int(s.U32())
		if err := s.Err(); err != nil {
			return nil, err
		}
		if int(index) >= featureCount {
			return nil, fmt.Errorf("substituted feature index %d out of range", index)
		}
		f, err := parseFeature(b, offset+off, lookupCount)
		if err != nil {
			return nil, err
		}
		subst[i] = FeatureSubstitution{FeatureIndex: index, Alternate: f}
	}
	return subst, s.Err()
}

// Match returns the index of the first record whose conditions hold at
// coords.
func (fv *FeatureVariations) Match(coords []NormalizedCoord) Option[int] {
	if fv == nil {
		return None[int]()
	}
	for i, rec := range fv.Records {
		if rec.matches(coords) {
			return Some(i)
		}
	}
	return None[int]()
}

func (rec FeatureVariationRecord) matches(coords []NormalizedCoord) bool {
	for _, c := range rec.Conditions {
		v := coordAt(coords, int(c.AxisIndex))
		if v < c.Min || v > c.Max {
			return false
		}
	}
	return true
}

// FeatureLookups returns the lookup indices of feature number i, taking
// feature variations at coords into account.
func (t *LayoutTable) FeatureLookups(i int, coords []NormalizedCoord) ([]uint16, bool) {
	f, ok := t.Features().Feature(i)
	if !ok {
		return nil, false
	}
	fv := t.FeatureVariations()
	if k, ok := fv.Match(coords).Unwrap(); ok {
		for _, subst := range fv.Records[k].Substitutions {
			if int(subst.FeatureIndex) == i {
				return subst.Alternate.LookupIndices, true
			}
		}
	}
	return f.LookupIndices, true
}
