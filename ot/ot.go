package ot

import (
	"sort"
)

// Font represents the internal structure of an OpenType font.
// It is a read-only view over the font's binary data, which must stay unchanged
// while the Font is in use. A Font is safe for concurrent use by multiple goroutines.
//
// Tables required for glyph lookup, metrics and outlines are available as typed
// fields. They are nil if the font does not contain the table (or, for optional
// tables, if the table was broken and has been dropped; see Errors).
type Font struct {
	Header        *FontHeader
	data          binarySegm    // complete font data, table offsets are relative to it
	directory     []TableRecord // sorted by tag
	tables        []Table       // parallel to directory
	outlines      OutlineFormat // outline source, selected at parse time
	Head          *HeadTable    // head table is mandatory
	MaxP          *MaxPTable    // maxp table is mandatory
	CMap          *CMapTable    // typed access to cmap
	HHea          *HHeaTable    // typed access to hhea
	HMtx          *HMtxTable    // typed access to hmtx
	VHea          *HHeaTable    // typed access to vhea; shares the layout of hhea
	VMtx          *HMtxTable    // typed access to vmtx; shares the layout of hmtx
	OS2           *OS2Table     // typed access to OS/2
	Loca          *LocaTable    // typed access to loca
	Glyf          *GlyfTable    // typed access to glyf
	CFF           *CFFTable     // typed access to CFF
	Post          *PostTable    // typed access to post
	Name          *NameTable    // typed access to name
	parseErrors   []FontError   // Errors accumulated during parsing
	parseWarnings []FontWarning // Warnings accumulated during parsing
	Variations    struct {      // OpenType font variation tables
		FVar *FVarTable // axes and named instances
		AVar *AVarTable // axis value remapping
		GVar *GVarTable // glyph outline variations
		HVar *HVarTable // horizontal metrics variations
	}
	Layout struct { // OpenType core layout tables
		GSub *LayoutTable // OpenType layout GSUB
		GPos *LayoutTable // OpenType layout GPOS
	}
}

// FontHeader is a directory of the top-level tables in a font. If the font file
// contains only one font, the table directory will begin at byte 0 of the file.
// If the font file is an OpenType Font Collection file, the beginning
// point of the table directory for each font is indicated in the TTCHeader.
//
// OpenType fonts that contain TrueType outlines should use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2) should
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
// The Apple specification for TrueType fonts allows for 'true' and 'typ1',
// but these version tags should not be used for OpenType fonts.
type FontHeader struct {
	FontType   uint32
	TableCount uint16
	Offset     uint32 // offset of the table directory within the font data
	FaceIndex  int    // index of this face within a collection, 0 otherwise
}

// TableRecord is an entry of the table directory.
// Offset and Length have been validated against the font data.
type TableRecord struct {
	Tag      Tag
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// OutlineFormat identifies the source of glyph outlines of a font.
type OutlineFormat int

const (
	OutlineNone OutlineFormat = iota // font has no supported outlines
	OutlineGlyf                      // TrueType quadratic outlines (glyf + loca)
	OutlineCFF                       // PostScript cubic outlines (CFF)
)

func (f OutlineFormat) String() string {
	switch f {
	case OutlineGlyf:
		return "glyf"
	case OutlineCFF:
		return "CFF"
	}
	return "none"
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
//
// `Table` will return at least a generic table type for each table contained in
// the font, i.e. no table information will be dropped, except for optional
// tables which were found to be corrupt.
//
// For example to receive the `OS/2` and the `loca` table, clients may call
//
//	os2  := otf.Table(ot.T("OS/2"))
//	loca := otf.Table(ot.T("loca")).Self().AsLoca()
//
// Table tag names are case-sensitive, following the names in the OpenType specification.
func (otf *Font) Table(tag Tag) Table {
	if otf == nil {
		return nil
	}
	if i, ok := otf.lookup(tag); ok {
		return otf.tables[i]
	}
	return nil
}

// self returns a reference to the table for tag. For tables not contained
// in the font, an empty reference is returned, which converts to nil tables.
func (otf *Font) self(tag Tag) TableSelf {
	if t := otf.Table(tag); t != nil {
		return t.Self()
	}
	return TableSelf{}
}

// HasTable reports whether the font contains a usable table with the given tag.
func (otf *Font) HasTable(tag Tag) bool {
	return otf.Table(tag) != nil
}

// lookup performs a binary search on the sorted table directory.
func (otf *Font) lookup(tag Tag) (int, bool) {
	i := sort.Search(len(otf.directory), func(i int) bool {
		return otf.directory[i].Tag >= tag
	})
	if i < len(otf.directory) && otf.directory[i].Tag == tag && otf.tables[i] != nil {
		return i, true
	}
	return 0, false
}

// TableTags returns a list of tags, one for each usable table contained in the font,
// in ascending order.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.directory))
	for i, rec := range otf.directory {
		if otf.tables[i] != nil {
			tags = append(tags, rec.Tag)
		}
	}
	return tags
}

// TableRecords returns a copy of the (sorted) table directory, including records
// of tables which have been dropped because of errors.
func (otf *Font) TableRecords() []TableRecord {
	recs := make([]TableRecord, len(otf.directory))
	copy(recs, otf.directory)
	return recs
}

// VerifyChecksum calculates the checksum of table tag and compares it to the
// checksum given in the table directory. The checksum of table 'head' is
// calculated with field checkSumAdjustment set to zero.
func (otf *Font) VerifyChecksum(tag Tag) (bool, error) {
	i := sort.Search(len(otf.directory), func(i int) bool {
		return otf.directory[i].Tag >= tag
	})
	if i >= len(otf.directory) || otf.directory[i].Tag != tag {
		return false, malformed(tag, "Checksum", "no such table")
	}
	rec := otf.directory[i]
	b, err := otf.data.view(int(rec.Offset), int(rec.Length))
	if err != nil {
		return false, asMalformed(tag, "Checksum", err)
	}
	var sum uint32
	for j := 0; j < len(b); j += 4 {
		var word [4]byte
		copy(word[:], b[j:])
		if tag == T("head") && j == 8 {
			continue
		}
		sum += u32(word[:])
	}
	return sum == rec.Checksum, nil
}

// OutlineFormat returns the kind of glyph outlines the font provides.
func (otf *Font) OutlineFormat() OutlineFormat {
	return otf.outlines
}

// NumGlyphs returns the number of glyphs in the font, as stated in table 'maxp'.
func (otf *Font) NumGlyphs() int {
	if otf == nil || otf.MaxP == nil {
		return 0
	}
	return otf.MaxP.NumGlyphs
}

// HorizontalHeader returns the parsed hhea table, if present.
func (otf *Font) HorizontalHeader() *HHeaTable {
	if otf == nil {
		return nil
	}
	return otf.HHea
}

// HorizontalMetrics returns the parsed hmtx table, if present.
func (otf *Font) HorizontalMetrics() *HMtxTable {
	if otf == nil {
		return nil
	}
	return otf.HMtx
}

// OS2Metrics returns the parsed OS/2 table, if present.
func (otf *Font) OS2Metrics() *OS2Table {
	if otf == nil {
		return nil
	}
	return otf.OS2
}

// Errors returns all errors collected while parsing the font. As Parse fails
// on critical errors, these are errors of optional tables which have been dropped.
func (otf *Font) Errors() []FontError {
	if otf == nil {
		return nil
	}
	return otf.parseErrors
}

// Warnings returns all warnings collected while parsing the font.
func (otf *Font) Warnings() []FontWarning {
	if otf == nil {
		return nil
	}
	return otf.parseWarnings
}

// CriticalErrors returns all errors with critical severity.
func (otf *Font) CriticalErrors() []FontError {
	ec := errorCollector{errors: otf.Errors()}
	return ec.criticalErrors()
}

// HasCriticalErrors returns true if the font has critical errors.
func (otf *Font) HasCriticalErrors() bool {
	return len(otf.CriticalErrors()) > 0
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the spec as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// DFLT is the default script and language tag of layout tables.
var DFLT = T("DFLT")

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables
//
// Required Tables, according to the OpenType specification:
// 'cmap' (Character to glyph mapping), 'head' (Font header), 'hhea' (Horizontal header),
// 'hmtx' (Horizontal metrics), 'maxp' (Maximum profile), 'name' (Naming table),
// 'OS/2' (OS/2 and Windows specific metrics), 'post' (PostScript information).
//
// For TrueType outline fonts: 'glyf' (Glyph data), 'loca' (Index to location).
// For OpenType fonts based on CFF outlines: 'CFF ' (Compact Font Format 1.0).
//
// Variable fonts: 'fvar', 'avar', 'gvar', 'HVAR'.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treatet as read-only by clients
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{}
	t.tableBase = makeBase(tag, b, offset, size, t)
	return t
}

type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   any
}

func makeBase(tag Tag, b binarySegm, offset, size uint32, self any) tableBase {
	return tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
		self:   self,
	}
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treatet as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	if tself.tableBase == nil {
		return 0
	}
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return TableSelf{}
	}
	return tself.tableBase.self
}

func as[T any](tself TableSelf) T {
	t, _ := safeSelf(tself).(T)
	return t
}

// AsCMap returns this table as a cmap table, or nil.
func (tself TableSelf) AsCMap() *CMapTable { return as[*CMapTable](tself) }

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable { return as[*HeadTable](tself) }

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable { return as[*MaxPTable](tself) }

// AsHHea returns this table as a hhea or vhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable { return as[*HHeaTable](tself) }

// AsHMtx returns this table as a hmtx or vmtx table, or nil.
func (tself TableSelf) AsHMtx() *HMtxTable { return as[*HMtxTable](tself) }

// AsOS2 returns this table as an OS/2 table, or nil.
func (tself TableSelf) AsOS2() *OS2Table { return as[*OS2Table](tself) }

// AsLoca returns this table as a loca table, or nil.
func (tself TableSelf) AsLoca() *LocaTable { return as[*LocaTable](tself) }

// AsGlyf returns this table as a glyf table, or nil.
func (tself TableSelf) AsGlyf() *GlyfTable { return as[*GlyfTable](tself) }

// AsCFF returns this table as a CFF table, or nil.
func (tself TableSelf) AsCFF() *CFFTable { return as[*CFFTable](tself) }

// AsPost returns this table as a post table, or nil.
func (tself TableSelf) AsPost() *PostTable { return as[*PostTable](tself) }

// AsName returns this table as a name table, or nil.
func (tself TableSelf) AsName() *NameTable { return as[*NameTable](tself) }

// AsFVar returns this table as a fvar table, or nil.
func (tself TableSelf) AsFVar() *FVarTable { return as[*FVarTable](tself) }

// AsAVar returns this table as an avar table, or nil.
func (tself TableSelf) AsAVar() *AVarTable { return as[*AVarTable](tself) }

// AsGVar returns this table as a gvar table, or nil.
func (tself TableSelf) AsGVar() *GVarTable { return as[*GVarTable](tself) }

// AsHVar returns this table as a HVAR table, or nil.
func (tself TableSelf) AsHVar() *HVarTable { return as[*HVarTable](tself) }

// AsLayout returns this table as a GSUB or GPOS table, or nil.
func (tself TableSelf) AsLayout() *LayoutTable { return as[*LayoutTable](tself) }

// --- Head table ------------------------------------------------------------

// HeadTable gives global information about the font.
type HeadTable struct {
	tableBase
	Flags            uint16 // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	XMin, YMin       int16  // bounding box for all glyphs
	XMax, YMax       int16
	MacStyle         uint16
	IndexToLocFormat uint16 // needed to interpret loca table
}

// --- MaxP table ------------------------------------------------------------

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

// --- HHea table ------------------------------------------------------------

// HHeaTable contains information for horizontal layout. Table 'vhea' has the
// same layout and is represented by this type as well, with Ascender and Descender
// holding vertTypoAscender and vertTypoDescender.
type HHeaTable struct {
	tableBase
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	NumberOfHMetrics    int
}

// --- OS/2 table ------------------------------------------------------------

// OS2Table contains a subset of metrics from table 'OS/2'.
type OS2Table struct {
	tableBase
	Version       uint16
	XAvgCharWidth int16
	WeightClass   uint16
	WidthClass    uint16
	FsType        uint16
	FsSelection   uint16
	TypoAscender  int16
	TypoDescender int16
	TypoLineGap   int16
	WinAscent     uint16
	WinDescent    uint16
	XHeight       int16 // version 2 and up
	CapHeight     int16 // version 2 and up
}

// --- HMtx table ------------------------------------------------------------

// HMtxTable contains metric information for the horizontal layout each of the glyphs in
// the font. Each element in the contained hMetrics-array has two parts: the advance width
// and left side bearing. The value NumberOfHMetrics is taken from the `hhea` table. In
// a monospaced font, only one entry is required but that entry may not be omitted.
// Optionally, an array of left side bearings follows.
// The corresponding glyphs are assumed to have the same
// advance width as that found in the last entry in the hMetrics array.
//
// Table 'vmtx' has the same structure (advance height and top side bearing) and is
// represented by this type as well.
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
	numGlyphs        int
	lsbCount         int // number of trailing side bearings actually present
}

// HMetricRecord is one long horizontal metric record from table hmtx.
type HMetricRecord struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

// link checks the table against the number of glyphs and the number of long
// metrics records. Long metric records must be present in full. Some malformed
// fonts skip trailing side bearings even when they are expected; these are
// tolerated and reported as unavailable.
func (t *HMtxTable) link(numGlyphs, numberOfHMetrics int, ec *errorCollector) error {
	if numberOfHMetrics <= 0 || numberOfHMetrics > numGlyphs {
		return malformed(t.name, "NumberOfMetrics",
			"invalid number of long metrics %d (numGlyphs=%d)", numberOfHMetrics, numGlyphs)
	}
	required, err := checkedMul(numberOfHMetrics, 4)
	if err != nil || required > len(t.data) {
		return malformed(t.name, "Size",
			"table size %d insufficient for %d long metrics", len(t.data), numberOfHMetrics)
	}
	t.lsbCount = numGlyphs - numberOfHMetrics
	if avail := (len(t.data) - required) / 2; avail < t.lsbCount {
		ec.addWarning(t.name, "trailing side bearings truncated", t.offset)
		t.lsbCount = avail
	}
	t.NumberOfHMetrics = numberOfHMetrics
	t.numGlyphs = numGlyphs
	return nil
}

// LongMetrics returns all long metrics records.
func (t *HMtxTable) LongMetrics() []HMetricRecord {
	if t == nil || t.NumberOfHMetrics == 0 {
		return nil
	}
	metrics := make([]HMetricRecord, t.NumberOfHMetrics)
	for i := range metrics {
		metrics[i].AdvanceWidth, _ = t.data.u16(i * 4)
		metrics[i].LeftSideBearing, _ = t.data.i16(i*4 + 2)
	}
	return metrics
}

// GlyphCount returns the glyph count used when decoding this hmtx table.
func (t *HMtxTable) GlyphCount() int {
	if t == nil {
		return 0
	}
	return t.numGlyphs
}

// HMetrics returns the advance width and left side bearing for a glyph.
// Glyphs at or beyond NumberOfHMetrics take the advance of the last long metric
// record and their side bearing from the trailing array. ok is false if g is
// not a glyph of the font. If the side bearing of g is missing from a truncated
// table, the advance is returned with ok set and a side bearing of 0.
func (t *HMtxTable) HMetrics(g GlyphIndex) (advance uint16, bearing int16, ok bool) {
	if t == nil || t.NumberOfHMetrics == 0 || int(g) >= t.numGlyphs {
		return 0, 0, false
	}
	if int(g) < t.NumberOfHMetrics {
		advance, _ = t.data.u16(int(g) * 4)
		bearing, _ = t.data.i16(int(g)*4 + 2)
		return advance, bearing, true
	}
	advance, _ = t.data.u16((t.NumberOfHMetrics - 1) * 4)
	if i := int(g) - t.NumberOfHMetrics; i < t.lsbCount {
		bearing, _ = t.data.i16(t.NumberOfHMetrics*4 + i*2)
	}
	return advance, bearing, true
}

// SideBearing returns the side bearing of glyph g. ok is false if the bearing
// is not available, e.g. due to a truncated table.
func (t *HMtxTable) SideBearing(g GlyphIndex) (int16, bool) {
	if t == nil || int(g) >= t.numGlyphs {
		return 0, false
	}
	if int(g) >= t.NumberOfHMetrics && int(g)-t.NumberOfHMetrics >= t.lsbCount {
		return 0, false
	}
	_, b, ok := t.HMetrics(g)
	return b, ok
}

// --- Loca table ------------------------------------------------------------

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
// By definition, index zero points to the “missing character”, which is the character
// that appears if a character is not found in the font. The missing character is
// commonly represented by a blank box or a space.
type LocaTable struct {
	tableBase
	inx2loc func(t *LocaTable, i int) (uint32, error) // returns location number i
	locCnt  int                                       // number of locations = numGlyphs+1
}

// GlyphRange returns the byte range of glyph gid within table glyf.
// If start == end, the glyph has no outline.
func (t *LocaTable) GlyphRange(gid GlyphIndex) (start, end uint32, err error) {
	if t == nil || int(gid)+1 >= t.locCnt {
		return 0, 0, malformed(T("loca"), "Index", "glyph %d not in loca table", gid)
	}
	if start, err = t.inx2loc(t, int(gid)); err != nil {
		return 0, 0, asMalformed(t.name, "Offsets", err)
	}
	if end, err = t.inx2loc(t, int(gid)+1); err != nil {
		return 0, 0, asMalformed(t.name, "Offsets", err)
	}
	if start > end {
		return 0, 0, malformed(t.name, "Offsets", "glyph %d has negative length", gid)
	}
	return start, end, nil
}

// IndexToLocation returns the offset of glyph gid within table glyf.
// In case of error it links to the 'missing character' at location 0.
func (t *LocaTable) IndexToLocation(gid GlyphIndex) uint32 {
	if t == nil || int(gid) >= t.locCnt {
		return 0
	}
	loc, err := t.inx2loc(t, int(gid))
	if err != nil {
		return 0
	}
	return loc
}

func shortLocaVersion(t *LocaTable, i int) (uint32, error) {
	loc, err := t.data.u16(i * 2)
	return uint32(loc) * 2, err
}

func longLocaVersion(t *LocaTable, i int) (uint32, error) {
	return t.data.u32(i * 4)
}
