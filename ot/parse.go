package ot

import (
	"fmt"
	"sort"
)

// Code comment often will cite passage from the
// OpenType specification version 1.9;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Maximum reasonable counts and depths for OpenType structures.
// These limits prevent malicious fonts from claiming unreasonably large counts
// or nesting levels that could lead to excessive work or memory allocation.
const (
	MaxGlyphCount      = 65536 // Maximum glyph count (uint16 glyph IDs)
	MaxComponentDepth  = 8     // Maximum nesting of composite glyphs
	MaxCallDepth       = 10    // Maximum nesting of CFF subroutine calls
	MaxOutlineCommands = 65535 // Maximum number of path commands for a single glyph
	MaxScriptCount     = 200   // Scripts in a layout table
	MaxFeatureCount    = 2000  // Features in a layout table
	MaxLookupCount     = 5000  // Lookups in a layout table
	MaxAxisCount       = 64    // Variation axes
)

const (
	sfntTrueType   = 0x00010000
	sfntOpenType   = 0x4f54544f // OTTO
	sfntAppleTrue  = 0x74727565 // true
	sfntCollection = 0x74746366 // ttcf
)

// coreTables are the tables whose corruption makes a font unusable.
// Corrupt tables not in this list are dropped and recorded as errors.
var coreTables = map[Tag]bool{
	T("head"): true, T("maxp"): true, T("cmap"): true, T("hhea"): true,
	T("hmtx"): true, T("loca"): true, T("glyf"): true, T("CFF "): true,
}

// ---------------------------------------------------------------------------

// Parse parses an OpenType font from a byte slice.
// An ot.Font needs ongoing access to the fonts byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
//
// If font is a font collection, the first face of the collection is parsed.
func Parse(font []byte) (*Font, error) {
	return ParseCollection(font, 0)
}

// ParseCollection parses face number index from font data. If font is a
// single font (not a collection), index must be 0.
//
// Errors returned will either be of class ErrMalformedFont or ErrFaceIndexOutOfRange.
func ParseCollection(font []byte, index int) (*Font, error) {
	src := binarySegm(font)
	offsets, err := faceOffsets(src)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(offsets) {
		return nil, fmt.Errorf("%w: face %d requested, font has %d", ErrFaceIndexOutOfRange,
			index, len(offsets))
	}
	otf, err := parseFace(src, offsets[index])
	if err != nil {
		return nil, err
	}
	otf.Header.FaceIndex = index
	return otf, nil
}

// NumFaces returns the number of faces contained in font data: 1 for a plain
// font, numFonts for a font collection.
func NumFaces(font []byte) (int, error) {
	offsets, err := faceOffsets(font)
	if err != nil {
		return 0, err
	}
	return len(offsets), nil
}

// faceOffsets returns the offsets of all table directories within font data.
func faceOffsets(src binarySegm) ([]uint32, error) {
	magic, err := src.u32(0)
	if err != nil {
		return nil, malformed(0, "Header", "font data too short")
	}
	if magic != sfntCollection {
		return []uint32{0}, nil
	}
	// TTC Header: ttcTag, majorVersion, minorVersion, numFonts, tableDirectoryOffsets[numFonts]
	s := NewStream(src)
	s.Skip(4)
	major := s.U16()
	s.Skip(2)
	n := int(s.U32())
	if s.Err() != nil {
		return nil, malformed(T("ttcf"), "Header", "collection header truncated")
	}
	if major != 1 && major != 2 {
		return nil, malformed(T("ttcf"), "Header", "unsupported collection version %d", major)
	}
	if end, err := rangeEnd(12, n, 4); err != nil || end > len(src) {
		return nil, malformed(T("ttcf"), "Header", "implausible number of faces: %d", n)
	}
	if n == 0 {
		return nil, malformed(T("ttcf"), "Header", "collection without faces")
	}
	offsets := make([]uint32, n)
	for i := range offsets {
		offsets[i] = s.U32()
	}
	tracer().Debugf("font collection with %d faces", n)
	return offsets, nil
}

// parseFace parses the table directory at offset and decodes the tables it
// references.
func parseFace(src binarySegm, offset uint32) (*Font, error) {
	ec := &errorCollector{}
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	s := newStreamAt(src, int(offset))
	h := FontHeader{Offset: offset}
	h.FontType = s.U32()
	h.TableCount = s.U16()
	s.Skip(6) // searchRange, entrySelector, rangeShift
	if s.Err() != nil {
		return nil, ec.fail(0, "Header", fmt.Errorf("table directory truncated"))
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	if !(h.FontType == sfntOpenType ||
		h.FontType == sfntTrueType ||
		h.FontType == sfntAppleTrue) {
		return nil, ec.fail(0, "Header", fmt.Errorf("font type not supported: %x", h.FontType))
	}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	end, err := rangeEnd(int(offset)+12, int(h.TableCount), 16)
	if err != nil || end > len(src) {
		return nil, ec.fail(0, "TableRecords", fmt.Errorf("%d table records exceed font size %d",
			h.TableCount, len(src)))
	}
	otf := &Font{Header: &h, data: src}
	if otf.directory, err = readDirectory(s, src, int(h.TableCount), ec); err != nil {
		return nil, err
	}
	if err = checkOverlaps(otf.directory, ec); err != nil {
		return nil, err
	}
	otf.tables = make([]Table, len(otf.directory))
	for i, rec := range otf.directory {
		b := src[rec.Offset : rec.Offset+rec.Length]
		t, err := parseTable(rec.Tag, b, rec.Offset, rec.Length, ec)
		if err != nil {
			if coreTables[rec.Tag] {
				return nil, ec.fail(rec.Tag, "Table", err)
			}
			ec.drop(rec.Tag, err)
			continue
		}
		otf.tables[i] = t
	}
	if err = linkTables(otf, ec); err != nil {
		return nil, err
	}
	// Transfer accumulated errors and warnings to the Font
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	return otf, nil
}

// readDirectory reads the table records from s, validates their bounds and
// returns them sorted by tag.
func readDirectory(s *Stream, src binarySegm, n int, ec *errorCollector) ([]TableRecord, error) {
	recs := make([]TableRecord, n)
	sorted := true
	for i := range recs {
		rec := TableRecord{Tag: s.Tag(), Checksum: s.U32(), Offset: s.U32(), Length: s.U32()}
		if s.Err() != nil {
			return nil, ec.fail(0, "TableRecords", s.Err())
		}
		// ignore checksums, but "all tables must begin on four byte boundries".
		if rec.Offset&3 != 0 {
			ec.addWarning(rec.Tag, "table does not start on a four byte boundary", rec.Offset)
		}
		tableEnd, err := checkedAdd(rec.Offset, rec.Length)
		if err != nil {
			return nil, ec.fail(rec.Tag, "Size", fmt.Errorf("size calculation overflow: %w", err))
		}
		if tableEnd > uint32(len(src)) {
			return nil, ec.fail(rec.Tag, "Bounds", fmt.Errorf("bounds [%d:%d] exceed font size %d",
				rec.Offset, tableEnd, len(src)))
		}
		if i > 0 && rec.Tag < recs[i-1].Tag {
			sorted = false
		}
		recs[i] = rec
	}
	if !sorted {
		// Lookup relies on binary search, so we sort a copy instead of failing.
		tracer().Infof("table directory is not sorted")
		ec.addWarning(0, "table directory not sorted by tag", 12)
		sort.Slice(recs, func(i, j int) bool { return recs[i].Tag < recs[j].Tag })
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Tag == recs[i-1].Tag {
			return nil, ec.fail(recs[i].Tag, "TableRecords", fmt.Errorf("duplicate table"))
		}
	}
	return recs, nil
}

// checkOverlaps verifies that core tables do not overlap each other. Overlaps
// involving other tables are tolerated, as some font tools share data between
// tables.
func checkOverlaps(recs []TableRecord, ec *errorCollector) error {
	byOffset := make([]TableRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.Length > 0 {
			byOffset = append(byOffset, rec)
		}
	}
	sort.Slice(byOffset, func(i, j int) bool { return byOffset[i].Offset < byOffset[j].Offset })
	for i := 1; i < len(byOffset); i++ {
		prev, rec := byOffset[i-1], byOffset[i]
		if prev.Offset+prev.Length <= rec.Offset {
			continue
		}
		if coreTables[prev.Tag] && coreTables[rec.Tag] {
			return ec.fail(rec.Tag, "Bounds", fmt.Errorf("table overlaps table %s", prev.Tag))
		}
		ec.addWarning(rec.Tag, fmt.Sprintf("table overlaps table %s", prev.Tag), rec.Offset)
	}
	return nil
}

func parseTable(t Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	switch t {
	case T("avar"):
		return parseAVar(t, b, offset, size, ec)
	case T("CFF "):
		return parseCFF(t, b, offset, size, ec)
	case T("cmap"):
		return parseCMap(t, b, offset, size, ec)
	case T("fvar"):
		return parseFVar(t, b, offset, size, ec)
	case T("glyf"):
		return parseGlyf(t, b, offset, size, ec)
	case T("GPOS"), T("GSUB"):
		return parseLayoutTable(t, b, offset, size, ec)
	case T("gvar"):
		return parseGVar(t, b, offset, size, ec)
	case T("head"):
		return parseHead(t, b, offset, size, ec)
	case T("hhea"), T("vhea"):
		return parseHHea(t, b, offset, size, ec)
	case T("hmtx"), T("vmtx"):
		return parseHMtx(t, b, offset, size, ec)
	case T("HVAR"):
		return parseHVar(t, b, offset, size, ec)
	case T("loca"):
		return parseLoca(t, b, offset, size, ec)
	case T("maxp"):
		return parseMaxP(t, b, offset, size, ec)
	case T("name"):
		return parseName(t, b, offset, size, ec)
	case T("OS/2"):
		return parseOS2(t, b, offset, size, ec)
	case T("post"):
		return parsePost(t, b, offset, size, ec)
	}
	tracer().Infof("font contains table (%s), will not be interpreted", t)
	return newTable(t, b, offset, size), nil
}

// --- Cross-table linking ---------------------------------------------------

// linkTables sets up the typed table fields of otf and performs cross-table
// validation. Tables depending on information of other tables (e.g. the
// number of glyphs) are completed here.
func linkTables(otf *Font, ec *errorCollector) error {
	otf.Head = otf.self(T("head")).AsHead()
	otf.MaxP = otf.self(T("maxp")).AsMaxP()
	if otf.Head == nil {
		return ec.fail(T("head"), "Missing", fmt.Errorf("required table head missing"))
	}
	if otf.MaxP == nil {
		return ec.fail(T("maxp"), "Missing", fmt.Errorf("required table maxp missing"))
	}
	numGlyphs := otf.MaxP.NumGlyphs
	//
	// metrics
	otf.HHea = otf.self(T("hhea")).AsHHea()
	otf.HMtx = otf.self(T("hmtx")).AsHMtx()
	if otf.HMtx != nil {
		if otf.HHea == nil {
			otf.drop(T("hmtx"), ec, fmt.Errorf("hmtx without hhea"))
			otf.HMtx = nil
		} else if err := otf.HMtx.link(numGlyphs, otf.HHea.NumberOfHMetrics, ec); err != nil {
			return ec.fail(T("hmtx"), "Size", err)
		}
	}
	otf.VHea = otf.self(T("vhea")).AsHHea()
	otf.VMtx = otf.self(T("vmtx")).AsHMtx()
	if otf.VMtx != nil {
		var err error
		if otf.VHea == nil {
			err = fmt.Errorf("vmtx without vhea")
		} else {
			err = otf.VMtx.link(numGlyphs, otf.VHea.NumberOfHMetrics, ec)
		}
		if err != nil {
			otf.drop(T("vmtx"), ec, err)
			otf.VMtx = nil
		}
	}
	otf.OS2 = otf.self(T("OS/2")).AsOS2()
	otf.Post = otf.self(T("post")).AsPost()
	otf.Name = otf.self(T("name")).AsName()
	//
	// outlines
	if err := linkOutlines(otf, numGlyphs, ec); err != nil {
		return err
	}
	//
	// character mapping
	if otf.CMap = otf.self(T("cmap")).AsCMap(); otf.CMap != nil {
		otf.CMap.link(numGlyphs)
	}
	if otf.Post != nil {
		otf.Post.link(numGlyphs, ec)
	}
	linkVariations(otf, ec)
	otf.Layout.GSub = otf.self(T("GSUB")).AsLayout()
	otf.Layout.GPos = otf.self(T("GPOS")).AsLayout()
	return nil
}

// linkOutlines selects the outline source of the font. TrueType outlines take
// precedence over CFF outlines.
func linkOutlines(otf *Font, numGlyphs int, ec *errorCollector) error {
	otf.Loca = otf.self(T("loca")).AsLoca()
	otf.Glyf = otf.self(T("glyf")).AsGlyf()
	otf.CFF = otf.self(T("CFF ")).AsCFF()
	if otf.Glyf != nil || otf.Loca != nil {
		if otf.Glyf == nil || otf.Loca == nil {
			return ec.fail(T("glyf"), "Missing", fmt.Errorf("tables glyf and loca must occur together"))
		}
		if err := otf.Loca.link(otf.Head.IndexToLocFormat, numGlyphs); err != nil {
			return ec.fail(T("loca"), "Size", err)
		}
		otf.outlines = OutlineGlyf
		return nil
	}
	if otf.CFF != nil {
		if err := otf.CFF.link(numGlyphs); err != nil {
			return ec.fail(T("CFF "), "CharStrings", err)
		}
		otf.outlines = OutlineCFF
		return nil
	}
	tracer().Infof("font has no supported outlines")
	return nil
}

// linkVariations sets up the variation tables. All of them depend on the axis
// count of table fvar; variation tables without fvar are dropped.
func linkVariations(otf *Font, ec *errorCollector) {
	fvar := otf.self(T("fvar")).AsFVar()
	otf.Variations.FVar = fvar
	axes := 0
	if fvar != nil {
		axes = len(fvar.Axes)
	}
	if avar := otf.self(T("avar")).AsAVar(); avar != nil {
		if len(avar.segmentMaps) != axes {
			otf.drop(T("avar"), ec, fmt.Errorf("axis count %d does not match fvar (%d)",
				len(avar.segmentMaps), axes))
		} else {
			otf.Variations.AVar = avar
		}
	}
	if gvar := otf.self(T("gvar")).AsGVar(); gvar != nil {
		if gvar.axisCount != axes {
			otf.drop(T("gvar"), ec, fmt.Errorf("axis count %d does not match fvar (%d)", gvar.axisCount, axes))
		} else if gvar.glyphCount != otf.MaxP.NumGlyphs {
			otf.drop(T("gvar"), ec, fmt.Errorf("glyph count %d does not match maxp (%d)",
				gvar.glyphCount, otf.MaxP.NumGlyphs))
		} else {
			otf.Variations.GVar = gvar
		}
	}
	if hvar := otf.self(T("HVAR")).AsHVar(); hvar != nil {
		if fvar == nil {
			otf.drop(T("HVAR"), ec, fmt.Errorf("HVAR without fvar"))
		} else {
			otf.Variations.HVar = hvar
		}
	}
}

// drop records a broken optional table and removes it from the font.
func (otf *Font) drop(tag Tag, ec *errorCollector, err error) {
	ec.drop(tag, err)
	if i, ok := otf.lookup(tag); ok {
		otf.tables[i] = nil
	}
}

// --- Head table ------------------------------------------------------------

const headMagic = 0x5f0f3cf5

func parseHead(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 54 {
		return nil, malformed(tag, "Size", "head table too small: %d bytes (need 54)", size)
	}
	t := &HeadTable{}
	t.tableBase = makeBase(tag, b, offset, size, t)
	s := NewStream(b)
	major := s.U16()
	s.Skip(2 + 4 + 4) // minorVersion, fontRevision, checkSumAdjustment
	magic := s.U32()
	t.Flags = s.U16()
	t.UnitsPerEm = s.U16()
	s.Skip(16) // created, modified
	t.XMin, t.YMin, t.XMax, t.YMax = s.I16(), s.I16(), s.I16(), s.I16()
	t.MacStyle = s.U16()
	s.Skip(4) // lowestRecPPEM, fontDirectionHint
	// IndexToLocFormat is needed to interpret the loca table:
	// 0 for short offsets, 1 for long
	t.IndexToLocFormat = s.U16()
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	if major != 1 {
		return nil, malformed(tag, "Version", "unsupported head version %d", major)
	}
	if magic != headMagic {
		return nil, malformed(tag, "Magic", "invalid magic number %#x", magic)
	}
	if t.UnitsPerEm < 16 || t.UnitsPerEm > 16384 {
		return nil, malformed(tag, "UnitsPerEm", "units per em out of range: %d", t.UnitsPerEm)
	}
	if t.IndexToLocFormat > 1 {
		return nil, malformed(tag, "IndexToLocFormat", "invalid value: %d (must be 0 or 1)",
			t.IndexToLocFormat)
	}
	return t, nil
}

// --- MaxP table ------------------------------------------------------------

// This table establishes the memory requirements for this font. Fonts with CFF data
// must use Version 0.5 of this table, specifying only the numGlyphs field. Fonts
// with TrueType outlines must use Version 1.0 of this table, where all data is required.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	s := NewStream(b)
	version := s.U32()
	n := s.U16()
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	if version != 0x00005000 && version != 0x00010000 {
		return nil, malformed(tag, "Version", "unsupported maxp version %#x", version)
	}
	if n == 0 {
		return nil, malformed(tag, "NumGlyphs", "font has no glyphs")
	}
	t := &MaxPTable{NumGlyphs: int(n)}
	t.tableBase = makeBase(tag, b, offset, size, t)
	return t, nil
}

// --- HHea table ------------------------------------------------------------

// parseHHea parses tables hhea and vhea, which share a common layout.
func parseHHea(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	tracer().Debugf("%s table has size %d", tag, size)
	if size < 36 {
		return nil, malformed(tag, "Size", "table too small: %d bytes (need 36)", size)
	}
	t := &HHeaTable{}
	t.tableBase = makeBase(tag, b, offset, size, t)
	s := NewStream(b)
	s.Skip(4) // version
	t.Ascender, t.Descender, t.LineGap = s.I16(), s.I16(), s.I16()
	t.AdvanceWidthMax = s.U16()
	t.MinLeftSideBearing, t.MinRightSideBearing, t.XMaxExtent = s.I16(), s.I16(), s.I16()
	t.CaretSlopeRise, t.CaretSlopeRun, t.CaretOffset = s.I16(), s.I16(), s.I16()
	s.SeekTo(34)
	t.NumberOfHMetrics = int(s.U16())
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	return t, nil
}

// --- HMtx table ------------------------------------------------------------

// Dependencies (taken from Apple Developer page about TrueType):
// The value of the numOfLongHorMetrics field is found in the 'hhea' (Horizontal Header)
// table. Fonts that lack an 'hhea' table must not have an 'hmtx' table.
// The table is validated in HMtxTable.link, as soon as the number of glyphs is known.
func parseHMtx(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := &HMtxTable{}
	t.tableBase = makeBase(tag, b, offset, size, t)
	return t, nil
}

// --- Loca table ------------------------------------------------------------

// Dependencies (taken from Apple Developer page about TrueType):
// The size of entries in the 'loca' table must be appropriate for the value of the
// indexToLocFormat field of the 'head' table. The number of entries must be the same
// as the numGlyphs field of the 'maxp' table.
func parseLoca(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := &LocaTable{inx2loc: shortLocaVersion}
	t.tableBase = makeBase(tag, b, offset, size, t)
	return t, nil
}

func (t *LocaTable) link(format uint16, numGlyphs int) error {
	entrySize := 2
	if format == 1 {
		t.inx2loc = longLocaVersion
		entrySize = 4
	}
	required, err := checkedMul(numGlyphs+1, entrySize)
	if err != nil || len(t.data) < required {
		return fmt.Errorf("loca table size (%d) insufficient for %d glyphs (need %d)",
			len(t.data), numGlyphs, required)
	}
	t.locCnt = numGlyphs + 1
	return nil
}

// --- OS/2 table ------------------------------------------------------------

func parseOS2(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := &OS2Table{}
	t.tableBase = makeBase(tag, b, offset, size, t)
	s := NewStream(b)
	t.Version = s.U16()
	t.XAvgCharWidth = s.I16()
	t.WeightClass, t.WidthClass, t.FsType = s.U16(), s.U16(), s.U16()
	s.SeekTo(62)
	t.FsSelection = s.U16()
	s.Skip(4) // usFirstCharIndex, usLastCharIndex
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	// Early Apple fonts end the table here.
	if s.Remaining() >= 10 {
		t.TypoAscender, t.TypoDescender, t.TypoLineGap = s.I16(), s.I16(), s.I16()
		t.WinAscent, t.WinDescent = s.U16(), s.U16()
	}
	if t.Version >= 2 {
		s.SeekTo(86)
		t.XHeight, t.CapHeight = s.I16(), s.I16()
		if err := s.Err(); err != nil {
			return nil, asMalformed(tag, "Version2", err)
		}
	}
	return t, nil
}
