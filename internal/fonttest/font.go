/*
Package fonttest builds synthetic SFNT fonts for tests.

Fonts are assembled from raw table data. Helpers exist for the tables a
parser needs to get to glyph lookup, metrics and outlines:

	f := fonttest.New().
		Set("head", fonttest.Head(1000, false)).
		Set("maxp", fonttest.MaxP(2))
	data := f.Bytes()

The output is not meant to be a fully conforming font (e.g., checksums are
computed but head.checkSumAdjustment is not), just one which exercises the
decoders.
*/
package fonttest

import (
	"sort"
)

const (
	VersionTrueType = 0x00010000
	VersionOpenType = 0x4f54544f // OTTO
)

// Font is a collection of tables, serialized as an SFNT container by Bytes.
type Font struct {
	Version uint32
	tables  map[string][]byte
}

// New creates an empty TrueType font.
func New() *Font {
	return &Font{Version: VersionTrueType, tables: make(map[string][]byte)}
}

// Set adds or replaces table tag.
func (f *Font) Set(tag string, data []byte) *Font {
	for len(tag) < 4 {
		tag += " "
	}
	f.tables[tag] = data
	return f
}

// Delete removes table tag.
func (f *Font) Delete(tag string) *Font {
	for len(tag) < 4 {
		tag += " "
	}
	delete(f.tables, tag)
	return f
}

// Table returns the data of table tag.
func (f *Font) Table(tag string) []byte {
	for len(tag) < 4 {
		tag += " "
	}
	return f.tables[tag]
}

// Clone returns a copy of f. Table data is shared.
func (f *Font) Clone() *Font {
	c := &Font{Version: f.Version, tables: make(map[string][]byte, len(f.tables))}
	for tag, data := range f.tables {
		c.tables[tag] = data
	}
	return c
}

// Bytes serializes the font.
func (f *Font) Bytes() []byte {
	return f.build(0)
}

func (f *Font) tags() []string {
	tags := make([]string, 0, len(f.tables))
	for tag := range f.tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// build serializes the font with all table offsets shifted by base, for
// embedding the face into a collection at position base.
func (f *Font) build(base int) []byte {
	tags := f.tags()
	n := len(tags)
	var b Buffer
	entrySelector := 0
	for 1<<(entrySelector+1) <= n {
		entrySelector++
	}
	searchRange := (1 << entrySelector) * 16
	b.U32(f.Version)
	b.U16(uint16(n), uint16(searchRange), uint16(entrySelector), uint16(n*16-searchRange))
	offset := 12 + 16*n
	var body Buffer
	for _, tag := range tags {
		data := f.tables[tag]
		b.Tag(tag)
		b.U32(Checksum(data), uint32(base+offset+body.Len()), uint32(len(data)))
		body.Bytes(data)
		body.Pad(4)
	}
	return append(b, body...)
}

// Checksum calculates the table checksum of data.
func Checksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		var word [4]byte
		copy(word[:], data[i:])
		sum += uint32(word[0])<<24 | uint32(word[1])<<16 | uint32(word[2])<<8 | uint32(word[3])
	}
	return sum
}

// Collection serializes faces as a TrueType collection, version 1.
func Collection(faces ...*Font) []byte {
	var b Buffer
	b.Tag("ttcf").U16(1, 0).U32(uint32(len(faces)))
	offset := 12 + 4*len(faces)
	var body []byte
	for _, f := range faces {
		b.U32(uint32(offset + len(body)))
		face := f.build(offset + len(body))
		body = append(body, face...)
	}
	return append(b, body...)
}

// --- Core tables -----------------------------------------------------------

// HeadMagic is the magic number of table head.
const HeadMagic = 0x5f0f3cf5

// Head creates table head. longLoca selects 32-bit loca offsets.
func Head(unitsPerEm uint16, longLoca bool) []byte {
	var b Buffer
	b.U16(1, 0)         // version
	b.Fixed(1)          // fontRevision
	b.U32(0, HeadMagic) // checkSumAdjustment, magicNumber
	b.U16(0x000b)       // flags
	b.U16(unitsPerEm)
	b.U32(0, 0, 0, 0) // created, modified
	b.I16(0, -200, 1000, 800)
	b.U16(0, 8) // macStyle, lowestRecPPEM
	b.I16(2)    // fontDirectionHint
	if longLoca {
		b.I16(1)
	} else {
		b.I16(0)
	}
	b.I16(0) // glyphDataFormat
	return b
}

// MaxP creates table maxp, version 0.5.
func MaxP(numGlyphs int) []byte {
	var b Buffer
	b.U32(0x00005000).U16(uint16(numGlyphs))
	return b
}

// HHea creates table hhea (or vhea) with numberOfHMetrics long metrics.
func HHea(numberOfHMetrics int) []byte {
	var b Buffer
	b.U16(1, 0)
	b.I16(800, -200, 90) // ascender, descender, lineGap
	b.U16(1000)          // advanceWidthMax
	b.I16(0, 0, 1000)    // minLeftSideBearing, minRightSideBearing, xMaxExtent
	b.I16(1, 0, 0)       // caretSlopeRise, caretSlopeRun, caretOffset
	b.I16(0, 0, 0, 0, 0) // reserved, metricDataFormat
	b.U16(uint16(numberOfHMetrics))
	return b
}

// Metric is a long metric record of table hmtx.
type Metric struct {
	Advance uint16
	Bearing int16
}

// HMtx creates table hmtx (or vmtx) from long metric records, followed by
// the side bearings of the remaining glyphs.
func HMtx(metrics []Metric, bearings ...int16) []byte {
	var b Buffer
	for _, m := range metrics {
		b.U16(m.Advance).I16(m.Bearing)
	}
	b.I16(bearings...)
	return b
}

// OS2 creates table OS/2, version 4.
func OS2(weight uint16, xHeight, capHeight int16) []byte {
	var b Buffer
	b.U16(4)
	b.I16(500)                  // xAvgCharWidth
	b.U16(weight, 5, 0)         // usWeightClass, usWidthClass, fsType
	b.Bytes(make([]byte, 2*10)) // subscript, superscript, strikeout
	b.I16(0)                    // sFamilyClass
	b.Bytes(make([]byte, 10))   // panose
	b.U32(0, 0, 0, 0)           // ulUnicodeRange
	b.Tag("TEST")               // achVendID
	b.U16(0x0040, 0x20, 0xffff) // fsSelection, usFirstCharIndex, usLastCharIndex
	b.I16(800, -200, 90)        // sTypoAscender, sTypoDescender, sTypoLineGap
	b.U16(1000, 200)            // usWinAscent, usWinDescent
	b.U32(1, 0)                 // ulCodePageRange
	b.I16(xHeight, capHeight)
	b.U16(0, 0x20, 0) // usDefaultChar, usBreakChar, usMaxContext
	return b
}

// Post creates table post, version 2.0, with names for glyphs. Standard
// Macintosh names are referenced by index, all others are stored as Pascal
// strings.
func Post(names ...string) []byte {
	var b Buffer
	b.U32(0x00020000)
	b.Fixed(0)
	b.I16(-100, 50)
	b.U32(0, 0, 0, 0, 0)
	b.U16(uint16(len(names)))
	var custom Buffer
	k := 0
	for _, name := range names {
		if i, ok := macIndex[name]; ok {
			b.U16(uint16(i))
			continue
		}
		b.U16(uint16(258 + k))
		custom.U8(uint8(len(name))).Bytes([]byte(name))
		k++
	}
	return append(b, custom...)
}

var macIndex = map[string]int{".notdef": 0, ".null": 1, "space": 3, "A": 36, "B": 37, "a": 68}

// Name creates table name, format 0, with Windows Unicode BMP records.
func Name(names map[uint16]string) []byte {
	ids := make([]int, 0, len(names))
	for id := range names {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	var b, strs Buffer
	b.U16(0, uint16(len(ids)), uint16(6+12*len(ids)))
	for _, id := range ids {
		var s Buffer
		for _, r := range names[uint16(id)] {
			s.U16(uint16(r))
		}
		b.U16(3, 1, 0x409, uint16(id), uint16(len(s)), uint16(len(strs)))
		strs = append(strs, s...)
	}
	return append(b, strs...)
}
