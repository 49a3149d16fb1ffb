package ot

import (
	"fmt"
)

// PostTable contains additional information needed to use TrueType or OpenType
// fonts on PostScript printers, most notably the names of glyphs.
type PostTable struct {
	tableBase
	Version            uint32
	ItalicAngle        float32 // in counter-clockwise degrees from the vertical
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       bool
	nameIndex          binarySegm // format 2: glyphNameIndex[numGlyphs]
	names              []int      // format 2: start offsets of custom names in strings
	strings            binarySegm // format 2: Pascal strings
	numGlyphs          int
}

// macGlyphNames contains the 258 standard glyph names of the Macintosh character set,
// used by post table formats 1.0 and 2.0.
var macGlyphNames = [258]string{
	".notdef", ".null", "nonmarkingreturn", "space", "exclam",
	"quotedbl", "numbersign", "dollar", "percent", "ampersand",
	"quotesingle", "parenleft", "parenright", "asterisk", "plus",
	"comma", "hyphen", "period", "slash", "zero",
	"one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "colon",
	"semicolon", "less", "equal", "greater", "question",
	"at", "A", "B", "C", "D",
	"E", "F", "G", "H", "I",
	"J", "K", "L", "M", "N",
	"O", "P", "Q", "R", "S",
	"T", "U", "V", "W", "X",
	"Y", "Z", "bracketleft", "backslash", "bracketright",
	"asciicircum", "underscore", "grave", "a", "b",
	"c", "d", "e", "f", "g",
	"h", "i", "j", "k", "l",
	"m", "n", "o", "p", "q",
	"r", "s", "t", "u", "v",
	"w", "x", "y", "z", "braceleft",
	"bar", "braceright", "asciitilde", "Adieresis", "Aring",
	"Ccedilla", "Eacute", "Ntilde", "Odieresis", "Udieresis",
	"aacute", "agrave", "acircumflex", "adieresis", "atilde",
	"aring", "ccedilla", "eacute", "egrave", "ecircumflex",
	"edieresis", "iacute", "igrave", "icircumflex", "idieresis",
	"ntilde", "oacute", "ograve", "ocircumflex", "odieresis",
	"otilde", "uacute", "ugrave", "ucircumflex", "udieresis",
	"dagger", "degree", "cent", "sterling", "section",
	"bullet", "paragraph", "germandbls", "registered", "copyright",
	"trademark", "acute", "dieresis", "notequal", "AE",
	"Oslash", "infinity", "plusminus", "lessequal", "greaterequal",
	"yen", "mu", "partialdiff", "summation", "product",
	"pi", "integral", "ordfeminine", "ordmasculine", "Omega",
	"ae", "oslash", "questiondown", "exclamdown", "logicalnot",
	"radical", "florin", "approxequal", "Delta", "guillemotleft",
	"guillemotright", "ellipsis", "nonbreakingspace", "Agrave", "Atilde",
	"Otilde", "OE", "oe", "endash", "emdash",
	"quotedblleft", "quotedblright", "quoteleft", "quoteright", "divide",
	"lozenge", "ydieresis", "Ydieresis", "fraction", "currency",
	"guilsinglleft", "guilsinglright", "fi", "fl", "daggerdbl",
	"periodcentered", "quotesinglbase", "quotedblbase", "perthousand", "Acircumflex",
	"Ecircumflex", "Aacute", "Edieresis", "Egrave", "Iacute",
	"Icircumflex", "Idieresis", "Igrave", "Oacute", "Ocircumflex",
	"apple", "Ograve", "Uacute", "Ucircumflex", "Ugrave",
	"dotlessi", "circumflex", "tilde", "macron", "breve",
	"dotaccent", "ring", "cedilla", "hungarumlaut", "ogonek",
	"caron", "Lslash", "lslash", "Scaron", "scaron",
	"Zcaron", "zcaron", "brokenbar", "Eth", "eth",
	"Yacute", "yacute", "Thorn", "thorn", "minus",
	"multiply", "onesuperior", "twosuperior", "threesuperior", "onehalf",
	"onequarter", "threequarters", "franc", "Gbreve", "gbreve",
	"Idotaccent", "Scedilla", "scedilla", "Cacute", "cacute",
	"Ccaron", "ccaron", "dcroat",
}

func parsePost(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := &PostTable{}
	t.tableBase = makeBase(tag, b, offset, size, t)
	s := NewStream(b)
	t.Version = s.U32()
	t.ItalicAngle = s.Fixed()
	t.UnderlinePosition = s.I16()
	t.UnderlineThickness = s.I16()
	t.IsFixedPitch = s.U32() != 0
	s.SeekTo(32) // memory usage hints
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Header", err)
	}
	switch t.Version {
	case 0x00010000, 0x00025000, 0x00030000:
		return t, nil
	case 0x00020000:
		n := int(s.U16())
		t.nameIndex = s.Bytes(2 * n)
		if err := s.Err(); err != nil {
			return nil, asMalformed(tag, "GlyphNameIndex", err)
		}
		t.strings = b[s.Offset():]
		for i := 0; i < len(t.strings); i += 1 + int(t.strings[i]) {
			t.names = append(t.names, i)
		}
		return t, nil
	}
	return nil, malformed(tag, "Version", "unsupported post table version %#x", t.Version)
}

// link checks the glyph count of a format 2 table against maxp. Fonts with
// fewer names than glyphs are tolerated; the remaining glyphs are unnamed.
func (t *PostTable) link(numGlyphs int, ec *errorCollector) {
	t.numGlyphs = numGlyphs
	if t.Version == 0x00020000 && len(t.nameIndex)/2 != numGlyphs {
		ec.addWarning(t.name, fmt.Sprintf("%d glyph names for %d glyphs", len(t.nameIndex)/2,
			numGlyphs), t.offset)
	}
}

// HasGlyphNames returns true if the post table contains glyph names.
func (t *PostTable) HasGlyphNames() bool {
	return t != nil && (t.Version == 0x00010000 || t.Version == 0x00020000)
}

// GlyphName returns the PostScript name of glyph g, if the table contains one.
func (t *PostTable) GlyphName(g GlyphIndex) (string, bool) {
	if t == nil {
		return "", false
	}
	switch t.Version {
	case 0x00010000:
		if int(g) < len(macGlyphNames) {
			return macGlyphNames[g], true
		}
	case 0x00020000:
		inx, err := t.nameIndex.u16(int(g) * 2)
		if err != nil {
			return "", false
		}
		if inx < 258 {
			return macGlyphNames[inx], true
		}
		i := int(inx) - 258
		if i >= len(t.names) {
			return "", false
		}
		n := int(t.strings[t.names[i]])
		name, err := t.strings.view(t.names[i]+1, n)
		if err != nil {
			return "", false
		}
		return string(name), true
	}
	return "", false
}

// GlyphByName returns the glyph with PostScript name name.
func (t *PostTable) GlyphByName(name string) (GlyphIndex, bool) {
	if !t.HasGlyphNames() {
		return 0, false
	}
	n := t.numGlyphs
	if t.Version == 0x00020000 {
		n = len(t.nameIndex) / 2
	} else if n > len(macGlyphNames) {
		n = len(macGlyphNames)
	}
	for g := 0; g < n; g++ {
		if gname, ok := t.GlyphName(GlyphIndex(g)); ok && gname == name {
			return GlyphIndex(g), true
		}
	}
	return 0, false
}
