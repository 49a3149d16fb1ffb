package fonttest

// Square returns a minimal TrueType font with two glyphs and 1000 units per
// em. Glyph 0 is empty, glyph 1 is a rectangle (0,0)–(500,700). Code-point
// 'A' maps to glyph 1 by a format 4 cmap sub-table. There is a single long
// metrics record (advance 600), so glyph 1 takes its advance from glyph 0.
func Square() *Font {
	glyf, loca := GlyfLoca([][]byte{nil, SimpleGlyph(Rect(0, 0, 500, 700))}, false)
	return New().
		Set("head", Head(1000, false)).
		Set("maxp", MaxP(2)).
		Set("hhea", HHea(1)).
		Set("hmtx", HMtx([]Metric{{Advance: 600, Bearing: 0}}, 10)).
		Set("cmap", CMap(Subtable{PlatformID: 3, EncodingID: 1, Data: Format4(map[rune]uint16{'A': 1})})).
		Set("glyf", glyf).
		Set("loca", loca)
}

// CFFSquare returns a font with CFF outlines and the glyph set of Square.
// The charstring of glyph 1 draws its first edge with a local and its second
// edge with a global subroutine.
func CFFSquare() *Font {
	var notdef, square, local, global Charstring
	notdef.Op(CSEndchar)
	square.Args(600, 0, 0).Op(CSRmoveto) // width 600
	square.Args(-107).Op(CSCallsubr)
	square.Args(-107).Op(CSCallgsubr)
	square.Args(-500, 0).Op(CSRlineto)
	square.Op(CSEndchar)
	local.Args(500, 0).Op(CSRlineto, CSReturn)
	global.Args(0, 700).Op(CSRlineto, CSReturn)
	f := New().
		Set("head", Head(1000, false)).
		Set("maxp", MaxP(2)).
		Set("hhea", HHea(2)).
		Set("hmtx", HMtx([]Metric{{Advance: 500}, {Advance: 600}})).
		Set("cmap", CMap(Subtable{PlatformID: 3, EncodingID: 1, Data: Format4(map[rune]uint16{'A': 1})})).
		Set("CFF", CFF("Square", [][]byte{notdef.Buffer, square.Buffer},
			[][]byte{global.Buffer}, [][]byte{local.Buffer}))
	f.Version = VersionOpenType
	return f
}
