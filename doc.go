/*
Package ttfparser reads TrueType and OpenType fonts.

The parser works directly on the caller's font data: nothing is copied and
nothing is written. Fonts in the wild are frequently broken, so every read is
bounds-checked and every recursive structure has a depth limit. Malformed input
results in an error wrapping ot.ErrMalformedFont, never in a panic.

Package ttfparser offers convenience entry points. The real work is done in
two sub-packages:

▪︎ Package `ot` decodes the font container and its tables, and builds glyph
outlines.

▪︎ Package `otquery` answers the questions of text layout engines and glyph
renderers: glyph indices for code-points, outlines, advances and font names.

A font file is loaded and queried like this:

	face, err := ttfparser.LoadFont("GoRegular.ttf", 0)
	if err != nil { … }
	gid := face.GlyphIndex('A')
	outline, err := face.Outline(gid)
	advance, _ := face.AdvanceWidth(gid)

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package ttfparser
