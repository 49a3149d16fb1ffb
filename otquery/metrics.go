package otquery

import (
	"github.com/JAicewizard/ttf-parser/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font Information -------------------------------------------------

// FontType returns a short description of the outline technology of a font:
// "TrueType" for glyf outlines, "OpenType CFF" for CFF outlines, and "unknown"
// for fonts without supported outlines.
func FontType(otf *ot.Font) string {
	if otf == nil {
		return "unknown"
	}
	switch otf.OutlineFormat() {
	case ot.OutlineGlyf:
		return "TrueType"
	case ot.OutlineCFF:
		return "OpenType CFF"
	}
	return "unknown"
}

// LayoutTables returns the tags of the OpenType layout tables a font contains,
// in the order GDEF, GSUB, GPOS, BASE, JSTF.
func LayoutTables(otf *ot.Font) []string {
	var tags []string
	for _, tag := range []string{"GDEF", "GSUB", "GPOS", "BASE", "JSTF"} {
		if otf.HasTable(ot.T(tag)) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// FontSupportsScript returns a tuple (script-tag, language-tag) for a given input
// of a script tag and a language tag. If the language has no special support in the
// font, DFLT will be returned. If the script has no support in the font,
// DFLT will be returned for the script.
//
// GSUB is consulted first, then GPOS.
func FontSupportsScript(otf *ot.Font, scr ot.Tag, lang ot.Tag) (ot.Tag, ot.Tag) {
	if otf == nil {
		return 0, 0
	}
	for _, layout := range []*ot.LayoutTable{otf.Layout.GSub, otf.Layout.GPos} {
		script := layout.Scripts().Script(scr)
		if script == nil {
			continue
		}
		tracer().Debugf("script %s is contained in %s", scr, layout.Self().NameTag())
		if lang != ot.DFLT && script.LangSys(lang) != nil {
			return scr, lang
		}
		return scr, ot.DFLT
	}
	tracer().Infof("cannot find script %s in font", scr)
	return ot.DFLT, ot.DFLT
}

// FontMetrics retrieves selected metrics of a font.
func FontMetrics(otf *ot.Font) FontMetricsInfo {
	metrics := FontMetricsInfo{}
	if otf == nil {
		return metrics
	}
	if hhea := otf.HorizontalHeader(); hhea != nil {
		metrics.Ascent = sfnt.Units(hhea.Ascender)
		metrics.Descent = sfnt.Units(hhea.Descender)
		metrics.LineGap = sfnt.Units(hhea.LineGap)
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceWidthMax)
	}
	if os2 := otf.OS2Metrics(); os2 != nil {
		if metrics.Ascent == 0 && metrics.Descent == 0 {
			tracer().Debugf("taking ascent and descent from OS/2")
			metrics.Ascent = sfnt.Units(os2.TypoAscender)
			metrics.Descent = sfnt.Units(os2.TypoDescender)
			metrics.LineGap = sfnt.Units(os2.TypoLineGap)
		}
		if os2.Version >= 2 {
			metrics.XHeight = sfnt.Units(os2.XHeight)
			metrics.CapHeight = sfnt.Units(os2.CapHeight)
		}
	}
	metrics.UnitsPerEm = sfnt.Units(otf.Head.UnitsPerEm) // head is a required table
	return metrics
}

// --- Glyph Routines --------------------------------------------------------

// CodePointForGlyph returns the code-point for a given glyph index.
//
// This is an inefficient operation: All code-points contained in the font's CMap
// are checked sequentially if they produce the given glyph.
// If the glyph index does not correspond to a code-point, 0 is returned.
func CodePointForGlyph(otf *ot.Font, gid ot.GlyphIndex) rune {
	if gid == 0 || otf == nil || otf.CMap == nil || otf.CMap.GlyphIndexMap == nil {
		return 0
	}
	return otf.CMap.GlyphIndexMap.ReverseLookup(gid)
}

// GlyphMetrics retrieves metrics for a given glyph.
//
// The bounding box is taken from the glyph header for TrueType outlines and is
// computed from the outline for CFF fonts.
func GlyphMetrics(otf *ot.Font, gid ot.GlyphIndex) GlyphMetricsInfo {
	metrics := GlyphMetricsInfo{}
	if otf == nil {
		return metrics
	}
	if aw, lsb, ok := otf.HorizontalMetrics().HMetrics(gid); ok {
		metrics.Advance = sfnt.Units(aw)
		metrics.LSB = sfnt.Units(lsb)
	}
	if h, ok := otf.GlyphHeader(gid); ok {
		metrics.BBox = BoundingBox{
			MinX: sfnt.Units(h.XMin),
			MinY: sfnt.Units(h.YMin),
			MaxX: sfnt.Units(h.XMax),
			MaxY: sfnt.Units(h.YMax),
		}
	} else if otf.OutlineFormat() == ot.OutlineCFF {
		if r, err := otf.Outline(gid, nil, discard{}); err == nil {
			metrics.BBox = boxFromRect(r)
		}
	}
	// RSB calculation: rsb = aw - (lsb + xMax - xMin)
	// If a glyph has no contours, xMax/xMin are not defined. The left side bearing indicated
	// in the 'hmtx' table for such glyphs should be zero.
	if !metrics.BBox.IsEmpty() {
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}
