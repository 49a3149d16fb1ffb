/*
Package otquery answers common questions about OpenType fonts.

Package ot exposes the tables of a font; otquery combines them to serve the
queries of text layout engines and glyph renderers: glyph lookup by code-point,
glyph outlines, advances and side bearings, font-wide metrics and names.

The central type is Face, which is bound to a single parsed font:

	face, err := otquery.Parse(data)
	gid := face.GlyphIndex('A')
	cmds, err := face.Outline(gid)

A Face is read-only and may be shared between goroutines. Functions taking an
*ot.Font (HeadInfo, FontMetrics, NameInfo, …) are available for clients which
work with package ot directly.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package otquery

import (
	"fmt"

	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'tyse.fonts'
func tracer() tracing.Trace {
	return tracing.Select("tyse.fonts")
}

// Face is a query view onto a parsed font.
type Face struct {
	otf *ot.Font
}

// New wraps a parsed font. otf must not be nil.
func New(otf *ot.Font) *Face {
	if otf == nil {
		panic("otquery.New called with nil font")
	}
	return &Face{otf: otf}
}

// Parse parses font data and returns a face for it. If data is a font collection,
// the first face is used. data must not be modified while the face is in use.
func Parse(data []byte) (*Face, error) {
	return ParseCollection(data, 0)
}

// ParseCollection parses face number index of a font collection.
// Errors will be of class ot.ErrMalformedFont or ot.ErrFaceIndexOutOfRange.
func ParseCollection(data []byte, index int) (*Face, error) {
	otf, err := ot.ParseCollection(data, index)
	if err != nil {
		return nil, fmt.Errorf("otquery: %w", err)
	}
	for _, e := range otf.Errors() {
		tracer().Infof("font table dropped: %v", e)
	}
	return &Face{otf: otf}, nil
}

// Font returns the underlying font.
func (f *Face) Font() *ot.Font {
	return f.otf
}

// --- Glyph lookup ----------------------------------------------------------

// GlyphIndex returns the glyph for code-point r, or 0 (.notdef) if r is
// not mapped.
func (f *Face) GlyphIndex(r rune) ot.GlyphIndex {
	return f.otf.CMap.Lookup(r)
}

// GlyphVariationIndex returns the glyph for code-point r followed by variation
// selector vs, as mapped by a cmap format 14 sub-table.
func (f *Face) GlyphVariationIndex(r, vs rune) ot.Option[ot.GlyphIndex] {
	return f.otf.CMap.VariationLookup(r, vs)
}

// GlyphName returns the PostScript name of a glyph from table post.
func (f *Face) GlyphName(g ot.GlyphIndex) (string, bool) {
	return f.otf.Post.GlyphName(g)
}

// --- Outlines --------------------------------------------------------------

// Outline returns the path commands for glyph g at the default instance of
// the font. Glyphs without outline return an empty slice.
func (f *Face) Outline(g ot.GlyphIndex) ([]ot.Command, error) {
	return f.OutlineVariation(g, nil)
}

// OutlineVariation returns the path commands for glyph g at normalized
// variation coordinates coords. coords are ignored for fonts without
// glyph variations.
func (f *Face) OutlineVariation(g ot.GlyphIndex, coords []ot.NormalizedCoord) ([]ot.Command, error) {
	var cc ot.CommandCollector
	if _, err := f.otf.Outline(g, coords, &cc); err != nil {
		return nil, err
	}
	return cc.Commands, nil
}

// OutlineTo streams the outline of glyph g to sink and returns its bounds.
func (f *Face) OutlineTo(g ot.GlyphIndex, sink ot.OutlineSink) (ot.Rect, error) {
	return f.otf.Outline(g, nil, sink)
}

// GlyphBounds returns the bounding box of glyph g. For TrueType outlines the
// box is read from the glyph header, for CFF outlines it is computed from
// the outline. ok is false for glyphs without outline.
func (f *Face) GlyphBounds(g ot.GlyphIndex) (ot.Rect, bool) {
	if h, ok := f.otf.GlyphHeader(g); ok {
		r := ot.Rect{
			XMin: float32(h.XMin), YMin: float32(h.YMin),
			XMax: float32(h.XMax), YMax: float32(h.YMax),
		}
		return r, !r.IsEmpty()
	}
	r, err := f.otf.Outline(g, nil, discard{})
	if err != nil || r.IsEmpty() {
		return ot.Rect{}, false
	}
	return r, true
}

// discard is an outline sink dropping all commands.
type discard struct{}

func (discard) MoveTo(x, y float32)                  {}
func (discard) LineTo(x, y float32)                  {}
func (discard) QuadTo(x1, y1, x, y float32)          {}
func (discard) CubicTo(x1, y1, x2, y2, x, y float32) {}
func (discard) Close()                               {}

// OutlineFormat returns the kind of outlines the font provides.
func (f *Face) OutlineFormat() ot.OutlineFormat {
	return f.otf.OutlineFormat()
}

// --- Metrics ---------------------------------------------------------------

// AdvanceWidth returns the horizontal advance of glyph g in font units.
func (f *Face) AdvanceWidth(g ot.GlyphIndex) (uint16, bool) {
	adv, _, ok := f.otf.HMtx.HMetrics(g)
	return adv, ok
}

// LeftSideBearing returns the left side bearing of glyph g in font units.
func (f *Face) LeftSideBearing(g ot.GlyphIndex) (int16, bool) {
	return f.otf.HMtx.SideBearing(g)
}

// AdvanceHeight returns the vertical advance of glyph g from table vmtx.
// ok is false for fonts without vertical metrics.
func (f *Face) AdvanceHeight(g ot.GlyphIndex) (uint16, bool) {
	adv, _, ok := f.otf.VMtx.HMetrics(g)
	return adv, ok
}

// TopSideBearing returns the top side bearing of glyph g from table vmtx.
func (f *Face) TopSideBearing(g ot.GlyphIndex) (int16, bool) {
	return f.otf.VMtx.SideBearing(g)
}

// AdvanceWidthVariation returns the horizontal advance of glyph g at
// normalized variation coordinates coords.
func (f *Face) AdvanceWidthVariation(g ot.GlyphIndex, coords []ot.NormalizedCoord) (float32, bool) {
	return f.otf.AdvanceWidthVariation(g, coords)
}

// UnitsPerEm returns the number of font units per em.
func (f *Face) UnitsPerEm() uint16 {
	return f.otf.Head.UnitsPerEm
}

// NumberOfGlyphs returns the number of glyphs in the font.
func (f *Face) NumberOfGlyphs() uint16 {
	return uint16(f.otf.NumGlyphs())
}

// HasTable is true if the font contains a table for tag. Optional tables which
// failed to decode are not reported.
func (f *Face) HasTable(tag ot.Tag) bool {
	return f.otf.HasTable(tag)
}

// Name returns the string for name ID id from table name.
func (f *Face) Name(id sfnt.NameID) (string, bool) {
	return f.otf.Name.Name(uint16(id))
}

// --- Variations ------------------------------------------------------------

// IsVariable is true for variable fonts, i.e. fonts with a table fvar.
func (f *Face) IsVariable() bool {
	return f.otf.Variations.FVar != nil
}

// VariationAxes returns the variation axes of a variable font.
func (f *Face) VariationAxes() []ot.VariationAxis {
	if f.otf.Variations.FVar == nil {
		return nil
	}
	return f.otf.Variations.FVar.Axes
}

// NormalizeVariation converts user-space axis settings to normalized
// coordinates for OutlineVariation and AdvanceWidthVariation.
func (f *Face) NormalizeVariation(settings ...ot.Variation) []ot.NormalizedCoord {
	return f.otf.NormalizeVariation(settings...)
}
