package ot

import (
	"testing"

	"github.com/JAicewizard/ttf-parser/internal/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var weightAxis = fonttest.FVar([]fonttest.Axis{{Tag: "wght", Min: 100, Default: 400, Max: 900}})

// variableFont returns a font with a weight axis. Glyph 1 is the square of
// Square, glyph 2 a composite of glyph 1 shifted by 100 units.
func variableFont(gvar fonttest.GVar) *fonttest.Font {
	f := glyphFont(false, nil, square, fonttest.CompositeGlyph(fonttest.Component{Glyph: 1, DX: 100}))
	f.Set("fvar", weightAxis)
	if gvar.Glyphs != nil {
		f.Set("gvar", gvar.Bytes())
	}
	return f
}

// widen moves the right edge of the square by 100 units and the advance by 50
// units at the peak of the axis.
var widen = fonttest.Tuple{
	Peak: []float32{1},
	DX:   []int16{0, 100, 100, 0, 0, 50, 0, 0},
	DY:   []int16{0, 0, 0, 0, 0, 0, 0, 0},
}

func coord(f float32) []NormalizedCoord {
	return []NormalizedCoord{NormalizedCoordFromFloat(f)}
}

func TestNormalizedCoords(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tests := map[float32]NormalizedCoord{0: 0, 0.5: 8192, 1: 16384, 2: 16384, -1: -16384, -3: -16384}
	for f, expected := range tests {
		if c := NormalizedCoordFromFloat(f); c != expected {
			t.Errorf("expected %g to normalize to %d, have %d", f, expected, c)
		}
	}
	if NormalizedCoord(-8192).Float() != -0.5 {
		t.Errorf("expected -8192 to be -0.5")
	}
}

func TestNormalizeVariation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseFont(t, variableFont(fonttest.GVar{}))
	fvar := otf.Variations.FVar
	if fvar == nil || len(fvar.Axes) != 1 || fvar.Axes[0].Tag != T("wght") || fvar.Axes[0].NameID != 256 {
		t.Fatalf("unexpected variation axes %+v", fvar)
	}
	tests := []struct {
		setting  []Variation
		expected NormalizedCoord
	}{
		{nil, 0},
		{[]Variation{{T("wght"), 900}}, 16384},
		{[]Variation{{T("wght"), 650}}, 8192},
		{[]Variation{{T("wght"), 250}}, -8192},
		{[]Variation{{T("wght"), 100}}, -16384},
		{[]Variation{{T("wght"), 2000}}, 16384},
		{[]Variation{{T("wdth"), 50}}, 0},
	}
	for _, tt := range tests {
		coords := otf.NormalizeVariation(tt.setting...)
		if len(coords) != 1 || coords[0] != tt.expected {
			t.Errorf("settings %v: expected %d, have %v", tt.setting, tt.expected, coords)
		}
	}
	if coords := parseFont(t, fonttest.Square()).NormalizeVariation(Variation{T("wght"), 700}); coords != nil {
		t.Errorf("expected no coordinates for static font, have %v", coords)
	}
	//
	f := variableFont(fonttest.GVar{})
	f.Set("avar", fonttest.AVar([][2]float32{{-1, -1}, {0, 0}, {0.5, 0.8}, {1, 1}}))
	otf = parseFont(t, f)
	if otf.Variations.AVar == nil {
		t.Fatalf("expected avar table")
	}
	coords := otf.NormalizeVariation(Variation{T("wght"), 650})
	if coords[0] != NormalizedCoordFromFloat(0.8) {
		t.Errorf("expected avar to map 0.5 to 0.8, have %v", coords[0].Float())
	}
	coords = otf.NormalizeVariation(Variation{T("wght"), 250})
	if coords[0] != -8192 {
		t.Errorf("expected avar to map -0.5 to -0.5, have %v", coords[0].Float())
	}
}

func TestVariationTablesWithMismatchingAxes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	f := variableFont(fonttest.GVar{AxisCount: 2, Glyphs: make([][]fonttest.Tuple, 3)})
	f.Set("avar", fonttest.AVar(nil, nil))
	otf := parseFont(t, f)
	if otf.Variations.GVar != nil || otf.Variations.AVar != nil {
		t.Errorf("expected gvar and avar to be dropped")
	}
	if len(otf.Errors()) != 2 {
		t.Errorf("expected 2 errors, have %v", otf.Errors())
	}
	//
	otf = parseFont(t, variableFont(fonttest.GVar{AxisCount: 1, Glyphs: make([][]fonttest.Tuple, 2)}))
	if otf.Variations.GVar != nil {
		t.Errorf("expected gvar with wrong glyph count to be dropped")
	}
	//
	f = glyphFont(false, nil, square)
	f.Set("gvar", fonttest.GVar{AxisCount: 1, Glyphs: make([][]fonttest.Tuple, 2)}.Bytes())
	otf = parseFont(t, f)
	if otf.Variations.GVar != nil || otf.Variations.FVar != nil {
		t.Errorf("expected gvar without fvar to be dropped")
	}
}

func TestGlyphVariations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseFont(t, variableFont(fonttest.GVar{
		AxisCount: 1,
		Glyphs:    [][]fonttest.Tuple{nil, {widen}, nil},
	}))
	tests := []struct {
		coords []NormalizedCoord
		right  float32
	}{
		{nil, 500},
		{coord(0), 500},
		{coord(0.5), 550},
		{coord(1), 600},
		{coord(-1), 500},
	}
	for _, tt := range tests {
		cmds, bbox := outline(t, otf, 1, tt.coords)
		expected := []Command{moveTo(0, 0), lineTo(tt.right, 0), lineTo(tt.right, 700), lineTo(0, 700), closePath}
		if !equalCommands(cmds, expected) {
			t.Errorf("coords %v: expected %v, have %v", tt.coords, expected, cmds)
		}
		if bbox.XMax != tt.right {
			t.Errorf("coords %v: expected bounds to end at %g, have %+v", tt.coords, tt.right, bbox)
		}
	}
	// the composite glyph picks up the variations of its component
	cmds, _ := outline(t, otf, 2, coord(1))
	if len(cmds) != 5 || cmds[0] != moveTo(100, 0) || cmds[1] != lineTo(700, 0) {
		t.Errorf("expected varied component, have %v", cmds)
	}
}

func TestGlyphVariationTuples(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tests := []struct {
		name     string
		tuples   []fonttest.Tuple
		shared   [][]float32
		coords   []NormalizedCoord
		expected []Command
	}{
		{"inferred deltas", []fonttest.Tuple{{Peak: []float32{1}, Points: []int{0, 2},
			DX: []int16{0, 100}, DY: []int16{0, 100}}}, nil, coord(1),
			[]Command{moveTo(0, 0), lineTo(600, 0), lineTo(600, 800), lineTo(0, 800), closePath}},
		{"translation", []fonttest.Tuple{{Peak: []float32{1}, Points: []int{1, 2},
			DX: []int16{100, 100}, DY: []int16{0, 0}}}, nil, coord(1),
			[]Command{moveTo(100, 0), lineTo(600, 0), lineTo(600, 700), lineTo(100, 700), closePath}},
		{"point out of range", []fonttest.Tuple{{Peak: []float32{1}, Points: []int{1, 2, 40},
			DX: []int16{100, 100, 999}, DY: []int16{0, 0, 999}}}, nil, coord(1),
			[]Command{moveTo(100, 0), lineTo(600, 0), lineTo(600, 700), lineTo(100, 700), closePath}},
		{"shared tuple", []fonttest.Tuple{{SharedIndex: 0, DX: widen.DX, DY: widen.DY}},
			[][]float32{{-1}}, coord(-0.5),
			[]Command{moveTo(0, 0), lineTo(550, 0), lineTo(550, 700), lineTo(0, 700), closePath}},
		{"intermediate region", []fonttest.Tuple{{Peak: []float32{0.5}, Start: []float32{0}, End: []float32{1},
			DX: widen.DX, DY: widen.DY}}, nil, coord(0.75),
			[]Command{moveTo(0, 0), lineTo(550, 0), lineTo(550, 700), lineTo(0, 700), closePath}},
		{"accumulated tuples", []fonttest.Tuple{widen, widen}, nil, coord(1),
			[]Command{moveTo(0, 0), lineTo(700, 0), lineTo(700, 700), lineTo(0, 700), closePath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			otf := parseFont(t, variableFont(fonttest.GVar{
				AxisCount:    1,
				SharedTuples: tt.shared,
				Glyphs:       [][]fonttest.Tuple{nil, tt.tuples, nil},
			}))
			cmds, _ := outline(t, otf, 1, tt.coords)
			if !equalCommands(cmds, tt.expected) {
				t.Errorf("expected %v, have %v", tt.expected, cmds)
			}
		})
	}
}

func TestCompositeGlyphVariations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseFont(t, variableFont(fonttest.GVar{
		AxisCount: 1,
		Glyphs: [][]fonttest.Tuple{nil, nil, {{Peak: []float32{1}, Points: []int{0},
			DX: []int16{50}, DY: []int16{-20}}}},
	}))
	cmds, _ := outline(t, otf, 2, coord(1))
	expected := []Command{moveTo(150, -20), lineTo(650, -20), lineTo(650, 680), lineTo(150, 680), closePath}
	if !equalCommands(cmds, expected) {
		t.Errorf("expected component offset to vary, have %v", cmds)
	}
}

func TestAdvanceWidthVariation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	f := variableFont(fonttest.GVar{AxisCount: 1, Glyphs: [][]fonttest.Tuple{nil, {widen}, nil}})
	otf := parseFont(t, f)
	for c, expected := range map[float32]float32{0: 1000, 0.5: 1025, 1: 1050, -1: 1000} {
		if adv, ok := otf.AdvanceWidthVariation(1, coord(c)); !ok || adv != expected {
			t.Errorf("gvar at %g: expected advance %g, have %g", c, expected, adv)
		}
	}
	if adv, ok := otf.AdvanceWidthVariation(2, coord(1)); !ok || adv != 1000 {
		t.Errorf("expected glyph without variations to keep advance, have %g", adv)
	}
	//
	store := fonttest.ItemVariationStore{
		AxisCount: 1,
		Regions:   []fonttest.Region{{{0, 1, 1}}},
		Deltas:    [][]int16{{10}, {40}, {-2000}},
	}
	f.Set("HVAR", fonttest.HVar(store, nil))
	otf = parseFont(t, f)
	if otf.Variations.HVar == nil {
		t.Fatalf("expected HVAR table")
	}
	for c, expected := range map[float32]float32{0: 1000, 0.5: 1020, 1: 1040} {
		if adv, ok := otf.AdvanceWidthVariation(1, coord(c)); !ok || adv != expected {
			t.Errorf("HVAR at %g: expected advance %g, have %g", c, expected, adv)
		}
	}
	if adv, _ := otf.AdvanceWidthVariation(2, coord(1)); adv != 0 {
		t.Errorf("expected advance to be clamped at 0, have %g", adv)
	}
	if _, ok := otf.Variations.HVar.SideBearingDelta(1, coord(1)); ok {
		t.Errorf("expected no side bearing mapping")
	}
	//
	f.Set("HVAR", fonttest.HVar(store, []uint32{1, 0}))
	otf = parseFont(t, f)
	for gid, expected := range map[GlyphIndex]float32{0: 1040, 1: 1010, 2: 1010} {
		if adv, _ := otf.AdvanceWidthVariation(gid, coord(1)); adv != expected {
			t.Errorf("HVAR mapping, glyph %d: expected advance %g, have %g", gid, expected, adv)
		}
	}
	d, err := otf.Variations.HVar.AdvanceDelta(0, coord(1))
	if err != nil || d != 40 {
		t.Errorf("expected delta 40 for glyph 0, have %g (%v)", d, err)
	}
	//
	if adv, ok := parseFont(t, fonttest.Square()).AdvanceWidthVariation(1, coord(1)); !ok || adv != 600 {
		t.Errorf("expected static font to return the default advance, have %g", adv)
	}
}

func TestRegionScalar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tests := []struct {
		v, start, peak, end float32
		expected            float32
	}{
		{0.5, 0, 0, 0, 1},
		{0.5, 0, 1, 1, 0.5},
		{0.5, 0, 0.5, 1, 1},
		{0.75, 0, 0.5, 1, 0.5},
		{-0.5, 0, 1, 1, 0},
		{-0.5, -1, -1, 0, 0.5},
		{1, 0.2, 0.5, 0.8, 0},
		{0.5, -0.5, 0.5, 1, 1},
		{0.5, 0.8, 0.5, 1, 1},
	}
	for _, tt := range tests {
		if s := regionScalar(tt.v, tt.start, tt.peak, tt.end); s != tt.expected {
			t.Errorf("regionScalar(%g, %g, %g, %g): expected %g, have %g",
				tt.v, tt.start, tt.peak, tt.end, tt.expected, s)
		}
	}
}
