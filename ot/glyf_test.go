package ot

import (
	"errors"
	"testing"

	"github.com/JAicewizard/ttf-parser/internal/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// glyphFont returns a TrueType font with the given glyph descriptions. All
// glyphs advance by 1000 units.
func glyphFont(long bool, glyphs ...[]byte) *fonttest.Font {
	glyf, loca := fonttest.GlyfLoca(glyphs, long)
	metrics := make([]fonttest.Metric, len(glyphs))
	for i := range metrics {
		metrics[i] = fonttest.Metric{Advance: 1000, Bearing: 0}
	}
	return fonttest.New().
		Set("head", fonttest.Head(1000, long)).
		Set("maxp", fonttest.MaxP(len(glyphs))).
		Set("hhea", fonttest.HHea(len(glyphs))).
		Set("hmtx", fonttest.HMtx(metrics)).
		Set("cmap", fonttest.CMap(fonttest.Subtable{PlatformID: 3, EncodingID: 1,
			Data: fonttest.Format4(map[rune]uint16{'A': 1})})).
		Set("glyf", glyf).
		Set("loca", loca)
}

var square = fonttest.SimpleGlyph(fonttest.Rect(0, 0, 500, 700))

func TestSquareOutline(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseFont(t, fonttest.Square())
	cmds, bbox := outline(t, otf, 1, nil)
	expected := []Command{
		moveTo(0, 0), lineTo(500, 0), lineTo(500, 700), lineTo(0, 700), closePath,
	}
	if !equalCommands(cmds, expected) {
		t.Errorf("expected outline %v, have %v", expected, cmds)
	}
	if bbox != (Rect{XMin: 0, YMin: 0, XMax: 500, YMax: 700}) {
		t.Errorf("unexpected bounds %+v", bbox)
	}
	cmds, bbox = outline(t, otf, 0, nil)
	if len(cmds) != 0 || !bbox.IsEmpty() {
		t.Errorf("expected glyph without outline to produce no commands, have %v", cmds)
	}
	cmds, _ = outline(t, otf, 2, nil)
	if len(cmds) != 0 {
		t.Errorf("expected glyph beyond font to produce no commands, have %v", cmds)
	}
}

func TestLongLocaOutline(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseFont(t, glyphFont(true, nil, square))
	if otf.Head.IndexToLocFormat != 1 {
		t.Fatalf("expected long loca format")
	}
	cmds, _ := outline(t, otf, 1, nil)
	if len(cmds) != 5 || cmds[2] != lineTo(500, 700) {
		t.Errorf("unexpected outline %v", cmds)
	}
	if loc := otf.Loca.IndexToLocation(1); loc != 0 {
		t.Errorf("expected glyph 1 to start at 0, has %d", loc)
	}
}

func TestQuadraticContours(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	type pt = fonttest.Pt
	tests := []struct {
		name     string
		contour  []fonttest.Pt
		expected []Command
	}{
		{"single off-curve", []pt{{X: 0, Y: 0}, {X: 100, Y: 100, Off: true}, {X: 200, Y: 0}},
			[]Command{moveTo(0, 0), quadTo(100, 100, 200, 0), closePath}},
		{"implied on-curve", []pt{{X: 0, Y: 0}, {X: 0, Y: 100, Off: true}, {X: 100, Y: 100, Off: true},
			{X: 100, Y: 0}},
			[]Command{moveTo(0, 0), quadTo(0, 100, 50, 100), quadTo(100, 100, 100, 0), closePath}},
		{"starting off-curve", []pt{{X: 0, Y: 100, Off: true}, {X: 100, Y: 100}, {X: 100, Y: 0, Off: true},
			{X: 0, Y: 0}},
			[]Command{moveTo(100, 100), quadTo(100, 0, 0, 0), quadTo(0, 100, 100, 100), closePath}},
		{"all off-curve", []pt{{X: 0, Y: 0, Off: true}, {X: 100, Y: 0, Off: true},
			{X: 100, Y: 100, Off: true}, {X: 0, Y: 100, Off: true}},
			[]Command{moveTo(50, 0), quadTo(100, 0, 100, 50), quadTo(100, 100, 50, 100),
				quadTo(0, 100, 0, 50), quadTo(0, 0, 50, 0), closePath}},
		{"closing off-curve", []pt{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100, Off: true}},
			[]Command{moveTo(0, 0), lineTo(100, 0), quadTo(100, 100, 0, 0), closePath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			otf := parseFont(t, glyphFont(false, nil, fonttest.SimpleGlyph(tt.contour)))
			cmds, _ := outline(t, otf, 1, nil)
			if !equalCommands(cmds, tt.expected) {
				t.Errorf("expected %v, have %v", tt.expected, cmds)
			}
		})
	}
}

func TestMultipleContours(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	g := fonttest.SimpleGlyph(fonttest.Rect(0, 0, 100, 100), fonttest.Rect(200, 0, 300, 100))
	otf := parseFont(t, glyphFont(false, nil, g))
	cmds, bbox := outline(t, otf, 1, nil)
	if len(cmds) != 10 || cmds[4] != closePath || cmds[5] != moveTo(200, 0) {
		t.Errorf("expected two closed contours, have %v", cmds)
	}
	if bbox.XMax != 300 || bbox.YMax != 100 {
		t.Errorf("unexpected bounds %+v", bbox)
	}
	h, ok := otf.GlyphHeader(1)
	if !ok || h.NumberOfContours != 2 || h.XMax != 300 {
		t.Errorf("unexpected glyph header %+v", h)
	}
	if _, ok := otf.GlyphHeader(0); ok {
		t.Errorf("expected no glyph header for empty glyph")
	}
}

func TestCompositeGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	type comp = fonttest.Component
	tests := []struct {
		name       string
		components []fonttest.Component
		expected   []Command
	}{
		{"offset", []comp{{Glyph: 1, DX: 100, DY: 50}},
			[]Command{moveTo(100, 50), lineTo(600, 50), lineTo(600, 750), lineTo(100, 750), closePath}},
		{"scale", []comp{{Glyph: 1, DX: 600, Matrix: []float32{0.5}}},
			[]Command{moveTo(600, 0), lineTo(850, 0), lineTo(850, 350), lineTo(600, 350), closePath}},
		{"xy scale", []comp{{Glyph: 1, Matrix: []float32{1.5, 0.5}}},
			[]Command{moveTo(0, 0), lineTo(750, 0), lineTo(750, 350), lineTo(0, 350), closePath}},
		{"rotation", []comp{{Glyph: 1, Matrix: []float32{0, 1, -1, 0}}},
			[]Command{moveTo(0, 0), lineTo(0, 500), lineTo(-700, 500), lineTo(-700, 0), closePath}},
		{"scaled offset", []comp{{Glyph: 1, DX: 200, DY: 100, Matrix: []float32{0.5},
			Flags: fonttest.ScaledOffset}},
			[]Command{moveTo(100, 50), lineTo(350, 50), lineTo(350, 400), lineTo(100, 400), closePath}},
		{"point matching", []comp{{Glyph: 1}, {Glyph: 1, DX: 2, DY: 0, Anchor: true}},
			[]Command{moveTo(0, 0), lineTo(500, 0), lineTo(500, 700), lineTo(0, 700), closePath,
				moveTo(500, 700), lineTo(1000, 700), lineTo(1000, 1400), lineTo(500, 1400), closePath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			otf := parseFont(t, glyphFont(false, nil, square, fonttest.CompositeGlyph(tt.components...)))
			cmds, _ := outline(t, otf, 2, nil)
			if !equalCommands(cmds, tt.expected) {
				t.Errorf("expected %v, have %v", tt.expected, cmds)
			}
			h, ok := otf.GlyphHeader(2)
			if !ok || h.NumberOfContours != -1 {
				t.Errorf("expected composite glyph header, have %+v", h)
			}
		})
	}
}

func TestCompositeErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	type comp = fonttest.Component
	tests := []struct {
		name       string
		components []fonttest.Component
	}{
		{"self reference", []comp{{Glyph: 2}}},
		{"anchor out of range", []comp{{Glyph: 1}, {Glyph: 1, DX: 4, DY: 0, Anchor: true}}},
		{"component out of range", []comp{{Glyph: 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			otf := parseFont(t, glyphFont(false, nil, square, fonttest.CompositeGlyph(tt.components...)))
			var cc CommandCollector
			_, err := otf.Outline(2, nil, &cc)
			if !errors.Is(err, ErrMalformedFont) {
				t.Errorf("expected malformed font error, have %v", err)
			}
		})
	}
}

func TestCompositeDepth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	glyphs := [][]byte{nil, square}
	for g := 2; g <= 10; g++ {
		glyphs = append(glyphs, fonttest.CompositeGlyph(fonttest.Component{Glyph: uint16(g - 1), DX: 1}))
	}
	otf := parseFont(t, glyphFont(false, glyphs...))
	cmds, _ := outline(t, otf, 9, nil) // glyph 1 at nesting depth 8
	if len(cmds) != 5 || cmds[0] != moveTo(8, 0) {
		t.Errorf("expected square shifted by 8, have %v", cmds)
	}
	var cc CommandCollector
	if _, err := otf.Outline(10, nil, &cc); !errors.Is(err, ErrMalformedFont) {
		t.Errorf("expected nesting depth 9 to be rejected, have %v", err)
	}
}

func TestCompositeFanOut(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	// every composite references the previous glyph 100 times
	glyphs := [][]byte{nil, nil}
	for g := 2; g <= 5; g++ {
		components := make([]fonttest.Component, 100)
		for i := range components {
			components[i] = fonttest.Component{Glyph: uint16(g - 1)}
		}
		glyphs = append(glyphs, fonttest.CompositeGlyph(components...))
	}
	otf := parseFont(t, glyphFont(false, glyphs...))
	var cc CommandCollector
	if _, err := otf.Outline(3, nil, &cc); err != nil { // 10101 glyph visits
		t.Errorf("expected glyph 3 to decode, have %v", err)
	}
	for _, gid := range []GlyphIndex{4, 5} {
		cc = CommandCollector{}
		if _, err := otf.Outline(gid, nil, &cc); !errors.Is(err, ErrMalformedFont) {
			t.Errorf("expected component fan-out of glyph %d to be rejected, have %v", gid, err)
		}
		if len(cc.Commands) != 0 {
			t.Errorf("expected no commands for glyph %d, have %d", gid, len(cc.Commands))
		}
	}
}

func TestUseMyMetrics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseFont(t, glyphFont(false, nil, square,
		fonttest.CompositeGlyph(fonttest.Component{Glyph: 0}, fonttest.Component{Glyph: 1, UseMyMetrics: true})))
	if g, ok := otf.metricsComponent(2); !ok || g != 1 {
		t.Errorf("expected glyph 2 to take its metrics from glyph 1, have %d, %v", g, ok)
	}
	if _, ok := otf.metricsComponent(1); ok {
		t.Errorf("expected simple glyph to have no metrics component")
	}
}

func TestOutlineCommandLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	contour := make([]fonttest.Pt, MaxOutlineCommands)
	for i := range contour {
		contour[i] = fonttest.Pt{X: int16(i % 200), Y: int16(i / 200)}
	}
	big := fonttest.SimpleGlyph(contour)
	otf := parseFont(t, glyphFont(true, nil, big,
		fonttest.CompositeGlyph(fonttest.Component{Glyph: 1}, fonttest.Component{Glyph: 1})))
	var cc CommandCollector
	if _, err := otf.Outline(1, nil, &cc); !errors.Is(err, ErrMalformedFont) {
		t.Errorf("expected command limit to be enforced, have %v", err)
	}
	if len(cc.Commands) > MaxOutlineCommands {
		t.Errorf("sink received %d commands", len(cc.Commands))
	}
	cc = CommandCollector{}
	if _, err := otf.Outline(2, nil, &cc); !errors.Is(err, ErrMalformedFont) {
		t.Errorf("expected point limit of composite glyph to be enforced, have %v", err)
	}
}

func TestMalformedSimpleGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	g := append([]byte(nil), square...)
	truncated := g[:len(g)-6]
	decreasing := fonttest.SimpleGlyph(fonttest.Rect(0, 0, 10, 10), fonttest.Rect(20, 20, 30, 30))
	decreasing[12], decreasing[13] = 0, 1 // second contour ends before the first
	for name, glyph := range map[string][]byte{"truncated": truncated, "end points": decreasing} {
		otf := parseFont(t, glyphFont(false, nil, glyph))
		var cc CommandCollector
		if _, err := otf.Outline(1, nil, &cc); !errors.Is(err, ErrMalformedFont) {
			t.Errorf("%s: expected malformed font error, have %v", name, err)
		}
	}
}
