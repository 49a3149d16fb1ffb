package ot

import (
	"errors"
	"testing"

	"github.com/JAicewizard/ttf-parser/internal/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// cffFont returns a CFF font with the given charstrings and subroutines.
func cffFont(charStrings, globalSubrs, localSubrs [][]byte) *fonttest.Font {
	f := fonttest.CFFSquare()
	metrics := make([]fonttest.Metric, len(charStrings))
	for i := range metrics {
		metrics[i].Advance = 500
	}
	f.Set("maxp", fonttest.MaxP(len(charStrings)))
	f.Set("hhea", fonttest.HHea(len(charStrings)))
	f.Set("hmtx", fonttest.HMtx(metrics))
	f.Set("CFF", fonttest.CFF("Test", charStrings, globalSubrs, localSubrs))
	return f
}

func charstring(build func(cs *fonttest.Charstring)) []byte {
	var cs fonttest.Charstring
	build(&cs)
	return cs.Buffer
}

var emptyCharstring = charstring(func(cs *fonttest.Charstring) { cs.Op(fonttest.CSEndchar) })

func TestCFFSquare(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseFont(t, fonttest.CFFSquare())
	if otf.OutlineFormat() != OutlineCFF || otf.OutlineFormat().String() != "CFF" {
		t.Fatalf("expected CFF outlines, have %s", otf.OutlineFormat())
	}
	if otf.CFF.FontName != "Square" || otf.CFF.IsCID || otf.CFF.NumCharStrings() != 2 {
		t.Errorf("unexpected CFF table properties %q/%v/%d",
			otf.CFF.FontName, otf.CFF.IsCID, otf.CFF.NumCharStrings())
	}
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
	if cmds, _ = outline(t, otf, 0, nil); len(cmds) != 0 {
		t.Errorf("expected .notdef to have no outline, have %v", cmds)
	}
	// CFF outlines are not varied
	cmds, _ = outline(t, otf, 1, []NormalizedCoord{NormalizedCoordFromFloat(1)})
	if !equalCommands(cmds, expected) {
		t.Errorf("expected coordinates to be ignored, have %v", cmds)
	}
	if _, ok := otf.GlyphHeader(1); ok {
		t.Errorf("expected no glyf header for CFF font")
	}
}

func TestCharstringOperators(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tests := []struct {
		name     string
		build    func(cs *fonttest.Charstring)
		expected []Command
	}{
		{"rrcurveto", func(cs *fonttest.Charstring) {
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			cs.Args(10, 20, 30, 40, 50, 60).Op(fonttest.CSRrcurveto)
			cs.Op(fonttest.CSEndchar)
		}, []Command{moveTo(0, 0), cubicTo(10, 20, 40, 60, 90, 120), closePath}},
		{"hlineto vlineto", func(cs *fonttest.Charstring) {
			cs.Args(100).Op(fonttest.CSHmoveto)
			cs.Args(50, 60, -50).Op(fonttest.CSHlineto)
			cs.Args(-60).Op(fonttest.CSVlineto)
			cs.Op(fonttest.CSEndchar)
		}, []Command{moveTo(100, 0), lineTo(150, 0), lineTo(150, 60), lineTo(100, 60),
			lineTo(100, 0), closePath}},
		{"width and vmoveto", func(cs *fonttest.Charstring) {
			cs.Args(300, 20).Op(fonttest.CSVmoveto)
			cs.Args(10, 10).Op(fonttest.CSRlineto)
			cs.Op(fonttest.CSEndchar)
		}, []Command{moveTo(0, 20), lineTo(10, 30), closePath}},
		{"two contours", func(cs *fonttest.Charstring) {
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			cs.Args(10, 0).Op(fonttest.CSRlineto)
			cs.Args(0, 100).Op(fonttest.CSRmoveto)
			cs.Args(10, 0).Op(fonttest.CSRlineto)
			cs.Op(fonttest.CSEndchar)
		}, []Command{moveTo(0, 0), lineTo(10, 0), closePath, moveTo(10, 100), lineTo(20, 100), closePath}},
		{"hints", func(cs *fonttest.Charstring) {
			cs.Args(0, 10).Op(fonttest.CSHstem)
			cs.Op(fonttest.CSHintmask, 0x80)
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			cs.Args(10, 0).Op(fonttest.CSRlineto)
			cs.Op(fonttest.CSEndchar)
		}, []Command{moveTo(0, 0), lineTo(10, 0), closePath}},
		{"fixed operand", func(cs *fonttest.Charstring) {
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			cs.Fixed(10.5).Args(0).Op(fonttest.CSRlineto)
			cs.Op(fonttest.CSEndchar)
		}, []Command{moveTo(0, 0), lineTo(10.5, 0), closePath}},
		{"large operands", func(cs *fonttest.Charstring) {
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			cs.Args(1000, -1000).Op(fonttest.CSRlineto)
			cs.Args(-20000, 20000).Op(fonttest.CSRlineto)
			cs.Op(fonttest.CSEndchar)
		}, []Command{moveTo(0, 0), lineTo(1000, -1000), lineTo(-19000, 19000), closePath}},
		{"flex", func(cs *fonttest.Charstring) {
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			cs.Args(10, 10, 10, 10, 10, 0, 10, 0, 10, -10, 10, -10, 50).Op(fonttest.CSEscape, fonttest.CSFlex)
			cs.Op(fonttest.CSEndchar)
		}, []Command{moveTo(0, 0), cubicTo(10, 10, 20, 20, 30, 20), cubicTo(40, 20, 50, 10, 60, 0), closePath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			otf := parseFont(t, cffFont([][]byte{emptyCharstring, charstring(tt.build)}, nil, nil))
			cmds, _ := outline(t, otf, 1, nil)
			if !equalCommands(cmds, tt.expected) {
				t.Errorf("expected %v, have %v", tt.expected, cmds)
			}
		})
	}
}

func TestCharstringErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	recursive := charstring(func(cs *fonttest.Charstring) {
		cs.Args(-107).Op(fonttest.CSCallsubr, fonttest.CSReturn)
	})
	tests := []struct {
		name  string
		build func(cs *fonttest.Charstring)
	}{
		{"recursion", func(cs *fonttest.Charstring) {
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			cs.Args(-107).Op(fonttest.CSCallsubr)
		}},
		{"stack overflow", func(cs *fonttest.Charstring) {
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			for i := 0; i <= csMaxStack; i++ {
				cs.Args(1)
			}
			cs.Op(fonttest.CSRlineto)
		}},
		{"lineto before moveto", func(cs *fonttest.Charstring) {
			cs.Args(10, 10).Op(fonttest.CSRlineto)
		}},
		{"missing arguments", func(cs *fonttest.Charstring) {
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			cs.Args(10).Op(fonttest.CSRlineto)
		}},
		{"missing subroutine", func(cs *fonttest.Charstring) {
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			cs.Args(5).Op(fonttest.CSCallsubr)
		}},
		{"missing global subroutine", func(cs *fonttest.Charstring) {
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			cs.Args(-107).Op(fonttest.CSCallgsubr)
		}},
		{"reserved operator", func(cs *fonttest.Charstring) {
			cs.Op(2)
		}},
		{"truncated operand", func(cs *fonttest.Charstring) {
			cs.Args(0, 0).Op(fonttest.CSRmoveto)
			cs.Op(28, 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			otf := parseFont(t, cffFont([][]byte{emptyCharstring, charstring(tt.build)},
				nil, [][]byte{recursive}))
			var cc CommandCollector
			_, err := otf.Outline(1, nil, &cc)
			if !errors.Is(err, ErrMalformedFont) {
				t.Errorf("expected malformed font error, have %v", err)
			}
		})
	}
}

func TestCIDFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cs := charstring(func(cs *fonttest.Charstring) {
		cs.Args(0, 0).Op(fonttest.CSRmoveto)
		cs.Args(-107).Op(fonttest.CSCallsubr)
		cs.Op(fonttest.CSEndchar)
	})
	up := charstring(func(cs *fonttest.Charstring) { cs.Args(0, 100).Op(fonttest.CSRlineto, fonttest.CSReturn) })
	right := charstring(func(cs *fonttest.Charstring) { cs.Args(100, 0).Op(fonttest.CSRlineto, fonttest.CSReturn) })
	f := cffFont([][]byte{cs, cs}, nil, nil)
	f.Set("CFF", fonttest.CIDCFF("CIDTest", [][]byte{cs, cs}, nil, []uint8{0, 1},
		[][][]byte{{up}, {right}}))
	otf := parseFont(t, f)
	if !otf.CFF.IsCID || otf.CFF.FontName != "CIDTest" {
		t.Fatalf("expected CID-keyed font CIDTest, have %q (CID=%v)", otf.CFF.FontName, otf.CFF.IsCID)
	}
	cmds, _ := outline(t, otf, 0, nil)
	if !equalCommands(cmds, []Command{moveTo(0, 0), lineTo(0, 100), closePath}) {
		t.Errorf("expected glyph 0 to use subroutines of font DICT 0, have %v", cmds)
	}
	cmds, _ = outline(t, otf, 1, nil)
	if !equalCommands(cmds, []Command{moveTo(0, 0), lineTo(100, 0), closePath}) {
		t.Errorf("expected glyph 1 to use subroutines of font DICT 1, have %v", cmds)
	}
	//
	f.Set("CFF", fonttest.CIDCFF("CIDTest", [][]byte{cs, cs}, nil, []uint8{0, 3},
		[][][]byte{{up}, {right}}))
	otf = parseFont(t, f)
	var cc CommandCollector
	if _, err := otf.Outline(1, nil, &cc); !errors.Is(err, ErrMalformedFont) {
		t.Errorf("expected glyph with invalid font DICT to fail, have %v", err)
	}
}

func TestCFFParseErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tests := map[string]*fonttest.Font{
		"charstring count": cffFont([][]byte{emptyCharstring}, nil, nil).Set("maxp", fonttest.MaxP(2)),
		"version":          fonttest.CFFSquare().Set("CFF", []byte{2, 0, 5, 0, 0}),
		"truncated":        fonttest.CFFSquare().Set("CFF", fonttest.CFFSquare().Table("CFF")[:20]),
	}
	for name, f := range tests {
		if _, err := Parse(f.Bytes()); !errors.Is(err, ErrMalformedFont) {
			t.Errorf("%s: expected font to be rejected, have %v", name, err)
		}
	}
}

func TestSubrBias(t *testing.T) {
	for count, expected := range map[int]int{0: 107, 1239: 107, 1240: 1131, 33899: 1131, 33900: 32768} {
		if bias := subrBias(count); bias != expected {
			t.Errorf("expected bias %d for %d subroutines, have %d", expected, count, bias)
		}
	}
}
