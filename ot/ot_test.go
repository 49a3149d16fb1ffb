package ot

import (
	"testing"

	"github.com/JAicewizard/ttf-parser/internal/fonttest"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tag := Tag(0x636d6170)
	if tag.String() != "cmap" {
		t.Errorf("expected tag 0x636d6170 to be 'cmap', is %s", tag.String())
	}
	tag = MakeTag([]byte("cmap"))
	if tag.String() != "cmap" {
		t.Errorf("expected tag MakeTag(cmap) to be 'cmap', is %s", tag.String())
	}
	tag = T("cmap")
	if tag.String() != "cmap" {
		t.Errorf("expected tag T(cmap) to be 'cmap', is %s", tag.String())
	}
	if T("CFF") != T("CFF ") {
		t.Errorf("expected short tags to be padded with spaces")
	}
	if MakeTag(nil) != 0 {
		t.Errorf("expected nil tag to be 0")
	}
}

func TestTableName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tb := tableBase{}
	tb.name = 0x636d6170
	s := tb.Self().NameTag().String()
	if s != "cmap" {
		t.Errorf("expected table name to be cmap, is %v", s)
	}
	if (TableSelf{}).NameTag() != 0 {
		t.Errorf("expected empty table reference to have no name")
	}
	if (TableSelf{}).AsCMap() != nil {
		t.Errorf("expected empty table reference to convert to nil")
	}
}

func TestTableDirectory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := parseFont(t, fonttest.Square())
	tags := otf.TableTags()
	if len(tags) != 7 {
		t.Fatalf("expected 7 tables, have %v", tags)
	}
	for i := 1; i < len(tags); i++ {
		if tags[i-1] >= tags[i] {
			t.Errorf("table tags not sorted: %v", tags)
		}
	}
	for _, tag := range []string{"head", "maxp", "cmap", "hhea", "hmtx", "glyf", "loca"} {
		if !otf.HasTable(T(tag)) {
			t.Errorf("expected font to contain table %s", tag)
		}
		ok, err := otf.VerifyChecksum(T(tag))
		if err != nil || !ok {
			t.Errorf("checksum of table %s does not verify: %v", tag, err)
		}
	}
	if otf.HasTable(T("GSUB")) || otf.Table(T("GSUB")) != nil {
		t.Errorf("expected font to not contain table GSUB")
	}
	if _, err := otf.VerifyChecksum(T("GSUB")); err == nil {
		t.Errorf("expected checksum of missing table to fail")
	}
	head := otf.Table(T("head"))
	if head.Self().AsHead() != otf.Head {
		t.Errorf("expected typed head table to be reachable from table directory")
	}
	if head.Self().AsMaxP() != nil {
		t.Errorf("expected head table not to convert to maxp")
	}
	off, size := head.Extent()
	if size != 54 || off == 0 || len(head.Binary()) != 54 {
		t.Errorf("unexpected extent of head: %d, %d", off, size)
	}
	if otf.OutlineFormat() != OutlineGlyf || otf.OutlineFormat().String() != "glyf" {
		t.Errorf("expected glyf outlines, have %s", otf.OutlineFormat())
	}
}

func TestNilFontAccessors(t *testing.T) {
	var otf *Font
	if otf.NumGlyphs() != 0 || otf.Table(T("head")) != nil || otf.HorizontalMetrics() != nil {
		t.Errorf("expected nil font to have no content")
	}
	if otf.Errors() != nil || otf.Warnings() != nil || otf.HasCriticalErrors() {
		t.Errorf("expected nil font to have no errors")
	}
}

// ---------------------------------------------------------------------------

// parseFont serializes a synthetic font and parses it, failing the test on
// error.
func parseFont(t *testing.T, f *fonttest.Font) *Font {
	t.Helper()
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	defer tracer().SetTraceLevel(level)
	otf, err := Parse(f.Bytes())
	if err != nil {
		t.Fatalf("cannot parse test font: %v", err)
	}
	return otf
}

// outline collects the outline of glyph gid, failing the test on error.
func outline(t *testing.T, otf *Font, gid GlyphIndex, coords []NormalizedCoord) ([]Command, Rect) {
	t.Helper()
	var cc CommandCollector
	bbox, err := otf.Outline(gid, coords, &cc)
	if err != nil {
		t.Fatalf("outline of glyph %d: %v", gid, err)
	}
	return cc.Commands, bbox
}

func moveTo(x, y float32) Command {
	return Command{Kind: MoveTo, Args: [3]Point{{x, y}}}
}

func lineTo(x, y float32) Command {
	return Command{Kind: LineTo, Args: [3]Point{{x, y}}}
}

func quadTo(x1, y1, x, y float32) Command {
	return Command{Kind: QuadTo, Args: [3]Point{{x1, y1}, {x, y}}}
}

func cubicTo(x1, y1, x2, y2, x, y float32) Command {
	return Command{Kind: CubicTo, Args: [3]Point{{x1, y1}, {x2, y2}, {x, y}}}
}

var closePath = Command{Kind: Close}

func equalCommands(a, b []Command) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
