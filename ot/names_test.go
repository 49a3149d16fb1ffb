package ot

import (
	"testing"

	"github.com/JAicewizard/ttf-parser/internal/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestPostGlyphNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	f := fonttest.Square()
	f.Set("post", fonttest.Post(".notdef", "square"))
	otf := parseFont(t, f)
	post := otf.Post
	if post == nil || !post.HasGlyphNames() {
		t.Fatalf("expected post table with glyph names")
	}
	if post.UnderlinePosition != -100 || post.UnderlineThickness != 50 {
		t.Errorf("unexpected underline metrics %d/%d", post.UnderlinePosition, post.UnderlineThickness)
	}
	for g, expected := range map[GlyphIndex]string{0: ".notdef", 1: "square"} {
		if name, ok := post.GlyphName(g); !ok || name != expected {
			t.Errorf("expected glyph %d to be named %q, have %q", g, expected, name)
		}
	}
	if _, ok := post.GlyphName(2); ok {
		t.Errorf("expected glyph 2 to be unnamed")
	}
	if g, ok := post.GlyphByName("square"); !ok || g != 1 {
		t.Errorf("expected glyph 'square' to be 1, have %d", g)
	}
	if _, ok := post.GlyphByName("circle"); ok {
		t.Errorf("expected no glyph 'circle'")
	}
	if len(otf.Warnings()) != 0 {
		t.Errorf("unexpected warnings %v", otf.Warnings())
	}
	//
	f.Set("post", fonttest.Post(".notdef", "A", "B"))
	otf = parseFont(t, f)
	if len(otf.Warnings()) != 1 {
		t.Errorf("expected a warning for surplus glyph names, have %v", otf.Warnings())
	}
	if name, _ := otf.Post.GlyphName(1); name != "A" {
		t.Errorf("expected standard name A for glyph 1, have %q", name)
	}
}

func TestPostVersions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	post := func(version uint32) []byte {
		var b fonttest.Buffer
		b.U32(version).Fixed(-12.5).I16(-80, 40).U32(1, 0, 0, 0, 0)
		return b
	}
	f := fonttest.Square()
	f.Set("post", post(0x00010000))
	otf := parseFont(t, f)
	if name, ok := otf.Post.GlyphName(1); !ok || name != ".null" {
		t.Errorf("expected standard name .null for glyph 1, have %q", name)
	}
	if otf.Post.ItalicAngle != -12.5 || !otf.Post.IsFixedPitch {
		t.Errorf("unexpected post header %+v", otf.Post)
	}
	f.Set("post", post(0x00030000))
	otf = parseFont(t, f)
	if otf.Post == nil || otf.Post.HasGlyphNames() {
		t.Errorf("expected post table version 3 without glyph names")
	}
	if _, ok := otf.Post.GlyphByName(".notdef"); ok {
		t.Errorf("expected no glyph names for version 3")
	}
	f.Set("post", post(0x00040000))
	otf = parseFont(t, f)
	if otf.Post != nil || len(otf.Errors()) != 1 {
		t.Errorf("expected unsupported post table to be dropped")
	}
}

func TestNameTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	f := fonttest.Square()
	f.Set("name", fonttest.Name(map[uint16]string{1: "Square", 2: "Regular", 4: "Square Regular"}))
	otf := parseFont(t, f)
	if name, ok := otf.Name.Name(4); !ok || name != "Square Regular" {
		t.Errorf("expected full name 'Square Regular', have %q", name)
	}
	if _, ok := otf.Name.Name(6); ok {
		t.Errorf("expected no PostScript name")
	}
	n := 0
	for rec := range otf.Name.Records() {
		if rec.PlatformID != 3 || rec.LanguageID != 0x409 {
			t.Errorf("unexpected record %+v", rec)
		}
		n++
	}
	if n != 3 {
		t.Errorf("expected 3 name records, have %d", n)
	}
}

func TestNamePlatforms(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	type record struct {
		platform, encoding, language, id uint16
		raw                              []byte
	}
	records := []record{
		{1, 0, 0, 1, []byte("Mac")},
		{3, 1, 0x409, 1, []byte{0, 'W', 0, 'i', 0, 'n'}},
		{1, 0, 0, 2, []byte{'C', 'a', 'f', 0x8e}},
		{3, 1, 0x407, 3, []byte{0, 'D', 0, 'E'}},
		{0, 3, 0, 3, []byte{0, 'U', 0, 'n', 0, 'i'}},
		{7, 0, 0, 5, []byte("???")},
		{3, 1, 0x409, 6, []byte("far away")}, // offset patched beyond storage
	}
	var b, strs fonttest.Buffer
	b.U16(0, uint16(len(records)), uint16(6+12*len(records)))
	for _, r := range records {
		b.U16(r.platform, r.encoding, r.language, r.id, uint16(len(r.raw)), uint16(strs.Len()))
		strs.Bytes(r.raw)
	}
	b.PutU16(6+12*(len(records)-1)+10, 0x7000)
	f := fonttest.Square()
	f.Set("name", append(b, strs...))
	otf := parseFont(t, f)
	tests := []struct {
		id       uint16
		expected string
		ok       bool
	}{
		{1, "Win", true},
		{2, "Café", true},
		{3, "Uni", true},
		{5, "", false},
		{6, "", false},
	}
	for _, tt := range tests {
		if name, ok := otf.Name.Name(tt.id); ok != tt.ok || name != tt.expected {
			t.Errorf("name %d: expected %q, have %q", tt.id, tt.expected, name)
		}
	}
	n := 0
	for range otf.Name.Records() {
		n++
	}
	if n != len(records)-1 {
		t.Errorf("expected record outside of the table to be skipped, have %d records", n)
	}
}
