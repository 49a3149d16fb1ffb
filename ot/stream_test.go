package ot

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestStreamReads(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := []byte{
		0x01,                   // U8
		0xff, 0xfe,             // I16
		0x01, 0x02, 0x03,       // U24
		0x00, 0x01, 0x80, 0x00, // Fixed 1.5
		0xe0, 0x00,             // F2Dot14 -0.5
		'c', 'm', 'a', 'p',
	}
	s := NewStream(data)
	if v := s.U8(); v != 1 {
		t.Errorf("U8: expected 1, have %d", v)
	}
	if v := s.I16(); v != -2 {
		t.Errorf("I16: expected -2, have %d", v)
	}
	if v := s.U24(); v != 0x010203 {
		t.Errorf("U24: expected 0x010203, have %#x", v)
	}
	if v := s.Fixed(); v != 1.5 {
		t.Errorf("Fixed: expected 1.5, have %g", v)
	}
	if v := s.F2Dot14(); v != -0.5 {
		t.Errorf("F2Dot14: expected -0.5, have %g", v)
	}
	if v := s.Tag(); v != T("cmap") {
		t.Errorf("Tag: expected cmap, have %s", v)
	}
	if !s.AtEnd() || s.Err() != nil || s.Offset() != len(data) {
		t.Errorf("expected stream to be at its end without error")
	}
}

func TestStreamStickyError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	s := NewStream([]byte{0x12, 0x34, 0x56})
	if v := s.U16(); v != 0x1234 {
		t.Fatalf("expected 0x1234, have %#x", v)
	}
	if v := s.U16(); v != 0 || s.Err() == nil {
		t.Errorf("expected read past end to fail with zero value, have %#x", v)
	}
	if v := s.U8(); v != 0 {
		t.Errorf("expected reads after failure to return zero, have %#x", v)
	}
	if !errors.Is(s.Err(), errUnexpectedEOF) || s.Remaining() != 0 || !s.AtEnd() {
		t.Errorf("expected sticky end-of-data error, have %v", s.Err())
	}
	s.SeekTo(0)
	if s.U8() != 0 || s.Err() == nil {
		t.Errorf("expected seek not to reset the error state")
	}
}

func TestStreamSeek(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	s := NewStream(data)
	s.SeekTo(6)
	if v := s.U16(); v != 0x0607 || s.Err() != nil {
		t.Errorf("expected 0x0607 after seek, have %#x", v)
	}
	s.SeekTo(8)
	if s.Err() != nil || !s.AtEnd() {
		t.Errorf("expected seek to end of data to be valid")
	}
	s.SeekTo(9)
	if s.Err() == nil {
		t.Errorf("expected seek past end of data to fail")
	}
	s = NewStream(data)
	s.Skip(-1)
	if s.Err() == nil {
		t.Errorf("expected negative skip to fail")
	}
	s = newStreamAt(data, 4)
	if b := s.Bytes(3); len(b) != 3 || b[0] != 4 || s.Remaining() != 1 {
		t.Errorf("unexpected bytes %v", b)
	}
	if s = newStreamAt(data, 20); s.Err() == nil {
		t.Errorf("expected stream at invalid offset to be in error state")
	}
}

func TestStreamOffsetN(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := []byte{0x01, 0x02, 0x03, 0x04}
	for width, expected := range map[int]uint32{1: 0x01, 2: 0x0102, 3: 0x010203, 4: 0x01020304} {
		s := NewStream(data)
		if v := s.OffsetN(width); v != expected || s.Err() != nil {
			t.Errorf("offset of width %d: expected %#x, have %#x", width, expected, v)
		}
	}
	s := NewStream(data)
	if s.OffsetN(5); s.Err() == nil {
		t.Errorf("expected invalid offset width to fail")
	}
}
