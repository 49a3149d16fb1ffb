package ot

import "testing"

func TestOption(t *testing.T) {
	some := Some[GlyphIndex](7)
	if !some.IsSome() || some.IsNone() || some.Or(1) != 7 || some.MustUnwrap() != 7 {
		t.Errorf("unexpected option %v", some)
	}
	none := None[GlyphIndex]()
	if g, ok := none.Unwrap(); ok || g != 0 || none.Or(1) != 1 {
		t.Errorf("expected empty option, have %v", none)
	}
	if some.String() != "Some(7)" || none.String() != "None" {
		t.Errorf("unexpected string representations %s and %s", some, none)
	}
	defer func() {
		if recover() == nil {
			t.Errorf("expected unwrap of empty option to panic")
		}
	}()
	none.MustUnwrap()
}
