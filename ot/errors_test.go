package ot

import (
	"errors"
	"testing"
)

func TestErrorSeverity(t *testing.T) {
	tests := []struct {
		severity ErrorSeverity
		expected string
	}{
		{SeverityCritical, "CRITICAL"},
		{SeverityMajor, "MAJOR"},
		{SeverityMinor, "MINOR"},
		{ErrorSeverity(999), "UNKNOWN"},
	}
	for _, tt := range tests {
		result := tt.severity.String()
		if result != tt.expected {
			t.Errorf("ErrorSeverity(%d).String() = %q; want %q", tt.severity, result, tt.expected)
		}
	}
}

func TestFontError(t *testing.T) {
	tests := []struct {
		name     string
		err      FontError
		expected string
	}{
		{
			name: "Error with offset",
			err: FontError{
				Table:    T("glyf"),
				Section:  "Composite",
				Issue:    "component depth exceeded",
				Severity: SeverityCritical,
				Offset:   1234,
			},
			expected: "[CRITICAL] glyf/Composite at offset 1234: component depth exceeded",
		},
		{
			name: "Error without offset",
			err: FontError{
				Table:    T("cmap"),
				Section:  "Format4",
				Issue:    "segment count odd",
				Severity: SeverityMajor,
			},
			expected: "[MAJOR] cmap/Format4: segment count odd",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.err.Error(); result != tt.expected {
				t.Errorf("FontError.Error() = %q; want %q", result, tt.expected)
			}
			if !errors.Is(tt.err, ErrMalformedFont) {
				t.Errorf("expected FontError to be of class ErrMalformedFont")
			}
		})
	}
}

func TestFontWarning(t *testing.T) {
	w := FontWarning{Table: T("hmtx"), Issue: "truncated side bearings", Offset: 12}
	if s := w.String(); s != "[WARNING] hmtx at offset 12: truncated side bearings" {
		t.Errorf("unexpected warning string %q", s)
	}
	w.Offset = 0
	if s := w.String(); s != "[WARNING] hmtx: truncated side bearings" {
		t.Errorf("unexpected warning string %q", s)
	}
}

func TestInternalErrorsConvertToMalformed(t *testing.T) {
	for _, internal := range []error{errUnexpectedEOF, errBufferBounds} {
		err := asMalformed(T("loca"), "Offsets", internal)
		if !errors.Is(err, ErrMalformedFont) {
			t.Errorf("%v did not convert to malformed font error", internal)
		}
		if errors.Is(err, internal) {
			t.Errorf("internal error %v leaks through conversion", internal)
		}
	}
	fe := malformed(T("head"), "Magic", "bad magic %x", 0x1234)
	if again := asMalformed(T("xxxx"), "Other", fe); again != fe {
		t.Errorf("expected FontError to pass unchanged, have %v", again)
	}
	if asMalformed(T("head"), "", nil) != nil {
		t.Errorf("expected nil to stay nil")
	}
}

func TestErrorCollector(t *testing.T) {
	ec := &errorCollector{}
	if ec.hasErrors() || ec.hasWarnings() {
		t.Fatalf("new collector should be empty")
	}
	ec.addWarning(T("OS/2"), "unaligned table", 7)
	ec.drop(T("post"), errUnexpectedEOF)
	err := ec.fail(T("maxp"), "Header", errUnexpectedEOF)
	if !errors.Is(err, ErrMalformedFont) {
		t.Errorf("fail should return a malformed font error")
	}
	if !ec.hasErrors() || !ec.hasWarnings() {
		t.Errorf("collector should have errors and warnings")
	}
	if len(ec.errors) != 2 {
		t.Errorf("expected 2 errors, have %d", len(ec.errors))
	}
	crit := ec.criticalErrors()
	if len(crit) != 1 || crit[0].Table != T("maxp") {
		t.Errorf("expected 1 critical error for maxp, have %v", crit)
	}
	if ec.errors[0].Severity != SeverityMajor {
		t.Errorf("dropped table should be recorded as major, is %s", ec.errors[0].Severity)
	}
}
