package ot

import (
	"errors"
	"fmt"
)

// ErrMalformedFont is the error class for structurally corrupt font data.
// Every error returned by Parse or by an outline query because of broken
// font data wraps it, so clients may check with
//
//	errors.Is(err, ot.ErrMalformedFont)
var ErrMalformedFont = errors.New("malformed font")

// ErrFaceIndexOutOfRange is returned when a face is requested from a font
// collection which does not contain that many faces.
var ErrFaceIndexOutOfRange = errors.New("face index out of range")

// errUnexpectedEOF is the sticky error of a Stream. It never leaves a decoder
// unconverted.
var errUnexpectedEOF = errors.New("unexpected end of table data")

// ErrorSeverity represents the severity level of a font parsing error.
type ErrorSeverity int

const (
	// SeverityCritical indicates an error that makes the font unusable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a broken optional table, which has been dropped.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered during font parsing or while
// decoding glyph data.
// All FontErrors are of class ErrMalformedFont.
type FontError struct {
	Table    Tag           // The OpenType table where the error occurred (e.g., "glyf", "cmap")
	Section  string        // Specific section within the table (e.g., "Header", "Subtable")
	Issue    string        // Human-readable description of the issue
	Severity ErrorSeverity // Severity level of the error
	Offset   uint32        // Byte offset in the table where the error occurred (0 if unknown)
}

// Error implements the error interface.
func (e FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Table, e.Section, e.Issue)
}

// Unwrap makes every FontError match ErrMalformedFont.
func (e FontError) Unwrap() error {
	return ErrMalformedFont
}

// FontWarning represents a non-critical issue encountered during font parsing.
// Warnings indicate potential problems but do not prevent font usage.
type FontWarning struct {
	Table  Tag    // The OpenType table where the warning occurred
	Issue  string // Human-readable description of the warning
	Offset uint32 // Byte offset where the warning occurred (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// malformed creates a critical FontError for table t.
func malformed(t Tag, section string, format string, args ...any) error {
	return FontError{
		Table:    t,
		Section:  section,
		Issue:    fmt.Sprintf(format, args...),
		Severity: SeverityCritical,
	}
}

// asMalformed converts internal read errors (stream exhaustion, bounds
// violations) into a FontError. Errors which already are FontErrors pass
// through unchanged.
func asMalformed(t Tag, section string, err error) error {
	if err == nil {
		return nil
	}
	var fe FontError
	if errors.As(err, &fe) {
		return fe
	}
	return malformed(t, section, "%v", err)
}

// errorCollector accumulates errors and warnings during font parsing.
type errorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

// addError records a parsing error.
func (ec *errorCollector) addError(table Tag, section string, issue string, severity ErrorSeverity, offset uint32) {
	ec.errors = append(ec.errors, FontError{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   offset,
	})
}

// fail records err as critical and returns it as a FontError.
func (ec *errorCollector) fail(table Tag, section string, err error) error {
	err = asMalformed(table, section, err)
	fe := err.(FontError)
	fe.Severity = SeverityCritical
	ec.addError(fe.Table, fe.Section, fe.Issue, fe.Severity, fe.Offset)
	return fe
}

// drop records err for an optional table which will be treated as absent.
func (ec *errorCollector) drop(table Tag, err error) {
	err = asMalformed(table, "Table", err)
	fe := err.(FontError)
	tracer().Infof("dropping broken optional table %s: %s", table, fe.Issue)
	ec.addError(fe.Table, fe.Section, fe.Issue, SeverityMajor, fe.Offset)
}

// addWarning records a parsing warning.
func (ec *errorCollector) addWarning(table Tag, issue string, offset uint32) {
	ec.warnings = append(ec.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Offset: offset,
	})
}

// hasErrors returns true if any errors have been recorded.
func (ec *errorCollector) hasErrors() bool {
	return len(ec.errors) > 0
}

// hasWarnings returns true if any warnings have been recorded.
func (ec *errorCollector) hasWarnings() bool {
	return len(ec.warnings) > 0
}

// criticalErrors returns all errors with critical severity.
func (ec *errorCollector) criticalErrors() []FontError {
	critical := make([]FontError, 0)
	for _, err := range ec.errors {
		if err.Severity == SeverityCritical {
			critical = append(critical, err)
		}
	}
	return critical
}
