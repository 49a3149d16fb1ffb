/*
Package ot provides read-only access to TrueType and OpenType font binaries.

An ot.Font is a view onto the caller's byte slice. Parsing locates and validates
the table directory (of a single font or of one face within a font collection),
decodes the tables needed for glyph lookup and metrics eagerly, and keeps the
remaining tables as byte ranges which are interpreted on demand. No font data
is copied out of the caller's buffer, and no query modifies it.

Intended audience for this package are:

▪︎ glyph rasterizers, which need outlines (TrueType quadratic or CFF cubic)
as a sequence of path commands

▪︎ text layout engines, which need glyph IDs for code-points, advances and
font-wide metrics

▪︎ any application needing to have the internal structure of an OpenType font file
available, e.g. for inspection tools

Functions for convenient querying of font properties are homed in sister package
`otquery`. Package `ot` exposes the tables, plus the few operations which require
more than one table to answer (outline construction, variation deltas).

Fonts in the wild are frequently broken. Package `ot` will never panic or loop on
malformed input, as every read is bounds-checked and every recursion or
interpreter run is bounded. Structural corruption of tables required for glyph
lookup and outlines yields an error wrapping ErrMalformedFont. Corruption of
optional tables is recorded (see Font.Errors) and the table is treated as
absent.

# Status

TrueType and CFF outlines, font collections and variable fonts (fvar, avar, gvar,
HVAR) are supported. CFF2 outlines are not.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Some of the cmap and CFF routines follow golang.org/x/image/font/sfnt.
I understand this to be legally okay as long as the Go license information
stays intact.

	Copyright 2017 The Go Authors. All rights reserved.
	Use of this source code is governed by a BSD-style
	license that can be found in the LICENSE file.
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}
