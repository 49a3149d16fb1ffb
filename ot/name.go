package ot

import (
	"iter"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// NameTable allows to include human-readable names for features and settings,
// copyright notices, font names, style names, and other information related to
// the font.
type NameTable struct {
	tableBase
	count   int
	records binarySegm // name records, 12 bytes each
	strings binarySegm // string storage
}

// NameRecord is an entry of table 'name'. The string it references is decoded
// on demand.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	raw        []byte
}

func parseName(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	s := NewStream(b)
	version := s.U16()
	n := int(s.U16())
	strOffset := int(s.U16())
	records := s.Bytes(12 * n)
	if err := s.Err(); err != nil {
		return nil, asMalformed(tag, "Records", err)
	}
	if version > 1 {
		return nil, malformed(tag, "Version", "unsupported name table version %d", version)
	}
	strs, err := b.from(strOffset)
	if err != nil {
		return nil, malformed(tag, "Storage", "string offset %d exceeds table size %d", strOffset, size)
	}
	tracer().Debugf("name table has %d strings, starting at %d", n, strOffset)
	t := &NameTable{count: n, records: records, strings: strs}
	t.tableBase = makeBase(tag, b, offset, size, t)
	return t, nil
}

// Records iterates over all name records whose strings are located within the
// table. Records pointing outside the table are skipped.
func (t *NameTable) Records() iter.Seq[NameRecord] {
	return func(yield func(NameRecord) bool) {
		if t == nil {
			return
		}
		for i := 0; i < t.count; i++ {
			r := t.records[12*i:]
			rec := NameRecord{
				PlatformID: u16(r),
				EncodingID: u16(r[2:]),
				LanguageID: u16(r[4:]),
				NameID:     u16(r[6:]),
			}
			raw, err := t.strings.view(int(u16(r[10:])), int(u16(r[8:])))
			if err != nil {
				continue
			}
			rec.raw = raw
			if !yield(rec) {
				return
			}
		}
	}
}

// Decode returns the string of a name record. Strings of the Unicode and
// Windows platforms are decoded from UTF-16BE, strings of the Macintosh
// platform from Mac Roman. Other encodings are not supported.
func (rec NameRecord) Decode() (string, bool) {
	switch {
	case rec.PlatformID == pidUnicode,
		rec.PlatformID == pidWindows && (rec.EncodingID == psidWindowsSymbol ||
			rec.EncodingID == psidWindowsUCS2 || rec.EncodingID == psidWindowsUCS4):
		enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		s, err := enc.NewDecoder().Bytes(rec.raw)
		if err != nil {
			return "", false
		}
		return string(s), true
	case rec.PlatformID == pidMacintosh && rec.EncodingID == psidMacintoshRoman:
		s, err := charmap.Macintosh.NewDecoder().Bytes(rec.raw)
		if err != nil {
			return "", false
		}
		return string(s), true
	}
	return "", false
}

// Name returns the string for a name ID. English names for Windows are
// preferred, then Unicode platform names, then Macintosh English names.
func (t *NameTable) Name(id uint16) (string, bool) {
	best, rank := NameRecord{}, 0
	for rec := range t.Records() {
		if rec.NameID != id {
			continue
		}
		r := 0
		switch {
		case rec.PlatformID == pidWindows && rec.LanguageID == 0x0409:
			r = 4
		case rec.PlatformID == pidWindows:
			r = 2
		case rec.PlatformID == pidUnicode:
			r = 3
		case rec.PlatformID == pidMacintosh && rec.LanguageID == 0:
			r = 1
		}
		if r > rank {
			if _, ok := rec.Decode(); ok {
				best, rank = rec, r
			}
		}
	}
	if rank == 0 {
		return "", false
	}
	return best.Decode()
}
