package otquery

import (
	"iter"

	"github.com/JAicewizard/ttf-parser/ot"
	"golang.org/x/image/font/sfnt"
)

// NamesRange yields decoded `(nameID, value)` pairs from a font's OpenType
// `name` table, one pair per name ID, in the order of first appearance.
//
// If a name ID has records for more than one platform or language, the value
// preferred by ot.NameTable.Name is yielded. Records which cannot be decoded
// are skipped.
func NamesRange(otf *ot.Font) iter.Seq2[sfnt.NameID, string] {
	return func(yield func(sfnt.NameID, string) bool) {
		if otf == nil || otf.Name == nil {
			return
		}
		seen := make(map[uint16]bool)
		for rec := range otf.Name.Records() {
			if seen[rec.NameID] {
				continue
			}
			seen[rec.NameID] = true
			value, ok := otf.Name.Name(rec.NameID)
			if !ok || value == "" {
				continue
			}
			if !yield(sfnt.NameID(rec.NameID), value) {
				return
			}
		}
	}
}

// nameKeys are the keys of the map returned by NameInfo.
var nameKeys = map[sfnt.NameID]string{
	sfnt.NameIDCopyright:            "copyright",
	sfnt.NameIDFamily:               "family",
	sfnt.NameIDSubfamily:            "subfamily",
	sfnt.NameIDUniqueIdentifier:     "id",
	sfnt.NameIDFull:                 "full",
	sfnt.NameIDVersion:              "version",
	sfnt.NameIDPostScript:           "postscript",
	sfnt.NameIDTrademark:            "trademark",
	sfnt.NameIDManufacturer:         "manufacturer",
	sfnt.NameIDDesigner:             "designer",
	sfnt.NameIDLicense:              "license",
	sfnt.NameIDTypographicFamily:    "typographic-family",
	sfnt.NameIDTypographicSubfamily: "typographic-subfamily",
}

// windowsLanguages maps OpenType language system tags to Windows language IDs
// for the languages most frequently found in name tables.
var windowsLanguages = map[ot.Tag]uint16{
	ot.T("ENG"): 0x0409,
	ot.T("DEU"): 0x0407,
	ot.T("FRA"): 0x040c,
	ot.T("ESP"): 0x0c0a,
	ot.T("ITA"): 0x0410,
	ot.T("NLD"): 0x0413,
	ot.T("PTG"): 0x0816,
	ot.T("RUS"): 0x0419,
	ot.T("JAN"): 0x0411,
	ot.T("KOR"): 0x0412,
	ot.T("ZHS"): 0x0804,
	ot.T("ZHT"): 0x0404,
}

// NameInfo returns general information about a font from its name table, with
// keys "family", "subfamily", "full", "version", "postscript" etc.
//
// lang is an OpenType language system tag. If the name table contains Windows
// records for this language, they are preferred; otherwise, and for lang = DFLT,
// English names are returned.
func NameInfo(otf *ot.Font, lang ot.Tag) map[string]string {
	info := make(map[string]string)
	for id, value := range NamesRange(otf) {
		if key, ok := nameKeys[id]; ok {
			info[key] = value
		}
	}
	lcid, ok := windowsLanguages[lang]
	if !ok || lcid == 0x0409 || otf == nil {
		return info
	}
	for rec := range otf.Name.Records() {
		if rec.PlatformID != 3 || rec.LanguageID != lcid {
			continue
		}
		key, ok := nameKeys[sfnt.NameID(rec.NameID)]
		if !ok {
			continue
		}
		if value, ok := rec.Decode(); ok && value != "" {
			tracer().Debugf("name %d has a translation for %s", rec.NameID, lang)
			info[key] = value
		}
	}
	return info
}
