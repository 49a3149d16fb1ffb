package main

import (
	"fmt"
	"strings"

	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/JAicewizard/ttf-parser/otquery"
	"github.com/thatisuday/commando"
)

func runFontCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	fontPath := strings.TrimSpace(args["font"].Value)
	sf := mustLoadFont(fontPath, mustFlagInt(flags["face"], "face"))
	otf := sf.Font

	fmt.Printf("Path: %s\n", fontPath)
	fmt.Printf("Type: %s\n", otquery.FontType(otf))
	fmt.Printf("Face: %d\n", otf.Header.FaceIndex)
	names := otquery.NameInfo(otf, ot.DFLT)
	if family := names["family"]; family != "" {
		fmt.Printf("Family: %s\n", family)
	}
	if sub := names["subfamily"]; sub != "" {
		fmt.Printf("Subfamily: %s\n", sub)
	}
	if version := names["version"]; version != "" {
		fmt.Printf("Version: %s\n", version)
	}
	fmt.Printf("Glyphs: %d, units per em: %d\n", otf.NumGlyphs(), otf.Head.UnitsPerEm)

	tags := otf.TableTags()
	fmt.Printf("Tables (%d):", len(tags))
	for _, tag := range tags {
		fmt.Printf(" %s", tag.String())
	}
	fmt.Println()
	fmt.Printf("Layout: %s\n", strings.Join(otquery.LayoutTables(otf), ","))
	if axes := otquery.New(otf).VariationAxes(); len(axes) > 0 {
		fmt.Printf("Axes:")
		for _, a := range axes {
			fmt.Printf(" %s[%g..%g..%g]", a.Tag, a.Min, a.Default, a.Max)
		}
		fmt.Println()
	}

	errs := otf.Errors()
	warns := otf.Warnings()
	crit := otf.CriticalErrors()
	fmt.Printf("Issues: errors=%d warnings=%d critical=%d\n", len(errs), len(warns), len(crit))

	if len(args["tables"].Value) > 0 {
		printSelectedTables(otf, args["tables"].Value)
	}
	if mustFlagBool(flags["errors"], "errors") {
		for _, e := range errs {
			fmt.Printf("error: %s\n", e.Error())
		}
		for _, w := range warns {
			fmt.Printf("warning: %s\n", w.String())
		}
	}
}

func printSelectedTables(otf *ot.Font, raw string) {
	records := otf.TableRecords()
	for _, tagName := range splitCSVSpace(raw) {
		tag := ot.T(tagName)
		var rec *ot.TableRecord
		for i := range records {
			if records[i].Tag == tag {
				rec = &records[i]
			}
		}
		if rec == nil {
			fmt.Printf("table %s: missing\n", tagName)
			continue
		}
		status := "ok"
		if !otf.HasTable(tag) {
			status = "dropped"
		} else if ok, err := otf.VerifyChecksum(tag); err != nil || !ok {
			status = "checksum mismatch"
		}
		fmt.Printf("table %s: offset=%d size=%d %s\n", tagName, rec.Offset, rec.Length, status)
	}
}
