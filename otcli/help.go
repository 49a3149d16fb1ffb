package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Debugf("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "glyph", "glyphs", "outline":
		pterm.Info.Println("Glyphs")
		pterm.Println(`
	Glyphs may be given as a single character, as a code-point or as a glyph index:
	+-----------------+---------------------------------+
	| glyph:A         | glyph mapped to 'A' by cmap     |
	| glyph:U+00E4    | glyph mapped to code-point E4   |
	| glyph:#36       | glyph number 36                 |
	+-----------------+---------------------------------+
	outline:A prints the path commands of a glyph, outline:A:summary counts them.
	`)
	case "script", "scripts", "lang", "langsys", "features", "lookups":
		pterm.Info.Println("Layout tables")
		pterm.Println(`
	Select a layout table first, then query it:
	+------------------+------------------------------------------+
	| table:GSUB       | select GSUB (or GPOS)                    |
	| scripts          | list script tags                         |
	| scripts:latn     | language systems of a script             |
	| features         | feature list with lookup indices         |
	| lookups[:n]      | lookup list or a single lookup           |
	+------------------+------------------------------------------+
	Steps may be chained: "table:GPOS scripts:latn"
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	tables               table directory with checksums
	table:<tag>          select GSUB/GPOS, or print head/maxp
	glyph:<g>            glyph metrics and name
	outline:<g>[:summary] glyph outline
	metrics              font-wide metrics
	names[:<lang>]       font names, e.g. names:DEU
	axes                 variation axes
	scripts, features, lookups
	help:<topic>         topics: glyph, scripts
	quit
	`)
	}
}
