package main

import (
	"fmt"
	"strings"

	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/JAicewizard/ttf-parser/otquery"
	"github.com/thatisuday/commando"
)

func runGlyphCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	face := mustLoadFace(args, flags)
	input, err := parseTextInput(args["text"], flags["codepoints"])
	if err != nil {
		fatalf("%v", err)
	}
	if input == "" {
		fatalf("input text is empty")
	}
	coords := mustVariation(face, flags["variation"])
	showOutline := mustFlagBool(flags["outline"], "outline")
	for _, r := range input {
		fmt.Println(formatGlyphInfo(face, r, coords))
		if !showOutline {
			continue
		}
		cmds, err := face.OutlineVariation(face.GlyphIndex(r), coords)
		if err != nil {
			fmt.Printf("  outline error: %v\n", err)
			continue
		}
		for _, c := range cmds {
			fmt.Printf("  %s\n", c)
		}
	}
}

// formatGlyphInfo returns a single line describing the glyph for r.
func formatGlyphInfo(face *otquery.Face, r rune, coords []ot.NormalizedCoord) string {
	g := face.GlyphIndex(r)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%#U gid=%d", r, g)
	if name, ok := face.GlyphName(g); ok {
		fmt.Fprintf(&sb, " name=%s", name)
	}
	if adv, ok := face.AdvanceWidthVariation(g, coords); ok {
		fmt.Fprintf(&sb, " advance=%g", adv)
	}
	if lsb, ok := face.LeftSideBearing(g); ok {
		fmt.Fprintf(&sb, " lsb=%d", lsb)
	}
	if bbox, ok := face.GlyphBounds(g); ok {
		fmt.Fprintf(&sb, " bbox=(%g,%g)-(%g,%g)", bbox.XMin, bbox.YMin, bbox.XMax, bbox.YMax)
	}
	return sb.String()
}
