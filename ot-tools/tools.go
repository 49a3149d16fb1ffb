package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JAicewizard/ttf-parser/internal/fontload"
	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/JAicewizard/ttf-parser/otquery"
	"github.com/thatisuday/commando"
)

func main() {
	commando.
		SetExecutableName("ot-tools").
		SetVersion("v0.1.0").
		SetDescription("CLI for TrueType/OpenType font diagnostics, glyph information and outline export.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("font").
		SetDescription("Print diagnostics and table information for a font.").
		SetShortDescription("font diagnostics").
		AddArgument("font", "font file path (TTF, OTF or TTC)", "").
		AddArgument("tables...", "optional list of table tags (e.g. GSUB,GPOS,head)", "").
		AddFlag("face,F", "face index for font collections", commando.Int, 0).
		AddFlag("errors,e", "print parse errors and warnings", commando.Bool, nil).
		SetAction(runFontCommand)

	commando.
		Register("glyph").
		SetDescription("Print glyph indices, metrics and outlines for text.").
		SetShortDescription("glyph information").
		AddArgument("font", "font file path (TTF, OTF or TTC)", "").
		AddArgument("text...", "text to look up (variadic argument parts joined by comma by commando)", "").
		AddFlag("face,F", "face index for font collections", commando.Int, 0).
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0627,U+0644)", commando.String, "-").
		AddFlag("variation,v", "variation axis settings (e.g. wght=700,wdth=80)", commando.String, "-").
		AddFlag("outline,o", "print outline commands", commando.Bool, nil).
		SetAction(runGlyphCommand)

	commando.
		Register("svg").
		SetDescription("Write the outlines of text to an SVG file, glyph by glyph without shaping.").
		SetShortDescription("outlines to SVG").
		AddArgument("font", "font file path (TTF, OTF or TTC)", "").
		AddArgument("text...", "text to convert", "").
		AddFlag("face,F", "face index for font collections", commando.Int, 0).
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0627,U+0644)", commando.String, "-").
		AddFlag("variation,v", "variation axis settings (e.g. wght=700,wdth=80)", commando.String, "-").
		AddFlag("output,o", "output SVG file", commando.String, "ot-tools.svg").
		AddFlag("show-bboxes,B", "draw red bounding boxes per glyph", commando.Bool, nil).
		SetAction(runSVGCommand)

	commando.Parse(nil)
}

func parseTextInput(textArg commando.ArgValue, cpFlag commando.FlagValue) (string, error) {
	cp, err := cpFlag.GetString()
	if err != nil {
		return "", fmt.Errorf("invalid --codepoints flag: %w", err)
	}
	cp = strings.TrimSpace(cp)
	if cp == "-" {
		cp = ""
	}
	if cp != "" {
		runes, err := parseCodepoints(cp)
		if err != nil {
			return "", err
		}
		return string(runes), nil
	}
	return textArg.Value, nil
}

func parseCodepoints(spec string) ([]rune, error) {
	parts := splitCSVSpace(spec)
	out := make([]rune, 0, len(parts))
	for _, p := range parts {
		r, err := parseCodepointToken(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseCodepointToken(token string) (rune, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, errors.New("empty codepoint token")
	}
	hex := token
	switch {
	case strings.HasPrefix(hex, "U+"), strings.HasPrefix(hex, "u+"):
		hex = hex[2:]
	case strings.HasPrefix(hex, "0x"), strings.HasPrefix(hex, "0X"):
		hex = hex[2:]
	}
	u, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q: %w", token, err)
	}
	if u > 0x10ffff {
		return 0, fmt.Errorf("codepoint %q out of range", token)
	}
	return rune(u), nil
}

// parseVariations parses axis settings of the form "wght=700,wdth=80".
// "-" and the empty string denote the default instance.
func parseVariations(spec string) ([]ot.Variation, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "-" {
		return nil, nil
	}
	var vars []ot.Variation
	for _, item := range splitCSVSpace(spec) {
		tag, value, ok := strings.Cut(item, "=")
		if !ok || len(tag) == 0 || len(tag) > 4 {
			return nil, fmt.Errorf("invalid variation setting %q", item)
		}
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value of axis %s: %w", tag, err)
		}
		vars = append(vars, ot.Variation{Tag: ot.T(tag), Value: float32(v)})
	}
	return vars, nil
}

func splitCSVSpace(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func mustLoadFont(path string, index int) *fontload.ScalableFont {
	if path == "" {
		fatalf("font path is required")
	}
	sf, err := fontload.LoadOpenTypeFont(path, index)
	if err != nil {
		fatalf("cannot load font: %v", err)
	}
	return sf
}

func mustLoadFace(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) *otquery.Face {
	sf := mustLoadFont(strings.TrimSpace(args["font"].Value), mustFlagInt(flags["face"], "face"))
	return otquery.New(sf.Font)
}

func mustVariation(face *otquery.Face, flag commando.FlagValue) []ot.NormalizedCoord {
	spec, err := flag.GetString()
	if err != nil {
		fatalf("invalid --variation flag: %v", err)
	}
	vars, err := parseVariations(spec)
	if err != nil {
		fatalf("%v", err)
	}
	if len(vars) > 0 && !face.IsVariable() {
		fatalf("font has no variation axes")
	}
	return face.NormalizeVariation(vars...)
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "ot-tools: "+format+"\n", args...)
	os.Exit(1)
}
