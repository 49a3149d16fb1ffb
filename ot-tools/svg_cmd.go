package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/JAicewizard/ttf-parser/otquery"
	"github.com/thatisuday/commando"
)

func runSVGCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	face := mustLoadFace(args, flags)
	input, err := parseTextInput(args["text"], flags["codepoints"])
	if err != nil {
		fatalf("%v", err)
	}
	if input == "" {
		fatalf("input text is empty")
	}
	coords := mustVariation(face, flags["variation"])
	outPath, err := flags["output"].GetString()
	if err != nil {
		fatalf("invalid --output flag: %v", err)
	}
	outPath = strings.TrimSpace(outPath)
	if outPath == "" {
		fatalf("output path is empty")
	}
	run, err := layoutRun(face, input, coords)
	if err != nil {
		fatalf("layout failed: %v", err)
	}
	doc := svgDocument(run, float32(face.UnitsPerEm()), mustFlagBool(flags["show-bboxes"], "show-bboxes"))
	if err := writeFile(outPath, doc); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("wrote %s (glyphs=%d)\n", outPath, len(run.glyphs))
}

// placedGlyph is a glyph outline positioned on the baseline. All values are
// in font units.
type placedGlyph struct {
	gid  ot.GlyphIndex
	x    float32
	cmds []ot.Command
	bbox ot.Rect // relative to x
}

type glyphRun struct {
	glyphs  []placedGlyph
	bbox    ot.Rect // union of all glyph bounds
	advance float32
}

// layoutRun places the glyphs for text one after another, advancing by
// the (possibly varied) advance widths. No shaping is applied.
func layoutRun(face *otquery.Face, text string, coords []ot.NormalizedCoord) (glyphRun, error) {
	var run glyphRun
	haveBox := false
	for _, r := range text {
		g := face.GlyphIndex(r)
		var cc ot.CommandCollector
		bbox, err := face.Font().Outline(g, coords, &cc)
		if err != nil {
			return run, fmt.Errorf("outline of %#U: %w", r, err)
		}
		run.glyphs = append(run.glyphs, placedGlyph{gid: g, x: run.advance, cmds: cc.Commands, bbox: bbox})
		if !bbox.IsEmpty() {
			shifted := ot.Rect{XMin: bbox.XMin + run.advance, YMin: bbox.YMin,
				XMax: bbox.XMax + run.advance, YMax: bbox.YMax}
			if !haveBox {
				run.bbox, haveBox = shifted, true
			} else {
				run.bbox = union(run.bbox, shifted)
			}
		}
		if adv, ok := face.AdvanceWidthVariation(g, coords); ok {
			run.advance += adv
		}
	}
	if len(run.glyphs) == 0 {
		return run, errors.New("empty glyph run")
	}
	return run, nil
}

func union(a, b ot.Rect) ot.Rect {
	return ot.Rect{
		XMin: min(a.XMin, b.XMin), YMin: min(a.YMin, b.YMin),
		XMax: max(a.XMax, b.XMax), YMax: max(a.YMax, b.YMax),
	}
}

// pathSink writes outline commands as SVG path data. The y axis is flipped,
// as SVG coordinates grow downward.
type pathSink struct {
	sb *strings.Builder
	dx float32
}

func (s *pathSink) pt(x, y float32) string {
	return num(s.dx+x) + " " + num(-y)
}

func (s *pathSink) MoveTo(x, y float32) {
	s.sb.WriteString("M" + s.pt(x, y))
}

func (s *pathSink) LineTo(x, y float32) {
	s.sb.WriteString("L" + s.pt(x, y))
}

func (s *pathSink) QuadTo(x1, y1, x, y float32) {
	s.sb.WriteString("Q" + s.pt(x1, y1) + " " + s.pt(x, y))
}

func (s *pathSink) CubicTo(x1, y1, x2, y2, x, y float32) {
	s.sb.WriteString("C" + s.pt(x1, y1) + " " + s.pt(x2, y2) + " " + s.pt(x, y))
}

func (s *pathSink) Close() {
	s.sb.WriteString("Z")
}

func num(f float32) string {
	if f == 0 {
		return "0" // no negative zero
	}
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

// replay sends recorded commands to sink.
func replay(cmds []ot.Command, sink ot.OutlineSink) {
	for _, c := range cmds {
		switch c.Kind {
		case ot.MoveTo:
			sink.MoveTo(c.Args[0].X, c.Args[0].Y)
		case ot.LineTo:
			sink.LineTo(c.Args[0].X, c.Args[0].Y)
		case ot.QuadTo:
			sink.QuadTo(c.Args[0].X, c.Args[0].Y, c.Args[1].X, c.Args[1].Y)
		case ot.CubicTo:
			sink.CubicTo(c.Args[0].X, c.Args[0].Y, c.Args[1].X, c.Args[1].Y, c.Args[2].X, c.Args[2].Y)
		case ot.Close:
			sink.Close()
		}
	}
}

// glyphPath returns the SVG path data of a placed glyph.
func glyphPath(g placedGlyph) string {
	var sb strings.Builder
	replay(g.cmds, &pathSink{sb: &sb, dx: g.x})
	return sb.String()
}

// svgDocument returns an SVG document for a glyph run in font units. The
// view box spans the advance of the run and one em, with the baseline at y=0.
func svgDocument(run glyphRun, upem float32, showBBoxes bool) string {
	var sb strings.Builder
	ascent := max(run.bbox.YMax, upem*0.8)
	descent := min(run.bbox.YMin, -upem*0.2)
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s">`+"\n",
		num(min(0, run.bbox.XMin)), num(-ascent), num(max(run.advance, run.bbox.XMax)), num(ascent-descent))
	for _, g := range run.glyphs {
		if len(g.cmds) == 0 {
			continue
		}
		fmt.Fprintf(&sb, `  <path d="%s" fill-rule="nonzero"/>`+"\n", glyphPath(g))
	}
	if showBBoxes {
		for _, g := range run.glyphs {
			if g.bbox.IsEmpty() {
				continue
			}
			fmt.Fprintf(&sb, `  <rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="red"/>`+"\n",
				num(g.x+g.bbox.XMin), num(-g.bbox.YMax),
				num(g.bbox.XMax-g.bbox.XMin), num(g.bbox.YMax-g.bbox.YMin))
		}
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

func writeFile(outPath string, content string) error {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("cannot write output file: %w", err)
	}
	return nil
}
