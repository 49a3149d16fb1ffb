package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/JAicewizard/ttf-parser/otquery"
	"github.com/pterm/pterm"
)

func glyphOp(intp *Intp, op *Op) (error, bool) {
	g, err := intp.glyphArg(op.arg)
	if err != nil {
		return err, false
	}
	name, _ := intp.face.GlyphName(g)
	r := otquery.CodePointForGlyph(intp.face.Font(), g)
	gm := otquery.GlyphMetrics(intp.face.Font(), g)
	data := [][]string{
		{"Glyph", "Name", "Code-point", "Advance", "LSB", "RSB", "BBox"},
		{
			fmt.Sprintf("%d", g),
			name,
			fmt.Sprintf("%#U", r),
			fmt.Sprintf("%d", gm.Advance),
			fmt.Sprintf("%d", gm.LSB),
			fmt.Sprintf("%d", gm.RSB),
			formatBBox(gm.BBox),
		},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

// outlineOp prints the path commands of a glyph. With format "summary" only
// the number of commands per kind is printed.
func outlineOp(intp *Intp, op *Op) (error, bool) {
	g, err := intp.glyphArg(op.arg)
	if err != nil {
		return err, false
	}
	var cc ot.CommandCollector
	bbox, err := intp.face.OutlineTo(g, &cc)
	if err != nil {
		return err, false
	}
	pterm.Printf("glyph %d: %d commands, bounds %v\n", g, len(cc.Commands), bbox)
	if op.format == "summary" {
		counts := make(map[ot.CommandKind]int)
		for _, c := range cc.Commands {
			counts[c.Kind]++
		}
		for k := ot.MoveTo; k <= ot.Close; k++ {
			pterm.Printf("  %-8s %d\n", k, counts[k])
		}
		return nil, false
	}
	for _, c := range cc.Commands {
		pterm.Println("  " + c.String())
	}
	return nil, false
}

func metricsOp(intp *Intp, op *Op) (error, bool) {
	m := otquery.FontMetrics(intp.face.Font())
	data := [][]string{
		{"UnitsPerEm", "Ascent", "Descent", "LineGap", "MaxAdvance", "XHeight", "CapHeight"},
		{
			fmt.Sprintf("%d", m.UnitsPerEm),
			fmt.Sprintf("%d", m.Ascent),
			fmt.Sprintf("%d", m.Descent),
			fmt.Sprintf("%d", m.LineGap),
			fmt.Sprintf("%d", m.MaxAdvance),
			fmt.Sprintf("%d", m.XHeight),
			fmt.Sprintf("%d", m.CapHeight),
		},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Printf("%d glyphs, %s\n", intp.face.NumberOfGlyphs(), otquery.FontType(intp.face.Font()))
	return nil, false
}

// namesOp prints the names of the font, optionally for a language, e.g.
// "names:DEU".
func namesOp(intp *Intp, op *Op) (error, bool) {
	lang := ot.DFLT
	if arg, ok := op.hasArg(); ok {
		lang = ot.T(arg)
	}
	info := otquery.NameInfo(intp.face.Font(), lang)
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	data := [][]string{{"Key", "Value"}}
	for _, k := range keys {
		data = append(data, []string{k, info[k]})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func axesOp(intp *Intp, op *Op) (error, bool) {
	if !intp.face.IsVariable() {
		pterm.Println("font is not variable")
		return nil, false
	}
	data := [][]string{{"Axis", "Min", "Default", "Max", "Hidden"}}
	for _, a := range intp.face.VariationAxes() {
		data = append(data, []string{
			a.Tag.String(),
			fmt.Sprintf("%g", a.Min),
			fmt.Sprintf("%g", a.Default),
			fmt.Sprintf("%g", a.Max),
			fmt.Sprintf("%v", a.Hidden),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func printScript(scr *ot.Script) {
	pterm.Printf("Script %s\n", scr.Tag)
	data := [][]string{{"Language", "Required", "Features"}}
	if scr.DefaultLangSys != nil {
		data = append(data, langSysRow(scr.DefaultLangSys))
	}
	for _, tag := range scr.LanguageTags() {
		data = append(data, langSysRow(scr.LangSys(tag)))
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func langSysRow(ls *ot.LangSys) []string {
	return []string{ls.Tag.String(), ls.RequiredFeature.String(), fmt.Sprintf("%v", ls.FeatureIndices)}
}

func printFeatureList(features *ot.FeatureList) {
	count := features.Len()
	pterm.Printf("FeatureList has %d entries\n", count)
	if count == 0 {
		return
	}
	data := [][]string{{"Index", "Tag", "Lookups"}}
	for i := range count {
		f, _ := features.Feature(i)
		data = append(data, []string{fmt.Sprintf("%d", i), f.Tag.String(), fmt.Sprintf("%v", f.LookupIndices)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printLookupList(tag ot.Tag, table *ot.LayoutTable) {
	if table == nil {
		pterm.Error.Printf("%s table is nil\n", tag)
		return
	}
	ll := table.Lookups()
	count := ll.Len()
	pterm.Printf("%s LookupList has %d entries\n", tag, count)
	if count == 0 {
		return
	}
	data := [][]string{
		{"Index", "Type", "Subtables", "Flags"},
	}
	for i := range count {
		lookup, _ := ll.Lookup(i)
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			formatLookupType(tag, lookup.Type),
			fmt.Sprintf("%d", len(lookup.SubtableOffsets)),
			formatLookupFlags(lookup.Flag),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printLookup(tag ot.Tag, table *ot.LayoutTable, index int) {
	if table == nil {
		pterm.Error.Printf("%s table is nil\n", tag)
		return
	}
	lookup, ok := table.Lookups().Lookup(index)
	if !ok {
		pterm.Error.Printf("Lookup index out of range: %d\n", index)
		return
	}
	pterm.Printf("Lookup %d: type=%s flags=%s subtables=%d mark-filtering-set=%s\n",
		index,
		formatLookupType(tag, lookup.Type),
		formatLookupFlags(lookup.Flag),
		len(lookup.SubtableOffsets),
		lookup.MarkFilteringSet,
	)
	pterm.Printf("subtable offsets: %v\n", lookup.SubtableOffsets)
}

var gsubLookupTypes = []string{"", "Single", "Multiple", "Alternate", "Ligature",
	"Context", "ChainingContext", "Extension", "ReverseChaining"}

var gposLookupTypes = []string{"", "SingleAdjustment", "PairAdjustment", "Cursive",
	"MarkToBase", "MarkToLigature", "MarkToMark", "Context", "ChainingContext", "Extension"}

func formatLookupType(tag ot.Tag, ltype ot.LayoutTableLookupType) string {
	names := gsubLookupTypes
	if tag == ot.T("GPOS") {
		names = gposLookupTypes
	}
	if ltype == 0 || int(ltype) >= len(names) {
		return fmt.Sprintf("Unknown(%d)", ltype)
	}
	return names[ltype]
}

func formatLookupFlags(flag ot.LayoutTableLookupFlag) string {
	if flag == 0 {
		return "-"
	}
	parts := make([]string, 0, 6)
	if flag&ot.LOOKUP_FLAG_RIGHT_TO_LEFT != 0 {
		parts = append(parts, "RightToLeft")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_BASE_GLYPHS != 0 {
		parts = append(parts, "IgnoreBase")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_LIGATURES != 0 {
		parts = append(parts, "IgnoreLigatures")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_MARKS != 0 {
		parts = append(parts, "IgnoreMarks")
	}
	if flag&ot.LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		parts = append(parts, "UseMarkFilteringSet")
	}
	if flag&ot.LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK != 0 {
		parts = append(parts, fmt.Sprintf("MarkAttachType=%d", flag>>8))
	}
	return strings.Join(parts, "|")
}

func formatBBox(b otquery.BoundingBox) string {
	if b.IsEmpty() {
		return "-"
	}
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.MinX, b.MinY, b.MaxX, b.MaxY)
}
