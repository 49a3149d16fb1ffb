package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/JAicewizard/ttf-parser/otquery"
	"github.com/pterm/pterm"
)

func tablesOp(intp *Intp, op *Op) (error, bool) {
	otf := intp.face.Font()
	data := [][]string{
		{"Tag", "Offset", "Length", "Checksum", "Status"},
	}
	for _, rec := range otf.TableRecords() {
		status := "ok"
		if !otf.HasTable(rec.Tag) {
			status = "dropped"
		} else if ok, err := otf.VerifyChecksum(rec.Tag); err != nil || !ok {
			status = "checksum mismatch"
		}
		data = append(data, []string{
			rec.Tag.String(),
			fmt.Sprintf("%d", rec.Offset),
			fmt.Sprintf("%d", rec.Length),
			fmt.Sprintf("%08x", rec.Checksum),
			status,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Printf("outlines: %s, layout tables: %v\n", intp.face.OutlineFormat(), otquery.LayoutTables(otf))
	return nil, false
}

// tableOp selects GSUB or GPOS for the layout commands, or prints the header
// fields of table head or maxp.
func tableOp(intp *Intp, op *Op) (error, bool) {
	tag := ot.T(op.arg)
	otf := intp.face.Font()
	if !otf.HasTable(tag) {
		return fmt.Errorf("table %q not found in font", op.arg), false
	}
	switch op.arg {
	case "GSUB", "GPOS":
		intp.layout = tag
		tracer().Infof("setting table: %v", tag)
	case "head":
		h, _ := otquery.HeadInfo(otf)
		pterm.Printf("%+v\n", h)
	case "maxp":
		m, _ := otquery.MaxPInfo(otf)
		pterm.Printf("%+v\n", m)
	default:
		pterm.Printf("table %s is present\n", tag)
	}
	return nil, false
}

func (intp *Intp) layoutTable() (*ot.LayoutTable, error) {
	otf := intp.face.Font()
	switch intp.layout {
	case ot.T("GSUB"):
		return otf.Layout.GSub, nil
	case ot.T("GPOS"):
		return otf.Layout.GPos, nil
	}
	return nil, errors.New("no layout table set; use table:GSUB or table:GPOS")
}

func scriptsOp(intp *Intp, op *Op) (err error, stop bool) {
	var lyt *ot.LayoutTable
	if lyt, err = intp.layoutTable(); err != nil {
		return
	}
	scripts := lyt.Scripts()
	if tag, ok := op.hasArg(); ok {
		scr := scripts.Script(ot.T(tag))
		if scr == nil {
			return fmt.Errorf("script lookup [%s] returns null", ot.T(tag)), false
		}
		printScript(scr)
		return
	}
	var tags []ot.Tag
	for scr := range scripts.All() {
		tags = append(tags, scr.Tag)
	}
	pterm.Printf("ScriptList keys: %v\n", tags)
	return
}

func featuresOp(intp *Intp, op *Op) (err error, stop bool) {
	var lyt *ot.LayoutTable
	if lyt, err = intp.layoutTable(); err != nil {
		return
	}
	features := lyt.Features()
	if op.noArg() {
		printFeatureList(features)
	} else if i, err2 := strconv.Atoi(op.arg); err2 == nil {
		f, ok := features.Feature(i)
		if !ok {
			return fmt.Errorf("feature index out of range: %d", i), false
		}
		pterm.Printf("FeatureList index %d holds feature %v -> lookups %v\n", i, f.Tag, f.LookupIndices)
	} else {
		err = fmt.Errorf("list index not numeric: %v", op.arg)
	}
	return
}

func lookupsOp(intp *Intp, op *Op) (err error, stop bool) {
	var lyt *ot.LayoutTable
	if lyt, err = intp.layoutTable(); err != nil {
		return
	}
	if op.noArg() {
		printLookupList(intp.layout, lyt)
	} else if i, err2 := strconv.Atoi(op.arg); err2 == nil {
		printLookup(intp.layout, lyt, i)
	} else {
		tracer().Errorf("Lookup index not numeric: %v", op.arg)
		err = errors.New("invalid lookup index")
	}
	return
}
