package otquery

import (
	"time"

	"github.com/JAicewizard/ttf-parser/ot"
)

// HeadTableInfo is a typed query view over OpenType table 'head', including
// the fields package ot does not interpret.
type HeadTableInfo struct {
	MajorVersion       uint16
	MinorVersion       uint16
	FontRevision       float32
	CheckSumAdjustment uint32
	MagicNumber        uint32
	Flags              uint16
	UnitsPerEm         uint16
	Created            time.Time
	Modified           time.Time
	XMin, YMin         int16
	XMax, YMax         int16
	MacStyle           uint16
	LowestRecPPEM      uint16
	FontDirectionHint  int16
	IndexToLocFormat   int16
	GlyphDataFormat    int16
}

// OpenType dates are seconds since 1904-01-01 00:00 UTC.
var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

func longDateTime(secs uint64) time.Time {
	return epoch1904.Add(time.Duration(int64(secs)) * time.Second)
}

// HeadInfo decodes table 'head' from raw bytes.
// Returns (info, true) on success, or (zero, false) if table is missing or too short.
func HeadInfo(otf *ot.Font) (HeadTableInfo, bool) {
	var info HeadTableInfo
	table := otf.Table(ot.T("head"))
	if table == nil {
		return info, false
	}
	s := ot.NewStream(table.Binary())
	info.MajorVersion = s.U16()
	info.MinorVersion = s.U16()
	info.FontRevision = s.Fixed()
	info.CheckSumAdjustment = s.U32()
	info.MagicNumber = s.U32()
	info.Flags = s.U16()
	info.UnitsPerEm = s.U16()
	info.Created = longDateTime(s.U64())
	info.Modified = longDateTime(s.U64())
	info.XMin, info.YMin = s.I16(), s.I16()
	info.XMax, info.YMax = s.I16(), s.I16()
	info.MacStyle = s.U16()
	info.LowestRecPPEM = s.U16()
	info.FontDirectionHint = s.I16()
	info.IndexToLocFormat = s.I16()
	info.GlyphDataFormat = s.I16()
	if s.Err() != nil {
		tracer().Debugf("head table too short: %v", s.Err())
		return HeadTableInfo{}, false
	}
	return info, true
}
