package otquery

import (
	"github.com/JAicewizard/ttf-parser/ot"
)

// MaxPTableInfo is a typed query view over OpenType table 'maxp'.
// For version 1.0 tables, the TrueType profile fields are decoded if present.
type MaxPTableInfo struct {
	Version   uint32 // 0x00005000 for CFF fonts, 0x00010000 for TrueType fonts
	NumGlyphs uint16

	HasTrueTypeProfile    bool
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

// MaxPInfo decodes table 'maxp' from raw bytes.
// Returns (info, true) on success, or (zero, false) if table is missing or too short.
func MaxPInfo(otf *ot.Font) (MaxPTableInfo, bool) {
	var info MaxPTableInfo
	table := otf.Table(ot.T("maxp"))
	if table == nil {
		return info, false
	}
	s := ot.NewStream(table.Binary())
	info.Version = s.U32()
	info.NumGlyphs = s.U16()
	if s.Err() != nil {
		return MaxPTableInfo{}, false
	}
	if info.Version != 0x00010000 || s.Remaining() < 26 {
		return info, true
	}
	info.HasTrueTypeProfile = true
	for _, field := range []*uint16{
		&info.MaxPoints, &info.MaxContours,
		&info.MaxCompositePoints, &info.MaxCompositeContours,
		&info.MaxZones, &info.MaxTwilightPoints,
		&info.MaxStorage, &info.MaxFunctionDefs, &info.MaxInstructionDefs,
		&info.MaxStackElements, &info.MaxSizeOfInstructions,
		&info.MaxComponentElements, &info.MaxComponentDepth,
	} {
		*field = s.U16()
	}
	return info, true
}
