package otquery

import (
	"testing"
	"time"

	"github.com/JAicewizard/ttf-parser/internal/fonttest"
	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// --- Test Suite Preparation ------------------------------------------------

type InfoTestEnviron struct {
	suite.Suite
	otf    *ot.Font // Go Regular
	oracle *sfnt.Font
	layout *ot.Font // synthetic font with GSUB and GPOS
}

// listen for 'go test' command --> run test methods
func TestInfoFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	suite.Run(t, new(InfoTestEnviron))
}

// run once, before test suite methods
func (env *InfoTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("tyse.fonts").SetTraceLevel(tracing.LevelError)
	var err error
	env.otf, err = ot.Parse(goregular.TTF)
	env.Require().NoError(err, "cannot parse Go Regular")
	env.oracle, err = sfnt.Parse(goregular.TTF)
	env.Require().NoError(err)
	env.layout, err = ot.Parse(layoutFont().Bytes())
	env.Require().NoError(err, "cannot parse synthetic layout font")
	tracing.Select("tyse.fonts").SetTraceLevel(tracing.LevelInfo)
}

// run once, after test suite methods
func (env *InfoTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

// --- Tests -----------------------------------------------------------------

func (env *InfoTestEnviron) TestFontTypeInfo() {
	env.Equal("TrueType", FontType(env.otf), "expected font type of test font to be TrueType")
	cff, err := ot.Parse(fonttest.CFFSquare().Bytes())
	env.Require().NoError(err)
	env.Equal("OpenType CFF", FontType(cff))
	env.Equal("unknown", FontType(nil))
}

func (env *InfoTestEnviron) TestGeneralInfo() {
	var b sfnt.Buffer
	info := NameInfo(env.otf, ot.DFLT)
	env.T().Logf("info = %v", info)
	for key, id := range map[string]sfnt.NameID{
		"family":    sfnt.NameIDFamily,
		"subfamily": sfnt.NameIDSubfamily,
		"full":      sfnt.NameIDFull,
	} {
		expected, err := env.oracle.Name(&b, id)
		env.Require().NoError(err)
		env.Equal(expected, info[key], "expected matching %s name", key)
	}
}

func (env *InfoTestEnviron) TestTranslatedNames() {
	var name fonttest.Buffer
	strs := []string{"Square", "Quadrat"}
	name.U16(0, 2, 6+12*2)
	offset := 0
	for i, lcid := range []uint16{0x0409, 0x0407} {
		name.U16(3, 1, lcid, 1, uint16(2*len(strs[i])), uint16(offset))
		offset += 2 * len(strs[i])
	}
	for _, s := range strs {
		for _, r := range s {
			name.U16(uint16(r))
		}
	}
	otf, err := ot.Parse(fonttest.Square().Set("name", name).Bytes())
	env.Require().NoError(err)
	env.Equal("Square", NameInfo(otf, ot.DFLT)["family"])
	env.Equal("Square", NameInfo(otf, ot.T("FRA"))["family"])
	env.Equal("Quadrat", NameInfo(otf, ot.T("DEU"))["family"])
	var ids []sfnt.NameID
	for id := range NamesRange(otf) {
		ids = append(ids, id)
	}
	env.Equal([]sfnt.NameID{sfnt.NameIDFamily}, ids, "expected one entry per name ID")
}

func (env *InfoTestEnviron) TestHeadInfo() {
	h, ok := HeadInfo(env.otf)
	env.Require().True(ok, "expected to decode table 'head'")
	env.Equal(env.otf.Head.Flags, h.Flags, "expected matching Flags")
	env.Equal(env.otf.Head.UnitsPerEm, h.UnitsPerEm, "expected matching UnitsPerEm")
	env.Equal(int16(env.otf.Head.IndexToLocFormat), h.IndexToLocFormat, "expected matching IndexToLocFormat")
	env.Equal(uint32(0x5F0F3CF5), h.MagicNumber, "expected OpenType head magic number")
	//
	square, err := ot.Parse(fonttest.Square().Bytes())
	env.Require().NoError(err)
	h, ok = HeadInfo(square)
	env.Require().True(ok)
	env.Equal(float32(1), h.FontRevision)
	env.Equal(time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC), h.Created)
	env.Equal(int16(-200), h.YMin)
	_, ok = HeadInfo(nil)
	env.False(ok)
}

func (env *InfoTestEnviron) TestMaxPInfo() {
	m, ok := MaxPInfo(env.otf)
	env.Require().True(ok, "expected to decode table 'maxp'")
	env.Equal(uint16(env.otf.MaxP.NumGlyphs), m.NumGlyphs, "expected matching numGlyphs")
	env.Equal(uint32(0x00010000), m.Version)
	env.True(m.HasTrueTypeProfile)
	env.NotZero(m.MaxPoints)
	//
	cff, err := ot.Parse(fonttest.CFFSquare().Bytes())
	env.Require().NoError(err)
	m, ok = MaxPInfo(cff)
	env.Require().True(ok)
	env.Equal(uint32(0x00005000), m.Version)
	env.False(m.HasTrueTypeProfile)
}

func (env *InfoTestEnviron) TestLayoutInfo() {
	layouts := LayoutTables(env.layout)
	env.T().Logf("test font layout tables: %v", layouts)
	env.Equal([]string{"GSUB", "GPOS"}, layouts)
	env.Empty(LayoutTables(nil))
}

func (env *InfoTestEnviron) TestScriptSupport() {
	tests := []struct {
		script, lang    string
		expScr, expLang string
	}{
		{"latn", "DEU", "latn", "DEU"},
		{"latn", "FRA", "latn", "DFLT"},
		{"latn", "DFLT", "latn", "DFLT"},
		{"cyrl", "RUS", "cyrl", "RUS"}, // from GPOS
		{"grek", "ELL", "DFLT", "DFLT"},
	}
	for _, tt := range tests {
		scr, lang := FontSupportsScript(env.layout, ot.T(tt.script), ot.T(tt.lang))
		env.Equal(ot.T(tt.expScr), scr, "script for %s/%s", tt.script, tt.lang)
		env.Equal(ot.T(tt.expLang), lang, "language for %s/%s", tt.script, tt.lang)
	}
	scr, lang := FontSupportsScript(nil, ot.T("latn"), ot.DFLT)
	env.Equal(ot.Tag(0), scr)
	env.Equal(ot.Tag(0), lang)
}

func (env *InfoTestEnviron) TestFontMetrics() {
	m := FontMetrics(env.layout)
	env.Equal(sfnt.Units(1000), m.UnitsPerEm)
	env.Equal(sfnt.Units(800), m.Ascent)
	env.Equal(sfnt.Units(-200), m.Descent)
	env.Equal(sfnt.Units(480), m.XHeight)
	env.Equal(sfnt.Units(690), m.CapHeight)
	m = FontMetrics(env.otf)
	env.Equal(sfnt.Units(env.oracle.UnitsPerEm()), m.UnitsPerEm)
	env.Greater(int(m.Ascent), 0)
}

func (env *InfoTestEnviron) TestReverseLookup() {
	g := env.otf.CMap.Lookup('A')
	env.Require().NotZero(g)
	r := CodePointForGlyph(env.otf, g)
	env.Equal('A', r, "expected code-point to be %#U, is %#U", 'A', r)
	env.Equal(rune(0), CodePointForGlyph(env.otf, 0))
}

func (env *InfoTestEnviron) TestGlyphMetrics() {
	cff, err := ot.Parse(fonttest.CFFSquare().Bytes())
	env.Require().NoError(err)
	gm := GlyphMetrics(cff, 1)
	env.Equal(BoundingBox{MinX: 0, MinY: 0, MaxX: 500, MaxY: 700}, gm.BBox)
	env.Equal(sfnt.Units(600), gm.Advance)
	env.Equal(sfnt.Units(100), gm.RSB)
	//
	square, err := ot.Parse(fonttest.Square().Bytes())
	env.Require().NoError(err)
	gm = GlyphMetrics(square, 1)
	env.Equal(sfnt.Units(10), gm.LSB)
	env.Equal(sfnt.Units(90), gm.RSB)
}

// --- Helpers ----------------------------------------------------------

// layoutFont is fonttest.Square with script lists in GSUB and GPOS.
func layoutFont() *fonttest.Font {
	gsub := fonttest.Layout{
		Scripts: []fonttest.Script{
			{Tag: "latn", Default: &fonttest.LangSys{Required: -1, Features: []uint16{0}},
				Langs: []fonttest.LangSys{{Tag: "DEU ", Required: -1, Features: []uint16{0}}}},
		},
		Features: []fonttest.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		Lookups:  []fonttest.Lookup{{Type: 4, SubtableCount: 1}},
	}
	gpos := fonttest.Layout{
		Scripts: []fonttest.Script{
			{Tag: "cyrl", Langs: []fonttest.LangSys{{Tag: "RUS ", Required: -1, Features: []uint16{0}}}},
		},
		Features: []fonttest.Feature{{Tag: "kern", Lookups: []uint16{0}}},
		Lookups:  []fonttest.Lookup{{Type: 2, SubtableCount: 1}},
	}
	return fonttest.Square().
		Set("GSUB", gsub.Bytes()).
		Set("GPOS", gpos.Bytes()).
		Set("OS/2", fonttest.OS2(400, 480, 690))
}
