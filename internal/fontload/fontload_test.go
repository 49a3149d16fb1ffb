package fontload

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JAicewizard/ttf-parser/internal/fonttest"
	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFontFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	f := fonttest.Square().Set("name", fonttest.Name(map[uint16]string{1: "Square", 4: "Square Regular"}))
	path := filepath.Join(t.TempDir(), "square.ttf")
	require.NoError(t, os.WriteFile(path, f.Bytes(), 0o644))
	sf, err := LoadOpenTypeFont(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "Square Regular", sf.Fontname)
	assert.Equal(t, path, sf.Filepath)
	assert.Equal(t, 2, sf.Font.NumGlyphs())
	//
	_, err = LoadOpenTypeFont(path, 1)
	assert.True(t, errors.Is(err, ot.ErrFaceIndexOutOfRange), "expected face index error, have %v", err)
	_, err = LoadOpenTypeFont(filepath.Join(t.TempDir(), "missing.ttf"), 0)
	assert.True(t, errors.Is(err, os.ErrNotExist), "expected missing file error, have %v", err)
}

func TestLoadCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	data := fonttest.Collection(
		fonttest.Square().Set("name", fonttest.Name(map[uint16]string{1: "First"})),
		fonttest.CFFSquare().Set("name", fonttest.Name(map[uint16]string{1: "Second"})),
	)
	sf, err := ParseOpenTypeFont(data, 1)
	require.NoError(t, err)
	assert.Equal(t, "Second", sf.Fontname, "expected family name as fallback")
	assert.Equal(t, ot.OutlineCFF, sf.Font.OutlineFormat())
}

func TestGoRegular(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	sf, err := GoRegular()
	require.NoError(t, err)
	assert.NotEmpty(t, sf.Fontname)
	assert.Empty(t, sf.Filepath)
	assert.Equal(t, ot.OutlineGlyf, sf.Font.OutlineFormat())
}
