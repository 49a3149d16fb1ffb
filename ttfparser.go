package ttfparser

import (
	"github.com/JAicewizard/ttf-parser/internal/fontload"
	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/JAicewizard/ttf-parser/otquery"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'tyse.fonts'
func tracer() tracing.Trace {
	return tracing.Select("tyse.fonts")
}

// Parse parses raw font data and returns a face for querying it.
// If data is a font collection, the first face is returned.
//
// data must not change while the face is in use.
func Parse(data []byte) (*otquery.Face, error) {
	return otquery.Parse(data)
}

// ParseCollection parses face number index of a font collection. For fonts
// which are not collections, index must be 0.
func ParseCollection(data []byte, index int) (*otquery.Face, error) {
	return otquery.ParseCollection(data, index)
}

// NumFaces returns the number of faces in font data: 1 for a single font, the
// number of fonts for a collection.
func NumFaces(data []byte) (int, error) {
	return ot.NumFaces(data)
}

// LoadFont reads a font file and parses face number index.
func LoadFont(path string, index int) (*otquery.Face, error) {
	f, err := fontload.LoadOpenTypeFont(path, index)
	if err != nil {
		tracer().Errorf("cannot load font %s: %v", path, err)
		return nil, err
	}
	tracer().Infof("loaded font %q", f.Fontname)
	return otquery.New(f.Font), nil
}
