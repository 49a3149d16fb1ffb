package fontload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'tyse.fonts'
func tracer() tracing.Trace {
	return tracing.Select("tyse.fonts")
}

// ScalableFont is a parsed scalable font together with its original bytes.
type ScalableFont struct {
	Fontname string
	Filepath string // empty for fonts not loaded from a file
	Binary   []byte
	Font     *ot.Font
}

// LoadOpenTypeFont loads an OpenType font (TTF, OTF or TTC) from a file.
// For font collections, index selects the face; it must be 0 otherwise.
func LoadOpenTypeFont(fontfile string, index int) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez, index)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(fontfile), err)
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont parses an OpenType font (TTF, OTF or TTC) from memory.
func ParseOpenTypeFont(fbytes []byte, index int) (*ScalableFont, error) {
	otf, err := ot.ParseCollection(fbytes, index)
	if err != nil {
		return nil, err
	}
	f := &ScalableFont{Binary: fbytes, Font: otf}
	if name, ok := otf.Name.Name(uint16(sfnt.NameIDFull)); ok {
		f.Fontname = name
	} else if name, ok := otf.Name.Name(uint16(sfnt.NameIDFamily)); ok {
		f.Fontname = name
	}
	tracer().Debugf("loaded and parsed font %q, %d tables", f.Fontname, len(otf.TableTags()))
	return f, nil
}

// GoRegular returns the Go Regular font, which is compiled into the binary.
// It serves as a fallback when no font file is given.
func GoRegular() (*ScalableFont, error) {
	return ParseOpenTypeFont(goregular.TTF, 0)
}
