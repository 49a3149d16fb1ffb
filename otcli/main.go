package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/JAicewizard/ttf-parser/internal/fontload"
	"github.com/JAicewizard/ttf-parser/ot"
	"github.com/JAicewizard/ttf-parser/otquery"
	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'tyse.fonts'
func tracer() tracing.Trace {
	return tracing.Select("tyse.fonts")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":  "go",
		"trace.tyse.fonts": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font file to load (default: Go Regular)")
	index := flag.Int("index", 0, "Face index for font collections")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to the TrueType/OpenType CLI")
	//
	// set up REPL
	repl, err := readline.New("ot > ")
	if err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font to use
	if err := intp.loadFont(*fontname, *index); err != nil {
		tracer().Errorf("%v", err)
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D")
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	name   string
	face   *otquery.Face
	repl   *readline.Instance
	layout ot.Tag // GSUB or GPOS, for scripts/features/lookups
}

func (intp *Intp) String() string {
	if intp == nil || intp.face == nil {
		return "()"
	}
	if intp.layout == 0 {
		return fmt.Sprintf("( font=%s )", intp.name)
	}
	return fmt.Sprintf("( font=%s table=%s )", intp.name, intp.layout)
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf("%v", err)
			continue
		}
		if quit := intp.execute(cmd); quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op is a single step of a command line, e.g. "outline:A:summary".
type Op struct {
	name   string
	arg    string
	format string
	fn     opFunc
}

type opFunc func(*Intp, *Op) (err error, quit bool)

// ops maps command names to their implementation. Unknown names print help.
var ops map[string]opFunc

func init() {
	ops = map[string]opFunc{
		"quit":     quitOp,
		"help":     helpOp,
		"tables":   tablesOp,
		"table":    tableOp,
		"glyph":    glyphOp,
		"outline":  outlineOp,
		"metrics":  metricsOp,
		"names":    namesOp,
		"scripts":  scriptsOp,
		"features": featuresOp,
		"lookups":  lookupsOp,
		"axes":     axesOp,
	}
}

// maxSteps limits the number of chained steps in one command line.
const maxSteps = 32

// parseCommand splits a line into steps, e.g. "table:GSUB scripts:latn".
// Parsing stops at "quit".
func (intp *Intp) parseCommand(line string) ([]Op, error) {
	steps := strings.Fields(line)
	if len(steps) > maxSteps {
		return nil, fmt.Errorf("too many steps in command: %d", len(steps))
	}
	cmd := make([]Op, 0, len(steps))
	for _, step := range steps {
		parts := strings.SplitN(step, ":", 3)
		op := Op{name: strings.ToLower(parts[0])}
		if len(parts) > 1 {
			op.arg = parts[1]
		}
		if len(parts) > 2 {
			op.format = parts[2]
		}
		fn, ok := ops[op.name]
		if !ok {
			op.arg, op.name, fn = op.name, "help", helpOp
		}
		op.fn = fn
		cmd = append(cmd, op)
		if op.name == "quit" {
			break
		}
		tracer().Debugf("parsed step %s(%q)", op.name, op.arg)
	}
	return cmd, nil
}

// execute runs the steps of a command in order, stopping at the first error.
func (intp *Intp) execute(cmd []Op) bool {
	for i := range cmd {
		err, quit := cmd[i].fn(intp, &cmd[i])
		if err != nil {
			pterm.Error.Println(err)
			return false
		} else if quit {
			return true
		}
	}
	return false
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	return nil, true
}

// --- Font Loading -----------------------------------------------------

// loadFont loads a font file, or Go Regular if fontname is empty.
func (intp *Intp) loadFont(fontname string, index int) error {
	var sf *fontload.ScalableFont
	var err error
	if fontname == "" {
		sf, err = fontload.GoRegular()
	} else {
		sf, err = fontload.LoadOpenTypeFont(fontname, index)
	}
	if err != nil {
		return err
	}
	intp.name = sf.Fontname
	intp.face = otquery.New(sf.Font)
	tracer().Infof("loaded font %q (%s)", sf.Fontname, otquery.FontType(sf.Font))
	pterm.Printf("font tables: %v\n", sf.Font.TableTags())
	for _, w := range sf.Font.Warnings() {
		pterm.Warning.Println(w.String())
	}
	for _, e := range sf.Font.Errors() {
		pterm.Error.Println(e.Error())
	}
	return nil
}

// ----------------------------------------------------------------------

// glyphArg interprets a command argument as a glyph: a single character, a
// code-point in the form U+0041, or a glyph index in the form #36.
func (intp *Intp) glyphArg(arg string) (ot.GlyphIndex, error) {
	switch {
	case arg == "":
		return 0, fmt.Errorf("missing glyph argument")
	case strings.HasPrefix(arg, "#"):
		n, err := strconv.ParseUint(arg[1:], 10, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid glyph index %q", arg)
		}
		return ot.GlyphIndex(n), nil
	case strings.HasPrefix(strings.ToUpper(arg), "U+"):
		n, err := strconv.ParseUint(arg[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid code-point %q", arg)
		}
		return intp.face.GlyphIndex(rune(n)), nil
	case utf8.RuneCountInString(arg) == 1:
		r, _ := utf8.DecodeRuneInString(arg)
		return intp.face.GlyphIndex(r), nil
	}
	return 0, fmt.Errorf("cannot interpret %q as a glyph", arg)
}

func (op *Op) noArg() bool {
	return op.arg == ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
