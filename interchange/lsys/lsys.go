// Package lsys decodes the sectioned L-system text format:
//
//	# Comments start with a hash
//	[Config]
//	line_length = 10
//	turning_angle = 360/4
//
//	[Rules]
//	F -> F+F-F-F+F
//
//	[Start]
//	axiom = F
//	constants = +-
//
// A blank line ends a section. All three sections are required.
//
// Since `#` also thickens the line, a rule for it cannot be written: inside
// [Rules], a line starting with `#` that holds a `->` is reported as
// ErrAmbiguousLine rather than skipped as a comment.
package lsys

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aabizri/lsysviz"
	"github.com/aabizri/lsysviz/interchange"
	"github.com/aabizri/lsysviz/interchange/rules"
	"github.com/aabizri/lsysviz/turtle"
	"github.com/pkg/errors"
)

var (
	ErrInvalidLine      = errors.New("invalid line")
	ErrAmbiguousLine    = errors.New("ambiguous line, `#` starts a comment")
	ErrUnknownSection   = errors.New("unrecognized section name")
	ErrDuplicateSection = errors.New("section defined twice")
	ErrMissingAxiom     = interchange.ErrMissingAxiom
	ErrIncomplete       = errors.New("incomplete definition")
)

var _ interchange.Format = (*Format)(nil)

type section uint8

const (
	noSection section = iota
	configSection
	rulesSection
	startSection
)

var sectionNames = map[string]section{
	"config": configSection,
	"rules":  rulesSection,
	"start":  startSection,
}

// Assignment is a "key = value" or "symbol -> replacement" line.
type Assignment struct {
	Line  int
	Text  string
	Key   string
	Value string
}

// Format is a decoded, not yet validated, definition.
type Format struct {
	Name      string
	Config    []Assignment
	Rules     []Assignment
	Axiom     *Assignment
	Constants *Assignment

	seen map[section]bool
}

type Decoder struct {
	scanner *bufio.Scanner
	line    int
	done    bool
}

func NewDecoder(in io.Reader) *Decoder {
	return &Decoder{
		scanner: bufio.NewScanner(in),
	}
}

// Open decodes the file at path, naming the definition after the file.
func Open(path string) (*Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open file")
	}
	defer f.Close()

	format, err := NewDecoder(f).Decode()
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	format.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return format, nil
}

func isHeader(line string) bool {
	return strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]")
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#")
}

func (dec *Decoder) next() (string, bool) {
	if !dec.scanner.Scan() {
		return "", false
	}
	dec.line++
	return strings.TrimSpace(dec.scanner.Text()), true
}

func (dec *Decoder) errorf(err error, line string) error {
	return errors.Wrapf(err, "line %d: `%s`", dec.line, line)
}

// Decode reads the whole input as one definition. It returns io.EOF once the
// input has been consumed.
func (dec *Decoder) Decode() (*Format, error) {
	if dec.done {
		return nil, io.EOF
	}
	dec.done = true

	format := &Format{seen: make(map[section]bool)}
	for {
		line, ok := dec.next()
		if !ok {
			break
		}

		switch {
		case line == "" || isComment(line):
			continue
		case isHeader(line):
			name := strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			sec, ok := sectionNames[name]
			if !ok {
				return nil, dec.errorf(ErrUnknownSection, line)
			}
			if format.seen[sec] {
				return nil, dec.errorf(ErrDuplicateSection, line)
			}
			format.seen[sec] = true
			if err := dec.section(format, sec); err != nil {
				return nil, err
			}
		default:
			return nil, dec.errorf(ErrInvalidLine, line)
		}
	}
	if err := dec.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error while reading")
	}

	return format, nil
}

// section reads assignments until a blank line or the end of input
func (dec *Decoder) section(format *Format, sec section) error {
	delimiter := "="
	if sec == rulesSection {
		delimiter = "->"
	}

	for {
		line, ok := dec.next()
		if !ok || line == "" {
			return nil
		}
		if isComment(line) {
			if sec == rulesSection && strings.Contains(line, delimiter) {
				return dec.errorf(ErrAmbiguousLine, line)
			}
			continue
		}

		key, value, err := rules.SplitAssignment(line, delimiter)
		if err != nil {
			return dec.errorf(ErrInvalidLine, line)
		}
		a := Assignment{Line: dec.line, Text: line, Key: key, Value: value}

		switch sec {
		case configSection:
			format.Config = append(format.Config, a)
		case rulesSection:
			format.Rules = append(format.Rules, a)
		case startSection:
			switch strings.ToLower(key) {
			case "axiom":
				format.Axiom = &a
			case "constants":
				format.Constants = &a
			default:
				return dec.errorf(errors.Wrap(interchange.ErrUnknownSetting, "start"), line)
			}
		}
	}
}

func lineError(err error, a Assignment) error {
	return errors.Wrapf(err, "line %d", a.Line)
}

// Import validates the decoded format and builds the definition.
func (format *Format) Import() (interchange.Definition, error) {
	var missing []string
	for _, sec := range []struct {
		s    section
		name string
	}{{configSection, "[Config]"}, {rulesSection, "[Rules]"}, {startSection, "[Start]"}} {
		if !format.seen[sec.s] {
			missing = append(missing, sec.name)
		}
	}
	if len(missing) > 0 {
		return interchange.Definition{}, errors.Wrapf(ErrIncomplete, "missing %s", strings.Join(missing, ", "))
	}
	if format.Axiom == nil || format.Axiom.Value == "" {
		return interchange.Definition{}, ErrMissingAxiom
	}

	cfg := turtle.DefaultDrawConfig()
	for _, a := range format.Config {
		if err := interchange.ApplySetting(&cfg, a.Key, a.Value); err != nil {
			return interchange.Definition{}, lineError(err, a)
		}
	}

	set := rules.NewSet()
	for _, a := range format.Rules {
		r, err := rules.ParseLine(a.Text)
		if err != nil {
			return interchange.Definition{}, lineError(err, a)
		}
		if err := set.Add(r); err != nil {
			return interchange.Definition{}, lineError(err, a)
		}
	}

	lsysviz.Logger().Debug("lsys: definition imported", "name", format.Name, "rules", set.Len())

	parameters := lsysviz.Parameters{
		Axiom: lsysviz.ParseState(format.Axiom.Value),
		Rules: set.Ruleset(),
	}
	if format.Constants != nil {
		parameters.Constants = lsysviz.ParseState(format.Constants.Value)
	}

	return interchange.Definition{
		Name:       format.Name,
		Parameters: parameters,
		Config:     cfg,
	}, nil
}
