package lsysviz

import (
	"strings"
	"unicode"
)

// Kind identifies the operation a Symbol stands for.
type Kind uint8

const (
	// Var is a placeholder with no drawing meaning, only used for rewriting
	Var Kind = iota
	Draw
	Move
	Left
	Right
	Reverse
	Push
	Pop
	Thicken
	Thin
	Dot
	OpenPolygon
	ClosePolygon
	ScaleUp
	ScaleDown
	SwapOperations
	WidenAngle
	NarrowAngle
)

// glyphs maps each operator kind to its character, Var excluded.
var glyphs = [...]rune{
	Draw:           'F',
	Move:           'f',
	Left:           '+',
	Right:          '-',
	Reverse:        '|',
	Push:           '[',
	Pop:            ']',
	Thicken:        '#',
	Thin:           '!',
	Dot:            '@',
	OpenPolygon:    '{',
	ClosePolygon:   '}',
	ScaleUp:        '>',
	ScaleDown:      '<',
	SwapOperations: '&',
	WidenAngle:     '(',
	NarrowAngle:    ')',
}

var kinds = func() map[rune]Kind {
	m := make(map[rune]Kind, len(glyphs))
	for k, g := range glyphs {
		if Kind(k) != Var {
			m[g] = Kind(k)
		}
	}
	return m
}()

var kindNames = [...]string{
	Var:            "var",
	Draw:           "draw",
	Move:           "move",
	Left:           "turn-left",
	Right:          "turn-right",
	Reverse:        "reverse",
	Push:           "push",
	Pop:            "pop",
	Thicken:        "thicken",
	Thin:           "thin",
	Dot:            "dot",
	OpenPolygon:    "open-polygon",
	ClosePolygon:   "close-polygon",
	ScaleUp:        "scale-up",
	ScaleDown:      "scale-down",
	SwapOperations: "swap-operations",
	WidenAngle:     "widen-angle",
	NarrowAngle:    "narrow-angle",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// A Symbol is one letter of the rewriting alphabet.
//
// Operators are identified by their Kind alone, Char is only set for Var.
// Symbols are comparable and can be used as map keys.
type Symbol struct {
	Kind Kind
	Char rune
}

// Op returns the operator symbol of the given kind.
func Op(k Kind) Symbol {
	return Symbol{Kind: k}
}

// Variable returns the placeholder symbol for r.
func Variable(r rune) Symbol {
	return Symbol{Kind: Var, Char: r}
}

// ParseSymbol maps a character to its symbol, any character that isn't an
// operator glyph becomes a Var.
func ParseSymbol(r rune) Symbol {
	if k, ok := kinds[r]; ok {
		return Op(k)
	}
	return Variable(r)
}

// Symbol stringifier, symbols of an unknown kind print as "?"
func (s Symbol) String() string {
	if s.Kind == Var {
		return string(s.Char)
	}
	if int(s.Kind) < len(glyphs) {
		return string(glyphs[s.Kind])
	}
	return "?"
}

// State is an ordered sequence of symbols: one generation.
type State []Symbol

// ParseState converts a string to a State, whitespace is ignored.
func ParseState(s string) State {
	state := make(State, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		state = append(state, ParseSymbol(r))
	}
	return state
}

// Clone returns a copy of st that doesn't share memory with it.
func (st State) Clone() State {
	if st == nil {
		return nil
	}
	out := make(State, len(st))
	copy(out, st)
	return out
}

func (st State) String() string {
	return Dump(st)
}

// Dump concatenates the glyphs of a state.
func Dump(st State) string {
	var b strings.Builder
	b.Grow(len(st))
	for _, s := range st {
		b.WriteString(s.String())
	}
	return b.String()
}

// Ruleset maps a symbol to its replacement.
type Ruleset map[Symbol]State

// Parameters is everything needed to build a System.
type Parameters struct {
	Axiom     State
	Constants []Symbol
	Rules     Ruleset
}
