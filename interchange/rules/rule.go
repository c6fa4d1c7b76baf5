// Package rules parses production rules and assembles them into rulesets
package rules

import (
	"strings"
	"unicode/utf8"

	"github.com/aabizri/lsysviz"
	"github.com/pkg/errors"
)

var (
	ErrAssignment   = errors.New("malformed assignment")
	ErrSymbolLength = errors.New("symbol isn't 1 character long")
	ErrDuplicate    = errors.New("duplicate rule")
)

// A Rule rewrites On into Rewrite.
type Rule struct {
	On      lsysviz.Symbol
	Rewrite lsysviz.State
}

func (r Rule) String() string {
	return r.On.String() + " -> " + lsysviz.Dump(r.Rewrite)
}

// New builds a rule from a symbol and the text of its replacement.
func New(on rune, rewrite string) Rule {
	return Rule{
		On:      lsysviz.ParseSymbol(on),
		Rewrite: lsysviz.ParseState(rewrite),
	}
}

// Parse builds a rule from the two sides of a rule line.
// The symbol side must be a single character once trimmed.
func Parse(symbol string, rewrite string) (Rule, error) {
	symbol = strings.TrimSpace(symbol)
	if utf8.RuneCountInString(symbol) != 1 {
		return Rule{}, errors.Wrapf(ErrSymbolLength, "`%s`", symbol)
	}
	r, _ := utf8.DecodeRuneInString(symbol)
	return New(r, rewrite), nil
}

// SplitAssignment splits a line around delimiter, which must appear exactly
// once. Both sides are trimmed.
func SplitAssignment(line string, delimiter string) (key string, value string, err error) {
	if strings.Count(line, delimiter) != 1 {
		return "", "", errors.Wrapf(ErrAssignment, "`%s` should contain '%s' exactly once", line, delimiter)
	}
	key, value, _ = strings.Cut(line, delimiter)
	return strings.TrimSpace(key), strings.TrimSpace(value), nil
}

// ParseLine parses a "symbol -> replacement" line.
func ParseLine(line string) (Rule, error) {
	symbol, rewrite, err := SplitAssignment(line, "->")
	if err != nil {
		return Rule{}, err
	}
	return Parse(symbol, rewrite)
}

// A Set collects rules, at most one per symbol.
type Set struct {
	rules lsysviz.Ruleset
}

func NewSet() *Set {
	return &Set{rules: make(lsysviz.Ruleset)}
}

// Add registers r, unless its symbol already has a rule.
func (s *Set) Add(r Rule) error {
	if existing, ok := s.rules[r.On]; ok {
		return errors.Wrapf(ErrDuplicate, "`%s` already rewrites into `%s`", r.On, lsysviz.Dump(existing))
	}
	s.rules[r.On] = r.Rewrite
	return nil
}

func (s *Set) Len() int {
	return len(s.rules)
}

// Ruleset returns the collected rules. The Set must not be used afterwards.
func (s *Set) Ruleset() lsysviz.Ruleset {
	return s.rules
}
