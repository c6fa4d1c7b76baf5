package lsysviz

import "testing"

func TestParseSymbol(t *testing.T) {
	if ParseSymbol('F') != Op(Draw) {
		t.Errorf("F should parse as draw")
	}
	if ParseSymbol('(') != Op(WidenAngle) || ParseSymbol(')') != Op(NarrowAngle) {
		t.Errorf("parentheses should parse as angle operators")
	}
	if ParseSymbol('A') == ParseSymbol('B') {
		t.Errorf("Var('A') and Var('B') compare equal")
	}
	if s := ParseSymbol('A'); s.Kind != Var || s.Char != 'A' {
		t.Errorf("ParseSymbol('A') = %#v", s)
	}
	for r := range kinds {
		if got := ParseSymbol(r).String(); got != string(r) {
			t.Errorf("ParseSymbol(%q).String() = %q", r, got)
		}
	}
}

func TestParseState(t *testing.T) {
	st := ParseState(" F [ +F ]\tX\n")
	if got := Dump(st); got != "F[+F]X" {
		t.Errorf("Dump = %q", got)
	}
	if len(st) != 6 {
		t.Errorf("len = %d, want 6", len(st))
	}
}

func TestState_Clone(t *testing.T) {
	st := ParseState("AB")
	c := st.Clone()
	c[0] = Variable('Z')
	if Dump(st) != "AB" {
		t.Errorf("Clone shares memory with its source")
	}
	if State(nil).Clone() != nil {
		t.Errorf("Clone of nil should be nil")
	}
}

func TestKind_String(t *testing.T) {
	if Draw.String() != "draw" || SwapOperations.String() != "swap-operations" {
		t.Errorf("unexpected kind names")
	}
}

func TestSymbol_StringUnknownKind(t *testing.T) {
	s := Symbol{Kind: 200}
	if s.String() != "?" || Kind(200).String() != "unknown" {
		t.Errorf("unknown kind prints as %q / %q", s.String(), Kind(200).String())
	}
	if got := Dump(State{Op(Draw), s}); got != "F?" {
		t.Errorf("Dump = %q, want F?", got)
	}
}
