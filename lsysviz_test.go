package lsysviz

import (
	"context"
	"fmt"
	"testing"
)

func rulesOf(pairs ...string) Ruleset {
	rules := make(Ruleset, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		rules[ParseSymbol([]rune(pairs[i])[0])] = ParseState(pairs[i+1])
	}
	return rules
}

var algae = Parameters{
	Axiom: ParseState("A"),
	Rules: rulesOf("A", "AB", "B", "A"),
}

var koch = Parameters{
	Axiom:     ParseState("F"),
	Constants: ParseState("+-"),
	Rules:     rulesOf("F", "F+F-F-F+F"),
}

var binaryTree = Parameters{
	Axiom:     ParseState("0"),
	Constants: ParseState("[]"),
	Rules:     rulesOf("1", "11", "0", "1[0]0"),
}

func TestIterator_Algae(t *testing.T) {
	expected := []string{
		"A",
		"AB",
		"ABA",
		"ABAAB",
		"ABAABABA",
		"ABAABABAABAAB",
		"ABAABABAABAABABAABABA",
		"ABAABABAABAABABAABABAABAABABAABAAB",
	}

	it := New(algae).Iter()
	if got := Dump(it.State()); got != expected[0] {
		t.Fatalf("generation 0 = %q, want %q", got, expected[0])
	}
	for i, want := range expected[1:] {
		got := Dump(it.Next())
		if got != want {
			t.Errorf("generation %d = %q, want %q", i+1, got, want)
		}
		if it.Generation() != uint(i+1) {
			t.Errorf("Generation() = %d, want %d", it.Generation(), i+1)
		}
	}
}

func TestIterator_Koch(t *testing.T) {
	it := New(koch).Iter()

	if got, want := Dump(it.Next()), "F+F-F-F+F"; got != want {
		t.Fatalf("generation 1 = %q, want %q", got, want)
	}

	want := ""
	for _, s := range "F+F-F-F+F" {
		if s == 'F' {
			want += "F+F-F-F+F"
		} else {
			want += string(s)
		}
	}
	if got := Dump(it.Next()); got != want {
		t.Errorf("generation 2 = %q, want %q", got, want)
	}
}

func TestIterator_BinaryTree(t *testing.T) {
	it := New(binaryTree).Iter()
	it.Next()
	if got, want := Dump(it.Next()), "11[1[0]0]1[0]0"; got != want {
		t.Errorf("generation 2 = %q, want %q", got, want)
	}
}

func TestIterator_LengthProperty(t *testing.T) {
	sys := New(koch)
	rules := sys.Rules()
	it := sys.Iter()
	for g := 0; g < 5; g++ {
		want := 0
		for _, s := range it.State() {
			if r, ok := rules[s]; ok {
				want += len(r)
			} else {
				want++
			}
		}
		if got := len(it.Next()); got != want {
			t.Fatalf("generation %d: length %d, want %d", g+1, got, want)
		}
	}
}

func TestNew_Constants(t *testing.T) {
	params := Parameters{
		Axiom:     ParseState("X+Y"),
		Constants: ParseState("+Y"),
		Rules:     rulesOf("Y", "YY", "X", "X+"),
	}
	sys := New(params)

	// Explicit rule beats the constant
	if got := Dump(sys.Rules()[Variable('Y')]); got != "YY" {
		t.Errorf("rule for Y = %q, want YY", got)
	}

	it := sys.Iter()
	for i := 0; i < 4; i++ {
		st := it.Next()
		for _, s := range st {
			if s.Kind == Var && s.Char != 'X' && s.Char != 'Y' {
				t.Fatalf("unexpected symbol %v", s)
			}
		}
	}
	plus := 0
	for _, s := range New(Parameters{Axiom: ParseState("+"), Constants: ParseState("+")}).Iter().Next() {
		if s == Op(Left) {
			plus++
		}
	}
	if plus != 1 {
		t.Errorf("constant expanded to %d symbols, want 1", plus)
	}
}

func TestNew_DoesNotAliasParameters(t *testing.T) {
	params := Parameters{
		Axiom: ParseState("A"),
		Rules: rulesOf("A", "AB"),
	}
	sys := New(params)
	params.Axiom[0] = Variable('Z')
	params.Rules[Variable('A')][0] = Variable('Z')

	if got := Dump(sys.Iter().Next()); got != "AB" {
		t.Errorf("generation 1 = %q, want AB", got)
	}
}

func TestIterator_Deterministic(t *testing.T) {
	a, b := New(binaryTree).Iter(), New(binaryTree).Iter()
	for g := 0; g < 8; g++ {
		if x, y := Dump(a.Next()), Dump(b.Next()); x != y {
			t.Fatalf("generation %d differs: %q vs %q", g+1, x, y)
		}
	}
}

func TestIterator_ParallelMatchesSequential(t *testing.T) {
	sequential := New(koch).Iter()
	sequential.SetMaxWorkers(1)

	parallel := New(koch).Iter()
	parallel.SetSubsectionMinimumSize(3)
	parallel.SetMaxWorkers(4)

	for g := 0; g < 5; g++ {
		want := Dump(sequential.Next())
		if got := Dump(parallel.Next()); got != want {
			t.Fatalf("generation %d: parallel output differs from sequential", g+1)
		}
	}
}

func TestIterator_AdvanceUntil(t *testing.T) {
	it := New(algae).Iter()
	if err := it.AdvanceUntil(context.Background(), 4); err != nil {
		t.Fatal(err)
	}
	if got := Dump(it.State()); got != "ABAABABA" {
		t.Errorf("generation 4 = %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := it.AdvanceUntil(ctx, 10); err != context.Canceled {
		t.Errorf("AdvanceUntil on cancelled context = %v", err)
	}
	if it.Generation() != 4 {
		t.Errorf("Generation() = %d after cancelled advance, want 4", it.Generation())
	}
}

func TestIterator_EmptyReplacement(t *testing.T) {
	it := New(Parameters{Axiom: ParseState("AB"), Rules: Ruleset{Variable('A'): State{}}}).Iter()
	if got := Dump(it.Next()); got != "B" {
		t.Errorf("generation 1 = %q, want B", got)
	}
}

func BenchmarkIterator_Next_InputLength(b *testing.B) {
	for i := uint(8); i <= 14; i += 2 {
		// Precompute generation
		it := New(algae).Iter()
		it.AdvanceUntil(context.Background(), i)
		parameters := algae
		parameters.Axiom = it.State().Clone()

		b.Run(fmt.Sprintf("%d", len(parameters.Axiom)), func(b *testing.B) {
			sys := New(parameters)
			for n := 0; n < b.N; n++ {
				sys.Iter().Next()
			}
		})
	}
}

func BenchmarkIterator_Next(b *testing.B) {
	it := New(koch).Iter()
	it.AdvanceUntil(context.Background(), 5)
	parameters := koch
	parameters.Axiom = it.State().Clone()
	sys := New(parameters)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		sys.Iter().Next()
	}
}
