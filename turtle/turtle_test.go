package turtle

import (
	"image/color"
	"math"
	"testing"

	"github.com/aabizri/lsysviz"
	"github.com/pkg/errors"
)

const epsilon = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func nearPoint(p, q Point) bool {
	return near(p.X, q.X) && near(p.Y, q.Y)
}

func TestDraw_FirstSegmentGoesUp(t *testing.T) {
	cfg := NewDrawConfig(10, 1, 1, 90, 0)
	ops, err := Draw(lsysviz.ParseState("F"), Point{100, 100}, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 {
		t.Fatalf("got %d ops, want 1", len(ops))
	}
	op := ops[0]
	if op.Kind != OpLine || op.Thickness != 1 || op.Color != DefaultColor {
		t.Errorf("unexpected op %+v", op)
	}
	if !nearPoint(op.From, Point{100, 100}) || !nearPoint(op.To, Point{100, 90}) {
		t.Errorf("segment %v -> %v, want (100,100) -> (100,90)", op.From, op.To)
	}
}

func TestTurtle_OrthogonalWalk(t *testing.T) {
	cfg := NewDrawConfig(10, 1, 1, 90, 0)
	origin := Point{50, 50}
	tt := New(origin, &cfg)

	var lines int
	for _, s := range lsysviz.ParseState("+F-F") {
		if _, ok, err := tt.Step(s); err != nil {
			t.Fatal(err)
		} else if ok {
			lines++
		}
	}

	if lines != 2 {
		t.Errorf("got %d lines, want 2", lines)
	}
	d := tt.Position().Sub(origin)
	if !near(math.Abs(d.X), 10) || !near(math.Abs(d.Y), 10) {
		t.Errorf("offset = %v, want one line length on each axis", d)
	}
	if !near(tt.Heading(), InitialHeading) {
		t.Errorf("heading = %v, want %v", tt.Heading(), InitialHeading)
	}
}

func TestTurtle_PushPopRestores(t *testing.T) {
	cfg := NewDrawConfig(7, 1, 1, 25, 0)
	tt := New(Point{0, 0}, &cfg)
	for _, s := range lsysviz.ParseState("F+F") {
		tt.Step(s)
	}
	pos, heading := tt.Position(), tt.Heading()

	for _, s := range lsysviz.ParseState("[F+F[-F|f]F]") {
		if _, _, err := tt.Step(s); err != nil {
			t.Fatal(err)
		}
	}

	if tt.Position() != pos || tt.Heading() != heading {
		t.Errorf("after push/pop: %v %v, want %v %v", tt.Position(), tt.Heading(), pos, heading)
	}
	if tt.Depth() != 0 {
		t.Errorf("depth = %d, want 0", tt.Depth())
	}
}

func TestTurtle_PopEmptyStack(t *testing.T) {
	cfg := DefaultDrawConfig()
	tt := New(Point{3, 4}, &cfg)
	if _, ok, err := tt.Step(lsysviz.Op(lsysviz.Pop)); ok || err != nil {
		t.Fatalf("pop on empty stack: ok=%v err=%v", ok, err)
	}
	if tt.Position() != (Point{3, 4}) || tt.Heading() != InitialHeading {
		t.Errorf("pop on empty stack changed the turtle")
	}
}

func TestTurtle_Reverse(t *testing.T) {
	cfg := DefaultDrawConfig()
	tt := New(Point{0, 0}, &cfg)
	for _, s := range lsysviz.ParseState("F|F") {
		tt.Step(s)
	}
	if !nearPoint(tt.Position(), Point{0, 0}) {
		t.Errorf("position = %v, want back on origin", tt.Position())
	}
}

func TestTurtle_Thickness(t *testing.T) {
	cfg := NewDrawConfig(10, 0.5, 1, 90, 0)
	ops, err := Draw(lsysviz.ParseState("##F!F"), Point{}, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if ops[0].Thickness != 2 || ops[1].Thickness != 1.5 {
		t.Errorf("thicknesses = %v, %v, want 2, 1.5", ops[0].Thickness, ops[1].Thickness)
	}
}

func TestTurtle_Dot(t *testing.T) {
	cfg := NewDrawConfig(4, 1, 1, 90, 0)
	ops, err := Draw(lsysviz.ParseState("f@"), Point{10, 10}, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || ops[0].Kind != OpDot {
		t.Fatalf("ops = %+v, want a single dot", ops)
	}
	if ops[0].Radius != 4 || !nearPoint(ops[0].From, Point{10, 6}) {
		t.Errorf("dot = %+v", ops[0])
	}
}

func TestDrawConfig_Scale(t *testing.T) {
	cfg := NewDrawConfig(10, 1, 1.1, 90, 0)
	if _, err := Draw(lsysviz.ParseState(">>"), Point{}, &cfg); err != nil {
		t.Fatal(err)
	}
	if want := int(math.Round(10 * 1.1 * 1.1)); cfg.LineLength != want {
		t.Errorf("line length = %d, want %d", cfg.LineLength, want)
	}

	cfg = NewDrawConfig(100, 1, 2, 90, 0)
	Draw(lsysviz.ParseState("<<"), Point{}, &cfg)
	if cfg.LineLength != 25 {
		t.Errorf("line length after two scale-downs = %d, want 25", cfg.LineLength)
	}
	Draw(lsysviz.ParseState("><"), Point{}, &cfg)
	if cfg.LineLength != 25 {
		t.Errorf("scale-up then scale-down = %d, want 25", cfg.LineLength)
	}
}

func TestDrawConfig_AnglePersists(t *testing.T) {
	cfg := NewDrawConfig(10, 1, 1, 30, 15)
	Draw(lsysviz.ParseState("(("), Point{}, &cfg)
	if !near(cfg.TurningAngle, Radians(60)) {
		t.Errorf("turning angle = %v, want 60°", cfg.TurningAngle)
	}
	Draw(lsysviz.ParseState(")"), Point{}, &cfg)
	if !near(cfg.TurningAngle, Radians(45)) {
		t.Errorf("turning angle = %v, want 45°", cfg.TurningAngle)
	}
}

func TestDraw_ReservedOperators(t *testing.T) {
	cfg := DefaultDrawConfig()
	ops, err := Draw(lsysviz.ParseState("{F}&F"), Point{}, &cfg)
	if err != nil {
		t.Fatalf("lenient mode: %v", err)
	}
	if len(ops) != 2 {
		t.Errorf("got %d ops, want 2", len(ops))
	}

	cfg = DefaultDrawConfig()
	ops, err = Draw(lsysviz.ParseState("F&F"), Point{}, &cfg, Strict())
	if errors.Cause(err) != ErrUnsupportedOperator {
		t.Fatalf("strict mode error = %v, want ErrUnsupportedOperator", err)
	}
	if len(ops) != 1 {
		t.Errorf("got %d ops before the failure, want 1", len(ops))
	}
}

func TestDraw_Clip(t *testing.T) {
	cfg := NewDrawConfig(10, 1, 1, 90, 0)
	// A visible segment, then a long one away from the box
	state := lsysviz.ParseState("Fff>>>>F")
	cfg.LineLengthScaleFactor = 2

	clip := R(0, 80, 100, 100)
	ops, err := Draw(state, Point{50, 100}, &cfg, WithClip(clip))
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 {
		t.Fatalf("got %d ops, want 1", len(ops))
	}

	cfg = NewDrawConfig(50, 1, 1, 90, 0)
	ops, _ = Draw(lsysviz.ParseState("F"), Point{50, 100}, &cfg, WithClip(R(0, 80, 100, 100)))
	if len(ops) != 1 || !nearPoint(ops[0].To, Point{50, 50}) {
		t.Errorf("partially visible segment should be emitted whole, got %+v", ops)
	}
}

func TestDraw_Color(t *testing.T) {
	cfg := DefaultDrawConfig()
	red := color.RGBA{R: 255, A: 255}
	ops, _ := Draw(lsysviz.ParseState("F@"), Point{}, &cfg, WithColor(red))
	for _, op := range ops {
		if op.Color != red {
			t.Errorf("op colour = %v, want %v", op.Color, red)
		}
	}
}

func TestWalk_StopsOnCallbackError(t *testing.T) {
	cfg := DefaultDrawConfig()
	stop := errors.New("stop")
	n := 0
	err := Walk(lsysviz.ParseState("FFFF"), Point{}, &cfg, func(Op) error {
		n++
		if n == 2 {
			return stop
		}
		return nil
	})
	if err != stop || n != 2 {
		t.Errorf("err = %v after %d ops", err, n)
	}
}
