// Package turtle interprets L-system generations as turtle graphics.
//
// The interpreter never touches a canvas: it replays a State against a
// Turtle and a DrawConfig and yields drawing requests (Op) for a renderer.
package turtle

import (
	"image/color"
	"math"

	"github.com/aabizri/lsysviz"
	"github.com/pkg/errors"
)

// ErrUnsupportedOperator is returned in strict mode for the operators that
// have no geometric meaning yet: open-polygon, close-polygon and swap-operations.
var ErrUnsupportedOperator = errors.New("unsupported operator")

// DefaultColor is the foreground colour ops are tagged with.
var DefaultColor = color.RGBA{R: 228, G: 230, B: 235, A: 255}

// InitialHeading points up on a screen whose y axis goes down.
const InitialHeading = math.Pi / 2

type options struct {
	clip   *Rect
	color  color.RGBA
	strict bool
}

type Option func(*options)

// WithClip skips ops whose bounds lie wholly outside r.
// Partially visible lines are still emitted whole.
func WithClip(r Rect) Option {
	return func(o *options) {
		o.clip = &r
	}
}

// WithColor sets the colour ops are tagged with.
func WithColor(c color.RGBA) Option {
	return func(o *options) {
		o.color = c
	}
}

// Strict makes the reserved operators fail with ErrUnsupportedOperator
// instead of being skipped.
func Strict() Option {
	return func(o *options) {
		o.strict = true
	}
}

func buildOptions(opts []Option) options {
	o := options{color: DefaultColor}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type frame struct {
	position Point
	heading  float64
}

// A Turtle is the state of one interpretation pass.
type Turtle struct {
	position  Point
	heading   float64
	thickness float64
	stack     []frame

	cfg  *DrawConfig
	opts options
}

// New places a turtle on origin, heading up, with a thickness of 1.
// cfg is mutated by the scale, width and angle operators.
func New(origin Point, cfg *DrawConfig, opts ...Option) *Turtle {
	return &Turtle{
		position:  origin,
		heading:   InitialHeading,
		thickness: 1,
		cfg:       cfg,
		opts:      buildOptions(opts),
	}
}

func (t *Turtle) Position() Point {
	return t.position
}

// Heading in radians, InitialHeading being up.
func (t *Turtle) Heading() float64 {
	return t.heading
}

// Depth is the number of saved states on the stack.
func (t *Turtle) Depth() int {
	return len(t.stack)
}

func (t *Turtle) forward() Point {
	l := float64(t.cfg.LineLength)
	return t.position.Sub(Point{X: l * math.Cos(t.heading), Y: l * math.Sin(t.heading)})
}

// Step applies one symbol. It returns the op the symbol produced, if any.
func (t *Turtle) Step(s lsysviz.Symbol) (Op, bool, error) {
	switch s.Kind {
	case lsysviz.Var:
	case lsysviz.Draw:
		to := t.forward()
		op := Op{
			Kind:      OpLine,
			From:      t.position,
			To:        to,
			Thickness: t.thickness,
			Color:     t.opts.color,
		}
		t.position = to
		return op, true, nil
	case lsysviz.Move:
		t.position = t.forward()
	case lsysviz.Left:
		t.heading -= t.cfg.TurningAngle
	case lsysviz.Right:
		t.heading += t.cfg.TurningAngle
	case lsysviz.Reverse:
		t.heading += math.Pi
	case lsysviz.Push:
		t.stack = append(t.stack, frame{t.position, t.heading})
	case lsysviz.Pop:
		// Popping an empty stack does nothing
		if n := len(t.stack); n > 0 {
			f := t.stack[n-1]
			t.stack = t.stack[:n-1]
			t.position, t.heading = f.position, f.heading
		}
	case lsysviz.Thicken:
		t.thickness += t.cfg.LineWidthIncrement
	case lsysviz.Thin:
		t.thickness -= t.cfg.LineWidthIncrement
	case lsysviz.Dot:
		return Op{
			Kind:   OpDot,
			From:   t.position,
			Radius: float64(t.cfg.LineLength),
			Color:  t.opts.color,
		}, true, nil
	case lsysviz.ScaleUp:
		t.cfg.scale(true)
	case lsysviz.ScaleDown:
		t.cfg.scale(false)
	case lsysviz.WidenAngle:
		t.cfg.TurningAngle += t.cfg.TurningAngleIncrement
	case lsysviz.NarrowAngle:
		t.cfg.TurningAngle -= t.cfg.TurningAngleIncrement
	case lsysviz.OpenPolygon, lsysviz.ClosePolygon, lsysviz.SwapOperations:
		if t.opts.strict {
			return Op{}, false, errors.Wrap(ErrUnsupportedOperator, s.Kind.String())
		}
	default:
		return Op{}, false, errors.Errorf("unknown symbol kind %d", s.Kind)
	}
	return Op{}, false, nil
}

// Walk interprets state from origin and calls fn with every op, in order.
// It stops at the first error, either from fn or from the turtle.
func Walk(state lsysviz.State, origin Point, cfg *DrawConfig, fn func(Op) error, opts ...Option) error {
	t := New(origin, cfg, opts...)
	for i, s := range state {
		op, ok, err := t.Step(s)
		if err != nil {
			return errors.Wrapf(err, "symbol %d", i)
		}
		if !ok {
			continue
		}
		if t.opts.clip != nil && !t.opts.clip.Intersects(op.Bounds()) {
			continue
		}
		if err := fn(op); err != nil {
			return err
		}
	}
	return nil
}

// Draw interprets state from origin and returns the ops it produced.
func Draw(state lsysviz.State, origin Point, cfg *DrawConfig, opts ...Option) ([]Op, error) {
	var ops []Op
	err := Walk(state, origin, cfg, func(op Op) error {
		ops = append(ops, op)
		return nil
	}, opts...)
	return ops, err
}
