package turtle

import (
	"image/color"
	"math"
)

type Point struct {
	X, Y float64
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Rect is an axis-aligned rectangle, Min inclusive.
type Rect struct {
	Min, Max Point
}

// R is shorthand for a Rect with the given corners.
func R(x0, y0, x1, y1 float64) Rect {
	return Rect{Point{math.Min(x0, x1), math.Min(y0, y1)}, Point{math.Max(x0, x1), math.Max(y0, y1)}}
}

func (r Rect) Intersects(s Rect) bool {
	return r.Min.X <= s.Max.X && s.Min.X <= r.Max.X && r.Min.Y <= s.Max.Y && s.Min.Y <= r.Max.Y
}

// Inset grows (negative d) or shrinks r by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{Point{r.Min.X + d, r.Min.Y + d}, Point{r.Max.X - d, r.Max.Y - d}}
}

type OpKind uint8

const (
	OpLine OpKind = iota
	OpDot
)

func (k OpKind) String() string {
	switch k {
	case OpLine:
		return "line"
	case OpDot:
		return "dot"
	default:
		return "unknown"
	}
}

// An Op is one drawing request for a renderer.
// Lines use From, To and Thickness, dots use From and Radius.
type Op struct {
	Kind      OpKind
	From, To  Point
	Thickness float64
	Radius    float64
	Color     color.RGBA
}

// Bounds is the rectangle the op may paint on.
func (op Op) Bounds() Rect {
	switch op.Kind {
	case OpDot:
		return R(op.From.X, op.From.Y, op.From.X, op.From.Y).Inset(-math.Abs(op.Radius))
	default:
		return R(op.From.X, op.From.Y, op.To.X, op.To.Y).Inset(-math.Abs(op.Thickness) / 2)
	}
}
