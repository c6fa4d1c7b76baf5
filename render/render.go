// Package render rasterizes turtle ops into frames with gg.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/aabizri/lsysviz/turtle"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	// The status bar is 1/FontScale of the frame height, plus padding
	FontScale = 30
	Padding   = 4

	minFontSize = 8
)

var (
	DefaultBackground = color.RGBA{R: 24, G: 25, B: 26, A: 255}
	DefaultForeground = color.RGBA{R: 228, G: 230, B: 235, A: 255}
	DefaultPanel      = color.RGBA{R: 36, G: 37, B: 38, A: 255}
)

// Status is shown in the status bar.
type Status struct {
	Name       string
	Generation uint
	Elapsed    float64 // seconds
}

func (s Status) String() string {
	str := fmt.Sprintf("N=%d, took: %.3fs", s.Generation, s.Elapsed)
	if s.Name != "" {
		str = s.Name + "  " + str
	}
	return str
}

type options struct {
	background color.RGBA
	foreground color.RGBA
	statusBar  bool
}

type Option func(*options)

func WithBackground(c color.RGBA) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithForeground sets the colour of the status bar text and separator.
func WithForeground(c color.RGBA) Option {
	return func(o *options) {
		o.foreground = c
	}
}

func WithStatusBar(enabled bool) Option {
	return func(o *options) {
		o.statusBar = enabled
	}
}

// A Renderer owns one drawing context, frames are drawn over each other.
type Renderer struct {
	dc   *gg.Context
	font *text.FontSource
	face text.Face
	opts options
}

func New(width, height int, opts ...Option) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid frame size %dx%d", width, height)
	}

	o := options{
		background: DefaultBackground,
		foreground: DefaultForeground,
		statusBar:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{
		dc:   gg.NewContext(width, height),
		opts: o,
	}

	if o.statusBar {
		source, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			return nil, errors.Wrap(err, "could not load font")
		}
		r.font = source
		r.face = source.Face(math.Max(float64(r.Height()/FontScale), minFontSize))
	}

	return r, nil
}

func (r *Renderer) Width() int {
	return r.dc.Width()
}

func (r *Renderer) Height() int {
	return r.dc.Height()
}

// Origin is where the turtle starts: bottom centre.
func (r *Renderer) Origin() turtle.Point {
	return turtle.Point{X: float64(r.Width() / 2), Y: float64(r.Height())}
}

// Clip is the visible part of the frame.
func (r *Renderer) Clip() turtle.Rect {
	return turtle.R(0, 0, float64(r.Width()), float64(r.Height()))
}

func (r *Renderer) statusHeight() int {
	return 2*Padding + r.Height()/FontScale
}

// Begin clears the frame.
func (r *Renderer) Begin() {
	r.dc.ClearWithColor(gg.FromColor(r.opts.background))
}

// Draw rasterizes a single op.
func (r *Renderer) Draw(op turtle.Op) error {
	r.dc.SetColor(op.Color)
	switch op.Kind {
	case turtle.OpLine:
		if op.Thickness <= 0 {
			return nil
		}
		r.dc.SetLineWidth(op.Thickness)
		r.dc.SetLineCap(gg.LineCapRound)
		r.dc.DrawLine(op.From.X, op.From.Y, op.To.X, op.To.Y)
		return r.dc.Stroke()
	case turtle.OpDot:
		if op.Radius <= 0 {
			return nil
		}
		r.dc.DrawCircle(op.From.X, op.From.Y, op.Radius)
		return r.dc.Fill()
	default:
		return errors.Errorf("unknown op kind %v", op.Kind)
	}
}

// End draws the status bar over the frame.
func (r *Renderer) End(status Status) error {
	if !r.opts.statusBar {
		return nil
	}

	w, h := float64(r.Width()), float64(r.statusHeight())
	r.dc.SetColor(DefaultPanel)
	r.dc.DrawRectangle(0, 0, w, h)
	if err := r.dc.Fill(); err != nil {
		return err
	}

	r.dc.SetColor(r.opts.foreground)
	r.dc.SetLineWidth(1)
	r.dc.DrawLine(0, h, w, h)
	if err := r.dc.Stroke(); err != nil {
		return err
	}

	r.dc.SetFont(r.face)
	r.dc.DrawStringAnchored(status.String(), 2*Padding, h/2, 0, 0.5)
	return nil
}

// Frame draws a whole frame: background, ops and status bar.
func (r *Renderer) Frame(ops []turtle.Op, status Status) error {
	r.Begin()
	for _, op := range ops {
		if err := r.Draw(op); err != nil {
			return err
		}
	}
	return r.End(status)
}

func (r *Renderer) Image() image.Image {
	return r.dc.Image()
}

func (r *Renderer) SavePNG(path string) error {
	return errors.Wrapf(r.dc.SavePNG(path), "could not save %s", path)
}

func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

func (r *Renderer) Close() error {
	var err error
	if r.font != nil {
		err = r.font.Close()
	}
	if cerr := r.dc.Close(); err == nil {
		err = cerr
	}
	return err
}
