// Package visualizer drives the frame loop: it renders the installed
// generation at a fixed cadence and forwards user commands to the advancer.
package visualizer

import (
	"context"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"github.com/aabizri/lsysviz"
	"github.com/aabizri/lsysviz/advancer"
	"github.com/aabizri/lsysviz/render"
	"github.com/aabizri/lsysviz/turtle"
	"github.com/pkg/errors"
)

const DefaultFPS = 20

var ErrUnknownCommand = errors.New("unknown command")

// Command is a user intent.
type Command uint8

const (
	Advance Command = iota
	Reset
	Snapshot
	Quit
)

func (c Command) String() string {
	switch c {
	case Advance:
		return "advance"
	case Reset:
		return "reset"
	case Snapshot:
		return "snapshot"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

var commandNames = map[string]Command{
	"":         Advance,
	"n":        Advance,
	"next":     Advance,
	"advance":  Advance,
	"r":        Reset,
	"reset":    Reset,
	"p":        Snapshot,
	"snapshot": Snapshot,
	"q":        Quit,
	"quit":     Quit,
	"exit":     Quit,
}

// ParseCommand maps a line of user input to a command. An empty line advances.
func ParseCommand(s string) (Command, error) {
	c, ok := commandNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownCommand, "%q", s)
	}
	return c, nil
}

type options struct {
	name        string
	fps         int
	snapshotDir string
	fresh       bool
	color       color.RGBA
}

type Option func(*options)

// WithName sets the name shown in the status bar.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func WithFPS(fps int) Option {
	return func(o *options) {
		if fps > 0 {
			o.fps = fps
		}
	}
}

// WithSnapshotDir sets where snapshots are written.
func WithSnapshotDir(dir string) Option {
	return func(o *options) {
		o.snapshotDir = dir
	}
}

// WithColor sets the colour of the drawing.
func WithColor(c color.RGBA) Option {
	return func(o *options) {
		o.color = c
	}
}

// FreshConfig makes every frame start from the loaded DrawConfig. By default
// the changes made by the scale and angle operators persist into the next
// frame, until a Reset restores the loaded config.
func FreshConfig(fresh bool) Option {
	return func(o *options) {
		o.fresh = fresh
	}
}

type Visualizer struct {
	adv      *advancer.Advancer
	loaded   turtle.DrawConfig
	live     turtle.DrawConfig
	renderer *render.Renderer
	opts     options

	frames    uint64
	snapshots int
}

func New(adv *advancer.Advancer, cfg turtle.DrawConfig, r *render.Renderer, opts ...Option) *Visualizer {
	o := options{
		fps:         DefaultFPS,
		snapshotDir: ".",
		color:       turtle.DefaultColor,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Visualizer{
		adv:      adv,
		loaded:   cfg,
		live:     cfg,
		renderer: r,
		opts:     o,
	}
}

// Config returns the config the next frame will start from.
func (v *Visualizer) Config() turtle.DrawConfig {
	if v.opts.fresh {
		return v.loaded
	}
	return v.live
}

// Frame renders the installed generation. The advancer's read lock is only
// held during the interpretation pass, not while rasterizing.
func (v *Visualizer) Frame() error {
	cfg := v.Config()

	var (
		ops    []turtle.Op
		status render.Status
		err    error
	)
	v.adv.View(func(state lsysviz.State, stats advancer.Stats) {
		ops, err = turtle.Draw(state, v.renderer.Origin(), &cfg,
			turtle.WithClip(v.renderer.Clip()),
			turtle.WithColor(v.opts.color))
		status = render.Status{
			Name:       v.opts.name,
			Generation: stats.Generation,
			Elapsed:    stats.Elapsed.Seconds(),
		}
	})
	if err != nil {
		return errors.Wrap(err, "interpretation failed")
	}

	if !v.opts.fresh {
		v.live = cfg
	}

	v.frames++
	lsysviz.Logger().Debug("frame", "n", v.frames, "generation", status.Generation, "ops", len(ops))

	return v.renderer.Frame(ops, status)
}

// Snapshot writes the last frame to a new PNG file and returns its path.
func (v *Visualizer) Snapshot() (string, error) {
	if v.frames == 0 {
		if err := v.Frame(); err != nil {
			return "", err
		}
	}

	v.snapshots++
	path := filepath.Join(v.opts.snapshotDir, fmt.Sprintf("snapshot-%d.png", v.snapshots))
	if err := v.renderer.SavePNG(path); err != nil {
		return "", err
	}

	lsysviz.Logger().Info("snapshot written", "path", path)
	return path, nil
}

// handle applies a command and reports whether the loop should stop
func (v *Visualizer) handle(c Command) (bool, error) {
	switch c {
	case Advance:
		err := v.adv.Advance()
		if err == advancer.ErrBusy {
			lsysviz.Logger().Warn("advance dropped, still computing")
			return false, nil
		}
		return false, err
	case Reset:
		v.live = v.loaded
		return false, v.adv.Reset()
	case Snapshot:
		if _, err := v.Snapshot(); err != nil {
			lsysviz.Logger().Warn("snapshot failed", "err", err)
		}
		return false, nil
	case Quit:
		return true, nil
	default:
		return false, errors.Wrapf(ErrUnknownCommand, "%d", c)
	}
}

// Run renders a frame per tick until ctx is done, the commands channel is
// closed, or a Quit command arrives.
func (v *Visualizer) Run(ctx context.Context, commands <-chan Command) error {
	ticker := time.NewTicker(time.Second / time.Duration(v.opts.fps))
	defer ticker.Stop()

	if err := v.Frame(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-commands:
			if !ok {
				return nil
			}
			quit, err := v.handle(c)
			if err != nil {
				return errors.Wrapf(err, "%s", c)
			}
			if quit {
				return nil
			}
		case <-ticker.C:
			if err := v.Frame(); err != nil {
				return err
			}
		}
	}
}
