package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"

	"github.com/aabizri/lsysviz"
	"github.com/docopt/docopt-go"
	"github.com/gogpu/gg"
	"github.com/pkg/errors"
)

const version = "lsysviz 0.1"

var usage = `lsysviz

Usage:
  lsysviz [-v] [--fps=N] [--size=WxH] [--out=DIR] [--fresh-config] FILE
  lsysviz [-v] render [--generations=N] [--size=WxH] [--out=DIR] [--only=GLOB] [--workers=N] FILE...
  lsysviz -h | --version

Arguments:
  FILE  Grammar file, either .lsys or an LSIF stream (.yml, .yaml).

Options:
  -v, --verbose      Log debug messages to stderr.
  --fps=N            Frames rendered per second [default: 20].
  --size=WxH         Frame size in pixels [default: 800x800].
  --out=DIR          Directory for snapshots and rendered images [default: .].
  --fresh-config     Start every frame from the loaded config, instead of
                     keeping the changes of the scale and angle operators.
  --generations=N    Generations computed before rendering [default: 8].
  --only=GLOB        Only render the definitions whose name matches GLOB.
  --workers=N        Concurrent renders, 0 for one per CPU [default: 0].
  -h, --help         Display this help.
  --version          Print the version.

Without the render command, the first definition of FILE is shown and
advanced interactively: an empty line or "n" computes the next generation,
"r" resets to the axiom, "p" writes a snapshot and "q" quits.
`

// parser only exits for --help and --version, usage errors are returned
var parser = &docopt.Parser{
	HelpHandler: func(err error, usage string) {
		if err == nil {
			fmt.Println(usage)
			os.Exit(0)
		}
	},
}

type config struct {
	verbose bool
	render  bool
	files   []string

	fps         int
	width       int
	height      int
	out         string
	fresh       bool
	generations uint
	only        string
	workers     int
}

func parseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, errors.Errorf("invalid size %q, want WxH", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid width in %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid height in %q", s)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, errors.Errorf("invalid size %q", s)
	}
	return width, height, nil
}

func parseArgs(argv []string) (config, error) {
	var cfg config

	opts, err := parser.ParseArgs(usage, argv, version)
	if err != nil {
		return cfg, err
	}

	cfg.verbose, _ = opts.Bool("--verbose")
	cfg.render, _ = opts.Bool("render")
	cfg.fresh, _ = opts.Bool("--fresh-config")
	cfg.out, _ = opts.String("--out")
	cfg.only, _ = opts.String("--only")

	switch files := opts["FILE"].(type) {
	case []string:
		cfg.files = files
	case string:
		cfg.files = []string{files}
	}
	if len(cfg.files) == 0 {
		return cfg, errors.New("no input file")
	}

	size, _ := opts.String("--size")
	if cfg.width, cfg.height, err = parseSize(size); err != nil {
		return cfg, err
	}

	if cfg.render {
		generations, err := opts.Int("--generations")
		if err != nil || generations < 0 {
			return cfg, errors.Errorf("invalid generation count %v", opts["--generations"])
		}
		cfg.generations = uint(generations)

		if cfg.workers, err = opts.Int("--workers"); err != nil || cfg.workers < 0 {
			return cfg, errors.Errorf("invalid worker count %v", opts["--workers"])
		}
		if cfg.workers == 0 {
			cfg.workers = runtime.NumCPU()
		}
	} else {
		if cfg.fps, err = opts.Int("--fps"); err != nil || cfg.fps <= 0 {
			return cfg, errors.Errorf("invalid frame rate %v", opts["--fps"])
		}
	}

	return cfg, nil
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	lsysviz.SetLogger(logger)
	gg.SetLogger(logger)
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	setupLogging(os.Stderr, cfg.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.render {
		err = renderAll(ctx, cfg, os.Stdout)
	} else {
		err = interact(ctx, cfg, os.Stdin, os.Stderr)
	}
	if err != nil {
		lsysviz.Logger().Error("lsysviz failed", "err", err)
		os.Exit(1)
	}
}
