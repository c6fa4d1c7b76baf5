package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aabizri/lsysviz"
	"github.com/aabizri/lsysviz/advancer"
	"github.com/aabizri/lsysviz/render"
	"github.com/aabizri/lsysviz/visualizer"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
)

const prompt = "lsysviz> "

// lineReader yields lines of user input until io.EOF
type lineReader interface {
	ReadLine() (string, error)
	Close() error
}

type promptReader struct {
	*liner.State
}

func newPromptReader() *promptReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &promptReader{state}
}

func (p *promptReader) ReadLine() (string, error) {
	line, err := p.Prompt(prompt)
	if err == liner.ErrPromptAborted {
		return "", io.EOF
	} else if err != nil {
		return "", err
	}
	if line != "" {
		p.AppendHistory(line)
	}
	return line, nil
}

type scanReader struct {
	*bufio.Scanner
}

func (s scanReader) ReadLine() (string, error) {
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.Text(), nil
}

func (scanReader) Close() error {
	return nil
}

func newLineReader(in io.Reader) lineReader {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return newPromptReader()
	}
	return scanReader{bufio.NewScanner(in)}
}

// readCommands forwards parsed commands until the input ends or ctx is done.
// Unknown commands are reported on ew and skipped.
func readCommands(ctx context.Context, lr lineReader, ew io.Writer, commands chan<- visualizer.Command) {
	defer close(commands)
	for {
		line, err := lr.ReadLine()
		if err != nil {
			if err != io.EOF {
				lsysviz.Logger().Error("could not read command", "err", err)
			}
			return
		}

		c, err := visualizer.ParseCommand(line)
		if err != nil {
			fmt.Fprintln(ew, err)
			continue
		}

		select {
		case commands <- c:
		case <-ctx.Done():
			return
		}
		if c == visualizer.Quit {
			return
		}
	}
}

// interact shows the first definition of the input file and drives it from
// the commands read on in.
func interact(ctx context.Context, cfg config, in io.Reader, ew io.Writer) error {
	defs, err := load(cfg.files[0])
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return errors.Errorf("%s: no definition", cfg.files[0])
	}
	if len(defs) > 1 {
		lsysviz.Logger().Warn("only the first definition is shown", "name", defs[0].Name, "count", len(defs))
	}
	def := defs[0]

	sys := def.System()
	lsysviz.Logger().Info("showing definition",
		"name", def.Name,
		"axiom", sys.Axiom().String(),
		"rules", len(sys.Rules()))

	adv := advancer.Start(sys)
	defer adv.Shutdown()

	r, err := render.New(cfg.width, cfg.height)
	if err != nil {
		return err
	}
	defer r.Close()

	v := visualizer.New(adv, def.Config, r,
		visualizer.WithName(def.Name),
		visualizer.WithFPS(cfg.fps),
		visualizer.WithSnapshotDir(cfg.out),
		visualizer.FreshConfig(cfg.fresh))

	lr := newLineReader(in)
	defer lr.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	commands := make(chan visualizer.Command)
	go readCommands(ctx, lr, ew, commands)

	err = v.Run(ctx, commands)
	if errors.Cause(err) == context.Canceled {
		return nil
	}
	return err
}
