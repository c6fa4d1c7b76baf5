package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"time"

	"github.com/aabizri/lsysviz"
	"github.com/aabizri/lsysviz/interchange"
	"github.com/aabizri/lsysviz/render"
	"github.com/aabizri/lsysviz/turtle"
	"github.com/pkg/errors"
)

const (
	sequencerQueueSize = 5
	orderInQueueSize   = 5
	orderOutQueueSize  = 0
	outQueueSize       = 5
)

// job describes what each worker does with a definition
type job struct {
	generations   uint
	width, height int
	out           string
}

type order struct {
	def interchange.Definition
	seq int

	path    string
	symbols int
	elapsed time.Duration
	err     error
}

func buildPipeline(ctx context.Context, j job, workers int) (in chan<- interchange.Definition, out <-chan *order) {
	if workers < 1 {
		workers = 1
	}

	sequencerQueue := make(chan interchange.Definition, sequencerQueueSize)
	orderInQueue := make(chan *order, orderInQueueSize)
	outQueue := make(chan *order, outQueueSize)
	orderOutQueues := make([]<-chan *order, workers)

	go sequence(sequencerQueue, orderInQueue)
	for i := range orderOutQueues {
		q := make(chan *order, orderOutQueueSize)
		go run(ctx, j, orderInQueue, q)
		orderOutQueues[i] = q
	}
	go resolve(orderOutQueues, outQueue)

	return sequencerQueue, outQueue
}

func sequence(in <-chan interchange.Definition, orderInQueue chan<- *order) {
	seq := 0
	for def := range in {
		orderInQueue <- &order{
			def: def,
			seq: seq,
		}
		seq++
	}
	close(orderInQueue)
}

func run(ctx context.Context, j job, orderInQueue <-chan *order, orderOutQueue chan<- *order) {
	for o := range orderInQueue {
		start := time.Now()
		o.path, o.symbols, o.err = j.do(ctx, o.def)
		o.elapsed = time.Since(start)
		orderOutQueue <- o
	}
	close(orderOutQueue)
}

// do advances the definition's system and saves the resulting frame
func (j job) do(ctx context.Context, def interchange.Definition) (string, int, error) {
	it := def.System().Iter()
	start := time.Now()
	if err := it.AdvanceUntil(ctx, j.generations); err != nil {
		return "", 0, err
	}
	elapsed := time.Since(start)

	r, err := render.New(j.width, j.height)
	if err != nil {
		return "", 0, err
	}
	defer r.Close()

	cfg := def.Config
	state := it.State()
	ops, err := turtle.Draw(state, r.Origin(), &cfg, turtle.WithClip(r.Clip()))
	if err != nil {
		return "", 0, errors.Wrapf(err, "system %q", def.Name)
	}

	status := render.Status{
		Name:       def.Name,
		Generation: it.Generation(),
		Elapsed:    elapsed.Seconds(),
	}
	if err := r.Frame(ops, status); err != nil {
		return "", 0, errors.Wrapf(err, "system %q", def.Name)
	}

	path := filepath.Join(j.out, def.Name+".png")
	if err := r.SavePNG(path); err != nil {
		return "", 0, err
	}
	return path, len(state), nil
}

// resolve forwards the orders in sequence order.
//
// Each queue has a single buffer slot: an order that arrives ahead of its turn
// takes its queue's slot, and that queue is not selected on until the slot is
// emptied. In the worst case every slot but one is taken, and only that queue,
// which holds the next order, is selected on. The real buffering is done by
// the channels.
func resolve(orderOutQueues []<-chan *order, outQueue chan<- *order) {
	seq := -1

	buffer := make([]*order, len(orderOutQueues))

	// mask marks the closed queues
	mask := make([]bool, len(orderOutQueues))

	checkBuffer := func() {
		for flushed := true; flushed; {
			flushed = false
			for i, buffered := range buffer {
				if buffered != nil && buffered.seq == seq+1 {
					outQueue <- buffered
					seq++
					buffer[i] = nil
					flushed = true
				}
			}
		}
	}

	selectCases := make([]reflect.SelectCase, len(orderOutQueues))
	for i, q := range orderOutQueues {
		selectCases[i] = reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(q),
		}
	}

	// Cases selected on this round, and their queue index
	subSelectCases := make([]reflect.SelectCase, 0, len(orderOutQueues))
	subSelectCaseToOrderQueueIndex := make([]int, 0, len(orderOutQueues))

	for {
		allMasked := true
		for _, masked := range mask {
			if !masked {
				allMasked = false
				break
			}
		}
		if allMasked {
			checkBuffer()
			close(outQueue)
			return
		}

		subSelectCases = subSelectCases[:0]
		subSelectCaseToOrderQueueIndex = subSelectCaseToOrderQueueIndex[:0]
		for i, sc := range selectCases {
			if buffer[i] == nil && !mask[i] {
				subSelectCases = append(subSelectCases, sc)
				subSelectCaseToOrderQueueIndex = append(subSelectCaseToOrderQueueIndex, i)
			}
		}

		// The buffer is checked every time a queue is masked, so this only
		// happens if sequence numbers are not contiguous.
		if len(subSelectCases) == 0 {
			panic("resolve: no queue to select on, are sequence numbers contiguous?")
		}

		chosen, recv, ok := reflect.Select(subSelectCases)
		index := subSelectCaseToOrderQueueIndex[chosen]
		if !ok {
			mask[index] = true
			checkBuffer()
			continue
		}

		o := recv.Interface().(*order)
		if o.seq == seq+1 {
			outQueue <- o
			seq++
			checkBuffer()
		} else {
			buffer[index] = o
		}
	}
}

// renderAll renders every definition of cfg's files and reports the results
// in input order. It fails if any render failed.
func renderAll(ctx context.Context, cfg config, w io.Writer) error {
	defs, err := loadAll(cfg.files, cfg.only)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		lsysviz.Logger().Warn("nothing to render", "only", cfg.only)
		return nil
	}

	j := job{
		generations: cfg.generations,
		width:       cfg.width,
		height:      cfg.height,
		out:         cfg.out,
	}
	in, out := buildPipeline(ctx, j, cfg.workers)

	go func() {
		defer close(in)
		for _, def := range defs {
			select {
			case in <- def:
			case <-ctx.Done():
				return
			}
		}
	}()

	var failed int
	for o := range out {
		if o.err != nil {
			failed++
			lsysviz.Logger().Error("render failed", "name", o.def.Name, "err", o.err)
			continue
		}
		lsysviz.Logger().Debug("rendered", "name", o.def.Name, "symbols", o.symbols, "elapsed", o.elapsed)
		if _, err := fmt.Fprintln(w, o.path); err != nil {
			return errors.Wrap(err, "could not write result")
		}
	}

	if failed > 0 {
		return errors.Errorf("%d of %d renders failed", failed, len(defs))
	}
	return ctx.Err()
}
