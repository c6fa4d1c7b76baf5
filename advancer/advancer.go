// Package advancer computes L-system generations on a background worker so
// that a render loop only ever reads the last installed generation.
package advancer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/aabizri/lsysviz"
	"github.com/pkg/errors"
)

const DefaultQueueSize = 16

var (
	// ErrBusy is returned by Advance when the command queue is full.
	// The request is dropped.
	ErrBusy = errors.New("advancer: command queue full")

	// ErrClosed is returned once the worker has shut down.
	ErrClosed = errors.New("advancer: shut down")
)

// Stats describes the installed generation.
type Stats struct {
	Generation uint
	Elapsed    time.Duration // compute time of the last advance
}

type commandKind uint8

const (
	advance commandKind = iota
	reset
	flush
	shutdown
)

type command struct {
	kind  commandKind
	epoch uint64
	done  chan struct{}
}

type options struct {
	queueSize             int
	subsectionMinimumSize int
	maxWorkers            int
}

type Option func(*options)

// WithQueueSize bounds the number of pending commands.
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithRewriteWorkers tunes the parallel rewrite of large generations,
// see lsysviz.Iterator.
func WithRewriteWorkers(maxWorkers, subsectionMinimumSize int) Option {
	return func(o *options) {
		o.maxWorkers = maxWorkers
		o.subsectionMinimumSize = subsectionMinimumSize
	}
}

// An Advancer owns a System's iterator and a single worker rewriting it.
type Advancer struct {
	system lsysviz.System
	opts   options

	// it and applied are only touched by the worker
	it      *lsysviz.Iterator
	applied uint64

	// mu guards the installed generation and its stats
	mu    sync.RWMutex
	state lsysviz.State
	stats Stats

	// epoch is bumped by every Reset, advances from an older epoch are stale.
	// The worker reinstalls the axiom whenever it sees a newer epoch.
	epoch   atomic.Uint64
	closing atomic.Bool

	cmds chan command
	done chan struct{}
}

func buildOptions(opts []Option) options {
	o := options{
		queueSize:             DefaultQueueSize,
		subsectionMinimumSize: lsysviz.DefaultSubsectionMinimumSize,
		maxWorkers:            lsysviz.DefaultMaxWorkers,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Start installs the axiom of sys and launches the worker.
func Start(sys lsysviz.System, opts ...Option) *Advancer {
	o := buildOptions(opts)
	a := newAdvancer(sys, o)
	go a.run()
	lsysviz.Logger().Info("advancer started", "queue", o.queueSize)

	return a
}

func newAdvancer(sys lsysviz.System, o options) *Advancer {
	a := &Advancer{
		system: sys,
		opts:   o,
		cmds:   make(chan command, o.queueSize),
		done:   make(chan struct{}),
	}
	a.it = a.newIterator()
	a.state = a.it.State()
	return a
}

func (a *Advancer) newIterator() *lsysviz.Iterator {
	it := a.system.Iter()
	it.SetMaxWorkers(a.opts.maxWorkers)
	it.SetSubsectionMinimumSize(a.opts.subsectionMinimumSize)
	return it
}

// Advance asks for the next generation. It never blocks: when the queue is
// full the request is dropped and ErrBusy returned.
func (a *Advancer) Advance() error {
	if a.closed() {
		return ErrClosed
	}

	select {
	case a.cmds <- command{kind: advance, epoch: a.epoch.Load()}:
		return nil
	case <-a.done:
		return ErrClosed
	default:
		return ErrBusy
	}
}

// Reset reinstalls the axiom. It never blocks: the new epoch is published
// at once and the worker acts on it before its next command, or as soon as
// the rewrite in progress ends, whose result is then discarded. Advances
// queued before the Reset are dropped, so none of them can overwrite it
// after the fact.
func (a *Advancer) Reset() error {
	if a.closed() {
		return ErrClosed
	}
	epoch := a.epoch.Add(1)

	// Wake an idle worker. With a full queue the worker sees the epoch on
	// its next command anyway.
	select {
	case a.cmds <- command{kind: reset, epoch: epoch}:
	default:
	}
	return nil
}

// Flush returns once every command queued before it has been processed.
func (a *Advancer) Flush() error {
	done := make(chan struct{})
	if err := a.send(command{kind: flush, done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-a.done:
		return ErrClosed
	}
}

// Shutdown stops the worker once the commands queued before it are processed,
// and waits for it to exit. Commands issued once Shutdown has been called fail
// with ErrClosed.
func (a *Advancer) Shutdown() error {
	if a.closing.Swap(true) {
		return ErrClosed
	}
	select {
	case a.cmds <- command{kind: shutdown}:
	case <-a.done:
	}
	<-a.done
	return nil
}

func (a *Advancer) closed() bool {
	if a.closing.Load() {
		return true
	}
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

func (a *Advancer) send(c command) error {
	if a.closed() {
		return ErrClosed
	}

	select {
	case a.cmds <- c:
		return nil
	case <-a.done:
		return ErrClosed
	}
}

// View calls fn with the installed generation while holding the read lock.
// The state must not be retained after fn returns, Clone it if needed.
func (a *Advancer) View(fn func(state lsysviz.State, stats Stats)) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	fn(a.state, a.stats)
}

func (a *Advancer) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.stats
}

// run is the worker loop. A panic here is not recovered: generation state
// only lives in this process.
func (a *Advancer) run() {
	defer close(a.done)

	for c := range a.cmds {
		a.resetIfStale()

		switch c.kind {
		case advance:
			if c.epoch != a.applied {
				lsysviz.Logger().Debug("advancer: dropping stale advance", "epoch", c.epoch)
				continue
			}
			a.advance()
		case reset:
			// already applied by resetIfStale
		case flush:
			close(c.done)
		case shutdown:
			lsysviz.Logger().Info("advancer stopped")
			return
		}
	}
}

// resetIfStale reinstalls the axiom if a Reset happened since the last one
// the worker applied, and reports whether it did.
func (a *Advancer) resetIfStale() bool {
	epoch := a.epoch.Load()
	if epoch == a.applied {
		return false
	}
	a.applied = epoch
	a.it = a.newIterator()
	a.install(a.it.State(), Stats{})
	lsysviz.Logger().Debug("advancer: reset", "epoch", epoch)
	return true
}

// advance rewrites outside the lock. The iterator writes into the buffer of
// the generation before the installed one, which no reader can see anymore.
// A Reset arriving during the rewrite wins over its result.
func (a *Advancer) advance() {
	start := time.Now()
	state := a.it.Next()
	stats := Stats{
		Generation: a.it.Generation(),
		Elapsed:    time.Since(start),
	}

	if a.resetIfStale() {
		lsysviz.Logger().Debug("advancer: generation discarded by reset", "generation", stats.Generation)
		return
	}
	a.install(state, stats)

	lsysviz.Logger().Debug("advancer: generation installed",
		"generation", stats.Generation,
		"symbols", len(state),
		"elapsed", stats.Elapsed)
}

func (a *Advancer) install(state lsysviz.State, stats Stats) {
	a.mu.Lock()
	a.state, a.stats = state, stats
	a.mu.Unlock()
}
