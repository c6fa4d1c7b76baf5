package lsysviz

import (
	"context"
	"runtime"
	"sync"
)

const DefaultSubsectionMinimumSize = 64

var DefaultMaxWorkers = runtime.NumCPU()

// A System is a context-free L-system: a ruleset and an axiom.
// It is immutable once built, iterate over it with Iter.
type System struct {
	rules Ruleset
	axiom State
}

// New builds a System. Constants are registered as identity rules, unless
// the ruleset already holds a rule for them, in which case that rule wins.
func New(parameters Parameters) System {
	rules := make(Ruleset, len(parameters.Rules)+len(parameters.Constants))
	for s, r := range parameters.Rules {
		rules[s] = r.Clone()
	}
	for _, c := range parameters.Constants {
		if _, ok := rules[c]; !ok {
			rules[c] = State{c}
		}
	}

	axiom := parameters.Axiom.Clone()
	if axiom == nil {
		axiom = State{}
	}

	return System{
		rules: rules,
		axiom: axiom,
	}
}

// Rules returns a copy of the system's ruleset, constants included.
func (sys System) Rules() Ruleset {
	out := make(Ruleset, len(sys.rules))
	for s, r := range sys.rules {
		out[s] = r.Clone()
	}
	return out
}

// Axiom returns a copy of generation 0.
func (sys System) Axiom() State {
	return sys.axiom.Clone()
}

// Iter returns a fresh iterator positioned on the axiom.
func (sys System) Iter() *Iterator {
	return &Iterator{
		rules:                 sys.rules,
		state:                 sys.axiom.Clone(),
		buffer:                make(State, 0, len(sys.axiom)),
		subsectionMinimumSize: DefaultSubsectionMinimumSize,
		maxWorkers:            DefaultMaxWorkers,
	}
}

// An Iterator walks the generations of a System. It never runs out.
//
// The State values it hands out share memory with it: a returned State stays
// valid until the second following call to Next. Clone it to keep it longer.
// An Iterator is not safe for concurrent use.
type Iterator struct {
	rules Ruleset

	state  State
	buffer State

	generation uint

	subsectionMinimumSize int
	maxWorkers            int
}

// State returns the current generation.
func (it *Iterator) State() State {
	return it.state
}

// Generation returns the index of the current generation, the axiom being 0.
func (it *Iterator) Generation() uint {
	return it.generation
}

// SetSubsectionMinimumSize sets the smallest section handed to a worker.
func (it *Iterator) SetSubsectionMinimumSize(size int) {
	if size < 1 {
		size = 1
	}
	it.subsectionMinimumSize = size
}

// SetMaxWorkers caps the number of goroutines used for a single rewrite.
func (it *Iterator) SetMaxWorkers(n int) {
	if n < 1 {
		n = 1
	}
	it.maxWorkers = n
}

// Next rewrites the current generation, installs the result and returns it.
func (it *Iterator) Next() State {
	splits, size, rem := it.splits()
	if splits == 1 {
		it.buffer = it.rewrite(it.buffer[:0], it.state)
	} else {
		it.buffer = it.rewriteSections(splits, size, rem)
	}

	it.state, it.buffer = it.buffer, it.state
	it.generation++

	return it.state
}

// AdvanceUntil calls Next until the given generation is reached.
// The context is checked between generations, never during one.
func (it *Iterator) AdvanceUntil(ctx context.Context, generation uint) error {
	for it.generation < generation {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		it.Next()
	}
	return nil
}

// rewrite appends the image of input to output
func (it *Iterator) rewrite(output State, input State) State {
	for _, s := range input {
		if replacement, ok := it.rules[s]; ok {
			output = append(output, replacement...)
		} else {
			output = append(output, s)
		}
	}
	return output
}

func (it *Iterator) outputSize(input State) int {
	var n int
	for _, s := range input {
		if replacement, ok := it.rules[s]; ok {
			n += len(replacement)
		} else {
			n++
		}
	}
	return n
}

// Calculate number of splits for a given maximum of workers and minimum of subsection size
func (it *Iterator) splits() (splits int, size int, rem int) {
	l := len(it.state)

	if v := l / it.subsectionMinimumSize; v == 0 {
		splits = 1
	} else if v < it.maxWorkers {
		splits = v
	} else {
		splits = it.maxWorkers
	}

	return splits, l / splits, l % splits
}

/*
rewriteSections rewrites the current generation in parallel:

	0. Split the input into contiguous sections, one goroutine each
	1 (T). Calculate the output size of the section
	2. Size the common output buffer once
	3 (T). Rewrite each section into its own window of the buffer
*/
func (it *Iterator) rewriteSections(splits int, size int, rem int) State {
	sectionOutputSizes := make([]int, splits)
	outputSliceChan := make([]chan State, splits)
	for i := range outputSliceChan {
		outputSliceChan[i] = make(chan State, 1)
	}

	wg := sync.WaitGroup{}
	wg.Add(splits)
	for i, cursor := 0, 0; i < splits; i++ {
		// The rem first sections take one more symbol
		thisSize := size
		if i < rem {
			thisSize++
		}

		go func(workerNumber int, input State) {
			sectionOutputSizes[workerNumber] = it.outputSize(input)

			// We're done here for this section
			wg.Done()

			// Now we wait for the window we'll write on
			window := <-outputSliceChan[workerNumber]
			it.rewrite(window, input)

			wg.Done()
		}(i, it.state[cursor:cursor+thisSize])

		cursor += thisSize
	}

	// Wait for output size calculation
	wg.Wait()
	wg.Add(splits)

	var outputSize int
	for _, s := range sectionOutputSizes {
		outputSize += s
	}
	output := it.buffer[:0]
	if cap(output) < outputSize {
		output = make(State, 0, outputSize)
	}
	output = output[:outputSize]

	// Distribute the windows, capped so that appends stay in place
	cursor := 0
	for i, s := range sectionOutputSizes {
		outputSliceChan[i] <- output[cursor : cursor : cursor+s]
		cursor += s
	}

	wg.Wait()

	return output
}
