// Package bus holds the single base-frequency parameter shared by every demo.
//
// A [Bus] validates changes, bumps a version on each accepted change and
// notifies subscribers synchronously, so no widget can keep showing angles
// computed under a stale base once [Bus.SetBase] returns.
//
// Subscribers must not call SetBase from inside their callback.
package bus

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/san-kum/ropelab/internal/rope"
)

// Range bounds the base; Step is the increment used by Nudge.
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

func DefaultRange() Range {
	return Range{Min: 10000, Max: 500000, Step: 10000}
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

type State struct {
	Base    float64
	Version int
}

type Bus struct {
	mu     sync.RWMutex
	fanout sync.Mutex
	rng    Range
	state  State
	subs   map[int]func(State)
	nextID int
}

// New creates a bus at initial, which must lie inside rng.
func New(initial float64, rng Range) (*Bus, error) {
	if rng.Min <= 0 || rng.Max < rng.Min || math.IsInf(rng.Max, 0) || math.IsNaN(rng.Min) {
		return nil, fmt.Errorf("%w: range [%g, %g]", rope.ErrInvalidBase, rng.Min, rng.Max)
	}
	b := &Bus{rng: rng, subs: make(map[int]func(State))}
	if err := b.validate(initial); err != nil {
		return nil, err
	}
	b.state = State{Base: initial}
	return b, nil
}

func (b *Bus) validate(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %g must be positive and finite", rope.ErrInvalidBase, v)
	}
	if !b.rng.Contains(v) {
		return fmt.Errorf("%w: %g outside [%g, %g]", rope.ErrInvalidBase, v, b.rng.Min, b.rng.Max)
	}
	return nil
}

// SetBase stores v, increments the version and runs every subscriber before
// returning. Out-of-range values are rejected, never clamped.
func (b *Bus) SetBase(v float64) error {
	if err := b.validate(v); err != nil {
		return err
	}

	b.fanout.Lock()
	defer b.fanout.Unlock()

	b.mu.Lock()
	b.state = State{Base: v, Version: b.state.Version + 1}
	st := b.state
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(State), len(ids))
	for i, id := range ids {
		fns[i] = b.subs[id]
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
	return nil
}

// Nudge moves the base by steps increments of Range.Step.
func (b *Bus) Nudge(steps int) error {
	return b.SetBase(b.Base() + float64(steps)*b.rng.Step)
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(State)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bus) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Bus) Base() float64 { return b.State().Base }

func (b *Bus) Range() Range { return b.rng }

func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
