// Package sequencer replays the rotation of one token's query and key
// vectors pair by pair, one unit of theta at a time.
//
// A [Sequencer] moves Idle → Animating → Done. While animating it highlights
// pair i, applies position single-theta steps to it, pauses, and moves on to
// pair i+1. All pacing goes through a [sched.Scheduler], so a [sched.Manual]
// clock replays the whole animation without waiting.
package sequencer

import (
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/ropelab/internal/rope"
	"github.com/san-kum/ropelab/internal/sched"
)

// Pacing holds the delays between animation steps.
type Pacing struct {
	Identity  time.Duration // position 0: pause before Done
	Highlight time.Duration // pair highlighted before its first step
	Step      time.Duration // after each single-theta step
	Settle    time.Duration // after the last step of a pair
}

func DefaultPacing() Pacing {
	return Pacing{
		Identity:  200 * time.Millisecond,
		Highlight: 400 * time.Millisecond,
		Step:      800 * time.Millisecond,
		Settle:    200 * time.Millisecond,
	}
}

// Duration is the wall time a full replay takes at position p with n pairs.
func (p Pacing) Duration(position, pairs int) time.Duration {
	if position == 0 {
		return p.Identity
	}
	perPair := p.Highlight + time.Duration(position)*p.Step + p.Settle
	return time.Duration(pairs) * perPair
}

// Token is one demo column: a label, its sequence position, and the query
// and key projections to rotate.
type Token struct {
	Label    string
	Position int
	Query    rope.Vector
	Key      rope.Vector
}

type Sequencer struct {
	mu        sync.Mutex
	token     Token
	thetas    rope.ThetaTable
	pacing    Pacing
	sched     sched.Scheduler
	state     State
	gen       uint64
	cancel    sched.Cancel
	observers []Observer
}

func New(tok Token, thetas rope.ThetaTable, s sched.Scheduler, pacing Pacing) (*Sequencer, error) {
	if tok.Position < 0 {
		return nil, fmt.Errorf("%w: token %q at %d", rope.ErrInvalidPosition, tok.Label, tok.Position)
	}
	if len(tok.Query) != len(tok.Key) {
		return nil, fmt.Errorf("%w: query has %d values, key has %d", rope.ErrInvalidDimension, len(tok.Query), len(tok.Key))
	}
	if _, err := rope.RotateBy(tok.Query, make([]int, len(thetas)), thetas); err != nil {
		return nil, err
	}
	return &Sequencer{
		token:  Token{Label: tok.Label, Position: tok.Position, Query: tok.Query.Clone(), Key: tok.Key.Clone()},
		thetas: thetas,
		pacing: pacing,
		sched:  s,
		state:  idleState(len(thetas)),
	}, nil
}

func (s *Sequencer) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Start begins the replay. It does nothing unless the sequencer is Idle.
func (s *Sequencer) Start() {
	s.mu.Lock()
	if s.state.Phase != Idle {
		s.mu.Unlock()
		return
	}
	s.state.Phase = Animating
	if s.token.Position == 0 {
		s.afterLocked(s.pacing.Identity, s.finishLocked)
	} else {
		s.beginPairLocked(0)
	}
	s.unlockAndNotify()
}

// Reset cancels any pending step and returns to Idle with zero multipliers.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.unlockAndNotify()
}

// Rebase swaps in a table computed for a new base and resets. The table
// must keep the same number of pairs.
func (s *Sequencer) Rebase(thetas rope.ThetaTable) error {
	s.mu.Lock()
	if len(thetas) != len(s.thetas) {
		s.mu.Unlock()
		return fmt.Errorf("%w: rebase with %d pairs, sequencer has %d", rope.ErrInvalidDimension, len(thetas), len(s.thetas))
	}
	s.thetas = thetas
	s.resetLocked()
	s.unlockAndNotify()
	return nil
}

func (s *Sequencer) resetLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = idleState(len(s.thetas))
}

func (s *Sequencer) beginPairLocked(i int) {
	s.state.ActivePair = i
	s.afterLocked(s.pacing.Highlight, func() { s.stepLocked(i, 0) })
}

func (s *Sequencer) stepLocked(i, step int) {
	if step == s.token.Position {
		s.afterLocked(s.pacing.Settle, func() {
			if i+1 < len(s.thetas) {
				s.beginPairLocked(i + 1)
				return
			}
			s.finishLocked()
		})
		return
	}
	s.state.Multipliers[i]++
	s.afterLocked(s.pacing.Step, func() { s.stepLocked(i, step+1) })
}

func (s *Sequencer) finishLocked() {
	s.state.ActivePair = NoPair
	s.state.Phase = Done
	s.cancel = nil
}

// afterLocked schedules fn to run under the lock unless a reset happened in
// between.
func (s *Sequencer) afterLocked(d time.Duration, fn func()) {
	gen := s.gen
	s.cancel = s.sched.AfterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		fn()
		s.unlockAndNotify()
	})
}

func (s *Sequencer) unlockAndNotify() {
	st := s.state.clone()
	obs := append([]Observer(nil), s.observers...)
	label := s.token.Label
	s.mu.Unlock()
	for _, o := range obs {
		o.OnTransition(label, st)
	}
}

func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Sequencer) Token() Token { return s.token }

func (s *Sequencer) Thetas() rope.ThetaTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thetas
}

// Current returns query and key rotated by the accumulated multipliers, so
// mid-animation readouts show the true intermediate rotation.
func (s *Sequencer) Current() (q, k rope.Vector) {
	s.mu.Lock()
	mult := append([]int(nil), s.state.Multipliers...)
	thetas := s.thetas
	s.mu.Unlock()

	q, _ = rope.RotateBy(s.token.Query, mult, thetas)
	k, _ = rope.RotateBy(s.token.Key, mult, thetas)
	return q, k
}

// Angles returns multipliers[i]*theta_i for every pair.
func (s *Sequencer) Angles() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.thetas))
	for i, theta := range s.thetas {
		out[i] = float64(s.state.Multipliers[i]) * theta
	}
	return out
}

// Status is the one-line caption shown under a token column.
func (s *Sequencer) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := s.token.Position
	switch s.state.Phase {
	case Idle:
		if pos == 0 {
			return "Identity: No rotation needed."
		}
		return "Waiting to apply rotation..."
	case Animating:
		if i, ok := s.state.Active(); ok {
			return fmt.Sprintf("Rotating Pair %d (Frequency: %.2f)...", i, s.thetas[i])
		}
		return "Rotating..."
	default:
		if pos == 0 {
			return "Unchanged (Pos 0)"
		}
		return "Rotation Complete"
	}
}
