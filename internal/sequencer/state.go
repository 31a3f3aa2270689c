package sequencer

import "fmt"

type Phase int

const (
	Idle Phase = iota
	Animating
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Animating:
		return "animating"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func ParsePhase(s string) (Phase, error) {
	switch s {
	case "idle":
		return Idle, nil
	case "animating":
		return Animating, nil
	case "done":
		return Done, nil
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// NoPair marks that no pair is highlighted.
const NoPair = -1

// State is a snapshot of a sequencer. Multipliers[i] counts the unit-theta
// steps already applied to pair i.
type State struct {
	Phase       Phase
	ActivePair  int
	Multipliers []int
}

func idleState(pairs int) State {
	return State{Phase: Idle, ActivePair: NoPair, Multipliers: make([]int, pairs)}
}

func (s State) clone() State {
	c := s
	c.Multipliers = append([]int(nil), s.Multipliers...)
	return c
}

// Active returns the highlighted pair, if any.
func (s State) Active() (int, bool) {
	return s.ActivePair, s.ActivePair != NoPair
}

// Observer is notified after every state transition.
type Observer interface {
	OnTransition(label string, st State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(label string, st State)

func (f ObserverFunc) OnTransition(label string, st State) { f(label, st) }
