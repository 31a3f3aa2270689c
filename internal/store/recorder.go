package store

import (
	"sync"
	"time"

	"github.com/san-kum/ropelab/internal/sequencer"
)

// Recorder collects sequencer transitions as trace events. Attach it with
// Sequencer.AddObserver.
type Recorder struct {
	mu     sync.Mutex
	now    func() time.Time
	start  time.Time
	events []TraceEvent
}

// NewRecorder timestamps events with now, normally a scheduler's Now.
func NewRecorder(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

func (r *Recorder) OnTransition(label string, st sequencer.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.now()
	if len(r.events) == 0 {
		r.start = t
	}
	r.events = append(r.events, TraceEvent{
		At:          t.Sub(r.start),
		Label:       label,
		Phase:       st.Phase.String(),
		ActivePair:  st.ActivePair,
		Multipliers: append([]int(nil), st.Multipliers...),
	})
}

func (r *Recorder) Events() []TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TraceEvent(nil), r.events...)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
