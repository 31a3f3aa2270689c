package sched

import (
	"sort"
	"sync"
	"time"
)

type task struct {
	due      time.Time
	seq      uint64
	fn       func()
	canceled bool
}

// Manual is a deterministic virtual clock.
//
// Tasks fire in order of due time, ties broken by scheduling order. Callbacks
// run without the internal lock held, so they may schedule further tasks.
//
// Thread-safety: all methods are safe for concurrent use, but Advance and
// RunUntilIdle are meant to be driven from a single goroutine.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks []*task
}

// NewManual creates a clock starting at start. A zero start uses the Unix epoch.
func NewManual(start time.Time) *Manual {
	if start.IsZero() {
		start = time.Unix(0, 0).UTC()
	}
	return &Manual{now: start}
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Cancel {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &task{due: m.now.Add(d), seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return func() {
		m.mu.Lock()
		t.canceled = true
		m.mu.Unlock()
	}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of scheduled, uncanceled tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every task that falls due on
// the way, including tasks scheduled by those callbacks. It returns the
// number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	fired := 0
	for {
		t := m.popDue(target, false)
		if t == nil {
			break
		}
		t.fn()
		fired++
	}

	m.mu.Lock()
	if target.After(m.now) {
		m.now = target
	}
	m.mu.Unlock()
	return fired
}

// RunUntilIdle jumps from task to task until nothing is scheduled or limit
// callbacks have run. A limit <= 0 means no limit.
func (m *Manual) RunUntilIdle(limit int) int {
	fired := 0
	for limit <= 0 || fired < limit {
		t := m.popDue(time.Time{}, true)
		if t == nil {
			break
		}
		t.fn()
		fired++
	}
	return fired
}

// popDue removes and returns the earliest live task due at or before target
// (or any live task when drain is set), moving the clock to its due time.
func (m *Manual) popDue(target time.Time, drain bool) *task {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.canceled {
			live = append(live, t)
		}
	}
	m.tasks = live
	if len(m.tasks) == 0 {
		return nil
	}

	sort.Slice(m.tasks, func(i, j int) bool {
		if m.tasks[i].due.Equal(m.tasks[j].due) {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].due.Before(m.tasks[j].due)
	})

	next := m.tasks[0]
	if !drain && next.due.After(target) {
		return nil
	}
	m.tasks = m.tasks[1:]
	if next.due.After(m.now) {
		m.now = next.due
	}
	return next
}
