// Package sched provides the cancellable timers that pace demo animations.
//
// [Timer] runs callbacks on the wall clock. [Manual] is a virtual clock that
// only moves when told to, so animations can be replayed instantly and
// deterministically in tests and headless commands.
package sched

import "time"

// Cancel stops a scheduled callback. Calling it more than once, or after the
// callback ran, is harmless.
type Cancel func()

// Scheduler runs fn once after delay d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Cancel
	Now() time.Time
}

// Timer schedules on the real clock. Callbacks run on their own goroutine,
// so callers must guard shared state.
type Timer struct{}

func NewTimer() *Timer {
	return &Timer{}
}

func (Timer) AfterFunc(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func (Timer) Now() time.Time {
	return time.Now()
}
