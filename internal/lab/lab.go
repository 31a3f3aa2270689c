// Package lab assembles the demos around one shared base frequency.
//
// A [Lab] owns the bus, derives the theta table once per bus version and
// hands that read-only table to every widget it rebases.
package lab

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/san-kum/ropelab/internal/bus"
	"github.com/san-kum/ropelab/internal/config"
	"github.com/san-kum/ropelab/internal/rope"
	"github.com/san-kum/ropelab/internal/sched"
	"github.com/san-kum/ropelab/internal/scrubber"
	"github.com/san-kum/ropelab/internal/sequencer"
)

type Lab struct {
	cfg    *config.Config
	bus    *bus.Bus
	logger *slog.Logger

	mu      sync.Mutex
	thetas  rope.ThetaTable
	version int

	seqs    []*sequencer.Sequencer
	scrub   *scrubber.Scrubber
	outcome *Outcome
	unsubs  []func()
}

// New validates cfg and builds every demo on s. A nil logger discards.
func New(cfg *config.Config, s sched.Scheduler, logger *slog.Logger) (*Lab, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	b, err := bus.New(cfg.Base.Initial, cfg.Range())
	if err != nil {
		return nil, err
	}
	thetas, err := rope.ComputeThetas(cfg.Base.Initial, cfg.Dim)
	if err != nil {
		return nil, err
	}

	l := &Lab{cfg: cfg.Clone(), bus: b, logger: logger, thetas: thetas}

	for _, tok := range cfg.SequencerTokens() {
		seq, err := sequencer.New(tok, thetas, s, cfg.SequencerPacing())
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", tok.Label, err)
		}
		l.seqs = append(l.seqs, seq)
	}

	l.scrub, err = scrubber.New(cfg.ScrubberConfig(), thetas, s)
	if err != nil {
		return nil, err
	}

	l.outcome, err = newOutcome(cfg.Outcome, cfg.Base.Initial, cfg.Dim)
	if err != nil {
		return nil, err
	}

	for _, seq := range l.seqs {
		l.unsubs = append(l.unsubs, b.Subscribe(func(st bus.State) {
			if err := seq.Rebase(l.thetasFor(st)); err != nil {
				l.logger.Error("rebase failed", "token", seq.Token().Label, "err", err)
			}
		}))
	}
	l.unsubs = append(l.unsubs, b.Subscribe(func(st bus.State) {
		l.scrub.Rebase(l.thetasFor(st))
	}))
	if cfg.Outcome.FollowBus {
		l.unsubs = append(l.unsubs, b.Subscribe(func(st bus.State) {
			l.outcome.rebase(st.Base, l.thetasFor(st))
		}))
	}

	logger.Debug("lab ready",
		"dim", cfg.Dim,
		"base", cfg.Base.Initial,
		"tokens", len(l.seqs),
		"outcome_follows_bus", cfg.Outcome.FollowBus)
	return l, nil
}

// thetasFor returns the table for st, computing it at most once per version.
func (l *Lab) thetasFor(st bus.State) rope.ThetaTable {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st.Version == l.version && l.thetas != nil {
		return l.thetas
	}
	t, err := rope.ComputeThetas(st.Base, l.cfg.Dim)
	if err != nil {
		// keep the previous table
		l.logger.Error("compute thetas", "base", st.Base, "err", err)
		return l.thetas
	}
	l.thetas = t
	l.version = st.Version
	return t
}

// SetBase publishes a new base. Every widget is reset before it returns.
func (l *Lab) SetBase(v float64) error {
	if err := l.bus.SetBase(v); err != nil {
		l.logger.Debug("base rejected", "base", v, "err", err)
		return err
	}
	st := l.bus.State()
	l.logger.Debug("base changed", "base", st.Base, "version", st.Version)
	return nil
}

// Nudge moves the base by steps slider increments.
func (l *Lab) Nudge(steps int) error {
	return l.SetBase(l.bus.Base() + float64(steps)*l.bus.Range().Step)
}

// StartAll starts every idle sequencer.
func (l *Lab) StartAll() {
	for _, seq := range l.seqs {
		l.logger.Debug("sequencer start", "token", seq.Token().Label, "position", seq.Token().Position)
		seq.Start()
	}
}

func (l *Lab) ResetAll() {
	for _, seq := range l.seqs {
		seq.Reset()
	}
	l.scrub.Reset()
}

// Close detaches every widget from the bus and stops pending work.
func (l *Lab) Close() {
	for _, u := range l.unsubs {
		u()
	}
	l.unsubs = nil
	l.ResetAll()
}

func (l *Lab) Config() *config.Config { return l.cfg }
func (l *Lab) Bus() *bus.Bus           { return l.bus }

func (l *Lab) Thetas() rope.ThetaTable {
	return l.thetasFor(l.bus.State())
}

func (l *Lab) Sequencers() []*sequencer.Sequencer {
	return append([]*sequencer.Sequencer(nil), l.seqs...)
}

// Sequencer finds the sequencer for label.
func (l *Lab) Sequencer(label string) (*sequencer.Sequencer, bool) {
	for _, seq := range l.seqs {
		if seq.Token().Label == label {
			return seq, true
		}
	}
	return nil, false
}

func (l *Lab) Scrubber() *scrubber.Scrubber { return l.scrub }
func (l *Lab) Outcome() *Outcome           { return l.outcome }
