// Package scrubber drives a continuous sequence position for the frequency
// dials: play advances it at a fixed rate, seek jumps, pause holds.
package scrubber

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/san-kum/ropelab/internal/rope"
	"github.com/san-kum/ropelab/internal/sched"
)

type Config struct {
	Max  int           // upper bound of the position
	Rate float64       // positions per second while playing
	Tick time.Duration // how often the position is refreshed
}

func DefaultConfig() Config {
	return Config{Max: 2048, Rate: 100, Tick: 16 * time.Millisecond}
}

func (c Config) Validate() error {
	if c.Max <= 0 {
		return fmt.Errorf("%w: scrub max %d must be positive", rope.ErrInvalidPosition, c.Max)
	}
	if c.Rate <= 0 || math.IsNaN(c.Rate) || math.IsInf(c.Rate, 0) {
		return fmt.Errorf("scrub rate %g must be positive", c.Rate)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("scrub tick %v must be positive", c.Tick)
	}
	return nil
}

type Scrubber struct {
	mu       sync.Mutex
	cfg      Config
	thetas   rope.ThetaTable
	sched    sched.Scheduler
	position int
	playing  bool

	// play advances from anchorPos as time passes since anchorAt
	anchorPos int
	anchorAt  time.Time

	gen    uint64
	cancel sched.Cancel
}

func New(cfg Config, thetas rope.ThetaTable, s sched.Scheduler) (*Scrubber, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scrubber{cfg: cfg, thetas: thetas, sched: s}, nil
}

// Play starts advancing the position. Calling it while playing does nothing.
func (s *Scrubber) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return
	}
	s.playing = true
	s.anchorLocked()
	s.scheduleLocked()
}

// Pause stops advancing and keeps the current position.
func (s *Scrubber) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// TogglePlay pauses when playing. Otherwise it plays, rewinding to 0 first
// when the position already sits at the bound.
func (s *Scrubber) TogglePlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		s.stopLocked()
		return
	}
	if s.position >= s.cfg.Max {
		s.position = 0
	}
	s.playing = true
	s.anchorLocked()
	s.scheduleLocked()
}

// Seek jumps to v clamped to [0, Max]. While playing, advancement continues
// from v.
func (s *Scrubber) Seek(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = min(max(v, 0), s.cfg.Max)
	if s.playing {
		s.anchorLocked()
	}
}

// Reset stops playing and rewinds to position 0.
func (s *Scrubber) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.position = 0
}

// Rebase swaps the frequency table and resets.
func (s *Scrubber) Rebase(thetas rope.ThetaTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thetas = thetas
	s.stopLocked()
	s.position = 0
}

func (s *Scrubber) anchorLocked() {
	s.anchorPos = s.position
	s.anchorAt = s.sched.Now()
}

func (s *Scrubber) stopLocked() {
	s.playing = false
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Scrubber) scheduleLocked() {
	gen := s.gen
	s.cancel = s.sched.AfterFunc(s.cfg.Tick, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen || !s.playing {
			return
		}
		s.tickLocked()
	})
}

func (s *Scrubber) tickLocked() {
	elapsed := s.sched.Now().Sub(s.anchorAt)
	next := float64(s.anchorPos) + float64(elapsed)*s.cfg.Rate/float64(time.Second)
	if next >= float64(s.cfg.Max) {
		s.position = s.cfg.Max
		s.stopLocked()
		return
	}
	s.position = int(math.Floor(next))
	s.scheduleLocked()
}

func (s *Scrubber) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *Scrubber) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Scrubber) Max() int { return s.cfg.Max }

func (s *Scrubber) Thetas() rope.ThetaTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thetas
}

// Angles returns position*theta_i, unreduced.
func (s *Scrubber) Angles() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thetas.Angles(float64(s.position))
}

// DisplayAngles reduces Angles into [0, 2π) for drawing only.
func (s *Scrubber) DisplayAngles() []float64 {
	out := s.Angles()
	for i, a := range out {
		r := math.Mod(a, 2*math.Pi)
		if r < 0 {
			r += 2 * math.Pi
		}
		out[i] = r
	}
	return out
}

// Revolutions returns how many full turns each pair has made.
func (s *Scrubber) Revolutions() []float64 {
	out := s.Angles()
	for i := range out {
		out[i] /= 2 * math.Pi
	}
	return out
}
