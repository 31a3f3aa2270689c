package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/ropelab/internal/bus"
	"github.com/san-kum/ropelab/internal/rope"
	"github.com/san-kum/ropelab/internal/scrubber"
	"github.com/san-kum/ropelab/internal/sequencer"
)

const (
	DefaultDim      = 8
	DefaultBase     = 10000.0
	DefaultBaseMin  = 10000.0
	DefaultBaseMax  = 500000.0
	DefaultBaseStep = 10000.0
	DefaultScrubMax = 2048
	DefaultPlayRate = 100.0
)

type Config struct {
	Dim     int           `yaml:"dim"`
	Base    BaseConfig    `yaml:"base"`
	Pacing  PacingConfig  `yaml:"pacing"`
	Scrub   ScrubConfig   `yaml:"scrub"`
	Tokens  []TokenConfig `yaml:"tokens"`
	Outcome OutcomeConfig `yaml:"outcome"`
}

type BaseConfig struct {
	Initial float64 `yaml:"initial"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Step    float64 `yaml:"step"`
}

type PacingConfig struct {
	Identity  time.Duration `yaml:"identity"`
	Highlight time.Duration `yaml:"highlight"`
	Step      time.Duration `yaml:"step"`
	Settle    time.Duration `yaml:"settle"`
}

type ScrubConfig struct {
	Max  int           `yaml:"max"`
	Rate float64       `yaml:"rate"`
	Tick time.Duration `yaml:"tick"`
}

type TokenConfig struct {
	Label    string    `yaml:"label"`
	Position int       `yaml:"position"`
	Query    []float64 `yaml:"query"`
	Key      []float64 `yaml:"key"`
}

// OutcomeConfig describes the figure that scores one query/key pair at two
// positions. With FollowBus unset it stays on DefaultBase.
type OutcomeConfig struct {
	FollowBus bool      `yaml:"follow_bus"`
	Label     string    `yaml:"label"`
	Query     []float64 `yaml:"query"`
	Key       []float64 `yaml:"key"`
	Positions [2]int    `yaml:"positions"`
}

var (
	twinkleQ = []float64{0.10, 0.43, -0.22, 0.91, -0.05, 0.33, 0.88, -0.12}
	twinkleK = []float64{-0.55, 0.12, 0.44, -0.98, 0.23, -0.76, 0.11, 0.45}
	littleQ  = []float64{-0.33, 0.88, 0.12, -0.56, 0.77, -0.22, 0.45, 0.10}
	littleK  = []float64{0.66, -0.11, -0.87, 0.34, -0.55, 0.91, -0.33, -0.21}
)

func DefaultConfig() *Config {
	p := sequencer.DefaultPacing()
	s := scrubber.DefaultConfig()
	return &Config{
		Dim: DefaultDim,
		Base: BaseConfig{
			Initial: DefaultBase,
			Min:     DefaultBaseMin,
			Max:     DefaultBaseMax,
			Step:    DefaultBaseStep,
		},
		Pacing: PacingConfig{
			Identity:  p.Identity,
			Highlight: p.Highlight,
			Step:      p.Step,
			Settle:    p.Settle,
		},
		Scrub: ScrubConfig{Max: s.Max, Rate: s.Rate, Tick: s.Tick},
		Tokens: []TokenConfig{
			{Label: "Twinkle", Position: 1, Query: clone(twinkleQ), Key: clone(twinkleK)},
			{Label: "Little", Position: 2, Query: clone(littleQ), Key: clone(littleK)},
		},
		Outcome: OutcomeConfig{
			FollowBus: true,
			Label:     "Twinkle",
			Query:     clone(twinkleQ),
			Key:       clone(twinkleK),
			Positions: [2]int{0, 1},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadInto overlays the file at path onto cfg.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// envOverrides holds the variables ApplyEnv reads. Nil means unset, so an
// explicit zero still reaches Validate.
type envOverrides struct {
	Base      *float64       `env:"ROPELAB_BASE"`
	PlayRate  *float64       `env:"ROPELAB_PLAY_RATE"`
	ScrubMax  *int           `env:"ROPELAB_SCRUB_MAX"`
	StepDelay *time.Duration `env:"ROPELAB_STEP_DELAY"`
}

// ApplyEnv overlays ROPELAB_* variables from the process environment.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, nil)
}

func applyEnv(cfg *Config, environ map[string]string) error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.Base != nil {
		cfg.Base.Initial = *o.Base
	}
	if o.PlayRate != nil {
		cfg.Scrub.Rate = *o.PlayRate
	}
	if o.ScrubMax != nil {
		cfg.Scrub.Max = *o.ScrubMax
	}
	if o.StepDelay != nil {
		cfg.Pacing.Step = *o.StepDelay
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Dim <= 0 || c.Dim%2 != 0 {
		return fmt.Errorf("%w: dim %d", rope.ErrInvalidDimension, c.Dim)
	}
	r := c.Range()
	if !(r.Min > 0) || r.Max < r.Min || r.Step <= 0 {
		return fmt.Errorf("%w: range [%g, %g] step %g", rope.ErrInvalidBase, r.Min, r.Max, r.Step)
	}
	if !r.Contains(c.Base.Initial) {
		return fmt.Errorf("%w: initial %g outside [%g, %g]", rope.ErrInvalidBase, c.Base.Initial, r.Min, r.Max)
	}
	p := c.Pacing
	if p.Identity < 0 || p.Highlight < 0 || p.Step < 0 || p.Settle < 0 {
		return fmt.Errorf("pacing delays must not be negative")
	}
	if err := c.ScrubberConfig().Validate(); err != nil {
		return err
	}
	for _, t := range c.Tokens {
		if err := c.checkVectors(t.Label, t.Query, t.Key); err != nil {
			return err
		}
		if t.Position < 0 {
			return fmt.Errorf("%w: token %q at %d", rope.ErrInvalidPosition, t.Label, t.Position)
		}
	}
	o := c.Outcome
	if err := c.checkVectors(o.Label, o.Query, o.Key); err != nil {
		return err
	}
	if o.Positions[0] < 0 || o.Positions[1] < 0 {
		return fmt.Errorf("%w: outcome positions %v", rope.ErrInvalidPosition, o.Positions)
	}
	return nil
}

func (c *Config) checkVectors(label string, q, k []float64) error {
	if len(q) != c.Dim || len(k) != c.Dim {
		return fmt.Errorf("%w: %q has query %d and key %d values, want %d",
			rope.ErrInvalidDimension, label, len(q), len(k), c.Dim)
	}
	if !rope.Vector(q).IsValid() || !rope.Vector(k).IsValid() {
		return fmt.Errorf("%w: %q has a non-finite value", rope.ErrInvalidVector, label)
	}
	return nil
}

func (c *Config) Range() bus.Range {
	return bus.Range{Min: c.Base.Min, Max: c.Base.Max, Step: c.Base.Step}
}

func (c *Config) SequencerPacing() sequencer.Pacing {
	return sequencer.Pacing{
		Identity:  c.Pacing.Identity,
		Highlight: c.Pacing.Highlight,
		Step:      c.Pacing.Step,
		Settle:    c.Pacing.Settle,
	}
}

func (c *Config) ScrubberConfig() scrubber.Config {
	return scrubber.Config{Max: c.Scrub.Max, Rate: c.Scrub.Rate, Tick: c.Scrub.Tick}
}

func (c *Config) SequencerTokens() []sequencer.Token {
	out := make([]sequencer.Token, len(c.Tokens))
	for i, t := range c.Tokens {
		out[i] = sequencer.Token{
			Label:    t.Label,
			Position: t.Position,
			Query:    rope.Vector(clone(t.Query)),
			Key:      rope.Vector(clone(t.Key)),
		}
	}
	return out
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Tokens = make([]TokenConfig, len(c.Tokens))
	for i, t := range c.Tokens {
		t.Query = clone(t.Query)
		t.Key = clone(t.Key)
		out.Tokens[i] = t
	}
	out.Outcome.Query = clone(c.Outcome.Query)
	out.Outcome.Key = clone(c.Outcome.Key)
	return &out
}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}
