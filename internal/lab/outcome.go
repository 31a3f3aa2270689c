package lab

import (
	"fmt"
	"sync"

	"github.com/san-kum/ropelab/internal/config"
	"github.com/san-kum/ropelab/internal/rope"
)

// Outcome shows one query/key pair rotated at two positions, so the same
// token gets different numbers at different places in a sequence.
type Outcome struct {
	mu        sync.Mutex
	label     string
	query     rope.Vector
	key       rope.Vector
	positions [2]int
	base      float64
	thetas    rope.ThetaTable
}

// OutcomeView is a consistent read of the figure.
type OutcomeView struct {
	Label     string
	Base      float64
	Positions [2]int
	Query     [2]rope.Vector
	Key       [2]rope.Vector
	// Score[j] is q·k with both rotated to Positions[j]. The offset is zero,
	// so both entries equal the unrotated q·k.
	Score [2]float64
	// Cross is q at Positions[1] against k at Positions[0].
	Cross float64
}

func newOutcome(c config.OutcomeConfig, base float64, dim int) (*Outcome, error) {
	if !c.FollowBus {
		base = config.DefaultBase
	}
	thetas, err := rope.ComputeThetas(base, dim)
	if err != nil {
		return nil, err
	}
	q, err := rope.NewVector(c.Query...)
	if err != nil {
		return nil, fmt.Errorf("outcome query: %w", err)
	}
	k, err := rope.NewVector(c.Key...)
	if err != nil {
		return nil, fmt.Errorf("outcome key: %w", err)
	}
	return &Outcome{
		label:     c.Label,
		query:     q,
		key:       k,
		positions: c.Positions,
		base:      base,
		thetas:    thetas,
	}, nil
}

func (o *Outcome) rebase(base float64, thetas rope.ThetaTable) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.base = base
	o.thetas = thetas
}

func (o *Outcome) Base() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.base
}

func (o *Outcome) View() OutcomeView {
	o.mu.Lock()
	base, thetas := o.base, o.thetas
	o.mu.Unlock()

	v := OutcomeView{Label: o.label, Base: base, Positions: o.positions}
	for j, p := range o.positions {
		// positions and dims were validated on construction
		v.Query[j], _ = rope.RotateAt(o.query, p, thetas)
		v.Key[j], _ = rope.RotateAt(o.key, p, thetas)
		v.Score[j] = v.Query[j].Dot(v.Key[j])
	}
	v.Cross = v.Query[1].Dot(v.Key[0])
	return v
}
