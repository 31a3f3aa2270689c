package sequencer_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ropelab/internal/rope"
	"github.com/san-kum/ropelab/internal/sched"
	"github.com/san-kum/ropelab/internal/sequencer"
)

var (
	littleQ = rope.Vector{-0.33, 0.88, 0.12, -0.56, 0.77, -0.22, 0.45, 0.10}
	littleK = rope.Vector{0.66, -0.11, -0.87, 0.34, -0.55, 0.91, -0.33, -0.21}
)

type recorder struct {
	states []sequencer.State
}

func (r *recorder) OnTransition(_ string, st sequencer.State) {
	r.states = append(r.states, st)
}

var _ = Describe("Sequencer", func() {
	var (
		clock  *sched.Manual
		thetas rope.ThetaTable
		pacing sequencer.Pacing
	)

	newSeq := func(position int) *sequencer.Sequencer {
		s, err := sequencer.New(sequencer.Token{
			Label:    "Little",
			Position: position,
			Query:    littleQ,
			Key:      littleK,
		}, thetas, clock, pacing)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	BeforeEach(func() {
		clock = sched.NewManual(time.Time{})
		pacing = sequencer.DefaultPacing()
		var err error
		thetas, err = rope.ComputeThetas(10000, 8)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts idle with zero multipliers", func() {
		s := newSeq(2)
		Expect(s.State()).To(Equal(sequencer.State{
			Phase:       sequencer.Idle,
			ActivePair:  sequencer.NoPair,
			Multipliers: []int{0, 0, 0, 0},
		}))
		Expect(s.Status()).To(Equal("Waiting to apply rotation..."))
	})

	It("applies position steps to every pair and finishes", func() {
		s := newSeq(2)
		s.Start()
		clock.RunUntilIdle(0)

		st := s.State()
		Expect(st.Phase).To(Equal(sequencer.Done))
		Expect(st.ActivePair).To(Equal(sequencer.NoPair))
		Expect(st.Multipliers).To(Equal([]int{2, 2, 2, 2}))
		Expect(s.Status()).To(Equal("Rotation Complete"))
	})

	It("takes exactly the paced duration", func() {
		s := newSeq(2)
		s.Start()
		total := pacing.Duration(2, 4)

		clock.Advance(total - time.Millisecond)
		Expect(s.State().Phase).To(Equal(sequencer.Animating))
		clock.Advance(time.Millisecond)
		Expect(s.State().Phase).To(Equal(sequencer.Done))
	})

	It("highlights a pair before rotating it and shows intermediate steps", func() {
		s := newSeq(2)
		s.Start()

		st := s.State()
		Expect(st.ActivePair).To(Equal(0))
		Expect(st.Multipliers).To(Equal([]int{0, 0, 0, 0}))
		Expect(s.Status()).To(Equal("Rotating Pair 0 (Frequency: 1.00)..."))

		clock.Advance(pacing.Highlight)
		Expect(s.State().Multipliers).To(Equal([]int{1, 0, 0, 0}))

		q, _ := s.Current()
		x, y := rope.RotatePair(littleQ[0], littleQ[1], thetas[0])
		Expect(q[0]).To(BeNumerically("~", x, 1e-12))
		Expect(q[1]).To(BeNumerically("~", y, 1e-12))
		Expect(q[2:]).To(Equal(littleQ[2:]))

		clock.Advance(pacing.Step)
		Expect(s.State().Multipliers).To(Equal([]int{2, 0, 0, 0}))
		Expect(s.Angles()[0]).To(BeNumerically("~", 2.0, 1e-12))

		clock.Advance(pacing.Step + pacing.Settle)
		Expect(s.State().ActivePair).To(Equal(1))
	})

	It("never starts pair i+1 before pair i has all its steps", func() {
		rec := &recorder{}
		s := newSeq(3)
		s.AddObserver(rec)
		s.Start()
		clock.RunUntilIdle(0)

		for _, st := range rec.states {
			if i, ok := st.Active(); ok {
				for j := 0; j < i; j++ {
					Expect(st.Multipliers[j]).To(Equal(3))
				}
				for j := i + 1; j < len(st.Multipliers); j++ {
					Expect(st.Multipliers[j]).To(BeZero())
				}
			}
		}
		Expect(rec.states[len(rec.states)-1].Phase).To(Equal(sequencer.Done))
	})

	It("emits one transition per step", func() {
		rec := &recorder{}
		s := newSeq(2)
		s.AddObserver(rec)
		s.Start()
		clock.RunUntilIdle(0)

		// start, then per pair: highlight, one per step, settle
		Expect(rec.states).To(HaveLen(1 + 4*(2+2)))
	})

	Context("at position 0", func() {
		It("goes straight to Done after the identity delay", func() {
			s := newSeq(0)
			Expect(s.Status()).To(Equal("Identity: No rotation needed."))
			s.Start()
			Expect(s.State().Phase).To(Equal(sequencer.Animating))

			clock.Advance(pacing.Identity)
			st := s.State()
			Expect(st.Phase).To(Equal(sequencer.Done))
			Expect(st.Multipliers).To(Equal([]int{0, 0, 0, 0}))
			Expect(s.Status()).To(Equal("Unchanged (Pos 0)"))

			q, k := s.Current()
			Expect(q).To(Equal(littleQ))
			Expect(k).To(Equal(littleK))
		})
	})

	It("ignores Start while animating or done", func() {
		s := newSeq(1)
		s.Start()
		clock.Advance(pacing.Highlight)
		s.Start()
		Expect(s.State().Multipliers).To(Equal([]int{1, 0, 0, 0}))

		clock.RunUntilIdle(0)
		s.Start()
		Expect(clock.Pending()).To(BeZero())
		Expect(s.State().Phase).To(Equal(sequencer.Done))
	})

	It("cancels pending steps on reset", func() {
		s := newSeq(2)
		s.Start()
		clock.Advance(pacing.Highlight + pacing.Step)
		Expect(s.State().Multipliers).To(Equal([]int{2, 0, 0, 0}))

		s.Reset()
		Expect(clock.Pending()).To(BeZero())
		clock.Advance(time.Minute)
		Expect(s.State()).To(Equal(sequencer.State{
			Phase:       sequencer.Idle,
			ActivePair:  sequencer.NoPair,
			Multipliers: []int{0, 0, 0, 0},
		}))
	})

	It("can run again after a reset", func() {
		s := newSeq(1)
		s.Start()
		clock.RunUntilIdle(0)
		s.Reset()
		s.Start()
		clock.RunUntilIdle(0)
		Expect(s.State().Multipliers).To(Equal([]int{1, 1, 1, 1}))
	})

	Describe("Rebase", func() {
		It("resets a finished sequencer and uses the new table", func() {
			s := newSeq(2)
			s.Start()
			clock.RunUntilIdle(0)

			next, _ := rope.ComputeThetas(500000, 8)
			Expect(s.Rebase(next)).To(Succeed())
			Expect(s.State().Phase).To(Equal(sequencer.Idle))
			Expect(s.State().Multipliers).To(Equal([]int{0, 0, 0, 0}))

			s.Start()
			clock.RunUntilIdle(0)
			want, _ := rope.RotateVector(littleQ, 2, 500000)
			q, _ := s.Current()
			for i := range want {
				Expect(q[i]).To(BeNumerically("~", want[i], 1e-12))
			}
		})

		It("rejects a table of the wrong size", func() {
			s := newSeq(2)
			Expect(s.Rebase(rope.ThetaTable{1, 0.1})).To(MatchError(rope.ErrInvalidDimension))
		})
	})

	Describe("New", func() {
		It("rejects a negative position", func() {
			_, err := sequencer.New(sequencer.Token{Position: -1, Query: littleQ, Key: littleK}, thetas, clock, pacing)
			Expect(err).To(MatchError(rope.ErrInvalidPosition))
		})

		It("rejects mismatched vectors", func() {
			_, err := sequencer.New(sequencer.Token{Query: littleQ, Key: littleK[:6]}, thetas, clock, pacing)
			Expect(err).To(MatchError(rope.ErrInvalidDimension))
		})
	})

	It("runs independent instances without interference", func() {
		a := newSeq(1)
		b := newSeq(2)
		a.Start()
		clock.Advance(pacing.Duration(1, 4))
		Expect(a.State().Phase).To(Equal(sequencer.Done))
		Expect(b.State().Phase).To(Equal(sequencer.Idle))

		b.Start()
		a.Reset()
		clock.RunUntilIdle(0)
		Expect(a.State().Phase).To(Equal(sequencer.Idle))
		Expect(b.State().Multipliers).To(Equal([]int{2, 2, 2, 2}))
	})
})
