package lab_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ropelab/internal/config"
	"github.com/san-kum/ropelab/internal/lab"
	"github.com/san-kum/ropelab/internal/rope"
	"github.com/san-kum/ropelab/internal/sched"
	"github.com/san-kum/ropelab/internal/sequencer"
)

var _ = Describe("Lab", func() {
	var (
		clock *sched.Manual
		cfg   *config.Config
		l     *lab.Lab
	)

	BeforeEach(func() {
		clock = sched.NewManual(time.Time{})
		cfg = config.DefaultConfig()
	})

	JustBeforeEach(func() {
		var err error
		l, err = lab.New(cfg, clock, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(l.Close)
	})

	It("builds one sequencer per token", func() {
		seqs := l.Sequencers()
		Expect(seqs).To(HaveLen(2))
		Expect(seqs[0].Token().Label).To(Equal("Twinkle"))
		Expect(seqs[1].Token().Position).To(Equal(2))

		seq, ok := l.Sequencer("Little")
		Expect(ok).To(BeTrue())
		Expect(seq).To(BeIdenticalTo(seqs[1]))
		_, ok = l.Sequencer("Star")
		Expect(ok).To(BeFalse())
	})

	It("shares one table per bus version", func() {
		a := l.Thetas()
		b := l.Thetas()
		Expect(&a[0]).To(BeIdenticalTo(&b[0]))
		Expect(&l.Sequencers()[0].Thetas()[0]).To(BeIdenticalTo(&a[0]))
		Expect(&l.Scrubber().Thetas()[0]).To(BeIdenticalTo(&a[0]))

		Expect(l.SetBase(20000)).To(Succeed())
		c := l.Thetas()
		Expect(&c[0]).NotTo(BeIdenticalTo(&a[0]))
		Expect(&l.Sequencers()[1].Thetas()[0]).To(BeIdenticalTo(&c[0]))
	})

	It("resets every widget when the base changes mid-animation", func() {
		l.StartAll()
		l.Scrubber().Play()
		clock.Advance(time.Second)

		little, _ := l.Sequencer("Little")
		Expect(little.State().Phase).To(Equal(sequencer.Animating))
		Expect(l.Scrubber().Position()).To(BeNumerically(">", 0))

		Expect(l.SetBase(500000)).To(Succeed())

		for _, seq := range l.Sequencers() {
			Expect(seq.State().Phase).To(Equal(sequencer.Idle))
			Expect(seq.State().Multipliers).To(Equal([]int{0, 0, 0, 0}))
		}
		Expect(l.Scrubber().Position()).To(BeZero())
		Expect(l.Scrubber().Playing()).To(BeFalse())
		Expect(l.Thetas()[1]).To(BeNumerically("~", math.Pow(500000, -0.25), 1e-15))

		clock.RunUntilIdle(0)
		Expect(little.State().Phase).To(Equal(sequencer.Idle))
	})

	It("resets finished sequencers when the base changes", func() {
		l.StartAll()
		clock.RunUntilIdle(0)
		for _, seq := range l.Sequencers() {
			Expect(seq.State().Phase).To(Equal(sequencer.Done))
		}

		Expect(l.SetBase(250000)).To(Succeed())

		for _, seq := range l.Sequencers() {
			st := seq.State()
			Expect(st.Phase).To(Equal(sequencer.Idle))
			Expect(st.ActivePair).To(Equal(sequencer.NoPair))
			Expect(st.Multipliers).To(Equal([]int{0, 0, 0, 0}))
		}
		Expect(clock.Pending()).To(BeZero())
	})

	It("rejects a base outside the range and keeps state", func() {
		l.StartAll()
		clock.Advance(500 * time.Millisecond)
		before := l.Sequencers()[0].State()

		Expect(l.SetBase(600000)).To(MatchError(rope.ErrInvalidBase))
		Expect(l.Bus().State().Version).To(BeZero())
		Expect(l.Sequencers()[0].State()).To(Equal(before))
	})

	It("nudges by the slider step", func() {
		Expect(l.Nudge(3)).To(Succeed())
		Expect(l.Bus().Base()).To(Equal(40000.0))
		Expect(l.Nudge(-10)).To(MatchError(rope.ErrInvalidBase))
	})

	It("stops following the bus after Close", func() {
		l.StartAll()
		clock.Advance(500 * time.Millisecond)
		l.Close()
		Expect(l.Bus().Subscribers()).To(BeZero())
		Expect(l.SetBase(30000)).To(Succeed())
		Expect(l.Outcome().Base()).To(Equal(10000.0))
	})

	Describe("Outcome", func() {
		It("follows the bus by default", func() {
			Expect(l.SetBase(100000)).To(Succeed())
			Expect(l.Outcome().Base()).To(Equal(100000.0))
		})

		It("leaves position 0 unrotated and rotates position 1", func() {
			v := l.Outcome().View()
			Expect(v.Positions).To(Equal([2]int{0, 1}))
			Expect(v.Query[0]).To(Equal(rope.Vector(cfg.Outcome.Query)))

			want, _ := rope.RotateVector(rope.Vector(cfg.Outcome.Query), 1, 10000)
			for i := range want {
				Expect(v.Query[1][i]).To(BeNumerically("~", want[i], 1e-12))
			}
			Expect(v.Score[0]).To(BeNumerically("~", v.Score[1], 1e-12))
		})

		Context("when pinned", func() {
			BeforeEach(func() {
				cfg.Outcome.FollowBus = false
				cfg.Base.Initial = 250000
			})

			It("stays on the fixed base", func() {
				Expect(l.Outcome().Base()).To(Equal(10000.0))
				Expect(l.SetBase(400000)).To(Succeed())
				Expect(l.Outcome().Base()).To(Equal(10000.0))
				Expect(l.Bus().Subscribers()).To(Equal(3))
			})
		})
	})

	It("rejects an invalid config", func() {
		bad := config.DefaultConfig()
		bad.Dim = 3
		_, err := lab.New(bad, clock, nil)
		Expect(err).To(MatchError(rope.ErrInvalidDimension))
	})
})
