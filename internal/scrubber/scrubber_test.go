package scrubber_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ropelab/internal/rope"
	"github.com/san-kum/ropelab/internal/sched"
	"github.com/san-kum/ropelab/internal/scrubber"
)

var _ = Describe("Scrubber", func() {
	var (
		clock  *sched.Manual
		thetas rope.ThetaTable
		s      *scrubber.Scrubber
	)

	BeforeEach(func() {
		clock = sched.NewManual(time.Time{})
		var err error
		thetas, err = rope.ComputeThetas(10000, 8)
		Expect(err).NotTo(HaveOccurred())
		s, err = scrubber.New(scrubber.Config{Max: 2048, Rate: 100, Tick: 10 * time.Millisecond}, thetas, clock)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts paused at 0", func() {
		Expect(s.Position()).To(BeZero())
		Expect(s.Playing()).To(BeFalse())
		Expect(s.Angles()).To(Equal([]float64{0, 0, 0, 0}))
	})

	It("advances at the configured rate", func() {
		s.Play()
		clock.Advance(time.Second)
		Expect(s.Position()).To(Equal(100))
		Expect(s.Playing()).To(BeTrue())

		angles := s.Angles()
		for i, theta := range thetas {
			Expect(angles[i]).To(BeNumerically("~", 100*theta, 1e-9))
		}
	})

	It("keeps unreduced angles and reports revolutions", func() {
		s.Seek(7)
		Expect(s.Angles()[0]).To(BeNumerically("~", 7, 1e-12))
		Expect(s.DisplayAngles()[0]).To(BeNumerically("~", 7-2*math.Pi, 1e-12))
		Expect(s.Revolutions()[0]).To(BeNumerically("~", 7/(2*math.Pi), 1e-12))
	})

	It("stops exactly at the bound", func() {
		s.Seek(2040)
		s.Play()
		clock.Advance(200 * time.Millisecond)
		Expect(s.Position()).To(Equal(2048))
		Expect(s.Playing()).To(BeFalse())
		Expect(clock.Pending()).To(BeZero())
	})

	It("rewinds when toggled at the bound", func() {
		s.Seek(5000)
		Expect(s.Position()).To(Equal(2048))

		s.TogglePlay()
		Expect(s.Playing()).To(BeTrue())
		Expect(s.Position()).To(BeZero())

		clock.Advance(50 * time.Millisecond)
		Expect(s.Position()).To(Equal(5))

		s.TogglePlay()
		Expect(s.Playing()).To(BeFalse())
	})

	It("holds the position on pause", func() {
		s.Play()
		clock.Advance(50 * time.Millisecond)
		s.Pause()
		Expect(clock.Pending()).To(BeZero())

		clock.Advance(time.Second)
		Expect(s.Position()).To(Equal(5))
	})

	It("plays from a seeked position", func() {
		s.Seek(500)
		Expect(s.Playing()).To(BeFalse())
		Expect(clock.Pending()).To(BeZero())

		s.Play()
		clock.Advance(100 * time.Millisecond)
		Expect(s.Position()).To(Equal(510))
	})

	It("continues from a seek while playing", func() {
		s.Play()
		clock.Advance(50 * time.Millisecond)
		s.Seek(1000)
		Expect(s.Position()).To(Equal(1000))

		clock.Advance(20 * time.Millisecond)
		Expect(s.Position()).To(Equal(1002))
	})

	It("clamps seeks below zero", func() {
		s.Seek(-5)
		Expect(s.Position()).To(BeZero())
	})

	It("ignores Play while already playing", func() {
		s.Play()
		clock.Advance(30 * time.Millisecond)
		s.Play()
		clock.Advance(20 * time.Millisecond)
		Expect(s.Position()).To(Equal(5))
		Expect(clock.Pending()).To(Equal(1))
	})

	It("resets on rebase", func() {
		s.Seek(300)
		s.Play()
		next, _ := rope.ComputeThetas(500000, 8)
		s.Rebase(next)

		Expect(s.Position()).To(BeZero())
		Expect(s.Playing()).To(BeFalse())
		Expect(s.Thetas()).To(Equal(next))
	})

	DescribeTable("rejects bad config",
		func(cfg scrubber.Config) {
			_, err := scrubber.New(cfg, thetas, clock)
			Expect(err).To(HaveOccurred())
		},
		Entry("zero max", scrubber.Config{Max: 0, Rate: 100, Tick: time.Millisecond}),
		Entry("zero rate", scrubber.Config{Max: 10, Rate: 0, Tick: time.Millisecond}),
		Entry("NaN rate", scrubber.Config{Max: 10, Rate: math.NaN(), Tick: time.Millisecond}),
		Entry("zero tick", scrubber.Config{Max: 10, Rate: 100}),
	)
})
