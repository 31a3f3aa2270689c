package bus_test

import (
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ropelab/internal/bus"
	"github.com/san-kum/ropelab/internal/rope"
)

var _ = Describe("Bus", func() {
	var b *bus.Bus

	BeforeEach(func() {
		var err error
		b, err = bus.New(10000, bus.DefaultRange())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		It("starts at version zero", func() {
			Expect(b.State()).To(Equal(bus.State{Base: 10000, Version: 0}))
		})

		It("rejects an initial value outside the range", func() {
			_, err := bus.New(5000, bus.DefaultRange())
			Expect(err).To(MatchError(rope.ErrInvalidBase))
		})

		It("rejects a non-positive range", func() {
			_, err := bus.New(1, bus.Range{Min: 0, Max: 10})
			Expect(err).To(MatchError(rope.ErrInvalidBase))
		})
	})

	Describe("SetBase", func() {
		It("updates the base and bumps the version", func() {
			Expect(b.SetBase(20000)).To(Succeed())
			Expect(b.SetBase(20000)).To(Succeed())
			Expect(b.State()).To(Equal(bus.State{Base: 20000, Version: 2}))
		})

		DescribeTable("rejects invalid values without changing state",
			func(v float64) {
				Expect(b.SetBase(v)).To(MatchError(rope.ErrInvalidBase))
				Expect(b.State()).To(Equal(bus.State{Base: 10000, Version: 0}))
			},
			Entry("zero", 0.0),
			Entry("negative", -10000.0),
			Entry("below min", 9999.0),
			Entry("above max", 500001.0),
			Entry("NaN", math.NaN()),
			Entry("infinity", math.Inf(1)),
		)

		It("notifies subscribers synchronously in subscription order", func() {
			var calls []string
			b.Subscribe(func(st bus.State) { calls = append(calls, "first") })
			b.Subscribe(func(st bus.State) { calls = append(calls, "second") })

			Expect(b.SetBase(30000)).To(Succeed())
			Expect(calls).To(Equal([]string{"first", "second"}))
		})

		It("hands every subscriber the new state", func() {
			var seen []bus.State
			b.Subscribe(func(st bus.State) { seen = append(seen, st) })
			Expect(b.SetBase(40000)).To(Succeed())
			Expect(seen).To(ConsistOf(bus.State{Base: 40000, Version: 1}))
		})

		It("does not notify on a rejected value", func() {
			called := false
			b.Subscribe(func(bus.State) { called = true })
			Expect(b.SetBase(1)).NotTo(Succeed())
			Expect(called).To(BeFalse())
		})

		It("never interleaves fan-outs of concurrent calls", func() {
			var mu sync.Mutex
			var versions []int
			for i := 0; i < 3; i++ {
				b.Subscribe(func(st bus.State) {
					mu.Lock()
					versions = append(versions, st.Version)
					mu.Unlock()
				})
			}

			var wg sync.WaitGroup
			for i := 1; i <= 20; i++ {
				wg.Add(1)
				go func(v float64) {
					defer wg.Done()
					_ = b.SetBase(v)
				}(float64(i) * 10000)
			}
			wg.Wait()

			Expect(versions).To(HaveLen(60))
			for i := 0; i < len(versions); i += 3 {
				Expect(versions[i+1]).To(Equal(versions[i]))
				Expect(versions[i+2]).To(Equal(versions[i]))
			}
		})
	})

	Describe("Subscribe", func() {
		It("stops delivery after unsubscribe, and unsubscribe is idempotent", func() {
			count := 0
			unsub := b.Subscribe(func(bus.State) { count++ })
			Expect(b.SetBase(20000)).To(Succeed())
			unsub()
			unsub()
			Expect(b.SetBase(30000)).To(Succeed())
			Expect(count).To(Equal(1))
			Expect(b.Subscribers()).To(BeZero())
		})
	})

	Describe("Nudge", func() {
		It("moves by the configured step", func() {
			Expect(b.Nudge(2)).To(Succeed())
			Expect(b.Base()).To(Equal(30000.0))
			Expect(b.Nudge(-1)).To(Succeed())
			Expect(b.Base()).To(Equal(20000.0))
		})

		It("refuses to step below the range", func() {
			Expect(b.Nudge(-1)).To(MatchError(rope.ErrInvalidBase))
			Expect(b.Base()).To(Equal(10000.0))
		})
	})
})
