package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/ropelab/internal/lab"
	"github.com/san-kum/ropelab/internal/sched"
	"github.com/san-kum/ropelab/internal/sequencer"
	"github.com/san-kum/ropelab/internal/store"
)

var (
	tokenLabel string
	save       bool
	seekTo     int
	playFor    time.Duration
	rebaseTo   float64
	rebaseAt   time.Duration
)

func replayCommands() []*cobra.Command {
	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "replay the rotation animation headlessly",
		RunE:  runApply,
	}
	applyCmd.Flags().StringVar(&tokenLabel, "token", "", "only replay this token")
	applyCmd.Flags().BoolVar(&save, "save", false, "save the trace to the data directory")
	applyCmd.Flags().Float64Var(&rebaseTo, "rebase", 0, "change the base mid-replay")
	applyCmd.Flags().DurationVar(&rebaseAt, "rebase-at", time.Second, "when to change the base")

	scrubCmd := &cobra.Command{
		Use:   "scrub",
		Short: "run the frequency dials headlessly",
		RunE:  runScrub,
	}
	scrubCmd.Flags().IntVar(&seekTo, "seek", 0, "start position")
	scrubCmd.Flags().DurationVar(&playFor, "play", 0, "play for this long before reporting")

	return []*cobra.Command{applyCmd, scrubCmd}
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	clock := sched.NewManual(time.Time{})
	l, err := lab.New(cfg, clock, slog.Default())
	if err != nil {
		return err
	}
	defer l.Close()

	seqs := l.Sequencers()
	if tokenLabel != "" {
		seq, ok := l.Sequencer(tokenLabel)
		if !ok {
			return fmt.Errorf("unknown token: %s", tokenLabel)
		}
		seqs = []*sequencer.Sequencer{seq}
	}

	start := clock.Now()
	rec := store.NewRecorder(clock.Now)
	printer := sequencer.ObserverFunc(func(label string, st sequencer.State) {
		pair := "-"
		if i, ok := st.Active(); ok {
			pair = fmt.Sprint(i)
		}
		fmt.Printf("%8s  %-10s %-10s pair %-2s %v\n",
			clock.Now().Sub(start), label, st.Phase, pair, st.Multipliers)
	})
	labels := make([]string, len(seqs))
	for i, seq := range seqs {
		seq.AddObserver(printer)
		seq.AddObserver(rec)
		labels[i] = seq.Token().Label
	}

	for _, seq := range seqs {
		seq.Start()
	}
	if rebaseTo != 0 {
		clock.Advance(rebaseAt)
		fmt.Printf("%8s  base -> %g\n", clock.Now().Sub(start), rebaseTo)
		if err := l.SetBase(rebaseTo); err != nil {
			return err
		}
		for _, seq := range seqs {
			seq.Start()
		}
	}
	clock.RunUntilIdle(0)
	elapsed := clock.Now().Sub(start)

	fmt.Println()
	for _, seq := range seqs {
		q, k := seq.Current()
		fmt.Printf("%s (pos %d): %s\n", seq.Token().Label, seq.Token().Position, seq.Status())
		fmt.Printf("  q %s\n  k %s\n", fmtVec(q), fmtVec(k))
	}
	fmt.Printf("\nreplayed %d transitions in %v of animation time\n", rec.Len(), elapsed)

	if !save {
		return nil
	}
	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(store.RunMetadata{
		Kind:    "apply",
		Base:    l.Bus().Base(),
		Dim:     cfg.Dim,
		Tokens:  labels,
		Metrics: map[string]float64{"duration_ms": float64(elapsed.Milliseconds())},
	}, rec.Events())
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runScrub(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	clock := sched.NewManual(time.Time{})
	l, err := lab.New(cfg, clock, slog.Default())
	if err != nil {
		return err
	}
	defer l.Close()

	sc := l.Scrubber()
	sc.Seek(seekTo)
	if playFor > 0 {
		sc.Play()
		clock.Advance(playFor)
	}

	state := "paused"
	if sc.Playing() {
		state = "playing"
	}
	fmt.Printf("position %d / %d (%s)  base %g\n\n", sc.Position(), sc.Max(), state, l.Bus().Base())

	angles, display, revs := sc.Angles(), sc.DisplayAngles(), sc.Revolutions()
	fmt.Printf("%4s  %12s  %10s  %10s\n", "pair", "angle", "mod 2π", "turns")
	for i := range angles {
		fmt.Printf("%4d  %12.4f  %10.4f  %10.3f\n", i, angles[i], display[i], revs[i])
	}
	return nil
}

func fmtVec(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%+.3f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
