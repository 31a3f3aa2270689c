package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/ropelab/internal/analysis"
	"github.com/san-kum/ropelab/internal/export"
	"github.com/san-kum/ropelab/internal/rope"
	"github.com/san-kum/ropelab/internal/viz"
)

var (
	position  int
	vector    []float64
	keyVector []float64
	posM      int
	posN      int
	samples   int
	tolerance float64
	plot      bool
	outFile   string
	arrows    bool
	braille   bool
	scale     float64
)

func mathCommands() []*cobra.Command {
	thetasCmd := &cobra.Command{
		Use:   "thetas",
		Short: "print the frequency table for the configured base",
		RunE:  printThetas,
	}
	thetasCmd.Flags().BoolVar(&plot, "plot", true, "plot the decay of theta")

	rotateCmd := &cobra.Command{
		Use:   "rotate",
		Short: "rotate a vector to a position",
		RunE:  rotateVector,
	}
	rotateCmd.Flags().IntVar(&position, "position", 1, "sequence position")
	rotateCmd.Flags().Float64SliceVar(&vector, "vector", nil, "vector to rotate (default: first token's query)")

	relativeCmd := &cobra.Command{
		Use:   "relative",
		Short: "compare R_m^T R_n expanded against its closed form",
		RunE:  showRelative,
	}
	relativeCmd.Flags().IntVar(&posM, "m", 3, "query position")
	relativeCmd.Flags().IntVar(&posN, "n", 1, "key position")
	relativeCmd.Flags().Float64SliceVar(&vector, "query", nil, "query vector (default: first token's query)")
	relativeCmd.Flags().Float64SliceVar(&keyVector, "key", nil, "key vector (default: first token's key)")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "check the rotation invariants over a grid of bases and positions",
		RunE:  verifyInvariants,
	}
	verifyCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-9, "largest acceptable error")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum",
		Short: "recover every theta from the FFT of its rotation",
		RunE:  showSpectrum,
	}
	spectrumCmd.Flags().IntVar(&samples, "samples", 1<<16, "positions sampled (power of two)")

	svgCmd := &cobra.Command{
		Use:   "export-svg",
		Short: "write the frequency dials at a position as SVG",
		RunE:  exportSVG,
	}
	svgCmd.Flags().IntVar(&position, "position", 1, "sequence position")
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "dials.svg", "output file")
	svgCmd.Flags().BoolVar(&arrows, "arrows", false, "draw the first token's query and key pairs instead")
	svgCmd.Flags().BoolVar(&braille, "braille", false, "render the terminal dials dot by dot")
	svgCmd.Flags().Float64Var(&scale, "scale", 120, "dial size in pixels")

	return []*cobra.Command{thetasCmd, rotateCmd, relativeCmd, verifyCmd, spectrumCmd, svgCmd}
}

func printThetas(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	thetas, err := rope.ComputeThetas(cfg.Base.Initial, cfg.Dim)
	if err != nil {
		return err
	}
	fmt.Print(viz.RenderThetaTable(cfg.Base.Initial, thetas))
	if plot {
		fmt.Println()
		fmt.Println(viz.PlotThetas(thetas, 8))
	}
	return nil
}

// inputVector returns flagged values, or fallback when none were given.
func inputVector(flagged, fallback []float64) (rope.Vector, error) {
	if len(flagged) == 0 {
		flagged = fallback
	}
	return rope.NewVector(flagged...)
}

func rotateVector(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var fallback []float64
	if len(cfg.Tokens) > 0 {
		fallback = cfg.Tokens[0].Query
	}
	v, err := inputVector(vector, fallback)
	if err != nil {
		return err
	}

	rotated, err := rope.RotateVector(v, position, cfg.Base.Initial)
	if err != nil {
		return err
	}
	thetas, err := rope.ComputeThetas(cfg.Base.Initial, len(v))
	if err != nil {
		return err
	}

	fmt.Printf("base %g  position %d\n\n", cfg.Base.Initial, position)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tTHETA\tANGLE\tIN\tOUT")
	for i, a := range thetas.Angles(float64(position)) {
		x, y := v.Pair(i)
		rx, ry := rotated.Pair(i)
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t(%+.4f, %+.4f)\t(%+.4f, %+.4f)\n", i, thetas[i], a, x, y, rx, ry)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nnorm  in %.6f  out %.6f\n", v.Norm(), rotated.Norm())
	return nil
}

func showRelative(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var fq, fk []float64
	if len(cfg.Tokens) > 0 {
		fq, fk = cfg.Tokens[0].Query, cfg.Tokens[0].Key
	}
	q, err := inputVector(vector, fq)
	if err != nil {
		return err
	}
	k, err := inputVector(keyVector, fk)
	if err != nil {
		return err
	}
	thetas, err := rope.ComputeThetas(cfg.Base.Initial, len(q))
	if err != nil {
		return err
	}

	naive := rope.BlockProduct(posM, posN, thetas)
	closed := rope.RelativeBlocks(posM, posN, thetas)

	fmt.Printf("R_%d^T R_%d at base %g  (offset %d)\n\n", posM, posN, cfg.Base.Initial, posM-posN)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tEXPANDED\tCLOSED FORM")
	for i := range thetas {
		a, b := naive[i], closed[i]
		fmt.Fprintf(w, "%d\t[%+.4f %+.4f; %+.4f %+.4f]\t[%+.4f %+.4f; %+.4f %+.4f]\n", i,
			a[0][0], a[0][1], a[1][0], a[1][1],
			b[0][0], b[0][1], b[1][0], b[1][1])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s, err := rope.Score(q, k, posM, posN, cfg.Base.Initial)
	if err != nil {
		return err
	}
	r, err := rope.RelativeScore(q, k, posM, posN, cfg.Base.Initial)
	if err != nil {
		return err
	}
	fmt.Printf("\nmax block difference %.3g\n", naive.MaxDiff(closed))
	fmt.Printf("score  (R_m q)·(R_n k) = %+.6f\n", s)
	fmt.Printf("score  q·(R_m^T R_n k) = %+.6f\n", r)
	return nil
}

func verifyInvariants(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(cfg.Tokens) == 0 {
		return fmt.Errorf("verify needs at least one token")
	}

	bases := []float64{cfg.Base.Min, cfg.Base.Initial, cfg.Base.Max}
	checks, err := analysis.Verify(analysis.Grid{
		Bases:     bases,
		Positions: []int{0, 1, 2, 3, 7, 64, 511, cfg.Scrub.Max},
		Query:     rope.Vector(cfg.Tokens[0].Query),
		Key:       rope.Vector(cfg.Tokens[0].Key),
		Tolerance: tolerance,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tWORST\tAT\tRESULT")
	failed := 0
	for _, c := range checks {
		result := "ok"
		if !c.Pass() {
			result = "FAIL"
			failed++
		}
		fmt.Fprintf(w, "%s\t%.3g\t%s\t%s\n", c.Name, c.Worst, c.Where, result)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

func showSpectrum(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	thetas, err := rope.ComputeThetas(cfg.Base.Initial, cfg.Dim)
	if err != nil {
		return err
	}
	spec, err := analysis.RecoverThetas(thetas, samples)
	if err != nil {
		return err
	}

	fmt.Printf("base %g  %d samples  resolution %.3g rad/pos\n\n", cfg.Base.Initial, samples, analysis.Resolution(samples))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tTHETA\tRECOVERED\tBIN\tERROR")
	for _, p := range spec {
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.2f\t%.2g\n", p.Pair, p.Theta, p.Recovered, p.Peak, p.Error)
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if position < 0 {
		return fmt.Errorf("%w: %d", rope.ErrInvalidPosition, position)
	}
	thetas, err := rope.ComputeThetas(cfg.Base.Initial, cfg.Dim)
	if err != nil {
		return err
	}

	var svg string
	switch {
	case arrows:
		if len(cfg.Tokens) == 0 {
			return fmt.Errorf("no token to draw")
		}
		q := rope.Vector(cfg.Tokens[0].Query)
		k := rope.Vector(cfg.Tokens[0].Key)
		qr, err := rope.RotateAt(q, position, thetas)
		if err != nil {
			return err
		}
		kr, err := rope.RotateAt(k, position, thetas)
		if err != nil {
			return err
		}
		svg = export.PairArrowsSVG(q, k, qr, kr, scale)
	case braille:
		svg = export.CanvasToSVG(viz.DialCanvas(thetas.Angles(float64(position)), 12), scale/30)
	default:
		svg = export.DialsSVG(thetas, position, scale)
	}

	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}
