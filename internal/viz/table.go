package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ropelab/internal/rope"
)

// RenderThetaTable lists every pair's frequency, its turn per position in
// degrees and the positions needed for a full revolution.
func RenderThetaTable(base float64, thetas rope.ThetaTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "base %g  dim %d\n", base, 2*len(thetas))
	fmt.Fprintf(&b, "%4s  %9s  %9s  %10s\n", "pair", "theta", "deg/pos", "period")
	for i, deg := range thetas.Degrees() {
		fmt.Fprintf(&b, "%4d  %9.4f  %9.4f  %10.4f\n", i, thetas[i], deg, 2*math.Pi/thetas[i])
	}
	return b.String()
}

// PlotThetas charts log10(theta_i) against the pair index.
func PlotThetas(thetas rope.ThetaTable, height int) string {
	if len(thetas) < 2 {
		return ""
	}
	logs := make([]float64, len(thetas))
	for i, t := range thetas {
		logs[i] = math.Log10(t)
	}
	return asciigraph.Plot(logs,
		asciigraph.Height(height),
		asciigraph.Width(4*len(thetas)),
		asciigraph.Precision(1),
		asciigraph.Caption("log10 theta by pair"))
}

// FormatVector prints v pair by pair.
func FormatVector(v rope.Vector) string {
	parts := make([]string, 0, v.Pairs())
	for i := 0; i < v.Pairs(); i++ {
		x, y := v.Pair(i)
		parts = append(parts, fmt.Sprintf("(%+.3f, %+.3f)", x, y))
	}
	return strings.Join(parts, " ")
}
