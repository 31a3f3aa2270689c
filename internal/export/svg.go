// Package export writes ropelab figures as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/ropelab/internal/rope"
	"github.com/san-kum/ropelab/internal/viz"
)

const (
	background = "#0a0a0a"
	dialStroke = "#444466"
	needle     = "#00ffff"
	queryColor = "#ff00ff"
	keyColor   = "#00ccff"
	ghostColor = "#666666"
	textColor  = "#cccccc"
)

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG converts a braille canvas into one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	header(&sb, float64(canvas.Width)*scale*2, float64(canvas.Height)*scale*4)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", needle)

	bits := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&bits[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// DialsSVG draws one dial per pair with the needle at position*theta_i and
// the pair's frequency underneath.
func DialsSVG(thetas rope.ThetaTable, position int, size float64) string {
	if len(thetas) == 0 || size <= 0 {
		return ""
	}

	r := size * 0.4
	width := size * float64(len(thetas))
	height := size + 32

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, "<text x=\"8\" y=\"%.1f\" fill=\"%s\" font-family=\"monospace\" font-size=\"12\">position %d</text>\n",
		height-6, textColor, position)

	for i, a := range thetas.Angles(float64(position)) {
		cx := size*float64(i) + size/2
		cy := size / 2
		sin, cos := math.Sincos(a)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\"/>\n",
			cx, cy, r, dialStroke)
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=\"%s\" stroke-width=\"2\"/>\n",
			cx, cy, cx+r*cos, cy-r*sin, needle)
		fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\" fill=\"%s\" font-family=\"monospace\" font-size=\"11\" text-anchor=\"middle\">θ%d=%.4f</text>\n",
			cx, size+8, textColor, i, thetas[i])
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// PairArrowsSVG draws each pair of query and key as 2D arrows, the
// unrotated originals ghosted behind the rotated ones.
func PairArrowsSVG(q, k, qRot, kRot rope.Vector, size float64) string {
	pairs := q.Pairs()
	if pairs == 0 || size <= 0 || k.Pairs() != pairs || qRot.Pairs() != pairs || kRot.Pairs() != pairs {
		return ""
	}

	scale := maxAbs(q, k, qRot, kRot)
	if scale == 0 {
		scale = 1
	}
	r := size * 0.45 / scale

	var sb strings.Builder
	header(&sb, size*float64(pairs), size)
	for i := 0; i < pairs; i++ {
		cx := size*float64(i) + size/2
		cy := size / 2
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"none\" stroke=\"%s\"/>\n",
			cx, cy, size*0.45, dialStroke)
		arrow(&sb, cx, cy, r, q, i, ghostColor, true)
		arrow(&sb, cx, cy, r, k, i, ghostColor, true)
		arrow(&sb, cx, cy, r, qRot, i, queryColor, false)
		arrow(&sb, cx, cy, r, kRot, i, keyColor, false)
	}
	sb.WriteString("</svg>")
	return sb.String()
}

func arrow(sb *strings.Builder, cx, cy, r float64, v rope.Vector, i int, color string, dashed bool) {
	x, y := v.Pair(i)
	dash := ""
	if dashed {
		dash = ` stroke-dasharray="4 3"`
	}
	fmt.Fprintf(sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=\"%s\" stroke-width=\"2\"%s/>\n",
		cx, cy, cx+x*r, cy-y*r, color, dash)
}

func maxAbs(vs ...rope.Vector) float64 {
	m := 0.0
	for _, v := range vs {
		for _, x := range v {
			m = math.Max(m, math.Abs(x))
		}
	}
	return m
}
