package viz

// RenderDials draws one dial per angle, left to right, with the needle at
// that angle. radius is in braille dots.
func RenderDials(angles []float64, radius int) string {
	if len(angles) == 0 || radius <= 0 {
		return ""
	}
	return DialCanvas(angles, radius).String()
}

// DialCanvas is RenderDials before it is turned into text.
func DialCanvas(angles []float64, radius int) *Canvas {
	span := 2*radius + 4
	cellW := span / 2
	cellH := (span + 3) / 4
	c := NewCanvas(len(angles)*cellW, cellH)

	for i, a := range angles {
		cx := i*span + span/2
		cy := span / 2
		c.DrawCircle(cx, cy, radius)
		c.DrawNeedle(cx, cy, radius-1, a, DialTrig)
	}
	return c
}
