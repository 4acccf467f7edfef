package geom

import "math"

// GradientRise is the rise of a unit-length step along a line of the given
// gradient: sin(atan(g)). An infinite gradient has rise 1.
func GradientRise(gradient float64) float64 {
	return math.Sin(math.Atan(gradient))
}

// GradientRun is the run of a unit-length step along a line of the given
// gradient: cos(atan(g)).
func GradientRun(gradient float64) float64 {
	return math.Cos(math.Atan(gradient))
}

// IntersectLines intersects y = m1*x + c1 with y = m2*x + c2. For an infinite
// slope the intercept is the x-intercept instead. ok is false when both lines
// are vertical or the slopes are equal within ATOL.
func IntersectLines(m1, c1, m2, c2 float64) (x, y float64, ok bool) {
	inf1, inf2 := math.IsInf(m1, 0), math.IsInf(m2, 0)
	switch {
	case inf1 && inf2:
		return 0, 0, false
	case inf1:
		return c1, m2*c1 + c2, true
	case inf2:
		return c2, m1*c2 + c1, true
	case IsClose(m1, m2):
		return 0, 0, false
	}
	x = (c2 - c1) / (m1 - m2)
	return x, m1*x + c1, true
}

// MarginIntersectOffset returns how far the apex formed by the left and right
// edges of a panel drops when both edges are inset by margin. The left edge
// passes through the origin and the right edge through (baseWidth, 0). ok is
// false when the edges never meet, in which case the flat margin applies.
func MarginIntersectOffset(gradLeft, gradRight, baseWidth, margin float64) (float64, bool) {
	leftInf, rightInf := math.IsInf(gradLeft, 0), math.IsInf(gradRight, 0)

	regularLeft := 0.0
	regularRight := baseWidth
	if !rightInf {
		regularRight = -baseWidth * gradRight
	}
	_, regularY, ok := IntersectLines(gradLeft, regularLeft, gradRight, regularRight)
	if !ok {
		return 0, false
	}

	marginLeft := margin
	if !leftInf {
		marginLeft = -math.Abs(margin / GradientRun(gradLeft))
	}
	marginRight := baseWidth - margin
	if !rightInf {
		marginRight = regularRight - math.Abs(margin/GradientRun(gradRight))
	}
	_, marginY, ok := IntersectLines(gradLeft, marginLeft, gradRight, marginRight)
	if !ok {
		return 0, false
	}
	return regularY - marginY, true
}
