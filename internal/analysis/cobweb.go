package analysis

import (
	"github.com/san-kum/logimap/internal/dynamo"
)

// Trace builds the cobweb path for x0 under m with parameter a.
//
// The first segment projects the start point onto the curve. Each step then
// adds a horizontal leg onto the diagonal y=x and a vertical leg back onto the
// curve, so the result always holds 1+2*steps segments. Negative steps are
// treated as zero. NaN and Inf propagate into the segments; clipping is left
// to the renderer.
func Trace(m dynamo.Map, x0, a float64, steps int) dynamo.Path {
	if steps < 0 {
		steps = 0
	}

	path := make(dynamo.Path, 0, 1+2*steps)

	x := x0
	fx := m.Evaluate(x, a)
	path = append(path, dynamo.Segment{
		From: dynamo.Point{X: x, Y: 0},
		To:   dynamo.Point{X: x, Y: fx},
	})

	for i := 0; i < steps; i++ {
		path = append(path, dynamo.Segment{
			From: dynamo.Point{X: x, Y: fx},
			To:   dynamo.Point{X: fx, Y: fx},
		})

		ffx := m.Evaluate(fx, a)
		path = append(path, dynamo.Segment{
			From: dynamo.Point{X: fx, Y: fx},
			To:   dynamo.Point{X: fx, Y: ffx},
		})

		x, fx = fx, ffx
	}

	return path
}

// Axes returns the reference lines drawn under a cobweb: the diagonal y=x and
// both coordinate axes across [start, end].
func Axes(start, end float64) dynamo.Path {
	return dynamo.Path{
		{From: dynamo.Point{X: start, Y: start}, To: dynamo.Point{X: end, Y: end}},
		{From: dynamo.Point{X: start, Y: 0}, To: dynamo.Point{X: end, Y: 0}},
		{From: dynamo.Point{X: 0, Y: start}, To: dynamo.Point{X: 0, Y: end}},
	}
}
