package analysis

import (
	"github.com/san-kum/logimap/internal/dynamo"
)

// GenerateOrbit returns x0 followed by steps successive iterates of m.
// Diverging orbits keep their infinities.
func GenerateOrbit(m dynamo.Map, x0, a float64, steps int) dynamo.Series {
	if steps < 0 {
		steps = 0
	}

	orbit := make(dynamo.Series, steps+1)
	orbit[0] = x0
	for i := 1; i <= steps; i++ {
		orbit[i] = m.Evaluate(orbit[i-1], a)
	}
	return orbit
}

// EscapeIndex returns the first index at which the orbit stops being finite,
// or -1 if it stays finite throughout.
func EscapeIndex(orbit dynamo.Series) int {
	for i, v := range orbit {
		if !dynamo.IsFinite(v) {
			return i
		}
	}
	return -1
}

// SampleCurve evaluates m on n evenly spaced points across [start, end],
// endpoints included.
func SampleCurve(m dynamo.Map, a, start, end float64, n int) []dynamo.Point {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []dynamo.Point{{X: start, Y: m.Evaluate(start, a)}}
	}

	step := (end - start) / float64(n-1)
	pts := make([]dynamo.Point, n)
	for i := range pts {
		x := start + float64(i)*step
		if i == n-1 {
			x = end
		}
		pts[i] = dynamo.Point{X: x, Y: m.Evaluate(x, a)}
	}
	return pts
}
