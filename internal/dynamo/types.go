package dynamo

import (
	"fmt"
	"math"
)

// Map is a one-dimensional map parameterised by a.
type Map interface {
	Evaluate(x, a float64) float64
}

// MapFunc adapts an ordinary function to the Map interface.
type MapFunc func(x, a float64) float64

func (f MapFunc) Evaluate(x, a float64) float64 { return f(x, a) }

// Logistic is the logistic map f(x, a) = a·x·(1−x).
type Logistic struct{}

func (Logistic) Evaluate(x, a float64) float64 {
	return a * x * (1 - x)
}

// Derivative returns df/dx = a·(1−2x).
func (Logistic) Derivative(x, a float64) float64 {
	return a * (1 - 2*x)
}

// Differentiable maps expose their analytic derivative in x.
type Differentiable interface {
	Map
	Derivative(x, a float64) float64
}

// Iterate applies m to x n times. n <= 0 returns x unchanged.
func Iterate(m Map, x, a float64, n int) float64 {
	for i := 0; i < n; i++ {
		x = m.Evaluate(x, a)
	}
	return x
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a straight line from one point to another.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Tuple returns the segment as (x1, y1, x2, y2).
func (s Segment) Tuple() [4]float64 {
	return [4]float64{s.From.X, s.From.Y, s.To.X, s.To.Y}
}

func (s Segment) IsVertical() bool { return s.From.X == s.To.X }

func (s Segment) IsFinite() bool {
	return IsFinite(s.From.X) && IsFinite(s.From.Y) && IsFinite(s.To.X) && IsFinite(s.To.Y)
}

// Path is an ordered sequence of segments, e.g. one cobweb trace.
type Path []Segment

// Flatten returns every segment as an (x1, y1, x2, y2) tuple.
func (p Path) Flatten() [][4]float64 {
	out := make([][4]float64, len(p))
	for i, s := range p {
		out[i] = s.Tuple()
	}
	return out
}

// Polyline returns the path vertices in drawing order, the way a plotting
// surface consumes a single connected line.
func (p Path) Polyline() []Point {
	if len(p) == 0 {
		return nil
	}
	pts := make([]Point, 0, len(p)+1)
	pts = append(pts, p[0].From)
	for _, s := range p {
		pts = append(pts, s.To)
	}
	return pts
}

// Interval is a range [Lo, Hi) on a swept axis.
type Interval struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

func (iv Interval) Contains(v float64) bool {
	return v >= iv.Lo && v < iv.Hi
}

// String formats the interval with two decimals, e.g. "[-0.25, 1.25]".
func (iv Interval) String() string {
	return fmt.Sprintf("[%.2f, %.2f]", iv.Lo, iv.Hi)
}
