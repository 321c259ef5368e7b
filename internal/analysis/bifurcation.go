package analysis

import (
	"math"

	"github.com/san-kum/logimap/internal/dynamo"
)

// DefaultDecimals is the rounding applied before counting distinct attractor values.
const DefaultDecimals = 5

// SweepMode selects how the running state moves between parameter values.
type SweepMode string

const (
	// Continuation seeds the state once and carries it from one a to the
	// next. This is how the classic diagram is usually drawn; it is not a
	// rigorous per-parameter attractor computation, and near a bifurcation
	// the carried state can linger on the branch it came from.
	Continuation SweepMode = "continuation"
	// Restart seeds every a independently from the same value. Buckets share
	// no state and are computed in parallel.
	Restart SweepMode = "restart"
)

func (m SweepMode) Valid() bool {
	return m == Continuation || m == Restart
}

// BifurcationScan configures a parameter sweep over the half-open range [AMin, AMax).
type BifurcationScan struct {
	AMin      float64
	AMax      float64
	AStep     float64
	Transient int
	Samples   int
	Seed      float64
	Decimals  int // negative uses DefaultDecimals
	Limit     int // 0 keeps every detected point
	Mode      SweepMode
}

// BifurcationPoint is a parameter value where the distinct attractor count
// doubled relative to the previous recorded point.
type BifurcationPoint struct {
	Param  float64 `json:"a"`
	Unique int     `json:"unique"`
}

// Bifurcations holds the scatter cloud (X = a, Y = attractor value) and the
// detected period-doubling points in increasing a.
type Bifurcations struct {
	Cloud  []dynamo.Point     `json:"cloud"`
	Points []BifurcationPoint `json:"points"`
}

// Params returns the a values of the detected points.
func (b Bifurcations) Params() []float64 {
	out := make([]float64, len(b.Points))
	for i, p := range b.Points {
		out[i] = p.Param
	}
	return out
}

// ScanBifurcations sweeps a, discards Transient iterations per value and
// records the next Samples iterations.
//
// Detection is a heuristic: sample values are rounded to Decimals places and
// counted, and a point is recorded when the count is exactly twice the last
// recorded count (starting from 1). It can miss or shift points near slow
// convergence; that is expected.
//
// Non-finite iterates are not attractor values and are dropped from both the
// cloud and the count. In Continuation mode a diverged state is re-seeded
// before the next a so one escaping parameter does not poison the rest of the
// sweep.
func ScanBifurcations(m dynamo.Map, s BifurcationScan) Bifurcations {
	if s.Samples < 0 {
		s.Samples = 0
	}
	params := sweepValues(s.AMin, s.AMax, s.AStep)
	samples := make([]attractor, len(params))

	switch s.Mode {
	case Restart:
		dynamo.ParallelFor(len(params), 16, func(start, end int) {
			for i := start; i < end; i++ {
				samples[i] = sampleAttractor(m, s.Seed, params[i], s)
			}
		})
	default:
		x := s.Seed
		for i, a := range params {
			samples[i] = sampleAttractor(m, x, a, s)
			x = samples[i].next(s.Seed)
		}
	}

	decimals := s.Decimals
	if decimals < 0 {
		decimals = DefaultDecimals
	}

	result := Bifurcations{
		Cloud:  make([]dynamo.Point, 0, len(params)*s.Samples),
		Points: make([]BifurcationPoint, 0),
	}

	previous := 1
	for _, smp := range samples {
		for _, v := range smp.values {
			result.Cloud = append(result.Cloud, dynamo.Point{X: smp.param, Y: v})
		}

		if s.Limit > 0 && len(result.Points) >= s.Limit {
			continue
		}

		unique := countDistinct(smp.values, decimals)
		if unique == 2*previous && !recorded(result.Points, smp.param) {
			result.Points = append(result.Points, BifurcationPoint{Param: smp.param, Unique: unique})
			previous = unique
		}
	}

	return result
}

// attractor holds the post-transient values visited for one a and the state
// reached after the last iteration.
type attractor struct {
	param  float64
	values []float64
	final  float64
}

func sampleAttractor(m dynamo.Map, x, a float64, s BifurcationScan) attractor {
	for i := 0; i < s.Transient; i++ {
		x = m.Evaluate(x, a)
	}

	values := make([]float64, 0, s.Samples)
	for i := 0; i < s.Samples; i++ {
		x = m.Evaluate(x, a)
		if dynamo.IsFinite(x) {
			values = append(values, x)
		}
	}

	return attractor{param: a, values: values, final: x}
}

// next returns the state to carry into the next parameter value.
func (smp attractor) next(seed float64) float64 {
	if !dynamo.IsFinite(smp.final) {
		return seed
	}
	return smp.final
}

func countDistinct(values []float64, decimals int) int {
	scale := math.Pow(10, float64(decimals))
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[math.Round(v*scale)/scale] = struct{}{}
	}
	return len(seen)
}

func recorded(points []BifurcationPoint, a float64) bool {
	for _, p := range points {
		if p.Param == a {
			return true
		}
	}
	return false
}

// sweepValues returns start + i*step for every i with a value below end.
func sweepValues(start, end, step float64) []float64 {
	if step <= 0 || !(start < end) {
		return nil
	}
	n := int(math.Ceil((end - start) / step))
	values := make([]float64, 0, n)
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v >= end {
			break
		}
		values = append(values, v)
	}
	return values
}

// FeigenbaumRatios returns (a[n+1]-a[n]) / (a[n+2]-a[n+1]) for consecutive
// bifurcation points. The ratios approach δ ≈ 4.669 for unimodal maps.
func FeigenbaumRatios(points []BifurcationPoint) []float64 {
	if len(points) < 3 {
		return nil
	}
	ratios := make([]float64, 0, len(points)-2)
	for i := 0; i+2 < len(points); i++ {
		den := points[i+2].Param - points[i+1].Param
		if math.Abs(den) < 1e-12 {
			continue
		}
		ratios = append(ratios, (points[i+1].Param-points[i].Param)/den)
	}
	return ratios
}
