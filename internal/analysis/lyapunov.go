package analysis

import (
	"math"

	"github.com/san-kum/logimap/internal/dynamo"
)

// derivativeStep is the central-difference step for maps without an
// analytic derivative.
const derivativeStep = 1e-7

// LyapunovExponent estimates the Lyapunov exponent of m along an orbit:
//
//	λ ≈ (1/n) Σ ln|f'(x_i)|
//
// taken over every finite iterate except the last. Points where the
// derivative vanishes are skipped (a superstable orbit would otherwise give
// -Inf). Returns 0 when no point contributes.
func LyapunovExponent(m dynamo.Map, orbit dynamo.Series, a float64) float64 {
	if len(orbit) < 2 {
		return 0
	}

	deriv := numericDerivative(m)
	if d, ok := m.(dynamo.Differentiable); ok {
		deriv = d.Derivative
	}

	sumLog := 0.0
	count := 0
	for _, x := range orbit[:len(orbit)-1] {
		if !dynamo.IsFinite(x) {
			break
		}
		d := math.Abs(deriv(x, a))
		if d == 0 || !dynamo.IsFinite(d) {
			continue
		}
		sumLog += math.Log(d)
		count++
	}

	if count == 0 {
		return 0
	}
	return sumLog / float64(count)
}

func numericDerivative(m dynamo.Map) func(x, a float64) float64 {
	return func(x, a float64) float64 {
		return (m.Evaluate(x+derivativeStep, a) - m.Evaluate(x-derivativeStep, a)) / (2 * derivativeStep)
	}
}

// LyapunovSweep computes the exponent for every a in [aMin, aMax) after
// discarding transient iterations, recording samples iterations per value.
// Returns the a values and their exponents.
func LyapunovSweep(m dynamo.Map, x0, aMin, aMax, aStep float64, transient, samples int) ([]float64, []float64) {
	params := sweepValues(aMin, aMax, aStep)
	exps := make([]float64, len(params))

	dynamo.ParallelFor(len(params), 32, func(start, end int) {
		for i := start; i < end; i++ {
			a := params[i]
			x := dynamo.Iterate(m, x0, a, transient)
			exps[i] = LyapunovExponent(m, GenerateOrbit(m, x, a, samples), a)
		}
	})

	return params, exps
}
