// Package analysis computes the derived views of a one-dimensional map.
//
// Every function is pure: it takes a [dynamo.Map] plus plain parameters and
// returns a freshly allocated result, so callers may cache and share results
// without copying.
//
//   - [Trace]: cobweb (graphical iteration) path between curve and diagonal
//   - [GenerateOrbit]: orbit time series x0, f(x0), f(f(x0)), ...
//   - [SampleCurve]: the function graph over a window
//   - [AnalyzeDefinedRanges]: finite/divergent intervals along a swept axis
//   - [ScanBifurcations]: bifurcation cloud and period-doubling points
//   - [LyapunovExponent]: average log-stretching along an orbit
//
// # Chaos Detection
//
// A positive Lyapunov exponent indicates chaotic dynamics:
//
//	orbit := analysis.GenerateOrbit(dynamo.Logistic{}, 0.2, 3.9, 1000)
//	if analysis.LyapunovExponent(dynamo.Logistic{}, orbit, 3.9) > 0 {
//	    // chaotic
//	}
package analysis
