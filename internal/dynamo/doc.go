// Package dynamo provides core primitives for one-dimensional discrete maps.
//
// The package defines the fundamental types shared by every analysis and
// rendering component:
//
//   - [Map]: interface for a parameterised map x -> f(x, a)
//   - [Logistic]: the logistic map f(x, a) = a·x·(1−x)
//   - [Point], [Segment], [Path]: geometry handed to renderers
//   - [Interval]: closed-open range on a swept axis
//   - [Iterate]: bounded repeated application of a map
//
// # Example
//
//	var m dynamo.Logistic
//	y := m.Evaluate(0.5, 2.0) // 0.5, a fixed point
//	z := dynamo.Iterate(m, 0.2, 3.9, 50)
//	if !dynamo.IsFinite(z) {
//	    // orbit escaped to infinity
//	}
//
// # Numeric model
//
// Every evaluation uses IEEE-754 float64 arithmetic. Overflow to ±Inf and NaN
// are ordinary values: downstream code treats them as "diverged", never as
// errors.
package dynamo
