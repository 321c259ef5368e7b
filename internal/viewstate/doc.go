// Package viewstate keeps the interactive views of a one-dimensional map
// consistent with its two live controls, the parameter a and the starting
// point x0.
//
// A Controller recomputes the curve, cobweb, orbit and defined ranges when a
// changes, and only the cobweb and orbit when x0 changes. Each change
// publishes a new immutable Views snapshot to the registered Renderers. The
// bifurcation scan runs once per Controller.
package viewstate
