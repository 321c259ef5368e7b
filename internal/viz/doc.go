// Package viz draws the logistic-map views in the terminal.
//
// [Canvas] is a braille pixel grid onto which cobweb paths, curves and the
// bifurcation cloud are projected through a [Viewport]. [Model] is the
// Bubble Tea explorer built on top of a viewstate.Controller.
//
// # Key Bindings
//
//	←/→ h/l - Decrease/increase a
//	↑/↓ k/j - Move the starting point x0
//	[ ]     - Shrink/grow the key step
//	Tab     - Cycle cobweb, orbit and bifurcation views
//	e x p   - Enter a, x0 or a probe point exactly
//	s       - Save a snapshot
//	t       - Cycle color themes
//	q       - Quit
package viz
