package viewstate

import (
	"fmt"
	"math"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/config"
	"github.com/san-kum/logimap/internal/dynamo"
)

// Views is one consistent snapshot of everything derived from (a, x0).
// A snapshot is never modified after it is published.
type Views struct {
	Param    float64         `json:"a"`
	Start    float64         `json:"x0"`
	Curve    []dynamo.Point  `json:"curve"`
	Cobweb   dynamo.Path     `json:"cobweb"`
	Orbit    dynamo.Series   `json:"orbit"`
	Ranges   analysis.Ranges `json:"ranges"`
	Lyapunov float64         `json:"lyapunov"`
}

// Renderer consumes snapshots. Render is called synchronously after every
// control change.
type Renderer interface {
	Render(v *Views)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(v *Views)

func (f RendererFunc) Render(v *Views) { f(v) }

type Option func(*Controller)

// WithMap replaces the logistic map.
func WithMap(m dynamo.Map) Option {
	return func(c *Controller) { c.m = m }
}

func WithRenderer(r Renderer) Option {
	return func(c *Controller) { c.renderers = append(c.renderers, r) }
}

// WithBifurcations installs a precomputed scan so New skips the sweep.
func WithBifurcations(b analysis.Bifurcations) Option {
	return func(c *Controller) { c.bif = &b }
}

// Controller owns the two live controls and the views derived from them.
//
// The bifurcation scan is computed once in New and never recomputed. A
// Controller is not safe for concurrent use; callers that share one must
// serialize access.
type Controller struct {
	cfg       *config.Config
	m         dynamo.Map
	renderers []Renderer

	views *Views
	bif   *analysis.Bifurcations
}

// New validates cfg, runs the bifurcation scan and builds the initial
// snapshot from the configured starting controls. Renderers are not
// notified for the initial snapshot.
func New(cfg *config.Config, opts ...Option) (*Controller, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("viewstate: %w", err)
	}

	c := &Controller{
		cfg: cfg.Clone(),
		m:   dynamo.Logistic{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.bif == nil {
		b := analysis.ScanBifurcations(c.m, c.cfg.BifurcationScan())
		c.bif = &b
	}

	a := c.clampParam(c.cfg.Parameter.Initial)
	c.views = c.build(a, c.cfg.StartPoint.Initial, nil)
	return c, nil
}

// AddRenderer registers r for subsequent changes.
func (c *Controller) AddRenderer(r Renderer) {
	c.renderers = append(c.renderers, r)
}

func (c *Controller) Config() *config.Config { return c.cfg.Clone() }

func (c *Controller) Map() dynamo.Map { return c.m }

func (c *Controller) Param() float64 { return c.views.Param }

func (c *Controller) Start() float64 { return c.views.Start }

// Views returns the current snapshot.
func (c *Controller) Views() *Views { return c.views }

// Bifurcations returns the session's scan result.
func (c *Controller) Bifurcations() analysis.Bifurcations { return *c.bif }

// SetParameter moves a, rebuilds every view and notifies renderers. Values
// with |a| below the configured precision snap to 0. Non-finite values are
// ignored and the current snapshot is returned.
func (c *Controller) SetParameter(a float64) *Views {
	if !dynamo.IsFinite(a) {
		return c.views
	}
	c.views = c.build(c.clampParam(a), c.views.Start, c.views)
	c.notify()
	return c.views
}

// SetStartingPoint moves x0 and rebuilds the cobweb and orbit. The curve is
// carried over, and so are the defined ranges unless the configured scan
// sweeps a while holding x0.
func (c *Controller) SetStartingPoint(x0 float64) *Views {
	if !dynamo.IsFinite(x0) {
		return c.views
	}
	c.views = c.build(c.views.Param, x0, c.views)
	c.notify()
	return c.views
}

// Probe evaluates the map at x for the current a.
func (c *Controller) Probe(x float64) dynamo.Point {
	return dynamo.Point{X: x, Y: c.m.Evaluate(x, c.views.Param)}
}

func (c *Controller) clampParam(a float64) float64 {
	if math.Abs(a) < c.cfg.Parameter.Precision {
		return 0
	}
	return a
}

// build computes a fresh snapshot, reusing the views of prev whose inputs
// did not change.
func (c *Controller) build(a, x0 float64, prev *Views) *Views {
	v := &Views{Param: a, Start: x0}

	if prev != nil && prev.Param == a {
		v.Curve = prev.Curve
	} else {
		g := c.cfg.Graph
		v.Curve = analysis.SampleCurve(c.m, a, g.Start, g.End, g.Points)
	}

	held := c.rangeHeld(a, x0)
	if prev != nil && c.rangeHeld(prev.Param, prev.Start) == held {
		v.Ranges = prev.Ranges
	} else {
		v.Ranges = analysis.AnalyzeDefinedRanges(c.m, c.cfg.RangeScan(held))
	}

	v.Cobweb = analysis.Trace(c.m, x0, a, c.cfg.Cobweb.Steps)
	v.Orbit = analysis.GenerateOrbit(c.m, x0, a, c.cfg.Orbit.Steps)
	v.Lyapunov = analysis.LyapunovExponent(c.m, v.Orbit, a)
	return v
}

// rangeHeld is the value the defined-range scan holds fixed.
func (c *Controller) rangeHeld(a, x0 float64) float64 {
	if c.cfg.Ranges.Axis == analysis.SweepParameter {
		return x0
	}
	return a
}

func (c *Controller) notify() {
	for _, r := range c.renderers {
		r.Render(c.views)
	}
}
