package viewstate_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/config"
	"github.com/san-kum/logimap/internal/dynamo"
	"github.com/san-kum/logimap/internal/viewstate"
)

type recorder struct {
	seen []*viewstate.Views
}

func (r *recorder) Render(v *viewstate.Views) { r.seen = append(r.seen, v) }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Bifurcation.AMin = 2.8
	cfg.Bifurcation.AMax = 3.6
	cfg.Bifurcation.AStep = 0.01
	cfg.Bifurcation.Samples = 64
	return cfg
}

var _ = Describe("Controller", func() {
	var (
		ctrl *viewstate.Controller
		rec  *recorder
	)

	BeforeEach(func() {
		rec = &recorder{}
		var err error
		ctrl, err = viewstate.New(testConfig(), viewstate.WithRenderer(rec))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		It("builds the initial snapshot from the configured controls", func() {
			v := ctrl.Views()
			Expect(v.Param).To(BeZero())
			Expect(v.Start).To(BeZero())
			Expect(v.Curve).To(HaveLen(1000))
			Expect(v.Cobweb).To(HaveLen(21))
			Expect(v.Orbit).To(HaveLen(51))
			Expect(v.Ranges.AlwaysDefined).To(BeTrue())
		})

		It("does not notify renderers for the initial snapshot", func() {
			Expect(rec.seen).To(BeEmpty())
		})

		It("runs the bifurcation scan once", func() {
			b := ctrl.Bifurcations()
			Expect(b.Points).To(HaveLen(3))
			Expect(b.Points[0].Unique).To(Equal(2))
			Expect(b.Cloud).NotTo(BeEmpty())
		})

		It("rejects an invalid configuration", func() {
			cfg := testConfig()
			cfg.Ranges.Step = 0
			_, err := viewstate.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("falls back to the default configuration", func() {
			c, err := viewstate.New(nil, viewstate.WithBifurcations(analysis.Bifurcations{}))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Views().Curve).To(HaveLen(config.DefaultGraphPoints))
		})
	})

	Describe("SetParameter", func() {
		It("recomputes every a-dependent view and notifies once", func() {
			v := ctrl.SetParameter(2)

			Expect(rec.seen).To(HaveLen(1))
			Expect(rec.seen[0]).To(BeIdenticalTo(v))
			Expect(ctrl.Views()).To(BeIdenticalTo(v))

			Expect(v.Param).To(Equal(2.0))
			Expect(v.Curve[0].Y).To(Equal(2 * -5.0 * 6.0))
			Expect(v.Cobweb).To(HaveLen(21))
			Expect(v.Ranges.AlwaysDefined).To(BeFalse())
			Expect(v.Ranges.Defined).To(HaveLen(1))
			Expect(v.Ranges.Defined[0].Lo).To(BeNumerically("~", 0, 1e-9))
			Expect(v.Ranges.Defined[0].Hi).To(BeNumerically("~", 1.05, 1e-9))
		})

		It("snaps near-zero values to zero", func() {
			v := ctrl.SetParameter(0.005)
			Expect(v.Param).To(BeZero())
			Expect(v.Ranges.AlwaysDefined).To(BeTrue())

			v = ctrl.SetParameter(-0.004)
			Expect(v.Param).To(BeZero())
		})

		It("keeps values at or above the precision", func() {
			Expect(ctrl.SetParameter(0.01).Param).To(Equal(0.01))
		})

		It("leaves earlier snapshots untouched", func() {
			first := ctrl.SetParameter(3.2)
			ctrl.SetParameter(3.9)

			Expect(first.Param).To(Equal(3.2))
			Expect(first.Curve[0].Y).To(Equal(3.2 * -5.0 * 6.0))
		})

		It("ignores non-finite values", func() {
			before := ctrl.SetParameter(3)
			Expect(ctrl.SetParameter(math.NaN())).To(BeIdenticalTo(before))
			Expect(ctrl.SetParameter(math.Inf(1))).To(BeIdenticalTo(before))
			Expect(rec.seen).To(HaveLen(1))
		})

		It("never recomputes the bifurcation scan", func() {
			before := ctrl.Bifurcations()
			ctrl.SetParameter(3.7)
			ctrl.SetStartingPoint(0.4)
			Expect(ctrl.Bifurcations()).To(Equal(before))
		})

		It("tracks the Lyapunov exponent of the orbit", func() {
			ctrl.SetStartingPoint(0.2)
			Expect(ctrl.SetParameter(2.8).Lyapunov).To(BeNumerically("<", 0))
			Expect(ctrl.SetParameter(3.9).Lyapunov).To(BeNumerically(">", 0))
		})
	})

	Describe("SetStartingPoint", func() {
		BeforeEach(func() {
			ctrl.SetParameter(3.2)
		})

		It("recomputes the cobweb and orbit only", func() {
			prev := ctrl.Views()
			v := ctrl.SetStartingPoint(0.5)

			Expect(v.Start).To(Equal(0.5))
			Expect(v.Param).To(Equal(3.2))
			Expect(v.Orbit[0]).To(Equal(0.5))
			Expect(v.Orbit[1]).To(BeNumerically("~", 0.8, 1e-12))
			Expect(v.Cobweb[0].From).To(Equal(dynamo.Point{X: 0.5, Y: 0}))

			Expect(&v.Curve[0]).To(BeIdenticalTo(&prev.Curve[0]))
			Expect(&v.Ranges.Defined[0]).To(BeIdenticalTo(&prev.Ranges.Defined[0]))
			Expect(rec.seen).To(HaveLen(2))
		})

		It("keeps diverging orbits", func() {
			v := ctrl.SetStartingPoint(3)
			Expect(analysis.EscapeIndex(v.Orbit)).To(BeNumerically(">", 0))
		})
	})

	Describe("parameter sweep axis", func() {
		It("recomputes the defined ranges when x0 changes", func() {
			cfg := testConfig()
			cfg.Ranges.Axis = analysis.SweepParameter
			c, err := viewstate.New(cfg, viewstate.WithBifurcations(analysis.Bifurcations{}))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Views().Ranges.AlwaysDefined).To(BeTrue())

			v := c.SetStartingPoint(0.5)
			Expect(v.Ranges.Defined).To(HaveLen(1))
			Expect(v.Ranges.Defined[0].Lo).To(BeNumerically("~", -2, 1e-9))
			Expect(v.Ranges.Defined[0].Hi).To(BeNumerically("~", 4.05, 1e-9))

			Expect(&c.SetParameter(3).Ranges.Defined[0]).To(BeIdenticalTo(&v.Ranges.Defined[0]))
		})
	})

	Describe("Probe", func() {
		It("evaluates the map at the current parameter", func() {
			ctrl.SetParameter(3)
			Expect(ctrl.Probe(0.5)).To(Equal(dynamo.Point{X: 0.5, Y: 0.75}))
		})
	})

	Describe("options", func() {
		It("accepts a custom map and late renderers", func() {
			doubling := dynamo.MapFunc(func(x, a float64) float64 { return a * x })
			c, err := viewstate.New(testConfig(),
				viewstate.WithMap(doubling),
				viewstate.WithBifurcations(analysis.Bifurcations{}),
			)
			Expect(err).NotTo(HaveOccurred())

			calls := 0
			c.AddRenderer(viewstate.RendererFunc(func(*viewstate.Views) { calls++ }))

			v := c.SetParameter(2)
			Expect(calls).To(Equal(1))
			Expect(c.Probe(3)).To(Equal(dynamo.Point{X: 3, Y: 6}))
			Expect(v.Orbit[0:2]).To(Equal(dynamo.Series{0, 0}))
		})
	})
})
