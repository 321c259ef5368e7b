// Package export renders cobweb and bifurcation diagrams as SVG.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/dynamo"
	"github.com/san-kum/logimap/internal/viewstate"
	"github.com/san-kum/logimap/internal/viz"
)

// Options controls the size and colors of an SVG plot.
type Options struct {
	Width  int
	Height int
	Theme  viz.Theme
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 600
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.Theme.Name == "" {
		o.Theme = viz.ThemeClassic
	}
	return o
}

// plot maps world coordinates in vp onto an SVG of the given size.
type plot struct {
	w    *bufio.Writer
	vp   viz.Viewport
	opts Options
}

func newPlot(w io.Writer, vp viz.Viewport, opts Options) *plot {
	return &plot{w: bufio.NewWriter(w), vp: vp, opts: opts}
}

func (p *plot) xy(pt dynamo.Point) (float64, float64) {
	x := (pt.X - p.vp.XMin) / (p.vp.XMax - p.vp.XMin) * float64(p.opts.Width)
	y := (p.vp.YMax - pt.Y) / (p.vp.YMax - p.vp.YMin) * float64(p.opts.Height)
	return x, y
}

func (p *plot) header() {
	fmt.Fprintf(p.w, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, p.opts.Width, p.opts.Height, p.opts.Width, p.opts.Height)
}

// path writes the visible parts of segs as one <path>. Nothing is written
// when no segment is visible.
func (p *plot) path(segs dynamo.Path, stroke string, width float64) {
	first := true
	for _, s := range segs {
		s, ok := viz.ClipSegment(p.vp, s)
		if !ok {
			continue
		}
		if first {
			fmt.Fprintf(p.w, `<path fill="none" stroke="%s" stroke-width="%.1f" d="`, stroke, width)
			first = false
		} else {
			p.w.WriteByte(' ')
		}
		x0, y0 := p.xy(s.From)
		x1, y1 := p.xy(s.To)
		fmt.Fprintf(p.w, "M%.2f,%.2f L%.2f,%.2f", x0, y0, x1, y1)
	}
	if !first {
		p.w.WriteString("\"/>\n")
	}
}

func (p *plot) close() error {
	p.w.WriteString("</svg>\n")
	return p.w.Flush()
}

// CobwebSVG writes the axes, curve and cobweb of v clipped to vp.
func CobwebSVG(w io.Writer, v *viewstate.Views, vp viz.Viewport, opts Options) error {
	opts = opts.withDefaults()
	p := newPlot(w, vp, opts)
	p.header()

	curve := make(dynamo.Path, 0, len(v.Curve))
	for i := 0; i+1 < len(v.Curve); i++ {
		curve = append(curve, dynamo.Segment{From: v.Curve[i], To: v.Curve[i+1]})
	}

	p.path(analysis.Axes(vp.XMin, vp.XMax), string(opts.Theme.Axes), 1)
	p.path(curve, string(opts.Theme.Curve), 1.5)
	p.path(v.Cobweb, string(opts.Theme.Cobweb), 1.5)
	return p.close()
}

// BifurcationSVG writes the attractor cloud of b with a dashed marker at every
// detected bifurcation point. The viewport is fitted to the cloud.
func BifurcationSVG(w io.Writer, b analysis.Bifurcations, opts Options) error {
	vp, ok := viz.CloudViewport(b.Cloud)
	if !ok {
		return fmt.Errorf("export: bifurcation cloud: %w", dynamo.ErrEmptySweep)
	}
	opts = opts.withDefaults()
	p := newPlot(w, vp, opts)
	p.header()

	fmt.Fprintf(p.w, "<g fill=\"%s\">\n", opts.Theme.Cloud)
	for _, pt := range b.Cloud {
		if !dynamo.IsFinite(pt.X) || !dynamo.IsFinite(pt.Y) {
			continue
		}
		x, y := p.xy(pt)
		fmt.Fprintf(p.w, `<rect x="%.2f" y="%.2f" width="1" height="1"/>`+"\n", x, y)
	}
	p.w.WriteString("</g>\n")

	for _, bp := range b.Points {
		if bp.Param < vp.XMin || bp.Param > vp.XMax {
			continue
		}
		x, _ := p.xy(dynamo.Point{X: bp.Param})
		fmt.Fprintf(p.w, `<line x1="%.2f" y1="0" x2="%.2f" y2="%d" stroke="%s" stroke-dasharray="4 4"/>`+"\n",
			x, x, opts.Height, opts.Theme.Accent)
	}
	return p.close()
}
