package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/dynamo"
	"github.com/san-kum/logimap/internal/viewstate"
)

// Merge ORs same-sized canvases into a new one.
func Merge(canvases ...*Canvas) *Canvas {
	if len(canvases) == 0 {
		return NewCanvas(0, 0)
	}
	out := NewCanvas(canvases[0].Width, canvases[0].Height)
	for _, c := range canvases {
		for row := range out.Grid {
			for col := range out.Grid[row] {
				out.Grid[row][col] |= c.Grid[row][col]
			}
		}
	}
	return out
}

// cobwebCanvases draws the reference axes, the curve and the cobweb of v on
// separate canvases so they can be colored independently.
func cobwebCanvases(v *viewstate.Views, vp Viewport, w, h int) (axes, curve, cobweb *Canvas) {
	axes, curve, cobweb = NewCanvas(w, h), NewCanvas(w, h), NewCanvas(w, h)
	axes.Path(vp, analysis.Axes(vp.XMin, vp.XMax))
	curve.Polyline(vp, v.Curve)
	cobweb.Polyline(vp, v.Cobweb.Polyline())
	return axes, curve, cobweb
}

// CobwebASCII renders the cobweb diagram of v as plain braille text.
func CobwebASCII(v *viewstate.Views, vp Viewport, w, h int) string {
	return Merge(cobwebCanvases(v, vp, w, h)).String()
}

// CloudViewport bounds the finite cloud points. The y range is padded when
// the cloud is flat. ok is false for an empty cloud.
func CloudViewport(cloud []dynamo.Point) (vp Viewport, ok bool) {
	first := true
	for _, p := range cloud {
		if !dynamo.IsFinite(p.X) || !dynamo.IsFinite(p.Y) {
			continue
		}
		if first {
			vp = Viewport{XMin: p.X, XMax: p.X, YMin: p.Y, YMax: p.Y}
			first = false
			continue
		}
		vp.XMin = math.Min(vp.XMin, p.X)
		vp.XMax = math.Max(vp.XMax, p.X)
		vp.YMin = math.Min(vp.YMin, p.Y)
		vp.YMax = math.Max(vp.YMax, p.Y)
	}
	if first {
		return vp, false
	}
	if vp.XMax == vp.XMin {
		vp.XMax = vp.XMin + 1
	}
	if vp.YMax == vp.YMin {
		vp.YMin -= 0.5
		vp.YMax += 0.5
	}
	return vp, true
}

// bifurcationCanvases draws the attractor cloud and a dotted vertical marker
// at each detected bifurcation point.
func bifurcationCanvases(b analysis.Bifurcations, vp Viewport, w, h int) (cloud, markers *Canvas) {
	cloud, markers = NewCanvas(w, h), NewCanvas(w, h)
	for _, p := range b.Cloud {
		cloud.Point(vp, p)
	}

	_, dh := markers.dots()
	for _, bp := range b.Points {
		if bp.Param < vp.XMin || bp.Param > vp.XMax {
			continue
		}
		x, _ := markers.project(vp, bp.Param, vp.YMin)
		for y := 0; y < dh; y += 3 {
			markers.Set(x, y)
		}
	}
	return cloud, markers
}

// BifurcationASCII renders the bifurcation cloud as plain braille text, or
// "" if there is nothing to plot.
func BifurcationASCII(b analysis.Bifurcations, w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	vp, ok := CloudViewport(b.Cloud)
	if !ok {
		return ""
	}
	return Merge(bifurcationCanvases(b, vp, w, h)).String()
}

// OrbitChart plots the finite prefix of an orbit with asciigraph.
func OrbitChart(orbit dynamo.Series, w, h int, caption string) string {
	finite := orbit
	if idx := analysis.EscapeIndex(orbit); idx >= 0 {
		finite = orbit[:idx]
	}
	if len(finite) == 0 {
		return ""
	}
	return asciigraph.Plot(finite,
		asciigraph.Height(h),
		asciigraph.Width(w),
		asciigraph.Caption(caption),
	)
}

func intervalStrings(ivs []dynamo.Interval) []string {
	if len(ivs) == 0 {
		return []string{"none"}
	}
	out := make([]string, len(ivs))
	for i, iv := range ivs {
		out[i] = iv.String()
	}
	return out
}

// FormatIntervals joins intervals as "[lo, hi] [lo, hi]".
func FormatIntervals(ivs []dynamo.Interval) string {
	return strings.Join(intervalStrings(ivs), " ")
}

// DescribeRanges summarizes a defined-range result in one line per list.
func DescribeRanges(r analysis.Ranges) (defined, undefined string) {
	switch {
	case r.AlwaysDefined:
		return "always", "none"
	case !r.Paired():
		return "unpaired boundaries", "unpaired boundaries"
	}
	return FormatIntervals(r.Defined), FormatIntervals(r.Undefined)
}

func bifurcationStrings(points []analysis.BifurcationPoint) []string {
	if len(points) == 0 {
		return []string{"none"}
	}
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = fmt.Sprintf("%.3f (%d)", p.Param, p.Unique)
	}
	return out
}

// FormatBifurcations lists bifurcation points as "a (n)".
func FormatBifurcations(points []analysis.BifurcationPoint) string {
	return strings.Join(bifurcationStrings(points), ", ")
}
