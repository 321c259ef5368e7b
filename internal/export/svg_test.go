package export

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/dynamo"
	"github.com/san-kum/logimap/internal/viewstate"
	"github.com/san-kum/logimap/internal/viz"
)

func TestCobwebSVG(t *testing.T) {
	ctrl, err := viewstate.New(nil, viewstate.WithBifurcations(analysis.Bifurcations{}))
	if err != nil {
		t.Fatal(err)
	}
	v := ctrl.SetParameter(3.2)

	var buf bytes.Buffer
	if err := CobwebSVG(&buf, v, viz.Square(-5, 5), Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("output is not a complete SVG document")
	}
	if n := strings.Count(out, "<path "); n != 3 {
		t.Errorf("expected 3 paths (axes, curve, cobweb), got %d", n)
	}
	if !strings.Contains(out, string(viz.ThemeClassic.Cobweb)) {
		t.Error("cobweb color missing")
	}
	if !strings.Contains(out, `width="600"`) {
		t.Error("default size not applied")
	}
}

func TestCobwebSVGDivergent(t *testing.T) {
	v := &viewstate.Views{
		Cobweb: dynamo.Path{
			{From: dynamo.Point{X: 0.5, Y: 0}, To: dynamo.Point{X: 0.5, Y: 2}},
			{From: dynamo.Point{X: 0.5, Y: 2}, To: dynamo.Point{X: 2, Y: 2}},
			{From: dynamo.Point{X: 2, Y: 2}, To: dynamo.Point{X: 2, Y: math.Inf(-1)}},
			{From: dynamo.Point{X: 40, Y: 40}, To: dynamo.Point{X: 50, Y: 50}},
		},
	}

	var buf bytes.Buffer
	if err := CobwebSVG(&buf, v, viz.Square(-5, 5), Options{Width: 100, Height: 100}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, bad := range []string{"NaN", "Inf"} {
		if strings.Contains(out, bad) {
			t.Errorf("output contains %s", bad)
		}
	}
	// axes and the two visible cobweb segments, no curve
	if n := strings.Count(out, "<path "); n != 2 {
		t.Errorf("expected 2 paths, got %d", n)
	}
	if n := strings.Count(out, "M"); n != 3+2 {
		t.Errorf("expected 5 segments, got %d", n)
	}
}

func TestBifurcationSVG(t *testing.T) {
	b := analysis.Bifurcations{
		Cloud: []dynamo.Point{
			{X: 3.0, Y: 0.6},
			{X: 3.2, Y: 0.5},
			{X: 3.2, Y: 0.8},
			{X: 3.4, Y: math.NaN()},
		},
		Points: []analysis.BifurcationPoint{
			{Param: 3.2, Unique: 2},
			{Param: 9, Unique: 4},
		},
	}

	var buf bytes.Buffer
	if err := BifurcationSVG(&buf, b, Options{Theme: viz.ThemeOcean}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if n := strings.Count(out, "<rect x="); n != 3 {
		t.Errorf("expected 3 cloud points, got %d", n)
	}
	if n := strings.Count(out, "<line "); n != 1 {
		t.Errorf("expected 1 marker inside the cloud, got %d", n)
	}
	if !strings.Contains(out, string(viz.ThemeOcean.Cloud)) {
		t.Error("theme not applied")
	}
}

func TestBifurcationSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := BifurcationSVG(&buf, analysis.Bifurcations{}, Options{}); !errors.Is(err, dynamo.ErrEmptySweep) {
		t.Errorf("expected ErrEmptySweep for an empty cloud, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written on error")
	}
}
