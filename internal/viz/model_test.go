package viz

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/config"
	"github.com/san-kum/logimap/internal/dynamo"
	"github.com/san-kum/logimap/internal/viewstate"
)

type fakeSaver struct {
	calls int
	err   error
}

func (f *fakeSaver) Save(label string, v *viewstate.Views, bif *analysis.Bifurcations) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "snap_1", nil
}

func newTestModel(t *testing.T, opts ...ModelOption) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Parameter.Initial = 3.2
	cfg.StartPoint.Initial = 0.5
	ctrl, err := viewstate.New(cfg, viewstate.WithBifurcations(analysis.Bifurcations{
		Points: []analysis.BifurcationPoint{{Param: 3.0, Unique: 2}},
	}))
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(ctrl, opts...)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestStepFor(t *testing.T) {
	tests := []struct {
		span float64
		want float64
	}{
		{6, 0.01},
		{10, 0.01},
		{100, 0.1},
		{0, 0.01},
	}
	for _, tt := range tests {
		if got := stepFor(tt.span); got != tt.want {
			t.Errorf("stepFor(%v) = %v, want %v", tt.span, got, tt.want)
		}
	}
}

func TestModelArrowKeys(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "right", "right")
	if got := m.ctrl.Param(); got < 3.2199 || got > 3.2201 {
		t.Errorf("a = %v after two steps right, want 3.22", got)
	}

	m = press(m, "up")
	if got := m.ctrl.Start(); got < 0.5099 || got > 0.5101 {
		t.Errorf("x0 = %v after one step up, want 0.51", got)
	}

	m = press(m, "]", "left")
	if got := m.ctrl.Param(); got < 3.1199 || got > 3.1201 {
		t.Errorf("a = %v after a coarse step left, want 3.12", got)
	}
}

func TestModelClampsToSliderRange(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "e")
	m.input.SetValue("100")
	m = press(m, "enter")

	if got := m.ctrl.Param(); got != config.DefaultParamMax {
		t.Errorf("a = %v, want clamp to %v", got, config.DefaultParamMax)
	}
}

func TestModelExactEntry(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "x")
	if m.editing != editStart {
		t.Fatalf("expected start editing, got %v", m.editing)
	}
	m.input.SetValue("0.25")
	m = press(m, "enter")
	if m.ctrl.Start() != 0.25 {
		t.Errorf("x0 = %v, want 0.25", m.ctrl.Start())
	}
	if m.editing != editNone {
		t.Error("enter should leave edit mode")
	}

	m = press(m, "e")
	m.input.SetValue("abc")
	m = press(m, "enter")
	if m.statusOK || !strings.Contains(m.status, "not a number") {
		t.Errorf("unexpected status %q", m.status)
	}
	if m.ctrl.Param() != 3.2 {
		t.Error("invalid input changed a")
	}

	m = press(m, "e")
	m.input.SetValue("1")
	m = press(m, "esc")
	if m.ctrl.Param() != 3.2 {
		t.Error("escape should discard the input")
	}
}

func TestModelProbe(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "p")
	m.input.SetValue("0.5")
	m = press(m, "enter")

	if m.probe == nil {
		t.Fatal("expected a probe point")
	}
	if m.probe.X != 0.5 || m.probe.Y != 3.2*0.5*0.5 {
		t.Errorf("probe = %v", *m.probe)
	}
	if !strings.Contains(m.View(), "(0.50, 0.80)") {
		t.Error("probe not shown in the view")
	}

	m = press(m, "right")
	if m.probe != nil {
		t.Error("changing a should clear the probe")
	}
}

func TestModelSave(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "s")
	if m.statusOK || m.status != "saving disabled" {
		t.Errorf("unexpected status %q", m.status)
	}

	saver := &fakeSaver{}
	m = newTestModel(t, WithSaver(saver))
	m = press(m, "s")
	if saver.calls != 1 || !m.statusOK || m.status != "saved snap_1" {
		t.Errorf("save: calls=%d status=%q", saver.calls, m.status)
	}

	saver.err = errors.New("disk full")
	m = press(m, "s")
	if m.statusOK || !strings.Contains(m.status, "disk full") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestModelPanelsAndThemes(t *testing.T) {
	m := newTestModel(t, WithTheme("ocean"))
	if Themes[m.theme].Name != "ocean" {
		t.Fatalf("theme = %s, want ocean", Themes[m.theme].Name)
	}

	for i := 0; i < len(panelNames); i++ {
		if view := m.View(); view == "" {
			t.Errorf("panel %s rendered nothing", panelNames[m.panel])
		}
		m = press(m, "tab")
	}
	if m.panel != panelCobweb {
		t.Errorf("tab should cycle back to the cobweb, got %v", m.panel)
	}

	m = press(m, "t")
	if Themes[m.theme].Name != ThemeClassic.Name {
		t.Errorf("theme should wrap around, got %s", Themes[m.theme].Name)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewShowsRanges(t *testing.T) {
	m := newTestModel(t)
	view := m.View()
	for _, want := range []string{"defined", "[0.00, 1.05]", "3.000 (2)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q", want)
		}
	}
}

func TestWrapList(t *testing.T) {
	got := wrapList([]string{"[0.00, 1.05]", "[2.00, 3.00]", "[4.00, 5.00]"}, 26)
	want := "[0.00, 1.05] [2.00, 3.00]\n[4.00, 5.00]"
	if got != want {
		t.Errorf("wrapList = %q, want %q", got, want)
	}
}

func TestBifurcationASCII(t *testing.T) {
	if BifurcationASCII(analysis.Bifurcations{}, 10, 5) != "" {
		t.Error("empty scan should render nothing")
	}

	b := analysis.ScanBifurcations(nil, analysis.BifurcationScan{})
	if BifurcationASCII(b, 10, 5) != "" {
		t.Error("empty sweep should render nothing")
	}
}

func TestOrbitChartDivergent(t *testing.T) {
	orbit := dynamo.Series{0.2, 0.64, 0.92, -3, math.Inf(-1), math.Inf(-1)}
	if OrbitChart(orbit, 20, 5, "x") == "" {
		t.Error("the finite prefix should still plot")
	}

	if OrbitChart(dynamo.Series{math.Inf(1)}, 20, 5, "x") != "" {
		t.Error("an orbit with no finite prefix should render nothing")
	}
}

func TestDescribeRanges(t *testing.T) {
	d, u := DescribeRanges(analysis.Ranges{AlwaysDefined: true})
	if d != "always" || u != "none" {
		t.Errorf("always defined = %q / %q", d, u)
	}

	r := analysis.AnalyzeDefinedRanges(dynamo.Logistic{}, analysis.RangeScan{
		Start: -5, End: 5, Step: 0.05, Held: 2,
	})
	d, u = DescribeRanges(r)
	if d != "[0.00, 1.05]" {
		t.Errorf("defined = %q", d)
	}
	if !strings.HasPrefix(u, "[-Inf, 0.00]") {
		t.Errorf("undefined = %q", u)
	}
}
