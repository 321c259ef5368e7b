package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/config"
	"github.com/san-kum/logimap/internal/dynamo"
	"github.com/san-kum/logimap/internal/viewstate"
)

const (
	canvasWidth  = 60
	canvasHeight = 24
)

type panel int

const (
	panelCobweb panel = iota
	panelOrbit
	panelBifurcation
)

var panelNames = []string{"cobweb", "orbit", "bifurcation"}

type editTarget int

const (
	editNone editTarget = iota
	editParam
	editStart
	editProbe
)

func (e editTarget) prompt() string {
	switch e {
	case editParam:
		return "a = "
	case editStart:
		return "x0 = "
	default:
		return "probe x = "
	}
}

// Saver persists the current snapshot and returns its ID.
type Saver interface {
	Save(label string, v *viewstate.Views, bif *analysis.Bifurcations) (string, error)
}

// Model is the interactive explorer. It drives a viewstate.Controller with
// the keyboard and draws the current snapshot.
type Model struct {
	ctrl  *viewstate.Controller
	cfg   *config.Config
	saver Saver

	panel    panel
	theme    int
	styles   styles
	aStep    float64
	xStep    float64
	editing  editTarget
	input    textinput.Model
	probe    *dynamo.Point
	status   string
	statusOK bool
	showHelp bool
}

type ModelOption func(*Model)

// WithSaver enables the save key.
func WithSaver(s Saver) ModelOption {
	return func(m *Model) { m.saver = s }
}

func WithTheme(name string) ModelOption {
	return func(m *Model) {
		m.theme = themeIndex(name)
		m.styles = newStyles(Themes[m.theme])
	}
}

func NewModel(ctrl *viewstate.Controller, opts ...ModelOption) Model {
	ti := textinput.New()
	ti.Placeholder = "value"
	ti.CharLimit = 24
	ti.Width = 16

	cfg := ctrl.Config()
	m := Model{
		ctrl:   ctrl,
		cfg:    cfg,
		styles: newStyles(Themes[0]),
		aStep:  stepFor(cfg.Parameter.Max - cfg.Parameter.Min),
		xStep:  stepFor(cfg.StartPoint.Max - cfg.StartPoint.Min),
		input:  ti,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// stepFor picks a key step of about 1/200 of a slider span.
func stepFor(span float64) float64 {
	if span <= 0 {
		return 0.01
	}
	return math.Pow(10, math.Floor(math.Log10(span/200)))
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles input events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editing != editNone {
		return m.updateInput(key)
	}

	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.setParam(m.ctrl.Param() - m.aStep)
	case "right", "l":
		m.setParam(m.ctrl.Param() + m.aStep)
	case "up", "k":
		m.setStart(m.ctrl.Start() + m.xStep)
	case "down", "j":
		m.setStart(m.ctrl.Start() - m.xStep)
	case "]":
		m.aStep *= 10
		m.xStep *= 10
	case "[":
		m.aStep /= 10
		m.xStep /= 10
	case "tab":
		m.panel = (m.panel + 1) % panel(len(panelNames))
	case "e", "a":
		return m.startInput(editParam, m.ctrl.Param())
	case "x":
		return m.startInput(editStart, m.ctrl.Start())
	case "p":
		return m.startInput(editProbe, m.ctrl.Start())
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
		m.styles = newStyles(Themes[m.theme])
	case "s":
		m.save()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) startInput(target editTarget, current float64) (tea.Model, tea.Cmd) {
	m.editing = target
	m.input.Prompt = target.prompt()
	m.input.SetValue(strconv.FormatFloat(current, 'g', 6, 64))
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

func (m Model) updateInput(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.editing = editNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		target := m.editing
		m.editing = editNone
		m.input.Blur()

		v, err := strconv.ParseFloat(strings.TrimSpace(m.input.Value()), 64)
		if err != nil || !dynamo.IsFinite(v) {
			m.setStatus(fmt.Sprintf("not a number: %q", m.input.Value()), false)
			return m, nil
		}
		switch target {
		case editParam:
			m.setParam(v)
		case editStart:
			m.setStart(v)
		case editProbe:
			p := m.ctrl.Probe(v)
			m.probe = &p
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

// setParam clamps a to the configured slider range.
func (m *Model) setParam(a float64) {
	a = math.Max(m.cfg.Parameter.Min, math.Min(m.cfg.Parameter.Max, a))
	m.ctrl.SetParameter(a)
	m.probe = nil
}

func (m *Model) setStart(x0 float64) {
	x0 = math.Max(m.cfg.StartPoint.Min, math.Min(m.cfg.StartPoint.Max, x0))
	m.ctrl.SetStartingPoint(x0)
}

func (m *Model) save() {
	if m.saver == nil {
		m.setStatus("saving disabled", false)
		return
	}
	bif := m.ctrl.Bifurcations()
	id, err := m.saver.Save("tui", m.ctrl.Views(), &bif)
	if err != nil {
		m.setStatus("save failed: "+err.Error(), false)
		return
	}
	m.setStatus("saved "+id, true)
}

func (m *Model) setStatus(s string, ok bool) {
	m.status, m.statusOK = s, ok
}

// View renders the TUI interface.
func (m Model) View() string {
	v := m.ctrl.Views()
	st := m.styles

	var plot string
	switch m.panel {
	case panelOrbit:
		plot = OrbitChart(v.Orbit, canvasWidth*2-10, canvasHeight-2, "x_n")
		if plot == "" {
			plot = st.errText.Render("orbit diverges immediately")
		}
	case panelBifurcation:
		plot = m.bifurcationView()
	default:
		plot = m.cobwebView(v)
	}

	var s strings.Builder
	s.WriteString(st.header.Render("f(x) = a·x·(1−x)") + "\n")
	s.WriteString(st.tabs(panelNames, int(m.panel)) + "\n\n")

	s.WriteString(st.row("a", fmt.Sprintf("%.4f", v.Param)))
	s.WriteString(st.row("x0", fmt.Sprintf("%.4f", v.Start)))
	s.WriteString(st.row("step", fmt.Sprintf("%g / %g", m.aStep, m.xStep)))
	s.WriteString(st.row("λ", fmt.Sprintf("%.4f", v.Lyapunov)))
	if idx := analysis.EscapeIndex(v.Orbit); idx >= 0 {
		s.WriteString(st.row("escape", st.errText.Render(fmt.Sprintf("step %d", idx))))
	} else {
		s.WriteString(st.row("x_n", fmt.Sprintf("%.4f", v.Orbit[len(v.Orbit)-1])))
	}
	if m.probe != nil {
		s.WriteString(st.row("probe", st.accent.Render(fmt.Sprintf("(%.2f, %.2f)", m.probe.X, m.probe.Y))))
	}

	s.WriteString("\n" + st.separator(38) + "\n")
	s.WriteString(m.rangesView(v.Ranges))

	b := m.ctrl.Bifurcations()
	s.WriteString("\n" + st.separator(38) + "\n")
	s.WriteString(st.muted.Render("bifurcations") + "\n" + wrapList(bifurcationStrings(b.Points), 38) + "\n")
	if ratios := analysis.FeigenbaumRatios(b.Points); len(ratios) > 0 {
		s.WriteString(st.row("δ", fmt.Sprintf("%.3f", ratios[len(ratios)-1])))
	}

	if m.editing != editNone {
		s.WriteString("\n" + m.input.View() + "\n")
	} else if m.status != "" {
		style := st.errText
		if m.statusOK {
			style = st.accent
		}
		s.WriteString("\n" + style.Render(m.status) + "\n")
	}

	s.WriteString(st.keyHint.Render("←→:a ↑↓:x0 []:step Tab:view\ne:a x:x0 p:probe s:save t:theme q:quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(plot),
		st.panel.Render(s.String()),
	)
	if m.showHelp {
		return helpText + "\n\n" + main
	}
	return main
}

func (m Model) cobwebView(v *viewstate.Views) string {
	vp := Square(m.cfg.Graph.Start, m.cfg.Graph.End)
	axes, curve, cobweb := cobwebCanvases(v, vp, canvasWidth, canvasHeight)

	layers := []Layer{
		{Canvas: axes, Style: m.styles.axes},
		{Canvas: curve, Style: m.styles.curve},
		{Canvas: cobweb, Style: m.styles.cobweb},
	}
	if m.probe != nil {
		mark := NewCanvas(canvasWidth, canvasHeight)
		mark.Point(vp, *m.probe)
		layers = append(layers, Layer{Canvas: mark, Style: m.styles.accent})
	}
	return Compose(layers...)
}

func (m Model) bifurcationView() string {
	b := m.ctrl.Bifurcations()
	vp, ok := CloudViewport(b.Cloud)
	if !ok {
		return m.styles.errText.Render("empty bifurcation scan")
	}
	cloud, markers := bifurcationCanvases(b, vp, canvasWidth, canvasHeight)

	// cursor line at the current a
	cursor := NewCanvas(canvasWidth, canvasHeight)
	if a := m.ctrl.Param(); a >= vp.XMin && a <= vp.XMax {
		cursor.Segment(vp, dynamo.Segment{
			From: dynamo.Point{X: a, Y: vp.YMin},
			To:   dynamo.Point{X: a, Y: vp.YMax},
		})
	}

	axis := m.styles.muted.Render(fmt.Sprintf("a ∈ [%.3f, %.3f]  x ∈ [%.3f, %.3f]", vp.XMin, vp.XMax, vp.YMin, vp.YMax))
	return Compose(
		Layer{Canvas: cloud, Style: m.styles.cloud},
		Layer{Canvas: markers, Style: m.styles.axes},
		Layer{Canvas: cursor, Style: m.styles.cobweb},
	) + axis
}

func (m Model) rangesView(r analysis.Ranges) string {
	var defined, undefined []string
	switch {
	case r.AlwaysDefined:
		defined, undefined = []string{"always"}, []string{"none"}
	case !r.Paired():
		defined = []string{"unpaired boundaries"}
		undefined = defined
	default:
		defined, undefined = intervalStrings(r.Defined), intervalStrings(r.Undefined)
	}

	st := m.styles
	return st.muted.Render("defined") + "\n" + wrapList(defined, 38) + "\n" +
		st.muted.Render("undefined") + "\n" + wrapList(undefined, 38) + "\n"
}

// wrapList joins items with spaces, breaking lines between items so no line
// exceeds width runes where possible.
func wrapList(items []string, width int) string {
	var b strings.Builder
	line := 0
	for i, item := range items {
		n := len([]rune(item))
		if i > 0 {
			if line+1+n > width {
				b.WriteByte('\n')
				line = 0
			} else {
				b.WriteByte(' ')
				line++
			}
		}
		b.WriteString(item)
		line += n
	}
	return b.String()
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  ←/→ h/l  - Decrease/increase a      ║
║  ↑/↓ k/j  - Move starting point x0   ║
║  [ ]      - Shrink/grow step size    ║
║  Tab      - Cycle views              ║
║  e        - Enter a exactly          ║
║  x        - Enter x0 exactly         ║
║  p        - Probe f(x) at a point    ║
║  s        - Save snapshot            ║
║  t        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the explorer on the alternate screen.
func Run(ctrl *viewstate.Controller, opts ...ModelOption) error {
	_, err := tea.NewProgram(NewModel(ctrl, opts...), tea.WithAltScreen()).Run()
	return err
}
