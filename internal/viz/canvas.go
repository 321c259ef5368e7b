package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/logimap/internal/dynamo"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille dot grid of Width x Height cells, each cell holding
// 2x4 dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y) in dot coordinates, origin top-left.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return false
	}
	return c.Grid[row][col]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps a world rectangle onto a canvas.
type Viewport struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Square returns the viewport [lo, hi] x [lo, hi].
func Square(lo, hi float64) Viewport {
	return Viewport{XMin: lo, XMax: hi, YMin: lo, YMax: hi}
}

func (c *Canvas) dots() (int, int) { return c.Width * 2, c.Height * 4 }

// project maps world coordinates to dot coordinates. The caller guarantees
// the point lies inside the viewport.
func (c *Canvas) project(vp Viewport, x, y float64) (int, int) {
	w, h := c.dots()
	px := (x - vp.XMin) / (vp.XMax - vp.XMin) * float64(w-1)
	py := (vp.YMax - y) / (vp.YMax - vp.YMin) * float64(h-1)
	return int(math.Round(px)), int(math.Round(py))
}

// Point plots p if it is finite and inside vp.
func (c *Canvas) Point(vp Viewport, p dynamo.Point) {
	if !dynamo.IsFinite(p.X) || !dynamo.IsFinite(p.Y) {
		return
	}
	if p.X < vp.XMin || p.X > vp.XMax || p.Y < vp.YMin || p.Y > vp.YMax {
		return
	}
	c.Set(c.project(vp, p.X, p.Y))
}

// Segment draws the part of s inside vp. Segments with a non-finite end
// are skipped.
func (c *Canvas) Segment(vp Viewport, s dynamo.Segment) {
	s, ok := ClipSegment(vp, s)
	if !ok {
		return
	}
	px0, py0 := c.project(vp, s.From.X, s.From.Y)
	px1, py1 := c.project(vp, s.To.X, s.To.Y)
	c.DrawLine(px0, py0, px1, py1)
}

// ClipSegment returns the part of s inside vp. ok is false when s has a
// non-finite end or misses vp entirely.
func ClipSegment(vp Viewport, s dynamo.Segment) (dynamo.Segment, bool) {
	if !s.IsFinite() {
		return dynamo.Segment{}, false
	}
	x0, y0, x1, y1, ok := clip(vp, s.From.X, s.From.Y, s.To.X, s.To.Y)
	if !ok {
		return dynamo.Segment{}, false
	}
	return dynamo.Segment{From: dynamo.Point{X: x0, Y: y0}, To: dynamo.Point{X: x1, Y: y1}}, true
}

func (c *Canvas) Path(vp Viewport, p dynamo.Path) {
	for _, s := range p {
		c.Segment(vp, s)
	}
}

// Polyline joins consecutive points.
func (c *Canvas) Polyline(vp Viewport, pts []dynamo.Point) {
	for i := 0; i+1 < len(pts); i++ {
		c.Segment(vp, dynamo.Segment{From: pts[i], To: pts[i+1]})
	}
}

// clip trims a segment to vp with the Liang-Barsky algorithm.
func clip(vp Viewport, x0, y0, x1, y1 float64) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	if !dynamo.IsFinite(dx) || !dynamo.IsFinite(dy) {
		return 0, 0, 0, 0, false
	}
	t0, t1 := 0.0, 1.0

	edges := [4][2]float64{
		{-dx, x0 - vp.XMin},
		{dx, vp.XMax - x0},
		{-dy, y0 - vp.YMin},
		{dy, vp.YMax - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// Layer is a canvas drawn in one style.
type Layer struct {
	Canvas *Canvas
	Style  lipgloss.Style
}

// Compose overlays same-sized layers. Dots are merged per cell and a cell
// takes the style of the last layer that has a dot in it.
func Compose(layers ...Layer) string {
	if len(layers) == 0 {
		return ""
	}
	base := layers[0].Canvas

	var b strings.Builder
	for row := 0; row < base.Height; row++ {
		for col := 0; col < base.Width; col++ {
			r := rune(blank)
			top := -1
			for i, l := range layers {
				cell := l.Canvas.Grid[row][col]
				if cell != blank {
					r |= cell
					top = i
				}
			}
			if top < 0 {
				b.WriteRune(r)
				continue
			}
			b.WriteString(layers[top].Style.Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
