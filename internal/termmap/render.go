package termmap

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"

	"github.com/five82/chronomap/internal/layers"
)

const searchMarkerColor = "#dc2626"

type cell struct {
	mask uint8
	fg   string
	bg   string
	text rune
}

type canvas struct {
	w, h  int
	cells [][]cell
	base  colorful.Color
}

func newCanvas(w, h int, base string) *canvas {
	cells := make([][]cell, h)
	for i := range cells {
		cells[i] = make([]cell, w)
	}
	b, err := colorful.Hex(base)
	if err != nil {
		b = colorful.Color{R: 1, G: 1, B: 1}
	}
	return &canvas{w: w, h: h, cells: cells, base: b}
}

// blend mixes hex over the canvas base colour.
func (c *canvas) blend(hex string, alpha float64) string {
	col, err := colorful.Hex(hex)
	if err != nil {
		return ""
	}
	alpha = math.Max(0, math.Min(1, alpha))
	return c.base.BlendRgb(col, alpha).Clamped().Hex()
}

func (c *canvas) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= c.w || row >= c.h {
		return nil
	}
	return &c.cells[row][col]
}

// dot sets one braille dot. Dot (0,0) is the top-left of cell (0,0).
func (c *canvas) dot(x, y int, fg string) {
	if x < 0 || y < 0 {
		return
	}
	cl := c.at(x/2, y/4)
	if cl == nil {
		return
	}
	cl.mask |= brailleBit(x%2, y%4)
	cl.fg = fg
	cl.text = 0
}

func brailleBit(dx, dy int) uint8 {
	if dx == 0 {
		return [4]uint8{0x01, 0x02, 0x04, 0x40}[dy]
	}
	return [4]uint8{0x08, 0x10, 0x20, 0x80}[dy]
}

// line draws a Bresenham segment between two dots. Dashed lines draw four
// dots on and four off; the returned step keeps the dash phase across
// segments of one ring.
func (c *canvas) line(x0, y0, x1, y1 int, fg string, dashed, thick bool, step int) int {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if !dashed || (step/4)%2 == 0 {
			c.dot(x0, y0, fg)
			if thick {
				c.dot(x0+1, y0, fg)
				c.dot(x0, y0+1, fg)
			}
		}
		step++
		if x0 == x1 && y0 == y1 {
			return step
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *canvas) text(col, row int, s, fg string) {
	for _, r := range s {
		cl := c.at(col, row)
		if cl == nil {
			return
		}
		cl.text = r
		cl.mask = 0
		cl.fg = fg
		col++
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for row := range c.cells {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var fg, bg string
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := lipgloss.NewStyle()
			if fg != "" {
				st = st.Foreground(lipgloss.Color(fg))
			}
			if bg != "" {
				st = st.Background(lipgloss.Color(bg))
			}
			b.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for _, cl := range c.cells[row] {
			if cl.fg != fg || cl.bg != bg {
				flush()
				fg, bg = cl.fg, cl.bg
			}
			switch {
			case cl.text != 0:
				run.WriteRune(cl.text)
			case cl.mask != 0:
				run.WriteRune(rune(0x2800 + int(cl.mask)))
			default:
				run.WriteByte(' ')
			}
		}
		flush()
	}
	return b.String()
}

// Render rasterises the attached layers onto the current canvas size.
func (s *Surface) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.view
	if v.Width <= 0 || v.Height <= 0 {
		return ""
	}
	c := newCanvas(v.Width, v.Height, s.base)
	var labels []*shape
	for _, l := range s.layers {
		for _, sh := range l.paintOrder() {
			if sh.marker {
				drawMarker(c, v, sh)
				if sh.label != "" && sh.labelOpacity >= 0.5 {
					labels = append(labels, sh)
				}
				continue
			}
			drawShape(c, v, sh)
		}
	}
	for _, sh := range labels {
		x, y := v.ToDots(sh.feature.Geometry.(orb.Point))
		c.text(int(x)/2+1, int(y)/4, sh.label, s.ink)
	}
	if s.marker != nil {
		x, y := v.ToDots(*s.marker)
		if cl := c.at(int(x)/2, int(y)/4); cl != nil {
			cl.text = '✚'
			cl.fg = searchMarkerColor
		}
	}
	return c.String()
}

func drawShape(c *canvas, v Viewport, sh *shape) {
	switch g := sh.feature.Geometry.(type) {
	case orb.Polygon:
		fill(c, v, sh, g.Bound())
		for _, r := range g {
			stroke(c, v, sh.style, orb.LineString(r))
		}
	case orb.MultiPolygon:
		fill(c, v, sh, g.Bound())
		for _, p := range g {
			for _, r := range p {
				stroke(c, v, sh.style, orb.LineString(r))
			}
		}
	case orb.LineString:
		stroke(c, v, sh.style, g)
	case orb.MultiLineString:
		for _, ls := range g {
			stroke(c, v, sh.style, ls)
		}
	}
}

// fill sets the background of cells whose centre lies inside the shape.
func fill(c *canvas, v Viewport, sh *shape, b orb.Bound) {
	st := sh.style
	if st.FillOpacity <= 0 || (st.FillColor == "" && st.FillPattern == nil) {
		return
	}
	// Terminal backgrounds are opaque, so low opacities are boosted to stay
	// visible.
	alpha := math.Min(1, st.FillOpacity*2.5)
	x0, y0 := v.ToDots(orb.Point{b.Min[0], b.Max[1]})
	x1, y1 := v.ToDots(orb.Point{b.Max[0], b.Min[1]})
	minCol, maxCol := max(0, int(x0)/2), min(c.w-1, int(x1)/2)
	minRow, maxRow := max(0, int(y0)/4), min(c.h-1, int(y1)/4)
	solid := c.blend(st.FillColor, alpha)
	var stripe, space string
	if p := st.FillPattern; p != nil {
		stripe = c.blend(p.Color, alpha)
		space = c.blend(p.SpaceColor, alpha)
	}
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if !contains(sh.feature.Geometry, v.CellCenter(col, row)) {
				continue
			}
			cl := c.at(col, row)
			if st.FillPattern == nil {
				cl.bg = solid
				continue
			}
			// 315 degree stripes run from bottom-left to top-right.
			if (col+row)%4 < 2 {
				cl.bg = stripe
			} else {
				cl.bg = space
			}
		}
	}
}

func stroke(c *canvas, v Viewport, st layers.Style, ls orb.LineString) {
	if st.Weight <= 0 || st.Opacity <= 0 || len(ls) < 2 {
		return
	}
	fg := c.blend(st.Color, math.Min(1, st.Opacity*1.5))
	dashed := st.DashArray != ""
	thick := st.Weight >= 4

	dots := make(orb.LineString, len(ls))
	for i, p := range ls {
		x, y := v.ToDots(p)
		dots[i] = orb.Point{x, y}
	}
	// Clipping keeps Bresenham bounded at deep zoom.
	frame := orb.Bound{Min: orb.Point{-2, -2}, Max: orb.Point{float64(c.w*2 + 2), float64(c.h*4 + 2)}}
	step := 0
	for _, part := range clip.LineString(frame, dots) {
		for i := 1; i < len(part); i++ {
			a, b := part[i-1], part[i]
			step = c.line(int(a[0]), int(a[1]), int(b[0]), int(b[1]), fg, dashed, thick, step)
		}
	}
}

func drawMarker(c *canvas, v Viewport, sh *shape) {
	p, ok := sh.feature.Geometry.(orb.Point)
	if !ok {
		return
	}
	x, y := v.ToDots(p)
	cl := c.at(int(x)/2, int(y)/4)
	if cl == nil {
		return
	}
	switch {
	case sh.style.Radius >= 6:
		cl.text = '●'
	case sh.style.Radius >= 4:
		cl.text = '•'
	default:
		cl.text = '·'
	}
	cl.mask = 0
	cl.fg = sh.style.FillColor
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
