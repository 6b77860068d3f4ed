package termmap

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// worldDots is the width of the whole world in braille dots at zoom 0.
	worldDots = 64.0
	// earthCircumference is the Mercator extent in metres.
	earthCircumference = 2 * math.Pi * 6378137

	MinZoom = 2.0
	MaxZoom = 19.0
)

// Viewport maps geographic coordinates to dots on a w x h cell canvas.
type Viewport struct {
	Center orb.Point
	Zoom   float64
	Width  int
	Height int
}

func (v Viewport) dots() (float64, float64) {
	return float64(v.Width * 2), float64(v.Height * 4)
}

func (v Viewport) scale() float64 {
	return worldDots * math.Exp2(v.Zoom) / earthCircumference
}

// ToDots projects p into dot coordinates; the origin is the top-left corner.
func (v Viewport) ToDots(p orb.Point) (float64, float64) {
	c := project.WGS84.ToMercator(v.Center)
	m := project.WGS84.ToMercator(p)
	w, h := v.dots()
	s := v.scale()
	return w/2 + (m[0]-c[0])*s, h/2 - (m[1]-c[1])*s
}

// FromDots is the inverse of ToDots.
func (v Viewport) FromDots(x, y float64) orb.Point {
	c := project.WGS84.ToMercator(v.Center)
	w, h := v.dots()
	s := v.scale()
	m := orb.Point{c[0] + (x-w/2)/s, c[1] - (y-h/2)/s}
	return project.Mercator.ToWGS84(m)
}

// CellCenter returns the geographic position under the centre of a cell.
func (v Viewport) CellCenter(col, row int) orb.Point {
	return v.FromDots(float64(col*2)+1, float64(row*4)+2)
}

// Fit returns a viewport of the same size showing b as large as possible.
func (v Viewport) Fit(b orb.Bound) Viewport {
	lo := project.WGS84.ToMercator(b.Min)
	hi := project.WGS84.ToMercator(b.Max)
	center := project.Mercator.ToWGS84(orb.Point{(lo[0] + hi[0]) / 2, (lo[1] + hi[1]) / 2})

	out := v
	out.Center = center
	w, h := v.dots()
	dx, dy := hi[0]-lo[0], hi[1]-lo[1]
	if dx <= 0 && dy <= 0 {
		return out
	}
	base := worldDots / earthCircumference
	zoom := MaxZoom
	if dx > 0 {
		zoom = math.Min(zoom, math.Log2(w/(dx*base)))
	}
	if dy > 0 {
		zoom = math.Min(zoom, math.Log2(h/(dy*base)))
	}
	out.Zoom = clampZoom(math.Floor(zoom*4) / 4)
	return out
}

// Pan shifts the centre by whole cells.
func (v Viewport) Pan(cols, rows int) Viewport {
	w, h := v.dots()
	out := v
	out.Center = v.FromDots(w/2+float64(cols*2), h/2+float64(rows*4))
	return out
}

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
