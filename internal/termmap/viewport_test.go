package termmap

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestViewport_RoundTrip(t *testing.T) {
	v := Viewport{Center: orb.Point{30.81, 48.88}, Zoom: 6, Width: 80, Height: 24}
	for _, p := range []orb.Point{{30.81, 48.88}, {24, 52}, {40, 44.5}} {
		x, y := v.ToDots(p)
		back := v.FromDots(x, y)
		assert.InDelta(t, p[0], back[0], 1e-6)
		assert.InDelta(t, p[1], back[1], 1e-6)
	}
}

func TestViewport_CenterIsMiddle(t *testing.T) {
	v := Viewport{Center: orb.Point{30, 50}, Zoom: 7, Width: 60, Height: 20}
	x, y := v.ToDots(v.Center)
	assert.InDelta(t, 60.0, x, 1e-9)
	assert.InDelta(t, 40.0, y, 1e-9)
}

func TestViewport_ZoomDoublesScale(t *testing.T) {
	v := Viewport{Center: orb.Point{30, 50}, Zoom: 6, Width: 60, Height: 20}
	x6, _ := v.ToDots(orb.Point{31, 50})
	v.Zoom = 7
	x7, _ := v.ToDots(orb.Point{31, 50})
	assert.InDelta(t, (x6-60)*2, x7-60, 1e-9)
}

func TestViewport_FitShowsBound(t *testing.T) {
	v := Viewport{Center: orb.Point{0, 0}, Zoom: 3, Width: 80, Height: 24}
	b := orb.Bound{Min: orb.Point{22, 44}, Max: orb.Point{40, 52.5}}

	fit := v.Fit(b)

	for _, p := range []orb.Point{b.Min, b.Max} {
		x, y := fit.ToDots(p)
		assert.GreaterOrEqual(t, x, 0.0)
		assert.LessOrEqual(t, x, 160.0)
		assert.GreaterOrEqual(t, y, 0.0)
		assert.LessOrEqual(t, y, 96.0)
	}
	assert.Greater(t, fit.Zoom, v.Zoom)
}

func TestViewport_FitClampsPoint(t *testing.T) {
	v := Viewport{Zoom: 6, Width: 80, Height: 24}
	fit := v.Fit(orb.Bound{Min: orb.Point{30, 50}, Max: orb.Point{30, 50}})
	assert.Equal(t, orb.Point{30, 50}, roundPoint(fit.Center))
	assert.Equal(t, 6.0, fit.Zoom)
}

func roundPoint(p orb.Point) orb.Point {
	return orb.Point{float64(int(p[0]*1e6+0.5)) / 1e6, float64(int(p[1]*1e6+0.5)) / 1e6}
}
