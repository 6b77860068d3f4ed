package termmap

import (
	"slices"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/five82/chronomap/internal/layers"
)

// Surface is a terminal map. It is safe for concurrent use; pointer handlers
// run on the caller's goroutine after the surface lock is released.
type Surface struct {
	mu      sync.Mutex
	view    Viewport
	base    string
	ink     string
	layers  []*geoLayer
	seq     int
	raise   int
	hovered *shape
	marker  *orb.Point
	onZoom  []func(float64)
}

// New returns a surface centred on center at zoom.
func New(center orb.Point, zoom float64) *Surface {
	return &Surface{
		view: Viewport{Center: center, Zoom: clampZoom(zoom)},
		base: "#f5f5f4",
		ink:  "#1c1917",
	}
}

var (
	_ layers.Map   = (*Surface)(nil)
	_ layers.Group = (*Surface)(nil)
)

// NewGeoJSON builds a detached layer. Features rejected by opts.Filter are
// skipped but keep their collection index.
func (s *Surface) NewGeoJSON(fc *geojson.FeatureCollection, opts layers.GeoJSONOptions) layers.Layer {
	l := &geoLayer{s: s, opts: opts, style: opts.Style}
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if opts.Filter != nil && !opts.Filter(f) {
			continue
		}
		sh := &shape{layer: l, index: i, feature: f, bound: f.Geometry.Bound()}
		if _, ok := f.Geometry.(orb.Point); ok && opts.PointToLayer != nil {
			mk := opts.PointToLayer(f)
			sh.marker = true
			sh.style = mk.Style
			sh.label = mk.Label
			sh.class = mk.LabelClass
		} else if l.style != nil {
			sh.style = l.style(f)
		}
		l.shapes = append(l.shapes, sh)
	}
	return l
}

// AddLayer attaches l. Adding an attached layer is a no-op.
func (s *Surface) AddLayer(l layers.Layer) {
	gl, ok := l.(*geoLayer)
	if !ok || gl.s != s {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.layers, gl) {
		return
	}
	s.seq++
	gl.seq = s.seq
	s.layers = append(s.layers, gl)
	slices.SortStableFunc(s.layers, func(a, b *geoLayer) int {
		if d := a.opts.Pane.ZIndex() - b.opts.Pane.ZIndex(); d != 0 {
			return d
		}
		return a.seq - b.seq
	})
}

// RemoveLayer detaches l.
func (s *Surface) RemoveLayer(l layers.Layer) {
	gl, ok := l.(*geoLayer)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = slices.DeleteFunc(s.layers, func(x *geoLayer) bool { return x == gl })
	if s.hovered != nil && s.hovered.layer == gl {
		s.hovered = nil
	}
}

// LayerCount returns the number of attached layers.
func (s *Surface) LayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.layers)
}

// FitBounds centres the map on b at the largest zoom that shows all of it.
func (s *Surface) FitBounds(b orb.Bound) {
	s.mu.Lock()
	s.view = s.view.Fit(b)
	zoom := s.view.Zoom
	listeners := slices.Clone(s.onZoom)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(zoom)
	}
}

// Zoom returns the current zoom level.
func (s *Surface) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Zoom
}

// SetZoom changes the zoom level, clamped to the supported range.
func (s *Surface) SetZoom(zoom float64) {
	s.mu.Lock()
	s.view.Zoom = clampZoom(zoom)
	zoom = s.view.Zoom
	listeners := slices.Clone(s.onZoom)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(zoom)
	}
}

// ZoomBy adds delta to the zoom level.
func (s *Surface) ZoomBy(delta float64) {
	s.SetZoom(s.Zoom() + delta)
}

// FlyTo centres the map on p at zoom.
func (s *Surface) FlyTo(p orb.Point, zoom float64) {
	s.mu.Lock()
	s.view.Center = p
	s.mu.Unlock()
	s.SetZoom(zoom)
}

// OnZoom registers fn to run after every zoom change.
func (s *Surface) OnZoom(fn func(float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onZoom = append(s.onZoom, fn)
}

// Pan moves the view by whole cells.
func (s *Surface) Pan(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.view.Pan(cols, rows)
}

// Center returns the geographic centre of the view.
func (s *Surface) Center() orb.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Center
}

// SetSize sets the canvas size in cells.
func (s *Surface) SetSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Width = max(width, 0)
	s.view.Height = max(height, 0)
}

// Viewport returns a copy of the current view.
func (s *Surface) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetPalette sets the canvas colour fills are blended against and the
// label colour.
func (s *Surface) SetPalette(base, ink string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = base
	s.ink = ink
}

// SetMarker places the search marker; nil removes it.
func (s *Surface) SetMarker(p *orb.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = p
}

// PointerAt moves the pointer to a cell and fires leave/enter handlers when
// the shape under it changes. Negative coordinates mean the pointer left the
// map.
func (s *Surface) PointerAt(col, row int) {
	s.mu.Lock()
	var hit *shape
	if col >= 0 && row >= 0 && col < s.view.Width && row < s.view.Height {
		hit = s.hitLocked(s.view.CellCenter(col, row))
	}
	prev := s.hovered
	s.hovered = hit
	var leave, enter func()
	if prev != hit {
		if prev != nil {
			leave = prev.handlers.PointerLeave
		}
		if hit != nil {
			enter = hit.handlers.PointerEnter
		}
	}
	s.mu.Unlock()

	if leave != nil {
		leave()
	}
	if enter != nil {
		enter()
	}
}

// Click fires the click handler of the shape under a cell. It reports whether
// a shape was hit.
func (s *Surface) Click(col, row int) bool {
	s.mu.Lock()
	var hit *shape
	if col >= 0 && row >= 0 && col < s.view.Width && row < s.view.Height {
		hit = s.hitLocked(s.view.CellCenter(col, row))
	}
	var click func()
	if hit != nil {
		click = hit.handlers.Click
	}
	s.mu.Unlock()

	if click != nil {
		click()
	}
	return hit != nil
}

// hitLocked returns the top-most interactive shape containing p.
func (s *Surface) hitLocked(p orb.Point) *shape {
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		if !l.opts.Interactive {
			continue
		}
		ordered := l.paintOrder()
		for j := len(ordered) - 1; j >= 0; j-- {
			sh := ordered[j]
			if sh.bound.Contains(p) && contains(sh.feature.Geometry, p) {
				return sh
			}
		}
	}
	return nil
}

func contains(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	}
	return false
}

type geoLayer struct {
	s      *Surface
	opts   layers.GeoJSONOptions
	style  layers.StyleFunc
	shapes []*shape
	seq    int
}

func (l *geoLayer) Paths() []layers.Path {
	out := make([]layers.Path, len(l.shapes))
	for i, sh := range l.shapes {
		out[i] = sh
	}
	return out
}

func (l *geoLayer) SetStyle(fn layers.StyleFunc) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.style = fn
	for _, sh := range l.shapes {
		if !sh.marker {
			sh.style = fn(sh.feature)
		}
	}
}

func (l *geoLayer) ResetStyle(p layers.Path) {
	sh, ok := p.(*shape)
	if !ok || sh.layer != l || l.style == nil {
		return
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	sh.style = l.style(sh.feature)
}

// paintOrder returns shapes bottom to top. Raised shapes draw last.
// Callers hold s.mu.
func (l *geoLayer) paintOrder() []*shape {
	out := slices.Clone(l.shapes)
	slices.SortStableFunc(out, func(a, b *shape) int {
		return a.raised - b.raised
	})
	return out
}

type shape struct {
	layer    *geoLayer
	index    int
	feature  *geojson.Feature
	bound    orb.Bound
	style    layers.Style
	handlers layers.Handlers
	raised   int

	marker       bool
	label        string
	class        layers.LabelClass
	labelOpacity float64
}

func (sh *shape) Index() int                { return sh.index }
func (sh *shape) Feature() *geojson.Feature { return sh.feature }
func (sh *shape) Bounds() orb.Bound         { return sh.bound }
func (sh *shape) LabelClass() layers.LabelClass {
	return sh.class
}

func (sh *shape) Style() layers.Style {
	sh.layer.s.mu.Lock()
	defer sh.layer.s.mu.Unlock()
	return sh.style
}

func (sh *shape) SetStyle(st layers.Style) {
	sh.layer.s.mu.Lock()
	defer sh.layer.s.mu.Unlock()
	sh.style = st
}

func (sh *shape) BringToFront() {
	s := sh.layer.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raise++
	sh.raised = s.raise
}

func (sh *shape) On(h layers.Handlers) {
	sh.layer.s.mu.Lock()
	defer sh.layer.s.mu.Unlock()
	sh.handlers = h
}

func (sh *shape) Off() {
	sh.layer.s.mu.Lock()
	defer sh.layer.s.mu.Unlock()
	sh.handlers = layers.Handlers{}
}

func (sh *shape) SetLabelOpacity(opacity float64) {
	sh.layer.s.mu.Lock()
	defer sh.layer.s.mu.Unlock()
	sh.labelOpacity = opacity
}
