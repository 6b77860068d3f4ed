package layers

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type fakeMap struct {
	mu       sync.Mutex
	zoom     float64
	created  []*fakeLayer
	attached map[*fakeLayer]bool
	fitted   []orb.Bound
}

func newFakeMap() *fakeMap {
	return &fakeMap{zoom: 6, attached: map[*fakeLayer]bool{}}
}

func (m *fakeMap) NewGeoJSON(fc *geojson.FeatureCollection, opts GeoJSONOptions) Layer {
	l := &fakeLayer{opts: opts, style: opts.Style, source: fc}
	for i, f := range fc.Features {
		if opts.Filter != nil && !opts.Filter(f) {
			continue
		}
		p := &fakePath{layer: l, index: i, feature: f}
		if opts.PointToLayer != nil {
			mk := opts.PointToLayer(f)
			p.style = mk.Style
			p.label = mk.Label
			p.class = mk.LabelClass
		} else if l.style != nil {
			p.style = l.style(f)
		}
		l.paths = append(l.paths, p)
	}
	m.mu.Lock()
	m.created = append(m.created, l)
	m.mu.Unlock()
	return l
}

func (m *fakeMap) FitBounds(b orb.Bound) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fitted = append(m.fitted, b)
}

func (m *fakeMap) Zoom() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zoom
}

func (m *fakeMap) AddLayer(l Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached[l.(*fakeLayer)] = true
}

func (m *fakeMap) RemoveLayer(l Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attached, l.(*fakeLayer))
}

func (m *fakeMap) attachedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attached)
}

type fakeLayer struct {
	opts     GeoJSONOptions
	style    StyleFunc
	source   *geojson.FeatureCollection
	paths    []*fakePath
	restyles int
}

func (l *fakeLayer) Paths() []Path {
	out := make([]Path, len(l.paths))
	for i, p := range l.paths {
		out[i] = p
	}
	return out
}

func (l *fakeLayer) SetStyle(fn StyleFunc) {
	l.style = fn
	l.restyles++
	for _, p := range l.paths {
		p.style = fn(p.feature)
	}
}

func (l *fakeLayer) ResetStyle(p Path) {
	fp := p.(*fakePath)
	if l.style != nil {
		fp.style = l.style(fp.feature)
	}
}

func (l *fakeLayer) path(index int) *fakePath {
	for _, p := range l.paths {
		if p.index == index {
			return p
		}
	}
	return nil
}

type fakePath struct {
	layer    *fakeLayer
	index    int
	feature  *geojson.Feature
	style    Style
	handlers Handlers
	bound    bool
	fronted  int
	label    string
	class    LabelClass
	opacity  float64
}

func (p *fakePath) Index() int                { return p.index }
func (p *fakePath) Feature() *geojson.Feature { return p.feature }
func (p *fakePath) Style() Style              { return p.style }
func (p *fakePath) SetStyle(s Style)          { p.style = s }
func (p *fakePath) BringToFront()             { p.fronted++ }
func (p *fakePath) Bounds() orb.Bound         { return p.feature.Geometry.Bound() }
func (p *fakePath) LabelClass() LabelClass    { return p.class }

func (p *fakePath) On(h Handlers) {
	p.handlers = h
	p.bound = true
}

func (p *fakePath) Off() {
	p.handlers = Handlers{}
	p.bound = false
}

func (p *fakePath) SetLabelOpacity(o float64) { p.opacity = o }

func (p *fakePath) enter() {
	if p.handlers.PointerEnter != nil {
		p.handlers.PointerEnter()
	}
}

func (p *fakePath) leave() {
	if p.handlers.PointerLeave != nil {
		p.handlers.PointerLeave()
	}
}

func (p *fakePath) click() {
	if p.handlers.Click != nil {
		p.handlers.Click()
	}
}

func square(x, y float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}}
}

func regions(divisions ...string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, d := range divisions {
		f := geojson.NewFeature(square(float64(i), 0))
		f.Properties["higherDivision"] = d
		f.Properties["name"] = d
		fc.Append(f)
	}
	return fc
}

func settlements(levels ...any) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, lvl := range levels {
		f := geojson.NewFeature(orb.Point{float64(i), 0})
		f.Properties["adminLevel"] = lvl
		f.Properties["name"] = "town"
		fc.Append(f)
	}
	return fc
}
