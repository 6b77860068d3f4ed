package layers

import (
	"log/slog"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/five82/chronomap/internal/geodata"
	"github.com/five82/chronomap/internal/hover"
	"github.com/five82/chronomap/internal/theme"
)

// Kind is a layer category.
type Kind int

const (
	Regions Kind = iota
	Borders
	PointsPrimary
	PointsSecondary
)

// Kinds lists every category in paint order.
var Kinds = []Kind{Regions, Borders, PointsPrimary, PointsSecondary}

func (k Kind) String() string {
	switch k {
	case Regions:
		return "regions"
	case Borders:
		return "borders"
	case PointsPrimary:
		return "points-primary"
	case PointsSecondary:
		return "points-secondary"
	}
	return "unknown"
}

// LayerType returns the dataset a category is drawn from.
func (k Kind) LayerType() geodata.LayerType {
	switch k {
	case Borders:
		return geodata.Borders
	case PointsPrimary, PointsSecondary:
		return geodata.Points
	}
	return geodata.Areas
}

// Options configures a Compositor.
type Options struct {
	Map    Map
	Group  Group
	Theme  theme.Mode
	Labels LabelThresholds
	// Sink receives hover events. Only region compositors emit them.
	Sink   hover.Sink
	Logger *slog.Logger
}

// Compositor manages the live layer of one category. It is safe for
// concurrent use.
type Compositor struct {
	kind   Kind
	m      Map
	group  Group
	labels LabelThresholds
	logger *slog.Logger

	mu     sync.Mutex
	mode   theme.Mode
	data   *geojson.FeatureCollection
	layer  Layer
	hover  *hover.Machine
	builds int
}

// New creates a compositor with no layer attached.
func New(kind Kind, opts Options) *Compositor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	labels := opts.Labels
	if labels == (LabelThresholds{}) {
		labels = DefaultLabelThresholds()
	}
	c := &Compositor{
		kind:   kind,
		m:      opts.Map,
		group:  opts.Group,
		labels: labels,
		logger: logger.With("component", "layers", "kind", kind.String()),
		mode:   opts.Theme,
	}
	if kind == Regions {
		c.hover = hover.New(opts.Sink)
	}
	return c
}

// Kind returns the compositor's category.
func (c *Compositor) Kind() Kind {
	return c.kind
}

// Update shows fc. A nil collection removes the layer. The same pointer as the
// one already shown is a no-op; anything else is a rebuild. It reports whether
// the layer was rebuilt.
func (c *Compositor) Update(fc *geojson.FeatureCollection) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fc == c.data {
		return false
	}
	c.teardownLocked()
	if fc == nil {
		return false
	}
	c.buildLocked(fc)
	return true
}

// SetTheme restyles the current layer in place.
func (c *Compositor) SetTheme(mode theme.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == mode {
		return
	}
	c.mode = mode
	if c.layer == nil {
		return
	}
	if fn := c.styleFunc(mode); fn != nil {
		c.layer.SetStyle(fn)
	}
	if c.hover != nil {
		c.hover.Refresh()
	}
}

// Theme returns the mode the layer is styled for.
func (c *Compositor) Theme() theme.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// ApplyZoom updates label visibility for the zoom level.
func (c *Compositor) ApplyZoom(zoom float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyZoomLocked(zoom)
}

// Clear detaches the current layer.
func (c *Compositor) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// Data returns the collection currently shown.
func (c *Compositor) Data() *geojson.FeatureCollection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// Layer returns the live layer, or nil.
func (c *Compositor) Layer() Layer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layer
}

// Builds counts layers built over the compositor's lifetime.
func (c *Compositor) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}

// HoverState reports the highlight state of a region compositor. Other
// categories are always idle.
func (c *Compositor) HoverState() (hover.State, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hover == nil {
		return hover.Idle, -1
	}
	h, ok := c.hover.Current().(*regionHandle)
	if !ok {
		return hover.Idle, -1
	}
	return hover.Highlighted, h.path.Index()
}

func (c *Compositor) buildLocked(fc *geojson.FeatureCollection) {
	opts := GeoJSONOptions{Style: c.styleFunc(c.mode)}
	switch c.kind {
	case Regions:
		opts.Pane = PaneRegions
		opts.Interactive = true
	case Borders:
		opts.Pane = PaneBorders
	case PointsPrimary, PointsSecondary:
		secondary := c.kind == PointsSecondary
		opts.Pane = PaneCities
		opts.Filter = func(f *geojson.Feature) bool {
			return IsSecondary(geodata.AdminLevel(f.Properties)) == secondary
		}
		opts.PointToLayer = PointMarker
	}

	layer := c.m.NewGeoJSON(fc, opts)
	if c.kind == Regions {
		for _, p := range layer.Paths() {
			c.bindLocked(layer, p)
		}
	}
	c.group.AddLayer(layer)
	c.layer = layer
	c.data = fc
	c.builds++

	if c.kind == PointsPrimary || c.kind == PointsSecondary {
		c.applyZoomLocked(c.m.Zoom())
	}
	c.logger.Debug("layer built",
		slog.Int("features", len(fc.Features)),
		slog.Int("paths", len(layer.Paths())),
		slog.Int("build", c.builds),
	)
}

func (c *Compositor) bindLocked(layer Layer, p Path) {
	h := &regionHandle{c: c, layer: layer, path: p}
	p.On(Handlers{
		PointerEnter: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.layer != layer {
				return
			}
			c.hover.Enter(h, p.Feature().Properties)
		},
		PointerLeave: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.layer != layer {
				return
			}
			c.hover.Leave(h)
		},
		Click: func() {
			// Focus moves the map, which must not happen under c.mu.
			c.mu.Lock()
			live := c.layer == layer
			c.mu.Unlock()
			if live {
				c.hover.Click(h)
			}
		},
	})
}

func (c *Compositor) teardownLocked() {
	if c.layer == nil {
		c.data = nil
		return
	}
	if c.hover != nil {
		c.hover.Release()
	}
	for _, p := range c.layer.Paths() {
		p.Off()
	}
	c.group.RemoveLayer(c.layer)
	c.layer = nil
	c.data = nil
}

func (c *Compositor) applyZoomLocked(zoom float64) {
	if c.layer == nil || (c.kind != PointsPrimary && c.kind != PointsSecondary) {
		return
	}
	for _, p := range c.layer.Paths() {
		p.SetLabelOpacity(c.labels.LabelOpacity(p.LabelClass(), zoom))
	}
}

func (c *Compositor) styleFunc(mode theme.Mode) StyleFunc {
	switch c.kind {
	case Regions:
		return func(f *geojson.Feature) Style { return RegionStyle(mode, f) }
	case Borders:
		border := BorderStyle(mode)
		return func(*geojson.Feature) Style { return border }
	}
	return nil
}

// regionHandle adapts a region path to the hover machine. Its methods run with
// c.mu held, except Focus.
type regionHandle struct {
	c     *Compositor
	layer Layer
	path  Path
}

func (h *regionHandle) Highlight() {
	mode := h.c.mode
	h.path.SetStyle(HoverStyle(mode, RegionStyle(mode, h.path.Feature())))
}

func (h *regionHandle) Reset() {
	h.layer.ResetStyle(h.path)
}

func (h *regionHandle) BringToFront() {
	h.path.BringToFront()
}

func (h *regionHandle) Focus() {
	h.c.m.FitBounds(h.path.Bounds())
}
