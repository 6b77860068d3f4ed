package layers

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Pane is a named paint level. Higher panes draw above lower ones.
type Pane string

const (
	PaneRegions Pane = "regionsPane"
	PaneBorders Pane = "bordersPane"
	PaneCities  Pane = "citiesPane"
)

// ZIndex returns the paint order of a pane.
func (p Pane) ZIndex() int {
	switch p {
	case PaneRegions:
		return 450
	case PaneBorders:
		return 550
	case PaneCities:
		return 620
	}
	return 400
}

// StyleFunc computes a feature's stylesheet.
type StyleFunc func(f *geojson.Feature) Style

// Marker describes how a point feature is drawn.
type Marker struct {
	Style      Style
	Label      string
	LabelClass LabelClass
}

// GeoJSONOptions configures layer construction, in the spirit of a web map
// library's GeoJSON layer factory.
type GeoJSONOptions struct {
	Pane        Pane
	Interactive bool
	Style       StyleFunc
	// Filter drops features for which it returns false. Path indexes remain
	// positions in the full collection.
	Filter func(f *geojson.Feature) bool
	// PointToLayer turns point geometries into labelled markers.
	PointToLayer func(f *geojson.Feature) Marker
}

// Handlers are pointer callbacks attached to a path. Nil entries are ignored.
type Handlers struct {
	PointerEnter func()
	PointerLeave func()
	Click        func()
}

// Map is the rendering capability the compositors build on.
type Map interface {
	// NewGeoJSON creates a detached layer for fc.
	NewGeoJSON(fc *geojson.FeatureCollection, opts GeoJSONOptions) Layer
	// FitBounds pans and zooms so that b fills the viewport.
	FitBounds(b orb.Bound)
	// Zoom returns the current zoom level.
	Zoom() float64
}

// Group owns the layers currently attached to a map.
type Group interface {
	AddLayer(l Layer)
	RemoveLayer(l Layer)
}

// Layer is a rendered collection.
type Layer interface {
	Paths() []Path
	// SetStyle replaces the layer's style function and re-applies it to
	// every path in place. Geometry and handlers are untouched.
	SetStyle(fn StyleFunc)
	// ResetStyle re-applies the layer's style function to one path.
	ResetStyle(p Path)
}

// Path is one rendered feature.
type Path interface {
	Index() int
	Feature() *geojson.Feature
	Style() Style
	SetStyle(s Style)
	BringToFront()
	Bounds() orb.Bound
	On(h Handlers)
	// Off detaches every handler.
	Off()
	LabelClass() LabelClass
	// SetLabelOpacity controls the marker label; paths without a label
	// ignore it.
	SetLabelOpacity(opacity float64)
}
