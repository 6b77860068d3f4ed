// Package hover tracks which feature of one interactive layer is currently
// highlighted.
//
// The machine has two states, idle and highlighted(handle). It talks to the
// rendering side only through Handle, so it does not depend on how a map
// library represents shapes. At most one handle is highlighted at a time:
// entering a new handle resets the previous one before the new one is
// highlighted.
package hover

import "github.com/paulmach/orb/geojson"

// Handle is a highlightable feature on a map layer.
type Handle interface {
	// Highlight applies the hover stylesheet for the current theme.
	Highlight()
	// Reset restores the feature's category stylesheet for the current theme.
	Reset()
	// BringToFront raises the feature to the top of its layer's paint order.
	BringToFront()
	// Focus pans and zooms the map to fit the feature.
	Focus()
}

// State is the machine state.
type State int

const (
	Idle State = iota
	Highlighted
)

func (s State) String() string {
	if s == Highlighted {
		return "highlighted"
	}
	return "idle"
}

// Sink receives the inspected-feature side channel.
type Sink interface {
	HoverStarted(props geojson.Properties)
	HoverEnded()
}

// SinkFuncs adapts a pair of functions to Sink. Nil functions are skipped.
type SinkFuncs struct {
	Started func(geojson.Properties)
	Ended   func()
}

func (s SinkFuncs) HoverStarted(props geojson.Properties) {
	if s.Started != nil {
		s.Started(props)
	}
}

func (s SinkFuncs) HoverEnded() {
	if s.Ended != nil {
		s.Ended()
	}
}

// Machine is the per-layer highlight state. It is not safe for concurrent
// use; the owning layer serialises pointer events.
type Machine struct {
	sink    Sink
	current Handle
	props   geojson.Properties
}

// New returns an idle machine reporting to sink (nil discards events).
func New(sink Sink) *Machine {
	if sink == nil {
		sink = SinkFuncs{}
	}
	return &Machine{sink: sink}
}

// State returns the current state.
func (m *Machine) State() State {
	if m.current == nil {
		return Idle
	}
	return Highlighted
}

// Current returns the highlighted handle, or nil when idle.
func (m *Machine) Current() Handle {
	return m.current
}

// Enter handles the pointer entering h.
func (m *Machine) Enter(h Handle, props geojson.Properties) {
	if h == nil {
		return
	}
	if m.current != nil && m.current != h {
		m.current.Reset()
	}
	m.current = h
	m.props = props
	h.Highlight()
	h.BringToFront()
	m.sink.HoverStarted(props)
}

// Leave handles the pointer leaving h. Leaving a handle that is not the
// highlighted one only restores its stylesheet.
func (m *Machine) Leave(h Handle) {
	if h == nil {
		return
	}
	h.Reset()
	if m.current != h {
		return
	}
	m.current = nil
	m.props = nil
	m.sink.HoverEnded()
}

// Click focuses the map on h without changing the state.
func (m *Machine) Click(h Handle) {
	if h == nil {
		return
	}
	h.Focus()
}

// Refresh re-applies the hover stylesheet to the highlighted handle. Layers
// call it after an in-place restyle so the highlight survives a theme change.
func (m *Machine) Refresh() {
	if m.current != nil {
		m.current.Highlight()
	}
}

// Release drops the highlight without touching the handle, for layers that are
// being torn down. A highlighted machine reports the hover as ended.
func (m *Machine) Release() {
	if m.current == nil {
		return
	}
	m.current = nil
	m.props = nil
	m.sink.HoverEnded()
}
