// Package termmap draws feature layers on a terminal.
//
// Surface implements the map capability used by internal/layers: it creates
// GeoJSON layers, keeps the attached ones ordered by pane, dispatches pointer
// events to the top-most interactive shape, and rasterises everything into a
// braille micro-grid (2x4 dots per cell) coloured with lipgloss.
//
// Coordinates are projected with spherical Mercator. Zoom levels follow the
// usual slippy-map convention, so one zoom step halves the visible extent.
package termmap
