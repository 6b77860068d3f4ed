// Package layers turns effective feature collections into live map layers.
//
// A Compositor owns one layer category (regions, borders, primary or
// secondary settlements) inside one layer group. It has two update paths that
// share the stylesheet tables in style.go and markers.go:
//
//   - Update with a different collection pointer tears the old layer down and
//     builds a new one. Geometry and pointer bindings are never patched in
//     place.
//   - SetTheme re-applies the style function to the existing layer. Paths keep
//     their identity, so an active hover highlight survives and is redrawn in
//     the new colours.
//
// The rendering library is consumed through the Map, Group, Layer and Path
// interfaces in surface.go; internal/termmap implements them for a terminal.
package layers
