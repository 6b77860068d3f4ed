// Package ui is the Bubble Tea interface of chronomap.
//
// # Views
//
//   - Map: header with the title, the period timeline and the pending
//     override badge; the braille map pane; the info panel describing the
//     hovered region (or the place search while it is open); a footer with
//     the load state or key hints.
//   - Editor: the features of one layer of the loaded period, their merged
//     properties, and per-field editing and revert backed by the override
//     store.
//
// # Event Flow
//
// Map state lives outside the model, in the orchestrator and the terminal
// surface. Their callbacks never call into the program; they signal a
// buffered channel that the model drains with a command, re-rendering on
// each message. Search responses arrive the same way.
//
// Mouse motion over the map pane is forwarded to the surface, which fires
// the region pointer handlers; a left click focuses the region under the
// pointer and the wheel zooms.
//
// # Key Bindings
//
//   - [ / ]: previous/next period (1-9 pick one directly)
//   - + / -: zoom, h/j/k/l or arrows: pan, 0: reset view
//   - /: place search, e: feature editor, x: export overrides
//   - t: toggle light/dark theme (persisted), ?: help, q: quit
package ui
