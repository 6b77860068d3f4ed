// Package mapview coordinates period selection, loading, override projection
// and theme for the map layers.
//
// An Orchestrator owns one compositor per layer category. Selecting a period
// clears the layers, cancels the previous load and starts a new one; a load
// result is applied only if no newer selection happened in the meantime, and
// then all three collections become visible together. Store changes for the
// current period re-project just the affected layer types from the cached
// raw bundle, without refetching.
//
// Consumers poll state through accessors and are told to do so through the
// OnChange callback, which must not block.
package mapview
