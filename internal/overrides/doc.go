// Package overrides holds session-scoped property patches for map features and
// merges them into loaded datasets.
//
// # Keys
//
// A patch is addressed by (period, layer type, feature index). The index is
// the feature's position in the dataset file, not a semantic identifier: if a
// dataset is regenerated with a different feature order, previously recorded
// patches apply to whichever feature now sits at that position. The source
// data carries no stable id, so this is a known fragility rather than
// something the store tries to repair.
//
// # Store
//
// Store is the only place that answers "is feature X modified". Readers go
// through Get, Count and Entries; nothing hands out the internal table.
//
//   - Set merges properties into the patch (last write wins per key)
//   - RevertField removes one key; removing the last key removes the entry
//   - Clear removes a whole entry; ClearAll empties the table
//   - Reset empties the table and starts a new session id
//
// Mutations notify subscribers synchronously, and only when the table actually
// changed. A listener may call back into the store: nested notifications are
// queued and delivered by the outermost notify loop after the current round,
// so re-entrant writes neither deadlock nor recurse. No ordering between
// listeners is promised.
//
// # Projection
//
// Project overlays the store onto a collection. When no patch exists for the
// (period, layer) pair it returns the input pointer unchanged so consumers can
// skip work on identity; otherwise it returns a new collection in which only
// patched features are new objects.
package overrides
