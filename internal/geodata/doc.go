// Package geodata holds the GeoJSON plumbing shared by the loader, the
// override projection and the save path.
//
// Collections are github.com/paulmach/orb/geojson values. A feature's identity
// for editing purposes is its position in the collection, so nothing in this
// package reorders features. Decoding rejects any payload that is not a
// FeatureCollection.
//
// Merge is the single definition of "apply a patch to a property bag": the
// in-memory projection and the on-disk rewrite both call it, so the persisted
// result always matches what the map displayed.
package geodata
