package overrides

import (
	"github.com/paulmach/orb/geojson"

	"github.com/five82/chronomap/internal/geodata"
)

// Project returns fc with the store's patches for (period, layer) applied.
//
// With no patch for the pair the input pointer itself is returned. Otherwise
// the result is a new collection whose patched features are fresh objects
// carrying merged properties; every other feature is the original pointer.
// Patches whose index is outside the collection are ignored.
func (s *Store) Project(period string, layer geodata.LayerType, fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	if fc == nil {
		return nil
	}

	s.mu.Lock()
	if s.perLayer[layerKey{period, layer}] == 0 {
		s.mu.Unlock()
		return fc
	}
	patches := make(map[int]Patch)
	for k, p := range s.patches {
		if k.Period == period && k.Layer == layer && k.Index >= 0 && k.Index < len(fc.Features) {
			patches[k.Index] = p
		}
	}
	s.mu.Unlock()

	out := *fc
	out.Features = make([]*geojson.Feature, len(fc.Features))
	copy(out.Features, fc.Features)
	for idx, p := range patches {
		orig := fc.Features[idx]
		if orig == nil {
			continue
		}
		f := *orig
		f.Properties = geodata.Merge(orig.Properties, p)
		out.Features[idx] = &f
	}
	return &out
}
