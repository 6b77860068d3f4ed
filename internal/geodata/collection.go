package geodata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/paulmach/orb/geojson"
)

// ErrNotFeatureCollection is returned for well-formed JSON that is not a
// GeoJSON FeatureCollection.
var ErrNotFeatureCollection = errors.New("payload is not a feature collection")

// Parse decodes a FeatureCollection payload.
func Parse(data []byte) (*geojson.FeatureCollection, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if probe.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: type %q", ErrNotFeatureCollection, probe.Type)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	for i, f := range fc.Features {
		if f == nil {
			return nil, fmt.Errorf("decode geojson: feature %d is null", i)
		}
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
	}
	return fc, nil
}

// Decode reads and parses a FeatureCollection from r.
func Decode(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	return Parse(data)
}

// Encode renders fc as two-space indented JSON with a trailing newline.
func Encode(fc *geojson.FeatureCollection) ([]byte, error) {
	raw, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indent geojson: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
