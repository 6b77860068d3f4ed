package geodata

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// Merge returns a new property bag holding base overlaid with patch. Keys in
// patch always win; keys absent from patch are carried over untouched. Neither
// argument is modified.
func Merge(base, patch map[string]any) geojson.Properties {
	out := make(geojson.Properties, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// String returns props[key] rendered as text, or "" when absent or null.
func String(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// AdminLevel reads the adminLevel property of a settlement point. Missing or
// unparseable values report 0, which callers treat as unrecognised.
func AdminLevel(props map[string]any) int {
	switch v := props["adminLevel"].(type) {
	case float64:
		if math.Trunc(v) == v {
			return int(v)
		}
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

// IsNumber reports whether v is a JSON number as decoded by encoding/json or
// produced by the editor.
func IsNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, int32:
		return true
	}
	return false
}
