package geodata

import (
	"fmt"
	"strings"
)

// LayerType names one of the three datasets a period carries.
type LayerType string

const (
	Areas   LayerType = "areas"
	Borders LayerType = "borders"
	Points  LayerType = "points"
)

// LayerTypes lists every layer type in load order.
var LayerTypes = []LayerType{Areas, Borders, Points}

// ParseLayerType validates a layer type name.
func ParseLayerType(value string) (LayerType, error) {
	switch lt := LayerType(strings.ToLower(strings.TrimSpace(value))); lt {
	case Areas, Borders, Points:
		return lt, nil
	}
	return "", fmt.Errorf("unknown layer type %q", value)
}
