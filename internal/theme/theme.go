// Package theme defines the two-valued colour mode shared by the map layers
// and the terminal chrome. The mode is owned by the application shell; map
// components only read it.
package theme

import (
	"fmt"
	"strings"
)

// Mode is the colour mode of the interface.
type Mode int

const (
	Light Mode = iota
	Dark
)

// Parse converts a preference value into a Mode. Matching is case-insensitive.
func Parse(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "light", "":
		return Light, nil
	case "dark":
		return Dark, nil
	}
	return Light, fmt.Errorf("unknown theme %q", value)
}

// IsDark reports whether m is the dark mode.
func (m Mode) IsDark() bool {
	return m == Dark
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

func (m Mode) String() string {
	if m == Dark {
		return "dark"
	}
	return "light"
}
