// Package period describes the fixed historical time slices the map can show
// and the dataset files behind each of them.
package period

import (
	"fmt"
	"strings"

	"github.com/five82/chronomap/internal/geodata"
)

// Refs names the dataset file (without extension) for each layer type.
type Refs struct {
	Areas   string
	Borders string
	Points  string
}

// File returns the dataset reference for a layer type.
func (r Refs) File(layer geodata.LayerType) (string, bool) {
	var name string
	switch layer {
	case geodata.Areas:
		name = r.Areas
	case geodata.Borders:
		name = r.Borders
	case geodata.Points:
		name = r.Points
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}

// Period is an immutable year slice.
type Period struct {
	ID    string
	Label string
	Refs  Refs
}

// Catalog is the ordered, read-only set of configured periods.
type Catalog struct {
	periods []Period
}

// NewCatalog validates periods and returns a catalog in the given order.
func NewCatalog(periods []Period) (Catalog, error) {
	seen := make(map[string]struct{}, len(periods))
	out := make([]Period, 0, len(periods))
	for i, p := range periods {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return Catalog{}, fmt.Errorf("period %d: id is empty", i)
		}
		if _, dup := seen[p.ID]; dup {
			return Catalog{}, fmt.Errorf("period %q: duplicate id", p.ID)
		}
		seen[p.ID] = struct{}{}
		for _, lt := range geodata.LayerTypes {
			if _, ok := p.Refs.File(lt); !ok {
				return Catalog{}, fmt.Errorf("period %q: missing %s file", p.ID, lt)
			}
		}
		if strings.TrimSpace(p.Label) == "" {
			p.Label = p.ID
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return Catalog{}, fmt.Errorf("no periods configured")
	}
	return Catalog{periods: out}, nil
}

// Default returns the built-in catalog: the 1640 and 1760 slices.
func Default() Catalog {
	return Catalog{periods: []Period{
		{ID: "1640", Label: "1640", Refs: Refs{Areas: "areas-1640", Borders: "borders-1640", Points: "points-1640"}},
		{ID: "1760", Label: "1760", Refs: Refs{Areas: "areas-1760", Borders: "borders-1760", Points: "points-1760"}},
	}}
}

// All returns a copy of the periods in display order.
func (c Catalog) All() []Period {
	out := make([]Period, len(c.periods))
	copy(out, c.periods)
	return out
}

// Len reports the number of periods.
func (c Catalog) Len() int {
	return len(c.periods)
}

// Lookup finds a period by id.
func (c Catalog) Lookup(id string) (Period, bool) {
	for _, p := range c.periods {
		if p.ID == id {
			return p, true
		}
	}
	return Period{}, false
}

// First returns the first configured period.
func (c Catalog) First() Period {
	if len(c.periods) == 0 {
		return Period{}
	}
	return c.periods[0]
}

// Neighbor returns the period offset steps away from id, clamped to the
// catalog bounds.
func (c Catalog) Neighbor(id string, offset int) Period {
	idx := 0
	for i, p := range c.periods {
		if p.ID == id {
			idx = i
			break
		}
	}
	idx += offset
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.periods) {
		idx = len(c.periods) - 1
	}
	if idx < 0 {
		return Period{}
	}
	return c.periods[idx]
}

// File resolves the dataset file for (period, layer).
func (c Catalog) File(id string, layer geodata.LayerType) (string, bool) {
	p, ok := c.Lookup(id)
	if !ok {
		return "", false
	}
	return p.Refs.File(layer)
}
