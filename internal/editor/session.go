// Package editor exposes one dataset's features as editable rows backed by the
// override store.
package editor

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/five82/chronomap/internal/geodata"
	"github.com/five82/chronomap/internal/overrides"
)

// Row summarises one feature.
type Row struct {
	Index    int
	Label    string
	Modified bool
}

// Field is one property of a feature as the editor shows it.
type Field struct {
	Key      string
	Value    any
	Display  string
	Modified bool
}

// Session edits the features of one (period, layer) dataset. The collection
// is the raw, unpatched data; edits only ever go to the store.
type Session struct {
	store  *overrides.Store
	period string
	layer  geodata.LayerType
	fc     *geojson.FeatureCollection
}

// New opens a session. A nil collection yields an empty session.
func New(store *overrides.Store, period string, layer geodata.LayerType, fc *geojson.FeatureCollection) *Session {
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	return &Session{store: store, period: period, layer: layer, fc: fc}
}

// Period returns the session's period id.
func (s *Session) Period() string { return s.period }

// Layer returns the session's layer type.
func (s *Session) Layer() geodata.LayerType { return s.layer }

// Len returns the number of features.
func (s *Session) Len() int { return len(s.fc.Features) }

// Rows lists every feature in collection order.
func (s *Session) Rows() []Row {
	rows := make([]Row, len(s.fc.Features))
	for i := range s.fc.Features {
		props, modified := s.merged(i)
		rows[i] = Row{Index: i, Label: label(i, props), Modified: modified}
	}
	return rows
}

// Fields returns the merged properties of a feature, sorted by key.
func (s *Session) Fields(index int) ([]Field, error) {
	if err := s.check(index); err != nil {
		return nil, err
	}
	props, _ := s.merged(index)
	patch, _ := s.store.Get(s.period, s.layer, index)

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	fields := make([]Field, len(keys))
	for i, k := range keys {
		_, modified := patch[k]
		fields[i] = Field{Key: k, Value: props[k], Display: Display(props[k]), Modified: modified}
	}
	return fields, nil
}

// Edit stores input as the new value of key, parsed against the original
// value.
func (s *Session) Edit(index int, key, input string) error {
	if err := s.check(index); err != nil {
		return err
	}
	var original any
	if f := s.fc.Features[index]; f != nil {
		original = f.Properties[key]
	}
	s.store.Set(s.period, s.layer, index, map[string]any{key: ParseValue(original, input)})
	return nil
}

// Revert drops the override of one key.
func (s *Session) Revert(index int, key string) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.store.RevertField(s.period, s.layer, index, key)
	return nil
}

// RevertAll drops every override of a feature.
func (s *Session) RevertAll(index int) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.store.Clear(s.period, s.layer, index)
	return nil
}

func (s *Session) check(index int) error {
	if index < 0 || index >= len(s.fc.Features) {
		return fmt.Errorf("feature %d out of range [0, %d)", index, len(s.fc.Features))
	}
	return nil
}

func (s *Session) merged(index int) (geojson.Properties, bool) {
	f := s.fc.Features[index]
	var base geojson.Properties
	if f != nil {
		base = f.Properties
	}
	patch, ok := s.store.Get(s.period, s.layer, index)
	if !ok {
		return base, false
	}
	return geodata.Merge(base, patch), true
}

func label(index int, props geojson.Properties) string {
	if name := geodata.String(props, "name"); name != "" {
		return name
	}
	return fmt.Sprintf("Feature #%d", index)
}

// ParseValue converts editor input back to a property value. Input over a
// numeric original becomes a number when it parses as one. Empty input over
// a missing, null or numeric original becomes null. Everything else stays a
// string.
func ParseValue(original any, input string) any {
	numeric := geodata.IsNumber(original)
	if input == "" && (original == nil || numeric) {
		return nil
	}
	if numeric {
		if v, err := strconv.ParseFloat(strings.TrimSpace(input), 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
			return v
		}
	}
	return input
}

// Display renders a property value for editing.
func Display(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
