package overrides

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/five82/chronomap/internal/geodata"
)

// Key addresses one feature of one period's dataset.
type Key struct {
	Period string
	Layer  geodata.LayerType
	Index  int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d", k.Period, k.Layer, k.Index)
}

type layerKey struct {
	period string
	layer  geodata.LayerType
}

// Patch is a partial property replacement.
type Patch map[string]any

// Change describes one mutation delivered to listeners.
type Change struct {
	Keys []Key
	All  bool
}

// Affects reports whether the change touches the given dataset.
func (c Change) Affects(period string, layer geodata.LayerType) bool {
	if c.All {
		return true
	}
	for _, k := range c.Keys {
		if k.Period == period && k.Layer == layer {
			return true
		}
	}
	return false
}

// Listener receives store changes.
type Listener func(Change)

// Entry is the exported form of a patch, as consumed by the save path.
type Entry struct {
	PeriodID     string            `json:"periodId"`
	LayerType    geodata.LayerType `json:"layerType"`
	FeatureIndex int               `json:"featureIndex"`
	Properties   map[string]any    `json:"properties"`
}

// Store is the session-wide patch table.
type Store struct {
	mu        sync.Mutex
	session   string
	patches   map[Key]Patch
	perLayer  map[layerKey]int
	listeners map[uint64]Listener
	nextID    uint64

	notifying bool
	pending   []Change
}

// NewStore returns an empty store with a fresh session id.
func NewStore() *Store {
	return &Store{
		session:   uuid.NewString(),
		patches:   make(map[Key]Patch),
		perLayer:  make(map[layerKey]int),
		listeners: make(map[uint64]Listener),
	}
}

// SessionID identifies the current editing session.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Get returns a copy of the patch for a feature.
func (s *Store) Get(period string, layer geodata.LayerType, index int) (Patch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patches[Key{period, layer, index}]
	if !ok {
		return nil, false
	}
	return maps.Clone(p), true
}

// Set merges props into the feature's patch, creating it when absent.
// Nothing happens, and nobody is notified, when props is empty or every value
// already matches.
func (s *Store) Set(period string, layer geodata.LayerType, index int, props map[string]any) {
	if len(props) == 0 {
		return
	}
	key := Key{period, layer, index}

	s.mu.Lock()
	existing, ok := s.patches[key]
	changed := !ok
	for k, v := range props {
		if cur, has := existing[k]; !has || !reflect.DeepEqual(cur, v) {
			changed = true
			break
		}
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	next := make(Patch, len(existing)+len(props))
	maps.Copy(next, existing)
	maps.Copy(next, props)
	s.put(key, next, ok)
	s.mu.Unlock()

	s.notify(Change{Keys: []Key{key}})
}

// RevertField drops one overridden key. When it was the last key the whole
// entry goes away.
func (s *Store) RevertField(period string, layer geodata.LayerType, index int, field string) {
	key := Key{period, layer, index}

	s.mu.Lock()
	existing, ok := s.patches[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	if _, has := existing[field]; !has {
		s.mu.Unlock()
		return
	}
	if len(existing) == 1 {
		s.drop(key)
	} else {
		next := maps.Clone(existing)
		delete(next, field)
		s.patches[key] = next
	}
	s.mu.Unlock()

	s.notify(Change{Keys: []Key{key}})
}

// Clear removes the entry for a feature. Clearing an absent entry is a no-op.
func (s *Store) Clear(period string, layer geodata.LayerType, index int) {
	key := Key{period, layer, index}

	s.mu.Lock()
	if _, ok := s.patches[key]; !ok {
		s.mu.Unlock()
		return
	}
	s.drop(key)
	s.mu.Unlock()

	s.notify(Change{Keys: []Key{key}})
}

// ClearAll empties the table with a single notification.
func (s *Store) ClearAll() {
	s.mu.Lock()
	if len(s.patches) == 0 {
		s.mu.Unlock()
		return
	}
	s.patches = make(map[Key]Patch)
	s.perLayer = make(map[layerKey]int)
	s.mu.Unlock()

	s.notify(Change{All: true})
}

// Reset ends the current session: the table is emptied and a new session id
// is issued. Subscribers stay registered.
func (s *Store) Reset() {
	s.mu.Lock()
	hadEntries := len(s.patches) > 0
	s.patches = make(map[Key]Patch)
	s.perLayer = make(map[layerKey]int)
	s.session = uuid.NewString()
	s.mu.Unlock()

	if hadEntries {
		s.notify(Change{All: true})
	}
}

// Count returns the number of features with at least one overridden property.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.patches)
}

// HasLayer reports whether any patch targets the (period, layer) dataset.
func (s *Store) HasLayer(period string, layer geodata.LayerType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perLayer[layerKey{period, layer}] > 0
}

// Entries exports every patch, ordered by period, layer and index.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	keys := slices.Collect(maps.Keys(s.patches))
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry{
			PeriodID:     k.Period,
			LayerType:    k.Layer,
			FeatureIndex: k.Index,
			Properties:   maps.Clone(s.patches[k]),
		})
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b Entry) int {
		if a.PeriodID != b.PeriodID {
			if a.PeriodID < b.PeriodID {
				return -1
			}
			return 1
		}
		if a.LayerType != b.LayerType {
			if a.LayerType < b.LayerType {
				return -1
			}
			return 1
		}
		return a.FeatureIndex - b.FeatureIndex
	})
	return out
}

// Subscribe registers fn and returns a function that removes it. The returned
// function is safe to call more than once.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// put and drop keep perLayer in step with patches. Callers hold mu.
func (s *Store) put(key Key, p Patch, existed bool) {
	s.patches[key] = p
	if !existed {
		s.perLayer[layerKey{key.Period, key.Layer}]++
	}
}

func (s *Store) drop(key Key) {
	delete(s.patches, key)
	lk := layerKey{key.Period, key.Layer}
	if s.perLayer[lk]--; s.perLayer[lk] <= 0 {
		delete(s.perLayer, lk)
	}
}

// notify delivers c to every listener. A notify that arrives while another
// round is running is queued for that round's loop.
func (s *Store) notify(c Change) {
	s.mu.Lock()
	if s.notifying {
		s.pending = append(s.pending, c)
		s.mu.Unlock()
		return
	}
	s.notifying = true

	for {
		listeners := slices.Collect(maps.Values(s.listeners))
		s.mu.Unlock()

		for _, fn := range listeners {
			fn(c)
		}

		s.mu.Lock()
		if len(s.pending) == 0 {
			s.notifying = false
			s.mu.Unlock()
			return
		}
		c = s.pending[0]
		s.pending = s.pending[1:]
	}
}
