package overrides

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/chronomap/internal/geodata"
)

func TestStore_SetMergesAndGetCopies(t *testing.T) {
	s := NewStore()

	s.Set("1640", geodata.Areas, 7, map[string]any{"name": "X"})
	s.Set("1640", geodata.Areas, 7, map[string]any{"center": "Kyiv", "name": "Y"})

	got, ok := s.Get("1640", geodata.Areas, 7)
	require.True(t, ok)
	assert.Equal(t, Patch{"name": "Y", "center": "Kyiv"}, got)

	got["name"] = "mutated"
	again, _ := s.Get("1640", geodata.Areas, 7)
	assert.Equal(t, "Y", again["name"], "Get must return a copy")
}

func TestStore_ClearRemovesEntry(t *testing.T) {
	s := NewStore()
	s.Set("1640", geodata.Points, 1, map[string]any{"name": "A"})
	s.Clear("1640", geodata.Points, 1)

	_, ok := s.Get("1640", geodata.Points, 1)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.HasLayer("1640", geodata.Points))
}

func TestStore_Count(t *testing.T) {
	s := NewStore()
	s.Set("1640", geodata.Areas, 1, map[string]any{"a": 1.0, "b": 2.0})
	s.Set("1640", geodata.Areas, 2, map[string]any{"a": 1.0})
	s.Set("1760", geodata.Areas, 1, map[string]any{"a": 1.0})
	require.Equal(t, 3, s.Count())

	s.RevertField("1640", geodata.Areas, 1, "a")
	assert.Equal(t, 3, s.Count(), "remaining key keeps the entry alive")

	s.RevertField("1640", geodata.Areas, 1, "b")
	assert.Equal(t, 2, s.Count(), "removing the last key removes the entry")

	s.Clear("1760", geodata.Areas, 1)
	assert.Equal(t, 1, s.Count())

	s.ClearAll()
	assert.Equal(t, 0, s.Count())
}

func TestStore_NotifiesOnlyOnChange(t *testing.T) {
	s := NewStore()
	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	s.Clear("1640", geodata.Areas, 0)
	s.RevertField("1640", geodata.Areas, 0, "name")
	s.ClearAll()
	s.Set("1640", geodata.Areas, 0, nil)
	assert.Empty(t, changes, "no-op mutations must not notify")

	s.Set("1640", geodata.Areas, 0, map[string]any{"name": "X"})
	s.Set("1640", geodata.Areas, 0, map[string]any{"name": "X"})
	require.Len(t, changes, 1, "repeating an identical write is not a change")
	assert.Equal(t, []Key{{"1640", geodata.Areas, 0}}, changes[0].Keys)

	s.ClearAll()
	require.Len(t, changes, 2)
	assert.True(t, changes[1].All)
}

func TestStore_EmptyPatchNeverPersists(t *testing.T) {
	s := NewStore()
	s.Set("1640", geodata.Areas, 4, map[string]any{})
	_, ok := s.Get("1640", geodata.Areas, 4)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Count())
}

func TestStore_Unsubscribe(t *testing.T) {
	s := NewStore()
	calls := 0
	unsubscribe := s.Subscribe(func(Change) { calls++ })

	s.Set("1640", geodata.Areas, 0, map[string]any{"name": "X"})
	unsubscribe()
	unsubscribe()
	s.Set("1640", geodata.Areas, 0, map[string]any{"name": "Y"})

	assert.Equal(t, 1, calls)
}

func TestStore_ReentrantListener(t *testing.T) {
	s := NewStore()
	var seen []string

	// Mirrors every areas edit onto the borders layer from inside the callback.
	s.Subscribe(func(c Change) {
		for _, k := range c.Keys {
			seen = append(seen, k.String())
			if k.Layer == geodata.Areas {
				p, _ := s.Get(k.Period, k.Layer, k.Index)
				s.Set(k.Period, geodata.Borders, k.Index, p)
			}
		}
	})

	s.Set("1640", geodata.Areas, 3, map[string]any{"name": "X"})

	assert.Equal(t, []string{"1640:areas:3", "1640:borders:3"}, seen)
	got, ok := s.Get("1640", geodata.Borders, 3)
	require.True(t, ok)
	assert.Equal(t, "X", got["name"])
}

func TestStore_ConcurrentWriters(t *testing.T) {
	s := NewStore()
	var mu sync.Mutex
	notified := 0
	s.Subscribe(func(Change) {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set("1640", geodata.Points, i, map[string]any{"name": "n"})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 50, notified)
}

func TestStore_EntriesSorted(t *testing.T) {
	s := NewStore()
	s.Set("1760", geodata.Areas, 0, map[string]any{"name": "c"})
	s.Set("1640", geodata.Points, 2, map[string]any{"name": "b"})
	s.Set("1640", geodata.Areas, 10, map[string]any{"name": "a2"})
	s.Set("1640", geodata.Areas, 9, map[string]any{"name": "a1"})

	entries := s.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, Entry{PeriodID: "1640", LayerType: geodata.Areas, FeatureIndex: 9, Properties: map[string]any{"name": "a1"}}, entries[0])
	assert.Equal(t, 10, entries[1].FeatureIndex)
	assert.Equal(t, geodata.Points, entries[2].LayerType)
	assert.Equal(t, "1760", entries[3].PeriodID)
}

func TestStore_ResetStartsNewSession(t *testing.T) {
	s := NewStore()
	first := s.SessionID()
	require.NotEmpty(t, first)

	notified := 0
	s.Subscribe(func(Change) { notified++ })
	s.Set("1640", geodata.Areas, 0, map[string]any{"name": "X"})
	s.Reset()

	assert.NotEqual(t, first, s.SessionID())
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 2, notified)
}

func TestChange_Affects(t *testing.T) {
	c := Change{Keys: []Key{{"1640", geodata.Areas, 1}}}
	assert.True(t, c.Affects("1640", geodata.Areas))
	assert.False(t, c.Affects("1640", geodata.Points))
	assert.False(t, c.Affects("1760", geodata.Areas))
	assert.True(t, Change{All: true}.Affects("1760", geodata.Borders))
}
