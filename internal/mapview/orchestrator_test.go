package mapview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/chronomap/internal/dataset"
	"github.com/five82/chronomap/internal/geodata"
	"github.com/five82/chronomap/internal/hover"
	"github.com/five82/chronomap/internal/layers"
	"github.com/five82/chronomap/internal/overrides"
	"github.com/five82/chronomap/internal/period"
	"github.com/five82/chronomap/internal/termmap"
	"github.com/five82/chronomap/internal/theme"
)

type fakeLoader struct {
	mu      sync.Mutex
	bundles map[string]dataset.Bundle
	gates   map[string]chan struct{}
	errs    map[string]error
	calls   []string
}

func (f *fakeLoader) Load(ctx context.Context, id string) (dataset.Bundle, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	gate := f.gates[id]
	err := f.errs[id]
	b := f.bundles[id]
	f.mu.Unlock()

	if gate != nil {
		// Late responses ignore cancellation on purpose.
		<-gate
	}
	if err != nil {
		return dataset.Bundle{}, err
	}
	return b, nil
}

// spyMap records every collection handed to the renderer.
type spyMap struct {
	*termmap.Surface
	mu   sync.Mutex
	seen []*geojson.FeatureCollection
}

func (s *spyMap) NewGeoJSON(fc *geojson.FeatureCollection, opts layers.GeoJSONOptions) layers.Layer {
	s.mu.Lock()
	s.seen = append(s.seen, fc)
	s.mu.Unlock()
	return s.Surface.NewGeoJSON(fc, opts)
}

func (s *spyMap) rendered(fc *geojson.FeatureCollection) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, x := range s.seen {
		if x == fc {
			n++
		}
	}
	return n
}

func regionBox(i int) orb.Polygon {
	lon := 22 + float64(i%12)*1.5
	lat := 46 + float64(i/12)*0.6
	return orb.Polygon{orb.Ring{{lon, lat}, {lon + 1.4, lat}, {lon + 1.4, lat + 0.5}, {lon, lat + 0.5}, {lon, lat}}}
}

func regionCenter(i int) orb.Point {
	return regionBox(i).Bound().Center()
}

func fixture(id string, areas, borders, points int) dataset.Bundle {
	a := geojson.NewFeatureCollection()
	for i := range areas {
		f := geojson.NewFeature(regionBox(i))
		f.Properties["name"] = fmt.Sprintf("r%d", i)
		f.Properties["higherDivision"] = "Київське воєводство"
		a.Append(f)
	}
	b := geojson.NewFeatureCollection()
	for i := range borders {
		b.Append(geojson.NewFeature(orb.LineString{{22 + float64(i)*0.2, 46}, {22 + float64(i)*0.2, 52}}))
	}
	p := geojson.NewFeatureCollection()
	for i := range points {
		f := geojson.NewFeature(orb.Point{22 + float64(i%60)*0.3, 46 + float64(i/60)})
		f.Properties["name"] = fmt.Sprintf("p%d", i)
		f.Properties["adminLevel"] = float64(i%3 + 1)
		p.Append(f)
	}
	return dataset.Bundle{PeriodID: id, Areas: a, Borders: b, Points: p}
}

type harness struct {
	o      *Orchestrator
	store  *overrides.Store
	loader *fakeLoader
	spy    *spyMap
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	surface := termmap.New(orb.Point{30.81, 48.88}, 6)
	surface.SetSize(120, 40)
	spy := &spyMap{Surface: surface}
	loader := &fakeLoader{
		bundles: map[string]dataset.Bundle{
			"1640": fixture("1640", 120, 45, 300),
			"1760": fixture("1760", 80, 30, 90),
		},
		gates: map[string]chan struct{}{},
		errs:  map[string]error{},
	}
	store := overrides.NewStore()
	o := New(Options{
		Loader:  loader,
		Catalog: period.Default(),
		Store:   store,
		Map:     spy,
		Group:   spy,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(o.Close)
	return &harness{o: o, store: store, loader: loader, spy: spy}
}

func (h *harness) load(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, h.o.SelectPeriod(context.Background(), id))
	require.Eventually(t, func() bool { return !h.o.Loading() }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, h.o.Err())
}

func pathAt(t *testing.T, c *layers.Compositor, index int) layers.Path {
	t.Helper()
	for _, p := range c.Layer().Paths() {
		if p.Index() == index {
			return p
		}
	}
	t.Fatalf("no path with index %d", index)
	return nil
}

func TestOrchestrator_LoadBuildsEveryCategoryOnce(t *testing.T) {
	h := newHarness(t)
	h.load(t, "1640")

	eff := h.o.Effective()
	raw := h.loader.bundles["1640"]
	assert.Same(t, raw.Areas, eff.Areas, "empty store must not copy")
	assert.Len(t, eff.Areas.Features, 120)
	assert.Len(t, eff.Borders.Features, 45)
	assert.Len(t, eff.Points.Features, 300)

	want := map[layers.Kind]int{
		layers.Regions:         120,
		layers.Borders:         45,
		layers.PointsPrimary:   200,
		layers.PointsSecondary: 100,
	}
	for kind, paths := range want {
		c := h.o.Compositor(kind)
		assert.Equal(t, 1, c.Builds(), kind.String())
		assert.Len(t, c.Layer().Paths(), paths, kind.String())
	}
	assert.Equal(t, 4, h.spy.LayerCount())
	assert.Equal(t, 2, h.spy.rendered(raw.Points))
}

func TestOrchestrator_OverrideSurvivesPeriodRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.load(t, "1640")
	regions := h.o.Compositor(layers.Regions)
	borders := h.o.Compositor(layers.Borders)
	bordersBefore := h.o.Effective().Borders

	h.store.Set("1640", geodata.Areas, 7, map[string]any{"name": "X"})

	assert.Equal(t, 2, regions.Builds())
	assert.Equal(t, 1, borders.Builds())
	assert.Equal(t, 1, h.o.Compositor(layers.PointsPrimary).Builds())
	assert.Same(t, bordersBefore, h.o.Effective().Borders)
	assert.Equal(t, "X", pathAt(t, regions, 7).Feature().Properties["name"])

	h.load(t, "1760")
	assert.Equal(t, "r7", h.o.Effective().Areas.Features[7].Properties["name"])
	h.load(t, "1640")

	assert.Equal(t, "X", h.o.Effective().Areas.Features[7].Properties["name"])
	assert.Equal(t, "X", pathAt(t, regions, 7).Feature().Properties["name"])
	assert.Equal(t, "r7", h.loader.bundles["1640"].Areas.Features[7].Properties["name"])
}

func TestOrchestrator_ClearAllRestoresRawData(t *testing.T) {
	h := newHarness(t)
	h.load(t, "1640")
	h.store.Set("1640", geodata.Areas, 2, map[string]any{"name": "Y"})

	h.store.ClearAll()

	assert.Same(t, h.loader.bundles["1640"].Areas, h.o.Effective().Areas)
	assert.Equal(t, 3, h.o.Compositor(layers.Regions).Builds())
	assert.Equal(t, 1, h.o.Compositor(layers.Borders).Builds())
}

func TestOrchestrator_OtherPeriodChangeIgnored(t *testing.T) {
	h := newHarness(t)
	h.load(t, "1640")

	h.store.Set("1760", geodata.Areas, 1, map[string]any{"name": "Z"})

	assert.Equal(t, 1, h.o.Compositor(layers.Regions).Builds())
}

func TestOrchestrator_ThemeToggleKeepsHover(t *testing.T) {
	h := newHarness(t)
	h.load(t, "1640")
	regions := h.o.Compositor(layers.Regions)

	x, y := h.spy.Viewport().ToDots(regionCenter(3))
	h.spy.PointerAt(int(x)/2, int(y)/4)
	require.Equal(t, "r3", h.o.Hovered()["name"])

	h.o.SetTheme(theme.Dark)

	state, idx := regions.HoverState()
	assert.Equal(t, hover.Highlighted, state)
	assert.Equal(t, 3, idx)
	assert.Equal(t, 1, regions.Builds())
	st := pathAt(t, regions, 3).Style()
	assert.Equal(t, 5.0, st.Weight)
	assert.Equal(t, "#aaa", st.Color)
	assert.Equal(t, "#aaa", pathAt(t, regions, 4).Style().Color)
	assert.Equal(t, "r3", h.o.Hovered()["name"])

	h.spy.PointerAt(-1, -1)
	assert.Nil(t, h.o.Hovered())
	assert.Equal(t, 1.5, pathAt(t, regions, 3).Style().Weight)
}

func TestOrchestrator_RapidSwitchNeverRendersStaleData(t *testing.T) {
	h := newHarness(t)
	gate := make(chan struct{})
	h.loader.gates["1640"] = gate

	require.NoError(t, h.o.SelectPeriod(context.Background(), "1640"))
	h.load(t, "1760")
	close(gate)
	h.o.wg.Wait()

	stale := h.loader.bundles["1640"]
	for _, fc := range []*geojson.FeatureCollection{stale.Areas, stale.Borders, stale.Points} {
		assert.Zero(t, h.spy.rendered(fc))
	}
	assert.Equal(t, "1760", h.o.Period())
	assert.Same(t, h.loader.bundles["1760"].Areas, h.o.Effective().Areas)
}

func TestOrchestrator_FailedLoadShowsNothing(t *testing.T) {
	h := newHarness(t)
	h.load(t, "1640")
	h.loader.errs["1760"] = errors.New("boom")

	require.NoError(t, h.o.SelectPeriod(context.Background(), "1760"))
	require.Eventually(t, func() bool { return !h.o.Loading() }, 2*time.Second, 5*time.Millisecond)

	assert.EqualError(t, h.o.Err(), "boom")
	assert.Nil(t, h.o.Effective().Areas)
	assert.Equal(t, 0, h.spy.LayerCount())
}

func TestOrchestrator_UnknownPeriodLeavesState(t *testing.T) {
	h := newHarness(t)
	h.load(t, "1640")

	err := h.o.SelectPeriod(context.Background(), "1999")

	assert.ErrorIs(t, err, dataset.ErrUnknownPeriod)
	assert.Equal(t, "1640", h.o.Period())
	assert.Equal(t, []string{"1640"}, h.loader.calls)
	assert.Equal(t, 4, h.spy.LayerCount())
}

func TestOrchestrator_ReselectingCurrentPeriodIsNoop(t *testing.T) {
	h := newHarness(t)
	h.load(t, "1640")

	require.NoError(t, h.o.SelectPeriod(context.Background(), "1640"))

	assert.False(t, h.o.Loading())
	assert.Len(t, h.loader.calls, 1)
}
