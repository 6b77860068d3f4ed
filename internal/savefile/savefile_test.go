package savefile

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/chronomap/internal/geodata"
	"github.com/five82/chronomap/internal/overrides"
	"github.com/five82/chronomap/internal/period"
)

func writeCollection(t *testing.T, dir, name string, names ...string) {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	for i, n := range names {
		f := geojson.NewFeature(orb.Point{float64(i), 0})
		f.Properties["name"] = n
		f.Properties["adminLevel"] = 2.0
		fc.Append(f)
	}
	data, err := geodata.Encode(fc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".geojson"), data, 0o644))
}

func readCollection(t *testing.T, dir, name string) *geojson.FeatureCollection {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name+".geojson"))
	require.NoError(t, err)
	fc, err := geodata.Parse(data)
	require.NoError(t, err)
	return fc
}

func newWriter(dir string) *Writer {
	return NewWriter(dir, "", period.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSave_EmptyInput(t *testing.T) {
	_, err := newWriter(t.TempDir()).Save(nil)
	assert.ErrorIs(t, err, ErrNoOverrides)
}

func TestSave_MergesPositionally(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "points-1640", "a", "b", "c")

	report, err := newWriter(dir).Save([]overrides.Entry{
		{PeriodID: "1640", LayerType: geodata.Points, FeatureIndex: 1, Properties: map[string]any{"name": "B"}},
		{PeriodID: "1640", LayerType: geodata.Points, FeatureIndex: 2, Properties: map[string]any{"adminLevel": 3.0, "extra": "y"}},
		{PeriodID: "1640", LayerType: geodata.Points, FeatureIndex: 9, Properties: map[string]any{"name": "lost"}},
	})
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.Equal(t, "1640:points", res.Key)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 1, res.Skipped)
	assert.True(t, report.Success())
	assert.Equal(t, "success", res.Status())

	fc := readCollection(t, dir, "points-1640")
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "a", fc.Features[0].Properties["name"])
	assert.Equal(t, "B", fc.Features[1].Properties["name"])
	assert.Equal(t, 2.0, fc.Features[1].Properties["adminLevel"])
	assert.Equal(t, 3.0, fc.Features[2].Properties["adminLevel"])
	assert.Equal(t, "y", fc.Features[2].Properties["extra"])
	assert.Equal(t, "c", fc.Features[2].Properties["name"])
}

func TestSave_MatchesInMemoryProjection(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "areas-1760", "x", "y")
	raw := readCollection(t, dir, "areas-1760")

	store := overrides.NewStore()
	store.Set("1760", geodata.Areas, 0, map[string]any{"name": "X", "note": nil})
	projected := store.Project("1760", geodata.Areas, raw)

	_, err := newWriter(dir).Save(store.Entries())
	require.NoError(t, err)

	saved := readCollection(t, dir, "areas-1760")
	for i := range saved.Features {
		assert.Equal(t, projected.Features[i].Properties, saved.Features[i].Properties)
	}
}

func TestSave_GroupFailuresAreIsolated(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "areas-1640", "a")

	report, err := newWriter(dir).Save([]overrides.Entry{
		{PeriodID: "1999", LayerType: geodata.Areas, FeatureIndex: 0, Properties: map[string]any{"name": "n"}},
		{PeriodID: "1640", LayerType: geodata.Borders, FeatureIndex: 0, Properties: map[string]any{"name": "n"}},
		{PeriodID: "1640", LayerType: geodata.Areas, FeatureIndex: 0, Properties: map[string]any{"name": "ok"}},
	})
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.ErrorIs(t, report.Results[0].Err, ErrUnknownPeriodOrLayer)
	assert.Equal(t, "error: unknown period/layer", report.Results[0].Status())
	assert.ErrorIs(t, report.Results[1].Err, os.ErrNotExist)
	assert.NoError(t, report.Results[2].Err)
	assert.False(t, report.Success())
	assert.Equal(t, "Some changes failed to save", report.Message())
	assert.Equal(t, "ok", readCollection(t, dir, "areas-1640").Features[0].Properties["name"])
}

func TestSave_PrettyPrinted(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "borders-1640", "a")

	_, err := newWriter(dir).Save([]overrides.Entry{
		{PeriodID: "1640", LayerType: geodata.Borders, FeatureIndex: 0, Properties: map[string]any{"name": "b"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "borders-1640.geojson"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \""))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestEntriesRoundTrip(t *testing.T) {
	store := overrides.NewStore()
	store.Set("1640", geodata.Areas, 3, map[string]any{"name": "X"})

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, store.Entries()))
	assert.Contains(t, buf.String(), `"featureIndex": 3`)

	got, err := ReadEntries(&buf)
	require.NoError(t, err)
	assert.Equal(t, store.Entries(), got)
}
