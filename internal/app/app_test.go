package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/chronomap/internal/config"
	"github.com/five82/chronomap/internal/dataset"
	"github.com/five82/chronomap/internal/geodata"
	"github.com/five82/chronomap/internal/overrides"
	"github.com/five82/chronomap/internal/savefile"
)

const areas1640 = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"name":"Київське","adminLevel":1},"geometry":{"type":"Polygon","coordinates":[[[30,50],[31,50],[31,51],[30,51],[30,50]]]}},
{"type":"Feature","properties":{"name":"Брацлавське","adminLevel":1},"geometry":{"type":"Polygon","coordinates":[[[28,48],[29,48],[29,49],[28,49],[28,48]]]}}
]}`

func testOptions(t *testing.T, dataDir string) Options {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf("data_dir = %q\nlog_level = \"error\"\n", dataDir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return Options{
		ConfigPath: path,
		EnvFiles:   []string{filepath.Join(t.TempDir(), "none.env")},
	}
}

func TestInitialPeriod(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name       string
		explicit   string
		remembered string
		want       string
		wantErr    bool
	}{
		{"default", "", "", "1640", false},
		{"remembered", "", "1760", "1760", false},
		{"stale remembered", "", "1500", "1640", false},
		{"explicit wins", "1640", "1760", "1640", false},
		{"unknown explicit", "1500", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := initialPeriod(cfg, tt.explicit, tt.remembered)
			if tt.wantErr {
				require.ErrorIs(t, err, dataset.ErrUnknownPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignalCoalesces(t *testing.T) {
	ch := make(chan struct{}, 1)
	notify := signal(ch)

	notify()
	notify()
	notify()

	assert.Len(t, ch, 1)
}

func TestDataHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "areas-1640.geojson"), []byte(areas1640), 0o644))
	srv := httptest.NewServer(DataHandler(dir, slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer srv.Close()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"file", http.MethodGet, "/data/areas-1640.geojson", http.StatusOK},
		{"head", http.MethodHead, "/data/areas-1640.geojson", http.StatusOK},
		{"missing", http.MethodGet, "/data/borders-1640.geojson", http.StatusNotFound},
		{"listing", http.MethodGet, "/data/", http.StatusNotFound},
		{"outside prefix", http.MethodGet, "/areas-1640.geojson", http.StatusNotFound},
		{"post", http.MethodPost, "/data/areas-1640.geojson", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestServeFeedsTheDatasetClient(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "areas-1640.geojson"), []byte(areas1640), 0o644))
	opts := testOptions(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, opts, "127.0.0.1:0", func(a net.Addr) { addrCh <- a })
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case err := <-done:
		t.Fatalf("Serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	client, err := dataset.NewClient("http://" + addr.String())
	require.NoError(t, err)
	fc, err := client.Fetch(context.Background(), "areas-1640")
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeRejectsMissingDataDir(t *testing.T) {
	opts := testOptions(t, filepath.Join(t.TempDir(), "absent"))

	err := Serve(context.Background(), opts, "127.0.0.1:0", nil)

	assert.ErrorContains(t, err, "data dir")
}

func writeEntries(t *testing.T, entries []overrides.Entry) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, savefile.WriteEntries(&buf, entries))
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestSaveAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "areas-1640.geojson")
	require.NoError(t, os.WriteFile(file, []byte(areas1640), 0o644))
	opts := testOptions(t, dir)

	path := writeEntries(t, []overrides.Entry{
		{PeriodID: "1640", LayerType: geodata.Areas, FeatureIndex: 1, Properties: map[string]any{"name": "Подільське"}},
	})

	var out bytes.Buffer
	require.NoError(t, Save(opts, path, &out))

	assert.Contains(t, out.String(), "1640:areas")
	assert.Contains(t, out.String(), "success")
	assert.Contains(t, out.String(), "Changes saved successfully")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	fc, err := geodata.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Київське", fc.Features[0].Properties["name"])
	assert.Equal(t, "Подільське", fc.Features[1].Properties["name"])
}

func TestSaveReportsFailedGroups(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "areas-1640.geojson"), []byte(areas1640), 0o644))
	opts := testOptions(t, dir)

	path := writeEntries(t, []overrides.Entry{
		{PeriodID: "1640", LayerType: geodata.Areas, FeatureIndex: 0, Properties: map[string]any{"name": "x"}},
		{PeriodID: "1500", LayerType: geodata.Areas, FeatureIndex: 0, Properties: map[string]any{"name": "y"}},
	})

	var out bytes.Buffer
	err := Save(opts, path, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 groups failed")
	assert.Contains(t, out.String(), "1500:areas")
	assert.Contains(t, out.String(), "error:")
	assert.Contains(t, out.String(), "Some changes failed to save")
}

func TestSaveEmptyList(t *testing.T) {
	opts := testOptions(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	err := Save(opts, path, io.Discard)

	assert.ErrorIs(t, err, savefile.ErrNoOverrides)
}

func TestPeriodsListsCatalog(t *testing.T) {
	opts := testOptions(t, t.TempDir())

	var out bytes.Buffer
	require.NoError(t, Periods(opts, &out))

	assert.Contains(t, out.String(), "1640*")
	assert.Contains(t, out.String(), "borders-1760")
}

func TestSetupRejectsUnknownLogLevel(t *testing.T) {
	opts := testOptions(t, t.TempDir())
	opts.LogLevel = "chatty"

	_, _, _, err := setup(opts, false)

	assert.ErrorContains(t, err, "unknown log level")
}

func TestExportedEntriesAreJSONArray(t *testing.T) {
	path := writeEntries(t, []overrides.Entry{
		{PeriodID: "1640", LayerType: geodata.Points, FeatureIndex: 3, Properties: map[string]any{"name": "Умань"}},
	})
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "points", raw[0]["layerType"])
}
