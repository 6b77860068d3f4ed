// Package savefile writes exported overrides back into dataset files.
//
// Entries are grouped per (period, layer). Each group resolves its file
// through the period catalog, merges every entry into the feature at the same
// position (incoming keys win), and rewrites the file as two-space indented
// JSON. Groups are independent: one failing group is reported and the others
// are still written.
package savefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/five82/chronomap/internal/geodata"
	"github.com/five82/chronomap/internal/overrides"
	"github.com/five82/chronomap/internal/period"
)

var (
	// ErrNoOverrides is returned for an empty entry list.
	ErrNoOverrides = errors.New("no overrides provided")
	// ErrUnknownPeriodOrLayer marks a group whose file cannot be resolved.
	ErrUnknownPeriodOrLayer = errors.New("unknown period/layer")
)

// Result is the outcome of one (period, layer) group.
type Result struct {
	Key     string
	File    string
	Applied int
	Skipped int
	Err     error
}

// Status renders the result the way the save report shows it.
func (r Result) Status() string {
	if r.Err != nil {
		return "error: " + r.Err.Error()
	}
	return "success"
}

// Report summarises a save.
type Report struct {
	Results []Result
}

// Success reports whether every group was written.
func (r Report) Success() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

// Message is a one-line summary.
func (r Report) Message() string {
	if r.Success() {
		return "Changes saved successfully"
	}
	return "Some changes failed to save"
}

// Writer applies overrides to files under a data directory.
type Writer struct {
	dir     string
	ext     string
	catalog period.Catalog
	logger  *slog.Logger
}

// NewWriter returns a writer for dataset files named <file>.<ext> in dir.
func NewWriter(dir, ext string, catalog period.Catalog, logger *slog.Logger) *Writer {
	if ext == "" {
		ext = "geojson"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, ext: ext, catalog: catalog, logger: logger.With("component", "savefile")}
}

type groupKey struct {
	period string
	layer  geodata.LayerType
}

func (k groupKey) String() string {
	return k.period + ":" + string(k.layer)
}

// Save writes entries. The error is non-nil only when there is nothing to
// do; per-group failures are in the report.
func (w *Writer) Save(entries []overrides.Entry) (Report, error) {
	if len(entries) == 0 {
		return Report{}, ErrNoOverrides
	}

	var order []groupKey
	groups := make(map[groupKey][]overrides.Entry)
	for _, e := range entries {
		k := groupKey{e.PeriodID, e.LayerType}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	var report Report
	for _, k := range order {
		res := w.saveGroup(k, groups[k])
		if res.Err != nil {
			w.logger.Error("save failed", slog.String("group", res.Key), slog.String("error", res.Err.Error()))
		} else {
			w.logger.Info("saved", slog.String("group", res.Key), slog.String("file", res.File), slog.Int("applied", res.Applied))
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

func (w *Writer) saveGroup(k groupKey, entries []overrides.Entry) Result {
	res := Result{Key: k.String()}
	name, ok := w.catalog.File(k.period, k.layer)
	if !ok {
		res.Err = ErrUnknownPeriodOrLayer
		return res
	}
	res.File = filepath.Join(w.dir, name+"."+w.ext)

	data, err := os.ReadFile(res.File)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", name, err)
		return res
	}
	fc, err := geodata.Parse(data)
	if err != nil {
		res.Err = fmt.Errorf("parse %s: %w", name, err)
		return res
	}

	for _, e := range entries {
		if e.FeatureIndex < 0 || e.FeatureIndex >= len(fc.Features) || fc.Features[e.FeatureIndex] == nil {
			res.Skipped++
			continue
		}
		f := fc.Features[e.FeatureIndex]
		f.Properties = geodata.Merge(f.Properties, e.Properties)
		res.Applied++
	}

	out, err := geodata.Encode(fc)
	if err != nil {
		res.Err = fmt.Errorf("encode %s: %w", name, err)
		return res
	}
	if err := writeAtomic(res.File, out); err != nil {
		res.Err = err
		return res
	}
	return res
}

// writeAtomic replaces path with data through a temp file in the same
// directory.
func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// ReadEntries decodes an exported override list.
func ReadEntries(r io.Reader) ([]overrides.Entry, error) {
	var entries []overrides.Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}
	return entries, nil
}

// WriteEntries encodes an override list in the form ReadEntries accepts.
func WriteEntries(w io.Writer, entries []overrides.Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
