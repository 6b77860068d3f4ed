package mapview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/five82/chronomap/internal/dataset"
	"github.com/five82/chronomap/internal/geodata"
	"github.com/five82/chronomap/internal/layers"
	"github.com/five82/chronomap/internal/overrides"
	"github.com/five82/chronomap/internal/period"
	"github.com/five82/chronomap/internal/theme"
)

// Loader fetches the bundle of one period.
type Loader interface {
	Load(ctx context.Context, periodID string) (dataset.Bundle, error)
}

// Options configures an Orchestrator.
type Options struct {
	Loader  Loader
	Catalog period.Catalog
	Store   *overrides.Store
	Map     layers.Map
	Group   layers.Group
	Theme   theme.Mode
	Labels  layers.LabelThresholds
	Logger  *slog.Logger
	// OnChange is called after every observable state change. It may be
	// called from any goroutine and must not block.
	OnChange func()
}

// Orchestrator is the top-level map coordinator. It is safe for concurrent
// use.
type Orchestrator struct {
	loader   Loader
	catalog  period.Catalog
	store    *overrides.Store
	logger   *slog.Logger
	onChange func()
	comps    []*layers.Compositor

	mu          sync.Mutex
	period      string
	theme       theme.Mode
	raw         dataset.Bundle
	effective   dataset.Bundle
	loading     bool
	err         error
	gen         uint64
	cancel      context.CancelFunc
	closed      bool
	unsubscribe func()
	wg          sync.WaitGroup

	hoverMu sync.RWMutex
	hovered geojson.Properties
}

// New wires the compositors and subscribes to the store. No period is
// selected yet.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		loader:   opts.Loader,
		catalog:  opts.Catalog,
		store:    opts.Store,
		logger:   logger.With("component", "mapview"),
		onChange: opts.OnChange,
		theme:    opts.Theme,
	}
	sink := hoverSink{o}
	for _, kind := range layers.Kinds {
		o.comps = append(o.comps, layers.New(kind, layers.Options{
			Map:    opts.Map,
			Group:  opts.Group,
			Theme:  opts.Theme,
			Labels: opts.Labels,
			Sink:   sink,
			Logger: logger,
		}))
	}
	o.unsubscribe = o.store.Subscribe(o.storeChanged)
	return o
}

// SelectPeriod switches to a period and starts loading it in the background.
// Selecting the current period again does nothing. Unknown ids fail with
// dataset.ErrUnknownPeriod and leave the state untouched.
func (o *Orchestrator) SelectPeriod(ctx context.Context, id string) error {
	if _, ok := o.catalog.Lookup(id); !ok {
		return fmt.Errorf("select period: %w: %q", dataset.ErrUnknownPeriod, id)
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return errors.New("select period: orchestrator closed")
	}
	if id == o.period && (o.loading || o.raw.PeriodID == id) {
		o.mu.Unlock()
		return nil
	}
	if o.cancel != nil {
		o.cancel()
	}
	o.gen++
	gen := o.gen
	loadCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.period = id
	o.loading = true
	o.err = nil
	o.raw = dataset.Bundle{}
	o.effective = dataset.Bundle{}
	for _, c := range o.comps {
		c.Clear()
	}
	o.wg.Add(1)
	o.mu.Unlock()

	o.logger.Info("loading period", slog.String("period", id))
	o.changed()

	go func() {
		defer o.wg.Done()
		bundle, err := o.loader.Load(loadCtx, id)
		o.finish(gen, id, bundle, err)
	}()
	return nil
}

func (o *Orchestrator) finish(gen uint64, id string, bundle dataset.Bundle, err error) {
	o.mu.Lock()
	if gen != o.gen || o.closed {
		o.mu.Unlock()
		o.logger.Debug("discarding stale load", slog.String("period", id))
		return
	}
	o.cancel = nil
	o.loading = false
	if err != nil {
		o.err = err
		o.mu.Unlock()
		if errors.Is(err, context.Canceled) {
			o.logger.Debug("period load cancelled", slog.String("period", id))
		} else {
			o.logger.Error("period load failed", slog.String("period", id), slog.String("error", err.Error()))
		}
		o.changed()
		return
	}

	o.raw = bundle
	eff := bundle
	for _, lt := range geodata.LayerTypes {
		eff = eff.WithLayer(lt, o.store.Project(id, lt, bundle.Layer(lt)))
	}
	o.effective = eff
	o.render(geodata.LayerTypes...)
	o.mu.Unlock()

	o.logger.Info("period loaded",
		slog.String("period", id),
		slog.Int("areas", featureCount(bundle.Areas)),
		slog.Int("borders", featureCount(bundle.Borders)),
		slog.Int("points", featureCount(bundle.Points)),
	)
	o.changed()
}

// storeChanged re-projects the layer types a store change touched.
func (o *Orchestrator) storeChanged(c overrides.Change) {
	o.mu.Lock()
	if o.closed || o.loading || o.raw.PeriodID == "" {
		o.mu.Unlock()
		return
	}
	var touched []geodata.LayerType
	for _, lt := range geodata.LayerTypes {
		if !c.Affects(o.period, lt) {
			continue
		}
		o.effective = o.effective.WithLayer(lt, o.store.Project(o.period, lt, o.raw.Layer(lt)))
		touched = append(touched, lt)
	}
	o.render(touched...)
	o.mu.Unlock()

	if len(touched) > 0 {
		o.logger.Debug("overrides applied", slog.String("period", o.Period()), slog.Int("layers", len(touched)))
		o.changed()
	}
}

// render pushes effective collections to the compositors of the given layer
// types. Callers hold o.mu.
func (o *Orchestrator) render(types ...geodata.LayerType) {
	for _, c := range o.comps {
		for _, lt := range types {
			if c.Kind().LayerType() == lt {
				c.Update(o.effective.Layer(lt))
			}
		}
	}
}

// SetTheme restyles every layer in place.
func (o *Orchestrator) SetTheme(mode theme.Mode) {
	o.mu.Lock()
	if o.theme == mode {
		o.mu.Unlock()
		return
	}
	o.theme = mode
	for _, c := range o.comps {
		c.SetTheme(mode)
	}
	o.mu.Unlock()
	o.changed()
}

// ApplyZoom updates label visibility. It does not take the state lock, so it
// is safe to call from map zoom callbacks.
func (o *Orchestrator) ApplyZoom(zoom float64) {
	for _, c := range o.comps {
		c.ApplyZoom(zoom)
	}
}

// Period returns the selected period id.
func (o *Orchestrator) Period() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.period
}

// Theme returns the current theme.
func (o *Orchestrator) Theme() theme.Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.theme
}

// Loading reports whether a load is in flight.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Err returns the failure of the last load, if any.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Effective returns the datasets currently shown. It is empty while loading
// and after a failed load.
func (o *Orchestrator) Effective() dataset.Bundle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.effective
}

// Raw returns the loaded datasets without overrides applied.
func (o *Orchestrator) Raw() dataset.Bundle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.raw
}

// Compositor returns the compositor of a category.
func (o *Orchestrator) Compositor(kind layers.Kind) *layers.Compositor {
	for _, c := range o.comps {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

// Hovered returns a copy of the properties of the hovered region, or nil.
func (o *Orchestrator) Hovered() geojson.Properties {
	o.hoverMu.RLock()
	defer o.hoverMu.RUnlock()
	if o.hovered == nil {
		return nil
	}
	return maps.Clone(o.hovered)
}

// Close cancels any load, detaches the layers and stops listening to the
// store. It waits for the load goroutine to exit.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	if o.cancel != nil {
		o.cancel()
	}
	for _, c := range o.comps {
		c.Clear()
	}
	unsubscribe := o.unsubscribe
	o.mu.Unlock()

	unsubscribe()
	o.wg.Wait()
}

func (o *Orchestrator) setHovered(props geojson.Properties) {
	o.hoverMu.Lock()
	o.hovered = props
	o.hoverMu.Unlock()
	o.changed()
}

func (o *Orchestrator) changed() {
	if o.onChange != nil {
		o.onChange()
	}
}

type hoverSink struct {
	o *Orchestrator
}

func (s hoverSink) HoverStarted(props geojson.Properties) { s.o.setHovered(props) }
func (s hoverSink) HoverEnded()                           { s.o.setHovered(nil) }

func featureCount(fc *geojson.FeatureCollection) int {
	if fc == nil {
		return 0
	}
	return len(fc.Features)
}
