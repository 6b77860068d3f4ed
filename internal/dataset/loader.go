package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/five82/chronomap/internal/geodata"
	"github.com/five82/chronomap/internal/period"
)

// ErrUnknownPeriod is returned for a period id missing from the catalog.
var ErrUnknownPeriod = errors.New("unknown period")

// Bundle is the complete dataset set of one period.
type Bundle struct {
	PeriodID string
	Areas    *geojson.FeatureCollection
	Borders  *geojson.FeatureCollection
	Points   *geojson.FeatureCollection
}

// Layer returns the collection for a layer type.
func (b Bundle) Layer(layer geodata.LayerType) *geojson.FeatureCollection {
	switch layer {
	case geodata.Areas:
		return b.Areas
	case geodata.Borders:
		return b.Borders
	case geodata.Points:
		return b.Points
	}
	return nil
}

// WithLayer returns a copy of b with one collection replaced.
func (b Bundle) WithLayer(layer geodata.LayerType, fc *geojson.FeatureCollection) Bundle {
	switch layer {
	case geodata.Areas:
		b.Areas = fc
	case geodata.Borders:
		b.Borders = fc
	case geodata.Points:
		b.Points = fc
	}
	return b
}

// Loader resolves periods through the catalog and fetches their bundles.
type Loader struct {
	fetcher Fetcher
	catalog period.Catalog
}

// NewLoader builds a Loader.
func NewLoader(fetcher Fetcher, catalog period.Catalog) *Loader {
	return &Loader{fetcher: fetcher, catalog: catalog}
}

// Load fetches the three collections of a period concurrently. Either all
// three are returned or an error is.
func (l *Loader) Load(ctx context.Context, periodID string) (Bundle, error) {
	p, ok := l.catalog.Lookup(periodID)
	if !ok {
		return Bundle{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, periodID)
	}

	results := make([]*geojson.FeatureCollection, len(geodata.LayerTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, lt := range geodata.LayerTypes {
		file, _ := p.Refs.File(lt)
		g.Go(func() error {
			fc, err := l.fetcher.Fetch(gctx, file)
			if err != nil {
				return err
			}
			results[i] = fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// A sibling failure cancels gctx; report the caller's cancellation
		// when that is what actually happened.
		if ctx.Err() != nil {
			return Bundle{}, ctx.Err()
		}
		return Bundle{}, err
	}
	if ctx.Err() != nil {
		return Bundle{}, ctx.Err()
	}

	return Bundle{
		PeriodID: p.ID,
		Areas:    results[0],
		Borders:  results[1],
		Points:   results[2],
	}, nil
}
