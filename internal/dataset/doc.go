// Package dataset fetches the three GeoJSON collections behind a period.
//
// Client speaks to the data endpoint (GET /data/{file}.geojson). Loader fans
// the three requests out concurrently and joins them: a Bundle is returned
// only when areas, borders and points all arrived and decoded. Any single
// failure cancels the siblings and fails the whole load, so a caller never
// sees one layer of a period without the other two.
//
// Cancellation is driven by the caller's context. A cancelled load returns an
// error satisfying errors.Is(err, context.Canceled); callers treat it as
// control flow, not as a failure worth reporting.
package dataset
