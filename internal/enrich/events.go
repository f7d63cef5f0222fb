// Package enrich adds lat/lng columns to pipeline tables by resolving their
// location columns.
package enrich

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-resolver/internal/resolve"
	"github.com/sells-group/geo-resolver/internal/table"
)

// Column names written by the enrichers.
const (
	LatColumn = "lat"
	LngColumn = "lng"
)

// DefaultEventColumn holds the free-text event venue.
const DefaultEventColumn = "location"

// Options configures an enrichment run.
type Options struct {
	SkipExternal bool
	// AllowFallbacks enables generic fallbacks for People. Events always
	// falls back.
	AllowFallbacks bool
	// Progress is passed through to resolve.Batch.
	Progress func(done, total int)
}

// Events resolves the venue in column for every row and sets the lat and
// lng columns. Venues use the event-specific fallbacks.
func Events(ctx context.Context, r *resolve.Resolver, tbl *table.Table, column, countryCode string, opts Options) (resolve.Stats, error) {
	if tbl.Col(column) < 0 {
		return resolve.Stats{}, eris.Errorf("enrich: events table has no %q column", column)
	}

	items := make([]resolve.Item, len(tbl.Rows))
	for i := range tbl.Rows {
		items[i] = resolve.Item{Address: tbl.Value(i, column), CountryCode: countryCode}
	}

	results, stats, err := r.Batch(ctx, items, resolve.BatchOptions{
		Options:  resolve.Options{SkipExternal: opts.SkipExternal, AllowFallbacks: true},
		Venue:    true,
		Progress: opts.Progress,
	})
	if err != nil {
		return stats, eris.Wrap(err, "enrich: resolve event locations")
	}
	return stats, setCoordinates(tbl, results)
}

// setCoordinates writes lat/lng columns; unmatched rows get empty cells.
func setCoordinates(tbl *table.Table, results []*resolve.Result) error {
	lat := make([]string, len(results))
	lng := make([]string, len(results))
	for i, res := range results {
		if res == nil || !res.Matched {
			continue
		}
		lat[i] = strconv.FormatFloat(res.Latitude, 'f', -1, 64)
		lng[i] = strconv.FormatFloat(res.Longitude, 'f', -1, 64)
	}
	if err := tbl.SetColumn(LatColumn, lat); err != nil {
		return err
	}
	return tbl.SetColumn(LngColumn, lng)
}
