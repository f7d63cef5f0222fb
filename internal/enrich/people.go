package enrich

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-resolver/internal/resolve"
	"github.com/sells-group/geo-resolver/internal/table"
)

// People table columns read by People.
const (
	ResidenceColumn    = "residence"
	CountryCodeColumn  = "country_code"
	PlaceOfBirthColumn = "placeOfBirth"
)

// BirthplaceCountry is assumed for place-of-birth lookups.
const BirthplaceCountry = "HR"

// PersonAddress picks the address to geocode for a person: the residence
// with its country code, or else the place of birth in BirthplaceCountry.
// A residence without a country code is not geocoded.
func PersonAddress(residence, countryCode, placeOfBirth string) resolve.Item {
	if r := strings.TrimSpace(residence); r != "" {
		return resolve.Item{Address: r, CountryCode: strings.ToUpper(strings.TrimSpace(countryCode))}
	}
	if p := strings.TrimSpace(placeOfBirth); p != "" {
		return resolve.Item{Address: p, CountryCode: BirthplaceCountry}
	}
	return resolve.Item{}
}

// People resolves each person's address and sets the lat and lng columns.
func People(ctx context.Context, r *resolve.Resolver, tbl *table.Table, opts Options) (resolve.Stats, error) {
	if tbl.Col(ResidenceColumn) < 0 && tbl.Col(PlaceOfBirthColumn) < 0 {
		return resolve.Stats{}, eris.Errorf("enrich: people table needs a %q or %q column", ResidenceColumn, PlaceOfBirthColumn)
	}

	items := make([]resolve.Item, len(tbl.Rows))
	for i := range tbl.Rows {
		items[i] = PersonAddress(
			tbl.Value(i, ResidenceColumn),
			tbl.Value(i, CountryCodeColumn),
			tbl.Value(i, PlaceOfBirthColumn),
		)
	}

	results, stats, err := r.Batch(ctx, items, resolve.BatchOptions{
		Options:  resolve.Options{SkipExternal: opts.SkipExternal, AllowFallbacks: opts.AllowFallbacks},
		Progress: opts.Progress,
	})
	if err != nil {
		return stats, eris.Wrap(err, "enrich: resolve residences")
	}
	return stats, setCoordinates(tbl, results)
}
