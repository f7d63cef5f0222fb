package cache

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// maxQueryField is the widest string a dBase attribute can hold.
const maxQueryField = 254

var shapefileFields = []shp.Field{
	shp.StringField("QUERY", maxQueryField),
	shp.FloatField("LAT", 12, 7),
	shp.FloatField("LNG", 12, 7),
}

// ExportShapefile writes every Resolved entry of s as a point to the
// shapefile at path, with the query and coordinates as attributes. The .shx
// and .dbf companions are created next to it. It returns the number of
// points written.
func ExportShapefile(ctx context.Context, s Store, path string) (int, error) {
	if !strings.EqualFold(filepath.Ext(path), ".shp") {
		return 0, eris.Errorf("cache: shapefile path %q must end in .shp", path)
	}

	entries, err := s.Entries(ctx)
	if err != nil {
		return 0, err
	}

	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return 0, eris.Wrapf(err, "cache: create shapefile %s", path)
	}
	defer w.Close()

	if err := w.SetFields(shapefileFields); err != nil {
		return 0, eris.Wrap(err, "cache: set shapefile fields")
	}

	queries := resolvedQueries(entries)
	for _, q := range queries {
		e := entries[q]
		row := int(w.Write(&shp.Point{X: e.Lng, Y: e.Lat}))
		for field, v := range []any{truncateField(q), e.Lat, e.Lng} {
			if err := w.WriteAttribute(row, field, v); err != nil {
				return row, eris.Wrapf(err, "cache: shapefile attribute for %q", q)
			}
		}
	}

	zap.L().Debug("cache: shapefile written", zap.String("path", path), zap.Int("points", len(queries)))
	return len(queries), nil
}

// truncateField cuts s to the dBase string limit on a rune boundary.
func truncateField(s string) string {
	if len(s) <= maxQueryField {
		return s
	}
	cut := maxQueryField
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
