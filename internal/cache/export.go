package cache

import (
	"context"
	"encoding/json"
	"io"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/geo-resolver/internal/query"
)

// Export formats.
const (
	FormatJSON      = "json"
	FormatYAML      = "yaml"
	FormatGeoJSON   = "geojson"
	FormatShapefile = "shapefile"
)

// yamlCoord is the YAML rendering of a Resolved entry; Negative entries are
// written as null.
type yamlCoord struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// Export writes every entry of s to w. JSON matches the cache file layout,
// YAML mirrors it, and GeoJSON emits one Point feature per Resolved entry
// with the query as a property.
func Export(ctx context.Context, s Store, format string, w io.Writer) error {
	entries, err := s.Entries(ctx)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(encodeEntries(entries)), "cache: export json")

	case FormatYAML:
		out := make(map[string]*yamlCoord, len(entries))
		for q, e := range entries {
			if e.State == Resolved {
				out[q] = &yamlCoord{Lat: e.Lat, Lng: e.Lng}
			} else {
				out[q] = nil
			}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return eris.Wrap(err, "cache: export yaml")
		}
		return eris.Wrap(enc.Close(), "cache: export yaml")

	case FormatGeoJSON:
		fc, err := FeatureCollection(entries)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return eris.Wrap(enc.Encode(fc), "cache: export geojson")

	case FormatShapefile:
		return eris.New("cache: shapefile export writes to a file, use ExportShapefile")

	default:
		return eris.Errorf("cache: unknown export format %q", format)
	}
}

// FeatureCollection converts Resolved entries to GeoJSON points ordered by
// query. Negative entries have no geometry and are left out.
func FeatureCollection(entries map[string]Entry) (*geojson.FeatureCollection, error) {
	queries := resolvedQueries(entries)
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(queries))}
	for _, q := range queries {
		e := entries[q]
		pt, err := geom.NewPoint(geom.XY).SetCoords(geom.Coord{e.Lng, e.Lat})
		if err != nil {
			return nil, eris.Wrapf(err, "cache: point for %q", q)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   pt,
			Properties: map[string]any{"query": q},
		})
	}
	return fc, nil
}

// resolvedQueries returns the keys of Resolved entries in sorted order.
func resolvedQueries(entries map[string]Entry) []string {
	queries := make([]string, 0, len(entries))
	for q, e := range entries {
		if e.State == Resolved {
			queries = append(queries, q)
		}
	}
	sort.Strings(queries)
	return queries
}

// Import copies every entry of src into dst, overwriting existing keys, and
// returns the number of entries written. Corrected keys are not imported.
func Import(ctx context.Context, dst, src Store) (int, error) {
	entries, err := src.Entries(ctx)
	if err != nil {
		return 0, err
	}
	queries := make([]string, 0, len(entries))
	for q := range entries {
		queries = append(queries, q)
	}
	sort.Strings(queries)

	n := 0
	for _, q := range queries {
		e := entries[q]
		if e.State == Absent || query.IsPurgeKey(q) {
			continue
		}
		if err := dst.Put(ctx, q, e); err != nil {
			return n, eris.Wrapf(err, "cache: import %q", q)
		}
		n++
	}
	return n, nil
}
