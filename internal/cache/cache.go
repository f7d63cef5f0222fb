// Package cache persists geocoding outcomes keyed by canonical query. A
// stored negative result is distinct from a query that was never attempted.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// State is the tri-state outcome recorded for a query.
type State int

const (
	// Absent means resolution was never attempted.
	Absent State = iota
	// Negative means resolution was attempted and failed.
	Negative
	// Resolved means a coordinate is known.
	Resolved
)

func (s State) String() string {
	switch s {
	case Negative:
		return "negative"
	case Resolved:
		return "resolved"
	default:
		return "absent"
	}
}

// Entry is a cached outcome.
type Entry struct {
	State State
	Lat   float64
	Lng   float64
}

// ResolvedEntry builds a Resolved entry.
func ResolvedEntry(lat, lng float64) Entry {
	return Entry{State: Resolved, Lat: lat, Lng: lng}
}

// NegativeEntry builds a Negative entry.
func NegativeEntry() Entry {
	return Entry{State: Negative}
}

// Store is a persistent query -> Entry mapping.
type Store interface {
	// Load prepares the store for use: migrations, legacy import and purging
	// of corrected keys.
	Load(ctx context.Context) error
	// Get returns the entry for query, or an Absent entry.
	Get(ctx context.Context, query string) (Entry, error)
	// Put records an entry durably before returning.
	Put(ctx context.Context, query string, e Entry) error
	// Entries returns a copy of every stored entry.
	Entries(ctx context.Context) (map[string]Entry, error)
	Close() error
}

var errPutAbsent = eris.New("cache: cannot store an absent entry")

// Counts tallies resolved and negative entries.
func Counts(entries map[string]Entry) (resolved, negative int) {
	for _, e := range entries {
		switch e.State {
		case Resolved:
			resolved++
		case Negative:
			negative++
		}
	}
	return resolved, negative
}

// coord is the on-disk form of a Resolved entry. Values are written as
// decimal strings and read back from either strings or numbers.
type coord struct {
	Lat flexFloat `json:"lat"`
	Lng flexFloat `json:"lng"`
}

type flexFloat float64

func (f flexFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(f), 'f', -1, 64))
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		return eris.New("cache: empty coordinate")
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return eris.Wrap(err, "cache: decode coordinate string")
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return eris.Wrapf(err, "cache: parse coordinate %q", s)
	}
	*f = flexFloat(v)
	return nil
}

// encodeEntries converts entries to their wire form: nil marks Negative.
func encodeEntries(entries map[string]Entry) map[string]*coord {
	out := make(map[string]*coord, len(entries))
	for q, e := range entries {
		switch e.State {
		case Resolved:
			out[q] = &coord{Lat: flexFloat(e.Lat), Lng: flexFloat(e.Lng)}
		case Negative:
			out[q] = nil
		}
	}
	return out
}

// decodeEntry reads one wire value. Objects with unusable coordinates are
// treated as Negative: they were attempted, so they must not be refetched
// as if never tried.
func decodeEntry(raw json.RawMessage) (Entry, error) {
	if strings.TrimSpace(string(raw)) == "null" {
		return NegativeEntry(), nil
	}
	var c struct {
		Lat *flexFloat `json:"lat"`
		Lng *flexFloat `json:"lng"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return NegativeEntry(), err
	}
	if c.Lat == nil || c.Lng == nil {
		return NegativeEntry(), eris.New("cache: coordinate missing")
	}
	return ResolvedEntry(float64(*c.Lat), float64(*c.Lng)), nil
}
