// Package resolve turns free-text addresses into coordinates. It consults the
// cache first, then the provider, then progressively less specific fallback
// queries, and records every outcome so reruns are cheap.
package resolve

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo-resolver/internal/cache"
	"github.com/sells-group/geo-resolver/internal/query"
	"github.com/sells-group/geo-resolver/pkg/geocode"
)

// Source records where a coordinate came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
	SourceVenue    Source = "venue"
)

// Options controls a single resolution.
type Options struct {
	// SkipExternal answers from cache only. Misses are not recorded.
	SkipExternal bool
	// AllowFallbacks retries degraded queries after the canonical one fails.
	AllowFallbacks bool
}

// Result is the outcome of a resolution. Query is the canonical cache key
// (empty when the input could not be normalized). Candidate is the query the
// provider actually matched when it differs from Query.
type Result struct {
	Query     string
	Candidate string
	Latitude  float64
	Longitude float64
	Matched   bool
	Source    Source
}

// Resolver coordinates the cache and the geocoding client. It is not safe
// for concurrent use; callers resolve addresses one at a time.
type Resolver struct {
	store  cache.Store
	client geocode.Client
}

// New creates a Resolver over a loaded store.
func New(store cache.Store, client geocode.Client) *Resolver {
	return &Resolver{store: store, client: client}
}

// Resolve geocodes address in the given country. An address that cannot be
// resolved yields an unmatched Result and a nil error; only provider faults
// and cache I/O failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, address, countryCode string, opts Options) (*Result, error) {
	q, ok := query.Normalize(address, countryCode)
	if !ok {
		return &Result{}, nil
	}
	return r.resolveQuery(ctx, q, countryCode, opts)
}

func (r *Resolver) resolveQuery(ctx context.Context, q, countryCode string, opts Options) (*Result, error) {
	log := zap.L().With(zap.String("query", q))

	e, err := r.store.Get(ctx, q)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: cache lookup")
	}

	switch e.State {
	case cache.Resolved:
		log.Debug("resolve: cache hit")
		return &Result{Query: q, Latitude: e.Lat, Longitude: e.Lng, Matched: true, Source: SourceCache}, nil

	case cache.Negative:
		if opts.SkipExternal || !opts.AllowFallbacks {
			log.Debug("resolve: cached negative")
			return &Result{Query: q}, nil
		}
		// Exhausted fallbacks leave the negative entry as it is.
		return r.tryFallbacks(ctx, q, countryCode)
	}

	if opts.SkipExternal {
		log.Debug("resolve: cache miss, external lookups skipped")
		return &Result{Query: q}, nil
	}

	hit, err := r.client.Search(ctx, q, countryCode)
	if err != nil {
		return nil, eris.Wrapf(err, "resolve: search %q", q)
	}
	if hit.Matched {
		if err := r.store.Put(ctx, q, cache.ResolvedEntry(hit.Latitude, hit.Longitude)); err != nil {
			return nil, eris.Wrap(err, "resolve: cache result")
		}
		log.Debug("resolve: provider match")
		return &Result{Query: q, Latitude: hit.Latitude, Longitude: hit.Longitude, Matched: true, Source: SourceProvider}, nil
	}

	if opts.AllowFallbacks {
		res, err := r.tryFallbacks(ctx, q, countryCode)
		if err != nil || res.Matched {
			return res, err
		}
	}

	if err := r.store.Put(ctx, q, cache.NegativeEntry()); err != nil {
		return nil, eris.Wrap(err, "resolve: cache negative")
	}
	log.Debug("resolve: no match")
	return &Result{Query: q}, nil
}

// tryFallbacks searches each generic fallback of q directly, without
// recursing into further fallbacks. The first match is stored under q only.
func (r *Resolver) tryFallbacks(ctx context.Context, q, countryCode string) (*Result, error) {
	for _, cand := range query.Fallbacks(q) {
		hit, err := r.client.Search(ctx, cand, countryCode)
		if err != nil {
			return nil, eris.Wrapf(err, "resolve: search fallback %q", cand)
		}
		if !hit.Matched {
			zap.L().Debug("resolve: fallback missed", zap.String("query", q), zap.String("fallback", cand))
			continue
		}
		if err := r.store.Put(ctx, q, cache.ResolvedEntry(hit.Latitude, hit.Longitude)); err != nil {
			return nil, eris.Wrap(err, "resolve: cache fallback result")
		}
		zap.L().Debug("resolve: fallback match", zap.String("query", q), zap.String("fallback", cand))
		return &Result{
			Query:     q,
			Candidate: cand,
			Latitude:  hit.Latitude,
			Longitude: hit.Longitude,
			Matched:   true,
			Source:    SourceFallback,
		}, nil
	}
	return &Result{Query: q}, nil
}

// ResolveVenue geocodes an event location. It runs the generic path first
// and, when that fails and external lookups are allowed, walks the
// venue-specific candidates. A venue match is stored under the original
// location's key.
func (r *Resolver) ResolveVenue(ctx context.Context, location, countryCode string, skipExternal bool) (*Result, error) {
	addr := query.CollapseSpace(location)
	if addr == "" {
		return &Result{}, nil
	}

	res, err := r.Resolve(ctx, addr, countryCode, Options{SkipExternal: skipExternal, AllowFallbacks: true})
	if err != nil || res.Matched || skipExternal || res.Query == "" {
		return res, err
	}

	orig := res.Query
	for _, cand := range query.VenueFallbacks(addr, countryCode) {
		key, ok := query.Normalize(cand, countryCode)
		if !ok || key == orig {
			continue
		}
		hit, err := r.resolveQuery(ctx, key, countryCode, Options{})
		if err != nil {
			return nil, err
		}
		if !hit.Matched {
			continue
		}
		if err := r.store.Put(ctx, orig, cache.ResolvedEntry(hit.Latitude, hit.Longitude)); err != nil {
			return nil, eris.Wrap(err, "resolve: cache venue result")
		}
		zap.L().Debug("resolve: venue match", zap.String("query", orig), zap.String("candidate", key))
		return &Result{
			Query:     orig,
			Candidate: key,
			Latitude:  hit.Latitude,
			Longitude: hit.Longitude,
			Matched:   true,
			Source:    SourceVenue,
		}, nil
	}
	return res, nil
}
