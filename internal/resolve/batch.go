package resolve

import (
	"context"

	"github.com/sells-group/geo-resolver/internal/query"
)

// Item is one address to resolve.
type Item struct {
	Address     string
	CountryCode string
}

// BatchOptions configures Batch.
type BatchOptions struct {
	Options
	// Venue resolves through ResolveVenue instead of Resolve.
	Venue bool
	// Progress, when set, is called after each distinct query.
	Progress func(done, total int)
}

// Stats summarizes a batch. Resolved and Unresolved count distinct queries;
// Skipped counts items without a usable address or country.
type Stats struct {
	Items      int
	Distinct   int
	Resolved   int
	Unresolved int
	Skipped    int
}

// Batch resolves items, looking up each distinct canonical query once in
// first-seen order. Items sharing a query share the same *Result. Items that
// cannot be normalized get an unmatched Result.
func (r *Resolver) Batch(ctx context.Context, items []Item, opts BatchOptions) ([]*Result, Stats, error) {
	stats := Stats{Items: len(items)}
	keys := make([]string, len(items))
	var order []string
	first := make(map[string]int)

	for i, it := range items {
		addr := it.Address
		if opts.Venue {
			addr = query.CollapseSpace(addr)
		}
		q, ok := query.Normalize(addr, it.CountryCode)
		if !ok {
			stats.Skipped++
			continue
		}
		keys[i] = q
		if _, seen := first[q]; !seen {
			first[q] = i
			order = append(order, q)
		}
	}
	stats.Distinct = len(order)

	byKey := make(map[string]*Result, len(order))
	for n, q := range order {
		it := items[first[q]]
		var (
			res *Result
			err error
		)
		if opts.Venue {
			res, err = r.ResolveVenue(ctx, it.Address, it.CountryCode, opts.SkipExternal)
		} else {
			res, err = r.Resolve(ctx, it.Address, it.CountryCode, opts.Options)
		}
		if err != nil {
			return nil, stats, err
		}
		byKey[q] = res
		if res.Matched {
			stats.Resolved++
		} else {
			stats.Unresolved++
		}
		if opts.Progress != nil {
			opts.Progress(n+1, len(order))
		}
	}

	results := make([]*Result, len(items))
	unmatched := &Result{}
	for i, q := range keys {
		if q == "" {
			results[i] = unmatched
			continue
		}
		results[i] = byKey[q]
	}
	return results, stats, nil
}
