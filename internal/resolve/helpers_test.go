package resolve

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/geo-resolver/internal/cache"
	"github.com/sells-group/geo-resolver/pkg/geocode"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// stubClient matches only the queries in hits and records every search.
type stubClient struct {
	hits  map[string][2]float64
	err   error
	calls []string
}

func newStubClient(hits map[string][2]float64) *stubClient {
	return &stubClient{hits: hits}
}

func (s *stubClient) Search(_ context.Context, q, _ string) (*geocode.Result, error) {
	s.calls = append(s.calls, q)
	if s.err != nil {
		return nil, s.err
	}
	if c, ok := s.hits[q]; ok {
		return &geocode.Result{Latitude: c[0], Longitude: c[1], Matched: true}, nil
	}
	return &geocode.Result{Matched: false}, nil
}

// countingStore wraps a Store and counts calls so tests can assert that no
// cache interaction happened.
type countingStore struct {
	cache.Store
	gets, puts int
	putErr     error
}

func (c *countingStore) Get(ctx context.Context, q string) (cache.Entry, error) {
	c.gets++
	return c.Store.Get(ctx, q)
}

func (c *countingStore) Put(ctx context.Context, q string, e cache.Entry) error {
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	return c.Store.Put(ctx, q, e)
}

func newCountingStore(seed map[string]cache.Entry) *countingStore {
	return &countingStore{Store: cache.NewMemory(seed)}
}

var errProviderDown = errors.New("connection refused")

// fakeClock advances virtual time on Sleep.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now = c.now.Add(d)
		c.slept += d
	}
	return nil
}

func (c *fakeClock) Slept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}
