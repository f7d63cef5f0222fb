// Package geocode resolves free-text queries to coordinates via the Nominatim search API.
package geocode

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the public Nominatim search endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

	// DefaultUserAgent identifies this client to the provider.
	DefaultUserAgent = "unist-sport/1.0"

	defaultTimeout = 30 * time.Second
)

// Client looks up a single best-match coordinate for a query.
type Client interface {
	// Search geocodes one canonical query, optionally restricted to a
	// two-letter country code. An unmatched query is not an error.
	Search(ctx context.Context, query, countryCode string) (*Result, error)
}

// Result holds the provider's best match for a query.
type Result struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
	Matched     bool
}

// Option configures the client.
type Option func(*nominatim)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(n *nominatim) {
		n.httpClient = hc
	}
}

// WithBaseURL overrides the search endpoint.
func WithBaseURL(u string) Option {
	return func(n *nominatim) {
		if u != "" {
			n.baseURL = u
		}
	}
}

// WithUserAgent sets the identifying User-Agent header.
func WithUserAgent(ua string) Option {
	return func(n *nominatim) {
		if ua != "" {
			n.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout. A client passed with
// WithHTTPClient is copied rather than modified.
func WithTimeout(d time.Duration) Option {
	return func(n *nominatim) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithThrottle shares an existing Throttle with the client.
func WithThrottle(t *Throttle) Option {
	return func(n *nominatim) {
		if t != nil {
			n.throttle = t
		}
	}
}

type nominatim struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	throttle   *Throttle
	timeout    time.Duration
}

// NewClient creates a Nominatim Client with the given options.
func NewClient(opts ...Option) Client {
	n := &nominatim{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		throttle:   NewThrottle(DefaultMinInterval, nil),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.timeout > 0 && n.httpClient.Timeout != n.timeout {
		hc := *n.httpClient
		hc.Timeout = n.timeout
		n.httpClient = &hc
	}
	return n
}
