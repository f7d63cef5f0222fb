package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo-resolver/internal/resilience"
)

// nominatimPlace is one element of the Nominatim search response. Coordinates
// arrive as decimal strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search implements Client.
func (n *nominatim) Search(ctx context.Context, query, countryCode string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return &Result{Matched: false}, nil
	}

	if err := n.throttle.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}
	if cc := strings.ToUpper(strings.TrimSpace(countryCode)); len(cc) == 2 {
		params.Set("countrycodes", strings.ToLower(cc))
	}

	reqURL := n.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim build request")
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim read body")
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse response")
	}

	if len(places) == 0 {
		zap.L().Debug("nominatim: no match", zap.String("query", query))
		return &Result{Matched: false}, nil
	}

	return placeToResult(places[0]), nil
}

// placeToResult converts the first place to a Result; missing or unparseable
// coordinates count as no match.
func placeToResult(p nominatimPlace) *Result {
	if p.Lat == "" || p.Lon == "" {
		return &Result{Matched: false}
	}
	lat, latErr := strconv.ParseFloat(p.Lat, 64)
	lon, lonErr := strconv.ParseFloat(p.Lon, 64)
	if latErr != nil || lonErr != nil {
		return &Result{Matched: false}
	}
	return &Result{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: p.DisplayName,
		Matched:     true,
	}
}
