package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-resolver/internal/cache"
	"github.com/sells-group/geo-resolver/internal/query"
)

func TestBatch_SharedAddressFetchedOnce(t *testing.T) {
	client := newStubClient(map[string][2]float64{query.CampusSplit: {43.5079, 16.4699}})
	r := New(cache.NewMemory(nil), client)

	items := []Item{
		{Address: "Studentski dom Kampus, Split", CountryCode: "HR"},
		{Address: "Studentski dom Kampus,  Split", CountryCode: "hr"},
	}
	results, stats, err := r.Batch(context.Background(), items, BatchOptions{Options: withFallbacks})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.True(t, results[0].Matched)
	assert.Equal(t, results[0].Latitude, results[1].Latitude)
	assert.Equal(t, results[0].Longitude, results[1].Longitude)
	assert.LessOrEqual(t, len(client.calls), 1)
	assert.Equal(t, Stats{Items: 2, Distinct: 1, Resolved: 1}, stats)
}

func TestBatch_OrderAndStats(t *testing.T) {
	client := newStubClient(map[string][2]float64{
		"Split, Croatia":  {43.5, 16.4},
		"Zagreb, Croatia": {45.8, 15.9},
	})
	r := New(cache.NewMemory(nil), client)

	var progress [][2]int
	items := []Item{
		{Address: "Zagreb", CountryCode: "HR"},
		{Address: "", CountryCode: "HR"},
		{Address: "Split", CountryCode: "HR"},
		{Address: "Zagreb", CountryCode: "HR"},
		{Address: "Atlantis", CountryCode: "XX1"},
		{Address: "Nowhere 1", CountryCode: "HR"},
	}
	results, stats, err := r.Batch(context.Background(), items, BatchOptions{
		Progress: func(done, total int) { progress = append(progress, [2]int{done, total}) },
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Zagreb, Croatia", "Split, Croatia", "Nowhere 1, Croatia"}, client.calls)
	assert.Equal(t, Stats{Items: 6, Distinct: 3, Resolved: 2, Unresolved: 1, Skipped: 2}, stats)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)

	assert.Same(t, results[0], results[3])
	assert.False(t, results[1].Matched)
	assert.True(t, results[2].Matched)
	assert.False(t, results[4].Matched)
	assert.False(t, results[5].Matched)
}

func TestBatch_VenueMode(t *testing.T) {
	client := newStubClient(map[string][2]float64{"Neki Teren, Split, Croatia": {43.51, 16.44}})
	r := New(cache.NewMemory(nil), client)

	results, stats, err := r.Batch(context.Background(), []Item{
		{Address: "Neki\nTeren", CountryCode: "HR"},
		{Address: "Neki Teren", CountryCode: "HR"},
	}, BatchOptions{Venue: true})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Distinct)
	assert.Equal(t, SourceVenue, results[0].Source)
	assert.Same(t, results[0], results[1])
}

func TestBatch_ErrorStopsRun(t *testing.T) {
	client := newStubClient(nil)
	client.err = errProviderDown
	r := New(cache.NewMemory(nil), client)

	_, _, err := r.Batch(context.Background(), []Item{
		{Address: "Split", CountryCode: "HR"},
		{Address: "Zagreb", CountryCode: "HR"},
	}, BatchOptions{Options: withFallbacks})
	require.Error(t, err)
	assert.Len(t, client.calls, 1)
}
