package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-resolver/internal/query"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	bad := query.PurgeKeys()[0]
	m := NewMemory(map[string]Entry{
		bad:              ResolvedEntry(1, 2),
		"Split, Croatia": ResolvedEntry(43.5, 16.4),
	})
	require.NoError(t, m.Load(ctx))

	e, err := m.Get(ctx, bad)
	require.NoError(t, err)
	assert.Equal(t, Absent, e.State)

	require.NoError(t, m.Put(ctx, "Nowhere 1, Croatia", NegativeEntry()))
	assert.Error(t, m.Put(ctx, "x", Entry{}))

	entries, err := m.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Entries is a copy.
	entries["Zagreb, Croatia"] = NegativeEntry()
	e, err = m.Get(ctx, "Zagreb, Croatia")
	require.NoError(t, err)
	assert.Equal(t, Absent, e.State)
	assert.NoError(t, m.Close())
}

func TestCounts(t *testing.T) {
	resolved, negative := Counts(map[string]Entry{
		"a": ResolvedEntry(1, 2),
		"b": ResolvedEntry(3, 4),
		"c": NegativeEntry(),
	})
	assert.Equal(t, 2, resolved)
	assert.Equal(t, 1, negative)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "absent", Absent.String())
	assert.Equal(t, "negative", Negative.String())
	assert.Equal(t, "resolved", Resolved.String())
}
