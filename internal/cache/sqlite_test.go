package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-resolver/internal/query"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "geocode.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestSQLite_PutGet(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	e, err := s.Get(ctx, "Split, Croatia")
	require.NoError(t, err)
	assert.Equal(t, Absent, e.State)

	require.NoError(t, s.Put(ctx, "Split, Croatia", ResolvedEntry(43.5081, 16.4402)))
	require.NoError(t, s.Put(ctx, "Nowhere 1, Croatia", NegativeEntry()))

	e, err = s.Get(ctx, "Split, Croatia")
	require.NoError(t, err)
	assert.Equal(t, ResolvedEntry(43.5081, 16.4402), e)

	e, err = s.Get(ctx, "Nowhere 1, Croatia")
	require.NoError(t, err)
	assert.Equal(t, Negative, e.State)
}

func TestSQLite_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.Put(ctx, "Split, Croatia", NegativeEntry()))
	require.NoError(t, s.Put(ctx, "Split, Croatia", ResolvedEntry(43.5, 16.4)))

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, ResolvedEntry(43.5, 16.4), entries["Split, Croatia"])
}

func TestSQLite_LoadPurgesCorrectedKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	bad := query.PurgeKeys()[0]

	require.NoError(t, s.Put(ctx, bad, ResolvedEntry(1, 2)))
	require.NoError(t, s.Put(ctx, "Split, Croatia", ResolvedEntry(43.5, 16.4)))
	require.NoError(t, s.Load(ctx))

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.NotContains(t, entries, bad)
	assert.Contains(t, entries, "Split, Croatia")
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "geocode.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Put(ctx, "Zagreb, Croatia", ResolvedEntry(45.81, 15.98)))
	require.NoError(t, s.Close())

	s2, err := NewSQLite(path)
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.Load(ctx))

	e, err := s2.Get(ctx, "Zagreb, Croatia")
	require.NoError(t, err)
	assert.Equal(t, ResolvedEntry(45.81, 15.98), e)
}

func TestSQLite_PutAbsentRejected(t *testing.T) {
	s := newTestSQLite(t)
	assert.Error(t, s.Put(context.Background(), "Split, Croatia", Entry{}))
}
