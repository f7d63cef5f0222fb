package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-resolver/internal/query"
)

func fp(v float64) *float64 { return &v }

func newMockPostgres(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return NewPostgresFromPool(mock, ""), mock
}

func TestPostgres_Load(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS geocode_cache").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("DELETE FROM geocode_cache WHERE query = ANY").
		WithArgs(query.PurgeKeys()).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, p.Load(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_LoadMigrateError(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS geocode_cache").
		WillReturnError(errors.New("permission denied"))

	err := p.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: migrate")
}

func TestPostgres_GetResolved(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT lat, lng, matched FROM geocode_cache").
		WithArgs("Split, Croatia").
		WillReturnRows(pgxmock.NewRows([]string{"lat", "lng", "matched"}).
			AddRow(fp(43.5081), fp(16.4402), true))

	e, err := p.Get(context.Background(), "Split, Croatia")
	require.NoError(t, err)
	assert.Equal(t, ResolvedEntry(43.5081, 16.4402), e)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetNegative(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT lat, lng, matched FROM geocode_cache").
		WithArgs("Nowhere 1, Croatia").
		WillReturnRows(pgxmock.NewRows([]string{"lat", "lng", "matched"}).
			AddRow(nil, nil, false))

	e, err := p.Get(context.Background(), "Nowhere 1, Croatia")
	require.NoError(t, err)
	assert.Equal(t, Negative, e.State)
}

func TestPostgres_GetAbsent(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT lat, lng, matched FROM geocode_cache").
		WithArgs("Split, Croatia").
		WillReturnError(pgx.ErrNoRows)

	e, err := p.Get(context.Background(), "Split, Croatia")
	require.NoError(t, err)
	assert.Equal(t, Absent, e.State)
}

func TestPostgres_Put(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO geocode_cache").
		WithArgs("Split, Croatia", 43.5, 16.4, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO geocode_cache").
		WithArgs("Nowhere 1, Croatia", nil, nil, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ctx := context.Background()
	require.NoError(t, p.Put(ctx, "Split, Croatia", ResolvedEntry(43.5, 16.4)))
	require.NoError(t, p.Put(ctx, "Nowhere 1, Croatia", NegativeEntry()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_PutError(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO geocode_cache").
		WillReturnError(errors.New("connection reset"))

	err := p.Put(context.Background(), "Split, Croatia", ResolvedEntry(43.5, 16.4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: put entry")
}

func TestPostgres_Entries(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT query, lat, lng, matched FROM geocode_cache").
		WillReturnRows(pgxmock.NewRows([]string{"query", "lat", "lng", "matched"}).
			AddRow("Split, Croatia", fp(43.5), fp(16.4), true).
			AddRow("Nowhere 1, Croatia", nil, nil, false))

	entries, err := p.Entries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]Entry{
		"Split, Croatia":     ResolvedEntry(43.5, 16.4),
		"Nowhere 1, Croatia": NegativeEntry(),
	}, entries)
}

func TestPostgres_CustomTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	p := NewPostgresFromPool(mock, "geo.cache_v2")

	mock.ExpectQuery(`SELECT lat, lng, matched FROM geo\.cache_v2`).
		WithArgs("Split, Croatia").
		WillReturnError(pgx.ErrNoRows)

	_, err = p.Get(context.Background(), "Split, Croatia")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
