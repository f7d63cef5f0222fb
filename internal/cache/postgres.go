package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo-resolver/internal/query"
)

// Pool is the subset of pgxpool.Pool the Postgres store needs; pgxmock
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// DefaultTable is the cache table used when none is configured.
const DefaultTable = "geocode_cache"

// Postgres implements Store on a shared Postgres table, for teams that run
// the pipeline from more than one machine.
type Postgres struct {
	pool  Pool
	table string
}

// NewPostgres connects to databaseURL and returns a store on table.
func NewPostgres(ctx context.Context, databaseURL, table string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return NewPostgresFromPool(pool, table), nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool Pool, table string) *Postgres {
	if table == "" {
		table = DefaultTable
	}
	return &Postgres{pool: pool, table: table}
}

// Load implements Store: creates the table and deletes corrected keys.
func (p *Postgres) Load(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			query     TEXT PRIMARY KEY,
			lat       DOUBLE PRECISION,
			lng       DOUBLE PRECISION,
			matched   BOOLEAN NOT NULL,
			cached_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, p.table)
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}

	tag, err := p.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE query = ANY($1)", p.table), query.PurgeKeys())
	if err != nil {
		return eris.Wrap(err, "postgres: purge corrected keys")
	}
	if n := tag.RowsAffected(); n > 0 {
		zap.L().Info("postgres: purged corrected keys", zap.String("table", p.table), zap.Int64("purged", n))
	}
	return nil
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, q string) (Entry, error) {
	var lat, lng *float64
	var matched bool
	row := p.pool.QueryRow(ctx, fmt.Sprintf("SELECT lat, lng, matched FROM %s WHERE query = $1", p.table), q)
	err := row.Scan(&lat, &lng, &matched)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, nil
	}
	if err != nil {
		return Entry{}, eris.Wrap(err, "postgres: get entry")
	}
	return pgEntry(lat, lng, matched), nil
}

// Put implements Store.
func (p *Postgres) Put(ctx context.Context, q string, e Entry) error {
	if e.State == Absent {
		return errPutAbsent
	}
	lat, lng := entryColumns(e)
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (query, lat, lng, matched, cached_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (query) DO UPDATE SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			matched = EXCLUDED.matched,
			cached_at = now()`, p.table),
		q, lat, lng, e.State == Resolved,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: put entry")
	}
	return nil
}

// Entries implements Store.
func (p *Postgres) Entries(ctx context.Context) (map[string]Entry, error) {
	rows, err := p.pool.Query(ctx, fmt.Sprintf("SELECT query, lat, lng, matched FROM %s", p.table))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list entries")
	}
	defer rows.Close()

	out := make(map[string]Entry)
	for rows.Next() {
		var q string
		var lat, lng *float64
		var matched bool
		if err := rows.Scan(&q, &lat, &lng, &matched); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entry")
		}
		out[q] = pgEntry(lat, lng, matched)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate entries")
}

// Close implements Store.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func pgEntry(lat, lng *float64, matched bool) Entry {
	if !matched || lat == nil || lng == nil {
		return NegativeEntry()
	}
	return ResolvedEntry(*lat, *lng)
}
