package cache

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/geo-resolver/internal/query"
)

// SQLite implements Store on a local SQLite database via modernc.org/sqlite.
// Each Put is its own upsert, so every entry is durable as soon as it is
// written.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	query     TEXT PRIMARY KEY,
	lat       REAL,
	lng       REAL,
	matched   INTEGER NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Load implements Store: creates the table and deletes corrected keys.
func (s *SQLite) Load(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}

	keys := query.PurgeKeys()
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	res, err := s.db.ExecContext(ctx, "DELETE FROM geocode_cache WHERE query IN ("+placeholders+")", args...)
	if err != nil {
		return eris.Wrap(err, "sqlite: purge corrected keys")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		zap.L().Info("sqlite: purged corrected keys", zap.Int64("purged", n))
	}
	return nil
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, q string) (Entry, error) {
	var lat, lng sql.NullFloat64
	var matched bool
	err := s.db.QueryRowContext(ctx,
		"SELECT lat, lng, matched FROM geocode_cache WHERE query = ?", q,
	).Scan(&lat, &lng, &matched)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, nil
	}
	if err != nil {
		return Entry{}, eris.Wrap(err, "sqlite: get entry")
	}
	return rowEntry(lat, lng, matched), nil
}

// Put implements Store.
func (s *SQLite) Put(ctx context.Context, q string, e Entry) error {
	if e.State == Absent {
		return errPutAbsent
	}
	lat, lng := entryColumns(e)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (query, lat, lng, matched, cached_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT (query) DO UPDATE SET
			lat = excluded.lat,
			lng = excluded.lng,
			matched = excluded.matched,
			cached_at = excluded.cached_at`,
		q, lat, lng, e.State == Resolved,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: put entry")
	}
	return nil
}

// Entries implements Store.
func (s *SQLite) Entries(ctx context.Context) (map[string]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT query, lat, lng, matched FROM geocode_cache")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list entries")
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[string]Entry)
	for rows.Next() {
		var q string
		var lat, lng sql.NullFloat64
		var matched bool
		if err := rows.Scan(&q, &lat, &lng, &matched); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan entry")
		}
		out[q] = rowEntry(lat, lng, matched)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate entries")
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func rowEntry(lat, lng sql.NullFloat64, matched bool) Entry {
	if !matched || !lat.Valid || !lng.Valid {
		return NegativeEntry()
	}
	return ResolvedEntry(lat.Float64, lng.Float64)
}

func entryColumns(e Entry) (lat, lng any) {
	if e.State != Resolved {
		return nil, nil
	}
	return e.Lat, e.Lng
}
