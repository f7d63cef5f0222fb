package cache

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-resolver/internal/config"
)

// Open builds the configured Store and loads it. The caller owns Close.
func Open(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	var s Store
	switch cfg.Driver {
	case "", "json":
		if cfg.Path == "" {
			return nil, eris.New("cache: cache.path is required for the json driver")
		}
		opts := []JSONOption{WithLegacyPath(cfg.LegacyPath)}
		if cfg.Snapshot {
			opts = append(opts, WithSnapshot())
		}
		s = NewJSONFile(cfg.Path, opts...)
	case "sqlite":
		if cfg.Path == "" {
			return nil, eris.New("cache: cache.path is required for the sqlite driver")
		}
		db, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		s = db
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, eris.New("cache: cache.database_url is required for the postgres driver")
		}
		pg, err := NewPostgres(ctx, cfg.DatabaseURL, cfg.Table)
		if err != nil {
			return nil, err
		}
		s = pg
	case "memory":
		s = NewMemory(nil)
	default:
		return nil, eris.Errorf("cache: unknown driver %q", cfg.Driver)
	}

	if err := s.Load(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "cache: load")
	}
	return s, nil
}
