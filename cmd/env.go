package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/sells-group/geo-resolver/internal/cache"
	"github.com/sells-group/geo-resolver/internal/resilience"
	"github.com/sells-group/geo-resolver/internal/resolve"
	"github.com/sells-group/geo-resolver/pkg/geocode"
)

// newClient builds the Nominatim client with one throttle for the process.
func newClient() geocode.Client {
	return geocode.NewClient(
		geocode.WithBaseURL(cfg.Nominatim.BaseURL),
		geocode.WithUserAgent(cfg.Nominatim.UserAgent),
		geocode.WithTimeout(cfg.Nominatim.Timeout()),
		geocode.WithThrottle(geocode.NewThrottle(cfg.Nominatim.MinInterval(), nil)),
	)
}

// openResolver loads the configured cache and wires it to the provider. The
// caller closes the returned store.
func openResolver(ctx context.Context) (*resolve.Resolver, cache.Store, error) {
	store, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	return resolve.New(store, newClient()), store, nil
}

// newProgress returns a progress callback drawing a bar on stderr, or nil
// when stderr is not a terminal.
func newProgress(description string) func(done, total int) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}
}

// newRunID tags the log lines of one batch run.
func newRunID() string {
	return uuid.NewString()
}

// batchFailed logs operator guidance for an aborted batch and returns err.
func batchFailed(log *zap.Logger, err error) error {
	log.Error("batch aborted",
		zap.Error(err),
		zap.Bool("transient", resilience.IsTransient(err)),
		zap.String("hint", resilience.RerunHint(err)),
	)
	return err
}

func logStats(log *zap.Logger, msg string, stats resolve.Stats) {
	log.Info(msg,
		zap.Int("rows", stats.Items),
		zap.Int("distinct", stats.Distinct),
		zap.Int("resolved", stats.Resolved),
		zap.Int("unresolved", stats.Unresolved),
		zap.Int("skipped", stats.Skipped),
	)
}
