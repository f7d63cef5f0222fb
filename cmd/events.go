package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo-resolver/internal/enrich"
	"github.com/sells-group/geo-resolver/internal/table"
)

var (
	eventsIn           string
	eventsOut          string
	eventsColumn       string
	eventsCountry      string
	eventsSkipExternal bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Add lat/lng columns to an events table",
	Long: "Resolves the venue column of a CSV or XLSX events table with event-specific fallbacks. " +
		"EVENTS_PIPELINE_SKIP_GEOCODE=1 replays from cache without network access.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		country := eventsCountry
		if country == "" {
			country = cfg.Events.CountryCode
		}
		skip := eventsSkipExternal || cfg.Events.SkipGeocode
		log := zap.L().With(zap.String("run_id", newRunID()), zap.String("input", eventsIn))

		tbl, err := table.Read(ctx, eventsIn)
		if err != nil {
			return err
		}

		r, store, err := openResolver(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		log.Info("geocoding event locations", zap.Int("rows", len(tbl.Rows)), zap.Bool("skip_external", skip))
		stats, err := enrich.Events(ctx, r, tbl, eventsColumn, country, enrich.Options{
			SkipExternal: skip,
			Progress:     newProgress("Geocoding events"),
		})
		if err != nil {
			return batchFailed(log, err)
		}

		if err := table.Write(eventsOut, tbl); err != nil {
			return eris.Wrap(err, "events: write output")
		}
		logStats(log, "events geocoded", stats)
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsIn, "in", "", "input table (.csv or .xlsx, required)")
	eventsCmd.Flags().StringVar(&eventsOut, "out", "", "output table (.csv or .xlsx, required)")
	eventsCmd.Flags().StringVar(&eventsColumn, "column", enrich.DefaultEventColumn, "venue column")
	eventsCmd.Flags().StringVar(&eventsCountry, "country", "", "country code (default events.country_code)")
	eventsCmd.Flags().BoolVar(&eventsSkipExternal, "skip-external", false, "answer from cache only")
	_ = eventsCmd.MarkFlagRequired("in")
	_ = eventsCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(eventsCmd)
}
