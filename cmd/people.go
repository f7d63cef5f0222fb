package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo-resolver/internal/enrich"
	"github.com/sells-group/geo-resolver/internal/table"
)

var (
	peopleIn           string
	peopleOut          string
	peopleSkipExternal bool
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "Add lat/lng columns to a people table",
	Long: "Resolves residence (with country_code) or, failing that, placeOfBirth in Croatia. " +
		"PEOPLE_PIPELINE_SKIP_GEOCODE=1 replays from cache without network access.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		skip := peopleSkipExternal || cfg.People.SkipGeocode
		log := zap.L().With(zap.String("run_id", newRunID()), zap.String("input", peopleIn))

		tbl, err := table.Read(ctx, peopleIn)
		if err != nil {
			return err
		}

		r, store, err := openResolver(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		log.Info("geocoding residences", zap.Int("rows", len(tbl.Rows)), zap.Bool("skip_external", skip))
		stats, err := enrich.People(ctx, r, tbl, enrich.Options{
			SkipExternal:   skip,
			AllowFallbacks: cfg.Resolve.AllowFallbacks,
			Progress:       newProgress("Geocoding people"),
		})
		if err != nil {
			return batchFailed(log, err)
		}

		if err := table.Write(peopleOut, tbl); err != nil {
			return eris.Wrap(err, "people: write output")
		}
		logStats(log, "people geocoded", stats)
		return nil
	},
}

func init() {
	peopleCmd.Flags().StringVar(&peopleIn, "in", "", "input table (.csv or .xlsx, required)")
	peopleCmd.Flags().StringVar(&peopleOut, "out", "", "output table (.csv or .xlsx, required)")
	peopleCmd.Flags().BoolVar(&peopleSkipExternal, "skip-external", false, "answer from cache only")
	_ = peopleCmd.MarkFlagRequired("in")
	_ = peopleCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(peopleCmd)
}
