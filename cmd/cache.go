package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo-resolver/internal/cache"
)

var (
	cacheExportFormat string
	cacheExportOut    string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the geocode cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count resolved and negative entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		store, err := cache.Open(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		entries, err := store.Entries(ctx)
		if err != nil {
			return err
		}
		resolved, negative := cache.Counts(entries)
		fmt.Fprintf(cmd.OutOrStdout(), "driver:   %s\nentries:  %d\nresolved: %d\nnegative: %d\n",
			cfg.Cache.Driver, len(entries), resolved, negative)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove entries cached under corrected queries",
	Long:  "Opens the cache, which deletes every key the correction table replaces. Runs implicitly before every lookup command.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := cache.Open(cmd.Context(), cfg.Cache)
		if err != nil {
			return err
		}
		zap.L().Info("cache purged", zap.String("driver", cfg.Cache.Driver))
		return store.Close()
	},
}

var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the cache as JSON, YAML, GeoJSON or a point shapefile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cacheExportFormat == cache.FormatShapefile && cacheExportOut == "" {
			return eris.New("cache export: shapefile format requires --out <file.shp>")
		}

		ctx := cmd.Context()
		store, err := cache.Open(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		if cacheExportFormat == cache.FormatShapefile {
			n, err := cache.ExportShapefile(ctx, store, cacheExportOut)
			if err != nil {
				return err
			}
			zap.L().Info("cache shapefile exported", zap.String("path", cacheExportOut), zap.Int("points", n))
			return nil
		}

		var w io.Writer = cmd.OutOrStdout()
		if cacheExportOut != "" {
			f, err := os.Create(cacheExportOut)
			if err != nil {
				return eris.Wrap(err, "cache export: create output")
			}
			defer f.Close() //nolint:errcheck
			w = f
		}
		return cache.Export(ctx, store, cacheExportFormat, w)
	},
}

var cacheImportCmd = &cobra.Command{
	Use:   "import <cache.json>",
	Short: "Copy entries from a JSON cache file into the configured cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return eris.Wrapf(err, "cache import: source %s", args[0])
		}

		ctx := cmd.Context()
		store, err := cache.Open(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		n, err := cache.Import(ctx, store, cache.NewJSONFile(args[0]))
		if err != nil {
			return err
		}
		zap.L().Info("cache import complete", zap.String("source", args[0]), zap.Int("entries", n))
		return nil
	},
}

func init() {
	cacheExportCmd.Flags().StringVar(&cacheExportFormat, "format", cache.FormatJSON, "json, yaml, geojson or shapefile")
	cacheExportCmd.Flags().StringVarP(&cacheExportOut, "out", "o", "", "output file (default stdout)")
	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd, cacheExportCmd, cacheImportCmd)
	rootCmd.AddCommand(cacheCmd)
}
