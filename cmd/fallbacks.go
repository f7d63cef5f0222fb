package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geo-resolver/internal/query"
)

var (
	fallbacksCountry string
	fallbacksVenue   bool
)

var fallbacksCmd = &cobra.Command{
	Use:   "fallbacks <address>",
	Short: "Print the canonical query and its fallback candidates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address := strings.Join(args, " ")
		q, ok := query.Normalize(address, fallbacksCountry)
		if !ok {
			return eris.Errorf("fallbacks: cannot build a query from %q / %q", address, fallbacksCountry)
		}

		candidates := query.Fallbacks(q)
		if fallbacksVenue {
			candidates = query.VenueFallbacks(address, fallbacksCountry)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, q)
		for _, c := range candidates {
			fmt.Fprintf(out, "  %s\n", c)
		}
		return nil
	},
}

func init() {
	fallbacksCmd.Flags().StringVar(&fallbacksCountry, "country", "HR", "ISO 3166-1 alpha-2 country code")
	fallbacksCmd.Flags().BoolVar(&fallbacksVenue, "venue", false, "show event venue fallbacks")
	rootCmd.AddCommand(fallbacksCmd)
}
