package main

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/geo-resolver/internal/resolve"
)

var (
	resolveCountry      string
	resolveVenue        bool
	resolveSkipExternal bool
	resolveNoFallbacks  bool
	resolveFormat       string
)

// resolveOutput is the printed form of a resolution.
type resolveOutput struct {
	Query     string   `json:"query" yaml:"query"`
	Matched   bool     `json:"matched" yaml:"matched"`
	Latitude  *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty" yaml:"lng,omitempty"`
	Source    string   `json:"source,omitempty" yaml:"source,omitempty"`
	Candidate string   `json:"candidate,omitempty" yaml:"candidate,omitempty"`
}

func toOutput(res *resolve.Result) resolveOutput {
	out := resolveOutput{
		Query:     res.Query,
		Matched:   res.Matched,
		Source:    string(res.Source),
		Candidate: res.Candidate,
	}
	if res.Matched {
		lat, lng := res.Latitude, res.Longitude
		out.Latitude, out.Longitude = &lat, &lng
	}
	return out
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <address>",
	Short: "Resolve one address to coordinates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		address := strings.Join(args, " ")

		r, store, err := openResolver(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		var res *resolve.Result
		if resolveVenue {
			res, err = r.ResolveVenue(ctx, address, resolveCountry, resolveSkipExternal)
		} else {
			res, err = r.Resolve(ctx, address, resolveCountry, resolve.Options{
				SkipExternal:   resolveSkipExternal,
				AllowFallbacks: cfg.Resolve.AllowFallbacks && !resolveNoFallbacks,
			})
		}
		if err != nil {
			return eris.Wrap(err, "resolve")
		}

		out := cmd.OutOrStdout()
		switch resolveFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(toOutput(res))
		case "yaml":
			return yaml.NewEncoder(out).Encode(toOutput(res))
		default:
			return eris.Errorf("resolve: unknown format %q", resolveFormat)
		}
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveCountry, "country", "HR", "ISO 3166-1 alpha-2 country code")
	resolveCmd.Flags().BoolVar(&resolveVenue, "venue", false, "use event venue fallbacks")
	resolveCmd.Flags().BoolVar(&resolveSkipExternal, "skip-external", false, "answer from cache only")
	resolveCmd.Flags().BoolVar(&resolveNoFallbacks, "no-fallbacks", false, "do not try degraded queries")
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "json", "output format (json, yaml)")
	rootCmd.AddCommand(resolveCmd)
}
