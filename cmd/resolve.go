package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color" //nolint:misspell
	"github.com/spf13/cobra"

	"github.com/go-arrower/mirrorhub/contexts/systems"
	systemsinit "github.com/go-arrower/mirrorhub/contexts/systems/init"
)

func newResolveCmd(opts []systemsinit.Option) *cobra.Command {
	var hint systems.LocationHint

	cmd := &cobra.Command{
		Use:   "resolve <hostname>",
		Short: "Show the location a system with the hostname would get",
		Long: `Resolve the location of a hostname the same way saving a system does, without saving anything.
Without --country the location is looked up by the ip address of the hostname.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			di, sc, err := initialise(ctx, configFile(cmd), opts)
			if err != nil {
				return err
			}

			defer func() { _ = di.Shutdown(context.WithoutCancel(ctx)) }()

			loc, err := sc.PreviewLocation(ctx, args[0], hint)
			if err != nil {
				return fmt.Errorf("could not resolve %s: %w", args[0], err)
			}

			printLocation(cmd, loc)

			return nil
		},
	}

	cmd.Flags().StringVar(&hint.Country, "country", "", "country the system is located in")
	cmd.Flags().StringVar(&hint.Region, "region", "", "region, e.g. the state, the system is located in")
	cmd.Flags().StringVar(&hint.City, "city", "", "city the system is located in")

	return cmd
}

func printLocation(cmd *cobra.Command, loc systems.Location) {
	bold := color.New(color.Bold).FprintfFunc()
	out := cmd.OutOrStdout()

	bold(out, "%s\n", loc.DisplayName)

	for _, row := range []struct{ key, value string }{
		{"ip", loc.IP},
		{"country", loc.Country},
		{"country code", loc.CountryCode},
		{"region", loc.Region},
		{"city", loc.City},
		{"postal code", loc.PostalCode},
		{"latitude", formatCoordinate(loc.Latitude)},
		{"longitude", formatCoordinate(loc.Longitude)},
	} {
		if row.value != "" {
			fmt.Fprintf(out, "  %-13s %s\n", row.key+":", row.value)
		}
	}
}

func formatCoordinate(c *float64) string {
	if c == nil {
		return ""
	}

	return strconv.FormatFloat(*c, 'f', 4, 64) //nolint:mnd
}
