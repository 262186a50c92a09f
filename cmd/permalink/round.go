package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fcoo/permalink/internal/errors"
	"github.com/fcoo/permalink/pkg/mapview"
)

func roundCmd() *cobra.Command {
	var (
		lat, lng           float64
		latPerPx, lngPerPx float64
		zoom               float64
	)

	cmd := &cobra.Command{
		Use:   "round",
		Short: "Round a position to screen-pixel precision",
		Long: `Round a position to the fewest decimals that still tell two
neighbouring screen pixels apart, the way the control writes lat and lon.

Give the degrees per pixel directly, or a zoom level of a 256px-tile map.

Examples:
  permalink round --lat 55.6761 --lng 12.5683 --zoom 8
  permalink round --lat 55.6761 --lng 12.5683 --lat-per-px 0.0055 --lng-per-px 0.0055`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("lat") || !flags.Changed("lng") {
				return errors.New("E170").WithDetail("--lat and --lng are required")
			}

			switch {
			case flags.Changed("zoom"):
				latPerPx = mapview.DegreesPerPixel(zoom)
				lngPerPx = latPerPx
			case flags.Changed("lat-per-px") && flags.Changed("lng-per-px"):
			default:
				return errors.New("E170").
					WithDetail("either --zoom or both --lat-per-px and --lng-per-px are required")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lat=%s\n", strconv.FormatFloat(mapview.Round(lat, latPerPx), 'f', -1, 64))
			fmt.Fprintf(out, "lon=%s\n", strconv.FormatFloat(mapview.Round(lng, lngPerPx), 'f', -1, 64))
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude in degrees")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude in degrees")
	cmd.Flags().Float64Var(&latPerPx, "lat-per-px", 0, "Degrees of latitude per screen pixel")
	cmd.Flags().Float64Var(&lngPerPx, "lng-per-px", 0, "Degrees of longitude per screen pixel")
	cmd.Flags().Float64Var(&zoom, "zoom", 0, "Zoom level (instead of the per-pixel flags)")

	return cmd
}
