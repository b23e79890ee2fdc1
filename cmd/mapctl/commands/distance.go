package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samirrijal/mapbridge/internal/core/domain"
)

func distanceCmd() *cobra.Command {
	var fromLat, fromLon, toLat, toLon float64
	cmd := &cobra.Command{
		Use:   "distance",
		Short: "Great-circle distance between two points",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := domain.NewGeoPoint(fromLat, fromLon)
			if err != nil {
				return err
			}
			to, err := domain.NewGeoPoint(toLat, toLon)
			if err != nil {
				return err
			}
			km := from.Distance(to)
			out := map[string]float64{"km": km, "miles": domain.KMToMiles(km)}
			return emit(out, func() {
				fmt.Printf("%.3f km (%.3f miles)\n", out["km"], out["miles"])
			})
		},
	}
	cmd.Flags().Float64Var(&fromLat, "from-lat", 0, "origin latitude")
	cmd.Flags().Float64Var(&fromLon, "from-lon", 0, "origin longitude")
	cmd.Flags().Float64Var(&toLat, "to-lat", 0, "destination latitude")
	cmd.Flags().Float64Var(&toLon, "to-lon", 0, "destination longitude")
	return cmd
}
