package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/usecases"
)

func zoomCmd() *cobra.Command {
	var (
		south, west, north, east float64
		width, height            int
	)
	cmd := &cobra.Command{
		Use:   "zoom",
		Short: "Deepest zoom at which a bounding box fits a viewport",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := domain.NewBoundingBox(
				domain.GeoPoint{Lat: south, Lon: west},
				domain.GeoPoint{Lat: north, Lon: east},
			)
			if err != nil {
				return err
			}
			if width <= 0 || height <= 0 {
				return fmt.Errorf("viewport must be positive, got %dx%d", width, height)
			}
			fit := usecases.FitBounds(b, usecases.Viewport{Width: width, Height: height})
			return emit(fit, func() {
				fmt.Printf("zoom:   %d\ncenter: %s\n", fit.Zoom, fit.Center)
			})
		},
	}
	cmd.Flags().Float64Var(&south, "south", 0, "south latitude")
	cmd.Flags().Float64Var(&west, "west", 0, "west longitude")
	cmd.Flags().Float64Var(&north, "north", 0, "north latitude")
	cmd.Flags().Float64Var(&east, "east", 0, "east longitude")
	cmd.Flags().IntVar(&width, "width", 800, "viewport width in pixels")
	cmd.Flags().IntVar(&height, "height", 600, "viewport height in pixels")
	for _, f := range []string{"south", "west", "north", "east"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func viewCmd() *cobra.Command {
	var (
		lat, lon      float64
		zoom          int
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Bounding box visible at a centre and zoom",
		RunE: func(cmd *cobra.Command, args []string) error {
			center, err := domain.NewGeoPoint(lat, lon)
			if err != nil {
				return err
			}
			b, err := usecases.ViewBounds(center, zoom, usecases.Viewport{Width: width, Height: height})
			if err != nil {
				return err
			}
			return emit(b, func() { fmt.Println(b) })
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "centre latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "centre longitude")
	cmd.Flags().IntVar(&zoom, "zoom", 0, "canonical zoom")
	cmd.Flags().IntVar(&width, "width", 800, "viewport width in pixels")
	cmd.Flags().IntVar(&height, "height", 600, "viewport height in pixels")
	return cmd
}
