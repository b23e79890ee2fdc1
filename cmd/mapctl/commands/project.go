package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samirrijal/mapbridge/internal/core/domain"
)

type projection struct {
	Provider   domain.ProviderID  `json:"provider"`
	Point      domain.GeoPoint    `json:"point"`
	Native     domain.NativePoint `json:"native"`
	Zoom       int                `json:"zoom"`
	NativeZoom float64            `json:"native_zoom"`
}

func projectCmd() *cobra.Command {
	var (
		provider string
		lat, lon float64
		zoom     int
		inverse  bool
		x, y     float64
	)
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Convert between geographic and provider-native coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := registry.New(domain.ProviderID(provider))
			if err != nil {
				return err
			}
			out := projection{Provider: a.ID(), Zoom: zoom, NativeZoom: a.ZoomToNative(zoom)}
			if inverse {
				out.Native = domain.NativePoint{X: x, Y: y}
				if out.Point, err = a.FromNative(out.Native); err != nil {
					return err
				}
			} else {
				if out.Point, err = domain.NewGeoPoint(lat, lon); err != nil {
					return err
				}
				if out.Native, err = a.ToNative(out.Point); err != nil {
					return err
				}
			}
			return emit(out, func() {
				fmt.Printf("provider:    %s\npoint:       %s\nnative:      %.6f, %.6f\nnative zoom: %g\n",
					out.Provider, out.Point, out.Native.X, out.Native.Y, out.NativeZoom)
			})
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "openlayers", "provider id")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	cmd.Flags().IntVar(&zoom, "zoom", 0, "canonical zoom")
	cmd.Flags().BoolVar(&inverse, "inverse", false, "convert --x/--y native units back to lat/lon")
	cmd.Flags().Float64Var(&x, "x", 0, "native x")
	cmd.Flags().Float64Var(&y, "y", 0, "native y")
	return cmd
}
