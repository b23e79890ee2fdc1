package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samirrijal/mapbridge/internal/core/domain"
)

type providerRow struct {
	ID        domain.ProviderID `json:"id"`
	ZoomRange [2]int            `json:"zoom_range"`
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers and their zoom ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows []providerRow
			for _, id := range registry.Available() {
				a, err := registry.New(id)
				if err != nil {
					return err
				}
				lo, hi := a.ZoomRange()
				rows = append(rows, providerRow{ID: id, ZoomRange: [2]int{lo, hi}})
			}
			return emit(rows, func() {
				for _, r := range rows {
					fmt.Printf("%-14s zoom %d..%d\n", r.ID, r.ZoomRange[0], r.ZoomRange[1])
				}
			})
		},
	}
}
