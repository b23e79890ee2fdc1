package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/mapbridge/internal/adapters/providers"
	"github.com/samirrijal/mapbridge/internal/pkg/config"
	"github.com/samirrijal/mapbridge/internal/pkg/logging"
)

var (
	asJSON   bool
	logLevel string
	registry *providers.Registry
)

// Execute runs the mapctl command tree.
func Execute() error {
	root := &cobra.Command{
		Use:          "mapctl",
		Short:        "Offline map projection and zoom tools",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("mapctl")
			if err != nil {
				return err
			}
			level := cfg.Log.Level
			if logLevel != "" {
				level = logLevel
			}
			logging.Setup(level, "text")
			// No sink: adapters only answer projection queries here.
			registry = providers.NewRegistry(cfg.Providers.Keys(), nil)
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")

	root.AddCommand(providersCmd(), zoomCmd(), viewCmd(), projectCmd(), distanceCmd())
	return root.Execute()
}

// emit prints v as JSON when --json is set, otherwise runs text.
func emit(v any, text func()) error {
	if !asJSON {
		text()
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
