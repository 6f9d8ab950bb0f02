package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/arr-heatmap/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "arr-heatmap",
	Short: "Company ARR heatmap service",
	Long:  "Fetches the company list from Google Sheets, normalizes and classifies each row into revenue tiers and sales regions, and serves the map view bundle.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
