package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hollis-labs/contacts-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "contacts-cli",
	Short: "Merge and filter address-book exports",
	Long:  "Reconciles Google and iCloud vCard exports into one deduplicated contact list, detects and merges duplicate contacts, and optionally filters unwanted entries by rule.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Best-effort .env for local use.
		_ = godotenv.Load()

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
