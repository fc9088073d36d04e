package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezon-bio/leadintel/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "leadintel",
	Short: "Business-development record keeper for biologics prospecting",
	Long: "Maintains canonical company, lead, and trigger-event records: resolves raw\n" +
		"names to one record per entity, enriches records through web research,\n" +
		"scores fit against the ICP, and tracks reasons-to-reach-out.",
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
