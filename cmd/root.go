package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/config"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tarp",
	Short: "Thailand road accident risk service",
	Long:  "Serves road, traffic and accident-risk endpoints, scans areas against the ML prediction model, and ingests the national accident dataset.",
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

// openStore opens the configured backend. Callers own Close.
func openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
