package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/mlclient"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/scanner"
)

var scanBounds scanner.Bounds

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Grid-scan an area for high-risk zones",
	Long:  "Samples the bounding box on a grid, scores each cell with the ML model, and prints the high-risk zones as JSON.",
	RunE:  runScan,
}

func init() {
	// Default bounding box covers greater Bangkok.
	scanCmd.Flags().Float64Var(&scanBounds.North, "north", 13.95, "north edge (latitude)")
	scanCmd.Flags().Float64Var(&scanBounds.South, "south", 13.55, "south edge (latitude)")
	scanCmd.Flags().Float64Var(&scanBounds.East, "east", 100.75, "east edge (longitude)")
	scanCmd.Flags().Float64Var(&scanBounds.West, "west", 100.35, "west edge (longitude)")
	scanCmd.Flags().Float64("rainfall", 0, "assumed rainfall in mm")
	scanCmd.Flags().Float64("traffic-density", 0.5, "assumed traffic density (0-1)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rainfall, _ := cmd.Flags().GetFloat64("rainfall")
	density, _ := cmd.Flags().GetFloat64("traffic-density")

	ml := mlclient.New(cfg.ML.BaseURL)
	zones, err := scanner.ScanArea(ctx, ml, scanBounds, time.Now(), scanner.Options{
		GridSize:       cfg.Scan.GridSize,
		Threshold:      cfg.Scan.Threshold,
		MaxZones:       cfg.Scan.MaxZones,
		Concurrency:    cfg.Scan.Concurrency,
		Rainfall:       rainfall,
		TrafficDensity: density,
	})
	if err != nil {
		return eris.Wrap(err, "scan area")
	}

	zap.L().Info("scan finished", zap.Int("zones", len(zones)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(zones)
}
