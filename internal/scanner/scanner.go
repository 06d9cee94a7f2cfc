// Package scanner samples an area on a grid and scores each cell with
// the prediction service, returning the high-risk zones.
package scanner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/mlclient"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/risk"
)

// Predictor scores a single location. Satisfied by *mlclient.Client.
type Predictor interface {
	Predict(ctx context.Context, req mlclient.PredictRequest) (mlclient.Prediction, error)
}

// Bounds is the rectangular area to scan.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Options configures a grid scan.
type Options struct {
	GridSize       int     // Points per dimension (default 6, so 36 cells)
	Threshold      float64 // Minimum risk score to keep (default 40)
	MaxZones       int     // Cap on returned zones (default 20)
	Concurrency    int     // Parallel prediction calls (default 8)
	Rainfall       float64 // Assumed rainfall in mm
	TrafficDensity float64 // Assumed traffic density 0..1
}

const (
	defaultGridSize    = 6
	defaultThreshold   = 40.0
	defaultMaxZones    = 20
	defaultConcurrency = 8
	defaultDensity     = 0.5
)

// ScanArea samples the bounds on a GridSize x GridSize grid, scores each
// cell center, and returns zones at or above the threshold sorted by
// score descending. Cells whose prediction fails are skipped rather than
// failing the whole scan.
func ScanArea(ctx context.Context, p Predictor, bounds Bounds, at time.Time, opts Options) ([]risk.Zone, error) {
	if bounds.North <= bounds.South || bounds.East <= bounds.West {
		return nil, eris.Errorf("scanner: degenerate bounds %+v", bounds)
	}
	if opts.GridSize <= 0 {
		opts.GridSize = defaultGridSize
	}
	if opts.Threshold <= 0 {
		opts.Threshold = defaultThreshold
	}
	if opts.MaxZones <= 0 {
		opts.MaxZones = defaultMaxZones
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.TrafficDensity <= 0 {
		opts.TrafficDensity = defaultDensity
	}

	log := zap.L().With(
		zap.String("component", "scanner"),
		zap.Int("grid_size", opts.GridSize),
	)

	latStep := (bounds.North - bounds.South) / float64(opts.GridSize)
	lonStep := (bounds.East - bounds.West) / float64(opts.GridSize)

	var (
		mu    sync.Mutex
		zones []risk.Zone
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i := 0; i < opts.GridSize; i++ {
		for j := 0; j < opts.GridSize; j++ {
			lat := bounds.South + latStep*(float64(i)+0.5)
			lon := bounds.West + lonStep*(float64(j)+0.5)

			g.Go(func() error {
				pred, err := p.Predict(gCtx, mlclient.PredictRequest{
					Latitude:       lat,
					Longitude:      lon,
					Hour:           at.Hour(),
					DayOfWeek:      int(at.Weekday()),
					Month:          int(at.Month()),
					Rainfall:       opts.Rainfall,
					TrafficDensity: opts.TrafficDensity,
				})
				if err != nil {
					log.Warn("cell prediction failed",
						zap.Float64("lat", lat),
						zap.Float64("lon", lon),
						zap.Error(err))
					return nil
				}
				if pred.RiskScore < opts.Threshold {
					return nil
				}
				z := risk.ZoneFromHotspot(model.Hotspot{
					Latitude:           lat,
					Longitude:          lon,
					RiskScore:          pred.RiskScore,
					HotspotProbability: pred.HotspotProbability,
					IsHotspot:          pred.IsHotspot,
					SeverityClass:      pred.PredictedSeverity,
					Confidence:         pred.Confidence,
				}, at)
				mu.Lock()
				zones = append(zones, z)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "scanner: grid scan")
	}

	sort.Slice(zones, func(a, b int) bool {
		if zones[a].RiskScore != zones[b].RiskScore {
			return zones[a].RiskScore > zones[b].RiskScore
		}
		return zones[a].ID < zones[b].ID
	})
	if len(zones) > opts.MaxZones {
		zones = zones[:opts.MaxZones]
	}

	log.Info("scan complete",
		zap.Int("cells", opts.GridSize*opts.GridSize),
		zap.Int("zones", len(zones)))

	return zones, nil
}
