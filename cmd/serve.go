package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/mlclient"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/road"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/server"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/store"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/traffic"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Serves road conditions, traffic readings, nearby risk aggregation, hotspot predictions and dashboard statistics.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	if err := seedIfEmpty(ctx, st); err != nil {
		return err
	}

	condCache := traffic.NewConditionsCache(4096, 2*time.Minute)
	trafficSrc := traffic.NewCachedSource(traffic.NewSynthesizer(), condCache)

	var refresherOpts []traffic.RefresherOption
	if cfg.Traffic.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Traffic.RedisAddr})
		refresherOpts = append(refresherOpts, traffic.WithRedisMirror(rdb))
	}
	refresher := traffic.NewRefresher(trafficSrc, cfg.Traffic.RefreshInterval, refresherOpts...)
	refresher.Start(ctx)
	defer refresher.Stop()

	srv := &server.Server{
		Store:    st,
		Road:     road.NewSynthesizer(),
		Traffic:  trafficSrc,
		Index:    refresher,
		Hotspots: mlclient.New(cfg.ML.BaseURL),
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	zap.L().Info("starting api server",
		zap.String("addr", addr),
		zap.String("store", cfg.Store.Driver),
		zap.String("ml_base_url", cfg.ML.BaseURL),
	)

	go func() {
		<-ctx.Done()
		cs := condCache.Stats()
		zap.L().Info("shutting down api server",
			zap.Int("traffic_cache_entries", cs.Entries),
			zap.Int64("traffic_cache_hits", cs.Hits),
			zap.Int64("traffic_cache_misses", cs.Misses),
			zap.Float64("traffic_cache_hit_rate", cs.HitRate),
		)
		_ = httpSrv.Close()
	}()

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "api server")
	}
	return nil
}

// seedIfEmpty loads the bundled risk locations on first run.
func seedIfEmpty(ctx context.Context, st store.Store) error {
	locs, err := st.ListRiskLocations(ctx)
	if err != nil {
		return err
	}
	if len(locs) > 0 {
		return nil
	}

	seeded, err := store.LoadSeedLocations(cfg.Seed.Path)
	if err != nil {
		zap.L().Warn("seed file unavailable, starting with no risk locations", zap.Error(err))
		return nil
	}
	n, err := st.UpsertRiskLocations(ctx, seeded)
	if err != nil {
		return eris.Wrap(err, "seed risk locations")
	}
	zap.L().Info("seeded risk locations", zap.Int64("rows", n), zap.String("path", cfg.Seed.Path))
	return nil
}
