// Package server exposes the HTTP API: road and traffic readings, nearby
// risk aggregation, hotspot prediction, and dashboard statistics.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/mlclient"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/road"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/store"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/traffic"
)

// Hotspotter requests a hotspot scan from the prediction service.
// Satisfied by *mlclient.Client.
type Hotspotter interface {
	Hotspots(ctx context.Context, req mlclient.HotspotRequest) (mlclient.HotspotResponse, error)
}

// IndexSnapshotter serves the most recent citywide congestion index.
// Satisfied by *traffic.Refresher.
type IndexSnapshotter interface {
	Snapshot() traffic.IndexReading
}

// Server holds the handler dependencies. All fields must be set.
type Server struct {
	Store    store.Store
	Road     road.Source
	Traffic  traffic.Source
	Index    IndexSnapshotter
	Hotspots Hotspotter

	// Now is the clock used for request-time readings. Defaults to
	// time.Now when nil.
	Now func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Router builds the chi router with CORS and recovery middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/road/condition", s.handleRoadCondition)
	r.Get("/road/hazards", s.handleRoadHazards)
	r.Get("/traffic/density", s.handleTrafficDensity)
	r.Get("/traffic/index", s.handleTrafficIndex)
	r.Get("/risk/nearby", s.handleRiskNearby)
	r.Get("/risk/assessment", s.handleRiskAssessment)
	r.Get("/zones", s.handleZones)
	r.Post("/predict/hotspots", s.handlePredictHotspots)
	r.Get("/dashboard/stats", s.handleDashboardStats)

	return r
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
