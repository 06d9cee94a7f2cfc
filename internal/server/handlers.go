package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/dashboard"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/geo"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/mlclient"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/risk"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/road"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseLatLon(r *http.Request) (geo.Point, bool) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")
	if latStr == "" || lonStr == "" {
		return geo.Point{}, false
	}
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lon: lon}, true
}

func parseRadius(r *http.Request, fallback float64) float64 {
	val := r.URL.Query().Get("radius")
	if val == "" {
		return fallback
	}
	radius, err := strconv.ParseFloat(val, 64)
	if err != nil || radius <= 0 {
		return fallback
	}
	return radius
}

func (s *Server) handleRoadCondition(w http.ResponseWriter, r *http.Request) {
	pt, ok := parseLatLon(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "lat and lon are required numeric parameters")
		return
	}

	cond, err := s.Road.Condition(r.Context(), pt, s.now())
	if err != nil {
		zap.L().Warn("road condition lookup failed", zap.Error(err))
		respondJSON(w, http.StatusOK, struct{}{})
		return
	}
	respondJSON(w, http.StatusOK, cond)
}

func (s *Server) handleRoadHazards(w http.ResponseWriter, r *http.Request) {
	pt, ok := parseLatLon(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "lat and lon are required numeric parameters")
		return
	}
	radius := parseRadius(r, road.DefaultHazardRadiusKm)

	hazards, err := s.Road.Hazards(r.Context(), pt, radius, s.now())
	if err != nil {
		zap.L().Warn("hazard lookup failed", zap.Error(err))
		hazards = nil
	}
	if hazards == nil {
		hazards = []model.Hazard{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"hazards": hazards,
		"count":   len(hazards),
		"radius":  radius,
	})
}

func (s *Server) handleTrafficDensity(w http.ResponseWriter, r *http.Request) {
	pt, ok := parseLatLon(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "lat and lon are required numeric parameters")
		return
	}

	cond, err := s.Traffic.Conditions(r.Context(), pt, s.now())
	if err != nil {
		zap.L().Warn("traffic conditions lookup failed", zap.Error(err))
	}
	respondJSON(w, http.StatusOK, cond)
}

func (s *Server) handleTrafficIndex(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.Index.Snapshot())
}

func (s *Server) handleRiskNearby(w http.ResponseWriter, r *http.Request) {
	pt, ok := parseLatLon(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "lat and lon are required numeric parameters")
		return
	}
	radius := parseRadius(r, risk.DefaultRadiusKm)

	locs, err := s.Store.ListRiskLocations(r.Context())
	if err != nil {
		zap.L().Warn("risk location list failed", zap.Error(err))
		locs = nil
	}

	agg := risk.Aggregate(pt, locs, radius)
	respondJSON(w, http.StatusOK, map[string]any{
		"score":        agg.Score,
		"contributors": agg.Contributors,
	})
}

func (s *Server) handleRiskAssessment(w http.ResponseWriter, r *http.Request) {
	pt, ok := parseLatLon(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "lat and lon are required numeric parameters")
		return
	}
	radius := parseRadius(r, risk.DefaultRadiusKm)
	now := s.now()

	f := risk.Factors{
		TrafficIndex: s.Index.Snapshot().Current,
		At:           now,
		Weather:      r.URL.Query().Get("weather"),
	}

	if cond, err := s.Road.Condition(r.Context(), pt, now); err != nil {
		zap.L().Warn("road condition lookup failed", zap.Error(err))
	} else {
		f.SpeedLimitKmh = cond.SpeedLimit
	}

	records, err := s.Store.ListAccidents(r.Context(), time.Time{})
	if err != nil {
		zap.L().Warn("accident list failed", zap.Error(err))
		records = nil
	}
	for _, rec := range records {
		if geo.DistanceKm(pt.Lat, pt.Lon, rec.Lat, rec.Lon) <= radius {
			f.HistoricalAccidents++
		}
	}

	locs, err := s.Store.ListRiskLocations(r.Context())
	if err != nil {
		zap.L().Warn("risk location list failed", zap.Error(err))
		locs = nil
	}
	// Road type of the nearest known risk location stands in for the
	// queried road.
	if agg := risk.Aggregate(pt, locs, radius); len(agg.Contributors) > 0 {
		f.RoadType = agg.Contributors[0].RoadType
	}

	respondJSON(w, http.StatusOK, risk.FactorScore(f))
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.Store.ListZones(r.Context())
	if err != nil {
		zap.L().Warn("zone list failed", zap.Error(err))
		zones = nil
	}
	if zones == nil {
		zones = []model.Zone{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"zones": zones,
		"count": len(zones),
	})
}

// hotspotBody distinguishes absent fields from zero values so that
// defaults apply only when a field is omitted.
type hotspotBody struct {
	Hour           *int     `json:"hour"`
	DayOfWeek      *int     `json:"day_of_week"`
	Month          *int     `json:"month"`
	Rainfall       *float64 `json:"rainfall"`
	TrafficDensity *float64 `json:"traffic_density"`
	MinProbability *float64 `json:"min_probability"`
}

// Upstream defaults: evening rush on a Thursday in January.
const (
	defaultHotspotHour    = 18
	defaultHotspotDay     = 4
	defaultHotspotMonth   = 1
	defaultHotspotDensity = 0.5
	defaultMinProbability = 0.01
)

func (s *Server) handlePredictHotspots(w http.ResponseWriter, r *http.Request) {
	var body hotspotBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	req := mlclient.HotspotRequest{
		Hour:           defaultHotspotHour,
		DayOfWeek:      defaultHotspotDay,
		Month:          defaultHotspotMonth,
		TrafficDensity: defaultHotspotDensity,
		MinProbability: defaultMinProbability,
	}
	if body.Hour != nil {
		req.Hour = *body.Hour
	}
	if body.DayOfWeek != nil {
		req.DayOfWeek = *body.DayOfWeek
	}
	if body.Month != nil {
		req.Month = *body.Month
	}
	if body.Rainfall != nil {
		req.Rainfall = *body.Rainfall
	}
	if body.TrafficDensity != nil {
		req.TrafficDensity = *body.TrafficDensity
	}
	if body.MinProbability != nil {
		req.MinProbability = *body.MinProbability
	}

	resp, err := s.Hotspots.Hotspots(r.Context(), req)
	if err != nil {
		zap.L().Warn("hotspot prediction unavailable", zap.Error(err))
		respondJSON(w, http.StatusOK, map[string]any{
			"hotspots":                []risk.Zone{},
			"total_locations_checked": 0,
			"hotspots_found":          0,
		})
		return
	}

	zones := risk.ZonesFromHotspots(resp.Hotspots, hotspotTime(s.now(), req.Hour, req.DayOfWeek))
	respondJSON(w, http.StatusOK, map[string]any{
		"hotspots":                zones,
		"total_locations_checked": resp.TotalLocationsChecked,
		"hotspots_found":          resp.HotspotsFound,
	})
}

// hotspotTime places the requested hour and weekday on the next matching
// calendar day so that derived flags reflect the scan conditions.
func hotspotTime(base time.Time, hour, dayOfWeek int) time.Time {
	shift := (dayOfWeek - int(base.Weekday()) + 7) % 7
	day := base.AddDate(0, 0, shift)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, base.Location())
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := dashboard.Filter{
		DateRange:    q.Get("date_range"),
		Province:     q.Get("province"),
		CasualtyType: q.Get("casualty_type"),
		VehicleType:  q.Get("vehicle_type"),
		Weather:      q.Get("weather"),
		Cause:        q.Get("accident_cause"),
	}

	records, err := s.Store.ListAccidents(r.Context(), time.Time{})
	if err != nil {
		zap.L().Warn("accident list failed", zap.Error(err))
		records = nil
	}

	zones, err := s.Store.ListZones(r.Context())
	if err != nil {
		zap.L().Warn("zone list failed", zap.Error(err))
		zones = nil
	}
	records = dashboard.ResolveProvinces(records, zones)

	respondJSON(w, http.StatusOK, dashboard.Build(records, filter, s.now()))
}
