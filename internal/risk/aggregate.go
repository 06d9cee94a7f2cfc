// Package risk computes location risk scores: inverse-distance-weighted
// aggregation over known risk locations, factor-based scoring, and
// conversion of upstream hotspot predictions into display zones.
package risk

import (
	"math"
	"sort"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/geo"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
)

const (
	// DefaultRadiusKm is the search radius when the caller does not set one.
	DefaultRadiusKm = 10.0

	// maxContributors caps the weighted mean at the five nearest locations.
	maxContributors = 5

	// distanceSoftening bounds the inverse-distance weight for near-zero
	// distances. The 0.1 constant is part of the numeric contract; tests
	// reproduce exact scores against it.
	distanceSoftening = 0.1

	// noDataFloor is the baseline score returned when no known location
	// falls inside the radius. A policy value, not data-driven: "unknown"
	// is reported as mild background risk rather than zero.
	noDataFloor = 25
)

// NearbyRiskPoint is a risk location annotated with its distance from the
// query point. Created per query, discarded after render.
type NearbyRiskPoint struct {
	model.RiskLocation
	DistanceKm float64 `json:"distance_km"`
}

// AggregateResult is a derived risk score plus the locations contributing
// to it.
type AggregateResult struct {
	Score        int               `json:"score"`
	Contributors []NearbyRiskPoint `json:"contributors"`
}

// Aggregate computes an inverse-distance-weighted risk score for center
// from the known risk locations within radiusKm (DefaultRadiusKm when
// radiusKm <= 0). At most the five nearest locations contribute, each
// weighted 1/(distance+0.1). With no location in range the no-data floor
// of 25 is returned. The score is an integer in [0,100] whenever input
// scores are in range.
func Aggregate(center geo.Point, points []model.RiskLocation, radiusKm float64) AggregateResult {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	var nearby []NearbyRiskPoint
	for _, p := range points {
		d := geo.DistanceKm(center.Lat, center.Lon, p.Lat, p.Lon)
		if d <= radiusKm {
			nearby = append(nearby, NearbyRiskPoint{RiskLocation: p, DistanceKm: d})
		}
	}

	if len(nearby) == 0 {
		return AggregateResult{Score: noDataFloor}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	if len(nearby) > maxContributors {
		nearby = nearby[:maxContributors]
	}

	var weightedSum, weightSum float64
	for _, p := range nearby {
		w := 1 / (p.DistanceKm + distanceSoftening)
		weightedSum += p.RiskScore * w
		weightSum += w
	}

	return AggregateResult{
		Score:        int(math.Round(weightedSum / weightSum)),
		Contributors: nearby,
	}
}
