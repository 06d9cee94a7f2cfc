// Package traffic provides traffic density and congestion-index readings.
//
// The Source interface is the seam between consumers (risk scoring, HTTP
// handlers) and the data provider. The bundled Synthesizer is a stand-in
// until a real traffic feed is wired; swapping providers must not touch
// consumers.
package traffic

import (
	"context"
	"time"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/geo"
)

// Congestion levels derived from density.
const (
	CongestionLight    = "light"
	CongestionModerate = "moderate"
	CongestionHeavy    = "heavy"
)

// Index status labels derived from the 0-10 congestion index.
const (
	StatusClear     = "clear"
	StatusModerate  = "moderate"
	StatusBusy      = "busy"
	StatusCongested = "congested"
)

// Conditions is a point-in-time traffic reading at a location.
type Conditions struct {
	Density         float64   `json:"density"`          // 0-1
	AverageSpeedKmh float64   `json:"average_speed"`    // >= 0
	CongestionLevel string    `json:"congestion_level"` // light/moderate/heavy
	Timestamp       time.Time `json:"timestamp"`
}

// IndexReading is a citywide 0-10 congestion index sample.
type IndexReading struct {
	Current   float64   `json:"current"` // 0-10, one decimal
	Status    string    `json:"status"`  // clear/moderate/busy/congested
	Timestamp time.Time `json:"timestamp"`
}

// Source supplies traffic readings. Implementations must be safe for
// concurrent use.
type Source interface {
	// Conditions returns the traffic conditions at a point for the given time.
	Conditions(ctx context.Context, at geo.Point, t time.Time) (Conditions, error)

	// Index returns the citywide congestion index for the given time.
	Index(ctx context.Context, t time.Time) (IndexReading, error)
}

// IsRushHour reports whether the hour falls in the morning (07-09) or
// evening (17-19) rush band.
func IsRushHour(hour int) bool {
	return (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19)
}

// IsNight reports whether the hour is late night or early morning.
func IsNight(hour int) bool {
	return hour >= 22 || hour < 6
}

// Lighting conditions by hour of day.
const (
	LightingDay      = "day"
	LightingDuskDawn = "dusk_dawn"
	LightingNight    = "night"
)

// Lighting returns the ambient lighting condition for an hour of day.
func Lighting(hour int) string {
	switch {
	case hour >= 6 && hour < 7:
		return LightingDuskDawn
	case hour >= 7 && hour < 18:
		return LightingDay
	case hour >= 18 && hour < 19:
		return LightingDuskDawn
	default:
		return LightingNight
	}
}

// CongestionLevel maps a density in [0,1] to a congestion label:
// > 0.7 heavy, > 0.5 moderate, else light.
func CongestionLevel(density float64) string {
	switch {
	case density > 0.7:
		return CongestionHeavy
	case density > 0.5:
		return CongestionModerate
	default:
		return CongestionLight
	}
}

// IndexStatus maps a 0-10 congestion index to a status label:
// < 3 clear, < 5 moderate, < 7 busy, else congested.
func IndexStatus(index float64) string {
	switch {
	case index < 3:
		return StatusClear
	case index < 5:
		return StatusModerate
	case index < 7:
		return StatusBusy
	default:
		return StatusCongested
	}
}
