package risk

import (
	"math"
	"time"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/traffic"
)

// Weather conditions accepted by the factor model.
const (
	WeatherClear     = "clear"
	WeatherCloudy    = "cloudy"
	WeatherRain      = "rain"
	WeatherHeavyRain = "heavy_rain"
	WeatherFog       = "fog"
)

// Road type labels accepted by the factor model.
const (
	RoadHighway   = "highway"
	RoadMain      = "main_road"
	RoadSecondary = "secondary_road"
	RoadLocal     = "local_road"
)

// Overall risk levels.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
	LevelSevere = "severe"
)

// Factors are the inputs to the composite score. Zero values are valid:
// an all-zero Factors describes a quiet location with no accident history.
type Factors struct {
	TrafficIndex        float64   `json:"traffic_index"`
	HistoricalAccidents int       `json:"historical_accidents"`
	At                  time.Time `json:"at"`
	Weather             string    `json:"weather"`
	RoadType            string    `json:"road_type"`
	SpeedLimitKmh       int       `json:"speed_limit_kmh"`
}

// FactorBreakdown holds the per-component scores, each in [0,100].
type FactorBreakdown struct {
	Traffic       int `json:"traffic"`
	Historical    int `json:"historical"`
	Temporal      int `json:"temporal"`
	Environmental int `json:"environmental"`
}

// Assessment is the composite score with its breakdown and advice.
type Assessment struct {
	Overall         int             `json:"overall"`
	Level           string          `json:"level"`
	Factors         FactorBreakdown `json:"factors"`
	Recommendations []string        `json:"recommendations"`
}

// componentWeights: traffic and historical dominate, temporal and
// environmental refine.
const (
	weightTraffic       = 0.3
	weightHistorical    = 0.3
	weightTemporal      = 0.2
	weightEnvironmental = 0.2
)

// FactorScore combines traffic, historical, temporal and environmental
// component scores into a single assessment. Each component is [0,100],
// the overall is their weighted mean rounded to an integer.
func FactorScore(f Factors) Assessment {
	b := FactorBreakdown{
		Traffic:       trafficRisk(f),
		Historical:    historicalRisk(f.HistoricalAccidents),
		Temporal:      temporalRisk(f.At),
		Environmental: environmentalRisk(f),
	}

	overall := int(math.Round(
		float64(b.Traffic)*weightTraffic +
			float64(b.Historical)*weightHistorical +
			float64(b.Temporal)*weightTemporal +
			float64(b.Environmental)*weightEnvironmental))

	return Assessment{
		Overall:         overall,
		Level:           Level(overall),
		Factors:         b,
		Recommendations: recommendations(overall, f),
	}
}

// Level maps an overall score to a level band.
func Level(score int) string {
	switch {
	case score < 30:
		return LevelLow
	case score < 50:
		return LevelMedium
	case score < 70:
		return LevelHigh
	default:
		return LevelSevere
	}
}

// trafficRisk scales the 0-10 traffic index to 0-100 and adjusts for
// road type. Higher design speeds raise the score even at equal index.
func trafficRisk(f Factors) int {
	risk := f.TrafficIndex * 10

	switch f.RoadType {
	case RoadHighway:
		risk *= 1.2
	case RoadSecondary:
		risk *= 0.9
	case RoadLocal:
		risk *= 0.7
	}

	if risk > 100 {
		risk = 100
	}
	return int(math.Round(risk))
}

// historicalRisk maps an accident count to a stepped score.
func historicalRisk(count int) int {
	switch {
	case count == 0:
		return 10
	case count < 5:
		return 25
	case count < 10:
		return 40
	case count < 20:
		return 60
	case count < 30:
		return 75
	default:
		return 90
	}
}

// temporalRisk scores the time of travel. Rush hours add congestion
// exposure, late night adds fatigue and visibility, weekends add
// leisure traffic.
func temporalRisk(at time.Time) int {
	risk := 30
	hour := at.Hour()

	if traffic.IsRushHour(hour) {
		risk += 25
	} else if hour >= 22 || hour <= 4 {
		risk += 30
	}

	if wd := at.Weekday(); wd == time.Saturday || wd == time.Sunday {
		risk += 5
	}

	switch traffic.Lighting(hour) {
	case traffic.LightingNight:
		risk += 15
	case traffic.LightingDuskDawn:
		risk += 10
	}

	if risk > 100 {
		risk = 100
	}
	return risk
}

// environmentalRisk scores weather and posted speed.
func environmentalRisk(f Factors) int {
	risk := 20

	switch f.Weather {
	case WeatherCloudy:
		risk += 5
	case WeatherRain:
		risk += 25
	case WeatherHeavyRain:
		risk += 45
	case WeatherFog:
		risk += 35
	}

	switch {
	case f.SpeedLimitKmh >= 120:
		risk += 15
	case f.SpeedLimitKmh >= 90:
		risk += 10
	case f.SpeedLimitKmh >= 60:
		risk += 5
	}

	if risk > 100 {
		risk = 100
	}
	return risk
}

// recommendations derives safety advice from the score and its inputs.
// Always returns at least one entry.
func recommendations(score int, f Factors) []string {
	var recs []string
	hour := f.At.Hour()

	if score >= 70 {
		recs = append(recs,
			"Consider delaying your trip if possible",
			"Use alternative routes with lower traffic")
	}
	if f.TrafficIndex >= 7 {
		recs = append(recs,
			"Heavy traffic detected - expect delays",
			"Maintain safe following distance")
	}
	if hour >= 22 || hour <= 4 {
		recs = append(recs,
			"Late night driving - stay alert for fatigue",
			"Watch for reduced visibility")
	}
	if traffic.IsRushHour(hour) {
		recs = append(recs, "Rush hour period - exercise extra caution")
	}
	switch f.Weather {
	case WeatherHeavyRain, WeatherFog:
		recs = append(recs,
			"Poor weather conditions - reduce speed",
			"Turn on headlights and use fog lights if available")
	case WeatherRain:
		recs = append(recs, "Wet road conditions - drive carefully")
	}
	if f.HistoricalAccidents >= 20 {
		recs = append(recs, "High accident zone - stay extra vigilant")
	}
	if l := traffic.Lighting(hour); l == traffic.LightingNight || l == traffic.LightingDuskDawn {
		recs = append(recs, "Reduced visibility - use headlights")
	}
	if f.SpeedLimitKmh >= 90 {
		recs = append(recs, "High-speed area - maintain safe speeds")
	}

	if len(recs) == 0 {
		recs = append(recs,
			"Area is relatively safe",
			"Continue to drive defensively")
	}
	return recs
}
