package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
)

// Midday Wednesday: no rush, weekend, or lighting adjustments.
var calmNoon = time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

func TestLevel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, LevelLow},
		{29, LevelLow},
		{30, LevelMedium},
		{49, LevelMedium},
		{50, LevelHigh},
		{69, LevelHigh},
		{70, LevelSevere},
		{100, LevelSevere},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.score), "score %d", tt.score)
	}
}

func TestHistoricalRisk_Steps(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 10},
		{4, 25},
		{5, 40},
		{9, 40},
		{10, 60},
		{19, 60},
		{20, 75},
		{29, 75},
		{30, 90},
		{100, 90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, historicalRisk(tt.count), "count %d", tt.count)
	}
}

func TestFactorScore_CalmBaseline(t *testing.T) {
	a := FactorScore(Factors{
		At:       calmNoon,
		Weather:  WeatherClear,
		RoadType: RoadMain,
	})

	// traffic 0, historical 10, temporal 30, environmental 20
	// overall = 0*0.3 + 10*0.3 + 30*0.2 + 20*0.2 = 13
	assert.Equal(t, 13, a.Overall)
	assert.Equal(t, LevelLow, a.Level)
	assert.Equal(t, 0, a.Factors.Traffic)
	assert.Equal(t, 10, a.Factors.Historical)
	assert.Equal(t, 30, a.Factors.Temporal)
	assert.Equal(t, 20, a.Factors.Environmental)
	assert.NotEmpty(t, a.Recommendations)
}

func TestFactorScore_Severe(t *testing.T) {
	// Friday 23:00, heavy rain, congested highway with a long accident
	// history and a high posted speed.
	at := time.Date(2026, time.March, 6, 23, 0, 0, 0, time.UTC)
	a := FactorScore(Factors{
		TrafficIndex:        9,
		HistoricalAccidents: 35,
		At:                  at,
		Weather:             WeatherHeavyRain,
		RoadType:            RoadHighway,
		SpeedLimitKmh:       120,
	})

	assert.Equal(t, LevelSevere, a.Level)
	assert.LessOrEqual(t, a.Overall, 100)
	assert.Contains(t, a.Recommendations, "Consider delaying your trip if possible")
	assert.Contains(t, a.Recommendations, "Poor weather conditions - reduce speed")
	assert.Contains(t, a.Recommendations, "High accident zone - stay extra vigilant")
}

func TestTrafficRisk_RoadTypeAdjustment(t *testing.T) {
	base := Factors{TrafficIndex: 5}

	base.RoadType = RoadMain
	assert.Equal(t, 50, trafficRisk(base))

	base.RoadType = RoadHighway
	assert.Equal(t, 60, trafficRisk(base))

	base.RoadType = RoadLocal
	assert.Equal(t, 35, trafficRisk(base))

	// Capped at 100 even with the highway multiplier.
	base.TrafficIndex = 10
	base.RoadType = RoadHighway
	assert.Equal(t, 100, trafficRisk(base))
}

func TestTemporalRisk_Bands(t *testing.T) {
	day := func(hour int) time.Time {
		return time.Date(2026, time.March, 4, hour, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, 30, temporalRisk(day(12)))
	assert.Equal(t, 55, temporalRisk(day(8)))  // morning rush
	assert.Equal(t, 55, temporalRisk(day(17))) // evening rush
	assert.Equal(t, 65, temporalRisk(day(18))) // evening rush, dusk
	assert.Equal(t, 75, temporalRisk(day(23))) // late night

	// Saturday noon carries the weekend increment.
	sat := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 35, temporalRisk(sat))
}

func TestZoneFromHotspot(t *testing.T) {
	h := model.Hotspot{
		Latitude:           13.7563,
		Longitude:          100.5018,
		RiskScore:          42,
		HotspotProbability: 0.81,
		IsHotspot:          true,
		SeverityClass:      "serious",
		Confidence:         0.9,
		Name:               "Victory Monument",
	}
	at := time.Date(2026, time.March, 7, 8, 0, 0, 0, time.UTC) // Saturday 08:00

	z := ZoneFromHotspot(h, at)

	assert.Equal(t, "ml-risk-13.7563-100.5018", z.ID)
	assert.Equal(t, "high", z.Severity) // hotspot overrides the 42 score
	assert.Equal(t, 42.0, z.RiskScore)
	assert.True(t, z.Factors.IsHotspot)
	assert.True(t, z.Factors.IsRushHour)
	assert.False(t, z.Factors.IsNight)
	assert.True(t, z.Factors.IsWeekend)
	assert.Equal(t, at, z.Timestamp)
}

func TestZonesFromHotspots_PreservesOrder(t *testing.T) {
	hs := []model.Hotspot{
		{Latitude: 13.1, Longitude: 100.1, RiskScore: 60},
		{Latitude: 13.2, Longitude: 100.2, RiskScore: 20},
	}
	zones := ZonesFromHotspots(hs, calmNoon)

	assert.Len(t, zones, 2)
	assert.Equal(t, "high", zones[0].Severity)
	assert.Equal(t, "low", zones[1].Severity)
}
