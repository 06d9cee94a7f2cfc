package risk

import (
	"fmt"
	"time"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/geo"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/traffic"
)

// ZoneFactors are the situational flags attached to a zone at the time
// it was predicted.
type ZoneFactors struct {
	IsHotspot  bool `json:"is_hotspot"`
	IsRushHour bool `json:"is_rush_hour"`
	IsNight    bool `json:"is_night"`
	IsWeekend  bool `json:"is_weekend"`
}

// Zone is a hotspot prediction prepared for display. Request-scoped:
// fetched on scan, replaced on the next scan.
type Zone struct {
	ID            string      `json:"id"`
	Location      geo.Point   `json:"location"`
	RiskScore     float64     `json:"risk_score"`
	Probability   float64     `json:"probability"`
	Severity      string      `json:"severity"`
	SeverityClass string      `json:"severity_class,omitempty"`
	Confidence    float64     `json:"confidence"`
	Name          string      `json:"name,omitempty"`
	Factors       ZoneFactors `json:"factors"`
	Timestamp     time.Time   `json:"timestamp"`
}

// ZoneFromHotspot converts an upstream hotspot prediction into a display
// zone. Severity is re-derived locally from the score and hotspot flag
// rather than trusted from upstream.
func ZoneFromHotspot(h model.Hotspot, at time.Time) Zone {
	hour := at.Hour()
	wd := at.Weekday()

	return Zone{
		ID:            fmt.Sprintf("ml-risk-%.4f-%.4f", h.Latitude, h.Longitude),
		Location:      geo.Point{Lat: h.Latitude, Lon: h.Longitude},
		RiskScore:     h.RiskScore,
		Probability:   h.HotspotProbability,
		Severity:      geo.ClassifySeverity(h.RiskScore, h.IsHotspot),
		SeverityClass: h.SeverityClass,
		Confidence:    h.Confidence,
		Name:          h.Name,
		Factors: ZoneFactors{
			IsHotspot:  h.IsHotspot,
			IsRushHour: traffic.IsRushHour(hour),
			IsNight:    traffic.IsNight(hour),
			IsWeekend:  wd == time.Saturday || wd == time.Sunday,
		},
		Timestamp: at,
	}
}

// ZonesFromHotspots converts a batch of predictions, preserving order.
func ZonesFromHotspots(hs []model.Hotspot, at time.Time) []Zone {
	zones := make([]Zone, 0, len(hs))
	for _, h := range hs {
		zones = append(zones, ZoneFromHotspot(h, at))
	}
	return zones
}
