package model

import "time"

// AccidentRecord is a single historical accident used by the dashboard
// aggregates. Records are immutable once imported.
type AccidentRecord struct {
	ID          int64     `json:"id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Province    string    `json:"province"`
	VehicleType string    `json:"vehicle_type"`
	Weather     string    `json:"weather"`
	Cause       string    `json:"accident_cause"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Fatalities  int       `json:"casualties_fatal"`
	Serious     int       `json:"casualties_serious"`
	Minor       int       `json:"casualties_minor"`
}

// Hotspot is a prediction tuple returned by the upstream ML model for one
// location. Request-scoped: fetched on scan, replaced by the next scan.
type Hotspot struct {
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	RiskScore          float64 `json:"risk_score"`
	HotspotProbability float64 `json:"hotspot_probability"`
	IsHotspot          bool    `json:"is_hotspot"`
	SeverityClass      string  `json:"severity_class"`
	Confidence         float64 `json:"confidence"`
	Name               string  `json:"name"`
}
