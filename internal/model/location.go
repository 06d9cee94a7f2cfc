// Package model holds the domain entities shared across packages.
package model

import "time"

// RiskLocation is a known accident-prone location. Reference data: loaded
// once per session from the store or seed file and never mutated by users.
type RiskLocation struct {
	ID            int64   `json:"id" yaml:"id"`
	NameEN        string  `json:"name_en" yaml:"name_en"`
	NameTH        string  `json:"name_th" yaml:"name_th"`
	Lat           float64 `json:"lat" yaml:"lat"`
	Lon           float64 `json:"lon" yaml:"lon"`
	ProvinceID    int64   `json:"province_id" yaml:"province_id"`
	RoadType      string  `json:"road_type" yaml:"road_type"`
	RiskScore     float64 `json:"risk_score" yaml:"risk_score"`
	Severity      string  `json:"severity" yaml:"severity"`
	Accidents30d  int     `json:"accidents_30d" yaml:"accidents_30d"`
	SpeedLimitKmh int     `json:"speed_limit" yaml:"speed_limit"`
}

// Zone is a named geographic area (province or district) with a centroid
// and bounding box, loaded from boundary shapefiles.
type Zone struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	NameEN      string  `json:"name_en"`
	NameTH      string  `json:"name_th"`
	CentroidLat float64 `json:"centroid_lat"`
	CentroidLon float64 `json:"centroid_lon"`
	MinLat      float64 `json:"min_lat"`
	MinLon      float64 `json:"min_lon"`
	MaxLat      float64 `json:"max_lat"`
	MaxLon      float64 `json:"max_lon"`
}

// Contains reports whether a point falls inside the zone's bounding box.
func (z Zone) Contains(lat, lon float64) bool {
	return lat >= z.MinLat && lat <= z.MaxLat && lon >= z.MinLon && lon <= z.MaxLon
}

// Hazard is a reported road hazard near a location.
type Hazard struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Severity   string    `json:"severity"`
	ReportedAt time.Time `json:"reported_at"`
}

// RoadCondition describes the road surface at a location.
type RoadCondition struct {
	SurfaceType     string    `json:"surface_type"`
	Quality         string    `json:"quality"`
	LaneCount       int       `json:"lane_count"`
	SpeedLimit      int       `json:"speed_limit"`
	HasShoulder     bool      `json:"has_shoulder"`
	Lighting        string    `json:"lighting"`
	LastMaintenance time.Time `json:"last_maintenance"`
}
