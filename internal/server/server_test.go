package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/mlclient"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/road"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/traffic"
)

type fakeStore struct {
	locs      []model.RiskLocation
	accidents []model.AccidentRecord
	zones     []model.Zone
	err       error
}

func (f *fakeStore) UpsertRiskLocations(context.Context, []model.RiskLocation) (int64, error) {
	return 0, nil
}

func (f *fakeStore) ListRiskLocations(context.Context) ([]model.RiskLocation, error) {
	return f.locs, f.err
}

func (f *fakeStore) InsertAccidents(context.Context, []model.AccidentRecord) (int64, error) {
	return 0, nil
}

func (f *fakeStore) ListAccidents(context.Context, time.Time) ([]model.AccidentRecord, error) {
	return f.accidents, f.err
}

func (f *fakeStore) UpsertZones(context.Context, []model.Zone) (int64, error) { return 0, nil }
func (f *fakeStore) ListZones(context.Context) ([]model.Zone, error)          { return f.zones, f.err }
func (f *fakeStore) Migrate(context.Context) error                            { return nil }
func (f *fakeStore) Close() error                                             { return nil }

type fakeIndex struct{ reading traffic.IndexReading }

func (f fakeIndex) Snapshot() traffic.IndexReading { return f.reading }

type fakeHotspotter struct {
	gotReq mlclient.HotspotRequest
	resp   mlclient.HotspotResponse
	err    error
}

func (f *fakeHotspotter) Hotspots(_ context.Context, req mlclient.HotspotRequest) (mlclient.HotspotResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

var testClock = time.Date(2026, time.January, 5, 8, 30, 0, 0, time.UTC) // Monday

func newTestServer(st *fakeStore, hs *fakeHotspotter) *Server {
	return &Server{
		Store:    st,
		Road:     road.NewSynthesizerWithSeed(1),
		Traffic:  traffic.NewSynthesizerWithSeed(1),
		Index:    fakeIndex{reading: traffic.IndexReading{Current: 6.2, Status: "busy", Timestamp: testClock}},
		Hotspots: hs,
		Now:      func() time.Time { return testClock },
	}
}

func doJSON[T any](t *testing.T, h http.Handler, method, target string, body []byte) (int, T) {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	h := newTestServer(&fakeStore{}, &fakeHotspotter{}).Router()
	code, body := doJSON[map[string]string](t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestRoadCondition(t *testing.T) {
	h := newTestServer(&fakeStore{}, &fakeHotspotter{}).Router()

	code, errBody := doJSON[map[string]string](t, h, http.MethodGet, "/road/condition?lat=13.75", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, errBody["error"])

	code, _ = doJSON[map[string]string](t, h, http.MethodGet, "/road/condition?lat=abc&lon=100.5", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, cond := doJSON[model.RoadCondition](t, h, http.MethodGet, "/road/condition?lat=13.75&lon=100.50", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, cond.SurfaceType)
	assert.GreaterOrEqual(t, cond.LaneCount, 2)
}

func TestRoadHazards(t *testing.T) {
	h := newTestServer(&fakeStore{}, &fakeHotspotter{}).Router()

	type hazardsResp struct {
		Hazards []model.Hazard `json:"hazards"`
		Count   int            `json:"count"`
		Radius  float64        `json:"radius"`
	}

	code, resp := doJSON[hazardsResp](t, h, http.MethodGet, "/road/hazards?lat=13.75&lon=100.50", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, len(resp.Hazards), resp.Count)
	assert.InDelta(t, 5.0, resp.Radius, 1e-9)

	code, resp = doJSON[hazardsResp](t, h, http.MethodGet, "/road/hazards?lat=13.75&lon=100.50&radius=2.5", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 2.5, resp.Radius, 1e-9)

	code, _ = doJSON[map[string]string](t, h, http.MethodGet, "/road/hazards", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTrafficDensity(t *testing.T) {
	h := newTestServer(&fakeStore{}, &fakeHotspotter{}).Router()

	code, cond := doJSON[traffic.Conditions](t, h, http.MethodGet, "/traffic/density?lat=13.75&lon=100.50", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.GreaterOrEqual(t, cond.Density, 0.0)
	assert.LessOrEqual(t, cond.Density, 1.0)
	assert.NotEmpty(t, cond.CongestionLevel)

	code, _ = doJSON[map[string]string](t, h, http.MethodGet, "/traffic/density?lon=100.50", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTrafficIndex(t *testing.T) {
	h := newTestServer(&fakeStore{}, &fakeHotspotter{}).Router()

	code, reading := doJSON[traffic.IndexReading](t, h, http.MethodGet, "/traffic/index", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 6.2, reading.Current, 1e-9)
	assert.Equal(t, "busy", reading.Status)
}

type nearbyResp struct {
	Score        int `json:"score"`
	Contributors []struct {
		NameEN     string  `json:"name_en"`
		DistanceKm float64 `json:"distance_km"`
	} `json:"contributors"`
}

func TestRiskNearby(t *testing.T) {
	st := &fakeStore{locs: []model.RiskLocation{
		{ID: 1, NameEN: "Din Daeng Junction", Lat: 13.75, Lon: 100.50, RiskScore: 80},
		{ID: 2, NameEN: "Far Away", Lat: 18.78, Lon: 98.98, RiskScore: 90},
	}}
	h := newTestServer(st, &fakeHotspotter{}).Router()

	code, resp := doJSON[nearbyResp](t, h, http.MethodGet, "/risk/nearby?lat=13.75&lon=100.50", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 80, resp.Score)
	require.Len(t, resp.Contributors, 1)
	assert.Equal(t, "Din Daeng Junction", resp.Contributors[0].NameEN)
	assert.Zero(t, resp.Contributors[0].DistanceKm)

	code, _ = doJSON[map[string]string](t, h, http.MethodGet, "/risk/nearby", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRiskNearby_EmptyAndStoreFailure(t *testing.T) {
	h := newTestServer(&fakeStore{}, &fakeHotspotter{}).Router()
	code, resp := doJSON[nearbyResp](t, h, http.MethodGet, "/risk/nearby?lat=13.75&lon=100.50", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 25, resp.Score, "no locations in range falls back to the floor")

	h = newTestServer(&fakeStore{err: eris.New("connection refused")}, &fakeHotspotter{}).Router()
	code, resp = doJSON[nearbyResp](t, h, http.MethodGet, "/risk/nearby?lat=13.75&lon=100.50", nil)
	assert.Equal(t, http.StatusOK, code, "store failure degrades, never a 5xx")
	assert.Equal(t, 25, resp.Score)
}

type assessmentResp struct {
	Overall int    `json:"overall"`
	Level   string `json:"level"`
	Factors struct {
		Traffic       int `json:"traffic"`
		Historical    int `json:"historical"`
		Temporal      int `json:"temporal"`
		Environmental int `json:"environmental"`
	} `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

func TestRiskAssessment(t *testing.T) {
	st := &fakeStore{
		locs: []model.RiskLocation{
			{ID: 1, NameEN: "Din Daeng Junction", Lat: 13.75, Lon: 100.50, RiskScore: 80, RoadType: "highway"},
		},
		accidents: []model.AccidentRecord{
			{Lat: 13.75, Lon: 100.50}, {Lat: 13.751, Lon: 100.501}, {Lat: 13.752, Lon: 100.502},
			{Lat: 13.753, Lon: 100.503}, {Lat: 13.754, Lon: 100.504}, {Lat: 13.755, Lon: 100.505},
			{Lat: 18.78, Lon: 98.98}, // Chiang Mai, outside the radius
		},
	}
	h := newTestServer(st, &fakeHotspotter{}).Router()

	code, resp := doJSON[assessmentResp](t, h, http.MethodGet, "/risk/assessment?lat=13.75&lon=100.50&weather=rain", nil)
	assert.Equal(t, http.StatusOK, code)

	// Index 6.2 scaled to 62, highway road type from the nearest location.
	assert.Equal(t, 74, resp.Factors.Traffic)
	// Six accidents within the default radius.
	assert.Equal(t, 40, resp.Factors.Historical)
	// Monday 08:30 is rush hour in daylight.
	assert.Equal(t, 55, resp.Factors.Temporal)
	assert.GreaterOrEqual(t, resp.Factors.Environmental, 45, "rain floor")
	assert.LessOrEqual(t, resp.Factors.Environmental, 60)

	assert.Equal(t, "high", resp.Level)
	assert.Contains(t, resp.Recommendations, "Rush hour period - exercise extra caution")

	code, _ = doJSON[map[string]string](t, h, http.MethodGet, "/risk/assessment?lat=13.75", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRiskAssessment_StoreFailure(t *testing.T) {
	h := newTestServer(&fakeStore{err: eris.New("connection refused")}, &fakeHotspotter{}).Router()

	code, resp := doJSON[assessmentResp](t, h, http.MethodGet, "/risk/assessment?lat=13.75&lon=100.50", nil)
	assert.Equal(t, http.StatusOK, code, "store failure degrades, never a 5xx")
	assert.Equal(t, 10, resp.Factors.Historical, "no history scores the quiet baseline")
	assert.Equal(t, 62, resp.Factors.Traffic, "no road type adjustment without locations")
	assert.NotEmpty(t, resp.Recommendations)
}

type zonesResp struct {
	Zones []model.Zone `json:"zones"`
	Count int          `json:"count"`
}

func TestZones(t *testing.T) {
	st := &fakeStore{zones: []model.Zone{
		{ID: 1, Code: "TH10", NameEN: "Bangkok", NameTH: "กรุงเทพมหานคร", MinLat: 13.5, MaxLat: 14.0, MinLon: 100.3, MaxLon: 100.9},
	}}
	h := newTestServer(st, &fakeHotspotter{}).Router()

	code, resp := doJSON[zonesResp](t, h, http.MethodGet, "/zones", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Zones, 1)
	assert.Equal(t, "Bangkok", resp.Zones[0].NameEN)
}

func TestZones_StoreFailure(t *testing.T) {
	h := newTestServer(&fakeStore{err: eris.New("timeout")}, &fakeHotspotter{}).Router()

	code, resp := doJSON[zonesResp](t, h, http.MethodGet, "/zones", nil)
	assert.Equal(t, http.StatusOK, code, "store failure degrades, never a 5xx")
	assert.Zero(t, resp.Count)
	assert.NotNil(t, resp.Zones, "array stays empty, not null")
}

type hotspotsResp struct {
	Hotspots []struct {
		ID        string  `json:"id"`
		RiskScore float64 `json:"risk_score"`
		Severity  string  `json:"severity"`
		Factors   struct {
			IsRushHour bool `json:"is_rush_hour"`
			IsWeekend  bool `json:"is_weekend"`
		} `json:"factors"`
	} `json:"hotspots"`
	TotalLocationsChecked int `json:"total_locations_checked"`
	HotspotsFound         int `json:"hotspots_found"`
}

func TestPredictHotspots(t *testing.T) {
	hs := &fakeHotspotter{resp: mlclient.HotspotResponse{
		Hotspots: []model.Hotspot{
			{Latitude: 13.7563, Longitude: 100.5018, RiskScore: 72, HotspotProbability: 0.81, IsHotspot: true},
			{Latitude: 18.7883, Longitude: 98.9853, RiskScore: 35},
		},
		TotalLocationsChecked: 5000,
		HotspotsFound:         2,
	}}
	h := newTestServer(&fakeStore{}, hs).Router()

	body := []byte(`{"hour": 8, "day_of_week": 6, "rainfall": 12.5, "min_probability": 0.6}`)
	code, resp := doJSON[hotspotsResp](t, h, http.MethodPost, "/predict/hotspots", body)
	assert.Equal(t, http.StatusOK, code)

	// Provided fields pass through, omitted fields take upstream defaults.
	assert.Equal(t, 8, hs.gotReq.Hour)
	assert.Equal(t, 6, hs.gotReq.DayOfWeek)
	assert.Equal(t, 1, hs.gotReq.Month)
	assert.InDelta(t, 12.5, hs.gotReq.Rainfall, 1e-9)
	assert.InDelta(t, 0.5, hs.gotReq.TrafficDensity, 1e-9)
	assert.InDelta(t, 0.6, hs.gotReq.MinProbability, 1e-9)

	require.Len(t, resp.Hotspots, 2)
	assert.Equal(t, 5000, resp.TotalLocationsChecked)
	assert.Equal(t, "ml-risk-13.7563-100.5018", resp.Hotspots[0].ID)
	assert.Equal(t, "high", resp.Hotspots[0].Severity)
	assert.Equal(t, "medium", resp.Hotspots[1].Severity)
	assert.True(t, resp.Hotspots[0].Factors.IsRushHour)
	assert.True(t, resp.Hotspots[0].Factors.IsWeekend, "requested day 6 is Saturday")
}

func TestPredictHotspots_Defaults(t *testing.T) {
	hs := &fakeHotspotter{}
	h := newTestServer(&fakeStore{}, hs).Router()

	code, _ := doJSON[hotspotsResp](t, h, http.MethodPost, "/predict/hotspots", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 18, hs.gotReq.Hour)
	assert.Equal(t, 4, hs.gotReq.DayOfWeek)
	assert.Equal(t, 1, hs.gotReq.Month)
	assert.InDelta(t, 0.01, hs.gotReq.MinProbability, 1e-9)
}

func TestPredictHotspots_UpstreamFailure(t *testing.T) {
	hs := &fakeHotspotter{err: eris.New("dial tcp: connection refused")}
	h := newTestServer(&fakeStore{}, hs).Router()

	code, resp := doJSON[hotspotsResp](t, h, http.MethodPost, "/predict/hotspots", []byte(`{}`))
	assert.Equal(t, http.StatusOK, code, "upstream failure degrades, never a 5xx")
	assert.Empty(t, resp.Hotspots)
	assert.Zero(t, resp.HotspotsFound)
}

func TestPredictHotspots_MalformedBody(t *testing.T) {
	h := newTestServer(&fakeStore{}, &fakeHotspotter{}).Router()
	code, body := doJSON[map[string]string](t, h, http.MethodPost, "/predict/hotspots", []byte(`{"hour": "six"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])
}

func TestDashboardStats(t *testing.T) {
	st := &fakeStore{accidents: []model.AccidentRecord{
		{OccurredAt: time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC), Province: "กรุงเทพมหานคร", Weather: "rain", Fatalities: 1},
		{OccurredAt: time.Date(2025, time.June, 10, 14, 0, 0, 0, time.UTC), Province: "เชียงใหม่", Weather: "clear"},
	}}
	h := newTestServer(st, &fakeHotspotter{}).Router()

	type statsResp struct {
		Total          int                      `json:"total"`
		MonthlyTrend   []struct{ Month string } `json:"monthly_trend"`
		YearlySummary  []any                    `json:"yearly_summary"`
		WeekdaySummary []any                    `json:"weekday_summary"`
	}

	code, resp := doJSON[statsResp](t, h, http.MethodGet, "/dashboard/stats", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, resp.Total)
	assert.NotEmpty(t, resp.YearlySummary)
	assert.Len(t, resp.WeekdaySummary, 7)

	code, resp = doJSON[statsResp](t, h, http.MethodGet, "/dashboard/stats?province=กรุงเทพมหานคร", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, resp.Total)
}

func TestDashboardStats_ProvinceFromZone(t *testing.T) {
	st := &fakeStore{
		accidents: []model.AccidentRecord{
			// Imported without a province; coordinates fall in Phuket.
			{OccurredAt: time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC), Lat: 7.88, Lon: 98.39},
			{OccurredAt: time.Date(2026, time.January, 3, 9, 0, 0, 0, time.UTC), Province: "เชียงใหม่", Lat: 18.78, Lon: 98.98},
		},
		zones: []model.Zone{
			{ID: 1, Code: "TH83", NameEN: "Phuket", NameTH: "ภูเก็ต", MinLat: 7.5, MaxLat: 8.2, MinLon: 98.2, MaxLon: 98.7},
		},
	}
	h := newTestServer(st, &fakeHotspotter{}).Router()

	type statsResp struct {
		Total int `json:"total"`
	}
	code, resp := doJSON[statsResp](t, h, http.MethodGet, "/dashboard/stats?province=ภูเก็ต", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, resp.Total)
}

func TestDashboardStats_StoreFailure(t *testing.T) {
	h := newTestServer(&fakeStore{err: eris.New("timeout")}, &fakeHotspotter{}).Router()

	type statsResp struct {
		Total        int   `json:"total"`
		MonthlyTrend []any `json:"monthly_trend"`
	}
	code, resp := doJSON[statsResp](t, h, http.MethodGet, "/dashboard/stats", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Zero(t, resp.Total)
	assert.NotNil(t, resp.MonthlyTrend, "arrays stay empty, not null")
}
