package mlclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req PredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 13.7563, req.Latitude)
		assert.Equal(t, 8, req.Hour)

		json.NewEncoder(w).Encode(map[string]any{
			"risk_score":          62.5,
			"hotspot_probability": 0.81,
			"is_hotspot":          true,
			"predicted_severity":  "serious",
			"confidence":          0.9,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	got, err := c.Predict(context.Background(), PredictRequest{
		Latitude: 13.7563, Longitude: 100.5018, Hour: 8, DayOfWeek: 1, Month: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 62.5, got.RiskScore)
	assert.True(t, got.IsHotspot)
	assert.Equal(t, "serious", got.PredictedSeverity)
}

func TestPredict_MalformedFieldsDefaultToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"unexpected": "shape"}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).Predict(context.Background(), PredictRequest{})
	require.NoError(t, err)
	assert.Zero(t, got.RiskScore)
	assert.False(t, got.IsHotspot)
}

func TestHotspots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict/hotspots", r.URL.Path)

		var req HotspotRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 18, req.Hour)

		w.Write([]byte(`{
			"hotspots": [
				{"latitude": 13.75, "longitude": 100.5, "risk_score": 72, "hotspot_probability": 0.9, "is_hotspot": true, "confidence": 0.85, "name": "Din Daeng"}
			],
			"total_locations_checked": 5000,
			"hotspots_found": 1
		}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).Hotspots(context.Background(), HotspotRequest{Hour: 18, DayOfWeek: 4, Month: 1})
	require.NoError(t, err)
	require.Len(t, got.Hotspots, 1)
	assert.Equal(t, 72.0, got.Hotspots[0].RiskScore)
	assert.Equal(t, "Din Daeng", got.Hotspots[0].Name)
	assert.Equal(t, 5000, got.TotalLocationsChecked)
}

func TestHotspots_EmptySliceNeverNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"total_locations_checked": 0, "hotspots_found": 0}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).Hotspots(context.Background(), HotspotRequest{})
	require.NoError(t, err)
	assert.NotNil(t, got.Hotspots)
	assert.Empty(t, got.Hotspots)
}

func TestPost_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Predict(context.Background(), PredictRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestPost_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // immediately, so every call fails to connect

	_, err := New(srv.URL).Hotspots(context.Background(), HotspotRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mlclient: hotspots")
}
