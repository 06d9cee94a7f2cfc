// Package mlclient calls the upstream accident-risk prediction service.
// Calls are idempotent reads: failures surface to the caller, which
// degrades to empty results instead of retrying.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
)

// Client is a rate-limited HTTP client for the prediction API.
type Client struct {
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithRateLimit overrides the default request rate.
func WithRateLimit(rps rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rps, burst) }
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(10, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PredictRequest describes the conditions for a single-location prediction.
type PredictRequest struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Hour           int     `json:"hour"`
	DayOfWeek      int     `json:"day_of_week"` // 0 = Sunday
	Month          int     `json:"month"`
	Rainfall       float64 `json:"rainfall"`
	TrafficDensity float64 `json:"traffic_density"`
}

// Prediction is the model output for one location. Missing fields in the
// upstream payload decode to zero values.
type Prediction struct {
	RiskScore          float64 `json:"risk_score"`
	HotspotProbability float64 `json:"hotspot_probability"`
	IsHotspot          bool    `json:"is_hotspot"`
	PredictedSeverity  string  `json:"predicted_severity"`
	Confidence         float64 `json:"confidence"`
}

// Predict scores a single location under the given conditions.
func (c *Client) Predict(ctx context.Context, req PredictRequest) (Prediction, error) {
	var out Prediction
	if err := c.post(ctx, "/predict", req, &out); err != nil {
		return Prediction{}, eris.Wrap(err, "mlclient: predict")
	}
	return out, nil
}

// HotspotRequest describes the conditions for a country-wide hotspot scan.
type HotspotRequest struct {
	Hour           int     `json:"hour"`
	DayOfWeek      int     `json:"day_of_week"`
	Month          int     `json:"month"`
	Rainfall       float64 `json:"rainfall"`
	TrafficDensity float64 `json:"traffic_density"`
	MinProbability float64 `json:"min_probability"`
}

// HotspotResponse is the upstream hotspot scan payload.
type HotspotResponse struct {
	Hotspots              []model.Hotspot `json:"hotspots"`
	TotalLocationsChecked int             `json:"total_locations_checked"`
	HotspotsFound         int             `json:"hotspots_found"`
}

// Hotspots runs a hotspot scan under the given conditions.
func (c *Client) Hotspots(ctx context.Context, req HotspotRequest) (HotspotResponse, error) {
	var out HotspotResponse
	if err := c.post(ctx, "/predict/hotspots", req, &out); err != nil {
		return HotspotResponse{}, eris.Wrap(err, "mlclient: hotspots")
	}
	if out.Hotspots == nil {
		out.Hotspots = []model.Hotspot{}
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limiter wait")
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return eris.Wrapf(err, "POST %s", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return eris.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "decode %s response", path)
	}
	return nil
}
