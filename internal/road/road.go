// Package road serves road surface conditions and nearby hazard reports.
// The synthetic source stands in for a road-data provider; consumers
// depend only on the Source interface.
package road

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/geo"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
)

// DefaultHazardRadiusKm bounds the hazard search when the caller does
// not set a radius.
const DefaultHazardRadiusKm = 5.0

// Source provides road data for a coordinate.
type Source interface {
	Condition(ctx context.Context, at geo.Point, t time.Time) (model.RoadCondition, error)
	Hazards(ctx context.Context, at geo.Point, radiusKm float64, t time.Time) ([]model.Hazard, error)
}

var hazardTypes = []string{
	"pothole",
	"debris",
	"construction",
	"flooding",
	"animal_crossing",
	"poor_visibility",
}

var qualities = []string{"excellent", "good", "fair", "poor"}

var speedLimits = []int{60, 80, 90, 100, 120}

// Synthesizer fabricates plausible road data. Conditions are seeded from
// the coordinate so the same location always reports the same road;
// hazards use the shared rng and vary between calls. The rng is guarded
// by mu: Hazards is called from concurrent requests.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthesizer seeds hazard generation from the wall clock.
func NewSynthesizer() *Synthesizer {
	return NewSynthesizerWithSeed(time.Now().UnixNano())
}

// NewSynthesizerWithSeed fixes the hazard rng for tests.
func NewSynthesizerWithSeed(seed int64) *Synthesizer {
	return &Synthesizer{rng: rand.New(rand.NewSource(seed))}
}

// coordSeed folds a coordinate into a stable per-cell seed. Cells are
// about 1.1 km so adjacent queries land on the same road.
func coordSeed(at geo.Point) int64 {
	return int64(math.Round(at.Lat*100))<<32 | int64(math.Round(at.Lon*100))&0xffffffff
}

// Condition reports the road at a coordinate. Deterministic per cell.
func (s *Synthesizer) Condition(_ context.Context, at geo.Point, t time.Time) (model.RoadCondition, error) {
	rng := rand.New(rand.NewSource(coordSeed(at)))

	return model.RoadCondition{
		SurfaceType: "asphalt",
		Quality:     qualities[rng.Intn(len(qualities))],
		LaneCount:   rng.Intn(3) + 2,
		SpeedLimit:  speedLimits[rng.Intn(len(speedLimits))],
		HasShoulder: rng.Float64() > 0.3,
		Lighting:    lightingQuality(rng),
		// Maintained some time in the past year.
		LastMaintenance: t.Add(-time.Duration(rng.Float64() * 365 * 24 * float64(time.Hour))),
	}, nil
}

func lightingQuality(rng *rand.Rand) string {
	if rng.Float64() > 0.4 {
		return "good"
	}
	return "poor"
}

// Hazards fabricates zero to two hazard reports scattered within about
// half a kilometre of the query point, each reported within the last day.
func (s *Synthesizer) Hazards(_ context.Context, at geo.Point, radiusKm float64, t time.Time) ([]model.Hazard, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultHazardRadiusKm
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.rng.Intn(3)
	hazards := make([]model.Hazard, 0, n)
	for i := 0; i < n; i++ {
		hazards = append(hazards, model.Hazard{
			ID:         uuid.NewString(),
			Type:       hazardTypes[s.rng.Intn(len(hazardTypes))],
			Lat:        at.Lat + (s.rng.Float64()-0.5)*0.01,
			Lon:        at.Lon + (s.rng.Float64()-0.5)*0.01,
			Severity:   []string{"low", "medium", "high"}[s.rng.Intn(3)],
			ReportedAt: t.Add(-time.Duration(s.rng.Float64() * 24 * float64(time.Hour))),
		})
	}
	return hazards, nil
}
