package traffic

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/geo"
)

// Synthesizer derives traffic readings from the hour of day: rush-hour
// bands bias density and index upward before any jitter is applied, so the
// rush-hour classification holds regardless of the random component.
//
// This is a placeholder for a real traffic feed (Longdo, Google). It
// implements Source so consumers never see the difference.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthesizer creates a synthesizer seeded from the current time.
func NewSynthesizer() *Synthesizer {
	return NewSynthesizerWithSeed(time.Now().UnixNano())
}

// NewSynthesizerWithSeed creates a synthesizer with a fixed seed. Tests use
// this for reproducible readings.
func NewSynthesizerWithSeed(seed int64) *Synthesizer {
	return &Synthesizer{rng: rand.New(rand.NewSource(seed))}
}

func (s *Synthesizer) jitter() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Conditions synthesizes a density reading for the given time. Density
// starts at 0.4, gains 0.3 in rush bands, plus up to 0.2 jitter, capped at
// 1. Average speed decays linearly with density from a 60 km/h free flow.
func (s *Synthesizer) Conditions(_ context.Context, _ geo.Point, t time.Time) (Conditions, error) {
	density := 0.4
	if IsRushHour(t.Hour()) {
		density += 0.3
	}
	density += s.jitter() * 0.2
	density = math.Min(1, density)

	const freeFlowKmh = 60
	speed := freeFlowKmh * (1 - density*0.7)

	return Conditions{
		Density:         math.Round(density*100) / 100,
		AverageSpeedKmh: math.Round(speed),
		CongestionLevel: CongestionLevel(density),
		Timestamp:       t,
	}, nil
}

// Index synthesizes the citywide 0-10 index: base 3, +3 during rush bands,
// plus up to 2 jitter, clamped to [0,10].
func (s *Synthesizer) Index(_ context.Context, t time.Time) (IndexReading, error) {
	index := 3.0
	if IsRushHour(t.Hour()) {
		index += 3
	}
	index += s.jitter() * 2
	index = math.Min(10, math.Max(0, index))

	return IndexReading{
		Current:   math.Round(index*10) / 10,
		Status:    IndexStatus(index),
		Timestamp: t,
	}, nil
}
