package road

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/geo"
)

var bangkok = geo.Point{Lat: 13.7563, Lon: 100.5018}

func TestCondition_DeterministicPerLocation(t *testing.T) {
	s := NewSynthesizerWithSeed(1)
	now := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

	a, err := s.Condition(context.Background(), bangkok, now)
	require.NoError(t, err)
	b, err := s.Condition(context.Background(), bangkok, now)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// A point in the same ~1.1 km cell reports the same road.
	nearby := geo.Point{Lat: bangkok.Lat + 0.001, Lon: bangkok.Lon}
	c, err := s.Condition(context.Background(), nearby, now)
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestCondition_PlausibleValues(t *testing.T) {
	s := NewSynthesizerWithSeed(1)
	now := time.Now()

	for _, p := range []geo.Point{
		bangkok,
		{Lat: 18.7883, Lon: 98.9853},
		{Lat: 7.8804, Lon: 98.3923},
	} {
		c, err := s.Condition(context.Background(), p, now)
		require.NoError(t, err)

		assert.Equal(t, "asphalt", c.SurfaceType)
		assert.Contains(t, qualities, c.Quality)
		assert.GreaterOrEqual(t, c.LaneCount, 2)
		assert.LessOrEqual(t, c.LaneCount, 4)
		assert.Contains(t, speedLimits, c.SpeedLimit)
		assert.True(t, c.LastMaintenance.Before(now))
		assert.True(t, c.LastMaintenance.After(now.AddDate(-1, 0, -1)))
	}
}

func TestHazards(t *testing.T) {
	s := NewSynthesizerWithSeed(42)
	now := time.Now()

	sawAny := false
	for i := 0; i < 20; i++ {
		hs, err := s.Hazards(context.Background(), bangkok, 5, now)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(hs), 2)

		for _, h := range hs {
			sawAny = true
			assert.NotEmpty(t, h.ID)
			assert.Contains(t, hazardTypes, h.Type)
			assert.InDelta(t, bangkok.Lat, h.Lat, 0.005)
			assert.InDelta(t, bangkok.Lon, h.Lon, 0.005)
			assert.Contains(t, []string{"low", "medium", "high"}, h.Severity)
			assert.True(t, h.ReportedAt.Before(now.Add(time.Second)))
		}
	}
	assert.True(t, sawAny, "20 draws should produce at least one hazard")
}

func TestHazards_ConcurrentCallers(t *testing.T) {
	s := NewSynthesizerWithSeed(7)
	now := time.Now()

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_, err := s.Hazards(context.Background(), bangkok, 5, now)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestHazards_UniqueIDs(t *testing.T) {
	s := NewSynthesizerWithSeed(42)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		hs, err := s.Hazards(context.Background(), bangkok, 0, time.Now())
		require.NoError(t, err)
		for _, h := range hs {
			assert.False(t, seen[h.ID])
			seen[h.ID] = true
		}
	}
}
