// Package trend re-aggregates monthly accident counts into yearly,
// monthly and daily chart views with drill-down navigation.
package trend

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Point is one month of the backend trend aggregate. Daily, when
// present, is the real per-day breakdown for the month.
type Point struct {
	Month string `json:"month"` // "YYYY-MM"
	Count int    `json:"count"`
	Daily []int  `json:"daily,omitempty"`
}

// ViewMode selects the aggregation level of a rollup.
type ViewMode string

const (
	ModeYearly  ViewMode = "yearly"
	ModeMonthly ViewMode = "monthly"
	ModeDaily   ViewMode = "daily"
)

// ChartPoint is one bar of a rendered view. Synthetic marks values that
// were invented to fill a missing daily series and must not be read as
// real data.
type ChartPoint struct {
	Label     string `json:"label"`
	Value     int    `json:"value"`
	Synthetic bool   `json:"synthetic,omitempty"`
}

// RollupOptions narrow a rollup to a year or month and control labels.
type RollupOptions struct {
	SelectedYear  string // "YYYY", monthly mode filter
	SelectedMonth string // "YYYY-MM", required in daily mode
	Locale        string // BCP 47 tag for month labels, default English
	Rand          *rand.Rand
}

// dailyJitter is the ± spread applied when a daily series has to be
// synthesized from a month total.
const dailyJitter = 0.3

// Rollup derives a chart view from the flat monthly series. Yearly
// groups and sums by year prefix, monthly filters to SelectedYear when
// set, daily returns the real per-day series when the month carries one
// and otherwise synthesizes a flagged approximation.
func Rollup(data []Point, mode ViewMode, opts RollupOptions) ([]ChartPoint, error) {
	switch mode {
	case ModeYearly:
		return rollupYearly(data), nil
	case ModeMonthly:
		return rollupMonthly(data, opts), nil
	case ModeDaily:
		return rollupDaily(data, opts)
	default:
		return nil, eris.Errorf("trend: unknown view mode %q", mode)
	}
}

func rollupYearly(data []Point) []ChartPoint {
	sums := make(map[string]int)
	for _, p := range data {
		if len(p.Month) < 4 {
			continue
		}
		sums[p.Month[:4]] += p.Count
	}

	years := make([]string, 0, len(sums))
	for y := range sums {
		years = append(years, y)
	}
	sort.Strings(years)

	out := make([]ChartPoint, 0, len(years))
	for _, y := range years {
		out = append(out, ChartPoint{Label: y, Value: sums[y]})
	}
	return out
}

func rollupMonthly(data []Point, opts RollupOptions) []ChartPoint {
	months := monthNames(opts.Locale)

	out := make([]ChartPoint, 0, len(data))
	for _, p := range data {
		if opts.SelectedYear != "" && !strings.HasPrefix(p.Month, opts.SelectedYear) {
			continue
		}
		out = append(out, ChartPoint{Label: monthLabel(p.Month, months), Value: p.Count})
	}
	return out
}

func rollupDaily(data []Point, opts RollupOptions) ([]ChartPoint, error) {
	if opts.SelectedMonth == "" {
		return nil, eris.New("trend: daily view requires a selected month")
	}

	var sel *Point
	for i := range data {
		if data[i].Month == opts.SelectedMonth {
			sel = &data[i]
			break
		}
	}
	if sel == nil {
		return nil, eris.Errorf("trend: no data for month %q", opts.SelectedMonth)
	}

	if len(sel.Daily) > 0 {
		out := make([]ChartPoint, 0, len(sel.Daily))
		for i, v := range sel.Daily {
			out = append(out, ChartPoint{Label: fmt.Sprintf("%d", i+1), Value: v})
		}
		return out, nil
	}
	return synthesizeDaily(*sel, opts.Rand)
}

// synthesizeDaily spreads the month total evenly over its real day count
// with per-day jitter. Every point is flagged Synthetic.
func synthesizeDaily(p Point, rng *rand.Rand) ([]ChartPoint, error) {
	t, err := time.Parse("2006-01", p.Month)
	if err != nil {
		return nil, eris.Wrapf(err, "trend: parse month %q", p.Month)
	}
	days := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	even := float64(p.Count) / float64(days)
	out := make([]ChartPoint, 0, days)
	for d := 1; d <= days; d++ {
		jitter := 1 - dailyJitter + rng.Float64()*2*dailyJitter
		out = append(out, ChartPoint{
			Label:     fmt.Sprintf("%d", d),
			Value:     int(math.Round(even * jitter)),
			Synthetic: true,
		})
	}
	return out, nil
}

// ViewStats are recomputed for every produced view, never cached across
// mode switches.
type ViewStats struct {
	Max      int     `json:"max"`
	Min      int     `json:"min"`
	Avg      float64 `json:"avg"`
	MaxLabel string  `json:"max_label"`
}

// Stats summarizes a rendered view. An empty view yields the zero value.
func Stats(points []ChartPoint) ViewStats {
	if len(points) == 0 {
		return ViewStats{}
	}

	s := ViewStats{Max: points[0].Value, Min: points[0].Value, MaxLabel: points[0].Label}
	sum := 0
	for _, p := range points {
		sum += p.Value
		if p.Value > s.Max {
			s.Max = p.Value
			s.MaxLabel = p.Label
		}
		if p.Value < s.Min {
			s.Min = p.Value
		}
	}
	s.Avg = float64(sum) / float64(len(points))
	return s
}
