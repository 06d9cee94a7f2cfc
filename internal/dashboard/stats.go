// Package dashboard aggregates accident records into the statistics
// payload behind the dashboard endpoint.
package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/trend"
)

// Filter narrows the record set before aggregation. The zero value
// (or "all" in any field) matches everything.
type Filter struct {
	DateRange    string // "all", "7d", "30d", "90d", "1y"
	Province     string
	CasualtyType string // "all", "fatal", "serious", "minor", "survivors"
	VehicleType  string
	Weather      string
	Cause        string
}

// Summary is the headline counter block.
type Summary struct {
	TotalAccidents  int `json:"total_accidents"`
	MinorInjuries   int `json:"minor_injuries"`
	SeriousInjuries int `json:"serious_injuries"`
	Fatalities      int `json:"fatalities"`
	Survivors       int `json:"survivors"`
	HighRiskAreas   int `json:"high_risk_areas"`
}

// NamedCount is one slice of a distribution chart.
type NamedCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// YearCount is one year of the yearly summary.
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

// MonthCount is one calendar month of the monthly summary, across years.
type MonthCount struct {
	Month     string `json:"month"` // "01".."12"
	MonthName string `json:"month_name"`
	Count     int    `json:"count"`
}

// WeekdayCount is one weekday of the weekday summary.
type WeekdayCount struct {
	Day     string `json:"day"` // "Mon".."Sun"
	DayName string `json:"day_name"`
	Count   int    `json:"count"`
}

// VehicleHourCount counts accidents of one vehicle type in one hour band.
type VehicleHourCount struct {
	VehicleType string `json:"vehicle_type"`
	Hour        int    `json:"hour"`
	Count       int    `json:"count"`
}

// Stats is the full dashboard payload. Every slice is non-nil so the
// JSON encoding never carries null arrays.
type Stats struct {
	Summary              Summary            `json:"summary"`
	MonthlyTrend         []trend.Point      `json:"monthly_trend"`
	YearlySummary        []YearCount        `json:"yearly_summary"`
	MonthlySummary       []MonthCount       `json:"monthly_summary"`
	WeekdaySummary       []WeekdayCount     `json:"weekday_summary"`
	VehicleByHour        []VehicleHourCount `json:"vehicle_by_hour"`
	SeverityDistribution []NamedCount       `json:"severity_distribution"`
	WeatherDistribution  []NamedCount       `json:"weather_distribution"`
	CauseDistribution    []NamedCount       `json:"cause_distribution"`
	Total                int                `json:"total"`
}

// highRiskProvinceFloor is the accident count above which a province is
// counted as a high-risk area.
const highRiskProvinceFloor = 100

var weekdayAbbrev = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
var monthAbbrev = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// topCauses caps the cause distribution at the ten most frequent causes.
const topCauses = 10

// Build aggregates the filtered records in a single pass. now anchors
// the relative date-range filter.
func Build(records []model.AccidentRecord, f Filter, now time.Time) Stats {
	var (
		fatalities, serious, minor int

		monthly      = map[string]int{}
		dailyByMonth = map[string]map[string]int{}
		yearly       = map[string]int{}
		byMonthOnly  = map[string]int{}
		byWeekday    [7]int
		byVehicle    = map[string]*[24]int{}
		byWeather    = map[string]int{}
		byCause      = map[string]int{}
		byProvince   = map[string]int{}

		total int
	)

	cutoff := rangeCutoff(f.DateRange, now)

	for _, r := range records {
		if !matches(r, f, cutoff) {
			continue
		}
		total++
		fatalities += r.Fatalities
		serious += r.Serious
		minor += r.Minor

		byProvince[r.Province]++
		byWeather[r.Weather]++
		if c := strings.TrimSpace(r.Cause); c != "" {
			byCause[c]++
		}

		t := r.OccurredAt
		yearKey := t.Format("2006")
		monthKey := t.Format("2006-01")
		dayKey := t.Format("2006-01-02")

		yearly[yearKey]++
		monthly[monthKey]++
		byMonthOnly[t.Format("01")]++
		if dailyByMonth[monthKey] == nil {
			dailyByMonth[monthKey] = map[string]int{}
		}
		dailyByMonth[monthKey][dayKey]++

		byWeekday[mondayIndexed(t.Weekday())]++

		vt := r.VehicleType
		if vt == "" {
			vt = "unknown"
		}
		if byVehicle[vt] == nil {
			byVehicle[vt] = &[24]int{}
		}
		byVehicle[vt][t.Hour()]++
	}

	highRisk := 0
	for _, c := range byProvince {
		if c > highRiskProvinceFloor {
			highRisk++
		}
	}

	s := Stats{
		Summary: Summary{
			TotalAccidents:  total,
			MinorInjuries:   minor,
			SeriousInjuries: serious,
			Fatalities:      fatalities,
			Survivors:       total - fatalities,
			HighRiskAreas:   highRisk,
		},
		MonthlyTrend:   monthlyTrend(monthly, dailyByMonth),
		YearlySummary:  yearlySummary(yearly),
		MonthlySummary: monthlySummary(byMonthOnly),
		WeekdaySummary: weekdaySummary(byWeekday),
		VehicleByHour:  vehicleByHour(byVehicle),
		SeverityDistribution: []NamedCount{
			{Name: "survivors", Value: total - fatalities},
			{Name: "minor", Value: minor},
			{Name: "serious", Value: serious},
			{Name: "fatal", Value: fatalities},
		},
		WeatherDistribution: sortedCounts(byWeather, 0),
		CauseDistribution:   sortedCounts(byCause, topCauses),
		Total:               total,
	}
	return s
}

// ResolveProvinces fills in the province of records imported without one,
// using the zone whose bounding box contains the record coordinates. The
// Thai name is preferred to match the names carried by imported records.
// Records that already carry a province keep it.
func ResolveProvinces(records []model.AccidentRecord, zones []model.Zone) []model.AccidentRecord {
	if len(zones) == 0 {
		return records
	}
	for i, r := range records {
		if strings.TrimSpace(r.Province) != "" || (r.Lat == 0 && r.Lon == 0) {
			continue
		}
		for _, z := range zones {
			if !z.Contains(r.Lat, r.Lon) {
				continue
			}
			if z.NameTH != "" {
				records[i].Province = z.NameTH
			} else {
				records[i].Province = z.NameEN
			}
			break
		}
	}
	return records
}

// rangeCutoff maps a relative range label to its start time. Unknown
// labels mean no cutoff.
func rangeCutoff(dateRange string, now time.Time) time.Time {
	switch dateRange {
	case "7d":
		return now.AddDate(0, 0, -7)
	case "30d":
		return now.AddDate(0, 0, -30)
	case "90d":
		return now.AddDate(0, 0, -90)
	case "1y":
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

func matches(r model.AccidentRecord, f Filter, cutoff time.Time) bool {
	if !cutoff.IsZero() && r.OccurredAt.Before(cutoff) {
		return false
	}
	if !matchField(f.Province, r.Province) {
		return false
	}
	if !matchField(f.VehicleType, r.VehicleType) {
		return false
	}
	if !matchField(f.Weather, r.Weather) {
		return false
	}
	if !matchField(f.Cause, r.Cause) {
		return false
	}
	switch f.CasualtyType {
	case "", "all":
		return true
	case "fatal":
		return r.Fatalities > 0
	case "serious":
		return r.Serious > 0
	case "minor":
		return r.Minor > 0
	case "survivors":
		return r.Fatalities == 0
	default:
		return true
	}
}

func matchField(want, have string) bool {
	return want == "" || want == "all" || want == have
}

// mondayIndexed converts time.Weekday (Sunday = 0) to the Monday-first
// index used by the weekday summary.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func monthlyTrend(monthly map[string]int, daily map[string]map[string]int) []trend.Point {
	keys := sortedKeys(monthly)
	out := make([]trend.Point, 0, len(keys))
	for _, k := range keys {
		p := trend.Point{Month: k, Count: monthly[k]}
		if days := daily[k]; len(days) > 0 {
			for _, d := range sortedKeys(days) {
				p.Daily = append(p.Daily, days[d])
			}
		}
		out = append(out, p)
	}
	return out
}

func yearlySummary(yearly map[string]int) []YearCount {
	keys := sortedKeys(yearly)
	out := make([]YearCount, 0, len(keys))
	for _, y := range keys {
		out = append(out, YearCount{Year: y, Count: yearly[y]})
	}
	return out
}

// monthlySummary always emits all twelve months so charts keep a fixed
// x axis.
func monthlySummary(byMonth map[string]int) []MonthCount {
	out := make([]MonthCount, 0, 12)
	for i := 0; i < 12; i++ {
		mm := monthKey(i + 1)
		out = append(out, MonthCount{
			Month:     mm,
			MonthName: monthAbbrev[i],
			Count:     byMonth[mm],
		})
	}
	return out
}

func monthKey(m int) string {
	return fmt.Sprintf("%02d", m)
}

func weekdaySummary(counts [7]int) []WeekdayCount {
	out := make([]WeekdayCount, 0, 7)
	for i := 0; i < 7; i++ {
		out = append(out, WeekdayCount{
			Day:     weekdayAbbrev[i],
			DayName: weekdayNames[i],
			Count:   counts[i],
		})
	}
	return out
}

// vehicleByHour flattens the per-vehicle hour histograms, skipping empty
// cells, ordered by vehicle type then hour.
func vehicleByHour(byVehicle map[string]*[24]int) []VehicleHourCount {
	types := make([]string, 0, len(byVehicle))
	for vt := range byVehicle {
		types = append(types, vt)
	}
	sort.Strings(types)

	out := make([]VehicleHourCount, 0)
	for _, vt := range types {
		for h, c := range byVehicle[vt] {
			if c == 0 {
				continue
			}
			out = append(out, VehicleHourCount{VehicleType: vt, Hour: h, Count: c})
		}
	}
	return out
}

// sortedCounts orders a distribution by count descending, then name for
// stable output. limit 0 means unbounded.
func sortedCounts(m map[string]int, limit int) []NamedCount {
	out := make([]NamedCount, 0, len(m))
	for k, v := range m {
		out = append(out, NamedCount{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
