// Package importer loads accident records and zone boundaries from the
// official source files into the store.
package importer

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/store"
)

// Source column headers as published in the national accident workbook.
const (
	colDate     = "วันที่เกิดเหตุ"
	colTime     = "เวลา"
	colLat      = "LATITUDE"
	colLon      = "LONGITUDE"
	colProvince = "จังหวัด"
	colVehicle  = "รถคันที่1"
	colWeather  = "สภาพอากาศ"
	colCause    = "มูลเหตุสันนิษฐาน"
	colFatal    = "ผู้เสียชีวิต"
	colSerious  = "ผู้บาดเจ็บสาหัส"
	colMinor    = "ผู้บาดเจ็บเล็กน้อย"
)

var dateLayouts = []string{
	"2006-01-02 15:04",
	"1/2/2006 15:04",
	"2006-01-02 15:04:05",
}

// Thai weather descriptions are free text; matching is by substring.
var weatherMap = []struct{ thai, eng string }{
	{"แจ่มใส", "clear"},
	{"ฝนตกหนัก", "heavy_rain"},
	{"ฝนตก", "rain"},
	{"หมอก", "fog"},
	{"มีเมฆมาก", "cloudy"},
	{"มืดครึ้ม", "cloudy"},
}

// AccidentParseResult is the outcome of parsing one workbook.
type AccidentParseResult struct {
	Records []model.AccidentRecord
	Skipped int // rows missing a parseable date or coordinates
}

// ParseAccidentsXLSX reads the accident workbook at path. The first row
// must be the header; rows without a parseable date or coordinates are
// skipped, not fatal.
func ParseAccidentsXLSX(path, sheetName string) (AccidentParseResult, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return AccidentParseResult{}, eris.Wrap(err, "importer: open workbook")
	}

	sheet, err := pickSheet(f, sheetName)
	if err != nil {
		return AccidentParseResult{}, err
	}
	if len(sheet.Rows) == 0 {
		return AccidentParseResult{}, eris.Errorf("importer: sheet %q is empty", sheet.Name)
	}

	header := make(map[string]int)
	for i, cell := range sheet.Rows[0].Cells {
		header[strings.TrimSpace(cell.String())] = i
	}
	for _, required := range []string{colDate, colLat, colLon} {
		if _, ok := header[required]; !ok {
			return AccidentParseResult{}, eris.Errorf("importer: missing column %q", required)
		}
	}

	var res AccidentParseResult
	for _, row := range sheet.Rows[1:] {
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = strings.TrimSpace(c.String())
		}

		rec, ok := parseAccidentRow(cells, header)
		if !ok {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, rec)
	}

	return res, nil
}

func parseAccidentRow(cells []string, header map[string]int) (model.AccidentRecord, bool) {
	field := func(name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(cells) {
			return ""
		}
		return cells[idx]
	}

	occurred, ok := parseEventTime(field(colDate), field(colTime))
	if !ok {
		return model.AccidentRecord{}, false
	}

	lat, latErr := strconv.ParseFloat(field(colLat), 64)
	lon, lonErr := strconv.ParseFloat(field(colLon), 64)
	if latErr != nil || lonErr != nil {
		return model.AccidentRecord{}, false
	}

	return model.AccidentRecord{
		OccurredAt:  occurred,
		Province:    field(colProvince),
		VehicleType: field(colVehicle),
		Weather:     mapWeather(field(colWeather)),
		Cause:       field(colCause),
		Lat:         lat,
		Lon:         lon,
		Fatalities:  atoiOrZero(field(colFatal)),
		Serious:     atoiOrZero(field(colSerious)),
		Minor:       atoiOrZero(field(colMinor)),
	}, true
}

func parseEventTime(date, clock string) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	combined := strings.TrimSpace(date + " " + clock)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, combined); err == nil {
			return t, true
		}
	}
	// Date-only rows still carry the day of the accident.
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func mapWeather(s string) string {
	for _, m := range weatherMap {
		if strings.Contains(s, m.thai) {
			return m.eng
		}
	}
	return "unknown"
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("importer: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("importer: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

// ImportAccidents parses the workbook and bulk-inserts the records.
func ImportAccidents(ctx context.Context, st store.Store, path, sheetName string) (int64, error) {
	res, err := ParseAccidentsXLSX(path, sheetName)
	if err != nil {
		return 0, err
	}

	log := zap.L().With(zap.String("component", "importer"), zap.String("path", path))
	if res.Skipped > 0 {
		log.Warn("skipped unparseable rows", zap.Int("skipped", res.Skipped))
	}
	if len(res.Records) == 0 {
		log.Info("no importable rows")
		return 0, nil
	}

	n, err := st.InsertAccidents(ctx, res.Records)
	if err != nil {
		return 0, eris.Wrap(err, "importer: insert accidents")
	}
	log.Info("accidents imported", zap.Int64("rows", n))
	return n, nil
}
