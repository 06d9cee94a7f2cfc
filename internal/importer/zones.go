package importer

import (
	"context"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/store"
)

// ZoneFields names the attribute columns holding the zone code and names.
// Defaults match the GADM admin-1 boundary layout for Thailand.
type ZoneFields struct {
	Code   string
	NameEN string
	NameTH string
}

// DefaultZoneFields is the attribute layout of the stock province shapefile.
var DefaultZoneFields = ZoneFields{
	Code:   "ADM1_PCODE",
	NameEN: "ADM1_EN",
	NameTH: "ADM1_TH",
}

// ParseZonesShapefile reads province polygons from the shapefile at path
// and reduces each to a centroid plus bounding box. Records without a
// polygon shape or a zone code are skipped.
func ParseZonesShapefile(path string, fields ZoneFields) ([]model.Zone, error) {
	if fields == (ZoneFields{}) {
		fields = DefaultZoneFields
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := make(map[string]int)
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	attr := func(name string) (string, bool) {
		idx, ok := fieldIdx[strings.ToLower(name)]
		if !ok {
			return "", false
		}
		val := strings.TrimRight(reader.Attribute(idx), "\x00")
		return strings.TrimSpace(val), true
	}

	var zones []model.Zone
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := polygonGeometry(poly)
		if mp == nil {
			skipped++
			continue
		}

		code, _ := attr(fields.Code)
		if code == "" {
			skipped++
			continue
		}
		nameEN, _ := attr(fields.NameEN)
		nameTH, _ := attr(fields.NameTH)

		centroid, err := xy.Centroid(mp)
		if err != nil {
			skipped++
			continue
		}
		bounds := mp.Bounds()

		zones = append(zones, model.Zone{
			Code:        code,
			NameEN:      nameEN,
			NameTH:      nameTH,
			CentroidLat: centroid[1],
			CentroidLon: centroid[0],
			MinLat:      bounds.Min(1),
			MinLon:      bounds.Min(0),
			MaxLat:      bounds.Max(1),
			MaxLon:      bounds.Max(0),
		})
	}

	if skipped > 0 {
		zap.L().Debug("importer: skipped shapefile records", zap.Int("skipped", skipped))
	}

	return zones, nil
}

// polygonGeometry converts a shapefile polygon to a geom.MultiPolygon.
// Each part becomes its own single-ring polygon.
func polygonGeometry(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// LoadZones parses the shapefile and upserts the zones by code.
func LoadZones(ctx context.Context, st store.Store, path string, fields ZoneFields) (int64, error) {
	zones, err := ParseZonesShapefile(path, fields)
	if err != nil {
		return 0, err
	}
	if len(zones) == 0 {
		return 0, eris.Errorf("importer: no zones found in %s", path)
	}

	n, err := st.UpsertZones(ctx, zones)
	if err != nil {
		return 0, eris.Wrap(err, "importer: upsert zones")
	}
	zap.L().Info("zones loaded",
		zap.String("component", "importer"),
		zap.Int64("rows", n))
	return n, nil
}
