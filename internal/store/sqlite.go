package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS risk_locations (
	id            INTEGER PRIMARY KEY,
	name_en       TEXT NOT NULL,
	name_th       TEXT NOT NULL DEFAULT '',
	lat           REAL NOT NULL,
	lon           REAL NOT NULL,
	province_id   INTEGER NOT NULL DEFAULT 0,
	road_type     TEXT NOT NULL DEFAULT '',
	risk_score    REAL NOT NULL,
	severity      TEXT NOT NULL DEFAULT '',
	accidents_30d INTEGER NOT NULL DEFAULT 0,
	speed_limit   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS accidents (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	occurred_at        DATETIME NOT NULL,
	province           TEXT NOT NULL DEFAULT '',
	vehicle_type       TEXT NOT NULL DEFAULT '',
	weather            TEXT NOT NULL DEFAULT '',
	cause              TEXT NOT NULL DEFAULT '',
	lat                REAL NOT NULL DEFAULT 0,
	lon                REAL NOT NULL DEFAULT 0,
	casualties_fatal   INTEGER NOT NULL DEFAULT 0,
	casualties_serious INTEGER NOT NULL DEFAULT 0,
	casualties_minor   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS zones (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	code         TEXT NOT NULL UNIQUE,
	name_en      TEXT NOT NULL DEFAULT '',
	name_th      TEXT NOT NULL DEFAULT '',
	centroid_lat REAL NOT NULL,
	centroid_lon REAL NOT NULL,
	min_lat      REAL NOT NULL,
	min_lon      REAL NOT NULL,
	max_lat      REAL NOT NULL,
	max_lon      REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accidents_occurred_at ON accidents(occurred_at);
CREATE INDEX IF NOT EXISTS idx_accidents_province ON accidents(province);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertRiskLocations(ctx context.Context, locs []model.RiskLocation) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert risk locations")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO risk_locations
			(id, name_en, name_th, lat, lon, province_id, road_type, risk_score, severity, accidents_30d, speed_limit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name_en = excluded.name_en, name_th = excluded.name_th,
			lat = excluded.lat, lon = excluded.lon,
			province_id = excluded.province_id, road_type = excluded.road_type,
			risk_score = excluded.risk_score, severity = excluded.severity,
			accidents_30d = excluded.accidents_30d, speed_limit = excluded.speed_limit`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert risk location")
	}
	defer stmt.Close()

	var n int64
	for _, l := range locs {
		if _, err := stmt.ExecContext(ctx,
			l.ID, l.NameEN, l.NameTH, l.Lat, l.Lon, l.ProvinceID,
			l.RoadType, l.RiskScore, l.Severity, l.Accidents30d, l.SpeedLimitKmh,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert risk location %d", l.ID)
		}
		n++
	}
	return n, eris.Wrap(tx.Commit(), "sqlite: commit upsert risk locations")
}

func (s *SQLiteStore) ListRiskLocations(ctx context.Context) ([]model.RiskLocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name_en, name_th, lat, lon, province_id, road_type,
		       risk_score, severity, accidents_30d, speed_limit
		FROM risk_locations ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list risk locations")
	}
	defer rows.Close()

	var out []model.RiskLocation
	for rows.Next() {
		var l model.RiskLocation
		if err := rows.Scan(&l.ID, &l.NameEN, &l.NameTH, &l.Lat, &l.Lon, &l.ProvinceID,
			&l.RoadType, &l.RiskScore, &l.Severity, &l.Accidents30d, &l.SpeedLimitKmh); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan risk location")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list risk locations rows")
}

func (s *SQLiteStore) InsertAccidents(ctx context.Context, recs []model.AccidentRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert accidents")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accidents
			(occurred_at, province, vehicle_type, weather, cause, lat, lon,
			 casualties_fatal, casualties_serious, casualties_minor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert accident")
	}
	defer stmt.Close()

	var n int64
	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx,
			r.OccurredAt.UTC(), r.Province, r.VehicleType, r.Weather, r.Cause,
			r.Lat, r.Lon, r.Fatalities, r.Serious, r.Minor,
		); err != nil {
			return 0, eris.Wrap(err, "sqlite: insert accident")
		}
		n++
	}
	return n, eris.Wrap(tx.Commit(), "sqlite: commit insert accidents")
}

func (s *SQLiteStore) ListAccidents(ctx context.Context, since time.Time) ([]model.AccidentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, occurred_at, province, vehicle_type, weather, cause,
		       lat, lon, casualties_fatal, casualties_serious, casualties_minor
		FROM accidents WHERE occurred_at >= ? ORDER BY occurred_at`, since.UTC())
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list accidents")
	}
	defer rows.Close()

	var out []model.AccidentRecord
	for rows.Next() {
		var r model.AccidentRecord
		if err := rows.Scan(&r.ID, &r.OccurredAt, &r.Province, &r.VehicleType, &r.Weather,
			&r.Cause, &r.Lat, &r.Lon, &r.Fatalities, &r.Serious, &r.Minor); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan accident")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list accidents rows")
}

func (s *SQLiteStore) UpsertZones(ctx context.Context, zones []model.Zone) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert zones")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO zones
			(code, name_en, name_th, centroid_lat, centroid_lon, min_lat, min_lon, max_lat, max_lon)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name_en = excluded.name_en, name_th = excluded.name_th,
			centroid_lat = excluded.centroid_lat, centroid_lon = excluded.centroid_lon,
			min_lat = excluded.min_lat, min_lon = excluded.min_lon,
			max_lat = excluded.max_lat, max_lon = excluded.max_lon`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert zone")
	}
	defer stmt.Close()

	var n int64
	for _, z := range zones {
		if _, err := stmt.ExecContext(ctx,
			z.Code, z.NameEN, z.NameTH, z.CentroidLat, z.CentroidLon,
			z.MinLat, z.MinLon, z.MaxLat, z.MaxLon,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert zone %s", z.Code)
		}
		n++
	}
	return n, eris.Wrap(tx.Commit(), "sqlite: commit upsert zones")
}

func (s *SQLiteStore) ListZones(ctx context.Context) ([]model.Zone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name_en, name_th, centroid_lat, centroid_lon,
		       min_lat, min_lon, max_lat, max_lon
		FROM zones ORDER BY code`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list zones")
	}
	defer rows.Close()

	var out []model.Zone
	for rows.Next() {
		var z model.Zone
		if err := rows.Scan(&z.ID, &z.Code, &z.NameEN, &z.NameTH, &z.CentroidLat,
			&z.CentroidLon, &z.MinLat, &z.MinLon, &z.MaxLat, &z.MaxLon); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan zone")
		}
		out = append(out, z)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list zones rows")
}
