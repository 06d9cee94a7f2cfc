package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/db"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Tests inject pgxmock here.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

// Pool exposes the underlying pool for bulk imports.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS risk_locations (
	id            BIGINT PRIMARY KEY,
	name_en       TEXT NOT NULL,
	name_th       TEXT NOT NULL DEFAULT '',
	lat           DOUBLE PRECISION NOT NULL,
	lon           DOUBLE PRECISION NOT NULL,
	province_id   BIGINT NOT NULL DEFAULT 0,
	road_type     TEXT NOT NULL DEFAULT '',
	risk_score    DOUBLE PRECISION NOT NULL,
	severity      TEXT NOT NULL DEFAULT '',
	accidents_30d INTEGER NOT NULL DEFAULT 0,
	speed_limit   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS accidents (
	id                 BIGSERIAL PRIMARY KEY,
	occurred_at        TIMESTAMPTZ NOT NULL,
	province           TEXT NOT NULL DEFAULT '',
	vehicle_type       TEXT NOT NULL DEFAULT '',
	weather            TEXT NOT NULL DEFAULT '',
	cause              TEXT NOT NULL DEFAULT '',
	lat                DOUBLE PRECISION NOT NULL DEFAULT 0,
	lon                DOUBLE PRECISION NOT NULL DEFAULT 0,
	casualties_fatal   INTEGER NOT NULL DEFAULT 0,
	casualties_serious INTEGER NOT NULL DEFAULT 0,
	casualties_minor   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS zones (
	id           BIGSERIAL PRIMARY KEY,
	code         TEXT NOT NULL UNIQUE,
	name_en      TEXT NOT NULL DEFAULT '',
	name_th      TEXT NOT NULL DEFAULT '',
	centroid_lat DOUBLE PRECISION NOT NULL,
	centroid_lon DOUBLE PRECISION NOT NULL,
	min_lat      DOUBLE PRECISION NOT NULL,
	min_lon      DOUBLE PRECISION NOT NULL,
	max_lat      DOUBLE PRECISION NOT NULL,
	max_lon      DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accidents_occurred_at ON accidents(occurred_at);
CREATE INDEX IF NOT EXISTS idx_accidents_province ON accidents(province);
CREATE INDEX IF NOT EXISTS idx_risk_locations_province ON risk_locations(province_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

var riskLocationColumns = []string{
	"id", "name_en", "name_th", "lat", "lon", "province_id",
	"road_type", "risk_score", "severity", "accidents_30d", "speed_limit",
}

func (s *PostgresStore) UpsertRiskLocations(ctx context.Context, locs []model.RiskLocation) (int64, error) {
	rows := make([][]any, 0, len(locs))
	for _, l := range locs {
		rows = append(rows, []any{
			l.ID, l.NameEN, l.NameTH, l.Lat, l.Lon, l.ProvinceID,
			l.RoadType, l.RiskScore, l.Severity, l.Accidents30d, l.SpeedLimitKmh,
		})
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "risk_locations",
		Columns:      riskLocationColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	return n, eris.Wrap(err, "postgres: upsert risk locations")
}

const listRiskLocationsSQL = `
SELECT id, name_en, name_th, lat, lon, province_id, road_type,
       risk_score, severity, accidents_30d, speed_limit
FROM risk_locations ORDER BY id`

func (s *PostgresStore) ListRiskLocations(ctx context.Context) ([]model.RiskLocation, error) {
	rows, err := s.pool.Query(ctx, listRiskLocationsSQL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list risk locations")
	}
	defer rows.Close()

	var out []model.RiskLocation
	for rows.Next() {
		var l model.RiskLocation
		if err := rows.Scan(&l.ID, &l.NameEN, &l.NameTH, &l.Lat, &l.Lon, &l.ProvinceID,
			&l.RoadType, &l.RiskScore, &l.Severity, &l.Accidents30d, &l.SpeedLimitKmh); err != nil {
			return nil, eris.Wrap(err, "postgres: scan risk location")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list risk locations rows")
}

var accidentColumns = []string{
	"occurred_at", "province", "vehicle_type", "weather", "cause",
	"lat", "lon", "casualties_fatal", "casualties_serious", "casualties_minor",
}

// InsertAccidents bulk-loads records via COPY.
func (s *PostgresStore) InsertAccidents(ctx context.Context, recs []model.AccidentRecord) (int64, error) {
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []any{
			r.OccurredAt, r.Province, r.VehicleType, r.Weather, r.Cause,
			r.Lat, r.Lon, r.Fatalities, r.Serious, r.Minor,
		})
	}
	n, err := db.CopyFrom(ctx, s.pool, "accidents", accidentColumns, rows)
	return n, eris.Wrap(err, "postgres: insert accidents")
}

const listAccidentsSQL = `
SELECT id, occurred_at, province, vehicle_type, weather, cause,
       lat, lon, casualties_fatal, casualties_serious, casualties_minor
FROM accidents WHERE occurred_at >= $1 ORDER BY occurred_at`

func (s *PostgresStore) ListAccidents(ctx context.Context, since time.Time) ([]model.AccidentRecord, error) {
	rows, err := s.pool.Query(ctx, listAccidentsSQL, since)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list accidents")
	}
	defer rows.Close()

	var out []model.AccidentRecord
	for rows.Next() {
		var r model.AccidentRecord
		if err := rows.Scan(&r.ID, &r.OccurredAt, &r.Province, &r.VehicleType, &r.Weather,
			&r.Cause, &r.Lat, &r.Lon, &r.Fatalities, &r.Serious, &r.Minor); err != nil {
			return nil, eris.Wrap(err, "postgres: scan accident")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list accidents rows")
}

var zoneColumns = []string{
	"code", "name_en", "name_th", "centroid_lat", "centroid_lon",
	"min_lat", "min_lon", "max_lat", "max_lon",
}

func (s *PostgresStore) UpsertZones(ctx context.Context, zones []model.Zone) (int64, error) {
	rows := make([][]any, 0, len(zones))
	for _, z := range zones {
		rows = append(rows, []any{
			z.Code, z.NameEN, z.NameTH, z.CentroidLat, z.CentroidLon,
			z.MinLat, z.MinLon, z.MaxLat, z.MaxLon,
		})
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "zones",
		Columns:      zoneColumns,
		ConflictKeys: []string{"code"},
	}, rows)
	return n, eris.Wrap(err, "postgres: upsert zones")
}

const listZonesSQL = `
SELECT id, code, name_en, name_th, centroid_lat, centroid_lon,
       min_lat, min_lon, max_lat, max_lon
FROM zones ORDER BY code`

func (s *PostgresStore) ListZones(ctx context.Context) ([]model.Zone, error) {
	rows, err := s.pool.Query(ctx, listZonesSQL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list zones")
	}
	defer rows.Close()

	var out []model.Zone
	for rows.Next() {
		var z model.Zone
		if err := rows.Scan(&z.ID, &z.Code, &z.NameEN, &z.NameTH, &z.CentroidLat,
			&z.CentroidLon, &z.MinLat, &z.MinLon, &z.MaxLat, &z.MaxLon); err != nil {
			return nil, eris.Wrap(err, "postgres: scan zone")
		}
		out = append(out, z)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list zones rows")
}
