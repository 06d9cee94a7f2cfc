// Package store persists risk locations, accident records and zone
// boundaries behind a backend-neutral interface. Postgres backs
// production, SQLite backs local runs and tests.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
)

// Store is the persistence interface shared by the server, importer and
// scan commands.
type Store interface {
	// Risk locations (reference data)
	UpsertRiskLocations(ctx context.Context, locs []model.RiskLocation) (int64, error)
	ListRiskLocations(ctx context.Context) ([]model.RiskLocation, error)

	// Accident records
	InsertAccidents(ctx context.Context, recs []model.AccidentRecord) (int64, error)
	ListAccidents(ctx context.Context, since time.Time) ([]model.AccidentRecord, error)

	// Zone boundaries
	UpsertZones(ctx context.Context, zones []model.Zone) (int64, error)
	ListZones(ctx context.Context) ([]model.Zone, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string, poolCfg *PoolConfig) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, dsn, poolCfg)
	case "sqlite":
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
