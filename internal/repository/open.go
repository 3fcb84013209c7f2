package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Open creates the connection pool for the configured driver and pings it. The memory driver has
// no database and yields a nil pool.
func Open(cfg *config.Config) (*sql.DB, error) {
	var driverName string
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		driverName = "pgx"
	case config.DriverSQLite:
		driverName = "sqlite"
	case config.DriverMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	dbpool, err := sql.Open(driverName, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == config.DriverSQLite {
		// sqlite allows a single writer
		dbpool.SetMaxOpenConns(1)
	} else {
		dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not connect, ping to fail fast
	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}
