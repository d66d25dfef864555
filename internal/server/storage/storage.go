// Package storage opens the SQL connection pool for the configured driver
// and brings its schema up to date.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/enigma/internal/filex"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/repomanager"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open returns a pinged pool for driver ("pgx" or "sqlite") and the matching
// repository manager with migrations applied.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, *repomanager.SQLRepositoryManager, error) {
	rm, err := repomanager.NewRepositoryManager(driver)
	if err != nil {
		return nil, nil, err
	}

	if driver == repomanager.DriverSQLite {
		if path := filex.SQLitePath(dsn); path != "" {
			if err := filex.EnsureParentDir(path); err != nil {
				return nil, nil, fmt.Errorf("db open error: %w", err)
			}
		}
	}

	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	if driver == repomanager.DriverSQLite {
		// A single connection serializes writers and keeps :memory: databases
		// from splitting per connection.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations error: %w", err)
	}

	return db, rm, nil
}
