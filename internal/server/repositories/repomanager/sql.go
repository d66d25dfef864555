package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/enigma/internal/dbx"
	"github.com/dmitrijs2005/enigma/internal/server/migrations"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// Database driver names as registered with database/sql.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// SQLRepositoryManager vends the SQL repositories and knows which goose
// dialect and migration directory belong to its driver.
type SQLRepositoryManager struct {
	dialect string
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Permissions(db dbx.DBTX) permissions.Repository {
	return permissions.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// goose keeps dialect and base FS in package globals.
var gooseMu sync.Mutex

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, migrations.Dir(m.dialect))
}

// Dialect returns the goose dialect name.
func (m *SQLRepositoryManager) Dialect() string {
	return m.dialect
}

// NewRepositoryManager returns a manager for the database/sql driver name.
func NewRepositoryManager(driver string) (*SQLRepositoryManager, error) {
	switch driver {
	case DriverPostgres:
		return &SQLRepositoryManager{dialect: "pgx"}, nil
	case DriverSQLite:
		return &SQLRepositoryManager{dialect: "sqlite3"}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}
