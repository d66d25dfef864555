package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewRepositoryManager(t *testing.T) {
	tests := []struct {
		driver  string
		dialect string
		wantErr bool
	}{
		{DriverPostgres, "pgx", false},
		{DriverSQLite, "sqlite3", false},
		{"mysql", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			m, err := NewRepositoryManager(tt.driver)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, m.Dialect())
			var _ RepositoryManager = m
		})
	}
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)
	m, err := NewRepositoryManager(DriverPostgres)
	require.NoError(t, err)

	assert.IsType(t, &users.SQLRepository{}, m.Users(db))
	assert.IsType(t, &permissions.SQLRepository{}, m.Permissions(db))
	assert.IsType(t, &sessions.SQLRepository{}, m.Sessions(db))
}

func TestRunMigrations_UsesDialectDir(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	m, _ := NewRepositoryManager(DriverPostgres)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	assert.Equal(t, "postgres", gotDir)

	m, _ = NewRepositoryManager(DriverSQLite)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	assert.Equal(t, "sqlite", gotDir)
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	m, _ := NewRepositoryManager(DriverPostgres)
	assert.EqualError(t, m.RunMigrations(context.Background(), db), "boom")
}

func TestRunMigrations_SQLiteSchema(t *testing.T) {
	db, err := sql.Open("sqlite", "file:repomanager_test?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	m, _ := NewRepositoryManager(DriverSQLite)
	require.NoError(t, m.RunMigrations(context.Background(), db))

	for _, table := range []string{"users", "permissions", "sessions"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}
