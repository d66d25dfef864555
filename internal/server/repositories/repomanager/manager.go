// Package repomanager vends repository implementations bound to a DBTX and
// runs the embedded goose migrations for the configured SQL dialect.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/enigma/internal/dbx"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Permissions(db dbx.DBTX) permissions.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
