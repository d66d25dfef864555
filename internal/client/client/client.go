package client

import (
	"context"

	"github.com/dmitrijs2005/enigma/internal/api"
)

// Client is the admin surface the CLI drives.
type Client interface {
	Close() error
	CreateUser(ctx context.Context, username, password string, email *string) (*api.User, error)
	DeleteUser(ctx context.Context, username string) error
	GetUser(ctx context.Context, username string) (*api.User, error)
	ListUsers(ctx context.Context) ([]api.User, error)
	AddPermission(ctx context.Context, username, site, permission string) error
	RemovePermission(ctx context.Context, username, site, permission string) error
	HasPermission(ctx context.Context, username, site, permission string) (bool, error)
	ListSessions(ctx context.Context, username string) ([]api.SessionInfo, error)
	SweepSessions(ctx context.Context) (int64, error)
	ExportDirectory(ctx context.Context) (*api.ExportDirectoryResponse, error)
}
