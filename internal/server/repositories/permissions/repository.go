// Package permissions stores (user, site, permission) grants.
package permissions

import (
	"context"

	"github.com/dmitrijs2005/enigma/internal/server/models"
)

type Repository interface {
	Add(ctx context.Context, userID int64, site, permission string) error
	Remove(ctx context.Context, userID int64, site, permission string) error
	ListForUser(ctx context.Context, userID int64) ([]models.Permission, error)
	Has(ctx context.Context, userID int64, site, permission string) (bool, error)
	DeleteForUser(ctx context.Context, userID int64) error
}
