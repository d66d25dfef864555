package services

import (
	"context"

	"github.com/dmitrijs2005/enigma/internal/dbx"
	"github.com/dmitrijs2005/enigma/internal/server/models"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/repomanager"
)

// PermissionStore manages flat (site, permission) grants per user.
type PermissionStore struct {
	repomanager repomanager.RepositoryManager
}

func NewPermissionStore(rm repomanager.RepositoryManager) *PermissionStore {
	return &PermissionStore{repomanager: rm}
}

// Add grants (site, permission) to the user. Granting twice is a no-op.
func (p *PermissionStore) Add(ctx context.Context, tx dbx.DBTX, userID int64, site, permission string) error {
	if _, err := p.repomanager.Users(tx).GetByID(ctx, userID); err != nil {
		return err
	}
	return p.repomanager.Permissions(tx).Add(ctx, userID, site, permission)
}

// Remove revokes the grant. Revoking an absent grant is a no-op.
func (p *PermissionStore) Remove(ctx context.Context, tx dbx.DBTX, userID int64, site, permission string) error {
	return p.repomanager.Permissions(tx).Remove(ctx, userID, site, permission)
}

func (p *PermissionStore) ListForUser(ctx context.Context, tx dbx.DBTX, userID int64) ([]models.Permission, error) {
	return p.repomanager.Permissions(tx).ListForUser(ctx, userID)
}

// Has is a point-in-time read; the answer may be stale by the time the
// caller acts on it.
func (p *PermissionStore) Has(ctx context.Context, db dbx.DBTX, userID int64, site, permission string) (bool, error) {
	return p.repomanager.Permissions(db).Has(ctx, userID, site, permission)
}
