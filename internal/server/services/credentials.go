package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/dmitrijs2005/enigma/internal/cryptox"
	"github.com/dmitrijs2005/enigma/internal/dbx"
	"github.com/dmitrijs2005/enigma/internal/server/models"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/repomanager"
)

// CredentialStore owns user rows and password verification. Every method
// runs against the handle it is given; transaction scope belongs to the
// caller.
type CredentialStore struct {
	repomanager repomanager.RepositoryManager
	hasher      *cryptox.Hasher
	now         func() time.Time
}

func NewCredentialStore(rm repomanager.RepositoryManager, hasher *cryptox.Hasher, now func() time.Time) *CredentialStore {
	return &CredentialStore{repomanager: rm, hasher: hasher, now: now}
}

// Create stores a new user with a freshly salted password hash.
func (c *CredentialStore) Create(ctx context.Context, tx dbx.DBTX, username, password string, email *string) (int64, error) {
	if strings.TrimSpace(username) == "" {
		return 0, fmt.Errorf("%w: empty username", common.ErrValidation)
	}

	digest, err := c.hasher.Hash(password)
	if err != nil {
		return 0, err
	}

	return c.repomanager.Users(tx).Create(ctx, &models.Credential{
		Username:       username,
		Email:          email,
		PasswordHash:   digest.Hash,
		PasswordSalt:   digest.Salt,
		PasswordMethod: digest.Method,
		CreatedAt:      c.now(),
	})
}

// VerifyCredentials returns the user id when password matches. A hash stored
// under an outdated method is replaced with a current one.
func (c *CredentialStore) VerifyCredentials(ctx context.Context, tx dbx.DBTX, username, password string) (int64, error) {
	repo := c.repomanager.Users(tx)

	cred, err := repo.GetByUsername(ctx, username)
	if err != nil {
		return 0, err
	}

	stored := cryptox.Digest{Method: cred.PasswordMethod, Salt: cred.PasswordSalt, Hash: cred.PasswordHash}
	if err := c.hasher.Verify(password, stored); err != nil {
		return 0, err
	}

	if c.hasher.NeedsUpgrade(cred.PasswordMethod) {
		fresh, err := c.hasher.Hash(password)
		if err != nil {
			return 0, err
		}
		if err := repo.UpdatePassword(ctx, cred.ID, fresh.Hash, fresh.Salt, fresh.Method); err != nil {
			return 0, err
		}
	}

	return cred.ID, nil
}

func (c *CredentialStore) GetByID(ctx context.Context, tx dbx.DBTX, id int64) (*models.User, error) {
	cred, err := c.repomanager.Users(tx).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.hydrate(ctx, tx, cred)
}

func (c *CredentialStore) GetByUsername(ctx context.Context, tx dbx.DBTX, username string) (*models.User, error) {
	cred, err := c.repomanager.Users(tx).GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return c.hydrate(ctx, tx, cred)
}

func (c *CredentialStore) List(ctx context.Context, tx dbx.DBTX) ([]models.User, error) {
	creds, err := c.repomanager.Users(tx).List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.User, 0, len(creds))
	for i := range creds {
		u, err := c.hydrate(ctx, tx, &creds[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	return result, nil
}

// DeleteByUsername removes the user's sessions, grants and the user row.
func (c *CredentialStore) DeleteByUsername(ctx context.Context, tx dbx.DBTX, username string) error {
	cred, err := c.repomanager.Users(tx).GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := c.repomanager.Sessions(tx).DeleteForUser(ctx, cred.ID); err != nil {
		return err
	}
	if err := c.repomanager.Permissions(tx).DeleteForUser(ctx, cred.ID); err != nil {
		return err
	}
	return c.repomanager.Users(tx).Delete(ctx, cred.ID)
}

func (c *CredentialStore) hydrate(ctx context.Context, tx dbx.DBTX, cred *models.Credential) (*models.User, error) {
	perms, err := c.repomanager.Permissions(tx).ListForUser(ctx, cred.ID)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:          cred.ID,
		Username:    cred.Username,
		Email:       cred.Email,
		Permissions: perms,
	}, nil
}
