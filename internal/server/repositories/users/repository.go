// Package users stores user rows together with their password material.
package users

import (
	"context"

	"github.com/dmitrijs2005/enigma/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Credential) (int64, error)
	GetByUsername(ctx context.Context, username string) (*models.Credential, error)
	GetByID(ctx context.Context, id int64) (*models.Credential, error)
	List(ctx context.Context) ([]models.Credential, error)
	UpdatePassword(ctx context.Context, id int64, hash, salt, method string) error
	Delete(ctx context.Context, id int64) error
}
