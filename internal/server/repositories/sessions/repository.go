// Package sessions stores issued session tokens with their client track.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/enigma/internal/server/models"
)

type Repository interface {
	// Insert stores s unless its token is already taken. The boolean is
	// false on a token collision.
	Insert(ctx context.Context, s *models.SessionRecord) (bool, error)
	GetByToken(ctx context.Context, token string) (*models.SessionRecord, error)
	Touch(ctx context.Context, token string, at time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteForUser(ctx context.Context, userID int64) error
	ListForUser(ctx context.Context, userID int64) ([]models.SessionRecord, error)
}
