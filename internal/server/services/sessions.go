package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/dmitrijs2005/enigma/internal/dbx"
	"github.com/dmitrijs2005/enigma/internal/server/models"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/repomanager"
)

const (
	// MaxTokenAttempts bounds token generation when inserts collide.
	MaxTokenAttempts = 10

	// TokenBytes is the random length of a session token before hex encoding.
	TokenBytes = 32
)

// TokenSource mints candidate session tokens.
type TokenSource func() (string, error)

func randomToken() (string, error) {
	return common.MakeRandHexString(TokenBytes)
}

// SessionEngine issues, validates and removes session tokens.
type SessionEngine struct {
	repomanager repomanager.RepositoryManager
	credentials *CredentialStore
	now         func() time.Time
	newToken    TokenSource
}

func NewSessionEngine(rm repomanager.RepositoryManager, creds *CredentialStore, now func() time.Time, tokens TokenSource) *SessionEngine {
	return &SessionEngine{repomanager: rm, credentials: creds, now: now, newToken: tokens}
}

// Create checks the credentials and stores a new session. Token collisions
// are retried up to MaxTokenAttempts times.
func (e *SessionEngine) Create(ctx context.Context, tx dbx.DBTX, username, password string, track models.Track) (*models.Session, error) {
	userID, err := e.credentials.VerifyCredentials(ctx, tx, username, password)
	if err != nil {
		return nil, err
	}

	now := e.now()
	rec := &models.SessionRecord{
		UserID:     userID,
		CreatedAt:  now,
		ExpiryDate: now.Add(models.SessionLifetime),
		Track:      track,
	}

	repo := e.repomanager.Sessions(tx)
	inserted := false
	for attempt := 0; attempt < MaxTokenAttempts && !inserted; attempt++ {
		rec.Token, err = e.newToken()
		if err != nil {
			return nil, err
		}
		inserted, err = repo.Insert(ctx, rec)
		if err != nil {
			return nil, err
		}
	}
	if !inserted {
		return nil, common.ErrSessionCreationFailed
	}

	user, err := e.credentials.GetByID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	return compose(user, rec), nil
}

// Verify looks the token up. Expired sessions are reported but left as they
// are; valid ones get last_used_at set to now.
func (e *SessionEngine) Verify(ctx context.Context, tx dbx.DBTX, token string) (models.VerifyResult, error) {
	repo := e.repomanager.Sessions(tx)

	rec, err := repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrSessionNotFound) {
			return models.VerifyResult{Status: models.SessionNotFound}, nil
		}
		return models.VerifyResult{}, err
	}

	now := e.now()
	if rec.Expired(now) {
		return models.VerifyResult{Status: models.SessionExpired}, nil
	}

	if err := repo.Touch(ctx, token, now); err != nil {
		return models.VerifyResult{}, err
	}
	rec.LastUsedAt = &now

	user, err := e.credentials.GetByID(ctx, tx, rec.UserID)
	if err != nil {
		return models.VerifyResult{}, err
	}

	return models.VerifyResult{Status: models.SessionValid, Session: compose(user, rec)}, nil
}

// Delete removes the session if present.
func (e *SessionEngine) Delete(ctx context.Context, tx dbx.DBTX, token string) error {
	return e.repomanager.Sessions(tx).Delete(ctx, token)
}

// SweepExpired deletes every session already past its expiry.
func (e *SessionEngine) SweepExpired(ctx context.Context, tx dbx.DBTX) (int64, error) {
	return e.repomanager.Sessions(tx).DeleteExpired(ctx, e.now())
}

func (e *SessionEngine) ListForUser(ctx context.Context, tx dbx.DBTX, userID int64) ([]models.SessionRecord, error) {
	return e.repomanager.Sessions(tx).ListForUser(ctx, userID)
}

func compose(user *models.User, rec *models.SessionRecord) *models.Session {
	return &models.Session{
		User:       *user,
		Token:      rec.Token,
		ExpiryDate: rec.ExpiryDate,
		CreatedAt:  rec.CreatedAt,
		LastUsedAt: rec.LastUsedAt,
		Track:      rec.Track,
	}
}
