package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/dmitrijs2005/enigma/internal/cryptox"
	"github.com/dmitrijs2005/enigma/internal/dbx"
	"github.com/dmitrijs2005/enigma/internal/logging"
	"github.com/dmitrijs2005/enigma/internal/server/models"
	"github.com/dmitrijs2005/enigma/internal/server/repositories/repomanager"
)

// Recorder receives outcome counts from the facade.
type Recorder interface {
	ObserveLogin(outcome string)
	ObserveVerify(status string)
	ObserveSweep(deleted int64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLogin(string)  {}
func (nopRecorder) ObserveVerify(string) {}
func (nopRecorder) ObserveSweep(int64)   {}

// Login outcomes passed to Recorder.ObserveLogin.
const (
	LoginSucceeded = "succeeded"
	LoginRejected  = "rejected"
	LoginFailed    = "error"
)

// Authorizer is the entry point for session, user and permission operations.
// Each call runs in its own transaction on the pool it was built with.
type Authorizer struct {
	db          *sql.DB
	logger      logging.Logger
	recorder    Recorder
	now         func() time.Time
	hasher      *cryptox.Hasher
	tokens      TokenSource
	credentials *CredentialStore
	permissions *PermissionStore
	sessions    *SessionEngine
}

type Option func(*Authorizer)

// WithClock replaces the wall clock used for timestamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(a *Authorizer) { a.now = now }
}

func WithHasher(h *cryptox.Hasher) Option {
	return func(a *Authorizer) { a.hasher = h }
}

func WithTokenSource(src TokenSource) Option {
	return func(a *Authorizer) { a.tokens = src }
}

func WithRecorder(r Recorder) Option {
	return func(a *Authorizer) { a.recorder = r }
}

func NewAuthorizer(db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger, opts ...Option) *Authorizer {
	a := &Authorizer{
		db:       db,
		logger:   logger.With("module", "authorizer"),
		recorder: nopRecorder{},
		now:      func() time.Time { return time.Now().UTC() },
		hasher:   cryptox.DefaultHasher(),
		tokens:   randomToken,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	// SQLite compares stored timestamps as text, so every instant written or
	// compared must share one zone.
	clock := a.now
	a.now = func() time.Time { return clock().UTC() }

	a.credentials = NewCredentialStore(rm, a.hasher, a.now)
	a.permissions = NewPermissionStore(rm)
	a.sessions = NewSessionEngine(rm, a.credentials, a.now, a.tokens)
	return a
}

func (a *Authorizer) withTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, a.db, nil, fn)
}

// Ping checks that the database is reachable.
func (a *Authorizer) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// CreateSession logs a user in. Any credential problem is reported to the
// caller as common.ErrLoginFailed; the precise reason only goes to the log.
func (a *Authorizer) CreateSession(ctx context.Context, username, password string, track models.Track) (*models.Session, error) {
	var session *models.Session
	err := a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		session, err = a.sessions.Create(ctx, tx, username, password, track)
		return err
	})

	if err != nil {
		if errors.Is(err, common.ErrInvalidCredential) {
			a.logger.Warn(ctx, "login rejected", "username", username, "reason", err.Error())
			a.recorder.ObserveLogin(LoginRejected)
			return nil, common.ErrLoginFailed
		}
		a.logger.Error(ctx, "session creation failed", "username", username, "error", err)
		a.recorder.ObserveLogin(LoginFailed)
		return nil, err
	}

	a.logger.Info(ctx, "session created", "user_id", session.User.ID)
	a.recorder.ObserveLogin(LoginSucceeded)
	return session, nil
}

func (a *Authorizer) VerifySession(ctx context.Context, token string) (models.VerifyResult, error) {
	var res models.VerifyResult
	err := a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		res, err = a.sessions.Verify(ctx, tx, token)
		return err
	})
	if err != nil {
		a.logger.Error(ctx, "session verification failed", "error", err)
		return models.VerifyResult{}, err
	}

	a.recorder.ObserveVerify(res.Status.String())
	return res, nil
}

func (a *Authorizer) DeleteSession(ctx context.Context, token string) error {
	return a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return a.sessions.Delete(ctx, tx, token)
	})
}

// SweepExpiredSessions deletes expired sessions and returns how many went.
func (a *Authorizer) SweepExpiredSessions(ctx context.Context) (int64, error) {
	var n int64
	err := a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		n, err = a.sessions.SweepExpired(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}

	a.logger.Debug(ctx, "expired sessions swept", "deleted", n)
	a.recorder.ObserveSweep(n)
	return n, nil
}

func (a *Authorizer) ListUserSessions(ctx context.Context, username string) ([]models.SessionRecord, error) {
	var result []models.SessionRecord
	err := a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := a.credentials.GetByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		result, err = a.sessions.ListForUser(ctx, tx, u.ID)
		return err
	})
	return result, err
}

func (a *Authorizer) CreateUser(ctx context.Context, username, password string, email *string) (*models.User, error) {
	var user *models.User
	err := a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := a.credentials.Create(ctx, tx, username, password, email)
		if err != nil {
			return err
		}
		user, err = a.credentials.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info(ctx, "user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (a *Authorizer) DeleteUser(ctx context.Context, username string) error {
	err := a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return a.credentials.DeleteByUsername(ctx, tx, username)
	})
	if err != nil {
		return err
	}

	a.logger.Info(ctx, "user deleted", "username", username)
	return nil
}

func (a *Authorizer) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user *models.User
	err := a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = a.credentials.GetByUsername(ctx, tx, username)
		return err
	})
	return user, err
}

func (a *Authorizer) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = a.credentials.GetByID(ctx, tx, id)
		return err
	})
	return user, err
}

func (a *Authorizer) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		users, err = a.credentials.List(ctx, tx)
		return err
	})
	return users, err
}

func (a *Authorizer) AddPermission(ctx context.Context, username, site, permission string) error {
	return a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := a.credentials.GetByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		return a.permissions.Add(ctx, tx, u.ID, site, permission)
	})
}

func (a *Authorizer) RemovePermission(ctx context.Context, username, site, permission string) error {
	return a.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := a.credentials.GetByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		return a.permissions.Remove(ctx, tx, u.ID, site, permission)
	})
}

// HasPermission reads outside of a transaction.
func (a *Authorizer) HasPermission(ctx context.Context, username, site, permission string) (bool, error) {
	u, err := a.credentials.GetByUsername(ctx, a.db, username)
	if err != nil {
		return false, err
	}
	return a.permissions.Has(ctx, a.db, u.ID, site, permission)
}
