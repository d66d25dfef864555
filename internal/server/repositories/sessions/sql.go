package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/dmitrijs2005/enigma/internal/dbx"
	"github.com/dmitrijs2005/enigma/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Insert(ctx context.Context, s *models.SessionRecord) (bool, error) {
	query :=
		`INSERT INTO sessions (user_id, session_token, expiry_date, created_at,
		     track_device, track_user_agent, track_ip_address, track_location,
		     track_os, track_browser, track_screen_resolution, track_timezone)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (session_token) DO NOTHING`

	t := s.Track
	res, err := r.db.ExecContext(ctx, query,
		s.UserID, s.Token, s.ExpiryDate, s.CreatedAt,
		t.Device, t.UserAgent, t.IPAddress, t.Location,
		t.OS, t.Browser, t.ScreenResolution, t.Timezone)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

const selectSession = `SELECT s.id, s.user_id, s.session_token, s.expiry_date, s.created_at, s.last_used_at,
		 s.track_device, s.track_user_agent, s.track_ip_address, s.track_location,
		 s.track_os, s.track_browser, s.track_screen_resolution, s.track_timezone
		 FROM sessions s
		 INNER JOIN users u ON u.id = s.user_id`

// GetByToken returns common.ErrSessionNotFound when the token is unknown or
// its owner no longer exists.
func (r *SQLRepository) GetByToken(ctx context.Context, token string) (*models.SessionRecord, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, selectSession+`
		 WHERE s.session_token = $1`, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrSessionNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *SQLRepository) ListForUser(ctx context.Context, userID int64) ([]models.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectSession+`
		 WHERE s.user_id = $1
		 ORDER BY s.created_at, s.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.SessionRecord, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Touch(ctx context.Context, token string, at time.Time) error {
	query := `UPDATE sessions SET last_used_at = $1 WHERE session_token = $2`
	if _, err := r.db.ExecContext(ctx, query, at, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_token = $1`, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions whose expiry lies strictly before now and
// returns how many were removed.
func (r *SQLRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expiry_date < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) DeleteForUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (*models.SessionRecord, error) {
	rec := &models.SessionRecord{}
	var lastUsed sql.NullTime
	var track [8]sql.NullString

	err := s.Scan(&rec.ID, &rec.UserID, &rec.Token, &rec.ExpiryDate, &rec.CreatedAt, &lastUsed,
		&track[0], &track[1], &track[2], &track[3], &track[4], &track[5], &track[6], &track[7])
	if err != nil {
		return nil, err
	}

	rec.ExpiryDate = rec.ExpiryDate.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	if lastUsed.Valid {
		at := lastUsed.Time.UTC()
		rec.LastUsedAt = &at
	}
	rec.Track = models.Track{
		Device:           nullable(track[0]),
		UserAgent:        nullable(track[1]),
		IPAddress:        nullable(track[2]),
		Location:         nullable(track[3]),
		OS:               nullable(track[4]),
		Browser:          nullable(track[5]),
		ScreenResolution: nullable(track[6]),
		Timezone:         nullable(track[7]),
	}
	return rec, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
