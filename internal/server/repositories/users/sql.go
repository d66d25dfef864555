package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/dmitrijs2005/enigma/internal/dbx"
	"github.com/dmitrijs2005/enigma/internal/server/models"
)

// SQLRepository works on both supported dialects; queries use $N
// placeholders which pgx and modernc sqlite both accept.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, c *models.Credential) (int64, error) {
	query :=
		`INSERT INTO users (username, password_hash, password_salt, password_method, email, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		c.Username, c.PasswordHash, c.PasswordSalt, c.PasswordMethod, c.Email, c.CreatedAt).Scan(&id)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, common.ErrDuplicateUsername
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	c.ID = id
	return id, nil
}

const selectCredential = `SELECT id, username, email, password_hash, password_salt, password_method, created_at FROM users`

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.Credential, error) {
	return r.getOne(ctx, selectCredential+` WHERE username = $1`, username)
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Credential, error) {
	return r.getOne(ctx, selectCredential+` WHERE id = $1`, id)
}

func (r *SQLRepository) getOne(ctx context.Context, query string, arg any) (*models.Credential, error) {
	c, err := scanCredential(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]models.Credential, error) {
	rows, err := r.db.QueryContext(ctx, selectCredential+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) UpdatePassword(ctx context.Context, id int64, hash, salt, method string) error {
	query :=
		`UPDATE users SET password_hash = $1, password_salt = $2, password_method = $3
		 WHERE id = $4`

	if _, err := r.db.ExecContext(ctx, query, hash, salt, method, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the user row. Returns common.ErrUserNotFound if nothing was
// deleted.
func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCredential(s scanner) (*models.Credential, error) {
	c := &models.Credential{}
	var email sql.NullString
	if err := s.Scan(&c.ID, &c.Username, &email, &c.PasswordHash, &c.PasswordSalt, &c.PasswordMethod, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	if email.Valid {
		c.Email = &email.String
	}
	return c, nil
}
