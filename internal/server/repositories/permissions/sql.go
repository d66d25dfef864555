package permissions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/enigma/internal/dbx"
	"github.com/dmitrijs2005/enigma/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Add inserts the grant. An existing identical grant is left as is.
func (r *SQLRepository) Add(ctx context.Context, userID int64, site, permission string) error {
	query :=
		`INSERT INTO permissions (user_id, site, permission)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, site, permission) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, site, permission); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Remove(ctx context.Context, userID int64, site, permission string) error {
	query :=
		`DELETE FROM permissions
		 WHERE user_id = $1 AND site = $2 AND permission = $3`

	if _, err := r.db.ExecContext(ctx, query, userID, site, permission); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListForUser(ctx context.Context, userID int64) ([]models.Permission, error) {
	query :=
		`SELECT site, permission FROM permissions
		 WHERE user_id = $1
		 ORDER BY site, permission`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Permission, 0)
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.Site, &p.Permission); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Has(ctx context.Context, userID int64, site, permission string) (bool, error) {
	query :=
		`SELECT COUNT(*) FROM permissions
		 WHERE user_id = $1 AND site = $2 AND permission = $3`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, userID, site, permission).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) DeleteForUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM permissions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
