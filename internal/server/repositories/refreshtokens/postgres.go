// Package refreshtokens persists rotating admin session tokens.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/voicetasker/voicetasker/internal/common"
	"github.com/voicetasker/voicetasker/internal/dbx"
	"github.com/voicetasker/voicetasker/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token string, validity time.Duration) error {
	query := `INSERT INTO refresh_tokens (token, expires) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, token, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `SELECT token, expires FROM refresh_tokens WHERE token=$1`
	row := r.db.QueryRowContext(ctx, query, token)

	t := &models.RefreshToken{}
	err := row.Scan(&t.Token, &t.Expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token=$1`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
