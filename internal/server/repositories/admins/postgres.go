// Package admins provides the PostgreSQL-backed repository for the single
// operator credential record.
package admins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// GetByName reads the credential record stored under the given well-known
// name. Absence maps to ErrorNotFound.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.AdminCredential, error) {
	query := `SELECT name, username, password_hash FROM admin_credentials WHERE name=$1`
	row := r.db.QueryRowContext(ctx, query, name)

	cred := &models.AdminCredential{}
	err := row.Scan(&cred.Name, &cred.Username, &cred.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return cred, nil
}

// Upsert writes the credential record. Used by provisioning, never by the
// login path.
func (r *PostgresRepository) Upsert(ctx context.Context, cred *models.AdminCredential) error {
	query := `
		INSERT INTO admin_credentials (name, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (name)
		DO UPDATE SET username = EXCLUDED.username, password_hash = EXCLUDED.password_hash;
	`
	if _, err := r.db.ExecContext(ctx, query, cred.Name, cred.Username, cred.PasswordHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
