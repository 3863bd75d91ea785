// Package logs provides the PostgreSQL-backed repository for voice log
// entries.
package logs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/voicetasker/voicetasker/internal/common"
	"github.com/voicetasker/voicetasker/internal/dbx"
	"github.com/voicetasker/voicetasker/internal/server/models"
)

// PostgresRepository implements log storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new log entry. The caller assigns the ID; created_at is
// assigned by the database clock and read back into the entry.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.LogEntry) error {
	query := `
		INSERT INTO logs (id, owner_id, text, audio_key)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at;
	`
	row := r.db.QueryRowContext(ctx, query, entry.ID, entry.OwnerID, entry.Text, entry.AudioKey)
	if err := row.Scan(&entry.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteByID removes a single entry scoped to its owner. Deleting an entry
// that does not exist (or belongs to someone else) returns ErrorNotFound.
func (r *PostgresRepository) DeleteByID(ctx context.Context, ownerID string, id string) error {
	query := `DELETE FROM logs WHERE owner_id=$1 AND id=$2`
	res, err := r.db.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteBatch removes the given ids for an owner in a single statement and
// returns the number of rows deleted. Callers wanting all-or-nothing
// semantics run it under dbx.WithTx and roll back on a count mismatch.
func (r *PostgresRepository) DeleteBatch(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `DELETE FROM logs WHERE owner_id=$1 AND id = ANY($2)`
	res, err := r.db.ExecContext(ctx, query, ownerID, ids)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

// SelectByOwner returns all entries for ownerID, newest first.
func (r *PostgresRepository) SelectByOwner(ctx context.Context, ownerID string) ([]*models.LogEntry, error) {
	query := `
		SELECT id, owner_id, text, audio_key, created_at FROM logs
		WHERE owner_id=$1
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select logs: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SelectAll returns every entry in the store ordered by owner then newest
// first. Used by the admin view.
func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.LogEntry, error) {
	query := `
		SELECT id, owner_id, text, audio_key, created_at FROM logs
		ORDER BY owner_id, created_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select logs: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetByID returns a single entry by id regardless of owner. Used by the
// admin audio playback path.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.LogEntry, error) {
	query := `SELECT id, owner_id, text, audio_key, created_at FROM logs WHERE id=$1`
	row := r.db.QueryRowContext(ctx, query, id)

	item := &models.LogEntry{}
	err := row.Scan(&item.ID, &item.OwnerID, &item.Text, &item.AudioKey, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return item, nil
}

func scanEntries(rows *sql.Rows) ([]*models.LogEntry, error) {
	var result []*models.LogEntry
	for rows.Next() {
		var item models.LogEntry
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Text, &item.AudioKey, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
