// Package visits tracks one row per guest identity with client metadata and
// first/last visit times.
package visits

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

// Upsert records a visit. The first insert sets first_seen; every later
// visit refreshes the metadata and last_seen only.
func (r *PostgresRepository) Upsert(ctx context.Context, visit *models.Visit) error {
	query := `
		INSERT INTO visits (guest_id, user_agent, locale, screen_size, timezone, referrer, first_seen, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (guest_id)
		DO UPDATE SET
			user_agent = EXCLUDED.user_agent,
			locale = EXCLUDED.locale,
			screen_size = EXCLUDED.screen_size,
			timezone = EXCLUDED.timezone,
			referrer = EXCLUDED.referrer,
			last_seen = now();
	`
	_, err := r.db.ExecContext(ctx, query,
		visit.GuestID, visit.UserAgent, visit.Locale, visit.ScreenSize, visit.Timezone, visit.Referrer)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByGuestID(ctx context.Context, guestID string) (*models.Visit, error) {
	query := `
		SELECT guest_id, user_agent, locale, screen_size, timezone, referrer, first_seen, last_seen
		FROM visits WHERE guest_id=$1
	`
	row := r.db.QueryRowContext(ctx, query, guestID)

	v := &models.Visit{}
	err := row.Scan(&v.GuestID, &v.UserAgent, &v.Locale, &v.ScreenSize, &v.Timezone, &v.Referrer, &v.FirstSeen, &v.LastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return v, nil
}
