// Package services contains server-side business logic. This file implements
// LogService: creating, deleting, and batch-deleting voice log entries, and
// publishing a fresh owner snapshot to the live feed after every committed
// mutation.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/voicetasker/voicetasker/internal/common"
	"github.com/voicetasker/voicetasker/internal/dbx"
	"github.com/voicetasker/voicetasker/internal/logging"
	"github.com/voicetasker/voicetasker/internal/server/hub"
	"github.com/voicetasker/voicetasker/internal/server/models"
	"github.com/voicetasker/voicetasker/internal/server/repositories/repomanager"
)

// LogService owns all LogEntry mutations. Reads for the feed go through the
// same service so every mutation path ends in exactly one hub publish.
type LogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hub         *hub.Hub
	logger      logging.Logger
}

func NewLogService(db *sql.DB, m repomanager.RepositoryManager, h *hub.Hub, l logging.Logger) *LogService {
	return &LogService{db: db, repomanager: m, hub: h, logger: l.With("module", "log_service")}
}

// Create validates and persists a new entry, then publishes the owner's
// refreshed snapshot. Empty text and missing/sentinel owners are rejected
// before any write.
func (s *LogService) Create(ctx context.Context, ownerID string, text string, audioKey string) (*models.LogEntry, error) {
	if ownerID == "" || ownerID == common.GuestSentinelID {
		return nil, common.ErrNoOwner
	}
	if text == "" {
		return nil, common.ErrEmptyText
	}

	entry := &models.LogEntry{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Text:     text,
		AudioKey: audioKey,
	}

	repo := s.repomanager.Logs(s.db)
	if err := repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("error creating log entry: %w", err)
	}

	s.publishSnapshot(ctx, ownerID)
	return entry, nil
}

// DeleteOne removes a single entry for its owner and publishes the refreshed
// snapshot.
func (s *LogService) DeleteOne(ctx context.Context, ownerID string, id string) error {
	repo := s.repomanager.Logs(s.db)
	if err := repo.DeleteByID(ctx, ownerID, id); err != nil {
		return err
	}

	s.publishSnapshot(ctx, ownerID)
	return nil
}

// DeleteBatch atomically removes the given ids for an owner. The whole batch
// applies or none of it: a count mismatch (some id already gone or foreign)
// rolls the transaction back. Returns the number deleted.
func (s *LogService) DeleteBatch(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Logs(tx)
		n, err := repoTx.DeleteBatch(ctx, ownerID, ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return fmt.Errorf("batch delete incomplete: %d of %d: %w", n, len(ids), common.ErrorNotFound)
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publishSnapshot(ctx, ownerID)
	return deleted, nil
}

// Snapshot returns the owner's current full-state list, newest first.
func (s *LogService) Snapshot(ctx context.Context, ownerID string) (hub.Snapshot, error) {
	repo := s.repomanager.Logs(s.db)
	entries, err := repo.SelectByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error selecting logs: %w", err)
	}
	if entries == nil {
		entries = []*models.LogEntry{}
	}
	return hub.Snapshot(entries), nil
}

// AllGroupedByOwner returns every entry in the store keyed by owner ID, each
// group newest first, plus the sorted owner ids. Admin view only.
func (s *LogService) AllGroupedByOwner(ctx context.Context) (map[string][]*models.LogEntry, []string, error) {
	repo := s.repomanager.Logs(s.db)
	entries, err := repo.SelectAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error selecting logs: %w", err)
	}

	grouped := make(map[string][]*models.LogEntry)
	var owners []string
	for _, e := range entries {
		if _, ok := grouped[e.OwnerID]; !ok {
			owners = append(owners, e.OwnerID)
		}
		grouped[e.OwnerID] = append(grouped[e.OwnerID], e)
	}
	return grouped, owners, nil
}

// Get returns one entry by id (admin path).
func (s *LogService) Get(ctx context.Context, id string) (*models.LogEntry, error) {
	return s.repomanager.Logs(s.db).GetByID(ctx, id)
}

func (s *LogService) publishSnapshot(ctx context.Context, ownerID string) {
	snapshot, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		// The mutation is committed; subscribers reconcile on the next
		// successful publish.
		s.logger.Error(ctx, "snapshot publish failed", "owner", ownerID, "error", err.Error())
		return
	}
	s.hub.Publish(ownerID, snapshot)
}
