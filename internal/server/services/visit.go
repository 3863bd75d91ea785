// VisitService records one row per guest identity on every client start.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/voicetasker/voicetasker/internal/common"
	"github.com/voicetasker/voicetasker/internal/server/models"
	"github.com/voicetasker/voicetasker/internal/server/repositories/repomanager"
)

type VisitService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewVisitService(db *sql.DB, m repomanager.RepositoryManager) *VisitService {
	return &VisitService{db: db, repomanager: m}
}

// Record upserts the visit row for a guest. Sentinel identities are ignored
// silently; they carry no usable partition key.
func (s *VisitService) Record(ctx context.Context, visit *models.Visit) error {
	if visit.GuestID == "" || visit.GuestID == common.GuestSentinelID {
		return nil
	}
	repo := s.repomanager.Visits(s.db)
	if err := repo.Upsert(ctx, visit); err != nil {
		return fmt.Errorf("error recording visit: %w", err)
	}
	return nil
}
