package logs

import (
	"context"

	"github.com/voicetasker/voicetasker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.LogEntry) error
	DeleteByID(ctx context.Context, ownerID string, id string) error
	DeleteBatch(ctx context.Context, ownerID string, ids []string) (int64, error)
	SelectByOwner(ctx context.Context, ownerID string) ([]*models.LogEntry, error)
	SelectAll(ctx context.Context) ([]*models.LogEntry, error)
	GetByID(ctx context.Context, id string) (*models.LogEntry, error)
}
