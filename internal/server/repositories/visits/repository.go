package visits

import (
	"context"

	"github.com/voicetasker/voicetasker/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, visit *models.Visit) error
	GetByGuestID(ctx context.Context, guestID string) (*models.Visit, error)
}
