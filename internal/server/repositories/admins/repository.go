package admins

import (
	"context"

	"github.com/voicetasker/voicetasker/internal/server/models"
)

type Repository interface {
	GetByName(ctx context.Context, name string) (*models.AdminCredential, error)
	Upsert(ctx context.Context, cred *models.AdminCredential) error
}
