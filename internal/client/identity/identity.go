// Package identity resolves the anonymous guest identity that owns this
// device's log entries.
package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/voicetasker/voicetasker/internal/client/repositories/metadata"
	"github.com/voicetasker/voicetasker/internal/common"
)

const guestUserIDKey = "guest_user_id"

// Provider hands out a stable per-device guest id backed by the metadata
// store. A nil store means no usable local storage; callers then get the
// shared sentinel, which servers refuse as a log owner.
type Provider struct {
	metadata metadata.Repository
}

func NewProvider(m metadata.Repository) *Provider {
	return &Provider{metadata: m}
}

// GetOrCreate returns the persisted guest id, generating and storing a new
// one only when none exists yet. Repeated calls always return the same
// token.
func (p *Provider) GetOrCreate(ctx context.Context) (string, error) {
	if p.metadata == nil {
		return common.GuestSentinelID, nil
	}

	value, err := p.metadata.Get(ctx, guestUserIDKey)
	if err != nil {
		return "", fmt.Errorf("failed to read guest id: %w", err)
	}
	if len(value) > 0 {
		return string(value), nil
	}

	id := uuid.NewString()
	if err := p.metadata.Set(ctx, guestUserIDKey, []byte(id)); err != nil {
		return "", fmt.Errorf("failed to persist guest id: %w", err)
	}
	return id, nil
}
