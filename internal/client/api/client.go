// Package api implements the HTTP and WebSocket client for the VoiceTasker
// backend.
package api

import (
	"context"
	"errors"

	"github.com/voicetasker/voicetasker/internal/client/models"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Client is the minimal backend surface the client services need.
type Client interface {
	Close() error
	Transcribe(ctx context.Context, audioDataURI string) (text string, audioKey string, err error)
	CreateLog(ctx context.Context, ownerID, text, audioKey string) (*models.LogEntry, error)
	DeleteLog(ctx context.Context, ownerID, id string) error
	DeleteLogs(ctx context.Context, ownerID string, ids []string) (int64, error)
	ReportVisit(ctx context.Context, visit *models.Visit) error
	AdminLogin(ctx context.Context, username, password string) error
	AdminLogs(ctx context.Context) (map[string][]models.LogEntry, []string, error)
	Subscribe(ctx context.Context, ownerID string) (Subscription, error)
}

// Subscription is a cancellable handle on the live log feed. Snapshots()
// yields full current-state snapshots; Cancel is synchronous — once it
// returns, no further snapshot is delivered and the channel is closed.
type Subscription interface {
	Snapshots() <-chan models.Snapshot
	Err() error
	Cancel()
}
