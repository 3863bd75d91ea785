// Package common defines shared constants and sentinel errors used across
// client and server layers of VoiceTasker. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Transcription errors.
	ErrInvalidAudioPayload = errors.New("invalid audio payload")
	ErrServiceUnavailable  = errors.New("transcription model unavailable")

	// Log write/validation errors.
	ErrEmptyText = errors.New("empty transcription text")
	ErrNoOwner   = errors.New("no owner identity")

	// Admin login errors.
	ErrMissingFields      = errors.New("username and password are required")
	ErrAdminConfigMissing = errors.New("admin credential record missing")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Recording errors.
	ErrPermissionDenied = errors.New("audio capture permission denied")
	ErrRecorderBusy     = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)
