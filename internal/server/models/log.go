// Package models defines server-side data models.
package models

import "time"

// LogEntry is one transcribed voice note. Entries are immutable after
// creation; the only lifecycle transition is deletion by the owner.
type LogEntry struct {
	// ID is the store-assigned identifier, unique and immutable.
	ID string `json:"id"`

	// OwnerID is the guest identity the entry belongs to. Immutable.
	OwnerID string `json:"ownerId"`

	// Text is the transcribed content. Never empty.
	Text string `json:"text"`

	// AudioKey is the object-storage key of the archived recording.
	// Empty when archival was skipped or failed.
	AudioKey string `json:"audioKey,omitempty"`

	// CreatedAt is the server-assigned creation time, used for display
	// ordering (descending).
	CreatedAt time.Time `json:"createdAt"`
}
