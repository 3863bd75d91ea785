// Package models defines client-side data models used by the VoiceTasker CLI.
package models

import "time"

// LogEntry is the client's view of one transcribed voice note.
type LogEntry struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Text      string    `json:"text"`
	AudioKey  string    `json:"audioKey,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is the complete current state of the owner's log list as
// delivered by the live feed, newest first.
type Snapshot []LogEntry
