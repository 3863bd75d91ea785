// Package transcribe sends recorded audio to the hosted speech-to-text
// model and normalizes the result.
package transcribe

import "context"

// Transcription is the structured model output. English is always the field
// callers log; the Urdu variants are carried through when the model returns
// them.
type Transcription struct {
	EnglishTranscription   string `json:"englishTranscription"`
	RomanUrduTranscription string `json:"romanUrduTranscription"`
	UrduTranscription      string `json:"urduTranscription"`
}

// Transcriber converts an audio data URI into a Transcription. Exactly one
// attempt per call; retry is the caller's responsibility.
type Transcriber interface {
	Transcribe(ctx context.Context, audioDataURI string) (*Transcription, error)
}
