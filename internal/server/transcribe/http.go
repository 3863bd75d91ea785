package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/voicetasker/voicetasker/internal/common"
)

// unavailableSignature is the substring the hosted model emits when it is
// temporarily down. It gets a distinct user-facing outcome.
const unavailableSignature = "model is currently unavailable"

// ensure this satisfies the interface
var _ Transcriber = (*HTTPTranscriber)(nil)

// HTTPTranscriber posts audio payloads to the inference endpoint and decodes
// the JSON transcription.
type HTTPTranscriber struct {
	url    string
	client *http.Client
}

func NewHTTPTranscriber(url string, client *http.Client) (*HTTPTranscriber, error) {
	if url == "" {
		return nil, fmt.Errorf("invalid url for HTTPTranscriber %q", url)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTranscriber{url: url, client: client}, nil
}

type transcribeRequest struct {
	AudioDataURI string `json:"audioDataUri"`
}

type transcribeError struct {
	Error string `json:"error"`
}

// Transcribe validates the payload marker, posts it to the model endpoint
// and returns the structured transcription. A response carrying the known
// unavailability signature maps to common.ErrServiceUnavailable; any other
// failure passes its message through.
func (s *HTTPTranscriber) Transcribe(ctx context.Context, audioDataURI string) (*Transcription, error) {
	if !strings.HasPrefix(audioDataURI, common.AudioDataURIPrefix) {
		return nil, common.ErrInvalidAudioPayload
	}

	payload, err := json.Marshal(transcribeRequest{AudioDataURI: audioDataURI})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		t := &Transcription{}
		if err := json.Unmarshal(body, t); err != nil {
			return nil, err
		}
		return t, nil
	}

	return nil, s.mapFailure(body)
}

func (s *HTTPTranscriber) mapFailure(body []byte) error {
	msg := string(body)

	e := transcribeError{}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		msg = e.Error
	}

	if strings.Contains(msg, unavailableSignature) {
		return common.ErrServiceUnavailable
	}
	return fmt.Errorf("transcription error: %s", msg)
}
