// Package recorder captures audio from an injected source and packages the
// take as a base64 data URI ready for the transcription endpoint.
package recorder

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/voicetasker/voicetasker/internal/common"
)

// State is the capture lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	default:
		return "unknown"
	}
}

// Permission is the capture permission as last reported by the source.
type Permission int

const (
	PermissionUnknown Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Source is an audio capture device. Open starts a capture session and may
// prompt for permission; Read returns the next audio fragment and io.EOF
// semantics are not used, the recorder stops reading when Stop closes the
// session. Implementations must make Close safe to call at any time.
type Source interface {
	// Permission reports the current capture permission without prompting.
	Permission(ctx context.Context) Permission
	// Open begins capturing. Returns common.ErrPermissionDenied when the
	// user refuses access.
	Open(ctx context.Context) (Session, error)
}

// Session is one capture run on an open source.
type Session interface {
	// MimeType is the container format of the fragments, e.g. "audio/webm".
	MimeType() string
	// Read blocks for the next fragment. Returns an error once the session
	// is closed.
	Read(ctx context.Context) ([]byte, error)
	// Close releases the device. Idempotent.
	Close() error
}

// Recorder drives one capture at a time over a Source.
type Recorder struct {
	source Source

	mu         sync.Mutex
	state      State
	permission Permission
	session    Session
	fragments  [][]byte
	readDone   chan struct{}
}

func New(ctx context.Context, source Source) *Recorder {
	return &Recorder{
		source:     source,
		state:      StateIdle,
		permission: source.Permission(ctx),
	}
}

// State returns the current lifecycle phase.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Permission returns the capture permission as last observed.
func (r *Recorder) Permission() Permission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.permission
}

// Start opens a capture session and begins accumulating fragments. It
// re-probes permission first and refuses without touching the device when
// access is denied. Only one capture may run at a time; Start during
// recording or transcription fails.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return common.ErrRecorderBusy
	}
	r.permission = r.source.Permission(ctx)
	if r.permission == PermissionDenied {
		r.mu.Unlock()
		return common.ErrPermissionDenied
	}
	r.mu.Unlock()

	session, err := r.source.Open(ctx)
	if err != nil {
		r.mu.Lock()
		if errors.Is(err, common.ErrPermissionDenied) {
			r.permission = PermissionDenied
		}
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		session.Close()
		return common.ErrRecorderBusy
	}
	r.state = StateRecording
	r.permission = PermissionGranted
	r.session = session
	r.fragments = nil
	r.readDone = make(chan struct{})
	r.mu.Unlock()

	go r.readLoop(ctx, session, r.readDone)
	return nil
}

func (r *Recorder) readLoop(ctx context.Context, session Session, done chan struct{}) {
	defer close(done)
	for {
		fragment, err := session.Read(ctx)
		if err != nil {
			return
		}
		if len(fragment) == 0 {
			continue
		}
		r.mu.Lock()
		r.fragments = append(r.fragments, fragment)
		r.mu.Unlock()
	}
}

// Stop ends the capture, releases the device, and returns the whole take as
// a data URI. The device is released even when no audio was captured. The
// recorder moves to Transcribing; the caller must Finish() once the payload
// has been handed off (or abandoned) to accept the next take.
func (r *Recorder) Stop(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.state != StateRecording {
		r.mu.Unlock()
		return "", common.ErrNotRecording
	}
	session := r.session
	done := r.readDone
	r.session = nil
	r.mu.Unlock()

	// Release the device first. Everything after this point works on the
	// fragments already in memory.
	closeErr := session.Close()
	<-done

	r.mu.Lock()
	fragments := r.fragments
	r.fragments = nil
	r.state = StateTranscribing
	r.mu.Unlock()

	if closeErr != nil {
		r.Finish()
		return "", closeErr
	}

	var buf bytes.Buffer
	for _, fragment := range fragments {
		buf.Write(fragment)
	}

	uri := fmt.Sprintf("%s/%s;base64,%s",
		common.AudioDataURIPrefix,
		mimeSubtype(session.MimeType()),
		base64.StdEncoding.EncodeToString(buf.Bytes()))
	return uri, nil
}

// Finish returns the recorder to Idle after the take has been processed.
func (r *Recorder) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateTranscribing {
		r.state = StateIdle
	}
}

// mimeSubtype strips the "audio/" prefix so the URI is always built on the
// shared audio prefix, whatever the source reports.
func mimeSubtype(mime string) string {
	const prefix = "audio/"
	if len(mime) > len(prefix) && mime[:len(prefix)] == prefix {
		return mime[len(prefix):]
	}
	return "webm"
}
