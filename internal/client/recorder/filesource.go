package recorder

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/voicetasker/voicetasker/internal/common"
)

const fileChunkSize = 32 * 1024

var extMimeTypes = map[string]string{
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
}

// FileSource captures from an audio file on disk. It stands in for a live
// microphone in the terminal client: permission maps to file readability.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Permission(ctx context.Context) Permission {
	if s.path == "" {
		return PermissionUnknown
	}
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsPermission(err) {
			return PermissionDenied
		}
		return PermissionUnknown
	}
	f.Close()
	return PermissionGranted
}

func (s *FileSource) Open(ctx context.Context) (Session, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, common.ErrPermissionDenied
		}
		return nil, err
	}

	mime := extMimeTypes[strings.ToLower(filepath.Ext(s.path))]
	if mime == "" {
		mime = "audio/webm"
	}

	sess := &fileSession{f: f, mime: mime, closed: make(chan struct{})}
	return sess, nil
}

type fileSession struct {
	f    *os.File
	mime string

	once   sync.Once
	closed chan struct{}
}

func (s *fileSession) MimeType() string { return s.mime }

// Read returns the next chunk of the file. Once the file is exhausted it
// blocks until Close, mirroring a microphone that stays open until the user
// hits stop.
func (s *fileSession) Read(ctx context.Context) ([]byte, error) {
	buf := make([]byte, fileChunkSize)
	n, err := s.f.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err != nil && err != io.EOF {
		return nil, err
	}

	select {
	case <-s.closed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *fileSession) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		err = s.f.Close()
	})
	return err
}
