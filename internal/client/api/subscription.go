package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/voicetasker/voicetasker/internal/client/models"
)

type feedMessage struct {
	Owner string          `json:"owner"`
	Logs  models.Snapshot `json:"logs"`
}

// wsSubscription reads feed frames off a WebSocket connection and forwards
// them as snapshots. Cancel closes the connection; the read loop then closes
// the snapshot channel, and delivery stops atomically with cancellation
// because forwards are gated on the same done flag Cancel sets.
type wsSubscription struct {
	conn *websocket.Conn

	mu     sync.Mutex
	done   bool
	err    error
	ch     chan models.Snapshot
	closed sync.WaitGroup
}

// Subscribe dials the live feed for ownerID. The first snapshot delivered is
// the current state.
func (c *HTTPClient) Subscribe(ctx context.Context, ownerID string) (Subscription, error) {
	wsURL, err := feedURL(c.baseURL, ownerID)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, ErrUnavailable
	}

	s := &wsSubscription{
		conn: conn,
		ch:   make(chan models.Snapshot, 1),
	}

	s.closed.Add(1)
	go s.readLoop()

	return s, nil
}

func feedURL(baseURL, ownerID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/logs"
	q := u.Query()
	q.Set("owner", ownerID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *wsSubscription) readLoop() {
	defer s.closed.Done()
	defer close(s.ch)

	for {
		var msg feedMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			s.mu.Lock()
			if !s.done {
				s.err = ErrUnavailable
			}
			s.mu.Unlock()
			return
		}

		snapshot := msg.Logs
		if snapshot == nil {
			snapshot = models.Snapshot{}
		}

		// Forward under the lock so a concurrent Cancel either sees the
		// delivery completed or suppresses it entirely.
		s.mu.Lock()
		if s.done {
			s.mu.Unlock()
			return
		}
		select {
		case s.ch <- snapshot:
		default:
			// Consumer lagging: replace the stale pending snapshot.
			select {
			case <-s.ch:
			default:
			}
			s.ch <- snapshot
		}
		s.mu.Unlock()
	}
}

// Snapshots returns the snapshot channel. It is closed after Cancel or a
// feed failure; check Err to distinguish.
func (s *wsSubscription) Snapshots() <-chan models.Snapshot {
	return s.ch
}

// Err reports the terminal feed failure, if any. Nil after a plain Cancel.
func (s *wsSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel stops the subscription. It is idempotent and synchronous: no
// snapshot is delivered after it returns.
func (s *wsSubscription) Cancel() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.mu.Unlock()

	_ = s.conn.Close()
	s.closed.Wait()
}
