// Package hub fans out full-state log snapshots to live subscribers,
// partitioned by owner.
package hub

import (
	"sync"

	"github.com/voicetasker/voicetasker/internal/server/models"
)

const subscriberBuffer = 8

// Snapshot is the complete current state of one owner's log list, newest
// first. The feed never sends deltas; each snapshot fully replaces the
// previous one, so a dropped intermediate snapshot is harmless.
type Snapshot []*models.LogEntry

type subscriber struct {
	ch     chan Snapshot
	closed bool
}

// Hub broadcasts snapshots to all subscribers of an owner. A subscriber that
// cannot keep up has its stale pending snapshot replaced by the latest one.
type Hub struct {
	mu      sync.Mutex
	subs    map[string][]*subscriber
	dropped int64
}

func New() *Hub {
	return &Hub{subs: make(map[string][]*subscriber)}
}

// Subscribe registers a listener for ownerID and returns the snapshot
// channel plus a cancel func. Cancel is synchronous and idempotent: once it
// returns, the channel is closed and nothing more is delivered.
func (h *Hub) Subscribe(ownerID string) (<-chan Snapshot, func()) {
	s := &subscriber{ch: make(chan Snapshot, subscriberBuffer)}

	h.mu.Lock()
	h.subs[ownerID] = append(h.subs[ownerID], s)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if s.closed {
			return
		}
		s.closed = true
		close(s.ch)

		list := h.subs[ownerID]
		for i, cur := range list {
			if cur == s {
				h.subs[ownerID] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(h.subs[ownerID]) == 0 {
			delete(h.subs, ownerID)
		}
	}

	return s.ch, cancel
}

// Publish delivers snapshot to every subscriber of ownerID. Delivery to a
// full subscriber drains one stale snapshot first so the latest state always
// lands (latest-wins).
func (h *Hub) Publish(ownerID string, snapshot Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.subs[ownerID] {
		if s.closed {
			continue
		}
		select {
		case s.ch <- snapshot:
		default:
			select {
			case <-s.ch:
				h.dropped++
			default:
			}
			s.ch <- snapshot
		}
	}
}

// SubscriberCount reports the number of active subscribers for ownerID.
func (h *Hub) SubscriberCount(ownerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[ownerID])
}

// Dropped returns the total number of snapshots dropped for slow consumers.
func (h *Hub) Dropped() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}
