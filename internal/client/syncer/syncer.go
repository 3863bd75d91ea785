// Package syncer owns the in-memory, owner-scoped view of the log list and
// the selection set staged for batch deletion.
//
// The source of truth for the list is always the latest snapshot from the
// live feed: local operations only submit writes and let the feed reconcile,
// so local state never diverges from the store at the cost of a short delay
// between an action and its reflection in the list.
package syncer

import (
	"context"
	"sync"

	"github.com/voicetasker/voicetasker/internal/client/api"
	"github.com/voicetasker/voicetasker/internal/client/models"
	"github.com/voicetasker/voicetasker/internal/common"
)

// Status describes the feed state of the syncer.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLive
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLive:
		return "live"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Store is the backend surface the syncer needs. *api.HTTPClient satisfies
// it; tests substitute fakes.
type Store interface {
	CreateLog(ctx context.Context, ownerID, text, audioKey string) (*models.LogEntry, error)
	DeleteLog(ctx context.Context, ownerID, id string) error
	DeleteLogs(ctx context.Context, ownerID string, ids []string) (int64, error)
	Subscribe(ctx context.Context, ownerID string) (api.Subscription, error)
}

// Syncer mirrors one owner's log list from the live feed and applies
// confirmed-only mutations. All state transitions happen under one mutex, so
// the selection invariant — every selected id corresponds to an entry in the
// current list — holds after every update regardless of how feed snapshots
// and operation responses interleave.
type Syncer struct {
	store Store

	mu        sync.Mutex
	ownerID   string
	entries   []models.LogEntry
	selected  map[string]struct{}
	status    Status
	statusErr error

	// gen identifies the current subscription. A snapshot or feed error
	// carrying a stale generation is discarded, which guarantees nothing
	// from a replaced subscription is applied after its successor starts.
	gen    uint64
	cancel func()
}

func New(store Store) *Syncer {
	return &Syncer{
		store:    store,
		selected: make(map[string]struct{}),
		status:   StatusIdle,
	}
}

// Attach begins a live subscription for ownerID, cancelling any prior one
// first. The list and selection reset immediately; the status moves to
// Loading and then to Live on the first snapshot. A feed failure is terminal
// for the subscription: the list keeps its last value and the status moves
// to Error.
func (s *Syncer) Attach(ctx context.Context, ownerID string) error {
	if ownerID == "" || ownerID == common.GuestSentinelID {
		return common.ErrNoOwner
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	prevCancel := s.cancel
	s.cancel = nil
	s.ownerID = ownerID
	s.entries = nil
	s.pruneSelectedLocked()
	s.status = StatusLoading
	s.statusErr = nil
	s.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
	}

	sub, err := s.store.Subscribe(ctx, ownerID)
	if err != nil {
		s.mu.Lock()
		if gen == s.gen {
			s.status = StatusError
			s.statusErr = err
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if gen != s.gen {
		// A newer Attach or a Detach won the race.
		s.mu.Unlock()
		sub.Cancel()
		return nil
	}
	s.cancel = sub.Cancel
	s.mu.Unlock()

	go s.consume(gen, sub)
	return nil
}

// Detach cancels the live subscription. Idempotent; safe to call when none
// is active. Must be called on teardown so no feed listener leaks.
func (s *Syncer) Detach() {
	s.mu.Lock()
	s.gen++
	c := s.cancel
	s.cancel = nil
	s.status = StatusIdle
	s.statusErr = nil
	s.mu.Unlock()

	if c != nil {
		c()
	}
}

func (s *Syncer) consume(gen uint64, sub api.Subscription) {
	for snapshot := range sub.Snapshots() {
		s.applySnapshot(gen, snapshot)
	}

	if err := sub.Err(); err != nil {
		s.mu.Lock()
		if gen == s.gen {
			s.status = StatusError
			s.statusErr = err
		}
		s.mu.Unlock()
	}
}

// applySnapshot replaces the list wholesale and prunes the selection to the
// intersection with the new ids in the same critical section.
func (s *Syncer) applySnapshot(gen uint64, snapshot models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return
	}

	s.entries = snapshot
	s.pruneSelectedLocked()
	if s.status == StatusLoading {
		s.status = StatusLive
	}
}

func (s *Syncer) pruneSelectedLocked() {
	if len(s.selected) == 0 {
		return
	}
	present := make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		present[e.ID] = struct{}{}
	}
	for id := range s.selected {
		if _, ok := present[id]; !ok {
			delete(s.selected, id)
		}
	}
}

// Create submits a new log entry. The entry is not inserted locally; it
// appears once the feed delivers it. Validation failures occur before any
// network write.
func (s *Syncer) Create(ctx context.Context, text string, audioKey string) error {
	s.mu.Lock()
	ownerID := s.ownerID
	s.mu.Unlock()

	if ownerID == "" {
		return common.ErrNoOwner
	}
	if text == "" {
		return common.ErrEmptyText
	}

	_, err := s.store.CreateLog(ctx, ownerID, text, audioKey)
	return err
}

// ToggleSelect adds id to the selection if absent, else removes it. Ids not
// present in the current list are ignored.
func (s *Syncer) ToggleSelect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return
	}

	for _, e := range s.entries {
		if e.ID == id {
			s.selected[id] = struct{}{}
			return
		}
	}
}

// SelectAll marks every current entry.
func (s *Syncer) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		s.selected[e.ID] = struct{}{}
	}
}

// DeselectAll clears the selection.
func (s *Syncer) DeselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.selected)
}

// DeleteOne submits a delete for id. On success the id leaves the selection;
// its removal from the list is driven by the next feed snapshot. On failure
// nothing changes, so the action can simply be retried.
func (s *Syncer) DeleteOne(ctx context.Context, id string) error {
	s.mu.Lock()
	ownerID := s.ownerID
	s.mu.Unlock()

	if ownerID == "" {
		return common.ErrNoOwner
	}

	if err := s.store.DeleteLog(ctx, ownerID, id); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.selected, id)
	s.mu.Unlock()
	return nil
}

// DeleteSelected issues one atomic batch delete covering exactly the ids
// selected at call time; mutations of the selection made while the call is
// in flight do not change the batch. On success those ids leave the
// selection and the count is returned; on failure the whole batch is treated
// as not applied and the selection is untouched.
func (s *Syncer) DeleteSelected(ctx context.Context) (int64, error) {
	s.mu.Lock()
	ownerID := s.ownerID
	ids := make([]string, 0, len(s.selected))
	for _, e := range s.entries {
		if _, ok := s.selected[e.ID]; ok {
			ids = append(ids, e.ID)
		}
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return 0, nil
	}
	if ownerID == "" {
		return 0, common.ErrNoOwner
	}

	n, err := s.store.DeleteLogs(ctx, ownerID, ids)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	for _, id := range ids {
		delete(s.selected, id)
	}
	s.mu.Unlock()

	return n, nil
}

// Entries returns a copy of the current list, newest first.
func (s *Syncer) Entries() []models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Selected returns the selected ids in current list order.
func (s *Syncer) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.selected))
	for _, e := range s.entries {
		if _, ok := s.selected[e.ID]; ok {
			out = append(out, e.ID)
		}
	}
	return out
}

// Status reports the feed state and, for StatusError, its cause.
func (s *Syncer) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.statusErr
}

// OwnerID returns the owner of the current view.
func (s *Syncer) OwnerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerID
}
