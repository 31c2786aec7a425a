package notify

import (
	"context"
	"sync"
	"time"

	"github.com/resulta/resulta-gateway/internal/model"
)

// MemStore is an in-memory Store for tests and single-binary development.
// Notifications are kept newest-first; read markers are per user.
type MemStore struct {
	mu    sync.Mutex
	items []model.Notification
	reads map[string]map[string]time.Time // notification ID -> user key -> read at
}

func NewMemStore() *MemStore {
	return &MemStore{reads: make(map[string]map[string]time.Time)}
}

func (s *MemStore) Insert(_ context.Context, n model.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.SourceID == n.SourceID {
			return false, nil
		}
	}
	s.items = append([]model.Notification{n}, s.items...)
	return true, nil
}

func (s *MemStore) List(_ context.Context, userKey string, limit int) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, 0, len(s.items))
	for _, n := range s.items {
		if limit > 0 && len(out) >= limit {
			break
		}
		_, read := s.reads[n.ID][userKey]
		n.IsRead = read
		out = append(out, n)
	}
	return out, nil
}

func (s *MemStore) Trim(_ context.Context, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if max > 0 && len(s.items) > max {
		for _, evicted := range s.items[max:] {
			delete(s.reads, evicted.ID)
		}
		s.items = s.items[:max]
	}
	return nil
}

func (s *MemStore) MarkRead(_ context.Context, notificationID, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reads[notificationID] == nil {
		s.reads[notificationID] = make(map[string]time.Time)
	}
	s.reads[notificationID][userKey] = time.Now()
	return nil
}

func (s *MemStore) ListUnreadIDs(_ context.Context, userKey string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, n := range s.items {
		if _, read := s.reads[n.ID][userKey]; !read {
			ids = append(ids, n.ID)
		}
	}
	return ids, nil
}

func (s *MemStore) UnreadCount(ctx context.Context, userKey string) (int, error) {
	ids, err := s.ListUnreadIDs(ctx, userKey)
	return len(ids), err
}
