package session

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) SaveSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) LoadSession(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, &SessionNotFoundError{SessionID: id}
	}
	return s.Clone(), nil
}

func (m *MemoryStore) ListIdle(_ context.Context, before time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, s := range m.sessions {
		if s.Status == StatusActive && s.UpdatedAt.Before(before) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// DefaultExposureWindow is how many recent items per user are avoided.
const DefaultExposureWindow = 60

// MemoryExposure remembers the last Window items per user.
type MemoryExposure struct {
	Window int

	mu     sync.Mutex
	recent map[string][]string
}

func NewMemoryExposure(window int) *MemoryExposure {
	if window <= 0 {
		window = DefaultExposureWindow
	}
	return &MemoryExposure{Window: window, recent: make(map[string][]string)}
}

func (m *MemoryExposure) Recent(_ context.Context, userID string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(m.recent[userID]))
	for _, id := range m.recent[userID] {
		out[id] = true
	}
	return out, nil
}

func (m *MemoryExposure) Record(_ context.Context, userID, itemID string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append(m.recent[userID], itemID)
	if len(list) > m.Window {
		list = list[len(list)-m.Window:]
	}
	m.recent[userID] = list
	return nil
}
