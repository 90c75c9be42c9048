package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	payload ResultsPayload
	expires time.Time
}

// MemoryStore keeps results in process memory. Used when Redis is not configured.
// Expired entries are dropped when read and swept on writes at most once per ttl.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
	entries   map[string]memoryEntry
}

// NewMemoryStore creates a store whose entries expire after ttl
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) SetResults(_ context.Context, sid string, p *ResultsPayload) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) >= m.ttl {
		for k, e := range m.entries {
			if now.After(e.expires) {
				delete(m.entries, k)
			}
		}
		m.lastSweep = now
	}
	m.entries[sid] = memoryEntry{payload: *p, expires: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStore) GetPayload(_ context.Context, sid string) (*ResultsPayload, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[sid]
	if !ok {
		return nil, ErrNotFound
	}
	if now.After(entry.expires) {
		delete(m.entries, sid)
		return nil, ErrNotFound
	}
	p := entry.payload
	return &p, nil
}
