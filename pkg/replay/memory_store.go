package replay

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-instance runs.
// Entries expire after the configured TTL and are swept at most once per TTL.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
	entries   map[string]time.Time
}

// Compile-time interface compliance check
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store; ttl <= 0 selects DefaultTTL
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

// Reserve implements Store
func (m *MemoryStore) Reserve(_ context.Context, digest, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	key := buildKey(owner, digest)
	if expiry, ok := m.entries[key]; ok && now.Before(expiry) {
		return ErrAlreadySeen
	}
	m.entries[key] = now.Add(m.ttl)
	return nil
}

// MarkUsed implements Store
func (m *MemoryStore) MarkUsed(_ context.Context, digest, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[buildKey(owner, digest)] = m.now().Add(m.ttl)
	return nil
}

// Len reports how many entries are held, expired or not
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// sweep drops expired entries. Caller holds mu.
func (m *MemoryStore) sweep(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	for key, expiry := range m.entries {
		if !now.Before(expiry) {
			delete(m.entries, key)
		}
	}
	m.nextSweep = now.Add(m.ttl)
}
