// Package cache provides in-memory infrastructure for short-lived values.
package cache

import (
	"sync"
	"time"

	"jobtrack/internal/domain/service"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// TTLStore is an in-memory, mutex-guarded implementation of the StateStore
// interface. Entries expire after their TTL and are swept opportunistically
// on every write, so the map stays bounded without a background goroutine.
// Reads consume the entry, making every stored value single-use.
type TTLStore struct {
	mu      sync.Mutex
	entries map[string]entry
	clock   service.Clock
}

// NewTTLStore is the constructor for TTLStore.
func NewTTLStore(clock service.Clock) service.StateStore {
	return &TTLStore{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// Put stores a value under key for at most ttl.
func (s *TTLStore) Put(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.sweepLocked(now)
	s.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}
}

// Take returns the value for key and removes it, reporting whether a live
// entry existed. Expired entries are treated as absent.
func (s *TTLStore) Take(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	delete(s.entries, key)

	if !e.expiresAt.After(s.clock.Now()) {
		return "", false
	}

	return e.value, true
}

// sweepLocked drops expired entries. Caller must hold the mutex.
func (s *TTLStore) sweepLocked(now time.Time) {
	for key, e := range s.entries {
		if !e.expiresAt.After(now) {
			delete(s.entries, key)
		}
	}
}
