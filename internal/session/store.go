package session

import (
	"sync"
	"time"
)

// Store maps opaque keys to values with a per-entry time-to-live. All
// implementations must treat an expired entry exactly like an absent one.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Del(key string) int
	Ping() error
}

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Entries expire passively: reads
// check the deadline, and a background ticker sweeps dead keys so the map
// does not grow without bound.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	done    chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

func (s *MemoryStore) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}

func (s *MemoryStore) Del(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return 0
	}
	delete(s.entries, key)
	return 1
}

func (s *MemoryStore) Ping() error {
	return nil
}

// StartCleanup sweeps expired entries every interval until Close is called.
func (s *MemoryStore) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.cleanup()
			}
		}
	}()
}

func (s *MemoryStore) Close() {
	close(s.done)
}

func (s *MemoryStore) cleanup() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
