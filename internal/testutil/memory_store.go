package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/cashback-proxy/pkg/cache"
)

// StoredValue is an entry of MemoryStore.
type StoredValue struct {
	Value string
	TTL   time.Duration
}

// MemoryStore is an in-memory cache.Store. It records the TTL of every write
// and can be told to fail reads or writes. Entries never expire on their own;
// use Delete to simulate eviction.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]StoredValue
	gets    map[string]int
	sets    map[string]int

	GetErr error
	SetErr error
	// SetErrFor fails writes to the listed keys only.
	SetErrFor map[string]error
}

var _ cache.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:   make(map[string]StoredValue),
		gets:      make(map[string]int),
		sets:      make(map[string]int),
		SetErrFor: make(map[string]error),
	}
}

// Get implements cache.Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gets[key]++
	if s.GetErr != nil {
		return "", s.GetErr
	}
	entry, ok := s.entries[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return entry.Value, nil
}

// Set implements cache.Store.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.SetErrFor[key]; err != nil {
		return err
	}
	if s.SetErr != nil {
		return s.SetErr
	}
	s.sets[key]++
	s.entries[key] = StoredValue{Value: value, TTL: ttl}
	return nil
}

// Put seeds an entry without counting it as a write.
func (s *MemoryStore) Put(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = StoredValue{Value: value, TTL: ttl}
}

// Delete removes key.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Entry returns the entry stored under key.
func (s *MemoryStore) Entry(key string) (StoredValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// SetCount returns how many successful writes key received.
func (s *MemoryStore) SetCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[key]
}

// GetCount returns how many reads key received.
func (s *MemoryStore) GetCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets[key]
}
