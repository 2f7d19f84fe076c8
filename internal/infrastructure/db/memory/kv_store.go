// Package memory provides the in-process KVStore used by default and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/fincatec/domain-store/internal/core/ports"
)

var _ ports.KVStore = (*KVStore)(nil)

// KVStore keeps blobs in a map. Values are copied on the way in and out so
// callers never share memory with the store.
type KVStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	writes map[string]int
}

func NewKVStore() *KVStore {
	return &KVStore{
		data:   make(map[string][]byte),
		writes: make(map[string]int),
	}
}

func (s *KVStore) Read(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *KVStore) Write(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	s.writes[key]++
	return nil
}

// Ping always succeeds.
func (s *KVStore) Ping(context.Context) error {
	return nil
}

// Writes returns how many times key has been written.
func (s *KVStore) Writes(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[key]
}

// TotalWrites returns the number of writes across all keys.
func (s *KVStore) TotalWrites() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, n := range s.writes {
		total += n
	}
	return total
}
