package store

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ccollicutt/chatlens/pkg/output"
)

// MemoryStore keeps the most recent reports in a bounded LRU cache. The
// least recently used record is evicted once capacity is reached.
type MemoryStore struct {
	cache *lru.Cache[string, *Record]
}

// NewMemoryStore creates a store holding at most capacity reports.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	cache, err := lru.New[string, *Record](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) Put(_ context.Context, report *output.Report) (*Record, error) {
	rec := newRecord(report)
	s.cache.Add(rec.ID, rec)
	return rec, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	rec, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	if !s.cache.Remove(id) {
		return ErrNotFound
	}
	return nil
}

// Len returns the number of stored reports.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

func (s *MemoryStore) Close() error {
	s.cache.Purge()
	return nil
}
