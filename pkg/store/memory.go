package store

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record), now: time.Now}
}

func memoryKey(db, hash string) string { return db + "/" + hash }

func (s *MemoryStore) Get(_ context.Context, db, hash string) (*Record, error) {
	if err := ValidateKey(db, hash); err != nil {
		return nil, err
	}
	s.mu.RLock()
	rec, ok := s.records[memoryKey(db, hash)]
	s.mu.RUnlock()
	if !ok {
		return nil, NotFound(db, hash)
	}
	rec.Features = slices.Clone(rec.Features)
	SortFeatures(rec.Features)
	return &rec, nil
}

func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec.UpdatedAt = s.now().UTC()
	stored := *rec
	stored.Features = slices.Clone(rec.Features)

	s.mu.Lock()
	s.records[memoryKey(rec.DB, rec.Hash)] = stored
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, db, hash string) error {
	if err := ValidateKey(db, hash); err != nil {
		return err
	}
	key := memoryKey(db, hash)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return NotFound(db, hash)
	}
	delete(s.records, key)
	return nil
}

func (s *MemoryStore) List(_ context.Context, db string) ([]Record, error) {
	if err := ValidateDB(db); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Record, 0)
	for _, rec := range s.records {
		if rec.DB == db {
			rec.Features = nil
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()
	SortRecords(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
