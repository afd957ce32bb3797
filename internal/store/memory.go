package store

import (
	"context"
	"sync"
	"time"

	"github.com/Lllllllleong/documentverification/internal/models"
)

// MemoryStore keeps records in process memory. It is meant for local runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[models.Kind]map[string]models.Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[models.Kind]map[string]models.Record),
		now:     time.Now,
	}
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, kind models.Kind, identifier string, defaults map[string]string) (*models.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[kind][identifier]; ok {
		return cloneRecord(rec), false, nil
	}

	rec := models.Record{
		Kind:       kind,
		Identifier: identifier,
		Fields:     copyFields(defaults),
		CreatedAt:  s.now().UTC(),
	}
	if s.records[kind] == nil {
		s.records[kind] = make(map[string]models.Record)
	}
	s.records[kind][identifier] = rec
	return cloneRecord(rec), true, nil
}

func (s *MemoryStore) Get(ctx context.Context, kind models.Kind, identifier string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[kind][identifier]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func cloneRecord(rec models.Record) *models.Record {
	rec.Fields = copyFields(rec.Fields)
	return &rec
}
