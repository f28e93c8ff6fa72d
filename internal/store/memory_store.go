package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// MemoryStore implements Store with a map. Used by tests and by the server
// when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*types.VariantRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*types.VariantRecord)}
}

func (s *MemoryStore) Create(_ context.Context, rec *types.VariantRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("variant %s already exists", rec.ID)
	}
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*types.VariantRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, rec *types.VariantRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.records[rec.ID]
	if !ok {
		return ErrNotFound
	}
	next := rec.Clone()
	next.CreatedAt = cur.CreatedAt
	next.CreatedBy = cur.CreatedBy
	s.records[rec.ID] = next
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, opts ListOptions) ([]*types.VariantRecord, int, error) {
	opts = opts.normalized()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*types.VariantRecord
	for _, rec := range s.records {
		if opts.ModelID != "" && rec.ModelID != opts.ModelID {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if opts.Offset >= total {
		return []*types.VariantRecord{}, total, nil
	}
	end := min(opts.Offset+opts.Limit, total)
	page := make([]*types.VariantRecord, 0, end-opts.Offset)
	for _, rec := range matched[opts.Offset:end] {
		page = append(page, rec.Clone())
	}
	return page, total, nil
}
