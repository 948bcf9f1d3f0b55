package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

// GridAnalysisStore is an in-memory implementation of storage.GridAnalysisStore.
type GridAnalysisStore struct {
	mu   sync.RWMutex
	data map[string]*domain.GridAnalysisRecord // keyed by id
}

// NewGridAnalysisStore creates a new in-memory grid analysis store.
func NewGridAnalysisStore() *GridAnalysisStore {
	return &GridAnalysisStore{
		data: make(map[string]*domain.GridAnalysisRecord),
	}
}

var _ storage.GridAnalysisStore = (*GridAnalysisStore)(nil)

// Insert adds a new analysis. Returns ErrDuplicateKey if the ID exists.
func (s *GridAnalysisStore) Insert(_ context.Context, g *domain.GridAnalysisRecord) error {
	if g == nil || g.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[g.ID]; exists {
		return storage.ErrDuplicateKey
	}

	recordCopy := *g
	s.data[g.ID] = &recordCopy
	return nil
}

// GetByID retrieves an analysis by ID. Returns ErrNotFound if not exists.
func (s *GridAnalysisStore) GetByID(_ context.Context, id string) (*domain.GridAnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	recordCopy := *g
	return &recordCopy, nil
}

// List returns up to limit analyses, newest first.
func (s *GridAnalysisStore) List(_ context.Context, limit int) ([]*domain.GridAnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.GridAnalysisRecord, 0, len(s.data))
	for _, g := range s.data {
		recordCopy := *g
		result = append(result, &recordCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Delete removes an analysis. Returns ErrNotFound if not exists.
func (s *GridAnalysisStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.data, id)
	return nil
}
