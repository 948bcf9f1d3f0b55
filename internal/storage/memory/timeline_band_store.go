package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

// TimelineBandStore is an in-memory implementation of storage.TimelineBandStore.
type TimelineBandStore struct {
	mu   sync.RWMutex
	data map[string][]domain.YearlyMetricsBand // keyed by run id
}

// NewTimelineBandStore creates a new in-memory timeline band store.
func NewTimelineBandStore() *TimelineBandStore {
	return &TimelineBandStore{
		data: make(map[string][]domain.YearlyMetricsBand),
	}
}

var _ storage.TimelineBandStore = (*TimelineBandStore)(nil)

// InsertBulk stores all bands of a run.
func (s *TimelineBandStore) InsertBulk(_ context.Context, runID string, bands []domain.YearlyMetricsBand) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(bands) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[runID]; exists {
		return storage.ErrDuplicateKey
	}

	stored := make([]domain.YearlyMetricsBand, len(bands))
	copy(stored, bands)
	sort.Slice(stored, func(i, j int) bool { return stored[i].Year < stored[j].Year })
	s.data[runID] = stored
	return nil
}

// GetByRunID returns a run's bands ordered by year.
func (s *TimelineBandStore) GetByRunID(_ context.Context, runID string) ([]domain.YearlyMetricsBand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bands, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	out := make([]domain.YearlyMetricsBand, len(bands))
	copy(out, bands)
	return out, nil
}
