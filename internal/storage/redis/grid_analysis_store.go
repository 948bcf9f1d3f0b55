package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

// GridAnalysisStore implements storage.GridAnalysisStore on Redis.
type GridAnalysisStore struct {
	records recordStore[domain.GridAnalysisRecord]
}

// NewGridAnalysisStore creates a GridAnalysisStore. An empty prefix uses DefaultPrefix.
func NewGridAnalysisStore(client *goredis.Client, prefix string) *GridAnalysisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &GridAnalysisStore{records: recordStore[domain.GridAnalysisRecord]{
		client:    client,
		prefix:    prefix,
		kind:      "grid",
		id:        func(g *domain.GridAnalysisRecord) string { return g.ID },
		timestamp: func(g *domain.GridAnalysisRecord) time.Time { return g.Timestamp },
	}}
}

var _ storage.GridAnalysisStore = (*GridAnalysisStore)(nil)

// Insert adds a new analysis. Returns ErrDuplicateKey if the ID exists.
func (s *GridAnalysisStore) Insert(ctx context.Context, g *domain.GridAnalysisRecord) (err error) {
	defer func(start time.Time) { observe("insert_grid", start, err) }(time.Now())
	return s.records.insert(ctx, g)
}

// GetByID retrieves an analysis by ID. Returns ErrNotFound if not exists.
func (s *GridAnalysisStore) GetByID(ctx context.Context, id string) (_ *domain.GridAnalysisRecord, err error) {
	defer func(start time.Time) { observe("get_grid", start, err) }(time.Now())
	return s.records.get(ctx, id)
}

// List returns up to limit analyses, newest first.
func (s *GridAnalysisStore) List(ctx context.Context, limit int) (_ []*domain.GridAnalysisRecord, err error) {
	defer func(start time.Time) { observe("list_grids", start, err) }(time.Now())
	return s.records.list(ctx, limit)
}

// Delete removes an analysis. Returns ErrNotFound if not exists.
func (s *GridAnalysisStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("delete_grid", start, err) }(time.Now())
	return s.records.delete(ctx, id)
}
