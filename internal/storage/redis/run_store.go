package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

// RunStore implements storage.RunStore on Redis.
type RunStore struct {
	records recordStore[domain.RunRecord]
}

// NewRunStore creates a RunStore. An empty prefix uses DefaultPrefix.
func NewRunStore(client *goredis.Client, prefix string) *RunStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RunStore{records: recordStore[domain.RunRecord]{
		client:    client,
		prefix:    prefix,
		kind:      "run",
		id:        func(r *domain.RunRecord) string { return r.ID },
		timestamp: func(r *domain.RunRecord) time.Time { return r.Timestamp },
	}}
}

var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if the ID exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.RunRecord) (err error) {
	defer func(start time.Time) { observe("insert_run", start, err) }(time.Now())
	return s.records.insert(ctx, r)
}

// GetByID retrieves a run by ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, id string) (_ *domain.RunRecord, err error) {
	defer func(start time.Time) { observe("get_run", start, err) }(time.Now())
	return s.records.get(ctx, id)
}

// List returns up to limit runs, newest first.
func (s *RunStore) List(ctx context.Context, limit int) (_ []*domain.RunRecord, err error) {
	defer func(start time.Time) { observe("list_runs", start, err) }(time.Now())
	return s.records.list(ctx, limit)
}

// Delete removes a run. Returns ErrNotFound if not exists.
func (s *RunStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("delete_run", start, err) }(time.Now())
	return s.records.delete(ctx, id)
}
