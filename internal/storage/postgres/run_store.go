package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
// The full record lives in a JSONB payload; a few summary columns are
// denormalised for ad-hoc queries.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if the ID exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.RunRecord) (err error) {
	defer func(start time.Time) { observe("insert_run", start, err) }(time.Now())

	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	query := `
		INSERT INTO simulation_runs (
			id, created_at, fingerprint, num_companies, num_simulations, median_moic, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.pool.Exec(ctx, query,
		r.ID,
		r.Timestamp,
		r.Fingerprint,
		r.Parameters.NumCompanies,
		r.Summary.NumSimulations,
		r.Summary.MedianMOIC,
		payload,
	)
	return mapError("insert run", err)
}

// GetByID retrieves a run by ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, id string) (_ *domain.RunRecord, err error) {
	defer func(start time.Time) { observe("get_run", start, err) }(time.Now())

	query := `SELECT payload FROM simulation_runs WHERE id = $1`

	var payload []byte
	if err := s.pool.QueryRow(ctx, query, id).Scan(&payload); err != nil {
		return nil, mapError("get run by id", err)
	}
	return decodeRun(payload)
}

// List returns up to limit runs ordered by created_at DESC, id ASC.
func (s *RunStore) List(ctx context.Context, limit int) (_ []*domain.RunRecord, err error) {
	defer func(start time.Time) { observe("list_runs", start, err) }(time.Now())

	query := `
		SELECT payload FROM simulation_runs
		ORDER BY created_at DESC, id ASC
	`
	var rows pgx.Rows
	if limit > 0 {
		rows, err = s.pool.Query(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = s.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var result []*domain.RunRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r, err := decodeRun(payload)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Delete removes a run. Returns ErrNotFound if not exists.
func (s *RunStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("delete_run", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, `DELETE FROM simulation_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func decodeRun(payload []byte) (*domain.RunRecord, error) {
	var r domain.RunRecord
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &r, nil
}
