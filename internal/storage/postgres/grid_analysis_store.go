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

// GridAnalysisStore implements storage.GridAnalysisStore using PostgreSQL.
type GridAnalysisStore struct {
	pool *Pool
}

// NewGridAnalysisStore creates a new GridAnalysisStore.
func NewGridAnalysisStore(pool *Pool) *GridAnalysisStore {
	return &GridAnalysisStore{pool: pool}
}

// Compile-time interface check.
var _ storage.GridAnalysisStore = (*GridAnalysisStore)(nil)

// Insert adds a new analysis. Returns ErrDuplicateKey if the ID exists.
func (s *GridAnalysisStore) Insert(ctx context.Context, g *domain.GridAnalysisRecord) (err error) {
	defer func(start time.Time) { observe("insert_grid", start, err) }(time.Now())

	if g == nil || g.ID == "" {
		return storage.ErrInvalidInput
	}
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode grid analysis: %w", err)
	}

	query := `
		INSERT INTO grid_analyses (
			id, created_at, fingerprint, num_scenarios, num_failures, payload
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.pool.Exec(ctx, query,
		g.ID,
		g.Timestamp,
		g.Fingerprint,
		len(g.Scenarios),
		len(g.Failures),
		payload,
	)
	return mapError("insert grid analysis", err)
}

// GetByID retrieves an analysis by ID. Returns ErrNotFound if not exists.
func (s *GridAnalysisStore) GetByID(ctx context.Context, id string) (_ *domain.GridAnalysisRecord, err error) {
	defer func(start time.Time) { observe("get_grid", start, err) }(time.Now())

	var payload []byte
	if err := s.pool.QueryRow(ctx, `SELECT payload FROM grid_analyses WHERE id = $1`, id).Scan(&payload); err != nil {
		return nil, mapError("get grid analysis by id", err)
	}
	return decodeGrid(payload)
}

// List returns up to limit analyses ordered by created_at DESC, id ASC.
func (s *GridAnalysisStore) List(ctx context.Context, limit int) (_ []*domain.GridAnalysisRecord, err error) {
	defer func(start time.Time) { observe("list_grids", start, err) }(time.Now())

	query := `
		SELECT payload FROM grid_analyses
		ORDER BY created_at DESC, id ASC
	`
	var rows pgx.Rows
	if limit > 0 {
		rows, err = s.pool.Query(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = s.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list grid analyses: %w", err)
	}
	defer rows.Close()

	var result []*domain.GridAnalysisRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan grid analysis: %w", err)
		}
		g, err := decodeGrid(payload)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// Delete removes an analysis. Returns ErrNotFound if not exists.
func (s *GridAnalysisStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("delete_grid", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, `DELETE FROM grid_analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete grid analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func decodeGrid(payload []byte) (*domain.GridAnalysisRecord, error) {
	var g domain.GridAnalysisRecord
	if err := json.Unmarshal(payload, &g); err != nil {
		return nil, fmt.Errorf("decode grid analysis: %w", err)
	}
	return &g, nil
}
