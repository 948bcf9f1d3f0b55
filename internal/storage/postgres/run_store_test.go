package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

func makeRun(ts time.Time) *domain.RunRecord {
	return &domain.RunRecord{
		ID:          uuid.NewString(),
		Timestamp:   ts.UTC(),
		Fingerprint: "3yZe7d",
		Seed:        1 << 63, // above MaxInt64, survives JSON round trip
		Parameters:  domain.DefaultPortfolioParameters(),
		Summary:     domain.SummaryStatistics{NumSimulations: 2, MedianMOIC: 2.5},
		Results: []domain.SimulationResult{
			{GrossMOIC: 2.5, GrossIRR: 0.18, IRRConverged: true},
			{GrossMOIC: 1.1, GrossIRR: 0.02, IRRConverged: true},
		},
	}
}

func TestRunStore_InsertGetDelete(t *testing.T) {
	pool := newTestPool(t)

	ctx := context.Background()
	store := NewRunStore(pool)

	run := makeRun(time.Now())
	require.NoError(t, store.Insert(ctx, run))

	err := store.Insert(ctx, run)
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey), "expected ErrDuplicateKey, got %v", err)

	got, err := store.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Seed, got.Seed)
	assert.Equal(t, run.Summary, got.Summary)
	assert.Len(t, got.Results, 2)
	assert.True(t, run.Timestamp.Equal(got.Timestamp))

	require.NoError(t, store.Delete(ctx, run.ID))
	_, err = store.GetByID(ctx, run.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.True(t, errors.Is(store.Delete(ctx, run.ID), storage.ErrNotFound))
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	pool := newTestPool(t)

	ctx := context.Background()
	store := NewRunStore(pool)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		r := makeRun(base.Add(time.Duration(i) * time.Hour))
		ids = append(ids, r.ID)
		require.NoError(t, store.Insert(ctx, r))
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	limited, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, ids[2], limited[0].ID)
}

func TestGridAnalysisStore_Lifecycle(t *testing.T) {
	pool := newTestPool(t)

	ctx := context.Background()
	store := NewGridAnalysisStore(pool)

	rec := &domain.GridAnalysisRecord{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Parameters: domain.DefaultGridAnalysisParameters(),
		Scenarios: []domain.GridScenario{
			{NumCompanies: 10, SeedPercentage: 50, DeploymentRate: 0.8},
		},
		BestStrategies: []domain.BestStrategy{
			{Category: domain.CategoryHighestMedianMOIC, NumCompanies: 10, Rationale: "best"},
		},
		Commentary: "Across 1 scenarios...",
		Failures:   []domain.CellFailure{{NumCompanies: 20, SeedPercentage: 0, Error: "boom"}},
	}
	require.NoError(t, store.Insert(ctx, rec))
	assert.True(t, errors.Is(store.Insert(ctx, rec), storage.ErrDuplicateKey))

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Commentary, got.Commentary)
	assert.Equal(t, rec.Failures, got.Failures)
	assert.Equal(t, rec.BestStrategies, got.BestStrategies)

	list, err := store.List(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, rec.ID))
	_, err = store.GetByID(ctx, rec.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
