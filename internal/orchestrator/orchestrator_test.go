package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
	"github.com/Psymen/fundsimulation-sub000/internal/storage/memory"
)

type testStores struct {
	runs  *memory.RunStore
	grids *memory.GridAnalysisStore
	bands *memory.TimelineBandStore
}

func createTestStores() testStores {
	return testStores{
		runs:  memory.NewRunStore(),
		grids: memory.NewGridAnalysisStore(),
		bands: memory.NewTimelineBandStore(),
	}
}

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestOrchestrator(s testStores, bands storage.TimelineBandStore) *Orchestrator {
	return New(Options{
		RunStore:  s.runs,
		GridStore: s.grids,
		BandStore: bands,
		Workers:   2,
		Seed:      7,
		Now:       func() time.Time { return fixedNow },
	})
}

func smallPortfolio() domain.PortfolioParameters {
	p := domain.DefaultPortfolioParameters()
	p.NumCompanies = 10
	p.NumSimulations = 40
	return p
}

func TestOrchestrator_Run(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()
	orch := newTestOrchestrator(stores, stores.bands)

	params := smallPortfolio()
	fs := domain.DefaultFeeStructure()
	params.FeeStructure = &fs

	out, err := orch.Run(ctx, params)
	require.NoError(t, err)
	require.NotNil(t, out.Record)
	assert.Empty(t, out.Errors)

	rec := out.Record
	assert.NotEmpty(t, rec.ID)
	assert.NotEmpty(t, rec.Fingerprint)
	assert.Equal(t, uint64(7), rec.Seed)
	assert.True(t, rec.Timestamp.Equal(fixedNow))
	assert.Len(t, rec.Results, 40)
	assert.Equal(t, 40, rec.Summary.NumSimulations)
	require.NotNil(t, rec.Summary.Net, "fee terms produce a net summary")
	assert.LessOrEqual(t, rec.Summary.Net.MedianNetMOIC, rec.Summary.MedianMOIC)

	stored, err := stores.runs.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Fingerprint, stored.Fingerprint)

	bands, err := stores.bands.GetByRunID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, bands, params.FundLife+2)
	assert.Equal(t, out.Bands, bands)
}

func TestOrchestrator_Run_NoFees(t *testing.T) {
	stores := createTestStores()
	orch := newTestOrchestrator(stores, nil)

	out, err := orch.Run(context.Background(), smallPortfolio())
	require.NoError(t, err)
	assert.Nil(t, out.Record.Summary.Net)
	assert.NotEmpty(t, out.Bands, "bands are computed even without a band store")
}

func TestOrchestrator_Run_Deterministic(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()
	orch := newTestOrchestrator(stores, nil)

	a, err := orch.RunSeeded(ctx, smallPortfolio(), 99)
	require.NoError(t, err)
	b, err := orch.RunSeeded(ctx, smallPortfolio(), 99)
	require.NoError(t, err)

	assert.NotEqual(t, a.Record.ID, b.Record.ID)
	assert.Equal(t, a.Record.Fingerprint, b.Record.Fingerprint)
	assert.Equal(t, a.Record.Summary, b.Record.Summary)

	c, err := orch.RunSeeded(ctx, smallPortfolio(), 100)
	require.NoError(t, err)
	assert.NotEqual(t, a.Record.Fingerprint, c.Record.Fingerprint)
}

func TestOrchestrator_Run_InvalidInput(t *testing.T) {
	stores := createTestStores()
	orch := newTestOrchestrator(stores, stores.bands)

	params := smallPortfolio()
	params.ExitWindowMin = params.ExitWindowMax

	_, err := orch.Run(context.Background(), params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	all, err := stores.runs.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing is persisted for invalid input")
}

type failingBandStore struct{}

func (failingBandStore) InsertBulk(context.Context, string, []domain.YearlyMetricsBand) error {
	return errors.New("band store down")
}

func (failingBandStore) GetByRunID(context.Context, string) ([]domain.YearlyMetricsBand, error) {
	return nil, storage.ErrNotFound
}

func TestOrchestrator_Run_BandStoreFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()
	orch := newTestOrchestrator(stores, failingBandStore{})

	out, err := orch.Run(ctx, smallPortfolio())
	require.NoError(t, err)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "band store down")

	_, err = stores.runs.GetByID(ctx, out.Record.ID)
	assert.NoError(t, err, "run is stored even when its timeline is not")
}

func TestOrchestrator_RunGrid(t *testing.T) {
	ctx := context.Background()
	stores := createTestStores()
	orch := newTestOrchestrator(stores, nil)

	params := domain.DefaultGridAnalysisParameters()
	params.InvestmentCountMin = 5
	params.InvestmentCountMax = 6
	params.SeedPercentages = []float64{0, 100}
	params.NumSimulations = 20

	var mu sync.Mutex
	var calls []int
	rec, err := orch.RunGrid(ctx, params, func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 4, total)
		calls = append(calls, completed)
	})
	require.NoError(t, err)

	assert.Len(t, rec.Scenarios, 4)
	assert.Empty(t, rec.Failures)
	assert.NotEmpty(t, rec.BestStrategies)
	assert.NotEmpty(t, rec.Commentary)
	assert.NotEmpty(t, rec.Fingerprint)
	assert.Equal(t, []int{1, 2, 3, 4}, calls)

	stored, err := stores.grids.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Commentary, stored.Commentary)
}

func TestOrchestrator_RunGrid_Cancelled(t *testing.T) {
	stores := createTestStores()
	orch := newTestOrchestrator(stores, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.RunGrid(ctx, domain.DefaultGridAnalysisParameters(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	all, err := stores.grids.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}
