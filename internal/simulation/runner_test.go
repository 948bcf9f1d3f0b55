package simulation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/sampling"
)

func smallParams() domain.PortfolioParameters {
	p := domain.DefaultPortfolioParameters()
	p.NumSimulations = 50
	return p
}

func TestRunSingleSimulation_Invariants(t *testing.T) {
	params := smallParams()
	rng := sampling.NewRand(7)

	for i := 0; i < 20; i++ {
		res, err := RunSingleSimulation(rng, params)
		require.NoError(t, err)

		require.Len(t, res.Companies, params.NumCompanies)
		assert.Equal(t, params.NumCompanies, res.NumSeedCompanies+res.NumSeriesACompanies)
		assert.Equal(t, 15, res.NumSeedCompanies)

		var invested, returned float64
		writeOffs, outliers := 0, 0
		for _, c := range res.Companies {
			invested += c.InvestedCapital
			returned += c.ReturnedCapital
			assert.GreaterOrEqual(t, c.ReturnMultiple, 0.0)
			assert.GreaterOrEqual(t, c.ExitYear, float64(params.ExitWindowMin))
			assert.LessOrEqual(t, c.ExitYear, float64(params.ExitWindowMax+2))
			if c.ReturnMultiple < domain.WriteOffMultiple {
				writeOffs++
			}
			if c.ReturnMultiple >= domain.OutlierMultiple {
				outliers++
			}
		}
		assert.InDelta(t, invested, res.TotalInvestedCapital, 1e-6)
		assert.InDelta(t, returned, res.TotalReturnedCapital, 1e-6)
		assert.InDelta(t, returned/invested, res.GrossMOIC, 1e-12)
		assert.InDelta(t, returned/params.FundSize, res.MultipleOnCommittedCapital, 1e-12)
		assert.Equal(t, writeOffs, res.NumWriteOffs)
		assert.Equal(t, outliers, res.NumOutliers)
		assert.GreaterOrEqual(t, res.GrossIRR, -0.99)
		assert.LessOrEqual(t, res.GrossIRR, 10.0)
	}
}

func TestRunSingleSimulation_StageSplitExtremes(t *testing.T) {
	tests := []struct {
		name        string
		seedPct     float64
		wantSeed    int
		wantSeriesA int
	}{
		{"all series A", 0, 0, 25},
		{"all seed", 100, 25, 0},
		{"rounded", 50, 13, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := smallParams()
			params.SeedPercentage = tt.seedPct

			res, err := RunSingleSimulation(sampling.NewRand(1), params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSeed, res.NumSeedCompanies)
			assert.Equal(t, tt.wantSeriesA, res.NumSeriesACompanies)

			for _, c := range res.Companies[:tt.wantSeed] {
				assert.Equal(t, domain.StageSeed, c.Stage)
			}
			for _, c := range res.Companies[tt.wantSeed:] {
				assert.Equal(t, domain.StageSeriesA, c.Stage)
			}
		})
	}
}

func TestRunSingleSimulation_SingleCompany(t *testing.T) {
	params := smallParams()
	params.NumCompanies = 1
	params.SeedPercentage = 100

	res, err := RunSingleSimulation(sampling.NewRand(3), params)
	require.NoError(t, err)
	require.Len(t, res.Companies, 1)
	assert.InDelta(t, res.Companies[0].ReturnMultiple, res.GrossMOIC, 1e-12)
}

func TestRunSingleSimulation_FundLifeVariants(t *testing.T) {
	for _, life := range []int{3, 15} {
		params := smallParams()
		params.FundLife = life
		params.InvestmentPeriod = 3

		res, err := RunSingleSimulation(sampling.NewRand(uint64(life)), params)
		require.NoError(t, err)
		assert.False(t, math.IsNaN(res.GrossIRR))
		assert.False(t, math.IsNaN(res.GrossMOIC))
	}
}

func TestRunSingleSimulation_InvalidInput(t *testing.T) {
	params := smallParams()
	params.NumCompanies = 0

	_, err := RunSingleSimulation(sampling.NewRand(1), params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRunSimulations_Count(t *testing.T) {
	params := smallParams()
	params.NumSimulations = 1

	results, err := RunSimulations(context.Background(), params, Options{Seed: 11})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRunSimulations_DeterministicAcrossWorkers(t *testing.T) {
	params := smallParams()

	one, err := RunSimulations(context.Background(), params, Options{Seed: 42, Workers: 1})
	require.NoError(t, err)
	many, err := RunSimulations(context.Background(), params, Options{Seed: 42, Workers: 8})
	require.NoError(t, err)

	require.Len(t, many, len(one))
	for i := range one {
		assert.Equal(t, one[i].GrossMOIC, many[i].GrossMOIC, "realization %d", i)
		assert.Equal(t, one[i].GrossIRR, many[i].GrossIRR, "realization %d", i)
	}
}

func TestRunSimulations_SeedChangesOutput(t *testing.T) {
	params := smallParams()

	a, err := RunSimulations(context.Background(), params, Options{Seed: 1})
	require.NoError(t, err)
	b, err := RunSimulations(context.Background(), params, Options{Seed: 2})
	require.NoError(t, err)

	same := 0
	for i := range a {
		if a[i].GrossMOIC == b[i].GrossMOIC {
			same++
		}
	}
	assert.Less(t, same, len(a))
}

func TestRunSimulations_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunSimulations(ctx, smallParams(), Options{Seed: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSimulateCompany_TotalLossBucket(t *testing.T) {
	stage := domain.StageParameters{
		AvgCheckSize:         1_000_000,
		FollowOnReserveRatio: 50,
		ExitBuckets: []domain.ExitBucket{
			{Label: "Failed", Probability: 100, MinMultiple: 0, MaxMultiple: 0},
		},
	}

	c := SimulateCompany(sampling.NewRand(5), domain.StageSeed, stage, ExitWindow{Min: 3, Max: 10})
	assert.Equal(t, 0.0, c.ReturnMultiple)
	assert.Equal(t, 0.0, c.ReturnedCapital)
	assert.Equal(t, 1_500_000.0, c.InvestedCapital)
	assert.Equal(t, "Failed", c.BucketLabel)
}

func TestCashFlows_Layout(t *testing.T) {
	companies := []domain.CompanyResult{
		{ReturnedCapital: 30, ExitYear: 6.2},
		{ReturnedCapital: 0, ExitYear: 4.1},
	}

	flows := CashFlows(companies, 100, 4)
	require.Len(t, flows, 6)
	for i := 0; i < 4; i++ {
		assert.Equal(t, -25.0, flows[i].Amount)
		assert.Equal(t, float64(i)+0.5, flows[i].Year)
	}
	assert.Equal(t, 30.0, flows[4].Amount)
	assert.Equal(t, 4.1, flows[5].Year)
}
