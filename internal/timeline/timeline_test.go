package timeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/metrics"
	"github.com/Psymen/fundsimulation-sub000/internal/simulation"
)

func TestCumulativeCallPercent(t *testing.T) {
	tests := []struct {
		year int
		want float64
	}{
		{0, 0},
		{1, 0.25},
		{2, 0.55},
		{3, 0.80},
		{6, 1.0},
		{9, 1.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CumulativeCallPercent(tt.year), "year %d", tt.year)
	}
}

func TestInvestmentYear_EvenDeployment(t *testing.T) {
	years := make([]int, 10)
	for i := range years {
		years[i] = InvestmentYear(i, 10, 5)
	}
	assert.Equal(t, []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5}, years)
}

func TestCalculateYearlyMetrics_Shape(t *testing.T) {
	companies := []domain.CompanyResult{
		{InvestedCapital: 10, ReturnedCapital: 50, ReturnMultiple: 5, ExitYear: 6.4},
		{InvestedCapital: 10, ReturnedCapital: 0, ReturnMultiple: 0, ExitYear: 3.2},
	}

	tl := CalculateYearlyMetrics(companies, 100, 10, 5, nil)
	require.Len(t, tl, 12)

	for i, m := range tl {
		assert.Equal(t, i+1, m.Year)
		assert.Equal(t, 0.0, m.ManagementFees)
		assert.InDelta(t, m.DPI+m.RVPI, m.TVPI, 1e-12)
	}

	// Distribution lands in the floored exit year.
	assert.Equal(t, 0.0, tl[4].CumulativeDistributions)
	assert.Equal(t, 50.0, tl[5].CumulativeDistributions)
	assert.Equal(t, 0.0, tl[5].UnrealizedValue)
	assert.InDelta(t, 0.5, tl[5].DPI, 1e-12)
}

func TestCalculateYearlyMetrics_InterimMarks(t *testing.T) {
	winner := []domain.CompanyResult{{InvestedCapital: 10, ReturnedCapital: 50, ReturnMultiple: 5, ExitYear: 9}}
	loser := []domain.CompanyResult{{InvestedCapital: 10, ReturnedCapital: 1, ReturnMultiple: 0.1, ExitYear: 9}}

	up := CalculateYearlyMetrics(winner, 100, 10, 5, nil)
	down := CalculateYearlyMetrics(loser, 100, 10, 5, nil)

	// Year 1: invested this year, no progress yet.
	assert.Equal(t, 10.0, up[0].UnrealizedValue)
	assert.Equal(t, 10.0, down[0].UnrealizedValue)

	for y := 1; y < 8; y++ {
		assert.Greater(t, up[y].UnrealizedValue, up[y-1].UnrealizedValue, "year %d", y+1)
		assert.Less(t, down[y].UnrealizedValue, down[y-1].UnrealizedValue, "year %d", y+1)
		// Winners never carry the full exit value before exit.
		assert.Less(t, up[y].UnrealizedValue, 50.0)
		assert.Greater(t, down[y].UnrealizedValue, 1.0)
	}
}

func TestCalculateYearlyMetrics_Fees(t *testing.T) {
	fs := domain.DefaultFeeStructure()
	companies := []domain.CompanyResult{{InvestedCapital: 10, ReturnedCapital: 30, ReturnMultiple: 3, ExitYear: 7.5}}

	tl := CalculateYearlyMetrics(companies, 100, 10, 5, &fs)

	assert.InDelta(t, 2.0, tl[0].ManagementFees, 1e-9)
	assert.InDelta(t, 10.0, tl[4].ManagementFees, 1e-9)
	assert.InDelta(t, 11.5, tl[5].ManagementFees, 1e-9)
	// 30 distributed less 13 cumulative fees by year 7.
	assert.InDelta(t, 17.0, tl[6].CumulativeDistributions, 1e-9)
	// Distributions below cumulative fees floor at zero.
	small := []domain.CompanyResult{{InvestedCapital: 10, ReturnedCapital: 1, ReturnMultiple: 0.1, ExitYear: 3}}
	assert.Equal(t, 0.0, CalculateYearlyMetrics(small, 100, 10, 5, &fs)[2].CumulativeDistributions)
}

func TestAggregateYearlyMetrics_Errors(t *testing.T) {
	_, err := AggregateYearlyMetrics(nil)
	assert.ErrorIs(t, err, metrics.ErrEmptyDataset)

	mismatched := [][]domain.YearlyFundMetrics{
		make([]domain.YearlyFundMetrics, 12),
		make([]domain.YearlyFundMetrics, 11),
	}
	_, err = AggregateYearlyMetrics(mismatched)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildBands_Ordering(t *testing.T) {
	params := domain.DefaultPortfolioParameters()
	params.NumSimulations = 200
	fs := domain.DefaultFeeStructure()
	params.FeeStructure = &fs

	results, err := simulation.RunSimulations(context.Background(), params, simulation.Options{Seed: 99})
	require.NoError(t, err)

	bands, err := BuildBands(results, params)
	require.NoError(t, err)
	require.Len(t, bands, params.FundLife+2)

	for _, b := range bands {
		assert.LessOrEqual(t, b.DPIP10, b.DPIP50)
		assert.LessOrEqual(t, b.DPIP50, b.DPIP90)
		assert.LessOrEqual(t, b.TVPIP10, b.TVPIP50)
		assert.LessOrEqual(t, b.TVPIP50, b.TVPIP90)
		assert.LessOrEqual(t, b.RVPIP10, b.RVPIP90)
	}
	// Late in the fund most value has been realized.
	last := bands[len(bands)-1]
	assert.Greater(t, last.DPIP50, bands[2].DPIP50)
}
