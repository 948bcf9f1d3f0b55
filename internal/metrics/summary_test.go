package metrics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/simulation"
)

func TestCalculateSummaryStatistics_Empty(t *testing.T) {
	_, err := CalculateSummaryStatistics(nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestCalculateSummaryStatistics_NonFinite(t *testing.T) {
	results := []domain.SimulationResult{
		{GrossMOIC: 1.5, GrossIRR: 0.1},
		{GrossMOIC: math.NaN(), GrossIRR: 0.1},
	}
	_, err := CalculateSummaryStatistics(results)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCalculateSummaryStatistics_KnownValues(t *testing.T) {
	moics := []float64{0.5, 1, 1.5, 2, 2.5, 3, 4, 5, 6, 10}
	results := make([]domain.SimulationResult, len(moics))
	for i, m := range moics {
		results[i] = domain.SimulationResult{
			GrossMOIC:    m,
			GrossIRR:     float64(i) / 100,
			IRRConverged: i != 0,
			NumWriteOffs: 2,
			NumOutliers:  i % 2,
		}
	}

	s, err := CalculateSummaryStatistics(results)
	require.NoError(t, err)

	assert.Equal(t, 10, s.NumSimulations)
	assert.Equal(t, 1.0, s.MOICP10)
	assert.Equal(t, 3.0, s.MedianMOIC)
	assert.Equal(t, 10.0, s.MOICP90)
	assert.InDelta(t, 3.55, s.MeanMOIC, 1e-12)
	assert.Equal(t, 0.7, s.ProbMOICAbove2x)
	assert.Equal(t, 0.5, s.ProbMOICAbove3x)
	assert.Equal(t, 0.3, s.ProbMOICAbove5x)
	assert.Equal(t, 2.0, s.AvgWriteOffs)
	assert.Equal(t, 0.5, s.AvgOutliers)
	assert.Equal(t, 1, s.IRRNonConverged)
	assert.Equal(t, 0.05, s.MedianIRR)
}

func TestCalculateSummaryStatistics_SimulatedInvariants(t *testing.T) {
	params := domain.DefaultPortfolioParameters()
	params.NumSimulations = 300

	results, err := simulation.RunSimulations(context.Background(), params, simulation.Options{Seed: 2024})
	require.NoError(t, err)

	s, err := CalculateSummaryStatistics(results)
	require.NoError(t, err)

	assert.Less(t, s.MOICP10, s.MedianMOIC)
	assert.Less(t, s.MedianMOIC, s.MOICP90)
	assert.Less(t, s.IRRP10, s.MedianIRR)
	assert.Less(t, s.MedianIRR, s.IRRP90)
	assert.GreaterOrEqual(t, s.ProbMOICAbove2x, s.ProbMOICAbove3x)
	assert.GreaterOrEqual(t, s.ProbMOICAbove3x, s.ProbMOICAbove5x)
	assert.Greater(t, s.StdDevMOIC, 0.0)
}

func TestCalculateNetSummary(t *testing.T) {
	_, err := CalculateNetSummary(nil)
	require.ErrorIs(t, err, ErrEmptyDataset)

	overlays := []domain.NetOverlay{
		{GrossMOIC: 3, Net: domain.NetReturnsResult{NetMOIC: 2.4, FeeDragPercent: 20, ManagementFees: 10, CarriedInterest: 30}},
		{GrossMOIC: 1, Net: domain.NetReturnsResult{NetMOIC: 0.8, FeeDragPercent: 20, ManagementFees: 10, CarriedInterest: 0}},
	}
	net, err := CalculateNetSummary(overlays)
	require.NoError(t, err)
	assert.Equal(t, 2.4, net.MedianNetMOIC)
	assert.Equal(t, 0.8, net.NetMOICP10)
	assert.InDelta(t, 1.6, net.MeanNetMOIC, 1e-12)
	assert.Equal(t, 15.0, net.AvgCarriedInterest)
	assert.Equal(t, 0.5, net.ProbNetMOICAbove2x)
}

func TestBuildHistogram(t *testing.T) {
	_, err := BuildHistogram(nil, 10)
	require.ErrorIs(t, err, ErrEmptyDataset)

	_, err = BuildHistogram([]float64{1}, 0)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	bins, err := BuildHistogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10}, 5)
	require.NoError(t, err)
	require.Len(t, bins, 5)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, 0.0, bins[0].Min)
	assert.Equal(t, 10.0, bins[4].Max)
	assert.Equal(t, 2, bins[0].Count) // 0, 1
	assert.Equal(t, 2, bins[4].Count) // 8, 10

	single, err := BuildHistogram([]float64{2, 2, 2}, 4)
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, 3, single[0].Count)
}
