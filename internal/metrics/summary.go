// Package metrics reduces fund realizations into distribution statistics.
package metrics

import (
	"errors"
	"fmt"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
)

// ErrEmptyDataset is returned when there is nothing to aggregate.
var ErrEmptyDataset = errors.New("empty dataset")

// CalculateSummaryStatistics aggregates MOIC and IRR distributions across realizations.
// Threshold probabilities are fractions of realizations with MOIC >= 2x, 3x, 5x.
func CalculateSummaryStatistics(results []domain.SimulationResult) (domain.SummaryStatistics, error) {
	n := len(results)
	if n == 0 {
		return domain.SummaryStatistics{}, ErrEmptyDataset
	}

	moics := make([]float64, n)
	irrs := make([]float64, n)
	writeOffs, outliers, nonConverged := 0, 0, 0
	for i, r := range results {
		moics[i] = r.GrossMOIC
		irrs[i] = r.GrossIRR
		writeOffs += r.NumWriteOffs
		outliers += r.NumOutliers
		if !r.IRRConverged {
			nonConverged++
		}
	}
	if !allFinite(moics) || !allFinite(irrs) {
		return domain.SummaryStatistics{}, fmt.Errorf("%w: non-finite MOIC or IRR in results", domain.ErrInvalidInput)
	}

	sortedMOIC := sortedCopy(moics)
	sortedIRR := sortedCopy(irrs)
	meanMOIC := computeMean(moics)
	meanIRR := computeMean(irrs)

	return domain.SummaryStatistics{
		NumSimulations: n,

		MedianMOIC: computePercentile(sortedMOIC, 0.50),
		MOICP10:    computePercentile(sortedMOIC, 0.10),
		MOICP90:    computePercentile(sortedMOIC, 0.90),
		MeanMOIC:   meanMOIC,
		StdDevMOIC: computeStddev(moics, meanMOIC),

		MedianIRR: computePercentile(sortedIRR, 0.50),
		IRRP10:    computePercentile(sortedIRR, 0.10),
		IRRP90:    computePercentile(sortedIRR, 0.90),
		MeanIRR:   meanIRR,
		StdDevIRR: computeStddev(irrs, meanIRR),

		ProbMOICAbove2x: fractionAtLeast(moics, 2),
		ProbMOICAbove3x: fractionAtLeast(moics, 3),
		ProbMOICAbove5x: fractionAtLeast(moics, 5),

		AvgWriteOffs: float64(writeOffs) / float64(n),
		AvgOutliers:  float64(outliers) / float64(n),

		IRRNonConverged: nonConverged,
	}, nil
}

// CalculateNetSummary aggregates net-of-fee overlays.
func CalculateNetSummary(overlays []domain.NetOverlay) (*domain.NetSummary, error) {
	n := len(overlays)
	if n == 0 {
		return nil, ErrEmptyDataset
	}

	netMOICs := make([]float64, n)
	var drag, mgmt, carry float64
	for i, o := range overlays {
		netMOICs[i] = o.Net.NetMOIC
		drag += o.Net.FeeDragPercent
		mgmt += o.Net.ManagementFees
		carry += o.Net.CarriedInterest
	}
	if !allFinite(netMOICs) {
		return nil, fmt.Errorf("%w: non-finite net MOIC", domain.ErrInvalidInput)
	}

	sorted := sortedCopy(netMOICs)
	return &domain.NetSummary{
		MedianNetMOIC:      computePercentile(sorted, 0.50),
		NetMOICP10:         computePercentile(sorted, 0.10),
		NetMOICP90:         computePercentile(sorted, 0.90),
		MeanNetMOIC:        computeMean(netMOICs),
		AvgFeeDragPercent:  drag / float64(n),
		AvgManagementFees:  mgmt / float64(n),
		AvgCarriedInterest: carry / float64(n),
		ProbNetMOICAbove2x: fractionAtLeast(netMOICs, 2),
	}, nil
}
