package orchestrator

import (
	"fmt"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/grid"
)

// RunWorkload is the number of simulated company outcomes a run produces.
func RunWorkload(params domain.PortfolioParameters) int64 {
	if params.NumCompanies <= 0 || params.NumSimulations <= 0 {
		return 0
	}
	return int64(params.NumCompanies) * int64(params.NumSimulations)
}

// GridWorkload sums RunWorkload over every cell of a grid analysis.
func GridWorkload(params domain.GridAnalysisParameters) int64 {
	if params.NumSimulations <= 0 {
		return 0
	}
	var perPct int64
	for _, n := range grid.InvestmentCounts(params.InvestmentCountMin, params.InvestmentCountMax) {
		if n > 0 {
			perPct += int64(n)
		}
	}
	return perPct * int64(len(params.SeedPercentages)) * int64(params.NumSimulations)
}

func (o *Orchestrator) checkWorkload(kind string, workload int64) error {
	if o.maxWorkload <= 0 || workload <= o.maxWorkload {
		return nil
	}
	return fmt.Errorf("%w: %s workload %d company outcomes exceeds limit %d",
		domain.ErrInvalidInput, kind, workload, o.maxWorkload)
}
