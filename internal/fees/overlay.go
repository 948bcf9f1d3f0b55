package fees

import "github.com/Psymen/fundsimulation-sub000/internal/domain"

// ApplyFeeOverlay derives net-of-fee figures for one realization.
// The realization is read only. ok is false when params carry no fee structure.
func ApplyFeeOverlay(result domain.SimulationResult, params domain.PortfolioParameters) (overlay domain.NetOverlay, ok bool) {
	if params.FeeStructure == nil {
		return domain.NetOverlay{}, false
	}

	net := CalculateNetReturns(
		result.TotalReturnedCapital,
		params.FundSize,
		result.TotalInvestedCapital,
		*params.FeeStructure,
		params.InvestmentPeriod,
		params.FundLife,
	)
	return domain.NetOverlay{GrossMOIC: result.GrossMOIC, Net: net}, true
}

// ApplyFeeOverlays runs ApplyFeeOverlay over every realization.
// Returns nil when params carry no fee structure.
func ApplyFeeOverlays(results []domain.SimulationResult, params domain.PortfolioParameters) []domain.NetOverlay {
	if params.FeeStructure == nil {
		return nil
	}
	out := make([]domain.NetOverlay, 0, len(results))
	for _, r := range results {
		o, _ := ApplyFeeOverlay(r, params)
		out = append(out, o)
	}
	return out
}
