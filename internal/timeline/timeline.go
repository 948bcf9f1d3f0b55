// Package timeline estimates how a fund's DPI, RVPI and TVPI evolve year by year.
package timeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/metrics"
)

// callSchedule is the cumulative share of commitments called by the end of years 1-6.
var callSchedule = []float64{0.25, 0.55, 0.80, 0.92, 0.97, 1.00}

const (
	// failureMarkThreshold separates companies written down from those marked up.
	failureMarkThreshold = 0.5
	// markupShare is the fraction of eventual gain recognised at full progress.
	markupShare = 0.7
	// extensionYears are reported past fund life for late exits.
	extensionYears = 2
)

// CumulativeCallPercent returns the fraction of fund size called by the end of year.
func CumulativeCallPercent(year int) float64 {
	if year < 1 {
		return 0
	}
	if year > len(callSchedule) {
		return 1
	}
	return callSchedule[year-1]
}

// InvestmentYear assumes even deployment: company i of n enters in
// year 1 + floor(i * investmentPeriod / n).
func InvestmentYear(index, numCompanies, investmentPeriod int) int {
	if numCompanies <= 0 {
		return 1
	}
	return 1 + index*investmentPeriod/numCompanies
}

// CalculateYearlyMetrics builds one realization's timeline over years 1..fundLife+2.
// A nil fee structure accrues no fees.
func CalculateYearlyMetrics(companies []domain.CompanyResult, fundSize float64, fundLife, investmentPeriod int, fs *domain.FeeStructure) []domain.YearlyFundMetrics {
	years := fundLife + extensionYears
	out := make([]domain.YearlyFundMetrics, 0, years)

	cumulativeFees := 0.0
	for year := 1; year <= years; year++ {
		called := fundSize * CumulativeCallPercent(year)

		if fs != nil {
			rate := fs.ManagementFeeRate
			if year > investmentPeriod {
				rate = fs.ManagementFeeStepDown
			}
			cumulativeFees += fundSize * rate / 100
		}

		distributed := 0.0
		unrealized := 0.0
		for i, c := range companies {
			exitYear := int(math.Floor(c.ExitYear))
			if exitYear <= year {
				distributed += c.ReturnedCapital
				continue
			}

			investYear := InvestmentYear(i, len(companies), investmentPeriod)
			if year < investYear {
				continue
			}
			unrealized += interimMark(c, year, investYear)
		}

		netDistributed := math.Max(0, distributed-cumulativeFees)

		var dpi, rvpi float64
		if called > 0 {
			dpi = netDistributed / called
			rvpi = unrealized / called
		}

		out = append(out, domain.YearlyFundMetrics{
			Year:                    year,
			CapitalCalled:           called,
			CumulativeDistributions: netDistributed,
			UnrealizedValue:         unrealized,
			ManagementFees:          cumulativeFees,
			DPI:                     dpi,
			RVPI:                    rvpi,
			TVPI:                    dpi + rvpi,
		})
	}

	return out
}

// interimMark values a held company. Progress through the holding period is
// dampened by a square root, so marks lag early and catch up late.
// Failures (<0.5x) are written down linearly toward their terminal multiple.
func interimMark(c domain.CompanyResult, year, investYear int) float64 {
	holding := math.Max(1, c.ExitYear-float64(investYear))
	progress := math.Min(1, float64(year-investYear)/holding)

	if c.ReturnMultiple < failureMarkThreshold {
		return c.InvestedCapital * (1 - (1-c.ReturnMultiple)*progress)
	}
	adjusted := math.Sqrt(progress)
	return c.InvestedCapital * (1 + (c.ReturnMultiple-1)*markupShare*adjusted)
}

// AggregateYearlyMetrics reduces many timelines to per-year P10/P50/P90 bands.
// Every timeline must cover the same years.
func AggregateYearlyMetrics(all [][]domain.YearlyFundMetrics) ([]domain.YearlyMetricsBand, error) {
	if len(all) == 0 || len(all[0]) == 0 {
		return nil, metrics.ErrEmptyDataset
	}

	years := len(all[0])
	for i, tl := range all {
		if len(tl) != years {
			return nil, fmt.Errorf("%w: timeline %d has %d years, expected %d", domain.ErrInvalidInput, i, len(tl), years)
		}
	}

	bands := make([]domain.YearlyMetricsBand, years)
	dpi := make([]float64, len(all))
	rvpi := make([]float64, len(all))
	tvpi := make([]float64, len(all))

	for y := 0; y < years; y++ {
		for i, tl := range all {
			dpi[i] = tl[y].DPI
			rvpi[i] = tl[y].RVPI
			tvpi[i] = tl[y].TVPI
		}
		sort.Float64s(dpi)
		sort.Float64s(rvpi)
		sort.Float64s(tvpi)

		bands[y] = domain.YearlyMetricsBand{
			Year:    all[0][y].Year,
			DPIP10:  metrics.Percentile(dpi, 0.10),
			DPIP50:  metrics.Percentile(dpi, 0.50),
			DPIP90:  metrics.Percentile(dpi, 0.90),
			RVPIP10: metrics.Percentile(rvpi, 0.10),
			RVPIP50: metrics.Percentile(rvpi, 0.50),
			RVPIP90: metrics.Percentile(rvpi, 0.90),
			TVPIP10: metrics.Percentile(tvpi, 0.10),
			TVPIP50: metrics.Percentile(tvpi, 0.50),
			TVPIP90: metrics.Percentile(tvpi, 0.90),
		}
	}

	return bands, nil
}

// BuildBands computes a timeline per realization and aggregates them.
func BuildBands(results []domain.SimulationResult, params domain.PortfolioParameters) ([]domain.YearlyMetricsBand, error) {
	all := make([][]domain.YearlyFundMetrics, len(results))
	for i, r := range results {
		all[i] = CalculateYearlyMetrics(r.Companies, params.FundSize, params.FundLife, params.InvestmentPeriod, params.FeeStructure)
	}
	return AggregateYearlyMetrics(all)
}
