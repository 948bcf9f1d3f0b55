package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/irr"
	"github.com/Psymen/fundsimulation-sub000/internal/observability"
	"github.com/Psymen/fundsimulation-sub000/internal/sampling"
)

// Options configures a batch of realizations.
type Options struct {
	// Seed makes the batch reproducible. Realization i always uses sampling.Stream(Seed, i).
	Seed uint64

	// Workers bounds parallelism. Zero means GOMAXPROCS.
	Workers int
}

// RunSingleSimulation produces one fund realization from rng.
func RunSingleSimulation(rng *rand.Rand, params domain.PortfolioParameters) (domain.SimulationResult, error) {
	if err := params.Validate(); err != nil {
		return domain.SimulationResult{}, err
	}
	return runOne(rng, params), nil
}

// RunSimulations runs params.NumSimulations independent realizations in parallel.
// Output order matches realization index, so results are identical for any worker count.
func RunSimulations(ctx context.Context, params domain.PortfolioParameters, opts Options) ([]domain.SimulationResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	n := params.NumSimulations
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	results := make([]domain.SimulationResult, n)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := w; i < n; i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = runOne(sampling.Stream(opts.Seed, i), params)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run simulations: %w", err)
	}

	nonConverged := 0
	for i := range results {
		if !results[i].IRRConverged {
			nonConverged++
		}
	}
	seed, seriesA := params.StageSplit()
	observability.RecordRealizations(n, nonConverged, seed*n, seriesA*n, time.Since(start).Seconds())

	return results, nil
}

// runOne assumes params are valid.
func runOne(rng *rand.Rand, params domain.PortfolioParameters) domain.SimulationResult {
	numSeed, numSeriesA := params.StageSplit()
	window := ExitWindow{Min: params.ExitWindowMin, Max: params.ExitWindowMax}

	companies := make([]domain.CompanyResult, 0, params.NumCompanies)
	for i := 0; i < numSeed; i++ {
		companies = append(companies, SimulateCompany(rng, domain.StageSeed, params.SeedStage, window))
	}
	for i := 0; i < numSeriesA; i++ {
		companies = append(companies, SimulateCompany(rng, domain.StageSeriesA, params.SeriesAStage, window))
	}

	var invested, returned float64
	var writeOffs, outliers int
	for _, c := range companies {
		invested += c.InvestedCapital
		returned += c.ReturnedCapital
		if c.ReturnMultiple < domain.WriteOffMultiple {
			writeOffs++
		}
		if c.ReturnMultiple >= domain.OutlierMultiple {
			outliers++
		}
	}

	solved := irr.Solve(CashFlows(companies, invested, params.InvestmentPeriod))

	return domain.SimulationResult{
		Companies:                  companies,
		TotalInvestedCapital:       invested,
		TotalReturnedCapital:       returned,
		GrossMOIC:                  returned / invested,
		MultipleOnCommittedCapital: returned / params.FundSize,
		GrossIRR:                   solved.Rate,
		IRRConverged:               solved.Converged,
		NumWriteOffs:               writeOffs,
		NumOutliers:                outliers,
		NumSeedCompanies:           numSeed,
		NumSeriesACompanies:        numSeriesA,
	}
}

// CashFlows builds the IRR timeline: investmentPeriod equal capital calls at
// mid-year (index + 0.5) and one distribution per company at its exit year.
func CashFlows(companies []domain.CompanyResult, totalInvested float64, investmentPeriod int) []irr.CashFlow {
	flows := make([]irr.CashFlow, 0, investmentPeriod+len(companies))

	call := totalInvested / float64(investmentPeriod)
	for i := 0; i < investmentPeriod; i++ {
		flows = append(flows, irr.CashFlow{Amount: -call, Year: float64(i) + 0.5})
	}
	for _, c := range companies {
		flows = append(flows, irr.CashFlow{Amount: c.ReturnedCapital, Year: c.ExitYear})
	}

	return flows
}
