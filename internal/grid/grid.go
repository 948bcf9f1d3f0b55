// Package grid searches portfolio construction space: every (company count, seed mix)
// cell is simulated and summarised, then ranked.
package grid

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/metrics"
	"github.com/Psymen/fundsimulation-sub000/internal/observability"
	"github.com/Psymen/fundsimulation-sub000/internal/simulation"
)

// ProgressFunc is called after each cell with the number of finished cells.
// Calls are serialised.
type ProgressFunc func(completed, total int)

// Options configures a grid run.
type Options struct {
	// Workers bounds how many cells run at once. Zero means GOMAXPROCS.
	Workers int

	// Seed makes the grid reproducible. Each cell derives its own seed from it.
	Seed uint64

	Progress ProgressFunc
	Logger   zerolog.Logger
}

// InvestmentCounts returns the portfolio sizes to evaluate between min and max.
// Spans of up to 10 values use every integer, wider spans are bucketed into
// 10 evenly spaced, rounded, de-duplicated values.
func InvestmentCounts(min, max int) []int {
	if max < min {
		return nil
	}
	span := max - min + 1
	if span <= domain.MaxInvestmentCountBuckets {
		out := make([]int, 0, span)
		for n := min; n <= max; n++ {
			out = append(out, n)
		}
		return out
	}

	step := float64(max-min) / float64(domain.MaxInvestmentCountBuckets-1)
	out := make([]int, 0, domain.MaxInvestmentCountBuckets)
	for i := 0; i < domain.MaxInvestmentCountBuckets; i++ {
		n := int(math.Round(float64(min) + float64(i)*step))
		if len(out) > 0 && out[len(out)-1] == n {
			continue
		}
		out = append(out, n)
	}
	return out
}

type cell struct {
	numCompanies   int
	seedPercentage float64
}

// CellSeed derives the seed of cell index from the grid seed.
func CellSeed(gridSeed uint64, index int) uint64 {
	return gridSeed ^ (uint64(index+1) * 0x9e3779b97f4a7c15)
}

// Run evaluates every grid cell, ranks the results and writes commentary.
// A failing cell is recorded in Failures and does not stop the others.
// Cancelling ctx stops the grid and returns the context error.
func Run(ctx context.Context, params domain.GridAnalysisParameters, opts Options) (*domain.GridAnalysisResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	counts := InvestmentCounts(params.InvestmentCountMin, params.InvestmentCountMax)
	cells := make([]cell, 0, len(counts)*len(params.SeedPercentages))
	for _, n := range counts {
		for _, pct := range params.SeedPercentages {
			cells = append(cells, cell{numCompanies: n, seedPercentage: pct})
		}
	}
	total := len(cells)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	done := observability.GridStarted()
	defer done()

	logger.Info().
		Int("cells", total).
		Int("workers", workers).
		Int("simulations_per_cell", params.NumSimulations).
		Msg("grid started")

	scenarios := make([]*domain.GridScenario, total)
	failures := make([]*domain.CellFailure, total)

	var mu sync.Mutex
	completed := 0
	reportDone := func() {
		mu.Lock()
		defer mu.Unlock()
		completed++
		if opts.Progress != nil {
			opts.Progress(completed, total)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range cells {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			start := time.Now()
			scenario, err := evaluateCell(gctx, params, c, CellSeed(opts.Seed, i))
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				observability.RecordGridCell("failed", time.Since(start).Seconds())
				logger.Warn().
					Err(err).
					Int("num_companies", c.numCompanies).
					Float64("seed_percentage", c.seedPercentage).
					Msg("grid cell failed")
				failures[i] = &domain.CellFailure{
					NumCompanies:   c.numCompanies,
					SeedPercentage: c.seedPercentage,
					Error:          err.Error(),
				}
			} else {
				observability.RecordGridCell("ok", time.Since(start).Seconds())
				scenarios[i] = scenario
			}
			reportDone()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("grid run: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("grid run: %w", err)
	}

	result := &domain.GridAnalysisResult{}
	for i := range cells {
		if scenarios[i] != nil {
			result.Scenarios = append(result.Scenarios, *scenarios[i])
		}
		if failures[i] != nil {
			result.Failures = append(result.Failures, *failures[i])
		}
	}

	result.BestStrategies = IdentifyBestStrategies(result.Scenarios)
	result.WorstStrategies = IdentifyWorstStrategies(result.Scenarios)
	result.Commentary = GenerateCommentary(result.Scenarios, params)

	logger.Info().
		Int("scenarios", len(result.Scenarios)).
		Int("failures", len(result.Failures)).
		Msg("grid finished")

	return result, nil
}

func evaluateCell(ctx context.Context, params domain.GridAnalysisParameters, c cell, seed uint64) (*domain.GridScenario, error) {
	portfolio := params.PortfolioFor(c.numCompanies, c.seedPercentage)

	results, err := simulation.RunSimulations(ctx, portfolio, simulation.Options{Seed: seed, Workers: 1})
	if err != nil {
		return nil, err
	}
	summary, err := metrics.CalculateSummaryStatistics(results)
	if err != nil {
		return nil, err
	}

	var invested, seedCount, seriesACount float64
	for _, r := range results {
		invested += r.TotalInvestedCapital
		seedCount += float64(r.NumSeedCompanies)
		seriesACount += float64(r.NumSeriesACompanies)
	}
	n := float64(len(results))
	avgInvested := invested / n

	return &domain.GridScenario{
		NumCompanies:        c.numCompanies,
		SeedPercentage:      c.seedPercentage,
		Summary:             summary,
		Results:             results,
		AvgInvestedCapital:  avgInvested,
		DeploymentRate:      avgInvested / portfolio.FundSize,
		AvgSeedCompanies:    seedCount / n,
		AvgSeriesACompanies: seriesACount / n,
		TargetCapital:       portfolio.TargetCapital(),
	}, nil
}
