// Package orchestrator runs analyses end to end.
// It coordinates: simulation → summary → fee overlay → timeline → persistence
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/fees"
	"github.com/Psymen/fundsimulation-sub000/internal/grid"
	"github.com/Psymen/fundsimulation-sub000/internal/idhash"
	"github.com/Psymen/fundsimulation-sub000/internal/metrics"
	"github.com/Psymen/fundsimulation-sub000/internal/observability"
	"github.com/Psymen/fundsimulation-sub000/internal/simulation"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
	"github.com/Psymen/fundsimulation-sub000/internal/timeline"
)

// Analysis kinds, used as metric labels.
const (
	KindRun  = "run"
	KindGrid = "grid"
)

// Orchestrator coordinates analysis execution and persistence.
type Orchestrator struct {
	// Stores
	runStore  storage.RunStore
	gridStore storage.GridAnalysisStore
	bandStore storage.TimelineBandStore

	// Options
	workers     int
	gridWorkers int
	seed        uint64
	maxWorkload int64
	logger      zerolog.Logger
	now         func() time.Time
	newID       func() string
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	RunStore  storage.RunStore
	GridStore storage.GridAnalysisStore

	// BandStore receives per-run timeline bands. Optional.
	BandStore storage.TimelineBandStore

	// Workers bounds realization parallelism of a single run. Zero means GOMAXPROCS.
	Workers int
	// GridWorkers bounds how many grid cells run at once. Zero means GOMAXPROCS.
	GridWorkers int
	// Seed is used when a request does not carry its own.
	// Zero derives a fresh seed from the clock for every request.
	Seed uint64
	// MaxWorkload rejects requests simulating more company outcomes than
	// this (see RunWorkload and GridWorkload). Zero means no limit.
	MaxWorkload int64

	Logger zerolog.Logger
	Now    func() time.Time // Injectable clock, defaults to time.Now().UTC()
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Orchestrator{
		runStore:    opts.RunStore,
		gridStore:   opts.GridStore,
		bandStore:   opts.BandStore,
		workers:     opts.Workers,
		gridWorkers: opts.GridWorkers,
		seed:        opts.Seed,
		maxWorkload: opts.MaxWorkload,
		logger:      opts.Logger,
		now:         now,
		newID:       uuid.NewString,
	}
}

// DefaultSeed returns the seed used when a request carries none.
func (o *Orchestrator) DefaultSeed() uint64 {
	if o.seed == 0 {
		return uint64(o.now().UnixNano())
	}
	return o.seed
}

// RunResult contains the outcome of a single-portfolio analysis.
type RunResult struct {
	Record *domain.RunRecord
	Bands  []domain.YearlyMetricsBand

	// Errors lists non-fatal failures, such as a timeline that could not be stored.
	Errors []string
}

// Run executes a single-portfolio analysis with the default seed.
func (o *Orchestrator) Run(ctx context.Context, params domain.PortfolioParameters) (*RunResult, error) {
	return o.RunSeeded(ctx, params, o.DefaultSeed())
}

// RunSeeded executes a single-portfolio analysis.
// Phases:
//  1. Simulate realizations
//  2. Summarise, with a net-of-fee overlay when fee terms are present
//  3. Build timeline bands
//  4. Persist the record, then its bands
func (o *Orchestrator) RunSeeded(ctx context.Context, params domain.PortfolioParameters, seed uint64) (_ *RunResult, err error) {
	start := time.Now()
	defer func() { o.recordAnalysis(KindRun, start, err) }()

	if err := o.checkWorkload(KindRun, RunWorkload(params)); err != nil {
		return nil, err
	}

	fingerprint, err := idhash.ComputeRunFingerprint(params, seed)
	if err != nil {
		return nil, err
	}
	log := o.logger.With().Str("fingerprint", fingerprint).Uint64("seed", seed).Logger()

	// Phase 1: Simulation
	log.Info().
		Int("companies", params.NumCompanies).
		Int("simulations", params.NumSimulations).
		Msg("simulating portfolio")
	results, err := simulation.RunSimulations(ctx, params, simulation.Options{Seed: seed, Workers: o.workers})
	if err != nil {
		return nil, err
	}

	// Phase 2: Summary
	summary, err := metrics.CalculateSummaryStatistics(results)
	if err != nil {
		return nil, fmt.Errorf("summarise run: %w", err)
	}
	if params.FeeStructure != nil {
		net, err := metrics.CalculateNetSummary(fees.ApplyFeeOverlays(results, params))
		if err != nil {
			return nil, fmt.Errorf("summarise net returns: %w", err)
		}
		summary.Net = net
	}

	out := &RunResult{
		Record: &domain.RunRecord{
			ID:          o.newID(),
			Timestamp:   o.now(),
			Fingerprint: fingerprint,
			Seed:        seed,
			Parameters:  params,
			Summary:     summary,
			Results:     results,
		},
	}

	// Phase 3: Timeline
	bands, err := timeline.BuildBands(results, params)
	if err != nil {
		out.Errors = append(out.Errors, fmt.Sprintf("build timeline: %v", err))
	}
	out.Bands = bands

	// Phase 4: Persistence
	if err := o.runStore.Insert(ctx, out.Record); err != nil {
		return nil, fmt.Errorf("store run %s: %w", out.Record.ID, err)
	}
	if o.bandStore != nil && len(bands) > 0 {
		if err := o.bandStore.InsertBulk(ctx, out.Record.ID, bands); err != nil {
			log.Warn().Err(err).Str("run_id", out.Record.ID).Msg("timeline bands not stored")
			out.Errors = append(out.Errors, fmt.Sprintf("store timeline %s: %v", out.Record.ID, err))
		}
	}

	log.Info().
		Str("run_id", out.Record.ID).
		Float64("median_moic", summary.MedianMOIC).
		Float64("median_irr", summary.MedianIRR).
		Int("irr_non_converged", summary.IRRNonConverged).
		Int("errors", len(out.Errors)).
		Msg("run completed")

	return out, nil
}

// RunGrid executes a grid analysis with the default seed.
func (o *Orchestrator) RunGrid(ctx context.Context, params domain.GridAnalysisParameters, progress grid.ProgressFunc) (*domain.GridAnalysisRecord, error) {
	return o.RunGridSeeded(ctx, params, o.DefaultSeed(), progress)
}

// RunGridSeeded evaluates every grid cell, ranks the outcomes and persists the analysis.
// Cells that fail are kept in the record's Failures.
func (o *Orchestrator) RunGridSeeded(ctx context.Context, params domain.GridAnalysisParameters, seed uint64, progress grid.ProgressFunc) (_ *domain.GridAnalysisRecord, err error) {
	start := time.Now()
	defer func() { o.recordAnalysis(KindGrid, start, err) }()

	if err := o.checkWorkload(KindGrid, GridWorkload(params)); err != nil {
		return nil, err
	}

	fingerprint, err := idhash.ComputeGridFingerprint(params, seed)
	if err != nil {
		return nil, err
	}

	res, err := grid.Run(ctx, params, grid.Options{
		Workers:  o.gridWorkers,
		Seed:     seed,
		Progress: progress,
		Logger:   o.logger.With().Str("fingerprint", fingerprint).Logger(),
	})
	if err != nil {
		return nil, err
	}

	rec := &domain.GridAnalysisRecord{
		ID:              o.newID(),
		Timestamp:       o.now(),
		Fingerprint:     fingerprint,
		Seed:            seed,
		Parameters:      params,
		Scenarios:       res.Scenarios,
		BestStrategies:  res.BestStrategies,
		WorstStrategies: res.WorstStrategies,
		Commentary:      res.Commentary,
		Failures:        res.Failures,
	}
	if err := o.gridStore.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("store grid analysis %s: %w", rec.ID, err)
	}

	o.logger.Info().
		Str("analysis_id", rec.ID).
		Int("scenarios", len(rec.Scenarios)).
		Int("failures", len(rec.Failures)).
		Msg("grid analysis completed")

	return rec, nil
}

func (o *Orchestrator) recordAnalysis(kind string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	observability.RecordAnalysis(kind, status, time.Since(start).Seconds())
}
