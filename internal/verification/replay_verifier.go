package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/fees"
	"github.com/Psymen/fundsimulation-sub000/internal/idhash"
	"github.com/Psymen/fundsimulation-sub000/internal/metrics"
	"github.com/Psymen/fundsimulation-sub000/internal/simulation"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

// ErrRunNotFound is returned when run ID doesn't exist.
var ErrRunNotFound = errors.New("run not found")

// ReplayVerifier implements Verifier interface.
type ReplayVerifier struct {
	runStore storage.RunStore
	workers  int
}

// ReplayVerifierOptions contains configuration for creating a ReplayVerifier.
type ReplayVerifierOptions struct {
	RunStore storage.RunStore
	Workers  int // replay parallelism, does not affect results
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts ReplayVerifierOptions) *ReplayVerifier {
	return &ReplayVerifier{
		runStore: opts.RunStore,
		workers:  opts.Workers,
	}
}

var _ Verifier = (*ReplayVerifier)(nil)

// VerifyRun re-simulates a stored run and compares it.
func (v *ReplayVerifier) VerifyRun(ctx context.Context, runID string) (*VerificationResult, error) {
	// 1. Load stored run
	stored, err := v.runStore.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	// 2. Replay simulation
	replayed, err := v.replaySummary(ctx, stored)
	if err != nil {
		return nil, err
	}

	// 3. Compare results
	fingerprint, err := idhash.ComputeRunFingerprint(stored.Parameters, stored.Seed)
	if err != nil {
		return nil, err
	}
	divergences := CompareSummaries(stored.Summary, replayed)
	fingerprintMatch := fingerprint == stored.Fingerprint
	if !fingerprintMatch {
		divergences = append(divergences, FieldDivergence{
			Field:    "Fingerprint",
			Expected: stored.Fingerprint,
			Actual:   fingerprint,
		})
	}

	return &VerificationResult{
		RunID:              runID,
		Match:              len(divergences) == 0,
		FingerprintMatch:   fingerprintMatch,
		Divergences:        divergences,
		StoredMedianMOIC:   stored.Summary.MedianMOIC,
		ReplayedMedianMOIC: replayed.MedianMOIC,
	}, nil
}

// VerifyAll verifies stored runs, newest first.
func (v *ReplayVerifier) VerifyAll(ctx context.Context, limit int) (*VerificationReport, error) {
	runs, err := v.runStore.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		TotalRuns: len(runs),
		Results:   make([]VerificationResult, 0, len(runs)),
	}

	for _, run := range runs {
		result, err := v.VerifyRun(ctx, run.ID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// Record error as divergence
			report.Results = append(report.Results, VerificationResult{
				RunID:            run.ID,
				Match:            false,
				StoredMedianMOIC: run.Summary.MedianMOIC,
				Divergences: []FieldDivergence{
					{Field: "Error", Expected: nil, Actual: err.Error()},
				},
			})
			report.DivergentRuns++
			continue
		}

		report.Results = append(report.Results, *result)
		if result.Match {
			report.MatchedRuns++
		} else {
			report.DivergentRuns++
		}
	}

	return report, nil
}

// replaySummary re-runs the stored parameters with the stored seed.
func (v *ReplayVerifier) replaySummary(ctx context.Context, stored *domain.RunRecord) (domain.SummaryStatistics, error) {
	results, err := simulation.RunSimulations(ctx, stored.Parameters, simulation.Options{
		Seed:    stored.Seed,
		Workers: v.workers,
	})
	if err != nil {
		return domain.SummaryStatistics{}, fmt.Errorf("replay run %s: %w", stored.ID, err)
	}

	summary, err := metrics.CalculateSummaryStatistics(results)
	if err != nil {
		return domain.SummaryStatistics{}, err
	}
	if stored.Parameters.FeeStructure != nil {
		net, err := metrics.CalculateNetSummary(fees.ApplyFeeOverlays(results, stored.Parameters))
		if err != nil {
			return domain.SummaryStatistics{}, err
		}
		summary.Net = net
	}
	return summary, nil
}
