package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/fees"
	"github.com/Psymen/fundsimulation-sub000/internal/metrics"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

// Generator builds reports from stored analyses.
type Generator struct {
	runStore  storage.RunStore
	gridStore storage.GridAnalysisStore
	bandStore storage.TimelineBandStore // optional
	now       func() time.Time          // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. bandStore may be nil.
func NewGenerator(
	runStore storage.RunStore,
	gridStore storage.GridAnalysisStore,
	bandStore storage.TimelineBandStore,
) *Generator {
	return &Generator{
		runStore:  runStore,
		gridStore: gridStore,
		bandStore: bandStore,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// RunReport loads a run and its timeline bands.
func (g *Generator) RunReport(ctx context.Context, runID string) (*RunReport, error) {
	rec, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	var bands []domain.YearlyMetricsBand
	if g.bandStore != nil {
		bands, err = g.bandStore.GetByRunID(ctx, runID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load timeline bands: %w", err)
		}
	}

	return BuildRunReport(rec, bands, g.now())
}

// GridReport loads a grid analysis.
func (g *Generator) GridReport(ctx context.Context, analysisID string) (*GridReport, error) {
	rec, err := g.gridStore.GetByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	return BuildGridReport(rec, g.now()), nil
}

// BuildRunReport assembles a report from an in-hand record.
func BuildRunReport(rec *domain.RunRecord, bands []domain.YearlyMetricsBand, generatedAt time.Time) (*RunReport, error) {
	report := &RunReport{
		GeneratedAt: generatedAt,
		RunID:       rec.ID,
		Fingerprint: rec.Fingerprint,
		Seed:        rec.Seed,
		Parameters:  rec.Parameters,
		Summary:     rec.Summary,
		Bands:       bands,
	}

	if len(rec.Results) > 0 {
		moics := make([]float64, len(rec.Results))
		for i, r := range rec.Results {
			moics[i] = r.GrossMOIC
		}
		hist, err := metrics.BuildHistogram(moics, HistogramBins)
		if err != nil {
			return nil, fmt.Errorf("build moic histogram: %w", err)
		}
		report.MOICHistogram = hist
	}

	if fs := rec.Parameters.FeeStructure; fs != nil {
		report.FeeDrag = fees.GenerateFeeDragTable(rec.Parameters.FundSize, *fs,
			rec.Parameters.InvestmentPeriod, rec.Parameters.FundLife)
	}
	return report, nil
}

// BuildGridReport assembles a report from an in-hand grid record.
func BuildGridReport(rec *domain.GridAnalysisRecord, generatedAt time.Time) *GridReport {
	return &GridReport{
		GeneratedAt: generatedAt,
		AnalysisID:  rec.ID,
		Fingerprint: rec.Fingerprint,
		Seed:        rec.Seed,
		Parameters:  rec.Parameters,
		Result: domain.GridAnalysisResult{
			Scenarios:       rec.Scenarios,
			BestStrategies:  rec.BestStrategies,
			WorstStrategies: rec.WorstStrategies,
			Commentary:      rec.Commentary,
			Failures:        rec.Failures,
		},
	}
}
