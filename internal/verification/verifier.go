// Package verification checks that stored analyses reproduce.
// A stored run is re-simulated from its parameters and seed, and the
// fresh summary is compared field by field with the stored one.
package verification

import (
	"context"
	"math"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-9

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string `json:"field"`
	Expected any    `json:"expected"` // stored value
	Actual   any    `json:"actual"`   // replayed value
}

// VerificationResult contains the result of verifying a single run.
type VerificationResult struct {
	RunID              string            `json:"runId"`
	Match              bool              `json:"match"` // true if all fields match
	FingerprintMatch   bool              `json:"fingerprintMatch"`
	Divergences        []FieldDivergence `json:"divergences,omitempty"`
	StoredMedianMOIC   float64           `json:"storedMedianMOIC"`
	ReplayedMedianMOIC float64           `json:"replayedMedianMOIC"`
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalRuns     int                  `json:"totalRuns"`
	MatchedRuns   int                  `json:"matchedRuns"`
	DivergentRuns int                  `json:"divergentRuns"`
	Results       []VerificationResult `json:"results"`
}

// Verifier replays stored runs.
type Verifier interface {
	// VerifyRun re-simulates one stored run and compares its summary.
	VerifyRun(ctx context.Context, runID string) (*VerificationResult, error)

	// VerifyAll verifies up to limit most recent runs. limit <= 0 verifies all.
	VerifyAll(ctx context.Context, limit int) (*VerificationReport, error)
}

// CompareSummaries compares two summaries and returns divergences.
// Uses FloatTolerance for float64 comparisons.
func CompareSummaries(stored, replayed domain.SummaryStatistics) []FieldDivergence {
	var divergences []FieldDivergence

	if stored.NumSimulations != replayed.NumSimulations {
		divergences = append(divergences, FieldDivergence{
			Field:    "NumSimulations",
			Expected: stored.NumSimulations,
			Actual:   replayed.NumSimulations,
		})
	}
	if stored.IRRNonConverged != replayed.IRRNonConverged {
		divergences = append(divergences, FieldDivergence{
			Field:    "IRRNonConverged",
			Expected: stored.IRRNonConverged,
			Actual:   replayed.IRRNonConverged,
		})
	}

	floats := []struct {
		field            string
		stored, replayed float64
	}{
		{"MedianMOIC", stored.MedianMOIC, replayed.MedianMOIC},
		{"MOICP10", stored.MOICP10, replayed.MOICP10},
		{"MOICP90", stored.MOICP90, replayed.MOICP90},
		{"MeanMOIC", stored.MeanMOIC, replayed.MeanMOIC},
		{"StdDevMOIC", stored.StdDevMOIC, replayed.StdDevMOIC},
		{"MedianIRR", stored.MedianIRR, replayed.MedianIRR},
		{"IRRP10", stored.IRRP10, replayed.IRRP10},
		{"IRRP90", stored.IRRP90, replayed.IRRP90},
		{"MeanIRR", stored.MeanIRR, replayed.MeanIRR},
		{"StdDevIRR", stored.StdDevIRR, replayed.StdDevIRR},
		{"ProbMOICAbove2x", stored.ProbMOICAbove2x, replayed.ProbMOICAbove2x},
		{"ProbMOICAbove3x", stored.ProbMOICAbove3x, replayed.ProbMOICAbove3x},
		{"ProbMOICAbove5x", stored.ProbMOICAbove5x, replayed.ProbMOICAbove5x},
		{"AvgWriteOffs", stored.AvgWriteOffs, replayed.AvgWriteOffs},
		{"AvgOutliers", stored.AvgOutliers, replayed.AvgOutliers},
	}
	for _, f := range floats {
		if !floatEquals(f.stored, f.replayed) {
			divergences = append(divergences, FieldDivergence{Field: f.field, Expected: f.stored, Actual: f.replayed})
		}
	}

	// Net summary presence must agree
	switch {
	case stored.Net == nil && replayed.Net == nil:
	case stored.Net == nil || replayed.Net == nil:
		divergences = append(divergences, FieldDivergence{
			Field:    "Net",
			Expected: stored.Net != nil,
			Actual:   replayed.Net != nil,
		})
	default:
		if !floatEquals(stored.Net.MedianNetMOIC, replayed.Net.MedianNetMOIC) {
			divergences = append(divergences, FieldDivergence{
				Field:    "Net.MedianNetMOIC",
				Expected: stored.Net.MedianNetMOIC,
				Actual:   replayed.Net.MedianNetMOIC,
			})
		}
		if !floatEquals(stored.Net.AvgFeeDragPercent, replayed.Net.AvgFeeDragPercent) {
			divergences = append(divergences, FieldDivergence{
				Field:    "Net.AvgFeeDragPercent",
				Expected: stored.Net.AvgFeeDragPercent,
				Actual:   replayed.Net.AvgFeeDragPercent,
			})
		}
	}

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
// NaN equals NaN so that identical best-effort values compare equal.
func floatEquals(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= FloatTolerance
}
