package simulation

import (
	"math/rand/v2"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/sampling"
)

// ExitWindow bounds company exit timing in years from fund start.
type ExitWindow struct {
	Min int
	Max int
}

// SimulateCompany draws one company's outcome for a stage.
// Steps:
//  1. Invested capital = check x (1 + follow-on reserve)
//  2. Pick an exit bucket by cumulative probability
//  3. Sample a multiple inside the bucket (top bucket uses the Pareto tail)
//  4. Sample an exit year conditioned on the multiple
func SimulateCompany(rng *rand.Rand, stage domain.Stage, params domain.StageParameters, window ExitWindow) domain.CompanyResult {
	invested := params.CapitalPerCompany()

	idx := pickBucket(rng, params.ExitBuckets)
	bucket := params.ExitBuckets[idx]
	isOutlier := idx == len(params.ExitBuckets)-1 && !bucket.IsTotalLoss()

	multiple := sampling.SampleReturnMultiple(rng, bucket.MinMultiple, bucket.MaxMultiple, isOutlier)
	exitYear := sampling.SampleExitYear(rng, multiple, stage, window.Min, window.Max)

	return domain.CompanyResult{
		Stage:           stage,
		InvestedCapital: invested,
		ReturnedCapital: invested * multiple,
		ReturnMultiple:  multiple,
		ExitYear:        exitYear,
		BucketLabel:     bucket.Label,
	}
}

// pickBucket selects a bucket index by weighted draw over cumulative probability.
// Falls back to the last bucket when rounding leaves the roll past the total.
func pickBucket(rng *rand.Rand, buckets []domain.ExitBucket) int {
	roll := rng.Float64() * 100
	cumulative := 0.0
	for i, b := range buckets {
		cumulative += b.Probability
		if roll < cumulative {
			return i
		}
	}
	return len(buckets) - 1
}
