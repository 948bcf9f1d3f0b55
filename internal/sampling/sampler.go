package sampling

import (
	"math"
	"math/rand/v2"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
)

// Sampling constants
const (
	// ParetoAlpha is the calibrated tail index for outlier buckets (lower = fatter tail).
	ParetoAlpha = 2.0

	// LogNormalSkew is the scale used for non-outlier buckets.
	LogNormalSkew = 0.8

	// narrowRange is the bucket width below which uniform sampling is used.
	narrowRange = 0.5

	// logNormalModeShare places the log-normal mode at this share of the bucket range.
	logNormalModeShare = 0.2

	// maxRejectionAttempts bounds log-normal rejection sampling before clamping.
	maxRejectionAttempts = 20
)

// StandardNormal draws one N(0,1) value with the Box-Muller transform.
// The conjugate value is discarded.
func StandardNormal(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Uniform draws from [min, max). Requires min <= max.
func Uniform(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// LogNormalWithinBounds draws a right-skewed value in [min, max] whose mode sits
// near 20% of the range. Draws outside the range are rejected up to 20 times,
// after which the last draw is clamped.
func LogNormalWithinBounds(rng *rand.Rand, min, max, skew float64) float64 {
	width := max - min
	if width <= 0 {
		return min
	}

	sigma := skew
	// mode = exp(mu - sigma^2)
	mu := math.Log(width*logNormalModeShare) + sigma*sigma

	var value float64
	for attempt := 0; attempt < maxRejectionAttempts; attempt++ {
		value = math.Exp(mu + sigma*StandardNormal(rng))
		if value >= 0 && value <= width {
			return value + min
		}
	}

	return clamp(value, 0, width) + min
}

// Pareto draws xMin / U^(1/alpha), capped at xMax.
func Pareto(rng *rand.Rand, xMin, alpha, xMax float64) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	value := xMin / math.Pow(u, 1/alpha)
	if value > xMax {
		return xMax
	}
	return value
}

// SampleReturnMultiple draws a multiple within a bucket range.
// Total-loss buckets return 0, narrow ranges are uniform, outlier buckets follow
// a Pareto tail and everything else is log-normal.
func SampleReturnMultiple(rng *rand.Rand, min, max float64, isOutlier bool) float64 {
	switch {
	case min == 0 && max == 0:
		return 0
	case max-min < narrowRange:
		return Uniform(rng, min, max)
	case isOutlier:
		return Pareto(rng, min, ParetoAlpha, max)
	default:
		return LogNormalWithinBounds(rng, min, max, LogNormalSkew)
	}
}

// exitTiming is the target mean and standard deviation of exit year for one outcome tier.
type exitTiming struct {
	mean   float64
	stddev float64
}

// exitTimingFor maps outcome quality to exit timing: failures exit fastest,
// outliers slowest, and seed outliers about a year after later-stage ones.
func exitTimingFor(multiple float64, stage domain.Stage) exitTiming {
	switch {
	case multiple < domain.WriteOffMultiple:
		return exitTiming{mean: 4.5, stddev: 1.5}
	case multiple < 1:
		return exitTiming{mean: 5.5, stddev: 1.5}
	case multiple < 3:
		return exitTiming{mean: 6.5, stddev: 2.0}
	case multiple < 10:
		return exitTiming{mean: 7.5, stddev: 2.0}
	case stage == domain.StageSeed:
		return exitTiming{mean: 9.5, stddev: 2.0}
	default:
		return exitTiming{mean: 8.5, stddev: 2.0}
	}
}

// SampleExitYear draws a fractional exit year for a company with the given multiple.
// The draw is log-normal with the tier's mean/stddev, clamped to [windowMin, windowMax+2].
func SampleExitYear(rng *rand.Rand, returnMultiple float64, stage domain.Stage, windowMin, windowMax int) float64 {
	timing := exitTimingFor(returnMultiple, stage)

	sigmaSq := math.Log(1 + (timing.stddev*timing.stddev)/(timing.mean*timing.mean))
	mu := math.Log(timing.mean) - sigmaSq/2
	year := math.Exp(mu + math.Sqrt(sigmaSq)*StandardNormal(rng))

	return clamp(year, float64(windowMin), float64(windowMax+2))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
