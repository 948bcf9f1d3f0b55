package metrics

import (
	"fmt"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
)

// HistogramBin is one bucket of a distribution. The range is [Min, Max),
// except the final bin which includes Max.
type HistogramBin struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// BuildHistogram splits values into equal-width bins between their min and max.
// A degenerate range collapses to a single bin.
func BuildHistogram(values []float64, bins int) ([]HistogramBin, error) {
	if len(values) == 0 {
		return nil, ErrEmptyDataset
	}
	if bins < 1 {
		return nil, fmt.Errorf("%w: bins must be >= 1, got %d", domain.ErrInvalidInput, bins)
	}
	if !allFinite(values) {
		return nil, fmt.Errorf("%w: non-finite value in histogram input", domain.ErrInvalidInput)
	}

	sorted := sortedCopy(values)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []HistogramBin{{Min: lo, Max: hi, Count: len(values)}}, nil
	}

	width := (hi - lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Min = lo + float64(i)*width
		out[i].Max = lo + float64(i+1)*width
	}
	out[bins-1].Max = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out, nil
}
