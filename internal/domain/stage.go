package domain

// Stage identifies the investment stage a company was entered at.
type Stage string

// Stage constants
const (
	StageSeed    Stage = "seed"
	StageSeriesA Stage = "series_a"
)

// ExitBucket is one probability-weighted class of company outcome.
// Probability is a percentage (0-100); multiples are on invested capital.
type ExitBucket struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
	MinMultiple float64 `json:"minMultiple"`
	MaxMultiple float64 `json:"maxMultiple"`
}

// IsTotalLoss reports whether the bucket always returns zero.
func (b ExitBucket) IsTotalLoss() bool {
	return b.MinMultiple == 0 && b.MaxMultiple == 0
}

// StageParameters describes the economics of one investment stage.
type StageParameters struct {
	AvgCheckSize         float64      `json:"avgCheckSize"`
	FollowOnReserveRatio float64      `json:"followOnReserveRatio"` // percent of initial check held for follow-ons
	TargetOwnership      float64      `json:"targetOwnership"`      // informational only
	ExitBuckets          []ExitBucket `json:"exitBuckets"`
}

// CapitalPerCompany returns initial check plus follow-on reserves.
func (s StageParameters) CapitalPerCompany() float64 {
	return s.AvgCheckSize * (1 + s.FollowOnReserveRatio/100)
}

// ProbabilityTotal sums bucket probabilities.
func (s StageParameters) ProbabilityTotal() float64 {
	total := 0.0
	for _, b := range s.ExitBuckets {
		total += b.Probability
	}
	return total
}

// DefaultSeedStage returns calibrated seed-stage economics.
func DefaultSeedStage() StageParameters {
	return StageParameters{
		AvgCheckSize:         1_500_000,
		FollowOnReserveRatio: 50,
		TargetOwnership:      10,
		ExitBuckets: []ExitBucket{
			{Label: "Total Loss", Probability: 50, MinMultiple: 0, MaxMultiple: 0},
			{Label: "Partial Loss", Probability: 20, MinMultiple: 0.1, MaxMultiple: 1},
			{Label: "Return Capital", Probability: 15, MinMultiple: 1, MaxMultiple: 3},
			{Label: "Good Outcome", Probability: 10, MinMultiple: 3, MaxMultiple: 10},
			{Label: "Great Outcome", Probability: 4, MinMultiple: 10, MaxMultiple: 30},
			{Label: "Outlier", Probability: 1, MinMultiple: 30, MaxMultiple: 100},
		},
	}
}

// DefaultSeriesAStage returns calibrated series-A economics.
func DefaultSeriesAStage() StageParameters {
	return StageParameters{
		AvgCheckSize:         4_000_000,
		FollowOnReserveRatio: 50,
		TargetOwnership:      12,
		ExitBuckets: []ExitBucket{
			{Label: "Total Loss", Probability: 35, MinMultiple: 0, MaxMultiple: 0},
			{Label: "Partial Loss", Probability: 25, MinMultiple: 0.1, MaxMultiple: 1},
			{Label: "Return Capital", Probability: 20, MinMultiple: 1, MaxMultiple: 3},
			{Label: "Good Outcome", Probability: 12, MinMultiple: 3, MaxMultiple: 8},
			{Label: "Great Outcome", Probability: 6, MinMultiple: 8, MaxMultiple: 20},
			{Label: "Outlier", Probability: 2, MinMultiple: 20, MaxMultiple: 50},
		},
	}
}
