package domain

import "time"

// RunRecord is a persisted single-portfolio analysis.
type RunRecord struct {
	ID          string              `json:"id"`
	Timestamp   time.Time           `json:"timestamp"`
	Fingerprint string              `json:"fingerprint"` // base58 hash of parameters + seed
	Seed        uint64              `json:"seed"`
	Parameters  PortfolioParameters `json:"parameters"`
	Summary     SummaryStatistics   `json:"summary"`
	Results     []SimulationResult  `json:"results"`
}

// GridAnalysisRecord is a persisted grid analysis.
type GridAnalysisRecord struct {
	ID              string                 `json:"id"`
	Timestamp       time.Time              `json:"timestamp"`
	Fingerprint     string                 `json:"fingerprint"`
	Seed            uint64                 `json:"seed"`
	Parameters      GridAnalysisParameters `json:"parameters"`
	Scenarios       []GridScenario         `json:"scenarios"`
	BestStrategies  []BestStrategy         `json:"bestStrategies"`
	WorstStrategies []BestStrategy         `json:"worstStrategies"`
	Commentary      string                 `json:"commentary"`
	Failures        []CellFailure          `json:"failures,omitempty"`
}
