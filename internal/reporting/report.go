package reporting

import (
	"time"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/fees"
	"github.com/Psymen/fundsimulation-sub000/internal/metrics"
)

// HistogramBins is the number of MOIC bins in a run report.
const HistogramBins = 10

// RunReport is the rendered view of one portfolio analysis.
type RunReport struct {
	GeneratedAt time.Time

	RunID       string
	Fingerprint string
	Seed        uint64
	Parameters  domain.PortfolioParameters
	Summary     domain.SummaryStatistics

	// MOICHistogram bins gross MOIC across realizations.
	MOICHistogram []metrics.HistogramBin

	// Bands is empty when no timeline was stored for the run.
	Bands []domain.YearlyMetricsBand

	// FeeDrag is present only when the run carried fee terms.
	FeeDrag []fees.FeeDragRow
}

// GridReport is the rendered view of one grid analysis.
type GridReport struct {
	GeneratedAt time.Time

	AnalysisID  string
	Fingerprint string
	Seed        uint64
	Parameters  domain.GridAnalysisParameters
	Result      domain.GridAnalysisResult
}
