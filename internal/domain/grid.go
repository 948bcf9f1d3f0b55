package domain

import "fmt"

// MaxInvestmentCountBuckets caps how many portfolio sizes a grid evaluates.
const MaxInvestmentCountBuckets = 10

// GridAnalysisParameters configures a portfolio-construction grid search.
type GridAnalysisParameters struct {
	FundSize           float64         `json:"fundSize"`
	InvestmentCountMin int             `json:"investmentCountMin"`
	InvestmentCountMax int             `json:"investmentCountMax"`
	SeedPercentages    []float64       `json:"seedPercentages"`
	SeedStage          StageParameters `json:"seedStage"`
	SeriesAStage       StageParameters `json:"seriesAStage"`
	InvestmentPeriod   int             `json:"investmentPeriod"`
	FundLife           int             `json:"fundLife"`
	ExitWindowMin      int             `json:"exitWindowMin"`
	ExitWindowMax      int             `json:"exitWindowMax"`
	NumSimulations     int             `json:"numSimulations"`
	FeeStructure       *FeeStructure   `json:"feeStructure,omitempty"`
}

// DefaultGridAnalysisParameters returns a 10-50 company by 0-100% seed grid.
func DefaultGridAnalysisParameters() GridAnalysisParameters {
	base := DefaultPortfolioParameters()
	return GridAnalysisParameters{
		FundSize:           base.FundSize,
		InvestmentCountMin: 10,
		InvestmentCountMax: 50,
		SeedPercentages:    []float64{0, 25, 50, 75, 100},
		SeedStage:          base.SeedStage,
		SeriesAStage:       base.SeriesAStage,
		InvestmentPeriod:   base.InvestmentPeriod,
		FundLife:           base.FundLife,
		ExitWindowMin:      base.ExitWindowMin,
		ExitWindowMax:      base.ExitWindowMax,
		NumSimulations:     200,
	}
}

// PortfolioFor builds the portfolio parameters of one grid cell.
func (g GridAnalysisParameters) PortfolioFor(numCompanies int, seedPercentage float64) PortfolioParameters {
	return PortfolioParameters{
		FundSize:         g.FundSize,
		NumCompanies:     numCompanies,
		SeedPercentage:   seedPercentage,
		SeedStage:        g.SeedStage,
		SeriesAStage:     g.SeriesAStage,
		InvestmentPeriod: g.InvestmentPeriod,
		FundLife:         g.FundLife,
		ExitWindowMin:    g.ExitWindowMin,
		ExitWindowMax:    g.ExitWindowMax,
		NumSimulations:   g.NumSimulations,
		FeeStructure:     g.FeeStructure,
	}
}

// Validate checks grid ranges. Per-cell parameters are validated when each cell runs.
func (g GridAnalysisParameters) Validate() error {
	if g.InvestmentCountMin < 1 || g.InvestmentCountMax < g.InvestmentCountMin {
		return fmt.Errorf("%w: investment count range [%d, %d] is invalid",
			ErrInvalidInput, g.InvestmentCountMin, g.InvestmentCountMax)
	}
	if len(g.SeedPercentages) == 0 {
		return fmt.Errorf("%w: at least one seed percentage is required", ErrInvalidInput)
	}
	for _, pct := range g.SeedPercentages {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: seed percentage %v outside [0, 100]", ErrInvalidInput, pct)
		}
	}
	// Validate the smallest cell first so range-independent errors surface before any work starts.
	return g.PortfolioFor(g.InvestmentCountMin, g.SeedPercentages[0]).Validate()
}

// GridScenario is one evaluated grid cell.
type GridScenario struct {
	NumCompanies   int                `json:"numCompanies"`
	SeedPercentage float64            `json:"seedPercentage"`
	Summary        SummaryStatistics  `json:"summary"`
	Results        []SimulationResult `json:"results"`

	// Deployment metrics
	AvgInvestedCapital  float64 `json:"avgInvestedCapital"`
	DeploymentRate      float64 `json:"deploymentRate"` // avg invested / fund size
	AvgSeedCompanies    float64 `json:"avgSeedCompanies"`
	AvgSeriesACompanies float64 `json:"avgSeriesACompanies"`
	TargetCapital       float64 `json:"targetCapital"`
}

// EfficiencyScore is median MOIC weighted by how much of the fund was deployed.
func (s GridScenario) EfficiencyScore() float64 {
	return s.Summary.MedianMOIC * s.DeploymentRate
}

// Key returns a display label for the cell.
func (s GridScenario) Key() string {
	return fmt.Sprintf("%d companies @ %.0f%% seed", s.NumCompanies, s.SeedPercentage)
}

// CellFailure records a grid cell that could not be evaluated.
type CellFailure struct {
	NumCompanies   int     `json:"numCompanies"`
	SeedPercentage float64 `json:"seedPercentage"`
	Error          string  `json:"error"`
}

// Strategy ranking categories
const (
	CategoryHighestMedianMOIC = "highest_median_moic"
	CategoryHighestMedianIRR  = "highest_median_irr"
	CategoryBestDownside      = "best_downside_protection"
	CategoryMostEfficient     = "most_capital_efficient"
	CategoryLowestMedianMOIC  = "lowest_median_moic"
	CategoryWorstDownside     = "worst_downside"
	CategoryLeastEfficient    = "least_capital_efficient"
)

// BestStrategy is a ranked grid cell with its rationale.
// Worst-case selections use the same shape.
type BestStrategy struct {
	Category       string  `json:"category"`
	Title          string  `json:"title"`
	NumCompanies   int     `json:"numCompanies"`
	SeedPercentage float64 `json:"seedPercentage"`
	MedianMOIC     float64 `json:"medianMOIC"`
	MedianIRR      float64 `json:"medianIRR"`
	MOICP10        float64 `json:"moicP10"`
	DeploymentRate float64 `json:"deploymentRate"`
	Rationale      string  `json:"rationale"`
}

// GridAnalysisResult is the ranked output of a grid search.
type GridAnalysisResult struct {
	Scenarios       []GridScenario `json:"scenarios"`
	BestStrategies  []BestStrategy `json:"bestStrategies"`
	WorstStrategies []BestStrategy `json:"worstStrategies"`
	Commentary      string         `json:"commentary"`
	Failures        []CellFailure  `json:"failures,omitempty"`
}
