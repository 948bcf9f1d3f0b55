package domain

import (
	"fmt"
	"math"
)

// probabilityTolerance is the allowed drift from 100 when summing bucket probabilities.
const probabilityTolerance = 0.01

// FeeStructure holds fund fee terms. All fields are percentages.
type FeeStructure struct {
	ManagementFeeRate     float64 `json:"managementFeeRate"`     // during investment period
	ManagementFeeStepDown float64 `json:"managementFeeStepDown"` // after investment period
	CarryRate             float64 `json:"carryRate"`
	HurdleRate            float64 `json:"hurdleRate"` // simple annual preferred return
	GPCommitPercent       float64 `json:"gpCommitPercent"`
}

// DefaultFeeStructure returns standard 2/20 terms with a 1.5% step-down and 8% hurdle.
func DefaultFeeStructure() FeeStructure {
	return FeeStructure{
		ManagementFeeRate:     2,
		ManagementFeeStepDown: 1.5,
		CarryRate:             20,
		HurdleRate:            8,
		GPCommitPercent:       2,
	}
}

// PortfolioParameters configures one portfolio simulation.
type PortfolioParameters struct {
	FundSize         float64         `json:"fundSize"`
	NumCompanies     int             `json:"numCompanies"`
	SeedPercentage   float64         `json:"seedPercentage"` // share of companies entered at seed (0-100)
	SeedStage        StageParameters `json:"seedStage"`
	SeriesAStage     StageParameters `json:"seriesAStage"`
	InvestmentPeriod int             `json:"investmentPeriod"` // years
	FundLife         int             `json:"fundLife"`         // years
	ExitWindowMin    int             `json:"exitWindowMin"`
	ExitWindowMax    int             `json:"exitWindowMax"`
	NumSimulations   int             `json:"numSimulations"`
	FeeStructure     *FeeStructure   `json:"feeStructure,omitempty"`
}

// DefaultPortfolioParameters returns a $100M early-stage fund with 25 companies.
func DefaultPortfolioParameters() PortfolioParameters {
	return PortfolioParameters{
		FundSize:         100_000_000,
		NumCompanies:     25,
		SeedPercentage:   60,
		SeedStage:        DefaultSeedStage(),
		SeriesAStage:     DefaultSeriesAStage(),
		InvestmentPeriod: 5,
		FundLife:         10,
		ExitWindowMin:    3,
		ExitWindowMax:    10,
		NumSimulations:   1000,
	}
}

// StageSplit returns how many companies are seed and series A.
// Seed count is round(numCompanies * seedPercentage / 100).
func (p PortfolioParameters) StageSplit() (seed, seriesA int) {
	seed = int(math.Round(float64(p.NumCompanies) * p.SeedPercentage / 100))
	if seed > p.NumCompanies {
		seed = p.NumCompanies
	}
	return seed, p.NumCompanies - seed
}

// TargetCapital returns the capital needed to fund every company including reserves.
func (p PortfolioParameters) TargetCapital() float64 {
	seed, seriesA := p.StageSplit()
	return float64(seed)*p.SeedStage.CapitalPerCompany() + float64(seriesA)*p.SeriesAStage.CapitalPerCompany()
}

// Validate checks parameters before simulation.
// investmentPeriod > fundLife is allowed: step-down years clamp at zero.
func (p PortfolioParameters) Validate() error {
	if p.FundSize <= 0 {
		return fmt.Errorf("%w: fund size must be positive, got %v", ErrInvalidInput, p.FundSize)
	}
	if p.NumCompanies < 1 {
		return fmt.Errorf("%w: numCompanies must be >= 1, got %d", ErrInvalidInput, p.NumCompanies)
	}
	if p.NumSimulations < 1 {
		return fmt.Errorf("%w: numSimulations must be >= 1, got %d", ErrInvalidInput, p.NumSimulations)
	}
	if p.SeedPercentage < 0 || p.SeedPercentage > 100 {
		return fmt.Errorf("%w: seedPercentage must be within [0, 100], got %v", ErrInvalidInput, p.SeedPercentage)
	}
	if p.InvestmentPeriod < 1 || p.FundLife < 1 {
		return fmt.Errorf("%w: investment period and fund life must be >= 1 year", ErrInvalidInput)
	}
	if p.ExitWindowMin >= p.ExitWindowMax {
		return fmt.Errorf("%w: exit window min (%d) must be below max (%d)", ErrInvalidInput, p.ExitWindowMin, p.ExitWindowMax)
	}

	seed, seriesA := p.StageSplit()
	if seed > 0 {
		if err := validateStage(StageSeed, p.SeedStage); err != nil {
			return err
		}
	}
	if seriesA > 0 {
		if err := validateStage(StageSeriesA, p.SeriesAStage); err != nil {
			return err
		}
	}

	if p.FeeStructure != nil {
		if err := p.FeeStructure.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks fee terms are non-negative percentages.
func (f FeeStructure) Validate() error {
	// Checked in declaration order so the reported field is stable.
	rates := []struct {
		name  string
		value float64
	}{
		{"managementFeeRate", f.ManagementFeeRate},
		{"managementFeeStepDown", f.ManagementFeeStepDown},
		{"carryRate", f.CarryRate},
		{"hurdleRate", f.HurdleRate},
		{"gpCommitPercent", f.GPCommitPercent},
	}
	for _, r := range rates {
		if r.value < 0 || r.value > 100 {
			return fmt.Errorf("%w: %s must be within [0, 100], got %v", ErrInvalidInput, r.name, r.value)
		}
	}
	return nil
}

func validateStage(stage Stage, s StageParameters) error {
	if s.AvgCheckSize <= 0 {
		return fmt.Errorf("%w: %s check size must be positive", ErrInvalidInput, stage)
	}
	if s.FollowOnReserveRatio < 0 {
		return fmt.Errorf("%w: %s follow-on reserve ratio must be >= 0", ErrInvalidInput, stage)
	}
	if len(s.ExitBuckets) == 0 {
		return fmt.Errorf("%w: %s has no exit buckets", ErrInvalidInput, stage)
	}
	for _, b := range s.ExitBuckets {
		if b.Probability < 0 {
			return fmt.Errorf("%w: %s bucket %q has negative probability", ErrInvalidInput, stage, b.Label)
		}
		if b.MinMultiple < 0 || b.MinMultiple > b.MaxMultiple {
			return fmt.Errorf("%w: %s bucket %q has invalid multiple range [%v, %v]",
				ErrInvalidInput, stage, b.Label, b.MinMultiple, b.MaxMultiple)
		}
	}
	if total := s.ProbabilityTotal(); math.Abs(total-100) > probabilityTolerance {
		return fmt.Errorf("%w: %s bucket probabilities sum to %.2f, want 100", ErrInvalidInput, stage, total)
	}
	return nil
}
