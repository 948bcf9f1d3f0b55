package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestPortfolioParameters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *PortfolioParameters)
		wantErr bool
	}{
		{"defaults", func(p *PortfolioParameters) {}, false},
		{"zero fund size", func(p *PortfolioParameters) { p.FundSize = 0 }, true},
		{"no companies", func(p *PortfolioParameters) { p.NumCompanies = 0 }, true},
		{"no simulations", func(p *PortfolioParameters) { p.NumSimulations = 0 }, true},
		{"seed pct above 100", func(p *PortfolioParameters) { p.SeedPercentage = 101 }, true},
		{"empty exit window", func(p *PortfolioParameters) { p.ExitWindowMin = p.ExitWindowMax }, true},
		{"investment period beyond fund life", func(p *PortfolioParameters) { p.InvestmentPeriod = 12 }, false},
		{"probabilities off by more than tolerance", func(p *PortfolioParameters) {
			p.SeedStage.ExitBuckets[0].Probability = 49.9
		}, true},
		{"probabilities within tolerance", func(p *PortfolioParameters) {
			p.SeedStage.ExitBuckets[0].Probability = 49.995
		}, false},
		{"inverted bucket", func(p *PortfolioParameters) {
			p.SeriesAStage.ExitBuckets[2].MinMultiple = 5
		}, true},
		{"unused stage is not validated", func(p *PortfolioParameters) {
			p.SeedPercentage = 0
			p.SeedStage.ExitBuckets = nil
		}, false},
		{"invalid fee terms", func(p *PortfolioParameters) {
			fs := DefaultFeeStructure()
			fs.CarryRate = -1
			p.FeeStructure = &fs
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPortfolioParameters()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPortfolioParameters_StageSplit(t *testing.T) {
	tests := []struct {
		companies   int
		pct         float64
		wantSeed    int
		wantSeriesA int
	}{
		{25, 60, 15, 10},
		{10, 0, 0, 10},
		{10, 100, 10, 0},
		{3, 50, 2, 1}, // 1.5 rounds half away from zero
	}

	for _, tt := range tests {
		p := PortfolioParameters{NumCompanies: tt.companies, SeedPercentage: tt.pct}
		seed, seriesA := p.StageSplit()
		if seed != tt.wantSeed || seriesA != tt.wantSeriesA {
			t.Errorf("StageSplit(%d, %v) = (%d, %d), want (%d, %d)",
				tt.companies, tt.pct, seed, seriesA, tt.wantSeed, tt.wantSeriesA)
		}
	}
}

func TestPortfolioParameters_TargetCapital(t *testing.T) {
	p := DefaultPortfolioParameters()
	// 15 seed at 2.25M + 10 series A at 6M
	want := 15*2_250_000.0 + 10*6_000_000.0
	if got := p.TargetCapital(); math.Abs(got-want) > 1e-6 {
		t.Errorf("TargetCapital() = %v, want %v", got, want)
	}
}

func TestGridAnalysisParameters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(g *GridAnalysisParameters)
		wantErr bool
	}{
		{"defaults", func(g *GridAnalysisParameters) {}, false},
		{"inverted range", func(g *GridAnalysisParameters) { g.InvestmentCountMax = 5 }, true},
		{"zero min", func(g *GridAnalysisParameters) { g.InvestmentCountMin = 0 }, true},
		{"no seed percentages", func(g *GridAnalysisParameters) { g.SeedPercentages = nil }, true},
		{"seed percentage out of range", func(g *GridAnalysisParameters) { g.SeedPercentages = []float64{50, 120} }, true},
		{"cell parameters invalid", func(g *GridAnalysisParameters) { g.NumSimulations = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := DefaultGridAnalysisParameters()
			tt.mutate(&g)

			err := g.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestGridScenario_EfficiencyScore(t *testing.T) {
	s := GridScenario{
		NumCompanies:   20,
		SeedPercentage: 50,
		Summary:        SummaryStatistics{MedianMOIC: 3},
		DeploymentRate: 0.8,
	}
	if got := s.EfficiencyScore(); math.Abs(got-2.4) > 1e-12 {
		t.Errorf("EfficiencyScore() = %v, want 2.4", got)
	}
	if got := s.Key(); got != "20 companies @ 50% seed" {
		t.Errorf("Key() = %q", got)
	}
}

func TestFeeStructure_ValidateReportsFirstField(t *testing.T) {
	f := FeeStructure{
		ManagementFeeRate:     2,
		ManagementFeeStepDown: -1,
		CarryRate:             120,
		HurdleRate:            -5,
		GPCommitPercent:       200,
	}
	want := "managementFeeStepDown must be within [0, 100], got -1"
	for i := 0; i < 20; i++ {
		err := f.Validate()
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("attempt %d: error %q does not name %q", i, err, want)
		}
	}

	f.ManagementFeeStepDown = 1.5
	if err := f.Validate(); err == nil || !strings.Contains(err.Error(), "carryRate") {
		t.Errorf("expected carryRate error, got %v", err)
	}
}
