package idhash

import (
	"math"
	"testing"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
)

func TestComputeRunFingerprint(t *testing.T) {
	base := domain.DefaultPortfolioParameters()

	changed := base
	changed.NumCompanies = 30

	fs := domain.DefaultFeeStructure()
	withFees := base
	withFees.FeeStructure = &fs

	tests := []struct {
		name     string
		a, b     domain.PortfolioParameters
		seedA    uint64
		seedB    uint64
		wantSame bool
	}{
		{"identical inputs", base, base, 1, 1, true},
		{"different seed", base, base, 1, 2, false},
		{"different company count", base, changed, 1, 1, false},
		{"fee structure added", base, withFees, 1, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ComputeRunFingerprint(tt.a, tt.seedA)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			b, err := ComputeRunFingerprint(tt.b, tt.seedB)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (a == b) != tt.wantSame {
				t.Errorf("fingerprints %q and %q: wantSame=%v", a, b, tt.wantSame)
			}
		})
	}
}

func TestComputeFingerprint_KindSeparatesNamespaces(t *testing.T) {
	params := map[string]int{"x": 1}
	run, _ := ComputeFingerprint(KindRun, 1, params)
	grid, _ := ComputeFingerprint(KindGrid, 1, params)
	if run == grid {
		t.Error("expected run and grid fingerprints to differ")
	}
}

func TestComputeFingerprint_RoundTrip(t *testing.T) {
	fp, err := ComputeGridFingerprint(domain.DefaultGridAnalysisParameters(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := Decode(fp)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("expected 32-byte digest, got %d", len(raw))
	}

	if _, err := Decode("0OIl"); err == nil {
		t.Error("expected error for invalid base58")
	}
}

func TestComputeFingerprint_UnencodableParams(t *testing.T) {
	p := domain.DefaultPortfolioParameters()
	p.FundSize = math.NaN()
	if _, err := ComputeRunFingerprint(p, 1); err == nil {
		t.Error("expected error for NaN parameters")
	}
}
