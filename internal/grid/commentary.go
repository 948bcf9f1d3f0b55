package grid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
)

// lowDeploymentRate flags cells that leave a large share of the fund uninvested.
const lowDeploymentRate = 0.7

// GenerateCommentary writes a plain-language summary of a grid.
// Paragraphs: overall range, best cell, seed mix trend, concentration trend, deployment warning.
func GenerateCommentary(scenarios []domain.GridScenario, params domain.GridAnalysisParameters) string {
	if len(scenarios) == 0 {
		return "No scenarios completed, so no commentary is available."
	}

	var b strings.Builder

	lo := scenarios[pick(scenarios, medianMOIC, true)]
	hi := scenarios[pick(scenarios, medianMOIC, false)]
	fmt.Fprintf(&b, "Across %d scenarios for a $%.0fM fund (%d simulations each), median gross MOIC ranged from %.2fx to %.2fx.",
		len(scenarios), params.FundSize/1e6, params.NumSimulations, lo.Summary.MedianMOIC, hi.Summary.MedianMOIC)

	b.WriteString("\n\n")
	fmt.Fprintf(&b, "The strongest configuration was %s, with a median IRR of %.1f%% and a %.0f%% chance of returning 3x or more.",
		hi.Key(), hi.Summary.MedianIRR*100, hi.Summary.ProbMOICAbove3x*100)

	if trend := seedMixTrend(scenarios); trend != "" {
		b.WriteString("\n\n")
		b.WriteString(trend)
	}
	if trend := concentrationTrend(scenarios); trend != "" {
		b.WriteString("\n\n")
		b.WriteString(trend)
	}

	var underDeployed []string
	for _, s := range scenarios {
		if s.DeploymentRate < lowDeploymentRate {
			underDeployed = append(underDeployed, s.Key())
		}
	}
	if len(underDeployed) > 0 {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "Warning: %d scenario(s) deploy less than %.0f%% of the fund, for example %s. Consider larger checks or more companies.",
			len(underDeployed), lowDeploymentRate*100, underDeployed[0])
	}

	return b.String()
}

// averageBy groups scenarios by key and averages their median MOIC.
func averageBy[K int | float64](scenarios []domain.GridScenario, key func(domain.GridScenario) K) ([]K, map[K]float64) {
	sums := make(map[K]float64)
	counts := make(map[K]int)
	for _, s := range scenarios {
		k := key(s)
		sums[k] += s.Summary.MedianMOIC
		counts[k]++
	}
	keys := make([]K, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
		sums[k] /= float64(counts[k])
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, sums
}

func seedMixTrend(scenarios []domain.GridScenario) string {
	keys, avg := averageBy(scenarios, func(s domain.GridScenario) float64 { return s.SeedPercentage })
	if len(keys) < 2 {
		return ""
	}
	first, last := keys[0], keys[len(keys)-1]
	diff := avg[last] - avg[first]
	switch {
	case diff > 0.05:
		return fmt.Sprintf("Seed-heavy portfolios outperformed: moving from %.0f%% to %.0f%% seed lifted average median MOIC from %.2fx to %.2fx.",
			first, last, avg[first], avg[last])
	case diff < -0.05:
		return fmt.Sprintf("Later-stage tilts held up better: average median MOIC fell from %.2fx at %.0f%% seed to %.2fx at %.0f%% seed.",
			avg[first], first, avg[last], last)
	default:
		return fmt.Sprintf("Stage mix had little effect on median MOIC (%.2fx at %.0f%% seed vs %.2fx at %.0f%% seed).",
			avg[first], first, avg[last], last)
	}
}

func concentrationTrend(scenarios []domain.GridScenario) string {
	keys, avg := averageBy(scenarios, func(s domain.GridScenario) int { return s.NumCompanies })
	if len(keys) < 2 {
		return ""
	}
	first, last := keys[0], keys[len(keys)-1]
	diff := avg[last] - avg[first]
	switch {
	case diff > 0.05:
		return fmt.Sprintf("Diversification helped: %d-company portfolios averaged %.2fx median MOIC against %.2fx for %d companies.",
			last, avg[last], avg[first], first)
	case diff < -0.05:
		return fmt.Sprintf("Concentration paid off: %d-company portfolios averaged %.2fx median MOIC against %.2fx for %d companies.",
			first, avg[first], avg[last], last)
	default:
		return fmt.Sprintf("Portfolio size had little effect on median MOIC between %d and %d companies.", first, last)
	}
}
