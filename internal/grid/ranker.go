package grid

import (
	"fmt"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
)

// pick returns the index of the scenario that maximises score. Ties keep the earliest cell.
func pick(scenarios []domain.GridScenario, score func(domain.GridScenario) float64, lowest bool) int {
	best := 0
	for i := 1; i < len(scenarios); i++ {
		a, b := score(scenarios[i]), score(scenarios[best])
		if (!lowest && a > b) || (lowest && a < b) {
			best = i
		}
	}
	return best
}

func sameCell(a, b domain.GridScenario) bool {
	return a.NumCompanies == b.NumCompanies && a.SeedPercentage == b.SeedPercentage
}

func medianMOIC(s domain.GridScenario) float64 { return s.Summary.MedianMOIC }
func medianIRR(s domain.GridScenario) float64  { return s.Summary.MedianIRR }
func p10MOIC(s domain.GridScenario) float64    { return s.Summary.MOICP10 }
func efficiency(s domain.GridScenario) float64 { return s.EfficiencyScore() }

func strategy(s domain.GridScenario, category, title, rationale string) domain.BestStrategy {
	return domain.BestStrategy{
		Category:       category,
		Title:          title,
		NumCompanies:   s.NumCompanies,
		SeedPercentage: s.SeedPercentage,
		MedianMOIC:     s.Summary.MedianMOIC,
		MedianIRR:      s.Summary.MedianIRR,
		MOICP10:        s.Summary.MOICP10,
		DeploymentRate: s.DeploymentRate,
		Rationale:      rationale,
	}
}

// IdentifyBestStrategies returns up to four standout cells: highest median MOIC,
// highest median IRR and most capital efficient (each only when it differs from
// the MOIC leader), and best downside protection.
func IdentifyBestStrategies(scenarios []domain.GridScenario) []domain.BestStrategy {
	if len(scenarios) == 0 {
		return nil
	}
	var out []domain.BestStrategy

	top := scenarios[pick(scenarios, medianMOIC, false)]
	out = append(out, strategy(top, domain.CategoryHighestMedianMOIC, "Highest Median Returns",
		fmt.Sprintf("%s delivered the highest median gross MOIC of %.2fx, with %.0f%% of simulations returning at least 2x.",
			top.Key(), top.Summary.MedianMOIC, top.Summary.ProbMOICAbove2x*100)))

	irrLeader := scenarios[pick(scenarios, medianIRR, false)]
	if !sameCell(irrLeader, top) {
		out = append(out, strategy(irrLeader, domain.CategoryHighestMedianIRR, "Highest Median IRR",
			fmt.Sprintf("%s achieved the highest median IRR of %.1f%%, pointing to faster or larger exits than the MOIC leader.",
				irrLeader.Key(), irrLeader.Summary.MedianIRR*100)))
	}

	downside := scenarios[pick(scenarios, p10MOIC, false)]
	out = append(out, strategy(downside, domain.CategoryBestDownside, "Best Downside Protection",
		fmt.Sprintf("%s has the strongest P10 outcome at %.2fx, so even unlucky draws preserve more capital. Median MOIC is %.2fx.",
			downside.Key(), downside.Summary.MOICP10, downside.Summary.MedianMOIC)))

	efficient := scenarios[pick(scenarios, efficiency, false)]
	if !sameCell(efficient, top) {
		out = append(out, strategy(efficient, domain.CategoryMostEfficient, "Most Capital Efficient",
			fmt.Sprintf("%s deploys %.0f%% of the fund at a %.2fx median MOIC, the best return per committed dollar.",
				efficient.Key(), efficient.DeploymentRate*100, efficient.Summary.MedianMOIC)))
	}

	return out
}

// IdentifyWorstStrategies returns up to three cells to avoid: lowest median MOIC,
// and the worst downside and least efficient cells when they differ from it.
func IdentifyWorstStrategies(scenarios []domain.GridScenario) []domain.BestStrategy {
	if len(scenarios) == 0 {
		return nil
	}
	var out []domain.BestStrategy

	bottom := scenarios[pick(scenarios, medianMOIC, true)]
	out = append(out, strategy(bottom, domain.CategoryLowestMedianMOIC, "Lowest Median Returns",
		fmt.Sprintf("%s produced the lowest median gross MOIC of %.2fx; only %.0f%% of simulations reached 2x.",
			bottom.Key(), bottom.Summary.MedianMOIC, bottom.Summary.ProbMOICAbove2x*100)))

	downside := scenarios[pick(scenarios, p10MOIC, true)]
	if !sameCell(downside, bottom) {
		out = append(out, strategy(downside, domain.CategoryWorstDownside, "Worst Downside",
			fmt.Sprintf("%s has the weakest P10 outcome at %.2fx, exposing LPs to the deepest losses in bad draws.",
				downside.Key(), downside.Summary.MOICP10)))
	}

	inefficient := scenarios[pick(scenarios, efficiency, true)]
	if !sameCell(inefficient, bottom) {
		out = append(out, strategy(inefficient, domain.CategoryLeastEfficient, "Least Capital Efficient",
			fmt.Sprintf("%s deploys only %.0f%% of the fund at a %.2fx median MOIC, leaving capital idle or poorly used.",
				inefficient.Key(), inefficient.DeploymentRate*100, inefficient.Summary.MedianMOIC)))
	}

	return out
}
