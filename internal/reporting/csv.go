package reporting

import (
	"fmt"
	"strings"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
)

// RenderGridCSV renders grid scenarios as CSV string, one row per cell.
func RenderGridCSV(scenarios []domain.GridScenario) string {
	var sb strings.Builder

	// Header
	sb.WriteString("num_companies,seed_percentage,median_moic,moic_p10,moic_p90,mean_moic,")
	sb.WriteString("median_irr,prob_moic_2x,prob_moic_3x,deployment_rate,efficiency_score\n")

	// Rows
	for _, s := range scenarios {
		sb.WriteString(fmt.Sprintf("%d,%.2f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			s.NumCompanies,
			s.SeedPercentage,
			s.Summary.MedianMOIC,
			s.Summary.MOICP10,
			s.Summary.MOICP90,
			s.Summary.MeanMOIC,
			s.Summary.MedianIRR,
			s.Summary.ProbMOICAbove2x,
			s.Summary.ProbMOICAbove3x,
			s.DeploymentRate,
			s.EfficiencyScore(),
		))
	}

	return sb.String()
}
