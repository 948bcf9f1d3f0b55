package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/fees"
)

// RenderRunMarkdown renders a run report as Markdown.
func RenderRunMarkdown(r *RunReport) string {
	var sb strings.Builder
	p := r.Parameters
	s := r.Summary

	sb.WriteString("# Portfolio Simulation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s` | Fingerprint: `%s` | Seed: %d\n\n", r.RunID, r.Fingerprint, r.Seed))
	}

	// Parameters
	sb.WriteString("## Parameters\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Fund Size | %s |\n", formatMoney(p.FundSize)))
	sb.WriteString(fmt.Sprintf("| Companies | %d |\n", p.NumCompanies))
	sb.WriteString(fmt.Sprintf("| Seed Share | %.0f%% |\n", p.SeedPercentage))
	sb.WriteString(fmt.Sprintf("| Investment Period | %d years |\n", p.InvestmentPeriod))
	sb.WriteString(fmt.Sprintf("| Fund Life | %d years |\n", p.FundLife))
	sb.WriteString(fmt.Sprintf("| Exit Window | %d-%d years |\n", p.ExitWindowMin, p.ExitWindowMax))
	sb.WriteString(fmt.Sprintf("| Simulations | %d |\n", p.NumSimulations))
	sb.WriteString("\n")

	// Gross returns
	sb.WriteString("## Gross Returns\n\n")
	sb.WriteString("| Metric | P10 | Median | P90 | Mean | Std Dev |\n")
	sb.WriteString("|--------|-----|--------|-----|------|---------|\n")
	sb.WriteString(fmt.Sprintf("| MOIC | %.2fx | %.2fx | %.2fx | %.2fx | %.2f |\n",
		s.MOICP10, s.MedianMOIC, s.MOICP90, s.MeanMOIC, s.StdDevMOIC))
	sb.WriteString(fmt.Sprintf("| IRR | %s | %s | %s | %s | %s |\n",
		formatPercent(s.IRRP10), formatPercent(s.MedianIRR), formatPercent(s.IRRP90),
		formatPercent(s.MeanIRR), formatPercent(s.StdDevIRR)))
	sb.WriteString("\n")

	sb.WriteString("| Outcome | Value |\n")
	sb.WriteString("|---------|-------|\n")
	sb.WriteString(fmt.Sprintf("| P(MOIC >= 2x) | %s |\n", formatPercent(s.ProbMOICAbove2x)))
	sb.WriteString(fmt.Sprintf("| P(MOIC >= 3x) | %s |\n", formatPercent(s.ProbMOICAbove3x)))
	sb.WriteString(fmt.Sprintf("| P(MOIC >= 5x) | %s |\n", formatPercent(s.ProbMOICAbove5x)))
	sb.WriteString(fmt.Sprintf("| Avg Write-offs | %.1f |\n", s.AvgWriteOffs))
	sb.WriteString(fmt.Sprintf("| Avg Outliers | %.1f |\n", s.AvgOutliers))
	sb.WriteString("\n")
	if s.IRRNonConverged > 0 {
		sb.WriteString(fmt.Sprintf("**%d of %d realizations have a best-effort IRR estimate.**\n\n",
			s.IRRNonConverged, s.NumSimulations))
	}

	// Net returns
	if n := s.Net; n != nil {
		sb.WriteString("## Net Returns\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Net MOIC (P10 / Median / P90) | %.2fx / %.2fx / %.2fx |\n",
			n.NetMOICP10, n.MedianNetMOIC, n.NetMOICP90))
		sb.WriteString(fmt.Sprintf("| Mean Net MOIC | %.2fx |\n", n.MeanNetMOIC))
		sb.WriteString(fmt.Sprintf("| Avg Fee Drag | %.1f%% |\n", n.AvgFeeDragPercent))
		sb.WriteString(fmt.Sprintf("| Avg Management Fees | %s |\n", formatMoney(n.AvgManagementFees)))
		sb.WriteString(fmt.Sprintf("| Avg Carried Interest | %s |\n", formatMoney(n.AvgCarriedInterest)))
		sb.WriteString(fmt.Sprintf("| P(Net MOIC >= 2x) | %s |\n", formatPercent(n.ProbNetMOICAbove2x)))
		sb.WriteString("\n")
	}

	// Distribution
	sb.WriteString("## MOIC Distribution\n\n")
	if len(r.MOICHistogram) > 0 {
		sb.WriteString("| Range | Count |\n")
		sb.WriteString("|-------|-------|\n")
		for _, b := range r.MOICHistogram {
			sb.WriteString(fmt.Sprintf("| %.2fx - %.2fx | %d |\n", b.Min, b.Max, b.Count))
		}
	} else {
		sb.WriteString("No realizations stored.\n")
	}
	sb.WriteString("\n")

	// Timeline
	sb.WriteString("## Fund Timeline\n\n")
	if len(r.Bands) > 0 {
		sb.WriteString("| Year | DPI P10 | DPI P50 | DPI P90 | RVPI P50 | TVPI P10 | TVPI P50 | TVPI P90 |\n")
		sb.WriteString("|------|---------|---------|---------|----------|----------|----------|----------|\n")
		for _, b := range r.Bands {
			sb.WriteString(fmt.Sprintf("| %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				b.Year, b.DPIP10, b.DPIP50, b.DPIP90, b.RVPIP50, b.TVPIP10, b.TVPIP50, b.TVPIP90))
		}
	} else {
		sb.WriteString("No timeline available.\n")
	}
	sb.WriteString("\n")

	if len(r.FeeDrag) > 0 {
		sb.WriteString(RenderFeeDragMarkdown(r.FeeDrag))
	}

	return sb.String()
}

// RenderFeeDragMarkdown renders a fee drag table as a Markdown section.
func RenderFeeDragMarkdown(rows []fees.FeeDragRow) string {
	var sb strings.Builder

	sb.WriteString("## Fee Drag\n\n")
	sb.WriteString(fmt.Sprintf("Assumes %.0f%% of the fund is deployed.\n\n", fees.DragTableDeployment*100))
	sb.WriteString("| Gross MOIC | Gross Proceeds | Mgmt Fees | Carry | Net to LP | Net MOIC | Drag |\n")
	sb.WriteString("|------------|----------------|-----------|-------|-----------|----------|------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %.1fx | %s | %s | %s | %s | %.2fx | %.1f%% |\n",
			row.GrossMOIC,
			formatMoney(row.GrossProceeds),
			formatMoney(row.ManagementFees),
			formatMoney(row.CarriedInterest),
			formatMoney(row.NetToLP),
			row.NetMOIC,
			row.FeeDragPercent))
	}
	sb.WriteString("\n")

	return sb.String()
}

// RenderGridMarkdown renders a grid report as Markdown.
func RenderGridMarkdown(r *GridReport) string {
	var sb strings.Builder
	p := r.Parameters
	res := r.Result

	sb.WriteString("# Portfolio Construction Grid\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.AnalysisID != "" {
		sb.WriteString(fmt.Sprintf("Analysis: `%s` | Fingerprint: `%s` | Seed: %d\n\n", r.AnalysisID, r.Fingerprint, r.Seed))
	}
	sb.WriteString(fmt.Sprintf("Fund: %s | Companies: %d-%d | Simulations per cell: %d\n\n",
		formatMoney(p.FundSize), p.InvestmentCountMin, p.InvestmentCountMax, p.NumSimulations))

	// Rankings
	sb.WriteString("## Best Strategies\n\n")
	writeStrategies(&sb, res.BestStrategies)
	sb.WriteString("## Worst Strategies\n\n")
	writeStrategies(&sb, res.WorstStrategies)

	// Scenarios
	sb.WriteString("## Scenarios\n\n")
	if len(res.Scenarios) > 0 {
		sb.WriteString("| Companies | Seed % | Median MOIC | P10 | P90 | Median IRR | P(>=2x) | Deployment |\n")
		sb.WriteString("|-----------|--------|-------------|-----|-----|------------|---------|------------|\n")
		for _, sc := range res.Scenarios {
			sb.WriteString(fmt.Sprintf("| %d | %.0f | %.2fx | %.2fx | %.2fx | %s | %s | %s |\n",
				sc.NumCompanies, sc.SeedPercentage,
				sc.Summary.MedianMOIC, sc.Summary.MOICP10, sc.Summary.MOICP90,
				formatPercent(sc.Summary.MedianIRR), formatPercent(sc.Summary.ProbMOICAbove2x),
				formatPercent(sc.DeploymentRate)))
		}
	} else {
		sb.WriteString("No scenarios completed.\n")
	}
	sb.WriteString("\n")

	// Failures (always shown if present)
	if len(res.Failures) > 0 {
		sb.WriteString("### Failed Cells\n\n")
		for _, f := range res.Failures {
			sb.WriteString(fmt.Sprintf("- %d companies @ %.0f%% seed: %s\n", f.NumCompanies, f.SeedPercentage, f.Error))
		}
		sb.WriteString("\n")
	}

	// Commentary
	sb.WriteString("## Commentary\n\n")
	sb.WriteString(res.Commentary)
	sb.WriteString("\n")

	return sb.String()
}

func writeStrategies(sb *strings.Builder, strategies []domain.BestStrategy) {
	if len(strategies) == 0 {
		sb.WriteString("None.\n\n")
		return
	}
	for _, st := range strategies {
		sb.WriteString(fmt.Sprintf("### %s\n\n", st.Title))
		sb.WriteString(fmt.Sprintf("%d companies @ %.0f%% seed: median %.2fx, IRR %s, P10 %.2fx, deployment %s.\n\n",
			st.NumCompanies, st.SeedPercentage, st.MedianMOIC, formatPercent(st.MedianIRR),
			st.MOICP10, formatPercent(st.DeploymentRate)))
		sb.WriteString(st.Rationale)
		sb.WriteString("\n\n")
	}
}

// formatMoney prints dollars in millions.
func formatMoney(v float64) string {
	return fmt.Sprintf("$%.1fM", v/1_000_000)
}

// formatPercent prints a fraction as a percentage.
func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
