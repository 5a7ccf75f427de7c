package cli

import (
	"fmt"
	"strings"

	"github.com/calloway/matterwatch/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// RenderRiskProfile formats a matter's risk assessment for the terminal.
func RenderRiskProfile(profile *model.RiskProfile) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Risk Assessment: %s", profile.MatterName)))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(profile.MatterID))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Risk score: %s %s\n",
		BoldStyle.Render(fmt.Sprintf("%d/100", profile.RiskScore)),
		severityStyle(profile.RiskLevel).Render(string(profile.RiskLevel))))

	if profile.BudgetUtilization >= 0 {
		b.WriteString(fmt.Sprintf("Budget utilization: %.0f%%\n", profile.BudgetUtilization*100))
	} else {
		b.WriteString(SubtleStyle.Render("No budget allocated") + "\n")
	}

	if len(profile.Factors) == 0 {
		b.WriteString("\n" + SuccessStyle.Render("No risk factors detected") + "\n")
		return b.String()
	}

	b.WriteString("\nRisk factors:\n")
	for _, factor := range profile.Factors {
		b.WriteString(fmt.Sprintf("  %s %s — %s\n",
			severityStyle(factor.Severity).Render(fmt.Sprintf("[%s]", factor.Severity)),
			BoldStyle.Render(string(factor.Type)),
			factor.Description))
	}

	return b.String()
}

// RenderForecast formats a matter's cost projection for the terminal.
func RenderForecast(forecast *model.ForecastResult) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Cost Forecast: %s", forecast.MatterName)))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(forecast.MatterID))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Current spend:        %s\n", formatMoney(forecast.CurrentSpend)))
	b.WriteString(fmt.Sprintf("Projected final cost: %s\n", BoldStyle.Render(formatMoney(forecast.ProjectedFinalCost))))
	b.WriteString(fmt.Sprintf("Projected remaining:  %s\n", formatMoney(forecast.ProjectedRemainingCost)))

	if forecast.BudgetSet {
		b.WriteString(fmt.Sprintf("Budget:               %s\n", formatMoney(forecast.Budget)))
		b.WriteString(fmt.Sprintf("Remaining budget:     %s\n", formatMoney(forecast.RemainingBudget)))
		b.WriteString(fmt.Sprintf("Budget variance:      %s (%+.1f%%)\n",
			formatMoney(forecast.BudgetVarianceAmount), forecast.BudgetVariancePct))
		b.WriteString(fmt.Sprintf("Status:               %s\n",
			budgetStatusStyle(forecast.BudgetStatus).Render(string(forecast.BudgetStatus))))
	} else {
		b.WriteString(SubtleStyle.Render("No budget allocated") + "\n")
	}

	b.WriteString(fmt.Sprintf("\nConfidence: %.0f%%  ", forecast.ConfidenceScore*100))
	switch forecast.Basis {
	case model.BasisModel:
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("(model %s)", forecast.ModelVersion)))
	case model.BasisExtrapolation:
		b.WriteString(SubtleStyle.Render("(burn-rate extrapolation)"))
	case model.BasisInsufficient:
		b.WriteString(WarningStyle.Render("(insufficient billing history)"))
	}
	b.WriteString("\n")

	return b.String()
}

// RenderMattersTable formats a matter list as an aligned table.
func RenderMattersTable(matters []model.Matter) string {
	if len(matters) == 0 {
		return SubtleStyle.Render("No matters found") + "\n"
	}

	var b strings.Builder
	header := fmt.Sprintf("%-12s %-40s %-12s %-8s %14s", "ID", "NAME", "CATEGORY", "STATUS", "BUDGET")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for _, m := range matters {
		budget := "—"
		if m.HasBudget() {
			budget = formatMoney(*m.Budget)
		}
		b.WriteString(fmt.Sprintf("%-12s %-40s %-12s %-8s %14s\n",
			m.ID, truncate(m.Name, 40), m.Category, m.Status, budget))
	}

	return b.String()
}

func severityStyle(severity model.RiskSeverity) lipgloss.Style {
	switch severity {
	case model.SeverityHigh:
		return ErrorStyle
	case model.SeverityMedium:
		return WarningStyle
	default:
		return SuccessStyle
	}
}

func budgetStatusStyle(status model.BudgetStatus) lipgloss.Style {
	switch status {
	case model.BudgetStatusOver:
		return ErrorStyle
	case model.BudgetStatusOn:
		return WarningStyle
	case model.BudgetStatusUnder:
		return SuccessStyle
	default:
		return SubtleStyle
	}
}

func formatMoney(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	whole := fmt.Sprintf("%.2f", amount)
	dot := strings.Index(whole, ".")
	intPart, fracPart := whole[:dot], whole[dot:]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	return sign + "$" + strings.Join(groups, ",") + fracPart
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
