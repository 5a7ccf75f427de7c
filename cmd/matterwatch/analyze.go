package main

import (
	"fmt"

	"github.com/calloway/matterwatch/internal/cli"
	"github.com/calloway/matterwatch/internal/model"
	"github.com/calloway/matterwatch/internal/service"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run risk and forecast analytics across matters",
		Long: `Run the full analytics pass (risk scoring plus cost forecasting) across
every matter matching the filter. Matters that fail to analyze are skipped
and logged rather than aborting the batch.`,
		RunE: runAnalyze,
	}

	cmd.Flags().String("status", "open", "filter by status (open, closed, all)")
	cmd.Flags().String("category", "", "filter by practice area category")
	cmd.Flags().Int("limit", 0, "maximum number of matters to analyze")
	cmd.Flags().BoolP("verbose", "v", false, "show full per-matter reports")

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	verbose, _ := cmd.Flags().GetBool("verbose")

	filter := service.MatterFilter{}
	if statusFlag, _ := cmd.Flags().GetString("status"); statusFlag != "" && statusFlag != "all" {
		status := model.MatterStatus(statusFlag)
		if status != model.MatterStatusOpen && status != model.MatterStatusClosed {
			return fmt.Errorf("invalid status %q: must be open, closed, or all", statusFlag)
		}
		filter.Status = &status
	}
	filter.Category, _ = cmd.Flags().GetString("category")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	eng, _, err := initEngine(store)
	if err != nil {
		return err
	}

	results, err := eng.AnalyzeAll(ctx, filter)
	if err != nil {
		return fmt.Errorf("batch analytics failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No matters to analyze"))
		return nil
	}

	if verbose {
		for _, r := range results {
			fmt.Print(cli.RenderRiskProfile(r.Risk))
			fmt.Println()
			fmt.Print(cli.RenderForecast(r.Forecast))
			fmt.Println()
		}
		return nil
	}

	fmt.Print(renderAnalyticsSummary(results))
	return nil
}

// renderAnalyticsSummary produces the one-line-per-matter batch view.
func renderAnalyticsSummary(results []model.MatterAnalytics) string {
	out := cli.TitleStyle.Render(fmt.Sprintf("Analyzed %d matters", len(results))) + "\n"

	var high, over int
	for _, r := range results {
		marker := "  "
		switch {
		case r.Forecast.BudgetStatus == model.BudgetStatusOver:
			marker = cli.ErrorStyle.Render("▲ ")
			over++
		case r.Risk.RiskLevel == model.SeverityHigh:
			marker = cli.ErrorStyle.Render("! ")
		case r.Risk.RiskLevel == model.SeverityMedium:
			marker = cli.WarningStyle.Render("· ")
		}
		if r.Risk.RiskLevel == model.SeverityHigh {
			high++
		}

		out += fmt.Sprintf("%s%-12s risk %3d (%s)  projected %s  %s\n",
			marker,
			r.Risk.MatterID,
			r.Risk.RiskScore,
			r.Risk.RiskLevel,
			fmt.Sprintf("%14s", formatProjection(r.Forecast)),
			r.Forecast.BudgetStatus)
	}

	out += "\n" + cli.SubtleStyle.Render(
		fmt.Sprintf("%d high risk, %d projected over budget", high, over)) + "\n"
	return out
}

func formatProjection(f *model.ForecastResult) string {
	return fmt.Sprintf("$%.0f", f.ProjectedFinalCost)
}
