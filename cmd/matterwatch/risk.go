package main

import (
	"fmt"

	"github.com/calloway/matterwatch/internal/cli"
	"github.com/spf13/cobra"
)

func riskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "risk <matter-id>",
		Short: "Score a matter's risk of budget overrun",
		Long: `Assess a matter's risk from its billing history: budget utilization,
partner-heavy staffing, rate volatility, billing cadence deviation, and
invoice irregularities. Produces a 0-100 score with contributing factors.`,
		Args: cobra.ExactArgs(1),
		RunE: runRisk,
	}
}

func runRisk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	eng, _, err := initEngine(store)
	if err != nil {
		return err
	}

	profile, err := eng.RiskProfile(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Print(cli.RenderRiskProfile(profile))
	return nil
}
