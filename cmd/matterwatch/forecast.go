package main

import (
	"fmt"

	"github.com/calloway/matterwatch/internal/cli"
	"github.com/spf13/cobra"
)

func forecastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forecast <matter-id>",
		Short: "Project a matter's final cost",
		Long: `Project a matter's final cost from its billing history. Uses the loaded
forecast model when enough history exists and the matter falls inside the
model's training domain; otherwise falls back to deterministic burn-rate
extrapolation at reduced confidence.`,
		Args: cobra.ExactArgs(1),
		RunE: runForecast,
	}
}

func runForecast(cmd *cobra.Command, args []string) error {
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

	forecast, err := eng.Forecast(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Print(cli.RenderForecast(forecast))
	return nil
}
