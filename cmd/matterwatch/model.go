package main

import (
	"fmt"

	"github.com/calloway/matterwatch/internal/cli"
	"github.com/calloway/matterwatch/internal/config"
	"github.com/calloway/matterwatch/internal/forecast"
	"github.com/spf13/cobra"
)

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect and validate forecast model artifacts",
	}

	cmd.AddCommand(modelStatusCmd())
	cmd.AddCommand(modelVerifyCmd())
	cmd.AddCommand(modelReloadCmd())

	return cmd
}

func modelStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the configured forecast model",
		RunE:  runModelStatus,
	}
}

func runModelStatus(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadEngineConfig()
	if err != nil {
		return fmt.Errorf("invalid engine configuration: %w", err)
	}

	fmt.Println(cli.TitleStyle.Render("Forecast Model Status"))
	if !cfg.ModelEnabled {
		fmt.Println(cli.WarningStyle.Render("Model disabled; all forecasts use burn-rate extrapolation"))
		return nil
	}
	if cfg.ModelPath == "" {
		fmt.Println(cli.SubtleStyle.Render("No model path configured (engine.model.path)"))
		return nil
	}

	fmt.Printf("Path: %s\n", cfg.ModelPath)

	artifact, err := forecast.LoadArtifact(cfg.ModelPath)
	if err != nil {
		fmt.Println(cli.ErrorStyle.Render(fmt.Sprintf("✗ Artifact unusable: %v", err)))
		fmt.Println(cli.SubtleStyle.Render("Forecasts will use burn-rate extrapolation"))
		return nil
	}

	printArtifact(artifact)
	return nil
}

func modelVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <artifact.json>",
		Short: "Validate a model artifact before deploying it",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelVerify,
	}
}

func runModelVerify(_ *cobra.Command, args []string) error {
	artifact, err := forecast.LoadArtifact(args[0])
	if err != nil {
		return fmt.Errorf("artifact rejected: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render("✓ Artifact is valid"))
	printArtifact(artifact)
	return nil
}

func modelReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload [artifact.json]",
		Short: "Load the model artifact and confirm it serves",
		Long: `Validate and load the given artifact (or the configured one) into a
forecast store, exactly as commands do at startup. Long-running deployments
swap artifacts the same way: the store replaces the served model atomically,
so in-flight forecasts see either the old or the new version whole.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runModelReload,
	}
}

func runModelReload(_ *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := config.LoadEngineConfig()
		if err != nil {
			return fmt.Errorf("invalid engine configuration: %w", err)
		}
		path = cfg.ModelPath
	}
	if path == "" {
		return fmt.Errorf("no artifact path given and none configured (engine.model.path)")
	}

	store := forecast.NewStore()
	if err := store.Load(path); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Model %s loaded and serving", store.Version())))
	printArtifact(store.Current())
	return nil
}

func printArtifact(a *forecast.Artifact) {
	fmt.Printf("Version:    %s\n", a.Version)
	fmt.Printf("Algorithm:  %s\n", a.Algorithm)
	fmt.Printf("Trained:    %s\n", a.TrainedAt.Format("2006-01-02"))
	fmt.Printf("Confidence: %.2f\n", a.Calibration.Confidence)
	fmt.Printf("R²:         %.3f\n", a.Calibration.RSquared)
	fmt.Printf("Features:   %d weighted\n", len(a.Weights))
}
