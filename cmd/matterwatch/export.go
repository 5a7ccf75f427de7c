package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/calloway/matterwatch/internal/config"
	"github.com/calloway/matterwatch/internal/service"
	"github.com/calloway/matterwatch/internal/sheets"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a spend report to Google Sheets",
		Long: `Run analytics across matters and export the resulting spend report
(forecasts plus risk assessments) to a Google Sheets spreadsheet.

Authentication uses either a service account (GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH)
or OAuth2 credentials (GOOGLE_SHEETS_CLIENT_ID, GOOGLE_SHEETS_CLIENT_SECRET,
GOOGLE_SHEETS_REFRESH_TOKEN).`,
		RunE: runExport,
	}

	cmd.Flags().String("status", "open", "filter by status (open, closed, all)")
	cmd.Flags().String("category", "", "filter by practice area category")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sheetsCfg, err := config.LoadSheetsConfig()
	if err != nil {
		return fmt.Errorf("sheets configuration: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	eng, _, err := initEngine(store)
	if err != nil {
		return err
	}

	filter := service.MatterFilter{}
	if statusFlag, _ := cmd.Flags().GetString("status"); statusFlag != "" && statusFlag != "all" {
		status := parseStatus(statusFlag)
		if status == nil {
			return fmt.Errorf("invalid status %q: must be open, closed, or all", statusFlag)
		}
		filter.Status = status
	}
	filter.Category, _ = cmd.Flags().GetString("category")

	slog.Info("Running analytics for export")
	results, err := eng.AnalyzeAll(ctx, filter)
	if err != nil {
		return fmt.Errorf("batch analytics failed: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no matters to export")
	}

	writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	report := &service.SpendReport{
		GeneratedAt: time.Now(),
		Matters:     results,
	}
	if err := writer.Write(ctx, report); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	slog.Info("✅ Exported spend report", "matters", len(results))
	return nil
}
