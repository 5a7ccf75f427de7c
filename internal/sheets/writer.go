package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/calloway/matterwatch/internal/common"
	"github.com/calloway/matterwatch/internal/model"
	"github.com/calloway/matterwatch/internal/service"
)

// Writer implements service.ReportWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	svc, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{config: config, service: svc, logger: logger}, nil
}

// Write publishes the spend report, replacing any previous contents.
func (w *Writer) Write(ctx context.Context, report *service.SpendReport) error {
	w.logger.Info("starting spend report export",
		"matters", len(report.Matters),
		"generated_at", report.GeneratedAt.Format("2006-01-02"))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if clearErr := w.clearSheet(ctx, spreadsheetID); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	values := buildReportValues(report)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
	}
	err = common.WithRetry(ctx, func() error {
		return w.writeValues(ctx, spreadsheetID, values)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	w.logger.Info("spend report export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))
	return nil
}

// buildReportData flattens analytics results into the tabular report shape.
func buildReportData(report *service.SpendReport) ReportData {
	data := ReportData{
		GeneratedAt: report.GeneratedAt,
		Forecasts:   make([]ForecastRow, 0, len(report.Matters)),
		Risks:       make([]RiskRow, 0, len(report.Matters)),
	}

	for i := range report.Matters {
		fc := report.Matters[i].Forecast
		rk := report.Matters[i].Risk

		if data.ModelVersion == "" && fc.ModelVersion != "" {
			data.ModelVersion = fc.ModelVersion
		}

		data.Forecasts = append(data.Forecasts, ForecastRow{
			MatterID:           fc.MatterID,
			MatterName:         fc.MatterName,
			CurrentSpend:       fc.CurrentSpend,
			Budget:             fc.Budget,
			BudgetSet:          fc.BudgetSet,
			ProjectedFinalCost: fc.ProjectedFinalCost,
			VarianceAmount:     fc.BudgetVarianceAmount,
			VariancePct:        fc.BudgetVariancePct,
			BudgetStatus:       string(fc.BudgetStatus),
			Confidence:         fc.ConfidenceScore,
			Basis:              string(fc.Basis),
		})
		data.Risks = append(data.Risks, RiskRow{
			MatterID:   rk.MatterID,
			MatterName: rk.MatterName,
			RiskScore:  rk.RiskScore,
			RiskLevel:  string(rk.RiskLevel),
			Factors:    summarizeFactors(rk.Factors),
		})
	}

	return data
}

// buildReportValues renders the report as spreadsheet rows: a title block,
// the forecast table, then the risk table.
func buildReportValues(report *service.SpendReport) [][]any {
	data := buildReportData(report)
	values := make([][]any, 0, len(data.Forecasts)+len(data.Risks)+7)

	values = append(values,
		[]any{"Legal Spend Report", data.GeneratedAt.Format("Jan 2, 2006")},
		[]any{},
		[]any{"Forecasts"},
		[]any{"Matter ID", "Matter", "Current Spend", "Budget", "Projected Final", "Variance", "Variance %", "Status", "Confidence", "Basis"},
	)

	for _, row := range data.Forecasts {
		budget := any("")
		variance := any("")
		variancePct := any("")
		if row.BudgetSet {
			budget = row.Budget
			variance = row.VarianceAmount
			variancePct = fmt.Sprintf("%.1f%%", row.VariancePct)
		}
		values = append(values, []any{
			row.MatterID,
			row.MatterName,
			row.CurrentSpend,
			budget,
			row.ProjectedFinalCost,
			variance,
			variancePct,
			row.BudgetStatus,
			row.Confidence,
			row.Basis,
		})
	}

	values = append(values,
		[]any{},
		[]any{"Risk Assessments"},
		[]any{"Matter ID", "Matter", "Score", "Level", "Factors"},
	)

	for _, row := range data.Risks {
		values = append(values, []any{
			row.MatterID,
			row.MatterName,
			row.RiskScore,
			row.RiskLevel,
			row.Factors,
		})
	}

	return values
}

func summarizeFactors(factors []model.RiskFactor) string {
	if len(factors) == 0 {
		return "none"
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		parts[i] = fmt.Sprintf("%s (%s)", f.Type, f.Severity)
	}
	return strings.Join(parts, "; ")
}

func (w *Writer) writeValues(ctx context.Context, spreadsheetID string, values [][]any) error {
	_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, "A1", &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// getOrCreateSpreadsheet verifies the configured spreadsheet or creates a
// fresh one when no id is configured.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		if _, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)
	return created.SpreadsheetId, nil
}

// createSheetsService builds the API client from whichever auth method the
// config carries.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		// Prefer a cached token so a still-valid access token is reused
		// across invocations instead of refreshing on every export.
		if config.TokenFile != "" {
			if cached, err := LoadToken(config.TokenFile); err == nil {
				refreshed, refreshErr := RefreshTokenIfNeeded(ctx, OAuth2Config{
					ClientID:     config.ClientID,
					ClientSecret: config.ClientSecret,
					TokenFile:    config.TokenFile,
				}, cached)
				if refreshErr == nil {
					token = refreshed
				}
			}
		}
		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}
