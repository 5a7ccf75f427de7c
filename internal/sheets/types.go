package sheets

import "time"

// ForecastRow is one matter's projection in the Forecasts tab.
type ForecastRow struct {
	MatterID           string
	MatterName         string
	CurrentSpend       float64
	Budget             float64
	BudgetSet          bool
	ProjectedFinalCost float64
	VarianceAmount     float64
	VariancePct        float64
	BudgetStatus       string
	Confidence         float64
	Basis              string
}

// RiskRow is one matter's assessment in the Risk tab.
type RiskRow struct {
	MatterID   string
	MatterName string
	RiskScore  int
	RiskLevel  string
	Factors    string // Semicolon-joined factor summaries
}

// ReportData holds everything written into the spreadsheet.
type ReportData struct {
	GeneratedAt  time.Time
	ModelVersion string
	Forecasts    []ForecastRow
	Risks        []RiskRow
}
