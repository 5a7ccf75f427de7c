package model

// BudgetStatus classifies projected spend against the allocated budget.
type BudgetStatus string

// Budget status constants.
const (
	BudgetStatusUnder   BudgetStatus = "under_budget"
	BudgetStatusOn      BudgetStatus = "on_budget"
	BudgetStatusOver    BudgetStatus = "over_budget"
	BudgetStatusUnknown BudgetStatus = "unknown"
)

// ForecastBasis records which projection path produced a forecast.
type ForecastBasis string

// Forecast basis constants.
const (
	BasisModel         ForecastBasis = "model"
	BasisExtrapolation ForecastBasis = "extrapolation"
	BasisInsufficient  ForecastBasis = "insufficient_history"
)

// ForecastResult is the assembled cost projection for a matter. It is a pure
// function of its inputs and the loaded model version: constructed per
// request, never mutated afterwards, never persisted.
type ForecastResult struct {
	MatterID               string
	MatterName             string
	Basis                  ForecastBasis
	ModelVersion           string // Empty on the fallback path
	CurrentSpend           float64
	Budget                 float64 // 0 when no budget is set
	BudgetSet              bool
	BudgetUtilization      float64 // May exceed 1.0; BudgetUnknown when unset
	InvoiceCount           int
	ProjectedFinalCost     float64
	BudgetVarianceAmount   float64 // projected - budget; 0 when budget unset
	BudgetVariancePct      float64
	RemainingBudget        float64
	ProjectedRemainingCost float64
	BudgetStatus           BudgetStatus
	ConfidenceScore        float64 // 0-1, lower on the fallback path
}

// MatterAnalytics bundles the risk profile and forecast produced from a
// single feature extraction pass.
type MatterAnalytics struct {
	Risk     *RiskProfile
	Forecast *ForecastResult
}
