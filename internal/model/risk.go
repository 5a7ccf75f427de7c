package model

// RiskFactorType identifies a condition contributing to a matter's risk score.
type RiskFactorType string

// The closed enumeration of risk factor types.
const (
	RiskBudgetOverrun     RiskFactorType = "budget_overrun"
	RiskPartnerHeavy      RiskFactorType = "partner_heavy"
	RiskRateVolatility    RiskFactorType = "rate_volatility"
	RiskTimelineDeviation RiskFactorType = "timeline_deviation"
	RiskInvoiceIrregular  RiskFactorType = "invoice_irregularity"
)

// RiskSeverity grades how strongly a factor contributes to the score.
type RiskSeverity string

// Risk severity constants, also used for the overall risk level.
const (
	SeverityLow    RiskSeverity = "low"
	SeverityMedium RiskSeverity = "medium"
	SeverityHigh   RiskSeverity = "high"
)

// RiskFactor is a named, severity-tagged condition detected on a matter.
// Factors are recomputed on every request and never persisted.
type RiskFactor struct {
	Type        RiskFactorType
	Severity    RiskSeverity
	Description string
	Threshold   float64 // The numeric threshold the matter crossed
	Value       float64 // The matter's actual value for the rule input
}

// RiskProfile is the complete risk assessment for a matter.
type RiskProfile struct {
	MatterID          string
	MatterName        string
	RiskScore         int // 0-100
	RiskLevel         RiskSeverity
	Factors           []RiskFactor // Deterministic rule-evaluation order
	BudgetUtilization float64      // May exceed 1.0; BudgetUnknown when unset
}
