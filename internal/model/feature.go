package model

import "math"

// BudgetUnknown is the sentinel value for budget utilization when a matter
// has no budget set. Downstream consumers treat any negative utilization as
// "unknown budget" rather than a real ratio.
const BudgetUnknown = -1.0

// FeatureVector is the fixed-width numeric input shared by the risk analyzer
// and the forecast model. Every field is always defined and finite; missing
// upstream inputs are imputed at extraction time, never left as NaN or Inf.
type FeatureVector struct {
	BudgetUtilization float64 // totalBilled / budget, or BudgetUnknown
	InvoiceCadence    float64 // invoices per 30 days of matter age
	PartnerRatio      float64 // partner hours / total hours
	AssociateRatio    float64
	ParalegalRatio    float64
	RateDispersion    float64 // coefficient of variation of invoice rates
	MatterAgeDays     float64
	CategoryID        float64 // closed-table encoding, see features package
}

// Fields returns the vector's values keyed by their canonical names. The
// forecast model artifact addresses coefficients by these names, so they are
// part of the model's versioned contract.
func (f FeatureVector) Fields() map[string]float64 {
	return map[string]float64{
		"budget_utilization": f.BudgetUtilization,
		"invoice_cadence":    f.InvoiceCadence,
		"partner_ratio":      f.PartnerRatio,
		"associate_ratio":    f.AssociateRatio,
		"paralegal_ratio":    f.ParalegalRatio,
		"rate_dispersion":    f.RateDispersion,
		"matter_age_days":    f.MatterAgeDays,
		"category_id":        f.CategoryID,
	}
}

// FeatureNames lists the canonical feature names in a fixed order. Model
// math must iterate features in this order so floating-point summation is
// deterministic: identical inputs always produce identical output.
var FeatureNames = []string{
	"budget_utilization",
	"invoice_cadence",
	"partner_ratio",
	"associate_ratio",
	"paralegal_ratio",
	"rate_dispersion",
	"matter_age_days",
	"category_id",
}

// IsFinite reports whether every field holds a finite value. Extraction
// guarantees this; the model boundary re-checks it before prediction.
func (f FeatureVector) IsFinite() bool {
	for _, v := range f.Fields() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
