// Package features turns a matter and its invoice history into the
// fixed-width numeric feature vector consumed by the risk analyzer and the
// forecast model.
package features

import (
	"math"
	"time"

	"github.com/calloway/matterwatch/internal/model"
)

// Extractor derives feature vectors from matters and invoice aggregates.
// Extraction is total: every edge case degrades to a documented default, so
// forecasting never hard-fails on incomplete upstream data.
type Extractor struct {
	now func() time.Time
}

// NewExtractor creates an extractor using the wall clock.
func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// NewExtractorAt creates an extractor with a fixed clock, for deterministic
// output in tests and batch runs.
func NewExtractorAt(now func() time.Time) *Extractor {
	return &Extractor{now: now}
}

// Extract computes the feature vector for a matter. It is side-effect-free
// and never returns an error:
//   - budget utilization is model.BudgetUnknown when no budget is set
//   - role ratios are 0 when no hours were billed
//   - rate dispersion is 0 with fewer than 2 rated invoices
//   - a closed matter's age is frozen at its closing date
//   - unknown categories encode as the reserved "other" id
func (e *Extractor) Extract(matter *model.Matter, agg *model.InvoiceAggregate) model.FeatureVector {
	fv := model.FeatureVector{
		BudgetUtilization: model.BudgetUnknown,
		MatterAgeDays:     matter.AgeDays(e.now()),
		CategoryID:        float64(LookupCategory(matter.Category).ID),
	}

	if matter.HasBudget() {
		fv.BudgetUtilization = agg.TotalBilled / *matter.Budget
	}

	if hours := agg.TotalHours(); hours > 0 {
		fv.PartnerRatio = agg.PartnerHours / hours
		fv.AssociateRatio = agg.AssociateHours / hours
		fv.ParalegalRatio = agg.ParalegalHours / hours
	}

	if agg.InvoiceCount >= 2 && agg.AvgEffectiveRate > 0 {
		fv.RateDispersion = math.Sqrt(agg.RateVariance) / agg.AvgEffectiveRate
	}

	if agg.InvoiceCount > 0 {
		ageDays := fv.MatterAgeDays
		if ageDays < 1 {
			ageDays = 1
		}
		fv.InvoiceCadence = float64(agg.InvoiceCount) * 30 / ageDays
	}

	return fv
}
