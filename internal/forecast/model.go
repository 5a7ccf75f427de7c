package forecast

import (
	"github.com/calloway/matterwatch/internal/model"
)

// Predict maps a feature vector to the predicted final cost as a multiple of
// current spend. The prediction is floored at 1.0: a matter's final cost can
// never be below what has already been billed. Predict is pure and safe for
// concurrent use; the artifact is never mutated after load. Terms are summed
// in the canonical feature order so identical inputs round identically.
func (a *Artifact) Predict(fv model.FeatureVector) float64 {
	fields := fv.Fields()
	ratio := a.Intercept
	for _, name := range model.FeatureNames {
		if w, ok := a.Weights[name]; ok {
			ratio += w * fields[name]
		}
	}
	if ratio < 1.0 {
		return 1.0
	}
	return ratio
}

// InDomain reports whether the features fall inside the model's trained
// input domain. Extraction already guarantees these invariants, but the
// model boundary re-checks them so a future extraction bug degrades to the
// fallback path instead of a garbage prediction.
func (a *Artifact) InDomain(fv model.FeatureVector) bool {
	if !fv.IsFinite() {
		return false
	}
	if fv.MatterAgeDays < 0 {
		return false
	}
	if a.Domain.MaxMatterAgeDays > 0 && fv.MatterAgeDays > a.Domain.MaxMatterAgeDays {
		return false
	}
	for _, ratio := range []float64{fv.PartnerRatio, fv.AssociateRatio, fv.ParalegalRatio} {
		if ratio < 0 || ratio > 1 {
			return false
		}
	}
	util := fv.BudgetUtilization
	if util != model.BudgetUnknown && util < 0 {
		return false
	}
	if a.Domain.MaxBudgetUtilization > 0 && util > a.Domain.MaxBudgetUtilization {
		return false
	}
	return true
}
