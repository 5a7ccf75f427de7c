package risk

import (
	"fmt"
	"math"

	"github.com/calloway/matterwatch/internal/features"
	"github.com/calloway/matterwatch/internal/model"
)

// ruleInput bundles everything a rule may inspect. Rules read it and never
// mutate it, so evaluation order cannot change any rule's outcome.
type ruleInput struct {
	Matter   *model.Matter
	Agg      *model.InvoiceAggregate
	Features model.FeatureVector
}

// ruleFunc evaluates one rule. It returns the detected factor and its point
// contribution, or ok=false when the rule does not fire or its required
// input is unavailable. A rule is never an error: missing inputs simply omit
// the factor.
type ruleFunc func(cfg Config, in ruleInput) (factor model.RiskFactor, points float64, ok bool)

// ruleEntry pairs a factor type with its evaluator. The analyzer walks the
// rule table in order, which fixes the factor list order; the score itself
// is a commutative sum, so ordering never changes it.
type ruleEntry struct {
	Type model.RiskFactorType
	eval ruleFunc
}

// ruleTable is the fixed, ordered set of risk rules. Tuning a rule means
// changing Config, not this table.
var ruleTable = []ruleEntry{
	{Type: model.RiskBudgetOverrun, eval: evalBudgetOverrun},
	{Type: model.RiskPartnerHeavy, eval: evalPartnerHeavy},
	{Type: model.RiskRateVolatility, eval: evalRateVolatility},
	{Type: model.RiskTimelineDeviation, eval: evalTimelineDeviation},
	{Type: model.RiskInvoiceIrregular, eval: evalInvoiceIrregularity},
}

// evalBudgetOverrun flags matters burning through their budget. Skipped when
// the matter has no budget set: utilization is unknowable, not zero.
func evalBudgetOverrun(cfg Config, in ruleInput) (model.RiskFactor, float64, bool) {
	util := in.Features.BudgetUtilization
	if util < 0 {
		return model.RiskFactor{}, 0, false
	}

	switch {
	case util > cfg.BudgetHighThreshold:
		return model.RiskFactor{
			Type:        model.RiskBudgetOverrun,
			Severity:    model.SeverityHigh,
			Description: fmt.Sprintf("Budget utilization at %.0f%% exceeds the %.0f%% critical threshold", util*100, cfg.BudgetHighThreshold*100),
			Threshold:   cfg.BudgetHighThreshold,
			Value:       util,
		}, cfg.BudgetHighPoints, true
	case util > cfg.BudgetMediumThreshold:
		return model.RiskFactor{
			Type:        model.RiskBudgetOverrun,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("Budget utilization at %.0f%% exceeds the %.0f%% warning threshold", util*100, cfg.BudgetMediumThreshold*100),
			Threshold:   cfg.BudgetMediumThreshold,
			Value:       util,
		}, cfg.BudgetMediumPoints, true
	}
	return model.RiskFactor{}, 0, false
}

// evalPartnerHeavy flags staffing skewed toward partner hours. Skipped when
// no hours have been billed at all.
func evalPartnerHeavy(cfg Config, in ruleInput) (model.RiskFactor, float64, bool) {
	if in.Agg.TotalHours() <= 0 {
		return model.RiskFactor{}, 0, false
	}
	ratio := in.Features.PartnerRatio

	switch {
	case ratio > cfg.PartnerHighThreshold:
		return model.RiskFactor{
			Type:        model.RiskPartnerHeavy,
			Severity:    model.SeverityHigh,
			Description: fmt.Sprintf("Partners bill %.0f%% of hours, above the %.0f%% critical threshold", ratio*100, cfg.PartnerHighThreshold*100),
			Threshold:   cfg.PartnerHighThreshold,
			Value:       ratio,
		}, cfg.PartnerHighPoints, true
	case ratio > cfg.PartnerMediumThreshold:
		return model.RiskFactor{
			Type:        model.RiskPartnerHeavy,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("Partners bill %.0f%% of hours, above the %.0f%% warning threshold", ratio*100, cfg.PartnerMediumThreshold*100),
			Threshold:   cfg.PartnerMediumThreshold,
			Value:       ratio,
		}, cfg.PartnerMediumPoints, true
	}
	return model.RiskFactor{}, 0, false
}

// evalRateVolatility flags unstable blended rates across invoices. Needs at
// least two invoices to be meaningful; extraction already reports zero
// dispersion below that, so the threshold check handles it.
func evalRateVolatility(cfg Config, in ruleInput) (model.RiskFactor, float64, bool) {
	cv := in.Features.RateDispersion
	if cv <= cfg.RateDispersionThreshold {
		return model.RiskFactor{}, 0, false
	}
	return model.RiskFactor{
		Type:        model.RiskRateVolatility,
		Severity:    model.SeverityMedium,
		Description: fmt.Sprintf("Effective hourly rates vary %.0f%% around their mean, above the %.0f%% threshold", cv*100, cfg.RateDispersionThreshold*100),
		Threshold:   cfg.RateDispersionThreshold,
		Value:       cv,
	}, cfg.RateVolatilityPoints, true
}

// evalTimelineDeviation compares invoice cadence against the category's
// expected cadence. Skipped with fewer than two invoices: one invoice gives
// no cadence signal.
func evalTimelineDeviation(cfg Config, in ruleInput) (model.RiskFactor, float64, bool) {
	if in.Agg.InvoiceCount < 2 {
		return model.RiskFactor{}, 0, false
	}
	expected := features.LookupCategory(in.Matter.Category).ExpectedCadence
	if expected <= 0 {
		return model.RiskFactor{}, 0, false
	}

	deviation := math.Abs(in.Features.InvoiceCadence-expected) / expected

	switch {
	case deviation > cfg.CadenceMediumDeviation:
		return model.RiskFactor{
			Type:        model.RiskTimelineDeviation,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("Invoice cadence deviates %.0f%% from the category norm of %.1f/month", deviation*100, expected),
			Threshold:   cfg.CadenceMediumDeviation,
			Value:       deviation,
		}, cfg.CadenceMediumPoints, true
	case deviation > cfg.CadenceLowDeviation:
		return model.RiskFactor{
			Type:        model.RiskTimelineDeviation,
			Severity:    model.SeverityLow,
			Description: fmt.Sprintf("Invoice cadence deviates %.0f%% from the category norm of %.1f/month", deviation*100, expected),
			Threshold:   cfg.CadenceLowDeviation,
			Value:       deviation,
		}, cfg.CadenceLowPoints, true
	}
	return model.RiskFactor{}, 0, false
}

// evalInvoiceIrregularity flags a single invoice dominating the matter's
// billing. Needs at least three invoices so one large first bill on a young
// matter is not penalized.
func evalInvoiceIrregularity(cfg Config, in ruleInput) (model.RiskFactor, float64, bool) {
	if in.Agg.InvoiceCount < 3 || in.Agg.TotalBilled <= 0 {
		return model.RiskFactor{}, 0, false
	}
	share := in.Agg.MaxInvoiceAmount / in.Agg.TotalBilled
	if share <= cfg.InvoiceDominanceThreshold {
		return model.RiskFactor{}, 0, false
	}
	return model.RiskFactor{
		Type:        model.RiskInvoiceIrregular,
		Severity:    model.SeverityMedium,
		Description: fmt.Sprintf("A single invoice accounts for %.0f%% of total billing", share*100),
		Threshold:   cfg.InvoiceDominanceThreshold,
		Value:       share,
	}, cfg.InvoiceIrregularityPoints, true
}
