// Package risk implements the rule-based risk analyzer. Rules are
// independent (predicate, weight, factor) entries evaluated uniformly over a
// matter's features, so tuning a rule is a configuration change.
package risk

import (
	"fmt"
	"math"

	"github.com/calloway/matterwatch/internal/common"
	"github.com/calloway/matterwatch/internal/model"
)

// Config holds the risk rule thresholds, point weights, and scoring bands.
// It is loaded at startup and validated; every value here is tunable.
type Config struct {
	// Budget overrun rule
	BudgetMediumThreshold float64
	BudgetHighThreshold   float64
	BudgetMediumPoints    float64
	BudgetHighPoints      float64

	// Partner-heavy staffing rule
	PartnerMediumThreshold float64
	PartnerHighThreshold   float64
	PartnerMediumPoints    float64
	PartnerHighPoints      float64

	// Rate volatility rule
	RateDispersionThreshold float64
	RateVolatilityPoints    float64

	// Timeline deviation rule
	CadenceLowDeviation    float64
	CadenceMediumDeviation float64
	CadenceLowPoints       float64
	CadenceMediumPoints    float64

	// Invoice irregularity rule
	InvoiceDominanceThreshold float64
	InvoiceIrregularityPoints float64

	// Score-to-level bands: score < MediumBand is low, score > HighBand is
	// high, anything between is medium.
	MediumBand float64
	HighBand   float64
}

// DefaultConfig returns the default rule calibration.
func DefaultConfig() Config {
	return Config{
		BudgetMediumThreshold:     0.7,
		BudgetHighThreshold:       0.9,
		BudgetMediumPoints:        35,
		BudgetHighPoints:          50,
		PartnerMediumThreshold:    0.4,
		PartnerHighThreshold:      0.6,
		PartnerMediumPoints:       30,
		PartnerHighPoints:         45,
		RateDispersionThreshold:   0.3,
		RateVolatilityPoints:      15,
		CadenceLowDeviation:       0.5,
		CadenceMediumDeviation:    1.0,
		CadenceLowPoints:          10,
		CadenceMediumPoints:       20,
		InvoiceDominanceThreshold: 0.6,
		InvoiceIrregularityPoints: 15,
		MediumBand:                40,
		HighBand:                  70,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	type check struct {
		ok  bool
		msg string
	}
	checks := []check{
		{c.BudgetMediumThreshold > 0 && c.BudgetMediumThreshold < c.BudgetHighThreshold, "budget thresholds must satisfy 0 < medium < high"},
		{c.PartnerMediumThreshold > 0 && c.PartnerMediumThreshold < c.PartnerHighThreshold, "partner thresholds must satisfy 0 < medium < high"},
		{c.PartnerHighThreshold <= 1, "partner high threshold must not exceed 1"},
		{c.RateDispersionThreshold > 0, "rate dispersion threshold must be positive"},
		{c.CadenceLowDeviation > 0 && c.CadenceLowDeviation < c.CadenceMediumDeviation, "cadence deviations must satisfy 0 < low < medium"},
		{c.InvoiceDominanceThreshold > 0 && c.InvoiceDominanceThreshold <= 1, "invoice dominance threshold must be in (0, 1]"},
		{c.MediumBand > 0 && c.MediumBand < c.HighBand && c.HighBand < 100, "score bands must satisfy 0 < medium < high < 100"},
	}
	for _, p := range []float64{
		c.BudgetMediumPoints, c.BudgetHighPoints,
		c.PartnerMediumPoints, c.PartnerHighPoints,
		c.RateVolatilityPoints, c.CadenceLowPoints, c.CadenceMediumPoints,
		c.InvoiceIrregularityPoints,
	} {
		if p < 0 {
			checks = append(checks, check{false, "rule points must be non-negative"})
			break
		}
	}

	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("%w: %s", common.ErrInvalidConfig, ch.msg)
		}
	}
	return nil
}

// Analyzer evaluates the risk rule table against a matter. It is stateless
// after construction and safe for concurrent use.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer with the given calibration.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg}, nil
}

// Analyze produces the risk profile for a matter. A matter with no invoices
// yields score 0 with no factors rather than an error.
func (a *Analyzer) Analyze(matter *model.Matter, agg *model.InvoiceAggregate, fv model.FeatureVector) *model.RiskProfile {
	profile := &model.RiskProfile{
		MatterID:          matter.ID,
		MatterName:        matter.Name,
		RiskLevel:         model.SeverityLow,
		Factors:           []model.RiskFactor{},
		BudgetUtilization: fv.BudgetUtilization,
	}

	if agg.InvoiceCount == 0 {
		return profile
	}

	in := ruleInput{Matter: matter, Agg: agg, Features: fv}

	var score float64
	for _, entry := range ruleTable {
		factor, points, ok := entry.eval(a.cfg, in)
		if !ok {
			continue
		}
		score += points
		profile.Factors = append(profile.Factors, factor)
	}
	if score > 100 {
		score = 100
	}

	profile.RiskScore = int(math.Round(score))
	profile.RiskLevel = a.level(score)
	return profile
}

func (a *Analyzer) level(score float64) model.RiskSeverity {
	switch {
	case score > a.cfg.HighBand:
		return model.SeverityHigh
	case score >= a.cfg.MediumBand:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}
