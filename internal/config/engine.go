package config

import (
	"github.com/calloway/matterwatch/internal/forecast"
	"github.com/calloway/matterwatch/internal/risk"
	"github.com/spf13/viper"
)

// EngineConfig bundles the validated analytics configuration: risk rule
// calibration, forecasting tunables, and the model artifact location.
type EngineConfig struct {
	ModelPath    string
	ModelEnabled bool
	Risk         risk.Config
	Forecast     forecast.Config
}

// LoadEngineConfig reads the engine configuration from Viper, applying
// defaults for anything unset, and validates it. Invalid configuration is a
// startup failure: commands must refuse to run rather than analyze with a
// broken calibration.
func LoadEngineConfig() (*EngineConfig, error) {
	cfg := &EngineConfig{
		ModelPath:    ExpandPath(viper.GetString("engine.model.path")),
		ModelEnabled: true,
		Risk:         risk.DefaultConfig(),
		Forecast:     forecast.DefaultConfig(),
	}
	if viper.IsSet("engine.model.enabled") {
		cfg.ModelEnabled = viper.GetBool("engine.model.enabled")
	}

	loadFloat := func(key string, dst *float64) {
		if viper.IsSet(key) {
			*dst = viper.GetFloat64(key)
		}
	}

	// Risk rule calibration
	loadFloat("engine.risk.budget.medium_threshold", &cfg.Risk.BudgetMediumThreshold)
	loadFloat("engine.risk.budget.high_threshold", &cfg.Risk.BudgetHighThreshold)
	loadFloat("engine.risk.budget.medium_points", &cfg.Risk.BudgetMediumPoints)
	loadFloat("engine.risk.budget.high_points", &cfg.Risk.BudgetHighPoints)
	loadFloat("engine.risk.partner.medium_threshold", &cfg.Risk.PartnerMediumThreshold)
	loadFloat("engine.risk.partner.high_threshold", &cfg.Risk.PartnerHighThreshold)
	loadFloat("engine.risk.partner.medium_points", &cfg.Risk.PartnerMediumPoints)
	loadFloat("engine.risk.partner.high_points", &cfg.Risk.PartnerHighPoints)
	loadFloat("engine.risk.rate.dispersion_threshold", &cfg.Risk.RateDispersionThreshold)
	loadFloat("engine.risk.rate.points", &cfg.Risk.RateVolatilityPoints)
	loadFloat("engine.risk.cadence.low_deviation", &cfg.Risk.CadenceLowDeviation)
	loadFloat("engine.risk.cadence.medium_deviation", &cfg.Risk.CadenceMediumDeviation)
	loadFloat("engine.risk.cadence.low_points", &cfg.Risk.CadenceLowPoints)
	loadFloat("engine.risk.cadence.medium_points", &cfg.Risk.CadenceMediumPoints)
	loadFloat("engine.risk.irregularity.dominance_threshold", &cfg.Risk.InvoiceDominanceThreshold)
	loadFloat("engine.risk.irregularity.points", &cfg.Risk.InvoiceIrregularityPoints)
	loadFloat("engine.risk.bands.medium", &cfg.Risk.MediumBand)
	loadFloat("engine.risk.bands.high", &cfg.Risk.HighBand)

	// Forecast tunables
	if viper.IsSet("engine.forecast.min_invoices_for_model") {
		cfg.Forecast.MinInvoicesForModel = viper.GetInt("engine.forecast.min_invoices_for_model")
	}
	loadFloat("engine.forecast.ceiling_multiple", &cfg.Forecast.CeilingMultiple)
	loadFloat("engine.forecast.fallback_confidence", &cfg.Forecast.FallbackConfidence)
	loadFloat("engine.forecast.budget_band_pct", &cfg.Forecast.BudgetBandPct)

	if err := cfg.Risk.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Forecast.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
