package forecast

import (
	"fmt"
	"log/slog"

	"github.com/calloway/matterwatch/internal/common"
	"github.com/calloway/matterwatch/internal/model"
)

// Config holds the orchestrator's tunables. Loaded at startup and validated;
// invalid values fail process startup.
type Config struct {
	MinInvoicesForModel int     // Below this, the model path is disqualified
	CeilingMultiple     float64 // Fallback projection ceiling, as a multiple of current spend
	FallbackConfidence  float64 // Fixed confidence reported on the fallback path
	BudgetBandPct       float64 // Half-width of the on_budget band, in percent
}

// DefaultConfig returns the default forecasting configuration.
func DefaultConfig() Config {
	return Config{
		MinInvoicesForModel: 3,
		CeilingMultiple:     3.0,
		FallbackConfidence:  0.35,
		BudgetBandPct:       5.0,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.MinInvoicesForModel < 1 {
		return fmt.Errorf("%w: min invoices for model must be at least 1", common.ErrInvalidConfig)
	}
	if c.CeilingMultiple <= 1.0 {
		return fmt.Errorf("%w: fallback ceiling multiple must exceed 1.0", common.ErrInvalidConfig)
	}
	if c.FallbackConfidence <= 0 || c.FallbackConfidence >= 1 {
		return fmt.Errorf("%w: fallback confidence must be in (0, 1)", common.ErrInvalidConfig)
	}
	if c.BudgetBandPct <= 0 || c.BudgetBandPct >= 100 {
		return fmt.Errorf("%w: budget band percent must be in (0, 100)", common.ErrInvalidConfig)
	}
	return nil
}

// Orchestrator decides model versus fallback and assembles the forecast
// payload. It is stateless apart from the model store reference and safe for
// concurrent use.
type Orchestrator struct {
	store        *Store
	extrapolator *Extrapolator
	cfg          Config
}

// NewOrchestrator creates an orchestrator around the given model store.
func NewOrchestrator(store *Store, extrapolator *Extrapolator, cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{store: store, extrapolator: extrapolator, cfg: cfg}, nil
}

// Forecast projects a matter's final cost. Projected final cost is current
// spend times the predicted ratio; that convention holds on both paths. No
// step here can fail the call: the model path degrades to extrapolation, and
// a matter with no billing history yields an insufficient-history result.
func (o *Orchestrator) Forecast(matter *model.Matter, agg *model.InvoiceAggregate, fv model.FeatureVector) *model.ForecastResult {
	result := &model.ForecastResult{
		MatterID:          matter.ID,
		MatterName:        matter.Name,
		CurrentSpend:      agg.TotalBilled,
		BudgetSet:         matter.HasBudget(),
		BudgetUtilization: fv.BudgetUtilization,
		InvoiceCount:      agg.InvoiceCount,
		BudgetStatus:      model.BudgetStatusUnknown,
		ConfidenceScore:   o.cfg.FallbackConfidence,
	}
	if result.BudgetSet {
		result.Budget = *matter.Budget
	}

	if agg.InvoiceCount == 0 || agg.TotalBilled <= 0 {
		// No billing history at all: nothing to project from. Confidence
		// sits at the fallback floor and the status stays unknown rather
		// than claiming a budget position from a zero projection.
		result.Basis = model.BasisInsufficient
		result.ProjectedFinalCost = agg.TotalBilled
		if result.BudgetSet {
			result.RemainingBudget = result.Budget - agg.TotalBilled
		}
		return result
	}

	ratio, basis, confidence, version := o.predictRatio(matter, agg, fv)
	result.Basis = basis
	result.ModelVersion = version
	result.ConfidenceScore = confidence
	result.ProjectedFinalCost = agg.TotalBilled * ratio
	result.ProjectedRemainingCost = result.ProjectedFinalCost - agg.TotalBilled

	if result.BudgetSet {
		result.RemainingBudget = result.Budget - agg.TotalBilled
		result.BudgetVarianceAmount = result.ProjectedFinalCost - result.Budget
		result.BudgetVariancePct = result.BudgetVarianceAmount / result.Budget * 100
		result.BudgetStatus = o.classifyBudget(result.BudgetVariancePct)
	}

	return result
}

// predictRatio attempts model inference and falls back to extrapolation on
// any disqualifying condition. Model unavailability is absorbed here and
// never surfaces to the caller.
func (o *Orchestrator) predictRatio(matter *model.Matter, agg *model.InvoiceAggregate, fv model.FeatureVector) (ratio float64, basis model.ForecastBasis, confidence float64, version string) {
	artifact := o.store.Current()

	switch {
	case artifact == nil:
		slog.Debug("Model not loaded, using extrapolation", "matter_id", matter.ID)
	case agg.InvoiceCount < o.cfg.MinInvoicesForModel:
		slog.Debug("Insufficient history for model, using extrapolation",
			"matter_id", matter.ID,
			"invoice_count", agg.InvoiceCount,
			"required", o.cfg.MinInvoicesForModel)
	case !artifact.InDomain(fv):
		slog.Warn("Features outside model domain, using extrapolation",
			"matter_id", matter.ID,
			"model_version", artifact.Version)
	default:
		return artifact.Predict(fv), model.BasisModel, artifact.Calibration.Confidence, artifact.Version
	}

	return o.extrapolator.Extrapolate(matter, agg), model.BasisExtrapolation, o.cfg.FallbackConfidence, ""
}

// classifyBudget maps variance percent to a budget status. The on_budget
// band is the open interval (-band, +band); landing on either edge already
// classifies as under or over.
func (o *Orchestrator) classifyBudget(variancePct float64) model.BudgetStatus {
	switch {
	case variancePct <= -o.cfg.BudgetBandPct:
		return model.BudgetStatusUnder
	case variancePct >= o.cfg.BudgetBandPct:
		return model.BudgetStatusOver
	default:
		return model.BudgetStatusOn
	}
}
