// Package engine wires matter lookup, feature extraction, risk analysis, and
// cost forecasting into the analytics operations exposed to the rest of the
// application.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/calloway/matterwatch/internal/common"
	"github.com/calloway/matterwatch/internal/features"
	"github.com/calloway/matterwatch/internal/forecast"
	"github.com/calloway/matterwatch/internal/model"
	"github.com/calloway/matterwatch/internal/risk"
	"github.com/calloway/matterwatch/internal/service"
)

// AnalyticsEngine produces risk profiles and cost forecasts for matters.
// All operations are synchronous pure functions of their inputs and the
// currently loaded model artifact; the engine holds no per-request state and
// is safe for concurrent use.
type AnalyticsEngine struct {
	storage      service.Storage
	extractor    *features.Extractor
	analyzer     *risk.Analyzer
	orchestrator *forecast.Orchestrator
}

// New creates an analytics engine with the given dependencies.
func New(store service.Storage, extractor *features.Extractor, analyzer *risk.Analyzer, orchestrator *forecast.Orchestrator) *AnalyticsEngine {
	return &AnalyticsEngine{
		storage:      store,
		extractor:    extractor,
		analyzer:     analyzer,
		orchestrator: orchestrator,
	}
}

// RiskProfile computes the risk assessment for a matter.
func (e *AnalyticsEngine) RiskProfile(ctx context.Context, matterID string) (*model.RiskProfile, error) {
	matter, agg, err := e.load(ctx, matterID)
	if err != nil {
		return nil, err
	}
	fv := e.extractor.Extract(matter, agg)
	return e.analyzer.Analyze(matter, agg, fv), nil
}

// Forecast projects a matter's final cost.
func (e *AnalyticsEngine) Forecast(ctx context.Context, matterID string) (*model.ForecastResult, error) {
	matter, agg, err := e.load(ctx, matterID)
	if err != nil {
		return nil, err
	}
	fv := e.extractor.Extract(matter, agg)
	return e.orchestrator.Forecast(matter, agg, fv), nil
}

// Analytics computes the risk profile and forecast together from a single
// feature extraction pass. The analyzers consume the vector independently;
// there is no shared mutable state between them.
func (e *AnalyticsEngine) Analytics(ctx context.Context, matterID string) (*model.MatterAnalytics, error) {
	matter, agg, err := e.load(ctx, matterID)
	if err != nil {
		return nil, err
	}

	fv := e.extractor.Extract(matter, agg)
	return &model.MatterAnalytics{
		Risk:     e.analyzer.Analyze(matter, agg, fv),
		Forecast: e.orchestrator.Forecast(matter, agg, fv),
	}, nil
}

// AnalyzeAll runs analytics across matters matching the filter, skipping
// individual failures so one bad matter cannot sink a batch run.
func (e *AnalyticsEngine) AnalyzeAll(ctx context.Context, filter service.MatterFilter) ([]model.MatterAnalytics, error) {
	matters, err := e.storage.GetMatters(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matters: %w", err)
	}

	results := make([]model.MatterAnalytics, 0, len(matters))
	for i := range matters {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		analytics, err := e.Analytics(ctx, matters[i].ID)
		if err != nil {
			slog.Error("Skipping matter in batch analytics", "matter_id", matters[i].ID, "error", err)
			continue
		}
		results = append(results, *analytics)
	}
	return results, nil
}

// load fetches the matter and its invoice rollup. A missing matter is the
// only structural failure that propagates to callers.
func (e *AnalyticsEngine) load(ctx context.Context, matterID string) (*model.Matter, *model.InvoiceAggregate, error) {
	if matterID == "" {
		return nil, nil, fmt.Errorf("%w: empty matter id", common.ErrInvalidMatter)
	}

	matter, err := e.storage.GetMatter(ctx, matterID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrMatterNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", common.ErrMatterNotFound, matterID)
		}
		return nil, nil, fmt.Errorf("failed to load matter %s: %w", matterID, err)
	}

	agg, err := e.storage.GetInvoiceAggregate(ctx, matterID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to aggregate invoices for %s: %w", matterID, err)
	}
	return matter, agg, nil
}
