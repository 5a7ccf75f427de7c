package engine

import (
	"context"
	"testing"
	"time"

	"github.com/calloway/matterwatch/internal/common"
	"github.com/calloway/matterwatch/internal/features"
	"github.com/calloway/matterwatch/internal/forecast"
	"github.com/calloway/matterwatch/internal/model"
	"github.com/calloway/matterwatch/internal/risk"
	"github.com/calloway/matterwatch/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var engineNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, store service.Storage, artifact *forecast.Artifact) *AnalyticsEngine {
	t.Helper()

	clock := func() time.Time { return engineNow }
	analyzer, err := risk.NewAnalyzer(risk.DefaultConfig())
	require.NoError(t, err)

	modelStore := forecast.NewStore()
	if artifact != nil {
		modelStore.Swap(artifact)
	}
	fcfg := forecast.DefaultConfig()
	orchestrator, err := forecast.NewOrchestrator(modelStore, forecast.NewExtrapolatorAt(fcfg.CeilingMultiple, clock), fcfg)
	require.NoError(t, err)

	return New(store, features.NewExtractorAt(clock), analyzer, orchestrator)
}

func testArtifact() *forecast.Artifact {
	return &forecast.Artifact{
		Version:              "2025.06.1",
		Algorithm:            "ridge",
		CategoryTableVersion: features.CategoryTableVersion,
		Intercept:            1.0,
		Weights:              map[string]float64{"budget_utilization": 0.4436},
		Calibration:          forecast.Calibration{RSquared: 0.81, Confidence: 0.85},
		Domain:               forecast.Domain{MaxMatterAgeDays: 3650, MaxBudgetUtilization: 10},
	}
}

func seedScenarioMatter(t *testing.T, store *mockStorage) {
	t.Helper()
	ctx := context.Background()
	budget := 500000.0
	require.NoError(t, store.SaveMatter(ctx, &model.Matter{
		ID:       "M-5001",
		Name:     "Hargrove v. Atlantic Freight",
		Category: "litigation",
		Status:   model.MatterStatusOpen,
		Budget:   &budget,
		OpenedAt: engineNow.AddDate(0, 0, -90),
	}))

	invoices := []model.Invoice{
		{ID: "i1", MatterID: "M-5001", InvoiceNumber: "1001", Date: engineNow.AddDate(0, 0, -75), Amount: 115000, PartnerHours: 80, AssociateHours: 70, ParalegalHours: 20},
		{ID: "i2", MatterID: "M-5001", InvoiceNumber: "1002", Date: engineNow.AddDate(0, 0, -45), Amount: 120000, PartnerHours: 80, AssociateHours: 60, ParalegalHours: 20},
		{ID: "i3", MatterID: "M-5001", InvoiceNumber: "1003", Date: engineNow.AddDate(0, 0, -15), Amount: 125000, PartnerHours: 80, AssociateHours: 70, ParalegalHours: 20},
	}
	_, err := store.SaveInvoices(ctx, invoices)
	require.NoError(t, err)
}

func TestEngine_RiskProfile(t *testing.T) {
	store := newMockStorage()
	seedScenarioMatter(t, store)
	eng := newTestEngine(t, store, testArtifact())

	profile, err := eng.RiskProfile(context.Background(), "M-5001")
	require.NoError(t, err)

	// 72% utilization and 48% partner hours: both medium factors.
	assert.Equal(t, 65, profile.RiskScore)
	assert.Equal(t, model.SeverityMedium, profile.RiskLevel)
	assert.InDelta(t, 0.72, profile.BudgetUtilization, 1e-9)
	require.Len(t, profile.Factors, 2)
	assert.Equal(t, model.RiskBudgetOverrun, profile.Factors[0].Type)
	assert.Equal(t, model.RiskPartnerHeavy, profile.Factors[1].Type)
}

func TestEngine_Forecast(t *testing.T) {
	store := newMockStorage()
	seedScenarioMatter(t, store)
	eng := newTestEngine(t, store, testArtifact())

	result, err := eng.Forecast(context.Background(), "M-5001")
	require.NoError(t, err)

	assert.Equal(t, model.BasisModel, result.Basis)
	assert.InDelta(t, 475000, result.ProjectedFinalCost, 100)
	assert.Equal(t, model.BudgetStatusUnder, result.BudgetStatus)
	assert.InDelta(t, 0.85, result.ConfidenceScore, 1e-9)
}

func TestEngine_MatterNotFound(t *testing.T) {
	eng := newTestEngine(t, newMockStorage(), nil)

	_, err := eng.RiskProfile(context.Background(), "M-9999")
	assert.ErrorIs(t, err, common.ErrMatterNotFound)

	_, err = eng.Forecast(context.Background(), "M-9999")
	assert.ErrorIs(t, err, common.ErrMatterNotFound)

	_, err = eng.Analytics(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrInvalidMatter)
}

func TestEngine_ZeroInvoicesDegrades(t *testing.T) {
	store := newMockStorage()
	budget := 100000.0
	require.NoError(t, store.SaveMatter(context.Background(), &model.Matter{
		ID:       "M-5002",
		Name:     "Quiet Matter",
		Category: "tax",
		Budget:   &budget,
		OpenedAt: engineNow.AddDate(0, -1, 0),
	}))

	eng := newTestEngine(t, store, testArtifact())
	analytics, err := eng.Analytics(context.Background(), "M-5002")
	require.NoError(t, err)

	assert.Zero(t, analytics.Risk.RiskScore)
	assert.Empty(t, analytics.Risk.Factors)
	assert.Equal(t, model.BasisInsufficient, analytics.Forecast.Basis)
	assert.Equal(t, model.BudgetStatusUnknown, analytics.Forecast.BudgetStatus)
}

func TestEngine_AnalyticsIdempotent(t *testing.T) {
	store := newMockStorage()
	seedScenarioMatter(t, store)
	eng := newTestEngine(t, store, testArtifact())

	first, err := eng.Analytics(context.Background(), "M-5001")
	require.NoError(t, err)
	second, err := eng.Analytics(context.Background(), "M-5001")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngine_AnalyzeAll(t *testing.T) {
	store := newMockStorage()
	seedScenarioMatter(t, store)
	require.NoError(t, store.SaveMatter(context.Background(), &model.Matter{
		ID:       "M-5003",
		Name:     "Second Matter",
		Category: "corporate",
		Status:   model.MatterStatusOpen,
		OpenedAt: engineNow.AddDate(0, 0, -10),
	}))

	eng := newTestEngine(t, store, testArtifact())
	open := model.MatterStatusOpen
	results, err := eng.AnalyzeAll(context.Background(), service.MatterFilter{Status: &open})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for _, r := range results {
		require.NotNil(t, r.Risk)
		require.NotNil(t, r.Forecast)
		assert.Equal(t, r.Risk.MatterID, r.Forecast.MatterID)
	}
}
