package features

import (
	"math"
	"testing"
	"time"

	"github.com/calloway/matterwatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func testExtractor() *Extractor {
	return NewExtractorAt(func() time.Time { return testNow })
}

func floatPtr(f float64) *float64 { return &f }

func TestExtract_BudgetUtilization(t *testing.T) {
	tests := []struct {
		name   string
		budget *float64
		billed float64
		want   float64
	}{
		{
			name:   "normal utilization",
			budget: floatPtr(500000),
			billed: 360000,
			want:   0.72,
		},
		{
			name:   "utilization above one",
			budget: floatPtr(100000),
			billed: 130000,
			want:   1.3,
		},
		{
			name:   "no budget yields sentinel",
			budget: nil,
			billed: 50000,
			want:   model.BudgetUnknown,
		},
		{
			name:   "zero budget yields sentinel",
			budget: floatPtr(0),
			billed: 50000,
			want:   model.BudgetUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matter := &model.Matter{
				ID:       "M-100",
				Category: "litigation",
				Budget:   tt.budget,
				OpenedAt: testNow.AddDate(0, -6, 0),
			}
			agg := &model.InvoiceAggregate{MatterID: "M-100", TotalBilled: tt.billed, InvoiceCount: 3}

			fv := testExtractor().Extract(matter, agg)
			assert.InDelta(t, tt.want, fv.BudgetUtilization, 1e-9)
		})
	}
}

func TestExtract_RoleRatios(t *testing.T) {
	matter := &model.Matter{ID: "M-101", Category: "corporate", OpenedAt: testNow.AddDate(0, -3, 0)}

	t.Run("ratios sum over billed roles", func(t *testing.T) {
		agg := &model.InvoiceAggregate{
			MatterID:       "M-101",
			InvoiceCount:   2,
			PartnerHours:   48,
			AssociateHours: 40,
			ParalegalHours: 12,
		}
		fv := testExtractor().Extract(matter, agg)
		assert.InDelta(t, 0.48, fv.PartnerRatio, 1e-9)
		assert.InDelta(t, 0.40, fv.AssociateRatio, 1e-9)
		assert.InDelta(t, 0.12, fv.ParalegalRatio, 1e-9)
	})

	t.Run("zero hours defaults all ratios to zero", func(t *testing.T) {
		agg := &model.InvoiceAggregate{MatterID: "M-101", InvoiceCount: 1, TotalBilled: 5000}
		fv := testExtractor().Extract(matter, agg)
		assert.Zero(t, fv.PartnerRatio)
		assert.Zero(t, fv.AssociateRatio)
		assert.Zero(t, fv.ParalegalRatio)
	})
}

func TestExtract_RateDispersion(t *testing.T) {
	matter := &model.Matter{ID: "M-102", Category: "employment", OpenedAt: testNow.AddDate(0, -4, 0)}

	t.Run("fewer than two invoices defines dispersion as zero", func(t *testing.T) {
		agg := &model.InvoiceAggregate{
			MatterID:         "M-102",
			InvoiceCount:     1,
			AvgEffectiveRate: 450,
			RateVariance:     900,
		}
		fv := testExtractor().Extract(matter, agg)
		assert.Zero(t, fv.RateDispersion)
	})

	t.Run("coefficient of variation of invoice rates", func(t *testing.T) {
		agg := &model.InvoiceAggregate{
			MatterID:         "M-102",
			InvoiceCount:     4,
			AvgEffectiveRate: 500,
			RateVariance:     2500, // stddev 50
		}
		fv := testExtractor().Extract(matter, agg)
		assert.InDelta(t, 0.1, fv.RateDispersion, 1e-9)
	})
}

func TestExtract_MatterAge(t *testing.T) {
	t.Run("open matter ages to now", func(t *testing.T) {
		matter := &model.Matter{ID: "M-103", OpenedAt: testNow.AddDate(0, 0, -90)}
		fv := testExtractor().Extract(matter, &model.InvoiceAggregate{})
		assert.InDelta(t, 90, fv.MatterAgeDays, 0.01)
	})

	t.Run("closed matter age is frozen at closing date", func(t *testing.T) {
		closed := testNow.AddDate(0, 0, -30)
		matter := &model.Matter{
			ID:       "M-104",
			Status:   model.MatterStatusClosed,
			OpenedAt: testNow.AddDate(0, 0, -120),
			ClosedAt: &closed,
		}
		fv := testExtractor().Extract(matter, &model.InvoiceAggregate{})
		assert.InDelta(t, 90, fv.MatterAgeDays, 0.01)
	})

	t.Run("future opening date clamps to zero", func(t *testing.T) {
		matter := &model.Matter{ID: "M-105", OpenedAt: testNow.AddDate(0, 0, 10)}
		fv := testExtractor().Extract(matter, &model.InvoiceAggregate{})
		assert.Zero(t, fv.MatterAgeDays)
	})
}

func TestExtract_InvoiceCadence(t *testing.T) {
	matter := &model.Matter{ID: "M-106", Category: "litigation", OpenedAt: testNow.AddDate(0, 0, -90)}

	t.Run("invoices per thirty days", func(t *testing.T) {
		agg := &model.InvoiceAggregate{MatterID: "M-106", InvoiceCount: 3}
		fv := testExtractor().Extract(matter, agg)
		assert.InDelta(t, 1.0, fv.InvoiceCadence, 0.01)
	})

	t.Run("no invoices means zero cadence", func(t *testing.T) {
		fv := testExtractor().Extract(matter, &model.InvoiceAggregate{MatterID: "M-106"})
		assert.Zero(t, fv.InvoiceCadence)
	})
}

func TestExtract_CategoryEncoding(t *testing.T) {
	agg := &model.InvoiceAggregate{}

	t.Run("known category", func(t *testing.T) {
		matter := &model.Matter{ID: "M-107", Category: "Litigation", OpenedAt: testNow.AddDate(0, -1, 0)}
		fv := testExtractor().Extract(matter, agg)
		assert.Equal(t, float64(1), fv.CategoryID)
	})

	t.Run("unknown category maps to reserved other id", func(t *testing.T) {
		matter := &model.Matter{ID: "M-108", Category: "maritime salvage", OpenedAt: testNow.AddDate(0, -1, 0)}
		fv := testExtractor().Extract(matter, agg)
		assert.Equal(t, float64(CategoryOtherID), fv.CategoryID)
	})
}

func TestExtract_AlwaysFinite(t *testing.T) {
	// Degenerate inputs must never produce NaN or Inf in any field.
	matters := []*model.Matter{
		{ID: "a"},
		{ID: "b", Budget: floatPtr(0)},
		{ID: "c", OpenedAt: testNow.AddDate(1, 0, 0)},
	}
	aggs := []*model.InvoiceAggregate{
		{},
		{InvoiceCount: 1},
		{InvoiceCount: 5, RateVariance: math.MaxFloat64 / 4, AvgEffectiveRate: 1e-12},
	}

	for _, m := range matters {
		for _, a := range aggs {
			fv := testExtractor().Extract(m, a)
			require.True(t, fv.IsFinite(), "matter %s produced non-finite features: %+v", m.ID, fv)
		}
	}
}

func TestLookupCategory(t *testing.T) {
	assert.Equal(t, 1, LookupCategory("litigation").ID)
	assert.Equal(t, 1, LookupCategory("  LITIGATION  ").ID)
	assert.Equal(t, CategoryOtherID, LookupCategory("").ID)
	assert.Equal(t, CategoryOtherID, LookupCategory("unknown-kind").ID)
	assert.Positive(t, LookupCategory("whatever").ExpectedCadence)
	assert.Positive(t, LookupCategory("whatever").DefaultDurationDays)
}

func TestCategoryNames(t *testing.T) {
	names := CategoryNames()
	assert.Equal(t, []string{"corporate", "employment", "ip", "litigation", "real_estate", "regulatory", "tax"}, names)
	assert.NotContains(t, names, "other")
}
