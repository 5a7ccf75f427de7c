package forecast

import (
	"testing"
	"time"

	"github.com/calloway/matterwatch/internal/model"
	"github.com/stretchr/testify/assert"
)

var fallbackNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func testExtrapolator(ceiling float64) *Extrapolator {
	return NewExtrapolatorAt(ceiling, func() time.Time { return fallbackNow })
}

func fbFloatPtr(f float64) *float64 { return &f }

func TestExtrapolate_SingleInvoice(t *testing.T) {
	// The backstop property: one invoice must still produce a projection.
	matter := &model.Matter{
		ID:       "M-3001",
		Category: "corporate",
		OpenedAt: fallbackNow.AddDate(0, 0, -30),
	}
	agg := &model.InvoiceAggregate{MatterID: "M-3001", TotalBilled: 20000, InvoiceCount: 1}

	ratio := testExtrapolator(3.0).Extrapolate(matter, agg)

	// 30 days elapsed of a 270-day corporate default: the raw trend is 9x,
	// clipped to the ceiling.
	assert.Equal(t, 3.0, ratio)
}

func TestExtrapolate_BudgetImpliedDuration(t *testing.T) {
	// Burn of 1000/day against a 100k budget implies 100 days, shorter than
	// the 540-day litigation default.
	matter := &model.Matter{
		ID:       "M-3002",
		Category: "litigation",
		Budget:   fbFloatPtr(100000),
		OpenedAt: fallbackNow.AddDate(0, 0, -60),
	}
	agg := &model.InvoiceAggregate{MatterID: "M-3002", TotalBilled: 60000, InvoiceCount: 2}

	ratio := testExtrapolator(3.0).Extrapolate(matter, agg)

	// 1000/day * 100 days = 100k projected over 60k billed.
	assert.InDelta(t, 100000.0/60000.0, ratio, 1e-9)
}

func TestExtrapolate_MatterPastAssumedDuration(t *testing.T) {
	// A matter older than its assumed duration projects no further growth.
	matter := &model.Matter{
		ID:       "M-3003",
		Category: "tax", // 240-day default
		OpenedAt: fallbackNow.AddDate(0, 0, -400),
	}
	agg := &model.InvoiceAggregate{MatterID: "M-3003", TotalBilled: 80000, InvoiceCount: 6}

	assert.Equal(t, 1.0, testExtrapolator(3.0).Extrapolate(matter, agg))
}

func TestExtrapolate_NoSpend(t *testing.T) {
	matter := &model.Matter{ID: "M-3004", Category: "other", OpenedAt: fallbackNow.AddDate(0, -1, 0)}
	agg := &model.InvoiceAggregate{MatterID: "M-3004"}
	assert.Equal(t, 1.0, testExtrapolator(3.0).Extrapolate(matter, agg))
}

func TestExtrapolate_BoundsProperty(t *testing.T) {
	// For any non-negative elapsed time the output stays within
	// [1.0, ceiling], never below current spend and never above the
	// configured multiple of it.
	const ceiling = 2.5
	ex := testExtrapolator(ceiling)

	for _, ageDays := range []int{0, 1, 7, 30, 90, 365, 2000} {
		for _, billed := range []float64{1, 500, 75000, 3.2e6} {
			matter := &model.Matter{
				ID:       "M-3005",
				Category: "regulatory",
				OpenedAt: fallbackNow.AddDate(0, 0, -ageDays),
			}
			agg := &model.InvoiceAggregate{MatterID: "M-3005", TotalBilled: billed, InvoiceCount: 2}

			ratio := ex.Extrapolate(matter, agg)
			assert.GreaterOrEqual(t, ratio, 1.0, "age %d billed %.0f", ageDays, billed)
			assert.LessOrEqual(t, ratio, ceiling, "age %d billed %.0f", ageDays, billed)
		}
	}
}

func TestExtrapolate_Deterministic(t *testing.T) {
	matter := &model.Matter{
		ID:       "M-3006",
		Category: "employment",
		Budget:   fbFloatPtr(250000),
		OpenedAt: fallbackNow.AddDate(0, 0, -45),
	}
	agg := &model.InvoiceAggregate{MatterID: "M-3006", TotalBilled: 40000, InvoiceCount: 2}

	ex := testExtrapolator(3.0)
	assert.Equal(t, ex.Extrapolate(matter, agg), ex.Extrapolate(matter, agg))
}
