package forecast

import (
	"time"

	"github.com/calloway/matterwatch/internal/features"
	"github.com/calloway/matterwatch/internal/model"
)

// Extrapolator is the deterministic trend-based projection used when the
// model is unavailable or a matter lacks the history to trust it. It must
// produce a result for any valid matter, including one with a single
// invoice: it is the availability backstop for the whole engine.
type Extrapolator struct {
	now     func() time.Time
	ceiling float64
}

// NewExtrapolator creates an extrapolator. The ceiling bounds the projected
// ratio so sparse data never produces a wild projection.
func NewExtrapolator(ceilingMultiple float64) *Extrapolator {
	return NewExtrapolatorAt(ceilingMultiple, time.Now)
}

// NewExtrapolatorAt creates an extrapolator with a fixed clock for tests.
func NewExtrapolatorAt(ceilingMultiple float64, now func() time.Time) *Extrapolator {
	return &Extrapolator{ceiling: ceilingMultiple, now: now}
}

// Extrapolate projects the final cost as a multiple of current spend by
// fitting the matter's burn rate and running it to an assumed duration: the
// category's default, shortened to the budget-implied duration when a budget
// exists. The result is always clipped to [1.0, ceiling]: never below what
// is already billed, never above the configured multiple of it.
func (e *Extrapolator) Extrapolate(matter *model.Matter, agg *model.InvoiceAggregate) float64 {
	if agg.TotalBilled <= 0 {
		return 1.0
	}

	elapsed := matter.AgeDays(e.now())
	if elapsed < 1 {
		elapsed = 1
	}
	burnPerDay := agg.TotalBilled / elapsed

	duration := features.LookupCategory(matter.Category).DefaultDurationDays
	if matter.HasBudget() && burnPerDay > 0 {
		if implied := *matter.Budget / burnPerDay; implied < duration {
			duration = implied
		}
	}
	if duration < elapsed {
		duration = elapsed
	}

	ratio := burnPerDay * duration / agg.TotalBilled
	if ratio < 1.0 {
		ratio = 1.0
	}
	if e.ceiling > 1.0 && ratio > e.ceiling {
		ratio = e.ceiling
	}
	return ratio
}
