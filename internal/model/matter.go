// Package model defines the core domain models used throughout the application.
package model

import "time"

// MatterStatus indicates the lifecycle state of a matter.
type MatterStatus string

// Matter status constants.
const (
	MatterStatusOpen   MatterStatus = "open"
	MatterStatusClosed MatterStatus = "closed"
)

// Matter represents a legal case or engagement tracked for billing purposes.
// The forecasting engine treats matters as read-only input owned by the
// surrounding case-management data.
type Matter struct {
	OpenedAt  time.Time
	ClosedAt  *time.Time // nil while the matter remains open
	Budget    *float64   // nil when no budget has been allocated
	ID        string
	Name      string
	Category  string
	Status    MatterStatus
	CreatedAt time.Time
}

// HasBudget reports whether the matter has a positive allocated budget.
func (m *Matter) HasBudget() bool {
	return m.Budget != nil && *m.Budget > 0
}

// AgeDays returns the matter's age in whole days as of now. A closed matter
// stops aging at its closing date.
func (m *Matter) AgeDays(now time.Time) float64 {
	end := now
	if m.ClosedAt != nil && m.ClosedAt.Before(now) {
		end = *m.ClosedAt
	}
	age := end.Sub(m.OpenedAt).Hours() / 24
	if age < 0 {
		return 0
	}
	return age
}
