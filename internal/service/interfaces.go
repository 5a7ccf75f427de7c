// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/calloway/matterwatch/internal/model"
)

// MatterFilter defines filtering options for matter queries.
type MatterFilter struct {
	Status   *model.MatterStatus
	Category string
	Limit    int
	Offset   int
}

// Storage defines the contract for our persistence layer. The forecasting
// engine consumes matters and invoice aggregates through this interface and
// never reaches the database directly.
type Storage interface {
	// Matter operations
	SaveMatter(ctx context.Context, matter *model.Matter) error
	GetMatter(ctx context.Context, id string) (*model.Matter, error)
	GetMatters(ctx context.Context, filter MatterFilter) ([]model.Matter, error)
	UpdateMatterStatus(ctx context.Context, id string, status model.MatterStatus, closedAt *time.Time) error

	// Invoice operations
	SaveInvoices(ctx context.Context, invoices []model.Invoice) (saved int, err error)
	GetInvoicesByMatter(ctx context.Context, matterID string) ([]model.Invoice, error)
	GetInvoiceAggregate(ctx context.Context, matterID string) (*model.InvoiceAggregate, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ReportWriter exports a spend report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, report *SpendReport) error
}

// SpendReport holds all per-matter analytics assembled for export.
type SpendReport struct {
	GeneratedAt time.Time
	Matters     []model.MatterAnalytics
}

// RetryOptions configures retry behavior for external integrations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
