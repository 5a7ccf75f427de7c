// Package storage provides the data persistence layer for the matterwatch application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calloway/matterwatch/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrInvalidMatter  = errors.New("invalid matter")
	ErrInvalidInvoice = errors.New("invalid invoice")
	ErrInvalidStatus  = errors.New("invalid matter status")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateMatter validates a single matter.
func validateMatter(matter *model.Matter) error {
	if matter == nil {
		return fmt.Errorf("%w: matter", ErrNilParameter)
	}
	if strings.TrimSpace(matter.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidMatter)
	}
	if strings.TrimSpace(matter.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidMatter)
	}
	if matter.OpenedAt.IsZero() {
		return fmt.Errorf("%w: missing opened date", ErrInvalidMatter)
	}
	if matter.Budget != nil && *matter.Budget <= 0 {
		return fmt.Errorf("%w: budget must be positive when set", ErrInvalidMatter)
	}
	switch matter.Status {
	case model.MatterStatusOpen, model.MatterStatusClosed:
	case "":
		// Defaulted to open at save time
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, matter.Status)
	}
	return nil
}

// validateInvoices validates a slice of invoices.
func validateInvoices(invoices []model.Invoice) error {
	if invoices == nil {
		return fmt.Errorf("%w: invoices", ErrNilParameter)
	}
	if len(invoices) == 0 {
		return fmt.Errorf("%w: invoices", ErrEmptySlice)
	}

	for i, inv := range invoices {
		if err := validateInvoice(&inv); err != nil {
			return fmt.Errorf("invoice at index %d: %w", i, err)
		}
	}
	return nil
}

// validateInvoice validates a single invoice.
func validateInvoice(inv *model.Invoice) error {
	if inv == nil {
		return fmt.Errorf("%w: invoice", ErrNilParameter)
	}
	if inv.MatterID == "" {
		return fmt.Errorf("%w: missing matter ID", ErrInvalidInvoice)
	}
	if inv.InvoiceNumber == "" {
		return fmt.Errorf("%w: missing invoice number", ErrInvalidInvoice)
	}
	if inv.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidInvoice)
	}
	if inv.Amount < 0 {
		return fmt.Errorf("%w: amount cannot be negative", ErrInvalidInvoice)
	}
	if inv.PartnerHours < 0 || inv.AssociateHours < 0 || inv.ParalegalHours < 0 || inv.OtherHours < 0 {
		return fmt.Errorf("%w: hours cannot be negative", ErrInvalidInvoice)
	}
	return nil
}
