package storage

import (
	"context"
	"fmt"

	"github.com/calloway/matterwatch/internal/model"
)

// SaveInvoices saves a batch of invoices, skipping any whose hash already
// exists. It returns the number of invoices actually inserted.
func (s *SQLiteStorage) SaveInvoices(ctx context.Context, invoices []model.Invoice) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateInvoices(invoices); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO invoices (
			id, hash, matter_id, invoice_number, firm_name, date,
			amount, partner_hours, associate_hours, paralegal_hours, other_hours
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	saved := 0
	for _, inv := range invoices {
		if inv.Hash == "" {
			inv.Hash = inv.GenerateHash()
		}
		// The hash doubles as the ID for invoices imported without one
		if inv.ID == "" {
			inv.ID = inv.Hash
		}

		result, execErr := stmt.ExecContext(ctx,
			inv.ID,
			inv.Hash,
			inv.MatterID,
			inv.InvoiceNumber,
			inv.FirmName,
			inv.Date,
			inv.Amount,
			inv.PartnerHours,
			inv.AssociateHours,
			inv.ParalegalHours,
			inv.OtherHours,
		)
		if execErr != nil {
			return 0, fmt.Errorf("failed to save invoice %s: %w", inv.InvoiceNumber, execErr)
		}

		affected, affErr := result.RowsAffected()
		if affErr != nil {
			return 0, fmt.Errorf("failed to check insert result: %w", affErr)
		}
		saved += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit invoices: %w", err)
	}
	return saved, nil
}

// GetInvoicesByMatter retrieves all invoices billed against a matter, ordered
// by invoice date.
func (s *SQLiteStorage) GetInvoicesByMatter(ctx context.Context, matterID string) ([]model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(matterID, "matterID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hash, matter_id, invoice_number, firm_name, date,
			amount, partner_hours, associate_hours, paralegal_hours, other_hours
		FROM invoices
		WHERE matter_id = ?
		ORDER BY date ASC
	`, matterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var invoices []model.Invoice
	for rows.Next() {
		var inv model.Invoice
		if scanErr := rows.Scan(
			&inv.ID,
			&inv.Hash,
			&inv.MatterID,
			&inv.InvoiceNumber,
			&inv.FirmName,
			&inv.Date,
			&inv.Amount,
			&inv.PartnerHours,
			&inv.AssociateHours,
			&inv.ParalegalHours,
			&inv.OtherHours,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", scanErr)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}

	return invoices, nil
}

// GetInvoiceAggregate rolls a matter's invoice history up into a single
// aggregate. A matter with no invoices yields a zero-valued aggregate.
func (s *SQLiteStorage) GetInvoiceAggregate(ctx context.Context, matterID string) (*model.InvoiceAggregate, error) {
	invoices, err := s.GetInvoicesByMatter(ctx, matterID)
	if err != nil {
		return nil, err
	}

	agg := model.AggregateInvoices(matterID, invoices)
	return &agg, nil
}
