// Package importer parses e-billing CSV exports into invoices.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/calloway/matterwatch/internal/model"
)

// Columns the e-billing export must carry. Hour and firm columns are
// optional; flat-fee exports routinely omit them.
var requiredColumns = []string{"matter_id", "invoice_number", "date", "amount"}

// Parser implements e-billing CSV file parsing.
type Parser struct{}

// NewParser creates a new CSV parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile parses an e-billing CSV export and returns invoices. Rows that
// cannot be parsed are skipped with a warning rather than aborting the whole
// import; a malformed header is fatal.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Invoice, error) {
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var invoices []model.Invoice
	skipped := 0
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, readErr := r.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			slog.Warn("Skipping unreadable CSV row", "line", line, "error", readErr)
			skipped++
			continue
		}

		inv, rowErr := parseRow(columns, record)
		if rowErr != nil {
			slog.Warn("Skipping invalid invoice row", "line", line, "error", rowErr)
			skipped++
			continue
		}
		inv.Hash = inv.GenerateHash()
		invoices = append(invoices, inv)
	}

	slog.Info("Parsed e-billing CSV",
		"invoices", len(invoices),
		"skipped_rows", skipped)

	return invoices, nil
}

// mapColumns resolves header names to column indexes, case-insensitively.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		// Strip a UTF-8 BOM exported by some e-billing systems
		key = strings.TrimPrefix(key, "\ufeff")
		columns[key] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV header missing required columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func parseRow(columns map[string]int, record []string) (model.Invoice, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	inv := model.Invoice{
		MatterID:      field("matter_id"),
		InvoiceNumber: field("invoice_number"),
		FirmName:      field("firm_name"),
	}
	if inv.MatterID == "" {
		return model.Invoice{}, fmt.Errorf("missing matter_id")
	}
	if inv.InvoiceNumber == "" {
		return model.Invoice{}, fmt.Errorf("missing invoice_number")
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return model.Invoice{}, err
	}
	inv.Date = date

	amount, err := parseAmount(field("amount"))
	if err != nil {
		return model.Invoice{}, err
	}
	if amount < 0 {
		return model.Invoice{}, fmt.Errorf("negative amount %.2f", amount)
	}
	inv.Amount = amount

	hours := map[string]*float64{
		"partner_hours":   &inv.PartnerHours,
		"associate_hours": &inv.AssociateHours,
		"paralegal_hours": &inv.ParalegalHours,
		"other_hours":     &inv.OtherHours,
	}
	for name, dst := range hours {
		raw := field(name)
		if raw == "" {
			continue
		}
		v, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			return model.Invoice{}, fmt.Errorf("invalid %s %q: %w", name, raw, parseErr)
		}
		if v < 0 {
			return model.Invoice{}, fmt.Errorf("negative %s %.2f", name, v)
		}
		*dst = v
	}

	return inv, nil
}

// dateFormats covers the formats seen across e-billing vendors.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"2006-01-02T15:04:05Z07:00",
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func parseAmount(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing amount")
	}
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amount, nil
}
