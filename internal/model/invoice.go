package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Invoice represents a single legal invoice billed against a matter.
type Invoice struct {
	Date           time.Time
	ID             string
	MatterID       string
	InvoiceNumber  string
	FirmName       string // Billing law firm
	Hash           string
	Amount         float64
	PartnerHours   float64
	AssociateHours float64
	ParalegalHours float64
	OtherHours     float64
}

// TotalHours returns the hours billed across all timekeeper roles.
func (i *Invoice) TotalHours() float64 {
	return i.PartnerHours + i.AssociateHours + i.ParalegalHours + i.OtherHours
}

// EffectiveRate returns the blended hourly rate for this invoice, or 0 when
// no hours were billed (flat-fee or expense-only invoices).
func (i *Invoice) EffectiveRate() float64 {
	hours := i.TotalHours()
	if hours <= 0 {
		return 0
	}
	return i.Amount / hours
}

// GenerateHash creates a unique hash for duplicate detection.
func (i *Invoice) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%.2f",
		i.MatterID,
		i.InvoiceNumber,
		i.Date.Format("2006-01-02"),
		i.Amount)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// InvoiceAggregate is a per-matter rollup of the matter's invoice history.
// It is the engine's view of billing activity; individual invoices never
// reach the analyzers.
type InvoiceAggregate struct {
	FirstInvoiceDate time.Time
	LastInvoiceDate  time.Time
	MatterID         string
	TotalBilled      float64
	InvoiceCount     int
	PartnerHours     float64
	AssociateHours   float64
	ParalegalHours   float64
	OtherHours       float64
	MaxInvoiceAmount float64
	AvgEffectiveRate float64
	RateVariance     float64 // Population variance of per-invoice effective rates
}

// TotalHours returns the hours billed across all roles for the matter.
func (a *InvoiceAggregate) TotalHours() float64 {
	return a.PartnerHours + a.AssociateHours + a.ParalegalHours + a.OtherHours
}

// AggregateInvoices rolls a matter's invoices up into an InvoiceAggregate.
// A nil or empty slice yields a zero-valued aggregate, never an error: a
// matter with no billing history is a valid input downstream.
func AggregateInvoices(matterID string, invoices []Invoice) InvoiceAggregate {
	agg := InvoiceAggregate{MatterID: matterID}
	if len(invoices) == 0 {
		return agg
	}

	rates := make([]float64, 0, len(invoices))
	for idx := range invoices {
		inv := &invoices[idx]
		agg.TotalBilled += inv.Amount
		agg.PartnerHours += inv.PartnerHours
		agg.AssociateHours += inv.AssociateHours
		agg.ParalegalHours += inv.ParalegalHours
		agg.OtherHours += inv.OtherHours

		if agg.FirstInvoiceDate.IsZero() || inv.Date.Before(agg.FirstInvoiceDate) {
			agg.FirstInvoiceDate = inv.Date
		}
		if inv.Date.After(agg.LastInvoiceDate) {
			agg.LastInvoiceDate = inv.Date
		}
		if inv.Amount > agg.MaxInvoiceAmount {
			agg.MaxInvoiceAmount = inv.Amount
		}

		if rate := inv.EffectiveRate(); rate > 0 {
			rates = append(rates, rate)
		}
	}
	agg.InvoiceCount = len(invoices)

	if len(rates) > 0 {
		var sum float64
		for _, r := range rates {
			sum += r
		}
		agg.AvgEffectiveRate = sum / float64(len(rates))

		var sq float64
		for _, r := range rates {
			d := r - agg.AvgEffectiveRate
			sq += d * d
		}
		agg.RateVariance = sq / float64(len(rates))
	}

	return agg
}
