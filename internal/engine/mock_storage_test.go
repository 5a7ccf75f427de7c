package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/calloway/matterwatch/internal/common"
	"github.com/calloway/matterwatch/internal/model"
	"github.com/calloway/matterwatch/internal/service"
)

// mockStorage is an in-memory Storage for engine tests.
type mockStorage struct {
	matters  map[string]*model.Matter
	invoices map[string][]model.Invoice
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		matters:  make(map[string]*model.Matter),
		invoices: make(map[string][]model.Invoice),
	}
}

func (m *mockStorage) SaveMatter(_ context.Context, matter *model.Matter) error {
	m.matters[matter.ID] = matter
	return nil
}

func (m *mockStorage) GetMatter(_ context.Context, id string) (*model.Matter, error) {
	matter, ok := m.matters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrMatterNotFound, id)
	}
	return matter, nil
}

func (m *mockStorage) GetMatters(_ context.Context, filter service.MatterFilter) ([]model.Matter, error) {
	var out []model.Matter
	for _, matter := range m.matters {
		if filter.Status != nil && matter.Status != *filter.Status {
			continue
		}
		out = append(out, *matter)
	}
	return out, nil
}

func (m *mockStorage) UpdateMatterStatus(_ context.Context, id string, status model.MatterStatus, closedAt *time.Time) error {
	matter, ok := m.matters[id]
	if !ok {
		return common.ErrMatterNotFound
	}
	matter.Status = status
	matter.ClosedAt = closedAt
	return nil
}

func (m *mockStorage) SaveInvoices(_ context.Context, invoices []model.Invoice) (int, error) {
	for _, inv := range invoices {
		m.invoices[inv.MatterID] = append(m.invoices[inv.MatterID], inv)
	}
	return len(invoices), nil
}

func (m *mockStorage) GetInvoicesByMatter(_ context.Context, matterID string) ([]model.Invoice, error) {
	return m.invoices[matterID], nil
}

func (m *mockStorage) GetInvoiceAggregate(_ context.Context, matterID string) (*model.InvoiceAggregate, error) {
	agg := model.AggregateInvoices(matterID, m.invoices[matterID])
	return &agg, nil
}

func (m *mockStorage) Migrate(_ context.Context) error { return nil }
func (m *mockStorage) Close() error                    { return nil }
