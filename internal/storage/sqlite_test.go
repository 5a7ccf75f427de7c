package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/calloway/matterwatch/internal/common"
	"github.com/calloway/matterwatch/internal/model"
	"github.com/calloway/matterwatch/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func createTestMatter(id string) *model.Matter {
	budget := 500000.0
	return &model.Matter{
		ID:       id,
		Name:     "Acme Corp v. Widget Industries",
		Category: "litigation",
		Status:   model.MatterStatusOpen,
		Budget:   &budget,
		OpenedAt: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func createTestInvoices(matterID string, count int) []model.Invoice {
	invoices := make([]model.Invoice, count)
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		invoices[i] = model.Invoice{
			MatterID:       matterID,
			InvoiceNumber:  fmt.Sprintf("INV-%04d", i+1),
			FirmName:       "Cravath & Moore LLP",
			Date:           base.AddDate(0, i, 0),
			Amount:         float64(i+1) * 25000,
			PartnerHours:   float64(i+1) * 10,
			AssociateHours: float64(i+1) * 30,
			ParalegalHours: float64(i+1) * 5,
		}
		invoices[i].Hash = invoices[i].GenerateHash()
	}
	return invoices
}

func TestSaveMatterRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	matter := createTestMatter("M-1001")
	require.NoError(t, store.SaveMatter(ctx, matter))

	got, err := store.GetMatter(ctx, "M-1001")
	require.NoError(t, err)
	assert.Equal(t, matter.ID, got.ID)
	assert.Equal(t, matter.Name, got.Name)
	assert.Equal(t, matter.Category, got.Category)
	assert.Equal(t, model.MatterStatusOpen, got.Status)
	require.NotNil(t, got.Budget)
	assert.InDelta(t, 500000.0, *got.Budget, 0.001)
	assert.Nil(t, got.ClosedAt)
	assert.True(t, got.OpenedAt.Equal(matter.OpenedAt))
}

func TestSaveMatterUpsert(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	matter := createTestMatter("M-1001")
	require.NoError(t, store.SaveMatter(ctx, matter))

	matter.Name = "Acme Corp v. Widget Industries (consolidated)"
	matter.Budget = nil
	require.NoError(t, store.SaveMatter(ctx, matter))

	got, err := store.GetMatter(ctx, "M-1001")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp v. Widget Industries (consolidated)", got.Name)
	assert.Nil(t, got.Budget)
}

func TestSaveMatterValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		mutate  func(*model.Matter)
		name    string
		wantErr error
	}{
		{
			name:    "missing ID",
			mutate:  func(m *model.Matter) { m.ID = "" },
			wantErr: ErrInvalidMatter,
		},
		{
			name:    "missing name",
			mutate:  func(m *model.Matter) { m.Name = "" },
			wantErr: ErrInvalidMatter,
		},
		{
			name:    "missing opened date",
			mutate:  func(m *model.Matter) { m.OpenedAt = time.Time{} },
			wantErr: ErrInvalidMatter,
		},
		{
			name: "non-positive budget",
			mutate: func(m *model.Matter) {
				zero := 0.0
				m.Budget = &zero
			},
			wantErr: ErrInvalidMatter,
		},
		{
			name:    "bogus status",
			mutate:  func(m *model.Matter) { m.Status = "archived" },
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matter := createTestMatter("M-2001")
			tt.mutate(matter)
			err := store.SaveMatter(ctx, matter)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetMatterNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetMatter(context.Background(), "M-9999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMatterNotFound))
}

func TestGetMattersFiltering(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for i, category := range []string{"litigation", "corporate", "litigation"} {
		matter := createTestMatter(fmt.Sprintf("M-%d", i+1))
		matter.Category = category
		matter.OpenedAt = matter.OpenedAt.AddDate(0, i, 0)
		require.NoError(t, store.SaveMatter(ctx, matter))
	}
	closedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateMatterStatus(ctx, "M-2", model.MatterStatusClosed, &closedAt))

	all, err := store.GetMatters(ctx, service.MatterFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Most recently opened first
	assert.Equal(t, "M-3", all[0].ID)

	litigation, err := store.GetMatters(ctx, service.MatterFilter{Category: "litigation"})
	require.NoError(t, err)
	assert.Len(t, litigation, 2)

	open := model.MatterStatusOpen
	openMatters, err := store.GetMatters(ctx, service.MatterFilter{Status: &open})
	require.NoError(t, err)
	assert.Len(t, openMatters, 2)

	limited, err := store.GetMatters(ctx, service.MatterFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "M-2", limited[0].ID)
}

func TestUpdateMatterStatus(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveMatter(ctx, createTestMatter("M-1")))

	closedAt := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateMatterStatus(ctx, "M-1", model.MatterStatusClosed, &closedAt))

	got, err := store.GetMatter(ctx, "M-1")
	require.NoError(t, err)
	assert.Equal(t, model.MatterStatusClosed, got.Status)
	require.NotNil(t, got.ClosedAt)
	assert.True(t, got.ClosedAt.Equal(closedAt))

	// Reopening clears the closed date
	require.NoError(t, store.UpdateMatterStatus(ctx, "M-1", model.MatterStatusOpen, nil))
	got, err = store.GetMatter(ctx, "M-1")
	require.NoError(t, err)
	assert.Equal(t, model.MatterStatusOpen, got.Status)
	assert.Nil(t, got.ClosedAt)
}

func TestUpdateMatterStatusErrors(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	closedAt := time.Now()
	err := store.UpdateMatterStatus(ctx, "M-404", model.MatterStatusClosed, &closedAt)
	assert.True(t, errors.Is(err, common.ErrMatterNotFound))

	require.NoError(t, store.SaveMatter(ctx, createTestMatter("M-1")))
	err = store.UpdateMatterStatus(ctx, "M-1", model.MatterStatusClosed, nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
