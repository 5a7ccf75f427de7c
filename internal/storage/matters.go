package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/calloway/matterwatch/internal/common"
	"github.com/calloway/matterwatch/internal/model"
	"github.com/calloway/matterwatch/internal/service"
)

// SaveMatter inserts a matter or updates an existing one by ID.
func (s *SQLiteStorage) SaveMatter(ctx context.Context, matter *model.Matter) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMatter(matter); err != nil {
		return err
	}

	status := matter.Status
	if status == "" {
		status = model.MatterStatusOpen
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matters (id, name, category, status, budget, opened_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			status = excluded.status,
			budget = excluded.budget,
			opened_at = excluded.opened_at,
			closed_at = excluded.closed_at
	`, matter.ID, matter.Name, matter.Category, string(status), matter.Budget, matter.OpenedAt, matter.ClosedAt)
	if err != nil {
		return fmt.Errorf("failed to save matter: %w", err)
	}

	return nil
}

// GetMatter retrieves a matter by its ID.
func (s *SQLiteStorage) GetMatter(ctx context.Context, id string) (*model.Matter, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, status, budget, opened_at, closed_at, created_at
		FROM matters
		WHERE id = ?
	`, id)

	matter, err := scanMatter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("matter %s: %w", id, common.ErrMatterNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get matter: %w", err)
	}
	return matter, nil
}

// GetMatters retrieves matters matching the given filter, ordered by opening
// date with the most recently opened first.
func (s *SQLiteStorage) GetMatters(ctx context.Context, filter service.MatterFilter) ([]model.Matter, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, category, status, budget, opened_at, closed_at, created_at
		FROM matters
		WHERE 1=1
	`
	args := make([]any, 0, 4)

	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	query += " ORDER BY opened_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matters []model.Matter
	for rows.Next() {
		matter, scanErr := scanMatter(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan matter: %w", scanErr)
		}
		matters = append(matters, *matter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matters: %w", err)
	}

	return matters, nil
}

// UpdateMatterStatus transitions a matter's lifecycle state and records the
// change in the status history table.
func (s *SQLiteStorage) UpdateMatterStatus(ctx context.Context, id string, status model.MatterStatus, closedAt *time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	switch status {
	case model.MatterStatusOpen, model.MatterStatusClosed:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	if status == model.MatterStatusClosed && closedAt == nil {
		return fmt.Errorf("%w: closing a matter requires a closed date", ErrInvalidStatus)
	}
	if status == model.MatterStatusOpen {
		closedAt = nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE matters SET status = ?, closed_at = ? WHERE id = ?
	`, string(status), closedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update matter status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("matter %s: %w", id, common.ErrMatterNotFound)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO matter_status_history (matter_id, status) VALUES (?, ?)
	`, id, string(status)); err != nil {
		return fmt.Errorf("failed to record status change: %w", err)
	}

	return tx.Commit()
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatter(row rowScanner) (*model.Matter, error) {
	var (
		matter   model.Matter
		status   string
		budget   sql.NullFloat64
		closedAt sql.NullTime
	)

	err := row.Scan(
		&matter.ID,
		&matter.Name,
		&matter.Category,
		&status,
		&budget,
		&matter.OpenedAt,
		&closedAt,
		&matter.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	matter.Status = model.MatterStatus(status)
	if budget.Valid {
		matter.Budget = &budget.Float64
	}
	if closedAt.Valid {
		matter.ClosedAt = &closedAt.Time
	}
	return &matter, nil
}
