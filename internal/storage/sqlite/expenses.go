package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const expenseColumns = `id, group_id, added_by, title, amount_cents, type, split_type, spent_at, created_at, updated_at`

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	var spentAt int64
	var expenseType string
	if err := row.Scan(&e.ID, &e.GroupID, &e.AddedBy, &e.Title, &e.Amount, &expenseType,
		&e.SplitType, &spentAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Type = models.ExpenseType(expenseType)
	e.SetDate(time.Unix(spentAt, 0))
	return e, nil
}

// CreateExpense persists a new ledger entry.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now()
	if expense.Date.IsZero() {
		expense.Date = now
	}
	expense.SetDate(expense.Date)
	if expense.Title == "" {
		expense.Title = models.DefaultTitle(expense.Type, expense.Date)
	}
	if expense.SplitType == "" {
		expense.SplitType = models.SplitEqual
	}
	expense.CreatedAt = now.Unix()
	expense.UpdatedAt = expense.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, added_by, title, amount_cents, type, split_type, spent_at, month, year, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.AddedBy, expense.Title, int64(expense.Amount),
		string(expense.Type), expense.SplitType, expense.Date.Unix(), expense.Month, expense.Year,
		expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, expenseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// UpdateExpense overwrites the mutable fields of an expense.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.SetDate(expense.Date)
	expense.UpdatedAt = time.Now().Unix()

	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses
		 SET title = ?, amount_cents = ?, type = ?, spent_at = ?, month = ?, year = ?, updated_at = ?
		 WHERE id = ?`,
		expense.Title, int64(expense.Amount), string(expense.Type), expense.Date.Unix(),
		expense.Month, expense.Year, expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return expectAffected(res, "expense", expense.ID)
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectAffected(res, "expense", expenseID)
}

// ListExpenses returns a group's expenses, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, groupID string, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	var where strings.Builder
	where.WriteString("group_id = ?")
	args := []any{groupID}
	if filter.Year != 0 {
		where.WriteString(" AND year = ?")
		args = append(args, filter.Year)
	}
	if filter.Month != 0 {
		where.WriteString(" AND month = ?")
		args = append(args, filter.Month)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE `+where.String()+` ORDER BY spent_at DESC, created_at DESC, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// CountMemberExpenses counts the entries a user has recorded in a group.
func (s *SQLiteStore) CountMemberExpenses(ctx context.Context, groupID, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expenses WHERE group_id = ? AND added_by = ?",
		groupID, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count member expenses: %w", err)
	}
	return n, nil
}
