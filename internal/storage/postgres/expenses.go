package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

const expenseColumns = `id, group_id, added_by, title, amount_cents, type, split_type, spent_at, created_at, updated_at`

func scanExpense(row pgx.Row) (*models.Expense, error) {
	e := &models.Expense{}
	var amount, spentAt int64
	var expenseType string
	if err := row.Scan(&e.ID, &e.GroupID, &e.AddedBy, &e.Title, &amount, &expenseType,
		&e.SplitType, &spentAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Amount = money.Cents(amount)
	e.Type = models.ExpenseType(expenseType)
	e.SetDate(time.Unix(spentAt, 0))
	return e, nil
}

// CreateExpense persists a new ledger entry.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
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

	_, err := s.pool.Exec(ctx,
		`INSERT INTO expenses (id, group_id, added_by, title, amount_cents, type, split_type, spent_at, month, year, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
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
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, expenseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// UpdateExpense overwrites the mutable fields of an expense.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.SetDate(expense.Date)
	expense.UpdatedAt = time.Now().Unix()

	tag, err := s.pool.Exec(ctx,
		`UPDATE expenses
		 SET title = $1, amount_cents = $2, type = $3, spent_at = $4, month = $5, year = $6, updated_at = $7
		 WHERE id = $8`,
		expense.Title, int64(expense.Amount), string(expense.Type), expense.Date.Unix(),
		expense.Month, expense.Year, expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return expectAffected(tag, "expense", expense.ID)
}

// DeleteExpense removes an expense by ID.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM expenses WHERE id = $1", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectAffected(tag, "expense", expenseID)
}

// ListExpenses returns a group's expenses, newest first.
func (s *Store) ListExpenses(ctx context.Context, groupID string, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	var where strings.Builder
	where.WriteString("group_id = $1")
	args := []any{groupID}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		fmt.Fprintf(&where, " AND year = $%d", len(args))
	}
	if filter.Month != 0 {
		args = append(args, filter.Month)
		fmt.Fprintf(&where, " AND month = $%d", len(args))
	}

	rows, err := s.pool.Query(ctx,
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
func (s *Store) CountMemberExpenses(ctx context.Context, groupID, userID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM expenses WHERE group_id = $1 AND added_by = $2",
		groupID, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count member expenses: %w", err)
	}
	return n, nil
}
