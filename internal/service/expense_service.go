package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

const maxTitleLength = 200

// ExpenseInput is a new ledger entry. A zero Date means now.
type ExpenseInput struct {
	GroupID string
	Title   string
	Amount  money.Cents
	Type    models.ExpenseType
	Date    time.Time
}

// ExpensePatch changes the non-nil fields of an entry.
type ExpensePatch struct {
	Title  *string
	Amount *money.Cents
	Type   *models.ExpenseType
	Date   *time.Time
}

// ExpenseService records and lists ledger entries.
type ExpenseService struct {
	store storage.Store
	now   func() time.Time
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store, now: time.Now}
}

func validateTitle(v *ValidationError, title string) string {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > maxTitleLength {
		v.add("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
	return title
}

func validateAmount(v *ValidationError, amount money.Cents) {
	switch {
	case amount <= 0:
		v.add("amount", "must be greater than zero")
	case amount > money.MaxAmount:
		v.add("amount", "must be at most "+money.MaxAmount.String())
	}
}

func validateType(v *ValidationError, t models.ExpenseType) {
	if !calculator.Kind(t).Valid() {
		v.add("type", "must be EXPENSE or INCOME")
	}
}

// Create records a new entry paid (or received) by the caller.
func (s *ExpenseService) Create(ctx context.Context, caller auth.Identity, in ExpenseInput) (*ExpenseView, error) {
	v := &ValidationError{}
	if strings.TrimSpace(in.GroupID) == "" {
		v.add("groupId", "is required")
	}
	title := validateTitle(v, in.Title)
	validateAmount(v, in.Amount)
	validateType(v, in.Type)
	if err := v.errOrNil(); err != nil {
		return nil, err
	}

	if _, err := memberGroup(ctx, s.store, caller, in.GroupID); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:   in.GroupID,
		AddedBy:   caller.UserID,
		Title:     title,
		Amount:    in.Amount,
		Type:      in.Type,
		SplitType: models.SplitEqual,
		Date:      in.Date,
	}
	if expense.Date.IsZero() {
		expense.Date = s.now()
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", in.GroupID, "error", err)
		return nil, fromStore(err, "create expense")
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"type", expense.Type,
		"amount", expense.Amount.String(),
	)
	return s.view(ctx, expense)
}

// List returns every entry of a group, newest first.
func (s *ExpenseService) List(ctx context.Context, caller auth.Identity, groupID string) ([]*ExpenseView, error) {
	if _, err := memberGroup(ctx, s.store, caller, groupID); err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, groupID, storage.ExpenseFilter{})
	if err != nil {
		return nil, fromStore(err, "list expenses")
	}
	return expenseViews(ctx, s.store, expenses)
}

// Monthly returns the entries of one period together with their totals.
func (s *ExpenseService) Monthly(ctx context.Context, caller auth.Identity, groupID string, period calculator.Period) (*MonthlyReport, error) {
	if err := period.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := memberGroup(ctx, s.store, caller, groupID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, groupID, filterFor(period))
	if err != nil {
		return nil, fromStore(err, "list expenses")
	}
	views, err := expenseViews(ctx, s.store, expenses)
	if err != nil {
		return nil, err
	}

	summary, err := calculator.Summarize(toEntries(expenses))
	if err != nil {
		return nil, err
	}

	return &MonthlyReport{
		Period:   period,
		Expenses: views,
		Summary:  summary,
	}, nil
}

// Update applies patch to an entry. Only its author may change it.
func (s *ExpenseService) Update(ctx context.Context, caller auth.Identity, expenseID string, patch ExpensePatch) (*ExpenseView, error) {
	expense, err := s.authored(ctx, caller, expenseID, "update")
	if err != nil {
		return nil, err
	}

	v := &ValidationError{}
	if patch.Title != nil {
		expense.Title = validateTitle(v, *patch.Title)
		if expense.Title == "" {
			expense.Title = models.DefaultTitle(expense.Type, expense.Date)
		}
	}
	if patch.Amount != nil {
		validateAmount(v, *patch.Amount)
		expense.Amount = *patch.Amount
	}
	if patch.Type != nil {
		validateType(v, *patch.Type)
		expense.Type = *patch.Type
	}
	if patch.Date != nil {
		if patch.Date.IsZero() {
			v.add("date", "must be a valid date")
		}
		expense.Date = *patch.Date
	}
	if err := v.errOrNil(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, fromStore(err, "update expense")
	}

	slog.Info("Expense updated", "expense_id", expense.ID, "group_id", expense.GroupID)
	return s.view(ctx, expense)
}

// Delete removes an entry. Only its author may delete it.
func (s *ExpenseService) Delete(ctx context.Context, caller auth.Identity, expenseID string) error {
	expense, err := s.authored(ctx, caller, expenseID, "delete")
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return fromStore(err, "delete expense")
	}

	slog.Info("Expense deleted", "expense_id", expenseID, "group_id", expense.GroupID)
	return nil
}

func (s *ExpenseService) authored(ctx context.Context, caller auth.Identity, expenseID, action string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, fromStore(err, "expense "+expenseID)
	}
	if expense.AddedBy != caller.UserID {
		return nil, fmt.Errorf("only the author can %s expense %s: %w", action, expenseID, ErrForbidden)
	}
	return expense, nil
}

func (s *ExpenseService) view(ctx context.Context, expense *models.Expense) (*ExpenseView, error) {
	views, err := expenseViews(ctx, s.store, []*models.Expense{expense})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}
