package models

import (
	"fmt"
	"time"

	"github.com/mmynk/settleup/internal/money"
)

// ExpenseType distinguishes money spent from money received.
type ExpenseType string

const (
	ExpenseTypeExpense ExpenseType = "EXPENSE"
	ExpenseTypeIncome  ExpenseType = "INCOME"
)

// SplitEqual is the only split policy: every member carries the same share.
const SplitEqual = "EQUAL"

// Expense is one ledger entry in a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this entry belongs to.
	GroupID string

	// AddedBy is the user who paid (EXPENSE) or received (INCOME) the money.
	AddedBy string

	// Title is a short description (e.g., "Groceries").
	Title string

	// Amount is always positive.
	Amount money.Cents

	Type ExpenseType

	// SplitType is always SplitEqual.
	SplitType string

	// Date is when the money changed hands.
	Date time.Time

	// Month (1-12) and Year are derived from Date in UTC.
	Month int
	Year  int

	CreatedAt int64
	UpdatedAt int64
}

// SetDate sets Date and keeps Month and Year in step with it.
func (e *Expense) SetDate(t time.Time) {
	e.Date = t.UTC()
	e.Month = int(e.Date.Month())
	e.Year = e.Date.Year()
}

// DefaultTitle is the title given to entries saved without one,
// e.g. "Expense - Jan 2, 2006".
func DefaultTitle(t ExpenseType, date time.Time) string {
	label := "Expense"
	if t == ExpenseTypeIncome {
		label = "Income"
	}
	return fmt.Sprintf("%s - %s", label, date.Format("Jan 2, 2006"))
}
