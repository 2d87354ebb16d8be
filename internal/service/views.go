package service

import (
	"context"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

// GroupView is a group with its users resolved.
type GroupView struct {
	Group   *models.Group
	Creator *models.User
	Members []*models.User
}

// ExpenseView is an expense with its author resolved.
type ExpenseView struct {
	Expense *models.Expense
	AddedBy *models.User
}

// UserBalance is one member's position in a settlement report.
type UserBalance struct {
	User  *models.User
	Paid  money.Cents
	Share money.Cents
	// Balance is Paid - Share. Positive means the group owes the member.
	Balance money.Cents
}

// Settlement is one transfer in a settlement report.
type Settlement struct {
	From   *models.User
	To     *models.User
	Amount money.Cents
}

// SettlementReport is the answer to "who pays whom" for a group and period.
type SettlementReport struct {
	GroupID      string
	Period       calculator.Period
	UserBalances []UserBalance
	Settlements  []Settlement
	Summary      calculator.Summary
}

// MonthlyReport lists a period's expenses with their totals.
type MonthlyReport struct {
	Period   calculator.Period
	Expenses []*ExpenseView
	Summary  calculator.Summary
}

// resolveUsers loads the given users. IDs with no stored user get a
// placeholder carrying only the ID.
func resolveUsers(ctx context.Context, users storage.UserStore, ids []string) (map[string]*models.User, error) {
	found, err := users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fromStore(err, "load users")
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			found[id] = &models.User{ID: id}
		}
	}
	return found, nil
}

func groupView(ctx context.Context, users storage.UserStore, g *models.Group) (*GroupView, error) {
	byID, err := resolveUsers(ctx, users, append([]string{g.CreatedBy}, g.Members...))
	if err != nil {
		return nil, err
	}
	view := &GroupView{Group: g, Creator: byID[g.CreatedBy], Members: make([]*models.User, len(g.Members))}
	for i, id := range g.Members {
		view.Members[i] = byID[id]
	}
	return view, nil
}

func expenseViews(ctx context.Context, users storage.UserStore, expenses []*models.Expense) ([]*ExpenseView, error) {
	ids := make([]string, 0, len(expenses))
	for _, e := range expenses {
		ids = append(ids, e.AddedBy)
	}
	byID, err := resolveUsers(ctx, users, ids)
	if err != nil {
		return nil, err
	}
	views := make([]*ExpenseView, len(expenses))
	for i, e := range expenses {
		views[i] = &ExpenseView{Expense: e, AddedBy: byID[e.AddedBy]}
	}
	return views, nil
}

// toEntries projects stored expenses onto engine ledger entries.
func toEntries(expenses []*models.Expense) []calculator.Entry {
	entries := make([]calculator.Entry, len(expenses))
	for i, e := range expenses {
		entries[i] = calculator.Entry{
			ID:        e.ID,
			GroupID:   e.GroupID,
			MemberID:  e.AddedBy,
			Amount:    e.Amount,
			Kind:      calculator.Kind(e.Type),
			Timestamp: e.Date,
		}
	}
	return entries
}

func filterFor(p calculator.Period) storage.ExpenseFilter {
	return storage.ExpenseFilter{Year: p.Year, Month: p.Month}
}
