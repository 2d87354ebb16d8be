// Package calculator implements the balance and settlement engine.
//
// The engine is three pure stages:
//
//	entries -> Aggregate -> ComputeBalances -> Minimize -> transfers
//
// Every stage works on money.Cents, holds no state between calls and is
// safe to run concurrently for independent groups or periods.
package calculator

import (
	"fmt"
	"time"

	"github.com/mmynk/settleup/internal/money"
)

// Kind distinguishes money spent for the group from money received.
type Kind string

const (
	KindExpense Kind = "EXPENSE"
	KindIncome  Kind = "INCOME"
)

// Valid reports whether k is a known entry kind.
func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// Entry is one contribution recorded in a group's ledger.
type Entry struct {
	ID        string
	GroupID   string
	MemberID  string      // Who paid (expense) or received (income)
	Amount    money.Cents // Always positive
	Kind      Kind
	Timestamp time.Time
}

// MemberAggregate is what one member paid and what their equal share is.
type MemberAggregate struct {
	MemberID string
	Paid     money.Cents
	Share    money.Cents
}

// Summary totals a set of entries. NetAmount is income minus expense.
type Summary struct {
	TotalExpense money.Cents
	TotalIncome  money.Cents
	NetAmount    money.Cents
	Count        int
}

// Aggregate projects entries onto per-member paid and share totals.
//
// Only expenses are split; income entries are validated but otherwise
// ignored here (see Summarize). Every member receives a share of the total
// expense, including members with no entries of their own. An entry from
// someone outside members fails the whole aggregation with
// *UnknownMemberError. With no members the result is empty.
func Aggregate(entries []Entry, members []string) (map[string]MemberAggregate, error) {
	ids := uniqueSorted(members)
	aggregates := make(map[string]MemberAggregate, len(ids))
	if len(ids) == 0 {
		return aggregates, nil
	}

	for _, id := range ids {
		aggregates[id] = MemberAggregate{MemberID: id}
	}

	var total money.Cents
	for _, e := range entries {
		agg, ok := aggregates[e.MemberID]
		if !ok {
			return nil, &UnknownMemberError{MemberID: e.MemberID}
		}
		if err := validateEntry(e); err != nil {
			return nil, err
		}
		if e.Kind != KindExpense {
			continue
		}
		var err error
		if agg.Paid, err = addTotal(agg.Paid, e); err != nil {
			return nil, err
		}
		if total, err = addTotal(total, e); err != nil {
			return nil, err
		}
		aggregates[e.MemberID] = agg
	}

	for id, share := range EqualSplit(total, ids) {
		agg := aggregates[id]
		agg.Share = share
		aggregates[id] = agg
	}

	return aggregates, nil
}

// Summarize totals expenses and income. Entries with an unknown kind are
// counted but contribute to neither total. Totals that would not fit in
// money.Cents fail with ErrTotalOverflow.
func Summarize(entries []Entry) (Summary, error) {
	s := Summary{Count: len(entries)}
	var err error
	for _, e := range entries {
		switch e.Kind {
		case KindExpense:
			s.TotalExpense, err = addTotal(s.TotalExpense, e)
		case KindIncome:
			s.TotalIncome, err = addTotal(s.TotalIncome, e)
		}
		if err != nil {
			return Summary{}, err
		}
	}
	// Both totals are non-negative, so the difference cannot overflow.
	s.NetAmount = s.TotalIncome - s.TotalExpense
	return s, nil
}

func addTotal(total money.Cents, e Entry) (money.Cents, error) {
	sum, err := money.Add(total, e.Amount)
	if err != nil {
		return 0, fmt.Errorf("entry %q: %w: %w", e.ID, ErrTotalOverflow, err)
	}
	return sum, nil
}

func validateEntry(e Entry) error {
	if e.Amount <= 0 || e.Amount > money.MaxAmount {
		return fmt.Errorf("entry %q amount %s: %w", e.ID, e.Amount, ErrInvalidAmount)
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("entry %q kind %q: %w", e.ID, e.Kind, ErrInvalidKind)
	}
	return nil
}
