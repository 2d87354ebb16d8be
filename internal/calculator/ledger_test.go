package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mmynk/settleup/internal/money"
)

func expense(id, member string, amount money.Cents) Entry {
	return Entry{ID: id, GroupID: "g1", MemberID: member, Amount: amount, Kind: KindExpense, Timestamp: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func income(id, member string, amount money.Cents) Entry {
	e := expense(id, member, amount)
	e.Kind = KindIncome
	return e
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name         string
		entries      []Entry
		members      []string
		wantErr      bool
		validateFunc func(t *testing.T, aggs map[string]MemberAggregate)
	}{
		{
			name:    "single payer, three members",
			entries: []Entry{expense("e1", "A", 30000)},
			members: []string{"A", "B", "C"},
			validateFunc: func(t *testing.T, aggs map[string]MemberAggregate) {
				want := map[string]MemberAggregate{
					"A": {MemberID: "A", Paid: 30000, Share: 10000},
					"B": {MemberID: "B", Paid: 0, Share: 10000},
					"C": {MemberID: "C", Paid: 0, Share: 10000},
				}
				for id, w := range want {
					if aggs[id] != w {
						t.Errorf("aggregate[%s] = %+v, want %+v", id, aggs[id], w)
					}
				}
			},
		},
		{
			name: "income is not split",
			entries: []Entry{
				expense("e1", "A", 6000),
				income("i1", "B", 100000),
			},
			members: []string{"A", "B"},
			validateFunc: func(t *testing.T, aggs map[string]MemberAggregate) {
				if aggs["B"].Paid != 0 {
					t.Errorf("B paid = %d, want 0 (income excluded)", aggs["B"].Paid)
				}
				if aggs["A"].Share != 3000 || aggs["B"].Share != 3000 {
					t.Errorf("shares = %d/%d, want 3000/3000", aggs["A"].Share, aggs["B"].Share)
				}
			},
		},
		{
			name: "multiple expenses accumulate per member",
			entries: []Entry{
				expense("e1", "A", 1000),
				expense("e2", "A", 500),
				expense("e3", "B", 1500),
			},
			members: []string{"A", "B", "C"},
			validateFunc: func(t *testing.T, aggs map[string]MemberAggregate) {
				if aggs["A"].Paid != 1500 || aggs["B"].Paid != 1500 || aggs["C"].Paid != 0 {
					t.Errorf("paid = %d/%d/%d, want 1500/1500/0", aggs["A"].Paid, aggs["B"].Paid, aggs["C"].Paid)
				}
				for id, agg := range aggs {
					if agg.Share != 1000 {
						t.Errorf("share[%s] = %d, want 1000", id, agg.Share)
					}
				}
			},
		},
		{
			name:    "no members returns empty map",
			entries: []Entry{expense("e1", "A", 100)},
			members: nil,
			validateFunc: func(t *testing.T, aggs map[string]MemberAggregate) {
				if len(aggs) != 0 {
					t.Errorf("expected empty aggregates, got %v", aggs)
				}
			},
		},
		{
			name:    "non-positive amount should error",
			entries: []Entry{expense("e1", "A", 0)},
			members: []string{"A"},
			wantErr: true,
		},
		{
			name:    "unknown kind should error",
			entries: []Entry{{ID: "x", MemberID: "A", Amount: 10, Kind: "TRANSFER"}},
			members: []string{"A"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aggs, err := Aggregate(tt.entries, tt.members)
			if (err != nil) != tt.wantErr {
				t.Errorf("Aggregate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.validateFunc != nil {
				tt.validateFunc(t, aggs)
			}
		})
	}
}

func TestAggregate_UnknownMember(t *testing.T) {
	_, err := Aggregate([]Entry{expense("e1", "Mallory", 100)}, []string{"A", "B"})

	var unknown *UnknownMemberError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *UnknownMemberError, got %v", err)
	}
	if unknown.MemberID != "Mallory" {
		t.Errorf("MemberID = %q, want %q", unknown.MemberID, "Mallory")
	}
}

func TestAggregate_InvalidAmountIsMatchable(t *testing.T) {
	_, err := Aggregate([]Entry{expense("e1", "A", -5)}, []string{"A"})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAggregate_AmountAboveLimit(t *testing.T) {
	_, err := Aggregate([]Entry{expense("e1", "A", money.MaxAmount+1)}, []string{"A", "B"})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	aggs, err := Aggregate([]Entry{expense("e1", "A", money.MaxAmount)}, []string{"A"})
	if err != nil {
		t.Fatalf("Aggregate at the limit failed: %v", err)
	}
	if aggs["A"].Paid != money.MaxAmount {
		t.Errorf("Paid = %d, want %d", aggs["A"].Paid, money.MaxAmount)
	}
}

func TestSettle_HugeAmountsRejected(t *testing.T) {
	// A paid two thirds of everything; wrapping arithmetic would make A a debtor.
	entries := []Entry{
		expense("e1", "A", 5e18),
		expense("e2", "B", 5e18),
		expense("e3", "A", 5e18),
	}
	result, err := Settle(entries, []string{"A", "B", "C"})
	if !errors.Is(err, ErrTotalOverflow) {
		t.Fatalf("Settle: expected ErrTotalOverflow, got %v", err)
	}
	if len(result.Balances) != 0 || len(result.Transfers) != 0 {
		t.Errorf("Settle returned data alongside the error: %+v", result)
	}

	if _, err := Summarize([]Entry{income("i1", "A", math.MaxInt64), income("i2", "B", 1)}); !errors.Is(err, ErrTotalOverflow) {
		t.Errorf("Summarize: expected ErrTotalOverflow, got %v", err)
	}
}

func TestAggregate_TotalOverflow(t *testing.T) {
	if testing.Short() {
		t.Skip("builds ~1M entries")
	}
	// Every entry is within the per-entry limit; only the sum overflows.
	n := int(math.MaxInt64/int64(money.MaxAmount)) + 1
	entries := make([]Entry, n)
	for i := range entries {
		member := "A"
		if i%3 == 1 {
			member = "B"
		}
		entries[i] = expense("e", member, money.MaxAmount)
	}

	if _, err := Aggregate(entries, []string{"A", "B", "C"}); !errors.Is(err, ErrTotalOverflow) {
		t.Errorf("expected ErrTotalOverflow, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]Entry{
		expense("e1", "A", 2500),
		expense("e2", "B", 500),
		income("i1", "A", 10000),
	})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if s.TotalExpense != 3000 {
		t.Errorf("TotalExpense = %d, want 3000", s.TotalExpense)
	}
	if s.TotalIncome != 10000 {
		t.Errorf("TotalIncome = %d, want 10000", s.TotalIncome)
	}
	if s.NetAmount != 7000 {
		t.Errorf("NetAmount = %d, want 7000", s.NetAmount)
	}
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
}
