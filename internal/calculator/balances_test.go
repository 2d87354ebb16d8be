package calculator

import (
	"errors"
	"testing"
)

func TestComputeBalances(t *testing.T) {
	aggs := map[string]MemberAggregate{
		"C": {MemberID: "C", Paid: 0, Share: 10000},
		"A": {MemberID: "A", Paid: 30000, Share: 10000},
		"B": {MemberID: "B", Paid: 0, Share: 10000},
	}

	balances, err := ComputeBalances(aggs)
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}

	want := []Balance{
		{MemberID: "A", Paid: 30000, Share: 10000, Net: 20000},
		{MemberID: "B", Paid: 0, Share: 10000, Net: -10000},
		{MemberID: "C", Paid: 0, Share: 10000, Net: -10000},
	}
	if len(balances) != len(want) {
		t.Fatalf("got %d balances, want %d", len(balances), len(want))
	}
	for i := range want {
		if balances[i] != want[i] {
			t.Errorf("balances[%d] = %+v, want %+v", i, balances[i], want[i])
		}
	}
}

func TestComputeBalances_WithinTolerance(t *testing.T) {
	// Off by one subunit with two members is still acceptable
	aggs := map[string]MemberAggregate{
		"A": {MemberID: "A", Paid: 101, Share: 50},
		"B": {MemberID: "B", Paid: 0, Share: 50},
	}
	if _, err := ComputeBalances(aggs); err != nil {
		t.Errorf("expected sum within tolerance to pass, got %v", err)
	}
}

func TestComputeBalances_InvariantViolation(t *testing.T) {
	aggs := map[string]MemberAggregate{
		"A": {MemberID: "A", Paid: 500, Share: 50},
		"B": {MemberID: "B", Paid: 0, Share: 50},
	}

	_, err := ComputeBalances(aggs)

	var violation *InvariantViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected *InvariantViolationError, got %v", err)
	}
	if violation.Sum != 400 {
		t.Errorf("Sum = %d, want 400", violation.Sum)
	}
	if violation.Tolerance != 2 {
		t.Errorf("Tolerance = %d, want 2", violation.Tolerance)
	}
}

func TestComputeBalances_Empty(t *testing.T) {
	balances, err := ComputeBalances(nil)
	if err != nil {
		t.Fatalf("ComputeBalances(nil) failed: %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("expected no balances, got %v", balances)
	}
}
