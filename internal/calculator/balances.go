package calculator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mmynk/settleup/internal/money"
)

// Balance is a member's signed position for a settlement period.
type Balance struct {
	MemberID string
	Paid     money.Cents
	Share    money.Cents
	Net      money.Cents // Positive = owed money, Negative = owes money
}

// ComputeBalances converts aggregates into signed net balances, sorted by
// member ID.
//
// Algorithm:
//   - net = paid - share (shares are already whole subunits, see EqualSplit)
//   - sum(net) must be zero within one subunit per member; anything larger
//     means aggregation is broken and *InvariantViolationError is returned
//     instead of inconsistent data
func ComputeBalances(aggregates map[string]MemberAggregate) ([]Balance, error) {
	balances := make([]Balance, 0, len(aggregates))
	var sum money.Cents
	for id, agg := range aggregates {
		net, err := money.Add(agg.Paid, -agg.Share)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w: %w", id, ErrTotalOverflow, err)
		}
		if sum, err = money.Add(sum, net); err != nil {
			return nil, fmt.Errorf("compute balances: %w: %w", ErrTotalOverflow, err)
		}
		balances = append(balances, Balance{
			MemberID: id,
			Paid:     agg.Paid,
			Share:    agg.Share,
			Net:      net,
		})
	}

	tolerance := money.Cents(len(aggregates))
	if sum.Abs() > tolerance {
		return nil, &InvariantViolationError{Stage: "compute balances", Sum: sum, Tolerance: tolerance}
	}

	slices.SortFunc(balances, func(a, b Balance) int {
		return strings.Compare(a.MemberID, b.MemberID)
	})
	return balances, nil
}
