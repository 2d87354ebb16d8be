package calculator

import (
	"slices"

	"github.com/mmynk/settleup/internal/money"
)

// EqualSplit divides total evenly across members and returns each member's
// share. Shares always sum to total exactly.
//
// The nominal share is total/n rounded half to even. Whatever that rounding
// leaves over (less than n subunits either way) is absorbed one subunit at a
// time by members in ascending ID order.
func EqualSplit(total money.Cents, members []string) map[string]money.Cents {
	ids := uniqueSorted(members)
	shares := make(map[string]money.Cents, len(ids))
	if len(ids) == 0 {
		return shares
	}

	nominal := money.DivideEven(total, len(ids))
	for _, id := range ids {
		shares[id] = nominal
	}

	residual := total - nominal*money.Cents(len(ids))
	step := money.Cents(1)
	if residual < 0 {
		step = -1
	}
	for i := 0; residual != 0; i++ {
		shares[ids[i%len(ids)]] += step
		residual -= step
	}

	return shares
}

// uniqueSorted returns a sorted copy of ids with duplicates and empty IDs removed.
func uniqueSorted(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
