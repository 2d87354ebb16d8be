package calculator

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/mmynk/settleup/internal/money"
)

// Transfer is a recommended payment from a debtor to a creditor.
type Transfer struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount money.Cents
}

// Minimize produces transfers that bring every balance to exactly zero.
//
// Greedy largest-first matching: the creditor owed the most is paid by the
// debtor owing the most, for the smaller of the two amounts; whoever has a
// remainder goes back into its queue. Ties are broken by member ID so the
// output is reproducible. Every step zeroes at least one party, so there are
// at most creditors+debtors-1 transfers.
//
// This is not guaranteed to reach the theoretical minimum number of
// transfers (that needs a subset-sum search) but it is O(n log n) and stable.
//
// Balances must sum to exactly zero. ComputeBalances guarantees that, so
// anything else is a programming error reported as *InvariantViolationError.
func Minimize(balances []Balance) ([]Transfer, error) {
	nets := make(map[string]money.Cents, len(balances))
	var sum money.Cents
	for _, b := range balances {
		var err error
		if nets[b.MemberID], err = money.Add(nets[b.MemberID], b.Net); err != nil {
			return nil, fmt.Errorf("minimize: %w: %w", ErrTotalOverflow, err)
		}
		if sum, err = money.Add(sum, b.Net); err != nil {
			return nil, fmt.Errorf("minimize: %w: %w", ErrTotalOverflow, err)
		}
	}
	if sum != 0 {
		return nil, &InvariantViolationError{Stage: "minimize", Sum: sum}
	}

	creditors := make(partyQueue, 0, len(nets))
	debtors := make(partyQueue, 0, len(nets))
	for id, net := range nets {
		switch {
		case net > 0:
			creditors = append(creditors, party{id: id, amount: net})
		case net < 0:
			debtors = append(debtors, party{id: id, amount: -net})
		}
	}
	heap.Init(&creditors)
	heap.Init(&debtors)

	transfers := make([]Transfer, 0, max(0, len(creditors)+len(debtors)-1))
	for creditors.Len() > 0 && debtors.Len() > 0 {
		creditor := heap.Pop(&creditors).(party)
		debtor := heap.Pop(&debtors).(party)

		amount := min(creditor.amount, debtor.amount)
		transfers = append(transfers, Transfer{
			From:   debtor.id,
			To:     creditor.id,
			Amount: amount,
		})

		creditor.amount -= amount
		debtor.amount -= amount
		if creditor.amount > 0 {
			heap.Push(&creditors, creditor)
		}
		if debtor.amount > 0 {
			heap.Push(&debtors, debtor)
		}
	}

	return transfers, nil
}

// party is one side of the matching with the magnitude still outstanding.
type party struct {
	id     string
	amount money.Cents
}

// partyQueue is a max-heap on amount, ties by ascending ID.
type partyQueue []party

func (q partyQueue) Len() int { return len(q) }

func (q partyQueue) Less(i, j int) bool {
	if q[i].amount != q[j].amount {
		return q[i].amount > q[j].amount
	}
	return strings.Compare(q[i].id, q[j].id) < 0
}

func (q partyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *partyQueue) Push(x any) { *q = append(*q, x.(party)) }

func (q *partyQueue) Pop() any {
	old := *q
	n := len(old)
	p := old[n-1]
	*q = old[:n-1]
	return p
}
