package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/settleup/internal/money"
)

// ErrInvalidAmount is returned for ledger entries whose amount is not
// positive or exceeds money.MaxAmount.
var ErrInvalidAmount = errors.New("ledger entry amount out of range")

// ErrTotalOverflow is returned when summing a ledger's amounts would exceed
// the int64 range of money.Cents.
var ErrTotalOverflow = errors.New("ledger totals too large to compute")

// ErrInvalidKind is returned for ledger entries that are neither expense nor income.
var ErrInvalidKind = errors.New("unknown ledger entry kind")

// UnknownMemberError reports a ledger entry attributed to someone outside
// the group's membership. The result cannot be trusted, so the whole
// computation fails.
type UnknownMemberError struct {
	MemberID string
}

func (e *UnknownMemberError) Error() string {
	return fmt.Sprintf("ledger entry references unknown member %q", e.MemberID)
}

// InvariantViolationError means the balances no longer sum to zero within
// tolerance. It always indicates a bug upstream of the caller.
type InvariantViolationError struct {
	Stage     string
	Sum       money.Cents
	Tolerance money.Cents
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%s: balances sum to %s, tolerance %s", e.Stage, e.Sum, e.Tolerance)
}
