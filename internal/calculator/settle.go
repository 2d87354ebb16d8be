package calculator

import (
	"errors"
	"fmt"
	"time"
)

// Result is the full output of one settlement computation.
type Result struct {
	Balances  []Balance
	Transfers []Transfer
	Summary   Summary
}

// Settle runs aggregation, balance calculation and minimization over one
// immutable snapshot of a group's ledger.
//
// A group with no members or no entries has nothing to settle: the result
// carries only the summary and no balances or transfers.
func Settle(entries []Entry, members []string) (Result, error) {
	summary, err := Summarize(entries)
	if err != nil {
		return Result{}, err
	}
	result := Result{Summary: summary}
	if len(entries) == 0 || len(uniqueSorted(members)) == 0 {
		return result, nil
	}

	aggregates, err := Aggregate(entries, members)
	if err != nil {
		return Result{}, err
	}

	balances, err := ComputeBalances(aggregates)
	if err != nil {
		return Result{}, err
	}

	transfers, err := Minimize(balances)
	if err != nil {
		return Result{}, err
	}

	result.Balances = balances
	result.Transfers = transfers
	return result, nil
}

// ErrInvalidPeriod is returned by Period.Validate.
var ErrInvalidPeriod = errors.New("invalid settlement period")

// Period scopes a computation to a calendar month or year (UTC).
// The zero Period covers all time; Month 0 with a Year covers the whole year.
type Period struct {
	Month int // 1-12, 0 = whole year
	Year  int // 0 = all time
}

// Validate rejects months outside 1-12, years outside 1970-9999 and a month
// without a year.
func (p Period) Validate() error {
	if p.Month < 0 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	if p.Year == 0 {
		if p.Month != 0 {
			return fmt.Errorf("%w: month %d without year", ErrInvalidPeriod, p.Month)
		}
		return nil
	}
	if p.Year < 1970 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// AllTime reports whether p is unscoped.
func (p Period) AllTime() bool {
	return p.Year == 0
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if p.AllTime() {
		return true
	}
	t = t.UTC()
	if t.Year() != p.Year {
		return false
	}
	return p.Month == 0 || int(t.Month()) == p.Month
}

// Filter returns the entries whose timestamp falls inside the period.
func (p Period) Filter(entries []Entry) []Entry {
	if p.AllTime() {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if p.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out
}

func (p Period) String() string {
	switch {
	case p.AllTime():
		return "all time"
	case p.Month == 0:
		return fmt.Sprintf("%04d", p.Year)
	default:
		return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	}
}
