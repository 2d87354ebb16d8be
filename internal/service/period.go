package service

import (
	"fmt"
	"time"

	"github.com/mmynk/settleup/internal/calculator"
)

// PeriodDefault says what an empty month/year query means.
type PeriodDefault int

const (
	// DefaultAllTime leaves the period unscoped.
	DefaultAllTime PeriodDefault = iota
	// DefaultCurrentMonth scopes to the current UTC month.
	DefaultCurrentMonth
)

// ResolvePeriod turns optional month and year query values into a period.
// A month without a year means the current year; a year alone means the
// whole year.
func ResolvePeriod(month, year *int, now time.Time, def PeriodDefault) (calculator.Period, error) {
	now = now.UTC()
	v := &ValidationError{}
	if month != nil && (*month < 1 || *month > 12) {
		v.add("month", "must be between 1 and 12")
	}
	if year != nil && (*year < 1970 || *year > 9999) {
		v.add("year", "must be between 1970 and 9999")
	}
	if err := v.errOrNil(); err != nil {
		return calculator.Period{}, err
	}

	var p calculator.Period
	switch {
	case month == nil && year == nil:
		if def == DefaultCurrentMonth {
			p = calculator.Period{Month: int(now.Month()), Year: now.Year()}
		}
	case year == nil:
		p = calculator.Period{Month: *month, Year: now.Year()}
	case month == nil:
		p = calculator.Period{Year: *year}
	default:
		p = calculator.Period{Month: *month, Year: *year}
	}

	if err := p.Validate(); err != nil {
		return calculator.Period{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return p, nil
}
