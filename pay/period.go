package pay

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Inclusive date range for summing daily totals
// =============================================================================

// Period is an inclusive date range. Totals are always computed for a
// period: the literal calendar month, or a closing-day pay period.
type Period struct {
	Start Date
	End   Date
}

// Contains reports whether d falls within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day in the period in order.
func (p Period) Days() []Date {
	var days []Date
	for cur := p.Start; cur.BeforeOrEqual(p.End); cur = cur.AddDays(1) {
		days = append(days, cur)
	}
	return days
}

func (p Period) String() string {
	return fmt.Sprintf("%s – %s", p.Start, p.End)
}

// =============================================================================
// PERIOD CALCULATORS
// =============================================================================

// CalendarMonth returns the literal calendar-month period.
func CalendarMonth(year int, month time.Month) Period {
	return Period{
		Start: NewDate(year, month, 1),
		End:   NewDate(year, month, DaysInMonth(year, month)),
	}
}

// PayPeriod returns the pay period that ends in the given month under the
// closing-day rule:
//
//   - closingDay 31 means literal calendar months.
//   - Otherwise the period runs from (closingDay+1) of the previous month
//     through closingDay of the given month, with both ends clamped to
//     the number of days each month actually has.
//
// A closing day of 25 in March 2025 yields Feb 26 – Mar 25.
func PayPeriod(year int, month time.Month, closingDay int) Period {
	if closingDay >= 31 || closingDay < 1 {
		return CalendarMonth(year, month)
	}

	end := ClampDay(year, month, closingDay)

	prev := NewDate(year, month, 1).AddDays(-1) // last day of previous month
	start := ClampDay(prev.Year(), prev.Month(), closingDay).AddDays(1)

	return Period{Start: start, End: end}
}
