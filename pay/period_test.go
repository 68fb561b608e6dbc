package pay_test

import (
	"testing"
	"time"

	"github.com/shiftwork/paybook/pay"
)

func TestCalendarMonth(t *testing.T) {
	p := pay.CalendarMonth(2025, time.March)
	if !p.Start.Equal(date(2025, time.March, 1)) || !p.End.Equal(date(2025, time.March, 31)) {
		t.Fatalf("March 2025 = %s, want 2025-03-01 – 2025-03-31", p)
	}

	feb := pay.CalendarMonth(2024, time.February)
	if !feb.End.Equal(date(2024, time.February, 29)) {
		t.Errorf("Feb 2024 ends %s, want leap-day 29th", feb.End)
	}
}

func TestPayPeriod_ClosingDay25(t *testing.T) {
	p := pay.PayPeriod(2025, time.March, 25)
	if !p.Start.Equal(date(2025, time.February, 26)) {
		t.Errorf("start = %s, want 2025-02-26", p.Start)
	}
	if !p.End.Equal(date(2025, time.March, 25)) {
		t.Errorf("end = %s, want 2025-03-25", p.End)
	}
}

func TestPayPeriod_ClosingDay31IsCalendarMonth(t *testing.T) {
	p := pay.PayPeriod(2025, time.April, 31)
	if p != pay.CalendarMonth(2025, time.April) {
		t.Fatalf("closing day 31 = %s, want the calendar month", p)
	}
}

func TestPayPeriod_ClampsShortMonths(t *testing.T) {
	// Closing day 30 in February clamps to the month's last day.
	p := pay.PayPeriod(2025, time.February, 30)
	if !p.End.Equal(date(2025, time.February, 28)) {
		t.Errorf("end = %s, want 2025-02-28", p.End)
	}
	if !p.Start.Equal(date(2025, time.January, 31)) {
		t.Errorf("start = %s, want 2025-01-31", p.Start)
	}
}

func TestPayPeriod_ConsecutivePeriodsAreContiguous(t *testing.T) {
	// No day may be counted twice or skipped across a month boundary,
	// even when clamping shortens a month.
	for _, closing := range []int{15, 25, 28, 30} {
		prev := pay.PayPeriod(2025, time.February, closing)
		next := pay.PayPeriod(2025, time.March, closing)

		if !next.Start.Equal(prev.End.AddDays(1)) {
			t.Errorf("closing %d: Feb ends %s but Mar starts %s",
				closing, prev.End, next.Start)
		}
	}
}

func TestPeriod_Contains(t *testing.T) {
	p := pay.PayPeriod(2025, time.March, 25)

	for _, tc := range []struct {
		d    pay.Date
		want bool
	}{
		{date(2025, time.February, 25), false},
		{date(2025, time.February, 26), true},
		{date(2025, time.March, 25), true},
		{date(2025, time.March, 26), false},
	} {
		if got := p.Contains(tc.d); got != tc.want {
			t.Errorf("Contains(%s) = %v, want %v", tc.d, got, tc.want)
		}
	}
}

func TestPeriod_Days(t *testing.T) {
	p := pay.Period{Start: date(2025, time.March, 30), End: date(2025, time.April, 2)}
	days := p.Days()
	if len(days) != 4 {
		t.Fatalf("len(days) = %d, want 4", len(days))
	}
	if !days[0].Equal(p.Start) || !days[3].Equal(p.End) {
		t.Errorf("days = %v", days)
	}
}
