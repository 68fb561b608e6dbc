/*
aggregate.go - Daily and period aggregation, and the Calculator service

PURPOSE:
  Groups an owner's records by calendar date, computes each day through
  the timeline builder and accumulator, and sums days into arbitrary
  inclusive ranges (calendar months or closing-day pay periods).

  Days are strictly independent: a break logged on one date never
  affects another date's timeline. There is no incremental update of
  totals - every computation reads the full record set and recomputes.

FAIL-SOFT:
  The Calculator treats an unreadable store as an empty dataset and a
  malformed row as absent from the totals. A degraded zero result with a
  logged warning keeps the caller usable; nothing here is fatal.
*/
package pay

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// PURE AGGREGATION
// =============================================================================

// DailyTotal computes one logical day from its records: timeline work
// pay plus the flat amounts. Stateless; computing twice on the same
// records yields identical results.
func DailyTotal(records []ActivityRecord, settings Settings) DayTotal {
	if len(records) == 0 {
		return DayTotal{}
	}
	total := Accumulate(BuildTimeline(records), settings)
	total.Pay += FlatAmounts(records)
	return total
}

// PeriodSummary groups records by date and computes each day
// independently.
func PeriodSummary(records []ActivityRecord, settings Settings) map[Date]DayTotal {
	byDate := make(map[Date][]ActivityRecord)
	for _, r := range records {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	summary := make(map[Date]DayTotal, len(byDate))
	for date, recs := range byDate {
		summary[date] = DailyTotal(recs, settings)
	}
	return summary
}

// RangeTotal sums a summary over an inclusive date range.
func RangeTotal(summary map[Date]DayTotal, period Period) DayTotal {
	var total DayTotal
	for date, day := range summary {
		if period.Contains(date) {
			total = total.Add(day)
		}
	}
	return total
}

// =============================================================================
// CALCULATOR - The computation API the presentation layer consumes
// =============================================================================

// MonthSummary is the per-day breakdown a calendar view renders,
// plus the month totals.
type MonthSummary struct {
	Period Period
	Days   map[Date]DayTotal
	Total  DayTotal

	// EarliestRecord is the oldest record date across all of the
	// owner's records; the calendar cannot navigate before its month.
	// Zero when the owner has no records.
	EarliestRecord Date
}

// PeriodTotal is a pay-period computation with its human-readable range.
type PeriodTotal struct {
	Period Period
	Total  DayTotal
	Label  string
}

// Calculator wires the pure aggregation to the stores. All methods are
// read-only and recompute from scratch on every call.
type Calculator struct {
	Records  RecordStore
	Settings SettingsStore
	Log      zerolog.Logger
}

func NewCalculator(records RecordStore, settings SettingsStore, log zerolog.Logger) *Calculator {
	return &Calculator{Records: records, Settings: settings, Log: log}
}

// load reads and coerces an owner's full record set. Storage failures
// and malformed rows degrade to fewer records, never to an error.
func (c *Calculator) load(ctx context.Context, owner string) []ActivityRecord {
	raws, err := c.Records.ReadAll(ctx, owner)
	if err != nil {
		c.Log.Warn().Err(err).Str("owner", owner).Msg("record store unreadable, computing over empty dataset")
		return nil
	}
	records, malformed := DecodeRecords(raws)
	for _, me := range malformed {
		c.Log.Warn().Err(me).Int64("record_id", me.RecordID).Msg("skipping malformed record")
	}
	return records
}

// ComputeDay computes one logical day for an owner.
func (c *Calculator) ComputeDay(ctx context.Context, owner string, date Date) DayTotal {
	settings := LoadSettings(ctx, c.Settings, owner)
	var dayRecords []ActivityRecord
	for _, r := range c.load(ctx, owner) {
		if r.Date.Equal(date) {
			dayRecords = append(dayRecords, r)
		}
	}
	return DailyTotal(dayRecords, settings)
}

// ComputeCalendarMonth computes the literal calendar month with the
// per-day breakdown the calendar grid renders.
func (c *Calculator) ComputeCalendarMonth(ctx context.Context, owner string, year int, month time.Month) MonthSummary {
	settings := LoadSettings(ctx, c.Settings, owner)
	records := c.load(ctx, owner)

	period := CalendarMonth(year, month)
	summary := PeriodSummary(records, settings)

	days := make(map[Date]DayTotal)
	for date, day := range summary {
		if period.Contains(date) {
			days[date] = day
		}
	}

	return MonthSummary{
		Period:         period,
		Days:           days,
		Total:          RangeTotal(summary, period),
		EarliestRecord: earliestDate(records),
	}
}

// ComputePayPeriod computes the closing-day pay period that ends in the
// given month, under the owner's closing_day setting.
func (c *Calculator) ComputePayPeriod(ctx context.Context, owner string, year int, month time.Month) PeriodTotal {
	settings := LoadSettings(ctx, c.Settings, owner)
	records := c.load(ctx, owner)

	period := PayPeriod(year, month, settings.ClosingDay)
	summary := PeriodSummary(records, settings)

	return PeriodTotal{
		Period: period,
		Total:  RangeTotal(summary, period),
		Label:  period.String(),
	}
}

// RecordsForDate returns the typed records of one date, in id order as
// stored. The history list renders these.
func (c *Calculator) RecordsForDate(ctx context.Context, owner string, date Date) []ActivityRecord {
	var out []ActivityRecord
	for _, r := range c.load(ctx, owner) {
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out
}

func earliestDate(records []ActivityRecord) Date {
	var earliest Date
	for _, r := range records {
		if earliest.IsZero() || r.Date.Before(earliest) {
			earliest = r.Date
		}
	}
	return earliest
}
