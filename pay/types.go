/*
Package pay implements the daily wage computation engine.

PURPOSE:
  This package contains the core types and algorithms for computing a
  worker's pay from manually logged activity records. A day's records are
  reconciled into a single minute-resolution timeline, night-shift and
  overtime premiums are applied per minute, and flat allowances (driving,
  ad-hoc adjustments) are added on top.

KEY CONCEPTS IN THIS FILE (types.go):
  - ActivityRecord: One logged interval or flat adjustment
  - Kind: What the interval represents (work, break, drive, ...)
  - ClockTime: Hour/minute pair where hour may exceed 23 (times
    after midnight that still belong to the same logical day)
  - Settings: Per-owner wage and pay-period configuration
  - DayTotal: The computed result for one logical day

DESIGN PRINCIPLES:
  1. Immutability: Records are appended and deleted, never edited
  2. Precision: Uses decimal.Decimal for all per-minute accumulation
  3. Strict boundary: Loosely-typed store rows are coerced exactly once
     (parse.go); everything downstream sees a typed ActivityRecord
  4. Fail-soft: A record that cannot be computed is skipped, never fatal

SEE ALSO:
  - timeline.go: Overlap resolution into a labeled timeline
  - accumulate.go: Per-minute premium accumulation
  - allowance.go: Flat driving allowances
  - aggregate.go: Daily/period aggregation and the Calculator service
*/
package pay

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// KIND - What an activity record represents
// =============================================================================

type Kind string

const (
	KindWork        Kind = "WORK"         // Hourly-paid work interval
	KindBreak       Kind = "BREAK"        // Unpaid break, wins over any overlap
	KindDrive       Kind = "DRIVE"        // Hourly-paid driving plus tiered allowance
	KindDriveDirect Kind = "DRIVE_DIRECT" // Flat per-km pay, no hourly component
	KindOther       Kind = "OTHER"        // Signed flat adjustment (bonus/deduction)
)

// Interval reports whether records of this kind carry a start/end interval.
// OTHER records are pure adjustments with zeroed times.
func (k Kind) Interval() bool {
	return k == KindWork || k == KindBreak || k == KindDrive || k == KindDriveDirect
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindWork, KindBreak, KindDrive, KindDriveDirect, KindOther:
		return true
	}
	return false
}

// =============================================================================
// CLOCK TIME - Time-of-day on the logical day, hour range 0..33
// =============================================================================

// ClockTime is a time of day on a record's logical day. Hours 24..33
// represent times after midnight that belong to the previous calendar
// day's shift (hour 25 = 1 AM "next day").
type ClockTime struct {
	Hour   int // 0..33
	Minute int // 0..59
}

// MaxHour is the largest hour a ClockTime may carry. A shift that starts
// late in the evening can run well past midnight; 33 covers 9 AM next day.
const MaxHour = 33

// Minutes returns the time as minutes since midnight of the logical day,
// in 0..2039.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

// Valid reports whether the time is within the logical-day bounds.
func (c ClockTime) Valid() bool {
	return c.Hour >= 0 && c.Hour <= MaxHour && c.Minute >= 0 && c.Minute <= 59
}

func (c ClockTime) String() string {
	if c.Hour >= 24 {
		return fmt.Sprintf("+%02d:%02d", c.Hour-24, c.Minute)
	}
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// =============================================================================
// ACTIVITY RECORD - One logged interval or flat adjustment
// =============================================================================

// ActivityRecord is one logged entry. IDs are assigned by the record
// store (max existing id + 1) and are unique per store.
type ActivityRecord struct {
	ID    int64
	Owner string
	Date  Date
	Kind  Kind

	// Interval bounds, end exclusive. Zeroed for OTHER.
	Start ClockTime
	End   ClockTime

	// DistanceKm is meaningful only for DRIVE / DRIVE_DIRECT.
	DistanceKm decimal.Decimal

	// Adjustment is meaningful only for OTHER. Positive is a bonus,
	// negative a deduction. Zero is rejected at validation.
	Adjustment int64
}

// DurationMinutes returns the interval length. Zero for OTHER.
func (r ActivityRecord) DurationMinutes() int {
	if !r.Kind.Interval() {
		return 0
	}
	return r.End.Minutes() - r.Start.Minutes()
}

// Validate checks the business rules a record must satisfy before it is
// ever persisted. A record that fails validation is reported to the user
// and no partial write occurs.
func (r ActivityRecord) Validate() error {
	if !r.Kind.Valid() {
		return &ValidationError{Field: "kind", Err: ErrUnknownKind}
	}
	if r.Date.IsZero() {
		return &ValidationError{Field: "date", Err: ErrMissingDate}
	}
	if r.Kind.Interval() {
		if !r.Start.Valid() || !r.End.Valid() {
			return &ValidationError{Field: "time", Err: ErrTimeOutOfRange}
		}
		if r.Start.Minutes() >= r.End.Minutes() {
			return &ValidationError{Field: "time", Err: ErrStartNotBeforeEnd}
		}
	}
	switch r.Kind {
	case KindDrive, KindDriveDirect:
		if !r.DistanceKm.IsPositive() {
			return &ValidationError{Field: "distance_km", Err: ErrZeroDistance}
		}
	case KindOther:
		if r.Adjustment == 0 {
			return &ValidationError{Field: "adjustment", Err: ErrZeroAdjustment}
		}
	}
	return nil
}

// =============================================================================
// SETTINGS - Per-owner wage configuration
// =============================================================================

// Settings holds the wage configuration a computation runs under.
// It is loaded explicitly per owner and passed into every computation;
// there is no ambient process-wide state.
type Settings struct {
	BaseHourlyWage  int64 // currency per hour for WORK minutes
	DriveHourlyWage int64 // currency per hour for DRIVE minutes
	ClosingDay      int   // 1..31; 31 means literal calendar months
}

// Documented defaults, applied key-by-key when a setting is absent.
const (
	DefaultBaseHourlyWage  = 1190
	DefaultDriveHourlyWage = 1050
	DefaultClosingDay      = 31
)

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		BaseHourlyWage:  DefaultBaseHourlyWage,
		DriveHourlyWage: DefaultDriveHourlyWage,
		ClosingDay:      DefaultClosingDay,
	}
}

// =============================================================================
// DAY TOTAL - Computed result for one logical day
// =============================================================================

// DayTotal is the result of computing one logical day.
type DayTotal struct {
	Pay     int64 // integer currency units, floored once at the end
	Minutes int   // total payable (labeled) minutes
}

// Add returns the element-wise sum. Used when summing a date range.
func (d DayTotal) Add(o DayTotal) DayTotal {
	return DayTotal{Pay: d.Pay + o.Pay, Minutes: d.Minutes + o.Minutes}
}
