/*
accumulate.go - Per-minute pay accumulation over a labeled timeline

PURPOSE:
  Walks a day's timeline minute-by-minute (0 -> 2879), applying the wage
  and premium multipliers for each payable minute, and produces the day's
  work pay plus total worked minutes.

PREMIUMS:
  Night:    minutes in [NightStartMinute, NightEndMinute) pay x1.25.
            The window is 22:00 through 04:00 of the next clock day,
            expressed on the 48h logical-day axis. It is a constant of
            this package, not a user setting; changing it must never
            require touching the accumulation loop.
  Overtime: once 480 payable minutes have accumulated, every further
            minute pays x1.25. The 480th worked minute is still base
            rate; the 481st is the first overtime minute.
  Both:     the multipliers compound: 1.25 * 1.25 = 1.5625, not 1.5.

PRECISION:
  Per-minute amounts are summed in decimal arithmetic. Each minute adds
  wage x multiplier (in per-hour units); the grand total is divided by 60
  once and floored once at the very end. Flooring per minute - or summing
  in binary floating point - produces visible off-by-one currency drift
  over a 2880-minute day, which is exactly what this implementation
  exists to avoid.
*/
package pay

import "github.com/shopspring/decimal"

// =============================================================================
// PREMIUM CONSTANTS
// =============================================================================

const (
	// NightStartMinute / NightEndMinute bound the night-premium window
	// on the logical-day axis: 22:00 up to but excluding 04:00(+24h).
	NightStartMinute = 22 * 60
	NightEndMinute   = 28 * 60

	// OvertimeThresholdMinutes is the payable time after which the
	// overtime premium applies: 8 hours.
	OvertimeThresholdMinutes = 8 * 60
)

var (
	premium        = decimal.NewFromFloat(1.25)
	minutesPerHour = decimal.NewFromInt(60)
)

// isNight reports whether a timeline minute falls in the night window.
func isNight(minute int) bool {
	return minute >= NightStartMinute && minute < NightEndMinute
}

// =============================================================================
// ACCUMULATOR
// =============================================================================

// Accumulate converts a labeled timeline into the day's work pay and
// worked minutes. Flat amounts (allowances, adjustments) are handled
// separately by DailyTotal.
func Accumulate(tl *Timeline, settings Settings) DayTotal {
	baseWage := decimal.NewFromInt(settings.BaseHourlyWage)
	driveWage := decimal.NewFromInt(settings.DriveHourlyWage)

	total := decimal.Zero
	workedSoFar := 0

	for m := 0; m < DayMinutes; m++ {
		var wage decimal.Decimal
		switch tl[m] {
		case LabelWork:
			wage = baseWage
		case LabelDrive:
			wage = driveWage
		default:
			continue
		}

		amount := wage
		if isNight(m) {
			amount = amount.Mul(premium)
		}
		if workedSoFar >= OvertimeThresholdMinutes {
			amount = amount.Mul(premium)
		}
		total = total.Add(amount)
		workedSoFar++
	}

	return DayTotal{
		Pay:     total.Div(minutesPerHour).Floor().IntPart(),
		Minutes: workedSoFar,
	}
}

// FlatAmounts sums the non-timeline contributions of a day's records:
// the tiered allowance per DRIVE, the per-km pay per DRIVE_DIRECT, and
// the signed adjustment per OTHER. Exact integer arithmetic throughout.
func FlatAmounts(records []ActivityRecord) int64 {
	var sum int64
	for _, r := range records {
		switch r.Kind {
		case KindDrive:
			sum += DrivingAllowance(r.DistanceKm)
		case KindDriveDirect:
			sum += DirectDrivePay(r.DistanceKm)
		case KindOther:
			sum += r.Adjustment
		}
	}
	return sum
}
