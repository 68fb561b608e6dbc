/*
allowance.go - Flat driving allowances

PURPOSE:
  Two policies for turning a trip distance into a flat currency amount:

  DrivingAllowance (commuting-style tiers):
      0 km          ->    0
      under 10 km   ->  150
      10..339 km    ->  300 plus 300 per full 30 km band past the first 10
      340 km and up -> 3300 (cap)

  DirectDrivePay (flagged "direct" trips):
      25 per whole kilometer, no hourly pay for the driving time.

  Distances are truncated to whole kilometers before the tier lookup;
  fractional kilometers never move a trip across a band boundary.
*/
package pay

import "github.com/shopspring/decimal"

const (
	allowanceShortTrip = 150  // under 10 km
	allowanceBase      = 300  // first band at 10 km
	allowanceBandStep  = 300  // added per full 30 km band past 10 km
	allowanceBandKm    = 30   //
	allowanceCap       = 3300 // 340 km and beyond
	allowanceCapKm     = 340  //

	directRatePerKm = 25
)

// DrivingAllowance returns the tiered flat allowance for a DRIVE record.
func DrivingAllowance(distanceKm decimal.Decimal) int64 {
	km := distanceKm.Truncate(0).IntPart()
	switch {
	case km <= 0:
		return 0
	case km < 10:
		return allowanceShortTrip
	case km >= allowanceCapKm:
		return allowanceCap
	default:
		return allowanceBase + (km-10)/allowanceBandKm*allowanceBandStep
	}
}

// DirectDrivePay returns the flat per-kilometer pay for a DRIVE_DIRECT
// record. Direct trips earn no hourly driving pay.
func DirectDrivePay(distanceKm decimal.Decimal) int64 {
	km := distanceKm.Truncate(0).IntPart()
	if km <= 0 {
		return 0
	}
	return km * directRatePerKm
}
