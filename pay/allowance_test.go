package pay_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shiftwork/paybook/pay"
)

func km(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestDrivingAllowance_Tiers(t *testing.T) {
	cases := []struct {
		km   float64
		want int64
	}{
		{0, 0},
		{0.5, 0},      // truncates to 0 before tier lookup
		{1, 150},      // short trip
		{9.9, 150},    // still under the 10 km band
		{10, 300},     // first band
		{39.9, 300},   // fraction never crosses a band
		{40, 600},     // one full 30 km band past 10
		{50, 600},
		{69.9, 600},
		{70, 900},
		{339, 3300},
		{340, 3300}, // cap
		{1000, 3300},
		{99999, 3300},
	}
	for _, tc := range cases {
		if got := pay.DrivingAllowance(km(tc.km)); got != tc.want {
			t.Errorf("DrivingAllowance(%v) = %d, want %d", tc.km, got, tc.want)
		}
	}
}

func TestDrivingAllowance_LastBandBeforeCap(t *testing.T) {
	// 339 km: 300 + floor((339-10)/30)*300 = 300 + 10*300 = 3300 by formula,
	// same value as the cap but reached through the band arithmetic.
	if got := pay.DrivingAllowance(km(339)); got != 3300 {
		t.Fatalf("DrivingAllowance(339) = %d, want 3300", got)
	}
	// One band earlier is strictly below.
	if got := pay.DrivingAllowance(km(309)); got != 3000 {
		t.Fatalf("DrivingAllowance(309) = %d, want 3000", got)
	}
}

func TestDirectDrivePay(t *testing.T) {
	cases := []struct {
		km   float64
		want int64
	}{
		{0, 0},
		{12, 300},
		{12.9, 300}, // fraction truncated
		{100, 2500},
	}
	for _, tc := range cases {
		if got := pay.DirectDrivePay(km(tc.km)); got != tc.want {
			t.Errorf("DirectDrivePay(%v) = %d, want %d", tc.km, got, tc.want)
		}
	}
}
