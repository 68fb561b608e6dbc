/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  internal domain model from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Handlers coerce DTOs into pay.ActivityRecord and run Validate();
  DTOs themselves are pure data carriers.
*/
package api

import (
	"sort"

	"github.com/shiftwork/paybook/pay"
)

// =============================================================================
// RECORDS
// =============================================================================

// RecordDTO represents an activity record in API responses. Times are
// echoed in logical-day hours (0..33); the client owns display rules
// such as rendering hour 25 as "+01:00".
type RecordDTO struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	StartHour   int    `json:"start_hour"`
	StartMinute int    `json:"start_minute"`
	EndHour     int    `json:"end_hour"`
	EndMinute   int    `json:"end_minute"`
	DistanceKm  string `json:"distance_km,omitempty"`
	Adjustment  int64  `json:"adjustment,omitempty"`
	Label       string `json:"label"` // "09:00 – 18:00" style display string
}

// CreateRecordRequest is the request to log a record.
type CreateRecordRequest struct {
	Date        string  `json:"date"`
	Kind        string  `json:"kind"`
	StartHour   int     `json:"start_hour"`
	StartMinute int     `json:"start_minute"`
	EndHour     int     `json:"end_hour"`
	EndMinute   int     `json:"end_minute"`
	DistanceKm  float64 `json:"distance_km"`
	Adjustment  int64   `json:"adjustment"`
}

// DayDTO is a computed day: the history list footer and calendar cell.
type DayDTO struct {
	Date    string `json:"date"`
	Pay     int64  `json:"pay"`
	Minutes int    `json:"minutes"`
}

// DayDetailDTO is the daily view: records plus the computed totals.
type DayDetailDTO struct {
	Date    string      `json:"date"`
	Records []RecordDTO `json:"records"`
	Pay     int64       `json:"pay"`
	Minutes int         `json:"minutes"`
}

// =============================================================================
// MONTH / PERIOD
// =============================================================================

// MonthSummaryDTO is the calendar-month view.
type MonthSummaryDTO struct {
	Year           int      `json:"year"`
	Month          int      `json:"month"`
	Days           []DayDTO `json:"days"`
	TotalPay       int64    `json:"total_pay"`
	TotalMinutes   int      `json:"total_minutes"`
	EarliestRecord string   `json:"earliest_record,omitempty"`
}

// PeriodDTO is a closing-day pay-period computation.
type PeriodDTO struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	Label        string `json:"label"`
	TotalPay     int64  `json:"total_pay"`
	TotalMinutes int    `json:"total_minutes"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsDTO mirrors pay.Settings over the wire.
type SettingsDTO struct {
	BaseHourlyWage  int64 `json:"base_hourly_wage"`
	DriveHourlyWage int64 `json:"drive_hourly_wage"`
	ClosingDay      int   `json:"closing_day"`
}

// =============================================================================
// AUTH
// =============================================================================

type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRecordDTO(r pay.ActivityRecord) RecordDTO {
	dto := RecordDTO{
		ID:          r.ID,
		Date:        r.Date.String(),
		Kind:        string(r.Kind),
		StartHour:   r.Start.Hour,
		StartMinute: r.Start.Minute,
		EndHour:     r.End.Hour,
		EndMinute:   r.End.Minute,
		Adjustment:  r.Adjustment,
	}
	if !r.DistanceKm.IsZero() {
		dto.DistanceKm = r.DistanceKm.String()
	}
	if r.Kind.Interval() {
		dto.Label = r.Start.String() + " – " + r.End.String()
	}
	return dto
}

func toDayDTOs(days map[pay.Date]pay.DayTotal) []DayDTO {
	out := make([]DayDTO, 0, len(days))
	for date, day := range days {
		out = append(out, DayDTO{Date: date.String(), Pay: day.Pay, Minutes: day.Minutes})
	}
	// ISO dates sort lexicographically
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
