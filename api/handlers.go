/*
handlers.go - HTTP API handlers for the pay computation engine

PURPOSE:
  Exposes the engine via REST. Handles HTTP request/response, JSON
  serialization, and delegates to the Calculator and the stores.

ENDPOINTS:
  Auth (multi-user mode only):
    POST   /api/auth/register          Create an account
    POST   /api/auth/login             Exchange credentials for a token

  Records:
    GET    /api/records?date=          List one day's records
    POST   /api/records                Log a record (validated, max+1 id)
    DELETE /api/records/{id}           Delete a record

  Computation:
    GET    /api/compute/day?date=      One day's pay and minutes
    GET    /api/compute/month?year=&month=   Calendar month + per-day cells
    GET    /api/compute/period?year=&month=  Closing-day pay period

  Settings:
    GET    /api/settings               Effective settings (with defaults)
    PUT    /api/settings               Overwrite settings

ERROR HANDLING:
  - 400: validation and parse failures; nothing was written
  - 401: missing/invalid token (middleware), wrong credentials (login)
  - 409: duplicate username
  - 500: storage write failures
  Computation endpoints never 500 on read problems: the engine's
  fail-soft policy turns an unreadable store into zero totals.

OWNER RESOLUTION:
  In multi-user mode the owner is the authenticated user's id, taken
  from the request context. In single-user mode (no token secret
  configured) every request operates on the default owner.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shiftwork/paybook/auth"
	"github.com/shiftwork/paybook/pay"
)

// DefaultOwner is the owner key used when authentication is disabled.
const DefaultOwner = "default"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Calc     *pay.Calculator
	Records  pay.RecordStore
	Settings pay.SettingsStore
	Auth     *auth.Service // nil in single-user mode
	Log      zerolog.Logger
}

func NewHandler(calc *pay.Calculator, records pay.RecordStore, settings pay.SettingsStore, authSvc *auth.Service, log zerolog.Logger) *Handler {
	return &Handler{Calc: calc, Records: records, Settings: settings, Auth: authSvc, Log: log}
}

// owner resolves the record owner for a request.
func (h *Handler) owner(r *http.Request) string {
	if claims, ok := auth.FromContext(r.Context()); ok {
		return claims.UserID
	}
	return DefaultOwner
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// RegisterUser creates an account.
// POST /api/auth/register
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil {
		writeError(w, http.StatusNotFound, "authentication disabled", nil)
		return
	}
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	u, err := h.Auth.Register(r.Context(), req.Name, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			writeError(w, http.StatusConflict, "user already exists", nil)
			return
		}
		writeError(w, http.StatusBadRequest, "registration failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": u.ID, "name": u.Name})
}

// LoginUser exchanges credentials for a bearer token.
// POST /api/auth/login
func (h *Handler) LoginUser(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil {
		writeError(w, http.StatusNotFound, "authentication disabled", nil)
		return
	}
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	token, err := h.Auth.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Name: req.Name})
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// ListRecords returns one day's records plus the day's computed totals.
// GET /api/records?date=YYYY-MM-DD
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	date, err := pay.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing date", err)
		return
	}
	owner := h.owner(r)

	records := h.Calc.RecordsForDate(r.Context(), owner, date)
	total := h.Calc.ComputeDay(r.Context(), owner, date)

	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, DayDetailDTO{
		Date:    date.String(),
		Records: dtos,
		Pay:     total.Pay,
		Minutes: total.Minutes,
	})
}

// CreateRecord validates and appends a record.
// POST /api/records
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	date, err := pay.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err)
		return
	}

	rec := pay.ActivityRecord{
		Owner:      h.owner(r),
		Date:       date,
		Kind:       pay.Kind(strings.ToUpper(strings.TrimSpace(req.Kind))),
		Start:      pay.ClockTime{Hour: req.StartHour, Minute: req.StartMinute},
		End:        pay.ClockTime{Hour: req.EndHour, Minute: req.EndMinute},
		DistanceKm: decimal.NewFromFloat(req.DistanceKm),
		Adjustment: req.Adjustment,
	}

	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid record", err)
		return
	}

	id, err := h.Records.Append(r.Context(), rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store record", err)
		return
	}
	rec.ID = id
	writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

// DeleteRecord removes a record by id. Deleting an absent id succeeds;
// the store contract makes it a no-op.
// DELETE /api/records/{id}
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id", err)
		return
	}
	if err := h.Records.DeleteByID(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// COMPUTATION HANDLERS
// =============================================================================

// ComputeDay returns one day's pay and minutes.
// GET /api/compute/day?date=YYYY-MM-DD
func (h *Handler) ComputeDay(w http.ResponseWriter, r *http.Request) {
	date, err := pay.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing date", err)
		return
	}
	total := h.Calc.ComputeDay(r.Context(), h.owner(r), date)
	writeJSON(w, http.StatusOK, DayDTO{Date: date.String(), Pay: total.Pay, Minutes: total.Minutes})
}

// ComputeMonth returns the calendar month with per-day cells.
// GET /api/compute/month?year=2025&month=3
func (h *Handler) ComputeMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year/month", err)
		return
	}

	summary := h.Calc.ComputeCalendarMonth(r.Context(), h.owner(r), year, month)

	dto := MonthSummaryDTO{
		Year:         year,
		Month:        int(month),
		Days:         toDayDTOs(summary.Days),
		TotalPay:     summary.Total.Pay,
		TotalMinutes: summary.Total.Minutes,
	}
	if !summary.EarliestRecord.IsZero() {
		dto.EarliestRecord = summary.EarliestRecord.String()
	}
	writeJSON(w, http.StatusOK, dto)
}

// ComputePeriod returns the closing-day pay period ending in the month.
// GET /api/compute/period?year=2025&month=3
func (h *Handler) ComputePeriod(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year/month", err)
		return
	}

	period := h.Calc.ComputePayPeriod(r.Context(), h.owner(r), year, month)
	writeJSON(w, http.StatusOK, PeriodDTO{
		Start:        period.Period.Start.String(),
		End:          period.Period.End.String(),
		Label:        period.Label,
		TotalPay:     period.Total.Pay,
		TotalMinutes: period.Total.Minutes,
	})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the owner's effective settings.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s := pay.LoadSettings(r.Context(), h.Settings, h.owner(r))
	writeJSON(w, http.StatusOK, SettingsDTO{
		BaseHourlyWage:  s.BaseHourlyWage,
		DriveHourlyWage: s.DriveHourlyWage,
		ClosingDay:      s.ClosingDay,
	})
}

// PutSettings overwrites the owner's settings.
// PUT /api/settings
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.BaseHourlyWage <= 0 || req.DriveHourlyWage <= 0 || req.ClosingDay < 1 || req.ClosingDay > 31 {
		writeError(w, http.StatusBadRequest, "settings out of range", nil)
		return
	}

	s := pay.Settings{
		BaseHourlyWage:  req.BaseHourlyWage,
		DriveHourlyWage: req.DriveHourlyWage,
		ClosingDay:      req.ClosingDay,
	}
	if err := pay.SaveSettings(r.Context(), h.Settings, h.owner(r), s); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// =============================================================================
// HELPERS
// =============================================================================

func yearMonth(r *http.Request) (int, time.Month, error) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, err
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return 0, 0, err
	}
	if month < 1 || month > 12 {
		return 0, 0, errors.New("month out of range")
	}
	return year, time.Month(month), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
