package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shiftwork/paybook/api"
	"github.com/shiftwork/paybook/auth"
	"github.com/shiftwork/paybook/pay"
	"github.com/shiftwork/paybook/pay/store"
)

// newServer wires the full router over an in-memory store, in
// single-user mode unless an auth service is supplied.
func newServer(t *testing.T, authSvc *auth.Service) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	log := zerolog.Nop()
	calc := pay.NewCalculator(mem, mem, log)
	h := api.NewHandler(calc, mem, mem, authSvc, log)
	srv := httptest.NewServer(api.NewRouter(h, authSvc, log))
	t.Cleanup(srv.Close)
	return srv, mem
}

func doJSON(t *testing.T, method, url string, body any, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func createRecord(t *testing.T, srv *httptest.Server, req api.CreateRecordRequest) api.RecordDTO {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/records", req, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var dto api.RecordDTO
	decode(t, resp, &dto)
	return dto
}

// =============================================================================
// SINGLE-USER MODE
// =============================================================================

func TestAPI_CreateAndComputeDay(t *testing.T) {
	srv, _ := newServer(t, nil)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/settings", api.SettingsDTO{
		BaseHourlyWage: 1000, DriveHourlyWage: 800, ClosingDay: 31,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	createRecord(t, srv, api.CreateRecordRequest{
		Date: "2025-03-10", Kind: "WORK", StartHour: 9, EndHour: 18,
	})
	createRecord(t, srv, api.CreateRecordRequest{
		Date: "2025-03-10", Kind: "DRIVE", StartHour: 22, EndHour: 23, DistanceKm: 50,
	})

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/compute/day?date=2025-03-10", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var day api.DayDTO
	decode(t, resp, &day)
	require.Equal(t, int64(11100), day.Pay)
	require.Equal(t, 600, day.Minutes)
}

func TestAPI_ListRecords(t *testing.T) {
	srv, _ := newServer(t, nil)

	created := createRecord(t, srv, api.CreateRecordRequest{
		Date: "2025-03-10", Kind: "WORK", StartHour: 9, EndHour: 17,
	})
	createRecord(t, srv, api.CreateRecordRequest{
		Date: "2025-03-11", Kind: "WORK", StartHour: 9, EndHour: 17,
	})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/records?date=2025-03-10", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail api.DayDetailDTO
	decode(t, resp, &detail)

	require.Len(t, detail.Records, 1)
	require.Equal(t, created.ID, detail.Records[0].ID)
	require.Equal(t, "09:00 – 17:00", detail.Records[0].Label)
	require.Equal(t, 480, detail.Minutes)
}

func TestAPI_CreateRecordValidation(t *testing.T) {
	srv, _ := newServer(t, nil)

	for name, req := range map[string]api.CreateRecordRequest{
		"inverted range":  {Date: "2025-03-10", Kind: "WORK", StartHour: 18, EndHour: 9},
		"unknown kind":    {Date: "2025-03-10", Kind: "VACATION", StartHour: 9, EndHour: 17},
		"bad date":        {Date: "10/03/2025", Kind: "WORK", StartHour: 9, EndHour: 17},
		"zero distance":   {Date: "2025-03-10", Kind: "DRIVE", StartHour: 9, EndHour: 10},
		"zero adjustment": {Date: "2025-03-10", Kind: "OTHER"},
	} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/records", req, "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		resp.Body.Close()
	}
}

func TestAPI_DeleteRecord(t *testing.T) {
	srv, _ := newServer(t, nil)

	created := createRecord(t, srv, api.CreateRecordRequest{
		Date: "2025-03-10", Kind: "WORK", StartHour: 9, EndHour: 17,
	})

	resp := doJSON(t, http.MethodDelete,
		fmt.Sprintf("%s/api/records/%d", srv.URL, created.ID), nil, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Deleting again is a no-op, not an error.
	resp = doJSON(t, http.MethodDelete,
		fmt.Sprintf("%s/api/records/%d", srv.URL, created.ID), nil, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/records?date=2025-03-10", nil, "")
	var detail api.DayDetailDTO
	decode(t, resp, &detail)
	require.Empty(t, detail.Records)
}

func TestAPI_ComputeMonth(t *testing.T) {
	srv, _ := newServer(t, nil)

	createRecord(t, srv, api.CreateRecordRequest{
		Date: "2025-03-10", Kind: "WORK", StartHour: 9, EndHour: 17,
	})
	createRecord(t, srv, api.CreateRecordRequest{
		Date: "2025-03-12", Kind: "WORK", StartHour: 9, EndHour: 13,
	})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/compute/month?year=2025&month=3", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var month api.MonthSummaryDTO
	decode(t, resp, &month)

	require.Equal(t, 720, month.TotalMinutes)
	require.Len(t, month.Days, 2)
	require.Equal(t, "2025-03-10", month.Days[0].Date) // sorted ascending
	require.Equal(t, "2025-03-10", month.EarliestRecord)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/compute/month?year=2025&month=13", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_ComputePeriod(t *testing.T) {
	srv, _ := newServer(t, nil)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/settings", api.SettingsDTO{
		BaseHourlyWage: 1190, DriveHourlyWage: 1050, ClosingDay: 25,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	createRecord(t, srv, api.CreateRecordRequest{
		Date: "2025-02-28", Kind: "WORK", StartHour: 9, EndHour: 17,
	})

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/compute/period?year=2025&month=3", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var period api.PeriodDTO
	decode(t, resp, &period)

	require.Equal(t, "2025-02-26", period.Start)
	require.Equal(t, "2025-03-25", period.End)
	require.Equal(t, 480, period.TotalMinutes)
}

func TestAPI_SettingsDefaultsAndValidation(t *testing.T) {
	srv, _ := newServer(t, nil)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/settings", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var settings api.SettingsDTO
	decode(t, resp, &settings)
	require.Equal(t, int64(1190), settings.BaseHourlyWage)
	require.Equal(t, int64(1050), settings.DriveHourlyWage)
	require.Equal(t, 31, settings.ClosingDay)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/settings", api.SettingsDTO{
		BaseHourlyWage: 1000, DriveHourlyWage: 800, ClosingDay: 0,
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_AuthDisabledReturns404(t *testing.T) {
	srv, _ := newServer(t, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register",
		api.RegisterRequest{Name: "alice", Password: "pw"}, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// MULTI-USER MODE
// =============================================================================

func TestAPI_MultiUserFlow(t *testing.T) {
	mem := store.NewMemory()
	authSvc := auth.NewService(identityMap{mem: map[string]auth.User{}},
		auth.Config{Secret: "s3cret", Issuer: "paybook"})
	srv, _ := newServerWithAuth(t, mem, authSvc)

	// Unauthenticated requests to protected routes are rejected.
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/records?date=2025-03-10", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Register and log in through the open auth routes.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/auth/register",
		api.RegisterRequest{Name: "alice", Password: "hunter2"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login",
		api.LoginRequest{Name: "alice", Password: "hunter2"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login api.LoginResponse
	decode(t, resp, &login)
	require.NotEmpty(t, login.Token)

	// Records created with the token land under alice's owner id.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/records", api.CreateRecordRequest{
		Date: "2025-03-10", Kind: "WORK", StartHour: 9, EndHour: 17,
	}, login.Token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/compute/day?date=2025-03-10", nil, login.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var day api.DayDTO
	decode(t, resp, &day)
	require.Equal(t, 480, day.Minutes)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login",
		api.LoginRequest{Name: "alice", Password: "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func newServerWithAuth(t *testing.T, mem *store.Memory, authSvc *auth.Service) (*httptest.Server, *store.Memory) {
	t.Helper()
	log := zerolog.Nop()
	calc := pay.NewCalculator(mem, mem, log)
	h := api.NewHandler(calc, mem, mem, authSvc, log)
	srv := httptest.NewServer(api.NewRouter(h, authSvc, log))
	t.Cleanup(srv.Close)
	return srv, mem
}

// identityMap is a map-backed auth.IdentityStore for router tests.
type identityMap struct {
	mem map[string]auth.User
}

func (s identityMap) LookupByName(_ context.Context, name string) (auth.User, error) {
	for _, u := range s.mem {
		if u.Name == name {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (s identityMap) LookupByID(_ context.Context, id string) (auth.User, error) {
	u, ok := s.mem[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

func (s identityMap) Create(_ context.Context, u auth.User) error {
	if _, err := s.LookupByName(context.Background(), u.Name); err == nil {
		return auth.ErrUserExists
	}
	s.mem[u.ID] = u
	return nil
}

func (s identityMap) Rename(_ context.Context, id, newName string) error {
	u, ok := s.mem[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.Name = newName
	s.mem[id] = u
	return nil
}
