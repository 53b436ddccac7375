package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/vacation-engine/api"
	"github.com/warp/vacation-engine/calendar"
	"github.com/warp/vacation-engine/store/sqlite"
	"github.com/warp/vacation-engine/vacation"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

type apiFixture struct {
	router http.Handler
	store  *sqlite.Store
}

// The fixture clock is pinned to Monday, June 2 2025.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	clock := vacation.FixedClock{At: calendar.NewTimePoint(2025, time.June, 2)}
	handler := api.NewHandler(store, clock, log)
	return &apiFixture{router: api.NewRouter(handler), store: store}
}

func (fx *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func (fx *apiFixture) seedEmployee(t *testing.T, id string, annual2024, annual2025, annual2026 float64) {
	t.Helper()

	rec := fx.do(t, http.MethodPost, "/api/employees", api.CreateEmployeeRequest{
		ID: id, Name: "Test Employee", HireDate: "2020-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, term := range []struct {
		from string
		days float64
	}{
		{"2024-01-01", annual2024},
		{"2025-01-01", annual2025},
		{"2026-01-01", annual2026},
	} {
		rec := fx.do(t, http.MethodPost, "/api/employees/"+id+"/agreement-terms",
			api.CreateAgreementTermRequest{EffectiveFrom: term.from, AnnualDays: term.days})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

func TestAPI_EmployeeLifecycle(t *testing.T) {
	fx := newAPIFixture(t)
	fx.seedEmployee(t, "emp-1", 3, 10, 23)

	rec := fx.do(t, http.MethodGet, "/api/employees/emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	emp := decode[api.EmployeeDTO](t, rec)
	assert.Equal(t, "2020-03-01", emp.HireDate)

	rec = fx.do(t, http.MethodGet, "/api/employees/emp-1/agreement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	agreement := decode[api.AgreementDTO](t, rec)
	assert.Len(t, agreement.Terms, 3)

	rec = fx.do(t, http.MethodGet, "/api/employees/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_CreateEmployee_Validation(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodPost, "/api/employees", api.CreateEmployeeRequest{
		ID: "emp-1", Name: "Bad Date", HireDate: "01/03/2020",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = fx.do(t, http.MethodPost, "/api/employees", api.CreateEmployeeRequest{
		Name: "No ID", HireDate: "2020-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// VACATION ENDPOINTS
// =============================================================================

func TestAPI_CreateVacation_SplitsAcrossYears(t *testing.T) {
	// Mon Jun 16 - Fri Jun 20 2025: 5 workable days against 3 remaining in
	// 2024 and plenty in 2025.

	fx := newAPIFixture(t)
	fx.seedEmployee(t, "emp-1", 3, 10, 23)

	rec := fx.do(t, http.MethodPost, "/api/employees/emp-1/vacations", api.CreateVacationRequest{
		StartDate: "2025-06-16", EndDate: "2025-06-20", Description: "summer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[api.AllocationResponse](t, rec)
	require.Len(t, resp.Allocations, 2)
	assert.Equal(t, 5, resp.TotalDays)
	assert.Equal(t, 2024, resp.Allocations[0].ChargeYear)
	assert.Equal(t, 3, resp.Allocations[0].Days)
	assert.Equal(t, 2025, resp.Allocations[1].ChargeYear)
	assert.Equal(t, 2, resp.Allocations[1].Days)

	rec = fx.do(t, http.MethodGet, "/api/employees/emp-1/vacations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]api.VacationRecordDTO](t, rec)
	assert.Len(t, records, 2)
	for _, record := range records {
		assert.Equal(t, "pending", record.Status)
	}
}

func TestAPI_CreateVacation_BorrowLimit_Conflict(t *testing.T) {
	fx := newAPIFixture(t)
	fx.seedEmployee(t, "emp-1", 0, 0, 23)

	// Six workable days against a 5-day borrow headroom.
	rec := fx.do(t, http.MethodPost, "/api/employees/emp-1/vacations", api.CreateVacationRequest{
		StartDate: "2025-06-16", EndDate: "2025-06-23",
	})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	resp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "max_next_year_borrow", resp.Code)

	rec = fx.do(t, http.MethodGet, "/api/employees/emp-1/vacations", nil)
	records := decode[[]api.VacationRecordDTO](t, rec)
	assert.Empty(t, records, "a rejected request must not persist records")
}

func TestAPI_VacationLifecycle_AcceptThenRejectConflicts(t *testing.T) {
	fx := newAPIFixture(t)
	fx.seedEmployee(t, "emp-1", 0, 10, 23)

	rec := fx.do(t, http.MethodPost, "/api/employees/emp-1/vacations", api.CreateVacationRequest{
		StartDate: "2025-06-16", EndDate: "2025-06-18",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	records := decode[[]api.VacationRecordDTO](t, fx.do(t, http.MethodGet, "/api/employees/emp-1/vacations", nil))
	require.Len(t, records, 1)
	id := records[0].ID

	rec = fx.do(t, http.MethodPost, "/api/vacations/"+id+"/accept", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "accepted", decode[api.VacationRecordDTO](t, rec).Status)

	rec = fx.do(t, http.MethodPost, "/api/vacations/"+id+"/reject", api.RejectVacationRequest{Observations: "no"})
	assert.Equal(t, http.StatusConflict, rec.Code, "accepted records cannot be rejected")

	rec = fx.do(t, http.MethodPost, "/api/vacations/"+id+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decode[api.VacationRecordDTO](t, rec).Status)
}

func TestAPI_UpdateVacation_Reallocates(t *testing.T) {
	fx := newAPIFixture(t)
	fx.seedEmployee(t, "emp-1", 0, 4, 23)

	rec := fx.do(t, http.MethodPost, "/api/employees/emp-1/vacations", api.CreateVacationRequest{
		StartDate: "2025-06-16", EndDate: "2025-06-17",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	records := decode[[]api.VacationRecordDTO](t, fx.do(t, http.MethodGet, "/api/employees/emp-1/vacations", nil))
	require.Len(t, records, 1)

	// Five workable days: 4 stay in 2025, 1 is borrowed from 2026.
	rec = fx.do(t, http.MethodPut, "/api/vacations/"+records[0].ID, api.UpdateVacationRequest{
		StartDate: "2025-07-07", EndDate: "2025-07-11",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[api.AllocationResponse](t, rec)
	require.Len(t, resp.Allocations, 2)
	assert.Equal(t, 4, resp.Allocations[0].Days)
	assert.Equal(t, 1, resp.Allocations[1].Days)
}

// =============================================================================
// BALANCE AND CALENDAR ENDPOINTS
// =============================================================================

func TestAPI_GetBalance(t *testing.T) {
	fx := newAPIFixture(t)
	fx.seedEmployee(t, "emp-1", 0, 10, 23)

	rec := fx.do(t, http.MethodPost, "/api/employees/emp-1/vacations", api.CreateVacationRequest{
		StartDate: "2025-06-16", EndDate: "2025-06-20",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = fx.do(t, http.MethodGet, "/api/employees/emp-1/balance?year=2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	balance := decode[api.BalanceDTO](t, rec)
	assert.Equal(t, 2025, balance.Year)
	assert.Equal(t, "10", balance.Earned)
	assert.Equal(t, "5", balance.Consumed)
	assert.Equal(t, 5, balance.AllocatableDays)
}

func TestAPI_WorkableDays_ExcludesHolidays(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodPost, "/api/holidays", api.CreateHolidayRequest{
		Date: "2025-06-18", Description: "midweek holiday",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = fx.do(t, http.MethodGet, "/api/calendar/workable-days?from=2025-06-16&to=2025-06-20", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	dto := decode[api.WorkableDaysDTO](t, rec)
	assert.Equal(t, 4, dto.Count)
	assert.NotContains(t, dto.Days, "2025-06-18")
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

func TestAPI_Scenarios_LoadAndReset(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.ScenarioDTO](t, rec)
	require.NotEmpty(t, list)

	rec = fx.do(t, http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "borrow-season"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	employees := decode[[]api.EmployeeDTO](t, fx.do(t, http.MethodGet, "/api/employees", nil))
	require.Len(t, employees, 1)

	// The seeded schedule reproduces the split-and-borrow setup.
	rec = fx.do(t, http.MethodPost, "/api/employees/"+employees[0].ID+"/vacations", api.CreateVacationRequest{
		StartDate: "2025-06-16", EndDate: "2025-06-20",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[api.AllocationResponse](t, rec)
	assert.Equal(t, 5, resp.TotalDays)

	rec = fx.do(t, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	employees = decode[[]api.EmployeeDTO](t, fx.do(t, http.MethodGet, "/api/employees", nil))
	assert.Empty(t, employees)

	rec = fx.do(t, http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
