/*
handlers.go - HTTP API handlers for the vacation allocation engine

PURPOSE:
  Exposes the allocation engine and the mutation service via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                      List all employees
    POST   /api/employees                      Create employee
    GET    /api/employees/{id}                 Get employee details
    GET    /api/employees/{id}/agreement       Get entitlement schedule
    POST   /api/employees/{id}/agreement-terms Add an entitlement term
    GET    /api/employees/{id}/balance?year=   Get a year's balance
    GET    /api/employees/{id}/vacations       List vacation records
    POST   /api/employees/{id}/vacations       Request a vacation period

  Vacations:
    PUT    /api/vacations/{id}                 Move an existing record
    POST   /api/vacations/{id}/accept          Approve a pending record
    POST   /api/vacations/{id}/reject          Decline a pending record
    POST   /api/vacations/{id}/cancel          Cancel a record
    DELETE /api/vacations/{id}                 Delete a record

  Calendar:
    GET    /api/calendar/workable-days?from=&to=  Workable days in a range
    GET    /api/holidays                          List holidays
    POST   /api/holidays                          Create holiday
    DELETE /api/holidays/{id}                     Delete holiday

  Scenarios:
    GET    /api/scenarios                      List demo scenarios
    POST   /api/scenarios/load                 Load a demo scenario
    POST   /api/scenarios/reset                Wipe the database

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Employee or record not found
  - 409: Borrow limit exceeded, invalid status transition
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/vacation-engine/calendar"
	"github.com/warp/vacation-engine/store/sqlite"
	"github.com/warp/vacation-engine/vacation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Service *vacation.Service
	Log     *logrus.Logger

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler wires a handler over the store. The store serves as record
// store, holiday source and agreement source at once.
func NewHandler(store *sqlite.Store, clock vacation.Clock, log *logrus.Logger) *Handler {
	return &Handler{
		Store:   store,
		Service: vacation.NewService(store, store, store, clock),
		Log:     log,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, emp := range employees {
		dtos[i] = toEmployeeDTO(emp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	hireDate, err := calendar.ParseDate(req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}

	emp := sqlite.Employee{
		ID:       req.ID,
		Name:     req.Name,
		Email:    req.Email,
		HireDate: hireDate,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	h.Log.WithFields(logrus.Fields{"employee": emp.ID}).Info("employee created")
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetAgreement returns an employee's entitlement schedule.
func (h *Handler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	agreement, err := h.Store.AgreementFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to load agreement", err)
		return
	}
	writeJSON(w, http.StatusOK, toAgreementDTO(agreement))
}

// CreateAgreementTerm adds an entitlement term to an employee's schedule.
func (h *Handler) CreateAgreementTerm(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req CreateAgreementTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	effectiveFrom, err := calendar.ParseDate(req.EffectiveFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_from format (use YYYY-MM-DD)", err)
		return
	}
	if req.AnnualDays < 0 {
		writeError(w, http.StatusBadRequest, "annual_days must not be negative", nil)
		return
	}

	// The employee must exist; terms reference it.
	if _, err := h.Store.GetEmployee(r.Context(), userID); err != nil {
		writeDomainError(w, "Failed to load employee", err)
		return
	}

	term := vacation.AgreementTerm{
		EffectiveFrom: effectiveFrom,
		AnnualDays:    decimal.NewFromFloat(req.AnnualDays),
	}
	if err := h.Store.SaveAgreementTerm(r.Context(), uuid.NewString(), userID, term); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save agreement term", err)
		return
	}

	writeJSON(w, http.StatusCreated, AgreementTermDTO{
		EffectiveFrom: term.EffectiveFrom.String(),
		AnnualDays:    req.AnnualDays,
	})
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetBalance returns an employee's balance for a year. The year defaults to
// the current one.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	year := h.Service.Clock.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	balance, err := h.Service.Remaining(r.Context(), userID, year)
	if err != nil {
		writeDomainError(w, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// =============================================================================
// VACATION HANDLERS
// =============================================================================

// ListVacations returns all of an employee's vacation records.
func (h *Handler) ListVacations(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListRecordsByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list vacations", err)
		return
	}

	dtos := make([]VacationRecordDTO, len(records))
	for i, record := range records {
		dtos[i] = toRecordDTO(record)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateVacation allocates a requested range and persists pending records.
func (h *Handler) CreateVacation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req CreateVacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	interval, err := parseInterval(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	results, err := h.Service.Create(r.Context(), userID, interval, req.Description)
	if err != nil {
		writeDomainError(w, "Failed to create vacation", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"employee": userID,
		"range":    interval.String(),
		"days":     vacation.TotalDays(results),
		"slices":   len(results),
	}).Info("vacation created")
	writeJSON(w, http.StatusCreated, toAllocationResponse(results))
}

// UpdateVacation moves an existing record to a new range.
func (h *Handler) UpdateVacation(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")

	var req UpdateVacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	interval, err := parseInterval(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	results, err := h.Service.Update(r.Context(), recordID, interval, req.Description)
	if err != nil {
		writeDomainError(w, "Failed to update vacation", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"record": recordID,
		"range":  interval.String(),
	}).Info("vacation updated")
	writeJSON(w, http.StatusOK, toAllocationResponse(results))
}

// AcceptVacation approves a pending record.
func (h *Handler) AcceptVacation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "accept", h.Service.Accept)
}

// CancelVacation cancels a pending or accepted record.
func (h *Handler) CancelVacation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel", h.Service.Cancel)
}

// RejectVacation declines a pending record with optional observations.
func (h *Handler) RejectVacation(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")

	var req RejectVacationRequest
	if r.Body != nil {
		// Body is optional; a decode failure on an empty body is fine.
		json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.Service.Reject(r.Context(), recordID, req.Observations); err != nil {
		writeDomainError(w, "Failed to reject vacation", err)
		return
	}

	h.Log.WithFields(logrus.Fields{"record": recordID}).Info("vacation rejected")
	h.writeRecord(w, r, recordID)
}

// DeleteVacation removes a record entirely.
func (h *Handler) DeleteVacation(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")

	if err := h.Service.Delete(r.Context(), recordID); err != nil {
		writeDomainError(w, "Failed to delete vacation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, verb string, fn func(ctx context.Context, recordID string) error) {
	recordID := chi.URLParam(r, "id")

	if err := fn(r.Context(), recordID); err != nil {
		writeDomainError(w, "Failed to "+verb+" vacation", err)
		return
	}

	h.Log.WithFields(logrus.Fields{"record": recordID, "transition": verb}).Info("vacation transitioned")
	h.writeRecord(w, r, recordID)
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetWorkableDays returns the workable days inside ?from=..&to=..
func (h *Handler) GetWorkableDays(w http.ResponseWriter, r *http.Request) {
	interval, err := parseInterval(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	days, err := h.Service.WorkableDays(r.Context(), interval)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute workable days", err)
		return
	}

	dto := WorkableDaysDTO{Days: make([]string, len(days)), Count: len(days)}
	for i, day := range days {
		dto.Days[i] = day.String()
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListHolidays returns holidays, optionally limited to ?year=.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	from := calendar.StartOfYear(1)
	to := calendar.EndOfYear(9999)
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		from, to = calendar.StartOfYear(year), calendar.EndOfYear(year)
	}

	holidays, err := h.Store.HolidaysBetween(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, holiday := range holidays {
		dtos[i] = toHolidayDTO(holiday)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds a holiday to the calendar.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	day, err := calendar.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	holiday := calendar.Holiday{
		ID:          uuid.NewString(),
		Date:        day,
		Description: req.Description,
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeRecord(w http.ResponseWriter, r *http.Request, recordID string) {
	record, err := h.Store.FindByID(r.Context(), recordID)
	if err != nil {
		writeDomainError(w, "Failed to load vacation record", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(*record))
}

func parseInterval(from, to string) (calendar.DateInterval, error) {
	start, err := calendar.ParseDate(from)
	if err != nil {
		return calendar.DateInterval{}, err
	}
	end, err := calendar.ParseDate(to)
	if err != nil {
		return calendar.DateInterval{}, err
	}
	return calendar.NewDateInterval(start, end), nil
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	var borrowErr *vacation.BorrowLimitError
	switch {
	case errors.As(err, &borrowErr):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: message,
			Code:  "max_next_year_borrow",
			Details: map[string]any{
				"requested_days": borrowErr.RequestedDays,
				"year":           borrowErr.Year,
				"remaining":      borrowErr.Remaining.String(),
				"headroom":       borrowErr.Headroom.String(),
			},
		})
	case errors.Is(err, vacation.ErrInvalidStatus):
		writeError(w, http.StatusConflict, message, err)
	case vacation.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
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
