/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/agreement.go: Agreement JSON schema shared with seed files
*/
package api

import (
	"github.com/warp/vacation-engine/calendar"
	"github.com/warp/vacation-engine/store/sqlite"
	"github.com/warp/vacation-engine/vacation"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	HireDate string `json:"hire_date"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	HireDate string `json:"hire_date"`
}

// CreateAgreementTermRequest adds a term to an employee's schedule.
type CreateAgreementTermRequest struct {
	EffectiveFrom string  `json:"effective_from"`
	AnnualDays    float64 `json:"annual_days"`
}

// AgreementDTO represents an employee's full entitlement schedule.
type AgreementDTO struct {
	UserID   string             `json:"user_id"`
	HireDate string             `json:"hire_date"`
	Terms    []AgreementTermDTO `json:"terms"`
}

// AgreementTermDTO is one term of the schedule.
type AgreementTermDTO struct {
	EffectiveFrom string  `json:"effective_from"`
	AnnualDays    float64 `json:"annual_days"`
}

// CreateVacationRequest asks for a date range off.
type CreateVacationRequest struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description,omitempty"`
}

// UpdateVacationRequest moves an existing record to a new range.
type UpdateVacationRequest struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description,omitempty"`
}

// RejectVacationRequest declines a pending record.
type RejectVacationRequest struct {
	Observations string `json:"observations,omitempty"`
}

// AllocationDTO is one per-year slice of an allocation.
type AllocationDTO struct {
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Days       int    `json:"days"`
	ChargeYear int    `json:"charge_year"`
}

// AllocationResponse is returned by create and update.
type AllocationResponse struct {
	Allocations []AllocationDTO `json:"allocations"`
	TotalDays   int             `json:"total_days"`
}

// VacationRecordDTO represents a persisted vacation record.
type VacationRecordDTO struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	ChargeYear   int    `json:"charge_year"`
	Status       string `json:"status"`
	Description  string `json:"description,omitempty"`
	Observations string `json:"observations,omitempty"`
}

// BalanceDTO represents a year's balance for an employee.
type BalanceDTO struct {
	UserID          string `json:"user_id"`
	Year            int    `json:"year"`
	Earned          string `json:"earned"`
	Consumed        string `json:"consumed"`
	Remaining       string `json:"remaining"`
	AllocatableDays int    `json:"allocatable_days"`
}

// HolidayDTO represents a holiday.
type HolidayDTO struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

// CreateHolidayRequest adds a holiday to the calendar.
type CreateHolidayRequest struct {
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

// WorkableDaysDTO lists the workable days inside a range.
type WorkableDaysDTO struct {
	Days  []string `json:"days"`
	Count int      `json:"count"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(emp sqlite.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:       emp.ID,
		Name:     emp.Name,
		Email:    emp.Email,
		HireDate: emp.HireDate.String(),
	}
}

func toAgreementDTO(agreement vacation.Agreement) AgreementDTO {
	dto := AgreementDTO{
		UserID:   agreement.UserID,
		HireDate: agreement.HireDate.String(),
	}
	for _, term := range agreement.Terms {
		days, _ := term.AnnualDays.Float64()
		dto.Terms = append(dto.Terms, AgreementTermDTO{
			EffectiveFrom: term.EffectiveFrom.String(),
			AnnualDays:    days,
		})
	}
	return dto
}

func toAllocationResponse(results []vacation.AllocationResult) AllocationResponse {
	resp := AllocationResponse{Allocations: []AllocationDTO{}}
	for _, res := range results {
		resp.Allocations = append(resp.Allocations, AllocationDTO{
			StartDate:  res.Start.String(),
			EndDate:    res.End.String(),
			Days:       res.Days,
			ChargeYear: res.Year,
		})
	}
	resp.TotalDays = vacation.TotalDays(results)
	return resp
}

func toRecordDTO(record vacation.Record) VacationRecordDTO {
	return VacationRecordDTO{
		ID:           record.ID,
		UserID:       record.UserID,
		StartDate:    record.StartDate.String(),
		EndDate:      record.EndDate.String(),
		ChargeYear:   record.ChargeYear,
		Status:       string(record.Status),
		Description:  record.Description,
		Observations: record.Observations,
	}
}

func toBalanceDTO(balance vacation.Balance) BalanceDTO {
	return BalanceDTO{
		UserID:          balance.UserID,
		Year:            balance.Year,
		Earned:          balance.Earned.String(),
		Consumed:        balance.Consumed.String(),
		Remaining:       balance.Remaining.String(),
		AllocatableDays: balance.AllocatableDays(),
	}
}

func toHolidayDTO(holiday calendar.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:          holiday.ID,
		Date:        holiday.Date.String(),
		Description: holiday.Description,
	}
}
