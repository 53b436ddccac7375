/*
Package factory provides JSON to Go agreement conversion.

PURPOSE:
  Converts JSON agreement definitions into vacation.Agreement values. This
  enables entitlement configuration without code changes - HR can maintain
  agreement schedules in JSON, and the factory creates the proper Go structs.

WHY JSON?
  - Non-developers can modify entitlement schedules
  - Easy integration with admin UI
  - Version control for agreement definitions
  - Database storage of agreement configs

JSON SCHEMA:
  {
    "user_id": "emp-1",
    "hire_date": "2020-03-01",
    "terms": [
      {"effective_from": "2020-01-01", "annual_days": 22},
      {"effective_from": "2024-07-01", "annual_days": 25.5}
    ]
  }

  Fractional annual_days carry prorated entitlements computed upstream.

SEED FILES:
  ParseSeed reads a full demo/bootstrap dataset: employees with their
  agreement schedules plus the holiday calendar. Used by the demo scenarios
  and by deployments that bootstrap from a checked-in JSON file.

USAGE:
  agreement, err := factory.ParseAgreement(jsonString)

  seed, err := factory.ParseSeed(seedJSON)
  for _, emp := range seed.Employees { ... }

SEE ALSO:
  - vacation/types.go: Agreement and AgreementTerm definitions
  - api/scenarios.go: Demo datasets built through ParseSeed
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/vacation-engine/calendar"
	"github.com/warp/vacation-engine/vacation"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// AgreementJSON is the JSON representation of an employee's agreement.
type AgreementJSON struct {
	UserID   string     `json:"user_id"`
	HireDate string     `json:"hire_date"`
	Terms    []TermJSON `json:"terms"`
}

// TermJSON is one entitlement term of the piecewise schedule.
type TermJSON struct {
	EffectiveFrom string  `json:"effective_from"`
	AnnualDays    float64 `json:"annual_days"`
}

// EmployeeJSON is an employee entry in a seed file, agreement inlined.
type EmployeeJSON struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email,omitempty"`
	HireDate string     `json:"hire_date"`
	Terms    []TermJSON `json:"terms"`
}

// HolidayJSON is a holiday entry in a seed file.
type HolidayJSON struct {
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

// SeedJSON is a full bootstrap dataset.
type SeedJSON struct {
	Employees []EmployeeJSON `json:"employees"`
	Holidays  []HolidayJSON  `json:"holidays"`
}

// =============================================================================
// PARSED SEED TYPES
// =============================================================================

// EmployeeSeed is a parsed employee with its agreement schedule.
type EmployeeSeed struct {
	ID        string
	Name      string
	Email     string
	Agreement vacation.Agreement
}

// Seed is a parsed bootstrap dataset.
type Seed struct {
	Employees []EmployeeSeed
	Holidays  []calendar.Holiday
}

// =============================================================================
// PARSING
// =============================================================================

// ParseAgreement parses a JSON string into a vacation.Agreement.
func ParseAgreement(jsonStr string) (vacation.Agreement, error) {
	var aj AgreementJSON
	if err := json.Unmarshal([]byte(jsonStr), &aj); err != nil {
		return vacation.Agreement{}, fmt.Errorf("failed to parse agreement JSON: %w", err)
	}
	return AgreementFromJSON(aj)
}

// AgreementFromJSON converts AgreementJSON to a vacation.Agreement.
func AgreementFromJSON(aj AgreementJSON) (vacation.Agreement, error) {
	if aj.UserID == "" {
		return vacation.Agreement{}, fmt.Errorf("agreement requires user_id")
	}

	hireDate, err := calendar.ParseDate(aj.HireDate)
	if err != nil {
		return vacation.Agreement{}, fmt.Errorf("invalid hire_date %q: %w", aj.HireDate, err)
	}

	terms, err := parseTerms(aj.Terms)
	if err != nil {
		return vacation.Agreement{}, fmt.Errorf("agreement for %s: %w", aj.UserID, err)
	}

	return vacation.Agreement{
		UserID:   aj.UserID,
		HireDate: hireDate,
		Terms:    terms,
	}, nil
}

func parseTerms(tjs []TermJSON) ([]vacation.AgreementTerm, error) {
	terms := make([]vacation.AgreementTerm, 0, len(tjs))
	for i, tj := range tjs {
		effectiveFrom, err := calendar.ParseDate(tj.EffectiveFrom)
		if err != nil {
			return nil, fmt.Errorf("term %d: invalid effective_from %q: %w", i, tj.EffectiveFrom, err)
		}
		if tj.AnnualDays < 0 {
			return nil, fmt.Errorf("term %d: annual_days must not be negative, got %v", i, tj.AnnualDays)
		}
		terms = append(terms, vacation.AgreementTerm{
			EffectiveFrom: effectiveFrom,
			AnnualDays:    decimal.NewFromFloat(tj.AnnualDays),
		})
	}
	return terms, nil
}

// ParseSeed parses a full bootstrap dataset.
func ParseSeed(jsonStr string) (*Seed, error) {
	var sj SeedJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return nil, fmt.Errorf("failed to parse seed JSON: %w", err)
	}

	seed := &Seed{}
	for _, ej := range sj.Employees {
		agreement, err := AgreementFromJSON(AgreementJSON{
			UserID:   ej.ID,
			HireDate: ej.HireDate,
			Terms:    ej.Terms,
		})
		if err != nil {
			return nil, err
		}
		seed.Employees = append(seed.Employees, EmployeeSeed{
			ID:        ej.ID,
			Name:      ej.Name,
			Email:     ej.Email,
			Agreement: agreement,
		})
	}

	for i, hj := range sj.Holidays {
		d, err := calendar.ParseDate(hj.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday %d: invalid date %q: %w", i, hj.Date, err)
		}
		seed.Holidays = append(seed.Holidays, calendar.Holiday{
			Date:        d,
			Description: hj.Description,
		})
	}

	return seed, nil
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// AgreementToJSON converts a vacation.Agreement back to its JSON form.
func AgreementToJSON(agreement vacation.Agreement) AgreementJSON {
	aj := AgreementJSON{
		UserID:   agreement.UserID,
		HireDate: agreement.HireDate.String(),
	}
	for _, term := range agreement.Terms {
		days, _ := term.AnnualDays.Float64()
		aj.Terms = append(aj.Terms, TermJSON{
			EffectiveFrom: term.EffectiveFrom.String(),
			AnnualDays:    days,
		})
	}
	return aj
}
