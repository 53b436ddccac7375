/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Provides pre-built datasets that demonstrate the allocation engine's
  behaviors. Each scenario wipes the database and loads a seed of employees,
  entitlement schedules and holidays through the factory's seed parser - the
  same path a deployment would use to bootstrap from a checked-in JSON file.

SCENARIOS:
  standard-team:   Three employees on plain schedules with a holiday calendar
  mid-year-raise:  An entitlement raise effective July 2024 - shows how the
                   reference date picks the term per year
  new-hires:       Mid-year hires with prorated fractional entitlements
  borrow-season:   Nearly exhausted current-year balances - shows splitting
                   into the prior year and borrowing from the next

SEE ALSO:
  - factory/agreement.go: Seed JSON schema
  - handlers.go: Scenario endpoints
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/warp/vacation-engine/factory"
	"github.com/warp/vacation-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// Scenario is a loadable demo dataset.
type Scenario struct {
	ID          string
	Name        string
	Description string
	SeedJSON    string
}

var scenarios = []Scenario{
	{
		ID:          "standard-team",
		Name:        "Standard Team",
		Description: "Three employees with plain entitlement schedules and a holiday calendar.",
		SeedJSON: `{
			"employees": [
				{"id": "alice", "name": "Alice Gruber", "email": "alice@example.com", "hire_date": "2019-02-01",
				 "terms": [{"effective_from": "2019-01-01", "annual_days": 23}]},
				{"id": "bruno", "name": "Bruno Costa", "email": "bruno@example.com", "hire_date": "2021-09-15",
				 "terms": [{"effective_from": "2021-09-15", "annual_days": 22}]},
				{"id": "carla", "name": "Carla Meier", "email": "carla@example.com", "hire_date": "2017-06-01",
				 "terms": [{"effective_from": "2017-06-01", "annual_days": 25}]}
			],
			"holidays": [
				{"date": "2025-01-01", "description": "New Year"},
				{"date": "2025-05-01", "description": "Labour Day"},
				{"date": "2025-08-15", "description": "Assumption Day"},
				{"date": "2025-12-25", "description": "Christmas"},
				{"date": "2026-01-01", "description": "New Year"}
			]
		}`,
	},
	{
		ID:          "mid-year-raise",
		Name:        "Mid-Year Entitlement Raise",
		Description: "A raise effective July 2024: 2024 still earns 22 days, 2025 earns 25.",
		SeedJSON: `{
			"employees": [
				{"id": "diego", "name": "Diego Fuentes", "hire_date": "2018-03-01",
				 "terms": [
					{"effective_from": "2020-01-01", "annual_days": 22},
					{"effective_from": "2024-07-01", "annual_days": 25}
				 ]}
			],
			"holidays": [
				{"date": "2025-01-01", "description": "New Year"},
				{"date": "2025-12-25", "description": "Christmas"}
			]
		}`,
	},
	{
		ID:          "new-hires",
		Name:        "New Hires",
		Description: "Mid-year hires whose first-year entitlements arrive prorated and fractional.",
		SeedJSON: `{
			"employees": [
				{"id": "elena", "name": "Elena Novak", "hire_date": "2025-07-01",
				 "terms": [
					{"effective_from": "2025-07-01", "annual_days": 11.5},
					{"effective_from": "2026-01-01", "annual_days": 23}
				 ]},
				{"id": "farid", "name": "Farid Aziz", "hire_date": "2025-10-01",
				 "terms": [
					{"effective_from": "2025-10-01", "annual_days": 5.75},
					{"effective_from": "2026-01-01", "annual_days": 23}
				 ]}
			],
			"holidays": [
				{"date": "2025-12-25", "description": "Christmas"},
				{"date": "2026-01-01", "description": "New Year"}
			]
		}`,
	},
	{
		ID:          "borrow-season",
		Name:        "Borrow Season",
		Description: "Small current-year entitlements that force splitting and next-year borrowing.",
		SeedJSON: `{
			"employees": [
				{"id": "greta", "name": "Greta Lindqvist", "hire_date": "2020-01-15",
				 "terms": [
					{"effective_from": "2024-01-01", "annual_days": 3},
					{"effective_from": "2025-01-01", "annual_days": 10},
					{"effective_from": "2026-01-01", "annual_days": 23}
				 ]}
			],
			"holidays": [
				{"date": "2025-12-25", "description": "Christmas"}
			]
		}`,
	},
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, sc := range scenarios {
		dtos[i] = ScenarioDTO{ID: sc.ID, Name: sc.Name, Description: sc.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the id of the last loaded scenario.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": h.currentScenario})
}

// LoadScenario wipes the database and loads the requested scenario's seed.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var scenario *Scenario
	for i := range scenarios {
		if scenarios[i].ID == req.ScenarioID {
			scenario = &scenarios[i]
			break
		}
	}
	if scenario == nil {
		writeError(w, http.StatusNotFound, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}

	if err := h.loadSeed(r, scenario.SeedJSON); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = scenario.ID
	h.Log.WithField("scenario", scenario.ID).Info("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": scenario.ID, "status": "loaded"})
}

// ResetDatabase wipes all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) loadSeed(r *http.Request, seedJSON string) error {
	ctx := r.Context()

	seed, err := factory.ParseSeed(seedJSON)
	if err != nil {
		return err
	}
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}

	for _, emp := range seed.Employees {
		stored := sqlite.Employee{
			ID:       emp.ID,
			Name:     emp.Name,
			Email:    emp.Email,
			HireDate: emp.Agreement.HireDate,
		}
		if err := h.Store.SaveEmployee(ctx, stored); err != nil {
			return err
		}
		for _, term := range emp.Agreement.Terms {
			if err := h.Store.SaveAgreementTerm(ctx, uuid.NewString(), emp.ID, term); err != nil {
				return err
			}
		}
	}

	for _, holiday := range seed.Holidays {
		holiday.ID = uuid.NewString()
		if err := h.Store.SaveHoliday(ctx, holiday); err != nil {
			return err
		}
	}
	return nil
}
