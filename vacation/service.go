/*
service.go - Mutation service: create, update, cancel vacation records

PURPOSE:
  Orchestrates the allocation engine and the record store. Create turns an
  allocation into pending records persisted atomically. Update decides
  between editing a record in place (day count unchanged) and the full
  delete-and-reallocate path (day count changed).

TRANSACTIONAL GUARANTEES:
  - Create persists all of a request's records with one atomic SaveAll.
  - Update's delete-and-reallocate path runs inside WithTx: the delete, the
    re-read of balances, and the new records' save either all commit or all
    roll back. Running the allocation's balance reads inside the same
    transaction also serializes concurrent updates for the same user at the
    storage boundary.
  - A borrow-limit rejection leaves the store untouched.
*/
package vacation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/warp/vacation-engine/calendar"
)

// Service is the mutation service over vacation records.
type Service struct {
	Store  TxStore
	Engine *Engine
	Clock  Clock
}

// NewService wires a mutation service. The engine's record reads go through
// the same store the service writes to.
func NewService(store TxStore, holidays HolidaySource, agreements AgreementSource, clock Clock) *Service {
	return &Service{
		Store:  store,
		Engine: NewEngine(holidays, agreements, store),
		Clock:  clock,
	}
}

// =============================================================================
// CREATE
// =============================================================================

// Create allocates the requested range for the user and persists one pending
// record per year touched. On a borrow-limit rejection nothing is persisted
// and the error propagates. A request with zero workable days persists
// nothing and returns an empty result.
func (s *Service) Create(ctx context.Context, userID string, requested calendar.DateInterval, description string) ([]AllocationResult, error) {
	return s.createWith(ctx, s.Store, s.Engine, userID, requested, description)
}

// createWith runs the create path against an explicit store/engine pair so
// the update path can reuse it inside a transaction scope.
func (s *Service) createWith(ctx context.Context, store Store, engine *Engine, userID string, requested calendar.DateInterval, description string) ([]AllocationResult, error) {
	results, err := engine.Allocate(ctx, userID, requested, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	records := make([]Record, len(results))
	for i, res := range results {
		records[i] = Record{
			ID:          uuid.NewString(),
			UserID:      userID,
			StartDate:   res.Start,
			EndDate:     res.End,
			ChargeYear:  res.Year,
			Status:      StatusPending,
			Description: description,
		}
	}

	if err := store.SaveAll(ctx, records); err != nil {
		return nil, fmt.Errorf("persisting %d vacation record(s): %w", len(records), err)
	}
	return results, nil
}

// =============================================================================
// UPDATE
// =============================================================================

// Update changes an existing record's range and description.
//
// When the new range spans the same number of workable days as the old one,
// the record is updated in place: same id, same charge year. Otherwise the
// record is deleted and the new range goes through the full create path,
// which may split into records across years - all inside one transaction.
func (s *Service) Update(ctx context.Context, recordID string, requested calendar.DateInterval, description string) ([]AllocationResult, error) {
	record, err := s.Store.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	window := WindowAround(s.Clock.Now())
	holidays, err := s.Engine.holidayWindow(ctx, window)
	if err != nil {
		return nil, err
	}

	oldDays := calendar.CountWorkableDays(record.Interval(), holidays)
	newDays := calendar.CountWorkableDays(requested, holidays)

	if oldDays == newDays {
		record.StartDate = requested.Start
		record.EndDate = requested.End
		record.Description = description
		if err := s.Store.Save(ctx, *record); err != nil {
			return nil, fmt.Errorf("updating vacation record %s: %w", recordID, err)
		}
		return []AllocationResult{{
			Start: record.StartDate,
			End:   record.EndDate,
			Days:  newDays,
			Year:  record.ChargeYear,
		}}, nil
	}

	var results []AllocationResult
	err = s.Store.WithTx(ctx, func(txStore Store) error {
		if err := txStore.DeleteByID(ctx, record.ID); err != nil {
			return fmt.Errorf("deleting vacation record %s: %w", record.ID, err)
		}
		txResults, err := s.createWith(ctx, txStore, s.Engine.withRecords(txStore), record.UserID, requested, description)
		if err != nil {
			return err
		}
		results = txResults
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// =============================================================================
// LIFECYCLE TRANSITIONS
// =============================================================================

// Cancel transitions a pending or accepted record to cancelled, releasing
// its days back to the charge year's balance.
func (s *Service) Cancel(ctx context.Context, recordID string) error {
	return s.transition(ctx, recordID, StatusCancelled, func(from Status) bool {
		return from == StatusPending || from == StatusAccepted
	})
}

// Accept approves a pending record.
func (s *Service) Accept(ctx context.Context, recordID string) error {
	return s.transition(ctx, recordID, StatusAccepted, func(from Status) bool {
		return from == StatusPending
	})
}

// Reject declines a pending record, releasing its days.
func (s *Service) Reject(ctx context.Context, recordID string, observations string) error {
	record, err := s.Store.FindByID(ctx, recordID)
	if err != nil {
		return err
	}
	if record.Status != StatusPending {
		return fmt.Errorf("reject %s: from %s: %w", recordID, record.Status, ErrInvalidStatus)
	}
	record.Status = StatusRejected
	record.Observations = observations
	return s.Store.Save(ctx, *record)
}

// Delete removes a record entirely.
func (s *Service) Delete(ctx context.Context, recordID string) error {
	if _, err := s.Store.FindByID(ctx, recordID); err != nil {
		return err
	}
	return s.Store.DeleteByID(ctx, recordID)
}

func (s *Service) transition(ctx context.Context, recordID string, to Status, allowed func(Status) bool) error {
	record, err := s.Store.FindByID(ctx, recordID)
	if err != nil {
		return err
	}
	if !allowed(record.Status) {
		return fmt.Errorf("%s %s: from %s: %w", to, recordID, record.Status, ErrInvalidStatus)
	}
	record.Status = to
	return s.Store.Save(ctx, *record)
}

// =============================================================================
// QUERIES
// =============================================================================

// Remaining returns the user's remaining balance for a year, floored and
// clamped for display as whole days.
func (s *Service) Remaining(ctx context.Context, userID string, year int) (Balance, error) {
	return s.Engine.RemainingFor(ctx, userID, year)
}

// WorkableDays exposes the calendar engine over the stored holidays.
func (s *Service) WorkableDays(ctx context.Context, interval calendar.DateInterval) ([]calendar.TimePoint, error) {
	holidays, err := s.Engine.Holidays.HolidaysBetween(ctx, interval.Start, interval.End)
	if err != nil {
		return nil, fmt.Errorf("loading holidays %s: %w", interval, err)
	}
	return calendar.WorkableDays(interval, calendar.NewHolidaySet(holidays)), nil
}
