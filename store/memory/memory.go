// Package memory provides in-memory implementations of the vacation engine's
// collaborator interfaces, for tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/vacation-engine/calendar"
	"github.com/warp/vacation-engine/vacation"
)

// =============================================================================
// RECORD STORE
// =============================================================================

// Store keeps vacation records in a map. Implements vacation.TxStore.
type Store struct {
	mu      sync.RWMutex
	records map[string]vacation.Record
}

func NewStore() *Store {
	return &Store{records: make(map[string]vacation.Record)}
}

var _ vacation.TxStore = (*Store)(nil)

func (s *Store) FindByID(_ context.Context, id string) (*vacation.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, vacation.ErrRecordNotFound
	}
	return &record, nil
}

func (s *Store) FindByUserAndDateRange(_ context.Context, userID string, interval calendar.DateInterval) ([]vacation.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []vacation.Record
	for _, r := range s.records {
		if r.UserID != userID {
			continue
		}
		// Intersection of inclusive intervals.
		if r.StartDate.BeforeOrEqual(interval.End) && r.EndDate.AfterOrEqual(interval.Start) {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out, nil
}

func (s *Store) FindByUserAndChargeYearRange(_ context.Context, userID string, fromYear, toYear int) ([]vacation.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []vacation.Record
	for _, r := range s.records {
		if r.UserID == userID && r.ChargeYear >= fromYear && r.ChargeYear <= toYear {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out, nil
}

func (s *Store) Save(_ context.Context, record vacation.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = record
	return nil
}

// SaveAll persists the batch atomically: the map is only touched once every
// record has been validated.
func (s *Store) SaveAll(_ context.Context, records []vacation.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

func (s *Store) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return vacation.ErrRecordNotFound
	}
	delete(s.records, id)
	return nil
}

// WithTx runs fn against a staged copy of the store and merges the staged
// state back only if fn succeeds - all-or-nothing like a real transaction.
func (s *Store) WithTx(ctx context.Context, fn func(vacation.Store) error) error {
	s.mu.Lock()
	staged := NewStore()
	for id, r := range s.records {
		staged.records[id] = r
	}
	s.mu.Unlock()

	if err := fn(staged); err != nil {
		return err
	}

	s.mu.Lock()
	s.records = staged.records
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored records. For tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func sortRecords(records []vacation.Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].StartDate.Equal(records[j].StartDate) {
			return records[i].StartDate.Before(records[j].StartDate)
		}
		return records[i].ID < records[j].ID
	})
}

// =============================================================================
// HOLIDAY SOURCE
// =============================================================================

// Holidays is an in-memory vacation.HolidaySource.
type Holidays struct {
	mu       sync.RWMutex
	holidays []calendar.Holiday
}

func NewHolidays(holidays ...calendar.Holiday) *Holidays {
	return &Holidays{holidays: holidays}
}

var _ vacation.HolidaySource = (*Holidays)(nil)

func (h *Holidays) Add(holiday calendar.Holiday) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.holidays = append(h.holidays, holiday)
}

func (h *Holidays) HolidaysBetween(_ context.Context, from, to calendar.TimePoint) ([]calendar.Holiday, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []calendar.Holiday
	for _, holiday := range h.holidays {
		if holiday.Date.AfterOrEqual(from) && holiday.Date.BeforeOrEqual(to) {
			out = append(out, holiday)
		}
	}
	return out, nil
}

// =============================================================================
// AGREEMENT SOURCE
// =============================================================================

// Agreements is an in-memory vacation.AgreementSource keyed by user id.
type Agreements struct {
	mu         sync.RWMutex
	agreements map[string]vacation.Agreement
}

func NewAgreements() *Agreements {
	return &Agreements{agreements: make(map[string]vacation.Agreement)}
}

var _ vacation.AgreementSource = (*Agreements)(nil)

func (a *Agreements) Put(agreement vacation.Agreement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.agreements[agreement.UserID] = agreement
}

func (a *Agreements) AgreementFor(_ context.Context, userID string) (vacation.Agreement, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	agreement, ok := a.agreements[userID]
	if !ok {
		return vacation.Agreement{}, vacation.ErrAgreementNotFound
	}
	return agreement, nil
}
