/*
store.go - Collaborator interfaces consumed by the engine

PURPOSE:
  Defines the boundary between the allocation logic and the outside world:
  vacation record persistence, the holiday source, the agreement source, and
  the clock. Implementations live in store/sqlite (production) and
  store/memory (tests/dev).

ATOMICITY CONTRACT:
  SaveAll persists a batch of records all-or-nothing. WithTx runs a function
  against a transaction-scoped Store; if the function errors, every write made
  through that Store is rolled back. The mutation service relies on both: a
  request's records are never partially visible.
*/
package vacation

import (
	"context"
	"time"

	"github.com/warp/vacation-engine/calendar"
)

// =============================================================================
// RECORD PERSISTENCE
// =============================================================================

// RecordSource is the read side of vacation record persistence.
type RecordSource interface {
	// FindByID returns the record or ErrRecordNotFound.
	FindByID(ctx context.Context, id string) (*Record, error)

	// FindByUserAndDateRange returns the user's records whose date range
	// intersects the interval.
	FindByUserAndDateRange(ctx context.Context, userID string, interval calendar.DateInterval) ([]Record, error)

	// FindByUserAndChargeYearRange returns the user's records charged to any
	// year in [fromYear, toYear].
	FindByUserAndChargeYearRange(ctx context.Context, userID string, fromYear, toYear int) ([]Record, error)
}

// Store adds the write side. SaveAll is atomic: either every record in the
// batch is persisted or none is.
type Store interface {
	RecordSource

	Save(ctx context.Context, record Record) error
	SaveAll(ctx context.Context, records []Record) error
	DeleteByID(ctx context.Context, id string) error
}

// TxStore wraps Store with transaction support for multi-step mutations
// (delete-and-reallocate on update).
type TxStore interface {
	Store

	// WithTx executes fn against a transaction-scoped Store. fn returning an
	// error rolls back; nil commits.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// READ-ONLY COLLABORATORS
// =============================================================================

// HolidaySource is the authoritative, read-only holiday provider.
type HolidaySource interface {
	// HolidaysBetween returns every holiday in [from, to].
	HolidaysBetween(ctx context.Context, from, to calendar.TimePoint) ([]calendar.Holiday, error)
}

// AgreementSource provides a user's hire date and entitlement terms.
type AgreementSource interface {
	// AgreementFor returns the user's agreement or ErrAgreementNotFound.
	AgreementFor(ctx context.Context, userID string) (Agreement, error)
}

// =============================================================================
// CLOCK - Injected reference date
// =============================================================================

// Clock supplies "now". The engine never reads wall-clock time inline so that
// the prior/current/next year window is deterministic and testable.
type Clock interface {
	Now() calendar.TimePoint
}

// SystemClock reads the real date.
type SystemClock struct{}

func (SystemClock) Now() calendar.TimePoint { return calendar.FromTime(time.Now()) }

// FixedClock always returns the same date. For tests.
type FixedClock struct {
	At calendar.TimePoint
}

func (c FixedClock) Now() calendar.TimePoint { return c.At }
