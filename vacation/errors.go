/*
errors.go - Centralized error types for the vacation engine

PURPOSE:
  All error types in one place. The only business-rule failure the engine
  produces is the next-year borrow limit; everything else is either not-found
  or a propagated storage failure.

ERROR CATEGORIES:
  1. Business-rule violations - user-correctable, no side effects
  2. Not-found - referenced record/user does not exist
  3. Storage failures - wrapped and propagated, rolled back by the
     transactional store boundary

USAGE:
  if errors.Is(err, vacation.ErrMaxNextYearBorrow) {
      // surface as a rejected request; nothing was persisted
  }
*/
package vacation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMaxNextYearBorrow is returned when a request would pre-consume more
	// than the allowed number of next-year entitlement days. The whole
	// request is rejected; no records are created.
	ErrMaxNextYearBorrow = errors.New("next-year borrow limit exceeded")

	// ErrRecordNotFound is returned when a referenced vacation record does
	// not exist for update, cancel, or delete.
	ErrRecordNotFound = errors.New("vacation record not found")

	// ErrUserNotFound is returned when no employee exists for a user id.
	ErrUserNotFound = errors.New("user not found")

	// ErrAgreementNotFound is returned when a user has no agreement terms.
	ErrAgreementNotFound = errors.New("agreement not found for user")

	// ErrInvalidStatus is returned on a lifecycle transition the record's
	// current status does not allow.
	ErrInvalidStatus = errors.New("invalid status transition")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// BorrowLimitError carries the arithmetic behind a rejected cross-year
// borrow: how many days were still unallocated, and how much next-year
// headroom the user actually had.
type BorrowLimitError struct {
	UserID        string
	Year          int             // the next year whose entitlement was requested
	RequestedDays int             // workable days left after prior/current years
	Allowance     decimal.Decimal // nominal annual entitlement for that year
	Remaining     decimal.Decimal // remaining balance for that year
	Headroom      decimal.Decimal // remaining minus the borrow threshold
}

func (e *BorrowLimitError) Error() string {
	return fmt.Sprintf("cannot borrow %d day(s) from %d: headroom %s of allowance %s",
		e.RequestedDays, e.Year, e.Headroom.String(), e.Allowance.String())
}

func (e *BorrowLimitError) Unwrap() error { return ErrMaxNextYearBorrow }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to the caller's input and
// should not be retried.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMaxNextYearBorrow) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsNotFound reports whether the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrAgreementNotFound)
}
