/*
balance.go - Per-year balance calculation

PURPOSE:
  Answers "how many vacation days does this user still have for year Y?".
  Earned comes from the agreement's piecewise schedule; consumed is the
  workable-day footprint of every record charged to the year that still holds
  its days (pending or accepted).

WHY WORKABLE DAYS:
  A record's start/end range can span weekends and holidays, but only the
  workable dates inside it were ever charged. Counting raw calendar dates
  would double-bill a Friday-to-Monday record. The balance calculator is
  therefore holiday-aware, fed by the same holiday set the allocation used.

NEGATIVE REMAINING:
  Remaining = earned - consumed can go negative (over-allocation after an
  agreement change, manual record edits). The balance reports the true value;
  Balance.AllocatableDays clamps it to zero for allocation purposes.
*/
package vacation

import (
	"github.com/shopspring/decimal"

	"github.com/warp/vacation-engine/calendar"
)

// RemainingBalance computes the balance of one user for one year.
//
// records may contain records charged to other years; only those charged to
// the requested year are counted. holidays must cover every record's date
// range - in practice the allocation's three-year window set.
func RemainingBalance(year int, agreement Agreement, records []Record, holidays calendar.HolidaySet) Balance {
	earned := EarnedDays(agreement, year)

	consumed := decimal.Zero
	for _, r := range records {
		if r.ChargeYear != year || !r.Status.CountsAgainstBalance() {
			continue
		}
		days := calendar.CountWorkableDays(r.Interval(), holidays)
		consumed = consumed.Add(decimal.NewFromInt(int64(days)))
	}

	return Balance{
		UserID:    agreement.UserID,
		Year:      year,
		Earned:    earned,
		Consumed:  consumed,
		Remaining: earned.Sub(consumed),
	}
}
