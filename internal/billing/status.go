package billing

import (
	"scadenze/internal/core"
)

// Classify derives a cycle's status and its signed days-until-due.
//
// The status machine is open -> closed -> paid. Paid is an explicit
// external flag and short-circuits every date rule, so recomputation can
// never revert a paid cycle. Closed is reached either by passing the
// closing day or by being overdue. A negative day count means overdue.
func Classify(today, dueDate core.Date, closingDay int, paid bool) (core.CycleStatus, int) {
	days := today.DaysUntil(dueDate)
	switch {
	case paid:
		return core.StatusPaid, days
	case today.After(dueDate.Time):
		return core.StatusClosed, days
	case today.Day() <= closingDay:
		return core.StatusOpen, days
	default:
		return core.StatusClosed, days
	}
}

// Pay applies the pay-cycle transition rule. Paying an already-paid
// cycle is a no-op failure, not a silent success.
func Pay(status core.CycleStatus) (core.CycleStatus, error) {
	if status == core.StatusPaid {
		return core.StatusPaid, core.ErrCycleAlreadyPaid
	}
	return core.StatusPaid, nil
}
