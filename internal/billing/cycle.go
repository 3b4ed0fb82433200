package billing

import (
	"scadenze/internal/core"
)

// ResolveCycle composes period resolution, aggregation and status
// classification into the full statement for one (card, month, year).
// Pure: callers fetch transactions, parcels and the paid flag and may
// cache the result keyed by (card, month, year).
func ResolveCycle(profile core.CardBillingProfile, month, year int,
	txs []core.CardTransaction, parcels []core.Parcel, today core.Date, paid bool) core.BillingCycle {

	start, end := Period(month, year, profile.ClosingDay)
	due := DueDate(month, year, profile.DueDay)
	processed, pending, total := Aggregate(profile.CardID, start, end, month, year, txs, parcels)
	status, daysUntilDue := Classify(today, due, profile.ClosingDay, paid)

	return core.BillingCycle{
		CardID:       profile.CardID,
		Month:        month,
		Year:         year,
		PeriodStart:  start,
		PeriodEnd:    end,
		DueDate:      due,
		Status:       status,
		Processed:    processed,
		Pending:      pending,
		Total:        total,
		DaysUntilDue: daysUntilDue,
	}
}
