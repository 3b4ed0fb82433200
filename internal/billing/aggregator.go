package billing

import (
	"scadenze/internal/core"
)

// Aggregate sums a cycle's totals from raw inputs:
//
//   - processed: absolute values of the card's transactions dated inside
//     [periodStart, periodEnd]
//   - pending: amounts of unpaid parcels due in (month, year)
//   - total: processed + pending
//
// Empty inputs yield zero totals, never an error.
func Aggregate(cardID int64, periodStart, periodEnd core.Date, month, year int,
	txs []core.CardTransaction, parcels []core.Parcel) (processed, pending, total core.Money) {

	for _, tx := range txs {
		if tx.CardID != cardID {
			continue
		}
		if tx.Date.Before(periodStart.Time) || tx.Date.After(periodEnd.Time) {
			continue
		}
		processed = processed.Add(tx.Amount.Abs())
	}

	for _, p := range parcels {
		if p.Paid {
			continue
		}
		if p.DueDate.Month() != month || p.DueDate.Year() != year {
			continue
		}
		pending = pending.Add(p.Amount)
	}

	return processed, pending, processed.Add(pending)
}
