// Package services wires the pure calendar engine to storage, caching
// and messaging. Services own memoization and invalidation; the engine
// packages stay side-effect free.
package services

import (
	"context"

	"scadenze/internal/amqp"
	"scadenze/internal/core"
)

// ObligationReader supplies recurring obligations for projection.
type ObligationReader interface {
	ListActiveObligations(ctx context.Context) ([]core.RecurringObligation, error)
}

// CardReader supplies card billing profiles.
type CardReader interface {
	GetCardProfile(ctx context.Context, cardID int64) (core.CardBillingProfile, error)
	ListCardProfiles(ctx context.Context) ([]core.CardBillingProfile, error)
}

// LedgerReader supplies the raw charges and installments of a card.
type LedgerReader interface {
	ListCardTransactions(ctx context.Context, cardID int64, from, to core.Date) ([]core.CardTransaction, error)
	ListCardParcels(ctx context.Context, cardID int64) ([]core.Parcel, error)
}

// PaymentStore records and queries cycle payments.
type PaymentStore interface {
	IsCyclePaid(ctx context.Context, cardID int64, month, year int) (bool, error)
	RecordCyclePayment(ctx context.Context, cardID int64, month, year int, fundingAccountID int64) error
}

// ParcelSettler marks a cycle's installments as settled.
type ParcelSettler interface {
	MarkParcelsPaid(ctx context.Context, cardID int64, month, year int) (int64, error)
}

// Publisher announces paid cycles to downstream consumers.
type Publisher interface {
	PublishCyclePaid(ctx context.Context, msg *amqp.CyclePaidMessage) error
}
