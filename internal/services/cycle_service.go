package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scadenze/internal/amqp"
	"scadenze/internal/billing"
	"scadenze/internal/cache"
	"scadenze/internal/core"
	"scadenze/internal/log"
)

var ErrInvalidCycleMonth = errors.New("cycle month out of range")

// CycleService resolves and pays card billing cycles. Resolution is a
// pure recomputation over stored transactions and parcels; paying a
// cycle is the only mutation and goes through RecordCyclePayment, whose
// unique index makes the operation idempotent.
type CycleService struct {
	cards     CardReader
	ledger    LedgerReader
	payments  PaymentStore
	publisher Publisher // nil when messaging is disabled
	memo      *cache.Memo[core.BillingCycle]
	logger    *log.Logger
	today     func() core.Date
}

func NewCycleService(cards CardReader, ledger LedgerReader, payments PaymentStore,
	publisher Publisher, memo *cache.Memo[core.BillingCycle], logger *log.Logger) *CycleService {
	return &CycleService{
		cards:     cards,
		ledger:    ledger,
		payments:  payments,
		publisher: publisher,
		memo:      memo,
		logger:    logger.WithComponent(log.ComponentCycle),
		today: func() core.Date {
			now := time.Now().UTC()
			return core.NewDate(now.Year(), int(now.Month()), now.Day())
		},
	}
}

// GetCycle resolves the statement for one (card, month, year).
func (s *CycleService) GetCycle(ctx context.Context, cardID int64, month, year int) (core.BillingCycle, error) {
	if month < 1 || month > 12 {
		return core.BillingCycle{}, ErrInvalidCycleMonth
	}

	key := cycleKey(cardID, month, year)
	if cached, ok := s.memo.Get(key); ok {
		return cached, nil
	}

	cycle, err := s.resolve(ctx, cardID, month, year)
	if err != nil {
		return core.BillingCycle{}, err
	}

	s.memo.Set(key, cycle)
	return cycle, nil
}

// ActiveCycle resolves the cycle currently accumulating charges for the
// card, relative to today.
func (s *CycleService) ActiveCycle(ctx context.Context, cardID int64) (core.BillingCycle, error) {
	profile, err := s.cards.GetCardProfile(ctx, cardID)
	if err != nil {
		return core.BillingCycle{}, err
	}
	month, year := billing.ActiveCycle(s.today(), profile.ClosingDay)
	return s.GetCycle(ctx, cardID, month, year)
}

// PayCycle marks the cycle paid, invalidates the cached resolution and
// announces the payment. A cycle can be paid once: the second attempt
// reports ErrCycleAlreadyPaid and changes nothing. Publish failures are
// logged but never fail the payment; the database record is the truth.
func (s *CycleService) PayCycle(ctx context.Context, cardID int64, month, year int, fundingAccountID int64) (core.BillingCycle, error) {
	if month < 1 || month > 12 {
		return core.BillingCycle{}, ErrInvalidCycleMonth
	}
	if _, err := s.cards.GetCardProfile(ctx, cardID); err != nil {
		return core.BillingCycle{}, err
	}

	if err := s.payments.RecordCyclePayment(ctx, cardID, month, year, fundingAccountID); err != nil {
		if errors.Is(err, core.ErrCycleAlreadyPaid) {
			s.logger.WarnContext(ctx, "Cycle already paid",
				log.FieldCardID, cardID, log.FieldMonth, month, log.FieldYear, year)
		}
		return core.BillingCycle{}, err
	}

	s.memo.Invalidate(cycleKey(cardID, month, year))
	s.logger.InfoContext(ctx, "Cycle paid",
		log.FieldCardID, cardID, log.FieldMonth, month, log.FieldYear, year,
		log.FieldOperation, log.OpPay)

	if s.publisher != nil {
		msg := amqp.NewCyclePaidMessage(cardID, month, year, fundingAccountID)
		if err := s.publisher.PublishCyclePaid(ctx, msg); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish cycle paid message",
				log.FieldError, err, log.FieldCardID, cardID,
				log.FieldMonth, month, log.FieldYear, year)
		}
	}

	return s.GetCycle(ctx, cardID, month, year)
}

func (s *CycleService) resolve(ctx context.Context, cardID int64, month, year int) (core.BillingCycle, error) {
	profile, err := s.cards.GetCardProfile(ctx, cardID)
	if err != nil {
		return core.BillingCycle{}, err
	}
	if err := profile.Validate(); err != nil {
		return core.BillingCycle{}, fmt.Errorf("card %d: %w", cardID, err)
	}

	start, end := billing.Period(month, year, profile.ClosingDay)
	txs, err := s.ledger.ListCardTransactions(ctx, cardID, start, end)
	if err != nil {
		return core.BillingCycle{}, fmt.Errorf("load transactions: %w", err)
	}
	parcels, err := s.ledger.ListCardParcels(ctx, cardID)
	if err != nil {
		return core.BillingCycle{}, fmt.Errorf("load parcels: %w", err)
	}
	paid, err := s.payments.IsCyclePaid(ctx, cardID, month, year)
	if err != nil {
		return core.BillingCycle{}, fmt.Errorf("load payment state: %w", err)
	}

	cycle := billing.ResolveCycle(profile, month, year, txs, parcels, s.today(), paid)
	s.logger.DebugContext(ctx, "Resolved cycle",
		log.FieldCardID, cardID, log.FieldMonth, month, log.FieldYear, year,
		log.FieldCycleStatus, string(cycle.Status))
	return cycle, nil
}

func cycleKey(cardID int64, month, year int) string {
	return fmt.Sprintf("%d|%d|%d", cardID, year, month)
}
