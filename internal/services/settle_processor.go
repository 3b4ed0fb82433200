package services

import (
	"context"
	"fmt"

	"scadenze/internal/amqp"
	"scadenze/internal/log"
)

// SettleProcessor consumes paid-cycle events and settles the matching
// installments. Safe to replay: parcels already marked paid are skipped
// by the update predicate.
type SettleProcessor struct {
	parcels ParcelSettler
	logger  *log.Logger
}

func NewSettleProcessor(parcels ParcelSettler, logger *log.Logger) *SettleProcessor {
	return &SettleProcessor{
		parcels: parcels,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleCyclePaid marks the cycle's unpaid parcels as settled.
func (p *SettleProcessor) HandleCyclePaid(ctx context.Context, msg *amqp.CyclePaidMessage) error {
	if msg.Month < 1 || msg.Month > 12 {
		return fmt.Errorf("message for card %d: %w", msg.CardID, ErrInvalidCycleMonth)
	}

	settled, err := p.parcels.MarkParcelsPaid(ctx, msg.CardID, msg.Month, msg.Year)
	if err != nil {
		return fmt.Errorf("settle parcels for card %d cycle %d/%d: %w",
			msg.CardID, msg.Month, msg.Year, err)
	}

	p.logger.InfoContext(ctx, "Settled cycle parcels",
		log.FieldCardID, msg.CardID,
		log.FieldMonth, msg.Month,
		log.FieldYear, msg.Year,
		log.FieldOperation, log.OpSettle,
		"parcels_settled", settled)
	return nil
}
