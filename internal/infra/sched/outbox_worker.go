// File: internal/infra/sched/outbox_worker.go
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"rental-payment-ledger/internal/usecase"
)

// OutboxWorker drains the notification outbox on an interval. Delivery is
// at-least-once; the outbox rows carry the retry accounting.
type OutboxWorker struct {
	interval time.Duration
	notifUC  usecase.NotificationUseCase
	log      *zerolog.Logger
}

func NewOutboxWorker(interval time.Duration, notifUC usecase.NotificationUseCase, logger *zerolog.Logger) *OutboxWorker {
	compLog := logger.With().Str("component", "OutboxWorker").Logger()
	return &OutboxWorker{
		interval: interval,
		notifUC:  notifUC,
		log:      &compLog,
	}
}

func (w *OutboxWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting outbox worker")
	// Run once on startup, then on every tick
	w.drain(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping outbox worker")
			return ctx.Err()
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	sent, err := w.notifUC.DispatchPending(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("outbox dispatch failed")
	}
	if sent > 0 {
		w.log.Info().Int("count", sent).Msg("notifications delivered")
	}
}
