// File: internal/usecase/notification_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"rental-payment-ledger/internal/domain/model"
	"rental-payment-ledger/internal/domain/ports/adapter"
	"rental-payment-ledger/internal/domain/ports/repository"
)

// maxSendAttempts before an outbox row is parked as failed.
const maxSendAttempts = 5

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	// EnqueueReceipt writes a pending payment-receipt row to the outbox.
	EnqueueReceipt(ctx context.Context, p *model.Payment) error

	// DispatchPending delivers queued notifications at least once and returns
	// how many were sent. Delivery failures mark the row for retry.
	DispatchPending(ctx context.Context) (int, error)
}

type notificationUC struct {
	outbox   repository.NotificationLogRepository
	notifier adapter.Notifier
	log      *zerolog.Logger
}

func NewNotificationUseCase(outbox repository.NotificationLogRepository, notifier adapter.Notifier, logger *zerolog.Logger) *notificationUC {
	compLog := logger.With().Str("component", "NotificationUC").Logger()
	return &notificationUC{outbox: outbox, notifier: notifier, log: &compLog}
}

func (u *notificationUC) EnqueueReceipt(ctx context.Context, p *model.Payment) error {
	if p.CustomerEmail == "" {
		return nil // nothing to address it to
	}
	name := "Customer"
	if p.CustomerName != nil && *p.CustomerName != "" {
		name = *p.CustomerName
	}
	n := &model.NotificationLog{
		ID:        ulid.Make().String(),
		Kind:      model.NotificationKindPaymentReceipt,
		Recipient: p.CustomerEmail,
		Subject:   "Payment Confirmation",
		Body: fmt.Sprintf(
			"Dear %s,\n\nYour payment has been processed.\n\nAmount: %s %.2f\nReference: %s\nPayment method: %s\n\nThank you.",
			name, p.Currency, p.Amount, p.Reference, p.PaymentMethod,
		),
		Status:    model.NotificationStatusPending,
		CreatedAt: p.CreatedAt,
	}
	return u.outbox.Insert(ctx, nil, n)
}

func (u *notificationUC) DispatchPending(ctx context.Context) (int, error) {
	pending, err := u.outbox.ListPending(ctx, nil, 50)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range pending {
		if err := u.notifier.Send(ctx, n.Recipient, n.Subject, n.Body); err != nil {
			u.log.Warn().Err(err).Str("notification_id", n.ID).Int("attempts", n.Attempts+1).Msg("notification delivery failed")
			if err := u.outbox.MarkAttemptFailed(ctx, nil, n.ID, err.Error(), maxSendAttempts); err != nil {
				u.log.Error().Err(err).Str("notification_id", n.ID).Msg("failed to record delivery attempt")
			}
			continue
		}
		if err := u.outbox.MarkSent(ctx, nil, n.ID); err != nil {
			// The send happened; at-least-once means a duplicate on retry is
			// acceptable, losing the send is not.
			u.log.Error().Err(err).Str("notification_id", n.ID).Msg("failed to mark notification sent")
			continue
		}
		sent++
	}
	return sent, nil
}
