package repository

import (
	"context"

	"rental-payment-ledger/internal/domain/model"
)

// NotificationLogRepository is the outbox store for deferred notifications.
type NotificationLogRepository interface {
	Insert(ctx context.Context, tx Tx, n *model.NotificationLog) error

	// ListPending returns up to limit undelivered rows, oldest first.
	ListPending(ctx context.Context, tx Tx, limit int) ([]*model.NotificationLog, error)

	MarkSent(ctx context.Context, tx Tx, id string) error

	// MarkAttemptFailed bumps the attempt counter, records the error, and moves
	// the row to failed once attempts reach maxAttempts.
	MarkAttemptFailed(ctx context.Context, tx Tx, id string, cause string, maxAttempts int) error
}
