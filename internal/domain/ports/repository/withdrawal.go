package repository

import (
	"context"

	"rental-payment-ledger/internal/domain/model"
)

// WithdrawalRepository persists payout requests and their state machine.
type WithdrawalRepository interface {
	Insert(ctx context.Context, tx Tx, w *model.Withdrawal) error

	FindByID(ctx context.Context, tx Tx, id string) (*model.Withdrawal, error)

	// SumHeldByUser totals withdrawals still reserving funds
	// (pending, processing, completed) for the given user.
	SumHeldByUser(ctx context.Context, tx Tx, userID string) (float64, error)

	// UpdateStatus applies an admin transition. Implementations guard the state
	// machine in SQL (WHERE status IN non-terminal) and report whether a row
	// changed, so two admins racing on the same request cannot both win.
	UpdateStatus(ctx context.Context, tx Tx, id string, next model.WithdrawalStatus, processedBy string, txRef string, notes *string) (bool, error)

	// ListByUser returns the user's withdrawals, newest first.
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Withdrawal, error)
}
