package repository

import (
	"context"

	"rental-payment-ledger/internal/domain/model"
)

// PaymentRepository persists gateway charge records.
type PaymentRepository interface {
	// Upsert inserts or replaces the payment keyed by its gateway reference.
	// Redelivered webhook events converge on a single row.
	Upsert(ctx context.Context, tx Tx, p *model.Payment) error

	// FindByReference returns the payment for a gateway reference or
	// domain.ErrNotFound.
	FindByReference(ctx context.Context, tx Tx, reference string) (*model.Payment, error)

	// SumSuccessfulBookingPayments totals successful booking payments credited
	// to the given payee (listing owner). Feeds the owner balance.
	SumSuccessfulBookingPayments(ctx context.Context, tx Tx, payeeID string) (float64, error)
}
