package repository

import (
	"context"

	"rental-payment-ledger/internal/domain/model"
)

// BookingRef is the slice of a booking this subsystem reads. Bookings are
// owned by the listing service; we only confirm payment and derive commission.
type BookingRef struct {
	ID            string
	RenterID      string
	OwnerID       string
	Subtotal      float64
	PaymentStatus model.BookingPaymentStatus
}

// BookingRepository mutates the payment fields of externally owned bookings.
type BookingRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*BookingRef, error)

	// MarkPaid flips payment_status to paid and stamps the reference/amount.
	// The transition is one-way: an already-paid booking is a no-op, reported
	// via the returned bool, never an error.
	MarkPaid(ctx context.Context, tx Tx, id, reference string, amount float64) (bool, error)
}
