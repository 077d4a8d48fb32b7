package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"rental-payment-ledger/internal/domain"
	"rental-payment-ledger/internal/domain/model"
	"rental-payment-ledger/internal/domain/ports/repository"
)

var _ repository.BookingRepository = (*bookingRepo)(nil)

// bookingRepo touches only the payment columns of the bookings table; the rest
// of the booking belongs to the listing service.
type bookingRepo struct{ pool *pgxpool.Pool }

func NewBookingRepo(pool *pgxpool.Pool) *bookingRepo {
	return &bookingRepo{pool: pool}
}

func (r *bookingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*repository.BookingRef, error) {
	const q = `SELECT id, renter_id, owner_id, subtotal, payment_status FROM bookings WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	b := &repository.BookingRef{}
	var status string
	if err := row.Scan(&b.ID, &b.RenterID, &b.OwnerID, &b.Subtotal, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	b.PaymentStatus = model.BookingPaymentStatus(status)
	return b, nil
}

// MarkPaid is idempotent by construction: the WHERE clause only matches unpaid
// rows, so a redelivered charge event finds nothing to update and reports
// false without erroring.
func (r *bookingRepo) MarkPaid(ctx context.Context, tx repository.Tx, id, reference string, amount float64) (bool, error) {
	const q = `
UPDATE bookings
   SET payment_status = 'paid',
       payment_reference = $2,
       payment_amount = $3,
       updated_at = NOW()
 WHERE id = $1
   AND payment_status <> 'paid';`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, reference, amount)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}
