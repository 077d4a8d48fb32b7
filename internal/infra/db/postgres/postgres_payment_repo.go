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

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, reference, user_id, booking_id, subscription_id, amount, currency, status, payment_method, customer_email, customer_name, meta, paid_at, created_at, updated_at`

// Upsert keys on the gateway reference, not the row id: webhook redelivery
// carries the same reference and must replace, never duplicate.
func (r *paymentRepo) Upsert(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (
  id, reference, user_id, booking_id, subscription_id, amount, currency, status, payment_method, customer_email, customer_name, meta, paid_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
) ON CONFLICT (reference) DO UPDATE SET
  user_id=$3, booking_id=$4, subscription_id=$5, amount=$6, currency=$7, status=$8, payment_method=$9, customer_email=$10, customer_name=$11, meta=$12, paid_at=$13, updated_at=$15;`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Reference, p.UserID, p.BookingID, p.SubscriptionID, p.Amount, p.Currency,
		string(p.Status), p.PaymentMethod, p.CustomerEmail, p.CustomerName, p.Meta, p.PaidAt,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE reference=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, reference)
	if err != nil {
		return nil, err
	}

	p := &model.Payment{}
	var status string
	if err := row.Scan(&p.ID, &p.Reference, &p.UserID, &p.BookingID, &p.SubscriptionID, &p.Amount, &p.Currency, &status, &p.PaymentMethod, &p.CustomerEmail, &p.CustomerName, &p.Meta, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	p.Status = model.PaymentStatus(status)
	return p, nil
}

func (r *paymentRepo) SumSuccessfulBookingPayments(ctx context.Context, tx repository.Tx, payeeID string) (float64, error) {
	// Owner earnings: successful charges tied to a booking whose listing the
	// payee owns. The join keeps the ledger source-of-truth in bookings.
	const q = `
SELECT COALESCE(SUM(p.amount), 0)
  FROM payments p
  JOIN bookings b ON b.id = p.booking_id
 WHERE p.status = 'success'
   AND p.booking_id IS NOT NULL
   AND b.owner_id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, payeeID)
	if err != nil {
		return 0, err
	}
	var sum float64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}
