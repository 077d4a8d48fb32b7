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

var _ repository.CommissionRepository = (*commissionRepo)(nil)

type commissionRepo struct{ pool *pgxpool.Pool }

func NewCommissionRepo(pool *pgxpool.Pool) *commissionRepo {
	return &commissionRepo{pool: pool}
}

const commissionColumns = `id, affiliate_id, booking_id, referral_user_id, amount, commission_rate, status, paid_at, created_at`

// Insert appends to the ledger. affiliate_commissions carries a UNIQUE
// constraint on booking_id; the 23505 from a concurrent double-calculation
// surfaces as ErrDuplicateCommission so callers can treat it as already-done.
func (r *commissionRepo) Insert(ctx context.Context, tx repository.Tx, c *model.AffiliateCommission) error {
	const q = `
INSERT INTO affiliate_commissions (
  id, affiliate_id, booking_id, referral_user_id, amount, commission_rate, status, paid_at, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`

	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.AffiliateID, c.BookingID, c.ReferralUserID, c.Amount, c.CommissionRate,
		string(c.Status), c.PaidAt, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCommission
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *commissionRepo) SumPaidByAffiliate(ctx context.Context, tx repository.Tx, affiliateID string) (float64, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM affiliate_commissions WHERE affiliate_id=$1 AND status='paid';`
	row, err := pickRow(ctx, r.pool, tx, q, affiliateID)
	if err != nil {
		return 0, err
	}
	var sum float64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *commissionRepo) ListByAffiliate(ctx context.Context, tx repository.Tx, affiliateID string) ([]*model.AffiliateCommission, error) {
	const q = `SELECT ` + commissionColumns + ` FROM affiliate_commissions WHERE affiliate_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, affiliateID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.AffiliateCommission
	for rows.Next() {
		c := new(model.AffiliateCommission)
		var status string
		if err := rows.Scan(&c.ID, &c.AffiliateID, &c.BookingID, &c.ReferralUserID, &c.Amount, &c.CommissionRate, &status, &c.PaidAt, &c.CreatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrReadDatabaseRow
		}
		c.Status = model.CommissionStatus(status)
		out = append(out, c)
	}
	return out, nil
}
