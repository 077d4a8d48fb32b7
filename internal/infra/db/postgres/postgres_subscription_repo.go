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

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, subscription_code, user_id, plan_code, plan_name, amount, status, next_payment_date, authorization_code, cancelled_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (subscription_code) DO UPDATE SET
  user_id=$3, plan_code=$4, plan_name=$5, amount=$6, status=$7, next_payment_date=$8, authorization_code=$9, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.SubscriptionCode, s.UserID, s.PlanCode, s.PlanName, s.Amount,
		string(s.Status), s.NextPaymentDate, s.AuthorizationCode, s.CancelledAt,
		s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Subscription, error) {
	const q = `SELECT id, subscription_code, user_id, plan_code, plan_name, amount, status, next_payment_date, authorization_code, cancelled_at, created_at, updated_at FROM subscriptions WHERE subscription_code=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}

	s := &model.Subscription{}
	var status string
	if err := row.Scan(&s.ID, &s.SubscriptionCode, &s.UserID, &s.PlanCode, &s.PlanName, &s.Amount, &status, &s.NextPaymentDate, &s.AuthorizationCode, &s.CancelledAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	s.Status = model.SubscriptionStatus(status)
	return s, nil
}

// UpdateStatusIfActive guards the state machine in SQL: only active rows move,
// so a disable redelivered after not_renew (or vice versa) changes nothing.
func (r *subscriptionRepo) UpdateStatusIfActive(ctx context.Context, tx repository.Tx, code string, status model.SubscriptionStatus) (bool, error) {
	const q = `
UPDATE subscriptions
   SET status = $2,
       cancelled_at = CASE WHEN $2 = 'cancelled' THEN NOW() ELSE cancelled_at END,
       updated_at = NOW()
 WHERE subscription_code = $1
   AND status = 'active';`

	cmd, err := execSQL(ctx, r.pool, tx, q, code, string(status))
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}
