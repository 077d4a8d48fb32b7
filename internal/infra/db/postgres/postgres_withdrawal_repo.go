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

var _ repository.WithdrawalRepository = (*withdrawalRepo)(nil)

type withdrawalRepo struct{ pool *pgxpool.Pool }

func NewWithdrawalRepo(pool *pgxpool.Pool) *withdrawalRepo {
	return &withdrawalRepo{pool: pool}
}

const withdrawalColumns = `id, user_id, user_type, amount, payment_method, payment_details, status, processed_by, processed_at, transaction_reference, admin_notes, created_at`

func (r *withdrawalRepo) Insert(ctx context.Context, tx repository.Tx, w *model.Withdrawal) error {
	const q = `
INSERT INTO withdrawals (
  id, user_id, user_type, amount, payment_method, payment_details, status, processed_by, processed_at, transaction_reference, admin_notes, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`

	_, err := execSQL(ctx, r.pool, tx, q,
		w.ID, w.UserID, string(w.UserType), w.Amount, w.PaymentMethod, w.PaymentDetails,
		string(w.Status), w.ProcessedBy, w.ProcessedAt, w.TransactionReference, w.AdminNotes, w.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *withdrawalRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Withdrawal, error) {
	q := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanWithdrawal(row)
}

// SumHeldByUser totals the rows still reserving funds. Cancelled rows release
// their hold and are excluded.
func (r *withdrawalRepo) SumHeldByUser(ctx context.Context, tx repository.Tx, userID string) (float64, error) {
	const q = `
SELECT COALESCE(SUM(amount), 0) FROM withdrawals
 WHERE user_id = $1 AND status IN ('pending','processing','completed');`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return 0, err
	}
	var sum float64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

// UpdateStatus applies an admin transition with the state machine guarded in
// SQL: rows already in a terminal state never change, and the caller learns it
// from the affected-row count.
func (r *withdrawalRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, next model.WithdrawalStatus, processedBy string, txRef string, notes *string) (bool, error) {
	const q = `
UPDATE withdrawals
   SET status = $2,
       processed_by = $3,
       processed_at = NOW(),
       transaction_reference = COALESCE(NULLIF($4, ''), transaction_reference),
       admin_notes = COALESCE($5, admin_notes)
 WHERE id = $1
   AND status IN ('pending','processing');`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(next), processedBy, txRef, notes)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *withdrawalRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Withdrawal, error) {
	const q = `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE user_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func scanWithdrawal(row pgx.Row) (*model.Withdrawal, error) {
	w := &model.Withdrawal{}
	var userType, status string
	if err := row.Scan(&w.ID, &w.UserID, &userType, &w.Amount, &w.PaymentMethod, &w.PaymentDetails, &status, &w.ProcessedBy, &w.ProcessedAt, &w.TransactionReference, &w.AdminNotes, &w.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	w.UserType = model.UserType(userType)
	w.Status = model.WithdrawalStatus(status)
	return w, nil
}
