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

var _ repository.NotificationLogRepository = (*notificationLogRepo)(nil)

type notificationLogRepo struct{ pool *pgxpool.Pool }

func NewNotificationLogRepo(pool *pgxpool.Pool) *notificationLogRepo {
	return &notificationLogRepo{pool: pool}
}

func (r *notificationLogRepo) Insert(ctx context.Context, tx repository.Tx, n *model.NotificationLog) error {
	const q = `
INSERT INTO notification_log (
  id, kind, recipient, subject, body, status, attempts, last_error, created_at, sent_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`

	_, err := execSQL(ctx, r.pool, tx, q,
		n.ID, n.Kind, n.Recipient, n.Subject, n.Body, string(n.Status), n.Attempts, n.LastError, n.CreatedAt, n.SentAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *notificationLogRepo) ListPending(ctx context.Context, tx repository.Tx, limit int) ([]*model.NotificationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, kind, recipient, subject, body, status, attempts, last_error, created_at, sent_at
  FROM notification_log
 WHERE status = 'pending'
 ORDER BY created_at ASC
 LIMIT $1;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.NotificationLog
	for rows.Next() {
		n := new(model.NotificationLog)
		var status string
		if err := rows.Scan(&n.ID, &n.Kind, &n.Recipient, &n.Subject, &n.Body, &status, &n.Attempts, &n.LastError, &n.CreatedAt, &n.SentAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrReadDatabaseRow
		}
		n.Status = model.NotificationStatus(status)
		out = append(out, n)
	}
	return out, nil
}

func (r *notificationLogRepo) MarkSent(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE notification_log SET status='sent', sent_at=NOW() WHERE id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, q, id); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *notificationLogRepo) MarkAttemptFailed(ctx context.Context, tx repository.Tx, id string, cause string, maxAttempts int) error {
	const q = `
UPDATE notification_log
   SET attempts = attempts + 1,
       last_error = $2,
       status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE 'pending' END
 WHERE id = $1;`
	if _, err := execSQL(ctx, r.pool, tx, q, id, cause, maxAttempts); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
