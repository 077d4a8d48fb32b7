package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"rental-payment-ledger/internal/domain"
	"rental-payment-ledger/internal/domain/ports/repository"
)

var _ repository.UserProfileRepository = (*userProfileRepo)(nil)

// userProfileRepo is a read-only window into user_profiles: the email lookup
// that attributes charges and the referred_by edge that drives commissions.
type userProfileRepo struct{ pool *pgxpool.Pool }

func NewUserProfileRepo(pool *pgxpool.Pool) *userProfileRepo {
	return &userProfileRepo{pool: pool}
}

func (r *userProfileRepo) FindIDByEmail(ctx context.Context, tx repository.Tx, email string) (string, error) {
	const q = `SELECT id FROM user_profiles WHERE lower(email)=lower($1) LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, email)
	if err != nil {
		return "", err
	}
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", domain.ErrReadDatabaseRow
	}
	return id, nil
}

func (r *userProfileRepo) ReferrerOf(ctx context.Context, tx repository.Tx, userID string) (*string, error) {
	const q = `SELECT referred_by FROM user_profiles WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	var referrer *string
	if err := row.Scan(&referrer); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return referrer, nil
}
