package repository

import (
	"context"

	"rental-payment-ledger/internal/domain/model"
)

// CommissionRepository is the affiliate commission ledger.
type CommissionRepository interface {
	// Insert appends a commission. The store enforces uniqueness on booking_id;
	// a second insert for the same booking returns domain.ErrDuplicateCommission.
	Insert(ctx context.Context, tx Tx, c *model.AffiliateCommission) error

	// SumPaidByAffiliate totals paid commissions for the affiliate balance.
	SumPaidByAffiliate(ctx context.Context, tx Tx, affiliateID string) (float64, error)

	// ListByAffiliate returns the affiliate's commissions, newest first.
	ListByAffiliate(ctx context.Context, tx Tx, affiliateID string) ([]*model.AffiliateCommission, error)
}
