package repository

import (
	"context"

	"rental-payment-ledger/internal/domain/model"
)

// SubscriptionRepository persists gateway subscription state.
type SubscriptionRepository interface {
	// Upsert inserts or replaces the subscription keyed by subscription_code.
	Upsert(ctx context.Context, tx Tx, s *model.Subscription) error

	// FindByCode returns the subscription for a gateway code or domain.ErrNotFound.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Subscription, error)

	// UpdateStatusIfActive moves an active subscription to the given status and
	// reports whether a row changed. Terminal rows are left untouched so a late
	// or duplicated lifecycle event cannot regress them.
	UpdateStatusIfActive(ctx context.Context, tx Tx, code string, status model.SubscriptionStatus) (bool, error)
}
