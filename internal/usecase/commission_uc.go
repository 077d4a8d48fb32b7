// File: internal/usecase/commission_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"rental-payment-ledger/internal/domain"
	"rental-payment-ledger/internal/domain/model"
	"rental-payment-ledger/internal/domain/ports/adapter"
	"rental-payment-ledger/internal/domain/ports/repository"
	"rental-payment-ledger/internal/infra/metrics"
)

// Compile-time check
var _ CommissionUseCase = (*commissionUC)(nil)

type CommissionUseCase interface {
	// Calculate derives the affiliate commission for a paid booking. Returns
	// (nil, nil) when the renter was not referred, and
	// domain.ErrDuplicateCommission when the booking is already commissioned.
	// The configured rate is snapshotted into the record; later rate changes
	// never rewrite history.
	Calculate(ctx context.Context, bookingID string) (*model.AffiliateCommission, error)

	// History returns the affiliate's commissions, newest first.
	History(ctx context.Context, affiliateID string) ([]*model.AffiliateCommission, error)
}

type commissionUC struct {
	commissions repository.CommissionRepository
	bookings    repository.BookingRepository
	profiles    repository.UserProfileRepository
	settings    adapter.SettingsProvider
	log         *zerolog.Logger
}

func NewCommissionUseCase(
	commissions repository.CommissionRepository,
	bookings repository.BookingRepository,
	profiles repository.UserProfileRepository,
	settings adapter.SettingsProvider,
	logger *zerolog.Logger,
) *commissionUC {
	compLog := logger.With().Str("component", "CommissionUC").Logger()
	return &commissionUC{
		commissions: commissions,
		bookings:    bookings,
		profiles:    profiles,
		settings:    settings,
		log:         &compLog,
	}
}

func (u *commissionUC) Calculate(ctx context.Context, bookingID string) (*model.AffiliateCommission, error) {
	if bookingID == "" {
		return nil, domain.ErrInvalidArgument
	}

	booking, err := u.bookings.FindByID(ctx, nil, bookingID)
	if err != nil {
		return nil, err
	}

	referrer, err := u.profiles.ReferrerOf(ctx, nil, booking.RenterID)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		metrics.IncCommission("no_referral")
		return nil, nil
	}

	// Rate in effect right now, frozen into the record.
	rate := u.settings.CommissionRate(ctx)
	now := time.Now()
	c := &model.AffiliateCommission{
		ID:             ulid.Make().String(),
		AffiliateID:    *referrer,
		BookingID:      booking.ID,
		ReferralUserID: booking.RenterID,
		Amount:         booking.Subtotal * rate / 100,
		CommissionRate: rate,
		Status:         model.CommissionStatusPaid,
		PaidAt:         &now,
		CreatedAt:      now,
	}

	if err := u.commissions.Insert(ctx, nil, c); err != nil {
		if errors.Is(err, domain.ErrDuplicateCommission) {
			metrics.IncCommission("duplicate")
		}
		return nil, err
	}
	metrics.IncCommission("created")
	return c, nil
}

func (u *commissionUC) History(ctx context.Context, affiliateID string) ([]*model.AffiliateCommission, error) {
	if affiliateID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.commissions.ListByAffiliate(ctx, nil, affiliateID)
}
