// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rental-payment-ledger/internal/domain"
	"rental-payment-ledger/internal/domain/model"
	"rental-payment-ledger/internal/domain/ports/repository"
	"rental-payment-ledger/internal/infra/metrics"
)

// ChargeEvent is the decoded, transport-agnostic form of a charge.success
// delivery. Amount is still in the gateway's minor unit.
type ChargeEvent struct {
	Reference     string
	Amount        int64
	Currency      string
	Channel       string
	CustomerEmail string
	CustomerName  string
	PaidAt        *time.Time
	Meta          map[string]interface{}
}

// SubscriptionEvent is the decoded form of a subscription.create delivery.
type SubscriptionEvent struct {
	Code              string
	CustomerEmail     string
	PlanCode          string
	PlanName          string
	Amount            int64 // minor units
	NextPaymentDate   *time.Time
	AuthorizationCode string
}

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type PaymentUseCase interface {
	// RecordCharge durably records a successful charge and propagates its
	// effects (booking mark-paid, commission, receipt). Only the payment write
	// itself is fatal; every secondary effect is best-effort so financial
	// truth is never lost to a downstream failure.
	RecordCharge(ctx context.Context, ev ChargeEvent) (*model.Payment, error)

	// RecordSubscriptionCreate upserts the subscription by its gateway code.
	// Unlike charges, a subscription without an owner is a hard failure.
	RecordSubscriptionCreate(ctx context.Context, ev SubscriptionEvent) (*model.Subscription, error)

	// CancelSubscription and ExpireSubscription apply lifecycle events by
	// code. An unknown code returns domain.ErrNotFound; a subscription already
	// in a terminal state is left untouched.
	CancelSubscription(ctx context.Context, code string) error
	ExpireSubscription(ctx context.Context, code string) error
}

type paymentUC struct {
	payments        repository.PaymentRepository
	subscriptions   repository.SubscriptionRepository
	bookings        repository.BookingRepository
	profiles        repository.UserProfileRepository
	commissionUC    CommissionUseCase
	notificationUC  NotificationUseCase
	defaultCurrency string
	log             *zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	subscriptions repository.SubscriptionRepository,
	bookings repository.BookingRepository,
	profiles repository.UserProfileRepository,
	commissionUC CommissionUseCase,
	notificationUC NotificationUseCase,
	defaultCurrency string,
	logger *zerolog.Logger,
) *paymentUC {
	compLog := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{
		payments:        payments,
		subscriptions:   subscriptions,
		bookings:        bookings,
		profiles:        profiles,
		commissionUC:    commissionUC,
		notificationUC:  notificationUC,
		defaultCurrency: defaultCurrency,
		log:             &compLog,
	}
}

func (u *paymentUC) RecordCharge(ctx context.Context, ev ChargeEvent) (*model.Payment, error) {
	if ev.Reference == "" {
		return nil, domain.ErrInvalidArgument
	}

	// Step 1: attribute the charge to a profile. A miss is not fatal; the
	// money is real and auditable either way.
	var userID *string
	if id, err := u.profiles.FindIDByEmail(ctx, nil, ev.CustomerEmail); err == nil {
		userID = &id
	} else if !errors.Is(err, domain.ErrNotFound) {
		u.log.Warn().Err(err).Str("reference", ev.Reference).Msg("profile lookup failed; recording unattributed payment")
	}

	now := time.Now()
	paidAt := ev.PaidAt
	if paidAt == nil {
		paidAt = &now
	}
	currency := ev.Currency
	if currency == "" {
		currency = u.defaultCurrency
	}

	p := &model.Payment{
		ID:            uuid.NewString(),
		Reference:     ev.Reference,
		UserID:        userID,
		Amount:        float64(ev.Amount) / 100, // minor units -> major
		Currency:      currency,
		Status:        model.PaymentStatusSuccess,
		PaymentMethod: ev.Channel,
		CustomerEmail: ev.CustomerEmail,
		Meta:          ev.Meta,
		PaidAt:        paidAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if ev.CustomerName != "" {
		p.CustomerName = &ev.CustomerName
	}
	if bookingID, ok := model.BookingIDFromMeta(ev.Meta); ok {
		p.BookingID = &bookingID
	}
	if subID, ok := ev.Meta["subscription_id"].(string); ok && subID != "" {
		p.SubscriptionID = &subID
	}

	// Step 2: the one fatal write. Upsert by reference makes redelivery
	// converge on a single row.
	if err := u.payments.Upsert(ctx, nil, p); err != nil {
		return nil, err
	}
	metrics.IncPayment(string(p.Status))
	metrics.AddPaymentRevenue(p.Currency, p.Amount)

	// Receipt goes through the outbox; a full outbox table is the only way
	// this can fail and the payment stands regardless.
	if err := u.notificationUC.EnqueueReceipt(ctx, p); err != nil {
		u.log.Warn().Err(err).Str("reference", p.Reference).Msg("failed to enqueue payment receipt")
	}

	// Step 3: booking side effects.
	if p.BookingID != nil {
		u.applyBookingEffects(ctx, p)
	}

	// Step 4: subscription-funded charges are handled separately from
	// bookings; a charge funds one or the other.
	if plan, ok := model.SubscriptionPlanFromMeta(ev.Meta); ok {
		u.log.Debug().Str("reference", p.Reference).Str("plan", plan).Msg("charge funds a subscription plan")
	}

	return p, nil
}

// applyBookingEffects marks the booking paid and derives the affiliate
// commission. Failures are logged, never propagated: the payment row is
// already durable and the gateway must not redeliver on our account.
func (u *paymentUC) applyBookingEffects(ctx context.Context, p *model.Payment) {
	bookingID := *p.BookingID
	marked, err := u.bookings.MarkPaid(ctx, nil, bookingID, p.Reference, p.Amount)
	if err != nil {
		u.log.Error().Err(err).Str("booking_id", bookingID).Str("reference", p.Reference).Msg("failed to mark booking paid")
		return
	}
	if marked {
		u.log.Info().Str("booking_id", bookingID).Str("reference", p.Reference).Msg("booking payment confirmed")
	}

	// Run the commission derivation even when the booking was already paid:
	// the ledger's uniqueness on booking_id makes this convergent under
	// redelivery, and it backfills a commission lost to an earlier crash.
	commission, err := u.commissionUC.Calculate(ctx, bookingID)
	switch {
	case err == nil && commission != nil:
		u.log.Info().Str("booking_id", bookingID).Str("affiliate_id", commission.AffiliateID).Float64("amount", commission.Amount).Msg("commission created")
	case err == nil:
		u.log.Debug().Str("booking_id", bookingID).Msg("no referral; no commission")
	case errors.Is(err, domain.ErrDuplicateCommission):
		u.log.Debug().Str("booking_id", bookingID).Msg("commission already recorded")
	default:
		u.log.Error().Err(err).Str("booking_id", bookingID).Msg("commission calculation failed")
	}
}

func (u *paymentUC) RecordSubscriptionCreate(ctx context.Context, ev SubscriptionEvent) (*model.Subscription, error) {
	if ev.Code == "" {
		return nil, domain.ErrInvalidArgument
	}
	userID, err := u.profiles.FindIDByEmail(ctx, nil, ev.CustomerEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now()
	s := &model.Subscription{
		ID:                uuid.NewString(),
		SubscriptionCode:  ev.Code,
		UserID:            userID,
		PlanCode:          ev.PlanCode,
		PlanName:          ev.PlanName,
		Amount:            float64(ev.Amount) / 100,
		Status:            model.SubscriptionStatusActive,
		NextPaymentDate:   ev.NextPaymentDate,
		AuthorizationCode: ev.AuthorizationCode,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := u.subscriptions.Upsert(ctx, nil, s); err != nil {
		return nil, err
	}
	u.log.Info().Str("subscription_code", s.SubscriptionCode).Str("user_id", userID).Msg("subscription recorded")
	return s, nil
}

func (u *paymentUC) CancelSubscription(ctx context.Context, code string) error {
	return u.transitionSubscription(ctx, code, model.SubscriptionStatusCancelled)
}

func (u *paymentUC) ExpireSubscription(ctx context.Context, code string) error {
	return u.transitionSubscription(ctx, code, model.SubscriptionStatusExpired)
}

func (u *paymentUC) transitionSubscription(ctx context.Context, code string, status model.SubscriptionStatus) error {
	if code == "" {
		return domain.ErrInvalidArgument
	}
	changed, err := u.subscriptions.UpdateStatusIfActive(ctx, nil, code, status)
	if err != nil {
		return err
	}
	if changed {
		u.log.Info().Str("subscription_code", code).Str("status", string(status)).Msg("subscription status updated")
		return nil
	}
	// Nothing moved: either the code is unknown or the subscription is
	// already terminal. Distinguish so the dispatcher can log the right thing.
	if _, err := u.subscriptions.FindByCode(ctx, nil, code); err != nil {
		return err // domain.ErrNotFound for unknown codes
	}
	u.log.Debug().Str("subscription_code", code).Str("status", string(status)).Msg("subscription already terminal; event ignored")
	return nil
}
