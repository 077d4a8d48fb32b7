// File: internal/usecase/withdrawal_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"rental-payment-ledger/internal/domain"
	"rental-payment-ledger/internal/domain/model"
	"rental-payment-ledger/internal/domain/ports/adapter"
	"rental-payment-ledger/internal/domain/ports/repository"
	"rental-payment-ledger/internal/infra/metrics"
)

// BelowMinimumError names the configured floor so clients can correct the
// request without guessing. errors.Is(err, domain.ErrBelowMinimumWithdrawal)
// matches it.
type BelowMinimumError struct {
	Minimum float64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("minimum withdrawal amount is %.2f", e.Minimum)
}

func (e *BelowMinimumError) Is(target error) bool {
	return target == domain.ErrBelowMinimumWithdrawal
}

// InsufficientBalanceError carries the balance the check was made against.
// errors.Is(err, domain.ErrInsufficientBalance) matches it.
type InsufficientBalanceError struct {
	Available float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance, available: %.2f", e.Available)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == domain.ErrInsufficientBalance
}

// Compile-time check
var _ WithdrawalUseCase = (*withdrawalUC)(nil)

type WithdrawalUseCase interface {
	// AvailableBalance recomputes the user's spendable balance from the
	// ledger: earned (paid commissions for affiliates, successful booking
	// payments for owners) minus withdrawals still holding funds. Never
	// cached, never negative.
	AvailableBalance(ctx context.Context, userID string, userType model.UserType) (float64, error)

	// Request creates a pending withdrawal after validating the minimum and
	// the balance. The check-then-insert runs under a per-user lock and a
	// serializable transaction so two concurrent requests cannot jointly
	// overdraw the account.
	Request(ctx context.Context, userID string, userType model.UserType, amount float64, method string, details map[string]interface{}) (*model.Withdrawal, error)

	// Approve completes a withdrawal, stamping the admin and payout reference.
	Approve(ctx context.Context, id, adminID, transactionRef string) (*model.Withdrawal, error)

	// Reject cancels a withdrawal with a reason, releasing its hold on funds.
	Reject(ctx context.Context, id, adminID, reason string) (*model.Withdrawal, error)

	// History returns the user's withdrawals, newest first.
	History(ctx context.Context, userID string) ([]*model.Withdrawal, error)
}

type withdrawalUC struct {
	withdrawals repository.WithdrawalRepository
	commissions repository.CommissionRepository
	payments    repository.PaymentRepository
	tm          repository.TransactionManager
	locker      adapter.Locker
	minimum     float64
	lockTTL     time.Duration
	log         *zerolog.Logger
}

func NewWithdrawalUseCase(
	withdrawals repository.WithdrawalRepository,
	commissions repository.CommissionRepository,
	payments repository.PaymentRepository,
	tm repository.TransactionManager,
	locker adapter.Locker,
	minimum float64,
	lockTTL time.Duration,
	logger *zerolog.Logger,
) *withdrawalUC {
	compLog := logger.With().Str("component", "WithdrawalUC").Logger()
	return &withdrawalUC{
		withdrawals: withdrawals,
		commissions: commissions,
		payments:    payments,
		tm:          tm,
		locker:      locker,
		minimum:     minimum,
		lockTTL:     lockTTL,
		log:         &compLog,
	}
}

func (u *withdrawalUC) AvailableBalance(ctx context.Context, userID string, userType model.UserType) (float64, error) {
	return u.balanceInTx(ctx, nil, userID, userType)
}

// balanceInTx computes the balance against whichever executor the caller is
// in: the pool for plain queries, the serializable tx for the request path.
func (u *withdrawalUC) balanceInTx(ctx context.Context, tx repository.Tx, userID string, userType model.UserType) (float64, error) {
	if userID == "" {
		return 0, domain.ErrInvalidArgument
	}

	var earned float64
	var err error
	switch userType {
	case model.UserTypeAffiliate:
		earned, err = u.commissions.SumPaidByAffiliate(ctx, tx, userID)
	case model.UserTypeOwner:
		earned, err = u.payments.SumSuccessfulBookingPayments(ctx, tx, userID)
	default:
		return 0, domain.ErrInvalidArgument
	}
	if err != nil {
		return 0, err
	}

	held, err := u.withdrawals.SumHeldByUser(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	balance := earned - held
	if balance < 0 {
		// A negative balance means the ledger contradicts itself. Clamp for
		// the caller, but surface the signal.
		u.log.Warn().Str("user_id", userID).Float64("earned", earned).Float64("held", held).Msg("negative computed balance clamped to zero")
		metrics.IncNegativeBalanceClamp()
		balance = 0
	}
	return balance, nil
}

func (u *withdrawalUC) Request(ctx context.Context, userID string, userType model.UserType, amount float64, method string, details map[string]interface{}) (*model.Withdrawal, error) {
	if userID == "" || method == "" || amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if amount < u.minimum {
		return nil, &BelowMinimumError{Minimum: u.minimum}
	}

	// Serialize this user's requests before touching the database. The lock
	// alone closes the read-then-write race between two app instances; the
	// serializable transaction backstops it if the lock expires mid-flight.
	token, err := u.locker.TryLock(ctx, ledgerLockKey(userID), u.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = u.locker.Unlock(ctx, ledgerLockKey(userID), token) }()

	w := &model.Withdrawal{
		ID:             uuid.NewString(),
		UserID:         userID,
		UserType:       userType,
		Amount:         amount,
		PaymentMethod:  method,
		PaymentDetails: details,
		Status:         model.WithdrawalStatusPending,
		CreatedAt:      time.Now(),
	}

	txOpt := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = u.tm.WithTx(ctx, txOpt, func(ctx context.Context, tx repository.Tx) error {
		balance, err := u.balanceInTx(ctx, tx, userID, userType)
		if err != nil {
			return err
		}
		if amount > balance {
			return &InsufficientBalanceError{Available: balance}
		}
		return u.withdrawals.Insert(ctx, tx, w)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncWithdrawal(string(model.WithdrawalStatusPending))
	u.log.Info().Str("withdrawal_id", w.ID).Str("user_id", userID).Float64("amount", amount).Msg("withdrawal requested")
	return w, nil
}

func (u *withdrawalUC) Approve(ctx context.Context, id, adminID, transactionRef string) (*model.Withdrawal, error) {
	return u.transition(ctx, id, adminID, model.WithdrawalStatusCompleted, transactionRef, nil)
}

func (u *withdrawalUC) Reject(ctx context.Context, id, adminID, reason string) (*model.Withdrawal, error) {
	return u.transition(ctx, id, adminID, model.WithdrawalStatusCancelled, "", &reason)
}

func (u *withdrawalUC) transition(ctx context.Context, id, adminID string, next model.WithdrawalStatus, txRef string, notes *string) (*model.Withdrawal, error) {
	if id == "" || adminID == "" {
		return nil, domain.ErrInvalidArgument
	}

	changed, err := u.withdrawals.UpdateStatus(ctx, nil, id, next, adminID, txRef, notes)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Either the id is unknown or another admin already finalized it.
		if _, err := u.withdrawals.FindByID(ctx, nil, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrWithdrawalFinalized
	}

	metrics.IncWithdrawal(string(next))
	u.log.Info().Str("withdrawal_id", id).Str("admin_id", adminID).Str("status", string(next)).Msg("withdrawal processed")
	return u.withdrawals.FindByID(ctx, nil, id)
}

func (u *withdrawalUC) History(ctx context.Context, userID string) ([]*model.Withdrawal, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.withdrawals.ListByUser(ctx, nil, userID)
}

func ledgerLockKey(userID string) string {
	return "ledger:withdraw:" + userID
}
