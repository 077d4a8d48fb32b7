package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid transaction execution context")

	// Webhook verification
	ErrInvalidSignature    = errors.New("webhook signature mismatch")
	ErrSecretNotConfigured = errors.New("gateway secret key is not configured")

	// Ledger / withdrawals
	ErrUserNotFound           = errors.New("no user profile for customer email")
	ErrDuplicateCommission    = errors.New("booking already has a commission")
	ErrBelowMinimumWithdrawal = errors.New("withdrawal amount below configured minimum")
	ErrInsufficientBalance    = errors.New("withdrawal amount exceeds available balance")
	ErrWithdrawalFinalized    = errors.New("withdrawal is already in a terminal state")
	ErrLockUnavailable        = errors.New("could not acquire ledger lock")
)
