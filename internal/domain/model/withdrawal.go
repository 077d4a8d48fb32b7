package model

import "time"

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"
	WithdrawalStatusCancelled  WithdrawalStatus = "cancelled"
)

type UserType string

const (
	UserTypeOwner     UserType = "owner"
	UserTypeAffiliate UserType = "affiliate"
)

// Withdrawal is a payout request against a user's earned balance. It is the
// only record in this subsystem mutated in place, and only by admin action
// through the state machine below.
type Withdrawal struct {
	ID                   string // UUID
	UserID               string
	UserType             UserType
	Amount               float64
	PaymentMethod        string                 // mpesa | bank_transfer
	PaymentDetails       map[string]interface{} // account/phone details for the payout
	Status               WithdrawalStatus
	ProcessedBy          *string // admin who approved or rejected
	ProcessedAt          *time.Time
	TransactionReference string  // payout reference filled in on approval
	AdminNotes           *string // rejection reason
	CreatedAt            time.Time
}

// IsTerminal reports whether the withdrawal can no longer change state.
func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalStatusCompleted || s == WithdrawalStatusCancelled
}

// CanTransitionTo enforces pending -> {processing, completed, cancelled} and
// processing -> {completed, cancelled}.
func (s WithdrawalStatus) CanTransitionTo(next WithdrawalStatus) bool {
	switch s {
	case WithdrawalStatusPending:
		return next == WithdrawalStatusProcessing || next == WithdrawalStatusCompleted || next == WithdrawalStatusCancelled
	case WithdrawalStatusProcessing:
		return next == WithdrawalStatusCompleted || next == WithdrawalStatusCancelled
	default:
		return false
	}
}

// CountsAgainstBalance reports whether the withdrawal still reserves funds.
// Cancelled requests release their hold; everything else keeps it.
func (s WithdrawalStatus) CountsAgainstBalance() bool {
	return s == WithdrawalStatusPending || s == WithdrawalStatusProcessing || s == WithdrawalStatusCompleted
}
