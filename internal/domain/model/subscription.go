package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled" // gateway disabled the subscription
	SubscriptionStatusExpired   SubscriptionStatus = "expired"   // gateway will not renew
)

// Subscription mirrors the gateway's subscription object. SubscriptionCode is
// the natural key: create events upsert by it, lifecycle events update by it.
type Subscription struct {
	ID                string // UUID
	SubscriptionCode  string // gateway code; unique
	UserID            string
	PlanCode          string
	PlanName          string
	Amount            float64 // major units
	Status            SubscriptionStatus
	NextPaymentDate   *time.Time
	AuthorizationCode string
	CancelledAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsTerminal reports whether no further status transition is allowed.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCancelled || s == SubscriptionStatusExpired
}

// CanTransitionTo enforces the lifecycle: active -> cancelled, active -> expired.
// Terminal states never regress; re-applying the current status is a no-op.
func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	if s == next {
		return false
	}
	return s == SubscriptionStatusActive
}
