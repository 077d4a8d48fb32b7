package model

import "time"

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success" // gateway confirmed the charge
	PaymentStatusPending PaymentStatus = "pending" // awaiting gateway confirmation
	PaymentStatusFailed  PaymentStatus = "failed"  // gateway reported failure
)

// Payment is the durable record of a gateway charge. Reference is the
// gateway's unique charge identifier and the idempotency key for redelivery:
// saving the same reference twice replaces the row instead of duplicating it.
type Payment struct {
	ID             string  // UUID
	Reference      string  // gateway reference; globally unique
	UserID         *string // resolved from customer email; nil if no profile matched
	BookingID      *string // set when the charge funds a booking
	SubscriptionID *string // set when the charge funds a subscription
	Amount         float64 // major units; gateway delivers minor units (/100 at the boundary)
	Currency       string
	Status         PaymentStatus
	PaymentMethod  string // gateway channel (card, mobile_money, ...)
	CustomerEmail  string
	CustomerName   *string
	Meta           map[string]interface{} // gateway metadata (serialized as JSONB)
	PaidAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Meta keys the gateway uses to tie a charge to what it funds.
const (
	MetaKeyBookingID        = "booking_id"
	MetaKeySubscriptionPlan = "subscription_plan"
)

// BookingIDFromMeta extracts the booking reference from charge metadata.
func BookingIDFromMeta(meta map[string]interface{}) (string, bool) {
	if meta == nil {
		return "", false
	}
	v, ok := meta[MetaKeyBookingID].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SubscriptionPlanFromMeta extracts the plan code from charge metadata.
func SubscriptionPlanFromMeta(meta map[string]interface{}) (string, bool) {
	if meta == nil {
		return "", false
	}
	v, ok := meta[MetaKeySubscriptionPlan].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
