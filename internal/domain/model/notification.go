package model

import "time"

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed" // gave up after max attempts
)

const (
	NotificationKindPaymentReceipt = "payment_receipt"
)

// NotificationLog is an outbox row. Financial writes enqueue a pending row in
// the same request; a background worker delivers it at least once. A delivery
// failure never touches the payment record that caused it.
type NotificationLog struct {
	ID        string // ULID
	Kind      string
	Recipient string
	Subject   string
	Body      string
	Status    NotificationStatus
	Attempts  int
	LastError *string
	CreatedAt time.Time
	SentAt    *time.Time
}
