package model

import "time"

type CommissionStatus string

const (
	// Commissions are realized the moment the booking payment lands, so the
	// initial status is already "paid". "reversed" is reserved for a future
	// refund clawback flow.
	CommissionStatusPaid     CommissionStatus = "paid"
	CommissionStatusReversed CommissionStatus = "reversed"
)

// AffiliateCommission is an append-only ledger entry crediting an affiliate
// for a referred booking. At most one commission exists per booking; the rate
// is snapshotted at calculation time so later rate changes never rewrite
// historical amounts.
type AffiliateCommission struct {
	ID             string // ULID, sortable by creation time
	AffiliateID    string
	BookingID      string // unique in the ledger
	ReferralUserID string // the referred payer
	Amount         float64
	CommissionRate float64 // percentage in effect when the commission was computed
	Status         CommissionStatus
	PaidAt         *time.Time
	CreatedAt      time.Time
}
