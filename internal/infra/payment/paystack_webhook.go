package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SignatureHeader carries the hex HMAC-SHA512 of the raw request body.
const SignatureHeader = "X-Gateway-Signature"

// VerifyWebhookSignature checks the gateway signature over the raw, unparsed
// body. Parsing before verifying would open a bypass if the JSON decoder
// normalizes the payload differently than the signer, so callers must pass the
// exact bytes read off the wire. Comparison is constant-time.
func VerifyWebhookSignature(secret string, rawBody []byte, signature string) bool {
	if secret == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignBody computes the signature the gateway would send for rawBody.
// Exported for tests and local replay tooling.
func SignBody(secret string, rawBody []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// Gateway event types this subsystem understands.
const (
	EventChargeSuccess        = "charge.success"
	EventSubscriptionCreate   = "subscription.create"
	EventSubscriptionDisable  = "subscription.disable"
	EventSubscriptionNotRenew = "subscription.not_renew"
	EventInvoiceCreate        = "invoice.create"
	EventInvoiceUpdate        = "invoice.update"
)

// Event is the gateway's webhook envelope: a type string plus a data object
// whose shape depends on the type.
type Event struct {
	Type string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// ParseEvent decodes the envelope. The data object is left raw; handlers
// decode it into the shape their event type expects.
func ParseEvent(rawBody []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook envelope: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("webhook envelope missing event type")
	}
	return &ev, nil
}

// Customer identifies the payer on charge and subscription events.
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ChargeData is the payload of a charge.success event. Amount arrives in the
// gateway's minor unit (e.g. kobo/cents) and is divided by 100 at the
// recording boundary.
type ChargeData struct {
	Reference string                 `json:"reference"`
	Amount    int64                  `json:"amount"`
	Currency  string                 `json:"currency"`
	Channel   string                 `json:"channel"`
	PaidAt    string                 `json:"paid_at"` // RFC3339; may be empty
	Customer  Customer               `json:"customer"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// SubscriptionData is the payload of subscription.* lifecycle events.
type SubscriptionData struct {
	SubscriptionCode string   `json:"subscription_code"`
	Customer         Customer `json:"customer"`
	Plan             struct {
		PlanCode string `json:"plan_code"`
		Name     string `json:"name"`
		Amount   int64  `json:"amount"` // minor units
	} `json:"plan"`
	NextPaymentDate string `json:"next_payment_date"`
	Authorization   struct {
		AuthorizationCode string `json:"authorization_code"`
	} `json:"authorization"`
}

// DecodeCharge decodes the event data as a charge payload.
func (e *Event) DecodeCharge() (*ChargeData, error) {
	var d ChargeData
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return nil, fmt.Errorf("decode charge data: %w", err)
	}
	if d.Reference == "" {
		return nil, fmt.Errorf("charge data missing reference")
	}
	return &d, nil
}

// DecodeSubscription decodes the event data as a subscription payload.
func (e *Event) DecodeSubscription() (*SubscriptionData, error) {
	var d SubscriptionData
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return nil, fmt.Errorf("decode subscription data: %w", err)
	}
	if d.SubscriptionCode == "" {
		return nil, fmt.Errorf("subscription data missing subscription_code")
	}
	return &d, nil
}
