package adapter

import "context"

// SettingsProvider exposes operator-editable configuration stored outside the
// deployed binary (gateway keys, commission rate). Implementations fall back
// to environment variables when the stored value is absent or empty, so key
// rotation never requires a redeploy.
type SettingsProvider interface {
	// Get returns the stored value for key, or envFallback when missing/empty.
	Get(ctx context.Context, key, envFallback string) string

	// GatewaySecretKey returns the webhook signing secret. Empty means the
	// deployment is misconfigured and verification must fail closed.
	GatewaySecretKey(ctx context.Context) string

	// GatewayPublicKey returns the client-side key (exposed to checkout pages).
	GatewayPublicKey(ctx context.Context) string

	// CommissionRate returns the affiliate commission percentage.
	// Unset or unparseable values default to 10.
	CommissionRate(ctx context.Context) float64
}
