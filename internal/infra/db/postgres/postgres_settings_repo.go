package postgres

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"rental-payment-ledger/internal/domain/ports/adapter"
)

var _ adapter.SettingsProvider = (*settingsRepo)(nil)

// Setting keys in admin_settings, with their env fallbacks.
const (
	settingGatewaySecretKey = "paystack_secret_key"
	settingGatewayPublicKey = "paystack_public_key"
	settingCommissionRate   = "affiliate_commission_rate"

	envGatewaySecretKey = "PAYSTACK_SECRET_KEY"
	envGatewayPublicKey = "PAYSTACK_PUBLIC_KEY"
	envCommissionRate   = "AFFILIATE_COMMISSION_RATE"

	defaultCommissionRate = 10
)

// settingsRepo reads operator-editable settings from admin_settings, falling
// back to environment variables when a key is absent or empty. No caching:
// a rotated gateway secret takes effect on the next webhook delivery.
type settingsRepo struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

func NewSettingsRepo(pool *pgxpool.Pool, logger *zerolog.Logger) *settingsRepo {
	compLog := logger.With().Str("component", "SettingsRepo").Logger()
	return &settingsRepo{pool: pool, log: &compLog}
}

func (r *settingsRepo) Get(ctx context.Context, key, envFallback string) string {
	const q = `SELECT value FROM admin_settings WHERE key=$1;`
	var value string
	err := r.pool.QueryRow(ctx, q, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.log.Error().Err(err).Str("key", key).Msg("settings lookup failed; using env fallback")
		}
		return os.Getenv(envFallback)
	}
	if value == "" {
		return os.Getenv(envFallback)
	}
	return value
}

func (r *settingsRepo) GatewaySecretKey(ctx context.Context) string {
	return r.Get(ctx, settingGatewaySecretKey, envGatewaySecretKey)
}

func (r *settingsRepo) GatewayPublicKey(ctx context.Context) string {
	return r.Get(ctx, settingGatewayPublicKey, envGatewayPublicKey)
}

func (r *settingsRepo) CommissionRate(ctx context.Context) float64 {
	raw := r.Get(ctx, settingCommissionRate, envCommissionRate)
	if raw == "" {
		return defaultCommissionRate
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate <= 0 {
		r.log.Warn().Str("value", raw).Msg("unparseable commission rate; using default")
		return defaultCommissionRate
	}
	return rate
}
