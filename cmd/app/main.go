// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental-payment-ledger/internal/config"
	"rental-payment-ledger/internal/domain/ports/adapter"
	"rental-payment-ledger/internal/infra/adapters/notify"
	pg "rental-payment-ledger/internal/infra/db/postgres"
	webhook "rental-payment-ledger/internal/infra/http"
	"rental-payment-ledger/internal/infra/logging"
	"rental-payment-ledger/internal/infra/metrics"
	red "rental-payment-ledger/internal/infra/redis"
	"rental-payment-ledger/internal/infra/sched"
	"rental-payment-ledger/internal/infra/web"
	"rental-payment-ledger/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted PII)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	subscriptionRepo := pg.NewSubscriptionRepo(pool)
	bookingRepo := pg.NewBookingRepo(pool)
	profileRepo := pg.NewUserProfileRepo(pool)
	commissionRepo := pg.NewCommissionRepo(pool)
	withdrawalRepo := pg.NewWithdrawalRepo(pool)
	outboxRepo := pg.NewNotificationLogRepo(pool)
	settings := pg.NewSettingsRepo(pool, logger)

	// ---- Notifier ----
	var notifier adapter.Notifier
	if cfg.Notifier.Endpoint != "" {
		notifier, err = notify.NewHTTPNotifier(cfg.Notifier.Endpoint, cfg.Notifier.APIKey, cfg.Notifier.From)
		if err != nil {
			logger.Fatal().Err(err).Msg("notifier setup failed")
		}
	} else {
		logger.Warn().Msg("notifier.endpoint not set; receipts will not leave the outbox")
		notifier = notify.NewNoopNotifier()
	}

	// ---- Use cases ----
	notificationUC := usecase.NewNotificationUseCase(outboxRepo, notifier, logger)
	commissionUC := usecase.NewCommissionUseCase(commissionRepo, bookingRepo, profileRepo, settings, logger)
	paymentUC := usecase.NewPaymentUseCase(paymentRepo, subscriptionRepo, bookingRepo, profileRepo, commissionUC, notificationUC, cfg.Ledger.Currency, logger)
	withdrawalUC := usecase.NewWithdrawalUseCase(withdrawalRepo, commissionRepo, paymentRepo, txManager, locker, cfg.Ledger.MinimumWithdrawal, cfg.Redis.LockTTL, logger)

	metrics.MustRegister()

	// ---- Webhook server (plus /health and /metrics) ----
	webhookSrv := webhook.NewServer(cfg, paymentUC, settings, logger)
	go func() {
		if err := webhookSrv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("webhook server stopped")
		}
	}()

	// ---- Ledger API ----
	apiSrv := web.NewServer(cfg, withdrawalUC, commissionUC, logger)
	go func() {
		if err := apiSrv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ledger API stopped")
		}
	}()

	// ---- Outbox worker ----
	worker := sched.NewOutboxWorker(cfg.Notifier.Interval, notificationUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := webhookSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("webhook server shutdown failed")
	}
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("ledger API shutdown failed")
	}
}
