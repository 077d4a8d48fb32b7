// File: internal/infra/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"rental-payment-ledger/internal/config"
	"rental-payment-ledger/internal/domain"
	"rental-payment-ledger/internal/domain/ports/adapter"
	"rental-payment-ledger/internal/infra/logging"
	"rental-payment-ledger/internal/infra/metrics"
	"rental-payment-ledger/internal/infra/payment"
	"rental-payment-ledger/internal/usecase"
)

const maxWebhookBody = 1 << 20 // gateway payloads are small; anything bigger is garbage

// Server receives gateway webhooks. It verifies, decodes, dispatches, and maps
// outcomes to status codes the gateway understands: 2xx acknowledges, 5xx asks
// for redelivery.
type Server struct {
	cfg       *config.Config
	paymentUC usecase.PaymentUseCase
	settings  adapter.SettingsProvider
	log       *zerolog.Logger
	server    *http.Server
}

func NewServer(cfg *config.Config, paymentUC usecase.PaymentUseCase, settings adapter.SettingsProvider, logger *zerolog.Logger) *Server {
	compLog := logger.With().Str("component", "WebhookServer").Logger()
	return &Server{
		cfg:       cfg,
		paymentUC: paymentUC,
		settings:  settings,
		log:       &compLog,
	}
}

// Router is exported so tests can drive the handler without a listener.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Post("/api/webhooks/paystack", s.handleGatewayWebhook)
	r.Get("/health", s.handleHealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Server.Port).Msg("webhook server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) handleGatewayWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithTraceID(r.Context(), uuid.NewString())

	rawBody, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	// The secret lives in settings so it can rotate without a deploy. Missing
	// secret is our misconfiguration, not the caller's: 500, never a silent
	// accept.
	secret := s.settings.GatewaySecretKey(ctx)
	if secret == "" {
		logging.With(ctx, s.log).Error().Msg("gateway secret not configured; rejecting webhook")
		http.Error(w, "webhook verification unavailable", http.StatusInternalServerError)
		return
	}

	signature := r.Header.Get(payment.SignatureHeader)
	if !payment.VerifyWebhookSignature(secret, rawBody, signature) {
		metrics.IncSignatureFailure()
		logging.With(ctx, s.log).Warn().Msg("webhook signature verification failed")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	ev, err := payment.ParseEvent(rawBody)
	if err != nil {
		// Authenticated but unparseable. Redelivery of the same bytes cannot
		// succeed, so acknowledge and keep the evidence in the logs.
		metrics.IncWebhookEvent("malformed", "ignored")
		logging.With(ctx, s.log).Warn().Err(err).Msg("malformed webhook payload acknowledged")
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx = logging.WithEventType(ctx, ev.Type)

	if err := s.dispatch(ctx, ev); err != nil {
		metrics.IncWebhookEvent(ev.Type, "failed")
		logging.With(ctx, s.log).Error().Err(err).Msg("webhook processing failed; requesting redelivery")
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}

	metrics.IncWebhookEvent(ev.Type, "processed")
	w.WriteHeader(http.StatusOK)
}

// dispatch routes a verified event. A nil return acknowledges the delivery;
// any error asks the gateway to try again.
func (s *Server) dispatch(ctx context.Context, ev *payment.Event) error {
	switch ev.Type {
	case payment.EventChargeSuccess:
		return s.processCharge(ctx, ev)

	case payment.EventSubscriptionCreate:
		return s.processSubscriptionCreate(ctx, ev)

	case payment.EventSubscriptionDisable:
		return s.processSubscriptionStatus(ctx, ev, s.paymentUC.CancelSubscription)

	case payment.EventSubscriptionNotRenew:
		return s.processSubscriptionStatus(ctx, ev, s.paymentUC.ExpireSubscription)

	case payment.EventInvoiceCreate, payment.EventInvoiceUpdate:
		// Ack-only: invoices carry no state this ledger tracks.
		logging.With(ctx, s.log).Debug().Msg("invoice event acknowledged")
		return nil

	default:
		logging.With(ctx, s.log).Info().Str("event", ev.Type).Msg("unhandled webhook event acknowledged")
		return nil
	}
}

func (s *Server) processCharge(ctx context.Context, ev *payment.Event) error {
	data, err := ev.DecodeCharge()
	if err != nil {
		logging.With(ctx, s.log).Warn().Err(err).Msg("undecodable charge payload acknowledged")
		return nil
	}
	ctx = logging.WithEventRef(ctx, data.Reference)

	var paidAt *time.Time
	if data.PaidAt != "" {
		if t, err := time.Parse(time.RFC3339, data.PaidAt); err == nil {
			paidAt = &t
		}
	}

	_, err = s.paymentUC.RecordCharge(ctx, usecase.ChargeEvent{
		Reference:     data.Reference,
		Amount:        data.Amount,
		Currency:      data.Currency,
		Channel:       data.Channel,
		CustomerEmail: data.Customer.Email,
		CustomerName:  customerName(data.Customer),
		PaidAt:        paidAt,
		Meta:          data.Metadata,
	})
	return err
}

func (s *Server) processSubscriptionCreate(ctx context.Context, ev *payment.Event) error {
	data, err := ev.DecodeSubscription()
	if err != nil {
		logging.With(ctx, s.log).Warn().Err(err).Msg("undecodable subscription payload acknowledged")
		return nil
	}
	ctx = logging.WithEventRef(ctx, data.SubscriptionCode)

	var nextPayment *time.Time
	if data.NextPaymentDate != "" {
		if t, err := time.Parse(time.RFC3339, data.NextPaymentDate); err == nil {
			nextPayment = &t
		}
	}

	_, err = s.paymentUC.RecordSubscriptionCreate(ctx, usecase.SubscriptionEvent{
		Code:              data.SubscriptionCode,
		CustomerEmail:     data.Customer.Email,
		PlanCode:          data.Plan.PlanCode,
		PlanName:          data.Plan.Name,
		Amount:            data.Plan.Amount,
		NextPaymentDate:   nextPayment,
		AuthorizationCode: data.Authorization.AuthorizationCode,
	})
	return err
}

func (s *Server) processSubscriptionStatus(ctx context.Context, ev *payment.Event, apply func(context.Context, string) error) error {
	data, err := ev.DecodeSubscription()
	if err != nil {
		logging.With(ctx, s.log).Warn().Err(err).Msg("undecodable subscription payload acknowledged")
		return nil
	}
	ctx = logging.WithEventRef(ctx, data.SubscriptionCode)

	if err := apply(ctx, data.SubscriptionCode); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Nothing to update for an unknown code; redelivery will not help.
			logging.With(ctx, s.log).Warn().Msg("subscription event for unknown code acknowledged")
			return nil
		}
		return err
	}
	return nil
}

func customerName(c payment.Customer) string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}
