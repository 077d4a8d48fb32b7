// File: internal/infra/web/server.go
package web

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"rental-payment-ledger/internal/config"
	"rental-payment-ledger/internal/usecase"
)

// Server exposes the ledger API: balances, withdrawal requests, admin
// approve/reject, and histories. Authentication is a static bearer key; the
// surface is internal, fronted by the platform's own backend.
type Server struct {
	cfg          *config.Config
	withdrawalUC usecase.WithdrawalUseCase
	commissionUC usecase.CommissionUseCase
	validate     *validator.Validate
	log          *zerolog.Logger
	server       *http.Server
}

func NewServer(cfg *config.Config, withdrawalUC usecase.WithdrawalUseCase, commissionUC usecase.CommissionUseCase, logger *zerolog.Logger) *Server {
	compLog := logger.With().Str("component", "LedgerAPI").Logger()
	return &Server{
		cfg:          cfg,
		withdrawalUC: withdrawalUC,
		commissionUC: commissionUC,
		validate:     validator.New(),
		log:          &compLog,
	}
}

// Router is exported so tests can drive the handlers without a listener.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/balance", s.handleBalance)
		r.Get("/commissions", s.handleCommissionHistory)
		r.Route("/withdrawals", func(r chi.Router) {
			r.Post("/", s.handleRequestWithdrawal)
			r.Get("/", s.handleWithdrawalHistory)
			r.Post("/{id}/approve", s.handleApproveWithdrawal)
			r.Post("/{id}/reject", s.handleRejectWithdrawal)
		})
	})
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Admin.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Admin.Port).Msg("ledger API listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := s.cfg.Admin.APIKey
		if key == "" {
			// Refusing everything beats an open admin surface.
			s.log.Error().Msg("admin api_key not configured; rejecting request")
			writeError(w, http.StatusInternalServerError, "api authentication unavailable")
			return
		}
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
