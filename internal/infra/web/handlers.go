// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rental-payment-ledger/internal/domain"
	"rental-payment-ledger/internal/domain/model"
	"rental-payment-ledger/internal/usecase"
)

type balanceResponse struct {
	UserID    string  `json:"user_id"`
	UserType  string  `json:"user_type"`
	Available float64 `json:"available"`
}

type withdrawalRequest struct {
	UserID         string                 `json:"user_id" validate:"required"`
	UserType       string                 `json:"user_type" validate:"required,oneof=owner affiliate"`
	Amount         float64                `json:"amount" validate:"required,gt=0"`
	PaymentMethod  string                 `json:"payment_method" validate:"required,oneof=mpesa bank_transfer"`
	PaymentDetails map[string]interface{} `json:"payment_details"`
}

type processRequest struct {
	AdminID              string `json:"admin_id" validate:"required"`
	TransactionReference string `json:"transaction_reference"`
	Reason               string `json:"reason"`
}

type withdrawalResponse struct {
	ID                   string                 `json:"id"`
	UserID               string                 `json:"user_id"`
	UserType             string                 `json:"user_type"`
	Amount               float64                `json:"amount"`
	PaymentMethod        string                 `json:"payment_method"`
	PaymentDetails       map[string]interface{} `json:"payment_details,omitempty"`
	Status               string                 `json:"status"`
	ProcessedBy          *string                `json:"processed_by,omitempty"`
	ProcessedAt          *time.Time             `json:"processed_at,omitempty"`
	TransactionReference string                 `json:"transaction_reference,omitempty"`
	AdminNotes           *string                `json:"admin_notes,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
}

type commissionResponse struct {
	ID             string     `json:"id"`
	AffiliateID    string     `json:"affiliate_id"`
	BookingID      string     `json:"booking_id"`
	ReferralUserID string     `json:"referral_user_id"`
	Amount         float64    `json:"amount"`
	CommissionRate float64    `json:"commission_rate"`
	Status         string     `json:"status"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toWithdrawalResponse(w *model.Withdrawal) withdrawalResponse {
	return withdrawalResponse{
		ID:                   w.ID,
		UserID:               w.UserID,
		UserType:             string(w.UserType),
		Amount:               w.Amount,
		PaymentMethod:        w.PaymentMethod,
		PaymentDetails:       w.PaymentDetails,
		Status:               string(w.Status),
		ProcessedBy:          w.ProcessedBy,
		ProcessedAt:          w.ProcessedAt,
		TransactionReference: w.TransactionReference,
		AdminNotes:           w.AdminNotes,
		CreatedAt:            w.CreatedAt,
	}
}

func toCommissionResponse(c *model.AffiliateCommission) commissionResponse {
	return commissionResponse{
		ID:             c.ID,
		AffiliateID:    c.AffiliateID,
		BookingID:      c.BookingID,
		ReferralUserID: c.ReferralUserID,
		Amount:         c.Amount,
		CommissionRate: c.CommissionRate,
		Status:         string(c.Status),
		PaidAt:         c.PaidAt,
		CreatedAt:      c.CreatedAt,
	}
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	userType := model.UserType(r.URL.Query().Get("user_type"))
	if userID == "" || (userType != model.UserTypeOwner && userType != model.UserTypeAffiliate) {
		writeError(w, http.StatusUnprocessableEntity, "user_id and user_type (owner|affiliate) are required")
		return
	}

	balance, err := s.withdrawalUC.AvailableBalance(r.Context(), userID, userType)
	if err != nil {
		s.writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{UserID: userID, UserType: string(userType), Available: balance})
}

func (s *Server) handleRequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	wd, err := s.withdrawalUC.Request(r.Context(), req.UserID, model.UserType(req.UserType), req.Amount, req.PaymentMethod, req.PaymentDetails)
	if err != nil {
		s.writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWithdrawalResponse(wd))
}

func (s *Server) handleWithdrawalHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusUnprocessableEntity, "user_id is required")
		return
	}
	list, err := s.withdrawalUC.History(r.Context(), userID)
	if err != nil {
		s.writeUseCaseError(w, err)
		return
	}
	items := make([]withdrawalResponse, 0, len(list))
	for _, wd := range list {
		items = append(items, toWithdrawalResponse(wd))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	wd, err := s.withdrawalUC.Approve(r.Context(), id, req.AdminID, req.TransactionReference)
	if err != nil {
		s.writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWithdrawalResponse(wd))
}

func (s *Server) handleRejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusUnprocessableEntity, "reason is required")
		return
	}

	wd, err := s.withdrawalUC.Reject(r.Context(), id, req.AdminID, req.Reason)
	if err != nil {
		s.writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWithdrawalResponse(wd))
}

func (s *Server) handleCommissionHistory(w http.ResponseWriter, r *http.Request) {
	affiliateID := r.URL.Query().Get("affiliate_id")
	if affiliateID == "" {
		writeError(w, http.StatusUnprocessableEntity, "affiliate_id is required")
		return
	}
	list, err := s.commissionUC.History(r.Context(), affiliateID)
	if err != nil {
		s.writeUseCaseError(w, err)
		return
	}
	items := make([]commissionResponse, 0, len(list))
	for _, c := range list {
		items = append(items, toCommissionResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// writeUseCaseError maps domain errors to status codes. The typed ledger
// errors carry their message through unchanged so clients see the minimum or
// the available balance.
func (s *Server) writeUseCaseError(w http.ResponseWriter, err error) {
	var below *usecase.BelowMinimumError
	var insufficient *usecase.InsufficientBalanceError
	switch {
	case errors.As(err, &below), errors.As(err, &insufficient):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusUnprocessableEntity, "invalid argument")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrWithdrawalFinalized):
		writeError(w, http.StatusConflict, "withdrawal already finalized")
	case errors.Is(err, domain.ErrLockUnavailable):
		writeError(w, http.StatusConflict, "another withdrawal request is in flight, retry shortly")
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
