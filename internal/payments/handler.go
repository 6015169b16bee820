package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/freshnest/booking-api/internal/observability/metrics"
	"github.com/freshnest/booking-api/pkg/logging"
)

// IntentCreator creates a PaymentIntent with the processor.
type IntentCreator interface {
	CreateIntent(ctx context.Context, params IntentParams) (*Intent, error)
}

// IntentHandler serves POST /create-payment-intent for front ends that
// collect payment details directly with Stripe.js.
type IntentHandler struct {
	service IntentCreator
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

// NewIntentHandler creates the payment intent HTTP handler.
func NewIntentHandler(service IntentCreator, logger *logging.Logger, m *metrics.BookingMetrics) *IntentHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &IntentHandler{service: service, logger: logger, metrics: m}
}

type intentRequest struct {
	Amount          int64  `json:"amount"`
	Email           string `json:"email"`
	Description     string `json:"description"`
	PaymentMethodID string `json:"payment_method_id"`
}

type intentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *IntentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if req.Amount <= 0 || strings.TrimSpace(req.Email) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required fields: amount and email"})
		return
	}

	start := time.Now()
	intent, err := h.service.CreateIntent(r.Context(), IntentParams{
		AmountCents:     req.Amount,
		Email:           req.Email,
		Description:     req.Description,
		PaymentMethodID: req.PaymentMethodID,
	})
	h.metrics.ObservePaymentIntent(statusForError(err), time.Since(start).Seconds())
	if err != nil {
		h.logger.Error("payment intent creation failed", "error", err, "amount_cents", req.Amount)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: publicError(err)})
		return
	}

	h.logger.Info("payment intent created", "intent_id", intent.ID, "amount_cents", req.Amount)
	writeJSON(w, http.StatusOK, intentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
}

// publicError maps internal failures to messages safe to show a customer.
func publicError(err error) string {
	var procErr *ProcessorError
	if errors.As(err, &procErr) && procErr.Message != "" {
		return procErr.Message
	}
	if errors.Is(err, ErrNotConfigured) {
		return "Payment processing is not configured"
	}
	return "Failed to create payment intent"
}

func statusForError(err error) string {
	if err == nil {
		return "ok"
	}
	var procErr *ProcessorError
	if errors.As(err, &procErr) {
		return "declined"
	}
	return "error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
