package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/freshnest/booking-api/pkg/logging"
)

var stripeTracer = otel.Tracer("freshnest.internal.payments.stripe")

const defaultDescription = "Cleaning Service"

// IntentParams describes the payment to collect for a booking.
type IntentParams struct {
	AmountCents     int64
	Currency        string
	Email           string
	Description     string
	PaymentMethodID string
}

// Intent is the subset of a created PaymentIntent the booking flow needs:
// the client secret for front-end confirmation and the intent ID for records.
type Intent struct {
	ID           string
	ClientSecret string
}

// StripeService creates Stripe PaymentIntents over the raw REST API.
type StripeService struct {
	secretKey  string
	currency   string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *logging.Logger
	dryRun     bool
}

// NewStripeService creates a Stripe payment service. An empty secretKey
// produces a service whose CreateIntent always returns ErrNotConfigured.
func NewStripeService(secretKey, currency string, logger *logging.Logger) *StripeService {
	if logger == nil {
		logger = logging.Default()
	}
	if currency == "" {
		currency = "cad"
	}
	return &StripeService{
		secretKey:  secretKey,
		currency:   strings.ToLower(currency),
		baseURL:    "https://api.stripe.com",
		apiVersion: "2024-12-18.acacia",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the Stripe API base URL (for testing).
func (s *StripeService) WithBaseURL(baseURL string) *StripeService {
	if baseURL != "" {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
	return s
}

// WithDryRun enables dry-run mode (returns fake intents without calling Stripe).
func (s *StripeService) WithDryRun(enabled bool) *StripeService {
	s.dryRun = enabled
	return s
}

// CreateIntent creates a PaymentIntent for the given amount. When
// PaymentMethodID is set the intent is confirmed server-side with manual
// confirmation, so the front end can finish any required card action.
func (s *StripeService) CreateIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	ctx, span := stripeTracer.Start(ctx, "stripe.create_payment_intent")
	defer span.End()
	span.SetAttributes(
		attribute.Int("freshnest.amount_cents", int(params.AmountCents)),
		attribute.Bool("freshnest.confirm", params.PaymentMethodID != ""),
	)

	if s.secretKey == "" {
		return nil, ErrNotConfigured
	}

	if s.dryRun {
		fakeID := "pi_dryrun_" + uuid.New().String()[:8]
		s.logger.Info("stripe dry run: skipping payment intent creation",
			"email", params.Email, "amount_cents", params.AmountCents)
		return &Intent{
			ID:           fakeID,
			ClientSecret: fakeID + "_secret_dryrun",
		}, nil
	}

	currency := strings.ToLower(params.Currency)
	if currency == "" {
		currency = s.currency
	}
	description := strings.TrimSpace(params.Description)
	if description == "" {
		description = defaultDescription
	}

	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", params.AmountCents))
	form.Set("currency", currency)
	form.Set("description", description)
	if email := strings.TrimSpace(params.Email); email != "" {
		form.Set("receipt_email", email)
		form.Set("metadata[customer_email]", email)
	}
	form.Set("metadata[service_description]", description)

	if params.PaymentMethodID != "" {
		form.Set("payment_method", params.PaymentMethodID)
		form.Set("confirm", "true")
		form.Set("confirmation_method", "manual")
	}

	apiURL := s.baseURL + "/v1/payment_intents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payments: stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Stripe-Version", s.apiVersion)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: stripe http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		procErr := readStripeError(resp.StatusCode, resp.Body)
		s.logger.Warn("stripe payment intent failed",
			"status", resp.StatusCode, "code", procErr.Code, "message", procErr.Message)
		return nil, procErr
	}

	var parsed stripePaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("payments: stripe decode: %w", err)
	}
	if parsed.ClientSecret == "" {
		return nil, fmt.Errorf("payments: stripe response missing client secret")
	}

	return &Intent{
		ID:           parsed.ID,
		ClientSecret: parsed.ClientSecret,
	}, nil
}

// stripePaymentIntent is the subset of Stripe's PaymentIntent we need.
type stripePaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// stripeErrorResponse represents a Stripe API error.
type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// readStripeError reads and parses a Stripe error response body.
func readStripeError(status int, body io.Reader) *ProcessorError {
	procErr := &ProcessorError{StatusCode: status}
	data, err := io.ReadAll(body)
	if err != nil {
		return procErr
	}
	var parsed stripeErrorResponse
	if json.Unmarshal(data, &parsed) == nil && parsed.Error.Message != "" {
		procErr.Code = parsed.Error.Code
		procErr.Message = parsed.Error.Message
		return procErr
	}
	procErr.Message = string(data)
	return procErr
}
