package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/freshnest/booking-api/internal/payments"
	"github.com/freshnest/booking-api/pkg/logging"
)

// The standalone payment intent endpoint, deployable without the full API
// server. Serves the same wire contract as /create-payment-intent.

type intentCreator interface {
	CreateIntent(ctx context.Context, params payments.IntentParams) (*payments.Intent, error)
}

type intentRequest struct {
	Amount          int64  `json:"amount"`
	Email           string `json:"email"`
	Description     string `json:"description"`
	PaymentMethodID string `json:"payment_method_id"`
}

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"))

	svc := payments.NewStripeService(os.Getenv("STRIPE_SECRET_KEY"), os.Getenv("CURRENCY"), logger).
		WithDryRun(strings.EqualFold(os.Getenv("STRIPE_DRY_RUN"), "true"))

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, svc, evt)
	})
}

func handle(ctx context.Context, svc intentCreator, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))

	if method == http.MethodOptions {
		return respond(http.StatusNoContent, nil), nil
	}
	if method != http.MethodPost {
		return respondJSON(http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"}), nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return respondJSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"}), nil
	}

	var req intentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return respondJSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"}), nil
	}
	if req.Amount <= 0 || strings.TrimSpace(req.Email) == "" {
		return respondJSON(http.StatusBadRequest, map[string]string{"error": "Missing required fields: amount and email"}), nil
	}

	intent, err := svc.CreateIntent(ctx, payments.IntentParams{
		AmountCents:     req.Amount,
		Email:           req.Email,
		Description:     req.Description,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		return respondJSON(http.StatusInternalServerError, map[string]string{"error": errorMessage(err)}), nil
	}

	return respondJSON(http.StatusOK, map[string]string{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
	}), nil
}

func errorMessage(err error) string {
	var procErr *payments.ProcessorError
	if errors.As(err, &procErr) && procErr.Message != "" {
		return procErr.Message
	}
	if errors.Is(err, payments.ErrNotConfigured) {
		return "Payment processing is not configured"
	}
	return "Failed to create payment intent"
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

func respond(status int, headers map[string]string) events.APIGatewayV2HTTPResponse {
	if headers == nil {
		headers = map[string]string{}
	}
	headers["access-control-allow-origin"] = "*"
	headers["access-control-allow-methods"] = "POST, OPTIONS"
	headers["access-control-allow-headers"] = "Content-Type"
	return events.APIGatewayV2HTTPResponse{StatusCode: status, Headers: headers}
}

func respondJSON(status int, v any) events.APIGatewayV2HTTPResponse {
	out := respond(status, map[string]string{"content-type": "application/json"})
	body, _ := json.Marshal(v)
	out.Body = string(body)
	return out
}
