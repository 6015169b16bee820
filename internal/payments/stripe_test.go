package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStripeService_CreateIntent(t *testing.T) {
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/payment_intents" {
			t.Errorf("expected path /v1/payment_intents, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("expected auth header, got %q", got)
		}
		if r.Header.Get("Stripe-Version") == "" {
			t.Errorf("expected Stripe-Version header")
		}
		if r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
			t.Errorf("expected form-urlencoded content type, got %q", r.Header.Get("Content-Type"))
		}

		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":            "pi_test_abc123",
			"client_secret": "pi_test_abc123_secret_xyz",
		})
	}))
	defer srv.Close()

	svc := NewStripeService("sk_test_123", "cad", nil).WithBaseURL(srv.URL)

	intent, err := svc.CreateIntent(context.Background(), IntentParams{
		AmountCents: 16272,
		Email:       "jane@example.com",
		Description: "Deep Cleaning - Weekly",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.ID != "pi_test_abc123" {
		t.Fatalf("unexpected intent ID: %s", intent.ID)
	}
	if intent.ClientSecret != "pi_test_abc123_secret_xyz" {
		t.Fatalf("unexpected client secret: %s", intent.ClientSecret)
	}

	if gotForm == nil {
		t.Fatal("expected form to be captured")
	}
	assertFormValue(t, gotForm, "amount", "16272")
	assertFormValue(t, gotForm, "currency", "cad")
	assertFormValue(t, gotForm, "receipt_email", "jane@example.com")
	assertFormValue(t, gotForm, "description", "Deep Cleaning - Weekly")
	assertFormValue(t, gotForm, "metadata[customer_email]", "jane@example.com")
	if _, ok := gotForm["payment_method"]; ok {
		t.Errorf("expected no payment_method without a payment method ID")
	}
	if _, ok := gotForm["confirm"]; ok {
		t.Errorf("expected no confirm without a payment method ID")
	}
}

func TestStripeService_CreateIntentConfirmsWithPaymentMethod(t *testing.T) {
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":            "pi_test_confirmed",
			"client_secret": "pi_test_confirmed_secret",
		})
	}))
	defer srv.Close()

	svc := NewStripeService("sk_test_123", "cad", nil).WithBaseURL(srv.URL)

	_, err := svc.CreateIntent(context.Background(), IntentParams{
		AmountCents:     9900,
		Email:           "jane@example.com",
		PaymentMethodID: "pm_card_visa",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertFormValue(t, gotForm, "payment_method", "pm_card_visa")
	assertFormValue(t, gotForm, "confirm", "true")
	assertFormValue(t, gotForm, "confirmation_method", "manual")
	assertFormValue(t, gotForm, "description", "Cleaning Service")
}

func TestStripeService_CreateIntentProcessorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"message": "Your card was declined.",
				"type":    "card_error",
				"code":    "card_declined",
			},
		})
	}))
	defer srv.Close()

	svc := NewStripeService("sk_test_123", "cad", nil).WithBaseURL(srv.URL)

	_, err := svc.CreateIntent(context.Background(), IntentParams{
		AmountCents: 9900,
		Email:       "jane@example.com",
	})
	var procErr *ProcessorError
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ProcessorError, got %v", err)
	}
	if procErr.StatusCode != http.StatusPaymentRequired {
		t.Errorf("expected status 402, got %d", procErr.StatusCode)
	}
	if procErr.Code != "card_declined" {
		t.Errorf("expected code card_declined, got %q", procErr.Code)
	}
	if !strings.Contains(procErr.Message, "declined") {
		t.Errorf("expected decline message, got %q", procErr.Message)
	}
}

func TestStripeService_CreateIntentNotConfigured(t *testing.T) {
	svc := NewStripeService("", "cad", nil)

	_, err := svc.CreateIntent(context.Background(), IntentParams{
		AmountCents: 9900,
		Email:       "jane@example.com",
	})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestStripeService_CreateIntentDryRun(t *testing.T) {
	svc := NewStripeService("sk_test_123", "cad", nil).WithDryRun(true)

	intent, err := svc.CreateIntent(context.Background(), IntentParams{
		AmountCents: 9900,
		Email:       "jane@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(intent.ID, "pi_dryrun_") {
		t.Errorf("expected dry-run intent ID, got %s", intent.ID)
	}
	if intent.ClientSecret == "" {
		t.Errorf("expected dry-run client secret")
	}
}

func assertFormValue(t *testing.T, form map[string][]string, key, want string) {
	t.Helper()
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		t.Errorf("expected form field %q to be set", key)
		return
	}
	if vals[0] != want {
		t.Errorf("form field %q: expected %q, got %q", key, want, vals[0])
	}
}
