package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freshnest/booking-api/cmd/mainconfig"
	"github.com/freshnest/booking-api/internal/api/router"
	"github.com/freshnest/booking-api/internal/booking"
	appconfig "github.com/freshnest/booking-api/internal/config"
	"github.com/freshnest/booking-api/internal/notify"
	"github.com/freshnest/booking-api/internal/observability/metrics"
	"github.com/freshnest/booking-api/internal/payments"
	"github.com/freshnest/booking-api/internal/pricing"
	"github.com/freshnest/booking-api/pkg/logging"
)

func main() {
	// Load .env for local development; ignored when absent.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"pricing_variant", cfg.PricingVariant,
	)

	// Configuration problems are reported once here, not on every request.
	if err := cfg.Validate(); err != nil {
		logger.Warn("configuration incomplete", "error", err)
	}

	table, err := pricing.TableForVariant(cfg.PricingVariant)
	if err != nil {
		logger.Error("invalid pricing variant", "error", err, "variant", cfg.PricingVariant)
		os.Exit(1)
	}

	bookingMetrics := metrics.NewBookingMetrics(nil)

	store := booking.NewStore(cfg.SessionTTL, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.Run(ctx, 10*time.Minute)

	stripeKey := cfg.StripeSecretKey
	if !cfg.PaymentsConfigured() {
		stripeKey = ""
	}
	stripeService := payments.NewStripeService(stripeKey, cfg.Currency, logger).
		WithDryRun(strings.EqualFold(os.Getenv("STRIPE_DRY_RUN"), "true"))

	sender := buildEmailSender(ctx, cfg, logger)
	notifier := notify.NewService(sender, logger, bookingMetrics)

	bookingHandler := booking.NewHandler(store, table, stripeService, notifier, cfg.BookingPrefix, logger, bookingMetrics)
	intentHandler := payments.NewIntentHandler(stripeService, logger, bookingMetrics)

	r := router.New(&router.Config{
		Logger:             logger,
		BookingHandler:     bookingHandler,
		PaymentIntent:      intentHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: 10,
		RateLimitBurst:     30,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildEmailSender picks the email backend from config. Anything missing or
// misconfigured falls back to the logging stub rather than failing startup.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if !cfg.EmailConfigured() {
		logger.Warn("email not configured; confirmation emails will be logged only", "provider", cfg.EmailProvider)
		return notify.NewStubEmailSender(logger)
	}

	switch cfg.EmailProvider {
	case appconfig.EmailProviderSendGrid:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	case appconfig.EmailProviderSES:
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config; falling back to stub email", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}
