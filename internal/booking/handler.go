package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/freshnest/booking-api/internal/notify"
	"github.com/freshnest/booking-api/internal/observability/metrics"
	"github.com/freshnest/booking-api/internal/payments"
	"github.com/freshnest/booking-api/internal/pricing"
	"github.com/freshnest/booking-api/pkg/logging"
)

// availableDateCount is how many upcoming dates the availability endpoint
// offers the customer.
const availableDateCount = 14

// IntentCreator creates a payment intent with the processor.
type IntentCreator interface {
	CreateIntent(ctx context.Context, params payments.IntentParams) (*payments.Intent, error)
}

// ConfirmationSender delivers the post-payment confirmation email.
type ConfirmationSender interface {
	SendBookingConfirmation(ctx context.Context, c notify.BookingConfirmation) error
}

// Handler exposes the booking flow over HTTP.
type Handler struct {
	store    *Store
	table    *pricing.Table
	payments IntentCreator
	notifier ConfirmationSender
	logger   *logging.Logger
	metrics  *metrics.BookingMetrics

	bookingPrefix string
	now           func() time.Time
}

// NewHandler creates the booking flow handler.
func NewHandler(store *Store, table *pricing.Table, intents IntentCreator, notifier ConfirmationSender, bookingPrefix string, logger *logging.Logger, m *metrics.BookingMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if bookingPrefix == "" {
		bookingPrefix = "FN"
	}
	return &Handler{
		store:         store,
		table:         table,
		payments:      intents,
		notifier:      notifier,
		logger:        logger,
		metrics:       m,
		bookingPrefix: bookingPrefix,
		now:           time.Now,
	}
}

// WithClock overrides the handler's clock for tests.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// Routes mounts the booking flow endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/availability", h.Availability)

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Put("/service-details", h.UpdateServiceDetails)
			r.Put("/schedule", h.UpdateSchedule)
			r.Put("/address", h.UpdateAddress)
			r.Post("/advance", h.Advance)
			r.Post("/back", h.Back)
			r.Post("/reset", h.Reset)
			r.Get("/quote", h.Quote)
			r.Post("/payment/intent", h.CreatePaymentIntent)
			r.Post("/payment/complete", h.CompletePayment)
		})
	})
}

// sessionResponse is the session plus the quote when one can be computed.
type sessionResponse struct {
	Session
	Quote *pricing.Quote `json:"quote,omitempty"`
}

func (h *Handler) sessionResponse(sess Session) sessionResponse {
	resp := sessionResponse{Session: sess}
	if sess.QuoteReady() {
		q := pricing.ComputeQuote(sess.Selections, h.table)
		resp.Quote = &q
	}
	return resp
}

// CreateSession starts a new booking flow.
// POST /bookings
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create()
	h.logger.Info("booking session created", "session_id", sess.ID)
	writeJSON(w, http.StatusCreated, h.sessionResponse(*sess))
}

// GetSession returns the current flow state.
// GET /bookings/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(sess))
}

// serviceDetailsRequest updates contact info and pricing selections. Fields
// may be sent incrementally; omitted blocks keep their current values.
type serviceDetailsRequest struct {
	Contact    *Contact            `json:"contact"`
	Selections *pricing.Selections `json:"selections"`
}

// UpdateServiceDetails stores contact and service selections.
// PUT /bookings/{sessionID}/service-details
func (h *Handler) UpdateServiceDetails(w http.ResponseWriter, r *http.Request) {
	var req serviceDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}

	sess, err := h.store.Update(chi.URLParam(r, "sessionID"), func(s *Session) error {
		if req.Contact != nil {
			s.Contact = *req.Contact
		}
		if req.Selections != nil {
			s.Selections = *req.Selections
		}
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	if sess.QuoteReady() {
		h.metrics.ObserveQuote(h.table.Variant())
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(sess))
}

// UpdateSchedule stores the service date and time slot.
// PUT /bookings/{sessionID}/schedule
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req Schedule
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}

	sess, err := h.store.Update(chi.URLParam(r, "sessionID"), func(s *Session) error {
		s.Schedule = req
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(sess))
}

// UpdateAddress stores the service address.
// PUT /bookings/{sessionID}/address
func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req Address
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}

	sess, err := h.store.Update(chi.URLParam(r, "sessionID"), func(s *Session) error {
		s.Address = req
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(sess))
}

// Advance validates the current step and moves the flow forward.
// POST /bookings/{sessionID}/advance
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Update(chi.URLParam(r, "sessionID"), func(s *Session) error {
		return s.Advance(h.now())
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(sess))
}

// Back moves the flow one step toward the start. Entered data is kept.
// POST /bookings/{sessionID}/back
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Update(chi.URLParam(r, "sessionID"), func(s *Session) error {
		return s.Back()
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(sess))
}

// Reset wipes the flow back to a blank first step.
// POST /bookings/{sessionID}/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Update(chi.URLParam(r, "sessionID"), func(s *Session) error {
		s.Reset()
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("booking session reset", "session_id", sess.ID)
	writeJSON(w, http.StatusOK, h.sessionResponse(sess))
}

// Quote computes the price for the session's current selections.
// GET /bookings/{sessionID}/quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if missing := sess.Selections.MissingRequired(); len(missing) > 0 {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":          "selections are incomplete",
			"missing_fields": missing,
		})
		return
	}

	q := pricing.ComputeQuote(sess.Selections, h.table)
	h.metrics.ObserveQuote(h.table.Variant())
	writeJSON(w, http.StatusOK, q)
}

// availabilityResponse lists the dates and arrival windows open for booking.
type availabilityResponse struct {
	Dates     []string   `json:"dates"`
	TimeSlots []TimeSlot `json:"time_slots"`
}

// Availability returns upcoming bookable dates and the fixed time slots.
// GET /availability
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, availabilityResponse{
		Dates:     AvailableDates(h.now(), availableDateCount),
		TimeSlots: TimeSlots,
	})
}

type paymentIntentRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
}

type paymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	AmountCents     int64  `json:"amount_cents"`
}

// CreatePaymentIntent creates a Stripe intent for the session's quoted total.
// The session must have reached the payment step.
// POST /bookings/{sessionID}/payment/intent
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeBadRequest(w, "invalid request body")
			return
		}
	}

	sess, err := h.store.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if sess.Step != StepPayment {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "session has not reached the payment step"})
		return
	}

	quote := pricing.ComputeQuote(sess.Selections, h.table)
	description := fmt.Sprintf("%s Cleaning - %s", titleCase(sess.Selections.CleaningType), FrequencyLabel(sess.Selections.Frequency))

	start := h.now()
	intent, err := h.payments.CreateIntent(r.Context(), payments.IntentParams{
		AmountCents:     quote.FirstVisitCents(),
		Email:           sess.Contact.Email,
		Description:     description,
		PaymentMethodID: req.PaymentMethodID,
	})
	h.metrics.ObservePaymentIntent(paymentStatus(err), time.Since(start).Seconds())
	if err != nil {
		h.logger.Error("session payment intent failed", "error", err, "session_id", sess.ID)
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, paymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		AmountCents:     quote.FirstVisitCents(),
	})
}

type completePaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

// CompletePayment records a successful payment, assigns the booking number,
// and sends the confirmation email in the background.
// POST /bookings/{sessionID}/payment/complete
func (h *Handler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	var req completePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.PaymentIntentID) == "" {
		h.writeBadRequest(w, "payment_intent_id is required")
		return
	}

	now := h.now()
	bookingNumber := NewBookingNumber(h.bookingPrefix, now)

	sess, err := h.store.Update(chi.URLParam(r, "sessionID"), func(s *Session) error {
		amount := pricing.ComputeQuote(s.Selections, h.table).FirstVisitTotal
		return s.Confirm(bookingNumber, amount, req.PaymentIntentID)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.metrics.ObserveBookingConfirmed()
	h.logger.Info("booking confirmed",
		"session_id", sess.ID, "booking_number", sess.BookingNumber, "amount_paid", sess.AmountPaid)

	if h.notifier != nil {
		confirmation := h.buildConfirmation(sess)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			// Failures are already logged and counted inside the notifier.
			_ = h.notifier.SendBookingConfirmation(ctx, confirmation)
		}()
	}

	writeJSON(w, http.StatusOK, h.sessionResponse(sess))
}

func (h *Handler) buildConfirmation(sess Session) notify.BookingConfirmation {
	address := sess.Address.Street
	if sess.Address.City != "" {
		address += ", " + sess.Address.City
	}
	if sess.Address.PostalCode != "" {
		address += ", " + sess.Address.PostalCode
	}
	return notify.BookingConfirmation{
		BookingNumber:       sess.BookingNumber,
		CustomerName:        sess.Contact.Name,
		CustomerEmail:       sess.Contact.Email,
		CustomerPhone:       sess.Contact.Phone,
		ServiceDate:         FormatDateForDisplay(sess.Schedule.Date),
		TimeSlot:            TimeSlotLabel(sess.Schedule.TimeSlot),
		Address:             address,
		CleaningType:        sess.Selections.CleaningType,
		Frequency:           FrequencyLabel(sess.Selections.Frequency),
		HomeSize:            sess.Selections.HomeSize,
		TotalPrice:          sess.AmountPaid,
		SpecialInstructions: sess.Address.SpecialInstructions,
	}
}

func paymentStatus(err error) string {
	if err == nil {
		return "ok"
	}
	var procErr *payments.ProcessorError
	if errors.As(err, &procErr) {
		return "declined"
	}
	return "error"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (h *Handler) writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var valErr *ValidationError
	var procErr *payments.ProcessorError

	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "booking session not found"})
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"step":   valErr.Step,
			"fields": valErr.Fields,
		})
	case errors.Is(err, ErrAtFirstStep),
		errors.Is(err, ErrPaymentRequired),
		errors.Is(err, ErrFlowConfirmed),
		errors.Is(err, ErrWrongStep):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &procErr):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": procErr.Message})
	case errors.Is(err, payments.ErrNotConfigured):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "payment processing is not configured"})
	default:
		h.logger.Error("booking handler error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
