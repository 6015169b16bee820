package notify

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/freshnest/booking-api/internal/observability/metrics"
	"github.com/freshnest/booking-api/pkg/logging"
)

// BookingConfirmation carries everything the confirmation email mentions.
// Display fields (date, time slot, frequency) arrive pre-formatted so this
// package stays ignorant of scheduling rules.
type BookingConfirmation struct {
	BookingNumber       string
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	ServiceDate         string
	TimeSlot            string
	Address             string
	CleaningType        string
	Frequency           string
	HomeSize            string
	TotalPrice          float64
	SpecialInstructions string
}

// Service sends booking lifecycle notifications.
type Service struct {
	sender  EmailSender
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

// NewService creates a notification service. A nil sender disables sending:
// SendBookingConfirmation becomes a logged no-op.
func NewService(sender EmailSender, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{sender: sender, logger: logger, metrics: m}
}

// SendBookingConfirmation emails the customer their booking details. Failures
// are logged and counted but never fail the booking itself.
func (s *Service) SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error {
	if s.sender == nil {
		s.logger.Info("email disabled: skipping booking confirmation", "booking_number", c.BookingNumber)
		s.metrics.ObserveConfirmationEmail("skipped")
		return nil
	}

	msg := EmailMessage{
		To:      c.CustomerEmail,
		ToName:  c.CustomerName,
		Subject: fmt.Sprintf("Booking Confirmed - %s", c.BookingNumber),
		Body:    confirmationText(c),
		HTML:    confirmationHTML(c),
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("booking confirmation email failed",
			"error", err, "booking_number", c.BookingNumber, "to", c.CustomerEmail)
		s.metrics.ObserveConfirmationEmail("error")
		return err
	}

	s.logger.Info("booking confirmation sent", "booking_number", c.BookingNumber, "to", c.CustomerEmail)
	s.metrics.ObserveConfirmationEmail("sent")
	return nil
}

func confirmationText(c BookingConfirmation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", c.CustomerName)
	b.WriteString("Your cleaning is booked! Here are your booking details:\n\n")
	fmt.Fprintf(&b, "Booking Number: %s\n", c.BookingNumber)
	fmt.Fprintf(&b, "Service Date: %s\n", c.ServiceDate)
	fmt.Fprintf(&b, "Arrival Window: %s\n", c.TimeSlot)
	fmt.Fprintf(&b, "Address: %s\n", c.Address)
	fmt.Fprintf(&b, "Cleaning Type: %s\n", c.CleaningType)
	if c.HomeSize != "" {
		fmt.Fprintf(&b, "Home Size: %s\n", c.HomeSize)
	}
	fmt.Fprintf(&b, "Frequency: %s\n", c.Frequency)
	fmt.Fprintf(&b, "Total Paid: $%.2f\n", c.TotalPrice)
	if c.CustomerPhone != "" {
		fmt.Fprintf(&b, "Phone on File: %s\n", c.CustomerPhone)
	}
	if c.SpecialInstructions != "" {
		fmt.Fprintf(&b, "\nSpecial Instructions: %s\n", c.SpecialInstructions)
	}
	b.WriteString("\nNeed to make a change? Reply to this email and we'll take care of it.\n\n")
	b.WriteString("Thanks for choosing FreshNest Cleaning!\n")
	return b.String()
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2b7a4b;">Your cleaning is booked!</h2>
  <p>Hi {{.CustomerName}},</p>
  <p>Thanks for booking with FreshNest Cleaning. Here are your booking details:</p>
  <table style="border-collapse: collapse; width: 100%;">
    <tr><td style="padding: 6px 12px; font-weight: bold;">Booking Number</td><td style="padding: 6px 12px;">{{.BookingNumber}}</td></tr>
    <tr><td style="padding: 6px 12px; font-weight: bold;">Service Date</td><td style="padding: 6px 12px;">{{.ServiceDate}}</td></tr>
    <tr><td style="padding: 6px 12px; font-weight: bold;">Arrival Window</td><td style="padding: 6px 12px;">{{.TimeSlot}}</td></tr>
    <tr><td style="padding: 6px 12px; font-weight: bold;">Address</td><td style="padding: 6px 12px;">{{.Address}}</td></tr>
    <tr><td style="padding: 6px 12px; font-weight: bold;">Cleaning Type</td><td style="padding: 6px 12px;">{{.CleaningType}}</td></tr>
    {{if .HomeSize}}<tr><td style="padding: 6px 12px; font-weight: bold;">Home Size</td><td style="padding: 6px 12px;">{{.HomeSize}}</td></tr>{{end}}
    <tr><td style="padding: 6px 12px; font-weight: bold;">Frequency</td><td style="padding: 6px 12px;">{{.Frequency}}</td></tr>
    <tr><td style="padding: 6px 12px; font-weight: bold;">Total Paid</td><td style="padding: 6px 12px;">${{printf "%.2f" .TotalPrice}}</td></tr>
  </table>
  {{if .SpecialInstructions}}<p><strong>Special Instructions:</strong> {{.SpecialInstructions}}</p>{{end}}
  <p>Need to make a change? Reply to this email and we'll take care of it.</p>
  <p style="color: #888; font-size: 12px;">FreshNest Cleaning</p>
</div>`))

func confirmationHTML(c BookingConfirmation) string {
	var b strings.Builder
	if err := confirmationTmpl.Execute(&b, c); err != nil {
		return ""
	}
	return b.String()
}
