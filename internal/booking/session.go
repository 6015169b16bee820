// Package booking holds the multi-step booking flow: per-step form state,
// the step navigator, and the in-memory session store. A session lives for
// one flow only; nothing is persisted.
package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/freshnest/booking-api/internal/pricing"
)

// Step identifies one screen of the booking flow.
type Step string

const (
	StepServiceDetails Step = "service_details"
	StepDateTime       Step = "date_time"
	StepAddress        Step = "address"
	StepPayment        Step = "payment"
	StepConfirmed      Step = "confirmed"
)

// stepOrder is the linear flow; transitions move one step at a time.
var stepOrder = []Step{StepServiceDetails, StepDateTime, StepAddress, StepPayment, StepConfirmed}

// Contact is the customer contact block collected on the first step.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Schedule is the service date and time slot.
type Schedule struct {
	Date     string `json:"date"` // YYYY-MM-DD
	TimeSlot string `json:"time_slot"`
}

// Address is the service address collected before payment.
type Address struct {
	Street              string `json:"street"`
	City                string `json:"city"`
	PostalCode          string `json:"postal_code"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

// Session is one in-flight booking flow. All mutation happens through the
// store, which serializes access.
type Session struct {
	ID         string             `json:"id"`
	Step       Step               `json:"step"`
	Contact    Contact            `json:"contact"`
	Selections pricing.Selections `json:"selections"`
	Schedule   Schedule           `json:"schedule"`
	Address    Address            `json:"address"`

	// Set when payment succeeds.
	BookingNumber string  `json:"booking_number,omitempty"`
	AmountPaid    float64 `json:"amount_paid,omitempty"`
	PaymentRef    string  `json:"payment_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FieldError describes one invalid or missing field on the current step.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the field problems that block a step transition.
type ValidationError struct {
	Step   Step         `json:"step"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("step %s invalid: %s", e.Step, strings.Join(names, ", "))
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Advance moves the session forward one step after validating the current
// one. The payment step never advances this way; Confirm is the only way
// into the terminal step.
func (s *Session) Advance(now time.Time) error {
	switch s.Step {
	case StepConfirmed:
		return ErrFlowConfirmed
	case StepPayment:
		return ErrPaymentRequired
	}

	if err := s.validateStep(s.Step, now); err != nil {
		return err
	}
	s.Step = nextStep(s.Step)
	return nil
}

// Back moves the session one step toward the start. The confirmed step has
// no backward transition, only Reset.
func (s *Session) Back() error {
	switch s.Step {
	case StepConfirmed:
		return ErrFlowConfirmed
	case StepServiceDetails:
		return ErrAtFirstStep
	}
	s.Step = prevStep(s.Step)
	return nil
}

// Confirm records a successful payment and enters the terminal step.
func (s *Session) Confirm(bookingNumber string, amountPaid float64, paymentRef string) error {
	if s.Step != StepPayment {
		return ErrWrongStep
	}
	s.BookingNumber = bookingNumber
	s.AmountPaid = amountPaid
	s.PaymentRef = paymentRef
	s.Step = StepConfirmed
	return nil
}

// Reset wipes all accumulated state and returns to the first step.
func (s *Session) Reset() {
	s.Step = StepServiceDetails
	s.Contact = Contact{}
	s.Selections = defaultSelections()
	s.Schedule = Schedule{}
	s.Address = Address{}
	s.BookingNumber = ""
	s.AmountPaid = 0
	s.PaymentRef = ""
}

// QuoteReady reports whether the required selections are present, gating
// quote computation.
func (s *Session) QuoteReady() bool {
	return len(s.Selections.MissingRequired()) == 0
}

func (s *Session) validateStep(step Step, now time.Time) error {
	var fields []FieldError

	switch step {
	case StepServiceDetails:
		if strings.TrimSpace(s.Contact.Name) == "" {
			fields = append(fields, FieldError{"name", "name is required"})
		}
		if !emailPattern.MatchString(s.Contact.Email) {
			fields = append(fields, FieldError{"email", "a valid email address is required"})
		}
		if strings.TrimSpace(s.Contact.Phone) == "" {
			fields = append(fields, FieldError{"phone", "phone number is required"})
		}
		for _, f := range s.Selections.MissingRequired() {
			fields = append(fields, FieldError{f, f + " is required"})
		}
	case StepDateTime:
		if s.Schedule.Date == "" {
			fields = append(fields, FieldError{"date", "service date is required"})
		} else if !IsBookableDate(s.Schedule.Date, now) {
			fields = append(fields, FieldError{"date", "service date must be an upcoming non-Sunday date"})
		}
		if !ValidTimeSlot(s.Schedule.TimeSlot) {
			fields = append(fields, FieldError{"time_slot", "a valid time slot is required"})
		}
	case StepAddress:
		if strings.TrimSpace(s.Address.Street) == "" {
			fields = append(fields, FieldError{"street", "street address is required"})
		}
		if strings.TrimSpace(s.Address.City) == "" {
			fields = append(fields, FieldError{"city", "city is required"})
		}
		if strings.TrimSpace(s.Address.PostalCode) == "" {
			fields = append(fields, FieldError{"postal_code", "postal code is required"})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Step: step, Fields: fields}
	}
	return nil
}

func nextStep(s Step) Step {
	for i, step := range stepOrder {
		if step == s && i+1 < len(stepOrder) {
			return stepOrder[i+1]
		}
	}
	return s
}

func prevStep(s Step) Step {
	for i, step := range stepOrder {
		if step == s && i > 0 {
			return stepOrder[i-1]
		}
	}
	return s
}

func defaultSelections() pricing.Selections {
	return pricing.Selections{
		CleaningType: "standard",
		Frequency:    pricing.FrequencyOneTime,
	}
}

// FrequencyLabel renders a frequency key for customer-facing copy.
func FrequencyLabel(frequency string) string {
	switch frequency {
	case pricing.FrequencyWeekly:
		return "Weekly"
	case pricing.FrequencyBiweekly:
		return "Bi-Weekly"
	case pricing.FrequencyTriweekly:
		return "Tri-Weekly"
	case pricing.FrequencyMonthly:
		return "Monthly"
	default:
		return "One-Time"
	}
}
