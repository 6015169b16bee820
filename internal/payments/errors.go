package payments

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when the Stripe secret key is absent or a
// placeholder. This is an operator problem, not something the customer can
// retry past.
var ErrNotConfigured = errors.New("payments: stripe is not configured")

// ProcessorError carries a failure reported by the payment processor, e.g.
// a card decline. The customer may retry with a different card.
type ProcessorError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProcessorError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payments: stripe status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payments: stripe status %d", e.StatusCode)
}
