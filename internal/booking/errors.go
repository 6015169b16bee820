package booking

import "errors"

var (
	// ErrSessionNotFound is returned when a booking session does not exist
	// or has expired.
	ErrSessionNotFound = errors.New("booking session not found")

	// ErrAtFirstStep is returned when stepping back from the first step.
	ErrAtFirstStep = errors.New("already at the first step")

	// ErrPaymentRequired is returned when advancing past the payment step
	// without a recorded payment.
	ErrPaymentRequired = errors.New("payment must succeed before confirmation")

	// ErrFlowConfirmed is returned when mutating a session that already
	// reached the terminal confirmed step.
	ErrFlowConfirmed = errors.New("booking already confirmed; reset to start over")

	// ErrWrongStep is returned when an operation is attempted on the wrong
	// step, e.g. paying before reaching the payment step.
	ErrWrongStep = errors.New("operation not valid for the current step")
)
