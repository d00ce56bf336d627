package domain

import "errors"

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrResolutionFailed    = errors.New("unable to verify access")
	ErrUserNotFound        = errors.New("user not found")
	ErrProfileNotFound     = errors.New("tenant profile not found")
	ErrDraftNotFound       = errors.New("booking draft not found")
	ErrPaymentInFlight     = errors.New("a payment is already being processed for this booking")
	ErrPaymentsUnavailable = errors.New("payments are temporarily unavailable, please try again")
	ErrGrantNotFound       = errors.New("role grant not found")
	ErrInvalidCapability   = errors.New("invalid capability token")
	ErrCapabilityConsumed  = errors.New("capability token already used")
)

// ValidationError is a user-correctable input problem surfaced inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrDatesRequired         = &ValidationError{Field: "dates", Message: "please select both check-in and check-out dates"}
	ErrCheckOutNotAfter      = &ValidationError{Field: "check_out", Message: "check-out date must be after check-in date"}
	ErrPaymentMethodRequired = &ValidationError{Field: "payment_method", Message: "please select a payment method"}
	ErrInvalidStep           = &ValidationError{Field: "step", Message: "this step cannot be changed right now"}
	ErrConfirmRequired       = &ValidationError{Field: "step", Message: "confirm the booking to continue"}
	ErrNotConfirmStep        = &ValidationError{Field: "step", Message: "booking is not ready for confirmation"}
	ErrInvalidGrant          = &ValidationError{Field: "grant", Message: "grant subject, role and mode are required"}
)

// PaymentError is a failed payment attempt. Retrying re-runs the attempt
// from the start.
type PaymentError struct {
	Method  string
	Message string
}

func (e *PaymentError) Error() string { return e.Message }

// PersistenceError wraps a backend write failure with a message safe to
// show to the tenant.
type PersistenceError struct {
	UserMessage string
	Err         error
}

func (e *PersistenceError) Error() string { return e.UserMessage }

func (e *PersistenceError) Unwrap() error { return e.Err }
