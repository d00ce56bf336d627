package service

import (
	"errors"
	"strings"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

const (
	msgContactNameMissing = "Please provide a contact name before booking."
	msgRowLevelSecurity   = "You are not allowed to create this booking. Please sign in again."
	msgRequiredMissing    = "Some required booking details are missing."
	msgBookingGeneric     = "We could not save your booking. Please try again later."
)

// DescribePersistenceError turns a backend write failure into a message
// safe to show to the tenant. The most specific match wins.
func DescribePersistenceError(err error) *domain.PersistenceError {
	if err == nil {
		return nil
	}
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return pe
	}
	msg := strings.ToLower(err.Error())
	var user string
	switch {
	case strings.Contains(msg, "contact_name"):
		user = msgContactNameMissing
	case strings.Contains(msg, "row-level security"), strings.Contains(msg, "row level security"):
		user = msgRowLevelSecurity
	case strings.Contains(msg, "not-null constraint"), strings.Contains(msg, "null value in column"):
		user = msgRequiredMissing
	default:
		user = msgBookingGeneric
	}
	return &domain.PersistenceError{UserMessage: user, Err: err}
}
