package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, errorResponse{Error: ve.Message, Field: ve.Field}
	}

	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		log.Error().Err(pe.Err).Str("path", c.Path()).Msg("booking persistence failed")
		return http.StatusUnprocessableEntity, errorResponse{Error: pe.UserMessage}
	}

	var payErr *domain.PaymentError
	if errors.As(err, &payErr) {
		return http.StatusPaymentRequired, errorResponse{Error: payErr.Message}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrDraftNotFound):
		return http.StatusNotFound, errorResponse{Error: "booking draft not found"}
	case errors.Is(err, domain.ErrGrantNotFound):
		return http.StatusNotFound, errorResponse{Error: "role grant not found"}
	case errors.Is(err, domain.ErrPaymentInFlight):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrPaymentsUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Error: domain.ErrPaymentsUnavailable.Error()}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "authentication required"}
	case errors.Is(err, domain.ErrInvalidCapability), errors.Is(err, domain.ErrCapabilityConsumed):
		return http.StatusUnauthorized, errorResponse{Error: "invalid capability"}
	case errors.Is(err, domain.ErrResolutionFailed):
		return http.StatusServiceUnavailable, errorResponse{Error: "unable to verify access"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
