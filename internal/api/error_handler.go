package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// Error kinds rendered in the envelope.
const (
	kindInvalidInput    = "invalid_input"
	kindConflict        = "conflict"
	kindUnauthenticated = "unauthenticated"
	kindForbidden       = "forbidden"
	kindNotFound        = "not_found"
	kindInternal        = "internal"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain errors
// to exactly one status code and renders {"error": ..., "kind": ...}.
// Unexpected errors are logged and rendered with a generic message.
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
	// Echo's own errors (bind failures, 404 from router, rate limiter, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message), Kind: kindForStatus(he.Code)}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: kindInvalidInput}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "user already exists", Kind: kindConflict}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials", Kind: kindUnauthenticated}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "authentication required", Kind: kindUnauthenticated}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden", Kind: kindForbidden}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found", Kind: kindNotFound}
	case errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound, errorResponse{Error: "booking not found", Kind: kindNotFound}
	case errors.Is(err, domain.ErrPostNotFound):
		return http.StatusNotFound, errorResponse{Error: "post not found", Kind: kindNotFound}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: kindInternal}
}

func kindForStatus(code int) string {
	switch code {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return kindInvalidInput
	case http.StatusUnauthorized:
		return kindUnauthenticated
	case http.StatusForbidden:
		return kindForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return kindNotFound
	case http.StatusConflict:
		return kindConflict
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if code >= 500 {
		return kindInternal
	}
	return "error"
}
