package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/qubehealth/appointments-api/internal/api/handler"
	"github.com/qubehealth/appointments-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
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
	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Error: "validation failed", Details: ve.Details}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrPatientNotFound),
		errors.Is(err, domain.ErrStaffNotFound),
		errors.Is(err, domain.ErrMeetingNotFound):
		return http.StatusNotFound, errorResponse{Error: rootMessage(err)}
	case errors.Is(err, domain.ErrInvalidReference):
		return http.StatusBadRequest, errorResponse{Error: domain.ErrInvalidReference.Error()}
	case errors.Is(err, domain.ErrSlotTaken):
		return http.StatusConflict, errorResponse{Error: domain.ErrSlotTaken.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

// rootMessage returns the sentinel's text without the wrapping context, so
// clients see "patient not found" rather than "get patient 3: patient not found".
func rootMessage(err error) string {
	for _, sentinel := range []error{domain.ErrPatientNotFound, domain.ErrStaffNotFound, domain.ErrMeetingNotFound} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
