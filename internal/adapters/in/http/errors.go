package http

import (
	"errors"
	"net/http"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/ports"
	"marketplace/internal/generated/servers"
	"marketplace/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// classify maps an application error to its HTTP status and error code.
// Anything unrecognised is an internal error.
func classify(err error) (int, servers.ErrorResponseCode) {
	var httpErr *echo.HTTPError
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, servers.NotFound
	case errors.Is(err, delivery.ErrInvalidTransition):
		return http.StatusConflict, servers.InvalidTransition
	case errors.Is(err, delivery.ErrForbidden):
		return http.StatusForbidden, servers.Forbidden
	case errs.IsValidationError(err), errors.Is(err, ports.ErrIdempotencyKeyReused):
		return http.StatusUnprocessableEntity, servers.ValidationFailed
	case errors.Is(err, errs.ErrObjectConflict), errors.Is(err, ports.ErrIdempotencyKeyInFlight):
		return http.StatusConflict, servers.Conflict
	case errors.As(err, &httpErr):
		return classifyStatus(httpErr.Code)
	default:
		return http.StatusInternalServerError, servers.Internal
	}
}

func classifyStatus(status int) (int, servers.ErrorResponseCode) {
	switch {
	case status == http.StatusNotFound:
		return status, servers.NotFound
	case status == http.StatusForbidden:
		return status, servers.Forbidden
	case status == http.StatusConflict:
		return status, servers.Conflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return http.StatusUnprocessableEntity, servers.ValidationFailed
	case status < http.StatusInternalServerError:
		return status, servers.ValidationFailed
	default:
		return status, servers.Internal
	}
}

var errorMessages = map[servers.ErrorResponseCode]string{
	servers.NotFound:          "The requested resource does not exist",
	servers.InvalidTransition: "The delivery cannot take this transition from its current status",
	servers.Forbidden:         "The actor is not allowed to perform this action",
	servers.ValidationFailed:  "The request is invalid",
	servers.Conflict:          "The request conflicts with the current state",
	servers.Internal:          "Something went wrong, please retry later",
}

func writeError(c echo.Context, err error) error {
	status, code := classify(err)

	detail := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			detail = msg
		}
	}
	if code == servers.Internal {
		detail = http.StatusText(status)
	}

	return c.JSON(status, servers.ErrorResponse{
		Success: false,
		Code:    code,
		Error:   detail,
		Message: errorMessages[code],
	})
}

// ErrorHandler renders errors that escape the handlers, such as unknown
// routes or malformed parameters, in the same envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if writeErr := writeError(c, err); writeErr != nil {
		c.Logger().Error(writeErr)
	}
}
