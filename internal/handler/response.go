package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-booking/internal/service"
)

// envelope is the shape of every JSON response of the booking API.
type envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
	Status  int            `json:"status,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func fail(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, envelope{Error: msg, Code: code, Status: status})
}

// statusFor maps domain error codes onto HTTP statuses.
func statusFor(code service.Code) int {
	switch code {
	case service.CodeRoomNotFound, service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusUnprocessableEntity
	}
}

// writeError renders err.  Domain errors keep their code and message;
// anything else is logged and reported as a generic 500.
func writeError(c echo.Context, log *slog.Logger, err error) error {
	var se *service.Error
	if errors.As(err, &se) {
		status := statusFor(se.Code)
		return c.JSON(status, envelope{
			Error:   se.Message,
			Code:    string(se.Code),
			Status:  status,
			Details: se.Details,
		})
	}
	log.Error("request failed", "method", c.Request().Method, "path", c.Path(),
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID), "error", err)
	return fail(c, http.StatusInternalServerError, "internal", "internal server error")
}
