package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger writes one structured access line per request.  The trace
// id is taken from the OpenTelemetry span context when a tracer upstream
// set one; the request id comes from echo's RequestID middleware.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now().UTC()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"route", c.Path(),
				"status", c.Response().Status,
				"latency", time.Since(start),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
			}
			if sc := trace.SpanContextFromContext(req.Context()); sc.IsValid() {
				attrs = append(attrs, "trace_id", sc.TraceID().String())
			}
			if r := RequesterFrom(c); r.Authenticated() {
				attrs = append(attrs, "user_id", *r.UserID)
			}

			switch status := c.Response().Status; {
			case status >= 500:
				log.Error("access", attrs...)
			case status >= 400:
				log.Warn("access", attrs...)
			default:
				log.Info("access", attrs...)
			}
			return nil
		}
	}
}

// NewRequestID generates request ids for echo's RequestID middleware.
func NewRequestID() string { return uuid.NewString() }
