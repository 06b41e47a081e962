package http

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
)

// TagRequestID assigns every request an identifier and echoes it back
// in the response. The identifier's one consumer is the audit trail:
// it lets a logged authorization verdict be correlated with the
// transport exchange that triggered it.
func TagRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			c.Set(requestIDContextKey, requestID)
			c.Response().Header().Set(requestIDHeader, requestID)

			return next(c)
		}
	}
}

// requestIDOf returns the identifier TagRequestID stored, or an empty
// string for requests that bypassed the middleware (tests, internal
// calls).
func requestIDOf(c echo.Context) string {
	if requestID, ok := c.Get(requestIDContextKey).(string); ok {
		return requestID
	}
	return ""
}
