package http

import (
	"errors"
	"fmt"
	stdhttp "net/http"

	"github.com/labstack/echo/v4"

	apperrors "solid-service/pkg/errors"
	"solid-service/pkg/logger"
)

// CustomHTTPErrorHandler handles all errors returned by handlers and
// middleware. It maps sentinel errors to HTTP status codes, keeps
// internal causes out of responses, and logs with request context.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := stdhttp.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	} else {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			code = stdhttp.StatusNotFound
			message = "Resource not found"
		case errors.Is(err, apperrors.ErrUnauthorized):
			code = stdhttp.StatusUnauthorized
			message = "Unauthorized"
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			code = stdhttp.StatusUnauthorized
			message = "Invalid credentials"
		case errors.Is(err, apperrors.ErrForbidden):
			code = stdhttp.StatusForbidden
			message = "Forbidden"
		case errors.Is(err, apperrors.ErrBadRequest), errors.Is(err, apperrors.ErrBadInput):
			code = stdhttp.StatusBadRequest
			message = "Bad request"
		case errors.Is(err, apperrors.ErrMethodNotAllowed):
			code = stdhttp.StatusMethodNotAllowed
			message = "Method not allowed"
		case errors.Is(err, apperrors.ErrConflict):
			code = stdhttp.StatusConflict
			message = "Resource already exists"
		}
	}

	if code == stdhttp.StatusUnauthorized {
		c.Response().Header().Set("WWW-Authenticate", `Bearer realm="solid-service"`)
	}
	if code >= stdhttp.StatusInternalServerError {
		c.Logger().Errorf("request failed: %s", logger.SanitizeLogMessage(err.Error()))
	}

	if writeErr := c.JSON(code, map[string]string{"error": message}); writeErr != nil {
		c.Logger().Errorf("failed to write error response: %v", writeErr)
	}
}
