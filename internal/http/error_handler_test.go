package http

import (
	"errors"
	"net/http/httptest"
	"testing"

	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	apperrors "solid-service/pkg/errors"
)

func serveError(err error) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	CustomHTTPErrorHandler(err, c)
	return rec
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperrors.NotFound("gone"), stdhttp.StatusNotFound},
		{apperrors.Unauthorized("no token"), stdhttp.StatusUnauthorized},
		{apperrors.Forbidden("denied"), stdhttp.StatusForbidden},
		{apperrors.BadRequest("nope"), stdhttp.StatusBadRequest},
		{apperrors.BadInput("declined"), stdhttp.StatusBadRequest},
		{apperrors.MethodNotAllowed("TRACE"), stdhttp.StatusMethodNotAllowed},
		{apperrors.Conflict("exists"), stdhttp.StatusConflict},
		{apperrors.InternalServer("broke", errors.New("cause")), stdhttp.StatusInternalServerError},
		{errors.New("anonymous failure"), stdhttp.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := serveError(tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestErrorHandlerHidesInternalDetails(t *testing.T) {
	rec := serveError(apperrors.InternalServer("error reading ACL for /foo", errors.New("pg: connection refused")))

	assert.Equal(t, stdhttp.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestErrorHandlerSetsWWWAuthenticate(t *testing.T) {
	rec := serveError(apperrors.Unauthorized("expired"))
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
}

func TestErrorHandlerKeepsEchoErrors(t *testing.T) {
	rec := serveError(echo.NewHTTPError(stdhttp.StatusTeapot, "short and stout"))
	assert.Equal(t, stdhttp.StatusTeapot, rec.Code)
}
