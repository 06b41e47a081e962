package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solid-service/internal/audit"
	"solid-service/internal/auth"
	"solid-service/internal/authz"
	"solid-service/internal/identifier"
	"solid-service/internal/storage"
	"solid-service/internal/storage/memory"
)

const (
	testBaseURL = "http://test.com/"
	testSecret  = "0123456789abcdef0123456789abcdef"
)

// fixedReader answers every query with the same permission set.
type fixedReader struct {
	set authz.PermissionSet
}

func (r *fixedReader) CanHandle(context.Context, authz.ReadInput) error {
	return nil
}

func (r *fixedReader) Handle(_ context.Context, input authz.ReadInput) (*authz.PermissionMap, error) {
	result := authz.NewPermissionMap()
	for _, id := range input.AccessMap.Identifiers() {
		result.Set(id, r.set.Clone())
	}
	return result, nil
}

func newFixture(t *testing.T, store *memory.Store, set authz.PermissionSet) (*echo.Echo, *ResourceHandler) {
	t.Helper()
	extractor := auth.NewBearerWebIDExtractor(auth.NewJWTService(testSecret, time.Hour))
	strategy := identifier.NewSingleRootStrategy(testBaseURL)

	authorizing := authz.NewAuthorizingHandler(
		extractor,
		authz.NewIntermediateModesExtractor(authz.NewMethodModesExtractor(store), store, strategy),
		&fixedReader{set: set},
		authz.NewPermissionBasedAuthorizer(),
		NewStorageOperationHandler(store, nil),
	)

	auditor := audit.NewRecorder()
	t.Cleanup(auditor.Close)

	e := echo.New()
	e.HTTPErrorHandler = CustomHTTPErrorHandler
	handler := NewResourceHandler(authorizing, extractor, testBaseURL, auditor)
	e.Any("/*", handler.Handle)
	return e, handler
}

func seedResource(t *testing.T, store *memory.Store, path, body string) {
	t.Helper()
	err := store.SetRepresentation(context.Background(), identifier.FromPath(path), storage.ContentTypeTurtle, strings.NewReader(body))
	require.NoError(t, err)
}

func TestResourceHandlerServesAuthorizedRead(t *testing.T) {
	store := memory.NewStore()
	seedResource(t, store, "http://test.com/foo", "<http://test.com/foo> a <http://example.org/Thing>.")

	e, _ := newFixture(t, store, authz.PermissionSet{
		auth.Public: authz.Permission{authz.Read: authz.Allow},
	})

	req := httptest.NewRequest(stdhttp.MethodGet, "/foo", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "example.org/Thing")
	assert.Contains(t, rec.Header().Get("WAC-Allow"), `public="read"`)
}

func TestResourceHandlerDeniesWithoutPermission(t *testing.T) {
	store := memory.NewStore()
	seedResource(t, store, "http://test.com/foo", "data")

	e, _ := newFixture(t, store, authz.PermissionSet{
		auth.Public: authz.Permission{},
	})

	req := httptest.NewRequest(stdhttp.MethodGet, "/foo", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("WAC-Allow"))
}

func TestResourceHandlerAuthorizedPut(t *testing.T) {
	store := memory.NewStore()

	e, _ := newFixture(t, store, authz.PermissionSet{
		auth.Public: authz.Permission{
			authz.Read:   authz.Allow,
			authz.Write:  authz.Allow,
			authz.Create: authz.Allow,
		},
	})

	req := httptest.NewRequest(stdhttp.MethodPut, "/docs/note", strings.NewReader("<a> <b> <c>."))
	req.Header.Set(echo.HeaderContentType, storage.ContentTypeTurtle)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusCreated, rec.Code)

	exists, err := store.HasResource(context.Background(), identifier.FromPath("http://test.com/docs/note"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestResourceHandlerDeleteRequiresPermission(t *testing.T) {
	store := memory.NewStore()
	seedResource(t, store, "http://test.com/foo", "data")

	e, _ := newFixture(t, store, authz.PermissionSet{
		auth.Public: authz.Permission{authz.Read: authz.Allow},
	})

	req := httptest.NewRequest(stdhttp.MethodDelete, "/foo", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusForbidden, rec.Code)

	exists, err := store.HasResource(context.Background(), identifier.FromPath("http://test.com/foo"))
	require.NoError(t, err)
	assert.True(t, exists, "a denied delete must not touch the store")
}

func TestResourceHandlerWACAllowMergesAgent(t *testing.T) {
	store := memory.NewStore()
	seedResource(t, store, "http://test.com/foo", "data")

	jwtService := auth.NewJWTService(testSecret, time.Hour)
	token, err := jwtService.Generate("http://test.com/alice#me")
	require.NoError(t, err)

	e, _ := newFixture(t, store, authz.PermissionSet{
		auth.Public: authz.Permission{authz.Read: authz.Allow},
		auth.Agent:  authz.Permission{authz.Read: authz.Allow, authz.Write: authz.Allow},
	})

	req := httptest.NewRequest(stdhttp.MethodGet, "/foo", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	header := rec.Header().Get("WAC-Allow")
	assert.Contains(t, header, `user="read write"`)
	assert.Contains(t, header, `public="read"`)
}

func TestResourceHandlerRejectsInvalidToken(t *testing.T) {
	store := memory.NewStore()
	seedResource(t, store, "http://test.com/foo", "data")

	e, _ := newFixture(t, store, authz.PermissionSet{
		auth.Public: authz.Permission{authz.Read: authz.Allow},
	})

	req := httptest.NewRequest(stdhttp.MethodGet, "/foo", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
}
