package authz

import (
	"context"
	"net/http"

	"solid-service/internal/auth"
)

// OperationResult is the outcome of an executed operation.
type OperationResult struct {
	Status      int
	ContentType string
	Body        []byte
}

// OperationHandler executes an operation after it has been authorized.
type OperationHandler interface {
	Handle(ctx context.Context, operation *Operation) (*OperationResult, error)
}

// AuthorizingHandler runs the full authorization pipeline for one
// request: extract credentials, extract required modes, read
// permissions, authorize, then delegate to the operation handler. Any
// step failing stops the pipeline; the operation handler only ever
// sees authorized operations.
type AuthorizingHandler struct {
	credentials auth.CredentialsExtractor
	modes       ModesExtractor
	reader      PermissionReader
	authorizer  Authorizer
	operations  OperationHandler
}

func NewAuthorizingHandler(
	credentials auth.CredentialsExtractor,
	modes ModesExtractor,
	reader PermissionReader,
	authorizer Authorizer,
	operations OperationHandler,
) *AuthorizingHandler {
	return &AuthorizingHandler{
		credentials: credentials,
		modes:       modes,
		reader:      reader,
		authorizer:  authorizer,
		operations:  operations,
	}
}

func (h *AuthorizingHandler) Handle(ctx context.Context, req *http.Request, operation *Operation) (*OperationResult, error) {
	credentials, err := h.credentials.Extract(req)
	if err != nil {
		return nil, err
	}

	accessMap, err := h.modes.Extract(ctx, operation)
	if err != nil {
		return nil, err
	}

	permissionMap, err := ReadSafe(ctx, h.reader, ReadInput{Credentials: credentials, AccessMap: accessMap})
	if err != nil {
		return nil, err
	}

	if err := h.authorizer.Authorize(ctx, AuthorizerInput{
		Credentials:   credentials,
		AccessMap:     accessMap,
		PermissionMap: permissionMap,
	}); err != nil {
		return nil, err
	}

	operation.PermissionMap = permissionMap
	return h.operations.Handle(ctx, operation)
}
