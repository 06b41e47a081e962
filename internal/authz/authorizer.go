package authz

import (
	"context"
	"fmt"

	"solid-service/internal/auth"
	apperrors "solid-service/pkg/errors"
)

// AuthorizerInput pairs the required modes with the permissions the
// readers granted.
type AuthorizerInput struct {
	Credentials   auth.CredentialSet
	AccessMap     *AccessMap
	PermissionMap *PermissionMap
}

// Authorizer decides whether the granted permissions cover the required
// modes. It produces no value beyond success or a forbidden error.
type Authorizer interface {
	Authorize(ctx context.Context, input AuthorizerInput) error
}

// PermissionBasedAuthorizer requires, per resource and mode, that at
// least one credential group grants the mode and none denies it.
type PermissionBasedAuthorizer struct{}

func NewPermissionBasedAuthorizer() *PermissionBasedAuthorizer {
	return &PermissionBasedAuthorizer{}
}

func (a *PermissionBasedAuthorizer) Authorize(_ context.Context, input AuthorizerInput) error {
	granted := input.PermissionMap
	if granted == nil {
		granted = NewPermissionMap()
	}
	for _, entry := range input.AccessMap.Entries() {
		available, _ := granted.Get(entry.Identifier)
		for _, mode := range entry.Value.Sorted() {
			allowed := false
			for _, permission := range available {
				switch permission.Get(mode) {
				case Deny:
					return apperrors.Forbidden(fmt.Sprintf("%s access denied for %s", mode, entry.Identifier.Path))
				case Allow:
					allowed = true
				}
			}
			if !allowed {
				return apperrors.Forbidden(fmt.Sprintf("no permission for %s access to %s", mode, entry.Identifier.Path))
			}
		}
	}
	return nil
}
