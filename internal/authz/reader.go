package authz

import (
	"context"

	"solid-service/internal/auth"
)

// ReadInput is the request a PermissionReader answers: which modes the
// given credentials need on which resources. Readers must not mutate
// the access map; transforms build new maps.
type ReadInput struct {
	Credentials auth.CredentialSet
	AccessMap   *AccessMap
}

// PermissionReader determines the permissions the credentials have on
// the resources of the access map. A reader may return an incomplete
// map; resources it stays silent on have no permission downstream.
//
// CanHandle returns a pkg/errors.BadInput error when the reader
// declines the input; the caller is expected to try another reader.
// Handle assumes a successful CanHandle.
type PermissionReader interface {
	CanHandle(ctx context.Context, input ReadInput) error
	Handle(ctx context.Context, input ReadInput) (*PermissionMap, error)
}

// ReadSafe runs CanHandle and Handle in sequence.
func ReadSafe(ctx context.Context, reader PermissionReader, input ReadInput) (*PermissionMap, error) {
	if err := reader.CanHandle(ctx, input); err != nil {
		return nil, err
	}
	return reader.Handle(ctx, input)
}
