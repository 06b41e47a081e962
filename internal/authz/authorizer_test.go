package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"solid-service/internal/auth"
	"solid-service/internal/identifier"
	apperrors "solid-service/pkg/errors"
)

func TestAuthorizerAllows(t *testing.T) {
	id := identifier.FromPath("http://test.com/foo")
	permissionMap := NewPermissionMap()
	permissionMap.Set(id, PermissionSet{auth.Public: Permission{Read: Allow}})

	err := NewPermissionBasedAuthorizer().Authorize(context.Background(), AuthorizerInput{
		Credentials:   publicCredentials(),
		AccessMap:     singleEntryMap(id.Path, Read),
		PermissionMap: permissionMap,
	})
	assert.NoError(t, err)
}

func TestAuthorizerDeniesWithoutGrant(t *testing.T) {
	id := identifier.FromPath("http://test.com/foo")
	permissionMap := NewPermissionMap()
	permissionMap.Set(id, PermissionSet{auth.Public: Permission{}})

	err := NewPermissionBasedAuthorizer().Authorize(context.Background(), AuthorizerInput{
		Credentials:   publicCredentials(),
		AccessMap:     singleEntryMap(id.Path, Read),
		PermissionMap: permissionMap,
	})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestAuthorizerDenyOverridesAllow(t *testing.T) {
	id := identifier.FromPath("http://test.com/foo")
	permissionMap := NewPermissionMap()
	permissionMap.Set(id, PermissionSet{
		auth.Public: Permission{Read: Allow},
		auth.Agent:  Permission{Read: Deny},
	})

	err := NewPermissionBasedAuthorizer().Authorize(context.Background(), AuthorizerInput{
		Credentials:   publicCredentials(),
		AccessMap:     singleEntryMap(id.Path, Read),
		PermissionMap: permissionMap,
	})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestAuthorizerAnyGroupSuffices(t *testing.T) {
	id := identifier.FromPath("http://test.com/foo")
	permissionMap := NewPermissionMap()
	permissionMap.Set(id, PermissionSet{
		auth.Public: Permission{},
		auth.Agent:  Permission{Read: Allow, Write: Allow},
	})

	err := NewPermissionBasedAuthorizer().Authorize(context.Background(), AuthorizerInput{
		Credentials:   publicCredentials(),
		AccessMap:     singleEntryMap(id.Path, Read, Write),
		PermissionMap: permissionMap,
	})
	assert.NoError(t, err)
}

func TestAuthorizerMissingIdentifierIsDenied(t *testing.T) {
	err := NewPermissionBasedAuthorizer().Authorize(context.Background(), AuthorizerInput{
		Credentials:   publicCredentials(),
		AccessMap:     singleEntryMap("http://test.com/foo", Read),
		PermissionMap: NewPermissionMap(),
	})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestAuthorizerEmptyModeSetPasses(t *testing.T) {
	err := NewPermissionBasedAuthorizer().Authorize(context.Background(), AuthorizerInput{
		Credentials:   publicCredentials(),
		AccessMap:     singleEntryMap("http://test.com/foo"),
		PermissionMap: NewPermissionMap(),
	})
	assert.NoError(t, err)
}
