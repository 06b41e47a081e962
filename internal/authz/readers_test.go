package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solid-service/internal/auth"
	"solid-service/internal/identifier"
	apperrors "solid-service/pkg/errors"
)

// stubReader returns a fixed map, or fails, and records its inputs.
type stubReader struct {
	result     *PermissionMap
	handleErr  error
	declineErr error
	calls      []*AccessMap
}

func (r *stubReader) CanHandle(context.Context, ReadInput) error {
	return r.declineErr
}

func (r *stubReader) Handle(_ context.Context, input ReadInput) (*PermissionMap, error) {
	r.calls = append(r.calls, input.AccessMap)
	if r.handleErr != nil {
		return nil, r.handleErr
	}
	if r.result == nil {
		return NewPermissionMap(), nil
	}
	return r.result, nil
}

func publicCredentials() auth.CredentialSet {
	return auth.CredentialSet{auth.Public: &auth.Credential{}}
}

func singleEntryMap(path string, modes ...AccessMode) *AccessMap {
	accessMap := NewAccessMap()
	accessMap.Set(identifier.FromPath(path), NewModeSet(modes...))
	return accessMap
}

func TestAllStaticReaderAllow(t *testing.T) {
	reader := NewAllStaticReader(true)
	credentials := auth.CredentialSet{
		auth.Public: &auth.Credential{},
		auth.Agent:  &auth.Credential{WebID: "http://test.com/alice#me"},
	}

	accessMap := NewAccessMap()
	accessMap.Set(identifier.FromPath("http://test.com/a"), NewModeSet(Read))
	accessMap.Set(identifier.FromPath("http://test.com/b"), NewModeSet())

	result, err := ReadSafe(context.Background(), reader, ReadInput{Credentials: credentials, AccessMap: accessMap})
	require.NoError(t, err)

	require.Equal(t, 2, result.Len())
	setA, _ := result.Get(identifier.FromPath("http://test.com/a"))
	setB, _ := result.Get(identifier.FromPath("http://test.com/b"))

	for _, set := range []PermissionSet{setA, setB} {
		require.Contains(t, set, auth.Public)
		require.Contains(t, set, auth.Agent)
		for _, mode := range []AccessMode{Read, Append, Write, Create, Delete} {
			assert.True(t, set[auth.Public].Allows(mode))
		}
	}

	// The outer sets are fresh objects per identifier
	setA[auth.CredentialGroup("extra")] = Permission{}
	assert.NotContains(t, setB, auth.CredentialGroup("extra"))
}

func TestAllStaticReaderDeny(t *testing.T) {
	reader := NewAllStaticReader(false)

	result, err := ReadSafe(context.Background(), reader, ReadInput{
		Credentials: publicCredentials(),
		AccessMap:   singleEntryMap("http://test.com/a", Read),
	})
	require.NoError(t, err)

	set, _ := result.Get(identifier.FromPath("http://test.com/a"))
	assert.True(t, set[auth.Public].Denies(Read))
	assert.True(t, set[auth.Public].Denies(Delete))
}

func TestUnionPermissionReaderMerges(t *testing.T) {
	id := identifier.FromPath("http://test.com/foo")

	allowMap := NewPermissionMap()
	allowMap.Set(id, PermissionSet{auth.Public: Permission{Read: Allow, Write: Allow}})
	denyMap := NewPermissionMap()
	denyMap.Set(id, PermissionSet{auth.Public: Permission{Write: Deny}})

	reader := NewUnionPermissionReader(&stubReader{result: allowMap}, &stubReader{result: denyMap})
	result, err := ReadSafe(context.Background(), reader, ReadInput{
		Credentials: publicCredentials(),
		AccessMap:   singleEntryMap("http://test.com/foo", Read, Write),
	})
	require.NoError(t, err)

	set, ok := result.Get(id)
	require.True(t, ok)
	assert.Equal(t, Allow, set[auth.Public].Get(Read))
	assert.Equal(t, Deny, set[auth.Public].Get(Write), "one deny must absorb any number of allows")
}

func TestUnionPermissionReaderSkipsDecliningChildren(t *testing.T) {
	id := identifier.FromPath("http://test.com/foo")
	allowMap := NewPermissionMap()
	allowMap.Set(id, PermissionSet{auth.Public: Permission{Read: Allow}})

	declining := &stubReader{declineErr: apperrors.BadInput("not mine")}
	reader := NewUnionPermissionReader(declining, &stubReader{result: allowMap})

	result, err := ReadSafe(context.Background(), reader, ReadInput{
		Credentials: publicCredentials(),
		AccessMap:   singleEntryMap("http://test.com/foo", Read),
	})
	require.NoError(t, err)
	assert.Empty(t, declining.calls)

	set, _ := result.Get(id)
	assert.Equal(t, Allow, set[auth.Public].Get(Read))
}

func TestUnionPermissionReaderSurfacesFailure(t *testing.T) {
	boom := errors.New("store exploded")
	reader := NewUnionPermissionReader(&stubReader{}, &stubReader{handleErr: boom})

	_, err := ReadSafe(context.Background(), reader, ReadInput{
		Credentials: publicCredentials(),
		AccessMap:   singleEntryMap("http://test.com/foo", Read),
	})
	assert.ErrorIs(t, err, boom)
}

func TestUnionPermissionReaderDeclinesWhenAllChildrenDo(t *testing.T) {
	reader := NewUnionPermissionReader(&stubReader{declineErr: apperrors.BadInput("no")})

	err := reader.CanHandle(context.Background(), ReadInput{
		Credentials: publicCredentials(),
		AccessMap:   singleEntryMap("http://test.com/foo", Read),
	})
	assert.True(t, apperrors.IsBadInput(err))
}

func TestPathBasedReaderPartitions(t *testing.T) {
	docsID := identifier.FromPath("http://test.com/docs/readme")
	apiID := identifier.FromPath("http://test.com/api/status")
	otherID := identifier.FromPath("http://test.com/private/secret")

	docsResult := NewPermissionMap()
	docsResult.Set(docsID, PermissionSet{auth.Public: Permission{Read: Allow}})
	docsReader := &stubReader{result: docsResult}
	apiReader := &stubReader{}

	reader := NewPathBasedReader("http://test.com/", []PathReader{
		NewPathReader(`^/docs/`, docsReader),
		NewPathReader(`^/api/`, apiReader),
	})

	accessMap := NewAccessMap()
	accessMap.Set(docsID, NewModeSet(Read))
	accessMap.Set(apiID, NewModeSet(Read))
	accessMap.Set(otherID, NewModeSet(Read))

	result, err := ReadSafe(context.Background(), reader, ReadInput{Credentials: publicCredentials(), AccessMap: accessMap})
	require.NoError(t, err)

	// Each sub-reader saw only its partition
	require.Len(t, docsReader.calls, 1)
	assert.True(t, docsReader.calls[0].Has(docsID))
	assert.False(t, docsReader.calls[0].Has(apiID))
	require.Len(t, apiReader.calls, 1)
	assert.True(t, apiReader.calls[0].Has(apiID))

	// Unmatched identifiers are dropped without error
	assert.False(t, result.Has(otherID))
	assert.True(t, result.Has(docsID))
}

func TestPathBasedReaderFirstMatchWins(t *testing.T) {
	id := identifier.FromPath("http://test.com/docs/api/spec")
	first := &stubReader{}
	second := &stubReader{}

	reader := NewPathBasedReader("http://test.com/", []PathReader{
		NewPathReader(`^/docs/`, first),
		NewPathReader(`^/docs/api/`, second),
	})

	_, err := ReadSafe(context.Background(), reader, ReadInput{
		Credentials: publicCredentials(),
		AccessMap:   singleEntryMap(id.Path, Read),
	})
	require.NoError(t, err)
	assert.Len(t, first.calls, 1)
	assert.Empty(t, second.calls)
}
