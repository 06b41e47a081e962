package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(NotFound("missing"), ErrNotFound))
	assert.True(t, errors.Is(Forbidden("denied"), ErrForbidden))
	assert.True(t, errors.Is(Unauthorized("no token"), ErrUnauthorized))
	assert.True(t, errors.Is(BadInput("wrong shape"), ErrBadInput))
	assert.False(t, errors.Is(NotFound("missing"), ErrForbidden))
}

func TestInternalServerKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := InternalServer("error reading ACL for /foo", cause)

	assert.True(t, errors.Is(err, ErrInternalServer))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "error reading ACL for /foo")
}

func TestIsBadInput(t *testing.T) {
	assert.True(t, IsBadInput(BadInput("nope")))
	assert.True(t, IsBadInput(fmt.Errorf("wrapped: %w", BadInput("nope"))))
	assert.False(t, IsBadInput(Forbidden("denied")))
	assert.False(t, IsBadInput(nil))
}
