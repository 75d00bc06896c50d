package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorPassesThroughTypedErrors(t *testing.T) {
	err := fmt.Errorf("handler: %w", ErrTokenExpired)

	appErr := FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrTokenExpired.Code, appErr.Code)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(stderrors.New("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestIsComparesByCode(t *testing.T) {
	assert.True(t, Is(ErrTokenRevoked, ErrTokenRevoked))
	assert.True(t, Is(Clone(ErrTokenRevoked, "custom message"), ErrTokenRevoked))
	assert.True(t, Is(fmt.Errorf("wrapped: %w", ErrTokenRevoked), ErrTokenRevoked))
	assert.False(t, Is(ErrTokenExpired, ErrTokenRevoked))
	assert.False(t, Is(stderrors.New("plain"), ErrTokenRevoked))
}

func TestCloneOverridesMessageOnly(t *testing.T) {
	clone := Clone(ErrAccountLocked, "locked for 30 minutes")
	assert.Equal(t, ErrAccountLocked.Code, clone.Code)
	assert.Equal(t, ErrAccountLocked.Status, clone.Status)
	assert.Equal(t, "locked for 30 minutes", clone.Message)
	// The shared sentinel is untouched.
	assert.NotEqual(t, clone.Message, ErrAccountLocked.Message)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("redis down")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "lookup failed")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "lookup failed")
}
