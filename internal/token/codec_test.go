package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/mms-api/pkg/errors"
)

func TestCodecIssueAndParse(t *testing.T) {
	codec := NewCodec("secret")

	issued, err := codec.Issue("alice", TypeAccess, 15*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Signed)
	assert.NotEmpty(t, issued.JTI)

	claims, err := codec.Parse(issued.Signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject())
	assert.Equal(t, TypeAccess, claims.TokenType)
	assert.Equal(t, issued.JTI, claims.ID)
	assert.Equal(t, issued.ExpiresAt.UnixMilli(), claims.ExpiresAtMillis())
}

func TestCodecUniqueJTI(t *testing.T) {
	codec := NewCodec("secret")

	first, err := codec.Issue("alice", TypeRefresh, time.Hour)
	require.NoError(t, err)
	second, err := codec.Issue("alice", TypeRefresh, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first.JTI, second.JTI)
	assert.NotEqual(t, first.Signed, second.Signed)
}

func TestCodecParseWrongSecret(t *testing.T) {
	issued, err := NewCodec("secret").Issue("alice", TypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = NewCodec("other").Parse(issued.Signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenMalformed.Code, appErrors.FromError(err).Code)
}

func TestCodecParseGarbage(t *testing.T) {
	_, err := NewCodec("secret").Parse("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenMalformed.Code, appErrors.FromError(err).Code)
}

func TestCodecParseExpiredToken(t *testing.T) {
	codec := NewCodec("secret")
	issued, err := codec.Issue("alice", TypeAccess, -time.Minute)
	require.NoError(t, err)

	// Expiry is the validator's concern; an expired token still parses.
	claims, err := codec.Parse(issued.Signed)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Time.Before(time.Now()))
}
