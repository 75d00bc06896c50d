package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mms-api/internal/gateway"
	"github.com/noah-isme/mms-api/internal/models"
)

func newIdentityRouter(requireAuth bool) (*gin.Engine, *struct {
	fromGin *models.UserIdentity
	fromCtx *models.UserIdentity
}) {
	gin.SetMode(gin.TestMode)

	captured := &struct {
		fromGin *models.UserIdentity
		fromCtx *models.UserIdentity
	}{}

	r := gin.New()
	r.Use(Identity())
	handlers := []gin.HandlerFunc{}
	if requireAuth {
		handlers = append(handlers, RequireIdentity())
	}
	handlers = append(handlers, func(c *gin.Context) {
		captured.fromGin = IdentityFrom(c)
		captured.fromCtx = IdentityFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	r.GET("/resource", handlers...)
	return r, captured
}

func TestIdentityFromGatewayHeaders(t *testing.T) {
	r, captured := newIdentityRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set(gateway.HeaderUserName, "alice")
	req.Header.Set(gateway.HeaderTokenJTI, "jti-1")
	req.Header.Set(gateway.HeaderTokenExp, "1750000000000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured.fromGin)
	assert.Equal(t, "alice", captured.fromGin.Username)
	assert.Equal(t, "jti-1", captured.fromGin.TokenID)
	assert.Equal(t, int64(1750000000000), captured.fromGin.ExpiresAtMillis)

	// The identity also travels on the plain request context.
	require.NotNil(t, captured.fromCtx)
	assert.Equal(t, captured.fromGin, captured.fromCtx)
}

func TestIdentityAbsentHeadersPassUnauthenticated(t *testing.T) {
	r, captured := newIdentityRouter(false)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resource", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, captured.fromGin)
	assert.Nil(t, captured.fromCtx)
}

func TestRequireIdentityRejectsAnonymous(t *testing.T) {
	r, _ := newIdentityRouter(true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resource", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireIdentityAllowsPropagatedIdentity(t *testing.T) {
	r, captured := newIdentityRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set(gateway.HeaderUserName, "bob")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured.fromGin)
	assert.Equal(t, "bob", captured.fromGin.Username)
}

func TestIdentityMalformedExpiryDefaultsToZero(t *testing.T) {
	r, captured := newIdentityRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set(gateway.HeaderUserName, "alice")
	req.Header.Set(gateway.HeaderTokenExp, "not-a-number")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured.fromGin)
	assert.Zero(t, captured.fromGin.ExpiresAtMillis)
}
