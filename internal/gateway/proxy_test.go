package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mms-api/pkg/config"
)

func newProxyRouter(t *testing.T, cfg config.GatewayConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	proxy, err := NewProxy(cfg, nil)
	require.NoError(t, err)

	r := gin.New()
	r.NoRoute(proxy.Handler())
	return r
}

func TestProxyRoutesByPrefix(t *testing.T) {
	usercenter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream", "usercenter")
		w.WriteHeader(http.StatusOK)
	}))
	defer usercenter.Close()
	base := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream", "base")
		w.WriteHeader(http.StatusOK)
	}))
	defer base.Close()

	r := newProxyRouter(t, config.GatewayConfig{
		UsercenterURL:   usercenter.URL,
		BaseURL:         base.URL,
		UpstreamTimeout: 5 * time.Second,
	})

	// httptest requests carry a non-cancellable context, which makes
	// ReverseProxy fall back to http.CloseNotifier — unimplemented by the
	// recorder. A cancellable context matches real server requests.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/usercenter/auth/login", nil).WithContext(ctx))
	assert.Equal(t, "usercenter", rec.Header().Get("X-Upstream"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/base/dict/types", nil).WithContext(ctx))
	assert.Equal(t, "base", rec.Header().Get("X-Upstream"))
}

func TestProxyForwardsIdentityHeaders(t *testing.T) {
	var gotUser, gotJTI string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get(HeaderUserName)
		gotJTI = r.Header.Get(HeaderTokenJTI)
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	r := newProxyRouter(t, config.GatewayConfig{
		UsercenterURL:   upstream.URL,
		BaseURL:         upstream.URL,
		UpstreamTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/usercenter/auth/me", nil).WithContext(ctx)
	req.Header.Set(HeaderUserName, "alice")
	req.Header.Set(HeaderTokenJTI, "jti-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "jti-1", gotJTI)
}

func TestProxyUnknownPrefix(t *testing.T) {
	r := newProxyRouter(t, config.GatewayConfig{
		UsercenterURL:   "http://localhost:0",
		BaseURL:         "http://localhost:0",
		UpstreamTimeout: time.Second,
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknown/path", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProxyUpstreamUnavailable(t *testing.T) {
	// Closed server: connections are refused immediately.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	r := newProxyRouter(t, config.GatewayConfig{
		UsercenterURL:   dead.URL,
		BaseURL:         dead.URL,
		UpstreamTimeout: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/base/dict/types", nil).WithContext(ctx))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", envelope.Error.Code)
}
