package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhitelistMatch(t *testing.T) {
	w := NewWhitelist([]string{
		"/usercenter/auth/login",
		"/usercenter/auth/refresh",
		"/health",
		"/docs/**",
		"/static/*.css",
	})

	cases := []struct {
		path string
		want bool
	}{
		{"/usercenter/auth/login", true},
		{"/usercenter/auth/refresh", true},
		{"/usercenter/auth/logout", false},
		{"/usercenter/auth/login/extra", false},
		{"/health", true},
		{"/healthz", false},
		{"/docs", true},
		{"/docs/index.html", true},
		{"/docs/swagger/doc.json", true},
		{"/docsy", false},
		{"/static/site.css", true},
		{"/static/deep/site.css", false},
		{"/base/dict/types", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.want, w.Match(tc.path), "path %q", tc.path)
	}
}

func TestWhitelistEmpty(t *testing.T) {
	w := NewWhitelist(nil)
	assert.False(t, w.Match("/anything"))
}
