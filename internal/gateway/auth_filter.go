package gateway

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mms-api/internal/service"
	"github.com/noah-isme/mms-api/internal/token"
	appErrors "github.com/noah-isme/mms-api/pkg/errors"
	"github.com/noah-isme/mms-api/pkg/response"
)

// AuthFilter guards every non-whitelisted path at the edge. It validates the
// bearer access token once and stamps the verified identity onto the outbound
// request, so downstream services never touch the signature again.
func AuthFilter(tokens *service.TokenValidator, whitelist *Whitelist, metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Client-supplied identity headers are never trusted, whitelisted
		// path or not.
		c.Request.Header.Del(HeaderUserName)
		c.Request.Header.Del(HeaderTokenJTI)
		c.Request.Header.Del(HeaderTokenExp)

		if whitelist.Match(c.Request.URL.Path) {
			c.Next()
			return
		}

		bearer, ok := extractBearer(c.GetHeader("Authorization"))
		if !ok {
			observe(metrics, appErrors.ErrTokenMissing.Code)
			response.Error(c, appErrors.ErrTokenMissing)
			c.Abort()
			return
		}

		claims, err := tokens.Validate(c.Request.Context(), bearer, token.TypeAccess)
		if err != nil {
			observe(metrics, appErrors.FromError(err).Code)
			response.Error(c, err)
			c.Abort()
			return
		}

		observe(metrics, "ok")

		c.Request.Header.Set(HeaderUserName, claims.Subject())
		c.Request.Header.Set(HeaderTokenJTI, claims.ID)
		c.Request.Header.Set(HeaderTokenExp, strconv.FormatInt(claims.ExpiresAtMillis(), 10))

		c.Next()
	}
}

func extractBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	bearer := strings.TrimSpace(parts[1])
	return bearer, bearer != ""
}

func observe(metrics *service.MetricsService, result string) {
	if metrics != nil {
		metrics.ObserveTokenValidation(result)
	}
}
