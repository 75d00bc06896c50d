package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/mms-api/pkg/config"
	appErrors "github.com/noah-isme/mms-api/pkg/errors"
	"github.com/noah-isme/mms-api/pkg/middleware/traceid"
	"github.com/noah-isme/mms-api/pkg/response"
)

type route struct {
	prefix string
	proxy  *httputil.ReverseProxy
}

// Proxy forwards authenticated requests to the downstream service owning the
// path prefix. The identity headers set by AuthFilter travel with the
// forwarded request.
type Proxy struct {
	routes []route
	logger *zap.Logger
}

// NewProxy builds the route table from the gateway configuration.
func NewProxy(cfg config.GatewayConfig, logger *zap.Logger) (*Proxy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Proxy{logger: logger}

	for prefix, raw := range map[string]string{
		"/usercenter": cfg.UsercenterURL,
		"/base":       cfg.BaseURL,
	} {
		target, err := url.Parse(raw)
		if err != nil {
			return nil, err
		}

		rp := httputil.NewSingleHostReverseProxy(target)
		rp.Transport = &http.Transport{ResponseHeaderTimeout: cfg.UpstreamTimeout}
		rp.ErrorHandler = p.upstreamError

		p.routes = append(p.routes, route{prefix: prefix, proxy: rp})
	}

	return p, nil
}

// Handler dispatches the request to the matching upstream or rejects it.
func (p *Proxy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, r := range p.routes {
			if hasPrefix(c.Request.URL.Path, r.prefix) {
				r.proxy.ServeHTTP(c.Writer, c.Request)
				return
			}
		}

		response.Error(c, appErrors.ErrNotFound)
	}
}

func (p *Proxy) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error("upstream request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)

	envelope := response.Envelope{
		Error:   appErrors.New("UPSTREAM_UNAVAILABLE", http.StatusBadGateway, "downstream service unavailable"),
		TraceID: r.Header.Get(traceid.Header),
	}
	_ = json.NewEncoder(w).Encode(envelope)
}

func hasPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
