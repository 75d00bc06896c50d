package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mms-api/internal/gateway"
	"github.com/noah-isme/mms-api/internal/middleware"
	"github.com/noah-isme/mms-api/internal/service"
	"github.com/noah-isme/mms-api/internal/store"
	"github.com/noah-isme/mms-api/internal/token"
	"github.com/noah-isme/mms-api/pkg/cache"
	"github.com/noah-isme/mms-api/pkg/config"
	"github.com/noah-isme/mms-api/pkg/logger"
	clientipmiddleware "github.com/noah-isme/mms-api/pkg/middleware/clientip"
	corsmiddleware "github.com/noah-isme/mms-api/pkg/middleware/cors"
	traceidmiddleware "github.com/noah-isme/mms-api/pkg/middleware/traceid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	revocations := store.NewRevocationStore(redisClient, cfg.Store.Timeout)
	codec := token.NewCodec(cfg.JWT.Secret)
	validator := service.NewTokenValidator(codec, revocations)
	metrics := service.NewMetricsService()

	proxy, err := gateway.NewProxy(cfg.Gateway, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to build proxy", "error", err)
	}

	whitelist := gateway.NewWhitelist(cfg.Gateway.Whitelist)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(traceidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(clientipmiddleware.Middleware())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(gateway.AuthFilter(validator, whitelist, metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.NoRoute(proxy.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("gateway starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("gateway failed", "error", err)
	}
}
