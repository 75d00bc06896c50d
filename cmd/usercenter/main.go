package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/mms-api/api/swagger"
	"github.com/noah-isme/mms-api/internal/audit"
	"github.com/noah-isme/mms-api/internal/handler"
	"github.com/noah-isme/mms-api/internal/middleware"
	"github.com/noah-isme/mms-api/internal/repository"
	"github.com/noah-isme/mms-api/internal/service"
	"github.com/noah-isme/mms-api/internal/store"
	"github.com/noah-isme/mms-api/internal/token"
	"github.com/noah-isme/mms-api/pkg/cache"
	"github.com/noah-isme/mms-api/pkg/config"
	"github.com/noah-isme/mms-api/pkg/database"
	"github.com/noah-isme/mms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/mms-api/pkg/middleware/cors"
	traceidmiddleware "github.com/noah-isme/mms-api/pkg/middleware/traceid"
)

// @title MMS User Center
// @version 0.1.0
// @description Authentication and account endpoints behind the MMS gateway
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	users := repository.NewUserRepository(db, cfg.Store.Timeout)
	revocations := store.NewRevocationStore(redisClient, cfg.Store.Timeout)
	sessions := store.NewSessionStore(redisClient, cfg.Store.Timeout)
	throttle := store.NewLoginThrottle(redisClient, cfg.Store.Timeout, cfg.LoginSecurity.AttemptWindow)

	codec := token.NewCodec(cfg.JWT.Secret)
	tokenValidator := service.NewTokenValidator(codec, revocations)
	metrics := service.NewMetricsService()

	authService := service.NewAuthService(
		users, revocations, sessions, throttle,
		codec, tokenValidator, validator.New(), logr,
		service.AuthConfig{
			AccessTokenExpiry:  cfg.JWT.AccessExpiration,
			RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
			MaxLoginAttempts:   cfg.LoginSecurity.MaxAttempts,
			LockDuration:       cfg.LoginSecurity.LockDuration,
		},
	)

	recorder := audit.NewRecorder(repository.NewLoginAuditRepository(db), audit.RecorderConfig{
		Workers: 2,
		Logger:  logr,
	})
	recorder.Start(context.Background())
	defer recorder.Stop()

	authHandler := handler.NewAuthHandler(authService, metrics, recorder)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(traceidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.Identity())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := r.Group("/usercenter/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", middleware.RequireIdentity(), authHandler.Me)
		auth.POST("/unlock/:username", middleware.RequireIdentity(), authHandler.Unlock)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("usercenter starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("usercenter failed", "error", err)
	}
}
