package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mms-api/internal/handler"
	"github.com/noah-isme/mms-api/internal/middleware"
	"github.com/noah-isme/mms-api/internal/repository"
	"github.com/noah-isme/mms-api/internal/service"
	"github.com/noah-isme/mms-api/pkg/config"
	"github.com/noah-isme/mms-api/pkg/database"
	"github.com/noah-isme/mms-api/pkg/logger"
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	dictService := service.NewDictService(repository.NewDictRepository(db), logr)
	dictHandler := handler.NewDictHandler(dictService)
	metrics := service.NewMetricsService()

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

	dict := r.Group("/base/dict", middleware.RequireIdentity())
	{
		dict.GET("/types", dictHandler.ListTypes)
		dict.GET("/data/:typeCode", dictHandler.Data)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("base service starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("base service failed", "error", err)
	}
}
