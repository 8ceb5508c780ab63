package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/studyflow-api/api/swagger"
	"github.com/noah-isme/studyflow-api/internal/handler"
	"github.com/noah-isme/studyflow-api/internal/middleware"
	"github.com/noah-isme/studyflow-api/internal/planner"
	"github.com/noah-isme/studyflow-api/internal/repository"
	"github.com/noah-isme/studyflow-api/internal/service"
	"github.com/noah-isme/studyflow-api/pkg/cache"
	"github.com/noah-isme/studyflow-api/pkg/config"
	"github.com/noah-isme/studyflow-api/pkg/database"
	"github.com/noah-isme/studyflow-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/studyflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/studyflow-api/pkg/middleware/requestid"
)

// @title StudyFlow API
// @version 1.0.0
// @description Adaptive study planning service
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	eventRepo := repository.NewEventRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	planRepo := repository.NewPlanRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Planner.CacheTTL, logr, cfg.Planner.CacheEnabled)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "studyflow-api",
		Audience:           []string{"studyflow"},
	})

	engine := planner.New(planner.Config{HorizonDays: cfg.Planner.HorizonDays}, logr)
	planSvc := service.NewPlanService(taskRepo, eventRepo, prefRepo, planRepo, cacheSvc, engine, metricsSvc, nil, logr, service.PlanConfig{
		HorizonDays:  cfg.Planner.HorizonDays,
		CacheEnabled: cfg.Planner.CacheEnabled,
		CacheTTL:     cfg.Planner.CacheTTL,
	})
	exportSvc := service.NewExportService(planSvc, nil, nil, logr)

	var replanSvc *service.ReplanService
	if cfg.Replan.Enabled {
		replanSvc = service.NewReplanService(planSvc, service.ReplanConfig{
			Workers:    cfg.Replan.Workers,
			MaxRetries: cfg.Replan.MaxRetries,
			RetryDelay: cfg.Replan.RetryDelay,
		}, logr)
	}

	// A typed nil *ReplanService must not reach the interface field.
	taskSvc := service.NewTaskService(taskRepo, nil, nil, logr)
	if replanSvc != nil {
		taskSvc = service.NewTaskService(taskRepo, replanSvc, nil, logr)
	}
	eventSvc := service.NewEventService(eventRepo, nil, logr)
	prefSvc := service.NewPreferenceService(prefRepo, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	prefHandler := handler.NewPreferenceHandler(prefSvc)
	planHandler := handler.NewPlanHandler(planSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	authGuard := middleware.JWT(authSvc)
	auth.POST("/logout", authGuard, authHandler.Logout)
	auth.GET("/me", authGuard, authHandler.Me)

	protected := api.Group("")
	protected.Use(authGuard)

	protected.GET("/tasks", taskHandler.List)
	protected.POST("/tasks", taskHandler.Create)
	protected.GET("/tasks/:id", taskHandler.Get)
	protected.PUT("/tasks/:id", taskHandler.Update)
	protected.POST("/tasks/:id/complete", taskHandler.Complete)
	protected.DELETE("/tasks/:id", taskHandler.Delete)

	protected.GET("/events", eventHandler.List)
	protected.POST("/events", eventHandler.Create)
	protected.DELETE("/events/:id", eventHandler.Delete)

	protected.GET("/preferences", prefHandler.Get)
	protected.PUT("/preferences", prefHandler.Update)

	protected.POST("/plans/generate", planHandler.Generate)
	protected.GET("/plans/current", planHandler.Current)
	protected.GET("/plans/current/export", planHandler.Export)

	protected.GET("/metrics/summary", metricsHandler.Snapshot)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if replanSvc != nil {
		replanSvc.Start(ctx)
		defer replanSvc.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
