package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gym-ops-api/api/swagger"
	"github.com/noah-isme/gym-ops-api/internal/handler"
	"github.com/noah-isme/gym-ops-api/internal/middleware"
	"github.com/noah-isme/gym-ops-api/internal/repository"
	"github.com/noah-isme/gym-ops-api/internal/service"
	"github.com/noah-isme/gym-ops-api/pkg/cache"
	"github.com/noah-isme/gym-ops-api/pkg/config"
	"github.com/noah-isme/gym-ops-api/pkg/database"
	"github.com/noah-isme/gym-ops-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gym-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gym-ops-api/pkg/middleware/requestid"
)

// @title Gym Operations API
// @version 1.0.0
// @description Class signups, trainer assignments and trainer hours.
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if cfg.Database.ApplySchema {
		if err := database.ApplySchema(ctx, db); err != nil {
			logr.Fatal("failed to apply schema", zap.Error(err))
		}
	}
	if cfg.Database.Seed {
		if err := database.Seed(ctx, db); err != nil {
			logr.Fatal("failed to seed database", zap.Error(err))
		}
		logr.Info("sample data loaded")
	}

	var redisClient *redis.Client
	if cfg.Hours.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, hours cache disabled", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	classRepo := repository.NewClassRepository(db)
	trainerRepo := repository.NewTrainerRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	hoursRepo := repository.NewHoursRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "gym-ops", logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Hours.CacheTTL, logr, cfg.Hours.CacheEnabled && redisClient != nil)
	hoursSvc := service.NewHoursService(hoursRepo, cacheSvc, logr)
	classSvc := service.NewClassService(classRepo, enrollmentRepo, db, validate, logr)
	trainerSvc := service.NewTrainerService(trainerRepo, assignmentRepo, hoursRepo, hoursSvc, db, validate, logr)
	memberSvc := service.NewMemberService(memberRepo, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, classRepo, memberRepo, db, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, hoursRepo, classRepo, trainerRepo, hoursSvc, db, validate, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	health := handler.NewHealthHandler(db)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.SerializeWrites(middleware.NewWriteGate()))
	handler.Handlers{
		Classes:     handler.NewClassHandler(classSvc, enrollmentSvc, metrics),
		Trainers:    handler.NewTrainerHandler(trainerSvc, metrics),
		Members:     handler.NewMemberHandler(memberSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc, metrics),
		Assignments: handler.NewAssignmentHandler(assignmentSvc, metrics),
		Hours:       handler.NewHoursHandler(hoursSvc),
	}.Register(api)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
