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

	_ "github.com/noah-isme/epd-student-api/api/swagger"
	"github.com/noah-isme/epd-student-api/internal/handler"
	"github.com/noah-isme/epd-student-api/internal/middleware"
	"github.com/noah-isme/epd-student-api/internal/parser"
	"github.com/noah-isme/epd-student-api/internal/repository"
	"github.com/noah-isme/epd-student-api/internal/service"
	"github.com/noah-isme/epd-student-api/pkg/cache"
	"github.com/noah-isme/epd-student-api/pkg/config"
	"github.com/noah-isme/epd-student-api/pkg/database"
	"github.com/noah-isme/epd-student-api/pkg/jobs"
	"github.com/noah-isme/epd-student-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/epd-student-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/epd-student-api/pkg/middleware/requestid"
)

// @title EPD Student Records API
// @version 1.0.0
// @description Student records, spreadsheet import and program statistics.
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to migrate schema", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Statistics.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, statistics cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(db)
	waitingRepo := repository.NewWaitingListRepository(db)

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Statistics.CacheTTL, logr, true)
	}

	statsSvc := service.NewStatisticsService(studentRepo, waitingRepo, cacheSvc, metrics, logr)
	refreshQueue := jobs.NewQueue("statistics", statsSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.Retries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	refreshQueue.Start(ctx)
	defer refreshQueue.Stop()
	statsSvc.UseQueue(refreshQueue)

	if cfg.Statistics.RefreshSchedule != "" {
		scheduler := jobs.NewScheduler(refreshQueue, logr)
		if err := scheduler.Every(cfg.Statistics.RefreshSchedule, service.RefreshJobType, service.RefreshJobKey); err != nil {
			logr.Fatal("failed to schedule statistics refresh", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	studentSvc := service.NewStudentService(studentRepo, statsSvc, validate, logr)
	waitingSvc := service.NewWaitingListService(waitingRepo, statsSvc, validate, logr)
	importSvc := service.NewImportService(
		parser.New(parser.DefaultRegistry(cfg.Import.AcademicGroups), logr),
		studentRepo,
		statsSvc,
		metrics,
		service.ImportConfig{MaxFileSizeBytes: cfg.Import.MaxFileSizeBytes, DefaultSheet: cfg.Import.SheetName},
		logr,
	)
	exportSvc := service.NewExportService(statsSvc, studentRepo, nil, nil, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Import.MaxFileSizeBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	dependencies := map[string]handler.Pinger{"database": db, "cache": nil}
	if redisClient != nil {
		dependencies["cache"] = cache.Pinger{Client: redisClient}
	}
	probes := handler.NewMetricsHandler(metrics.Handler(), dependencies)
	r.GET("/health", probes.Health)
	r.GET("/ready", probes.Ready)
	r.GET("/metrics", probes.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Routes{
		Students:    handler.NewStudentHandler(studentSvc, exportSvc),
		Imports:     handler.NewImportHandler(importSvc),
		Statistics:  handler.NewStatisticsHandler(statsSvc, exportSvc),
		WaitingList: handler.NewWaitingListHandler(waitingSvc),
	}.Register(r.Group(cfg.APIPrefix))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
