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
	"go.uber.org/zap"

	_ "github.com/hafs-center/markaz-api/api/swagger"
	"github.com/hafs-center/markaz-api/internal/handler"
	"github.com/hafs-center/markaz-api/internal/middleware"
	"github.com/hafs-center/markaz-api/internal/models"
	"github.com/hafs-center/markaz-api/internal/repository"
	"github.com/hafs-center/markaz-api/internal/service"
	"github.com/hafs-center/markaz-api/pkg/cache"
	"github.com/hafs-center/markaz-api/pkg/config"
	"github.com/hafs-center/markaz-api/pkg/database"
	"github.com/hafs-center/markaz-api/pkg/logger"
	corsmiddleware "github.com/hafs-center/markaz-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hafs-center/markaz-api/pkg/middleware/requestid"
)

// @title Markaz API
// @version 1.0.0
// @description Collective report ingestion and analytics for a Quran memorization center
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	studentRepo := repository.NewStudentRepository(db)
	circleRepo := repository.NewCircleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	recitationRepo := repository.NewRecitationRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	// Services.
	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, cfg.JWT)
	achievementSvc, err := service.NewAchievementService(achievementRepo, recitationRepo, attendanceRepo, cfg.Achievements, logr)
	if err != nil {
		logr.Sugar().Fatalw("invalid achievement thresholds", "error", err)
	}
	statsSvc := service.NewStatsService(attendanceRepo, recitationRepo, studentRepo, circleRepo, cacheSvc, cfg.Stats, cfg.Dashboard.CacheTTL, logr)
	importSvc := service.NewCollectiveReportService(studentRepo, circleRepo, attendanceRepo, recitationRepo, achievementSvc, cacheSvc, metricsSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, circleRepo, validate, logr)
	exportSvc := service.NewExportService(studentRepo, circleRepo, recitationRepo, attendanceRepo, cfg.Reports, cfg.Stats.ExcludedWeekday, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	exportSvc.Start(ctx)
	defer exportSvc.Stop()

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	reportHandler := handler.NewCollectiveReportHandler(importSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	achievementHandler := handler.NewAchievementHandler(achievementSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	authed.POST("/reports/collective", staff, reportHandler.Import)
	authed.GET("/students", studentHandler.List)
	authed.POST("/students", staff, studentHandler.Create)
	authed.GET("/students/:id/stats", statsHandler.StudentStats)
	authed.GET("/students/:id/attendance", statsHandler.Attendance)
	authed.GET("/students/:id/achievements", achievementHandler.List)
	authed.POST("/students/:id/achievements/evaluate", staff, achievementHandler.Evaluate)
	authed.GET("/students/:id/progress-report", exportHandler.ProgressReport)
	authed.POST("/circles/:id/progress-reports", staff, exportHandler.BulkProgress)
	if cfg.Dashboard.Enabled {
		authed.GET("/dashboard", statsHandler.Dashboard)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
