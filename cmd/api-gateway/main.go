package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/erp-training-api/api/swagger"
	"github.com/noah-isme/erp-training-api/internal/handler"
	"github.com/noah-isme/erp-training-api/internal/middleware"
	"github.com/noah-isme/erp-training-api/internal/repository"
	"github.com/noah-isme/erp-training-api/internal/service"
	"github.com/noah-isme/erp-training-api/pkg/cache"
	"github.com/noah-isme/erp-training-api/pkg/config"
	"github.com/noah-isme/erp-training-api/pkg/database"
	"github.com/noah-isme/erp-training-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/erp-training-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/erp-training-api/pkg/middleware/requestid"
)

// @title ERP Training API
// @version 0.1.0
// @description Training lifecycle management engine
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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Analytics.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, analytics caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, true)
		}
	}

	programRepo := repository.NewProgramRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	needRepo := repository.NewNeedRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	validate := validator.New()

	programSvc := service.NewProgramService(programRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, programRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, scheduleRepo, cacheSvc, metricsSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(enrollmentRepo, scheduleRepo, validate, logr)
	completionSvc := service.NewCompletionService(enrollmentRepo, cacheSvc, validate, logr)
	needSvc := service.NewNeedService(needRepo, cacheSvc, validate, logr)
	analyticsSvc := service.NewAnalyticsService(
		analyticsRepo, needRepo, enrollmentRepo, scheduleRepo, budgetRepo, programRepo,
		nil, cacheSvc, metricsSvc, cfg.Analytics.CacheTTL, logr)

	programHandler := handler.NewProgramHandler(programSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, completionSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	needHandler := handler.NewNeedHandler(needSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	audit := func(action, resource string) gin.HandlerFunc {
		if !cfg.Audit.Enabled {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.Audit(logr, action, resource)
	}

	api := r.Group(cfg.APIPrefix)
	{
		programs := api.Group("/programs")
		{
			programs.GET("", programHandler.List)
			programs.GET("/:id", programHandler.Get)
			programs.POST("", audit("create", "program"), programHandler.Create)
			programs.PUT("/:id/activate", audit("activate", "program"), programHandler.Activate)
			programs.DELETE("/:id", audit("deactivate", "program"), programHandler.Deactivate)
		}

		schedules := api.Group("/schedules")
		{
			schedules.GET("", scheduleHandler.List)
			schedules.GET("/:id", scheduleHandler.Get)
			schedules.POST("", audit("create", "schedule"), scheduleHandler.Create)
			schedules.PUT("/:id/status", audit("update_status", "schedule"), scheduleHandler.UpdateStatus)
		}

		enrollments := api.Group("/enrollments")
		{
			enrollments.GET("", enrollmentHandler.List)
			enrollments.GET("/:id", enrollmentHandler.Get)
			enrollments.POST("", audit("enroll", "enrollment"), enrollmentHandler.Create)
			enrollments.PUT("/:id/withdraw", audit("withdraw", "enrollment"), enrollmentHandler.Withdraw)
			enrollments.PUT("/:id/complete", audit("complete", "enrollment"), enrollmentHandler.Complete)
		}

		attendance := api.Group("/attendance")
		{
			attendance.POST("", audit("mark", "attendance"), attendanceHandler.Mark)
			attendance.POST("/bulk", audit("bulk_mark", "attendance"), attendanceHandler.BulkMark)
		}

		needs := api.Group("/needs")
		{
			needs.GET("", needHandler.List)
			needs.GET("/:id", needHandler.Get)
			needs.POST("", audit("identify", "need"), needHandler.Create)
			needs.PUT("/:id/status", audit("update_status", "need"), needHandler.UpdateStatus)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("/needs", analyticsHandler.NeedAnalysis)
			analytics.GET("/effectiveness/:programId", analyticsHandler.Effectiveness)
			analytics.GET("/budget", analyticsHandler.BudgetUtilization)
			analytics.GET("/history/:employeeId", analyticsHandler.EmployeeHistory)
			analytics.GET("/upcoming", analyticsHandler.Upcoming)
			analytics.GET("/calendar", analyticsHandler.Calendar)
			analytics.GET("/summary", analyticsHandler.Summary)
			analytics.GET("/skill-matrix/:department", analyticsHandler.SkillMatrix)
			analytics.GET("/system", analyticsHandler.SystemMetrics)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
