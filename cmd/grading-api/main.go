package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/eskolar/grading-api/api/swagger"
	"github.com/eskolar/grading-api/internal/handler"
	"github.com/eskolar/grading-api/internal/middleware"
	"github.com/eskolar/grading-api/internal/models"
	"github.com/eskolar/grading-api/internal/repository"
	"github.com/eskolar/grading-api/internal/service"
	"github.com/eskolar/grading-api/pkg/cache"
	"github.com/eskolar/grading-api/pkg/config"
	"github.com/eskolar/grading-api/pkg/database"
	"github.com/eskolar/grading-api/pkg/logger"
	corsmiddleware "github.com/eskolar/grading-api/pkg/middleware/cors"
	reqidmiddleware "github.com/eskolar/grading-api/pkg/middleware/requestid"
)

// @title Grading API
// @version 1.0.0
// @description Finals-grade submission, locking and edit-request workflow
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
	defer db.Close() //nolint:errcheck

	if err := database.VerifySchema(db); err != nil {
		logr.Sugar().Fatalw("schema verification failed", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// the period cache is an optimization; the API runs without it
		logr.Sugar().Warnw("redis unavailable, period cache disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	gradeRepo := repository.NewGradeRepository(db)
	periodRepo := repository.NewGradingPeriodRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	termRepo := repository.NewTermRepository(db)
	editRequestRepo := repository.NewEditRequestRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	periodSvc := service.NewGradingPeriodService(periodRepo, cacheRepo, cfg.Grading.PeriodCacheTTL, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, logr)
	lockSvc := service.NewGradeLockService(gradeRepo, editRequestRepo, termRepo, logr)
	editRequestSvc := service.NewEditRequestService(editRequestRepo, gradeRepo, auditRepo, nil, logr)
	submissionSvc := service.NewGradeSubmissionService(periodSvc, assignmentSvc, lockSvc, gradeRepo, termRepo, auditRepo, nil, logr, cfg.Grading.DefaultMaxPoints)
	archiveSvc := service.NewArchiveService(gradeRepo, archiveRepo, auditRepo, logr)
	metricsSvc := service.NewMetricsService()

	gradeHandler := handler.NewGradeHandler(submissionSvc, lockSvc)
	periodHandler := handler.NewPeriodHandler(periodSvc)
	editRequestHandler := handler.NewEditRequestHandler(editRequestSvc)
	archiveHandler := handler.NewArchiveHandler(archiveSvc)
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
	api.Use(middleware.JWT(cfg.JWT.Secret))

	teacherOnly := middleware.RequireRoles(models.RoleTeacher)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	anyStaff := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	api.GET("/grading-periods/finals", anyStaff, periodHandler.FinalsStatus)

	api.POST("/grades/final", teacherOnly, gradeHandler.SubmitFinal)
	api.GET("/grades/:id/lock", anyStaff, gradeHandler.LockStatus)
	api.GET("/grades/:id/audit", adminOnly, gradeHandler.AuditTrail)
	api.POST("/grades/:id/edit-complete", adminOnly, editRequestHandler.Complete)
	api.POST("/grades/:id/archive-check", adminOnly, archiveHandler.Check)

	api.POST("/edit-requests", teacherOnly, editRequestHandler.Create)
	api.GET("/edit-requests", anyStaff, editRequestHandler.List)
	api.POST("/edit-requests/:id/approve", adminOnly, editRequestHandler.Approve)
	api.POST("/edit-requests/:id/deny", adminOnly, editRequestHandler.Deny)

	api.GET("/archived-courses", adminOnly, archiveHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
