package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/scholaris/lms-api/api/swagger"
	"github.com/scholaris/lms-api/internal/handler"
	"github.com/scholaris/lms-api/internal/middleware"
	"github.com/scholaris/lms-api/internal/repository"
	"github.com/scholaris/lms-api/internal/service"
	"github.com/scholaris/lms-api/pkg/cache"
	"github.com/scholaris/lms-api/pkg/config"
	"github.com/scholaris/lms-api/pkg/database"
	"github.com/scholaris/lms-api/pkg/jobs"
	"github.com/scholaris/lms-api/pkg/logger"
	corsmiddleware "github.com/scholaris/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/scholaris/lms-api/pkg/middleware/requestid"
	"github.com/scholaris/lms-api/pkg/storage"
)

// @title Scholaris LMS API
// @version 0.1.0
// @description Progress, enrollment and grading engine for class-based learning
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API serves without a cache; display aggregates just skip it.
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	classRepo := repository.NewClassRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	rewardsRepo := repository.NewRewardsRepository(db)
	inspirationRepo := repository.NewInspirationRepository(db)

	classSvc := service.NewClassService(classRepo, nil, logr)
	lessonSvc := service.NewLessonService(lessonRepo, progressRepo, classRepo, db, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, progressRepo, submissionRepo, classRepo, db, logr)
	progressSvc := service.NewProgressService(progressRepo, lessonRepo, classRepo, rewardsRepo, db, cfg.Rewards.PointsPerLesson, logr)
	gradingSvc := service.NewGradingService(activityRepo, submissionRepo, classRepo, nil, logr)
	rewardsSvc := service.NewRewardsService(rewardsRepo, logr)
	dashboardSvc := service.NewDashboardService(progressRepo, inspirationRepo, cacheSvc, service.DashboardConfig{
		RecentFeedLimit:    cfg.Dashboard.RecentFeedLimit,
		CacheTTL:           cfg.Dashboard.CacheTTL,
		InspirationEnabled: cfg.Inspiration.Enabled,
		InspirationTTL:     cfg.Inspiration.CacheTTL,
	}, logr)

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Fatal("failed to prepare uploads directory", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.URLSecret, cfg.Uploads.URLTTL)

	invalidations := jobs.NewQueue("dashboard-invalidation", func(ctx context.Context, job jobs.Job) error {
		studentID, ok := job.Payload.(string)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		dashboardSvc.InvalidateStudent(ctx, studentID)
		return nil
	}, jobs.QueueConfig{Workers: 1, Logger: logr})
	invalidations.Start(context.Background())
	defer invalidations.Stop()

	invalidateDashboard := func(studentID string) {
		err := invalidations.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "dashboard", Payload: studentID})
		if err != nil {
			logr.Warn("failed to enqueue dashboard invalidation", zap.String("student_id", studentID), zap.Error(err))
		}
	}

	classHandler := handler.NewClassHandler(classSvc)
	lessonHandler := handler.NewLessonHandler(lessonSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	progressHandler := handler.NewProgressHandler(progressSvc, invalidateDashboard)
	gradingHandler := handler.NewGradingHandler(gradingSvc, store)
	fileHandler := handler.NewFileHandler(gradingSvc, store, signer)
	studentHandler := handler.NewStudentHandler(rewardsSvc, dashboardSvc)
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
	{
		api.POST("/classes", classHandler.Create)
		api.GET("/classes/:id", classHandler.Get)
		api.PUT("/classes/:id/status", classHandler.SetStatus)
		api.GET("/teachers/:id/classes", classHandler.ListByTeacher)

		api.POST("/classes/:id/lessons", lessonHandler.Create)
		api.GET("/classes/:id/lessons", lessonHandler.List)
		api.PUT("/classes/:id/lessons/order", lessonHandler.Reorder)
		api.DELETE("/lessons/:id", lessonHandler.Delete)

		api.POST("/classes/:id/students", enrollmentHandler.Enroll)
		api.GET("/classes/:id/students", enrollmentHandler.List)
		api.DELETE("/classes/:id/students/:studentId", enrollmentHandler.Remove)
		api.PUT("/enrollments/:id/status", enrollmentHandler.SetStatus)

		api.POST("/lessons/:id/progress", progressHandler.Advance)
		api.GET("/classes/:id/progress", progressHandler.ClassSummary)

		api.POST("/classes/:id/activities", gradingHandler.CreateActivity)
		api.GET("/classes/:id/activities", gradingHandler.ListActivities)
		api.POST("/activities/:id/submissions", gradingHandler.Submit)
		api.GET("/activities/:id/submissions", gradingHandler.Roster)
		api.PUT("/submissions/:id/grade", gradingHandler.Grade)
		api.GET("/submissions/:id/file", fileHandler.SubmissionDownloadLink)
		api.GET("/files/:token", fileHandler.Download)
		api.GET("/classes/:id/scores/:studentId", gradingHandler.StudentClassScore)

		api.GET("/students/:id/rewards", studentHandler.Rewards)
		api.GET("/students/:id/dashboard", studentHandler.Dashboard)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
