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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edupage/school-api/api/swagger"
	"github.com/edupage/school-api/internal/handler"
	"github.com/edupage/school-api/internal/middleware"
	"github.com/edupage/school-api/internal/models"
	"github.com/edupage/school-api/internal/repository"
	"github.com/edupage/school-api/internal/service"
	"github.com/edupage/school-api/pkg/cache"
	"github.com/edupage/school-api/pkg/config"
	"github.com/edupage/school-api/pkg/database"
	"github.com/edupage/school-api/pkg/jobs"
	"github.com/edupage/school-api/pkg/logger"
	corsmiddleware "github.com/edupage/school-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edupage/school-api/pkg/middleware/requestid"
)

// @title School API
// @version 1.0.0
// @description Timetable generation and student billing backend
// @BasePath /api
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

	// Redis is optional: without it week views are computed on every request.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, schedule caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	scheduleRepo := repository.NewScheduleRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classRepo := repository.NewClassGroupRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	userRepo := repository.NewUserRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	scheduleSvc := service.NewScheduleService(scheduleRepo, teacherRepo, subjectRepo, classRepo, studentRepo, cacheRepo, metricsSvc, cfg.Scheduler, validate, logr)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, studentRepo, classRepo, nil, cfg.Billing, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, invoiceRepo, studentRepo, userRepo, metricsSvc, validate, logr)

	billingQueue := jobs.NewQueue("billing", invoiceSvc.HandleGroupJob, jobs.QueueConfig{
		Workers:    cfg.Billing.WorkerConcurrency,
		MaxRetries: cfg.Billing.WorkerRetries,
		Logger:     logr,
	})
	invoiceSvc.SetQueue(billingQueue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	billingQueue.Start(ctx)
	defer billingQueue.Stop()

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	invoiceHandler := handler.NewInvoiceHandler(invoiceSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		api.POST("/schedules/generate", middleware.RequireRoles(models.RoleAdmin), scheduleHandler.Generate)
		api.POST("/schedules", middleware.RequireRoles(models.RoleAdmin), scheduleHandler.Create)
		api.PUT("/schedules/:id", middleware.RequireRoles(models.RoleAdmin), scheduleHandler.Update)
		api.DELETE("/schedules/:id", middleware.RequireRoles(models.RoleAdmin), scheduleHandler.Delete)
		api.GET("/schedules/my-week", scheduleHandler.MyWeek)
		api.GET("/classes/:id/schedule/week", scheduleHandler.WeeklyByClass)
		api.GET("/teachers/:id/schedule/week", scheduleHandler.WeeklyByTeacher)

		api.POST("/invoices", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant), invoiceHandler.Generate)
		api.POST("/invoices/group", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant), invoiceHandler.GenerateGroup)
		api.GET("/invoices/search", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant), invoiceHandler.Search)
		api.GET("/students/:id/invoices", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant), invoiceHandler.ListByStudent)
		api.GET("/students/:id/invoices/debt", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant), invoiceHandler.Debt)
		api.GET("/students/:id/invoices/export", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant), invoiceHandler.Export)

		api.POST("/payments", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant, models.RoleStudent), paymentHandler.Create)
		api.GET("/payments", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant), paymentHandler.Search)
		api.GET("/payments/pending", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant), paymentHandler.Pending)
		api.POST("/payments/:id/approve", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant), paymentHandler.Approve)
		api.POST("/payments/:id/reject", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant), paymentHandler.Reject)

		api.GET("/metrics/snapshot", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)
	}

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

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
