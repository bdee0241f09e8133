package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/smilekraft/clinic-ops-api/api/swagger"
	"github.com/smilekraft/clinic-ops-api/internal/handler"
	"github.com/smilekraft/clinic-ops-api/internal/middleware"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	"github.com/smilekraft/clinic-ops-api/internal/repository"
	"github.com/smilekraft/clinic-ops-api/internal/service"
	"github.com/smilekraft/clinic-ops-api/pkg/cache"
	"github.com/smilekraft/clinic-ops-api/pkg/config"
	"github.com/smilekraft/clinic-ops-api/pkg/database"
	"github.com/smilekraft/clinic-ops-api/pkg/jobs"
	"github.com/smilekraft/clinic-ops-api/pkg/logger"
	corsmiddleware "github.com/smilekraft/clinic-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/smilekraft/clinic-ops-api/pkg/middleware/requestid"
	"github.com/smilekraft/clinic-ops-api/pkg/storage"
)

// @title Clinic Ops API
// @version 1.0.0
// @description Clinic scheduling assistant with rule-based auto-allocation of assistant roles
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
	appointmentRepo := repository.NewAppointmentRepository(db)
	assistantRepo := repository.NewAssistantRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	timeBlockRepo := repository.NewTimeBlockRepository(db)
	punchRepo := repository.NewPunchRepository(db)
	userRepo := repository.NewUserRepository(db)
	rulesRepo := repository.NewRulesRepository(cfg.Rules.Path, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	rosterSvc := service.NewRosterService(assistantRepo, doctorRepo, rulesRepo, logr)
	availabilitySvc := service.NewAvailabilityService(logr)
	allocationSvc := service.NewAllocationService(
		appointmentRepo, punchRepo, timeBlockRepo, rosterSvc, availabilitySvc, metricsSvc,
		service.AllocationServiceConfig{Policy: models.AllocationPolicy{
			CrossDepartment: cfg.Allocation.CrossDepartment,
			LoadBalance:     cfg.Allocation.LoadBalance,
			UseRoleFlags:    cfg.Allocation.UseRoleFlags,
		}},
		logr,
	)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, cacheSvc, logr)
	assistantSvc := service.NewAssistantService(assistantRepo, rosterSvc, cacheSvc, logr)
	doctorSvc := service.NewDoctorService(doctorRepo, rosterSvc, cacheSvc, logr)
	attendanceSvc := service.NewAttendanceService(punchRepo, rosterSvc, nil, logr)
	timeBlockSvc := service.NewTimeBlockService(timeBlockRepo, logr)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "clinic-ops-api",
	})

	var dashboardSvc *service.DashboardService
	if cfg.Dashboard.Enabled {
		dashboardSvc = service.NewDashboardService(
			appointmentRepo, punchRepo, timeBlockRepo, rosterSvc, availabilitySvc,
			cacheSvc, cfg.Dashboard.CacheTTL, nil, logr,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		exportSigner := storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Exports.DownloadTTL)
		exportSvc = service.NewExportService(appointmentRepo, exportStorage, exportSigner, cfg.Exports.DownloadTTL, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
		}, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
		metricsSvc.RegisterQueueDepth("roster-exports", exportSvc.QueueDepth)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	allocationHandler := handler.NewAllocationHandler(allocationSvc)
	appointmentHandler := handler.NewAppointmentHandler(appointmentSvc)
	assistantHandler := handler.NewAssistantHandler(assistantSvc)
	doctorHandler := handler.NewDoctorHandler(doctorSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	timeBlockHandler := handler.NewTimeBlockHandler(timeBlockSvc)
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

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)

	scheduling := authed.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleFrontDesk))
	{
		scheduling.POST("/allocation/slot", allocationHandler.AllocateSlot)
		scheduling.POST("/allocation/day", allocationHandler.AllocateDay)
		scheduling.POST("/appointments", appointmentHandler.Create)
		scheduling.PUT("/appointments/:id", appointmentHandler.Update)
		scheduling.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
		scheduling.DELETE("/appointments/:id", appointmentHandler.Delete)
		scheduling.POST("/time-blocks", timeBlockHandler.Create)
		scheduling.DELETE("/time-blocks/:id", timeBlockHandler.Delete)
		scheduling.POST("/attendance/punch-in", attendanceHandler.PunchIn)
		scheduling.POST("/attendance/punch-out", attendanceHandler.PunchOut)
	}

	authed.GET("/allocation/availability", allocationHandler.CheckAvailability)
	authed.GET("/appointments", appointmentHandler.List)
	authed.GET("/appointments/:id", appointmentHandler.Get)
	authed.GET("/assistants", assistantHandler.List)
	authed.GET("/assistants/:id", assistantHandler.Get)
	authed.GET("/doctors", doctorHandler.List)
	authed.GET("/doctors/:id", doctorHandler.Get)
	authed.GET("/attendance", attendanceHandler.Board)
	authed.GET("/time-blocks", timeBlockHandler.List)

	admin := authed.Group("", middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/assistants", assistantHandler.Create)
		admin.PUT("/assistants/:id", assistantHandler.Update)
		admin.DELETE("/assistants/:id", assistantHandler.Delete)
		admin.POST("/doctors", doctorHandler.Create)
		admin.PUT("/doctors/:id", doctorHandler.Update)
		admin.DELETE("/doctors/:id", doctorHandler.Delete)
	}

	if dashboardSvc != nil {
		dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
		authed.GET("/dashboard", dashboardHandler.Board)
	}
	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		authed.POST("/exports", exportHandler.Enqueue)
		authed.GET("/exports/:id", exportHandler.Status)
		// The signed token is the credential here; a session only adds
		// attribution when the caller happens to carry one.
		api.GET("/exports/download", middleware.OptionalJWT(authSvc), exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
