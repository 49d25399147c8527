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

	_ "github.com/Josepmarimon/bau-assist-sub000/api/swagger"
	"github.com/Josepmarimon/bau-assist-sub000/internal/handler"
	"github.com/Josepmarimon/bau-assist-sub000/internal/middleware"
	"github.com/Josepmarimon/bau-assist-sub000/internal/repository"
	"github.com/Josepmarimon/bau-assist-sub000/internal/service"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/cache"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/config"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/database"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/jobs"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/logger"
	corsmiddleware "github.com/Josepmarimon/bau-assist-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/Josepmarimon/bau-assist-sub000/pkg/middleware/requestid"
)

// @title BAU Assist Booking API
// @version 1.0.0
// @description Classroom booking, conflict detection and occupancy for the BAU timetable.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	timeSlots := repository.NewTimeSlotRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	bookings := repository.NewBookingRepository(db)
	legacy := repository.NewLegacyScheduleRepository(db)
	classrooms := repository.NewClassroomRepository(db)
	semesters := repository.NewSemesterRepository(db)
	subjects := repository.NewSubjectRepository(db)
	studentGroups := repository.NewStudentGroupRepository(db)
	teachers := repository.NewTeacherRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metrics := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Occupancy.CacheTTL, logr, cfg.Occupancy.CacheEnabled && redisClient != nil)
	conflictService := service.NewConflictService(bookings, timeSlots, teachers, metrics, logr)
	occupancyService := service.NewOccupancyService(bookings, legacy, classrooms, semesters, cacheService, metrics, cfg.Occupancy.FanoutLimit, logr)

	refreshQueue := jobs.NewQueue("occupancy-refresh", occupancyService.HandleRefreshJob, jobs.QueueConfig{
		Workers: cfg.Occupancy.RefreshWorkers,
		Logger:  logr,
	})
	refreshQueue.Start(ctx)
	defer refreshQueue.Stop()

	bookingService := service.NewBookingService(assignments, timeSlots, semesters, subjects,
		studentGroups, classrooms, teachers, conflictService, occupancyService, refreshQueue,
		metrics, nil, logr)
	semesterService := service.NewSemesterService(semesters)

	// Handlers.
	assignmentHandler := handler.NewAssignmentHandler(bookingService)
	conflictHandler := handler.NewConflictHandler(conflictService)
	occupancyHandler := handler.NewOccupancyHandler(occupancyService)
	semesterHandler := handler.NewSemesterHandler(semesterService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/semesters", semesterHandler.List)
		api.GET("/semesters/:id", semesterHandler.Get)

		api.GET("/assignments", assignmentHandler.List)
		api.GET("/assignments/:id", assignmentHandler.Get)

		api.POST("/conflicts/classrooms", conflictHandler.CheckClassrooms)
		api.POST("/conflicts/teachers", conflictHandler.CheckTeacher)

		api.GET("/classrooms/occupancy", occupancyHandler.List)
		api.GET("/classrooms/:id/occupancy", occupancyHandler.GetClassroom)

		protected := api.Group("", middleware.JWT(cfg.JWT.Secret))
		{
			protected.POST("/assignments", assignmentHandler.Create)
			protected.PUT("/assignments/:id", assignmentHandler.Update)
			protected.DELETE("/assignments/:id", assignmentHandler.Delete)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
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
