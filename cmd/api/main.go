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

	_ "github.com/usmanali13/university-timetable-management/api/swagger"
	"github.com/usmanali13/university-timetable-management/internal/handler"
	"github.com/usmanali13/university-timetable-management/internal/middleware"
	"github.com/usmanali13/university-timetable-management/internal/models"
	"github.com/usmanali13/university-timetable-management/internal/repository"
	"github.com/usmanali13/university-timetable-management/internal/service"
	"github.com/usmanali13/university-timetable-management/pkg/cache"
	"github.com/usmanali13/university-timetable-management/pkg/config"
	"github.com/usmanali13/university-timetable-management/pkg/database"
	"github.com/usmanali13/university-timetable-management/pkg/export"
	"github.com/usmanali13/university-timetable-management/pkg/jobs"
	"github.com/usmanali13/university-timetable-management/pkg/logger"
	"github.com/usmanali13/university-timetable-management/pkg/mailer"
	corsmiddleware "github.com/usmanali13/university-timetable-management/pkg/middleware/cors"
	reqidmiddleware "github.com/usmanali13/university-timetable-management/pkg/middleware/requestid"
)

// @title University Timetable Management API
// @version 1.0.0
// @description Timetable generation and delivery backend
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
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	timetableCache := repository.NewTimetableCache(redisClient, cfg.Scheduler.CacheTTL)
	generationLock := repository.NewGenerationLock(redisClient, cfg.Scheduler.LockTTL)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "university-timetable-management",
	})
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	timetableSvc := service.NewTimetableService(
		timetableRepo, courseRepo, instructorRepo, roomRepo,
		generationLock, timetableCache, metricsSvc, validate, logr,
	)

	var exportSvc *service.ExportService
	emailQueue := jobs.NewQueue("timetable_email", func(ctx context.Context, job jobs.Job) error {
		return exportSvc.HandleEmailJob(ctx, job)
	}, jobs.QueueConfig{
		Workers: cfg.SMTP.Workers,
		Logger:  logr,
	})
	exportSvc = service.NewExportService(
		timetableSvc, userRepo,
		export.NewPDFExporter(),
		mailer.New(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}),
		emailQueue, validate, logr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	emailQueue.Start(ctx)
	defer emailQueue.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	instructorHandler := handler.NewInstructorHandler(instructorSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, exportSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/admin/register", authHandler.RegisterAdmin)
		auth.POST("/student/register", authHandler.RegisterStudent)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	anyUser := middleware.RequireRoles(models.RoleAdmin, models.RoleStudent)

	courses := api.Group("/courses", middleware.JWT(authSvc), adminOnly)
	{
		courses.GET("", courseHandler.List)
		courses.POST("", courseHandler.Create)
		courses.GET("/:id", courseHandler.Get)
		courses.PUT("/:id", courseHandler.Update)
		courses.DELETE("/:id", courseHandler.Delete)
	}

	instructors := api.Group("/instructors", middleware.JWT(authSvc), adminOnly)
	{
		instructors.GET("", instructorHandler.List)
		instructors.POST("", instructorHandler.Create)
		instructors.GET("/:id", instructorHandler.Get)
		instructors.PUT("/:id", instructorHandler.Update)
		instructors.DELETE("/:id", instructorHandler.Delete)
	}

	rooms := api.Group("/rooms", middleware.JWT(authSvc), adminOnly)
	{
		rooms.GET("", roomHandler.List)
		rooms.POST("", roomHandler.Create)
		rooms.GET("/:id", roomHandler.Get)
		rooms.PUT("/:id", roomHandler.Update)
		rooms.DELETE("/:id", roomHandler.Delete)
	}

	timetables := api.Group("/timetables", middleware.JWT(authSvc))
	{
		timetables.POST("/generate", adminOnly, timetableHandler.Generate)
		timetables.GET("", adminOnly, timetableHandler.Get)
		timetables.GET("/latest", studentOnly, timetableHandler.StudentView)
		timetables.GET("/pdf", anyUser, timetableHandler.DownloadPDF)
		timetables.PATCH("/entries/:entryId", adminOnly, timetableHandler.EditEntry)
		timetables.DELETE("/:id", adminOnly, timetableHandler.Delete)
		timetables.POST("/email", adminOnly, timetableHandler.Email)
		timetables.POST("/email-all", adminOnly, timetableHandler.EmailAll)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
