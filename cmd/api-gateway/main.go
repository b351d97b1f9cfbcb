package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Campus-Management-System/ERP-System/api/swagger"
	"github.com/Campus-Management-System/ERP-System/internal/handler"
	"github.com/Campus-Management-System/ERP-System/internal/middleware"
	"github.com/Campus-Management-System/ERP-System/internal/repository"
	"github.com/Campus-Management-System/ERP-System/internal/service"
	"github.com/Campus-Management-System/ERP-System/pkg/cache"
	"github.com/Campus-Management-System/ERP-System/pkg/config"
	"github.com/Campus-Management-System/ERP-System/pkg/database"
	"github.com/Campus-Management-System/ERP-System/pkg/export"
	"github.com/Campus-Management-System/ERP-System/pkg/logger"
	corsmiddleware "github.com/Campus-Management-System/ERP-System/pkg/middleware/cors"
	reqidmiddleware "github.com/Campus-Management-System/ERP-System/pkg/middleware/requestid"
)

// @title Campus ERP API
// @version 1.0.0
// @description Campus management backend: attendance ledger, marks ledger, roster and identity
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional: the statistics endpoints degrade to direct queries
	// when it is absent.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, stats caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	marksRepo := repository.NewMarksRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, userRepo, validate, logr)
	facultySvc := service.NewFacultyService(facultyRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, cacheSvc, validate, logr)
	statsSvc := service.NewStatsService(attendanceRepo, studentRepo, cacheSvc, metricsSvc, logr)
	marksSvc := service.NewMarksService(marksRepo, studentRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	facultyHandler := handler.NewFacultyHandler(facultySvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, statsSvc, export.NewCSVExporter(), export.NewPDFExporter())
	marksHandler := handler.NewMarksHandler(marksSvc)
	systemHandler := handler.NewSystemHandler(db, redisClient, metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	api := r.Group(cfg.APIPrefix)

	api.GET("/health", systemHandler.Health)
	api.GET("/health/ready", systemHandler.Ready)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		auth.PUT("/profile", middleware.JWT(authSvc), authHandler.UpdateProfile)
		auth.PUT("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	students := api.Group("/students", middleware.JWT(authSvc))
	{
		students.GET("", middleware.RequireOperation(middleware.OpListStudents), studentHandler.List)
		students.GET("/stats", middleware.RequireOperation(middleware.OpViewStudentStats), studentHandler.Stats)
		students.POST("/import", middleware.RequireOperation(middleware.OpImportStudents), studentHandler.Import)
		students.GET("/:id", middleware.RequireOperation(middleware.OpViewStudent), studentHandler.Get)
		students.POST("", middleware.RequireOperation(middleware.OpCreateStudent), studentHandler.Create)
		students.PUT("/:id", middleware.RequireOperation(middleware.OpUpdateStudent), studentHandler.Update)
		students.DELETE("/:id", middleware.RequireOperation(middleware.OpDeleteStudent), studentHandler.Delete)
	}

	faculty := api.Group("/faculty", middleware.JWT(authSvc))
	{
		faculty.GET("/profile", middleware.RequireOperation(middleware.OpViewFacultyProfile), facultyHandler.Profile)
		faculty.POST("/assign-subject", middleware.RequireOperation(middleware.OpAssignSubject), facultyHandler.AssignSubject)
	}

	attendance := api.Group("/attendance", middleware.JWT(authSvc))
	{
		attendance.POST("/mark", middleware.RequireOperation(middleware.OpMarkAttendance), attendanceHandler.Mark)
		attendance.PUT("/:id", middleware.RequireOperation(middleware.OpAmendAttendance), attendanceHandler.Amend)
		attendance.DELETE("/:id", middleware.RequireOperation(middleware.OpDeleteAttendance), attendanceHandler.Delete)
		attendance.GET("/student/:studentId", middleware.RequireOperation(middleware.OpViewStudentAttendance), attendanceHandler.ByStudent)
		attendance.GET("/stats/:studentId", middleware.RequireOperation(middleware.OpViewAttendanceStats), attendanceHandler.Stats)
		attendance.GET("/subject/:subjectCode", middleware.RequireOperation(middleware.OpViewSubjectAttendance), attendanceHandler.BySubject)
		attendance.GET("/subject/:subjectCode/export", middleware.RequireOperation(middleware.OpViewSubjectAttendance), attendanceHandler.ExportBySubject)
		attendance.GET("/date/:date", middleware.RequireOperation(middleware.OpViewDateAttendance), attendanceHandler.ByDate)
		attendance.GET("/low-attendance", middleware.RequireOperation(middleware.OpViewLowAttendance), attendanceHandler.LowAttendance)
	}

	marks := api.Group("/marks", middleware.JWT(authSvc))
	{
		marks.POST("/add", middleware.RequireOperation(middleware.OpAddMarks), marksHandler.Add)
		marks.GET("/subject/:subjectCode", middleware.RequireOperation(middleware.OpViewSubjectMarks), marksHandler.BySubject)
		marks.GET("/my-marks", middleware.RequireOperation(middleware.OpViewOwnMarks), marksHandler.MyMarks)
	}

	metrics := api.Group("/metrics", middleware.JWT(authSvc), middleware.RequireOperation(middleware.OpViewMetrics))
	{
		metrics.GET("", systemHandler.Prometheus)
		metrics.GET("/summary", systemHandler.MetricsSummary)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
	logr.Info("server stopped")
}
