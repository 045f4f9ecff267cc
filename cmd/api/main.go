package main

import (
	"context"
	"database/sql"
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
	"go.uber.org/zap"

	_ "github.com/kidscholars/ksis-api/api/swagger"
	"github.com/kidscholars/ksis-api/internal/handler"
	"github.com/kidscholars/ksis-api/internal/middleware"
	"github.com/kidscholars/ksis-api/internal/models"
	"github.com/kidscholars/ksis-api/internal/repository"
	"github.com/kidscholars/ksis-api/internal/service"
	"github.com/kidscholars/ksis-api/pkg/cache"
	"github.com/kidscholars/ksis-api/pkg/config"
	"github.com/kidscholars/ksis-api/pkg/database"
	"github.com/kidscholars/ksis-api/pkg/logger"
	"github.com/kidscholars/ksis-api/pkg/mailer"
	corsmiddleware "github.com/kidscholars/ksis-api/pkg/middleware/cors"
	reqidmiddleware "github.com/kidscholars/ksis-api/pkg/middleware/requestid"
	"github.com/kidscholars/ksis-api/pkg/payments"
	"github.com/kidscholars/ksis-api/pkg/storage"
)

// @title KSIS API
// @version 1.0.0
// @description Kid Scholars International School management backend
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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

	files, err := storage.NewLocalStorage(cfg.Gallery.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init gallery storage", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	admissionRepo := repository.NewAdmissionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	academicRepo := repository.NewAcademicRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.Enabled)

	mailSvc := service.NewMailService(newMailSender(cfg, logr), cfg.Mail, logr)
	mailSvc.Start(context.Background())
	defer mailSvc.Stop()

	var gateway payments.Gateway
	if cfg.Payments.RazorpayKeyID != "" && cfg.Payments.RazorpayKeySecret != "" {
		gateway = payments.NewRazorpay(cfg.Payments.RazorpayKeyID, cfg.Payments.RazorpayKeySecret)
	} else {
		logr.Warn("razorpay credentials missing, online payments disabled")
	}

	hasher := service.BcryptHasher{}

	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	userSvc := service.NewUserService(userRepo, hasher, validate, logr)
	applicationSvc := service.NewApplicationService(applicationRepo, admissionRepo, mailSvc, hasher, metricsSvc, cfg.App, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, studentRepo, validate, logr)
	feeSvc := service.NewFeeService(feeRepo, studentRepo, gateway, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	academicSvc := service.NewAcademicService(academicRepo, userRepo, studentRepo, validate, logr)
	documentSvc := service.NewDocumentService(documentRepo, applicationRepo, files, cfg.Gallery, validate, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, metricsSvc, cfg.Dashboard.CacheTTL, logr)
	reportSvc := service.NewReportService(applicationRepo, studentRepo, logr)

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapAdmin(bootstrapCtx, userRepo, hasher, cfg.App, logr); err != nil {
		logr.Sugar().Fatalw("failed to bootstrap admin user", "error", err)
	}
	cancelBootstrap()

	handlers := handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Applications:  handler.NewApplicationHandler(applicationSvc),
		Documents:     handler.NewDocumentHandler(documentSvc),
		Users:         handler.NewUserHandler(userSvc),
		Students:      handler.NewStudentHandler(studentSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Activities:    handler.NewActivityHandler(activitySvc),
		Fees:          handler.NewFeeHandler(feeSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Academic:      handler.NewAcademicHandler(academicSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Reports:       handler.NewReportHandler(reportSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	handler.RegisterRoutes(r, cfg, authSvc, userRepo, handlers)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
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

func newMailSender(cfg *config.Config, logr *zap.Logger) mailer.Sender {
	if cfg.Mail.Provider == "sendgrid" && cfg.Mail.SendgridAPIKey != "" {
		return mailer.NewSendgridSender(cfg.Mail.SendgridAPIKey, cfg.Mail.FromName, cfg.Mail.FromAddress, "")
	}
	return mailer.NewConsoleSender(logr)
}

// bootstrapAdmin guarantees one active super admin account so a fresh
// deployment can be logged into.
func bootstrapAdmin(ctx context.Context, users *repository.UserRepository, hasher service.BcryptHasher, app config.AppConfig, logr *zap.Logger) error {
	_, err := users.FindByEmail(ctx, app.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("look up admin account: %w", err)
	}

	hash, err := hasher.Hash(app.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        app.AdminEmail,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		FullName:     "Administrator",
		Active:       true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	logr.Sugar().Infow("bootstrapped admin user", "email", app.AdminEmail)
	return nil
}
