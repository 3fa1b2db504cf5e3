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
	"go.uber.org/zap"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/handler"
	"github.com/Jayasrip08/apec-digital-no-dues/internal/middleware"
	"github.com/Jayasrip08/apec-digital-no-dues/internal/repository"
	"github.com/Jayasrip08/apec-digital-no-dues/internal/service"
	"github.com/Jayasrip08/apec-digital-no-dues/internal/worker"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/cache"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/config"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/database"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/dedupe"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/export"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/jobs"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/logger"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/messaging"
	corsmiddleware "github.com/Jayasrip08/apec-digital-no-dues/pkg/middleware/cors"
	reqidmiddleware "github.com/Jayasrip08/apec-digital-no-dues/pkg/middleware/requestid"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/storage"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	semesterRepo := repository.NewSemesterRepository(db)
	feeRepo := repository.NewFeeStructureRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	metricsSvc := service.NewMetricsService()
	guard := dedupe.NewGuard(redisClient, cfg.Reminders.DedupeTTL)
	pool := jobs.NewPool(cfg.Dispatch.Workers, logr)

	var push messaging.PushSender = messaging.NewNopPushSender(logr)
	if cfg.Push.Enabled {
		fcm, err := messaging.NewFCMSender(ctx, cfg.Push, logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to init fcm sender", "error", err)
		}
		push = fcm
	}

	var email messaging.EmailSender = messaging.NewNopEmailSender(logr)
	if cfg.Email.Enabled {
		email = messaging.NewSendGridSender(cfg.Email, logr)
	}

	ledgerSvc := service.NewLedgerService(notificationRepo, logr)

	var certificateSvc *service.CertificateService
	var certificateStore *storage.LocalStorage
	if cfg.Certificates.Enabled {
		store, err := storage.NewLocalStorage(cfg.Certificates.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init certificate storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Certificates.SignedURLSecret, cfg.Certificates.SignedURLTTL)
		certificateSvc = service.NewCertificateService(
			export.NewCertificateRenderer(), store, signer, cfg.Certificates.BaseURL, logr)
		certificateStore = store
	}

	reminderSvc := service.NewReminderService(
		semesterRepo, feeRepo, studentRepo, paymentRepo,
		push, email, ledgerSvc, guard, pool, metricsSvc,
		service.ReminderConfig{Offsets: cfg.Reminders.Offsets, PortalURL: cfg.Email.PortalURL},
		logr,
	)

	notifierSvc := service.NewPaymentNotifierService(
		studentRepo, push, email, ledgerSvc, certificateSvc, metricsSvc, nil, logr)
	lifecycleSvc := service.NewLifecycleService(push, ledgerSvc, metricsSvc, nil, logr)

	eventHandler := handler.NewEventHandler(notifierSvc, lifecycleSvc)
	jobHandler := handler.NewJobHandler(reminderSvc, metricsSvc)
	notificationHandler := handler.NewNotificationHandler(ledgerSvc)

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

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if certificateSvc != nil {
		certificateHandler := handler.NewCertificateHandler(certificateSvc)
		r.GET("/certificates/:token", certificateHandler.Download)
	}

	internal := r.Group("/internal", middleware.TriggerAuth(cfg.Auth.JWTSecret))
	{
		internal.POST("/events/payment-updated", eventHandler.PaymentUpdated)
		internal.POST("/events/user-updated", eventHandler.UserUpdated)
		internal.POST("/jobs/push-reminders/run", jobHandler.RunPushReminders)
		internal.POST("/jobs/email-reminders/run", jobHandler.RunEmailReminders)
	}

	api := r.Group(cfg.APIPrefix, middleware.TriggerAuth(cfg.Auth.JWTSecret))
	{
		api.GET("/users/:userId/notifications", notificationHandler.History)
		api.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	scheduler := startScheduler(ctx, cfg, reminderSvc, metricsSvc, certificateStore, logr)

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
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	if scheduler != nil {
		scheduler.Wait()
	}
}

// startScheduler arms the daily reminder jobs, replacing the hosted cron
// triggers the notification pipeline used to depend on.
func startScheduler(
	ctx context.Context,
	cfg *config.Config,
	reminders *service.ReminderService,
	metrics *service.MetricsService,
	certificateStore *storage.LocalStorage,
	logr *zap.Logger,
) *worker.Scheduler {
	if !cfg.Reminders.Enabled {
		logr.Info("reminder jobs disabled")
		return nil
	}

	loc, err := time.LoadLocation(cfg.Reminders.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid reminder timezone", "timezone", cfg.Reminders.Timezone, "error", err)
	}

	scheduler := worker.NewScheduler(loc, logr)
	scheduler.Register(worker.DailyJob{
		Name:   "push_reminders",
		Hour:   cfg.Reminders.PushHour,
		Minute: cfg.Reminders.PushMinute,
		Run: func(ctx context.Context, now time.Time) error {
			start := time.Now()
			_, err := reminders.RunPushReminders(ctx, now)
			metrics.ObserveJobRun("push_reminders", time.Since(start), err)
			return err
		},
	})
	scheduler.Register(worker.DailyJob{
		Name:   "email_reminders",
		Hour:   cfg.Reminders.EmailHour,
		Minute: cfg.Reminders.EmailMin,
		Run: func(ctx context.Context, now time.Time) error {
			start := time.Now()
			_, err := reminders.RunEmailReminders(ctx, now)
			metrics.ObserveJobRun("email_reminders", time.Since(start), err)
			return err
		},
	})
	if certificateStore != nil {
		scheduler.Register(worker.DailyJob{
			Name:   "certificate_cleanup",
			Hour:   1,
			Minute: 0,
			Run: func(ctx context.Context, now time.Time) error {
				deleted, err := certificateStore.CleanupOlderThan(cfg.Certificates.SignedURLTTL)
				if err != nil {
					return err
				}
				if len(deleted) > 0 {
					logr.Info("expired certificates removed", zap.Int("count", len(deleted)))
				}
				return nil
			},
		})
	}
	scheduler.Start(ctx)
	return scheduler
}
