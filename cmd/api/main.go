package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/ticketdesk/complain-service/internal/api/http"
	"github.com/ticketdesk/complain-service/internal/api/http/handlers"
	"github.com/ticketdesk/complain-service/internal/api/validation"
	"github.com/ticketdesk/complain-service/internal/auth"
	"github.com/ticketdesk/complain-service/internal/config"
	"github.com/ticketdesk/complain-service/internal/events"
	"github.com/ticketdesk/complain-service/internal/messaging"
	"github.com/ticketdesk/complain-service/internal/observability"
	"github.com/ticketdesk/complain-service/internal/persistence"
	"github.com/ticketdesk/complain-service/internal/repository"
	"github.com/ticketdesk/complain-service/internal/service"
	"github.com/ticketdesk/complain-service/internal/worker"
)

const (
	notificationQueueSize = 256
	shutdownTimeout       = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redis.Close()

	repos := repository.NewRepositories(pg.Pool)
	transactor := repository.NewTransactor(pg.Pool)

	notifications := worker.NewNotificationWorker(events.NewInMemoryDispatcher(), logger, notificationQueueSize)

	var publisher messaging.Publisher
	if cfg.Notification.AMQPURL != "" {
		mq, err := messaging.Connect(cfg.Notification.AMQPURL)
		if err != nil {
			logger.Fatal("failed to connect rabbitmq", zap.Error(err))
		}
		defer mq.Close() //nolint:errcheck
		publisher = mq
		logger.Info("notifications forwarded to queue", zap.String("queue", cfg.Notification.Queue))
	}

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   repos.Users,
		Transactor: transactor,
		Hasher:     auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		Sessions:   auth.NewRedisSessionStore(redis.Client),
		Logger:     logger,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: repos.Complaints,
		ReplyRepo:     repos.Replies,
		Transactor:    transactor,
		Dispatcher:    notifications,
		Logger:        logger,
	})
	statisticsService := service.NewStatisticsService(repos.Complaints, cfg.App.Location)
	notificationService := service.NewNotificationService(notifications, publisher, logger, cfg.Notification)

	worker.StartNotificationWorker(ctx, notificationService, notifications)

	metrics := observability.NewMetrics()
	validator := validation.New()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:             handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:               handlers.NewAuthHandler(authService, validator),
		Complaints:         handlers.NewComplaintsHandler(complaintService, validator),
		Dashboard:          handlers.NewDashboardHandler(statisticsService),
		AuthMiddleware:     auth.NewAuthMiddleware(authService),
		Metrics:            metrics.Handler(),
		DashboardAdminOnly: cfg.Dashboard.AdminOnly,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notifications.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
