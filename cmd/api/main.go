package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/deskhub/support-portal/internal/api/http"
	"github.com/deskhub/support-portal/internal/api/http/handlers"
	"github.com/deskhub/support-portal/internal/auth"
	"github.com/deskhub/support-portal/internal/config"
	"github.com/deskhub/support-portal/internal/events"
	"github.com/deskhub/support-portal/internal/live"
	"github.com/deskhub/support-portal/internal/observability"
	"github.com/deskhub/support-portal/internal/persistence"
	"github.com/deskhub/support-portal/internal/repository"
	"github.com/deskhub/support-portal/internal/service"
	"github.com/deskhub/support-portal/internal/store"
	"github.com/deskhub/support-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	articleRepo := repository.NewArticleRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	ticketStore := store.NewTicketStore(store.Dependencies{
		TicketRepo: ticketRepo,
		Publisher:  store.NewRedisPublisher(rdb.Client, cfg.Feed.Channel),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	feed := store.NewRedisFeed(rdb.Client, ticketRepo, cfg.Feed.Channel, logger)
	view := live.NewView(feed, logger)
	if err := view.Start(ctx); err != nil {
		logger.Fatal("failed to start live view", zap.Error(err))
	}
	defer view.Stop()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	ticketService := service.NewTicketService(ticketRepo, ticketStore)
	articleService := service.NewArticleService(articleRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	sessions := handlers.NewAdminSessions(view, ticketStore, ticketStore, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb, view),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AdminTickets:   handlers.NewAdminTicketsHandler(view, sessions, ticketService, authService),
		Dashboard:      handlers.NewDashboardHandler(view, sessions),
		Articles:       handlers.NewArticlesHandler(articleService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
