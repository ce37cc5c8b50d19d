package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dku-library/ticket-chat/internal/api/http/handlers"
	"github.com/dku-library/ticket-chat/internal/audit"
	"github.com/dku-library/ticket-chat/internal/auth"
	"github.com/dku-library/ticket-chat/internal/chat"
	"github.com/dku-library/ticket-chat/internal/config"
	"github.com/dku-library/ticket-chat/internal/connector/telegram"
	"github.com/dku-library/ticket-chat/internal/events"
	"github.com/dku-library/ticket-chat/internal/gateway"
	"github.com/dku-library/ticket-chat/internal/notification"
	"github.com/dku-library/ticket-chat/internal/observability"
	"github.com/dku-library/ticket-chat/internal/persistence"
	"github.com/dku-library/ticket-chat/internal/session"
	"github.com/dku-library/ticket-chat/internal/validation"
	"github.com/dku-library/ticket-chat/internal/worker"

	httptransport "github.com/dku-library/ticket-chat/internal/api/http"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	ticketGateway, err := gateway.NewTicketGateway(cfg.TicketAPI, logger)
	if err != nil {
		logger.Fatal("failed to init ticket gateway", zap.Error(err))
	}

	auditLogger := audit.NewLogger(pg, logger)
	mailer := notification.NewSMTPMailer(cfg.SMTP)
	notificationService := notification.NewService(mailer, auditLogger, logger)
	worker.StartNotificationWorker(dispatcher, notificationService, auditLogger)

	chatService := chat.NewService(chat.Dependencies{
		Sessions:   session.NewRedisStore(redis, cfg.Chat.SessionTTL(), logger),
		Rules:      validation.NewRules(cfg.Chat.EmailDomain),
		Gateway:    ticketGateway,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})

	tokens := auth.NewTokenManager(cfg.Chat.TokenSecret, cfg.Chat.TokenTTLMinutes)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Chat:     handlers.NewChatHandler(chatService, tokens),
		ChatAuth: auth.NewChatAuthMiddleware(tokens),
	})

	if cfg.Telegram.BotToken != "" {
		connector, err := telegram.New(telegram.Config{Token: cfg.Telegram.BotToken}, chatService, logger)
		if err != nil {
			logger.Fatal("failed to init telegram connector", zap.Error(err))
		}
		go func() {
			if err := connector.Start(ctx); err != nil && err != context.Canceled {
				logger.Error("telegram connector exited", zap.Error(err))
			}
		}()
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
