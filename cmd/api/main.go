package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/talent-ledger/internal/api/http"
	"github.com/spec-kit/talent-ledger/internal/api/http/handlers"
	"github.com/spec-kit/talent-ledger/internal/auth"
	"github.com/spec-kit/talent-ledger/internal/config"
	"github.com/spec-kit/talent-ledger/internal/deeplink"
	"github.com/spec-kit/talent-ledger/internal/events"
	"github.com/spec-kit/talent-ledger/internal/ledger"
	"github.com/spec-kit/talent-ledger/internal/observability"
	"github.com/spec-kit/talent-ledger/internal/persistence"
	"github.com/spec-kit/talent-ledger/internal/ratelimit"
	"github.com/spec-kit/talent-ledger/internal/repository"
	"github.com/spec-kit/talent-ledger/internal/service"
	"github.com/spec-kit/talent-ledger/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	signer, err := deeplink.NewSigner(cfg.DeepLink.Secret)
	if err != nil {
		var cfgErr *deeplink.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Fatal("invalid DEEPLINK_SECRET", zap.String("reason", cfgErr.Reason))
		}
		logger.Fatal("failed to init link signer", zap.Error(err))
	}

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

	redisRequired := cfg.RateLimit.Backend == config.RateLimitBackendRedis
	redis, err := persistence.NewRedis(ctx, cfg.Redis, redisRequired, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.Pool
	actorRepo := repository.NewActorRepository(pool)
	auctionRepo := repository.NewAuctionRepository(pool)
	gigRepo := repository.NewGigRepository(pool)
	callRepo := repository.NewCallRepository(pool)
	transactionRepo := repository.NewTransactionRepository(pool)
	ledgerOps := ledger.NewPostgres(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	economyService := service.NewEconomyService(service.EconomyDependencies{
		ActorRepo:       actorRepo,
		CallRepo:        callRepo,
		TransactionRepo: transactionRepo,
		Ledger:          ledgerOps,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
	})
	gigLinkService := service.NewGigLinkService(service.GigLinkDependencies{
		ActorRepo:  actorRepo,
		GigRepo:    gigRepo,
		Signer:     signer,
		BaseURL:    cfg.DeepLink.BaseURL,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	var limiter ratelimit.Limiter
	if redisRequired {
		limiter = ratelimit.NewRedisLimiter(redis.Client, cfg.App.Name+":ratelimit:links", cfg.RateLimit.Requests, cfg.RateLimit.Window())
	} else {
		local := ratelimit.NewLocalLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window(), cfg.RateLimit.Burst)
		go local.Run(ctx)
		limiter = local
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env != "development",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Wallet:         handlers.NewWalletHandler(economyService),
		Admin:          handlers.NewAdminHandler(economyService),
		Auctions:       handlers.NewAuctionsHandler(economyService, auctionRepo),
		Calls:          handlers.NewCallsHandler(economyService),
		Gigs:           handlers.NewGigsHandler(gigLinkService),
		AuthMiddleware: authMiddleware,
		Actors:         actorRepo,
		LinkLimiter:    httptransport.RateLimit(limiter, logger),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(cfg.App.RequestTimeout()); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
