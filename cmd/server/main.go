package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"savingz.backend/internal/config"
	"savingz.backend/internal/infrastructure/datasources/postgres"
	"savingz.backend/internal/infrastructure/jobs"
	"savingz.backend/internal/infrastructure/metrics"
	"savingz.backend/internal/infrastructure/pricing"
	"savingz.backend/internal/infrastructure/push"
	"savingz.backend/internal/infrastructure/repositories"
	"savingz.backend/internal/interfaces/http/handlers"
	"savingz.backend/internal/interfaces/http/middleware"
	"savingz.backend/internal/usecases"
	"savingz.backend/pkg/identity"
	"savingz.backend/pkg/logger"
	"savingz.backend/pkg/redis"
)

var (
	loadDotenv    = godotenv.Load
	loadCfg       = config.Load
	initLog       = logger.Init
	initRedis     = redis.Init
	openDB        = postgres.NewConnection
	runMigrations = postgres.RunMigrations
	runServer     = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownCtx   = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	verifier, err := newVerifier(cfg.Identity)
	if err != nil {
		return fmt.Errorf("failed to configure identity: %w", err)
	}

	// Redis is optional: without it caches are skipped and idempotency keys
	// are not enforced.
	var cache *redis.Store
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Warn(ctx, "Redis unavailable, running without cache", zap.Error(err))
	} else {
		cache = redis.NewStore()
		defer redis.Close()
		logger.Info(ctx, "Redis initialized")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Database.MigrateOnStart {
		if err := runMigrations(cfg.Database.URL()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info(ctx, "Database migrations applied")
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repositories.RegisterStoreErrors(db); err != nil {
		return fmt.Errorf("failed to register store callbacks: %w", err)
	}
	logger.Info(ctx, "Connected to PostgreSQL")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	app := buildApp(cfg, db, cache, verifier, collector)
	app.router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	sigCtx, stop := shutdownCtx()
	defer stop()

	if err := app.streakJob.Start(sigCtx); err != nil {
		return fmt.Errorf("failed to start streak job: %w", err)
	}
	defer app.streakJob.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Savingz backend starting", zap.String("port", cfg.Server.Port))
		errCh <- runServer(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info(ctx, "Shutting down server")
	shutdown, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

type application struct {
	router    *gin.Engine
	streakJob *jobs.StreakExpiryJob
}

// buildApp wires repositories, use cases and handlers. cache may be nil.
func buildApp(cfg *config.Config, db *gorm.DB, cache *redis.Store, verifier identity.Verifier, collector *metrics.Collector) *application {
	userRepo := repositories.NewUserRepository(db)
	depositRepo := repositories.NewDepositRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	uow := repositories.NewUnitOfWork(db)

	var (
		leaderboardCache usecases.Cache
		priceCache       pricing.Cache
	)
	if cache != nil {
		leaderboardCache = cache
		priceCache = cache
	}

	coingecko := pricing.NewCoinGeckoClient(cfg.PriceOracle, nil, collector)
	oracle := pricing.NewCachedOracle(coingecko, priceCache, cfg.PriceOracle.CacheTTL, cfg.PriceOracle.Timeout, collector)
	expo := push.NewExpoClient(cfg.Push, nil)

	leaderboardUsecase := usecases.NewLeaderboardUsecase(depositRepo, leaderboardCache, cfg.Leaderboard.CacheTTL, cfg.Leaderboard.DefaultLimit)
	userUsecase := usecases.NewUserUsecase(userRepo)
	savingsUsecase := usecases.NewSavingsUsecase(uow, userRepo, depositRepo, oracle, leaderboardUsecase, collector, cfg.PriceOracle.Timeout)
	portfolioUsecase := usecases.NewPortfolioUsecase(userRepo, depositRepo, oracle, cfg.PriceOracle.DisplayCurrency, cfg.PriceOracle.Timeout)
	notificationUsecase := usecases.NewNotificationUsecase(uow, userRepo, notificationRepo, expo, collector)
	marketUsecase := usecases.NewMarketUsecase(oracle, cfg.PriceOracle.DisplayCurrency, cfg.PriceOracle.Timeout)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(collector))
	applyCORSMiddleware(r)
	registerHealthRoute(r)

	authMiddleware := middleware.AuthMiddleware(verifier)
	registerAPIV1Routes(r, routeDeps{
		userHandler:         handlers.NewUserHandler(userUsecase, portfolioUsecase),
		savingsHandler:      handlers.NewSavingsHandler(savingsUsecase),
		leaderboardHandler:  handlers.NewLeaderboardHandler(leaderboardUsecase),
		notificationHandler: handlers.NewNotificationHandler(notificationUsecase),
		marketHandler:       handlers.NewMarketHandler(marketUsecase),
		authMiddleware:      authMiddleware,
		adminMiddleware:     middleware.RequireAdmin(userUsecase),
	})

	return &application{
		router:    r,
		streakJob: jobs.NewStreakExpiryJob(userRepo, collector, cfg.Jobs.StreakResetCron),
	}
}

// newVerifier selects the identity provider named by cfg.Provider
func newVerifier(cfg config.IdentityConfig) (identity.Verifier, error) {
	switch cfg.Provider {
	case "firebase":
		if cfg.FirebaseProjectID == "" {
			return nil, errors.New("FIREBASE_PROJECT_ID is required for the firebase provider")
		}
		return identity.NewFirebaseVerifier(cfg.FirebaseProjectID, cfg.JWKSURL, cfg.KeysRefresh, nil), nil
	case "local":
		return identity.NewLocalService(cfg.LocalSecret, cfg.LocalTokenExpiry), nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.Provider)
	}
}
