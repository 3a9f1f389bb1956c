// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/promptforge/storefront/internal/admin"
	"github.com/promptforge/storefront/internal/auth"
	"github.com/promptforge/storefront/internal/cart"
	"github.com/promptforge/storefront/internal/catalog"
	"github.com/promptforge/storefront/internal/checkout"
	"github.com/promptforge/storefront/internal/config"
	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/coupon"
	"github.com/promptforge/storefront/internal/download"
	"github.com/promptforge/storefront/internal/entitlement"
	"github.com/promptforge/storefront/internal/fulfillment"
	"github.com/promptforge/storefront/internal/health"
	"github.com/promptforge/storefront/internal/middleware"
	"github.com/promptforge/storefront/internal/payment"
	"github.com/promptforge/storefront/internal/pricing"
	"github.com/promptforge/storefront/internal/receipt"
	"github.com/promptforge/storefront/internal/server"
	"github.com/promptforge/storefront/internal/session"
	"github.com/promptforge/storefront/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	sessions := session.NewStore(redis.Client, cfg.Store.SessionTTL)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, sessions)
	userHandler := user.NewHandler(userSvc)

	catalogRepo := catalog.NewRepository(db.DB)
	catalogSvc := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogSvc)

	couponRepo := coupon.NewRepository(db.DB)
	couponSvc := coupon.NewService(couponRepo)
	couponHandler := coupon.NewHandler(couponSvc, catalogSvc)

	pricer := pricing.NewEngine(catalogSvc, couponSvc, cfg.Payment.Currency)

	cartSvc := cart.NewService(sessions, catalogSvc)
	cartHandler := cart.NewHandler(cartSvc)

	mailer := &auth.LogMailer{Logger: logger}
	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(
		authRepo,
		jwtManager,
		userSvc,
		cartSvc,
		mailer,
		redis.Client,
		logger,
		cfg.App.AdminEmail,
		cfg.Store.BaseURL,
	)
	authHandler := auth.NewHandler(authSvc)

	entitlementRepo := entitlement.NewRepository(db.DB)
	entitlementSvc := entitlement.NewService(entitlementRepo)
	entitlementHandler := entitlement.NewHandler(entitlementSvc)

	receipts := receipt.NewLogIssuer(logger)
	fulfiller := fulfillment.NewEngine(
		db.DB,
		entitlementRepo,
		receipts,
		cfg.Store.DownloadWindow,
		logger,
	)

	providers := make(map[string]payment.Provider)
	if cfg.Payment.Stripe.SecretKey != "" {
		providers["stripe"] = payment.NewStripeProvider(cfg.Payment.Stripe.SecretKey)
		logger.Info("stripe provider enabled")
	}
	if cfg.Payment.PayPal.ClientID != "" {
		paypalProvider, ppErr := payment.NewPayPalProvider(
			cfg.Payment.PayPal.ClientID,
			cfg.Payment.PayPal.Secret,
			cfg.Payment.PayPal.Sandbox,
		)
		if ppErr != nil {
			return ppErr
		}
		providers["paypal"] = paypalProvider
		logger.Info("paypal provider enabled", "sandbox", cfg.Payment.PayPal.Sandbox)
	}
	if len(providers) == 0 {
		logger.Warn("no payment providers configured; checkout is disabled")
	}

	checkoutSvc := checkout.NewService(
		sessions,
		cartSvc,
		pricer,
		providers,
		fulfiller,
		userSvc,
		cfg.Store.BaseURL,
		logger,
	)
	checkoutHandler := checkout.NewHandler(checkoutSvc)

	files := download.NewDirStore(cfg.Store.FilesDir)
	downloadSvc := download.NewService(entitlementRepo, files)
	downloadHandler := download.NewHandler(downloadSvc, logger)

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Store:      entitlementSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager)
	adminOnly := middleware.RequireAdmin
	verifiedOnly := middleware.RequireVerified

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)

		catalogHandler.RegisterRoutes(r)
		couponHandler.RegisterRoutes(r)
		cartHandler.RegisterRoutes(r, authenticator)
		checkoutHandler.RegisterRoutes(r, authenticator, verifiedOnly)
		downloadHandler.RegisterRoutes(r, authenticator, verifiedOnly)
		entitlementHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)

		catalogHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		couponHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		entitlementHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
