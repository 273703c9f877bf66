package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"molliebridge/internal/bootstrap"
	"molliebridge/internal/bus"
	"molliebridge/internal/checkout"
	"molliebridge/internal/config"
	cronpkg "molliebridge/internal/cron"
	"molliebridge/internal/handler"
	"molliebridge/internal/middleware"
	"molliebridge/internal/mollie"
	"molliebridge/internal/registry"
	"molliebridge/internal/repository"
	"molliebridge/internal/router"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Signal bus + gateway client ---
	signalBus := bus.New()
	client := mollie.NewClient(cfg.Mollie.Endpoint, logger)

	// --- Payment method registry ---
	shared := registry.NewSharedMethods()
	reg := registry.New(client, cfg.Mollie.MethodsMapping, shared, logger)

	// --- Order guard (Redis with in-memory fallback) ---
	guard, guardErr := middleware.NewOrderGuard(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		cfg.Mollie.GuardTTL,
	)
	if guardErr != nil {
		logger.Warn("Redis unavailable for order guard, using in-memory fallback", zap.Error(guardErr))
	}

	// --- Attempt journal (optional) ---
	var journal checkout.Journal
	var scheduler *cronpkg.Scheduler
	if cfg.Database.Name != "" {
		db, err := config.NewDatabase(&cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := bootstrap.Migrate(db); err != nil {
			logger.Fatal("Failed to migrate attempt journal", zap.Error(err))
		}
		repo := repository.NewAttemptRepository(db)
		journal = repo
		scheduler = cronpkg.New(repo, client, cfg.Mollie.SweepSpec, logger)
	} else {
		logger.Info("Attempt journal disabled (DB_NAME is not set)")
	}

	// --- Checkout session + orchestrator ---
	session := checkout.NewSession()
	cart := checkout.NewCart()
	nav := checkout.NewSignalNavigator(signalBus, logger)
	saga := checkout.NewOrchestrator(
		client,
		cart,
		session,
		guard,
		journal,
		nav,
		signalBus,
		checkout.Config{
			CurrencyCode:  cfg.Mollie.CurrencyCode,
			ErrorURL:      cfg.Mollie.ErrorURL,
			RedirectBase:  cfg.Mollie.RedirectBase,
			RedirectDelay: cfg.Mollie.RedirectDelay,
		},
		logger,
	)

	arming := checkout.NewArmingController(
		signalBus,
		reg,
		session,
		saga,
		&checkout.LogSummary{Logger: logger},
		logger,
	)
	arming.Attach()

	// Load the method catalog once at startup.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := reg.FetchMethods(ctx); err != nil {
			logger.Error("Failed to fetch payment methods", zap.Error(err))
		}
	}()

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	orderStatusHandler := handler.NewOrderStatusHandler(client, logger)
	checkoutHandler := handler.NewCheckoutHandler(signalBus, reg, shared, cart, session, logger)
	router.Setup(e, orderStatusHandler, checkoutHandler)

	// --- Reconciliation sweep ---
	if scheduler != nil {
		scheduler.Start()
	}

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting Mollie bridge server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	if scheduler != nil {
		ctx := scheduler.Stop()
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
