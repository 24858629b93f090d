package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	httpapi "rentkart-backend/internal/api/http"
	"rentkart-backend/internal/config"
	"rentkart-backend/internal/gateway"
	"rentkart-backend/internal/logger"
	"rentkart-backend/internal/notify"
	"rentkart-backend/internal/repository/postgres"
	"rentkart-backend/internal/security"
	"rentkart-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentkart Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.TokenTTL())
	callbackVerifier := security.NewCallbackVerifier(cfg.Gateway.CallbackSecret)

	// Initialize external collaborators
	gatewayClient := gateway.NewClient(
		cfg.Gateway.BaseURL,
		cfg.Gateway.StoreID,
		cfg.Gateway.AuthKey,
		cfg.Gateway.CallbackURL,
		cfg.GatewayTimeout(),
	)
	notifier := notify.NewEmailNotifier(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.FromEmail,
		cfg.SendGrid.FromName,
		store.Users(),
		store.Orders(),
	)

	// Initialize Services
	authSvc := service.NewAuthService(store.Users(), tokenManager)
	productSvc := service.NewProductService(store.Products(), store.Stock())
	stockSvc := service.NewStockService(store.Stock(), store.Orders())
	couponSvc := service.NewCouponService(store.Coupons())
	cartSvc := service.NewCartService(store.Quotations(), store.Products(), couponSvc, cfg.Pricing.TaxRatePercent, cfg.DraftTTL())
	orderSvc := service.NewOrderService(store, couponSvc, notifier, cfg.Pricing.TaxRatePercent, cfg.Pricing.LateFeePercent, cfg.Pricing.DamageFeePercent)
	paymentSvc := service.NewPaymentService(store, gatewayClient, callbackVerifier, notifier)

	// Initialize HTTP handlers and router
	handlers := httpapi.NewHandlers(authSvc, productSvc, stockSvc, cartSvc, orderSvc, paymentSvc)
	router := httpapi.NewRouter(handlers, tokenManager)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", "error", err)
		log.Fatalf("Server exited with error: %v", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
