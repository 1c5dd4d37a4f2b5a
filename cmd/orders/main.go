package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	app_orders "github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/app/orders"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/clock"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/config"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/credentials"
	http_orders "github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/handler/http/orders"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/infrastructure/kafka"
	postgres_order_repo "github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/repository/order_repo/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	appLogger.Info("Order microservice starting...")

	location, err := cfg.App.Location()
	if err != nil {
		appLogger.Fatal("Invalid timezone configuration", zap.Error(err))
	}

	endpoint := credentials.Endpoint{
		Region: cfg.Credentials.Region,
		Host:   cfg.Store.Host,
		Port:   cfg.Store.Port,
		User:   cfg.Store.User,
	}

	var provider credentials.Provider
	if cfg.Credentials.VendorURL != "" {
		provider = credentials.NewVendorClient(cfg.Credentials.VendorURL, cfg.App.CallTimeout,
			appLogger.With(zap.String("component", "CredentialVendor")))
		appLogger.Info("Using token vendor for store credentials", zap.String("vendor_url", cfg.Credentials.VendorURL))
	} else {
		provider = credentials.NewStatic(cfg.Credentials.StaticToken)
		appLogger.Info("Using static store credentials")
	}

	appLogger.Info("Running database migrations...")
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), cfg.App.CallTimeout)
	migrateToken, err := provider.Token(migrateCtx, endpoint)
	migrateCancel()
	if err != nil {
		appLogger.Fatal("Failed to obtain token for migrations", zap.Error(err))
	}

	m, err := migrate.New(cfg.App.MigrationsPath, cfg.Store.MigrationDSN(string(migrateToken)))
	if err != nil {
		appLogger.Fatal("Failed to create migrate instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations completed successfully (or no new migrations).")

	publisher := kafka.NewPublisher(cfg.Kafka.Brokers, appLogger.With(zap.String("component", "OutcomePublisher")))
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing Kafka publisher", zap.Error(err))
		}
	}()

	store := postgres_order_repo.NewStore(cfg.Store, appLogger.With(zap.String("component", "OrderStore")))

	orderService := app_orders.NewOrderService(
		app_orders.Config{
			Endpoint: endpoint,
			Channels: app_orders.Channels{
				Success: cfg.Kafka.SuccessTopic,
				Failure: cfg.Kafka.FailureTopic,
			},
			Location:    location,
			CallTimeout: cfg.App.CallTimeout,
		},
		provider,
		store,
		publisher,
		clock.NewSystem(),
		appLogger.With(zap.String("component", "OrderService")),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	http_orders.RegisterRoutes(r, orderService, cfg.App.PollPathPrefix, appLogger)

	serverAddr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	appLogger.Info("Order microservice is up", zap.String("address", serverAddr))

	<-sigChan

	appLogger.Info("Shutting down order microservice...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Order microservice graceful shutdown failed", zap.Error(err))
	}
	appLogger.Info("Order microservice stopped.")
}
