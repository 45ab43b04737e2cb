package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "dumpster-backoffice/internal/api/http"
	"dumpster-backoffice/internal/cache"
	"dumpster-backoffice/internal/config"
	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
	"dumpster-backoffice/internal/reference"
	"dumpster-backoffice/internal/repository/postgres"
	"dumpster-backoffice/internal/service"
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
	logger.Info("Starting Dumpster Back-Office API...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
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

	// Initialize reference-data cache
	customerCache, err := newCustomerCache(context.Background(), cfg.Cache)
	if err != nil {
		logger.Error("Failed to initialize cache", "type", cfg.Cache.Type, "error", err)
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	// Initialize Services
	clock := cache.SystemClock
	rentalSvc := service.NewRentalService(store.AssetRepository, store.BookingRepository, store.InvoiceRepository)
	customerSvc := service.NewCustomerService(store.CustomerRepository, customerCache)
	paymentSvc := service.NewPaymentService(store.InvoiceRepository, store.PaymentRepository, referenceSettings(cfg.References), clock)

	// Set up HTTP server
	handler := httpapi.NewHandler(rentalSvc, customerSvc, paymentSvc, clock, db.PingContext)
	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(handler, cfg.Server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}

func newCustomerCache(ctx context.Context, cfg config.CacheConfig) (cache.Store[[]domain.Customer], error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if cfg.Type == "redis" {
		logger.Info("Using redis cache", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisCache[[]domain.Customer](client, "customers", ttl), nil
	}
	logger.Info("Using in-memory cache", "ttl_seconds", cfg.TTLSeconds)
	return cache.NewMemoryCache[[]domain.Customer](ttl, cache.SystemClock), nil
}

// referenceSettings trusts config.Validate to have rejected unknown policies.
func referenceSettings(cfg config.ReferenceConfig) service.ReferenceSettings {
	return service.ReferenceSettings{
		Prefix:               cfg.PaymentPrefix,
		InvoiceMonthPolicy:   reference.Policy(cfg.InvoiceMonthPolicy),
		TodayPolicy:          reference.Policy(cfg.TodayPolicy),
		NumberByInvoiceMonth: cfg.NumberByInvoiceMonth,
	}
}
