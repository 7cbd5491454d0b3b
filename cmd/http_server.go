package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sobatmedia/smm-store/internal"
	"github.com/sobatmedia/smm-store/internal/admin"
	adminpostgres "github.com/sobatmedia/smm-store/internal/admin/postgres"
	"github.com/sobatmedia/smm-store/internal/gateway"
	"github.com/sobatmedia/smm-store/internal/order"
	orderpostgres "github.com/sobatmedia/smm-store/internal/order/postgres"
	"github.com/sobatmedia/smm-store/internal/product"
	productpostgres "github.com/sobatmedia/smm-store/internal/product/postgres"
	"github.com/sobatmedia/smm-store/internal/storage"
	"github.com/sobatmedia/smm-store/internal/transport/rest"
	"github.com/sobatmedia/smm-store/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config         *internal.Config
	DB             *sqlx.DB
	Router         *chi.Mux
	OrderHandler   *order.Handler
	WebhookHandler *order.WebhookHandler
	ProductHandler *product.Handler
	AdminHandler   *admin.Handler
	Logger         *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	uploadsDir := ""
	if deps.Config.Storage.UseLocalStorage() {
		uploadsDir = deps.Config.Storage.LocalDir
	}

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.OrderHandler,
		deps.WebhookHandler,
		deps.ProductHandler,
		deps.AdminHandler,
		deps.Config.Server.AllowedOrigins,
		uploadsDir,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Format, config.Logging.Level)
	appLogger := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	// Adapter selection happens exactly once, here.
	paymentGateway := gateway.NewGateway(config.Midtrans, config.Server.FrontendURL, appLogger)
	uploader, err := storage.NewUploader(config.Storage, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	productRepo := productpostgres.NewProductRepository(gormDB)
	orderRepo := orderpostgres.NewOrderRepository(gormDB)
	adminRepo := adminpostgres.NewAdminRepository(gormDB)
	orderStore := adminpostgres.NewOrderStore(gormDB)

	productService := product.NewService(productRepo, appLogger)
	orderService := order.NewService(orderRepo, productRepo, paymentGateway, uploader, appLogger)
	adminService := admin.NewService(adminRepo, orderStore, productRepo, config.Security, appLogger)

	return &Dependencies{
		Config:         config,
		Logger:         appLogger,
		DB:             db,
		Router:         chi.NewRouter(),
		OrderHandler:   order.NewHandler(orderService, appLogger),
		WebhookHandler: order.NewWebhookHandler(orderService, appLogger),
		ProductHandler: product.NewHandler(productService, appLogger),
		AdminHandler:   admin.NewHandler(adminService, appLogger),
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the existing pgx connection pool so GORM and the raw
// health/migration handles share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}
