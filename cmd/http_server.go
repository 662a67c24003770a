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
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/auth"
	authPostgres "github.com/civiport/report-management/internal/auth/postgres"
	"github.com/civiport/report-management/internal/catalog"
	catalogPostgres "github.com/civiport/report-management/internal/catalog/postgres"
	"github.com/civiport/report-management/internal/company"
	companyPostgres "github.com/civiport/report-management/internal/company/postgres"
	"github.com/civiport/report-management/internal/core/events"
	"github.com/civiport/report-management/internal/messaging"
	messagingPostgres "github.com/civiport/report-management/internal/messaging/postgres"
	"github.com/civiport/report-management/internal/report"
	reportPostgres "github.com/civiport/report-management/internal/report/postgres"
	"github.com/civiport/report-management/internal/storage"
	"github.com/civiport/report-management/internal/transport/rest"
	"github.com/civiport/report-management/internal/user"
	userPostgres "github.com/civiport/report-management/internal/user/postgres"
	"github.com/civiport/report-management/pkg/logger"
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
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Guard    *auth.Guard
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Guard,
		deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
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

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ORM: %w", err)
	}

	photoStore, err := storage.NewMinioPhotoStore(config.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize photo storage: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := photoStore.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	bus := events.NewEventBus(log)

	// Repositories.
	authRepo := authPostgres.NewRepository(gormDB)
	catalogRepo := catalogPostgres.NewCatalogRepository(gormDB)
	companyRepo := companyPostgres.NewCompanyRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	reportRepo := reportPostgres.NewReportRepository(gormDB)
	directory := reportPostgres.NewUserDirectory(gormDB)
	messagingRepo := messagingPostgres.NewMessagingRepository(gormDB)

	// Services.
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost)
	catalogService := catalog.NewService(catalogRepo, log)
	companyService := company.NewService(companyRepo, log)
	userService := user.NewService(userRepo, catalogService, companyService, authService, log)

	resolver := report.NewAssignmentResolver(catalogService, directory, reportRepo, log)
	reportService := report.NewService(
		reportRepo,
		resolver,
		directory,
		&config.Municipality,
		report.DirectorPolicy{AllowDirectorTransitions: config.Municipality.AllowDirectorTransitions},
		bus,
		photoStore,
		log,
	)
	messagingService := messaging.NewService(messagingRepo, reportRepo, bus, log)

	messaging.NewNotificationWriter(messagingRepo, log).Register(bus)

	handlers := rest.Handlers{
		Auth:      auth.NewHandler(authService),
		Catalog:   catalog.NewHandler(catalogService),
		Company:   company.NewHandler(companyService),
		User:      user.NewHandler(userService),
		Report:    report.NewHandler(reportService),
		Messaging: messaging.NewHandler(messagingService),
		Upload:    storage.NewUploadHandler(photoStore),
	}

	return &Dependencies{
		Config:   config,
		Logger:   log,
		DB:       db,
		Router:   chi.NewRouter(),
		Handlers: handlers,
		Guard:    auth.NewGuard(log),
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

// initGorm layers the ORM over the already-open pgx connection pool so both
// share one pool and one health check.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
