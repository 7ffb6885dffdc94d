package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/auth"
	authPostgres "github.com/frahmantamala/hospital-admin/internal/auth/postgres"
	"github.com/frahmantamala/hospital-admin/internal/core/events"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
	"github.com/frahmantamala/hospital-admin/internal/permission"
	permissionPostgres "github.com/frahmantamala/hospital-admin/internal/permission/postgres"
	"github.com/frahmantamala/hospital-admin/internal/transport"
	"github.com/frahmantamala/hospital-admin/internal/transport/rest"
	"github.com/frahmantamala/hospital-admin/internal/user"
	userPostgres "github.com/frahmantamala/hospital-admin/internal/user/postgres"
	"github.com/frahmantamala/hospital-admin/internal/verification"
	verificationPostgres "github.com/frahmantamala/hospital-admin/internal/verification/postgres"
	"github.com/frahmantamala/hospital-admin/pkg/logger"
	"github.com/frahmantamala/hospital-admin/pkg/mailer"
	"github.com/frahmantamala/hospital-admin/pkg/metrics"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

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
	GormDB   *gorm.DB
	DB       *sqlx.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB, deps.Handlers, deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

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
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// audit handlers may still be writing
		if err := deps.EventBus.Wait(ctx); err != nil {
			deps.Logger.Warn("event handlers did not finish before shutdown", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.InitWithOptions(logger.Options{
		Env:    config.Logging.Env,
		Level:  config.Logging.Level,
		Format: config.Logging.Format,
	})

	gormDB, db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sender, err := mailer.New(mailer.Config{
		Driver:               config.Mail.Driver,
		PostmarkServerToken:  config.Mail.PostmarkServerToken,
		PostmarkAccountToken: config.Mail.PostmarkAccountToken,
		SenderEmail:          config.Mail.SenderEmail,
		SupportEmail:         config.Mail.SupportEmail,
	}, lg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	m := metrics.New(db.DB)

	bus := events.NewEventBus(lg)
	events.NewAuditLogger(lg).Register(bus)
	bus.SubscribeAll(events.AdminEventTypes, func(_ context.Context, e events.Event) error {
		m.ObserveEvent(e.EventType())
		return nil
	})

	// authentication
	authRepo := authPostgres.NewRepository(gormDB)
	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenDuration)
	authService := auth.NewService(authRepo, tokenGen, lg)
	authHandler := auth.NewHandler(authService)

	// authorization
	checker := auth.NewPermissionChecker(authPostgres.NewPermissionStore(db), lg)
	managePermissions := auth.NewPermissionPolicy(checker, auth.ManagePermissions, lg)
	adminOnly := auth.NewRolePolicy(lg, role.Admin)

	// verification codes
	verificationRepo := verificationPostgres.NewVerificationRepository(gormDB)
	dispatcher := verification.NewDispatcher(verificationRepo, sender, config.Verification.GetCodeTTL(), lg)
	verificationHandler := verification.NewHandler(dispatcher)

	// permissions and bindings
	permissionRepo := permissionPostgres.NewPermissionRepository(gormDB)
	permissionService := permission.NewService(permissionRepo, managePermissions, bus, lg)
	permissionHandler := permission.NewHandler(transport.NewBaseHandler(lg), permissionService)

	// staff accounts
	userRepo := userPostgres.NewUserRepository(gormDB)
	hasher := auth.NewBcryptHasher(config.Security.BCryptCost)
	userService := user.NewService(userRepo, adminOnly, hasher, dispatcher, bus, lg)
	userHandler := user.NewHandler(userService)

	return &Dependencies{
		Config:   config,
		GormDB:   gormDB,
		DB:       db,
		Router:   chi.NewRouter(),
		EventBus: bus,
		Handlers: rest.Handlers{
			Auth:         authHandler,
			Verification: verificationHandler,
			Permission:   permissionHandler,
			User:         userHandler,
			Metrics:      m,

			ManagePermissions: managePermissions,
			AdminOnly:         adminOnly,
		},
		Logger: lg,
	}, nil
}

// initDB opens one pgx pool and shares it between gorm and sqlx.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	const driver = "pgx"

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: driver,
		DSN:        cfg.GetDSN(),
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gormDB, sqlx.NewDb(sqlDB, driver), nil
}
